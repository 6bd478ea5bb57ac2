package container

// ContextualBuilder implements the fluent contextual binding API.
//
//	// Laravel: $app->when(PhotoController::class)->needs(Filesystem::class)->give(...)
//	err := c.When("PhotoController").Needs("Filesystem").Give(func(c *container.Container) (any, error) {
//	    return filesystem.NewS3(), nil
//	})
type ContextualBuilder struct {
	container *Container
	concrete  string
	needs     string
}

// Needs specifies which id the concrete service depends on.
func (b *ContextualBuilder) Needs(abstract string) *ContextualBuilder {
	b.needs = abstract
	return b
}

// Give provides the factory used when the concrete service resolves the
// id named by Needs. It fails with ErrContextualNeedsMissing when Needs was
// not called first.
func (b *ContextualBuilder) Give(factory Factory) error {
	if b.needs == "" {
		return ErrContextualNeedsMissing
	}
	b.container.AddContextualBinding(b.concrete, b.needs, factory)
	return nil
}

// GiveValue is a shorthand for Give when the value is a simple scalar or
// pre-built instance (no factory logic needed).
//
//	// Laravel: ->give('/tmp/photos')
//	c.When("PhotoController").Needs("storagePath").GiveValue("/tmp/photos")
func (b *ContextualBuilder) GiveValue(value any) error {
	return b.Give(func(_ *Container) (any, error) { return value, nil })
}
