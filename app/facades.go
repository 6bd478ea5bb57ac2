package app

import "github.com/km-arc/go-foundation/framework/facade"

// Facades groups the demo accessors around one handle.
type Facades struct {
	Standard *facade.Accessor[Messenger]
	Reports  *facade.Accessor[*Report]
}

// NewFacades binds the demo accessors to h.
func NewFacades(h *facade.Handle) *Facades {
	return &Facades{
		Standard: facade.New[Messenger](h, "standard_provider"),
		Reports:  facade.New[*Report](h, "deferred_provider"),
	}
}

// Message forwards to the Messenger bound at "standard_provider".
func (f *Facades) Message(msg string) (string, error) {
	return facade.Call(f.Standard, func(m Messenger) string { return m.Message(msg) })
}

// ReportTitle resolves the deferred report, loading its provider on first use.
func (f *Facades) ReportTitle() (string, error) {
	return facade.Call(f.Reports, func(r *Report) string { return r.Title })
}
