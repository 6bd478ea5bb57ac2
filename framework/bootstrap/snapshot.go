// Package bootstrap compiles the provider list into a snapshot that tells
// the container which providers are eager and which are deferred, so that
// providers need not be re-scanned on every process start.
//
// The snapshot is rebuilt wholesale by Cache.Build and restored by
// Cache.Load. It is encoded by a Codec (JSON by default) and persisted by a
// Store (a file under the cache path, or a Redis key). Only one writer at a
// time is supported.
package bootstrap

import (
	"github.com/km-arc/go-foundation/framework/container"
)

// Snapshot is the persisted provider classification.
//
//	providers: eager provider ids, in declaration order
//	deferred:  service id → owning provider id
//	aliases:   service id → service id
type Snapshot struct {
	Providers []string          `json:"providers" yaml:"providers" toml:"providers"`
	Deferred  map[string]string `json:"deferred" yaml:"deferred" toml:"deferred"`
	Aliases   map[string]string `json:"aliases" yaml:"aliases" toml:"aliases"`
}

// Classify constructs every provider in ids through table and sorts it into
// the eager list or the deferred map. A provider with an empty Provides()
// list is eager; otherwise each provided id maps to the provider and is
// aliased to itself.
func Classify(table *container.ProviderTable, ids []string) (Snapshot, error) {
	snap := Snapshot{
		Providers: []string{},
		Deferred:  map[string]string{},
		Aliases:   map[string]string{},
	}

	for _, id := range ids {
		provider, err := table.Make(id)
		if err != nil {
			return Snapshot{}, err
		}

		services := provider.Provides()
		if len(services) == 0 {
			snap.Providers = append(snap.Providers, id)
			continue
		}
		for _, service := range services {
			snap.Deferred[service] = id
			snap.Aliases[service] = service
		}
	}
	return snap, nil
}

// normalize replaces nil collections so decoded and classified snapshots
// compare equal.
func (s *Snapshot) normalize() {
	if s.Providers == nil {
		s.Providers = []string{}
	}
	if s.Deferred == nil {
		s.Deferred = map[string]string{}
	}
	if s.Aliases == nil {
		s.Aliases = map[string]string{}
	}
}
