package skybox

import (
	"context"
	"sync/atomic"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Library holds one loader per set and tracks which set is shown.
type Library struct {
	loaders []*Loader
	current atomic.Int32
}

// NewLibrary creates a loader for every set. The first set is current.
func NewLibrary(sets []Set, log *zap.Logger) *Library {
	lib := &Library{}
	for _, s := range sets {
		lib.loaders = append(lib.loaders, NewLoader(s, log))
	}
	return lib
}

// Len returns the number of sets.
func (lib *Library) Len() int { return len(lib.loaders) }

// Loaders returns every loader in set order.
func (lib *Library) Loaders() []*Loader { return lib.loaders }

// Current returns the loader of the selected set, or nil if the library
// is empty.
func (lib *Library) Current() *Loader {
	if len(lib.loaders) == 0 {
		return nil
	}
	return lib.loaders[int(lib.current.Load())%len(lib.loaders)]
}

// Next selects the following set, wrapping around, and returns it.
func (lib *Library) Next() *Loader {
	if len(lib.loaders) == 0 {
		return nil
	}
	n := int32(len(lib.loaders))
	for {
		cur := lib.current.Load()
		if lib.current.CompareAndSwap(cur, (cur+1)%n) {
			break
		}
	}
	return lib.Current()
}

// Select makes the named set current. It reports false for unknown names.
func (lib *Library) Select(name string) bool {
	for i, l := range lib.loaders {
		if l.set.Name == name {
			lib.current.Store(int32(i))
			return true
		}
	}
	return false
}

// Start loads every set concurrently and returns all face failures.
func (lib *Library) Start(ctx context.Context) error {
	errs := make([]error, len(lib.loaders))
	var g errgroup.Group
	for i, l := range lib.loaders {
		g.Go(func() error {
			errs[i] = l.Start(ctx)
			return nil
		})
	}
	_ = g.Wait()
	return multierr.Combine(errs...)
}

// Watch hot-reloads every set until ctx is done. It returns the first
// watcher setup failure.
func (lib *Library) Watch(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, l := range lib.loaders {
		g.Go(func() error { return l.Watch(gctx) })
	}
	return g.Wait()
}
