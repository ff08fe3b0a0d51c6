package skybox

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/taigrr/teapot/pkg/render"
)

// DefaultConcurrency bounds how many faces decode at once.
const DefaultConcurrency = 3

// Loader owns the cubemap of one set. Faces start as black placeholders
// and are swapped in one at a time as their images decode. Readers call
// Cubemap and never block.
type Loader struct {
	set         Set
	log         *zap.Logger
	concurrency int

	mu   sync.Mutex // serializes publishers
	cube atomic.Pointer[render.Cubemap]

	loaded   [6]atomic.Bool
	done     chan struct{}
	once     sync.Once
	watching atomic.Bool
}

// NewLoader returns a loader for set. A nil logger discards output.
func NewLoader(set Set, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	l := &Loader{
		set:         set,
		log:         log.With(zap.String("skybox", set.Name)),
		concurrency: DefaultConcurrency,
		done:        make(chan struct{}),
	}
	l.cube.Store(render.NewCubemap(set.FaceSize))
	return l
}

// Set returns the set this loader serves.
func (l *Loader) Set() Set { return l.set }

// Cubemap returns the latest snapshot.
func (l *Loader) Cubemap() *render.Cubemap { return l.cube.Load() }

// Loaded reports how many faces have been replaced by real images.
func (l *Loader) Loaded() int {
	n := 0
	for i := range l.loaded {
		if l.loaded[i].Load() {
			n++
		}
	}
	return n
}

// Loading reports whether Start has not finished yet.
func (l *Loader) Loading() bool {
	select {
	case <-l.done:
		return false
	default:
		return true
	}
}

// Wait blocks until Start finishes or ctx is done.
func (l *Loader) Wait(ctx context.Context) error {
	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start loads all six faces concurrently and blocks until each has been
// attempted. Faces that fail keep their placeholder; the failures are
// returned together. Run it in a goroutine for background loading.
func (l *Loader) Start(ctx context.Context) error {
	defer l.once.Do(func() { close(l.done) })

	var (
		g    errgroup.Group
		emu  sync.Mutex
		errs error
	)
	g.SetLimit(l.concurrency)
	for _, f := range render.CubeFaces {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				emu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("face %s: %w", f, err))
				emu.Unlock()
				return nil
			}
			if err := l.LoadFace(f); err != nil {
				emu.Lock()
				errs = multierr.Append(errs, err)
				emu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if errs != nil {
		l.log.Warn("Skybox loaded with missing faces",
			zap.Int("loaded", l.Loaded()),
			zap.Int("failed", len(multierr.Errors(errs))),
			zap.Error(errs))
	} else {
		l.log.Info("Skybox loaded", zap.String("dir", l.set.Dir), zap.Int("faceSize", l.set.FaceSize))
	}
	return errs
}

// LoadFace decodes face f from disk and publishes a new snapshot.
func (l *Loader) LoadFace(f render.CubeFace) error {
	path := l.set.FacePath(f)
	tex, err := render.LoadTexture(path)
	if err != nil {
		return fmt.Errorf("face %s: %w", f, err)
	}
	l.publish(f, tex)
	l.log.Debug("Skybox face loaded",
		zap.Stringer("face", f),
		zap.String("path", path),
		zap.Int("width", tex.Width),
		zap.Int("height", tex.Height))
	return nil
}

func (l *Loader) publish(f render.CubeFace, tex *render.Texture) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cube.Store(l.cube.Load().WithFace(f, tex))
	l.loaded[f].Store(true)
}

// Watch reloads a face whenever its file is written or recreated. It
// blocks until ctx is done.
func (l *Loader) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create skybox watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(l.set.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", l.set.Dir, err)
	}
	l.watching.Store(true)
	defer l.watching.Store(false)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			f, ok := faceForFile(ev.Name)
			if !ok {
				continue
			}
			// Partial writes fail to decode; the next event retries.
			if err := l.LoadFace(f); err != nil {
				l.log.Debug("Skybox reload skipped", zap.String("path", ev.Name), zap.Error(err))
				continue
			}
			l.log.Info("Skybox face reloaded", zap.Stringer("face", f))
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			l.log.Warn("Skybox watcher error", zap.Error(err))
		}
	}
}
