package models

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"
)

// DefaultTeapotURL is the mesh drawn when no other source is configured.
const DefaultTeapotURL = "https://raw.githubusercontent.com/illinois-cs418/cs418CourseMaterial/master/Meshes/teapot_0.obj"

// LoadOptions controls how Load fetches and prepares a mesh.
type LoadOptions struct {
	// Client is the HTTP client for URL sources. Nil uses http.DefaultClient.
	Client *http.Client
	// AttemptTimeout bounds a single HTTP attempt.
	AttemptTimeout time.Duration
	// MaxElapsed bounds the whole fetch, retries included.
	MaxElapsed time.Duration
	// InitialInterval is the first retry delay.
	InitialInterval time.Duration
	// MaxBytes caps the downloaded body size.
	MaxBytes int64
	// NormalizeSize, when > 0, centers the mesh and scales its largest
	// dimension to this size.
	NormalizeSize float64
	// Logger receives retry notices. Nil disables them.
	Logger *zap.Logger
}

// DefaultLoadOptions returns the options used by the demo.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		AttemptTimeout:  10 * time.Second,
		MaxElapsed:      30 * time.Second,
		InitialInterval: 250 * time.Millisecond,
		MaxBytes:        64 << 20,
	}
}

// StatusError is returned for a non-2xx HTTP response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

// Load reads a mesh from src, which is an http(s) URL or a local path.
// The format follows the extension: .obj, .glb or .gltf.
func Load(ctx context.Context, src string, opts LoadOptions) (*Mesh, error) {
	var (
		mesh *Mesh
		err  error
	)

	if isURL(src) {
		mesh, err = loadURL(ctx, src, opts)
	} else {
		switch ext := strings.ToLower(filepath.Ext(src)); ext {
		case ".obj":
			mesh, err = LoadOBJ(src)
		case ".glb", ".gltf":
			mesh, err = LoadGLB(src)
		default:
			err = fmt.Errorf("unsupported mesh format %q", ext)
		}
	}
	if err != nil {
		return nil, err
	}

	if opts.NormalizeSize > 0 {
		mesh.Normalize(opts.NormalizeSize)
	}
	return mesh, nil
}

func isURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

func loadURL(ctx context.Context, src string, opts LoadOptions) (*Mesh, error) {
	u, err := url.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse mesh url: %w", err)
	}
	name := path.Base(u.Path)

	data, err := Fetch(ctx, src, opts)
	if err != nil {
		return nil, err
	}

	switch ext := strings.ToLower(path.Ext(name)); ext {
	case ".obj", "":
		return ParseOBJ(bytes.NewReader(data), name)
	case ".glb":
		doc := new(gltf.Document)
		if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
			return nil, fmt.Errorf("decode glb %s: %w", name, err)
		}
		return NewGLTFLoader().fromDocument(doc, name)
	default:
		return nil, fmt.Errorf("unsupported mesh format %q", ext)
	}
}

// Fetch downloads src with exponential backoff. Transport errors and 5xx
// responses are retried; any other non-2xx status fails immediately.
func Fetch(ctx context.Context, src string, opts LoadOptions) ([]byte, error) {
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}

	eb := backoff.NewExponentialBackOff()
	if opts.InitialInterval > 0 {
		eb.InitialInterval = opts.InitialInterval
	}
	eb.MaxElapsedTime = opts.MaxElapsed

	attempt := 0
	op := func() ([]byte, error) {
		attempt++
		return fetchOnce(ctx, client, src, opts)
	}
	notify := func(err error, wait time.Duration) {
		if opts.Logger != nil {
			opts.Logger.Warn("Mesh fetch failed, retrying",
				zap.String("url", src),
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
				zap.Error(err))
		}
	}

	data, err := backoff.RetryNotifyWithData(op, backoff.WithContext(eb, ctx), notify)
	if err != nil {
		return nil, fmt.Errorf("fetch mesh after %d attempt(s): %w", attempt, err)
	}
	return data, nil
}

func fetchOnce(ctx context.Context, client *http.Client, src string, opts LoadOptions) ([]byte, error) {
	if opts.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.AttemptTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := &StatusError{URL: src, Code: resp.StatusCode}
		if resp.StatusCode >= 500 {
			return nil, serr
		}
		return nil, backoff.Permanent(serr)
	}

	body := io.Reader(resp.Body)
	if opts.MaxBytes > 0 {
		body = io.LimitReader(resp.Body, opts.MaxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if opts.MaxBytes > 0 && int64(len(data)) > opts.MaxBytes {
		return nil, backoff.Permanent(fmt.Errorf("mesh larger than %d bytes", opts.MaxBytes))
	}
	return data, nil
}

// IsNotFound reports whether err carries a 404 response.
func IsNotFound(err error) bool {
	var serr *StatusError
	return errors.As(err, &serr) && serr.Code == http.StatusNotFound
}

// SourceName returns the display name for a mesh source.
func SourceName(src string) string {
	if isURL(src) {
		if u, err := url.Parse(src); err == nil {
			return path.Base(u.Path)
		}
	}
	return filepath.Base(src)
}
