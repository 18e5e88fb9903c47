// Package wrapper dispatches compressed images to their codec adapters and
// manages per-image sessions that hold a compressed and a raw representation
// of the same picture.
package wrapper

import (
	"fmt"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/7blacky7/imagewrapper/codec"
	"github.com/7blacky7/imagewrapper/format"
	"github.com/7blacky7/imagewrapper/imgerr"
)

// ============================================================================
// Registry - format to adapter dispatch
// ============================================================================

// Factory returns a fresh adapter.
type Factory func() codec.Adapter

// Registry maps formats to adapter factories in registration order.
// Lookups are safe for concurrent use.
type Registry struct {
	adapters *orderedmap.OrderedMap[format.Format, Factory]
	mu       sync.RWMutex
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		adapters: orderedmap.New[format.Format, Factory](),
	}
}

// RegistryError reports a failed registry operation.
type RegistryError struct {
	Op     string        // operation, e.g. "create", "detect"
	Format format.Format // format involved
	Err    error         // underlying error
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf("imagewrapper: %s adapter '%s': %v", e.Op, e.Format, e.Err)
}

func (e *RegistryError) Unwrap() error {
	return e.Err
}

// Register installs factory for f, replacing any earlier entry.
func (r *Registry) Register(f format.Format, factory Factory) error {
	if !f.Valid() {
		return &RegistryError{Op: "register", Format: f, Err: imgerr.ErrUnknownFormat}
	}
	if factory == nil {
		return &RegistryError{Op: "register", Format: f, Err: fmt.Errorf("nil factory")}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.adapters.Set(f, factory)
	return nil
}

// Unregister removes f and reports whether it was present.
func (r *Registry) Unregister(f format.Format) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, present := r.adapters.Delete(f)
	return present
}

// Lookup returns the factory for f.
func (r *Registry) Lookup(f format.Format) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.adapters.Get(f)
}

// Has reports whether f has an adapter.
func (r *Registry) Has(f format.Format) bool {
	_, ok := r.Lookup(f)
	return ok
}

// Formats returns the registered formats in registration order.
func (r *Registry) Formats() []format.Format {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formats := make([]format.Format, 0, r.adapters.Len())
	for pair := r.adapters.Oldest(); pair != nil; pair = pair.Next() {
		formats = append(formats, pair.Key)
	}
	return formats
}

// Count returns the number of registered formats.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.adapters.Len()
}

// Adapter returns a new adapter for f.
func (r *Registry) Adapter(f format.Format) (codec.Adapter, error) {
	factory, ok := r.Lookup(f)
	if !ok {
		return nil, &RegistryError{Op: "create", Format: f, Err: imgerr.ErrUnknownFormat}
	}
	return factory(), nil
}

// New returns an empty session bound to f.
func (r *Registry) New(f format.Format, opts ...Option) (*Session, error) {
	a, err := r.Adapter(f)
	if err != nil {
		return nil, err
	}
	return newSession(a, opts...), nil
}

// NewFromBytes sniffs data and returns a session holding it as its
// compressed source.
func (r *Registry) NewFromBytes(data []byte, opts ...Option) (*Session, error) {
	f := format.Detect(data)
	if f == format.Unknown {
		return nil, &RegistryError{Op: "detect", Format: f, Err: imgerr.ErrUnknownFormat}
	}
	s, err := r.New(f, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.SetCompressed(data); err != nil {
		return nil, err
	}
	return s, nil
}
