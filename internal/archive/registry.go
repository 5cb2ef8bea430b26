package archive

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"
)

// Factory builds a fresh archiver for a single run.
type Factory func() (Archiver, error)

// UnsupportedFormatError is returned when no archiver is registered for the
// requested format.
type UnsupportedFormatError struct {
	Format    string   // the requested format
	Available []string // registered formats, sorted
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("%s is not a valid format.", e.Format)
}

// Registry maps format names to archiver factories. Lookups are
// case-insensitive.
type Registry struct {
	mu      sync.RWMutex
	formats map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{
		formats: make(map[string]Factory),
	}
}

func (r *Registry) Register(format string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.formats[strings.ToLower(format)] = factory
}

// Create builds an archiver for the given format. The format is matched
// case-insensitively against the registered names.
func (r *Registry) Create(format string) (Archiver, error) {
	r.mu.RLock()
	factory, ok := r.formats[strings.ToLower(format)]
	available := r.available()
	r.mu.RUnlock()
	if !ok {
		return nil, &UnsupportedFormatError{Format: format, Available: available}
	}
	return factory()
}

func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.available()
}

func (r *Registry) available() []string {
	formats := lo.Keys(r.formats)
	slices.Sort(formats)
	return formats
}
