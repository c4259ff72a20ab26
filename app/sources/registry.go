package sources

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Registry holds immutable sources table with the display order
type Registry struct {
	sources map[string]Source
	order   []string
}

// File describes YAML sources table
type File struct {
	Order   []string `yaml:"order"`
	Sources []Source `yaml:"sources"`
}

// NewRegistry validates sources and creates a Registry.
// Sources missing in order are reachable by id but never displayed.
func NewRegistry(list []Source, order []string) (*Registry, error) {
	r := &Registry{sources: make(map[string]Source, len(list))}
	for _, s := range list {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, ok := r.sources[s.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidSource, s.ID)
		}
		r.sources[s.ID] = s
	}
	seen := make(map[string]bool, len(order))
	for _, id := range order {
		if _, ok := r.sources[id]; !ok {
			return nil, fmt.Errorf("%w: unknown id %q in display order", ErrInvalidSource, id)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: %q listed twice in display order", ErrInvalidSource, id)
		}
		seen[id] = true
		r.order = append(r.order, id)
	}
	return r, nil
}

// Default returns registry with built-in sources
func Default() *Registry {
	r, err := NewRegistry(DefaultSources(), DefaultOrder())
	if err != nil {
		panic(err)
	}
	return r
}

// LoadFile reads sources table from YAML file
func LoadFile(path string) (File, error) {
	var f File
	data, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("read sources file: %w", err)
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("unmarshal sources file: %w", err)
	}
	return f, nil
}

// Get returns source by id
func (r *Registry) Get(id string) (Source, bool) {
	s, ok := r.sources[id]
	return s, ok
}

// Ordered returns displayed sources
func (r *Registry) Ordered() []Source {
	res := make([]Source, 0, len(r.order))
	for _, id := range r.order {
		res = append(res, r.sources[id])
	}
	return res
}
