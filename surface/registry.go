// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Factory creates a new Surface with the given options.
type Factory func(opts Options) (Surface, error)

// RegistryEntry represents a registered surface backend.
type RegistryEntry struct {
	// Name is the unique identifier for this backend.
	Name string

	// Priority determines selection order (higher = preferred).
	// Standard priorities:
	//   - 100: hardware backends
	//   - 10: pure software backends
	Priority int

	// Factory creates surface instances.
	Factory Factory

	// Available reports if the backend is usable on this system.
	Available func() bool
}

// ErrNoBackend is returned when no registered backend is available.
var ErrNoBackend = errors.New("surface: no backend available")

var (
	registryMu sync.RWMutex
	registry   = map[string]*RegistryEntry{}
)

// Register adds a surface backend to the global registry. Registering the
// same name twice replaces the earlier entry. A nil available func means
// always available.
func Register(name string, priority int, factory Factory, available func() bool) {
	if available == nil {
		available = func() bool { return true }
	}
	registryMu.Lock()
	registry[name] = &RegistryEntry{
		Name:      name,
		Priority:  priority,
		Factory:   factory,
		Available: available,
	}
	registryMu.Unlock()
}

// New creates a surface using the highest-priority available backend.
func New(width, height int) (Surface, error) {
	registryMu.RLock()
	entries := make([]*RegistryEntry, 0, len(registry))
	for _, e := range registry {
		entries = append(entries, e)
	}
	registryMu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Priority != entries[j].Priority {
			return entries[i].Priority > entries[j].Priority
		}
		return entries[i].Name < entries[j].Name
	})

	for _, e := range entries {
		if e.Available() {
			return e.Factory(Options{Width: width, Height: height})
		}
	}
	return nil, ErrNoBackend
}

// NewByName creates a surface using the named backend.
func NewByName(name string, width, height int) (Surface, error) {
	registryMu.RLock()
	e, ok := registry[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("surface: backend %q not registered", name)
	}
	if !e.Available() {
		return nil, fmt.Errorf("surface: backend %q not available", name)
	}
	return e.Factory(Options{Width: width, Height: height})
}

// Backends returns the names of all registered backends, sorted by
// descending priority.
func Backends() []string {
	registryMu.RLock()
	entries := make([]*RegistryEntry, 0, len(registry))
	for _, e := range registry {
		entries = append(entries, e)
	}
	registryMu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Priority != entries[j].Priority {
			return entries[i].Priority > entries[j].Priority
		}
		return entries[i].Name < entries[j].Name
	})

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

func init() {
	Register("image", 10, func(opts Options) (Surface, error) {
		return NewImageSurface(opts.Width, opts.Height), nil
	}, nil)
}
