// Package registry keeps the objects a scan discovered, keyed by name.
package registry

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/kingrea/looksee/scanner"
)

// Entry is one registered object.
type Entry struct {
	Name   string
	Module string
	Kind   scanner.Kind
	Value  any
	Type   reflect.Type
}

// Registry maintains discovered objects. The first registration of a name
// wins; later ones are rejected.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
	order   []string
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{entries: map[string]Entry{}}
}

// Register installs an entry. Returns an error if the name already exists.
func (r *Registry) Register(entry Entry) error {
	if entry.Name == "" {
		return fmt.Errorf("registry: name is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, exists := r.entries[entry.Name]; exists {
		return fmt.Errorf("registry: %s already registered by %s", entry.Name, existing.Module)
	}
	r.entries[entry.Name] = entry
	r.order = append(r.order, entry.Name)
	return nil
}

// MustRegister panics if registration fails.
func (r *Registry) MustRegister(entry Entry) {
	if err := r.Register(entry); err != nil {
		panic(err)
	}
}

// Lookup returns the entry registered under name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[name]
	return entry, ok
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Names returns a sorted list of registered names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entries returns every entry in registration order.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name])
	}
	return out
}

// Callback returns a scanner callback that registers every match and mirrors
// it into the scan context. A duplicate name surfaces as a callback error,
// leaving the first registration in place.
func (r *Registry) Callback() scanner.Callback {
	return func(name string, obj scanner.Object, ctx scanner.Context) error {
		if err := r.Register(FromObject(obj)); err != nil {
			return err
		}
		ctx[name] = obj.Interface()
		return nil
	}
}

// FromObject converts a discovered object into an entry.
func FromObject(obj scanner.Object) Entry {
	return Entry{
		Name:   obj.Name,
		Module: obj.Module,
		Kind:   obj.Kind,
		Value:  obj.Interface(),
		Type:   obj.Type(),
	}
}
