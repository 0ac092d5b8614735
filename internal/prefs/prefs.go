// Package prefs stores player preferences: provider dimension and parameter
// defaults keyed "{provider}_{field}" and global switches such as
// "{plugin}_responsive". The render pipeline only reads them.
package prefs

import (
	"fmt"
	"sort"
)

// Store reads preference values. ok is false when the key is not stored.
type Store interface {
	Get(key string) (value string, ok bool)
}

// Writable is a Store that can also be edited and listed.
type Writable interface {
	Store
	Set(key, value string) error
	Keys() ([]string, error)
	Close() error
}

// Key builds the preference key of a field owned by a provider or plugin.
func Key(owner, field string) string {
	return owner + "_" + field
}

// Scoped returns a lookup reading the fields of one owner from s.
func Scoped(s Store, owner string) func(field string) (string, bool) {
	return func(field string) (string, bool) {
		if s == nil {
			return "", false
		}
		return s.Get(Key(owner, field))
	}
}

// Map is an in-memory Store.
type Map map[string]string

// Get implements Store.
func (m Map) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Set implements Writable.
func (m Map) Set(key, value string) error {
	m[key] = value
	return nil
}

// Keys implements Writable.
func (m Map) Keys() ([]string, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close implements Writable.
func (m Map) Close() error { return nil }

// Backends.
const (
	BackendTOML   = "toml"
	BackendSQLite = "sqlite"
)

// Open opens the preference store of the given backend at path.
func Open(backend, path string) (Writable, error) {
	switch backend {
	case BackendTOML:
		return LoadFile(path)
	case BackendSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown preferences backend %q", backend)
	}
}
