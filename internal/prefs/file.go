package prefs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
)

// File is a Store kept in a flat TOML file of string values.
// Writes are atomic (temp file + rename) to prevent corruption.
type File struct {
	path   string
	values map[string]string
}

// LoadFile reads the preference file at path. A missing file yields an
// empty store that will be created on the first Set.
func LoadFile(path string) (*File, error) {
	f := &File{path: path, values: make(map[string]string)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return nil, fmt.Errorf("reading preferences: %w", err)
	}

	if err := toml.Unmarshal(data, &f.values); err != nil {
		return nil, fmt.Errorf("parsing preferences %s: %w", path, err)
	}

	return f, nil
}

// Path returns the file location.
func (f *File) Path() string { return f.path }

// Get implements Store.
func (f *File) Get(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

// Keys implements Writable.
func (f *File) Keys() ([]string, error) {
	keys := make([]string, 0, len(f.values))
	for k := range f.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Set stores a value and rewrites the file.
func (f *File) Set(key, value string) error {
	f.values[key] = value
	return f.save()
}

// Close implements Writable.
func (f *File) Close() error { return nil }

func (f *File) save() error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating preferences dir: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, "prefs-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	writer := bufio.NewWriter(tmpFile)
	if err := toml.NewEncoder(writer).Encode(f.values); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing preferences: %w", err)
	}

	if err := writer.Flush(); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("flushing preferences: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, f.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming preferences file: %w", err)
	}

	return nil
}
