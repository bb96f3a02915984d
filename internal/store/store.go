// Package store persists generation progress to an intermediate JSON cache
// so interrupted runs resume instead of restarting.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/incident-generator/internal/generator"
)

// DefaultPath is the cache location when none is configured.
const DefaultPath = "temp_incidents.json"

// CorruptStateError means the cache file exists but does not parse. The
// caller must fail fast and leave the file in place for manual inspection;
// overwriting it would silently discard prior work.
type CorruptStateError struct {
	Path  string
	Cause error
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("cache file %s is corrupt (inspect or remove it before resuming): %v", e.Path, e.Cause)
}

func (e *CorruptStateError) Unwrap() error {
	return e.Cause
}

// Store reads and writes the whole generation state as one JSON document.
// Every save fully replaces the prior file, so recovery is always from a
// complete batch boundary.
type Store struct {
	Path string
}

// New creates a store for the given cache path, or DefaultPath when empty.
func New(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{Path: path}
}

// Load reads prior progress. A missing file yields (nil, nil) — the caller
// starts fresh. An unparsable file yields a *CorruptStateError.
func (s *Store) Load() (*generator.State, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading cache file %s: %w", s.Path, err)
	}

	var state generator.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, &CorruptStateError{Path: s.Path, Cause: err}
	}
	return &state, nil
}

// Save checkpoints the full state. The write goes to a temp file in the
// same directory and is renamed over the cache, so a crash mid-write never
// corrupts the previous checkpoint.
func (s *Store) Save(state *generator.State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp cache file: %w", err)
	}

	if err := os.Rename(tmpPath, s.Path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing cache file %s: %w", s.Path, err)
	}
	return nil
}

// Clear removes the cache file. Missing file is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing cache file %s: %w", s.Path, err)
	}
	return nil
}
