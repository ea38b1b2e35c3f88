package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Save writes s to path as indented JSON.
func Save(path string, s *State) error {
	out := s.Clone()
	return writeJSON(path, out)
}

// Load reads a session file. On any failure it returns a fresh empty state
// together with an error wrapping ErrLoadFailed.
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return New(), fmt.Errorf("%w: %w", ErrLoadFailed, &PersistenceError{Op: "read", Path: path, Err: err})
	}
	s := &State{}
	if err := json.Unmarshal(data, s); err != nil {
		return New(), fmt.Errorf("%w: %w", ErrLoadFailed, &PersistenceError{Op: "decode", Path: path, Err: err})
	}
	s.normalize()
	return s, nil
}

// writeJSON marshals v and atomically replaces path with it.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return &PersistenceError{Op: "encode", Path: path, Err: err}
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &PersistenceError{Op: "mkdir", Path: dir, Err: err}
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &PersistenceError{Op: "create", Path: path, Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &PersistenceError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &PersistenceError{Op: "write", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &PersistenceError{Op: "rename", Path: path, Err: err}
	}
	return nil
}
