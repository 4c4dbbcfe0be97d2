package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"bigboss/internal/game"
)

// File keeps the save document in a single JSON file. Saves go through a
// temp file and a rename so a crash never leaves half a document behind.
type File struct {
	path string
}

func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("save path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create save dir: %w", err)
	}
	return &File{path: path}, nil
}

func (f *File) Path() string {
	return f.path
}

func (f *File) Load(context.Context) ([]byte, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, game.ErrNoSave
		}
		return nil, fmt.Errorf("read save: %w", err)
	}
	if len(raw) == 0 {
		return nil, game.ErrNoSave
	}
	return raw, nil
}

func (f *File) Save(_ context.Context, doc []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".save-*.json")
	if err != nil {
		return fmt.Errorf("create temp save: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		return fmt.Errorf("write save: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync save: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close save: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("chmod save: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace save: %w", err)
	}
	return nil
}

func (f *File) Clear(context.Context) error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove save: %w", err)
	}
	return nil
}
