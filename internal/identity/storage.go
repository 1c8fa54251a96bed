package identity

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DefaultSlot is the name of the storage slot holding the identity.
const DefaultSlot = "user-storage"

// FileStorage keeps the slot in a JSON file.
type FileStorage struct {
	path string
}

// NewFileStorage stores the slot at path.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// DefaultPath returns <user config dir>/nano-gallery/user-storage.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "nano-gallery", DefaultSlot+".json"), nil
}

func (s *FileStorage) Load() ([]byte, error) {
	return os.ReadFile(s.path)
}

// Save replaces the file atomically via a temp file and rename.
func (s *FileStorage) Save(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".identity-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// MemoryStorage is a slot that lives as long as the value.
type MemoryStorage struct {
	mu   sync.Mutex
	data []byte
}

func (s *MemoryStorage) Load() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil, os.ErrNotExist
	}
	return append([]byte(nil), s.data...), nil
}

func (s *MemoryStorage) Save(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append([]byte(nil), data...)
	return nil
}
