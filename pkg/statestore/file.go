package statestore

import (
	"os"
	"path/filepath"
	"strings"
)

type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Read() (string, bool, error) {
	body, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return strings.TrimSpace(string(body)), true, nil
}

// Write via temporary file + rename, so a crash mid-write leaves
// either the old value or the new one, never a torn file.
func (s *FileStore) Write(value string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".state-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func (s *FileStore) CompareAndSwap(old, new string) (bool, error) {
	cur, ok, err := s.Read()
	if err != nil {
		return false, err
	}
	if !ok {
		cur = ""
	}
	if cur != old {
		return false, nil
	}
	if err := s.Write(new); err != nil {
		return false, err
	}
	return true, nil
}

func (s *FileStore) Delete() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
