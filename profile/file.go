package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"storefront/models"
)

var unsafeKeyChars = regexp.MustCompile(`[^\w.\-]`)

// FileStore writes one JSON document per key below Dir.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("profile dir: %w", err)
	}
	return &FileStore{Dir: dir}, nil
}

func (f *FileStore) path(key string) string {
	name := unsafeKeyChars.ReplaceAllString(filepath.Base(key), "_")
	if name == "" || name == "." || name == ".." {
		name = "_"
	}
	return filepath.Join(f.Dir, name+".json")
}

func (f *FileStore) Load(_ context.Context, key string) (models.User, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	var u models.User
	if err := json.Unmarshal(data, &u); err != nil {
		return models.User{}, fmt.Errorf("decode profile %s: %w", key, err)
	}
	return u, nil
}

func (f *FileStore) Save(_ context.Context, key string, user models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.Dir, ".profile-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.path(key))
}

func (f *FileStore) Clear(_ context.Context, key string) error {
	err := os.Remove(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
