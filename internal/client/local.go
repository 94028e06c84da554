package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sudo-init-do/campusgigs/internal/models"
)

// LocalFile persists the session user and local-only entries between runs.
type LocalFile struct {
	path string
}

type localData struct {
	User     *models.User          `json:"user"`
	Cart     []models.CartItem     `json:"localCart"`
	Wishlist []models.WishlistItem `json:"localWishlist"`
}

func NewLocalFile(path string) *LocalFile { return &LocalFile{path: path} }

func (f *LocalFile) load() (localData, error) {
	var d localData
	if f == nil {
		return d, nil
	}
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return d, nil
	}
	if err != nil {
		return d, fmt.Errorf("read local state: %w", err)
	}
	if err := json.Unmarshal(raw, &d); err != nil {
		return localData{}, fmt.Errorf("parse local state %s: %w", f.path, err)
	}
	return d, nil
}

// save writes the session user and only the local- rows of s.
func (f *LocalFile) save(s State) error {
	if f == nil {
		return nil
	}
	d := localData{
		User:     s.User,
		Cart:     without(s.Cart, func(i models.CartItem) bool { return !isLocal(i.ID) }),
		Wishlist: without(s.Wishlist, func(i models.WishlistItem) bool { return !isLocal(i.ID) }),
	}
	raw, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encode local state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write local state: %w", err)
	}
	return os.Rename(tmp, f.path)
}

func (f *LocalFile) remove() error {
	if f == nil {
		return nil
	}
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove local state: %w", err)
	}
	return nil
}
