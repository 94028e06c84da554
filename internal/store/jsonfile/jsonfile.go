// Package jsonfile keeps the whole marketplace in one JSON document on disk.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sudo-init-do/campusgigs/internal/models"
	"github.com/sudo-init-do/campusgigs/internal/store"
)

// document is the on-disk layout.
type document struct {
	Users     []models.User          `json:"users"`
	Services  []models.Service       `json:"services"`
	Carts     []models.CartEntry     `json:"carts"`
	Wishlists []models.WishlistEntry `json:"wishlists"`
	Orders    []models.Order         `json:"orders"`
}

// Store reads and rewrites the whole file on every call. Calls within one
// process are serialized; two processes sharing a file can still lose each
// other's writes.
type Store struct {
	path   string
	seed   []models.Service
	logger zerolog.Logger
	mu     sync.Mutex
}

var _ store.Store = (*Store)(nil)

type Option func(*Store)

// WithSeed sets the catalog written when the file does not exist yet.
func WithSeed(services []models.Service) Option {
	return func(s *Store) { s.seed = services }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Open returns a store backed by path, creating the file if needed.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{path: path, logger: zerolog.Nop()}
	for _, o := range opts {
		o(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensure(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensure() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", s.path, err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	doc := &document{Services: append([]models.Service(nil), s.seed...)}
	if err := s.write(doc); err != nil {
		return err
	}
	s.logger.Info().Str("path", s.path).Int("services", len(doc.Services)).Msg("created data file")
	return nil
}

func (s *Store) read() (*document, error) {
	if err := s.ensure(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return &doc, nil
}

func (s *Store) write(doc *document) error {
	normalize(doc)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".db-*.json")
	if err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

// normalize keeps empty collections as [] in the file.
func normalize(doc *document) {
	if doc.Users == nil {
		doc.Users = []models.User{}
	}
	if doc.Services == nil {
		doc.Services = []models.Service{}
	}
	if doc.Carts == nil {
		doc.Carts = []models.CartEntry{}
	}
	if doc.Wishlists == nil {
		doc.Wishlists = []models.WishlistEntry{}
	}
	if doc.Orders == nil {
		doc.Orders = []models.Order{}
	}
}

func (s *Store) view(ctx context.Context, fn func(*document) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return err
	}
	return fn(doc)
}

func (s *Store) update(ctx context.Context, fn func(*document) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.write(doc)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.view(ctx, func(*document) error { return nil })
}

func (s *Store) Close() error { return nil }

// Users

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var out *models.User
	err := s.view(ctx, func(doc *document) error {
		for i := range doc.Users {
			if doc.Users[i].Email == email {
				u := doc.Users[i]
				out = &u
				return nil
			}
		}
		return store.ErrNotFound
	})
	return out, err
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var out []models.User
	err := s.view(ctx, func(doc *document) error {
		out = doc.Users
		return nil
	})
	return out, err
}

func (s *Store) InsertUser(ctx context.Context, u *models.User) error {
	return s.update(ctx, func(doc *document) error {
		for _, existing := range doc.Users {
			if existing.Email == u.Email {
				return fmt.Errorf("user %s already exists", u.Email)
			}
		}
		doc.Users = append(doc.Users, *u)
		return nil
	})
}

func (s *Store) UpdateUser(ctx context.Context, u *models.User) error {
	return s.update(ctx, func(doc *document) error {
		for i := range doc.Users {
			if doc.Users[i].Email == u.Email {
				doc.Users[i] = *u
				return nil
			}
		}
		return store.ErrNotFound
	})
}

// Services

func (s *Store) ListServices(ctx context.Context) ([]models.Service, error) {
	var out []models.Service
	err := s.view(ctx, func(doc *document) error {
		out = doc.Services
		return nil
	})
	return out, err
}

func (s *Store) GetService(ctx context.Context, id string) (*models.Service, error) {
	var out *models.Service
	err := s.view(ctx, func(doc *document) error {
		for i := range doc.Services {
			if doc.Services[i].ID == id {
				svc := doc.Services[i]
				out = &svc
				return nil
			}
		}
		return store.ErrNotFound
	})
	return out, err
}

// InsertService prepends, so the file keeps newest listings first.
func (s *Store) InsertService(ctx context.Context, svc *models.Service) error {
	return s.update(ctx, func(doc *document) error {
		doc.Services = append([]models.Service{*svc}, doc.Services...)
		return nil
	})
}

func (s *Store) DeleteService(ctx context.Context, id string) error {
	return s.update(ctx, func(doc *document) error {
		idx := -1
		for i := range doc.Services {
			if doc.Services[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return store.ErrNotFound
		}
		doc.Services = append(doc.Services[:idx], doc.Services[idx+1:]...)

		carts := doc.Carts[:0]
		for _, c := range doc.Carts {
			if c.ServiceID != id {
				carts = append(carts, c)
			}
		}
		doc.Carts = carts

		wishes := doc.Wishlists[:0]
		for _, w := range doc.Wishlists {
			if w.ServiceID != id {
				wishes = append(wishes, w)
			}
		}
		doc.Wishlists = wishes
		return nil
	})
}

// Carts

func (s *Store) ListCart(ctx context.Context, userEmail string) ([]models.CartEntry, error) {
	return s.filterCarts(ctx, func(c models.CartEntry) bool { return c.UserEmail == userEmail })
}

func (s *Store) ListAllCarts(ctx context.Context) ([]models.CartEntry, error) {
	return s.filterCarts(ctx, func(models.CartEntry) bool { return true })
}

func (s *Store) ListCartByService(ctx context.Context, serviceID string) ([]models.CartEntry, error) {
	return s.filterCarts(ctx, func(c models.CartEntry) bool { return c.ServiceID == serviceID })
}

func (s *Store) filterCarts(ctx context.Context, keep func(models.CartEntry) bool) ([]models.CartEntry, error) {
	var out []models.CartEntry
	err := s.view(ctx, func(doc *document) error {
		for _, c := range doc.Carts {
			if keep(c) {
				out = append(out, c)
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].AddedAt.Before(out[j].AddedAt) })
	return out, err
}

func (s *Store) UpsertCartEntry(ctx context.Context, e models.CartEntry) (models.CartEntry, error) {
	var stored models.CartEntry
	err := s.update(ctx, func(doc *document) error {
		for i := range doc.Carts {
			c := &doc.Carts[i]
			if c.UserEmail == e.UserEmail && c.ServiceID == e.ServiceID {
				c.Quantity = e.Quantity
				c.PortfolioLink = e.PortfolioLink
				c.Message = e.Message
				c.NegotiationPrice = e.NegotiationPrice
				stored = *c
				return nil
			}
		}
		doc.Carts = append(doc.Carts, e)
		stored = e
		return nil
	})
	return stored, err
}

func (s *Store) DeleteCartEntry(ctx context.Context, id, userEmail string) error {
	return s.update(ctx, func(doc *document) error {
		carts := doc.Carts[:0]
		for _, c := range doc.Carts {
			if c.ID == id && c.UserEmail == userEmail {
				continue
			}
			carts = append(carts, c)
		}
		doc.Carts = carts
		return nil
	})
}

// Wishlists

func (s *Store) ListWishlist(ctx context.Context, userEmail string) ([]models.WishlistEntry, error) {
	var out []models.WishlistEntry
	err := s.view(ctx, func(doc *document) error {
		for _, w := range doc.Wishlists {
			if w.UserEmail == userEmail {
				out = append(out, w)
			}
		}
		return nil
	})
	return out, err
}

func (s *Store) ListAllWishlists(ctx context.Context) ([]models.WishlistEntry, error) {
	var out []models.WishlistEntry
	err := s.view(ctx, func(doc *document) error {
		out = doc.Wishlists
		return nil
	})
	return out, err
}

func (s *Store) ToggleWishlistEntry(ctx context.Context, e models.WishlistEntry) (bool, error) {
	var present bool
	err := s.update(ctx, func(doc *document) error {
		for i, w := range doc.Wishlists {
			if w.UserEmail == e.UserEmail && w.ServiceID == e.ServiceID {
				doc.Wishlists = append(doc.Wishlists[:i], doc.Wishlists[i+1:]...)
				return nil
			}
		}
		doc.Wishlists = append(doc.Wishlists, e)
		present = true
		return nil
	})
	return present, err
}

func (s *Store) DeleteWishlistEntry(ctx context.Context, id, userEmail string) error {
	return s.update(ctx, func(doc *document) error {
		wishes := doc.Wishlists[:0]
		for _, w := range doc.Wishlists {
			if w.ID == id && w.UserEmail == userEmail {
				continue
			}
			wishes = append(wishes, w)
		}
		doc.Wishlists = wishes
		return nil
	})
}

// Orders

func (s *Store) InsertOrders(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	return s.update(ctx, func(doc *document) error {
		doc.Orders = append(doc.Orders, orders...)
		return nil
	})
}

func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	err := s.view(ctx, func(doc *document) error {
		out = doc.Orders
		return nil
	})
	return out, err
}
