// Package store defines the persistence contract the marketplace runs on.
// Implementations live in the jsonfile, sqlite and postgres subpackages.
package store

import (
	"context"
	"errors"

	"github.com/sudo-init-do/campusgigs/internal/models"
)

// ErrNotFound is returned when a keyed lookup matches nothing.
var ErrNotFound = errors.New("store: not found")

type UserRepo interface {
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	InsertUser(ctx context.Context, u *models.User) error
	// UpdateUser overwrites the row with u.Email.
	UpdateUser(ctx context.Context, u *models.User) error
}

type ServiceRepo interface {
	// ListServices returns the catalog, most recent first.
	ListServices(ctx context.Context) ([]models.Service, error)
	GetService(ctx context.Context, id string) (*models.Service, error)
	InsertService(ctx context.Context, s *models.Service) error
	// DeleteService removes the service together with every cart and
	// wishlist entry that references it.
	DeleteService(ctx context.Context, id string) error
}

type CartRepo interface {
	// ListCart returns one owner's entries, oldest first.
	ListCart(ctx context.Context, userEmail string) ([]models.CartEntry, error)
	ListAllCarts(ctx context.Context) ([]models.CartEntry, error)
	ListCartByService(ctx context.Context, serviceID string) ([]models.CartEntry, error)
	// UpsertCartEntry inserts e, or when the (UserEmail, ServiceID) pair
	// exists, overwrites quantity, portfolio link, message and negotiation
	// price of that row. The stored row is returned.
	UpsertCartEntry(ctx context.Context, e models.CartEntry) (models.CartEntry, error)
	// DeleteCartEntry removes entry id if userEmail owns it. Missing rows are
	// not an error.
	DeleteCartEntry(ctx context.Context, id, userEmail string) error
}

type WishlistRepo interface {
	ListWishlist(ctx context.Context, userEmail string) ([]models.WishlistEntry, error)
	ListAllWishlists(ctx context.Context) ([]models.WishlistEntry, error)
	// ToggleWishlistEntry deletes the (UserEmail, ServiceID) row if present,
	// otherwise inserts e. It reports whether the pair is present afterwards.
	ToggleWishlistEntry(ctx context.Context, e models.WishlistEntry) (bool, error)
	DeleteWishlistEntry(ctx context.Context, id, userEmail string) error
}

type OrderRepo interface {
	InsertOrders(ctx context.Context, orders []models.Order) error
	// ListOrders returns every order in placement order.
	ListOrders(ctx context.Context) ([]models.Order, error)
}

// Store is the full persistence backend.
type Store interface {
	UserRepo
	ServiceRepo
	CartRepo
	WishlistRepo
	OrderRepo
	Ping(ctx context.Context) error
	Close() error
}
