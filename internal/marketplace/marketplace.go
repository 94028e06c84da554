// Package marketplace implements the campus marketplace rules on top of a
// store.Store: sign-in, listings, carts, wishlists, orders and the admin
// views. Every failure a caller should show to a user is an *apperr.Error.
package marketplace

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sudo-init-do/campusgigs/internal/apperr"
	"github.com/sudo-init-do/campusgigs/internal/models"
	"github.com/sudo-init-do/campusgigs/internal/store"
)

// Events receives business events, e.g. for metrics.
type Events interface {
	UserSignedIn(created bool)
	ServiceCreated()
	ServiceDeleted()
	CartUpdated()
	OrdersPlaced(n int)
}

type nopEvents struct{}

func (nopEvents) UserSignedIn(bool) {}
func (nopEvents) ServiceCreated()   {}
func (nopEvents) ServiceDeleted()   {}
func (nopEvents) CartUpdated()      {}
func (nopEvents) OrdersPlaced(int)  {}

type Marketplace struct {
	store       store.Store
	description DescriptionPolicy
	events      Events
	now         func() time.Time
	newID       func() string
}

type Option func(*Marketplace)

func WithDescriptionPolicy(p DescriptionPolicy) Option {
	return func(m *Marketplace) { m.description = p }
}

func WithEvents(e Events) Option {
	return func(m *Marketplace) {
		if e != nil {
			m.events = e
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Marketplace) { m.now = now }
}

func WithIDGenerator(f func() string) Option {
	return func(m *Marketplace) { m.newID = f }
}

func New(s store.Store, opts ...Option) *Marketplace {
	m := &Marketplace{
		store:       s,
		description: DefaultDescriptionPolicy,
		events:      nopEvents{},
		now:         func() time.Time { return time.Now().UTC() },
		newID:       func() string { return uuid.New().String() },
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// DescriptionPolicy returns the active description rule.
func (m *Marketplace) DescriptionPolicy() DescriptionPolicy { return m.description }

// Ping checks the backing store.
func (m *Marketplace) Ping(ctx context.Context) error { return m.store.Ping(ctx) }

func internalErr(op string, err error) error {
	return &apperr.Error{Kind: apperr.KindInternal, Message: "internal error", Err: fmt.Errorf("%s: %w", op, err)}
}

func isNotFound(err error) bool { return errors.Is(err, store.ErrNotFound) }

// serviceIndex loads the catalog keyed by id.
func (m *Marketplace) serviceIndex(ctx context.Context) (map[string]*models.Service, []models.Service, error) {
	services, err := m.store.ListServices(ctx)
	if err != nil {
		return nil, nil, internalErr("list services", err)
	}
	idx := make(map[string]*models.Service, len(services))
	for i := range services {
		idx[services[i].ID] = &services[i]
	}
	return idx, services, nil
}

func (m *Marketplace) userIndex(ctx context.Context) (map[string]*models.User, error) {
	users, err := m.store.ListUsers(ctx)
	if err != nil {
		return nil, internalErr("list users", err)
	}
	idx := make(map[string]*models.User, len(users))
	for i := range users {
		idx[users[i].Email] = &users[i]
	}
	return idx, nil
}

func joinCart(entries []models.CartEntry, services map[string]*models.Service) []models.CartItem {
	out := make([]models.CartItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, models.CartItem{CartEntry: e, Service: services[e.ServiceID]})
	}
	return out
}

func joinWishlist(entries []models.WishlistEntry, services map[string]*models.Service) []models.WishlistItem {
	out := make([]models.WishlistItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, models.WishlistItem{WishlistEntry: e, Service: services[e.ServiceID]})
	}
	return out
}
