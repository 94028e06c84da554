// Package storetest is a behavioural suite every store.Store must pass.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudo-init-do/campusgigs/internal/models"
	"github.com/sudo-init-do/campusgigs/internal/store"
)

// Factory returns an empty store. The suite closes it.
type Factory func(t *testing.T) store.Store

// Run exercises s against the store contract.
func Run(t *testing.T, open Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"Users", testUsers},
		{"ServicesNewestFirst", testServicesOrder},
		{"ServiceNotFound", testServiceNotFound},
		{"DeleteServiceCascades", testDeleteCascades},
		{"CartUpsert", testCartUpsert},
		{"CartDeleteOwnerOnly", testCartDeleteOwnerOnly},
		{"CartByService", testCartByService},
		{"WishlistToggle", testWishlistToggle},
		{"WishlistDelete", testWishlistDelete},
		{"Orders", testOrders},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := open(t)
			t.Cleanup(func() { _ = s.Close() })
			tt.fn(t, s)
		})
	}
}

var base = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func at(i int) time.Time { return base.Add(time.Duration(i) * time.Minute) }

func newService(title, host string, created time.Time) *models.Service {
	delivery := "3 days"
	return &models.Service{
		ID:               uuid.New().String(),
		Title:            title,
		Description:      title + " description",
		Category:         "project-help",
		Price:            models.Fixed(1000),
		Currency:         models.Currency,
		HostName:         "Host",
		HostEmail:        host,
		HostRating:       models.DefaultHostRating,
		Tags:             []string{"a", "b"},
		DeliveryEstimate: &delivery,
		CreatedAt:        created,
	}
}

func cartEntry(owner, serviceID, msg string) models.CartEntry {
	return models.CartEntry{
		ID:            uuid.New().String(),
		UserEmail:     owner,
		ServiceID:     serviceID,
		Quantity:      1,
		PortfolioLink: "https://example.com/" + owner,
		Message:       msg,
		AddedAt:       base,
	}
}

func wishEntry(owner, serviceID string) models.WishlistEntry {
	return models.WishlistEntry{
		ID:        uuid.New().String(),
		UserEmail: owner,
		ServiceID: serviceID,
		AddedAt:   base,
	}
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, err := s.UserByEmail(ctx, "nobody@bmsce.ac.in")
	require.True(t, errors.Is(err, store.ErrNotFound), "got %v", err)

	u := &models.User{
		ID:        uuid.New().String(),
		Email:     "a@bmsce.ac.in",
		Name:      "A",
		Image:     "https://img/a.png",
		CreatedAt: base,
	}
	require.NoError(t, s.InsertUser(ctx, u))

	got, err := s.UserByEmail(ctx, "a@bmsce.ac.in")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "A", got.Name)
	assert.Nil(t, got.Semester)
	assert.WithinDuration(t, base, got.CreatedAt, time.Millisecond)

	phone, usn, sem := "9999", "1BM24CS001", 3
	got.Name = "A2"
	got.PhoneNumber, got.USN, got.Semester = &phone, &usn, &sem
	require.NoError(t, s.UpdateUser(ctx, got))

	again, err := s.UserByEmail(ctx, "a@bmsce.ac.in")
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)
	assert.Equal(t, "A2", again.Name)
	require.NotNil(t, again.Semester)
	assert.Equal(t, 3, *again.Semester)
	assert.Equal(t, "1BM24CS001", *again.USN)

	again.USN = nil
	require.NoError(t, s.UpdateUser(ctx, again))
	cleared, err := s.UserByEmail(ctx, "a@bmsce.ac.in")
	require.NoError(t, err)
	assert.Nil(t, cleared.USN)

	missing := &models.User{Email: "ghost@bmsce.ac.in"}
	assert.ErrorIs(t, s.UpdateUser(ctx, missing), store.ErrNotFound)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func testServicesOrder(t *testing.T, s store.Store) {
	ctx := context.Background()
	older := newService("older", "h@bmsce.ac.in", at(0))
	newer := newService("newer", "h@bmsce.ac.in", at(1))
	newer.Price = models.Range(1000, 2000)
	require.NoError(t, s.InsertService(ctx, older))
	require.NoError(t, s.InsertService(ctx, newer))

	list, err := s.ListServices(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "newer", list[0].Title)
	assert.Equal(t, "older", list[1].Title)
	assert.Equal(t, models.Range(1000, 2000), list[0].Price)
	assert.Equal(t, []string{"a", "b"}, list[1].Tags)
	require.NotNil(t, list[1].DeliveryEstimate)
	assert.Nil(t, list[1].PortfolioLink)

	got, err := s.GetService(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Fixed(1000), got.Price)
	assert.Equal(t, models.Currency, got.Currency)
}

func testServiceNotFound(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, err := s.GetService(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteService(ctx, "missing"), store.ErrNotFound)
}

func testDeleteCascades(t *testing.T, s store.Store) {
	ctx := context.Background()
	doomed := newService("doomed", "h@bmsce.ac.in", at(0))
	kept := newService("kept", "h@bmsce.ac.in", at(1))
	require.NoError(t, s.InsertService(ctx, doomed))
	require.NoError(t, s.InsertService(ctx, kept))

	for _, owner := range []string{"a@bmsce.ac.in", "b@bmsca.org"} {
		_, err := s.UpsertCartEntry(ctx, cartEntry(owner, doomed.ID, "hi"))
		require.NoError(t, err)
		_, err = s.UpsertCartEntry(ctx, cartEntry(owner, kept.ID, "hi"))
		require.NoError(t, err)
		_, err = s.ToggleWishlistEntry(ctx, wishEntry(owner, doomed.ID))
		require.NoError(t, err)
		_, err = s.ToggleWishlistEntry(ctx, wishEntry(owner, kept.ID))
		require.NoError(t, err)
	}

	require.NoError(t, s.DeleteService(ctx, doomed.ID))

	_, err := s.GetService(ctx, doomed.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	carts, err := s.ListAllCarts(ctx)
	require.NoError(t, err)
	assert.Len(t, carts, 2)
	for _, c := range carts {
		assert.Equal(t, kept.ID, c.ServiceID)
	}

	wishes, err := s.ListAllWishlists(ctx)
	require.NoError(t, err)
	assert.Len(t, wishes, 2)
	for _, w := range wishes {
		assert.Equal(t, kept.ID, w.ServiceID)
	}
}

func testCartUpsert(t *testing.T, s store.Store) {
	ctx := context.Background()
	svc := newService("svc", "h@bmsce.ac.in", at(0))
	require.NoError(t, s.InsertService(ctx, svc))

	first, err := s.UpsertCartEntry(ctx, cartEntry("a@bmsce.ac.in", svc.ID, "first"))
	require.NoError(t, err)

	second := cartEntry("a@bmsce.ac.in", svc.ID, "second")
	second.Quantity = 3
	offer := 800.0
	second.NegotiationPrice = &offer
	stored, err := s.UpsertCartEntry(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.Equal(t, "second", stored.Message)

	cart, err := s.ListCart(ctx, "a@bmsce.ac.in")
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, first.ID, cart[0].ID)
	assert.Equal(t, "second", cart[0].Message)
	assert.Equal(t, 3, cart[0].Quantity)
	require.NotNil(t, cart[0].NegotiationPrice)
	assert.Equal(t, 800.0, *cart[0].NegotiationPrice)

	other, err := s.ListCart(ctx, "b@bmsce.ac.in")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func testCartDeleteOwnerOnly(t *testing.T, s store.Store) {
	ctx := context.Background()
	svc := newService("svc", "h@bmsce.ac.in", at(0))
	require.NoError(t, s.InsertService(ctx, svc))
	e, err := s.UpsertCartEntry(ctx, cartEntry("a@bmsce.ac.in", svc.ID, "hi"))
	require.NoError(t, err)

	require.NoError(t, s.DeleteCartEntry(ctx, e.ID, "intruder@bmsce.ac.in"))
	cart, err := s.ListCart(ctx, "a@bmsce.ac.in")
	require.NoError(t, err)
	assert.Len(t, cart, 1)

	require.NoError(t, s.DeleteCartEntry(ctx, e.ID, "a@bmsce.ac.in"))
	require.NoError(t, s.DeleteCartEntry(ctx, e.ID, "a@bmsce.ac.in"))
	cart, err = s.ListCart(ctx, "a@bmsce.ac.in")
	require.NoError(t, err)
	assert.Empty(t, cart)
}

func testCartByService(t *testing.T, s store.Store) {
	ctx := context.Background()
	a := newService("a", "h@bmsce.ac.in", at(0))
	b := newService("b", "h@bmsce.ac.in", at(1))
	require.NoError(t, s.InsertService(ctx, a))
	require.NoError(t, s.InsertService(ctx, b))
	for _, owner := range []string{"x@bmsce.ac.in", "y@bmsce.ac.in"} {
		_, err := s.UpsertCartEntry(ctx, cartEntry(owner, a.ID, "for a"))
		require.NoError(t, err)
	}
	_, err := s.UpsertCartEntry(ctx, cartEntry("x@bmsce.ac.in", b.ID, "for b"))
	require.NoError(t, err)

	interests, err := s.ListCartByService(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, interests, 2)
	for _, e := range interests {
		assert.Equal(t, "for a", e.Message)
	}
}

func testWishlistToggle(t *testing.T, s store.Store) {
	ctx := context.Background()
	svc := newService("svc", "h@bmsce.ac.in", at(0))
	require.NoError(t, s.InsertService(ctx, svc))

	present, err := s.ToggleWishlistEntry(ctx, wishEntry("a@bmsce.ac.in", svc.ID))
	require.NoError(t, err)
	assert.True(t, present)
	list, err := s.ListWishlist(ctx, "a@bmsce.ac.in")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, svc.ID, list[0].ServiceID)

	present, err = s.ToggleWishlistEntry(ctx, wishEntry("a@bmsce.ac.in", svc.ID))
	require.NoError(t, err)
	assert.False(t, present)
	list, err = s.ListWishlist(ctx, "a@bmsce.ac.in")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func testWishlistDelete(t *testing.T, s store.Store) {
	ctx := context.Background()
	e := wishEntry("a@bmsce.ac.in", "svc-1")
	_, err := s.ToggleWishlistEntry(ctx, e)
	require.NoError(t, err)

	require.NoError(t, s.DeleteWishlistEntry(ctx, e.ID, "b@bmsce.ac.in"))
	list, err := s.ListWishlist(ctx, "a@bmsce.ac.in")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.DeleteWishlistEntry(ctx, e.ID, "a@bmsce.ac.in"))
	require.NoError(t, s.DeleteWishlistEntry(ctx, "never-existed", "a@bmsce.ac.in"))
	list, err = s.ListWishlist(ctx, "a@bmsce.ac.in")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func testOrders(t *testing.T, s store.Store) {
	ctx := context.Background()
	mk := func(buyer string, i int, price models.Price) models.Order {
		return models.Order{
			ID:         uuid.New().String(),
			BuyerEmail: buyer,
			BuyerName:  "Buyer",
			HostEmail:  "h@bmsce.ac.in",
			HostName:   "Host",
			ServiceID:  "svc",
			Message:    "hello",
			Status:     models.StatusCarted,
			Items: []models.OrderItem{{
				ServiceID: "svc", Title: "T", ServiceTitle: "T", Price: price, Quantity: 2,
			}},
			Total:        price.Midpoint() * 2,
			Currency:     models.Currency,
			PlacedAt:     at(i),
			CreatedAt:    at(i),
			LastActivity: at(i),
		}
	}
	require.NoError(t, s.InsertOrders(ctx, nil))
	require.NoError(t, s.InsertOrders(ctx, []models.Order{
		mk("a@bmsce.ac.in", 0, models.Range(1000, 2000)),
		mk("b@bmsce.ac.in", 1, models.Fixed(500)),
	}))
	require.NoError(t, s.InsertOrders(ctx, []models.Order{mk("c@bmsce.ac.in", 2, models.Price{})}))

	orders, err := s.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, "a@bmsce.ac.in", orders[0].BuyerEmail)
	assert.Equal(t, 3000.0, orders[0].Total)
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, models.Range(1000, 2000), orders[0].Items[0].Price)
	assert.Equal(t, 2, orders[0].Items[0].Quantity)
	assert.Equal(t, models.StatusCarted, orders[1].Status)
	assert.True(t, orders[2].Items[0].Price.IsZero())
}
