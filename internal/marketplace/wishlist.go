package marketplace

import (
	"context"
	"strings"

	"github.com/sudo-init-do/campusgigs/internal/apperr"
	"github.com/sudo-init-do/campusgigs/internal/models"
)

func (m *Marketplace) GetWishlist(ctx context.Context, ownerEmail string) ([]models.WishlistItem, error) {
	owner := NormalizeEmail(ownerEmail)
	if owner == "" {
		return nil, apperr.BadRequest("userEmail query param is required.")
	}
	return m.wishlist(ctx, owner)
}

func (m *Marketplace) wishlist(ctx context.Context, owner string) ([]models.WishlistItem, error) {
	entries, err := m.store.ListWishlist(ctx, owner)
	if err != nil {
		return nil, internalErr("list wishlist", err)
	}
	services, _, err := m.serviceIndex(ctx)
	if err != nil {
		return nil, err
	}
	return joinWishlist(entries, services), nil
}

// ToggleWishlistEntry saves the service, or unsaves it if already saved.
func (m *Marketplace) ToggleWishlistEntry(ctx context.Context, ownerEmail, serviceID string) ([]models.WishlistItem, error) {
	owner := NormalizeEmail(ownerEmail)
	serviceID = strings.TrimSpace(serviceID)
	if owner == "" || serviceID == "" {
		return nil, apperr.BadRequest("userEmail and serviceId are required.")
	}
	_, err := m.store.ToggleWishlistEntry(ctx, models.WishlistEntry{
		ID:        m.newID(),
		UserEmail: owner,
		ServiceID: serviceID,
		AddedAt:   m.now(),
	})
	if err != nil {
		return nil, internalErr("toggle wishlist", err)
	}
	return m.wishlist(ctx, owner)
}

// RemoveWishlistEntry deletes one of the owner's entries by id.
func (m *Marketplace) RemoveWishlistEntry(ctx context.Context, id, ownerEmail string) ([]models.WishlistItem, error) {
	owner := NormalizeEmail(ownerEmail)
	if owner == "" {
		return nil, apperr.BadRequest("userEmail query param is required.")
	}
	if err := m.store.DeleteWishlistEntry(ctx, id, owner); err != nil {
		return nil, internalErr("delete wishlist entry", err)
	}
	return m.wishlist(ctx, owner)
}
