package marketplace

import (
	"context"
	"errors"
	"strings"

	"github.com/sudo-init-do/campusgigs/internal/alerts"
	"github.com/sudo-init-do/campusgigs/internal/apperr"
	"github.com/sudo-init-do/campusgigs/internal/models"
)

// CartInput is a "show interest" submission.
type CartInput struct {
	UserEmail        string   `json:"userEmail"`
	ServiceID        string   `json:"serviceId"`
	Quantity         int      `json:"quantity"`
	PortfolioLink    string   `json:"portfolioLink"`
	Message          string   `json:"message"`
	NegotiationPrice *float64 `json:"negotiationPrice"`
}

// GetCart returns the owner's cart joined with listings.
func (m *Marketplace) GetCart(ctx context.Context, ownerEmail string) ([]models.CartItem, error) {
	owner := NormalizeEmail(ownerEmail)
	if owner == "" {
		return nil, apperr.BadRequest("userEmail query param is required.")
	}
	return m.cart(ctx, owner)
}

func (m *Marketplace) cart(ctx context.Context, owner string) ([]models.CartItem, error) {
	entries, err := m.store.ListCart(ctx, owner)
	if err != nil {
		return nil, internalErr("list cart", err)
	}
	services, _, err := m.serviceIndex(ctx)
	if err != nil {
		return nil, err
	}
	return joinCart(entries, services), nil
}

// AddOrUpdateCartEntry records interest in a service. A second submission
// for the same service replaces the first one's details.
func (m *Marketplace) AddOrUpdateCartEntry(ctx context.Context, in CartInput) ([]models.CartItem, error) {
	owner := NormalizeEmail(in.UserEmail)
	serviceID := strings.TrimSpace(in.ServiceID)
	if owner == "" || serviceID == "" {
		return nil, apperr.BadRequest("userEmail and serviceId are required.")
	}
	link := strings.TrimSpace(in.PortfolioLink)
	if link == "" {
		return nil, apperr.BadRequest("Portfolio link is required.")
	}
	if err := CheckMessage(in.Message); err != nil {
		return nil, err
	}
	if in.NegotiationPrice != nil && !(*in.NegotiationPrice > 0) {
		return nil, apperr.BadRequest("Negotiation price must be greater than zero.")
	}

	if _, err := m.store.GetService(ctx, serviceID); err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("Service not found.")
		}
		return nil, internalErr("get service", err)
	}

	qty := in.Quantity
	if qty < 1 {
		qty = 1
	}
	entry := models.CartEntry{
		ID:               m.newID(),
		UserEmail:        owner,
		ServiceID:        serviceID,
		Quantity:         qty,
		PortfolioLink:    link,
		Message:          strings.TrimSpace(in.Message),
		NegotiationPrice: in.NegotiationPrice,
		AddedAt:          m.now(),
	}
	if _, err := m.store.UpsertCartEntry(ctx, entry); err != nil {
		return nil, internalErr("upsert cart entry", err)
	}
	m.events.CartUpdated()
	return m.cart(ctx, owner)
}

// RemoveCartEntry deletes one of the owner's entries. Unknown ids are
// ignored.
func (m *Marketplace) RemoveCartEntry(ctx context.Context, id, ownerEmail string) ([]models.CartItem, error) {
	owner := NormalizeEmail(ownerEmail)
	if owner == "" {
		return nil, apperr.BadRequest("userEmail query param is required.")
	}
	if err := m.store.DeleteCartEntry(ctx, id, owner); err != nil {
		return nil, internalErr("delete cart entry", err)
	}
	m.events.CartUpdated()
	return m.cart(ctx, owner)
}

// ContactHosts builds the email a student sends to every host in their
// cart.
func (m *Marketplace) ContactHosts(ctx context.Context, ownerEmail string) (*alerts.Envelope, error) {
	items, err := m.GetCart(ctx, ownerEmail)
	if err != nil {
		return nil, err
	}
	env, err := alerts.HostInquiry(items)
	if errors.Is(err, alerts.ErrNoRecipients) {
		return nil, apperr.BadRequest("No hosts to contact.")
	}
	if err != nil {
		return nil, internalErr("compose inquiry", err)
	}
	return &env, nil
}
