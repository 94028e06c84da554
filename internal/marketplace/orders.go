package marketplace

import (
	"context"
	"time"

	"github.com/sudo-init-do/campusgigs/internal/apperr"
	"github.com/sudo-init-do/campusgigs/internal/models"
)

// PlaceOrders turns each of the buyer's cart entries into an order. The cart
// is left as it is: no payment is captured yet.
func (m *Marketplace) PlaceOrders(ctx context.Context, buyerEmail string) ([]models.Order, error) {
	buyer := NormalizeEmail(buyerEmail)
	if buyer == "" {
		return nil, apperr.BadRequest("userEmail is required.")
	}
	entries, err := m.store.ListCart(ctx, buyer)
	if err != nil {
		return nil, internalErr("list cart", err)
	}
	if len(entries) == 0 {
		return nil, apperr.BadRequest("Cart is empty.")
	}
	services, _, err := m.serviceIndex(ctx)
	if err != nil {
		return nil, err
	}

	buyerName := models.DefaultBuyerName
	u, err := m.store.UserByEmail(ctx, buyer)
	switch {
	case err == nil && u.Name != "":
		buyerName = u.Name
	case err != nil && !isNotFound(err):
		return nil, internalErr("get buyer", err)
	}

	now := m.now()
	orders := make([]models.Order, 0, len(entries))
	for _, e := range entries {
		orders = append(orders, m.newOrder(e, services[e.ServiceID], buyer, buyerName, now))
	}
	if err := m.store.InsertOrders(ctx, orders); err != nil {
		return nil, internalErr("insert orders", err)
	}
	m.events.OrdersPlaced(len(orders))
	return orders, nil
}

// orderTotal is the price midpoint times quantity, zero when the listing
// is gone.
func orderTotal(svc *models.Service, qty int) float64 {
	if svc == nil {
		return 0
	}
	return svc.Price.Midpoint() * float64(qty)
}

func (m *Marketplace) newOrder(e models.CartEntry, svc *models.Service, buyer, buyerName string, now time.Time) models.Order {
	qty := e.Quantity
	if qty < 1 {
		qty = 1
	}
	item := models.OrderItem{ServiceID: e.ServiceID, Quantity: qty}
	o := models.Order{
		ID:            m.newID(),
		BuyerEmail:    buyer,
		BuyerName:     buyerName,
		ServiceID:     e.ServiceID,
		PortfolioLink: e.PortfolioLink,
		Message:       e.Message,
		Status:        models.StatusCarted,
		Total:         orderTotal(svc, qty),
		Currency:      models.Currency,
		PlacedAt:      now,
		CreatedAt:     now,
		LastActivity:  now,
	}
	if svc != nil {
		o.HostEmail = svc.HostEmail
		o.HostName = svc.HostName
		o.ListingTitle = svc.Title
		o.ListingDescription = svc.Description
		item.Title = svc.Title
		item.ServiceTitle = svc.Title
		item.Price = svc.Price
	}
	o.Items = []models.OrderItem{item}
	return o
}

// ListOrders applies the first matching visibility tier: the admin sees
// everything, a host sees orders on their listings, anyone else sees the
// orders they placed.
func (m *Marketplace) ListOrders(ctx context.Context, requesterEmail string) ([]models.OrderView, error) {
	requester := NormalizeEmail(requesterEmail)
	if requester == "" {
		return nil, apperr.BadRequest("userEmail query param is required.")
	}
	all, err := m.store.ListOrders(ctx)
	if err != nil {
		return nil, internalErr("list orders", err)
	}

	var visible []models.Order
	switch {
	case IsAdmin(requester):
		visible = all
	default:
		_, services, err := m.serviceIndex(ctx)
		if err != nil {
			return nil, err
		}
		hosted := map[string]bool{}
		for _, s := range services {
			if NormalizeEmail(s.HostEmail) == requester {
				hosted[s.ID] = true
			}
		}
		for _, o := range all {
			if len(hosted) > 0 {
				if hosted[o.ServiceID] || NormalizeEmail(o.HostEmail) == requester {
					visible = append(visible, o)
				}
			} else if NormalizeEmail(o.BuyerEmail) == requester {
				visible = append(visible, o)
			}
		}
	}

	users, err := m.userIndex(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.OrderView, 0, len(visible))
	for _, o := range visible {
		v := models.OrderView{Order: o}
		if u := users[NormalizeEmail(o.BuyerEmail)]; u != nil {
			v.BuyerUSN = u.USN
			v.BuyerPhone = u.PhoneNumber
			v.BuyerSemester = u.Semester
		}
		out = append(out, v)
	}
	return out, nil
}
