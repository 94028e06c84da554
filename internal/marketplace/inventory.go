package marketplace

import (
	"context"
	"sort"

	"github.com/sudo-init-do/campusgigs/internal/apperr"
	"github.com/sudo-init-do/campusgigs/internal/models"
)

func requireAdmin(email string) error {
	if !IsAdmin(email) {
		return apperr.Forbidden("Admin access only.")
	}
	return nil
}

// InventorySnapshot groups every listing by host email and every cart entry
// by student email.
func (m *Marketplace) InventorySnapshot(ctx context.Context, adminEmail string) (*models.Inventory, error) {
	if err := requireAdmin(adminEmail); err != nil {
		return nil, err
	}
	services, err := m.store.ListServices(ctx)
	if err != nil {
		return nil, internalErr("list services", err)
	}
	carts, err := m.store.ListAllCarts(ctx)
	if err != nil {
		return nil, internalErr("list carts", err)
	}

	inv := &models.Inventory{
		ServicesByHost: map[string][]models.Service{},
		CartByStudent:  map[string][]models.CartEntry{},
	}
	for _, s := range services {
		inv.ServicesByHost[s.HostEmail] = append(inv.ServicesByHost[s.HostEmail], s)
	}
	for _, e := range carts {
		inv.CartByStudent[e.UserEmail] = append(inv.CartByStudent[e.UserEmail], e)
	}
	return inv, nil
}

// InventoryDetails is InventorySnapshot with contact details for every host
// and student and cart entries joined with their listings. Groups are sorted
// by email.
func (m *Marketplace) InventoryDetails(ctx context.Context, adminEmail string) (*models.InventoryDetails, error) {
	if err := requireAdmin(adminEmail); err != nil {
		return nil, err
	}
	index, services, err := m.serviceIndex(ctx)
	if err != nil {
		return nil, err
	}
	carts, err := m.store.ListAllCarts(ctx)
	if err != nil {
		return nil, internalErr("list carts", err)
	}
	users, err := m.userIndex(ctx)
	if err != nil {
		return nil, err
	}

	hosts := map[string]*models.HostGroup{}
	for _, s := range services {
		g, ok := hosts[s.HostEmail]
		if !ok {
			g = &models.HostGroup{Email: s.HostEmail, Name: s.HostName}
			if u := users[NormalizeEmail(s.HostEmail)]; u != nil {
				g.Phone, g.USN, g.Semester = u.PhoneNumber, u.USN, u.Semester
			}
			hosts[s.HostEmail] = g
		}
		g.Services = append(g.Services, s)
	}

	students := map[string]*models.StudentGroup{}
	for _, e := range carts {
		g, ok := students[e.UserEmail]
		if !ok {
			g = &models.StudentGroup{Email: e.UserEmail, Name: models.DefaultBuyerName}
			if u := users[NormalizeEmail(e.UserEmail)]; u != nil {
				g.Name = u.Name
				g.Phone, g.USN, g.Semester = u.PhoneNumber, u.USN, u.Semester
			}
			students[e.UserEmail] = g
		}
		g.Items = append(g.Items, models.CartItem{CartEntry: e, Service: index[e.ServiceID]})
	}

	out := &models.InventoryDetails{
		Hosts:    make([]models.HostGroup, 0, len(hosts)),
		Students: make([]models.StudentGroup, 0, len(students)),
	}
	for _, g := range hosts {
		out.Hosts = append(out.Hosts, *g)
	}
	for _, g := range students {
		out.Students = append(out.Students, *g)
	}
	sort.Slice(out.Hosts, func(i, j int) bool { return out.Hosts[i].Email < out.Hosts[j].Email })
	sort.Slice(out.Students, func(i, j int) bool { return out.Students[i].Email < out.Students[j].Email })
	return out, nil
}

// Stats counts every collection. Hosts is the number of distinct listing
// owners.
func (m *Marketplace) Stats(ctx context.Context, adminEmail string) (*models.Stats, error) {
	if err := requireAdmin(adminEmail); err != nil {
		return nil, err
	}
	users, err := m.store.ListUsers(ctx)
	if err != nil {
		return nil, internalErr("list users", err)
	}
	services, err := m.store.ListServices(ctx)
	if err != nil {
		return nil, internalErr("list services", err)
	}
	carts, err := m.store.ListAllCarts(ctx)
	if err != nil {
		return nil, internalErr("list carts", err)
	}
	wishlists, err := m.store.ListAllWishlists(ctx)
	if err != nil {
		return nil, internalErr("list wishlists", err)
	}
	orders, err := m.store.ListOrders(ctx)
	if err != nil {
		return nil, internalErr("list orders", err)
	}

	hosts := map[string]struct{}{}
	for _, s := range services {
		hosts[NormalizeEmail(s.HostEmail)] = struct{}{}
	}
	return &models.Stats{
		Users:     len(users),
		Services:  len(services),
		Hosts:     len(hosts),
		Carts:     len(carts),
		Wishlists: len(wishlists),
		Orders:    len(orders),
	}, nil
}
