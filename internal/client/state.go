package client

import (
	"strings"

	"github.com/sudo-init-do/campusgigs/internal/models"
)

// LocalPrefix marks entries that exist only on this client.
const LocalPrefix = "local-"

func isLocal(id string) bool { return strings.HasPrefix(id, LocalPrefix) }

// State is everything a front end renders.
type State struct {
	User      *models.User
	Services  []models.Service
	Fallback  bool // Services is the built-in example catalog
	Cart      []models.CartItem
	Wishlist  []models.WishlistItem
	Orders    []models.OrderView
	Inventory *models.InventoryDetails
	Notice    string
}

// Action is one state transition. Reduce applies it.
type Action interface{ isAction() }

type SignedIn struct{ User models.User }

type SignedOut struct{}

type CatalogLoaded struct {
	Services []models.Service
	Fallback bool
}

// CartLoaded replaces the server rows of the cart. Local rows are kept
// after them.
type CartLoaded struct{ Items []models.CartItem }

type WishlistLoaded struct{ Items []models.WishlistItem }

type OrdersLoaded struct{ Orders []models.OrderView }

type InventoryLoaded struct{ Details models.InventoryDetails }

type ProfileUpdated struct{ Profile models.Profile }

type CartItemAdded struct{ Item models.CartItem }

type CartItemRemoved struct{ ID string }

type WishlistItemAdded struct{ Item models.WishlistItem }

type WishlistItemRemoved struct{ ID string }

type NoticeSet struct{ Text string }

func (SignedIn) isAction()            {}
func (SignedOut) isAction()           {}
func (CatalogLoaded) isAction()       {}
func (CartLoaded) isAction()          {}
func (WishlistLoaded) isAction()      {}
func (OrdersLoaded) isAction()        {}
func (InventoryLoaded) isAction()     {}
func (ProfileUpdated) isAction()      {}
func (CartItemAdded) isAction()       {}
func (CartItemRemoved) isAction()     {}
func (WishlistItemAdded) isAction()   {}
func (WishlistItemRemoved) isAction() {}
func (NoticeSet) isAction()           {}

// Reduce returns the state after a. It never mutates s.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case SignedIn:
		u := a.User
		s.User = &u
	case SignedOut:
		return State{Services: s.Services, Fallback: s.Fallback}
	case CatalogLoaded:
		s.Services = append([]models.Service(nil), a.Services...)
		s.Fallback = a.Fallback
	case CartLoaded:
		s.Cart = mergeLocal(a.Items, s.Cart, func(i models.CartItem) string { return i.ID })
	case WishlistLoaded:
		s.Wishlist = mergeLocal(a.Items, s.Wishlist, func(i models.WishlistItem) string { return i.ID })
	case OrdersLoaded:
		s.Orders = append([]models.OrderView(nil), a.Orders...)
	case InventoryLoaded:
		d := a.Details
		s.Inventory = &d
	case ProfileUpdated:
		if s.User != nil {
			u := *s.User
			u.PhoneNumber, u.USN, u.Semester = a.Profile.PhoneNumber, a.Profile.USN, a.Profile.Semester
			s.User = &u
		}
	case CartItemAdded:
		s.Cart = append(append([]models.CartItem(nil), s.Cart...), a.Item)
	case CartItemRemoved:
		s.Cart = without(s.Cart, func(i models.CartItem) bool { return i.ID == a.ID })
	case WishlistItemAdded:
		s.Wishlist = append(append([]models.WishlistItem(nil), s.Wishlist...), a.Item)
	case WishlistItemRemoved:
		s.Wishlist = without(s.Wishlist, func(i models.WishlistItem) bool { return i.ID == a.ID })
	case NoticeSet:
		s.Notice = a.Text
	}
	return s
}

// mergeLocal returns server rows followed by the local rows of current.
func mergeLocal[T any](server, current []T, id func(T) string) []T {
	out := make([]T, 0, len(server)+len(current))
	out = append(out, server...)
	for _, it := range current {
		if isLocal(id(it)) {
			out = append(out, it)
		}
	}
	return out
}

func without[T any](items []T, drop func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if !drop(it) {
			out = append(out, it)
		}
	}
	return out
}

// FilterServices matches query against title, description, category, tags
// and host name, case-insensitively. Category "all" (or "") matches every
// listing.
func FilterServices(services []models.Service, query, category string) []models.Service {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Service, 0, len(services))
	for _, s := range services {
		if category != "" && category != "all" && s.Category != category {
			continue
		}
		if q != "" && !matches(s, q) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func matches(s models.Service, q string) bool {
	fields := append([]string{s.Title, s.Description, s.Category, s.HostName}, s.Tags...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
