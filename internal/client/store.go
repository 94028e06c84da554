package client

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sudo-init-do/campusgigs/internal/alerts"
	"github.com/sudo-init-do/campusgigs/internal/apperr"
	"github.com/sudo-init-do/campusgigs/internal/auth"
	"github.com/sudo-init-do/campusgigs/internal/catalog"
	"github.com/sudo-init-do/campusgigs/internal/marketplace"
	"github.com/sudo-init-do/campusgigs/internal/models"
)

// Notices shown to the user.
const (
	NoticeFallbackCatalog = "Backend offline, showing fallback services."
	NoticeLocalSession    = "Backend auth offline, using local session."
	NoticeSavedLocally    = "Backend offline, saved on this device only."
	NoticeSignedIn        = "Signed in successfully."
	NoticeSignedOut       = "Signed out."
	NoticePaymentPending  = "Payment gateway not ready"
)

// Store owns a State and changes it only through Dispatch. Writes go to the
// server when it is reachable and are kept locally, with local- ids, when
// it is not. Local entries are never pushed to the server later.
type Store struct {
	api   *API
	local *LocalFile
	now   func() time.Time

	mu    sync.Mutex
	state State
}

// NewStore restores the session and local entries saved in local, which may
// be nil.
func NewStore(api *API, local *LocalFile) (*Store, error) {
	s := &Store{api: api, local: local, now: time.Now}
	d, err := local.load()
	if err != nil {
		return nil, err
	}
	s.state = State{User: d.User, Cart: d.Cart, Wishlist: d.Wishlist}
	return s, nil
}

// State returns a snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies a and persists the local part of the new state. Without
// a signed-in user nothing is kept on disk.
func (s *Store) Dispatch(a Action) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, a)
	if s.state.User == nil {
		return s.state, s.local.remove()
	}
	return s.state, s.local.save(s.state)
}

func (s *Store) notify(text string) { _, _ = s.Dispatch(NoticeSet{Text: text}) }

func (s *Store) user() (*models.User, error) {
	u := s.State().User
	if u == nil {
		return nil, apperr.Unauthorized("Please sign in first.")
	}
	return u, nil
}

func localID() string { return LocalPrefix + uuid.NewString() }

// isServerID reports whether id can exist on the server. Example catalog
// entries (seed-*) cannot.
func isServerID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// LoadCatalog fetches listings, falling back to the example catalog when the
// server is unreachable or has nothing listed.
func (s *Store) LoadCatalog(ctx context.Context) ([]models.Service, error) {
	services, err := s.api.ListServices(ctx)
	switch {
	case IsOffline(err):
		_, err = s.Dispatch(CatalogLoaded{Services: catalog.Fallback(), Fallback: true})
		s.notify(NoticeFallbackCatalog)
	case err != nil:
		return nil, err
	case len(services) == 0:
		_, err = s.Dispatch(CatalogLoaded{Services: catalog.Fallback(), Fallback: true})
	default:
		_, err = s.Dispatch(CatalogLoaded{Services: services})
	}
	return s.State().Services, err
}

// SignIn logs in, or keeps a local session when the server is unreachable.
func (s *Store) SignIn(ctx context.Context, in marketplace.LoginInput) (*models.User, error) {
	if in.Credential != "" {
		id, err := auth.DecodeCredential(in.Credential)
		if err != nil {
			return nil, apperr.BadRequest("Google sign-in failed. Please try again.")
		}
		if in.Email == "" {
			in.Email = id.Email
		}
		if in.Name == "" {
			in.Name = id.Name
		}
		if in.Image == "" {
			in.Image = id.Image
		}
	}
	email := marketplace.NormalizeEmail(in.Email)
	if !marketplace.CanSignIn(email) {
		return nil, apperr.Forbidden("Use your college email domain.")
	}
	in.Email = email

	res, err := s.api.Login(ctx, in)
	var u models.User
	switch {
	case IsOffline(err):
		u = models.User{Email: email, Name: in.Name, Image: in.Image, IsAdmin: marketplace.IsAdmin(email)}
		s.notify(NoticeLocalSession)
	case err != nil:
		return nil, err
	default:
		u = res.User
		s.notify(NoticeSignedIn)
	}
	if _, err := s.Dispatch(SignedIn{User: u}); err != nil {
		return nil, err
	}
	return &u, nil
}

// SignOut forgets the session and every local entry.
func (s *Store) SignOut() error {
	_, err := s.Dispatch(SignedOut{})
	s.notify(NoticeSignedOut)
	return err
}

// Refresh reloads the server cart and wishlist. Offline, the current state
// is kept.
func (s *Store) Refresh(ctx context.Context) error {
	u, err := s.user()
	if err != nil {
		return err
	}
	cart, err := s.api.GetCart(ctx, u.Email)
	if IsOffline(err) {
		return nil
	}
	if err != nil {
		return err
	}
	wish, err := s.api.GetWishlist(ctx, u.Email)
	if IsOffline(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := s.Dispatch(CartLoaded{Items: cart}); err != nil {
		return err
	}
	_, err = s.Dispatch(WishlistLoaded{Items: wish})
	return err
}

func (s *Store) findService(id string) *models.Service {
	for _, svc := range s.State().Services {
		if svc.ID == id {
			svc := svc
			return &svc
		}
	}
	return nil
}

// Interest is what a student submits when adding a listing to their cart.
type Interest struct {
	Quantity         int
	PortfolioLink    string
	Message          string
	NegotiationPrice *float64
}

// AddToCart records interest in serviceID.
func (s *Store) AddToCart(ctx context.Context, serviceID string, in Interest) ([]models.CartItem, error) {
	u, err := s.user()
	if err != nil {
		return nil, apperr.Unauthorized("Please sign in to show interest.")
	}
	svc := s.findService(serviceID)
	if svc == nil {
		return nil, apperr.NotFound("Service not found.")
	}
	if strings.TrimSpace(in.PortfolioLink) == "" {
		return nil, apperr.BadRequest("Portfolio link is required.")
	}
	if err := marketplace.CheckMessage(in.Message); err != nil {
		return nil, err
	}

	if isServerID(serviceID) {
		items, err := s.api.AddToCart(ctx, marketplace.CartInput{
			UserEmail:        u.Email,
			ServiceID:        serviceID,
			Quantity:         in.Quantity,
			PortfolioLink:    in.PortfolioLink,
			Message:          in.Message,
			NegotiationPrice: in.NegotiationPrice,
		})
		if !IsOffline(err) {
			if err != nil {
				return nil, err
			}
			st, err := s.Dispatch(CartLoaded{Items: items})
			return st.Cart, err
		}
		s.notify(NoticeSavedLocally)
	}

	qty := in.Quantity
	if qty < 1 {
		qty = 1
	}
	st, err := s.Dispatch(CartItemAdded{Item: models.CartItem{
		CartEntry: models.CartEntry{
			ID:               localID(),
			UserEmail:        u.Email,
			ServiceID:        serviceID,
			Quantity:         qty,
			PortfolioLink:    strings.TrimSpace(in.PortfolioLink),
			Message:          strings.TrimSpace(in.Message),
			NegotiationPrice: in.NegotiationPrice,
			AddedAt:          s.now().UTC(),
		},
		Service: svc,
	}})
	return st.Cart, err
}

// RemoveFromCart drops an entry. Offline, server rows disappear locally
// until the next Refresh.
func (s *Store) RemoveFromCart(ctx context.Context, id string) ([]models.CartItem, error) {
	u, err := s.user()
	if err != nil {
		return nil, err
	}
	if !isLocal(id) {
		items, err := s.api.RemoveFromCart(ctx, id, u.Email)
		if !IsOffline(err) {
			if err != nil {
				return nil, err
			}
			st, err := s.Dispatch(CartLoaded{Items: items})
			return st.Cart, err
		}
		s.notify(NoticeSavedLocally)
	}
	st, err := s.Dispatch(CartItemRemoved{ID: id})
	return st.Cart, err
}

// ToggleWishlist saves or unsaves serviceID.
func (s *Store) ToggleWishlist(ctx context.Context, serviceID string) ([]models.WishlistItem, error) {
	u, err := s.user()
	if err != nil {
		return nil, err
	}
	if isServerID(serviceID) {
		items, err := s.api.ToggleWishlist(ctx, u.Email, serviceID)
		if !IsOffline(err) {
			if err != nil {
				return nil, err
			}
			st, err := s.Dispatch(WishlistLoaded{Items: items})
			return st.Wishlist, err
		}
		s.notify(NoticeSavedLocally)
	}

	for _, it := range s.State().Wishlist {
		if it.ServiceID == serviceID {
			st, err := s.Dispatch(WishlistItemRemoved{ID: it.ID})
			return st.Wishlist, err
		}
	}
	st, err := s.Dispatch(WishlistItemAdded{Item: models.WishlistItem{
		WishlistEntry: models.WishlistEntry{
			ID:        localID(),
			UserEmail: u.Email,
			ServiceID: serviceID,
			AddedAt:   s.now().UTC(),
		},
		Service: s.findService(serviceID),
	}})
	return st.Wishlist, err
}

// UpdateProfile saves contact details; offline they are kept on the local
// session only.
func (s *Store) UpdateProfile(ctx context.Context, p models.Profile) (*models.Profile, error) {
	u, err := s.user()
	if err != nil {
		return nil, err
	}
	if p.Semester != nil && *p.Semester != 0 && (*p.Semester < 1 || *p.Semester > 8) {
		return nil, apperr.BadRequest("Semester must be between 1 and 8.")
	}
	saved, err := s.api.UpdateProfile(ctx, ProfileUpdate{
		Email:       u.Email,
		PhoneNumber: p.PhoneNumber,
		USN:         p.USN,
		Semester:    p.Semester,
	})
	switch {
	case IsOffline(err):
		merged := mergeProfile(u.Profile(), p)
		saved = &merged
		s.notify(NoticeSavedLocally)
	case err != nil:
		return nil, err
	}
	if _, err := s.Dispatch(ProfileUpdated{Profile: *saved}); err != nil {
		return nil, err
	}
	return saved, nil
}

// mergeProfile applies the fields set in p to cur the way the server does:
// nil leaves a field alone, an empty string or semester 0 clears it.
func mergeProfile(cur, p models.Profile) models.Profile {
	if p.PhoneNumber != nil {
		cur.PhoneNumber = nil
		if v := strings.TrimSpace(*p.PhoneNumber); v != "" {
			cur.PhoneNumber = &v
		}
	}
	if p.USN != nil {
		cur.USN = nil
		if v := strings.TrimSpace(*p.USN); v != "" {
			cur.USN = &v
		}
	}
	if p.Semester != nil {
		cur.Semester = nil
		if v := *p.Semester; v != 0 {
			cur.Semester = &v
		}
	}
	return cur
}

// Checkout places orders for the server cart when the server is reachable.
// Payment is not wired up yet, so it always ends with NoticePaymentPending.
func (s *Store) Checkout(ctx context.Context) ([]models.Order, error) {
	defer s.notify(NoticePaymentPending)
	u, err := s.user()
	if err != nil {
		return nil, err
	}
	if len(s.State().Cart) == 0 {
		return nil, apperr.BadRequest("Cart is empty.")
	}
	orders, err := s.api.PlaceOrders(ctx, u.Email)
	if IsOffline(err) {
		return nil, nil
	}
	return orders, err
}

func (s *Store) LoadOrders(ctx context.Context) ([]models.OrderView, error) {
	u, err := s.user()
	if err != nil {
		return nil, err
	}
	orders, err := s.api.ListOrders(ctx, u.Email)
	if err != nil {
		return nil, err
	}
	st, err := s.Dispatch(OrdersLoaded{Orders: orders})
	return st.Orders, err
}

// LoadInventory fetches the admin view for the signed-in admin.
func (s *Store) LoadInventory(ctx context.Context) (*models.InventoryDetails, error) {
	u, err := s.user()
	if err != nil {
		return nil, err
	}
	if !marketplace.IsAdmin(u.Email) {
		return nil, apperr.Forbidden("Admin access only.")
	}
	d, err := s.api.InventoryDetails(ctx, u.Email)
	if err != nil {
		return nil, err
	}
	st, err := s.Dispatch(InventoryLoaded{Details: *d})
	return st.Inventory, err
}

// ContactHosts composes the inquiry for every host in the current cart,
// local entries included.
func (s *Store) ContactHosts() (*alerts.Envelope, error) {
	env, err := alerts.HostInquiry(s.State().Cart)
	if err != nil {
		return nil, apperr.BadRequest("No hosts to contact.")
	}
	return &env, nil
}
