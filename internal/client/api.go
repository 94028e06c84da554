// Package client talks to the campusgigs HTTP API and keeps the state a
// front end needs, degrading to local-only data when the server is
// unreachable.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sudo-init-do/campusgigs/internal/alerts"
	"github.com/sudo-init-do/campusgigs/internal/apperr"
	"github.com/sudo-init-do/campusgigs/internal/marketplace"
	"github.com/sudo-init-do/campusgigs/internal/models"
)

// DefaultBaseURL is where a local server listens.
const DefaultBaseURL = "http://localhost:4000"

// API is a thin client for the HTTP surface. Transport failures are retried
// and surface as apperr.KindNetwork; error responses are never retried.
type API struct {
	baseURL    string
	httpClient *http.Client
	retries    int
	backoff    time.Duration
}

type Option func(*API)

func WithHTTPClient(c *http.Client) Option {
	return func(a *API) { a.httpClient = c }
}

// WithRetries sets how many extra attempts a transport failure gets.
func WithRetries(n int, backoff time.Duration) Option {
	return func(a *API) {
		a.retries = n
		a.backoff = backoff
	}
}

func NewAPI(baseURL string, opts ...Option) *API {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	a := &API{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		retries:    2,
		backoff:    200 * time.Millisecond,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

type request struct {
	method string
	path   string
	query  url.Values
	header http.Header
	body   any
}

func (a *API) do(ctx context.Context, r request, out any) error {
	var payload []byte
	if r.body != nil {
		var err error
		if payload, err = json.Marshal(r.body); err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}
	target := a.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= a.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return apperr.Network(ctx.Err())
			case <-time.After(a.backoff * time.Duration(attempt)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, r.method, target, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		for k, vs := range r.header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := a.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}
		return decodeResponse(resp, out)
	}
	return apperr.Network(lastErr)
}

func decodeResponse(resp *http.Response, out any) error {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.Network(fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var problem struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(body, &problem)
		return apperr.FromStatus(resp.StatusCode, problem.Error)
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func owner(email string) url.Values { return url.Values{"userEmail": {email}} }

func (a *API) Health(ctx context.Context) error {
	return a.do(ctx, request{method: http.MethodGet, path: "/health"}, nil)
}

func (a *API) ListServices(ctx context.Context) ([]models.Service, error) {
	var out []models.Service
	err := a.do(ctx, request{method: http.MethodGet, path: "/services"}, &out)
	return out, err
}

func (a *API) CreateService(ctx context.Context, in marketplace.ServiceInput) (*models.Service, error) {
	var out models.Service
	if err := a.do(ctx, request{method: http.MethodPost, path: "/services", body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) DeleteService(ctx context.Context, id, requester string) error {
	return a.do(ctx, request{
		method: http.MethodDelete,
		path:   "/services/" + url.PathEscape(id),
		header: http.Header{"X-User-Email": {requester}},
	}, nil)
}

func (a *API) ListInterests(ctx context.Context, serviceID, requester string) ([]models.CartEntry, error) {
	var out []models.CartEntry
	err := a.do(ctx, request{
		method: http.MethodGet,
		path:   "/services/" + url.PathEscape(serviceID) + "/interests",
		header: http.Header{"X-User-Email": {requester}},
	}, &out)
	return out, err
}

func (a *API) Login(ctx context.Context, in marketplace.LoginInput) (*marketplace.LoginResult, error) {
	var out marketplace.LoginResult
	if err := a.do(ctx, request{method: http.MethodPost, path: "/auth/login", body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) GetUser(ctx context.Context, email string) (*models.User, error) {
	var out models.User
	if err := a.do(ctx, request{method: http.MethodGet, path: "/users/me", query: owner(email)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ProfileUpdate is the body of PUT /users/profile. Nil fields are omitted
// and left unchanged; an empty string clears.
type ProfileUpdate struct {
	Email       string  `json:"email"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	USN         *string `json:"usn,omitempty"`
	Semester    *int    `json:"semester,omitempty"`
}

func (a *API) UpdateProfile(ctx context.Context, in ProfileUpdate) (*models.Profile, error) {
	var out models.Profile
	if err := a.do(ctx, request{method: http.MethodPut, path: "/users/profile", body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) GetCart(ctx context.Context, email string) ([]models.CartItem, error) {
	var out []models.CartItem
	err := a.do(ctx, request{method: http.MethodGet, path: "/cart", query: owner(email)}, &out)
	return out, err
}

func (a *API) AddToCart(ctx context.Context, in marketplace.CartInput) ([]models.CartItem, error) {
	var out []models.CartItem
	err := a.do(ctx, request{method: http.MethodPost, path: "/cart", body: in}, &out)
	return out, err
}

func (a *API) RemoveFromCart(ctx context.Context, id, email string) ([]models.CartItem, error) {
	var out []models.CartItem
	err := a.do(ctx, request{method: http.MethodDelete, path: "/cart/" + url.PathEscape(id), query: owner(email)}, &out)
	return out, err
}

func (a *API) ContactHosts(ctx context.Context, email string) (*alerts.Envelope, error) {
	var out alerts.Envelope
	if err := a.do(ctx, request{method: http.MethodGet, path: "/cart/contact", query: owner(email)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) GetWishlist(ctx context.Context, email string) ([]models.WishlistItem, error) {
	var out []models.WishlistItem
	err := a.do(ctx, request{method: http.MethodGet, path: "/wishlist", query: owner(email)}, &out)
	return out, err
}

func (a *API) ToggleWishlist(ctx context.Context, email, serviceID string) ([]models.WishlistItem, error) {
	var out []models.WishlistItem
	body := map[string]string{"userEmail": email, "serviceId": serviceID}
	err := a.do(ctx, request{method: http.MethodPost, path: "/wishlist", body: body}, &out)
	return out, err
}

func (a *API) RemoveFromWishlist(ctx context.Context, id, email string) ([]models.WishlistItem, error) {
	var out []models.WishlistItem
	err := a.do(ctx, request{method: http.MethodDelete, path: "/wishlist/" + url.PathEscape(id), query: owner(email)}, &out)
	return out, err
}

func (a *API) PlaceOrders(ctx context.Context, email string) ([]models.Order, error) {
	var out []models.Order
	err := a.do(ctx, request{method: http.MethodPost, path: "/orders", body: map[string]string{"userEmail": email}}, &out)
	return out, err
}

func (a *API) ListOrders(ctx context.Context, email string) ([]models.OrderView, error) {
	var out []models.OrderView
	err := a.do(ctx, request{method: http.MethodGet, path: "/orders", query: owner(email)}, &out)
	return out, err
}

func (a *API) adminGet(ctx context.Context, path, adminEmail string, out any) error {
	return a.do(ctx, request{
		method: http.MethodGet,
		path:   path,
		header: http.Header{"X-Admin-Email": {adminEmail}},
	}, out)
}

func (a *API) Inventory(ctx context.Context, adminEmail string) (*models.Inventory, error) {
	var out models.Inventory
	if err := a.adminGet(ctx, "/admin/inventory", adminEmail, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) InventoryDetails(ctx context.Context, adminEmail string) (*models.InventoryDetails, error) {
	var out models.InventoryDetails
	if err := a.adminGet(ctx, "/admin/inventory/details", adminEmail, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) Stats(ctx context.Context, adminEmail string) (*models.Stats, error) {
	var out models.Stats
	if err := a.adminGet(ctx, "/admin/stats", adminEmail, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// IsOffline reports whether err means the server could not be reached.
func IsOffline(err error) bool {
	return err != nil && apperr.Is(err, apperr.KindNetwork)
}
