package marketplace_test

import (
	"context"
	"encoding/json"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/sudo-init-do/campusgigs/internal/apperr"
	"github.com/sudo-init-do/campusgigs/internal/marketplace"
	"github.com/sudo-init-do/campusgigs/internal/models"
	"github.com/sudo-init-do/campusgigs/internal/store"
	"github.com/sudo-init-do/campusgigs/internal/store/jsonfile"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	signIns []bool
	created int
	deleted int
	carts   int
	orders  int
}

func (r *recorder) UserSignedIn(created bool) { r.signIns = append(r.signIns, created) }
func (r *recorder) ServiceCreated()           { r.created++ }
func (r *recorder) ServiceDeleted()           { r.deleted++ }
func (r *recorder) CartUpdated()              { r.carts++ }
func (r *recorder) OrdersPlaced(n int)        { r.orders += n }

type fixture struct {
	mp     *marketplace.Marketplace
	store  store.Store
	events *recorder
}

func newFixture(t *testing.T, opts ...marketplace.Option) *fixture {
	t.Helper()
	s, err := jsonfile.Open(filepath.Join(t.TempDir(), "db.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	clock := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	ev := &recorder{}
	base := []marketplace.Option{
		marketplace.WithDescriptionPolicy(marketplace.DescriptionPolicy{Unit: marketplace.UnitWords, Min: 3}),
		marketplace.WithEvents(ev),
		marketplace.WithClock(func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		}),
	}
	return &fixture{mp: marketplace.New(s, append(base, opts...)...), store: s, events: ev}
}

func (f *fixture) service(t *testing.T, host, title string, price models.Price) *models.Service {
	t.Helper()
	svc, err := f.mp.CreateService(context.Background(), marketplace.ServiceInput{
		Title:       title,
		Description: "a useful campus service",
		Category:    "project-help",
		Price:       price,
		HostName:    "Host " + title,
		HostEmail:   host,
	})
	require.NoError(t, err)
	return svc
}

func (f *fixture) addCart(t *testing.T, owner, serviceID string, qty int) []models.CartItem {
	t.Helper()
	items, err := f.mp.AddOrUpdateCartEntry(context.Background(), marketplace.CartInput{
		UserEmail:     owner,
		ServiceID:     serviceID,
		Quantity:      qty,
		PortfolioLink: "https://portfolio.example/" + owner,
		Message:       "interested",
	})
	require.NoError(t, err)
	return items
}

func requireKind(t *testing.T, err error, kind apperr.Kind, msg string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperr.KindOf(err), err.Error())
	if msg != "" {
		assert.Equal(t, msg, apperr.MessageOf(err))
	}
}

func TestLoginScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.mp.Login(ctx, marketplace.LoginInput{Email: "bad@gmail.com", Name: "X"})
	requireKind(t, err, apperr.KindForbidden, "Only BMSCE / BMSCA / BMSCL email IDs are allowed.")

	first, err := f.mp.Login(ctx, marketplace.LoginInput{Email: "a@bmsce.ac.in", Name: "A"})
	require.NoError(t, err)
	assert.False(t, first.User.IsAdmin)
	assert.Equal(t, "A", first.User.Name)
	assert.Equal(t, marketplace.AllowedDomains, first.AllowedDomains)

	again, err := f.mp.Login(ctx, marketplace.LoginInput{Email: "A@bmsce.ac.in ", Name: "Asha"})
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, again.User.ID)
	assert.Equal(t, "Asha", again.User.Name)

	u, err := f.mp.GetUser(ctx, "a@bmsce.ac.in")
	require.NoError(t, err)
	assert.Equal(t, "Asha", u.Name)
	assert.Equal(t, []bool{true, false}, f.events.signIns)
}

func TestLoginValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.mp.Login(ctx, marketplace.LoginInput{})
	requireKind(t, err, apperr.KindBadRequest, "Email is required.")

	res, err := f.mp.Login(ctx, marketplace.LoginInput{Email: marketplace.AdminEmail})
	require.NoError(t, err)
	assert.True(t, res.User.IsAdmin)
	assert.Equal(t, models.DefaultBuyerName, res.User.Name)

	res, err = f.mp.Login(ctx, marketplace.LoginInput{Email: marketplace.AdminEmail})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultBuyerName, res.User.Name, "blank name keeps the stored one")
}

func TestLoginWithCredential(t *testing.T) {
	f := newFixture(t)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email":   "g@bmsca.org",
		"name":    "Gita",
		"picture": "https://img.example/g.png",
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	res, err := f.mp.Login(context.Background(), marketplace.LoginInput{Credential: tok})
	require.NoError(t, err)
	assert.Equal(t, "g@bmsca.org", res.User.Email)
	assert.Equal(t, "Gita", res.User.Name)
	assert.Equal(t, "https://img.example/g.png", res.User.Image)

	_, err = f.mp.Login(context.Background(), marketplace.LoginInput{Credential: "junk"})
	requireKind(t, err, apperr.KindBadRequest, "")
}

func TestGetUserNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.mp.GetUser(context.Background(), "nobody@bmsce.ac.in")
	requireKind(t, err, apperr.KindNotFound, "User not found.")
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.mp.UpdateProfile(ctx, "a@bmsce.ac.in", marketplace.ProfilePatch{})
	requireKind(t, err, apperr.KindNotFound, "User not found.")

	_, err = f.mp.Login(ctx, marketplace.LoginInput{Email: "a@bmsce.ac.in"})
	require.NoError(t, err)

	p, err := f.mp.UpdateProfile(ctx, "a@bmsce.ac.in", marketplace.ProfilePatch{
		PhoneNumber: marketplace.Value("9876543210"),
		USN:         marketplace.Value("1BM22CS001"),
		Semester:    marketplace.Value[marketplace.FlexInt](4),
	})
	require.NoError(t, err)
	assert.Equal(t, "9876543210", *p.PhoneNumber)
	assert.Equal(t, 4, *p.Semester)

	// Omitted fields stay, blank ones clear.
	p, err = f.mp.UpdateProfile(ctx, "a@bmsce.ac.in", marketplace.ProfilePatch{USN: marketplace.Value("")})
	require.NoError(t, err)
	assert.Nil(t, p.USN)
	assert.Equal(t, "9876543210", *p.PhoneNumber)
	assert.Equal(t, 4, *p.Semester)

	_, err = f.mp.UpdateProfile(ctx, "a@bmsce.ac.in", marketplace.ProfilePatch{Semester: marketplace.Value[marketplace.FlexInt](9)})
	requireKind(t, err, apperr.KindBadRequest, "")

	_, err = f.mp.UpdateProfile(ctx, "", marketplace.ProfilePatch{})
	requireKind(t, err, apperr.KindBadRequest, "Email is required.")
}

func TestProfilePatchJSON(t *testing.T) {
	var p marketplace.ProfilePatch
	require.NoError(t, json.Unmarshal([]byte(`{"phoneNumber":null,"semester":"3"}`), &p))

	assert.True(t, p.PhoneNumber.Set)
	assert.Nil(t, p.PhoneNumber.Value)
	assert.False(t, p.USN.Set)
	require.NotNil(t, p.Semester.Value)
	assert.Equal(t, marketplace.FlexInt(3), *p.Semester.Value)

	assert.Error(t, json.Unmarshal([]byte(`{"semester":"third"}`), &p))
}

func TestCreateServiceValidationOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	valid := marketplace.ServiceInput{
		Title:       "Thermo tutoring",
		Description: "one two three",
		Category:    "tutoring",
		Price:       models.Fixed(500),
		HostName:    "Hari",
		HostEmail:   "h@bmsce.ac.in",
	}

	tests := []struct {
		name   string
		mutate func(*marketplace.ServiceInput)
		kind   apperr.Kind
		msg    string
	}{
		{"foreign domain beats missing fields", func(in *marketplace.ServiceInput) {
			in.HostEmail = "h@gmail.com"
			in.Title = ""
		}, apperr.KindForbidden, "Only approved college domains can list services."},
		{"missing title", func(in *marketplace.ServiceInput) { in.Title = " " }, apperr.KindBadRequest, "Missing required fields."},
		{"missing price", func(in *marketplace.ServiceInput) { in.Price = models.Price{} }, apperr.KindBadRequest, "Missing required fields."},
		{"inverted range", func(in *marketplace.ServiceInput) { in.Price = models.Range(2000, 1000) }, apperr.KindBadRequest, ""},
		{"infinite price", func(in *marketplace.ServiceInput) { in.Price = models.Fixed(math.Inf(1)) }, apperr.KindBadRequest,
			"Price must be a positive amount or a range with min not above max."},
		{"short description", func(in *marketplace.ServiceInput) { in.Description = "too short" }, apperr.KindBadRequest,
			"Description must be at least 3 words (currently 2)."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := f.mp.CreateService(ctx, in)
			requireKind(t, err, tt.kind, tt.msg)
		})
	}

	svc, err := f.mp.CreateService(ctx, valid)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultHostRating, svc.HostRating)
	assert.Equal(t, models.Currency, svc.Currency)
	assert.NotNil(t, svc.Tags)
	assert.Nil(t, svc.DeliveryEstimate)
	assert.Equal(t, 1, f.events.created)
}

func TestDescriptionMinimumCitesCount(t *testing.T) {
	f := newFixture(t, marketplace.WithDescriptionPolicy(marketplace.DefaultDescriptionPolicy))
	_, err := f.mp.CreateService(context.Background(), marketplace.ServiceInput{
		Title:       "Essay review",
		Description: strings.Repeat("word ", 99),
		Category:    "writing",
		Price:       models.Fixed(300),
		HostName:    "W",
		HostEmail:   "w@bmsce.ac.in",
	})
	requireKind(t, err, apperr.KindBadRequest, "Description must be at least 100 words (currently 99).")

	f = newFixture(t, marketplace.WithDescriptionPolicy(marketplace.DescriptionPolicy{Unit: marketplace.UnitChars, Min: 20}))
	_, err = f.mp.CreateService(context.Background(), marketplace.ServiceInput{
		Title:       "Essay review",
		Description: "short",
		Category:    "writing",
		Price:       models.Fixed(300),
		HostName:    "W",
		HostEmail:   "w@bmsce.ac.in",
	})
	requireKind(t, err, apperr.KindBadRequest, "Description must be at least 20 characters (currently 5).")
}

func TestListServicesNewestFirst(t *testing.T) {
	f := newFixture(t)
	f.service(t, "h@bmsce.ac.in", "older", models.Fixed(100))
	f.service(t, "h@bmsce.ac.in", "newer", models.Fixed(100))

	services, err := f.mp.ListServices(context.Background())
	require.NoError(t, err)
	require.Len(t, services, 2)
	assert.Equal(t, "newer", services[0].Title)
}

func TestDeleteService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.service(t, "h@bmsce.ac.in", "CAD help", models.Fixed(800))
	f.addCart(t, "s@bmsce.ac.in", svc.ID, 1)
	_, err := f.mp.ToggleWishlistEntry(ctx, "s@bmsce.ac.in", svc.ID)
	require.NoError(t, err)

	err = f.mp.DeleteService(ctx, svc.ID, "")
	requireKind(t, err, apperr.KindUnauthorized, "User email required.")

	err = f.mp.DeleteService(ctx, svc.ID, "other@bmsce.ac.in")
	requireKind(t, err, apperr.KindForbidden, "You can only delete your own listings.")

	err = f.mp.DeleteService(ctx, "missing", "h@bmsce.ac.in")
	requireKind(t, err, apperr.KindNotFound, "Service not found.")

	require.NoError(t, f.mp.DeleteService(ctx, svc.ID, "H@bmsce.ac.in"))
	assert.Equal(t, 1, f.events.deleted)

	cart, err := f.mp.GetCart(ctx, "s@bmsce.ac.in")
	require.NoError(t, err)
	assert.Empty(t, cart)
	wish, err := f.mp.GetWishlist(ctx, "s@bmsce.ac.in")
	require.NoError(t, err)
	assert.Empty(t, wish)
}

func TestAdminDeletesAnyListing(t *testing.T) {
	f := newFixture(t)
	svc := f.service(t, "h@bmsce.ac.in", "CAD help", models.Fixed(800))
	require.NoError(t, f.mp.DeleteService(context.Background(), svc.ID, marketplace.AdminEmail))
}

func TestListInterests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.service(t, "h@bmsce.ac.in", "CAD help", models.Fixed(800))
	f.addCart(t, "s@bmsce.ac.in", svc.ID, 2)

	entries, err := f.mp.ListInterests(ctx, svc.ID, "h@bmsce.ac.in")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "s@bmsce.ac.in", entries[0].UserEmail)

	_, err = f.mp.ListInterests(ctx, svc.ID, "s@bmsce.ac.in")
	requireKind(t, err, apperr.KindForbidden, "")

	entries, err = f.mp.ListInterests(ctx, svc.ID, marketplace.AdminEmail)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCartUpsertKeepsSingleRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.service(t, "h@bmsce.ac.in", "CAD help", models.Fixed(800))

	first := f.addCart(t, "s@bmsce.ac.in", svc.ID, 1)
	require.Len(t, first, 1)

	offer := 650.0
	second, err := f.mp.AddOrUpdateCartEntry(ctx, marketplace.CartInput{
		UserEmail:        "s@bmsce.ac.in",
		ServiceID:        svc.ID,
		Quantity:         3,
		PortfolioLink:    "https://new.example",
		Message:          "second thoughts",
		NegotiationPrice: &offer,
	})
	require.NoError(t, err)
	require.Len(t, second, 1)
	got := second[0]
	assert.Equal(t, first[0].ID, got.ID)
	assert.Equal(t, 3, got.Quantity)
	assert.Equal(t, "https://new.example", got.PortfolioLink)
	assert.Equal(t, "second thoughts", got.Message)
	require.NotNil(t, got.NegotiationPrice)
	assert.Equal(t, 650.0, *got.NegotiationPrice)
	require.NotNil(t, got.Service)
	assert.Equal(t, "CAD help", got.Service.Title)
	assert.Equal(t, 2, f.events.carts)
}

func TestCartValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.service(t, "h@bmsce.ac.in", "CAD help", models.Fixed(800))
	valid := marketplace.CartInput{
		UserEmail:     "s@bmsce.ac.in",
		ServiceID:     svc.ID,
		PortfolioLink: "https://p.example",
		Message:       "hi",
	}
	zero := 0.0

	tests := []struct {
		name   string
		mutate func(*marketplace.CartInput)
		kind   apperr.Kind
		msg    string
	}{
		{"no owner", func(in *marketplace.CartInput) { in.UserEmail = "" }, apperr.KindBadRequest, "userEmail and serviceId are required."},
		{"no service", func(in *marketplace.CartInput) { in.ServiceID = "" }, apperr.KindBadRequest, "userEmail and serviceId are required."},
		{"no link", func(in *marketplace.CartInput) { in.PortfolioLink = "  " }, apperr.KindBadRequest, "Portfolio link is required."},
		{"no message", func(in *marketplace.CartInput) { in.Message = " " }, apperr.KindBadRequest, "Message is required."},
		{"long message", func(in *marketplace.CartInput) { in.Message = strings.Repeat("x", 51) }, apperr.KindBadRequest,
			"Message must be maximum 50 characters."},
		{"zero offer", func(in *marketplace.CartInput) { in.NegotiationPrice = &zero }, apperr.KindBadRequest, ""},
		{"unknown service", func(in *marketplace.CartInput) { in.ServiceID = "nope" }, apperr.KindNotFound, "Service not found."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := f.mp.AddOrUpdateCartEntry(ctx, in)
			requireKind(t, err, tt.kind, tt.msg)
		})
	}

	in := valid
	in.Message = "  " + strings.Repeat("é", 50) + "  "
	items, err := f.mp.AddOrUpdateCartEntry(ctx, in)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity, "quantity below 1 is stored as 1")
}

func TestRemoveCartEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.service(t, "h@bmsce.ac.in", "CAD help", models.Fixed(800))
	items := f.addCart(t, "s@bmsce.ac.in", svc.ID, 1)

	left, err := f.mp.RemoveCartEntry(ctx, items[0].ID, "intruder@bmsce.ac.in")
	require.NoError(t, err)
	assert.Empty(t, left)
	mine, err := f.mp.GetCart(ctx, "s@bmsce.ac.in")
	require.NoError(t, err)
	assert.Len(t, mine, 1, "another user cannot remove the entry")

	left, err = f.mp.RemoveCartEntry(ctx, items[0].ID, "s@bmsce.ac.in")
	require.NoError(t, err)
	assert.Empty(t, left)

	left, err = f.mp.RemoveCartEntry(ctx, items[0].ID, "s@bmsce.ac.in")
	require.NoError(t, err)
	assert.Empty(t, left)

	_, err = f.mp.GetCart(ctx, "")
	requireKind(t, err, apperr.KindBadRequest, "")
}

func TestWishlistDoubleToggle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.service(t, "h@bmsce.ac.in", "CAD help", models.Fixed(800))

	items, err := f.mp.ToggleWishlistEntry(ctx, "s@bmsce.ac.in", svc.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Service)

	items, err = f.mp.ToggleWishlistEntry(ctx, "s@bmsce.ac.in", svc.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = f.mp.ToggleWishlistEntry(ctx, "s@bmsce.ac.in", "gone")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].Service, "joins fail soft")

	items, err = f.mp.RemoveWishlistEntry(ctx, items[0].ID, "s@bmsce.ac.in")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestPlaceOrdersRangeTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.mp.Login(ctx, marketplace.LoginInput{Email: "s@bmsce.ac.in", Name: "Sam"})
	require.NoError(t, err)
	svc := f.service(t, "h@bmsce.ac.in", "Video edit", models.Range(1000, 2000))
	f.addCart(t, "s@bmsce.ac.in", svc.ID, 3)

	orders, err := f.mp.PlaceOrders(ctx, "s@bmsce.ac.in")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	o := orders[0]
	assert.Equal(t, 4500.0, o.Total)
	assert.Equal(t, models.StatusCarted, o.Status)
	assert.Equal(t, "Sam", o.BuyerName)
	assert.Equal(t, "h@bmsce.ac.in", o.HostEmail)
	assert.Equal(t, "Video edit", o.ListingTitle)
	require.Len(t, o.Items, 1)
	assert.Equal(t, 3, o.Items[0].Quantity)
	assert.Equal(t, 1, f.events.orders)

	cart, err := f.mp.GetCart(ctx, "s@bmsce.ac.in")
	require.NoError(t, err)
	assert.Len(t, cart, 1, "checkout leaves the cart untouched")
}

func TestPlaceOrdersEdgeCases(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.mp.PlaceOrders(ctx, "s@bmsce.ac.in")
	requireKind(t, err, apperr.KindBadRequest, "Cart is empty.")

	_, err = f.store.UpsertCartEntry(ctx, models.CartEntry{
		ID: "c1", UserEmail: "s@bmsce.ac.in", ServiceID: "vanished", Quantity: 2,
		PortfolioLink: "p", Message: "m", AddedAt: time.Now(),
	})
	require.NoError(t, err)
	orders, err := f.mp.PlaceOrders(ctx, "s@bmsce.ac.in")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Zero(t, orders[0].Total)
	assert.Empty(t, orders[0].ListingTitle)
	assert.Equal(t, models.DefaultBuyerName, orders[0].BuyerName)
}

func TestListOrdersTiers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.service(t, "h@bmsce.ac.in", "S", models.Fixed(100))
	tSvc := f.service(t, "x@bmsce.ac.in", "T", models.Fixed(200))

	f.addCart(t, "b@bmsce.ac.in", s.ID, 1)
	_, err := f.mp.PlaceOrders(ctx, "b@bmsce.ac.in")
	require.NoError(t, err)

	f.addCart(t, "h@bmsce.ac.in", tSvc.ID, 1)
	_, err = f.mp.PlaceOrders(ctx, "h@bmsce.ac.in")
	require.NoError(t, err)

	hostView, err := f.mp.ListOrders(ctx, "h@bmsce.ac.in")
	require.NoError(t, err)
	require.Len(t, hostView, 1)
	assert.Equal(t, s.ID, hostView[0].ServiceID)

	buyerView, err := f.mp.ListOrders(ctx, "b@bmsce.ac.in")
	require.NoError(t, err)
	require.Len(t, buyerView, 1)
	assert.Equal(t, s.ID, buyerView[0].ServiceID)

	adminView, err := f.mp.ListOrders(ctx, marketplace.AdminEmail)
	require.NoError(t, err)
	assert.Len(t, adminView, 2)

	_, err = f.mp.ListOrders(ctx, "")
	requireKind(t, err, apperr.KindBadRequest, "")
}

func TestListOrdersBuyerEnrichment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.mp.Login(ctx, marketplace.LoginInput{Email: "b@bmsce.ac.in"})
	require.NoError(t, err)
	_, err = f.mp.UpdateProfile(ctx, "b@bmsce.ac.in", marketplace.ProfilePatch{
		USN:      marketplace.Value("1BM22CS042"),
		Semester: marketplace.Value[marketplace.FlexInt](5),
	})
	require.NoError(t, err)

	svc := f.service(t, "h@bmsce.ac.in", "S", models.Fixed(100))
	f.addCart(t, "b@bmsce.ac.in", svc.ID, 1)
	_, err = f.mp.PlaceOrders(ctx, "b@bmsce.ac.in")
	require.NoError(t, err)

	orders, err := f.mp.ListOrders(ctx, "h@bmsce.ac.in")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.NotNil(t, orders[0].BuyerUSN)
	assert.Equal(t, "1BM22CS042", *orders[0].BuyerUSN)
	assert.Equal(t, 5, *orders[0].BuyerSemester)
	assert.Nil(t, orders[0].BuyerPhone)
}

func TestContactHosts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.service(t, "h@bmsce.ac.in", "CAD help", models.Fixed(100))
	b := f.service(t, "h@bmsce.ac.in", "Maths help", models.Fixed(100))

	_, err := f.mp.ContactHosts(ctx, "s@bmsce.ac.in")
	requireKind(t, err, apperr.KindBadRequest, "No hosts to contact.")

	f.addCart(t, "s@bmsce.ac.in", a.ID, 1)
	f.addCart(t, "s@bmsce.ac.in", b.ID, 1)
	env, err := f.mp.ContactHosts(ctx, "s@bmsce.ac.in")
	require.NoError(t, err)
	assert.Equal(t, []string{"h@bmsce.ac.in"}, env.To)
	assert.Contains(t, env.Body, "- CAD help\n- Maths help\n")
	assert.True(t, strings.HasPrefix(env.Mailto, "mailto:h@bmsce.ac.in?subject=Interest%20in%20Your%20Service"))
}

func TestAdminViews(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.mp.Login(ctx, marketplace.LoginInput{Email: "h@bmsce.ac.in", Name: "Hari"})
	require.NoError(t, err)
	_, err = f.mp.UpdateProfile(ctx, "h@bmsce.ac.in", marketplace.ProfilePatch{PhoneNumber: marketplace.Value("999")})
	require.NoError(t, err)
	s := f.service(t, "h@bmsce.ac.in", "S", models.Fixed(100))
	f.service(t, "x@bmsce.ac.in", "T", models.Fixed(100))
	f.addCart(t, "b@bmsce.ac.in", s.ID, 1)
	_, err = f.mp.ToggleWishlistEntry(ctx, "b@bmsce.ac.in", s.ID)
	require.NoError(t, err)

	for _, email := range []string{"", "h@bmsce.ac.in"} {
		_, err = f.mp.InventorySnapshot(ctx, email)
		requireKind(t, err, apperr.KindForbidden, "Admin access only.")
		_, err = f.mp.InventoryDetails(ctx, email)
		requireKind(t, err, apperr.KindForbidden, "Admin access only.")
		_, err = f.mp.Stats(ctx, email)
		requireKind(t, err, apperr.KindForbidden, "Admin access only.")
	}

	inv, err := f.mp.InventorySnapshot(ctx, marketplace.AdminEmail)
	require.NoError(t, err)
	assert.Len(t, inv.ServicesByHost, 2)
	assert.Len(t, inv.CartByStudent["b@bmsce.ac.in"], 1)

	details, err := f.mp.InventoryDetails(ctx, marketplace.AdminEmail)
	require.NoError(t, err)
	require.Len(t, details.Hosts, 2)
	assert.Equal(t, "h@bmsce.ac.in", details.Hosts[0].Email)
	require.NotNil(t, details.Hosts[0].Phone)
	assert.Equal(t, "999", *details.Hosts[0].Phone)
	require.Len(t, details.Students, 1)
	assert.Equal(t, models.DefaultBuyerName, details.Students[0].Name)
	require.Len(t, details.Students[0].Items, 1)
	assert.Equal(t, "S", details.Students[0].Items[0].Service.Title)

	stats, err := f.mp.Stats(ctx, marketplace.AdminEmail)
	require.NoError(t, err)
	assert.Equal(t, models.Stats{Users: 1, Services: 2, Hosts: 2, Carts: 1, Wishlists: 1, Orders: 0}, *stats)
}
