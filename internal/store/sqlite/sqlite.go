// Package sqlite implements store.Store on an embedded SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/sudo-init-do/campusgigs/internal/models"
	"github.com/sudo-init-do/campusgigs/internal/store"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id           TEXT PRIMARY KEY,
		email        TEXT NOT NULL UNIQUE,
		name         TEXT NOT NULL DEFAULT '',
		image        TEXT NOT NULL DEFAULT '',
		is_admin     INTEGER NOT NULL DEFAULT 0,
		phone_number TEXT,
		usn          TEXT,
		semester     INTEGER,
		created_at   INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS services (
		id                TEXT PRIMARY KEY,
		title             TEXT NOT NULL,
		description       TEXT NOT NULL,
		category          TEXT NOT NULL,
		price_kind        TEXT NOT NULL,
		price_min         REAL NOT NULL,
		price_max         REAL NOT NULL,
		currency          TEXT NOT NULL,
		host_name         TEXT NOT NULL,
		host_email        TEXT NOT NULL,
		host_rating       REAL NOT NULL,
		tags              TEXT NOT NULL DEFAULT '[]',
		delivery_estimate TEXT,
		portfolio_link    TEXT,
		created_at        INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS carts (
		id                TEXT PRIMARY KEY,
		user_email        TEXT NOT NULL,
		service_id        TEXT NOT NULL,
		quantity          INTEGER NOT NULL DEFAULT 1,
		portfolio_link    TEXT NOT NULL,
		message           TEXT NOT NULL,
		negotiation_price REAL,
		added_at          INTEGER NOT NULL,
		UNIQUE (user_email, service_id)
	)`,
	`CREATE TABLE IF NOT EXISTS wishlists (
		id         TEXT PRIMARY KEY,
		user_email TEXT NOT NULL,
		service_id TEXT NOT NULL,
		added_at   INTEGER NOT NULL,
		UNIQUE (user_email, service_id)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		seq                 INTEGER PRIMARY KEY AUTOINCREMENT,
		id                  TEXT NOT NULL UNIQUE,
		buyer_email         TEXT NOT NULL,
		buyer_name          TEXT NOT NULL,
		host_email          TEXT NOT NULL,
		host_name           TEXT NOT NULL,
		listing_title       TEXT NOT NULL,
		listing_description TEXT NOT NULL,
		service_id          TEXT NOT NULL,
		portfolio_link      TEXT NOT NULL,
		message             TEXT NOT NULL,
		status              TEXT NOT NULL,
		items               TEXT NOT NULL,
		total               REAL NOT NULL,
		currency            TEXT NOT NULL,
		placed_at           INTEGER NOT NULL,
		created_at          INTEGER NOT NULL,
		last_activity       INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS services_host_email_idx ON services (host_email)`,
	`CREATE INDEX IF NOT EXISTS orders_buyer_email_idx ON orders (buyer_email)`,
}

// Store keeps timestamps as unix milliseconds.
type Store struct {
	db     *sqlx.DB
	logger zerolog.Logger
}

var _ store.Store = (*Store)(nil)

// Open opens (or creates) the database at path and applies the schema.
func Open(ctx context.Context, path string, logger zerolog.Logger) (*Store, error) {
	db, err := sqlx.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One writer at a time; also keeps transactions from deadlocking on
	// a second pooled connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}
	logger.Info().Str("path", path).Msg("sqlite store ready")
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Close() error { return s.db.Close() }

func millis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// Users

type userRow struct {
	ID          string         `db:"id"`
	Email       string         `db:"email"`
	Name        string         `db:"name"`
	Image       string         `db:"image"`
	IsAdmin     bool           `db:"is_admin"`
	PhoneNumber sql.NullString `db:"phone_number"`
	USN         sql.NullString `db:"usn"`
	Semester    sql.NullInt64  `db:"semester"`
	CreatedAt   int64          `db:"created_at"`
}

func (r userRow) model() models.User {
	u := models.User{
		ID:        r.ID,
		Email:     r.Email,
		Name:      r.Name,
		Image:     r.Image,
		IsAdmin:   r.IsAdmin,
		CreatedAt: fromMillis(r.CreatedAt),
	}
	if r.PhoneNumber.Valid {
		u.PhoneNumber = &r.PhoneNumber.String
	}
	if r.USN.Valid {
		u.USN = &r.USN.String
	}
	if r.Semester.Valid {
		sem := int(r.Semester.Int64)
		u.Semester = &sem
	}
	return u
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var r userRow
	if err := s.db.GetContext(ctx, &r, `SELECT * FROM users WHERE email = ?`, email); err != nil {
		return nil, fmt.Errorf("get user: %w", notFound(err))
	}
	u := r.model()
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var rows []userRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM users ORDER BY created_at`); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]models.User, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

func (s *Store) InsertUser(ctx context.Context, u *models.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, image, is_admin, phone_number, usn, semester, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, u.Image, u.IsAdmin, u.PhoneNumber, u.USN, u.Semester, millis(u.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) UpdateUser(ctx context.Context, u *models.User) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET name = ?, image = ?, is_admin = ?, phone_number = ?, usn = ?, semester = ?
		 WHERE email = ?`,
		u.Name, u.Image, u.IsAdmin, u.PhoneNumber, u.USN, u.Semester, u.Email,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update user: %w", store.ErrNotFound)
	}
	return nil
}

// Services

type serviceRow struct {
	ID               string         `db:"id"`
	Title            string         `db:"title"`
	Description      string         `db:"description"`
	Category         string         `db:"category"`
	PriceKind        string         `db:"price_kind"`
	PriceMin         float64        `db:"price_min"`
	PriceMax         float64        `db:"price_max"`
	Currency         string         `db:"currency"`
	HostName         string         `db:"host_name"`
	HostEmail        string         `db:"host_email"`
	HostRating       float64        `db:"host_rating"`
	Tags             string         `db:"tags"`
	DeliveryEstimate sql.NullString `db:"delivery_estimate"`
	PortfolioLink    sql.NullString `db:"portfolio_link"`
	CreatedAt        int64          `db:"created_at"`
}

func (r serviceRow) model() (models.Service, error) {
	price, err := models.PriceFromParts(r.PriceKind, r.PriceMin, r.PriceMax)
	if err != nil {
		return models.Service{}, err
	}
	svc := models.Service{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Price:       price,
		Currency:    r.Currency,
		HostName:    r.HostName,
		HostEmail:   r.HostEmail,
		HostRating:  r.HostRating,
		Tags:        []string{},
		CreatedAt:   fromMillis(r.CreatedAt),
	}
	if err := json.Unmarshal([]byte(r.Tags), &svc.Tags); err != nil {
		return models.Service{}, fmt.Errorf("decode tags: %w", err)
	}
	if r.DeliveryEstimate.Valid {
		svc.DeliveryEstimate = &r.DeliveryEstimate.String
	}
	if r.PortfolioLink.Valid {
		svc.PortfolioLink = &r.PortfolioLink.String
	}
	return svc, nil
}

func (s *Store) ListServices(ctx context.Context) ([]models.Service, error) {
	var rows []serviceRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM services ORDER BY created_at DESC, rowid DESC`); err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	out := make([]models.Service, 0, len(rows))
	for _, r := range rows {
		svc, err := r.model()
		if err != nil {
			return nil, fmt.Errorf("service %s: %w", r.ID, err)
		}
		out = append(out, svc)
	}
	return out, nil
}

func (s *Store) GetService(ctx context.Context, id string) (*models.Service, error) {
	var r serviceRow
	if err := s.db.GetContext(ctx, &r, `SELECT * FROM services WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("get service: %w", notFound(err))
	}
	svc, err := r.model()
	if err != nil {
		return nil, fmt.Errorf("service %s: %w", id, err)
	}
	return &svc, nil
}

func (s *Store) InsertService(ctx context.Context, svc *models.Service) error {
	tags := svc.Tags
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	kind, pmin, pmax := svc.Price.Parts()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO services (id, title, description, category, price_kind, price_min, price_max, currency,
			host_name, host_email, host_rating, tags, delivery_estimate, portfolio_link, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		svc.ID, svc.Title, svc.Description, svc.Category, kind, pmin, pmax, svc.Currency,
		svc.HostName, svc.HostEmail, svc.HostRating, string(encoded), svc.DeliveryEstimate, svc.PortfolioLink,
		millis(svc.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert service: %w", err)
	}
	return nil
}

// DeleteService removes the service and its cart and wishlist rows in one
// transaction.
func (s *Store) DeleteService(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete service: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM services WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete service: %w", store.ErrNotFound)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM carts WHERE service_id = ?`, id); err != nil {
		return fmt.Errorf("delete service carts: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM wishlists WHERE service_id = ?`, id); err != nil {
		return fmt.Errorf("delete service wishlists: %w", err)
	}
	return tx.Commit()
}

// Carts

type cartRow struct {
	ID               string          `db:"id"`
	UserEmail        string          `db:"user_email"`
	ServiceID        string          `db:"service_id"`
	Quantity         int             `db:"quantity"`
	PortfolioLink    string          `db:"portfolio_link"`
	Message          string          `db:"message"`
	NegotiationPrice sql.NullFloat64 `db:"negotiation_price"`
	AddedAt          int64           `db:"added_at"`
}

func (r cartRow) model() models.CartEntry {
	c := models.CartEntry{
		ID:            r.ID,
		UserEmail:     r.UserEmail,
		ServiceID:     r.ServiceID,
		Quantity:      r.Quantity,
		PortfolioLink: r.PortfolioLink,
		Message:       r.Message,
		AddedAt:       fromMillis(r.AddedAt),
	}
	if r.NegotiationPrice.Valid {
		c.NegotiationPrice = &r.NegotiationPrice.Float64
	}
	return c
}

func (s *Store) selectCarts(ctx context.Context, where string, args ...any) ([]models.CartEntry, error) {
	var rows []cartRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM carts `+where+` ORDER BY added_at, rowid`, args...); err != nil {
		return nil, fmt.Errorf("list carts: %w", err)
	}
	out := make([]models.CartEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

func (s *Store) ListCart(ctx context.Context, userEmail string) ([]models.CartEntry, error) {
	return s.selectCarts(ctx, `WHERE user_email = ?`, userEmail)
}

func (s *Store) ListAllCarts(ctx context.Context) ([]models.CartEntry, error) {
	return s.selectCarts(ctx, ``)
}

func (s *Store) ListCartByService(ctx context.Context, serviceID string) ([]models.CartEntry, error) {
	return s.selectCarts(ctx, `WHERE service_id = ?`, serviceID)
}

func (s *Store) UpsertCartEntry(ctx context.Context, e models.CartEntry) (models.CartEntry, error) {
	var r cartRow
	err := s.db.GetContext(ctx, &r,
		`INSERT INTO carts (id, user_email, service_id, quantity, portfolio_link, message, negotiation_price, added_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_email, service_id) DO UPDATE
		 SET quantity = excluded.quantity,
		     portfolio_link = excluded.portfolio_link,
		     message = excluded.message,
		     negotiation_price = excluded.negotiation_price
		 RETURNING *`,
		e.ID, e.UserEmail, e.ServiceID, e.Quantity, e.PortfolioLink, e.Message, e.NegotiationPrice, millis(e.AddedAt),
	)
	if err != nil {
		return models.CartEntry{}, fmt.Errorf("upsert cart entry: %w", err)
	}
	return r.model(), nil
}

func (s *Store) DeleteCartEntry(ctx context.Context, id, userEmail string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM carts WHERE id = ? AND user_email = ?`, id, userEmail); err != nil {
		return fmt.Errorf("delete cart entry: %w", err)
	}
	return nil
}

// Wishlists

type wishlistRow struct {
	ID        string `db:"id"`
	UserEmail string `db:"user_email"`
	ServiceID string `db:"service_id"`
	AddedAt   int64  `db:"added_at"`
}

func (r wishlistRow) model() models.WishlistEntry {
	return models.WishlistEntry{ID: r.ID, UserEmail: r.UserEmail, ServiceID: r.ServiceID, AddedAt: fromMillis(r.AddedAt)}
}

func (s *Store) selectWishlists(ctx context.Context, where string, args ...any) ([]models.WishlistEntry, error) {
	var rows []wishlistRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM wishlists `+where+` ORDER BY added_at, rowid`, args...); err != nil {
		return nil, fmt.Errorf("list wishlists: %w", err)
	}
	out := make([]models.WishlistEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

func (s *Store) ListWishlist(ctx context.Context, userEmail string) ([]models.WishlistEntry, error) {
	return s.selectWishlists(ctx, `WHERE user_email = ?`, userEmail)
}

func (s *Store) ListAllWishlists(ctx context.Context) ([]models.WishlistEntry, error) {
	return s.selectWishlists(ctx, ``)
}

func (s *Store) ToggleWishlistEntry(ctx context.Context, e models.WishlistEntry) (bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin toggle wishlist: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM wishlists WHERE user_email = ? AND service_id = ?`, e.UserEmail, e.ServiceID)
	if err != nil {
		return false, fmt.Errorf("toggle wishlist: %w", err)
	}
	n, _ := res.RowsAffected()
	present := n == 0
	if present {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO wishlists (id, user_email, service_id, added_at) VALUES (?, ?, ?, ?)`,
			e.ID, e.UserEmail, e.ServiceID, millis(e.AddedAt),
		); err != nil {
			return false, fmt.Errorf("toggle wishlist: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit toggle wishlist: %w", err)
	}
	return present, nil
}

func (s *Store) DeleteWishlistEntry(ctx context.Context, id, userEmail string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM wishlists WHERE id = ? AND user_email = ?`, id, userEmail); err != nil {
		return fmt.Errorf("delete wishlist entry: %w", err)
	}
	return nil
}

// Orders

type orderRow struct {
	Seq                int64   `db:"seq"`
	ID                 string  `db:"id"`
	BuyerEmail         string  `db:"buyer_email"`
	BuyerName          string  `db:"buyer_name"`
	HostEmail          string  `db:"host_email"`
	HostName           string  `db:"host_name"`
	ListingTitle       string  `db:"listing_title"`
	ListingDescription string  `db:"listing_description"`
	ServiceID          string  `db:"service_id"`
	PortfolioLink      string  `db:"portfolio_link"`
	Message            string  `db:"message"`
	Status             string  `db:"status"`
	Items              string  `db:"items"`
	Total              float64 `db:"total"`
	Currency           string  `db:"currency"`
	PlacedAt           int64   `db:"placed_at"`
	CreatedAt          int64   `db:"created_at"`
	LastActivity       int64   `db:"last_activity"`
}

func (s *Store) InsertOrders(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert orders: %w", err)
	}
	defer tx.Rollback()

	for _, o := range orders {
		items, err := json.Marshal(o.Items)
		if err != nil {
			return fmt.Errorf("encode order items: %w", err)
		}
		row := orderRow{
			ID: o.ID, BuyerEmail: o.BuyerEmail, BuyerName: o.BuyerName, HostEmail: o.HostEmail,
			HostName: o.HostName, ListingTitle: o.ListingTitle, ListingDescription: o.ListingDescription,
			ServiceID: o.ServiceID, PortfolioLink: o.PortfolioLink, Message: o.Message, Status: o.Status,
			Items: string(items), Total: o.Total, Currency: o.Currency, PlacedAt: millis(o.PlacedAt),
			CreatedAt: millis(o.CreatedAt), LastActivity: millis(o.LastActivity),
		}
		if _, err := tx.NamedExecContext(ctx,
			`INSERT INTO orders (id, buyer_email, buyer_name, host_email, host_name, listing_title,
				listing_description, service_id, portfolio_link, message, status, items, total, currency,
				placed_at, created_at, last_activity)
			 VALUES (:id, :buyer_email, :buyer_name, :host_email, :host_name, :listing_title,
				:listing_description, :service_id, :portfolio_link, :message, :status, :items, :total, :currency,
				:placed_at, :created_at, :last_activity)`, row); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
	}
	return tx.Commit()
}

func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	var rows []orderRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM orders ORDER BY placed_at, seq`); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	out := make([]models.Order, 0, len(rows))
	for _, r := range rows {
		o := models.Order{
			ID: r.ID, BuyerEmail: r.BuyerEmail, BuyerName: r.BuyerName, HostEmail: r.HostEmail,
			HostName: r.HostName, ListingTitle: r.ListingTitle, ListingDescription: r.ListingDescription,
			ServiceID: r.ServiceID, PortfolioLink: r.PortfolioLink, Message: r.Message, Status: r.Status,
			Total: r.Total, Currency: r.Currency, PlacedAt: fromMillis(r.PlacedAt),
			CreatedAt: fromMillis(r.CreatedAt), LastActivity: fromMillis(r.LastActivity),
		}
		if err := json.Unmarshal([]byte(r.Items), &o.Items); err != nil {
			return nil, fmt.Errorf("decode order items: %w", err)
		}
		out = append(out, o)
	}
	return out, nil
}
