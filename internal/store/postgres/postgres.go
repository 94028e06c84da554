// Package postgres implements store.Store on a pgx connection pool.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sudo-init-do/campusgigs/internal/models"
	"github.com/sudo-init-do/campusgigs/internal/store"
)

type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

// New wraps a pool whose schema was prepared by db.EnsureSchema. Close
// closes the pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Users

const userColumns = `id, email, name, image, is_admin, phone_number, usn, semester, created_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Image, &u.IsAdmin, &u.PhoneNumber, &u.USN, &u.Semester, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (s *Store) InsertUser(ctx context.Context, u *models.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		u.ID, u.Email, u.Name, u.Image, u.IsAdmin, u.PhoneNumber, u.USN, u.Semester, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) UpdateUser(ctx context.Context, u *models.User) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users
		 SET name = $2, image = $3, is_admin = $4, phone_number = $5, usn = $6, semester = $7
		 WHERE email = $1`,
		u.Email, u.Name, u.Image, u.IsAdmin, u.PhoneNumber, u.USN, u.Semester,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update user: %w", store.ErrNotFound)
	}
	return nil
}

// Services

const serviceColumns = `id, title, description, category, price_kind, price_min, price_max, currency,
	host_name, host_email, host_rating, tags, delivery_estimate, portfolio_link, created_at`

func scanService(row pgx.Row) (*models.Service, error) {
	var (
		svc        models.Service
		kind       string
		pmin, pmax float64
	)
	err := row.Scan(&svc.ID, &svc.Title, &svc.Description, &svc.Category, &kind, &pmin, &pmax, &svc.Currency,
		&svc.HostName, &svc.HostEmail, &svc.HostRating, &svc.Tags, &svc.DeliveryEstimate, &svc.PortfolioLink, &svc.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if svc.Price, err = models.PriceFromParts(kind, pmin, pmax); err != nil {
		return nil, err
	}
	if svc.Tags == nil {
		svc.Tags = []string{}
	}
	return &svc, nil
}

func (s *Store) ListServices(ctx context.Context) ([]models.Service, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+serviceColumns+` FROM services ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var out []models.Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		out = append(out, *svc)
	}
	return out, rows.Err()
}

func (s *Store) GetService(ctx context.Context, id string) (*models.Service, error) {
	svc, err := scanService(s.pool.QueryRow(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get service: %w", err)
	}
	return svc, nil
}

func (s *Store) InsertService(ctx context.Context, svc *models.Service) error {
	kind, pmin, pmax := svc.Price.Parts()
	tags := svc.Tags
	if tags == nil {
		tags = []string{}
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO services (`+serviceColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		svc.ID, svc.Title, svc.Description, svc.Category, kind, pmin, pmax, svc.Currency,
		svc.HostName, svc.HostEmail, svc.HostRating, tags, svc.DeliveryEstimate, svc.PortfolioLink, svc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert service: %w", err)
	}
	return nil
}

// DeleteService removes the service and its cart and wishlist rows in one
// transaction.
func (s *Store) DeleteService(ctx context.Context, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete service: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete service: %w", store.ErrNotFound)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM carts WHERE service_id = $1`, id); err != nil {
		return fmt.Errorf("delete service carts: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM wishlists WHERE service_id = $1`, id); err != nil {
		return fmt.Errorf("delete service wishlists: %w", err)
	}
	return tx.Commit(ctx)
}

// Carts

const cartColumns = `id, user_email, service_id, quantity, portfolio_link, message, negotiation_price, added_at`

func scanCart(row pgx.Row) (models.CartEntry, error) {
	var c models.CartEntry
	err := row.Scan(&c.ID, &c.UserEmail, &c.ServiceID, &c.Quantity, &c.PortfolioLink, &c.Message, &c.NegotiationPrice, &c.AddedAt)
	return c, err
}

func (s *Store) queryCarts(ctx context.Context, where string, args ...any) ([]models.CartEntry, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+cartColumns+` FROM carts `+where+` ORDER BY added_at, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list carts: %w", err)
	}
	defer rows.Close()

	var out []models.CartEntry
	for rows.Next() {
		c, err := scanCart(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cart: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) ListCart(ctx context.Context, userEmail string) ([]models.CartEntry, error) {
	return s.queryCarts(ctx, `WHERE user_email = $1`, userEmail)
}

func (s *Store) ListAllCarts(ctx context.Context) ([]models.CartEntry, error) {
	return s.queryCarts(ctx, ``)
}

func (s *Store) ListCartByService(ctx context.Context, serviceID string) ([]models.CartEntry, error) {
	return s.queryCarts(ctx, `WHERE service_id = $1`, serviceID)
}

func (s *Store) UpsertCartEntry(ctx context.Context, e models.CartEntry) (models.CartEntry, error) {
	stored, err := scanCart(s.pool.QueryRow(ctx,
		`INSERT INTO carts (`+cartColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (user_email, service_id) DO UPDATE
		 SET quantity = EXCLUDED.quantity,
		     portfolio_link = EXCLUDED.portfolio_link,
		     message = EXCLUDED.message,
		     negotiation_price = EXCLUDED.negotiation_price
		 RETURNING `+cartColumns,
		e.ID, e.UserEmail, e.ServiceID, e.Quantity, e.PortfolioLink, e.Message, e.NegotiationPrice, e.AddedAt,
	))
	if err != nil {
		return models.CartEntry{}, fmt.Errorf("upsert cart entry: %w", err)
	}
	return stored, nil
}

func (s *Store) DeleteCartEntry(ctx context.Context, id, userEmail string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM carts WHERE id = $1 AND user_email = $2`, id, userEmail); err != nil {
		return fmt.Errorf("delete cart entry: %w", err)
	}
	return nil
}

// Wishlists

func (s *Store) queryWishlists(ctx context.Context, where string, args ...any) ([]models.WishlistEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_email, service_id, added_at FROM wishlists `+where+` ORDER BY added_at, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list wishlists: %w", err)
	}
	defer rows.Close()

	var out []models.WishlistEntry
	for rows.Next() {
		var w models.WishlistEntry
		if err := rows.Scan(&w.ID, &w.UserEmail, &w.ServiceID, &w.AddedAt); err != nil {
			return nil, fmt.Errorf("scan wishlist: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *Store) ListWishlist(ctx context.Context, userEmail string) ([]models.WishlistEntry, error) {
	return s.queryWishlists(ctx, `WHERE user_email = $1`, userEmail)
}

func (s *Store) ListAllWishlists(ctx context.Context) ([]models.WishlistEntry, error) {
	return s.queryWishlists(ctx, ``)
}

func (s *Store) ToggleWishlistEntry(ctx context.Context, e models.WishlistEntry) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin toggle wishlist: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM wishlists WHERE user_email = $1 AND service_id = $2`, e.UserEmail, e.ServiceID)
	if err != nil {
		return false, fmt.Errorf("toggle wishlist: %w", err)
	}
	present := tag.RowsAffected() == 0
	if present {
		if _, err := tx.Exec(ctx,
			`INSERT INTO wishlists (id, user_email, service_id, added_at) VALUES ($1, $2, $3, $4)`,
			e.ID, e.UserEmail, e.ServiceID, e.AddedAt,
		); err != nil {
			return false, fmt.Errorf("toggle wishlist: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit toggle wishlist: %w", err)
	}
	return present, nil
}

func (s *Store) DeleteWishlistEntry(ctx context.Context, id, userEmail string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM wishlists WHERE id = $1 AND user_email = $2`, id, userEmail); err != nil {
		return fmt.Errorf("delete wishlist entry: %w", err)
	}
	return nil
}

// Orders

const orderColumns = `id, buyer_email, buyer_name, host_email, host_name, listing_title, listing_description,
	service_id, portfolio_link, message, status, items, total, currency, placed_at, created_at, last_activity`

func (s *Store) InsertOrders(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, o := range orders {
		items, err := json.Marshal(o.Items)
		if err != nil {
			return fmt.Errorf("encode order items: %w", err)
		}
		batch.Queue(`INSERT INTO orders (`+orderColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
			o.ID, o.BuyerEmail, o.BuyerName, o.HostEmail, o.HostName, o.ListingTitle, o.ListingDescription,
			o.ServiceID, o.PortfolioLink, o.Message, o.Status, string(items), o.Total, o.Currency,
			o.PlacedAt, o.CreatedAt, o.LastActivity)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin insert orders: %w", err)
	}
	defer tx.Rollback(ctx)
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert orders: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY placed_at, seq`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []models.Order
	for rows.Next() {
		var (
			o     models.Order
			items []byte
		)
		if err := rows.Scan(&o.ID, &o.BuyerEmail, &o.BuyerName, &o.HostEmail, &o.HostName, &o.ListingTitle,
			&o.ListingDescription, &o.ServiceID, &o.PortfolioLink, &o.Message, &o.Status, &items, &o.Total,
			&o.Currency, &o.PlacedAt, &o.CreatedAt, &o.LastActivity); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return nil, fmt.Errorf("decode order items: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
