package models

import "time"

const (
	// Currency is the only currency listings are priced in.
	Currency = "INR"
	// DefaultHostRating is assigned to newly created listings.
	DefaultHostRating = 4.7
	// DefaultBuyerName is used when an order's buyer has no user record.
	DefaultBuyerName = "Student"
)

// User is a campus identity keyed by email.
type User struct {
	ID          string    `json:"id" db:"id"`
	Email       string    `json:"email" db:"email"`
	Name        string    `json:"name" db:"name"`
	Image       string    `json:"image,omitempty" db:"image"`
	IsAdmin     bool      `json:"isAdmin" db:"is_admin"`
	PhoneNumber *string   `json:"phoneNumber" db:"phone_number"`
	USN         *string   `json:"usn" db:"usn"`
	Semester    *int      `json:"semester" db:"semester"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// Profile is the editable contact part of a User.
type Profile struct {
	PhoneNumber *string `json:"phoneNumber"`
	USN         *string `json:"usn"`
	Semester    *int    `json:"semester"`
}

func (u *User) Profile() Profile {
	return Profile{PhoneNumber: u.PhoneNumber, USN: u.USN, Semester: u.Semester}
}

// Service is a listing offered by a host.
type Service struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Category         string    `json:"category"`
	Price            Price     `json:"price"`
	Currency         string    `json:"currency"`
	HostName         string    `json:"hostName"`
	HostEmail        string    `json:"hostEmail"`
	HostRating       float64   `json:"hostRating"`
	Tags             []string  `json:"tags"`
	DeliveryEstimate *string   `json:"deliveryEstimate"`
	PortfolioLink    *string   `json:"portfolioLink"`
	CreatedAt        time.Time `json:"createdAt"`
}

// CartEntry records a student's interest in a service.
type CartEntry struct {
	ID               string    `json:"id" db:"id"`
	UserEmail        string    `json:"userEmail" db:"user_email"`
	ServiceID        string    `json:"serviceId" db:"service_id"`
	Quantity         int       `json:"quantity" db:"quantity"`
	PortfolioLink    string    `json:"portfolioLink" db:"portfolio_link"`
	Message          string    `json:"message" db:"message"`
	NegotiationPrice *float64  `json:"negotiationPrice,omitempty" db:"negotiation_price"`
	AddedAt          time.Time `json:"addedAt" db:"added_at"`
}

// WishlistEntry marks a saved service.
type WishlistEntry struct {
	ID        string    `json:"id" db:"id"`
	UserEmail string    `json:"userEmail" db:"user_email"`
	ServiceID string    `json:"serviceId" db:"service_id"`
	AddedAt   time.Time `json:"addedAt" db:"added_at"`
}

// CartItem is a cart entry joined with its service. Service is nil when the
// listing no longer exists.
type CartItem struct {
	CartEntry
	Service *Service `json:"service"`
}

// WishlistItem is a wishlist entry joined with its service.
type WishlistItem struct {
	WishlistEntry
	Service *Service `json:"service"`
}

// Order status values. Orders are created as StatusCarted; nothing moves
// them further until payments exist.
const (
	StatusCarted            = "carted"
	StatusCheckoutAttempted = "checkout_attempted"
	StatusPending           = "pending"
	StatusCompleted         = "completed"
)

// OrderItem is the line item snapshot stored on an order.
type OrderItem struct {
	ServiceID    string `json:"serviceId"`
	Title        string `json:"title"`
	ServiceTitle string `json:"serviceTitle"`
	Price        Price  `json:"price"`
	Quantity     int    `json:"quantity"`
}

// Order is created from one cart entry at checkout. Host and listing fields
// are copied at creation time.
type Order struct {
	ID                 string      `json:"id"`
	BuyerEmail         string      `json:"buyerEmail"`
	BuyerName          string      `json:"buyerName"`
	HostEmail          string      `json:"hostEmail"`
	HostName           string      `json:"hostName"`
	ListingTitle       string      `json:"listingTitle"`
	ListingDescription string      `json:"listingDescription"`
	ServiceID          string      `json:"serviceId"`
	PortfolioLink      string      `json:"portfolioLink"`
	Message            string      `json:"message"`
	Status             string      `json:"status"`
	Items              []OrderItem `json:"items"`
	Total              float64     `json:"total"`
	Currency           string      `json:"currency"`
	PlacedAt           time.Time   `json:"placedAt"`
	CreatedAt          time.Time   `json:"createdAt"`
	LastActivity       time.Time   `json:"lastActivity"`
}

// OrderView is an order with the buyer's contact details attached.
type OrderView struct {
	Order
	BuyerUSN      *string `json:"buyerUsn"`
	BuyerPhone    *string `json:"buyerPhone"`
	BuyerSemester *int    `json:"buyerSemester"`
}
