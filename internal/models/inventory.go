package models

// Inventory groups every listing by host and every cart entry by student.
type Inventory struct {
	ServicesByHost map[string][]Service   `json:"servicesByHost"`
	CartByStudent  map[string][]CartEntry `json:"cartByStudent"`
}

// HostGroup is one host with contact details and listings.
type HostGroup struct {
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	Phone    *string   `json:"phone"`
	USN      *string   `json:"usn"`
	Semester *int      `json:"semester"`
	Services []Service `json:"services"`
}

// StudentGroup is one student with contact details and joined cart items.
type StudentGroup struct {
	Email    string     `json:"email"`
	Name     string     `json:"name"`
	Phone    *string    `json:"phone"`
	USN      *string    `json:"usn"`
	Semester *int       `json:"semester"`
	Items    []CartItem `json:"items"`
}

type InventoryDetails struct {
	Hosts    []HostGroup    `json:"hosts"`
	Students []StudentGroup `json:"students"`
}

// Stats holds collection sizes for the admin dashboard.
type Stats struct {
	Users     int `json:"users"`
	Services  int `json:"services"`
	Hosts     int `json:"hosts"`
	Carts     int `json:"carts"`
	Wishlists int `json:"wishlists"`
	Orders    int `json:"orders"`
}
