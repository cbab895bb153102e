package models

import "time"

// User is the authenticated admin identity returned by the account API.
type User struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"isAdmin"`
}

// Session is the in-memory authentication state. Token and IsAuthenticated
// are always updated together under the session store's lock.
type Session struct {
	Token           string
	UserID          string
	User            *User
	IsAuthenticated bool
}

// AuthResult is the payload of a successful login.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Product is a catalog entry. The server owns the record; the dashboard
// holds a cached copy per listing page and replaces it only with server
// responses.
type Product struct {
	ID                 string   `json:"_id"`
	Name               string   `json:"name"`
	Price              float64  `json:"price"`
	DiscountPrice      float64  `json:"discountPrice"`
	DiscountPercentage float64  `json:"discountPercentage"`
	Description        string   `json:"description"`
	Category           string   `json:"category"`
	Stock              int      `json:"stock"`
	ImageURLs          []string `json:"imageUrl"`
	Sold               int      `json:"sold"`
	Version            int      `json:"__v"`
}

// ProductPage is one page of a paginated product listing.
type ProductPage struct {
	Products   []Product `json:"products"`
	TotalPages int       `json:"totalPages"`
}

// OrderCustomer is the populated userId reference on an order.
type OrderCustomer struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// OrderItem is a line item carrying a product snapshot.
type OrderItem struct {
	Product  Product `json:"productId"`
	Quantity int     `json:"quantity"`
}

// ShippingAddress carries delivery details plus the order status, which is
// the only field admins mutate in place.
type ShippingAddress struct {
	FullName    string `json:"fullName"`
	AddressLine string `json:"addressLine"`
	City        string `json:"city"`
	Country     string `json:"country"`
	PostalCode  string `json:"postalCode"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email"`
	Message     string `json:"message"`
	Status      string `json:"status"`
}

// Order is a customer order as returned by the orders API.
type Order struct {
	ID              string          `json:"_id"`
	Customer        OrderCustomer   `json:"userId"`
	Items           []OrderItem     `json:"items"`
	TotalAmount     float64         `json:"totalAmount"`
	CreatedAt       time.Time       `json:"createdAt"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
}

// OrderPatch is a partial update to an order's shipping address. Nil fields
// are omitted from the wire payload. The gateway serializes set fields to
// the dotted-path keys the upstream API expects.
type OrderPatch struct {
	Status      *string `json:"status,omitempty"`
	FullName    *string `json:"fullName,omitempty"`
	AddressLine *string `json:"addressLine,omitempty"`
	City        *string `json:"city,omitempty"`
	Country     *string `json:"country,omitempty"`
	PostalCode  *string `json:"postalCode,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	Email       *string `json:"email,omitempty"`
	Message     *string `json:"message,omitempty"`
}

// SalesSummary is a derived, non-persisted aggregate over orders.
type SalesSummary struct {
	TotalAmount   float64 `json:"totalAmount"`
	TotalQuantity int     `json:"totalQuantity"`
}

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirm   = "confirm"
	OrderStatusDelivered = "delivered"
	OrderStatusWarning   = "warning"
)

// OrderStatuses lists the valid status filter values.
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusConfirm,
	OrderStatusDelivered,
	OrderStatusWarning,
}

// Categories is the fixed catalog tag set.
var Categories = []string{
	"men-all",
	"men-sneakers-casual-shoes",
	"men-formal-shoes",
	"men-sports-shoes",
	"men-sandals-slippers",
	"men-peshawari-chappal",
	"men-women-socks",
	"shoe-care-products",
	"women-all",
	"women-pumps-khusa",
	"women-heels-sandals",
	"women-loafers",
	"women-sneakers-casual-shoes",
	"women-slippers-chappal",
}

// ValidStatus reports whether s is a known order status.
func ValidStatus(s string) bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ValidCategory reports whether c is a known catalog category.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
