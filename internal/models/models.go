package models

import (
	"time"
)

type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleBuyer    Role = "Buyer"
	RoleSupplier Role = "Supplier"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleBuyer, RoleSupplier:
		return true
	}
	return false
}

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Session is the authenticated identity mirrored from the backend login response.
// A token is present iff the user is logged in.
type Session struct {
	UserID    string         `json:"_id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Role      Role           `json:"role"`
	Approval  ApprovalStatus `json:"approvalStatus,omitempty"`
	Token     string         `json:"token"`
	CreatedAt time.Time      `json:"createdAt,omitempty"`
}

func (s *Session) LoggedIn() bool {
	return s != nil && s.Token != ""
}

type Availability string

const (
	AvailabilityAvailable Availability = "available"
	AvailabilityOnHold    Availability = "on_hold"
	AvailabilitySold      Availability = "sold"
)

type Diamond struct {
	ID                string       `json:"_id"`
	StockID           string       `json:"stockId"`
	Shape             string       `json:"shape,omitempty"`
	Carat             float64      `json:"carat"`
	Color             string       `json:"color,omitempty"`
	Clarity           string       `json:"clarity,omitempty"`
	Cut               string       `json:"cut,omitempty"`
	Polish            string       `json:"polish,omitempty"`
	Symmetry          string       `json:"symmetry,omitempty"`
	Fluorescence      string       `json:"fluorescence,omitempty"`
	Lab               string       `json:"lab,omitempty"`
	CertificateNumber string       `json:"certificateNumber,omitempty"`
	Price             float64      `json:"price"`
	PricePerCarat     float64      `json:"pricePerCarat,omitempty"`
	ImageURL          string       `json:"imageUrl,omitempty"`
	VideoURL          string       `json:"videoUrl,omitempty"`
	SupplierID        string       `json:"supplier,omitempty"`
	Availability      Availability `json:"availability,omitempty"`
}

// Key is the stock id: catalog detail routes and supplier edits address diamonds by it.
func (d Diamond) Key() string { return d.StockID }

type CartEntry struct {
	ID        string    `json:"_id"`
	DiamondID string    `json:"diamondId"`
	Diamond   *Diamond  `json:"diamond,omitempty"`
	AddedAt   time.Time `json:"addedAt,omitempty"`
}

func (e CartEntry) Key() string { return e.DiamondID }

type WishlistEntry struct {
	ID        string    `json:"_id"`
	DiamondID string    `json:"diamondId"`
	Diamond   *Diamond  `json:"diamond,omitempty"`
	AddedAt   time.Time `json:"addedAt,omitempty"`
}

func (e WishlistEntry) Key() string { return e.DiamondID }

type OrderStatus string

const (
	OrderPending    OrderStatus = "Pending"
	OrderProcessing OrderStatus = "Processing"
	OrderShipped    OrderStatus = "Shipped"
	OrderCompleted  OrderStatus = "Completed"
	OrderCancelled  OrderStatus = "Cancelled"
)

type OrderItem struct {
	DiamondID string  `json:"diamondId"`
	StockID   string  `json:"stockId,omitempty"`
	Supplier  string  `json:"supplier,omitempty"`
	Price     float64 `json:"price"`
}

type Order struct {
	ID              string      `json:"_id"`
	Buyer           string      `json:"buyer,omitempty"`
	Items           []OrderItem `json:"items"`
	Total           float64     `json:"totalAmount"`
	Currency        string      `json:"currency,omitempty"`
	Status          OrderStatus `json:"status"`
	PaymentStatus   string      `json:"paymentStatus,omitempty"`
	ShippingAddress *Address    `json:"shippingAddress,omitempty"`
	CreatedAt       time.Time   `json:"createdAt,omitempty"`
}

func (o Order) Key() string { return o.ID }

type Notification struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Kind      string    `json:"type,omitempty"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

func (n Notification) Key() string { return n.ID }

type Address struct {
	ID         string `json:"_id,omitempty"`
	Label      string `json:"label,omitempty"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
	IsDefault  bool   `json:"isDefault,omitempty"`
}

func (a Address) Key() string { return a.ID }

type User struct {
	ID        string         `json:"_id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Role      Role           `json:"role"`
	Approval  ApprovalStatus `json:"approvalStatus,omitempty"`
	Company   string         `json:"companyName,omitempty"`
	CreatedAt time.Time      `json:"createdAt,omitempty"`
}

func (u User) Key() string { return u.ID }

type DashboardStats struct {
	TotalInventory int     `json:"totalInventory"`
	AvailableCount int     `json:"availableCount"`
	OnHoldCount    int     `json:"onHoldCount"`
	SoldCount      int     `json:"soldCount"`
	TotalOrders    int     `json:"totalOrders"`
	PendingOrders  int     `json:"pendingOrders"`
	Revenue        float64 `json:"revenue"`
	RecentOrders   []Order `json:"recentOrders,omitempty"`
}

// ImportError describes one rejected source row; Row is 1-based.
type ImportError struct {
	Row     int            `json:"row"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

type ImportSummary struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Errors    []ImportError `json:"errors,omitempty"`
}
