package transport

import (
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/Skotchmaster/diamond_shop/internal/models"
)

type PageMeta struct {
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Total int `json:"total"`
}

type Page[T any] struct {
	Items []T
	Meta  PageMeta
}

// UnmarshalJSON accepts both `items` and `data` envelopes and `total` or `count`
// for the record count; a bare JSON array is treated as a single page.
func (p *Page[T]) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '[' {
		var items []T
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		p.Items = items
		p.Meta = PageMeta{Page: 1, Pages: 1, Total: len(items)}
		return nil
	}

	var raw struct {
		Items []T  `json:"items"`
		Data  []T  `json:"data"`
		Page  int  `json:"page"`
		Pages int  `json:"pages"`
		Total *int `json:"total"`
		Count *int `json:"count"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	p.Items = raw.Items
	if p.Items == nil {
		p.Items = raw.Data
	}
	p.Meta = PageMeta{Page: raw.Page, Pages: raw.Pages}
	switch {
	case raw.Total != nil:
		p.Meta.Total = *raw.Total
	case raw.Count != nil:
		p.Meta.Total = *raw.Count
	default:
		p.Meta.Total = len(p.Items)
	}
	return nil
}

// DiamondFilter carries catalog and inventory list parameters.
type DiamondFilter struct {
	Page     int      `json:"page,omitempty"`
	Limit    int      `json:"limit,omitempty"`
	Search   string   `json:"search,omitempty"`
	Shapes   []string `json:"shape,omitempty"`
	Colors   []string `json:"color,omitempty"`
	Clarity  []string `json:"clarity,omitempty"`
	Cut      []string `json:"cut,omitempty"`
	MinPrice *float64 `json:"minPrice,omitempty"`
	MaxPrice *float64 `json:"maxPrice,omitempty"`
	MinCarat *float64 `json:"minCarat,omitempty"`
	MaxCarat *float64 `json:"maxCarat,omitempty"`
}

func (f DiamondFilter) Values() url.Values {
	v := url.Values{}
	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		v.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	for _, s := range f.Shapes {
		v.Add("shape", s)
	}
	for _, s := range f.Colors {
		v.Add("color", s)
	}
	for _, s := range f.Clarity {
		v.Add("clarity", s)
	}
	for _, s := range f.Cut {
		v.Add("cut", s)
	}
	setFloat(v, "minPrice", f.MinPrice)
	setFloat(v, "maxPrice", f.MaxPrice)
	setFloat(v, "minCarat", f.MinCarat)
	setFloat(v, "maxCarat", f.MaxCarat)
	return v
}

func setFloat(v url.Values, key string, f *float64) {
	if f != nil {
		v.Set(key, strconv.FormatFloat(*f, 'f', -1, 64))
	}
}

type UserFilter struct {
	Page   int         `json:"page,omitempty"`
	Search string      `json:"search,omitempty"`
	Role   models.Role `json:"role,omitempty"`
}

func (f UserFilter) Values() url.Values {
	v := url.Values{}
	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	if f.Role != "" {
		v.Set("role", string(f.Role))
	}
	return v
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
	Company  string      `json:"companyName,omitempty"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type ApprovalRequest struct {
	Approval models.ApprovalStatus `json:"approvalStatus"`
}

type CollectionAddRequest struct {
	DiamondID string `json:"diamondId"`
}

type CheckoutRequest struct {
	DiamondIDs []string        `json:"diamondIds"`
	AddressID  string          `json:"addressId,omitempty"`
	Address    *models.Address `json:"shippingAddress,omitempty"`
	Currency   string          `json:"currency,omitempty"`
}

// PaymentIntent is the order/amount/currency triple handed to the payment widget.
type PaymentIntent struct {
	GatewayOrderID string  `json:"gatewayOrderId"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
	Key            string  `json:"key,omitempty"`
}

type CheckoutResponse struct {
	Order   models.Order  `json:"order"`
	Payment PaymentIntent `json:"payment"`
}

// PaymentResult is what the payment widget hands back to its callback.
type PaymentResult struct {
	OrderID          string `json:"orderId"`
	GatewayOrderID   string `json:"gatewayOrderId"`
	GatewayPaymentID string `json:"gatewayPaymentId"`
	Signature        string `json:"signature"`
}

type HTTPSourceRequest struct {
	URL      string            `json:"url" yaml:"url"`
	Method   string            `json:"method,omitempty" yaml:"method,omitempty"`
	Headers  map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	DataPath string            `json:"dataPath,omitempty" yaml:"dataPath,omitempty"`
}

type FTPSourceRequest struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port,omitempty" yaml:"port,omitempty"`
	User     string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"-"`
	Path     string `json:"path" yaml:"path"`
}

type HeaderPreviewResponse struct {
	Headers []string `json:"headers"`
}

type HTTPUploadRequest struct {
	Source  HTTPSourceRequest `json:"source"`
	Mapping map[string]string `json:"mapping"`
}

type FTPUploadRequest struct {
	Source  FTPSourceRequest  `json:"source"`
	Mapping map[string]string `json:"mapping"`
}

type ErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}
