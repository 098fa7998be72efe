package orders

import "time"

type LineItem struct {
	SKU        string  `json:"sku"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
	SizeOption string  `json:"size_option,omitempty"`
}

type Address struct {
	Line1           string `json:"line1"`
	Line2           string `json:"line2,omitempty"`
	City            string `json:"city"`
	StateOrProvince string `json:"state_or_province,omitempty"`
	PostalCode      string `json:"postal_code,omitempty"`
	Country         string `json:"country"`
}

// Order is keyed by a generated business id ("ORD-<uuid>"), never by a
// storage-internal id. TotalAmount is computed once at creation and no
// operation here recomputes or mutates it.
type Order struct {
	OrderID         string     `json:"order_id"`
	CustomerEmail   string     `json:"customer_email"`
	Items           []LineItem `json:"items"`
	ShippingAddress *Address   `json:"shipping_address,omitempty"`
	TotalAmount     float64    `json:"total_amount"`
	Status          Status     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
