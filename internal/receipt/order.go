// Package receipt renders orders into printable receipts. Two renderers are
// provided, one producing HTML markup for system print spooling and one
// producing an ESC/POS command stream for thermal printers. Both walk the
// same layout so every receipt carries the sections in the same order no
// matter which output a device consumes.
package receipt

import (
	"strconv"
	"time"
)

// PaymentMethod identifies how an order was paid.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentMobile PaymentMethod = "mobile"
)

// Label returns the printable Arabic label for the payment method.
// Anything unrecognized falls back to the mobile wallet label.
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentCash:
		return "نقداً"
	case PaymentCard:
		return "بطاقة"
	default:
		return "محفظة رقمية"
	}
}

// Item is a single order line.
type Item struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// LineTotal returns the extended price for the line.
func (i Item) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

// Order carries everything a receipt needs. Totals are taken as given and
// never recomputed from the items.
type Order struct {
	ID            string        `json:"id"`
	Items         []Item        `json:"items"`
	Subtotal      float64       `json:"subtotal"`
	Discount      float64       `json:"discount"`
	Total         float64       `json:"total"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	CustomerName  string        `json:"customerName,omitempty"`
	CustomerPhone string        `json:"customerPhone,omitempty"`
	Notes         string        `json:"notes,omitempty"`
	Timestamp     time.Time     `json:"timestamp"`
}

// RestaurantInfo is the header block of a receipt. Empty fields fall back
// to the configured restaurant defaults.
type RestaurantInfo struct {
	Name     string `json:"name"`
	Subtitle string `json:"subtitle"`
	LogoPath string `json:"logoPath,omitempty"`
}

const (
	DefaultRestaurantName     = "هابي تايم"
	DefaultRestaurantSubtitle = "مطعم السندوتشات الشهية"
)

// Currency is the amount suffix on every money line.
const Currency = "د.ل"

// TestOrder returns the fixed order used for test prints.
func TestOrder() *Order {
	return &Order{
		ID: "TEST-001",
		Items: []Item{
			{Name: "اختبار الطباعة", Price: 1.00, Quantity: 1},
		},
		Subtotal:      1.00,
		Discount:      0,
		Total:         1.00,
		PaymentMethod: PaymentCash,
		CustomerName:  "عميل تجريبي",
		Timestamp:     time.Now(),
	}
}

// TestRestaurantInfo returns the header used for test prints.
func TestRestaurantInfo() RestaurantInfo {
	return RestaurantInfo{
		Name:     DefaultRestaurantName,
		Subtitle: "اختبار الطباعة",
	}
}

// FormatAmount renders a money value with exactly two decimals and no
// grouping separators.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func (o *Order) timestampText() string {
	ts := o.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return ts.Format("2006/01/02 15:04")
}
