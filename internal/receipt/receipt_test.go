package receipt

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func sampleOrder() *Order {
	return &Order{
		ID: "ORD-100",
		Items: []Item{
			{Name: "برجر دجاج", Price: 15.00, Quantity: 2},
			{Name: "بطاطس", Price: 10.00, Quantity: 1},
		},
		Subtotal:      40.00,
		Discount:      0,
		Total:         40.00,
		PaymentMethod: PaymentCash,
		Timestamp:     time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC),
	}
}

func TestRenderMarkupBasicOrder(t *testing.T) {
	out := string(RenderMarkup(sampleOrder(), RestaurantInfo{}, DefaultOptions()))

	if !strings.Contains(out, "40.00") {
		t.Error("Markup should contain the total amount")
	}
	if !strings.Contains(out, "نقداً") {
		t.Error("Markup should contain the cash payment label")
	}
	if !strings.Contains(out, DefaultRestaurantName) {
		t.Error("Markup should fall back to the default restaurant name")
	}
	if !strings.Contains(out, "ORD-100") {
		t.Error("Markup should contain the order id")
	}
}

func TestRenderMarkupDiscountSuppressed(t *testing.T) {
	out := string(RenderMarkup(sampleOrder(), RestaurantInfo{}, DefaultOptions()))

	if strings.Contains(out, labelDiscount) {
		t.Error("Zero discount should not produce a discount line")
	}
}

func TestRenderMarkupDiscountLine(t *testing.T) {
	order := sampleOrder()
	order.Discount = 5.00
	order.Total = 35.00

	out := string(RenderMarkup(order, RestaurantInfo{}, DefaultOptions()))

	if got := strings.Count(out, "-5.00"); got != 1 {
		t.Errorf("Expected exactly one discount amount, found %d", got)
	}
	if !strings.Contains(out, labelDiscount) {
		t.Error("Positive discount should produce a discount line")
	}
}

func TestRenderMarkupCustomerGating(t *testing.T) {
	order := sampleOrder()
	order.CustomerName = "أحمد"

	opt := DefaultOptions()
	opt.PrintCustomerInfo = false
	out := string(RenderMarkup(order, RestaurantInfo{}, opt))
	if strings.Contains(out, labelCustomer) {
		t.Error("Customer section should be omitted when disabled")
	}

	opt.PrintCustomerInfo = true
	out = string(RenderMarkup(order, RestaurantInfo{}, opt))
	if !strings.Contains(out, "أحمد") {
		t.Error("Customer section should be present when enabled")
	}

	order.CustomerName = ""
	order.CustomerPhone = ""
	out = string(RenderMarkup(order, RestaurantInfo{}, opt))
	if strings.Contains(out, labelCustomer) || strings.Contains(out, labelPhone) {
		t.Error("Customer section should be omitted when both fields are empty")
	}
}

func TestRenderMarkupHeaderGating(t *testing.T) {
	opt := DefaultOptions()
	opt.PrintLogo = false
	opt.PrintFooter = false

	out := string(RenderMarkup(sampleOrder(), RestaurantInfo{}, opt))

	if strings.Contains(out, DefaultRestaurantName) {
		t.Error("Header should be omitted when logo printing is disabled")
	}
	if strings.Contains(out, footerThanks) {
		t.Error("Footer should be omitted when disabled")
	}
}

func TestRenderMarkupLocalizesTimestampDigits(t *testing.T) {
	out := string(RenderMarkup(sampleOrder(), RestaurantInfo{}, DefaultOptions()))
	if !strings.Contains(out, "٢٠٢٦/٠٣/١٤ ١٨:٣٠") {
		t.Error("Markup timestamp should use Arabic-Indic digits")
	}

	// The thermal stream stays on ASCII digits.
	stream := RenderCommandStream(sampleOrder(), RestaurantInfo{}, DefaultOptions())
	if !bytes.Contains(stream, []byte("2026/03/14 18:30")) {
		t.Error("Command stream timestamp should keep ASCII digits")
	}
}

func TestRenderMarkupEscapesHTML(t *testing.T) {
	order := sampleOrder()
	order.Items[0].Name = "<b>burger</b>"

	out := string(RenderMarkup(order, RestaurantInfo{}, DefaultOptions()))

	if strings.Contains(out, "<b>burger</b>") {
		t.Error("Item names must be HTML escaped")
	}
	if !strings.Contains(out, "&lt;b&gt;burger&lt;/b&gt;") {
		t.Error("Escaped item name missing from output")
	}
}

func TestRenderMarkupZeroItems(t *testing.T) {
	order := sampleOrder()
	order.Items = nil

	out := string(RenderMarkup(order, RestaurantInfo{}, DefaultOptions()))

	if strings.Contains(out, "×") {
		t.Error("Empty order should not produce item rows")
	}
	if !strings.Contains(out, labelSubtotal) {
		t.Error("Totals section should render even with no items")
	}
}

func TestRenderMarkupSectionOrder(t *testing.T) {
	order := sampleOrder()
	order.CustomerName = "أحمد"
	order.Notes = "بدون بصل"

	out := string(RenderMarkup(order, RestaurantInfo{}, DefaultOptions()))

	markers := []string{
		DefaultRestaurantName,
		labelOrderID,
		labelCustomer,
		labelSubtotal,
		labelTotal,
		labelPayment,
		labelNotes,
		footerThanks,
	}
	last := -1
	for _, m := range markers {
		idx := strings.Index(out, m)
		if idx < 0 {
			t.Fatalf("Marker %q missing from markup", m)
		}
		if idx < last {
			t.Errorf("Marker %q out of order", m)
		}
		last = idx
	}
}

func TestRenderCommandStreamFraming(t *testing.T) {
	out := RenderCommandStream(sampleOrder(), RestaurantInfo{}, DefaultOptions())

	if !bytes.HasPrefix(out, []byte{0x1B, '@'}) {
		t.Error("Stream should start with the initialize command")
	}
	if !bytes.Contains(out, []byte{0x1B, 't', CodePageArabic.Number}) {
		t.Error("Stream should select the Arabic code table")
	}
	if !bytes.HasSuffix(out, []byte{0x0A, 0x0A, 0x0A, 0x1D, 'V', 0x00}) {
		t.Error("Stream should end with a feed and a full cut")
	}
}

func TestRenderCommandStreamTotalsEmphasis(t *testing.T) {
	out := RenderCommandStream(sampleOrder(), RestaurantInfo{}, DefaultOptions())

	// Double size plus bold marks the grand total.
	emphasis := []byte{0x1D, '!', SizeDouble, 0x1B, 'E', 1}
	if !bytes.Contains(out, emphasis) {
		t.Error("Grand total should print at double size and bold")
	}
}

func TestRenderCommandStreamSectionOrder(t *testing.T) {
	out := RenderCommandStream(sampleOrder(), RestaurantInfo{}, DefaultOptions())

	idIdx := bytes.Index(out, []byte("ORD-100"))
	subtotalIdx := bytes.Index(out, []byte("40.00"))
	sepIdx := bytes.LastIndex(out, []byte(separatorLine))
	if idIdx < 0 || subtotalIdx < 0 || sepIdx < 0 {
		t.Fatal("Expected markers missing from command stream")
	}
	if idIdx > subtotalIdx {
		t.Error("Order id should print before totals")
	}
}

func TestRenderCommandStreamDiscountParity(t *testing.T) {
	order := sampleOrder()
	order.Discount = 5.00
	order.Total = 35.00

	stream := RenderCommandStream(order, RestaurantInfo{}, DefaultOptions())
	markup := RenderMarkup(order, RestaurantInfo{}, DefaultOptions())

	if !bytes.Contains(stream, []byte("-5.00")) {
		t.Error("Command stream missing discount amount")
	}
	if !bytes.Contains(markup, []byte("-5.00")) {
		t.Error("Markup missing discount amount")
	}
}

func TestFormatAmount(t *testing.T) {
	cases := map[float64]string{
		40:     "40.00",
		3.456:  "3.46",
		1234.5: "1234.50",
		0:      "0.00",
	}
	for in, want := range cases {
		if got := FormatAmount(in); got != want {
			t.Errorf("FormatAmount(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestPaymentMethodLabel(t *testing.T) {
	if PaymentCash.Label() != "نقداً" {
		t.Error("Wrong cash label")
	}
	if PaymentCard.Label() != "بطاقة" {
		t.Error("Wrong card label")
	}
	if PaymentMobile.Label() != "محفظة رقمية" {
		t.Error("Wrong mobile label")
	}
	if PaymentMethod("voucher").Label() != "محفظة رقمية" {
		t.Error("Unknown methods should fall back to the mobile wallet label")
	}
}

func TestTestOrder(t *testing.T) {
	order := TestOrder()

	if order.ID != "TEST-001" {
		t.Errorf("Unexpected test order id %q", order.ID)
	}
	if len(order.Items) != 1 || order.Items[0].Name != "اختبار الطباعة" {
		t.Error("Test order should carry the single test item")
	}
	if order.Total != 1.00 {
		t.Errorf("Unexpected test order total %v", order.Total)
	}
}
