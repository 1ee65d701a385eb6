package receipt

// Options controls which sections a receipt carries and how it is sized.
type Options struct {
	PaperWidth        int
	FontSize          int
	PrintLogo         bool
	PrintCustomerInfo bool
	PrintFooter       bool
	PrintQRCode       bool
}

// DefaultOptions matches the out-of-the-box printer settings.
func DefaultOptions() Options {
	return Options{
		PaperWidth:        58,
		FontSize:          12,
		PrintLogo:         true,
		PrintCustomerInfo: true,
		PrintFooter:       true,
		PrintQRCode:       false,
	}
}

// Fixed Arabic labels shared by both renderers.
const (
	labelOrderID    = "فاتورة رقم:"
	labelCustomer   = "العميل:"
	labelPhone      = "الهاتف:"
	labelSubtotal   = "المجموع الفرعي:"
	labelDiscount   = "الخصم:"
	labelTotal      = "المجموع النهائي:"
	labelPayment    = "طريقة الدفع:"
	labelNotes      = "ملاحظات:"
	footerThanks    = "شكراً لزيارتكم"
	footerComeAgain = "نتطلع لخدمتكم مرة أخرى"
	separatorLine   = "================================"
)

// document is a sink for receipt sections. Both renderers implement it, and
// layout is the only caller, so the section order cannot drift between the
// markup and command stream outputs.
type document interface {
	header(info RestaurantInfo)
	orderInfo(id, timestamp string)
	customer(name, phone string)
	items(items []Item)
	totals(subtotal, discount, total float64)
	payment(method PaymentMethod)
	notes(text string)
	footer()
	qr(data string)
}

// layout walks the order through a document in the canonical section order.
func layout(doc document, o *Order, info RestaurantInfo, opt Options) {
	if info.Name == "" {
		info.Name = DefaultRestaurantName
	}
	if info.Subtitle == "" {
		info.Subtitle = DefaultRestaurantSubtitle
	}

	if opt.PrintLogo {
		doc.header(info)
	}
	doc.orderInfo(o.ID, o.timestampText())
	if opt.PrintCustomerInfo && (o.CustomerName != "" || o.CustomerPhone != "") {
		doc.customer(o.CustomerName, o.CustomerPhone)
	}
	doc.items(o.Items)
	doc.totals(o.Subtotal, o.Discount, o.Total)
	doc.payment(o.PaymentMethod)
	if o.Notes != "" {
		doc.notes(o.Notes)
	}
	if opt.PrintFooter {
		doc.footer()
	}
	if opt.PrintQRCode && o.ID != "" {
		doc.qr(o.ID)
	}
}
