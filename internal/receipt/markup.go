package receipt

import (
	"encoding/base64"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/skip2/go-qrcode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// arabicIndicDigits maps ASCII digits to their Arabic-Indic forms. Only the
// markup path localizes digits; ISO 8859-6 has no Arabic-Indic digit range,
// so the command stream keeps ASCII.
var arabicIndicDigits = runes.Map(func(r rune) rune {
	if r >= '0' && r <= '9' {
		return '٠' + r - '0'
	}
	return r
})

func localizeDigits(s string) string {
	out, _, err := transform.String(arabicIndicDigits, s)
	if err != nil {
		return s
	}
	return out
}

// RenderMarkup renders the order as a self-contained HTML page sized for the
// configured paper width. System print devices consume this output.
func RenderMarkup(o *Order, info RestaurantInfo, opt Options) []byte {
	doc := &markupDocument{opt: opt}
	doc.open()
	layout(doc, o, info, opt)
	doc.close()
	return []byte(doc.b.String())
}

type markupDocument struct {
	b   strings.Builder
	opt Options
}

func (d *markupDocument) open() {
	d.b.WriteString("<!DOCTYPE html>\n<html dir=\"rtl\" lang=\"ar\">\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&d.b, `<style>
body { font-family: monospace; font-size: %dpx; width: %dmm; margin: 0 auto; direction: rtl; }
.center { text-align: center; }
.right { text-align: right; }
.bold { font-weight: bold; }
.large { font-size: %dpx; }
.separator { border-top: 1px dashed #000; margin: 4px 0; }
.item-row { display: flex; justify-content: space-between; }
.total-row { display: flex; justify-content: space-between; font-weight: bold; }
</style>
`, d.opt.FontSize, d.opt.PaperWidth, d.opt.FontSize*2)
	d.b.WriteString("</head>\n<body>\n")
}

func (d *markupDocument) close() {
	d.b.WriteString("</body>\n</html>\n")
}

func (d *markupDocument) header(info RestaurantInfo) {
	if img := logoDataURI(info.LogoPath); img != "" {
		fmt.Fprintf(&d.b, "<div class=\"center\"><img src=\"%s\" alt=\"\" style=\"max-width: 80%%\"></div>\n", img)
	}
	fmt.Fprintf(&d.b, "<div class=\"center bold large\">%s</div>\n", html.EscapeString(info.Name))
	fmt.Fprintf(&d.b, "<div class=\"center\">%s</div>\n", html.EscapeString(info.Subtitle))
	d.separator()
}

func (d *markupDocument) orderInfo(id, timestamp string) {
	fmt.Fprintf(&d.b, "<div class=\"right\">%s %s</div>\n", labelOrderID, html.EscapeString(id))
	fmt.Fprintf(&d.b, "<div class=\"right\">%s</div>\n", localizeDigits(timestamp))
	d.separator()
}

func (d *markupDocument) customer(name, phone string) {
	if name != "" {
		fmt.Fprintf(&d.b, "<div class=\"right\">%s %s</div>\n", labelCustomer, html.EscapeString(name))
	}
	if phone != "" {
		fmt.Fprintf(&d.b, "<div class=\"right\">%s %s</div>\n", labelPhone, html.EscapeString(phone))
	}
	d.separator()
}

func (d *markupDocument) items(items []Item) {
	for _, it := range items {
		fmt.Fprintf(&d.b, "<div class=\"item-row\"><span>%s</span><span>%s</span></div>\n",
			html.EscapeString(it.Name), FormatAmount(it.LineTotal()))
		fmt.Fprintf(&d.b, "<div class=\"right\">%d × %s</div>\n", it.Quantity, FormatAmount(it.Price))
	}
	d.separator()
}

func (d *markupDocument) totals(subtotal, discount, total float64) {
	fmt.Fprintf(&d.b, "<div class=\"item-row\"><span>%s</span><span>%s %s</span></div>\n",
		labelSubtotal, FormatAmount(subtotal), Currency)
	if discount > 0 {
		fmt.Fprintf(&d.b, "<div class=\"item-row\"><span>%s</span><span>-%s %s</span></div>\n",
			labelDiscount, FormatAmount(discount), Currency)
	}
	fmt.Fprintf(&d.b, "<div class=\"total-row large\"><span>%s</span><span>%s %s</span></div>\n",
		labelTotal, FormatAmount(total), Currency)
	d.separator()
}

func (d *markupDocument) payment(method PaymentMethod) {
	fmt.Fprintf(&d.b, "<div class=\"right\">%s %s</div>\n", labelPayment, method.Label())
}

func (d *markupDocument) notes(text string) {
	d.separator()
	fmt.Fprintf(&d.b, "<div class=\"right\">%s %s</div>\n", labelNotes, html.EscapeString(text))
}

func (d *markupDocument) footer() {
	d.separator()
	fmt.Fprintf(&d.b, "<div class=\"center\">%s</div>\n", footerThanks)
	fmt.Fprintf(&d.b, "<div class=\"center\">%s</div>\n", footerComeAgain)
}

func (d *markupDocument) qr(data string) {
	png, err := qrcode.Encode(data, qrcode.Medium, 128)
	if err != nil {
		fmt.Fprintf(&d.b, "<div class=\"center\">%s</div>\n", html.EscapeString(data))
		return
	}
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	fmt.Fprintf(&d.b, "<div class=\"center\"><img src=\"%s\" alt=\"%s\"></div>\n", uri, html.EscapeString(data))
}

func (d *markupDocument) separator() {
	d.b.WriteString("<div class=\"separator\"></div>\n")
}

// logoDataURI loads an image file as a data URI, or returns "" when the file
// is missing or unreadable so the header degrades to text.
func logoDataURI(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	mime := "image/png"
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".jpg" || ext == ".jpeg" {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
