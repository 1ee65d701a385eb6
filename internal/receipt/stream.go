package receipt

import (
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
	"github.com/skip2/go-qrcode"
)

// Printable dot widths for the supported paper sizes.
const (
	dotsPaper58 = 384
	dotsPaper80 = 576
)

// RenderCommandStream renders the order as an ESC/POS command stream for
// thermal printers. The stream initializes the printer, selects the Arabic
// code table, and ends with a feed and cut.
func RenderCommandStream(o *Order, info RestaurantInfo, opt Options) []byte {
	doc := &streamDocument{
		enc: NewEncoderWithCodePage(CodePageArabic),
		opt: opt,
	}
	doc.enc.Initialize()
	layout(doc, o, info, opt)
	doc.enc.Feed(3)
	doc.enc.Cut()
	return doc.enc.Bytes()
}

type streamDocument struct {
	enc *Encoder
	opt Options
}

func (d *streamDocument) header(info RestaurantInfo) {
	d.enc.SetAlignment(AlignCenter)
	if img := loadLogo(info.LogoPath, d.opt.PaperWidth); img != nil {
		d.enc.PrintImage(img)
		d.enc.LineFeed()
	}
	d.enc.SetSize(SizeDouble)
	d.enc.SetBold(true)
	d.enc.WriteLine(info.Name)
	d.enc.SetBold(false)
	d.enc.SetSize(SizeNormal)
	d.enc.WriteLine(info.Subtitle)
	d.separator()
}

func (d *streamDocument) orderInfo(id, timestamp string) {
	d.enc.SetAlignment(AlignRight)
	d.enc.WriteLine(labelOrderID + " " + id)
	d.enc.WriteLine(timestamp)
	d.separator()
}

func (d *streamDocument) customer(name, phone string) {
	d.enc.SetAlignment(AlignRight)
	if name != "" {
		d.enc.WriteLine(labelCustomer + " " + name)
	}
	if phone != "" {
		d.enc.WriteLine(labelPhone + " " + phone)
	}
	d.separator()
}

func (d *streamDocument) items(items []Item) {
	d.enc.SetAlignment(AlignRight)
	for _, it := range items {
		d.enc.SetBold(true)
		d.enc.WriteLine(it.Name)
		d.enc.SetBold(false)
		d.enc.WriteLine(fmt.Sprintf("%s = %d × %s", FormatAmount(it.LineTotal()), it.Quantity, FormatAmount(it.Price)))
	}
	d.separator()
}

func (d *streamDocument) totals(subtotal, discount, total float64) {
	d.enc.SetAlignment(AlignRight)
	d.enc.WriteLine(fmt.Sprintf("%s %s %s", labelSubtotal, FormatAmount(subtotal), Currency))
	if discount > 0 {
		d.enc.WriteLine(fmt.Sprintf("%s -%s %s", labelDiscount, FormatAmount(discount), Currency))
	}
	d.enc.SetSize(SizeDouble)
	d.enc.SetBold(true)
	d.enc.WriteLine(fmt.Sprintf("%s %s %s", labelTotal, FormatAmount(total), Currency))
	d.enc.SetBold(false)
	d.enc.SetSize(SizeNormal)
	d.separator()
}

func (d *streamDocument) payment(method PaymentMethod) {
	d.enc.SetAlignment(AlignRight)
	d.enc.WriteLine(labelPayment + " " + method.Label())
}

func (d *streamDocument) notes(text string) {
	d.separator()
	d.enc.SetAlignment(AlignRight)
	d.enc.WriteLine(labelNotes + " " + text)
}

func (d *streamDocument) footer() {
	d.separator()
	d.enc.SetAlignment(AlignCenter)
	d.enc.WriteLine(footerThanks)
	d.enc.WriteLine(footerComeAgain)
}

func (d *streamDocument) qr(data string) {
	code, err := qrcode.New(data, qrcode.Medium)
	if err != nil {
		return
	}
	d.enc.SetAlignment(AlignCenter)
	d.enc.PrintImage(code.Image(128))
	d.enc.LineFeed()
}

func (d *streamDocument) separator() {
	d.enc.SetAlignment(AlignCenter)
	d.enc.WriteLine(separatorLine)
}

// loadLogo reads and scales the logo to the printable width, or returns nil
// when the file is missing or unreadable.
func loadLogo(path string, paperWidth int) image.Image {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	img, err := imaging.Decode(f)
	if err != nil {
		return nil
	}

	dots := dotsPaper58
	if paperWidth >= 80 {
		dots = dotsPaper80
	}
	if img.Bounds().Dx() > dots {
		img = imaging.Resize(img, dots, 0, imaging.Lanczos)
	}
	return img
}
