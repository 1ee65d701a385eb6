package receipt

import (
	"bytes"
	"image"
)

// ESC/POS control bytes
const (
	esc byte = 0x1B
	gs  byte = 0x1D
)

// Alignment selects horizontal text alignment.
type Alignment byte

const (
	AlignLeft   Alignment = 0
	AlignCenter Alignment = 1
	AlignRight  Alignment = 2
)

// Text size arguments for GS !.
const (
	SizeNormal byte = 0x00
	SizeDouble byte = 0x11
	SizeLarge  byte = 0x22
)

// Encoder builds an ESC/POS command stream.
type Encoder struct {
	buf  bytes.Buffer
	text Transcoder
}

// NewEncoder returns an encoder that writes text as raw UTF-8. Printers with
// a matching code table get a Transcoder instead, see NewEncoderWithCodePage.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// NewEncoderWithCodePage returns an encoder that selects the given code table
// on Initialize and transcodes all text into it.
func NewEncoderWithCodePage(cp CodePage) *Encoder {
	return &Encoder{text: cp.Transcoder()}
}

// Initialize resets the printer and selects the code table, if any.
func (e *Encoder) Initialize() {
	e.buf.Write([]byte{esc, '@'})
	if e.text != nil {
		e.SelectCodeTable(e.text.Table())
	}
}

// SelectCodeTable sends ESC t with the given table number.
func (e *Encoder) SelectCodeTable(n byte) {
	e.buf.Write([]byte{esc, 't', n})
}

// Cut sends a full paper cut.
func (e *Encoder) Cut() {
	e.buf.Write([]byte{gs, 'V', 0})
}

// LineFeed advances one line.
func (e *Encoder) LineFeed() {
	e.buf.WriteByte(0x0A)
}

// Feed advances the given number of lines.
func (e *Encoder) Feed(lines int) {
	for i := 0; i < lines; i++ {
		e.LineFeed()
	}
}

// SetAlignment sets horizontal alignment for following text.
func (e *Encoder) SetAlignment(a Alignment) {
	e.buf.Write([]byte{esc, 'a', byte(a)})
}

// SetBold toggles emphasized printing.
func (e *Encoder) SetBold(on bool) {
	e.buf.Write([]byte{esc, 'E', flag(on)})
}

// SetUnderline toggles underlined printing.
func (e *Encoder) SetUnderline(on bool) {
	e.buf.Write([]byte{esc, '-', flag(on)})
}

// SetSize sets the character cell size, one of SizeNormal, SizeDouble or
// SizeLarge.
func (e *Encoder) SetSize(size byte) {
	e.buf.Write([]byte{gs, '!', size})
}

// WriteText writes text through the transcoder when one is configured.
func (e *Encoder) WriteText(text string) {
	if e.text != nil {
		e.buf.Write(e.text.Bytes(text))
		return
	}
	e.buf.WriteString(text)
}

// WriteLine writes text followed by a line feed.
func (e *Encoder) WriteLine(text string) {
	e.WriteText(text)
	e.LineFeed()
}

// PrintImage rasterizes an image with GS v 0. Pixels darker than 50% gray
// print black.
func (e *Encoder) PrintImage(img image.Image) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	bytesPerLine := (width + 7) / 8

	bitmap := imageToBitmap(img)

	e.buf.Write([]byte{gs, 'v', '0', 0})
	e.buf.WriteByte(byte(bytesPerLine & 0xFF))
	e.buf.WriteByte(byte((bytesPerLine >> 8) & 0xFF))
	e.buf.WriteByte(byte(height & 0xFF))
	e.buf.WriteByte(byte((height >> 8) & 0xFF))
	e.buf.Write(bitmap)
}

// Bytes returns the accumulated command stream.
func (e *Encoder) Bytes() []byte {
	return e.buf.Bytes()
}

// Reset clears the accumulated stream.
func (e *Encoder) Reset() {
	e.buf.Reset()
}

func flag(on bool) byte {
	if on {
		return 1
	}
	return 0
}

// imageToBitmap converts an image to a packed 1-bit bitmap, MSB first.
func imageToBitmap(img image.Image) []byte {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	bytesPerLine := (width + 7) / 8
	bitmap := make([]byte, bytesPerLine*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			gray := (r + g + b) / 3
			if gray < 32768 {
				bitmap[y*bytesPerLine+x/8] |= 1 << (7 - x%8)
			}
		}
	}

	return bitmap
}
