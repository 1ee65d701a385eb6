package receipt

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Transcoder converts UTF-8 text into the byte encoding a printer's code
// table expects.
type Transcoder interface {
	// Table is the ESC t table number the printer must select.
	Table() byte
	// Bytes converts text, replacing characters the table cannot carry.
	Bytes(text string) []byte
}

// CodePage pairs an ESC t table number with its character encoding. Table
// numbers vary by vendor; these match the TP-58 family of thermal printers.
type CodePage struct {
	Number   byte
	Encoding encoding.Encoding
}

// CodePageArabic is ISO 8859-6, the Arabic code table.
var CodePageArabic = CodePage{Number: 22, Encoding: charmap.ISO8859_6}

// Transcoder returns a Transcoder for the code page.
func (cp CodePage) Transcoder() Transcoder {
	return &codePageTranscoder{
		table: cp.Number,
		enc:   encoding.ReplaceUnsupported(cp.Encoding.NewEncoder()),
	}
}

type codePageTranscoder struct {
	table byte
	enc   *encoding.Encoder
}

func (t *codePageTranscoder) Table() byte { return t.table }

func (t *codePageTranscoder) Bytes(text string) []byte {
	out, err := t.enc.Bytes([]byte(text))
	if err != nil {
		return []byte(text)
	}
	return out
}
