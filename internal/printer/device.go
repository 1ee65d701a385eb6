package printer

import (
	"fmt"
	"strings"
)

// Device is a discovered printer as exposed to clients.
type Device struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	Connected bool   `json:"connected"`
}

// printerKeywords mark device names that look like receipt printers.
var printerKeywords = []string{
	"printer", "pos", "thermal", "epson", "star",
	"citizen", "bixolon", "tp-", "tm-",
}

// looksLikePrinter reports whether a device name matches any printer
// keyword, case-insensitively.
func looksLikePrinter(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range printerKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// fallbackDeviceName labels a nameless device by the tail of its address.
func fallbackDeviceName(address string) string {
	tail := strings.ReplaceAll(address, ":", "")
	if len(tail) > 4 {
		tail = tail[len(tail)-4:]
	}
	return fmt.Sprintf("جهاز غير معروف (%s)", tail)
}
