// Package settings holds the persisted printer settings and their JSON
// file store.
package settings

import "github.com/happytime/posprint/internal/receipt"

const (
	// MinCopies and MaxCopies bound the per-print copy count.
	MinCopies = 1
	MaxCopies = 5
)

// SelectedPrinter records the device a connection should be restored to.
type SelectedPrinter struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Settings is the full persisted settings document.
type Settings struct {
	PaperWidth        int              `json:"paperWidth"`
	FontSize          int              `json:"fontSize"`
	PrintLogo         bool             `json:"printLogo"`
	PrintCustomerInfo bool             `json:"printCustomerInfo"`
	PrintFooter       bool             `json:"printFooter"`
	PrintQRCode       bool             `json:"printQRCode"`
	Copies            int              `json:"copies"`
	AutoConnect       bool             `json:"autoConnect"`
	LogoPath          string           `json:"logoPath,omitempty"`
	SelectedPrinter   *SelectedPrinter `json:"selectedPrinter,omitempty"`
}

// Defaults returns the out-of-the-box settings.
func Defaults() Settings {
	return Settings{
		PaperWidth:        58,
		FontSize:          12,
		PrintLogo:         true,
		PrintCustomerInfo: true,
		PrintFooter:       true,
		PrintQRCode:       false,
		Copies:            1,
		AutoConnect:       false,
	}
}

// Clamp forces every field back into its valid range.
func (s *Settings) Clamp() {
	if s.Copies < MinCopies {
		s.Copies = MinCopies
	}
	if s.Copies > MaxCopies {
		s.Copies = MaxCopies
	}
	if s.PaperWidth != 58 && s.PaperWidth != 80 {
		s.PaperWidth = 58
	}
	if s.FontSize <= 0 {
		s.FontSize = 12
	}
}

// RenderOptions maps the settings onto receipt rendering options.
func (s Settings) RenderOptions() receipt.Options {
	return receipt.Options{
		PaperWidth:        s.PaperWidth,
		FontSize:          s.FontSize,
		PrintLogo:         s.PrintLogo,
		PrintCustomerInfo: s.PrintCustomerInfo,
		PrintFooter:       s.PrintFooter,
		PrintQRCode:       s.PrintQRCode,
	}
}

// Update is a partial settings change. Nil fields keep their current value.
type Update struct {
	PaperWidth        *int    `json:"paperWidth,omitempty"`
	FontSize          *int    `json:"fontSize,omitempty"`
	PrintLogo         *bool   `json:"printLogo,omitempty"`
	PrintCustomerInfo *bool   `json:"printCustomerInfo,omitempty"`
	PrintFooter       *bool   `json:"printFooter,omitempty"`
	PrintQRCode       *bool   `json:"printQRCode,omitempty"`
	Copies            *int    `json:"copies,omitempty"`
	AutoConnect       *bool   `json:"autoConnect,omitempty"`
	LogoPath          *string `json:"logoPath,omitempty"`
}

// apply merges the update into a copy of s and clamps the result.
func (s Settings) apply(u Update) Settings {
	if u.PaperWidth != nil {
		s.PaperWidth = *u.PaperWidth
	}
	if u.FontSize != nil {
		s.FontSize = *u.FontSize
	}
	if u.PrintLogo != nil {
		s.PrintLogo = *u.PrintLogo
	}
	if u.PrintCustomerInfo != nil {
		s.PrintCustomerInfo = *u.PrintCustomerInfo
	}
	if u.PrintFooter != nil {
		s.PrintFooter = *u.PrintFooter
	}
	if u.PrintQRCode != nil {
		s.PrintQRCode = *u.PrintQRCode
	}
	if u.Copies != nil {
		s.Copies = *u.Copies
	}
	if u.AutoConnect != nil {
		s.AutoConnect = *u.AutoConnect
	}
	if u.LogoPath != nil {
		s.LogoPath = *u.LogoPath
	}
	s.Clamp()
	return s
}
