// AngelaMos | 2026
// palette.go

// Package theme derives a tenant's color palette from its branding fields.
package theme

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	DefaultPrimary   = "#007A6E"
	DefaultSecondary = "#005247"
	DefaultHeroText  = "#0F172A"
	DefaultGlow      = "rgba(0,122,110,0.35)"
)

var hexPattern = regexp.MustCompile(`^#?[0-9A-Fa-f]{6}$`)

// Input is a partially filled theme override. Empty fields fall back.
type Input struct {
	PrimaryColor   string `json:"primaryColor,omitempty"`
	SecondaryColor string `json:"secondaryColor,omitempty"`
	HeroTextColor  string `json:"heroTextColor,omitempty"`
	Glow           string `json:"glow,omitempty"`
	Gradient       string `json:"gradient,omitempty"`
}

type Palette struct {
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
	HeroTextColor  string `json:"heroTextColor"`
	Glow           string `json:"glow"`
	Gradient       string `json:"gradient"`
}

func IsHex(s string) bool {
	return hexPattern.MatchString(strings.TrimSpace(s))
}

// NormalizeHex returns s as uppercase #RRGGBB, or fallback when s is not a
// six digit hex color.
func NormalizeHex(s, fallback string) string {
	s = strings.TrimSpace(s)
	if !hexPattern.MatchString(s) {
		return fallback
	}
	return "#" + strings.ToUpper(strings.TrimPrefix(s, "#"))
}

func Resolve(in *Input) Palette {
	if in == nil {
		in = &Input{}
	}

	p := Palette{
		PrimaryColor:   NormalizeHex(in.PrimaryColor, DefaultPrimary),
		SecondaryColor: NormalizeHex(in.SecondaryColor, DefaultSecondary),
		HeroTextColor:  NormalizeHex(in.HeroTextColor, DefaultHeroText),
		Glow:           strings.TrimSpace(in.Glow),
		Gradient:       strings.TrimSpace(in.Gradient),
	}

	if p.Glow == "" {
		p.Glow = DefaultGlow
	}

	if p.Gradient == "" {
		p.Gradient = fmt.Sprintf(
			"linear-gradient(120deg, %s 0%%, %s 100%%)",
			p.PrimaryColor,
			p.SecondaryColor,
		)
	}

	return p
}

// WithAlpha renders color as an rgba() string. Invalid colors use the
// default primary and alpha is clamped into [0,1].
func WithAlpha(color string, alpha float64) string {
	hex := strings.TrimPrefix(NormalizeHex(color, DefaultPrimary), "#")

	r, _ := strconv.ParseUint(hex[0:2], 16, 8) //nolint:errcheck // validated by NormalizeHex
	g, _ := strconv.ParseUint(hex[2:4], 16, 8) //nolint:errcheck // validated by NormalizeHex
	b, _ := strconv.ParseUint(hex[4:6], 16, 8) //nolint:errcheck // validated by NormalizeHex

	return fmt.Sprintf(
		"rgba(%d,%d,%d,%s)",
		r, g, b,
		strconv.FormatFloat(clampAlpha(alpha), 'f', -1, 64),
	)
}

func clampAlpha(a float64) float64 {
	switch {
	case math.IsNaN(a), a < 0:
		return 0
	case a > 1:
		return 1
	default:
		return a
	}
}
