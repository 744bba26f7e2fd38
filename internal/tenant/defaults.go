// AngelaMos | 2026
// defaults.go

package tenant

import (
	"encoding/json"
	"strings"

	"github.com/recims/backend/internal/theme"
)

// Column defaults shared by the startup backfill and config resolution.
const (
	DefaultTenantID = "TNT-001"

	defaultName         = "Default Tenant"
	defaultRegion       = "Global"
	defaultBusinessType = "recycling"
	defaultCurrency     = "USD"
	defaultCountry      = "US"
	defaultTimezone     = "America/New_York"
	defaultLocale       = "en-US"
	defaultDateFormat   = "MM/DD/YYYY"
	defaultUnitSystem   = "imperial"
)

// DefaultConfig is the configuration served when no tenant row matches.
// Every call returns a fresh value, so callers may modify the result
// without affecting anyone else.
func DefaultConfig() Config {
	palette := theme.Resolve(nil)

	return Config{
		ID:               1,
		TenantID:         DefaultTenantID,
		Code:             "defaulttenant",
		Name:             defaultName,
		DisplayName:      defaultName,
		Region:           defaultRegion,
		Status:           StatusActive,
		BaseSubdomain:    "defaulttenant",
		BusinessType:     defaultBusinessType,
		PrimaryColor:     palette.PrimaryColor,
		SecondaryColor:   palette.SecondaryColor,
		Currency:         defaultCurrency,
		Country:          defaultCountry,
		Timezone:         defaultTimezone,
		Locale:           defaultLocale,
		DateFormat:       defaultDateFormat,
		UnitSystem:       defaultUnitSystem,
		NumberFormat:     json.RawMessage(`{}`),
		DefaultLoadTypes: json.RawMessage(`[]`),
		Features:         map[string]bool{},
		Theme:            palette,
		IsDefault:        true,
	}
}

// jsonOr returns p when it holds valid JSON, otherwise fallback.
func jsonOr(p *string, fallback string) json.RawMessage {
	if p == nil {
		return json.RawMessage(fallback)
	}
	s := strings.TrimSpace(*p)
	if s == "" || !json.Valid([]byte(s)) {
		return json.RawMessage(fallback)
	}
	return json.RawMessage(s)
}
