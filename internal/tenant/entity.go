// AngelaMos | 2026
// entity.go

package tenant

import (
	"strings"
	"time"

	"github.com/recims/backend/internal/feature"
	"github.com/recims/backend/internal/theme"
)

// Tenant mirrors the tenants table. Most columns were added to existing
// installs after the fact and stay nullable in the schema, so they are
// pointers here even though the startup backfill fills them.
type Tenant struct {
	ID                   int64      `db:"id"`
	Name                 string     `db:"name"`
	TenantID             *string    `db:"tenant_id"`
	DisplayName          *string    `db:"display_name"`
	Region               *string    `db:"region"`
	Status               *string    `db:"status"`
	Code                 *string    `db:"code"`
	TenantCode           *string    `db:"tenant_code"`
	BaseSubdomain        *string    `db:"base_subdomain"`
	BusinessType         *string    `db:"business_type"`
	PrimaryColor         *string    `db:"primary_color"`
	SecondaryColor       *string    `db:"secondary_color"`
	LogoURL              *string    `db:"logo_url"`
	Currency             *string    `db:"currency"`
	Country              *string    `db:"country"`
	Timezone             *string    `db:"timezone"`
	Locale               *string    `db:"locale"`
	DateFormat           *string    `db:"date_format"`
	UnitSystem           *string    `db:"unit_system"`
	NumberFormatJSON     *string    `db:"number_format_json"`
	DefaultLoadTypesJSON *string    `db:"default_load_types_json"`
	FeaturesJSON         *string    `db:"features_json"`
	AddressLine1         *string    `db:"address_line1"`
	AddressLine2         *string    `db:"address_line2"`
	City                 *string    `db:"city"`
	StateProvince        *string    `db:"state_province"`
	PostalCode           *string    `db:"postal_code"`
	Phone                *string    `db:"phone"`
	Email                *string    `db:"email"`
	Website              *string    `db:"website"`
	CreatedAt            *time.Time `db:"created_at"`
	UpdatedAt            *time.Time `db:"updated_at"`
}

const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
)

// selectColumns is every Tenant column except api_keys_json, which never
// leaves the database through this package.
const selectColumns = `
	id, name, tenant_id, display_name, region, status, code, tenant_code,
	base_subdomain, business_type, primary_color, secondary_color, logo_url,
	currency, country, timezone, locale, date_format, unit_system,
	number_format_json, default_load_types_json, features_json,
	address_line1, address_line2, city, state_province, postal_code,
	phone, email, website, created_at, updated_at`

// Key is the stable string identifier users reference: tenant_id, then
// code, then the slug of the name.
func (t *Tenant) Key() string {
	if s := str(t.TenantID); s != "" {
		return s
	}
	if s := str(t.Code); s != "" {
		return s
	}
	return strings.ToLower(strings.ReplaceAll(t.Name, " ", ""))
}

func (t *Tenant) IsActive() bool {
	return t.Status == nil || strings.EqualFold(*t.Status, StatusActive)
}

func (t *Tenant) Features() feature.Raw {
	return feature.RawNullable(t.FeaturesJSON)
}

func (t *Tenant) ThemeInput() *theme.Input {
	return &theme.Input{
		PrimaryColor:   str(t.PrimaryColor),
		SecondaryColor: str(t.SecondaryColor),
	}
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func strOr(p *string, fallback string) string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return fallback
	}
	return *p
}
