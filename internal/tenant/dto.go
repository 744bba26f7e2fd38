// AngelaMos | 2026
// dto.go

package tenant

import (
	"encoding/json"
	"time"

	"github.com/recims/backend/internal/feature"
	"github.com/recims/backend/internal/locale"
	"github.com/recims/backend/internal/theme"
)

// Config is the resolved tenant configuration handed to clients: tenant
// columns with defaults applied, the merged feature flags and the theme
// palette.
type Config struct {
	ID               int64           `json:"id"`
	TenantID         string          `json:"tenant_id"`
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	DisplayName      string          `json:"display_name"`
	Region           string          `json:"region"`
	Status           string          `json:"status"`
	BaseSubdomain    string          `json:"base_subdomain"`
	BusinessType     string          `json:"business_type"`
	PrimaryColor     string          `json:"primary_color"`
	SecondaryColor   string          `json:"secondary_color"`
	LogoURL          string          `json:"logo_url,omitempty"`
	Currency         string          `json:"currency"`
	Country          string          `json:"country"`
	Timezone         string          `json:"timezone"`
	Locale           string          `json:"locale"`
	DateFormat       string          `json:"date_format"`
	UnitSystem       string          `json:"unit_system"`
	NumberFormat     json.RawMessage `json:"number_format"`
	DefaultLoadTypes json.RawMessage `json:"default_load_types"`
	Address          Address         `json:"address"`
	Features         map[string]bool `json:"features"`
	Theme            theme.Palette   `json:"theme"`
	IsDefault        bool            `json:"is_default"`
}

type Address struct {
	Line1         string `json:"line1,omitempty"`
	Line2         string `json:"line2,omitempty"`
	City          string `json:"city,omitempty"`
	StateProvince string `json:"state_province,omitempty"`
	PostalCode    string `json:"postal_code,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty"`
	Website       string `json:"website,omitempty"`
}

// FeatureEnabled reports whether the resolved flag set has name on.
func (c *Config) FeatureEnabled(name string) bool {
	return c.Features[name]
}

// LocaleOptions derives formatter options from the tenant's locale,
// currency and the optional "decimals" entry of number_format.
func (c *Config) LocaleOptions() locale.Options {
	opts := locale.Options{
		Locale:   c.Locale,
		Currency: c.Currency,
		Decimals: locale.AutoDecimals,
	}

	var nf struct {
		Decimals *int `json:"decimals"`
	}
	if len(c.NumberFormat) > 0 && json.Unmarshal(c.NumberFormat, &nf) == nil && nf.Decimals != nil {
		opts.Decimals = *nf.Decimals
	}

	return opts
}

type UpdateFeaturesRequest struct {
	Features feature.Raw `json:"features"`
}

type UpdateBrandingRequest struct {
	DisplayName    *string `json:"display_name,omitempty"    validate:"omitempty,min=1,max=200"`
	PrimaryColor   *string `json:"primary_color,omitempty"   validate:"omitempty,max=7"`
	SecondaryColor *string `json:"secondary_color,omitempty" validate:"omitempty,max=7"`
	LogoURL        *string `json:"logo_url,omitempty"        validate:"omitempty,url,max=500"`
}

type SummaryResponse struct {
	ID          int64      `json:"id"`
	TenantID    string     `json:"tenant_id"`
	Name        string     `json:"name"`
	DisplayName string     `json:"display_name"`
	Region      string     `json:"region"`
	Status      string     `json:"status"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

type FormatResponse struct {
	Amount    float64        `json:"amount"`
	Number    string         `json:"number"`
	Currency  string         `json:"currency"`
	Formatted string         `json:"formatted"`
	Options   locale.Options `json:"options"`
}

func ToSummaryResponse(t *Tenant) SummaryResponse {
	return SummaryResponse{
		ID:          t.ID,
		TenantID:    t.Key(),
		Name:        t.Name,
		DisplayName: strOr(t.DisplayName, t.Name),
		Region:      strOr(t.Region, defaultRegion),
		Status:      strOr(t.Status, StatusActive),
		CreatedAt:   t.CreatedAt,
	}
}

func ToSummaryResponseList(tenants []Tenant) []SummaryResponse {
	out := make([]SummaryResponse, 0, len(tenants))
	for i := range tenants {
		out = append(out, ToSummaryResponse(&tenants[i]))
	}
	return out
}
