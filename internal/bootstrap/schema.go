// AngelaMos | 2026
// schema.go

package bootstrap

// Column is one (name, type) pair added to an existing table when missing.
type Column struct {
	Name string
	Type string
}

var createTables = []string{
	`CREATE TABLE IF NOT EXISTS tenants (
		id   SERIAL PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		full_name     TEXT NOT NULL DEFAULT '',
		tenant_id     TEXT,
		role          TEXT NOT NULL DEFAULT 'user',
		detailed_role TEXT,
		token_version INTEGER NOT NULL DEFAULT 0,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		deleted_at    TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS app_settings (
		id            BIGSERIAL PRIMARY KEY,
		setting_key   TEXT NOT NULL UNIQUE,
		setting_value TEXT NOT NULL DEFAULT '',
		description   TEXT,
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id             TEXT PRIMARY KEY,
		user_id        TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token_hash     TEXT NOT NULL UNIQUE,
		family_id      TEXT NOT NULL,
		tenant_id      TEXT,
		expires_at     TIMESTAMPTZ NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		is_used        BOOLEAN NOT NULL DEFAULT FALSE,
		used_at        TIMESTAMPTZ,
		revoked_at     TIMESTAMPTZ,
		replaced_by_id TEXT,
		user_agent     TEXT NOT NULL DEFAULT '',
		ip_address     TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS shiftlog (
		id          BIGSERIAL PRIMARY KEY,
		tenant_id   TEXT,
		user_email  TEXT NOT NULL,
		shift_start TIMESTAMPTZ NOT NULL,
		shift_end   TIMESTAMPTZ,
		notes       TEXT,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// TenantColumns are added to tenants in order. Existing installs predate
// most of them, which is why none carry NOT NULL or DEFAULT; the backfill
// fills them instead.
var TenantColumns = []Column{
	{"tenant_id", "TEXT"},
	{"display_name", "TEXT"},
	{"region", "TEXT"},
	{"status", "TEXT"},
	{"code", "TEXT"},
	{"tenant_code", "TEXT"},
	{"base_subdomain", "TEXT"},
	{"business_type", "TEXT"},
	{"primary_color", "TEXT"},
	{"secondary_color", "TEXT"},
	{"logo_url", "TEXT"},
	{"currency", "TEXT"},
	{"country", "TEXT"},
	{"timezone", "TEXT"},
	{"locale", "TEXT"},
	{"date_format", "TEXT"},
	{"unit_system", "TEXT"},
	{"number_format_json", "TEXT"},
	{"default_load_types_json", "TEXT"},
	{"features_json", "TEXT"},
	{"api_keys_json", "TEXT"},
	{"address_line1", "TEXT"},
	{"address_line2", "TEXT"},
	{"city", "TEXT"},
	{"state_province", "TEXT"},
	{"postal_code", "TEXT"},
	{"phone", "TEXT"},
	{"email", "TEXT"},
	{"website", "TEXT"},
	{"created_at", "TIMESTAMPTZ"},
	{"updated_at", "TIMESTAMPTZ"},
}

var UserColumns = []Column{
	{"phase_limit", "INTEGER"},
}

var createIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_tenants_tenant_id ON tenants (tenant_id)`,
	`CREATE INDEX IF NOT EXISTS idx_users_tenant_id ON users (tenant_id)`,
	`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user_id ON refresh_tokens (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_shiftlog_tenant_id ON shiftlog (tenant_id)`,
}

// backfill is the per-column default applied to every tenant row whose
// value is NULL. The expression is evaluated against the row itself.
type backfill struct {
	Column  string
	Default string
}

const slugExpr = `LOWER(REPLACE(name, ' ', ''))`

// tenantCodeExpr pads ids to at least three digits. LPAD alone would
// truncate ids of 1000 and above.
const tenantCodeExpr = `'TNT-' || CASE WHEN id < 1000 THEN LPAD(id::text, 3, '0') ELSE id::text END`

var tenantBackfills = []backfill{
	{"tenant_id", tenantCodeExpr},
	{"display_name", `name`},
	{"region", `'Global'`},
	{"code", slugExpr},
	{"tenant_code", slugExpr},
	{"base_subdomain", slugExpr},
	{"business_type", `'recycling'`},
	{"currency", `'USD'`},
	{"country", `'US'`},
	{"timezone", `'America/New_York'`},
	{"locale", `'en-US'`},
	{"date_format", `'MM/DD/YYYY'`},
	{"unit_system", `'imperial'`},
	{"number_format_json", `'{}'`},
	{"default_load_types_json", `'[]'`},
	{"features_json", `'{}'`},
	{"api_keys_json", `'{}'`},
	{"created_at", `NOW()`},
	{"updated_at", `NOW()`},
}
