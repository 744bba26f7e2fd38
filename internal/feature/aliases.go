// AngelaMos | 2026
// aliases.go

package feature

// TogglePrefix marks app_settings rows that act as legacy feature toggles.
const TogglePrefix = "enable_"

const (
	PhotoUploadInbound        = "enable_photo_upload_inbound"
	PhotoUploadClassification = "enable_photo_upload_classification"
	PhotoUploadEnabled        = "photo_upload_enabled"
)

// Alias copies a present toggle's value onto canonical flag names.
type Alias struct {
	Toggle  string
	Targets []string
}

// Aliases is applied in order after toggles overlay tenant features.
var Aliases = []Alias{
	{Toggle: "enable_po_module", Targets: []string{"po_module_enabled"}},
	{Toggle: "enable_so_module", Targets: []string{"so_module_enabled"}},
	{
		Toggle:  "enable_bin_capacity_management",
		Targets: []string{"bin_capacity_enabled", "bin_capacity_management_enabled"},
	},
	{Toggle: "enable_mobile_warehouse", Targets: []string{"mobile_warehouse_enabled"}},
	{Toggle: "enable_qbo_sync", Targets: []string{"qbo_enabled", "quickbooks_sync_enabled"}},
	{Toggle: "enable_ai_insights", Targets: []string{"ai_insights_enabled"}},
	{Toggle: "enable_compliance_certificates", Targets: []string{"compliance_enabled"}},
	{Toggle: "enable_invoicing", Targets: []string{"invoicing_enabled"}},
	{Toggle: "enable_kpi_dashboard", Targets: []string{"kpi_dashboard_enabled"}},
	{Toggle: "enable_quality_control", Targets: []string{"qc_enabled"}},
	{Toggle: PhotoUploadInbound, Targets: []string{PhotoUploadEnabled}},
	{Toggle: PhotoUploadClassification, Targets: []string{PhotoUploadEnabled}},
}

// Combination writes Target as the OR of its sources whenever at least one
// source toggle is present. Absent sources count as false.
type Combination struct {
	Target  string
	Sources []string
}

// Combinations run after every alias, in order, so they take priority over
// any alias that writes the same target.
var Combinations = []Combination{
	{
		Target:  PhotoUploadEnabled,
		Sources: []string{PhotoUploadInbound, PhotoUploadClassification},
	},
}
