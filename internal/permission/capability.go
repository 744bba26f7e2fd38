// AngelaMos | 2026
// capability.go

package permission

// Capability names one boolean of Permissions for route guards.
type Capability string

const (
	ManageUsers     Capability = "can_manage_users"
	ViewFinancials  Capability = "can_view_financials"
	ApproveOrders   Capability = "can_approve_orders"
	ExportData      Capability = "can_export_data"
	ManageSettings  Capability = "can_manage_settings"
	DeleteShipments Capability = "can_delete_shipments"
	ManageTenants   Capability = "can_manage_tenants"
	ConfigurePhases Capability = "can_configure_phases"
)

func (p Permissions) Has(c Capability) bool {
	switch c {
	case ManageUsers:
		return p.CanManageUsers
	case ViewFinancials:
		return p.CanViewFinancials
	case ApproveOrders:
		return p.CanApproveOrders
	case ExportData:
		return p.CanExportData
	case ManageSettings:
		return p.CanManageSettings
	case DeleteShipments:
		return p.CanDeleteShipments
	case ManageTenants:
		return p.CanManageTenants
	case ConfigurePhases:
		return p.CanConfigurePhases
	default:
		return false
	}
}

var displayNames = map[string]string{
	RoleSuperAdmin:          "Super Admin",
	RoleAdmin:               "Administrator",
	RoleManager:             "Manager",
	RoleWarehouseStaff:      "Warehouse Staff",
	RoleSalesRepresentative: "Sales Representative",
	RoleQualityControl:      "Quality Control",
}

var badgeColors = map[string]string{
	RoleSuperAdmin:          "bg-purple-100 text-purple-800",
	RoleAdmin:               "bg-red-100 text-red-800",
	RoleManager:             "bg-blue-100 text-blue-800",
	RoleWarehouseStaff:      "bg-gray-100 text-gray-800",
	RoleSalesRepresentative: "bg-green-100 text-green-800",
	RoleQualityControl:      "bg-yellow-100 text-yellow-800",
}

const (
	defaultDisplayName = "Warehouse Staff"
	defaultBadgeColor  = "bg-gray-100 text-gray-800"
)

func DisplayName(role string) string {
	if name, ok := displayNames[role]; ok {
		return name
	}
	return defaultDisplayName
}

func BadgeColor(role string) string {
	if color, ok := badgeColors[role]; ok {
		return color
	}
	return defaultBadgeColor
}
