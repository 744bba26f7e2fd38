// AngelaMos | 2026
// resolver.go

// Package permission maps a user's role to a fixed capability set.
package permission

import "sync"

const (
	RoleSuperAdmin          = "superadmin"
	RoleAdmin               = "admin"
	RoleManager             = "manager"
	RoleWarehouseStaff      = "warehouse_staff"
	RoleSalesRepresentative = "sales_representative"
	RoleQualityControl      = "quality_control"

	// RoleNone labels the permissions of an absent user.
	RoleNone = "none"
)

// Subject is the part of a user the resolver looks at.
type Subject struct {
	Role         string
	DetailedRole string
}

type Permissions struct {
	CanManageUsers     bool   `json:"can_manage_users"`
	CanViewFinancials  bool   `json:"can_view_financials"`
	CanApproveOrders   bool   `json:"can_approve_orders"`
	CanExportData      bool   `json:"can_export_data"`
	CanManageSettings  bool   `json:"can_manage_settings"`
	CanDeleteShipments bool   `json:"can_delete_shipments"`
	CanManageTenants   bool   `json:"can_manage_tenants"`
	CanConfigurePhases bool   `json:"can_configure_phases"`
	Role               string `json:"role"`
}

var capabilities = map[string]Permissions{
	RoleSuperAdmin: {
		CanManageUsers:     true,
		CanViewFinancials:  true,
		CanApproveOrders:   true,
		CanExportData:      true,
		CanManageSettings:  true,
		CanDeleteShipments: true,
		CanManageTenants:   true,
		CanConfigurePhases: true,
	},
	RoleAdmin: {
		CanManageUsers:     true,
		CanViewFinancials:  true,
		CanApproveOrders:   true,
		CanExportData:      true,
		CanManageSettings:  true,
		CanDeleteShipments: true,
	},
	RoleManager: {
		CanViewFinancials: true,
		CanApproveOrders:  true,
		CanExportData:     true,
	},
	RoleSalesRepresentative: {
		CanViewFinancials: true,
	},
	RoleQualityControl: {
		CanExportData: true,
	},
	RoleWarehouseStaff: {},
}

// For resolves the capability set of s. detailed_role wins over role. A nil
// subject is labeled "none"; a present but unknown role is labeled
// "warehouse_staff". Both get no capabilities.
func For(s *Subject) Permissions {
	if s == nil {
		return Permissions{Role: RoleNone}
	}

	role := s.DetailedRole
	if role == "" {
		role = s.Role
	}
	if role == "" {
		role = RoleWarehouseStaff
	}

	p, ok := capabilities[role]
	if !ok {
		return Permissions{Role: RoleWarehouseStaff}
	}

	p.Role = role
	return p
}

// Known reports whether role has its own capability tuple.
func Known(role string) bool {
	_, ok := capabilities[role]
	return ok
}

// Memo caches the last resolution and recomputes only when handed a
// different *Subject.
type Memo struct {
	mu     sync.Mutex
	last   *Subject
	primed bool
	perms  Permissions
}

func (m *Memo) For(s *Subject) Permissions {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.primed && m.last == s {
		return m.perms
	}

	m.last = s
	m.perms = For(s)
	m.primed = true
	return m.perms
}
