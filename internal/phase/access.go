// AngelaMos | 2026
// access.go

package phase

import (
	"math"
	"sort"
)

const (
	MinPhase = 1
	MaxPhase = 6
)

// Unlimited is the max phase of a user without a phase_limit.
var Unlimited = math.Inf(1)

// pageRequirements maps a page to the lowest subscription phase allowed to
// open it. Pages not listed are phase 1.
var pageRequirements = map[string]int{
	"Dashboard":        1,
	"InboundShipments": 1,
	"NewShipment":      1,
	"ShipmentDetails":  1,
	"TenantSettings":   1,
	"SuperAdmin":       1,

	"Inventory":       2,
	"BinManagement":   2,
	"MobileWarehouse": 2,
	"Picking":         2,
	"PutAway":         2,
	"ScanBarcode":     2,

	"PurchaseOrders": 3,
	"SalesOrders":    3,
	"Customers":      3,
	"Vendors":        3,

	"QualityControl": 4,
	"Reports":        4,
	"KPIDashboard":   4,

	"ComplianceCertificates": 5,
	"Invoices":               5,

	"QuickBooksSync": 6,
	"AIInsights":     6,
}

func RequiredPhase(page string) int {
	return RequiredPhaseOr(page, MinPhase)
}

func RequiredPhaseOr(page string, fallback int) int {
	if p, ok := pageRequirements[page]; ok {
		return p
	}
	return fallback
}

// CanAccessPage reports whether a user capped at maxPhase may open page.
// A non-finite maxPhase (Inf or NaN) means no cap.
func CanAccessPage(page string, maxPhase float64) bool {
	if math.IsInf(maxPhase, 0) || math.IsNaN(maxPhase) {
		return true
	}
	return float64(RequiredPhase(page)) <= maxPhase
}

// LimitFor converts a nullable users.phase_limit into a max phase.
func LimitFor(phaseLimit *int) float64 {
	if phaseLimit == nil || *phaseLimit <= 0 {
		return Unlimited
	}
	return float64(*phaseLimit)
}

// AccessiblePages lists the known pages open at maxPhase, sorted by name.
func AccessiblePages(maxPhase float64) []string {
	pages := make([]string, 0, len(pageRequirements))
	for page := range pageRequirements {
		if CanAccessPage(page, maxPhase) {
			pages = append(pages, page)
		}
	}
	sort.Strings(pages)
	return pages
}

// Known reports whether page appears in the table.
func Known(page string) bool {
	_, ok := pageRequirements[page]
	return ok
}
