// Package models contains domain entities and filters for issued document numbers and their counters
package models

// Location codes a contract can be issued under
const (
	LocationCode621 = "621"
	LocationCode622 = "622"
)

// Work types
const (
	WorkTypeBM     = "BM"
	WorkTypeBMKons = "BM-KONS"
)

// Procurement types
const (
	ProcurementTypeSP  = "SP"
	ProcurementTypeSPK = "SPK"
)

// Document kinds, used as metric labels and export names
const (
	DocumentKindBast     = "bast"
	DocumentKindContract = "contract"
)

var (
	LocationCodes    = []string{LocationCode621, LocationCode622}
	WorkTypes        = []string{WorkTypeBM, WorkTypeBMKons}
	ProcurementTypes = []string{ProcurementTypeSP, ProcurementTypeSPK}
)

func IsValidLocationCode(v string) bool    { return contains(LocationCodes, v) }
func IsValidWorkType(v string) bool        { return contains(WorkTypes, v) }
func IsValidProcurementType(v string) bool { return contains(ProcurementTypes, v) }

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// AllModels lists every entity managed by AutoMigrate
func AllModels() []any {
	return []any{
		&BastCounter{},
		&ContractCounter{},
		&BastRecord{},
		&ContractRecord{},
	}
}
