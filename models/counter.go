package models

// BastCounter holds the BAST sequence for one year
// Table: bast_counters
// Rows are created lazily with Counter = 0 and only ever incremented
type BastCounter struct {
	Year    int   `gorm:"primaryKey;autoIncrement:false" json:"year"`
	Counter int64 `gorm:"not null;default:0" json:"counter"`
}

func (BastCounter) TableName() string {
	return "bast_counters"
}

// ContractCounter holds the contract sequence for one (location, work type, procurement type, year) scope
// Table: contract_counters
// Unique on the scope tuple
type ContractCounter struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	LocationCode    string `gorm:"size:3;not null;uniqueIndex:uk_contract_counters_scope" json:"location_code"`
	WorkType        string `gorm:"size:10;not null;uniqueIndex:uk_contract_counters_scope" json:"work_type"`
	ProcurementType string `gorm:"size:3;not null;uniqueIndex:uk_contract_counters_scope" json:"procurement_type"`
	Year            int    `gorm:"not null;uniqueIndex:uk_contract_counters_scope" json:"year"`
	Counter         int64  `gorm:"not null;default:0" json:"counter"`
}

func (ContractCounter) TableName() string {
	return "contract_counters"
}

// ContractScope identifies a contract counter
type ContractScope struct {
	LocationCode    string
	WorkType        string
	ProcurementType string
	Year            int
}
