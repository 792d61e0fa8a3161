package models

import (
	"time"

	"github.com/google/uuid"
)

// ContractRecord is an issued contract number together with its project metadata
// Table: contract_records
// Unique by ContractNumber
// Indexed on (location_code, work_type, procurement_type) for category listings
type ContractRecord struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_contract_records_uuid" json:"uuid"`

	ContractNumber  string    `gorm:"size:64;not null;uniqueIndex:uk_contract_records_number" json:"contract_number"`
	ProjectName     string    `gorm:"size:500;not null" json:"project_name"`
	ContractDate    time.Time `gorm:"type:date;not null;index:idx_contract_records_date" json:"contract_date"`
	LocationCode    string    `gorm:"size:3;not null;index:idx_contract_records_category" json:"location_code"`
	WorkType        string    `gorm:"size:10;not null;index:idx_contract_records_category" json:"work_type"`
	ProcurementType string    `gorm:"size:3;not null;index:idx_contract_records_category" json:"procurement_type"`
	Budget          *string   `gorm:"size:100" json:"budget,omitempty"`
	CompanyName     *string   `gorm:"size:255" json:"company_name,omitempty"`

	RegistrationDatetime time.Time `gorm:"not null" json:"registration_datetime"`
	UserID               *string   `gorm:"size:255" json:"user_id,omitempty"`
	CreatedAt            time.Time `gorm:"not null;index:idx_contract_records_created_at" json:"created_at"`
	UpdatedAt            time.Time `gorm:"not null" json:"updated_at"`
}

func (ContractRecord) TableName() string {
	return "contract_records"
}

// ContractRecordFilter represents filter criteria for contract record queries
type ContractRecordFilter struct {
	ID              *uint
	UUID            *uuid.UUID
	ContractNumber  *string
	Year            *int
	LocationCode    *string
	WorkType        *string
	ProcurementType *string
}
