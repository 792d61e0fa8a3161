package models

import (
	"time"

	"github.com/google/uuid"
)

// BastRecord is an issued BAST number together with its project metadata
// Table: bast_records
// Unique by BastNumber
type BastRecord struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_bast_records_uuid" json:"uuid"`

	BastNumber  string    `gorm:"size:64;not null;uniqueIndex:uk_bast_records_number" json:"bast_number"`
	ProjectName string    `gorm:"size:500;not null" json:"project_name"`
	BastDate    time.Time `gorm:"type:date;not null;index:idx_bast_records_date" json:"bast_date"`
	Budget      *string   `gorm:"size:100" json:"budget,omitempty"`
	CompanyName *string   `gorm:"size:255" json:"company_name,omitempty"`

	RegistrationDatetime time.Time `gorm:"not null" json:"registration_datetime"`
	UserID               *string   `gorm:"size:255" json:"user_id,omitempty"`
	CreatedAt            time.Time `gorm:"not null;index:idx_bast_records_created_at" json:"created_at"`
	UpdatedAt            time.Time `gorm:"not null" json:"updated_at"`
}

func (BastRecord) TableName() string {
	return "bast_records"
}

// BastRecordFilter represents filter criteria for BAST record queries
type BastRecordFilter struct {
	ID         *uint
	UUID       *uuid.UUID
	BastNumber *string
	Year       *int
}
