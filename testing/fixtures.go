// Package testing provides test utilities and database setup for testing the numbering service
package testing

import (
	"fmt"
	"time"

	"github.com/amirphl/dispupr-numbering/models"
	"github.com/amirphl/dispupr-numbering/numbering"
	"github.com/amirphl/dispupr-numbering/utils"
	"github.com/google/uuid"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestBastRecord inserts a BAST record with the given sequence and date, bypassing the counters
func (tf *TestFixtures) CreateTestBastRecord(seq int64, date time.Time) (*models.BastRecord, error) {
	number, err := numbering.BastNumber(seq, int(date.Month()), date.Year())
	if err != nil {
		return nil, err
	}

	now := utils.UTCNow()
	record := &models.BastRecord{
		UUID:                 uuid.New(),
		BastNumber:           number,
		ProjectName:          fmt.Sprintf("Road maintenance %d", seq),
		BastDate:             date,
		Budget:               utils.ToPtr("150000000"),
		CompanyName:          utils.ToPtr("CV Karya Mandiri"),
		RegistrationDatetime: now,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := tf.DB.DB.Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to create test bast record: %w", err)
	}
	return record, nil
}

// CreateTestContractRecord inserts a contract record in the given category, bypassing the counters
func (tf *TestFixtures) CreateTestContractRecord(scope models.ContractScope, seq int64, date time.Time) (*models.ContractRecord, error) {
	number, err := numbering.ContractNumber(scope.LocationCode, scope.WorkType, scope.ProcurementType, seq, int(date.Month()), date.Year())
	if err != nil {
		return nil, err
	}

	now := utils.UTCNow()
	record := &models.ContractRecord{
		UUID:                 uuid.New(),
		ContractNumber:       number,
		ProjectName:          fmt.Sprintf("Bridge rehabilitation %d", seq),
		ContractDate:         date,
		LocationCode:         scope.LocationCode,
		WorkType:             scope.WorkType,
		ProcurementType:      scope.ProcurementType,
		RegistrationDatetime: now,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := tf.DB.DB.Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to create test contract record: %w", err)
	}
	return record, nil
}

// Date builds a UTC calendar date
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
