package repository

import (
	"context"
	"fmt"

	"github.com/amirphl/dispupr-numbering/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CounterRepositoryImpl implements CounterRepository on top of bast_counters and contract_counters
type CounterRepositoryImpl struct {
	bast     *BaseRepository[models.BastCounter, any]
	contract *BaseRepository[models.ContractCounter, any]
}

// NewCounterRepository creates a new counter repository
func NewCounterRepository(db *gorm.DB) CounterRepository {
	return &CounterRepositoryImpl{
		bast:     NewBaseRepository[models.BastCounter, any](db),
		contract: NewBaseRepository[models.ContractCounter, any](db),
	}
}

var contractScopeColumns = []clause.Column{
	{Name: "location_code"},
	{Name: "work_type"},
	{Name: "procurement_type"},
	{Name: "year"},
}

// GetBast returns the current BAST counter for year, creating it at 0 when absent
func (r *CounterRepositoryImpl) GetBast(ctx context.Context, year int) (int64, error) {
	db := r.bast.getDB(ctx)

	row := models.BastCounter{Year: year, Counter: 0}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "year"}},
		DoNothing: true,
	}).Create(&row).Error
	if err != nil {
		return 0, fmt.Errorf("failed to ensure bast counter for %d: %w", year, err)
	}

	var current models.BastCounter
	if err := db.Where("year = ?", year).First(&current).Error; err != nil {
		return 0, fmt.Errorf("failed to read bast counter for %d: %w", year, err)
	}
	return current.Counter, nil
}

// IncrementBast adds one to the BAST counter for year and returns the new value.
// Insert-or-increment is a single statement, so concurrent callers never share a value.
func (r *CounterRepositoryImpl) IncrementBast(ctx context.Context, year int) (int64, error) {
	db := r.bast.getDB(ctx)

	row := models.BastCounter{Year: year, Counter: 1}
	err := db.Clauses(
		clause.OnConflict{
			Columns: []clause.Column{{Name: "year"}},
			DoUpdates: clause.Assignments(map[string]any{
				"counter": gorm.Expr("bast_counters.counter + 1"),
			}),
		},
		clause.Returning{Columns: []clause.Column{{Name: "counter"}}},
	).Create(&row).Error
	if err != nil {
		return 0, fmt.Errorf("failed to increment bast counter for %d: %w", year, err)
	}
	return row.Counter, nil
}

// GetContract returns the current contract counter for scope, creating it at 0 when absent
func (r *CounterRepositoryImpl) GetContract(ctx context.Context, scope models.ContractScope) (int64, error) {
	db := r.contract.getDB(ctx)

	row := contractCounterRow(scope, 0)
	err := db.Clauses(clause.OnConflict{
		Columns:   contractScopeColumns,
		DoNothing: true,
	}).Create(&row).Error
	if err != nil {
		return 0, fmt.Errorf("failed to ensure contract counter %+v: %w", scope, err)
	}

	var current models.ContractCounter
	err = db.Where("location_code = ? AND work_type = ? AND procurement_type = ? AND year = ?",
		scope.LocationCode, scope.WorkType, scope.ProcurementType, scope.Year).
		First(&current).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read contract counter %+v: %w", scope, err)
	}
	return current.Counter, nil
}

// IncrementContract adds one to the contract counter for scope and returns the new value
func (r *CounterRepositoryImpl) IncrementContract(ctx context.Context, scope models.ContractScope) (int64, error) {
	db := r.contract.getDB(ctx)

	row := contractCounterRow(scope, 1)
	err := db.Clauses(
		clause.OnConflict{
			Columns: contractScopeColumns,
			DoUpdates: clause.Assignments(map[string]any{
				"counter": gorm.Expr("contract_counters.counter + 1"),
			}),
		},
		clause.Returning{Columns: []clause.Column{{Name: "counter"}}},
	).Create(&row).Error
	if err != nil {
		return 0, fmt.Errorf("failed to increment contract counter %+v: %w", scope, err)
	}
	return row.Counter, nil
}

func contractCounterRow(scope models.ContractScope, counter int64) models.ContractCounter {
	return models.ContractCounter{
		LocationCode:    scope.LocationCode,
		WorkType:        scope.WorkType,
		ProcurementType: scope.ProcurementType,
		Year:            scope.Year,
		Counter:         counter,
	}
}
