package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirphl/dispupr-numbering/models"
	"github.com/amirphl/dispupr-numbering/utils"
	"gorm.io/gorm"
)

// ContractRecordRepositoryImpl implements ContractRecordRepository interface
type ContractRecordRepositoryImpl struct {
	*BaseRepository[models.ContractRecord, models.ContractRecordFilter]
}

// NewContractRecordRepository creates a new contract record repository
func NewContractRecordRepository(db *gorm.DB) ContractRecordRepository {
	return &ContractRecordRepositoryImpl{
		BaseRepository: NewBaseRepository[models.ContractRecord, models.ContractRecordFilter](db),
	}
}

// Update rewrites the mutable columns of a record by ID, including its category
func (r *ContractRecordRepositoryImpl) Update(ctx context.Context, record *models.ContractRecord) error {
	if record == nil {
		return errors.New("contract record payload is nil")
	}
	if record.ID == 0 {
		return errors.New("contract record ID is required for update")
	}

	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	record.UpdatedAt = utils.UTCNow()
	result := db.Model(&models.ContractRecord{}).
		Where("id = ?", record.ID).
		Updates(map[string]any{
			"contract_number":  record.ContractNumber,
			"project_name":     record.ProjectName,
			"contract_date":    record.ContractDate,
			"location_code":    record.LocationCode,
			"work_type":        record.WorkType,
			"procurement_type": record.ProcurementType,
			"budget":           record.Budget,
			"company_name":     record.CompanyName,
			"updated_at":       record.UpdatedAt,
		})
	if err = result.Error; err != nil {
		return fmt.Errorf("failed to update contract record %d: %w", record.ID, err)
	}
	if result.RowsAffected == 0 {
		err = gorm.ErrRecordNotFound
		return err
	}
	return nil
}

// applyFilter applies filter criteria to a GORM query
func (r *ContractRecordRepositoryImpl) applyFilter(query *gorm.DB, filter models.ContractRecordFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.ContractNumber != nil {
		query = query.Where("contract_number = ?", *filter.ContractNumber)
	}
	if filter.Year != nil {
		from, to := utils.YearBounds(*filter.Year)
		query = query.Where("contract_date >= ? AND contract_date < ?", from, to)
	}
	if filter.LocationCode != nil {
		query = query.Where("location_code = ?", *filter.LocationCode)
	}
	if filter.WorkType != nil {
		query = query.Where("work_type = ?", *filter.WorkType)
	}
	if filter.ProcurementType != nil {
		query = query.Where("procurement_type = ?", *filter.ProcurementType)
	}
	return query
}

// ByFilter retrieves contract records based on filter criteria
func (r *ContractRecordRepositoryImpl) ByFilter(ctx context.Context, filter models.ContractRecordFilter, orderBy string, limit, offset int) ([]*models.ContractRecord, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.ContractRecord{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "created_at DESC, id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.ContractRecord
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of contract records matching filter
func (r *ContractRecordRepositoryImpl) Count(ctx context.Context, filter models.ContractRecordFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.ContractRecord{})
	query = r.applyFilter(query, filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any contract record matches the filter
func (r *ContractRecordRepositoryImpl) Exists(ctx context.Context, filter models.ContractRecordFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
