package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirphl/dispupr-numbering/models"
	"github.com/amirphl/dispupr-numbering/utils"
	"gorm.io/gorm"
)

// BastRecordRepositoryImpl implements BastRecordRepository interface
type BastRecordRepositoryImpl struct {
	*BaseRepository[models.BastRecord, models.BastRecordFilter]
}

// NewBastRecordRepository creates a new BAST record repository
func NewBastRecordRepository(db *gorm.DB) BastRecordRepository {
	return &BastRecordRepositoryImpl{
		BaseRepository: NewBaseRepository[models.BastRecord, models.BastRecordFilter](db),
	}
}

// Update rewrites the mutable columns of a record by ID
func (r *BastRecordRepositoryImpl) Update(ctx context.Context, record *models.BastRecord) error {
	if record == nil {
		return errors.New("bast record payload is nil")
	}
	if record.ID == 0 {
		return errors.New("bast record ID is required for update")
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
	result := db.Model(&models.BastRecord{}).
		Where("id = ?", record.ID).
		Updates(map[string]any{
			"bast_number":  record.BastNumber,
			"project_name": record.ProjectName,
			"bast_date":    record.BastDate,
			"budget":       record.Budget,
			"company_name": record.CompanyName,
			"updated_at":   record.UpdatedAt,
		})
	if err = result.Error; err != nil {
		return fmt.Errorf("failed to update bast record %d: %w", record.ID, err)
	}
	if result.RowsAffected == 0 {
		err = gorm.ErrRecordNotFound
		return err
	}
	return nil
}

// applyFilter applies filter criteria to a GORM query
func (r *BastRecordRepositoryImpl) applyFilter(query *gorm.DB, filter models.BastRecordFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.BastNumber != nil {
		query = query.Where("bast_number = ?", *filter.BastNumber)
	}
	if filter.Year != nil {
		from, to := utils.YearBounds(*filter.Year)
		query = query.Where("bast_date >= ? AND bast_date < ?", from, to)
	}
	return query
}

// ByFilter retrieves BAST records based on filter criteria
func (r *BastRecordRepositoryImpl) ByFilter(ctx context.Context, filter models.BastRecordFilter, orderBy string, limit, offset int) ([]*models.BastRecord, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.BastRecord{})

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

	var rows []*models.BastRecord
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of BAST records matching filter
func (r *BastRecordRepositoryImpl) Count(ctx context.Context, filter models.BastRecordFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.BastRecord{})
	query = r.applyFilter(query, filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any BAST record matches the filter
func (r *BastRecordRepositoryImpl) Exists(ctx context.Context, filter models.BastRecordFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
