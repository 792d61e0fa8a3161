package businessflow

import (
	"context"
	"errors"
	"time"

	"github.com/amirphl/dispupr-numbering/app/dto"
	"github.com/amirphl/dispupr-numbering/models"
	"github.com/amirphl/dispupr-numbering/numbering"
	"github.com/amirphl/dispupr-numbering/repository"
	"github.com/amirphl/dispupr-numbering/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BastFlow defines operations for issuing, correcting and listing BAST numbers
type BastFlow interface {
	Generate(ctx context.Context, req *dto.GenerateBastRequest, metadata *ClientMetadata) (*dto.GenerateBastResponse, error)
	Update(ctx context.Context, req *dto.UpdateBastRequest, metadata *ClientMetadata) (*dto.UpdateBastResponse, error)
	List(ctx context.Context, req *dto.ListBastRecordsRequest) (*dto.ListBastRecordsResponse, error)
	Export(ctx context.Context, req *dto.ListBastRecordsRequest) (*dto.ExportFile, error)
}

// BastFlowImpl implements BastFlow
type BastFlowImpl struct {
	bastRepo    repository.BastRecordRepository
	generator   Generator
	idempotency IdempotencyStore
	db          *gorm.DB
}

// NewBastFlow creates a new BAST flow; idempotency may be nil
func NewBastFlow(bastRepo repository.BastRecordRepository, generator Generator, idempotency IdempotencyStore, db *gorm.DB) BastFlow {
	return &BastFlowImpl{
		bastRepo:    bastRepo,
		generator:   generator,
		idempotency: idempotency,
		db:          db,
	}
}

// Generate mints the next BAST number for the year of req.BastDate and stores the record.
// The counter increment and insert share one transaction, so a failed insert consumes no sequence.
func (f *BastFlowImpl) Generate(ctx context.Context, req *dto.GenerateBastRequest, metadata *ClientMetadata) (*dto.GenerateBastResponse, error) {
	projectName, err := requireProjectName(req.ProjectName)
	if err != nil {
		return nil, err
	}
	bastDate, err := parseDocumentDate(req.BastDate)
	if err != nil {
		return nil, err
	}

	return runIdempotent(ctx, f.idempotency, models.DocumentKindBast, idempotencyKeyOf(metadata), func() (*dto.GenerateBastResponse, error) {
		var (
			record *models.BastRecord
			seq    int64
		)
		err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
			number, s, err := f.generator.GenerateBastNumber(txCtx, bastDate)
			if err != nil {
				return err
			}
			seq = s

			now := utils.UTCNow()
			record = &models.BastRecord{
				UUID:                 uuid.New(),
				BastNumber:           number,
				ProjectName:          projectName,
				BastDate:             bastDate,
				Budget:               optionalText(req.Budget),
				CompanyName:          optionalText(req.CompanyName),
				RegistrationDatetime: now,
				UserID:               operatorOf(metadata),
				CreatedAt:            now,
				UpdatedAt:            now,
			}
			return f.bastRepo.Save(txCtx, record)
		})
		if err != nil {
			return nil, f.wrapWriteError(err, "GENERATE_BAST_FAILED", "Failed to generate BAST number")
		}

		documentNumbersIssued.WithLabelValues(models.DocumentKindBast).Inc()
		logWrite(ctx, "Issued BAST number %s (record=%d, operator=%q)", record.BastNumber, record.ID, utils.Deref(operatorOf(metadata)))

		return &dto.GenerateBastResponse{
			Message:              "BAST number generated successfully",
			ID:                   record.ID,
			UUID:                 record.UUID.String(),
			BastNumber:           record.BastNumber,
			Sequence:             seq,
			ProjectName:          record.ProjectName,
			BastDate:             utils.FormatDate(record.BastDate),
			RegistrationDatetime: record.RegistrationDatetime.Format(time.RFC3339),
		}, nil
	})
}

// Update corrects a record; the number is re-rendered from the new date with the original sequence
func (f *BastFlowImpl) Update(ctx context.Context, req *dto.UpdateBastRequest, metadata *ClientMetadata) (*dto.UpdateBastResponse, error) {
	projectName, err := requireProjectName(req.ProjectName)
	if err != nil {
		return nil, err
	}
	bastDate, err := parseDocumentDate(req.BastDate)
	if err != nil {
		return nil, err
	}

	var record *models.BastRecord
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		existing, err := f.bastRepo.ByID(txCtx, req.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return NewBusinessErrorf("BAST_RECORD_NOT_FOUND", "BAST record %d not found", ErrBastRecordNotFound, req.ID)
		}

		parts, err := numbering.ParseBastNumber(existing.BastNumber)
		if err != nil {
			return NewBusinessError("MALFORMED_STORED_NUMBER", "Could not extract sequence from existing BAST number", ErrMalformedStoredNumber)
		}

		number, err := numbering.BastNumber(parts.Sequence, int(bastDate.Month()), bastDate.Year())
		if err != nil {
			return err
		}

		existing.BastNumber = number
		existing.ProjectName = projectName
		existing.BastDate = bastDate
		existing.Budget = optionalText(req.Budget)
		existing.CompanyName = optionalText(req.CompanyName)
		if err := f.bastRepo.Update(txCtx, existing); err != nil {
			return err
		}
		record = existing
		return nil
	})
	if err != nil {
		return nil, f.wrapWriteError(err, "UPDATE_BAST_FAILED", "Failed to update BAST record")
	}
	logWrite(ctx, "Updated BAST record %d to %s (operator=%q)", record.ID, record.BastNumber, utils.Deref(operatorOf(metadata)))

	return &dto.UpdateBastResponse{
		Message:     "BAST record updated successfully",
		ID:          record.ID,
		BastNumber:  record.BastNumber,
		ProjectName: record.ProjectName,
		BastDate:    utils.FormatDate(record.BastDate),
	}, nil
}

// List returns one page of BAST records, newest first
func (f *BastFlowImpl) List(ctx context.Context, req *dto.ListBastRecordsRequest) (*dto.ListBastRecordsResponse, error) {
	if err := validateYear(req.Year); err != nil {
		return nil, err
	}
	limit, offset := normalizePaging(req.Limit, req.Offset)
	filter := models.BastRecordFilter{Year: req.Year}

	rows, err := f.bastRepo.ByFilter(ctx, filter, "", limit, offset)
	if err != nil {
		return nil, NewBusinessError("LIST_BAST_RECORDS_FAILED", "Failed to list BAST records", err)
	}
	total, err := f.bastRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("LIST_BAST_RECORDS_FAILED", "Failed to count BAST records", err)
	}

	items := make([]dto.BastRecordItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, ToBastRecordItem(r))
	}

	return &dto.ListBastRecordsResponse{
		Records: items,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	}, nil
}

// Export renders every BAST record matching the filter as an xlsx workbook
func (f *BastFlowImpl) Export(ctx context.Context, req *dto.ListBastRecordsRequest) (*dto.ExportFile, error) {
	if err := validateYear(req.Year); err != nil {
		return nil, err
	}
	rows, err := f.bastRepo.ByFilter(ctx, models.BastRecordFilter{Year: req.Year}, "", 0, 0)
	if err != nil {
		return nil, NewBusinessError("EXPORT_BAST_RECORDS_FAILED", "Failed to load BAST records", err)
	}

	items := make([]dto.BastRecordItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, ToBastRecordItem(r))
	}

	content, err := renderBastWorkbook(items)
	if err != nil {
		return nil, NewBusinessError("EXPORT_BAST_RECORDS_FAILED", "Failed to render BAST export", err)
	}
	return &dto.ExportFile{
		FileName:    exportFileName(models.DocumentKindBast, req.Year),
		ContentType: XLSXContentType,
		Content:     content,
	}, nil
}

func (f *BastFlowImpl) wrapWriteError(err error, code, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewBusinessError("BAST_RECORD_NOT_FOUND", "BAST record not found", ErrBastRecordNotFound)
	}
	return classifyWriteError(err, models.DocumentKindBast, "DUPLICATE_BAST_NUMBER", "BAST number already exists. Please try again.", code, message)
}
