package businessflow

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/amirphl/dispupr-numbering/app/dto"
	"github.com/amirphl/dispupr-numbering/models"
	"github.com/amirphl/dispupr-numbering/numbering"
	"github.com/amirphl/dispupr-numbering/repository"
	"github.com/amirphl/dispupr-numbering/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContractFlow defines operations for issuing, correcting and listing contract numbers
type ContractFlow interface {
	Generate(ctx context.Context, req *dto.GenerateContractRequest, metadata *ClientMetadata) (*dto.GenerateContractResponse, error)
	Update(ctx context.Context, req *dto.UpdateContractRequest, metadata *ClientMetadata) (*dto.UpdateContractResponse, error)
	List(ctx context.Context, req *dto.ListContractRecordsRequest) (*dto.ListContractRecordsResponse, error)
	Export(ctx context.Context, req *dto.ListContractRecordsRequest) (*dto.ExportFile, error)
}

// ContractFlowImpl implements ContractFlow
type ContractFlowImpl struct {
	contractRepo repository.ContractRecordRepository
	generator    Generator
	idempotency  IdempotencyStore
	db           *gorm.DB
}

// NewContractFlow creates a new contract flow; idempotency may be nil
func NewContractFlow(contractRepo repository.ContractRecordRepository, generator Generator, idempotency IdempotencyStore, db *gorm.DB) ContractFlow {
	return &ContractFlowImpl{
		contractRepo: contractRepo,
		generator:    generator,
		idempotency:  idempotency,
		db:           db,
	}
}

// Generate mints the next contract number in the request's category-year and stores the record
func (f *ContractFlowImpl) Generate(ctx context.Context, req *dto.GenerateContractRequest, metadata *ClientMetadata) (*dto.GenerateContractResponse, error) {
	projectName, err := requireProjectName(req.ProjectName)
	if err != nil {
		return nil, err
	}
	contractDate, err := parseDocumentDate(req.ContractDate)
	if err != nil {
		return nil, err
	}
	location, workType, procurementType := strings.TrimSpace(req.Location), strings.TrimSpace(req.WorkType), strings.TrimSpace(req.ProcurementType)
	if err := validateCategory(location, workType, procurementType); err != nil {
		return nil, err
	}

	return runIdempotent(ctx, f.idempotency, models.DocumentKindContract, idempotencyKeyOf(metadata), func() (*dto.GenerateContractResponse, error) {
		var (
			record *models.ContractRecord
			seq    int64
		)
		err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
			number, s, err := f.generator.GenerateContractNumber(txCtx, contractDate, location, workType, procurementType)
			if err != nil {
				return err
			}
			seq = s

			now := utils.UTCNow()
			record = &models.ContractRecord{
				UUID:                 uuid.New(),
				ContractNumber:       number,
				ProjectName:          projectName,
				ContractDate:         contractDate,
				LocationCode:         location,
				WorkType:             workType,
				ProcurementType:      procurementType,
				Budget:               optionalText(req.Budget),
				CompanyName:          optionalText(req.CompanyName),
				RegistrationDatetime: now,
				UserID:               operatorOf(metadata),
				CreatedAt:            now,
				UpdatedAt:            now,
			}
			return f.contractRepo.Save(txCtx, record)
		})
		if err != nil {
			return nil, f.wrapWriteError(err, "GENERATE_CONTRACT_FAILED", "Failed to generate contract number")
		}

		documentNumbersIssued.WithLabelValues(models.DocumentKindContract).Inc()
		logWrite(ctx, "Issued contract number %s (record=%d, operator=%q)", record.ContractNumber, record.ID, utils.Deref(operatorOf(metadata)))

		return &dto.GenerateContractResponse{
			Message:              "Contract number generated successfully",
			ID:                   record.ID,
			UUID:                 record.UUID.String(),
			ContractNumber:       record.ContractNumber,
			Sequence:             seq,
			ProjectName:          record.ProjectName,
			ContractDate:         utils.FormatDate(record.ContractDate),
			LocationCode:         record.LocationCode,
			WorkType:             record.WorkType,
			ProcurementType:      record.ProcurementType,
			RegistrationDatetime: record.RegistrationDatetime.Format(time.RFC3339),
		}, nil
	})
}

// Update corrects a record. Month, year and category segments follow the new values;
// the sequence stays the one originally issued, even when the category changes.
func (f *ContractFlowImpl) Update(ctx context.Context, req *dto.UpdateContractRequest, metadata *ClientMetadata) (*dto.UpdateContractResponse, error) {
	projectName, err := requireProjectName(req.ProjectName)
	if err != nil {
		return nil, err
	}
	contractDate, err := parseDocumentDate(req.ContractDate)
	if err != nil {
		return nil, err
	}
	location, workType, procurementType := strings.TrimSpace(req.Location), strings.TrimSpace(req.WorkType), strings.TrimSpace(req.ProcurementType)
	if err := validateCategory(location, workType, procurementType); err != nil {
		return nil, err
	}

	var record *models.ContractRecord
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		existing, err := f.contractRepo.ByID(txCtx, req.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return NewBusinessErrorf("CONTRACT_RECORD_NOT_FOUND", "Contract record %d not found", ErrContractRecordNotFound, req.ID)
		}

		parts, err := numbering.ParseContractNumber(existing.ContractNumber)
		if err != nil {
			return NewBusinessError("MALFORMED_STORED_NUMBER", "Could not extract sequence from existing contract number", ErrMalformedStoredNumber)
		}

		number, err := numbering.ContractNumber(location, workType, procurementType, parts.Sequence, int(contractDate.Month()), contractDate.Year())
		if err != nil {
			return err
		}

		existing.ContractNumber = number
		existing.ProjectName = projectName
		existing.ContractDate = contractDate
		existing.LocationCode = location
		existing.WorkType = workType
		existing.ProcurementType = procurementType
		existing.Budget = optionalText(req.Budget)
		existing.CompanyName = optionalText(req.CompanyName)
		if err := f.contractRepo.Update(txCtx, existing); err != nil {
			return err
		}
		record = existing
		return nil
	})
	if err != nil {
		return nil, f.wrapWriteError(err, "UPDATE_CONTRACT_FAILED", "Failed to update contract record")
	}
	logWrite(ctx, "Updated contract record %d to %s (operator=%q)", record.ID, record.ContractNumber, utils.Deref(operatorOf(metadata)))

	return &dto.UpdateContractResponse{
		Message:         "Contract record updated successfully",
		ID:              record.ID,
		ContractNumber:  record.ContractNumber,
		ProjectName:     record.ProjectName,
		ContractDate:    utils.FormatDate(record.ContractDate),
		LocationCode:    record.LocationCode,
		WorkType:        record.WorkType,
		ProcurementType: record.ProcurementType,
	}, nil
}

func (f *ContractFlowImpl) filterFrom(req *dto.ListContractRecordsRequest) (models.ContractRecordFilter, error) {
	if err := validateYear(req.Year); err != nil {
		return models.ContractRecordFilter{}, err
	}
	filter := models.ContractRecordFilter{
		Year:            req.Year,
		LocationCode:    req.LocationCode,
		WorkType:        req.WorkType,
		ProcurementType: req.ProcurementType,
	}
	if filter.LocationCode != nil && !models.IsValidLocationCode(*filter.LocationCode) {
		return filter, NewBusinessError("INVALID_LOCATION", "Location must be 621 or 622", ErrInvalidLocationCode)
	}
	if filter.WorkType != nil && !models.IsValidWorkType(*filter.WorkType) {
		return filter, NewBusinessError("INVALID_WORK_TYPE", "Work type must be BM or BM-KONS", ErrInvalidWorkType)
	}
	if filter.ProcurementType != nil && !models.IsValidProcurementType(*filter.ProcurementType) {
		return filter, NewBusinessError("INVALID_PROCUREMENT_TYPE", "Procurement type must be SP or SPK", ErrInvalidProcurementType)
	}
	return filter, nil
}

// List returns one page of contract records, newest first
func (f *ContractFlowImpl) List(ctx context.Context, req *dto.ListContractRecordsRequest) (*dto.ListContractRecordsResponse, error) {
	filter, err := f.filterFrom(req)
	if err != nil {
		return nil, err
	}
	limit, offset := normalizePaging(req.Limit, req.Offset)

	rows, err := f.contractRepo.ByFilter(ctx, filter, "", limit, offset)
	if err != nil {
		return nil, NewBusinessError("LIST_CONTRACT_RECORDS_FAILED", "Failed to list contract records", err)
	}
	total, err := f.contractRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("LIST_CONTRACT_RECORDS_FAILED", "Failed to count contract records", err)
	}

	items := make([]dto.ContractRecordItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, ToContractRecordItem(r))
	}

	return &dto.ListContractRecordsResponse{
		Records: items,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	}, nil
}

// Export renders every contract record matching the filter as an xlsx workbook
func (f *ContractFlowImpl) Export(ctx context.Context, req *dto.ListContractRecordsRequest) (*dto.ExportFile, error) {
	filter, err := f.filterFrom(req)
	if err != nil {
		return nil, err
	}
	rows, err := f.contractRepo.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, NewBusinessError("EXPORT_CONTRACT_RECORDS_FAILED", "Failed to load contract records", err)
	}

	items := make([]dto.ContractRecordItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, ToContractRecordItem(r))
	}

	content, err := renderContractWorkbook(items)
	if err != nil {
		return nil, NewBusinessError("EXPORT_CONTRACT_RECORDS_FAILED", "Failed to render contract export", err)
	}
	return &dto.ExportFile{
		FileName:    exportFileName(models.DocumentKindContract, req.Year),
		ContentType: XLSXContentType,
		Content:     content,
	}, nil
}

func (f *ContractFlowImpl) wrapWriteError(err error, code, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewBusinessError("CONTRACT_RECORD_NOT_FOUND", "Contract record not found", ErrContractRecordNotFound)
	}
	return classifyWriteError(err, models.DocumentKindContract, "DUPLICATE_CONTRACT_NUMBER", "Contract number already exists. Please try again.", code, message)
}
