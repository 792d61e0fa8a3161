package businessflow

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/amirphl/dispupr-numbering/app/dto"
	"github.com/amirphl/dispupr-numbering/models"
	"github.com/amirphl/dispupr-numbering/repository"
	"github.com/amirphl/dispupr-numbering/utils"
)

// ClientMetadata holds the caller details that shape a write
type ClientMetadata struct {
	OperatorID     *string `json:"operator_id,omitempty"`
	IdempotencyKey string  `json:"idempotency_key,omitempty"`
}

// NewClientMetadata creates an anonymous, non-idempotent ClientMetadata
func NewClientMetadata() *ClientMetadata {
	return &ClientMetadata{}
}

// SetOperatorID records the upstream-authenticated operator; blank means anonymous
func (cm *ClientMetadata) SetOperatorID(operatorID string) {
	cm.OperatorID = utils.NilIfEmpty(operatorID)
}

// SetIdempotencyKey sets the client-supplied idempotency key
func (cm *ClientMetadata) SetIdempotencyKey(key string) {
	cm.IdempotencyKey = strings.TrimSpace(key)
}

func operatorOf(metadata *ClientMetadata) *string {
	if metadata == nil {
		return nil
	}
	return metadata.OperatorID
}

// logWrite records a completed write with the request id and endpoint carried by ctx
func logWrite(ctx context.Context, format string, args ...any) {
	log.Printf("[request_id=%s endpoint=%s] "+format, append([]any{utils.RequestID(ctx), utils.Endpoint(ctx)}, args...)...)
}

func idempotencyKeyOf(metadata *ClientMetadata) string {
	if metadata == nil {
		return ""
	}
	return metadata.IdempotencyKey
}

// normalizePaging applies listing defaults and caps
func normalizePaging(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = utils.DefaultListLimit
	}
	if limit > utils.MaxListLimit {
		limit = utils.MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func validateYear(year *int) error {
	if year == nil {
		return nil
	}
	if *year < utils.MinDocumentYear || *year > utils.MaxDocumentYear {
		return NewBusinessErrorf("INVALID_YEAR", "year %d is out of range", ErrInvalidYear, *year)
	}
	return nil
}

func parseDocumentDate(s string) (time.Time, error) {
	t, err := utils.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, NewBusinessError("INVALID_DATE", err.Error(), ErrInvalidDocumentDate)
	}
	if t.Year() < utils.MinDocumentYear {
		return time.Time{}, NewBusinessErrorf("INVALID_DATE", "document year must be %d or later", ErrInvalidDocumentDate, utils.MinDocumentYear)
	}
	return t, nil
}

func requireProjectName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", NewBusinessError("PROJECT_NAME_REQUIRED", "Project name is required", ErrProjectNameRequired)
	}
	return name, nil
}

func validateCategory(location, workType, procurementType string) error {
	if !models.IsValidLocationCode(location) {
		return NewBusinessError("INVALID_LOCATION", "Location must be 621 or 622", ErrInvalidLocationCode)
	}
	if !models.IsValidWorkType(workType) {
		return NewBusinessError("INVALID_WORK_TYPE", "Work type must be BM or BM-KONS", ErrInvalidWorkType)
	}
	if !models.IsValidProcurementType(procurementType) {
		return NewBusinessError("INVALID_PROCUREMENT_TYPE", "Procurement type must be SP or SPK", ErrInvalidProcurementType)
	}
	return nil
}

// ToBastRecordItem converts a BAST record model to its listing DTO
func ToBastRecordItem(r *models.BastRecord) dto.BastRecordItem {
	return dto.BastRecordItem{
		ID:                   r.ID,
		UUID:                 r.UUID.String(),
		BastNumber:           r.BastNumber,
		ProjectName:          r.ProjectName,
		BastDate:             utils.FormatDate(r.BastDate),
		Budget:               r.Budget,
		CompanyName:          r.CompanyName,
		RegistrationDatetime: r.RegistrationDatetime.UTC().Format(time.RFC3339),
		UserID:               r.UserID,
		CreatedAt:            r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ToContractRecordItem converts a contract record model to its listing DTO
func ToContractRecordItem(r *models.ContractRecord) dto.ContractRecordItem {
	return dto.ContractRecordItem{
		ID:                   r.ID,
		UUID:                 r.UUID.String(),
		ContractNumber:       r.ContractNumber,
		ProjectName:          r.ProjectName,
		ContractDate:         utils.FormatDate(r.ContractDate),
		LocationCode:         r.LocationCode,
		WorkType:             r.WorkType,
		ProcurementType:      r.ProcurementType,
		Budget:               r.Budget,
		CompanyName:          r.CompanyName,
		RegistrationDatetime: r.RegistrationDatetime.UTC().Format(time.RFC3339),
		UserID:               r.UserID,
		CreatedAt:            r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// optionalText trims optional free-text fields and maps blanks to NULL
func optionalText(s *string) *string {
	if s == nil {
		return nil
	}
	return utils.NilIfEmpty(*s)
}

// classifyWriteError maps repository failures of a generate or update transaction to business errors.
// Business errors raised inside the transaction pass through unchanged.
func classifyWriteError(err error, document, duplicateCode, duplicateMessage, code, message string) error {
	var be *BusinessError
	if errors.As(err, &be) {
		return err
	}
	if repository.IsUniqueViolation(err) {
		documentNumberConflicts.WithLabelValues(document).Inc()
		return NewBusinessError(duplicateCode, duplicateMessage, ErrDuplicateDocumentNumber)
	}
	return NewBusinessError(code, message, err)
}
