// Package businessflow contains the core business logic for issuing and correcting document numbers
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Record errors
	ErrBastRecordNotFound     = errors.New("bast record not found")
	ErrContractRecordNotFound = errors.New("contract record not found")

	// Validation errors
	ErrInvalidDocumentDate     = errors.New("document date must be a valid YYYY-MM-DD date")
	ErrProjectNameRequired     = errors.New("project name is required")
	ErrInvalidLocationCode     = errors.New("location must be 621 or 622")
	ErrInvalidWorkType         = errors.New("work type must be BM or BM-KONS")
	ErrInvalidProcurementType  = errors.New("procurement type must be SP or SPK")
	ErrInvalidYear             = errors.New("year is out of range")
	ErrMalformedStoredNumber   = errors.New("stored document number has an unexpected format")
	ErrDuplicateDocumentNumber = errors.New("document number already exists")

	// Idempotency errors
	ErrRequestInProgress = errors.New("a request with the same idempotency key is in progress")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsBastRecordNotFound(err error) bool {
	return errors.Is(err, ErrBastRecordNotFound)
}

func IsContractRecordNotFound(err error) bool {
	return errors.Is(err, ErrContractRecordNotFound)
}

func IsDuplicateDocumentNumber(err error) bool {
	return errors.Is(err, ErrDuplicateDocumentNumber)
}

func IsRequestInProgress(err error) bool {
	return errors.Is(err, ErrRequestInProgress)
}

func IsMalformedStoredNumber(err error) bool {
	return errors.Is(err, ErrMalformedStoredNumber)
}

// IsValidationError reports whether err should be answered with a client error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidDocumentDate) ||
		errors.Is(err, ErrProjectNameRequired) ||
		errors.Is(err, ErrInvalidLocationCode) ||
		errors.Is(err, ErrInvalidWorkType) ||
		errors.Is(err, ErrInvalidProcurementType) ||
		errors.Is(err, ErrInvalidYear) ||
		errors.Is(err, ErrMalformedStoredNumber)
}
