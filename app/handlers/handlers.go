// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/amirphl/dispupr-numbering/app/dto"
	businessflow "github.com/amirphl/dispupr-numbering/business_flow"
	"github.com/amirphl/dispupr-numbering/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"
)

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "min":
		return err.Field() + " must be at least " + err.Param()
	case "max":
		return err.Field() + " must be at most " + err.Param()
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	case "iso_date":
		return err.Field() + " must be a valid date in YYYY-MM-DD format"
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
	default:
		return err.Field() + " is invalid"
	}
}

// newValidator returns a validator with the document-specific tags registered
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("iso_date", func(fl validator.FieldLevel) bool {
		t, err := utils.ParseDate(fl.Field().String())
		return err == nil && t.Year() >= utils.MinDocumentYear
	})
	return v
}

func validationMessages(err error) []string {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return []string{err.Error()}
	}
	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		messages = append(messages, getValidationErrorMessage(fe))
	}
	return messages
}

// responder carries the response envelope helpers shared by all handlers
type responder struct{}

func (responder) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (responder) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// FlowErrorResponse maps a business flow error onto a status code and envelope
func (r responder) FlowErrorResponse(c fiber.Ctx, err error, operation, fallbackCode, fallbackMessage string) error {
	code, message := fallbackCode, fallbackMessage
	var be *businessflow.BusinessError
	if errors.As(err, &be) {
		code, message = be.Code, be.Message
	}

	switch {
	case businessflow.IsValidationError(err):
		return r.ErrorResponse(c, fiber.StatusBadRequest, message, code, nil)
	case businessflow.IsBastRecordNotFound(err), businessflow.IsContractRecordNotFound(err):
		return r.ErrorResponse(c, fiber.StatusNotFound, message, code, nil)
	case businessflow.IsDuplicateDocumentNumber(err), businessflow.IsRequestInProgress(err):
		return r.ErrorResponse(c, fiber.StatusConflict, message, code, nil)
	}

	log.Printf("%s failed (request_id=%s, operator=%q, path=%s): %v", operation, requestid.FromContext(c), operatorFrom(c), c.Path(), err)
	return r.ErrorResponse(c, fiber.StatusInternalServerError, message, code, nil)
}

// createRequestContext bounds flow work by utils.RequestTimeout and tags it for flow logs; the caller must call cancel
func createRequestContext(c fiber.Ctx, endpoint string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), utils.RequestTimeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, requestid.FromContext(c))
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	return ctx, cancel
}

func operatorFrom(c fiber.Ctx) string {
	operator, _ := c.Locals(utils.OperatorLocalsKey).(string)
	return operator
}

// clientMetadata collects the request-scoped details recorded with issued numbers
func clientMetadata(c fiber.Ctx) *businessflow.ClientMetadata {
	metadata := businessflow.NewClientMetadata()
	metadata.SetOperatorID(operatorFrom(c))
	metadata.SetIdempotencyKey(c.Get(utils.IdempotencyKeyHeader))
	return metadata
}

// queryInt parses an optional integer query parameter
func queryInt(c fiber.Ctx, name string) (*int, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", name)
	}
	return &v, nil
}

// queryString returns nil for an absent query parameter
func queryString(c fiber.Ctx, name string) *string {
	if raw := c.Query(name); raw != "" {
		return &raw
	}
	return nil
}

// sendExport writes a rendered spreadsheet as an attachment
func sendExport(c fiber.Ctx, file *dto.ExportFile) error {
	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, file.FileName))
	return c.Status(fiber.StatusOK).Send(file.Content)
}
