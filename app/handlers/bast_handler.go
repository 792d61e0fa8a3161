package handlers

import (
	"github.com/amirphl/dispupr-numbering/app/dto"
	businessflow "github.com/amirphl/dispupr-numbering/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// BastHandlerInterface defines the contract for BAST number handlers
type BastHandlerInterface interface {
	Generate(c fiber.Ctx) error
	List(c fiber.Ctx) error
	Update(c fiber.Ctx) error
	Export(c fiber.Ctx) error
}

// BastHandler handles BAST number HTTP requests
type BastHandler struct {
	responder
	flow      businessflow.BastFlow
	validator *validator.Validate
}

// NewBastHandler creates a new BAST handler
func NewBastHandler(flow businessflow.BastFlow) *BastHandler {
	return &BastHandler{
		flow:      flow,
		validator: newValidator(),
	}
}

// Generate BAST number
// @Summary Generate BAST number
// @Description Issue the next BAST number for the year of bast_date and store the record.
// @Description Send an Idempotency-Key header to make retries replay the first response.
// @Tags BAST
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Client-chosen key for replay-safe retries"
// @Param request body dto.GenerateBastRequest true "BAST record metadata"
// @Success 201 {object} dto.APIResponse{data=dto.GenerateBastResponse} "BAST number generated"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 409 {object} dto.APIResponse "Number collision or request in progress"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/bast/generate [post]
func (h *BastHandler) Generate(c fiber.Ctx) error {
	var req dto.GenerateBastRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	ctx, cancel := createRequestContext(c, "/api/v1/bast/generate")
	defer cancel()

	result, err := h.flow.Generate(ctx, &req, clientMetadata(c))
	if err != nil {
		return h.FlowErrorResponse(c, err, "Generate BAST number", "GENERATE_BAST_FAILED", "Failed to generate BAST number")
	}

	return h.SuccessResponse(c, fiber.StatusCreated, result.Message, result)
}

// List BAST records
// @Summary List BAST records
// @Description Newest first. limit defaults to 100 and is capped at 500.
// @Tags BAST
// @Produce json
// @Param year query int false "Filter by year of bast_date"
// @Param limit query int false "Page size"
// @Param offset query int false "Rows to skip"
// @Success 200 {object} dto.APIResponse{data=dto.ListBastRecordsResponse} "BAST records"
// @Failure 400 {object} dto.APIResponse "Invalid query"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/bast/records [get]
func (h *BastHandler) List(c fiber.Ctx) error {
	req, err := h.parseListRequest(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_QUERY", err.Error())
	}
	if err := h.validator.Struct(req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	ctx, cancel := createRequestContext(c, "/api/v1/bast/records")
	defer cancel()

	result, err := h.flow.List(ctx, req)
	if err != nil {
		return h.FlowErrorResponse(c, err, "List BAST records", "LIST_BAST_RECORDS_FAILED", "Failed to list BAST records")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "BAST records retrieved successfully", result)
}

// Update BAST record
// @Summary Update BAST record
// @Description Correct a stored record. The number is re-rendered from the new date and keeps its sequence.
// @Tags BAST
// @Accept json
// @Produce json
// @Param request body dto.UpdateBastRequest true "Corrected record"
// @Success 200 {object} dto.APIResponse{data=dto.UpdateBastResponse} "BAST record updated"
// @Failure 400 {object} dto.APIResponse "Validation error or malformed stored number"
// @Failure 404 {object} dto.APIResponse "Record not found"
// @Failure 409 {object} dto.APIResponse "Re-rendered number already exists"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/bast/update [put]
func (h *BastHandler) Update(c fiber.Ctx) error {
	var req dto.UpdateBastRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	ctx, cancel := createRequestContext(c, "/api/v1/bast/update")
	defer cancel()

	result, err := h.flow.Update(ctx, &req, clientMetadata(c))
	if err != nil {
		return h.FlowErrorResponse(c, err, "Update BAST record", "UPDATE_BAST_FAILED", "Failed to update BAST record")
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// Export BAST records
// @Summary Export BAST records
// @Description Download the filtered BAST history as an xlsx workbook.
// @Tags BAST
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param year query int false "Filter by year of bast_date"
// @Success 200 {file} file "Workbook"
// @Failure 400 {object} dto.APIResponse "Invalid query"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/bast/records/export [get]
func (h *BastHandler) Export(c fiber.Ctx) error {
	req, err := h.parseListRequest(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_QUERY", err.Error())
	}
	if err := h.validator.Struct(req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	ctx, cancel := createRequestContext(c, "/api/v1/bast/records/export")
	defer cancel()

	file, err := h.flow.Export(ctx, req)
	if err != nil {
		return h.FlowErrorResponse(c, err, "Export BAST records", "EXPORT_BAST_RECORDS_FAILED", "Failed to export BAST records")
	}

	return sendExport(c, file)
}

func (h *BastHandler) parseListRequest(c fiber.Ctx) (*dto.ListBastRecordsRequest, error) {
	year, err := queryInt(c, "year")
	if err != nil {
		return nil, err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return nil, err
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		return nil, err
	}

	req := &dto.ListBastRecordsRequest{Year: year}
	if limit != nil {
		req.Limit = *limit
	}
	if offset != nil {
		req.Offset = *offset
	}
	return req, nil
}
