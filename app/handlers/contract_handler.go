package handlers

import (
	"github.com/amirphl/dispupr-numbering/app/dto"
	businessflow "github.com/amirphl/dispupr-numbering/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// ContractHandlerInterface defines the contract for contract number handlers
type ContractHandlerInterface interface {
	Generate(c fiber.Ctx) error
	List(c fiber.Ctx) error
	Update(c fiber.Ctx) error
	Export(c fiber.Ctx) error
}

// ContractHandler handles contract number HTTP requests
type ContractHandler struct {
	responder
	flow      businessflow.ContractFlow
	validator *validator.Validate
}

// NewContractHandler creates a new contract handler
func NewContractHandler(flow businessflow.ContractFlow) *ContractHandler {
	return &ContractHandler{
		flow:      flow,
		validator: newValidator(),
	}
}

// Generate contract number
// @Summary Generate contract number
// @Description Issue the next number for the (location, work type, procurement type, year) category and store the record.
// @Tags Contracts
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Client-chosen key for replay-safe retries"
// @Param request body dto.GenerateContractRequest true "Contract record metadata"
// @Success 201 {object} dto.APIResponse{data=dto.GenerateContractResponse} "Contract number generated"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 409 {object} dto.APIResponse "Number collision or request in progress"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/contract/generate [post]
func (h *ContractHandler) Generate(c fiber.Ctx) error {
	var req dto.GenerateContractRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	ctx, cancel := createRequestContext(c, "/api/v1/contract/generate")
	defer cancel()

	result, err := h.flow.Generate(ctx, &req, clientMetadata(c))
	if err != nil {
		return h.FlowErrorResponse(c, err, "Generate contract number", "GENERATE_CONTRACT_FAILED", "Failed to generate contract number")
	}

	return h.SuccessResponse(c, fiber.StatusCreated, result.Message, result)
}

// List contract records
// @Summary List contract records
// @Description Newest first. limit defaults to 100 and is capped at 500.
// @Tags Contracts
// @Produce json
// @Param year query int false "Filter by year of contract_date"
// @Param location_code query string false "621 or 622"
// @Param work_type query string false "BM or BM-KONS"
// @Param procurement_type query string false "SP or SPK"
// @Param limit query int false "Page size"
// @Param offset query int false "Rows to skip"
// @Success 200 {object} dto.APIResponse{data=dto.ListContractRecordsResponse} "Contract records"
// @Failure 400 {object} dto.APIResponse "Invalid query"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/contract/records [get]
func (h *ContractHandler) List(c fiber.Ctx) error {
	req, err := h.parseListRequest(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_QUERY", err.Error())
	}
	if err := h.validator.Struct(req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	ctx, cancel := createRequestContext(c, "/api/v1/contract/records")
	defer cancel()

	result, err := h.flow.List(ctx, req)
	if err != nil {
		return h.FlowErrorResponse(c, err, "List contract records", "LIST_CONTRACT_RECORDS_FAILED", "Failed to list contract records")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Contract records retrieved successfully", result)
}

// Update contract record
// @Summary Update contract record
// @Description Correct a stored record. Date and category segments are re-rendered; the sequence is kept.
// @Tags Contracts
// @Accept json
// @Produce json
// @Param request body dto.UpdateContractRequest true "Corrected record"
// @Success 200 {object} dto.APIResponse{data=dto.UpdateContractResponse} "Contract record updated"
// @Failure 400 {object} dto.APIResponse "Validation error or malformed stored number"
// @Failure 404 {object} dto.APIResponse "Record not found"
// @Failure 409 {object} dto.APIResponse "Re-rendered number already exists"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/contract/update [put]
func (h *ContractHandler) Update(c fiber.Ctx) error {
	var req dto.UpdateContractRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	ctx, cancel := createRequestContext(c, "/api/v1/contract/update")
	defer cancel()

	result, err := h.flow.Update(ctx, &req, clientMetadata(c))
	if err != nil {
		return h.FlowErrorResponse(c, err, "Update contract record", "UPDATE_CONTRACT_FAILED", "Failed to update contract record")
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// Export contract records
// @Summary Export contract records
// @Description Download the filtered contract history as an xlsx workbook.
// @Tags Contracts
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param year query int false "Filter by year of contract_date"
// @Param location_code query string false "621 or 622"
// @Param work_type query string false "BM or BM-KONS"
// @Param procurement_type query string false "SP or SPK"
// @Success 200 {file} file "Workbook"
// @Failure 400 {object} dto.APIResponse "Invalid query"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/contract/records/export [get]
func (h *ContractHandler) Export(c fiber.Ctx) error {
	req, err := h.parseListRequest(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_QUERY", err.Error())
	}
	if err := h.validator.Struct(req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	ctx, cancel := createRequestContext(c, "/api/v1/contract/records/export")
	defer cancel()

	file, err := h.flow.Export(ctx, req)
	if err != nil {
		return h.FlowErrorResponse(c, err, "Export contract records", "EXPORT_CONTRACT_RECORDS_FAILED", "Failed to export contract records")
	}

	return sendExport(c, file)
}

func (h *ContractHandler) parseListRequest(c fiber.Ctx) (*dto.ListContractRecordsRequest, error) {
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

	req := &dto.ListContractRecordsRequest{
		Year:            year,
		LocationCode:    queryString(c, "location_code"),
		WorkType:        queryString(c, "work_type"),
		ProcurementType: queryString(c, "procurement_type"),
	}
	if limit != nil {
		req.Limit = *limit
	}
	if offset != nil {
		req.Offset = *offset
	}
	return req, nil
}
