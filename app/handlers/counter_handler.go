package handlers

import (
	"strconv"

	"github.com/amirphl/dispupr-numbering/app/dto"
	businessflow "github.com/amirphl/dispupr-numbering/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// CounterHandlerInterface defines the contract for counter inspection handlers
type CounterHandlerInterface interface {
	BastCounter(c fiber.Ctx) error
	ContractCounter(c fiber.Ctx) error
}

// CounterHandler exposes the persisted sequence counters
type CounterHandler struct {
	responder
	flow      businessflow.CounterFlow
	validator *validator.Validate
}

// NewCounterHandler creates a new counter handler
func NewCounterHandler(flow businessflow.CounterFlow) *CounterHandler {
	return &CounterHandler{
		flow:      flow,
		validator: newValidator(),
	}
}

// BastCounter reads a BAST counter
// @Summary Get BAST counter
// @Description Read the counter of a year, creating it at zero when absent.
// @Tags Counters
// @Produce json
// @Param year path int true "Year"
// @Success 200 {object} dto.APIResponse{data=dto.BastCounterResponse} "Counter"
// @Failure 400 {object} dto.APIResponse "Invalid year"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/bast/counters/{year} [get]
func (h *CounterHandler) BastCounter(c fiber.Ctx) error {
	year, err := strconv.Atoi(c.Params("year"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Year must be an integer", "INVALID_YEAR", nil)
	}

	ctx, cancel := createRequestContext(c, "/api/v1/bast/counters/"+c.Params("year"))
	defer cancel()

	result, err := h.flow.BastCounter(ctx, year)
	if err != nil {
		return h.FlowErrorResponse(c, err, "Get BAST counter", "GET_BAST_COUNTER_FAILED", "Failed to read BAST counter")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "BAST counter retrieved successfully", result)
}

// ContractCounter reads a contract counter
// @Summary Get contract counter
// @Description Read the counter of a category-year, creating it at zero when absent.
// @Tags Counters
// @Produce json
// @Param location_code query string true "621 or 622"
// @Param work_type query string true "BM or BM-KONS"
// @Param procurement_type query string true "SP or SPK"
// @Param year query int true "Year"
// @Success 200 {object} dto.APIResponse{data=dto.ContractCounterResponse} "Counter"
// @Failure 400 {object} dto.APIResponse "Invalid category or year"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/contract/counters [get]
func (h *CounterHandler) ContractCounter(c fiber.Ctx) error {
	year, err := queryInt(c, "year")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_QUERY", err.Error())
	}

	req := dto.ContractCounterRequest{
		LocationCode:    c.Query("location_code"),
		WorkType:        c.Query("work_type"),
		ProcurementType: c.Query("procurement_type"),
	}
	if year != nil {
		req.Year = *year
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	ctx, cancel := createRequestContext(c, "/api/v1/contract/counters")
	defer cancel()

	result, err := h.flow.ContractCounter(ctx, &req)
	if err != nil {
		return h.FlowErrorResponse(c, err, "Get contract counter", "GET_CONTRACT_COUNTER_FAILED", "Failed to read contract counter")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Contract counter retrieved successfully", result)
}
