package businessflow

import (
	"context"

	"github.com/amirphl/dispupr-numbering/app/dto"
	"github.com/amirphl/dispupr-numbering/models"
	"github.com/amirphl/dispupr-numbering/repository"
)

// CounterFlow exposes the current value of the sequence counters without consuming a sequence
type CounterFlow interface {
	BastCounter(ctx context.Context, year int) (*dto.BastCounterResponse, error)
	ContractCounter(ctx context.Context, req *dto.ContractCounterRequest) (*dto.ContractCounterResponse, error)
}

// CounterFlowImpl implements CounterFlow
type CounterFlowImpl struct {
	counterRepo repository.CounterRepository
}

func NewCounterFlow(counterRepo repository.CounterRepository) CounterFlow {
	return &CounterFlowImpl{counterRepo: counterRepo}
}

// BastCounter reads the counter of a BAST year, creating it at zero when absent
func (f *CounterFlowImpl) BastCounter(ctx context.Context, year int) (*dto.BastCounterResponse, error) {
	if err := validateYear(&year); err != nil {
		return nil, err
	}
	v, err := f.counterRepo.GetBast(ctx, year)
	if err != nil {
		return nil, NewBusinessError("GET_BAST_COUNTER_FAILED", "Failed to read BAST counter", err)
	}
	return &dto.BastCounterResponse{
		Year:         year,
		Counter:      v,
		NextSequence: v + 1,
	}, nil
}

// ContractCounter reads the counter of a contract category-year, creating it at zero when absent
func (f *CounterFlowImpl) ContractCounter(ctx context.Context, req *dto.ContractCounterRequest) (*dto.ContractCounterResponse, error) {
	if err := validateYear(&req.Year); err != nil {
		return nil, err
	}
	if err := validateCategory(req.LocationCode, req.WorkType, req.ProcurementType); err != nil {
		return nil, err
	}

	scope := models.ContractScope{
		LocationCode:    req.LocationCode,
		WorkType:        req.WorkType,
		ProcurementType: req.ProcurementType,
		Year:            req.Year,
	}
	v, err := f.counterRepo.GetContract(ctx, scope)
	if err != nil {
		return nil, NewBusinessError("GET_CONTRACT_COUNTER_FAILED", "Failed to read contract counter", err)
	}
	return &dto.ContractCounterResponse{
		LocationCode:    scope.LocationCode,
		WorkType:        scope.WorkType,
		ProcurementType: scope.ProcurementType,
		Year:            scope.Year,
		Counter:         v,
		NextSequence:    v + 1,
	}, nil
}
