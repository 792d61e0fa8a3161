package businessflow

import (
	"context"
	"fmt"
	"time"

	"github.com/amirphl/dispupr-numbering/models"
	"github.com/amirphl/dispupr-numbering/numbering"
	"github.com/amirphl/dispupr-numbering/repository"
)

// Generator mints fresh document numbers from the persisted counters.
// Every call consumes a sequence; run it inside the transaction that stores the record.
type Generator interface {
	GenerateBastNumber(ctx context.Context, date time.Time) (string, int64, error)
	GenerateContractNumber(ctx context.Context, date time.Time, location, workType, procurementType string) (string, int64, error)
}

// GeneratorImpl implements Generator
type GeneratorImpl struct {
	counterRepo repository.CounterRepository
}

func NewGenerator(counterRepo repository.CounterRepository) Generator {
	return &GeneratorImpl{counterRepo: counterRepo}
}

// GenerateBastNumber increments the counter of the date's year and renders {seq}/BAST-BM/{month}/{year}
func (g *GeneratorImpl) GenerateBastNumber(ctx context.Context, date time.Time) (string, int64, error) {
	seq, err := g.counterRepo.IncrementBast(ctx, date.Year())
	if err != nil {
		return "", 0, err
	}
	number, err := numbering.BastNumber(seq, int(date.Month()), date.Year())
	if err != nil {
		return "", 0, fmt.Errorf("failed to format bast number: %w", err)
	}
	return number, seq, nil
}

// GenerateContractNumber increments the counter of the category-year and renders the contract number
func (g *GeneratorImpl) GenerateContractNumber(ctx context.Context, date time.Time, location, workType, procurementType string) (string, int64, error) {
	if err := validateCategory(location, workType, procurementType); err != nil {
		return "", 0, err
	}

	seq, err := g.counterRepo.IncrementContract(ctx, models.ContractScope{
		LocationCode:    location,
		WorkType:        workType,
		ProcurementType: procurementType,
		Year:            date.Year(),
	})
	if err != nil {
		return "", 0, err
	}
	number, err := numbering.ContractNumber(location, workType, procurementType, seq, int(date.Month()), date.Year())
	if err != nil {
		return "", 0, fmt.Errorf("failed to format contract number: %w", err)
	}
	return number, seq, nil
}
