// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/amirphl/dispupr-numbering/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// CounterRepository defines operations on the per-scope sequence counters.
// Get creates an absent row with value 0; Increment* creates-or-increments in one statement.
type CounterRepository interface {
	GetBast(ctx context.Context, year int) (int64, error)
	IncrementBast(ctx context.Context, year int) (int64, error)
	GetContract(ctx context.Context, scope models.ContractScope) (int64, error)
	IncrementContract(ctx context.Context, scope models.ContractScope) (int64, error)
}

// BastRecordRepository defines operations for issued BAST numbers
type BastRecordRepository interface {
	Repository[models.BastRecord, models.BastRecordFilter]
	Update(ctx context.Context, record *models.BastRecord) error
}

// ContractRecordRepository defines operations for issued contract numbers
type ContractRecordRepository interface {
	Repository[models.ContractRecord, models.ContractRecordFilter]
	Update(ctx context.Context, record *models.ContractRecord) error
}
