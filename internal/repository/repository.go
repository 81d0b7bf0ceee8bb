// Package repository provides the storage boundary the engine's
// orchestration layer reads from and writes to. The engine itself never
// performs I/O.
package repository

import (
	"context"

	"github.com/Reece-Nunez/finance-ai-sub002/internal/models"
)

// Store is the persistence collaborator for the forecasting pipeline.
// Pattern writes are idempotent upserts keyed by (user, pattern type,
// dimension key, category); prediction writes are insert-only except for
// an explicit recalculate, which purges first.
type Store interface {
	// Transactions returns the user's transactions dated on or after
	// since (YYYY-MM-DD), ordered by date ascending.
	Transactions(ctx context.Context, userID, since string) ([]models.Transaction, error)
	Accounts(ctx context.Context, userID string) ([]models.Account, error)

	UpsertSpendingPatterns(ctx context.Context, userID string, patterns []models.SpendingPattern) error
	UpsertIncomePatterns(ctx context.Context, userID string, patterns []models.IncomePattern) error
	SpendingPatterns(ctx context.Context, userID string) ([]models.SpendingPattern, error)
	IncomePatterns(ctx context.Context, userID string) ([]models.IncomePattern, error)

	InsertPredictions(ctx context.Context, preds []models.PredictionRecord) error
	Predictions(ctx context.Context, userID string) ([]models.PredictionRecord, error)
	UpdatePredictionActuals(ctx context.Context, preds []models.PredictionRecord) error
	DeletePredictions(ctx context.Context, userID string) error

	// MeanExpenseErrorPct is the mean of (actual − predicted) expense
	// error, as a fraction, over the user's reconciled predictions.
	MeanExpenseErrorPct(ctx context.Context, userID string) (float64, error)

	// UsersWithDuePredictions lists users holding unreconciled
	// predictions dated before today.
	UsersWithDuePredictions(ctx context.Context, today string) ([]string, error)
}
