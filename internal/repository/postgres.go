package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/Reece-Nunez/finance-ai-sub002/internal/models"
)

// PostgresStore implements Store over a Postgres database.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore initializes a Postgres-backed store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (r *PostgresStore) Transactions(ctx context.Context, userID, since string) ([]models.Transaction, error) {
	query := `
		SELECT t.id, t.account_id, t.name, COALESCE(t.merchant_name, ''), COALESCE(t.display_name, ''),
		       t.amount, to_char(t.date, 'YYYY-MM-DD'), COALESCE(t.category, ''), t.is_income, t.pending
		FROM finance.transactions t
		JOIN finance.accounts a ON a.id = t.account_id
		WHERE a.user_id = $1 AND t.date >= $2
		ORDER BY t.date ASC, t.id ASC`
	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Name, &t.MerchantName, &t.DisplayName,
			&t.Amount, &t.Date, &t.Category, &t.IsIncome, &t.Pending); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

func (r *PostgresStore) Accounts(ctx context.Context, userID string) ([]models.Account, error) {
	query := `
		SELECT id, user_id, name, type, current_balance
		FROM finance.accounts
		WHERE user_id = $1
		ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.CurrentBalance); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *PostgresStore) UpsertSpendingPatterns(ctx context.Context, userID string, patterns []models.SpendingPattern) error {
	query := `
		INSERT INTO finance.spending_patterns
			(user_id, pattern_type, dimension_key, category, average_amount, median_amount,
			 std_dev_amount, min_amount, max_amount, occurrence_count, confidence_score,
			 months_of_data, last_calculated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id, pattern_type, dimension_key, category) DO UPDATE SET
			average_amount = EXCLUDED.average_amount,
			median_amount = EXCLUDED.median_amount,
			std_dev_amount = EXCLUDED.std_dev_amount,
			min_amount = EXCLUDED.min_amount,
			max_amount = EXCLUDED.max_amount,
			occurrence_count = EXCLUDED.occurrence_count,
			confidence_score = EXCLUDED.confidence_score,
			months_of_data = EXCLUDED.months_of_data,
			last_calculated_at = CURRENT_TIMESTAMP`
	for _, p := range patterns {
		_, err := r.db.ExecContext(ctx, query, userID, p.PatternType, p.DimensionKey, p.Category,
			p.AverageAmount, p.MedianAmount, p.StdDevAmount, p.MinAmount, p.MaxAmount,
			p.OccurrenceCount, p.ConfidenceScore, p.MonthsOfData)
		if err != nil {
			return fmt.Errorf("failed to upsert spending pattern: %w", err)
		}
	}
	return nil
}

func (r *PostgresStore) UpsertIncomePatterns(ctx context.Context, userID string, patterns []models.IncomePattern) error {
	query := `
		INSERT INTO finance.income_patterns
			(user_id, source_name, source_type, typical_days, typical_day, frequency,
			 average_amount, min_amount, max_amount, variability, confidence_score,
			 last_date, next_expected, last_calculated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NULLIF($13, ''), CURRENT_TIMESTAMP)
		ON CONFLICT (user_id, source_name) DO UPDATE SET
			source_type = EXCLUDED.source_type,
			typical_days = EXCLUDED.typical_days,
			typical_day = EXCLUDED.typical_day,
			frequency = EXCLUDED.frequency,
			average_amount = EXCLUDED.average_amount,
			min_amount = EXCLUDED.min_amount,
			max_amount = EXCLUDED.max_amount,
			variability = EXCLUDED.variability,
			confidence_score = EXCLUDED.confidence_score,
			last_date = EXCLUDED.last_date,
			next_expected = EXCLUDED.next_expected,
			last_calculated_at = CURRENT_TIMESTAMP`
	for _, p := range patterns {
		_, err := r.db.ExecContext(ctx, query, userID, p.SourceName, p.SourceType,
			pq.Array(p.TypicalDays), p.TypicalDay, p.Frequency, p.AverageAmount,
			p.MinAmount, p.MaxAmount, p.Variability, p.ConfidenceScore, p.LastDate, p.NextExpected)
		if err != nil {
			return fmt.Errorf("failed to upsert income pattern: %w", err)
		}
	}
	return nil
}

func (r *PostgresStore) SpendingPatterns(ctx context.Context, userID string) ([]models.SpendingPattern, error) {
	query := `
		SELECT pattern_type, dimension_key, category, average_amount, median_amount,
		       std_dev_amount, min_amount, max_amount, occurrence_count, confidence_score, months_of_data
		FROM finance.spending_patterns
		WHERE user_id = $1
		ORDER BY pattern_type, dimension_key, category`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query spending patterns: %w", err)
	}
	defer rows.Close()

	var patterns []models.SpendingPattern
	for rows.Next() {
		var p models.SpendingPattern
		if err := rows.Scan(&p.PatternType, &p.DimensionKey, &p.Category, &p.AverageAmount,
			&p.MedianAmount, &p.StdDevAmount, &p.MinAmount, &p.MaxAmount,
			&p.OccurrenceCount, &p.ConfidenceScore, &p.MonthsOfData); err != nil {
			return nil, fmt.Errorf("failed to scan spending pattern: %w", err)
		}
		patterns = append(patterns, p)
	}
	return patterns, rows.Err()
}

func (r *PostgresStore) IncomePatterns(ctx context.Context, userID string) ([]models.IncomePattern, error) {
	query := `
		SELECT source_name, source_type, typical_days, COALESCE(typical_day, ''), frequency,
		       average_amount, min_amount, max_amount, variability, confidence_score,
		       to_char(last_date, 'YYYY-MM-DD'), COALESCE(to_char(next_expected, 'YYYY-MM-DD'), '')
		FROM finance.income_patterns
		WHERE user_id = $1
		ORDER BY source_name`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query income patterns: %w", err)
	}
	defer rows.Close()

	var patterns []models.IncomePattern
	for rows.Next() {
		var p models.IncomePattern
		var days pq.Int64Array
		if err := rows.Scan(&p.SourceName, &p.SourceType, &days, &p.TypicalDay, &p.Frequency,
			&p.AverageAmount, &p.MinAmount, &p.MaxAmount, &p.Variability, &p.ConfidenceScore,
			&p.LastDate, &p.NextExpected); err != nil {
			return nil, fmt.Errorf("failed to scan income pattern: %w", err)
		}
		for _, d := range days {
			p.TypicalDays = append(p.TypicalDays, int(d))
		}
		patterns = append(patterns, p)
	}
	return patterns, rows.Err()
}

func (r *PostgresStore) InsertPredictions(ctx context.Context, preds []models.PredictionRecord) error {
	query := `
		INSERT INTO finance.predictions
			(id, user_id, prediction_date, predicted_balance, predicted_income,
			 predicted_expenses, confidence_score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id, prediction_date) DO NOTHING`
	for _, p := range preds {
		_, err := r.db.ExecContext(ctx, query, p.ID, p.UserID, p.PredictionDate,
			p.PredictedBalance, p.PredictedIncome, p.PredictedExpenses, p.ConfidenceScore)
		if err != nil {
			return fmt.Errorf("failed to insert prediction: %w", err)
		}
	}
	return nil
}

func (r *PostgresStore) Predictions(ctx context.Context, userID string) ([]models.PredictionRecord, error) {
	query := `
		SELECT id, user_id, to_char(prediction_date, 'YYYY-MM-DD'), predicted_balance,
		       predicted_income, predicted_expenses, confidence_score,
		       actual_balance, actual_income, actual_expenses, variance_amount, variance_percentage
		FROM finance.predictions
		WHERE user_id = $1
		ORDER BY prediction_date ASC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var preds []models.PredictionRecord
	for rows.Next() {
		var p models.PredictionRecord
		if err := rows.Scan(&p.ID, &p.UserID, &p.PredictionDate, &p.PredictedBalance,
			&p.PredictedIncome, &p.PredictedExpenses, &p.ConfidenceScore,
			&p.ActualBalance, &p.ActualIncome, &p.ActualExpenses,
			&p.VarianceAmount, &p.VariancePercentage); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		preds = append(preds, p)
	}
	return preds, rows.Err()
}

func (r *PostgresStore) UpdatePredictionActuals(ctx context.Context, preds []models.PredictionRecord) error {
	query := `
		UPDATE finance.predictions
		SET actual_balance = $2, actual_income = $3, actual_expenses = $4,
		    variance_amount = $5, variance_percentage = $6, reconciled_at = CURRENT_TIMESTAMP
		WHERE id = $1`
	for _, p := range preds {
		_, err := r.db.ExecContext(ctx, query, p.ID, p.ActualBalance, p.ActualIncome,
			p.ActualExpenses, p.VarianceAmount, p.VariancePercentage)
		if err != nil {
			return fmt.Errorf("failed to update prediction actuals: %w", err)
		}
	}
	return nil
}

func (r *PostgresStore) DeletePredictions(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM finance.predictions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete predictions: %w", err)
	}
	return nil
}

func (r *PostgresStore) MeanExpenseErrorPct(ctx context.Context, userID string) (float64, error) {
	query := `
		SELECT COALESCE(AVG((actual_expenses - predicted_expenses) / NULLIF(ABS(predicted_expenses), 0)), 0)
		FROM finance.predictions
		WHERE user_id = $1 AND actual_expenses IS NOT NULL`
	var pct float64
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&pct); err != nil {
		return 0, fmt.Errorf("failed to compute mean expense error: %w", err)
	}
	return pct, nil
}

func (r *PostgresStore) UsersWithDuePredictions(ctx context.Context, today string) ([]string, error) {
	query := `
		SELECT DISTINCT user_id
		FROM finance.predictions
		WHERE actual_balance IS NULL AND prediction_date < $1
		ORDER BY user_id`
	rows, err := r.db.QueryContext(ctx, query, today)
	if err != nil {
		return nil, fmt.Errorf("failed to query due predictions: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		users = append(users, id)
	}
	return users, rows.Err()
}
