package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/Reece-Nunez/finance-ai-sub002/internal/models"
)

// MemoryStore is an in-memory Store used by tests and when no database
// is configured. Write semantics mirror the Postgres store: pattern
// upserts are idempotent, prediction inserts skip existing
// (user, date) rows.
type MemoryStore struct {
	mu               sync.RWMutex
	transactions     map[string][]models.Transaction
	accounts         map[string][]models.Account
	spendingPatterns map[string]map[string]models.SpendingPattern
	incomePatterns   map[string]map[string]models.IncomePattern
	predictions      map[string][]models.PredictionRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		transactions:     make(map[string][]models.Transaction),
		accounts:         make(map[string][]models.Account),
		spendingPatterns: make(map[string]map[string]models.SpendingPattern),
		incomePatterns:   make(map[string]map[string]models.IncomePattern),
		predictions:      make(map[string][]models.PredictionRecord),
	}
}

// Seed helpers for tests and offline mode.

func (m *MemoryStore) AddTransactions(userID string, txns ...models.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[userID] = append(m.transactions[userID], txns...)
}

func (m *MemoryStore) AddAccounts(userID string, accounts ...models.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[userID] = append(m.accounts[userID], accounts...)
}

func (m *MemoryStore) Transactions(_ context.Context, userID, since string) ([]models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Transaction
	for _, t := range m.transactions[userID] {
		if t.Date >= since {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) Accounts(_ context.Context, userID string) ([]models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Account(nil), m.accounts[userID]...), nil
}

func patternKey(p models.SpendingPattern) string {
	return string(p.PatternType) + "|" + p.DimensionKey + "|" + p.Category
}

func (m *MemoryStore) UpsertSpendingPatterns(_ context.Context, userID string, patterns []models.SpendingPattern) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.spendingPatterns[userID] == nil {
		m.spendingPatterns[userID] = make(map[string]models.SpendingPattern)
	}
	for _, p := range patterns {
		m.spendingPatterns[userID][patternKey(p)] = p
	}
	return nil
}

func (m *MemoryStore) UpsertIncomePatterns(_ context.Context, userID string, patterns []models.IncomePattern) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.incomePatterns[userID] == nil {
		m.incomePatterns[userID] = make(map[string]models.IncomePattern)
	}
	for _, p := range patterns {
		m.incomePatterns[userID][p.SourceName] = p
	}
	return nil
}

func (m *MemoryStore) SpendingPatterns(_ context.Context, userID string) ([]models.SpendingPattern, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.SpendingPattern
	for _, p := range m.spendingPatterns[userID] {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return patternKey(out[i]) < patternKey(out[j]) })
	return out, nil
}

func (m *MemoryStore) IncomePatterns(_ context.Context, userID string) ([]models.IncomePattern, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.IncomePattern
	for _, p := range m.incomePatterns[userID] {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SourceName < out[j].SourceName })
	return out, nil
}

func (m *MemoryStore) InsertPredictions(_ context.Context, preds []models.PredictionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range preds {
		exists := false
		for _, existing := range m.predictions[p.UserID] {
			if existing.PredictionDate == p.PredictionDate {
				exists = true
				break
			}
		}
		if !exists {
			m.predictions[p.UserID] = append(m.predictions[p.UserID], p)
		}
	}
	return nil
}

func (m *MemoryStore) Predictions(_ context.Context, userID string) ([]models.PredictionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := append([]models.PredictionRecord(nil), m.predictions[userID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].PredictionDate < out[j].PredictionDate })
	return out, nil
}

func (m *MemoryStore) UpdatePredictionActuals(_ context.Context, preds []models.PredictionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range preds {
		list := m.predictions[p.UserID]
		for i := range list {
			if list[i].ID == p.ID {
				list[i] = p
			}
		}
	}
	return nil
}

func (m *MemoryStore) DeletePredictions(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.predictions, userID)
	return nil
}

func (m *MemoryStore) MeanExpenseErrorPct(_ context.Context, userID string) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum float64
	var n int
	for _, p := range m.predictions[userID] {
		if p.ActualExpenses == nil || p.PredictedExpenses == 0 {
			continue
		}
		sum += (*p.ActualExpenses - p.PredictedExpenses) / abs(p.PredictedExpenses)
		n++
	}
	if n == 0 {
		return 0, nil
	}
	return sum / float64(n), nil
}

func (m *MemoryStore) UsersWithDuePredictions(_ context.Context, today string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]bool)
	var users []string
	for userID, preds := range m.predictions {
		for _, p := range preds {
			if p.ActualBalance == nil && p.PredictionDate < today && !seen[userID] {
				seen[userID] = true
				users = append(users, userID)
			}
		}
	}
	sort.Strings(users)
	return users, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
