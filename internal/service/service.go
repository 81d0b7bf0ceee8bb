// Package service orchestrates the forecasting pipeline: it pulls
// history from the store, runs the pure engine components in order, and
// persists what they produce.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Reece-Nunez/finance-ai-sub002/internal/cache"
	"github.com/Reece-Nunez/finance-ai-sub002/internal/config"
	"github.com/Reece-Nunez/finance-ai-sub002/internal/engine/feedback"
	"github.com/Reece-Nunez/finance-ai-sub002/internal/engine/forecast"
	"github.com/Reece-Nunez/finance-ai-sub002/internal/engine/patterns"
	"github.com/Reece-Nunez/finance-ai-sub002/internal/engine/recurring"
	"github.com/Reece-Nunez/finance-ai-sub002/internal/models"
	"github.com/Reece-Nunez/finance-ai-sub002/internal/repository"
	"github.com/Reece-Nunez/finance-ai-sub002/internal/utils"
)

const (
	// historyMonths caps how far back transaction history is pulled.
	historyMonths = 12
	// spendingRateWindowDays is the trailing window for the baseline
	// discretionary spending rate.
	spendingRateWindowDays = 30
	// maxPatternBlendWeight caps how much the learned patterns can pull
	// the spending rate away from the observed baseline.
	maxPatternBlendWeight = 0.6
	// predictionWindowDays is how many forecast days are stored for
	// later reconciliation.
	predictionWindowDays = 7
)

// Service handles forecasting business logic.
type Service struct {
	store   repository.Store
	cache   cache.PatternCache
	learner *patterns.Engine
	log     *logrus.Logger
	config  *config.Config
	now     func() time.Time
}

// NewService initializes a new service. A nil clock defaults to
// time.Now; tests inject a fixed clock for determinism.
func NewService(store repository.Store, patternCache cache.PatternCache, log *logrus.Logger, cfg *config.Config, clock func() time.Time) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		store:   store,
		cache:   patternCache,
		learner: patterns.NewEngine(nil),
		log:     log,
		config:  cfg,
		now:     clock,
	}
}

// today truncates the injected clock to a calendar date.
func (s *Service) today() time.Time {
	t := s.now().UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *Service) historySince(today time.Time) string {
	return models.FormatDate(today.AddDate(0, -historyMonths, 0))
}

// GenerateForecast runs the full pipeline for a user: staleness check,
// pattern learning, recurring detection, spending-rate blending,
// simulation, and prediction storage for the next 7 days.
func (s *Service) GenerateForecast(ctx context.Context, userID string, days int) (*models.CashFlowForecast, error) {
	today := s.today()
	txns, err := s.store.Transactions(ctx, userID, s.historySince(today))
	if err != nil {
		return nil, err
	}
	accounts, err := s.store.Accounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	balance := models.LiquidBalance(accounts)

	spending, income, err := s.ensurePatterns(ctx, userID, txns, today)
	if err != nil {
		return nil, err
	}

	items, err := recurring.Detect(txns, 0)
	if err != nil {
		return nil, err
	}
	items = mergeIncomePatterns(items, income)

	rate, err := s.blendedSpendingRate(ctx, userID, txns, items, spending, today)
	if err != nil {
		return nil, err
	}

	if days <= 0 {
		days = s.config.ForecastDays
	}
	fc, err := forecast.Simulate(forecast.Input{
		StartDate:           today,
		CurrentBalance:      balance,
		Items:               items,
		DailySpendingRate:   rate,
		Days:                days,
		LowBalanceThreshold: s.config.LowBalanceThreshold,
	})
	if err != nil {
		return nil, err
	}

	if err := s.storePredictions(ctx, userID, fc); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id":    userID,
		"days":       days,
		"items":      len(items),
		"confidence": fc.Confidence,
	}).Info("Forecast generated")
	return fc, nil
}

// RecalculateForecast purges the user's stored predictions and
// regenerates from scratch.
func (s *Service) RecalculateForecast(ctx context.Context, userID string, days int) (*models.CashFlowForecast, error) {
	if err := s.store.DeletePredictions(ctx, userID); err != nil {
		return nil, err
	}
	s.log.Infof("Predictions purged for user %s, regenerating", userID)
	return s.GenerateForecast(ctx, userID, days)
}

// RecurringItems detects the user's recurring transaction series.
func (s *Service) RecurringItems(ctx context.Context, userID string) ([]models.RecurringItem, error) {
	txns, err := s.store.Transactions(ctx, userID, s.historySince(s.today()))
	if err != nil {
		return nil, err
	}
	return recurring.Detect(txns, 0)
}

// PatternSummary is what the patterns endpoint returns.
type PatternSummary struct {
	SpendingPatterns []models.SpendingPattern `json:"spending_patterns"`
	IncomePatterns   []models.IncomePattern   `json:"income_patterns"`
	Insights         []models.Insight         `json:"insights"`
	DataQuality      models.DataQuality       `json:"data_quality"`
}

// Patterns returns the user's learned patterns, recomputing first if the
// cached set is stale. Insights and the data-quality summary are derived
// from the served set so they stay consistent with it.
func (s *Service) Patterns(ctx context.Context, userID string) (*PatternSummary, error) {
	today := s.today()
	txns, err := s.store.Transactions(ctx, userID, s.historySince(today))
	if err != nil {
		return nil, err
	}
	spending, income, err := s.ensurePatterns(ctx, userID, txns, today)
	if err != nil {
		return nil, err
	}
	quality, err := patterns.Quality(txns)
	if err != nil {
		return nil, err
	}
	return &PatternSummary{
		SpendingPatterns: spending,
		IncomePatterns:   income,
		Insights:         patterns.Insights(spending, income),
		DataQuality:      quality,
	}, nil
}

// ensurePatterns applies the staleness policy: reuse the stored pattern
// set unless it is missing or older than the TTL and enough history
// exists to relearn.
func (s *Service) ensurePatterns(ctx context.Context, userID string, txns []models.Transaction, today time.Time) ([]models.SpendingPattern, []models.IncomePattern, error) {
	stored, err := s.store.SpendingPatterns(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	lastCalc, _ := s.cache.LastCalculated(ctx, userID)

	if !feedback.ShouldRecompute(len(stored) > 0, lastCalc, s.now(), len(txns)) {
		income, err := s.store.IncomePatterns(ctx, userID)
		if err != nil {
			return nil, nil, err
		}
		return stored, income, nil
	}

	result, err := s.learner.Analyze(txns)
	if err != nil {
		return nil, nil, err
	}
	if err := s.store.UpsertSpendingPatterns(ctx, userID, result.SpendingPatterns); err != nil {
		return nil, nil, err
	}
	if err := s.store.UpsertIncomePatterns(ctx, userID, result.IncomePatterns); err != nil {
		return nil, nil, err
	}
	if err := s.cache.SetLastCalculated(ctx, userID, s.now()); err != nil {
		s.log.Warnf("Failed to cache pattern timestamp for user %s: %v", userID, err)
	}
	s.log.WithFields(logrus.Fields{
		"user_id":  userID,
		"spending": len(result.SpendingPatterns),
		"income":   len(result.IncomePatterns),
		"months":   result.DataQuality.MonthsOfData,
	}).Info("Patterns recomputed")
	return result.SpendingPatterns, result.IncomePatterns, nil
}

// blendedSpendingRate pre-blends the simulator's discretionary rate:
// trailing-30-day non-recurring expense average, pulled toward the
// learned pattern prediction, then scaled by the accuracy adjustment.
func (s *Service) blendedSpendingRate(ctx context.Context, userID string, txns []models.Transaction, items []models.RecurringItem, spending []models.SpendingPattern, today time.Time) (float64, error) {
	recurringKeys := make(map[string]bool, len(items))
	for _, item := range items {
		recurringKeys[normalizeName(item.Name)] = true
	}

	windowStart := models.FormatDate(today.AddDate(0, 0, -spendingRateWindowDays))
	var total float64
	for _, t := range txns {
		if t.Pending || !t.IsExpense() || t.Date < windowStart {
			continue
		}
		if recurringKeys[t.IdentityKey()] {
			continue
		}
		total += t.Amount
	}
	rate := total / spendingRateWindowDays

	if len(spending) > 0 {
		predicted, conf := patterns.PredictDailySpending(spending, today, "")
		weight := conf
		if weight > maxPatternBlendWeight {
			weight = maxPatternBlendWeight
		}
		rate = rate*(1-weight) + predicted*weight
	}

	meanErr, err := s.store.MeanExpenseErrorPct(ctx, userID)
	if err != nil {
		return 0, err
	}
	return rate * feedback.AccuracyAdjustment(meanErr), nil
}

// storePredictions records the first 7 projected days for later
// reconciliation. Inserts are idempotent per (user, date); an existing
// window is left untouched.
func (s *Service) storePredictions(ctx context.Context, userID string, fc *models.CashFlowForecast) error {
	confidence := confidenceValue(fc.Confidence)
	var preds []models.PredictionRecord
	for day := 1; day <= predictionWindowDays && day < len(fc.DailyForecasts); day++ {
		df := fc.DailyForecasts[day]
		var income, expenses float64
		for _, t := range df.Transactions {
			if t.Amount > 0 {
				income += t.Amount
			} else {
				expenses -= t.Amount
			}
		}
		preds = append(preds, models.PredictionRecord{
			ID:                uuid.NewString(),
			UserID:            userID,
			PredictionDate:    df.Date,
			PredictedBalance:  df.ProjectedBalance,
			PredictedIncome:   utils.Round2(income),
			PredictedExpenses: utils.Round2(expenses),
			ConfidenceScore:   confidence,
		})
	}
	return s.store.InsertPredictions(ctx, preds)
}

// ReconcileUser back-fills actuals on the user's elapsed predictions.
func (s *Service) ReconcileUser(ctx context.Context, userID string) (int, error) {
	today := s.today()
	preds, err := s.store.Predictions(ctx, userID)
	if err != nil {
		return 0, err
	}
	txns, err := s.store.Transactions(ctx, userID, s.historySince(today))
	if err != nil {
		return 0, err
	}
	accounts, err := s.store.Accounts(ctx, userID)
	if err != nil {
		return 0, err
	}

	updated, err := feedback.Reconcile(preds, txns, models.LiquidBalance(accounts), today)
	if err != nil {
		return 0, err
	}
	if len(updated) == 0 {
		return 0, nil
	}
	if err := s.store.UpdatePredictionActuals(ctx, updated); err != nil {
		return 0, err
	}
	s.log.Infof("Reconciled %d predictions for user %s", len(updated), userID)
	return len(updated), nil
}

// ReconcileAll walks every user with elapsed, unreconciled predictions.
// Failures are logged and skipped so one user cannot block the rest.
func (s *Service) ReconcileAll(ctx context.Context) {
	users, err := s.store.UsersWithDuePredictions(ctx, models.FormatDate(s.today()))
	if err != nil {
		s.log.Errorf("Failed to list users for reconciliation: %v", err)
		return
	}
	for _, userID := range users {
		if _, err := s.ReconcileUser(ctx, userID); err != nil {
			s.log.Errorf("Reconciliation failed for user %s: %v", userID, err)
		}
	}
}

// mergeIncomePatterns projects regular income sources into synthetic
// recurring items when detection has not already claimed the source.
func mergeIncomePatterns(items []models.RecurringItem, income []models.IncomePattern) []models.RecurringItem {
	existing := make(map[string]bool)
	for _, item := range items {
		if item.IsIncome {
			existing[normalizeName(item.Name)] = true
		}
	}
	for _, p := range income {
		if p.Frequency == models.IncomeIrregular || p.NextExpected == "" {
			continue
		}
		if existing[normalizeName(p.SourceName)] {
			continue
		}
		items = append(items, models.RecurringItem{
			ID:            uuid.NewString(),
			Name:          p.SourceName,
			Amount:        p.AverageAmount,
			AverageAmount: p.AverageAmount,
			Frequency:     incomeToRecurringFrequency(p.Frequency),
			NextDate:      p.NextExpected,
			LastDate:      p.LastDate,
			Confidence:    confidenceGrade(p.ConfidenceScore),
			IsIncome:      true,
		})
	}
	return items
}

// incomeToRecurringFrequency maps income cadences onto the recurring
// frequency buckets; semi-monthly collapses to bi-weekly.
func incomeToRecurringFrequency(f models.IncomeFrequency) models.Frequency {
	switch f {
	case models.IncomeWeekly:
		return models.FrequencyWeekly
	case models.IncomeBiWeekly, models.IncomeSemiMonthly:
		return models.FrequencyBiWeekly
	}
	return models.FrequencyMonthly
}

func confidenceGrade(score float64) models.Confidence {
	switch {
	case score >= 0.7:
		return models.ConfidenceHigh
	case score >= 0.4:
		return models.ConfidenceMedium
	}
	return models.ConfidenceLow
}

func confidenceValue(c models.Confidence) float64 {
	switch c {
	case models.ConfidenceHigh:
		return 0.85
	case models.ConfidenceMedium:
		return 0.60
	}
	return 0.35
}

func normalizeName(name string) string {
	return models.Transaction{Name: name}.IdentityKey()
}
