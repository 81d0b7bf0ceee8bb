// Package feedback closes the forecasting loop: it reconciles stored
// predictions against realized outcomes, derives an error-correction
// multiplier, and gates expensive pattern recomputation.
package feedback

import (
	"math"
	"sort"
	"time"

	"github.com/Reece-Nunez/finance-ai-sub002/internal/models"
	"github.com/Reece-Nunez/finance-ai-sub002/internal/utils"
)

const (
	// PatternTTL is how long a learned pattern set stays fresh.
	PatternTTL = 24 * time.Hour
	// MinTransactionsForPatterns is the smallest history worth a
	// recomputation pass.
	MinTransactionsForPatterns = 10

	// correctionThreshold is the mean error magnitude above which the
	// spending-rate multiplier engages.
	correctionThreshold = 0.10
	// correctionDamping halves the correction so a single cycle never
	// overshoots.
	correctionDamping = 0.5
)

// IsStale reports whether a pattern set computed at lastCalculatedAt has
// outlived its TTL as of now. Injected time keeps this deterministic
// under test.
func IsStale(now, lastCalculatedAt time.Time) bool {
	return now.Sub(lastCalculatedAt) > PatternTTL
}

// ShouldRecompute applies the staleness policy: recompute when no
// patterns exist yet or the cached set is stale, and only if enough
// transactions are available to learn from.
func ShouldRecompute(hasPatterns bool, lastCalculatedAt, now time.Time, txnCount int) bool {
	if txnCount < MinTransactionsForPatterns {
		return false
	}
	if !hasPatterns {
		return true
	}
	return IsStale(now, lastCalculatedAt)
}

// AccuracyAdjustment converts a mean percentage error (as a fraction,
// e.g. 0.15 for 15%) into a damped multiplier for the daily spending
// rate. Errors within the threshold leave the rate untouched.
func AccuracyAdjustment(meanErrorPct float64) float64 {
	if math.Abs(meanErrorPct) <= correctionThreshold {
		return 1.0
	}
	return 1.0 + meanErrorPct*correctionDamping
}

// dayFlows is realized income and expense totals for one calendar day.
type dayFlows struct {
	income   float64
	expenses float64
}

// Reconcile back-fills actuals on every stored prediction whose date has
// passed without a recorded outcome. The realized balance for each day
// is reconstructed by walking backward from the known current balance,
// removing each intervening day's net flow. Returns only the records
// that were updated.
func Reconcile(preds []models.PredictionRecord, txns []models.Transaction, currentBalance float64, today time.Time) ([]models.PredictionRecord, error) {
	flows := make(map[string]dayFlows)
	for _, t := range txns {
		if t.Pending {
			continue
		}
		if _, err := models.ParseDate(t.Date); err != nil {
			return nil, err
		}
		f := flows[t.Date]
		if t.IsIncomeFlow() {
			f.income += math.Abs(t.Amount)
		} else {
			f.expenses += t.Amount
		}
		flows[t.Date] = f
	}

	type pending struct {
		idx  int
		date time.Time
	}
	var due []pending
	for i, p := range preds {
		if p.Reconciled() {
			continue
		}
		date, err := models.ParseDate(p.PredictionDate)
		if err != nil {
			return nil, err
		}
		if date.Before(today) {
			due = append(due, pending{idx: i, date: date})
		}
	}
	if len(due) == 0 {
		return nil, nil
	}

	// Newest first: each step walks the balance further back in time.
	sort.Slice(due, func(i, j int) bool { return due[i].date.After(due[j].date) })

	var updated []models.PredictionRecord
	balance := currentBalance
	cursor := today
	for _, d := range due {
		// Remove the net flow of every day in (d.date, cursor] so the
		// balance lands on the end of the record's day.
		for day := cursor; day.After(d.date); day = day.AddDate(0, 0, -1) {
			f := flows[models.FormatDate(day)]
			balance -= f.income - f.expenses
		}
		cursor = d.date

		f := flows[models.FormatDate(d.date)]
		rec := preds[d.idx]
		actualBalance := utils.Round2(balance)
		actualIncome := utils.Round2(f.income)
		actualExpenses := utils.Round2(f.expenses)
		variance := utils.Round2(actualBalance - rec.PredictedBalance)
		variancePct := 0.0
		if rec.PredictedBalance != 0 {
			variancePct = utils.Round2(variance / math.Abs(rec.PredictedBalance) * 100)
		}

		rec.ActualBalance = &actualBalance
		rec.ActualIncome = &actualIncome
		rec.ActualExpenses = &actualExpenses
		rec.VarianceAmount = &variance
		rec.VariancePercentage = &variancePct
		updated = append(updated, rec)
	}
	return updated, nil
}
