// Package forecast simulates a forward-looking daily balance trajectory
// from recurring items and a discretionary spending rate, emitting risk
// alerts along the way.
package forecast

import (
	"fmt"
	"strings"
	"time"

	"github.com/Reece-Nunez/finance-ai-sub002/internal/models"
	"github.com/Reece-Nunez/finance-ai-sub002/internal/utils"
)

const (
	// DefaultHorizonDays is the projection length when none is requested.
	DefaultHorizonDays = 30
	// DefaultLowBalanceThreshold triggers low-balance warnings.
	DefaultLowBalanceThreshold = 100

	// weekendMultiplier scales discretionary spending on Saturday/Sunday.
	weekendMultiplier = 1.3
	// largeExpenseFloor is the single-occurrence amount that triggers a
	// large-expense alert inside the near-term window.
	largeExpenseFloor  = 500
	largeExpenseWindow = 7
	// maxAlerts caps the alert list. Truncation is append-order: alerts
	// generated earlier in the horizon win.
	maxAlerts = 10
)

// Input carries everything the simulator needs. It performs no I/O; the
// caller resolves balances, items and the blended spending rate.
type Input struct {
	StartDate           time.Time
	CurrentBalance      float64
	Items               []models.RecurringItem
	DailySpendingRate   float64
	Days                int
	LowBalanceThreshold float64
}

// Simulate projects the balance day by day across the horizon. Day 0 is
// "now": recurring occurrences dated today still apply, but no
// discretionary spending is injected for it.
func Simulate(in Input) (*models.CashFlowForecast, error) {
	days := in.Days
	if days <= 0 {
		days = DefaultHorizonDays
	}
	// A zero threshold disables low-balance alerts; negative-balance
	// alerts are always emitted.
	threshold := in.LowBalanceThreshold
	if threshold < 0 {
		threshold = DefaultLowBalanceThreshold
	}

	start := in.StartDate
	end := start.AddDate(0, 0, days)
	occurrences, err := scheduleOccurrences(in.Items, start, end)
	if err != nil {
		return nil, err
	}

	balance := utils.Round2(in.CurrentBalance)
	current := balance
	lowest, highest := balance, balance
	lowestDate, highestDate := start, start
	var totalIncome, totalExpenses float64
	var alerts []models.CashFlowAlert
	seenAlerts := make(map[string]bool)

	addAlert := func(a models.CashFlowAlert) {
		key := string(a.Type) + "|" + a.Date
		if seenAlerts[key] || len(alerts) >= maxAlerts {
			return
		}
		seenAlerts[key] = true
		alerts = append(alerts, a)
	}

	daily := make([]models.DailyForecast, 0, days+1)
	for day := 0; day <= days; day++ {
		date := start.AddDate(0, 0, day)
		dateStr := models.FormatDate(date)
		var dayTxns []models.ForecastTransaction

		for _, item := range occurrences[dateStr] {
			// Deltas are rounded before they touch the running balance,
			// so the emitted totals and balances stay mutually consistent.
			delta := utils.Round2(item.AverageAmount)
			txnType := models.ForecastRecurringIncome
			if !item.IsIncome {
				delta = -delta
				txnType = models.ForecastRecurringExpense
			}
			balance += delta
			if delta > 0 {
				totalIncome += delta
			} else {
				totalExpenses -= delta
			}
			dayTxns = append(dayTxns, models.ForecastTransaction{
				Name:       item.Name,
				Amount:     delta,
				Type:       txnType,
				Confidence: item.Confidence,
				Category:   item.Category,
			})
			if !item.IsIncome && item.AverageAmount > largeExpenseFloor && day <= largeExpenseWindow {
				addAlert(models.CashFlowAlert{
					Type:     models.AlertLargeExpense,
					Date:     dateStr,
					Message:  fmt.Sprintf("%s (%.2f) is due on %s", item.Name, item.AverageAmount, dateStr),
					Severity: models.SeverityWarning,
					Amount:   utils.Round2(item.AverageAmount),
				})
			}
		}

		if day > 0 && in.DailySpendingRate > 0 {
			spend := in.DailySpendingRate
			if isWeekend(date) {
				spend *= weekendMultiplier
			}
			spend = utils.Round2(spend)
			balance -= spend
			totalExpenses += spend
			dayTxns = append(dayTxns, models.ForecastTransaction{
				Name:       "Estimated daily spending",
				Amount:     -spend,
				Type:       models.ForecastProjectedSpending,
				Confidence: models.ConfidenceMedium,
			})
		}

		if balance < lowest {
			lowest, lowestDate = balance, date
		}
		if balance > highest {
			highest, highestDate = balance, date
		}

		isNegative := balance < 0
		isLow := !isNegative && balance < threshold
		if isNegative {
			addAlert(models.CashFlowAlert{
				Type:     models.AlertNegativeBalance,
				Date:     dateStr,
				Message:  fmt.Sprintf("Projected balance goes negative (%.2f) on %s", balance, dateStr),
				Severity: models.SeverityCritical,
				Amount:   utils.Round2(balance),
			})
		} else if isLow {
			addAlert(models.CashFlowAlert{
				Type:     models.AlertLowBalance,
				Date:     dateStr,
				Message:  fmt.Sprintf("Projected balance drops to %.2f on %s", balance, dateStr),
				Severity: models.SeverityWarning,
				Amount:   utils.Round2(balance),
			})
		}

		daily = append(daily, models.DailyForecast{
			Date:             dateStr,
			DayOfWeek:        strings.ToLower(date.Weekday().String()),
			ProjectedBalance: utils.Round2(balance),
			Transactions:     dayTxns,
			IsLowBalance:     isLow,
			IsNegative:       isNegative,
		})
	}

	return &models.CashFlowForecast{
		StartDate:           models.FormatDate(start),
		EndDate:             models.FormatDate(end),
		CurrentBalance:      current,
		ProjectedEndBalance: utils.Round2(balance),
		LowestBalance:       utils.Round2(lowest),
		LowestBalanceDate:   models.FormatDate(lowestDate),
		HighestBalance:      utils.Round2(highest),
		HighestBalanceDate:  models.FormatDate(highestDate),
		TotalIncome:         utils.Round2(totalIncome),
		TotalExpenses:       utils.Round2(totalExpenses),
		NetCashFlow:         utils.Round2(totalIncome - totalExpenses),
		DailyForecasts:      daily,
		Alerts:              alerts,
		Confidence:          overallConfidence(in.Items),
	}, nil
}

// scheduleOccurrences expands each recurring item into its occurrence
// dates inside [start, end], stepping by the frequency's canonical
// interval from the item's next expected date. Occurrences already
// behind the horizon start are advanced past it.
func scheduleOccurrences(items []models.RecurringItem, start, end time.Time) (map[string][]models.RecurringItem, error) {
	out := make(map[string][]models.RecurringItem)
	for _, item := range items {
		next, err := models.ParseDate(item.NextDate)
		if err != nil {
			return nil, err
		}
		interval := item.Frequency.IntervalDays()
		if interval <= 0 {
			continue
		}
		for next.Before(start) {
			next = next.AddDate(0, 0, interval)
		}
		for !next.After(end) {
			key := models.FormatDate(next)
			out[key] = append(out[key], item)
			next = next.AddDate(0, 0, interval)
		}
	}
	return out, nil
}

func isWeekend(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}

// overallConfidence grades the forecast by how many of its recurring
// inputs are themselves high-confidence.
func overallConfidence(items []models.RecurringItem) models.Confidence {
	if len(items) < 2 {
		return models.ConfidenceLow
	}
	high := 0
	for _, item := range items {
		if item.Confidence == models.ConfidenceHigh {
			high++
		}
	}
	ratio := float64(high) / float64(len(items))
	switch {
	case ratio >= 0.7 && len(items) >= 3:
		return models.ConfidenceHigh
	case ratio < 0.3:
		return models.ConfidenceLow
	}
	return models.ConfidenceMedium
}
