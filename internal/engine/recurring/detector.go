// Package recurring detects recurring transaction series from raw
// transaction history and classifies their frequency and confidence.
package recurring

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Reece-Nunez/finance-ai-sub002/internal/models"
	"github.com/Reece-Nunez/finance-ai-sub002/internal/utils"
)

// DefaultMinOccurrences is the smallest group size considered for
// recurrence detection.
const DefaultMinOccurrences = 2

// occurrence is a parsed member of a candidate group.
type occurrence struct {
	txn  models.Transaction
	date time.Time
}

// Detect groups transactions into recurring series and classifies each
// series' frequency and confidence. It is a pure function of the input
// list (typically the trailing 12 months). The result is sorted by next
// expected date ascending.
func Detect(txns []models.Transaction, minOccurrences int) ([]models.RecurringItem, error) {
	if minOccurrences < DefaultMinOccurrences {
		minOccurrences = DefaultMinOccurrences
	}

	groups := make(map[string][]occurrence)
	for _, t := range txns {
		if t.Pending {
			continue
		}
		key := t.IdentityKey()
		if key == "" {
			continue
		}
		date, err := models.ParseDate(t.Date)
		if err != nil {
			return nil, err
		}
		groups[key] = append(groups[key], occurrence{txn: t, date: date})
	}

	items := make([]models.RecurringItem, 0, len(groups))
	for _, group := range groups {
		if len(group) < minOccurrences {
			continue
		}
		if item, ok := classify(group); ok {
			items = append(items, item)
		}
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].NextDate != items[j].NextDate {
			return items[i].NextDate < items[j].NextDate
		}
		return items[i].Name < items[j].Name
	})
	return items, nil
}

// classify decides whether a group of same-name transactions forms a
// stable recurring series.
func classify(group []occurrence) (models.RecurringItem, bool) {
	sort.Slice(group, func(i, j int) bool { return group[i].date.Before(group[j].date) })

	// Day gaps between consecutive occurrences. Same-day duplicates
	// produce zero-length gaps that pull the average interval down;
	// this is accepted behavior.
	gaps := make([]float64, 0, len(group)-1)
	for i := 1; i < len(group); i++ {
		gaps = append(gaps, group[i].date.Sub(group[i-1].date).Hours()/24)
	}
	avgInterval := utils.Mean(gaps)

	amounts := make([]float64, len(group))
	for i, o := range group {
		amounts[i] = math.Abs(o.txn.Amount)
	}
	avgAmount := utils.Mean(amounts)

	amountConsistent := avgAmount > 0 && utils.StdDev(amounts)/avgAmount < 0.2
	intervalConsistent := utils.StdDev(gaps) < 10

	freq, ok := frequencyFor(avgInterval)
	if !ok {
		return models.RecurringItem{}, false
	}

	n := len(group)
	var conf models.Confidence
	switch {
	case amountConsistent && intervalConsistent && n >= 3:
		conf = models.ConfidenceHigh
	case (amountConsistent || intervalConsistent) && n >= 3, n >= 4:
		conf = models.ConfidenceMedium
	default:
		conf = models.ConfidenceLow
	}
	if conf == models.ConfidenceLow && n < 4 {
		return models.RecurringItem{}, false
	}

	last := group[n-1]
	nextDate := last.date.AddDate(0, 0, int(math.Round(avgInterval)))

	incomeCount := 0
	for _, o := range group {
		if o.txn.IsIncomeFlow() {
			incomeCount++
		}
	}

	return models.RecurringItem{
		ID:              uuid.NewString(),
		Name:            displayName(last.txn),
		Amount:          utils.Round2(math.Abs(last.txn.Amount)),
		AverageAmount:   utils.Round2(avgAmount),
		Frequency:       freq,
		NextDate:        models.FormatDate(nextDate),
		LastDate:        models.FormatDate(last.date),
		Confidence:      conf,
		OccurrenceCount: n,
		IsIncome:        incomeCount*2 > n,
		Category:        dominantCategory(group),
	}, true
}

// frequencyFor maps an average day interval to a frequency bucket.
// Intervals beyond the yearly bucket have no stable periodicity.
func frequencyFor(avgInterval float64) (models.Frequency, bool) {
	switch {
	case avgInterval <= 10:
		return models.FrequencyWeekly, true
	case avgInterval <= 20:
		return models.FrequencyBiWeekly, true
	case avgInterval <= 40:
		return models.FrequencyMonthly, true
	case avgInterval <= 100:
		return models.FrequencyQuarterly, true
	case avgInterval <= 400:
		return models.FrequencyYearly, true
	}
	return "", false
}

func displayName(t models.Transaction) string {
	if t.DisplayName != "" {
		return t.DisplayName
	}
	if t.MerchantName != "" {
		return t.MerchantName
	}
	return t.Name
}

func dominantCategory(group []occurrence) string {
	counts := make(map[string]int)
	for _, o := range group {
		if o.txn.Category != "" {
			counts[o.txn.Category]++
		}
	}
	best, bestCount := "", 0
	for cat, c := range counts {
		if c > bestCount || (c == bestCount && cat < best) {
			best, bestCount = cat, c
		}
	}
	return best
}
