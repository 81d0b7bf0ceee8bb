// Package patterns learns statistical spending and income patterns from
// long-range transaction history and generates ranked insights.
package patterns

import (
	"sort"
	"strings"
	"time"

	"github.com/Reece-Nunez/finance-ai-sub002/internal/models"
	"github.com/Reece-Nunez/finance-ai-sub002/internal/utils"
)

// Minimum sample floors per pattern type. Buckets below their floor are
// omitted from output rather than emitted with thin evidence.
const (
	minTemporalSamples  = 3
	minCategorySamples  = 5
	minAggregateSamples = 2
)

// seasonalMinMonths is the history span required before seasonal
// aggregation is attempted.
const seasonalMinMonths = 6

// Result is the full output of a learning pass.
type Result struct {
	SpendingPatterns []models.SpendingPattern `json:"spending_patterns"`
	IncomePatterns   []models.IncomePattern   `json:"income_patterns"`
	Insights         []models.Insight         `json:"insights"`
	DataQuality      models.DataQuality       `json:"data_quality"`
}

// Engine extracts spending and income patterns. The income source
// classifier is injected so category heuristics stay outside the engine.
type Engine struct {
	classifySource SourceClassifier
}

// NewEngine creates a pattern learning engine. A nil classifier falls
// back to keyword matching.
func NewEngine(classifier SourceClassifier) *Engine {
	if classifier == nil {
		classifier = ClassifyIncomeSource
	}
	return &Engine{classifySource: classifier}
}

type parsedTxn struct {
	txn  models.Transaction
	date time.Time
}

// Analyze runs every extraction pass over the supplied history. It is a
// pure function of the transaction list: identical input yields
// identical output, order included.
func (e *Engine) Analyze(txns []models.Transaction) (*Result, error) {
	parsed := make([]parsedTxn, 0, len(txns))
	for _, t := range txns {
		if t.Pending {
			continue
		}
		date, err := models.ParseDate(t.Date)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, parsedTxn{txn: t, date: date})
	}

	months := monthsOfData(parsed)
	quality := dataQuality(parsed, months)

	var spending []models.SpendingPattern
	spending = append(spending, dayOfWeekPatterns(parsed, months)...)
	spending = append(spending, weekOfMonthPatterns(parsed, months)...)
	spending = append(spending, monthOfYearPatterns(parsed, months)...)
	spending = append(spending, categoryPatterns(parsed, months)...)
	spending = append(spending, seasonalPatterns(parsed, months)...)

	income := e.incomePatterns(parsed, months)

	return &Result{
		SpendingPatterns: spending,
		IncomePatterns:   income,
		Insights:         generateInsights(spending, income),
		DataQuality:      quality,
	}, nil
}

// Insights derives the ranked insight list from an already-learned
// pattern set. Pure function of its inputs, so it can run against
// patterns served from the store without a full relearning pass.
func Insights(spending []models.SpendingPattern, income []models.IncomePattern) []models.Insight {
	return generateInsights(spending, income)
}

// Quality summarizes how much history backs a pattern set.
func Quality(txns []models.Transaction) (models.DataQuality, error) {
	parsed := make([]parsedTxn, 0, len(txns))
	for _, t := range txns {
		if t.Pending {
			continue
		}
		date, err := models.ParseDate(t.Date)
		if err != nil {
			return models.DataQuality{}, err
		}
		parsed = append(parsed, parsedTxn{txn: t, date: date})
	}
	return dataQuality(parsed, monthsOfData(parsed)), nil
}

// confidenceScore blends sample volume, consistency and history length
// additively, then clamps to [0,1]. No single factor can reach 1.0 alone.
func confidenceScore(n int, cv float64, months int) float64 {
	volume := float64(n) / 10
	if volume > 0.4 {
		volume = 0.4
	}
	consistency := 0.3 - cv*0.3
	if consistency < 0 {
		consistency = 0
	}
	history := float64(months) / 12
	if history > 0.3 {
		history = 0.3
	}
	score := volume + consistency + history
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// monthsOfData is the calendar-month span between the oldest and newest
// transaction, minimum 1 for non-empty history.
func monthsOfData(parsed []parsedTxn) int {
	if len(parsed) == 0 {
		return 0
	}
	oldest, newest := parsed[0].date, parsed[0].date
	for _, p := range parsed[1:] {
		if p.date.Before(oldest) {
			oldest = p.date
		}
		if p.date.After(newest) {
			newest = p.date
		}
	}
	span := (newest.Year()-oldest.Year())*12 + int(newest.Month()) - int(oldest.Month()) + 1
	if span < 1 {
		span = 1
	}
	return span
}

func dataQuality(parsed []parsedTxn, months int) models.DataQuality {
	q := models.DataQuality{TransactionCount: len(parsed), MonthsOfData: months}
	if len(parsed) == 0 {
		return q
	}
	oldest, newest := parsed[0].date, parsed[0].date
	categories := make(map[string]bool)
	for _, p := range parsed {
		if p.date.Before(oldest) {
			oldest = p.date
		}
		if p.date.After(newest) {
			newest = p.date
		}
		if p.txn.IsIncomeFlow() {
			q.IncomeCount++
		}
		if p.txn.Category != "" {
			categories[p.txn.Category] = true
		}
	}
	q.CategoryCount = len(categories)
	q.OldestDate = models.FormatDate(oldest)
	q.NewestDate = models.FormatDate(newest)
	return q
}

func newPattern(ptype models.PatternType, key, category string, values []float64, months int) models.SpendingPattern {
	min, max := utils.MinMax(values)
	return models.SpendingPattern{
		PatternType:     ptype,
		DimensionKey:    key,
		Category:        category,
		AverageAmount:   utils.Round2(utils.Mean(values)),
		MedianAmount:    utils.Round2(utils.Median(values)),
		StdDevAmount:    utils.Round2(utils.StdDev(values)),
		MinAmount:       utils.Round2(min),
		MaxAmount:       utils.Round2(max),
		OccurrenceCount: len(values),
		ConfidenceScore: confidenceScore(len(values), utils.CoefficientOfVariation(values), months),
		MonthsOfData:    months,
	}
}

var weekdayKeys = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

func weekdayKey(t time.Time) string {
	return strings.ToLower(t.Weekday().String())
}

// dayOfWeekPatterns buckets expense amounts by weekday name.
func dayOfWeekPatterns(parsed []parsedTxn, months int) []models.SpendingPattern {
	buckets := make(map[string][]float64)
	for _, p := range parsed {
		if p.txn.IsExpense() {
			key := weekdayKey(p.date)
			buckets[key] = append(buckets[key], p.txn.Amount)
		}
	}
	var out []models.SpendingPattern
	for _, key := range weekdayKeys {
		values := buckets[key]
		if len(values) < minTemporalSamples {
			continue
		}
		out = append(out, newPattern(models.PatternDayOfWeek, key, "", values, months))
	}
	return out
}

var weekOfMonthKeys = []string{"week_1", "week_2", "week_3", "week_4"}

// weekOfMonthKey maps a day of month to its week bucket: 1-7, 8-14,
// 15-21, 22 and up.
func weekOfMonthKey(day int) string {
	switch {
	case day <= 7:
		return "week_1"
	case day <= 14:
		return "week_2"
	case day <= 21:
		return "week_3"
	}
	return "week_4"
}

func weekOfMonthPatterns(parsed []parsedTxn, months int) []models.SpendingPattern {
	buckets := make(map[string][]float64)
	for _, p := range parsed {
		if p.txn.IsExpense() {
			key := weekOfMonthKey(p.date.Day())
			buckets[key] = append(buckets[key], p.txn.Amount)
		}
	}
	var out []models.SpendingPattern
	for _, key := range weekOfMonthKeys {
		values := buckets[key]
		if len(values) < minTemporalSamples {
			continue
		}
		out = append(out, newPattern(models.PatternWeekOfMonth, key, "", values, months))
	}
	return out
}

var monthKeys = []string{"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december"}

// monthOfYearPatterns aggregates expenses per calendar month per year,
// then groups same-named months across years.
func monthOfYearPatterns(parsed []parsedTxn, months int) []models.SpendingPattern {
	totals := make(map[string]float64) // YYYY-MM -> total
	for _, p := range parsed {
		if p.txn.IsExpense() {
			totals[p.date.Format("2006-01")] += p.txn.Amount
		}
	}
	buckets := make(map[string][]float64)
	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		t, _ := time.Parse("2006-01", k)
		name := strings.ToLower(t.Month().String())
		buckets[name] = append(buckets[name], totals[k])
	}
	var out []models.SpendingPattern
	for _, key := range monthKeys {
		values := buckets[key]
		if len(values) < minAggregateSamples {
			continue
		}
		out = append(out, newPattern(models.PatternMonthOfYear, key, "", values, months))
	}
	return out
}

// categoryPatterns aggregates daily and monthly totals per category with
// at least minCategorySamples expense transactions. The monthly pattern
// is only emitted when at least two monthly data points exist.
func categoryPatterns(parsed []parsedTxn, months int) []models.SpendingPattern {
	byCategory := make(map[string][]parsedTxn)
	for _, p := range parsed {
		if p.txn.IsExpense() && p.txn.Category != "" {
			byCategory[p.txn.Category] = append(byCategory[p.txn.Category], p)
		}
	}
	categories := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	var daily, monthly []models.SpendingPattern
	for _, cat := range categories {
		group := byCategory[cat]
		if len(group) < minCategorySamples {
			continue
		}
		dailyTotals := make(map[string]float64)
		monthlyTotals := make(map[string]float64)
		for _, p := range group {
			dailyTotals[p.txn.Date] += p.txn.Amount
			monthlyTotals[p.date.Format("2006-01")] += p.txn.Amount
		}
		if dailyValues := sortedTotals(dailyTotals); len(dailyValues) >= minCategorySamples {
			daily = append(daily, newPattern(models.PatternCategoryDaily, cat, cat, dailyValues, months))
		}
		if monthlyValues := sortedTotals(monthlyTotals); len(monthlyValues) >= minAggregateSamples {
			monthly = append(monthly, newPattern(models.PatternCategoryMonthly, cat, cat, monthlyValues, months))
		}
	}
	return append(daily, monthly...)
}

// sortedTotals flattens a key->total map into values ordered by key, so
// repeated runs produce identical value order.
func sortedTotals(totals map[string]float64) []float64 {
	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	values := make([]float64, len(keys))
	for i, k := range keys {
		values[i] = totals[k]
	}
	return values
}

var seasonKeys = []string{"winter", "spring", "summer", "fall"}

func seasonKey(m time.Month) string {
	switch m {
	case time.December, time.January, time.February:
		return "winter"
	case time.March, time.April, time.May:
		return "spring"
	case time.June, time.July, time.August:
		return "summer"
	}
	return "fall"
}

// seasonalPatterns buckets monthly expense totals into the four calendar
// seasons. Requires at least six months of history.
func seasonalPatterns(parsed []parsedTxn, months int) []models.SpendingPattern {
	if months < seasonalMinMonths {
		return nil
	}
	totals := make(map[string]float64)
	for _, p := range parsed {
		if p.txn.IsExpense() {
			totals[p.date.Format("2006-01")] += p.txn.Amount
		}
	}
	buckets := make(map[string][]float64)
	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		t, _ := time.Parse("2006-01", k)
		season := seasonKey(t.Month())
		buckets[season] = append(buckets[season], totals[k])
	}
	var out []models.SpendingPattern
	for _, key := range seasonKeys {
		values := buckets[key]
		if len(values) < minAggregateSamples {
			continue
		}
		out = append(out, newPattern(models.PatternSeasonal, key, "", values, months))
	}
	return out
}
