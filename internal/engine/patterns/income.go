package patterns

import (
	"math"
	"sort"
	"strings"

	"github.com/Reece-Nunez/finance-ai-sub002/internal/models"
	"github.com/Reece-Nunez/finance-ai-sub002/internal/utils"
)

// SourceClassifier maps an income source name to a source type. The
// default implementation matches keywords; callers with richer
// categorization rules can inject their own.
type SourceClassifier func(sourceName string) models.IncomeSourceType

// ClassifyIncomeSource is the default keyword-matching classifier.
func ClassifyIncomeSource(sourceName string) models.IncomeSourceType {
	name := strings.ToLower(sourceName)
	switch {
	case containsAny(name, "payroll", "salary", "direct dep", "wages", "paycheck"):
		return models.IncomeSourceSalary
	case containsAny(name, "dividend", "interest", "brokerage", "capital gain"):
		return models.IncomeSourceInvestment
	case containsAny(name, "transfer", "zelle", "venmo", "wire"):
		return models.IncomeSourceTransfer
	case containsAny(name, "invoice", "freelance", "consulting", "contract"):
		return models.IncomeSourceFreelance
	}
	return models.IncomeSourceOther
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// typicalDayShare is the fraction of occurrences a day-of-month must
// appear in to count as typical.
const typicalDayShare = 0.3

// incomePatterns groups income transactions by normalized source name
// and learns each source's cadence and amount profile.
func (e *Engine) incomePatterns(parsed []parsedTxn, months int) []models.IncomePattern {
	groups := make(map[string][]parsedTxn)
	for _, p := range parsed {
		if p.txn.IsIncomeFlow() {
			key := p.txn.IdentityKey()
			if key != "" {
				groups[key] = append(groups[key], p)
			}
		}
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []models.IncomePattern
	for _, key := range keys {
		group := groups[key]
		if len(group) < 2 {
			continue
		}
		out = append(out, e.incomePattern(group, months))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SourceName < out[j].SourceName })
	return out
}

func (e *Engine) incomePattern(group []parsedTxn, months int) models.IncomePattern {
	sort.Slice(group, func(i, j int) bool { return group[i].date.Before(group[j].date) })

	amounts := make([]float64, len(group))
	for i, p := range group {
		amounts[i] = math.Abs(p.txn.Amount)
	}
	avg := utils.Mean(amounts)
	min, max := utils.MinMax(amounts)

	variability := 0.0
	if avg > 0 {
		variability = utils.StdDev(amounts) / avg
	}

	gaps := make([]float64, 0, len(group)-1)
	for i := 1; i < len(group); i++ {
		gaps = append(gaps, group[i].date.Sub(group[i-1].date).Hours()/24)
	}
	freq := incomeFrequencyFor(utils.Mean(gaps))

	last := group[len(group)-1]
	pattern := models.IncomePattern{
		SourceName:      displaySource(last.txn),
		SourceType:      e.classifySource(displaySource(last.txn)),
		TypicalDays:     typicalDaysOfMonth(group),
		Frequency:       freq,
		AverageAmount:   utils.Round2(avg),
		MinAmount:       utils.Round2(min),
		MaxAmount:       utils.Round2(max),
		Variability:     variability,
		ConfidenceScore: confidenceScore(len(group), utils.CoefficientOfVariation(amounts), months),
		LastDate:        models.FormatDate(last.date),
	}
	if freq == models.IncomeWeekly {
		pattern.TypicalDay = typicalWeekday(group)
	}
	if interval := freq.IntervalDays(); interval > 0 {
		pattern.NextExpected = models.FormatDate(last.date.AddDate(0, 0, interval))
	}
	return pattern
}

// incomeFrequencyFor maps an average occurrence gap onto an income
// cadence. Anything past monthly spacing is irregular.
func incomeFrequencyFor(avgGap float64) models.IncomeFrequency {
	switch {
	case avgGap <= 10:
		return models.IncomeWeekly
	case avgGap <= 18:
		return models.IncomeBiWeekly
	case avgGap <= 20:
		return models.IncomeSemiMonthly
	case avgGap <= 35:
		return models.IncomeMonthly
	}
	return models.IncomeIrregular
}

// typicalDaysOfMonth returns days of the month appearing in at least 30%
// of the source's occurrences, ascending.
func typicalDaysOfMonth(group []parsedTxn) []int {
	counts := make(map[int]int)
	for _, p := range group {
		counts[p.date.Day()]++
	}
	threshold := typicalDayShare * float64(len(group))
	var days []int
	for day, c := range counts {
		if float64(c) >= threshold {
			days = append(days, day)
		}
	}
	sort.Ints(days)
	return days
}

func typicalWeekday(group []parsedTxn) string {
	counts := make(map[string]int)
	for _, p := range group {
		counts[weekdayKey(p.date)]++
	}
	best, bestCount := "", 0
	for _, key := range weekdayKeys {
		if counts[key] > bestCount {
			best, bestCount = key, counts[key]
		}
	}
	return best
}

func displaySource(t models.Transaction) string {
	if t.DisplayName != "" {
		return t.DisplayName
	}
	if t.MerchantName != "" {
		return t.MerchantName
	}
	return t.Name
}
