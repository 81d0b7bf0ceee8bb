package patterns

import (
	"reflect"
	"testing"

	"github.com/Reece-Nunez/finance-ai-sub002/internal/models"
)

// sampleHistory spans seven months with weekday-stable groceries, a
// swingy shopping category and a bi-weekly paycheck.
func sampleHistory() []models.Transaction {
	txns := []models.Transaction{
		// Mondays (2025-06-02 is a Monday)
		{Name: "Groceries", Date: "2025-06-02", Amount: 52.10, Category: "groceries"},
		{Name: "Groceries", Date: "2025-06-09", Amount: 48.75, Category: "groceries"},
		{Name: "Groceries", Date: "2025-06-16", Amount: 55.40, Category: "groceries"},
		{Name: "Groceries", Date: "2025-06-23", Amount: 50.00, Category: "groceries"},
		{Name: "Groceries", Date: "2025-06-30", Amount: 49.30, Category: "groceries"},
		// Swingy shopping, monthly totals far apart
		{Name: "Shopping", Date: "2025-01-15", Amount: 400, Category: "shopping"},
		{Name: "Shopping", Date: "2025-02-15", Amount: 30, Category: "shopping"},
		{Name: "Shopping", Date: "2025-03-15", Amount: 500, Category: "shopping"},
		{Name: "Shopping", Date: "2025-04-15", Amount: 25, Category: "shopping"},
		{Name: "Shopping", Date: "2025-05-15", Amount: 450, Category: "shopping"},
		{Name: "Shopping", Date: "2025-06-15", Amount: 20, Category: "shopping"},
		// Bi-weekly paycheck
		{Name: "Acme Payroll", Date: "2025-05-02", Amount: -1500, IsIncome: true},
		{Name: "Acme Payroll", Date: "2025-05-16", Amount: -1500, IsIncome: true},
		{Name: "Acme Payroll", Date: "2025-05-30", Amount: -1500, IsIncome: true},
		{Name: "Acme Payroll", Date: "2025-06-13", Amount: -1500, IsIncome: true},
	}
	return txns
}

func TestAnalyze_ConfidenceScoresInRange(t *testing.T) {
	engine := NewEngine(nil)
	result, err := engine.Analyze(sampleHistory())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range result.SpendingPatterns {
		if p.ConfidenceScore < 0 || p.ConfidenceScore > 1 {
			t.Errorf("spending pattern %s/%s confidence %.3f out of [0,1]",
				p.PatternType, p.DimensionKey, p.ConfidenceScore)
		}
	}
	for _, p := range result.IncomePatterns {
		if p.ConfidenceScore < 0 || p.ConfidenceScore > 1 {
			t.Errorf("income pattern %s confidence %.3f out of [0,1]", p.SourceName, p.ConfidenceScore)
		}
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	engine := NewEngine(nil)
	first, err := engine.Analyze(sampleHistory())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := engine.Analyze(sampleHistory())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("two passes over identical history produced different output")
	}
}

func TestAnalyze_DayOfWeekFloor(t *testing.T) {
	engine := NewEngine(nil)

	// Two Monday expenses: below the temporal floor of 3.
	thin := []models.Transaction{
		{Name: "Coffee", Date: "2025-06-02", Amount: 5},
		{Name: "Coffee", Date: "2025-06-09", Amount: 5},
	}
	result, err := engine.Analyze(thin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range result.SpendingPatterns {
		if p.PatternType == models.PatternDayOfWeek {
			t.Errorf("expected no day_of_week pattern below the sample floor, got %s", p.DimensionKey)
		}
	}

	// A third Monday crosses the floor.
	full := append(thin, models.Transaction{Name: "Coffee", Date: "2025-06-16", Amount: 5})
	result, err = engine.Analyze(full)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, p := range result.SpendingPatterns {
		if p.PatternType == models.PatternDayOfWeek && p.DimensionKey == "monday" {
			found = true
			if p.OccurrenceCount != 3 {
				t.Errorf("expected 3 occurrences, got %d", p.OccurrenceCount)
			}
		}
	}
	if !found {
		t.Error("expected a monday pattern at the sample floor")
	}
}

func TestAnalyze_SeasonalRequiresSixMonths(t *testing.T) {
	engine := NewEngine(nil)
	short := []models.Transaction{
		{Name: "A", Date: "2025-01-10", Amount: 100},
		{Name: "B", Date: "2025-02-10", Amount: 100},
		{Name: "C", Date: "2025-03-10", Amount: 100},
	}
	result, err := engine.Analyze(short)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range result.SpendingPatterns {
		if p.PatternType == models.PatternSeasonal {
			t.Error("seasonal pattern emitted with under six months of history")
		}
	}
}

func TestAnalyze_CategoryMonthlyNeedsTwoPoints(t *testing.T) {
	engine := NewEngine(nil)
	oneMonth := []models.Transaction{
		{Name: "A", Date: "2025-06-01", Amount: 20, Category: "dining"},
		{Name: "B", Date: "2025-06-05", Amount: 25, Category: "dining"},
		{Name: "C", Date: "2025-06-10", Amount: 30, Category: "dining"},
		{Name: "D", Date: "2025-06-15", Amount: 22, Category: "dining"},
		{Name: "E", Date: "2025-06-20", Amount: 28, Category: "dining"},
	}
	result, err := engine.Analyze(oneMonth)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range result.SpendingPatterns {
		if p.PatternType == models.PatternCategoryMonthly {
			t.Error("category_monthly emitted with a single monthly data point")
		}
	}
}

func TestAnalyze_IncomeFrequencyAndNextExpected(t *testing.T) {
	engine := NewEngine(nil)
	result, err := engine.Analyze(sampleHistory())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.IncomePatterns) != 1 {
		t.Fatalf("expected 1 income pattern, got %d", len(result.IncomePatterns))
	}
	p := result.IncomePatterns[0]
	if p.Frequency != models.IncomeBiWeekly {
		t.Errorf("expected bi-weekly income, got %s", p.Frequency)
	}
	if p.SourceType != models.IncomeSourceSalary {
		t.Errorf("expected salary source type, got %s", p.SourceType)
	}
	if p.NextExpected != "2025-06-27" {
		t.Errorf("expected next occurrence 2025-06-27, got %s", p.NextExpected)
	}
	if p.AverageAmount != 1500 {
		t.Errorf("expected average 1500, got %.2f", p.AverageAmount)
	}
	if p.Variability != 0 {
		t.Errorf("expected zero variability for a flat paycheck, got %.3f", p.Variability)
	}
}

func TestAnalyze_InsightsCappedAndRanked(t *testing.T) {
	engine := NewEngine(nil)
	result, err := engine.Analyze(sampleHistory())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Insights) > 10 {
		t.Errorf("expected at most 10 insights, got %d", len(result.Insights))
	}
	for i := 1; i < len(result.Insights); i++ {
		if result.Insights[i].ImpactScore > result.Insights[i-1].ImpactScore {
			t.Error("insights not sorted by impact score descending")
		}
	}
}

func TestAnalyze_DataQuality(t *testing.T) {
	engine := NewEngine(nil)
	result, err := engine.Analyze(sampleHistory())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q := result.DataQuality
	if q.TransactionCount != len(sampleHistory()) {
		t.Errorf("expected %d transactions, got %d", len(sampleHistory()), q.TransactionCount)
	}
	if q.MonthsOfData != 6 {
		t.Errorf("expected 6 months of data, got %d", q.MonthsOfData)
	}
	if q.IncomeCount != 4 {
		t.Errorf("expected 4 income transactions, got %d", q.IncomeCount)
	}
	if q.OldestDate != "2025-01-15" || q.NewestDate != "2025-06-30" {
		t.Errorf("unexpected date range %s..%s", q.OldestDate, q.NewestDate)
	}
}
