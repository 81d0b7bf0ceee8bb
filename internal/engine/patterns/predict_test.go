package patterns

import (
	"math"
	"testing"
	"time"

	"github.com/Reece-Nunez/finance-ai-sub002/internal/models"
)

func TestPredictDailySpending_BlendsApplicablePatterns(t *testing.T) {
	spending := []models.SpendingPattern{
		{PatternType: models.PatternDayOfWeek, DimensionKey: "monday", AverageAmount: 50, ConfidenceScore: 0.5},
		{PatternType: models.PatternMonthOfYear, DimensionKey: "june", AverageAmount: 300, ConfidenceScore: 0.5},
		// Not applicable on a Monday in June.
		{PatternType: models.PatternDayOfWeek, DimensionKey: "friday", AverageAmount: 500, ConfidenceScore: 0.9},
	}
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC) // Monday

	amount, confidence := PredictDailySpending(spending, date, "")

	// day_of_week weight 0.30*0.5, month_of_year weight 0.25*0.5 at a
	// daily rate of 300/30=10.
	wDay, wMonth := 0.30*0.5, 0.25*0.5
	want := (50*wDay + 10*wMonth) / (wDay + wMonth)
	if math.Abs(amount-want) > 1e-9 {
		t.Errorf("expected blended amount %.4f, got %.4f", want, amount)
	}
	if math.Abs(confidence-0.5) > 1e-9 {
		t.Errorf("expected confidence 0.5, got %.4f", confidence)
	}
}

func TestPredictDailySpending_CategoryJoinsBlend(t *testing.T) {
	spending := []models.SpendingPattern{
		{PatternType: models.PatternDayOfWeek, DimensionKey: "monday", AverageAmount: 50, ConfidenceScore: 0.5},
		{PatternType: models.PatternCategoryDaily, DimensionKey: "groceries", Category: "groceries", AverageAmount: 30, ConfidenceScore: 0.8},
	}
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	without, _ := PredictDailySpending(spending, date, "")
	with, _ := PredictDailySpending(spending, date, "groceries")

	if without != 50 {
		t.Errorf("expected plain weekday amount 50, got %.4f", without)
	}
	wDay, wCat := 0.30*0.5, 0.40*0.8
	want := (50*wDay + 30*wCat) / (wDay + wCat)
	if math.Abs(with-want) > 1e-9 {
		t.Errorf("expected category-blended amount %.4f, got %.4f", want, with)
	}
}

func TestPredictDailySpending_NoApplicablePatterns(t *testing.T) {
	spending := []models.SpendingPattern{
		{PatternType: models.PatternDayOfWeek, DimensionKey: "friday", AverageAmount: 500, ConfidenceScore: 0.9},
	}
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC) // Monday

	amount, confidence := PredictDailySpending(spending, date, "")
	if amount != 0 || confidence != 0 {
		t.Errorf("expected zeroes with no applicable patterns, got %.2f / %.2f", amount, confidence)
	}
}
