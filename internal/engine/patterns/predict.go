package patterns

import (
	"time"

	"github.com/Reece-Nunez/finance-ai-sub002/internal/models"
)

// Fixed relative blend weights for daily spending prediction. Each is
// scaled by the contributing pattern's confidence before averaging.
const (
	weightDayOfWeek   = 0.30
	weightWeekOfMonth = 0.25
	weightMonthOfYear = 0.25
	weightSeasonal    = 0.20
	weightCategory    = 0.40
)

// daysPerMonth converts monthly and seasonal aggregates to a daily rate.
const daysPerMonth = 30

// PredictDailySpending blends the learned patterns applicable to a date
// into an expected daily spend. Monthly and seasonal pattern values are
// divided down to a daily rate. When a category is given, the
// category-daily pattern joins the blend. Returns the blended amount and
// the plain average of the contributing confidences; both are 0 when no
// pattern applies.
func PredictDailySpending(spending []models.SpendingPattern, date time.Time, category string) (float64, float64) {
	type contribution struct {
		value  float64
		weight float64
		conf   float64
	}
	var contributions []contribution

	add := func(p models.SpendingPattern, value, fixedWeight float64) {
		contributions = append(contributions, contribution{
			value:  value,
			weight: fixedWeight * p.ConfidenceScore,
			conf:   p.ConfidenceScore,
		})
	}

	dayKey := weekdayKey(date)
	weekKey := weekOfMonthKey(date.Day())
	monthKey := monthKeys[int(date.Month())-1]
	season := seasonKey(date.Month())

	for _, p := range spending {
		switch {
		case p.PatternType == models.PatternDayOfWeek && p.DimensionKey == dayKey:
			add(p, p.AverageAmount, weightDayOfWeek)
		case p.PatternType == models.PatternWeekOfMonth && p.DimensionKey == weekKey:
			add(p, p.AverageAmount, weightWeekOfMonth)
		case p.PatternType == models.PatternMonthOfYear && p.DimensionKey == monthKey:
			add(p, p.AverageAmount/daysPerMonth, weightMonthOfYear)
		case p.PatternType == models.PatternSeasonal && p.DimensionKey == season:
			add(p, p.AverageAmount/daysPerMonth, weightSeasonal)
		case category != "" && p.PatternType == models.PatternCategoryDaily && p.Category == category:
			add(p, p.AverageAmount, weightCategory)
		}
	}

	if len(contributions) == 0 {
		return 0, 0
	}
	var weighted, totalWeight, confSum float64
	for _, c := range contributions {
		weighted += c.value * c.weight
		totalWeight += c.weight
		confSum += c.conf
	}
	if totalWeight == 0 {
		return 0, 0
	}
	return weighted / totalWeight, confSum / float64(len(contributions))
}
