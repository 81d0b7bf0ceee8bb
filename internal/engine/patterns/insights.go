package patterns

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Reece-Nunez/finance-ai-sub002/internal/models"
	"github.com/Reece-Nunez/finance-ai-sub002/internal/utils"
)

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// maxInsights caps the ranked insight list.
const maxInsights = 10

// Insight heuristics. Each flags a pattern worth a user's attention and
// assigns an approximate monthly dollar impact for ranking.
const (
	weekdayExcessRatio     = 1.3
	paydaySpikeRatio       = 1.5
	inconsistentCVFloor    = 0.5
	inconsistentAvgFloor   = 100
	variableIncomeCutoff   = 0.2
	weekdaysPerMonth       = 4.33
	elevatedSpendingWindow = 7
)

func generateInsights(spending []models.SpendingPattern, income []models.IncomePattern) []models.Insight {
	var insights []models.Insight
	insights = append(insights, weekdayInsights(spending)...)
	insights = append(insights, paydaySpikeInsight(spending)...)
	insights = append(insights, inconsistentCategoryInsights(spending)...)
	insights = append(insights, variableIncomeInsights(income)...)

	sort.SliceStable(insights, func(i, j int) bool {
		if insights[i].ImpactScore != insights[j].ImpactScore {
			return insights[i].ImpactScore > insights[j].ImpactScore
		}
		return insights[i].Message < insights[j].Message
	})
	if len(insights) > maxInsights {
		insights = insights[:maxInsights]
	}
	return insights
}

// weekdayInsights flags weekdays whose average spend exceeds the
// cross-weekday average by more than 30%.
func weekdayInsights(spending []models.SpendingPattern) []models.Insight {
	var days []models.SpendingPattern
	var sum float64
	for _, p := range spending {
		if p.PatternType == models.PatternDayOfWeek {
			days = append(days, p)
			sum += p.AverageAmount
		}
	}
	if len(days) == 0 {
		return nil
	}
	crossAvg := sum / float64(len(days))

	var out []models.Insight
	for _, p := range days {
		if p.AverageAmount > crossAvg*weekdayExcessRatio {
			excess := p.AverageAmount - crossAvg
			out = append(out, models.Insight{
				Type: "high_spending_day",
				Message: fmt.Sprintf("You spend %.0f%% more than usual on %ss (%.2f vs %.2f average)",
					(p.AverageAmount/crossAvg-1)*100, capitalize(p.DimensionKey), p.AverageAmount, crossAvg),
				ImpactScore: utils.Round2(excess * weekdaysPerMonth),
			})
		}
	}
	return out
}

// paydaySpikeInsight flags a first-week spending spike relative to the
// last week of the month.
func paydaySpikeInsight(spending []models.SpendingPattern) []models.Insight {
	var week1, week4 *models.SpendingPattern
	for i, p := range spending {
		if p.PatternType != models.PatternWeekOfMonth {
			continue
		}
		switch p.DimensionKey {
		case "week_1":
			week1 = &spending[i]
		case "week_4":
			week4 = &spending[i]
		}
	}
	if week1 == nil || week4 == nil || week4.AverageAmount <= 0 {
		return nil
	}
	if week1.AverageAmount <= week4.AverageAmount*paydaySpikeRatio {
		return nil
	}
	return []models.Insight{{
		Type: "post_payday_spike",
		Message: fmt.Sprintf("Spending spikes after payday: first-week average %.2f vs %.2f in the last week",
			week1.AverageAmount, week4.AverageAmount),
		ImpactScore: utils.Round2((week1.AverageAmount - week4.AverageAmount) * elevatedSpendingWindow),
	}}
}

// inconsistentCategoryInsights flags categories whose monthly totals
// swing widely around a meaningful average.
func inconsistentCategoryInsights(spending []models.SpendingPattern) []models.Insight {
	var out []models.Insight
	for _, p := range spending {
		if p.PatternType != models.PatternCategoryMonthly || p.AverageAmount <= inconsistentAvgFloor {
			continue
		}
		cv := 0.0
		if p.AverageAmount != 0 {
			cv = p.StdDevAmount / p.AverageAmount
		}
		if cv <= inconsistentCVFloor {
			continue
		}
		out = append(out, models.Insight{
			Type: "inconsistent_category",
			Message: fmt.Sprintf("Your %s spending is inconsistent, ranging from %.2f to %.2f per month",
				p.Category, p.MinAmount, p.MaxAmount),
			Category:    p.Category,
			ImpactScore: utils.Round2(p.AverageAmount * cv),
		})
	}
	return out
}

// variableIncomeInsights flags income sources with meaningful amount
// variability.
func variableIncomeInsights(income []models.IncomePattern) []models.Insight {
	var out []models.Insight
	for _, p := range income {
		if p.Variability <= variableIncomeCutoff {
			continue
		}
		out = append(out, models.Insight{
			Type: "variable_income",
			Message: fmt.Sprintf("Income from %s varies by %.0f%% between payments (%.2f to %.2f)",
				p.SourceName, p.Variability*100, p.MinAmount, p.MaxAmount),
			ImpactScore: utils.Round2(p.AverageAmount * p.Variability),
		})
	}
	return out
}
