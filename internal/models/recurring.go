package models

// Frequency classifies the interval of a recurring transaction series.
type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiWeekly  Frequency = "bi-weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

// IntervalDays returns the canonical day interval for a frequency.
func (f Frequency) IntervalDays() int {
	switch f {
	case FrequencyWeekly:
		return 7
	case FrequencyBiWeekly:
		return 14
	case FrequencyMonthly:
		return 30
	case FrequencyQuarterly:
		return 90
	case FrequencyYearly:
		return 365
	}
	return 30
}

// Confidence grades how strongly a detected series is believed to recur.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// RecurringItem is a transaction series judged to repeat at a stable
// interval and amount. Recomputed on each detection pass; not
// authoritative state.
type RecurringItem struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Amount          float64    `json:"amount"`
	AverageAmount   float64    `json:"average_amount"`
	Frequency       Frequency  `json:"frequency"`
	NextDate        string     `json:"next_date"` // Format: YYYY-MM-DD
	LastDate        string     `json:"last_date"`
	Confidence      Confidence `json:"confidence"`
	OccurrenceCount int        `json:"occurrence_count"`
	IsIncome        bool       `json:"is_income"`
	Category        string     `json:"category,omitempty"`
}
