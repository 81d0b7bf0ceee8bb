package models

// PatternType identifies the dimension a spending pattern aggregates over.
type PatternType string

const (
	PatternDayOfWeek       PatternType = "day_of_week"
	PatternWeekOfMonth     PatternType = "week_of_month"
	PatternMonthOfYear     PatternType = "month_of_year"
	PatternCategoryDaily   PatternType = "category_daily"
	PatternCategoryMonthly PatternType = "category_monthly"
	PatternSeasonal        PatternType = "seasonal"
)

// SpendingPattern is a learned statistical pattern over historical
// expenses, keyed by pattern type and a dimension key such as "monday"
// or "week_1".
type SpendingPattern struct {
	PatternType     PatternType `json:"pattern_type"`
	DimensionKey    string      `json:"dimension_key"`
	Category        string      `json:"category,omitempty"`
	AverageAmount   float64     `json:"average_amount"`
	MedianAmount    float64     `json:"median_amount"`
	StdDevAmount    float64     `json:"std_dev_amount"`
	MinAmount       float64     `json:"min_amount"`
	MaxAmount       float64     `json:"max_amount"`
	OccurrenceCount int         `json:"occurrence_count"`
	ConfidenceScore float64     `json:"confidence_score"` // in [0,1]
	MonthsOfData    int         `json:"months_of_data"`
}

// IncomeSourceType classifies where an income stream comes from.
type IncomeSourceType string

const (
	IncomeSourceSalary     IncomeSourceType = "salary"
	IncomeSourceFreelance  IncomeSourceType = "freelance"
	IncomeSourceInvestment IncomeSourceType = "investment"
	IncomeSourceTransfer   IncomeSourceType = "transfer"
	IncomeSourceOther      IncomeSourceType = "other"
)

// IncomeFrequency classifies the cadence of an income source.
type IncomeFrequency string

const (
	IncomeWeekly      IncomeFrequency = "weekly"
	IncomeBiWeekly    IncomeFrequency = "bi-weekly"
	IncomeSemiMonthly IncomeFrequency = "semi-monthly"
	IncomeMonthly     IncomeFrequency = "monthly"
	IncomeIrregular   IncomeFrequency = "irregular"
)

// IntervalDays returns the canonical day interval for an income frequency,
// or 0 for irregular sources.
func (f IncomeFrequency) IntervalDays() int {
	switch f {
	case IncomeWeekly:
		return 7
	case IncomeBiWeekly:
		return 14
	case IncomeSemiMonthly:
		return 15
	case IncomeMonthly:
		return 30
	}
	return 0
}

// IncomePattern is a learned pattern over an income source.
type IncomePattern struct {
	SourceName      string           `json:"source_name"`
	SourceType      IncomeSourceType `json:"source_type"`
	TypicalDays     []int            `json:"typical_days_of_month"`
	TypicalDay      string           `json:"typical_day_of_week,omitempty"` // weekly sources only
	Frequency       IncomeFrequency  `json:"frequency"`
	AverageAmount   float64          `json:"average_amount"`
	MinAmount       float64          `json:"min_amount"`
	MaxAmount       float64          `json:"max_amount"`
	Variability     float64          `json:"variability"` // stddev / mean
	ConfidenceScore float64          `json:"confidence_score"`
	LastDate        string           `json:"last_date"`
	NextExpected    string           `json:"next_expected,omitempty"`
}

// Insight is a ranked, human-readable observation derived from patterns.
type Insight struct {
	Type        string  `json:"type"`
	Message     string  `json:"message"`
	Category    string  `json:"category,omitempty"`
	ImpactScore float64 `json:"impact_score"`
}

// DataQuality summarizes how much history backed a learning pass.
type DataQuality struct {
	TransactionCount int    `json:"transaction_count"`
	IncomeCount      int    `json:"income_count"`
	CategoryCount    int    `json:"category_count"`
	MonthsOfData     int    `json:"months_of_data"`
	OldestDate       string `json:"oldest_date,omitempty"`
	NewestDate       string `json:"newest_date,omitempty"`
}
