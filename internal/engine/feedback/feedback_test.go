package feedback

import (
	"math"
	"testing"
	"time"

	"github.com/Reece-Nunez/finance-ai-sub002/internal/models"
)

func date(s string) time.Time {
	t, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestIsStale(t *testing.T) {
	calc := date("2025-06-01")
	if IsStale(calc.Add(24*time.Hour), calc) {
		t.Error("exactly 24h old should not be stale")
	}
	if !IsStale(calc.Add(24*time.Hour+time.Second), calc) {
		t.Error("over 24h old should be stale")
	}
}

func TestShouldRecompute(t *testing.T) {
	now := date("2025-06-10")
	fresh := now.Add(-time.Hour)
	stale := now.Add(-48 * time.Hour)

	cases := []struct {
		name        string
		hasPatterns bool
		lastCalc    time.Time
		txnCount    int
		want        bool
	}{
		{"no patterns, enough data", false, time.Time{}, 10, true},
		{"no patterns, thin data", false, time.Time{}, 9, false},
		{"fresh patterns", true, fresh, 100, false},
		{"stale patterns", true, stale, 100, true},
		{"stale patterns, thin data", true, stale, 5, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ShouldRecompute(tc.hasPatterns, tc.lastCalc, now, tc.txnCount); got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestAccuracyAdjustment(t *testing.T) {
	cases := []struct {
		err  float64
		want float64
	}{
		{0, 1.0},
		{0.05, 1.0},
		{-0.10, 1.0},
		{0.20, 1.10},
		{-0.30, 0.85},
	}
	for _, tc := range cases {
		if got := AccuracyAdjustment(tc.err); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("AccuracyAdjustment(%.2f) = %.4f, want %.4f", tc.err, got, tc.want)
		}
	}
}

func TestReconcile_VarianceAgainstActual(t *testing.T) {
	preds := []models.PredictionRecord{{
		ID:               "p1",
		UserID:           "u1",
		PredictionDate:   "2025-06-01",
		PredictedBalance: 500,
	}}

	// No flows after the prediction date: the realized balance equals
	// the current balance.
	updated, err := Reconcile(preds, nil, 450, date("2025-06-03"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(updated) != 1 {
		t.Fatalf("expected 1 reconciled record, got %d", len(updated))
	}

	rec := updated[0]
	if *rec.ActualBalance != 450 {
		t.Errorf("expected actual balance 450, got %.2f", *rec.ActualBalance)
	}
	if *rec.VarianceAmount != -50 {
		t.Errorf("expected variance -50, got %.2f", *rec.VarianceAmount)
	}
	if *rec.VariancePercentage != -10.0 {
		t.Errorf("expected variance percentage -10.0, got %.2f", *rec.VariancePercentage)
	}
}

func TestReconcile_WalksBalanceBackward(t *testing.T) {
	preds := []models.PredictionRecord{
		{ID: "p1", UserID: "u1", PredictionDate: "2025-06-01", PredictedBalance: 60},
		{ID: "p2", UserID: "u1", PredictionDate: "2025-06-02", PredictedBalance: 110},
	}
	txns := []models.Transaction{
		{ID: "t1", Name: "Coffee", Date: "2025-06-03", Amount: 20},
		{ID: "t2", Name: "Payout", Date: "2025-06-02", Amount: -50, IsIncome: true},
	}

	updated, err := Reconcile(preds, txns, 100, date("2025-06-03"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(updated) != 2 {
		t.Fatalf("expected 2 reconciled records, got %d", len(updated))
	}

	// Newest first: end of 06-02 = 100 - (0 - 20) = 120.
	if updated[0].ID != "p2" || *updated[0].ActualBalance != 120 {
		t.Errorf("expected p2 actual balance 120, got %s=%.2f", updated[0].ID, *updated[0].ActualBalance)
	}
	if *updated[0].ActualIncome != 50 {
		t.Errorf("expected p2 actual income 50, got %.2f", *updated[0].ActualIncome)
	}
	// End of 06-01 = 120 - (50 - 0) = 70.
	if updated[1].ID != "p1" || *updated[1].ActualBalance != 70 {
		t.Errorf("expected p1 actual balance 70, got %s=%.2f", updated[1].ID, *updated[1].ActualBalance)
	}
}

func TestReconcile_ZeroPredictedBalanceGuard(t *testing.T) {
	preds := []models.PredictionRecord{{
		ID: "p1", UserID: "u1", PredictionDate: "2025-06-01", PredictedBalance: 0,
	}}
	updated, err := Reconcile(preds, nil, 250, date("2025-06-02"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *updated[0].VariancePercentage != 0 {
		t.Errorf("expected 0%% variance for zero predicted balance, got %.2f", *updated[0].VariancePercentage)
	}
}

func TestReconcile_SkipsFutureAndReconciled(t *testing.T) {
	done := 42.0
	preds := []models.PredictionRecord{
		{ID: "future", UserID: "u1", PredictionDate: "2025-06-09", PredictedBalance: 10},
		{ID: "today", UserID: "u1", PredictionDate: "2025-06-05", PredictedBalance: 10},
		{ID: "done", UserID: "u1", PredictionDate: "2025-06-01", PredictedBalance: 10, ActualBalance: &done},
	}
	updated, err := Reconcile(preds, nil, 100, date("2025-06-05"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(updated) != 0 {
		t.Fatalf("expected nothing to reconcile, got %d records", len(updated))
	}
}
