package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Reece-Nunez/finance-ai-sub002/internal/models"
	"github.com/Reece-Nunez/finance-ai-sub002/internal/service"
)

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// GetForecast handles GET /forecast?user_id=...&days=...
func (h *Handler) GetForecast(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	days, ok := optionalDays(w, r)
	if !ok {
		return
	}
	fc, err := h.svc.GenerateForecast(r.Context(), userID, days)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fc)
}

// Recalculate handles POST /forecast/recalculate?user_id=...&days=...
func (h *Handler) Recalculate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	days, ok := optionalDays(w, r)
	if !ok {
		return
	}
	fc, err := h.svc.RecalculateForecast(r.Context(), userID, days)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fc)
}

// GetRecurring handles GET /recurring?user_id=...
func (h *Handler) GetRecurring(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	items, err := h.svc.RecurringItems(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"recurring_items": items})
}

// GetPatterns handles GET /patterns?user_id=...
func (h *Handler) GetPatterns(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	summary, err := h.svc.Patterns(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return "", false
	}
	return userID, true
}

func optionalDays(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return 0, true
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days <= 0 {
		http.Error(w, "days must be a positive integer", http.StatusBadRequest)
		return 0, false
	}
	return days, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	var dataErr *models.DataError
	if errors.As(err, &dataErr) {
		http.Error(w, dataErr.Error(), http.StatusUnprocessableEntity)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
