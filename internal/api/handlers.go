package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/tcua/price-index-service/internal/database"
)

const defaultHistoryDays = 30

// Handler holds dependencies for HTTP handlers. The API is read-only: all
// writes go through the pipeline, and reads here never block a running
// batch.
type Handler struct {
	db *database.DB
}

// NewHandler creates a new Handler.
func NewHandler(db *database.DB) *Handler {
	return &Handler{db: db}
}

// GetLatestIndex handles GET /api/v1/index/latest
func (h *Handler) GetLatestIndex(w http.ResponseWriter, r *http.Request) {
	entries, err := h.db.GetLatestIndex()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

// GetIndexByDate handles GET /api/v1/index?date=YYYY-MM-DD
func (h *Handler) GetIndexByDate(w http.ResponseWriter, r *http.Request) {
	date, ok := parseDateParam(w, r)
	if !ok {
		return
	}

	entries, err := h.db.GetIndexByDate(date)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

// GetIndexHistory handles GET /api/v1/index/{category}/{generation}/history
func (h *Handler) GetIndexHistory(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	days := parseDaysParam(r, defaultHistoryDays)

	entries, err := h.db.GetIndexHistory(vars["category"], vars["generation"], days)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

// GetProducts handles GET /api/v1/products?category=GPU&active=true
func (h *Handler) GetProducts(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	activeOnly := r.URL.Query().Get("active") == "true"

	products, err := h.db.ListProducts(category, activeOnly)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, products)
}

// GetProduct handles GET /api/v1/products/{id}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid product id", http.StatusBadRequest)
		return
	}

	product, err := h.db.GetProductByID(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, product)
}

// GetProductHistory handles GET /api/v1/products/{id}/history?days=30
func (h *Handler) GetProductHistory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid product id", http.StatusBadRequest)
		return
	}

	observations, err := h.db.GetObservationsByProduct(id, parseDaysParam(r, defaultHistoryDays))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, observations)
}

// GetQualityLog handles GET /api/v1/quality?days=30
func (h *Handler) GetQualityLog(w http.ResponseWriter, r *http.Request) {
	entries, err := h.db.GetQualityLog(parseDaysParam(r, defaultHistoryDays))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

// GetChangeSummary handles GET /api/v1/summary?date=YYYY-MM-DD
func (h *Handler) GetChangeSummary(w http.ResponseWriter, r *http.Request) {
	date, ok := parseDateParam(w, r)
	if !ok {
		return
	}

	summary, err := h.db.GetChangeSummary(date)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func parseDateParam(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		http.Error(w, "date query parameter is required", http.StatusBadRequest)
		return time.Time{}, false
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return time.Time{}, false
	}
	return date, true
}

func parseDaysParam(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return fallback
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days <= 0 {
		return fallback
	}
	return days
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
