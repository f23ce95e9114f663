package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"vendorhub/backend/internal/domain"
)

func (a *API) handleSalesAnalytics(w http.ResponseWriter, r *http.Request) {
	data, err := a.service.SalesAnalytics(r.Context(), rangeFrom(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": data})
}

func (a *API) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data, err := a.service.Dashboard(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": data})
}

func (a *API) handleMonthlyComparison(w http.ResponseWriter, r *http.Request) {
	data, err := a.service.MonthlyComparison(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": data})
}

func (a *API) handleRequestForecast(w http.ResponseWriter, r *http.Request) {
	var req domain.ForecastRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	forecast, err := a.service.RequestForecast(r.Context(), req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": forecast})
}

func (a *API) handleBatchForecast(w http.ResponseWriter, r *http.Request) {
	var req domain.BatchForecastRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	batch, err := a.service.BatchForecast(r.Context(), req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": batch})
}

func (a *API) handleProductPredictions(w http.ResponseWriter, r *http.Request) {
	predictions, err := a.service.ProductPredictions(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"count":       len(predictions),
		"predictions": predictions,
	})
}

func (a *API) handleVendorPredictions(w http.ResponseWriter, r *http.Request) {
	limit := parsePositiveLimit(r.URL.Query().Get("limit"), 100, 1000)
	predictions, err := a.service.VendorPredictions(r.Context(), limit)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"count":       len(predictions),
		"predictions": predictions,
	})
}

func (a *API) handleForecastModels(w http.ResponseWriter, r *http.Request) {
	catalog, err := a.service.ForecastModels(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": catalog})
}

func (a *API) handleForecastMetrics(w http.ResponseWriter, r *http.Request) {
	data, err := a.service.ForecastMetrics(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": data})
}
