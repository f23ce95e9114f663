package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"vendorhub/backend/internal/domain"
	"vendorhub/backend/internal/service"
)

func rangeFrom(r *http.Request) service.Range {
	q := r.URL.Query()
	return service.Range{Start: q.Get("startDate"), End: q.Get("endDate")}
}

func (a *API) handleCreateSale(w http.ResponseWriter, r *http.Request) {
	var req domain.SaleCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	sale, err := a.service.CreateSale(r.Context(), req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Sale recorded",
		"sale":    sale,
	})
}

func (a *API) handleListSales(w http.ResponseWriter, r *http.Request) {
	sales, err := a.service.ListSales(r.Context(), service.SaleQuery{
		Range:     rangeFrom(r),
		ProductID: r.URL.Query().Get("productId"),
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(sales),
		"sales":   sales,
	})
}

func (a *API) handleSalesSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := a.service.SalesSummary(r.Context(), service.SaleQuery{
		Range:     rangeFrom(r),
		ProductID: r.URL.Query().Get("productId"),
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"summary": summary,
	})
}

func (a *API) handleLogWaste(w http.ResponseWriter, r *http.Request) {
	var req domain.WasteCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	entry, err := a.service.LogWaste(r.Context(), req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Waste logged successfully",
		"data":    entry,
	})
}

func (a *API) handleListWaste(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := a.service.ListWaste(r.Context(), service.WasteQuery{
		Range:     rangeFrom(r),
		ProductID: q.Get("productId"),
		Reason:    q.Get("reason"),
		Limit:     parsePositiveLimit(q.Get("limit"), 50, 500),
		Offset:    parseOffset(q.Get("offset")),
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    page,
	})
}

func (a *API) handleWasteStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.service.WasteStats(r.Context(), rangeFrom(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    stats,
	})
}

func (a *API) handleWasteByProduct(w http.ResponseWriter, r *http.Request) {
	data, err := a.service.WasteByProduct(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    data,
	})
}

func (a *API) handleDeleteWaste(w http.ResponseWriter, r *http.Request) {
	if err := a.service.DeleteWaste(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Waste log deleted successfully",
	})
}
