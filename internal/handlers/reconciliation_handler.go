package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/zarwallet/backend/internal/services"
)

type ReconciliationHandler struct {
	service   *services.ReconciliationService
	validator *services.ValidationHelper
}

func NewReconciliationHandler(service *services.ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{
		service:   service,
		validator: services.NewValidationHelper(),
	}
}

type CorrectionRequest struct {
	Reference string `json:"reference" validate:"required,max=64"`
	Asset     string `json:"asset,omitempty"`
}

// Reconcile compares chain, stored and journal balances
// @Summary Reconcile account
// @Description Read-only three-way balance comparison. Oracle failures return 503, never a drift report.
// @Tags Reconciliation
// @Produce json
// @Security BearerAuth
// @Param accountId path string true "Account ID"
// @Param asset query string false "Asset reported by the balance oracle (USDT); others return 400"
// @Success 200 {object} models.ReconciliationReport
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 422 {object} services.ErrorResponse
// @Failure 503 {object} services.ErrorResponse
// @Router /accounts/{accountId}/reconcile [get]
func (h *ReconciliationHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Reconcile(r.Context(), chi.URLParam(r, "accountId"), r.URL.Query().Get("asset"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	services.SendJSON(w, http.StatusOK, report)
}

// ApplyCorrection aligns the stored balance with the chain
// @Summary Apply ledger sync correction
// @Tags Reconciliation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param accountId path string true "Account ID"
// @Param request body CorrectionRequest true "Correction"
// @Success 200 {object} services.CorrectionResult
// @Failure 400 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Failure 422 {object} services.ErrorResponse
// @Failure 503 {object} services.ErrorResponse
// @Router /accounts/{accountId}/corrections [post]
func (h *ReconciliationHandler) ApplyCorrection(w http.ResponseWriter, r *http.Request) {
	var req CorrectionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	result, err := h.service.ApplyCorrection(r.Context(), chi.URLParam(r, "accountId"), req.Asset, req.Reference)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	services.SendJSON(w, http.StatusOK, result)
}
