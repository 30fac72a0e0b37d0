package handlers

import (
	"net/http"

	"github.com/zarwallet/backend/internal/middleware"
	"github.com/zarwallet/backend/internal/services"
)

type TransferHandler struct {
	service   *services.TransferService
	validator *services.ValidationHelper
}

func NewTransferHandler(service *services.TransferService) *TransferHandler {
	return &TransferHandler{
		service:   service,
		validator: services.NewValidationHelper(),
	}
}

// Transfer moves funds from the caller's account to another account
// @Summary Internal transfer
// @Description Debits the authenticated account and credits the recipient atomically. Resubmitting a reference returns the original transfer.
// @Tags Transfers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.TransferRequest true "Transfer"
// @Success 201 {object} services.TransferResult
// @Success 200 {object} services.TransferResult
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 422 {object} services.ErrorResponse
// @Router /transfers [post]
func (h *TransferHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req services.TransferRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	// only admins may move funds out of another account
	if middleware.Role(r.Context()) != middleware.RoleAdmin || req.FromAccountID == "" {
		req.FromAccountID = middleware.UserID(r.Context())
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	result, err := h.service.Transfer(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	status := http.StatusOK
	if result.Debit.Applied {
		status = http.StatusCreated
	}
	services.SendJSON(w, status, result)
}
