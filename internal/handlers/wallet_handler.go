package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/zarwallet/backend/internal/logger"
	"github.com/zarwallet/backend/internal/services"
)

type WalletHandler struct {
	directory *services.WalletDirectory
	validator *services.ValidationHelper
}

func NewWalletHandler(directory *services.WalletDirectory) *WalletHandler {
	return &WalletHandler{
		directory: directory,
		validator: services.NewValidationHelper(),
	}
}

// CreateAccount registers a custodial account
// @Summary Create account
// @Tags Accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.CreateAccountRequest true "Account"
// @Success 201 {object} models.Account
// @Failure 400 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /accounts [post]
func (h *WalletHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req services.CreateAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	account, err := h.directory.CreateAccount(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	services.SendJSON(w, http.StatusCreated, account)
}

// GetAccount returns an account
// @Summary Get account
// @Tags Accounts
// @Produce json
// @Security BearerAuth
// @Param accountId path string true "Account ID"
// @Success 200 {object} models.Account
// @Failure 403 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /accounts/{accountId} [get]
func (h *WalletHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountId")
	if !authorizeAccount(w, r, accountID) {
		return
	}

	account, err := h.directory.GetAccount(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	services.SendJSON(w, http.StatusOK, account)
}

// EnsureHandle assigns a handle to the account if it has none
// @Summary Ensure handle
// @Tags Wallets
// @Produce json
// @Security BearerAuth
// @Param accountId path string true "Account ID"
// @Success 200 {object} object{accountId=string,handle=string}
// @Failure 404 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /accounts/{accountId}/handle [post]
func (h *WalletHandler) EnsureHandle(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountId")
	if !authorizeAccount(w, r, accountID) {
		return
	}

	handle, err := h.directory.EnsureHandle(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	services.SendJSON(w, http.StatusOK, map[string]string{
		"accountId": accountID,
		"handle":    handle,
	})
}

// ResolveHandle looks up the account and deposit address behind a handle
// @Summary Resolve handle
// @Tags Wallets
// @Produce json
// @Security BearerAuth
// @Param handle path string true "Handle, with or without leading @"
// @Success 200 {object} services.HandleResolution
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 422 {object} services.ErrorResponse
// @Router /wallets/{handle} [get]
func (h *WalletHandler) ResolveHandle(w http.ResponseWriter, r *http.Request) {
	resolved, err := h.directory.ResolveHandle(r.Context(), chi.URLParam(r, "handle"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	services.SendJSON(w, http.StatusOK, resolved)
}

// DepositQR renders the deposit address behind a handle as a PNG
// @Summary Deposit QR code
// @Tags Wallets
// @Produce png
// @Security BearerAuth
// @Param handle path string true "Handle"
// @Param size query int false "Image size in pixels"
// @Success 200 {file} binary
// @Failure 404 {object} services.ErrorResponse
// @Router /wallets/{handle}/qr [get]
func (h *WalletHandler) DepositQR(w http.ResponseWriter, r *http.Request) {
	img, resolved, err := h.directory.DepositQR(r.Context(), chi.URLParam(r, "handle"), queryInt(r, "size", 0))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(img)))
	w.Header().Set("X-Deposit-Address", resolved.ExternalAddress)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img); err != nil {
		logger.Warnf("[HTTP] write qr for %s: %v", resolved.Handle, err)
	}
}
