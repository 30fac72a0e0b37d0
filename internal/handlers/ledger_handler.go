package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/zarwallet/backend/internal/config"
	"github.com/zarwallet/backend/internal/middleware"
	"github.com/zarwallet/backend/internal/models"
	"github.com/zarwallet/backend/internal/services"
)

type LedgerHandler struct {
	service   *services.LedgerService
	cfg       *config.LedgerConfig
	validator *services.ValidationHelper
}

func NewLedgerHandler(service *services.LedgerService, cfg *config.LedgerConfig) *LedgerHandler {
	return &LedgerHandler{
		service:   service,
		cfg:       cfg,
		validator: services.NewValidationHelper(),
	}
}

type BatchRequest struct {
	Entries                  []services.EntryRequest `json:"entries" validate:"required,min=1,max=100,dive"`
	RequireSufficientBalance bool                    `json:"requireSufficientBalance,omitempty"`
}

type BalanceResponse struct {
	AccountID string `json:"accountId"`
	Asset     string `json:"asset"`
	Balance   string `json:"balance"`
}

type JournalResponse struct {
	AccountID string                `json:"accountId"`
	Entries   []models.JournalEntry `json:"entries"`
}

// ApplyEntry records one balance-affecting event
// @Summary Apply journal entry
// @Description Idempotently records an entry and updates the account balance. A replayed event returns the original result with 200.
// @Tags Ledger
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.EntryRequest true "Journal entry"
// @Success 201 {object} services.ApplyResult
// @Success 200 {object} services.ApplyResult
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /ledger/entries [post]
func (h *LedgerHandler) ApplyEntry(w http.ResponseWriter, r *http.Request) {
	var req services.EntryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	result, err := h.service.ApplyEntry(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	status := http.StatusOK
	if result.Applied {
		status = http.StatusCreated
	}
	services.SendJSON(w, status, result)
}

// ApplyBatch records several entries atomically
// @Summary Apply journal entries atomically
// @Tags Ledger
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BatchRequest true "Entries"
// @Success 200 {array} services.ApplyResult
// @Failure 400 {object} services.ErrorResponse
// @Failure 422 {object} services.ErrorResponse
// @Router /ledger/entries/batch [post]
func (h *LedgerHandler) ApplyBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	var opts []services.ApplyOption
	if req.RequireSufficientBalance {
		opts = append(opts, services.RequireSufficientBalance())
	}
	results, err := h.service.ApplyEntries(r.Context(), req.Entries, opts...)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	services.SendJSON(w, http.StatusOK, results)
}

// GetBalance returns the stored balance of an account
// @Summary Account balance
// @Tags Accounts
// @Produce json
// @Security BearerAuth
// @Param accountId path string true "Account ID"
// @Param asset query string false "Asset, defaults to USDT"
// @Success 200 {object} BalanceResponse
// @Failure 403 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /accounts/{accountId}/balance [get]
func (h *LedgerHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountId")
	if !authorizeAccount(w, r, accountID) {
		return
	}

	asset := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("asset")))
	if asset == "" {
		asset = h.cfg.Asset
	}
	balance, err := h.service.GetBalance(r.Context(), accountID, asset)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	services.SendJSON(w, http.StatusOK, BalanceResponse{
		AccountID: accountID,
		Asset:     asset,
		Balance:   balance.StringFixed(h.cfg.AssetDecimals),
	})
}

// ListJournal returns the newest journal entries of an account
// @Summary Account journal
// @Tags Accounts
// @Produce json
// @Security BearerAuth
// @Param accountId path string true "Account ID"
// @Param asset query string false "Asset filter"
// @Param limit query int false "Page size (max 500)"
// @Success 200 {object} JournalResponse
// @Failure 403 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /accounts/{accountId}/journal [get]
func (h *LedgerHandler) ListJournal(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountId")
	if !authorizeAccount(w, r, accountID) {
		return
	}

	entries, err := h.service.ListJournal(r.Context(), accountID, r.URL.Query().Get("asset"), queryInt(r, "limit", 50))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if entries == nil {
		entries = []models.JournalEntry{}
	}
	services.SendJSON(w, http.StatusOK, JournalResponse{AccountID: accountID, Entries: entries})
}

// authorizeAccount lets admins read any account and users only their own.
func authorizeAccount(w http.ResponseWriter, r *http.Request, accountID string) bool {
	if middleware.Role(r.Context()) == middleware.RoleAdmin || middleware.UserID(r.Context()) == accountID {
		return true
	}
	services.SendErrorResponse(w, "Forbidden", http.StatusForbidden, nil)
	return false
}
