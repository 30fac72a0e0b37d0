package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/zarwallet/backend/internal/logger"
	"github.com/zarwallet/backend/internal/services"
)

const maxBodyBytes = 1_048_576

// decodeJSON reads exactly one JSON object into dst. On failure the response is written
// and false is returned.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return false
	}
	return true
}

var errorStatus = []struct {
	err    error
	status int
}{
	{services.ErrInvalidEntry, http.StatusBadRequest},
	{services.ErrInvalidAmount, http.StatusBadRequest},
	{services.ErrInvalidHandleFormat, http.StatusBadRequest},
	{services.ErrInvalidAddress, http.StatusBadRequest},
	{services.ErrSelfTransfer, http.StatusBadRequest},
	{services.ErrAccountNotFound, http.StatusNotFound},
	{services.ErrHandleNotFound, http.StatusNotFound},
	{services.ErrAccountExists, http.StatusConflict},
	{services.ErrHandleUnavailable, http.StatusConflict},
	{services.ErrTransactionConflict, http.StatusConflict},
	{services.ErrBalanceChanged, http.StatusConflict},
	{services.ErrInsufficientBalance, http.StatusUnprocessableEntity},
	{services.ErrNoExternalAddress, http.StatusUnprocessableEntity},
	{services.ErrCorrectionNotPossible, http.StatusUnprocessableEntity},
	{services.ErrOracleUnavailable, http.StatusServiceUnavailable},
}

// writeServiceError maps a service error to its HTTP status. Unknown errors are logged
// and reported as a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range errorStatus {
		if errors.Is(err, m.err) {
			services.SendErrorResponse(w, err.Error(), m.status, nil)
			return
		}
	}
	logger.Errorf("[HTTP] %s %s: %v", r.Method, r.URL.Path, err)
	services.SendErrorResponse(w, "Internal server error", http.StatusInternalServerError, nil)
}

func queryInt(r *http.Request, key string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return fallback
	}
	return v
}
