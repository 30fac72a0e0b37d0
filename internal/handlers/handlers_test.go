package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zarwallet/backend/internal/chain"
	"github.com/zarwallet/backend/internal/config"
	mW "github.com/zarwallet/backend/internal/middleware"
	"github.com/zarwallet/backend/internal/models"
	"github.com/zarwallet/backend/internal/services"
	"github.com/zarwallet/backend/internal/store"
)

const depositAddress = "TLa2f6VPqDgRE67v1736s7bJ8Ray5wYjU7"

type fixedOracle struct {
	balance decimal.Decimal
	err     error
}

func (o *fixedOracle) Balance(ctx context.Context, address string) (decimal.Decimal, error) {
	return o.balance, o.err
}

type testServer struct {
	router http.Handler
	store  *store.MemoryStore
	oracle *fixedOracle
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	viper.Set("jwt.secret_key", "handler-secret")
	t.Cleanup(viper.Reset)

	cfg := &config.LedgerConfig{
		Asset:          "USDT",
		AssetDecimals:  6,
		DriftEpsilon:   decimal.New(1, -6),
		TxMaxAttempts:  3,
		TxRetryBackoff: time.Millisecond,
		HandleCacheTTL: time.Minute,
	}
	st := store.NewMemoryStore()
	oracle := &fixedOracle{}

	ledger := services.NewLedgerService(st, cfg)
	directory := services.NewWalletDirectory(st, nil, cfg)
	api := &API{
		Ledger:         NewLedgerHandler(ledger, cfg),
		Wallet:         NewWalletHandler(directory),
		Reconciliation: NewReconciliationHandler(services.NewReconciliationService(st, oracle, ledger, nil, cfg)),
		Transfer:       NewTransferHandler(services.NewTransferService(ledger, directory, cfg)),
	}

	r := chi.NewRouter()
	r.Route("/api/v1", api.Routes)
	return &testServer{router: r, store: st, oracle: oracle}
}

func (s *testServer) do(t *testing.T, method, path, userID, role string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	r := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		token, err := mW.IssueToken(userID, role, time.Hour)
		require.NoError(t, err)
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, r)
	return w
}

func (s *testServer) admin(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	return s.do(t, method, path, "ops", mW.RoleAdmin, body)
}

func (s *testServer) seedAccount(t *testing.T, id, address string) {
	t.Helper()
	w := s.admin(t, http.MethodPost, "/api/v1/accounts", services.CreateAccountRequest{AccountID: id, ExternalAddress: address})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestLedgerHandler_ApplyEntry(t *testing.T) {
	srv := newTestServer(t)
	srv.seedAccount(t, "u1", "")

	entry := map[string]any{
		"kind":         "treasury_refill",
		"externalTxId": "abc",
		"accountId":    "u1",
		"amount":       "5.000000",
		"asset":        "USDT",
	}

	w := srv.admin(t, http.MethodPost, "/api/v1/ledger/entries", entry)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var first services.ApplyResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	assert.Equal(t, "5.000000", first.ResultingBalance.StringFixed(6))

	w = srv.admin(t, http.MethodPost, "/api/v1/ledger/entries", entry)
	require.Equal(t, http.StatusOK, w.Code)
	var replay services.ApplyResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &replay))
	assert.Equal(t, first.EntryID, replay.EntryID)
	assert.False(t, replay.Applied)

	t.Run("user cannot write entries", func(t *testing.T) {
		w := srv.do(t, http.MethodPost, "/api/v1/ledger/entries", "u1", "", entry)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("no token", func(t *testing.T) {
		w := srv.do(t, http.MethodPost, "/api/v1/ledger/entries", "", "", entry)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed amount", func(t *testing.T) {
		bad := map[string]any{"kind": "treasury_refill", "externalTxId": "x", "accountId": "u1", "amount": "lots", "asset": "USDT"}
		w := srv.admin(t, http.MethodPost, "/api/v1/ledger/entries", bad)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown field", func(t *testing.T) {
		w := srv.admin(t, http.MethodPost, "/api/v1/ledger/entries", map[string]any{"amountUsd": 1})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown account", func(t *testing.T) {
		ghost := map[string]any{"kind": "treasury_refill", "externalTxId": "y", "accountId": "ghost", "amount": "1", "asset": "USDT"}
		w := srv.admin(t, http.MethodPost, "/api/v1/ledger/entries", ghost)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestLedgerHandler_Reads(t *testing.T) {
	srv := newTestServer(t)
	srv.seedAccount(t, "u1", "")
	srv.admin(t, http.MethodPost, "/api/v1/ledger/entries/batch", BatchRequest{Entries: []services.EntryRequest{
		{Kind: models.KindGatewayDeposit, ExternalTxID: "pf-1", AccountID: "u1", Amount: "2", Asset: "USDT"},
		{Kind: models.KindGatewayDeposit, ExternalTxID: "pf-2", AccountID: "u1", Amount: "3", Asset: "USDT"},
	}})

	w := srv.do(t, http.MethodGet, "/api/v1/accounts/u1/balance", "u1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var balance BalanceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &balance))
	assert.Equal(t, "5.000000", balance.Balance)

	w = srv.do(t, http.MethodGet, "/api/v1/accounts/u1/journal?limit=1", "u1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var journal JournalResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &journal))
	require.Len(t, journal.Entries, 1)
	assert.Equal(t, "pf-2", journal.Entries[0].ExternalTxID)

	w = srv.do(t, http.MethodGet, "/api/v1/accounts/u1/balance", "someone-else", "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestWalletHandler(t *testing.T) {
	srv := newTestServer(t)
	srv.seedAccount(t, "u1", depositAddress)

	w := srv.do(t, http.MethodPost, "/api/v1/accounts/u1/handle", "u1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var assigned map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &assigned))
	handle := assigned["handle"]
	require.NotEmpty(t, handle)

	w = srv.do(t, http.MethodGet, "/api/v1/wallets/@"+handle, "someone", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resolved services.HandleResolution
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resolved))
	assert.Equal(t, "u1", resolved.AccountID)
	assert.Equal(t, depositAddress, resolved.ExternalAddress)

	w = srv.do(t, http.MethodGet, "/api/v1/wallets/"+handle+"/qr?size=128", "someone", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, depositAddress, w.Header().Get("X-Deposit-Address"))

	t.Run("error kinds", func(t *testing.T) {
		w := srv.do(t, http.MethodGet, "/api/v1/wallets/no!", "someone", "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = srv.do(t, http.MethodGet, "/api/v1/wallets/nobody", "someone", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("duplicate account", func(t *testing.T) {
		w := srv.admin(t, http.MethodPost, "/api/v1/accounts", services.CreateAccountRequest{AccountID: "u1"})
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestTransferHandler(t *testing.T) {
	srv := newTestServer(t)
	srv.seedAccount(t, "alice", "")
	srv.seedAccount(t, "bob", "")
	srv.admin(t, http.MethodPost, "/api/v1/ledger/entries", services.EntryRequest{
		Kind: models.KindTreasuryRefill, ExternalTxID: "seed", AccountID: "alice", Amount: "10", Asset: "USDT",
	})

	req := services.TransferRequest{Reference: "t-1", ToAccountID: "bob", Amount: "4"}
	w := srv.do(t, http.MethodPost, "/api/v1/transfers", "alice", "", req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = srv.do(t, http.MethodPost, "/api/v1/transfers", "alice", "", req)
	assert.Equal(t, http.StatusOK, w.Code)

	t.Run("sender comes from the token", func(t *testing.T) {
		spoofed := services.TransferRequest{Reference: "t-2", FromAccountID: "bob", ToAccountID: "alice", Amount: "1"}
		w := srv.do(t, http.MethodPost, "/api/v1/transfers", "alice", "", spoofed)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("overdraft", func(t *testing.T) {
		w := srv.do(t, http.MethodPost, "/api/v1/transfers", "bob", "", services.TransferRequest{Reference: "t-3", ToAccountID: "alice", Amount: "100"})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestReconciliationHandler(t *testing.T) {
	srv := newTestServer(t)
	srv.seedAccount(t, "u1", depositAddress)
	srv.admin(t, http.MethodPost, "/api/v1/ledger/entries", services.EntryRequest{
		Kind: models.KindSweepDeposit, ExternalTxID: "0xabc", AccountID: "u1", Amount: "5", Asset: "USDT",
	})

	srv.oracle.balance = decimal.RequireFromString("6")
	w := srv.admin(t, http.MethodGet, "/api/v1/accounts/u1/reconcile", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var report models.ReconciliationReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.True(t, report.HasDrift)
	assert.Equal(t, "1.000000", report.Drift.OnChainVsStored)

	w = srv.admin(t, http.MethodPost, "/api/v1/accounts/u1/corrections", CorrectionRequest{Reference: "c-1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = srv.admin(t, http.MethodGet, "/api/v1/accounts/u1/reconcile", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.False(t, report.HasDrift)

	t.Run("oracle down", func(t *testing.T) {
		srv.oracle.err = chain.ErrUnavailable
		defer func() { srv.oracle.err = nil }()

		w := srv.admin(t, http.MethodGet, "/api/v1/accounts/u1/reconcile", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("only the oracle asset can be reconciled", func(t *testing.T) {
		w := srv.admin(t, http.MethodGet, "/api/v1/accounts/u1/reconcile?asset=ZAR", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = srv.admin(t, http.MethodPost, "/api/v1/accounts/u1/corrections", CorrectionRequest{Reference: "c-zar", Asset: "ZAR"})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		balance, err := srv.store.GetBalance(context.Background(), "u1", "ZAR")
		require.NoError(t, err)
		assert.True(t, balance.IsZero())
	})

	t.Run("users cannot reconcile", func(t *testing.T) {
		w := srv.do(t, http.MethodGet, "/api/v1/accounts/u1/reconcile", "u1", "", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
