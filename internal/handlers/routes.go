package handlers

import (
	"github.com/go-chi/chi/v5"
	mW "github.com/zarwallet/backend/internal/middleware"
)

type API struct {
	Ledger         *LedgerHandler
	Wallet         *WalletHandler
	Reconciliation *ReconciliationHandler
	Transfer       *TransferHandler
}

// Routes mounts the authenticated /api/v1 surface.
func (a *API) Routes(r chi.Router) {
	r.Use(mW.AuthMiddleware)

	r.Get("/accounts/{accountId}", a.Wallet.GetAccount)
	r.Get("/accounts/{accountId}/balance", a.Ledger.GetBalance)
	r.Get("/accounts/{accountId}/journal", a.Ledger.ListJournal)
	r.Post("/accounts/{accountId}/handle", a.Wallet.EnsureHandle)

	r.Get("/wallets/{handle}", a.Wallet.ResolveHandle)
	r.Get("/wallets/{handle}/qr", a.Wallet.DepositQR)

	r.Post("/transfers", a.Transfer.Transfer)

	// Operator endpoints
	r.Group(func(r chi.Router) {
		r.Use(mW.RequireRole(mW.RoleAdmin))

		r.Post("/accounts", a.Wallet.CreateAccount)
		r.Post("/ledger/entries", a.Ledger.ApplyEntry)
		r.Post("/ledger/entries/batch", a.Ledger.ApplyBatch)
		r.Get("/accounts/{accountId}/reconcile", a.Reconciliation.Reconcile)
		r.Post("/accounts/{accountId}/corrections", a.Reconciliation.ApplyCorrection)
	})
}
