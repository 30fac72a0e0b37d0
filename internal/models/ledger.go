package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type EntryKind string

const (
	KindTreasuryRefill         EntryKind = "treasury_refill"
	KindSweepDeposit           EntryKind = "sweep_deposit"
	KindGatewayDeposit         EntryKind = "gateway_deposit"
	KindInternalTransferDebit  EntryKind = "internal_transfer_debit"
	KindInternalTransferCredit EntryKind = "internal_transfer_credit"
	KindWithdrawalDebit        EntryKind = "withdrawal_debit"
	KindLedgerSyncCorrection   EntryKind = "ledger_sync_correction"
)

var entryKinds = map[EntryKind]bool{
	KindTreasuryRefill:         true,
	KindSweepDeposit:           true,
	KindGatewayDeposit:         true,
	KindInternalTransferDebit:  true,
	KindInternalTransferCredit: true,
	KindWithdrawalDebit:        true,
	KindLedgerSyncCorrection:   true,
}

func (k EntryKind) Valid() bool {
	return entryKinds[k]
}

// Metadata is extension data attached to an entry. Core logic never reads it.
type Metadata map[string]any

// JournalEntry is an immutable record of one balance-affecting event.
// ResultingBalance is a snapshot taken at write time; the account balance row is authoritative.
type JournalEntry struct {
	ID               string          `json:"entryId" db:"id"`
	EventID          string          `json:"eventId" db:"event_id"`
	Kind             EntryKind       `json:"kind" db:"kind"`
	ExternalTxID     string          `json:"externalTxId,omitempty" db:"external_tx_id"`
	LogIndex         *int            `json:"logIndex,omitempty" db:"log_index"`
	Block            *int64          `json:"block,omitempty" db:"block"`
	Timestamp        time.Time       `json:"timestamp" db:"occurred_at"`
	AccountID        string          `json:"accountId" db:"account_id"`
	Handle           string          `json:"handle,omitempty" db:"handle"`
	Amount           decimal.Decimal `json:"amount" db:"amount"`
	Asset            string          `json:"asset" db:"asset"`
	Metadata         Metadata        `json:"metadata,omitempty" db:"metadata"`
	ResultingBalance decimal.Decimal `json:"resultingBalance" db:"resulting_balance"`
	CreatedAt        time.Time       `json:"createdAt" db:"created_at"`
}

// Account holds one user's custodial identity. Balances live in account_balances, one row per asset.
type Account struct {
	ID              string    `json:"accountId" db:"id"`
	Handle          string    `json:"handle,omitempty" db:"handle"`
	ExternalAddress string    `json:"externalAddress,omitempty" db:"external_address"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
}
