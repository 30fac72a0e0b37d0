// Package store is the transactional persistence layer for accounts, journal entries,
// the event index and handle mappings.
//
// A transaction passed to RunInTx is split into two phases: every read must be issued
// before the first write. Once a write has been staged, further reads fail with
// ErrReadAfterWrite. Callers therefore gather all state first and then write.
package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/zarwallet/backend/internal/models"
)

var (
	ErrNotFound       = errors.New("store: not found")
	ErrAlreadyExists  = errors.New("store: already exists")
	ErrConflict       = errors.New("store: transaction conflict")
	ErrReadAfterWrite = errors.New("store: read issued after a write in the same transaction")
)

// Reader is the read side shared by transactions and the plain store.
// Reads on the plain store are display-grade and not linearizable with concurrent writes.
type Reader interface {
	GetAccount(ctx context.Context, accountID string) (*models.Account, error)
	// GetBalance returns zero when the account has never held the asset.
	GetBalance(ctx context.Context, accountID, asset string) (decimal.Decimal, error)
	// GetEventIndex returns the journal entry id recorded for eventID.
	GetEventIndex(ctx context.Context, eventID string) (string, error)
	GetJournalEntry(ctx context.Context, entryID string) (*models.JournalEntry, error)
	// GetHandle returns the account id a handle is mapped to.
	GetHandle(ctx context.Context, handle string) (string, error)
	// SumJournal adds up every journal amount recorded for the account and asset.
	SumJournal(ctx context.Context, accountID, asset string) (decimal.Decimal, error)
}

type Tx interface {
	Reader

	InsertJournalEntry(ctx context.Context, entry *models.JournalEntry) error
	InsertEventIndex(ctx context.Context, eventID, entryID string) error
	SetBalance(ctx context.Context, accountID, asset string, balance decimal.Decimal) error
	InsertHandle(ctx context.Context, handle, accountID string) error
	SetAccountHandle(ctx context.Context, accountID, handle string) error
}

type Store interface {
	Reader

	// RunInTx executes fn atomically. Concurrent conflicting transactions surface as ErrConflict;
	// fn's own error aborts the transaction and is returned unchanged.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	CreateAccount(ctx context.Context, account *models.Account) error
	ListJournal(ctx context.Context, accountID, asset string, limit int) ([]models.JournalEntry, error)
	Close() error
}

// phase enforces reads-before-writes inside a transaction.
type phase struct {
	wrote bool
}

func (p *phase) read() error {
	if p.wrote {
		return ErrReadAfterWrite
	}
	return nil
}

func (p *phase) write() {
	p.wrote = true
}
