package services

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/zarwallet/backend/internal/models"
	"github.com/zarwallet/backend/internal/store"
)

type MockOracle struct {
	mock.Mock
}

func (m *MockOracle) Balance(ctx context.Context, address string) (decimal.Decimal, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockStore covers the read side used by reconciliation. RunInTx hands the mock itself to fn,
// so reads inside a transaction hit the same expectations; writes must be expected explicitly.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockStore) GetBalance(ctx context.Context, accountID, asset string) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID, asset)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockStore) GetEventIndex(ctx context.Context, eventID string) (string, error) {
	args := m.Called(ctx, eventID)
	return args.String(0), args.Error(1)
}

func (m *MockStore) GetJournalEntry(ctx context.Context, entryID string) (*models.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JournalEntry), args.Error(1)
}

func (m *MockStore) GetHandle(ctx context.Context, handle string) (string, error) {
	args := m.Called(ctx, handle)
	return args.String(0), args.Error(1)
}

func (m *MockStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	return fn(ctx, m)
}

func (m *MockStore) InsertJournalEntry(ctx context.Context, entry *models.JournalEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockStore) InsertEventIndex(ctx context.Context, eventID, entryID string) error {
	return m.Called(ctx, eventID, entryID).Error(0)
}

func (m *MockStore) SetBalance(ctx context.Context, accountID, asset string, balance decimal.Decimal) error {
	return m.Called(ctx, accountID, asset, balance).Error(0)
}

func (m *MockStore) InsertHandle(ctx context.Context, handle, accountID string) error {
	return m.Called(ctx, handle, accountID).Error(0)
}

func (m *MockStore) SetAccountHandle(ctx context.Context, accountID, handle string) error {
	return m.Called(ctx, accountID, handle).Error(0)
}

func (m *MockStore) CreateAccount(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockStore) SumJournal(ctx context.Context, accountID, asset string) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID, asset)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockStore) ListJournal(ctx context.Context, accountID, asset string, limit int) ([]models.JournalEntry, error) {
	args := m.Called(ctx, accountID, asset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.JournalEntry), args.Error(1)
}

func (m *MockStore) Close() error {
	return m.Called().Error(0)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
