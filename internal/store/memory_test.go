package store

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zarwallet/backend/internal/models"
)

func newMemoryWithAccount(t *testing.T, accountID string) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	require.NoError(t, s.CreateAccount(context.Background(), &models.Account{ID: accountID}))
	return s
}

func TestMemoryStore_RunInTx(t *testing.T) {
	ctx := context.Background()

	t.Run("commits staged writes", func(t *testing.T) {
		s := newMemoryWithAccount(t, "u1")

		err := s.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
			_, err := tx.GetEventIndex(ctx, "ev1")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, tx.InsertJournalEntry(ctx, &models.JournalEntry{
				ID: "e1", EventID: "ev1", AccountID: "u1", Asset: "USDT", Amount: decimal.RequireFromString("5"),
			}))
			require.NoError(t, tx.InsertEventIndex(ctx, "ev1", "e1"))
			return tx.SetBalance(ctx, "u1", "USDT", decimal.RequireFromString("5"))
		})
		require.NoError(t, err)

		entryID, err := s.GetEventIndex(ctx, "ev1")
		require.NoError(t, err)
		assert.Equal(t, "e1", entryID)

		balance, err := s.GetBalance(ctx, "u1", "USDT")
		require.NoError(t, err)
		assert.Equal(t, "5", balance.String())

		sum, err := s.SumJournal(ctx, "u1", "USDT")
		require.NoError(t, err)
		assert.Equal(t, "5", sum.String())
	})

	t.Run("discards writes when fn fails", func(t *testing.T) {
		s := newMemoryWithAccount(t, "u1")
		boom := errors.New("boom")

		err := s.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
			require.NoError(t, tx.SetBalance(ctx, "u1", "USDT", decimal.RequireFromString("7")))
			return boom
		})
		assert.ErrorIs(t, err, boom)

		balance, _ := s.GetBalance(ctx, "u1", "USDT")
		assert.True(t, balance.IsZero())
	})

	t.Run("rejects reads after writes", func(t *testing.T) {
		s := newMemoryWithAccount(t, "u1")

		err := s.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
			require.NoError(t, tx.SetBalance(ctx, "u1", "USDT", decimal.RequireFromString("1")))
			_, err := tx.GetBalance(ctx, "u1", "USDT")
			return err
		})
		assert.ErrorIs(t, err, ErrReadAfterWrite)

		err = s.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
			require.NoError(t, tx.SetBalance(ctx, "u1", "USDT", decimal.RequireFromString("1")))
			_, err := tx.SumJournal(ctx, "u1", "USDT")
			return err
		})
		assert.ErrorIs(t, err, ErrReadAfterWrite)
	})

	t.Run("duplicate event id conflicts at commit", func(t *testing.T) {
		s := newMemoryWithAccount(t, "u1")

		err := s.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
			require.NoError(t, tx.InsertEventIndex(ctx, "ev1", "e1"))
			return tx.InsertEventIndex(ctx, "ev1", "e2")
		})
		assert.ErrorIs(t, err, ErrConflict)

		_, err = s.GetEventIndex(ctx, "ev1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("cancelled context", func(t *testing.T) {
		s := newMemoryWithAccount(t, "u1")
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		called := false
		err := s.RunInTx(cctx, func(ctx context.Context, tx Tx) error {
			called = true
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, called)
	})
}

func TestMemoryStore_Handles(t *testing.T) {
	ctx := context.Background()
	s := newMemoryWithAccount(t, "u1")
	require.NoError(t, s.CreateAccount(ctx, &models.Account{ID: "u2"}))

	err := s.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		if err := tx.InsertHandle(ctx, "alice", "u1"); err != nil {
			return err
		}
		return tx.SetAccountHandle(ctx, "u1", "alice")
	})
	require.NoError(t, err)

	accountID, err := s.GetHandle(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "u1", accountID)

	acct, err := s.GetAccount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", acct.Handle)

	err = s.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.InsertHandle(ctx, "alice", "u2")
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestMemoryStore_CreateAccount(t *testing.T) {
	ctx := context.Background()
	s := newMemoryWithAccount(t, "u1")

	err := s.CreateAccount(ctx, &models.Account{ID: "u1"})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	_, err = s.GetAccount(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ListJournal(t *testing.T) {
	ctx := context.Background()
	s := newMemoryWithAccount(t, "u1")

	for i, id := range []string{"e1", "e2", "e3"} {
		asset := "USDT"
		if i == 1 {
			asset = "ZAR"
		}
		entry := &models.JournalEntry{ID: id, EventID: "ev-" + id, AccountID: "u1", Asset: asset, Amount: decimal.NewFromInt(1)}
		require.NoError(t, s.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
			return tx.InsertJournalEntry(ctx, entry)
		}))
	}

	all, err := s.ListJournal(ctx, "u1", "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "e3", all[0].ID)

	usdt, err := s.ListJournal(ctx, "u1", "USDT", 1)
	require.NoError(t, err)
	require.Len(t, usdt, 1)
	assert.Equal(t, "e3", usdt[0].ID)
}
