package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zarwallet/backend/internal/models"
	"github.com/zarwallet/backend/internal/store"
)

func newTestDirectory(t *testing.T, accounts ...models.Account) (*WalletDirectory, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	for i := range accounts {
		require.NoError(t, st.CreateAccount(context.Background(), &accounts[i]))
	}
	return NewWalletDirectory(st, nil, testLedgerConfig()), st
}

func claim(t *testing.T, st *store.MemoryStore, handle, accountID string) {
	t.Helper()
	err := st.RunInTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		return tx.InsertHandle(ctx, handle, accountID)
	})
	require.NoError(t, err)
}

func TestNormalizeHandle(t *testing.T) {
	cases := []struct {
		in   string
		want string
		err  bool
	}{
		{"alice", "alice", false},
		{"@Alice_01", "alice_01", false},
		{"  bob  ", "bob", false},
		{"ab", "", true},
		{"abcdefghijklmnop", "", true},
		{"al-ice", "", true},
		{"@@alice", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := NormalizeHandle(tc.in)
			if tc.err {
				assert.ErrorIs(t, err, ErrInvalidHandleFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestWalletDirectory_EnsureHandle(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns a derived handle once", func(t *testing.T) {
		dir, st := newTestDirectory(t, models.Account{ID: "acct-1", ExternalAddress: testAddress})

		handle, err := dir.EnsureHandle(ctx, "acct-1")
		require.NoError(t, err)
		primary, _ := deriveHandles("acct-1")
		assert.Equal(t, primary, handle)
		_, err = NormalizeHandle(handle)
		assert.NoError(t, err)

		again, err := dir.EnsureHandle(ctx, "acct-1")
		require.NoError(t, err)
		assert.Equal(t, handle, again)

		account, err := st.GetAccount(ctx, "acct-1")
		require.NoError(t, err)
		assert.Equal(t, handle, account.Handle)
	})

	t.Run("round trip", func(t *testing.T) {
		dir, _ := newTestDirectory(t, models.Account{ID: "acct-2", ExternalAddress: testAddress})

		handle, err := dir.EnsureHandle(ctx, "acct-2")
		require.NoError(t, err)

		resolved, err := dir.ResolveHandle(ctx, "@"+handle)
		require.NoError(t, err)
		assert.Equal(t, "acct-2", resolved.AccountID)
		assert.Equal(t, testAddress, resolved.ExternalAddress)
	})

	t.Run("collision falls back to alternate", func(t *testing.T) {
		dir, st := newTestDirectory(t, models.Account{ID: "acct-3"})
		primary, alternate := deriveHandles("acct-3")
		claim(t, st, primary, "someone-else")

		handle, err := dir.EnsureHandle(ctx, "acct-3")
		require.NoError(t, err)
		assert.Equal(t, alternate, handle)
		assert.Len(t, alternate, 15)

		owner, err := st.GetHandle(ctx, primary)
		require.NoError(t, err)
		assert.Equal(t, "someone-else", owner)
	})

	t.Run("both candidates taken", func(t *testing.T) {
		dir, st := newTestDirectory(t, models.Account{ID: "acct-4"})
		primary, alternate := deriveHandles("acct-4")
		claim(t, st, primary, "x")
		claim(t, st, alternate, "y")

		_, err := dir.EnsureHandle(ctx, "acct-4")
		assert.ErrorIs(t, err, ErrHandleUnavailable)
	})

	t.Run("existing mapping for the same account is reused", func(t *testing.T) {
		dir, st := newTestDirectory(t, models.Account{ID: "acct-5"})
		primary, _ := deriveHandles("acct-5")
		claim(t, st, primary, "acct-5")

		handle, err := dir.EnsureHandle(ctx, "acct-5")
		require.NoError(t, err)
		assert.Equal(t, primary, handle)
	})

	t.Run("concurrent callers agree", func(t *testing.T) {
		dir, _ := newTestDirectory(t, models.Account{ID: "acct-6"})

		handles := make([]string, 10)
		var wg sync.WaitGroup
		for i := range handles {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				h, err := dir.EnsureHandle(ctx, "acct-6")
				assert.NoError(t, err)
				handles[i] = h
			}(i)
		}
		wg.Wait()

		for _, h := range handles {
			assert.Equal(t, handles[0], h)
		}
	})

	t.Run("unknown account", func(t *testing.T) {
		dir, _ := newTestDirectory(t)

		_, err := dir.EnsureHandle(ctx, "ghost")
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})
}

func TestWalletDirectory_ResolveHandle(t *testing.T) {
	ctx := context.Background()

	t.Run("bad format never reaches the store", func(t *testing.T) {
		dir, _ := newTestDirectory(t)

		_, err := dir.ResolveHandle(ctx, "a!")
		assert.ErrorIs(t, err, ErrInvalidHandleFormat)
	})

	t.Run("unknown handle", func(t *testing.T) {
		dir, _ := newTestDirectory(t)

		_, err := dir.ResolveHandle(ctx, "nobody")
		assert.ErrorIs(t, err, ErrHandleNotFound)
	})

	t.Run("dangling mapping", func(t *testing.T) {
		dir, st := newTestDirectory(t)
		claim(t, st, "orphan", "deleted-account")

		_, err := dir.ResolveHandle(ctx, "orphan")
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("no deposit address", func(t *testing.T) {
		dir, st := newTestDirectory(t, models.Account{ID: "acct-7"})
		claim(t, st, "carol", "acct-7")

		_, err := dir.ResolveHandle(ctx, "carol")
		assert.ErrorIs(t, err, ErrNoExternalAddress)
	})
}

func TestWalletDirectory_HandleCache(t *testing.T) {
	ctx := context.Background()

	t.Run("miss populates the cache", func(t *testing.T) {
		st := store.NewMemoryStore()
		claim(t, st, "alice", "acct-1")
		rdb, redisMock := redismock.NewClientMock()
		redisMock.ExpectGet("handle:alice").RedisNil()
		redisMock.ExpectSet("handle:alice", "acct-1", time.Minute).SetVal("OK")

		dir := NewWalletDirectory(st, rdb, testLedgerConfig())
		accountID, handle, err := dir.LookupHandle(ctx, "@Alice")
		require.NoError(t, err)
		assert.Equal(t, "acct-1", accountID)
		assert.Equal(t, "alice", handle)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("hit skips the store", func(t *testing.T) {
		st := store.NewMemoryStore()
		rdb, redisMock := redismock.NewClientMock()
		redisMock.ExpectGet("handle:bob").SetVal("acct-2")

		dir := NewWalletDirectory(st, rdb, testLedgerConfig())
		accountID, _, err := dir.LookupHandle(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, "acct-2", accountID)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("not found is not cached", func(t *testing.T) {
		st := store.NewMemoryStore()
		rdb, redisMock := redismock.NewClientMock()
		redisMock.ExpectGet("handle:dave").RedisNil()

		dir := NewWalletDirectory(st, rdb, testLedgerConfig())
		_, _, err := dir.LookupHandle(ctx, "dave")
		assert.ErrorIs(t, err, ErrHandleNotFound)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})
}

func TestWalletDirectory_CreateAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("with address", func(t *testing.T) {
		dir, _ := newTestDirectory(t)

		account, err := dir.CreateAccount(ctx, CreateAccountRequest{AccountID: "acct-1", ExternalAddress: testAddress})
		require.NoError(t, err)
		assert.Equal(t, "acct-1", account.ID)
		assert.Equal(t, testAddress, account.ExternalAddress)
		assert.False(t, account.CreatedAt.IsZero())
	})

	t.Run("generated id", func(t *testing.T) {
		dir, _ := newTestDirectory(t)

		account, err := dir.CreateAccount(ctx, CreateAccountRequest{})
		require.NoError(t, err)
		assert.Len(t, account.ID, 36)
	})

	t.Run("duplicate", func(t *testing.T) {
		dir, _ := newTestDirectory(t, models.Account{ID: "acct-1"})

		_, err := dir.CreateAccount(ctx, CreateAccountRequest{AccountID: "acct-1"})
		assert.ErrorIs(t, err, ErrAccountExists)
	})

	t.Run("bad address", func(t *testing.T) {
		dir, _ := newTestDirectory(t)

		_, err := dir.CreateAccount(ctx, CreateAccountRequest{ExternalAddress: "0x1234"})
		assert.ErrorIs(t, err, ErrInvalidAddress)
	})
}
