package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zarwallet/backend/internal/models"
)

type balanceKey struct {
	accountID string
	asset     string
}

// MemoryStore keeps everything in process memory. Transactions hold the writer lock for
// their whole duration, which makes them serializable.
type MemoryStore struct {
	mu         sync.RWMutex
	accounts   map[string]models.Account
	balances   map[balanceKey]decimal.Decimal
	entries    map[string]models.JournalEntry
	entryOrder []string
	eventIndex map[string]string
	handles    map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:   make(map[string]models.Account),
		balances:   make(map[balanceKey]decimal.Decimal),
		entries:    make(map[string]models.JournalEntry),
		eventIndex: make(map[string]string),
		handles:    make(map[string]string),
	}
}

func (s *MemoryStore) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getAccount(accountID)
}

func (s *MemoryStore) GetBalance(ctx context.Context, accountID, asset string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances[balanceKey{accountID, asset}], nil
}

func (s *MemoryStore) GetEventIndex(ctx context.Context, eventID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getEventIndex(eventID)
}

func (s *MemoryStore) GetJournalEntry(ctx context.Context, entryID string) (*models.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getJournalEntry(entryID)
}

func (s *MemoryStore) GetHandle(ctx context.Context, handle string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getHandle(handle)
}

func (s *MemoryStore) CreateAccount(ctx context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[account.ID]; ok {
		return fmt.Errorf("account %s: %w", account.ID, ErrAlreadyExists)
	}
	acct := *account
	if acct.CreatedAt.IsZero() {
		acct.CreatedAt = time.Now().UTC()
	}
	s.accounts[acct.ID] = acct
	return nil
}

func (s *MemoryStore) SumJournal(ctx context.Context, accountID, asset string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sumJournal(accountID, asset), nil
}

func (s *MemoryStore) sumJournal(accountID, asset string) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range s.entries {
		if e.AccountID == accountID && e.Asset == asset {
			sum = sum.Add(e.Amount)
		}
	}
	return sum
}

// ListJournal returns newest entries first. An empty asset matches every asset.
func (s *MemoryStore) ListJournal(ctx context.Context, accountID, asset string, limit int) ([]models.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.JournalEntry
	for i := len(s.entryOrder) - 1; i >= 0; i-- {
		e := s.entries[s.entryOrder[i]]
		if e.AccountID != accountID || (asset != "" && e.Asset != asset) {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{
		store:          s,
		balances:       make(map[balanceKey]decimal.Decimal),
		handles:        make(map[string]string),
		accountHandles: make(map[string]string),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return tx.commit()
}

func (s *MemoryStore) getAccount(accountID string) (*models.Account, error) {
	acct, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", accountID, ErrNotFound)
	}
	return &acct, nil
}

func (s *MemoryStore) getEventIndex(eventID string) (string, error) {
	entryID, ok := s.eventIndex[eventID]
	if !ok {
		return "", fmt.Errorf("event %s: %w", eventID, ErrNotFound)
	}
	return entryID, nil
}

func (s *MemoryStore) getJournalEntry(entryID string) (*models.JournalEntry, error) {
	e, ok := s.entries[entryID]
	if !ok {
		return nil, fmt.Errorf("journal entry %s: %w", entryID, ErrNotFound)
	}
	return &e, nil
}

func (s *MemoryStore) getHandle(handle string) (string, error) {
	accountID, ok := s.handles[handle]
	if !ok {
		return "", fmt.Errorf("handle %s: %w", handle, ErrNotFound)
	}
	return accountID, nil
}

// memoryTx stages writes and applies them on commit. The store lock is held by RunInTx.
type memoryTx struct {
	phase
	store *MemoryStore

	entries        []models.JournalEntry
	index          [][2]string
	balances       map[balanceKey]decimal.Decimal
	handles        map[string]string
	accountHandles map[string]string
}

func (tx *memoryTx) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	if err := tx.read(); err != nil {
		return nil, err
	}
	return tx.store.getAccount(accountID)
}

func (tx *memoryTx) GetBalance(ctx context.Context, accountID, asset string) (decimal.Decimal, error) {
	if err := tx.read(); err != nil {
		return decimal.Zero, err
	}
	return tx.store.balances[balanceKey{accountID, asset}], nil
}

func (tx *memoryTx) GetEventIndex(ctx context.Context, eventID string) (string, error) {
	if err := tx.read(); err != nil {
		return "", err
	}
	return tx.store.getEventIndex(eventID)
}

func (tx *memoryTx) GetJournalEntry(ctx context.Context, entryID string) (*models.JournalEntry, error) {
	if err := tx.read(); err != nil {
		return nil, err
	}
	return tx.store.getJournalEntry(entryID)
}

func (tx *memoryTx) GetHandle(ctx context.Context, handle string) (string, error) {
	if err := tx.read(); err != nil {
		return "", err
	}
	return tx.store.getHandle(handle)
}

func (tx *memoryTx) SumJournal(ctx context.Context, accountID, asset string) (decimal.Decimal, error) {
	if err := tx.read(); err != nil {
		return decimal.Zero, err
	}
	return tx.store.sumJournal(accountID, asset), nil
}

func (tx *memoryTx) InsertJournalEntry(ctx context.Context, entry *models.JournalEntry) error {
	tx.write()
	tx.entries = append(tx.entries, *entry)
	return nil
}

func (tx *memoryTx) InsertEventIndex(ctx context.Context, eventID, entryID string) error {
	tx.write()
	tx.index = append(tx.index, [2]string{eventID, entryID})
	return nil
}

func (tx *memoryTx) SetBalance(ctx context.Context, accountID, asset string, balance decimal.Decimal) error {
	tx.write()
	if _, ok := tx.store.accounts[accountID]; !ok {
		return fmt.Errorf("account %s: %w", accountID, ErrNotFound)
	}
	tx.balances[balanceKey{accountID, asset}] = balance
	return nil
}

func (tx *memoryTx) InsertHandle(ctx context.Context, handle, accountID string) error {
	tx.write()
	if _, ok := tx.store.handles[handle]; ok {
		return fmt.Errorf("handle %s: %w", handle, ErrConflict)
	}
	if _, ok := tx.handles[handle]; ok {
		return fmt.Errorf("handle %s: %w", handle, ErrConflict)
	}
	tx.handles[handle] = accountID
	return nil
}

func (tx *memoryTx) SetAccountHandle(ctx context.Context, accountID, handle string) error {
	tx.write()
	if _, ok := tx.store.accounts[accountID]; !ok {
		return fmt.Errorf("account %s: %w", accountID, ErrNotFound)
	}
	tx.accountHandles[accountID] = handle
	return nil
}

func (tx *memoryTx) commit() error {
	s := tx.store

	seen := make(map[string]bool, len(tx.index))
	for _, pair := range tx.index {
		if _, ok := s.eventIndex[pair[0]]; ok || seen[pair[0]] {
			return fmt.Errorf("event %s: %w", pair[0], ErrConflict)
		}
		seen[pair[0]] = true
	}
	for _, e := range tx.entries {
		if _, ok := s.entries[e.ID]; ok {
			return fmt.Errorf("journal entry %s: %w", e.ID, ErrConflict)
		}
	}

	for _, e := range tx.entries {
		s.entries[e.ID] = e
		s.entryOrder = append(s.entryOrder, e.ID)
	}
	for _, pair := range tx.index {
		s.eventIndex[pair[0]] = pair[1]
	}
	for k, v := range tx.balances {
		s.balances[k] = v
	}
	for h, id := range tx.handles {
		s.handles[h] = id
	}
	for id, h := range tx.accountHandles {
		acct := s.accounts[id]
		acct.Handle = h
		s.accounts[id] = acct
	}
	return nil
}
