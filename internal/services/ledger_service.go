package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/zarwallet/backend/internal/audit"
	"github.com/zarwallet/backend/internal/config"
	"github.com/zarwallet/backend/internal/logger"
	"github.com/zarwallet/backend/internal/models"
	"github.com/zarwallet/backend/internal/store"
)

// EntryRequest describes one balance-affecting event. Amount is a signed decimal string:
// positive credits the account, negative debits it.
type EntryRequest struct {
	Kind         models.EntryKind `json:"kind" validate:"required"`
	ExternalTxID string           `json:"externalTxId" validate:"required,max=128"`
	LogIndex     *int             `json:"logIndex,omitempty" validate:"omitempty,gte=0"`
	Block        *int64           `json:"block,omitempty" validate:"omitempty,gte=0"`
	Timestamp    time.Time        `json:"timestamp"`
	AccountID    string           `json:"accountId" validate:"required,max=128"`
	Handle       string           `json:"handle,omitempty"`
	Amount       string           `json:"amount" validate:"required"`
	Asset        string           `json:"asset" validate:"required,max=16"`
	Metadata     models.Metadata  `json:"metadata,omitempty"`
}

type ApplyResult struct {
	EntryID          string          `json:"entryId"`
	EventID          string          `json:"eventId"`
	ResultingBalance decimal.Decimal `json:"resultingBalance"`
	// Applied is false when the event had already been recorded and the original result was returned.
	Applied bool `json:"applied"`
}

type applyOptions struct {
	requireSufficientBalance bool
	expected                 map[balanceKey]decimal.Decimal
}

type ApplyOption func(*applyOptions)

// RequireSufficientBalance rejects the batch when any newly applied entry leaves a balance negative.
func RequireSufficientBalance() ApplyOption {
	return func(o *applyOptions) { o.requireSufficientBalance = true }
}

// ExpectBalance aborts the batch with ErrBalanceChanged unless the account's balance still
// equals balance when the transaction reads it.
func ExpectBalance(accountID, asset string, balance decimal.Decimal) ApplyOption {
	return func(o *applyOptions) {
		if o.expected == nil {
			o.expected = make(map[balanceKey]decimal.Decimal)
		}
		o.expected[balanceKey{accountID, strings.ToUpper(asset)}] = balance
	}
}

type LedgerService struct {
	store store.Store
	audit *audit.AuditLogger
	cfg   *config.LedgerConfig
	now   func() time.Time
}

func NewLedgerService(st store.Store, cfg *config.LedgerConfig) *LedgerService {
	return &LedgerService{
		store: st,
		audit: audit.NewAuditLogger(),
		cfg:   cfg,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// ApplyEntry records the entry and moves the account balance exactly once per event id.
// Replaying the same external transaction id and log index returns the original result.
func (s *LedgerService) ApplyEntry(ctx context.Context, req EntryRequest) (*ApplyResult, error) {
	results, err := s.ApplyEntries(ctx, []EntryRequest{req})
	if err != nil {
		return nil, err
	}
	return &results[0], nil
}

// ApplyEntries applies several entries in one transaction. Each entry is idempotent on its own
// event id; either every new entry is written or none is.
func (s *LedgerService) ApplyEntries(ctx context.Context, reqs []EntryRequest, opts ...ApplyOption) ([]ApplyResult, error) {
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: no entries", ErrInvalidEntry)
	}
	var o applyOptions
	for _, opt := range opts {
		opt(&o)
	}

	prepared := make([]preparedEntry, 0, len(reqs))
	seen := make(map[string]bool, len(reqs))
	for _, req := range reqs {
		p, err := s.prepare(req)
		if err != nil {
			return nil, err
		}
		if seen[p.eventID] {
			return nil, fmt.Errorf("%w: duplicate event %s in batch", ErrInvalidEntry, p.eventID)
		}
		seen[p.eventID] = true
		prepared = append(prepared, *p)
	}

	var results []ApplyResult
	err := withRetry(ctx, s.cfg.TxMaxAttempts, s.cfg.TxRetryBackoff, "apply entries", func() error {
		var err error
		results, err = s.applyBatch(ctx, prepared, o)
		return err
	})
	if err != nil {
		for _, p := range prepared {
			s.audit.LogError(p.eventID, p.req.AccountID, err)
		}
		return nil, err
	}

	for i, r := range results {
		p := prepared[i]
		fields := logrus.Fields{
			"event_id":   r.EventID,
			"entry_id":   r.EntryID,
			"account_id": p.req.AccountID,
			"kind":       p.req.Kind,
			"balance":    r.ResultingBalance.StringFixed(s.cfg.AssetDecimals),
		}
		if r.Applied {
			logger.WithFields(fields).Info("[LEDGER] entry applied")
			s.audit.LogEntryApplied(r.EventID, r.EntryID, p.req.AccountID,
				p.amount.StringFixed(s.cfg.AssetDecimals), p.req.Asset, string(p.req.Kind))
		} else {
			logger.WithFields(fields).Info("[LEDGER] duplicate event, returning recorded result")
			s.audit.LogEntryReplayed(r.EventID, r.EntryID, p.req.AccountID)
		}
	}
	return results, nil
}

// GetBalance is a display read outside any transaction.
func (s *LedgerService) GetBalance(ctx context.Context, accountID, asset string) (decimal.Decimal, error) {
	if _, err := s.store.GetAccount(ctx, accountID); err != nil {
		return decimal.Zero, accountErr(accountID, err)
	}
	return s.store.GetBalance(ctx, accountID, s.asset(asset))
}

func (s *LedgerService) ListJournal(ctx context.Context, accountID, asset string, limit int) ([]models.JournalEntry, error) {
	if _, err := s.store.GetAccount(ctx, accountID); err != nil {
		return nil, accountErr(accountID, err)
	}
	switch {
	case limit <= 0:
		limit = defaultJournalLimit
	case limit > maxJournalLimit:
		limit = maxJournalLimit
	}
	return s.store.ListJournal(ctx, accountID, strings.ToUpper(strings.TrimSpace(asset)), limit)
}

const (
	defaultJournalLimit = 50
	maxJournalLimit     = 500
)

type preparedEntry struct {
	req     EntryRequest
	amount  decimal.Decimal
	eventID string
}

// prepare validates a request before any I/O.
func (s *LedgerService) prepare(req EntryRequest) (*preparedEntry, error) {
	if !req.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidEntry, req.Kind)
	}
	if strings.TrimSpace(req.AccountID) == "" {
		return nil, fmt.Errorf("%w: account id is required", ErrInvalidEntry)
	}
	req.Asset = strings.ToUpper(strings.TrimSpace(req.Asset))
	if req.Asset == "" {
		return nil, fmt.Errorf("%w: asset is required", ErrInvalidEntry)
	}

	amount, err := ParseAmount(req.Amount, s.cfg.AssetDecimals)
	if err != nil {
		return nil, err
	}
	if amount.IsZero() {
		return nil, fmt.Errorf("%w: amount must not be zero", ErrInvalidAmount)
	}

	eventID, err := EventID(req.ExternalTxID, req.LogIndex)
	if err != nil {
		return nil, err
	}
	return &preparedEntry{req: req, amount: amount, eventID: eventID}, nil
}

type balanceKey struct {
	accountID string
	asset     string
}

// applyBatch runs one transaction: event index lookups first, then account and balance
// reads, then all writes.
func (s *LedgerService) applyBatch(ctx context.Context, entries []preparedEntry, o applyOptions) ([]ApplyResult, error) {
	var results []ApplyResult

	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		results = make([]ApplyResult, len(entries))
		var pending []int

		for i, e := range entries {
			entryID, err := tx.GetEventIndex(ctx, e.eventID)
			if errors.Is(err, store.ErrNotFound) {
				pending = append(pending, i)
				continue
			}
			if err != nil {
				return err
			}

			existing, err := tx.GetJournalEntry(ctx, entryID)
			if err != nil {
				return fmt.Errorf("load recorded entry for event %s: %w", e.eventID, err)
			}
			if existing.AccountID != e.req.AccountID || !existing.Amount.Equal(e.amount) {
				logger.Warnf("[LEDGER] event %s replayed with different payload (recorded account=%s amount=%s, got account=%s amount=%s)",
					e.eventID, existing.AccountID, existing.Amount, e.req.AccountID, e.amount)
			}
			results[i] = ApplyResult{
				EntryID:          existing.ID,
				EventID:          e.eventID,
				ResultingBalance: existing.ResultingBalance,
			}
		}
		if len(pending) == 0 {
			return nil
		}

		balances := make(map[balanceKey]decimal.Decimal)
		var touched []balanceKey
		for _, i := range pending {
			key := balanceKey{entries[i].req.AccountID, entries[i].req.Asset}
			if _, ok := balances[key]; ok {
				continue
			}
			if _, err := tx.GetAccount(ctx, key.accountID); err != nil {
				return accountErr(key.accountID, err)
			}
			balance, err := tx.GetBalance(ctx, key.accountID, key.asset)
			if err != nil {
				return err
			}
			if want, ok := o.expected[key]; ok && !want.Equal(balance) {
				return fmt.Errorf("%w: account %s has %s, expected %s", ErrBalanceChanged, key.accountID, balance, want)
			}
			balances[key] = balance
			touched = append(touched, key)
		}

		now := s.now()
		newEntries := make([]models.JournalEntry, 0, len(pending))
		for _, i := range pending {
			e := entries[i]
			key := balanceKey{e.req.AccountID, e.req.Asset}
			balance := balances[key].Add(e.amount)
			if o.requireSufficientBalance && balance.IsNegative() {
				return fmt.Errorf("%w: account %s has %s %s", ErrInsufficientBalance,
					key.accountID, balances[key].StringFixed(s.cfg.AssetDecimals), key.asset)
			}
			balances[key] = balance

			timestamp := e.req.Timestamp
			if timestamp.IsZero() {
				timestamp = now
			}
			entry := models.JournalEntry{
				ID:               uuid.NewString(),
				EventID:          e.eventID,
				Kind:             e.req.Kind,
				ExternalTxID:     e.req.ExternalTxID,
				LogIndex:         e.req.LogIndex,
				Block:            e.req.Block,
				Timestamp:        timestamp.UTC(),
				AccountID:        e.req.AccountID,
				Handle:           e.req.Handle,
				Amount:           e.amount,
				Asset:            e.req.Asset,
				Metadata:         e.req.Metadata,
				ResultingBalance: balance,
				CreatedAt:        now,
			}
			newEntries = append(newEntries, entry)
			results[i] = ApplyResult{
				EntryID:          entry.ID,
				EventID:          e.eventID,
				ResultingBalance: balance,
				Applied:          true,
			}
		}

		for i := range newEntries {
			if err := tx.InsertJournalEntry(ctx, &newEntries[i]); err != nil {
				return err
			}
			if err := tx.InsertEventIndex(ctx, newEntries[i].EventID, newEntries[i].ID); err != nil {
				return err
			}
		}
		for _, key := range touched {
			if err := tx.SetBalance(ctx, key.accountID, key.asset, balances[key]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *LedgerService) asset(asset string) string {
	asset = strings.ToUpper(strings.TrimSpace(asset))
	if asset == "" {
		return s.cfg.Asset
	}
	return asset
}

// ParseAmount parses a signed decimal string and rejects values finer than the asset precision.
func ParseAmount(raw string, decimals int32) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("%w: amount is required", ErrInvalidAmount)
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a decimal", ErrInvalidAmount, raw)
	}
	if !amount.Equal(amount.Truncate(decimals)) {
		return decimal.Zero, fmt.Errorf("%w: %q has more than %d fractional digits", ErrInvalidAmount, raw, decimals)
	}
	return amount, nil
}

func accountErr(accountID string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
	}
	return err
}
