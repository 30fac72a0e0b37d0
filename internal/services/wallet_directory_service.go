package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/zarwallet/backend/internal/audit"
	"github.com/zarwallet/backend/internal/chain"
	"github.com/zarwallet/backend/internal/config"
	"github.com/zarwallet/backend/internal/logger"
	"github.com/zarwallet/backend/internal/models"
	"github.com/zarwallet/backend/internal/store"
)

var handlePattern = regexp.MustCompile(`^[a-z0-9_]{3,15}$`)

const handleCachePrefix = "handle:"

type HandleResolution struct {
	AccountID       string `json:"accountId"`
	ExternalAddress string `json:"externalAddress"`
	Handle          string `json:"handle"`
}

type CreateAccountRequest struct {
	AccountID       string `json:"accountId,omitempty" validate:"omitempty,max=128"`
	ExternalAddress string `json:"externalAddress,omitempty" validate:"omitempty,len=34"`
}

// WalletDirectory maps handles to accounts and accounts to deposit addresses.
// Redis is optional and only caches the immutable handle to account mapping.
type WalletDirectory struct {
	store store.Store
	redis *redis.Client
	audit *audit.AuditLogger
	cfg   *config.LedgerConfig
}

func NewWalletDirectory(st store.Store, rdb *redis.Client, cfg *config.LedgerConfig) *WalletDirectory {
	return &WalletDirectory{
		store: st,
		redis: rdb,
		audit: audit.NewAuditLogger(),
		cfg:   cfg,
	}
}

// NormalizeHandle strips a leading @, lowercases and validates the handle.
func NormalizeHandle(raw string) (string, error) {
	h := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(raw), "@"))
	if !handlePattern.MatchString(h) {
		return "", fmt.Errorf("%w: %q", ErrInvalidHandleFormat, raw)
	}
	return h, nil
}

// LookupHandle returns the account id a handle maps to without loading the account.
func (d *WalletDirectory) LookupHandle(ctx context.Context, raw string) (string, string, error) {
	handle, err := NormalizeHandle(raw)
	if err != nil {
		return "", "", err
	}

	if d.redis != nil {
		accountID, err := d.redis.Get(ctx, handleCachePrefix+handle).Result()
		if err == nil && accountID != "" {
			return accountID, handle, nil
		}
		if err != nil && !errors.Is(err, redis.Nil) {
			logger.Warnf("[DIRECTORY] handle cache read failed: %v", err)
		}
	}

	accountID, err := d.store.GetHandle(ctx, handle)
	if errors.Is(err, store.ErrNotFound) {
		return "", "", fmt.Errorf("%w: %s", ErrHandleNotFound, handle)
	}
	if err != nil {
		return "", "", err
	}

	d.cacheHandle(ctx, handle, accountID)
	return accountID, handle, nil
}

// ResolveHandle returns the account and deposit address behind a handle.
func (d *WalletDirectory) ResolveHandle(ctx context.Context, raw string) (*HandleResolution, error) {
	accountID, handle, err := d.LookupHandle(ctx, raw)
	if err != nil {
		return nil, err
	}

	account, err := d.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, accountErr(accountID, err)
	}
	if account.ExternalAddress == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoExternalAddress, handle)
	}

	return &HandleResolution{
		AccountID:       account.ID,
		ExternalAddress: account.ExternalAddress,
		Handle:          handle,
	}, nil
}

// EnsureHandle returns the account's handle, assigning a derived one if it has none.
// Existing mappings are never overwritten; a collision falls back to one alternate.
func (d *WalletDirectory) EnsureHandle(ctx context.Context, accountID string) (string, error) {
	if strings.TrimSpace(accountID) == "" {
		return "", fmt.Errorf("%w: account id is required", ErrInvalidEntry)
	}

	var (
		handle   string
		assigned bool
	)
	err := withRetry(ctx, d.cfg.TxMaxAttempts, d.cfg.TxRetryBackoff, "ensure handle", func() error {
		assigned = false
		return d.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
			account, err := tx.GetAccount(ctx, accountID)
			if err != nil {
				return accountErr(accountID, err)
			}
			if account.Handle != "" {
				handle = account.Handle
				return nil
			}

			primary, alternate := deriveHandles(accountID)
			candidate := ""
			mapped := false
			for _, h := range []string{primary, alternate} {
				owner, err := tx.GetHandle(ctx, h)
				if errors.Is(err, store.ErrNotFound) {
					candidate = h
					break
				}
				if err != nil {
					return err
				}
				if owner == accountID {
					candidate, mapped = h, true
					break
				}
				logger.Warnf("[DIRECTORY] handle %s already claimed by another account", h)
			}
			if candidate == "" {
				return fmt.Errorf("%w: %s", ErrHandleUnavailable, accountID)
			}

			if !mapped {
				if err := tx.InsertHandle(ctx, candidate, accountID); err != nil {
					return err
				}
			}
			if err := tx.SetAccountHandle(ctx, accountID, candidate); err != nil {
				return err
			}
			handle, assigned = candidate, true
			return nil
		})
	})
	if err != nil {
		return "", err
	}

	if assigned {
		logger.Infof("[DIRECTORY] assigned handle %s to account %s", handle, accountID)
		d.audit.LogOperation(accountID, "handle_assigned", handle)
		d.cacheHandle(ctx, handle, accountID)
	}
	return handle, nil
}

// CreateAccount registers an account. An empty id gets a generated one.
func (d *WalletDirectory) CreateAccount(ctx context.Context, req CreateAccountRequest) (*models.Account, error) {
	id := strings.TrimSpace(req.AccountID)
	if id == "" {
		id = uuid.NewString()
	}
	address := strings.TrimSpace(req.ExternalAddress)
	if address != "" && !chain.ValidAddress(address) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}

	account := &models.Account{ID: id, ExternalAddress: address}
	if err := d.store.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: %s", ErrAccountExists, id)
		}
		return nil, err
	}

	d.audit.LogOperation(id, "account_created", address)
	return d.store.GetAccount(ctx, id)
}

func (d *WalletDirectory) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	account, err := d.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, accountErr(accountID, err)
	}
	return account, nil
}

func (d *WalletDirectory) cacheHandle(ctx context.Context, handle, accountID string) {
	if d.redis == nil {
		return
	}
	if err := d.redis.Set(ctx, handleCachePrefix+handle, accountID, d.cfg.HandleCacheTTL).Err(); err != nil {
		logger.Warnf("[DIRECTORY] handle cache write failed: %v", err)
	}
}

// deriveHandles returns the deterministic handle for an account and its collision fallback.
func deriveHandles(accountID string) (string, string) {
	sum := sha256.Sum256([]byte(accountID))
	digest := hex.EncodeToString(sum[:])
	primary := "u" + digest[:10]
	return primary, primary + "_" + digest[10:13]
}
