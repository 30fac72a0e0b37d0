package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/zarwallet/backend/internal/audit"
	"github.com/zarwallet/backend/internal/config"
	"github.com/zarwallet/backend/internal/logger"
	"github.com/zarwallet/backend/internal/models"
	"github.com/zarwallet/backend/internal/store"
)

// BalanceOracle reports the authoritative external balance of an address in asset units.
type BalanceOracle interface {
	Balance(ctx context.Context, address string) (decimal.Decimal, error)
}

type CorrectionResult struct {
	Report *models.ReconciliationReport `json:"report"`
	// Entry is nil when the stored balance already matched the chain.
	Entry *ApplyResult `json:"entry,omitempty"`
}

type ReconciliationService struct {
	store  store.Store
	oracle BalanceOracle
	ledger *LedgerService
	redis  *redis.Client
	audit  *audit.AuditLogger
	cfg    *config.LedgerConfig
	now    func() time.Time
}

func NewReconciliationService(st store.Store, oracle BalanceOracle, ledger *LedgerService, rdb *redis.Client, cfg *config.LedgerConfig) *ReconciliationService {
	return &ReconciliationService{
		store:  st,
		oracle: oracle,
		ledger: ledger,
		redis:  rdb,
		audit:  audit.NewAuditLogger(),
		cfg:    cfg,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

type balanceViews struct {
	onChain decimal.Decimal
	stored  decimal.Decimal
	journal decimal.Decimal
}

// Reconcile compares the on-chain, stored and journal-derived balances of an account.
// It never writes to the ledger.
func (s *ReconciliationService) Reconcile(ctx context.Context, accountID, asset string) (*models.ReconciliationReport, error) {
	report, _, err := s.reconcile(ctx, accountID, asset)
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *ReconciliationService) reconcile(ctx context.Context, accountID, asset string) (*models.ReconciliationReport, *balanceViews, error) {
	asset, err := s.oracleAsset(asset)
	if err != nil {
		return nil, nil, err
	}

	account, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, nil, accountErr(accountID, err)
	}
	if account.ExternalAddress == "" {
		return nil, nil, fmt.Errorf("%w: %s", ErrNoExternalAddress, accountID)
	}

	var views balanceViews
	views.onChain, err = s.oracle.Balance(ctx, account.ExternalAddress)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}

	// stored balance and journal sum come from one snapshot
	err = withRetry(ctx, s.cfg.TxMaxAttempts, s.cfg.TxRetryBackoff, "reconcile", func() error {
		return s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
			var err error
			if views.stored, err = tx.GetBalance(ctx, accountID, asset); err != nil {
				return err
			}
			views.journal, err = tx.SumJournal(ctx, accountID, asset)
			return err
		})
	})
	if err != nil {
		return nil, nil, err
	}

	d := s.cfg.AssetDecimals
	onChainVsStored := views.onChain.Sub(views.stored)
	onChainVsJournal := views.onChain.Sub(views.journal)
	storedVsJournal := views.stored.Sub(views.journal)

	report := &models.ReconciliationReport{
		AccountID:         accountID,
		Asset:             asset,
		ExternalAddress:   account.ExternalAddress,
		OnChainBalance:    views.onChain.StringFixed(d),
		StoredBalance:     views.stored.StringFixed(d),
		JournalSumBalance: views.journal.StringFixed(d),
		Drift: models.Drift{
			OnChainVsStored:  onChainVsStored.StringFixed(d),
			OnChainVsJournal: onChainVsJournal.StringFixed(d),
			StoredVsJournal:  storedVsJournal.StringFixed(d),
		},
		HasDrift:  s.exceeds(onChainVsStored) || s.exceeds(onChainVsJournal) || s.exceeds(storedVsJournal),
		CheckedAt: s.now(),
	}

	fields := logrus.Fields{
		"account_id": accountID,
		"asset":      asset,
		"on_chain":   report.OnChainBalance,
		"stored":     report.StoredBalance,
		"journal":    report.JournalSumBalance,
	}
	if report.HasDrift {
		logger.WithFields(fields).Warn("[RECONCILE] drift detected")
		s.audit.LogDrift(accountID, asset, report)
		s.publishAlert(ctx, report)
	} else {
		logger.WithFields(fields).Debug("[RECONCILE] balances agree")
	}
	return report, &views, nil
}

// ApplyCorrection brings the stored balance in line with the chain by writing one
// ledger_sync_correction entry. reference makes the correction idempotent.
// A disagreement between the stored balance and the journal cannot be fixed by an entry
// and is refused.
func (s *ReconciliationService) ApplyCorrection(ctx context.Context, accountID, asset, reference string) (*CorrectionResult, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, fmt.Errorf("%w: correction reference is required", ErrInvalidEntry)
	}

	report, views, err := s.reconcile(ctx, accountID, asset)
	if err != nil {
		return nil, err
	}
	if s.exceeds(views.stored.Sub(views.journal)) {
		return nil, fmt.Errorf("%w: account %s stored %s journal %s", ErrCorrectionNotPossible,
			accountID, report.StoredBalance, report.JournalSumBalance)
	}

	delta := views.onChain.Sub(views.stored).Round(s.cfg.AssetDecimals)
	if delta.IsZero() {
		return &CorrectionResult{Report: report}, nil
	}

	entry, err := s.ledger.ApplyEntries(ctx, []EntryRequest{{
		Kind:         models.KindLedgerSyncCorrection,
		ExternalTxID: "correction:" + reference,
		AccountID:    accountID,
		Amount:       delta.StringFixed(s.cfg.AssetDecimals),
		Asset:        report.Asset,
		Metadata: models.Metadata{
			"onChainBalance": report.OnChainBalance,
			"storedBalance":  report.StoredBalance,
			"reference":      reference,
		},
	}}, ExpectBalance(accountID, report.Asset, views.stored))
	if err != nil {
		return nil, err
	}

	logger.Infof("[RECONCILE] correction %s applied to %s: %s %s", reference, accountID,
		delta.StringFixed(s.cfg.AssetDecimals), report.Asset)
	return &CorrectionResult{Report: report, Entry: &entry[0]}, nil
}

// oracleAsset resolves the requested asset. The oracle only reports cfg.Asset, so any
// other asset is rejected before the store or the chain is touched.
func (s *ReconciliationService) oracleAsset(asset string) (string, error) {
	supported := strings.ToUpper(s.cfg.Asset)
	asset = strings.ToUpper(strings.TrimSpace(asset))
	if asset == "" {
		return supported, nil
	}
	if asset != supported {
		return "", fmt.Errorf("%w: reconciliation supports %s only, got %s", ErrInvalidEntry, supported, asset)
	}
	return asset, nil
}

func (s *ReconciliationService) exceeds(diff decimal.Decimal) bool {
	return diff.Abs().GreaterThan(s.cfg.DriftEpsilon)
}

// publishAlert queues the report for the operations worker. Failures are logged only.
func (s *ReconciliationService) publishAlert(ctx context.Context, report *models.ReconciliationReport) {
	if s.redis == nil || s.cfg.AlertQueue == "" {
		return
	}
	payload, err := json.Marshal(report)
	if err != nil {
		logger.Warnf("[RECONCILE] encode alert for %s: %v", report.AccountID, err)
		return
	}
	if err := s.redis.RPush(ctx, s.cfg.AlertQueue, string(payload)).Err(); err != nil {
		logger.Warnf("[RECONCILE] publish alert for %s: %v", report.AccountID, err)
	}
}
