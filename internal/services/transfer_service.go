package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/zarwallet/backend/internal/config"
	"github.com/zarwallet/backend/internal/logger"
	"github.com/zarwallet/backend/internal/models"
)

// TransferRequest moves funds between two custodial accounts. Reference is the caller's
// idempotency key; resubmitting it returns the original transfer.
type TransferRequest struct {
	Reference     string          `json:"reference" validate:"required,max=64"`
	FromAccountID string          `json:"fromAccountId" validate:"required"`
	ToHandle      string          `json:"toHandle,omitempty" validate:"required_without=ToAccountID"`
	ToAccountID   string          `json:"toAccountId,omitempty"`
	Amount        string          `json:"amount" validate:"required"`
	Asset         string          `json:"asset,omitempty"`
	Memo          string          `json:"memo,omitempty" validate:"max=140"`
	Metadata      models.Metadata `json:"metadata,omitempty"`
}

type TransferResult struct {
	Reference   string      `json:"reference"`
	ToAccountID string      `json:"toAccountId"`
	Debit       ApplyResult `json:"debit"`
	Credit      ApplyResult `json:"credit"`
}

type TransferService struct {
	ledger    *LedgerService
	directory *WalletDirectory
	cfg       *config.LedgerConfig
}

func NewTransferService(ledger *LedgerService, directory *WalletDirectory, cfg *config.LedgerConfig) *TransferService {
	return &TransferService{ledger: ledger, directory: directory, cfg: cfg}
}

// Transfer debits the sender and credits the recipient in one transaction.
func (s *TransferService) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	reference := strings.TrimSpace(req.Reference)
	if reference == "" {
		return nil, fmt.Errorf("%w: reference is required", ErrInvalidEntry)
	}
	amount, err := ParseAmount(req.Amount, s.cfg.AssetDecimals)
	if err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: transfer amount must be positive", ErrInvalidAmount)
	}
	asset := strings.ToUpper(strings.TrimSpace(req.Asset))
	if asset == "" {
		asset = s.cfg.Asset
	}

	toAccountID := strings.TrimSpace(req.ToAccountID)
	toHandle := ""
	if req.ToHandle != "" {
		if toAccountID, toHandle, err = s.directory.LookupHandle(ctx, req.ToHandle); err != nil {
			return nil, err
		}
	}
	if toAccountID == "" {
		return nil, fmt.Errorf("%w: recipient is required", ErrInvalidEntry)
	}
	if toAccountID == req.FromAccountID {
		return nil, ErrSelfTransfer
	}

	txID := "transfer:" + reference
	debitIdx, creditIdx := 0, 1
	metadata := models.Metadata{"reference": reference, "counterparty": toAccountID}
	if req.Memo != "" {
		metadata["memo"] = req.Memo
	}
	for k, v := range req.Metadata {
		if _, ok := metadata[k]; !ok {
			metadata[k] = v
		}
	}
	creditMeta := models.Metadata{"reference": reference, "counterparty": req.FromAccountID}
	if req.Memo != "" {
		creditMeta["memo"] = req.Memo
	}

	results, err := s.ledger.ApplyEntries(ctx, []EntryRequest{
		{
			Kind:         models.KindInternalTransferDebit,
			ExternalTxID: txID,
			LogIndex:     &debitIdx,
			AccountID:    req.FromAccountID,
			Amount:       amount.Neg().String(),
			Asset:        asset,
			Metadata:     metadata,
		},
		{
			Kind:         models.KindInternalTransferCredit,
			ExternalTxID: txID,
			LogIndex:     &creditIdx,
			AccountID:    toAccountID,
			Handle:       toHandle,
			Amount:       amount.String(),
			Asset:        asset,
			Metadata:     creditMeta,
		},
	}, RequireSufficientBalance())
	if err != nil {
		return nil, err
	}

	logger.Infof("[TRANSFER] %s: %s %s from %s to %s", reference, amount.StringFixed(s.cfg.AssetDecimals),
		asset, req.FromAccountID, toAccountID)
	return &TransferResult{
		Reference:   reference,
		ToAccountID: toAccountID,
		Debit:       results[0],
		Credit:      results[1],
	}, nil
}
