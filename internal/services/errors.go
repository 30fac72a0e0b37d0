package services

import "errors"

var (
	ErrInvalidEntry          = errors.New("invalid journal entry")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrAccountNotFound       = errors.New("account not found")
	ErrAccountExists         = errors.New("account already exists")
	ErrTransactionConflict   = errors.New("transaction conflict, retry later")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInvalidHandleFormat   = errors.New("handle must be 3-15 characters of a-z, 0-9 or _")
	ErrHandleNotFound        = errors.New("handle not found")
	ErrHandleUnavailable     = errors.New("no free handle could be assigned")
	ErrNoExternalAddress     = errors.New("account has no external address")
	ErrInvalidAddress        = errors.New("invalid external address")
	ErrSelfTransfer          = errors.New("cannot transfer to the same account")
	ErrOracleUnavailable     = errors.New("balance oracle unavailable")
	ErrCorrectionNotPossible = errors.New("stored balance and journal disagree; investigate manually")
	ErrBalanceChanged        = errors.New("balance changed since it was read")
)
