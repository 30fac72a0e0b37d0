package audit

import (
	"encoding/json"
	"time"

	"github.com/zarwallet/backend/internal/logger"
)

type AuditEvent struct {
	Timestamp time.Time `json:"timestamp"`
	EventType string    `json:"event_type"`
	EventID   string    `json:"event_id,omitempty"`
	EntryID   string    `json:"entry_id,omitempty"`
	AccountID string    `json:"account_id"`
	Amount    string    `json:"amount,omitempty"`
	Asset     string    `json:"asset,omitempty"`
	Status    string    `json:"status"`
	Details   any       `json:"details,omitempty"`
}

// AuditLogger writes the audit trail. It never fails the caller: an event that cannot be
// encoded is logged as a warning and dropped.
type AuditLogger struct{}

func NewAuditLogger() *AuditLogger {
	return &AuditLogger{}
}

func (a *AuditLogger) LogEntryApplied(eventID, entryID, accountID, amount, asset, kind string) {
	a.log(AuditEvent{
		Timestamp: time.Now(),
		EventType: "ENTRY_APPLIED",
		EventID:   eventID,
		EntryID:   entryID,
		AccountID: accountID,
		Amount:    amount,
		Asset:     asset,
		Status:    "SUCCESS",
		Details:   map[string]string{"kind": kind},
	})
}

func (a *AuditLogger) LogEntryReplayed(eventID, entryID, accountID string) {
	a.log(AuditEvent{
		Timestamp: time.Now(),
		EventType: "ENTRY_REPLAYED",
		EventID:   eventID,
		EntryID:   entryID,
		AccountID: accountID,
		Status:    "IDEMPOTENT",
	})
}

func (a *AuditLogger) LogError(eventID, accountID string, err error) {
	a.log(AuditEvent{
		Timestamp: time.Now(),
		EventType: "ERROR",
		EventID:   eventID,
		AccountID: accountID,
		Status:    "FAILED",
		Details:   map[string]string{"error": err.Error()},
	})
}

func (a *AuditLogger) LogDrift(accountID, asset string, report any) {
	a.log(AuditEvent{
		Timestamp: time.Now(),
		EventType: "DRIFT_DETECTED",
		AccountID: accountID,
		Asset:     asset,
		Status:    "ATTENTION",
		Details:   report,
	})
}

func (a *AuditLogger) LogOperation(accountID, operation, details string) {
	a.log(AuditEvent{
		Timestamp: time.Now(),
		EventType: operation,
		AccountID: accountID,
		Status:    "SUCCESS",
		Details:   map[string]string{"details": details},
	})
}

func (a *AuditLogger) log(event AuditEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Warnf("[AUDIT] dropping %s event for account %s: %v", event.EventType, event.AccountID, err)
		return
	}
	logger.Infof("AUDIT: %s", string(data))
}
