package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/zarwallet/backend/internal/models"
)

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore runs every transaction at SERIALIZABLE isolation and locks the account
// row it reads, so concurrent writers to one account abort instead of interleaving.
type PostgresStore struct {
	db *sql.DB
	pgReader
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:       db,
		pgReader: pgReader{q: db},
	}
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return classify(err)
	}
	defer sqlTx.Rollback()

	tx := &postgresTx{
		tx:     sqlTx,
		reader: pgReader{q: sqlTx, lockAccount: true},
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return classify(err)
	}
	return nil
}

func (s *PostgresStore) CreateAccount(ctx context.Context, account *models.Account) error {
	createdAt := account.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, handle, external_address, created_at)
		VALUES ($1, $2, $3, $4)`,
		account.ID, nullString(account.Handle), nullString(account.ExternalAddress), createdAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("account %s: %w", account.ID, ErrAlreadyExists)
		}
		return err
	}
	return nil
}

// ListJournal returns newest entries first. An empty asset matches every asset.
func (s *PostgresStore) ListJournal(ctx context.Context, accountID, asset string, limit int) ([]models.JournalEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+journalColumns+`
		FROM journal_entries
		WHERE account_id = $1 AND ($2 = '' OR asset = $2)
		ORDER BY seq DESC
		LIMIT $3`,
		accountID, asset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.JournalEntry
	for rows.Next() {
		entry, err := scanJournalEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

const journalColumns = `id, event_id, kind, COALESCE(external_tx_id, ''), log_index, block, occurred_at,
			account_id, COALESCE(handle, ''), amount, asset, metadata, resulting_balance, created_at`

type pgReader struct {
	q           queryer
	lockAccount bool
}

func (r pgReader) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	query := `
		SELECT id, COALESCE(handle, ''), COALESCE(external_address, ''), created_at
		FROM accounts
		WHERE id = $1`
	if r.lockAccount {
		query += `
		FOR UPDATE`
	}

	var acct models.Account
	err := r.q.QueryRowContext(ctx, query, accountID).
		Scan(&acct.ID, &acct.Handle, &acct.ExternalAddress, &acct.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", accountID, ErrNotFound)
	}
	if err != nil {
		return nil, classify(err)
	}
	return &acct, nil
}

func (r pgReader) GetBalance(ctx context.Context, accountID, asset string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.q.QueryRowContext(ctx, `
		SELECT balance
		FROM account_balances
		WHERE account_id = $1 AND asset = $2`,
		accountID, asset).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, classify(err)
	}
	return balance, nil
}

func (r pgReader) GetEventIndex(ctx context.Context, eventID string) (string, error) {
	var entryID string
	err := r.q.QueryRowContext(ctx, `
		SELECT entry_id
		FROM journal_event_index
		WHERE event_id = $1`,
		eventID).Scan(&entryID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("event %s: %w", eventID, ErrNotFound)
	}
	if err != nil {
		return "", classify(err)
	}
	return entryID, nil
}

func (r pgReader) GetJournalEntry(ctx context.Context, entryID string) (*models.JournalEntry, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+journalColumns+`
		FROM journal_entries
		WHERE id = $1`,
		entryID)
	entry, err := scanJournalEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("journal entry %s: %w", entryID, ErrNotFound)
	}
	if err != nil {
		return nil, classify(err)
	}
	return entry, nil
}

func (r pgReader) SumJournal(ctx context.Context, accountID, asset string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.q.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM journal_entries
		WHERE account_id = $1 AND asset = $2`,
		accountID, asset).Scan(&sum)
	if err != nil {
		return decimal.Zero, classify(err)
	}
	return sum, nil
}

func (r pgReader) GetHandle(ctx context.Context, handle string) (string, error) {
	var accountID string
	err := r.q.QueryRowContext(ctx, `
		SELECT account_id
		FROM handles
		WHERE handle = $1`,
		handle).Scan(&accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("handle %s: %w", handle, ErrNotFound)
	}
	if err != nil {
		return "", classify(err)
	}
	return accountID, nil
}

type postgresTx struct {
	phase
	tx     *sql.Tx
	reader pgReader
}

func (t *postgresTx) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	if err := t.read(); err != nil {
		return nil, err
	}
	return t.reader.GetAccount(ctx, accountID)
}

func (t *postgresTx) GetBalance(ctx context.Context, accountID, asset string) (decimal.Decimal, error) {
	if err := t.read(); err != nil {
		return decimal.Zero, err
	}
	return t.reader.GetBalance(ctx, accountID, asset)
}

func (t *postgresTx) GetEventIndex(ctx context.Context, eventID string) (string, error) {
	if err := t.read(); err != nil {
		return "", err
	}
	return t.reader.GetEventIndex(ctx, eventID)
}

func (t *postgresTx) GetJournalEntry(ctx context.Context, entryID string) (*models.JournalEntry, error) {
	if err := t.read(); err != nil {
		return nil, err
	}
	return t.reader.GetJournalEntry(ctx, entryID)
}

func (t *postgresTx) GetHandle(ctx context.Context, handle string) (string, error) {
	if err := t.read(); err != nil {
		return "", err
	}
	return t.reader.GetHandle(ctx, handle)
}

func (t *postgresTx) SumJournal(ctx context.Context, accountID, asset string) (decimal.Decimal, error) {
	if err := t.read(); err != nil {
		return decimal.Zero, err
	}
	return t.reader.SumJournal(ctx, accountID, asset)
}

func (t *postgresTx) InsertJournalEntry(ctx context.Context, e *models.JournalEntry) error {
	t.write()

	metadata := []byte("{}")
	if len(e.Metadata) > 0 {
		var err error
		if metadata, err = json.Marshal(e.Metadata); err != nil {
			return fmt.Errorf("encode metadata: %w", err)
		}
	}

	var logIndex sql.NullInt64
	if e.LogIndex != nil {
		logIndex = sql.NullInt64{Int64: int64(*e.LogIndex), Valid: true}
	}
	var block sql.NullInt64
	if e.Block != nil {
		block = sql.NullInt64{Int64: *e.Block, Valid: true}
	}

	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO journal_entries (id, event_id, kind, external_tx_id, log_index, block, occurred_at,
			account_id, handle, amount, asset, metadata, resulting_balance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		e.ID, e.EventID, string(e.Kind), nullString(e.ExternalTxID), logIndex, block, e.Timestamp,
		e.AccountID, nullString(e.Handle), e.Amount.String(), e.Asset, metadata, e.ResultingBalance.String(), e.CreatedAt)
	return classify(err)
}

func (t *postgresTx) InsertEventIndex(ctx context.Context, eventID, entryID string) error {
	t.write()
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO journal_event_index (event_id, entry_id, created_at)
		VALUES ($1, $2, $3)`,
		eventID, entryID, time.Now().UTC())
	return classify(err)
}

func (t *postgresTx) SetBalance(ctx context.Context, accountID, asset string, balance decimal.Decimal) error {
	t.write()
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO account_balances (account_id, asset, balance, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (account_id, asset)
		DO UPDATE SET balance = EXCLUDED.balance, updated_at = EXCLUDED.updated_at`,
		accountID, asset, balance.String(), time.Now().UTC())
	return classify(err)
}

func (t *postgresTx) InsertHandle(ctx context.Context, handle, accountID string) error {
	t.write()
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO handles (handle, account_id, created_at)
		VALUES ($1, $2, $3)`,
		handle, accountID, time.Now().UTC())
	return classify(err)
}

func (t *postgresTx) SetAccountHandle(ctx context.Context, accountID, handle string) error {
	t.write()
	result, err := t.tx.ExecContext(ctx, `
		UPDATE accounts
		SET handle = $1
		WHERE id = $2 AND handle IS NULL`,
		handle, accountID)
	if err != nil {
		return classify(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("account %s already has a handle: %w", accountID, ErrConflict)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJournalEntry(row rowScanner) (*models.JournalEntry, error) {
	var (
		e        models.JournalEntry
		kind     string
		logIndex sql.NullInt64
		block    sql.NullInt64
		metadata []byte
	)
	err := row.Scan(&e.ID, &e.EventID, &kind, &e.ExternalTxID, &logIndex, &block, &e.Timestamp,
		&e.AccountID, &e.Handle, &e.Amount, &e.Asset, &metadata, &e.ResultingBalance, &e.CreatedAt)
	if err != nil {
		return nil, err
	}

	e.Kind = models.EntryKind(kind)
	if logIndex.Valid {
		idx := int(logIndex.Int64)
		e.LogIndex = &idx
	}
	if block.Valid {
		b := block.Int64
		e.Block = &b
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata for entry %s: %w", e.ID, err)
		}
	}
	return &e, nil
}

// classify maps Postgres serialization failures, deadlocks and unique violations to ErrConflict.
// All three mean a concurrent transaction won; retrying resolves them.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01", "23505":
			return fmt.Errorf("%w: %s", ErrConflict, pqErr.Message)
		}
	}
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
