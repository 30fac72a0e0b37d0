package store

// Schema is applied by Migrate. Journal rows are append-only: a trigger rejects UPDATE and DELETE.
const Schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id               TEXT PRIMARY KEY,
	handle           TEXT UNIQUE,
	external_address TEXT,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS account_balances (
	account_id TEXT NOT NULL REFERENCES accounts(id),
	asset      TEXT NOT NULL,
	balance    NUMERIC(38,6) NOT NULL DEFAULT 0,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (account_id, asset)
);

CREATE TABLE IF NOT EXISTS journal_entries (
	id                TEXT PRIMARY KEY,
	event_id          TEXT NOT NULL UNIQUE,
	kind              TEXT NOT NULL,
	external_tx_id    TEXT,
	log_index         BIGINT,
	block             BIGINT,
	occurred_at       TIMESTAMPTZ NOT NULL,
	account_id        TEXT NOT NULL REFERENCES accounts(id),
	handle            TEXT,
	amount            NUMERIC(38,6) NOT NULL,
	asset             TEXT NOT NULL,
	metadata          JSONB NOT NULL DEFAULT '{}',
	resulting_balance NUMERIC(38,6) NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	seq               BIGSERIAL NOT NULL
);

ALTER TABLE journal_entries ADD COLUMN IF NOT EXISTS seq BIGSERIAL NOT NULL;
ALTER TABLE journal_entries ALTER COLUMN log_index TYPE BIGINT;

CREATE INDEX IF NOT EXISTS idx_journal_account_asset_seq ON journal_entries (account_id, asset, seq);

CREATE TABLE IF NOT EXISTS journal_event_index (
	event_id   TEXT PRIMARY KEY,
	entry_id   TEXT NOT NULL REFERENCES journal_entries(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS handles (
	handle     TEXT PRIMARY KEY,
	account_id TEXT NOT NULL UNIQUE REFERENCES accounts(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE OR REPLACE FUNCTION journal_entries_append_only() RETURNS trigger AS $$
BEGIN
	RAISE EXCEPTION 'journal_entries is append-only';
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS trg_journal_entries_append_only ON journal_entries;
CREATE TRIGGER trg_journal_entries_append_only
	BEFORE UPDATE OR DELETE ON journal_entries
	FOR EACH ROW EXECUTE FUNCTION journal_entries_append_only();
`
