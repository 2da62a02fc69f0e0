package repository

import (
	"context"

	"github.com/joseph-ayodele/lease-extractor/constants"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS extractions (
		id            TEXT PRIMARY KEY,
		request_id    TEXT NOT NULL DEFAULT '',
		created_at    TEXT NOT NULL,
		provider      TEXT NOT NULL,
		model         TEXT NOT NULL,
		parse_mode    TEXT NOT NULL,
		input_text    TEXT NOT NULL,
		raw_output    TEXT NOT NULL DEFAULT '',
		record        TEXT NOT NULL,
		error_message TEXT,
		elapsed_ms    INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS extractions_created_at_idx ON extractions (created_at)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS extractions (
		id            UUID PRIMARY KEY,
		request_id    TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL,
		provider      TEXT NOT NULL,
		model         TEXT NOT NULL,
		parse_mode    TEXT NOT NULL,
		input_text    TEXT NOT NULL,
		raw_output    TEXT NOT NULL DEFAULT '',
		record        JSONB NOT NULL,
		error_message TEXT,
		elapsed_ms    BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS extractions_created_at_idx ON extractions (created_at)`,
}

func migrate(ctx context.Context, db *DB) error {
	stmts := sqliteSchema
	if db.Dialect == constants.HistoryPostgres {
		stmts = postgresSchema
	}
	for _, s := range stmts {
		if _, err := db.SQL.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
