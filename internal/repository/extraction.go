package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/lease-extractor/constants"
	"github.com/joseph-ayodele/lease-extractor/internal/common"
	"github.com/joseph-ayodele/lease-extractor/internal/entity"
)

// sqliteTimeLayout is fixed width so lexical order matches time order.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// ListFilter bounds a history query. From is inclusive, To exclusive.
type ListFilter struct {
	From  *time.Time
	To    *time.Time
	Limit int
}

type ExtractionRepository interface {
	Save(ctx context.Context, e *entity.Extraction) error
	Get(ctx context.Context, id uuid.UUID) (*entity.Extraction, error)
	List(ctx context.Context, f ListFilter) ([]*entity.Extraction, error)
}

type extractionRepo struct {
	db  *DB
	log *slog.Logger
}

func NewExtractionRepository(db *DB, log *slog.Logger) ExtractionRepository {
	if log == nil {
		log = slog.Default()
	}
	return &extractionRepo{db: db, log: log}
}

const extractionsTable = "extractions"

var extractionColumns = []string{
	"id", "request_id", "created_at", "provider", "model", "parse_mode",
	"input_text", "raw_output", "record", "error_message", "elapsed_ms",
}

func (r *extractionRepo) Save(ctx context.Context, e *entity.Extraction) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.CreatedAt = e.CreatedAt.UTC()

	rec, err := json.Marshal(e.Record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	var errMsg sql.NullString
	if e.ErrorMessage != nil {
		errMsg = sql.NullString{String: *e.ErrorMessage, Valid: true}
	}

	q, args := entsql.Dialect(entDialect(r.db.Dialect)).
		Insert(extractionsTable).
		Columns(extractionColumns...).
		Values(
			e.ID.String(), e.RequestID, timeArg(r.db.Dialect, e.CreatedAt), e.Provider, e.Model, e.ParseMode,
			e.InputText, e.RawOutput, string(rec), errMsg, e.ElapsedMs,
		).
		Query()
	_, err = r.db.Driver.ExecContext(ctx, q, args...)
	if err != nil {
		r.log.Error("extraction save failed", "id", e.ID, "err", err)
		return common.NewAppError("DB_ERROR", "save extraction", errors.Join(common.ErrDatabase, err))
	}
	r.log.Debug("extraction saved", "id", e.ID, "parse_mode", e.ParseMode)
	return nil
}

func (r *extractionRepo) Get(ctx context.Context, id uuid.UUID) (*entity.Extraction, error) {
	q, args := entsql.Dialect(entDialect(r.db.Dialect)).
		Select(extractionColumns...).
		From(entsql.Table(extractionsTable)).
		Where(entsql.EQ("id", id.String())).
		Query()

	rows, err := r.db.Driver.QueryContext(ctx, q, args...)
	if err != nil {
		r.log.Error("extraction get failed", "id", id, "err", err)
		return nil, common.NewAppError("DB_ERROR", "get extraction", errors.Join(common.ErrDatabase, err))
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, common.NewAppError("DB_ERROR", "get extraction", errors.Join(common.ErrDatabase, err))
		}
		return nil, common.NotFoundError("extraction not found")
	}
	e, err := scanExtraction(rows)
	if err != nil {
		r.log.Error("extraction scan failed", "id", id, "err", err)
		return nil, common.NewAppError("DB_ERROR", "get extraction", errors.Join(common.ErrDatabase, err))
	}
	return e, nil
}

// List returns extractions newest first.
func (r *extractionRepo) List(ctx context.Context, f ListFilter) ([]*entity.Extraction, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	q, args := listQuery(r.db.Dialect, f, limit)
	rows, err := r.db.Driver.QueryContext(ctx, q, args...)
	if err != nil {
		r.log.Error("extraction list failed", "err", err)
		return nil, common.NewAppError("DB_ERROR", "list extractions", errors.Join(common.ErrDatabase, err))
	}
	defer rows.Close()

	out := make([]*entity.Extraction, 0, limit)
	for rows.Next() {
		e, err := scanExtraction(rows)
		if err != nil {
			return nil, common.NewAppError("DB_ERROR", "scan extraction", errors.Join(common.ErrDatabase, err))
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewAppError("DB_ERROR", "list extractions", errors.Join(common.ErrDatabase, err))
	}
	return out, nil
}

// listQuery selects newest first within [From, To).
func listQuery(d constants.HistoryDriver, f ListFilter, limit int) (string, []any) {
	sel := entsql.Dialect(entDialect(d)).
		Select(extractionColumns...).
		From(entsql.Table(extractionsTable))
	if f.From != nil {
		sel.Where(entsql.GTE("created_at", timeArg(d, *f.From)))
	}
	if f.To != nil {
		sel.Where(entsql.LT("created_at", timeArg(d, *f.To)))
	}
	return sel.OrderBy(entsql.Desc("created_at")).Limit(limit).Query()
}

func timeArg(d constants.HistoryDriver, t time.Time) any {
	if d == constants.HistoryPostgres {
		return t.UTC()
	}
	return t.UTC().Format(sqliteTimeLayout)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExtraction(s scanner) (*entity.Extraction, error) {
	var (
		e         entity.Extraction
		id        string
		createdAt any
		record    []byte
		errMsg    sql.NullString
	)
	if err := s.Scan(&id, &e.RequestID, &createdAt, &e.Provider, &e.Model, &e.ParseMode,
		&e.InputText, &e.RawOutput, &record, &errMsg, &e.ElapsedMs); err != nil {
		return nil, err
	}

	var err error
	if e.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse id: %w", err)
	}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(record, &e.Record); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	if errMsg.Valid {
		e.ErrorMessage = &errMsg.String
	}
	return &e, nil
}

func parseTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		return time.Parse(sqliteTimeLayout, t)
	case []byte:
		return time.Parse(sqliteTimeLayout, string(t))
	default:
		return time.Time{}, fmt.Errorf("unexpected created_at type %T", v)
	}
}
