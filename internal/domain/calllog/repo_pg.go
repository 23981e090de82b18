package calllog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/potlako/follow/internal/platform/db"
	"github.com/potlako/follow/internal/platform/query"
)

func selectByID(d query.Dialect, table string, cols []string) string {
	return fmt.Sprintf("SELECT %s FROM %s WHERE id = %s", strings.Join(cols, ", "), table, d.Placeholders(1, 1))
}

// -- Call --

type callRepoPG struct{ pool *pgxpool.Pool }

func NewCallRepoPG(pool *pgxpool.Pool) CallRepository {
	return &callRepoPG{pool: pool}
}

func (r *callRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

func (r *callRepoPG) Create(ctx context.Context, c *Call) error {
	_, err := r.conn(ctx).Exec(ctx, query.InsertSQL(query.Postgres, "call", callColumns), callValues(c)...)
	if err != nil {
		return fmt.Errorf("insert call: %w", err)
	}
	return nil
}

func (r *callRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Call, error) {
	c, err := scanCall(r.conn(ctx).QueryRow(ctx, selectByID(query.Postgres, "call", callColumns), id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

func (r *callRepoPG) Update(ctx context.Context, c *Call) error {
	vals := callValues(c)
	tag, err := r.conn(ctx).Exec(ctx, query.UpdateSQL(query.Postgres, "call", callColumns[1:], "id"), append(vals[1:], c.ID)...)
	if err != nil {
		return fmt.Errorf("update call: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *callRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM call WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete call: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *callRepoPG) Search(ctx context.Context, params SearchParams, limit, offset int) ([]*Call, int, error) {
	q := query.NewSearchQuery(query.Postgres, "call", strings.Join(callColumns, ", "))
	if err := applySearch(q, "call", params); err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.conn(ctx).QueryRow(ctx, q.CountSQL(), q.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count calls: %w", err)
	}
	rows, err := r.conn(ctx).Query(ctx, q.DataSQL(), q.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("search calls: %w", err)
	}
	defer rows.Close()
	var items []*Call
	for rows.Next() {
		c, err := scanCall(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}

// -- Log --

type logRepoPG struct{ pool *pgxpool.Pool }

func NewLogRepoPG(pool *pgxpool.Pool) LogRepository {
	return &logRepoPG{pool: pool}
}

func (r *logRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

func (r *logRepoPG) Create(ctx context.Context, l *Log) error {
	_, err := r.conn(ctx).Exec(ctx, query.InsertSQL(query.Postgres, "log", logColumns), logValues(l)...)
	if err != nil {
		return fmt.Errorf("insert log: %w", err)
	}
	return nil
}

func (r *logRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Log, error) {
	l, err := scanLog(r.conn(ctx).QueryRow(ctx, selectByID(query.Postgres, "log", logColumns), id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return l, err
}

func (r *logRepoPG) Update(ctx context.Context, l *Log) error {
	vals := logValues(l)
	tag, err := r.conn(ctx).Exec(ctx, query.UpdateSQL(query.Postgres, "log", logColumns[1:], "id"), append(vals[1:], l.ID)...)
	if err != nil {
		return fmt.Errorf("update log: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *logRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM log WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete log: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *logRepoPG) Search(ctx context.Context, params SearchParams, limit, offset int) ([]*Log, int, error) {
	q := query.NewSearchQuery(query.Postgres, "log", strings.Join(logColumns, ", "))
	if err := applySearch(q, "log", params); err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.conn(ctx).QueryRow(ctx, q.CountSQL(), q.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count logs: %w", err)
	}
	rows, err := r.conn(ctx).Query(ctx, q.DataSQL(), q.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("search logs: %w", err)
	}
	defer rows.Close()
	var items []*Log
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, l)
	}
	return items, total, rows.Err()
}

// -- LogEntry --

type logEntryRepoPG struct{ pool *pgxpool.Pool }

func NewLogEntryRepoPG(pool *pgxpool.Pool) LogEntryRepository {
	return &logEntryRepoPG{pool: pool}
}

func (r *logEntryRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

func scanLogEntryPG(row rowScanner) (*LogEntry, error) {
	var e LogEntry
	if err := row.Scan(logEntryDest(&e, &e.PhoneNumType, &e.PhoneNumSuccess)...); err != nil {
		return nil, err
	}
	return &e, nil
}

// phone_num_type and phone_num_success are JSONB; pgx encodes []string as a
// JSON array for them.
func (r *logEntryRepoPG) Create(ctx context.Context, e *LogEntry) error {
	_, err := r.conn(ctx).Exec(ctx, query.InsertSQL(query.Postgres, "log_entry", logEntryColumns),
		logEntryValues(e, e.PhoneNumType, e.PhoneNumSuccess)...)
	if err != nil {
		return fmt.Errorf("insert log entry: %w", err)
	}
	return nil
}

func (r *logEntryRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*LogEntry, error) {
	e, err := scanLogEntryPG(r.conn(ctx).QueryRow(ctx, selectByID(query.Postgres, "log_entry", logEntryColumns), id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

func (r *logEntryRepoPG) Update(ctx context.Context, e *LogEntry) error {
	vals := logEntryValues(e, e.PhoneNumType, e.PhoneNumSuccess)
	tag, err := r.conn(ctx).Exec(ctx, query.UpdateSQL(query.Postgres, "log_entry", logEntryColumns[1:], "id"), append(vals[1:], e.ID)...)
	if err != nil {
		return fmt.Errorf("update log entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *logEntryRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM log_entry WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete log entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *logEntryRepoPG) Search(ctx context.Context, params SearchParams, limit, offset int) ([]*LogEntry, int, error) {
	q := query.NewSearchQuery(query.Postgres, "log_entry", strings.Join(logEntryColumns, ", "))
	if err := applySearch(q, "log_entry", params); err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.conn(ctx).QueryRow(ctx, q.CountSQL(), q.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count log entries: %w", err)
	}
	rows, err := r.conn(ctx).Query(ctx, q.DataSQL(), q.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("search log entries: %w", err)
	}
	defer rows.Close()
	var items []*LogEntry
	for rows.Next() {
		e, err := scanLogEntryPG(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}
