package calllog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/potlako/follow/internal/platform/query"
	"github.com/potlako/follow/internal/platform/sqlitedb"
)

func rowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// -- Call --

type callRepoSQLite struct{ db *sql.DB }

func NewCallRepoSQLite(db *sql.DB) CallRepository {
	return &callRepoSQLite{db: db}
}

func (r *callRepoSQLite) conn(ctx context.Context) sqlitedb.Queryable {
	return sqlitedb.Conn(ctx, r.db)
}

func (r *callRepoSQLite) Create(ctx context.Context, c *Call) error {
	_, err := r.conn(ctx).ExecContext(ctx, query.InsertSQL(query.SQLite, "call", callColumns), callValues(c)...)
	if err != nil {
		return fmt.Errorf("insert call: %w", err)
	}
	return nil
}

func (r *callRepoSQLite) GetByID(ctx context.Context, id uuid.UUID) (*Call, error) {
	c, err := scanCall(r.conn(ctx).QueryRowContext(ctx, selectByID(query.SQLite, "call", callColumns), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

func (r *callRepoSQLite) Update(ctx context.Context, c *Call) error {
	vals := callValues(c)
	res, err := r.conn(ctx).ExecContext(ctx, query.UpdateSQL(query.SQLite, "call", callColumns[1:], "id"), append(vals[1:], c.ID)...)
	if err != nil {
		return fmt.Errorf("update call: %w", err)
	}
	return rowsAffected(res)
}

func (r *callRepoSQLite) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.conn(ctx).ExecContext(ctx, `DELETE FROM call WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete call: %w", err)
	}
	return rowsAffected(res)
}

func (r *callRepoSQLite) Search(ctx context.Context, params SearchParams, limit, offset int) ([]*Call, int, error) {
	q := query.NewSearchQuery(query.SQLite, "call", strings.Join(callColumns, ", "))
	if err := applySearch(q, "call", params); err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.conn(ctx).QueryRowContext(ctx, q.CountSQL(), q.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count calls: %w", err)
	}
	rows, err := r.conn(ctx).QueryContext(ctx, q.DataSQL(), q.DataArgs(limit, offset)...)
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

type logRepoSQLite struct{ db *sql.DB }

func NewLogRepoSQLite(db *sql.DB) LogRepository {
	return &logRepoSQLite{db: db}
}

func (r *logRepoSQLite) conn(ctx context.Context) sqlitedb.Queryable {
	return sqlitedb.Conn(ctx, r.db)
}

func (r *logRepoSQLite) Create(ctx context.Context, l *Log) error {
	_, err := r.conn(ctx).ExecContext(ctx, query.InsertSQL(query.SQLite, "log", logColumns), logValues(l)...)
	if err != nil {
		return fmt.Errorf("insert log: %w", err)
	}
	return nil
}

func (r *logRepoSQLite) GetByID(ctx context.Context, id uuid.UUID) (*Log, error) {
	l, err := scanLog(r.conn(ctx).QueryRowContext(ctx, selectByID(query.SQLite, "log", logColumns), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return l, err
}

func (r *logRepoSQLite) Update(ctx context.Context, l *Log) error {
	vals := logValues(l)
	res, err := r.conn(ctx).ExecContext(ctx, query.UpdateSQL(query.SQLite, "log", logColumns[1:], "id"), append(vals[1:], l.ID)...)
	if err != nil {
		return fmt.Errorf("update log: %w", err)
	}
	return rowsAffected(res)
}

func (r *logRepoSQLite) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.conn(ctx).ExecContext(ctx, `DELETE FROM log WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete log: %w", err)
	}
	return rowsAffected(res)
}

func (r *logRepoSQLite) Search(ctx context.Context, params SearchParams, limit, offset int) ([]*Log, int, error) {
	q := query.NewSearchQuery(query.SQLite, "log", strings.Join(logColumns, ", "))
	if err := applySearch(q, "log", params); err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.conn(ctx).QueryRowContext(ctx, q.CountSQL(), q.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count logs: %w", err)
	}
	rows, err := r.conn(ctx).QueryContext(ctx, q.DataSQL(), q.DataArgs(limit, offset)...)
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

type logEntryRepoSQLite struct{ db *sql.DB }

func NewLogEntryRepoSQLite(db *sql.DB) LogEntryRepository {
	return &logEntryRepoSQLite{db: db}
}

func (r *logEntryRepoSQLite) conn(ctx context.Context) sqlitedb.Queryable {
	return sqlitedb.Conn(ctx, r.db)
}

// Multi-select columns are stored as JSON text.
func encodeList(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	return string(b), err
}

func decodeList(s string) ([]string, error) {
	out := []string{}
	if s == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("decode multi-select %q: %w", s, err)
	}
	return out, nil
}

func (r *logEntryRepoSQLite) values(e *LogEntry) ([]interface{}, error) {
	numType, err := encodeList(e.PhoneNumType)
	if err != nil {
		return nil, err
	}
	numSuccess, err := encodeList(e.PhoneNumSuccess)
	if err != nil {
		return nil, err
	}
	return logEntryValues(e, numType, numSuccess), nil
}

func scanLogEntrySQLite(row rowScanner) (*LogEntry, error) {
	var (
		e                   LogEntry
		numType, numSuccess string
		err                 error
	)
	if err = row.Scan(logEntryDest(&e, &numType, &numSuccess)...); err != nil {
		return nil, err
	}
	if e.PhoneNumType, err = decodeList(numType); err != nil {
		return nil, err
	}
	if e.PhoneNumSuccess, err = decodeList(numSuccess); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *logEntryRepoSQLite) Create(ctx context.Context, e *LogEntry) error {
	vals, err := r.values(e)
	if err != nil {
		return err
	}
	if _, err := r.conn(ctx).ExecContext(ctx, query.InsertSQL(query.SQLite, "log_entry", logEntryColumns), vals...); err != nil {
		return fmt.Errorf("insert log entry: %w", err)
	}
	return nil
}

func (r *logEntryRepoSQLite) GetByID(ctx context.Context, id uuid.UUID) (*LogEntry, error) {
	e, err := scanLogEntrySQLite(r.conn(ctx).QueryRowContext(ctx, selectByID(query.SQLite, "log_entry", logEntryColumns), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

func (r *logEntryRepoSQLite) Update(ctx context.Context, e *LogEntry) error {
	vals, err := r.values(e)
	if err != nil {
		return err
	}
	res, err := r.conn(ctx).ExecContext(ctx, query.UpdateSQL(query.SQLite, "log_entry", logEntryColumns[1:], "id"), append(vals[1:], e.ID)...)
	if err != nil {
		return fmt.Errorf("update log entry: %w", err)
	}
	return rowsAffected(res)
}

func (r *logEntryRepoSQLite) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.conn(ctx).ExecContext(ctx, `DELETE FROM log_entry WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete log entry: %w", err)
	}
	return rowsAffected(res)
}

func (r *logEntryRepoSQLite) Search(ctx context.Context, params SearchParams, limit, offset int) ([]*LogEntry, int, error) {
	q := query.NewSearchQuery(query.SQLite, "log_entry", strings.Join(logEntryColumns, ", "))
	if err := applySearch(q, "log_entry", params); err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.conn(ctx).QueryRowContext(ctx, q.CountSQL(), q.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count log entries: %w", err)
	}
	rows, err := r.conn(ctx).QueryContext(ctx, q.DataSQL(), q.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("search log entries: %w", err)
	}
	defer rows.Close()
	var items []*LogEntry
	for rows.Next() {
		e, err := scanLogEntrySQLite(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}
