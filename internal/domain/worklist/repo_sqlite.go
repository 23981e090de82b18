package worklist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/potlako/follow/internal/platform/query"
	"github.com/potlako/follow/internal/platform/sqlitedb"
)

type workListRepoSQLite struct {
	db    *sql.DB
	table string
}

// NewRepoSQLite returns the SQLite repository for kind's table.
func NewRepoSQLite(db *sql.DB, kind Kind) Repository {
	return &workListRepoSQLite{db: db, table: kind.Table}
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *workListRepoSQLite) conn(ctx context.Context) sqlitedb.Queryable {
	return sqlitedb.Conn(ctx, r.db)
}

func (r *workListRepoSQLite) Create(ctx context.Context, w *WorkList) error {
	_, err := r.conn(ctx).ExecContext(ctx, query.InsertSQL(query.SQLite, r.table, columns), values(w)...)
	if err != nil {
		return fmt.Errorf("insert %s: %w", r.table, err)
	}
	return nil
}

func (r *workListRepoSQLite) GetByID(ctx context.Context, id uuid.UUID) (*WorkList, error) {
	w, err := scanWorkList(r.conn(ctx).QueryRowContext(ctx,
		"SELECT "+strings.Join(columns, ", ")+" FROM "+r.table+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return w, err
}

func (r *workListRepoSQLite) Update(ctx context.Context, w *WorkList) error {
	vals := values(w)
	res, err := r.conn(ctx).ExecContext(ctx, query.UpdateSQL(query.SQLite, r.table, columns[1:], "id"), append(vals[1:], w.ID)...)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.table, err)
	}
	return requireRow(res)
}

func (r *workListRepoSQLite) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.conn(ctx).ExecContext(ctx, "DELETE FROM "+r.table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.table, err)
	}
	return requireRow(res)
}

func (r *workListRepoSQLite) Search(ctx context.Context, params SearchParams, limit, offset int) ([]*WorkList, int, error) {
	q := query.NewSearchQuery(query.SQLite, r.table, strings.Join(columns, ", "))
	if err := applySearch(q, params); err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.conn(ctx).QueryRowContext(ctx, q.CountSQL(), q.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", r.table, err)
	}
	rows, err := r.conn(ctx).QueryContext(ctx, q.DataSQL(), q.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("search %s: %w", r.table, err)
	}
	defer rows.Close()
	var items []*WorkList
	for rows.Next() {
		w, err := scanWorkList(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, w)
	}
	return items, total, rows.Err()
}

func (r *workListRepoSQLite) ListSubjects(ctx context.Context) ([]string, error) {
	rows, err := r.conn(ctx).QueryContext(ctx, "SELECT DISTINCT subject_identifier FROM "+r.table+" ORDER BY subject_identifier")
	if err != nil {
		return nil, fmt.Errorf("list %s subjects: %w", r.table, err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *workListRepoSQLite) DeleteBySubject(ctx context.Context, subjectIdentifier string) (int64, error) {
	res, err := r.conn(ctx).ExecContext(ctx, "DELETE FROM "+r.table+" WHERE subject_identifier = ?", subjectIdentifier)
	if err != nil {
		return 0, fmt.Errorf("delete %s for %s: %w", r.table, subjectIdentifier, err)
	}
	return res.RowsAffected()
}

func (r *workListRepoSQLite) Exists(ctx context.Context, subjectIdentifier string, day time.Time, excludeID uuid.UUID) (bool, error) {
	stmt, args := existsQuery(query.SQLite, r.table, subjectIdentifier, day, excludeID)
	var n int
	if err := r.conn(ctx).QueryRowContext(ctx, stmt, args...).Scan(&n); err != nil {
		return false, fmt.Errorf("check %s: %w", r.table, err)
	}
	return n > 0, nil
}
