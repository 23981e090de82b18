package worklist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/potlako/follow/internal/platform/db"
	"github.com/potlako/follow/internal/platform/query"
)

type workListRepoPG struct {
	pool  *pgxpool.Pool
	table string
}

// NewRepoPG returns the Postgres repository for kind's table.
func NewRepoPG(pool *pgxpool.Pool, kind Kind) Repository {
	return &workListRepoPG{pool: pool, table: kind.Table}
}

func (r *workListRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

func (r *workListRepoPG) Create(ctx context.Context, w *WorkList) error {
	_, err := r.conn(ctx).Exec(ctx, query.InsertSQL(query.Postgres, r.table, columns), values(w)...)
	if err != nil {
		return fmt.Errorf("insert %s: %w", r.table, err)
	}
	return nil
}

func (r *workListRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*WorkList, error) {
	w, err := scanWorkList(r.conn(ctx).QueryRow(ctx,
		"SELECT "+strings.Join(columns, ", ")+" FROM "+r.table+" WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return w, err
}

func (r *workListRepoPG) Update(ctx context.Context, w *WorkList) error {
	vals := values(w)
	tag, err := r.conn(ctx).Exec(ctx, query.UpdateSQL(query.Postgres, r.table, columns[1:], "id"), append(vals[1:], w.ID)...)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.table, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *workListRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, "DELETE FROM "+r.table+" WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.table, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *workListRepoPG) Search(ctx context.Context, params SearchParams, limit, offset int) ([]*WorkList, int, error) {
	q := query.NewSearchQuery(query.Postgres, r.table, strings.Join(columns, ", "))
	if err := applySearch(q, params); err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.conn(ctx).QueryRow(ctx, q.CountSQL(), q.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", r.table, err)
	}
	rows, err := r.conn(ctx).Query(ctx, q.DataSQL(), q.DataArgs(limit, offset)...)
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

func (r *workListRepoPG) ListSubjects(ctx context.Context) ([]string, error) {
	rows, err := r.conn(ctx).Query(ctx, "SELECT DISTINCT subject_identifier FROM "+r.table+" ORDER BY subject_identifier")
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

func (r *workListRepoPG) DeleteBySubject(ctx context.Context, subjectIdentifier string) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, "DELETE FROM "+r.table+" WHERE subject_identifier = $1", subjectIdentifier)
	if err != nil {
		return 0, fmt.Errorf("delete %s for %s: %w", r.table, subjectIdentifier, err)
	}
	return tag.RowsAffected(), nil
}

func (r *workListRepoPG) Exists(ctx context.Context, subjectIdentifier string, day time.Time, excludeID uuid.UUID) (bool, error) {
	stmt, args := existsQuery(query.Postgres, r.table, subjectIdentifier, day, excludeID)
	var n int
	if err := r.conn(ctx).QueryRow(ctx, stmt, args...).Scan(&n); err != nil {
		return false, fmt.Errorf("check %s: %w", r.table, err)
	}
	return n > 0, nil
}
