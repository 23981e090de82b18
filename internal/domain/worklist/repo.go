package worklist

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/potlako/follow/internal/platform/audit"
	"github.com/potlako/follow/internal/platform/query"
)

var ErrNotFound = errors.New("work list not found")

// SearchParams narrows list and listboard queries. Zero values are ignored.
type SearchParams struct {
	Query             string
	SubjectIdentifier string
	Filter            string
	Modified          query.DateHierarchy
}

// Repository stores the rows of one work-list table.
type Repository interface {
	Create(ctx context.Context, w *WorkList) error
	GetByID(ctx context.Context, id uuid.UUID) (*WorkList, error)
	Update(ctx context.Context, w *WorkList) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, params SearchParams, limit, offset int) ([]*WorkList, int, error)
	// ListSubjects returns the distinct subjects that have a row.
	ListSubjects(ctx context.Context) ([]string, error)
	DeleteBySubject(ctx context.Context, subjectIdentifier string) (int64, error)
	// Exists reports whether the subject has another row, on day when day
	// is non-zero.
	Exists(ctx context.Context, subjectIdentifier string, day time.Time, excludeID uuid.UUID) (bool, error)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

var columns = append([]string{
	"id", "subject_identifier", "report_datetime", "is_called", "called_datetime",
	"visited", "village_town",
}, audit.Columns...)

func values(w *WorkList) []interface{} {
	var called *time.Time
	if w.CalledDatetime != nil {
		t := w.CalledDatetime.UTC()
		called = &t
	}
	return append([]interface{}{
		w.ID, w.SubjectIdentifier, w.ReportDatetime.UTC(), w.IsCalled, called,
		w.Visited, w.VillageTown,
	}, w.Fields.Values()...)
}

func scanWorkList(row rowScanner) (*WorkList, error) {
	var w WorkList
	dest := append([]interface{}{
		&w.ID, &w.SubjectIdentifier, &w.ReportDatetime, &w.IsCalled, &w.CalledDatetime,
		&w.Visited, &w.VillageTown,
	}, w.Fields.Dest()...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &w, nil
}

var alphaOnly = regexp.MustCompile(`^[a-zA-Z]+$`)

// applySearch matches q against subject_identifier, and also against
// village_town when q is purely alphabetic.
func applySearch(q *query.SearchQuery, p SearchParams) error {
	if term := strings.TrimSpace(p.Query); term != "" {
		cols := []string{"subject_identifier"}
		if alphaOnly.MatchString(term) {
			cols = append(cols, "village_town")
		}
		q.AddContainsAny(term, cols...)
	}
	if p.SubjectIdentifier != "" {
		q.AddEq("subject_identifier", p.SubjectIdentifier)
	}
	if p.Filter != "" {
		f, ok := filterClauses[p.Filter]
		if !ok {
			return &FilterError{Filter: p.Filter}
		}
		q.AddEq(f.column, f.value)
	}
	q.OrderBy("modified DESC")
	return q.ApplyDateHierarchy("modified", p.Modified)
}

// FilterError reports an unknown listboard filter.
type FilterError struct {
	Filter string
}

func (e *FilterError) Error() string {
	return "unknown filter: " + e.Filter
}

// dayBounds returns the UTC calendar day containing t.
func dayBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	from := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 0, 1)
}

func existsQuery(d query.Dialect, table, subjectIdentifier string, day time.Time, excludeID uuid.UUID) (string, []interface{}) {
	q := query.NewSearchQuery(d, table, "id")
	q.AddEq("subject_identifier", subjectIdentifier)
	if !day.IsZero() {
		from, to := dayBounds(day)
		q.AddRange("report_datetime", from, to)
	}
	if excludeID != uuid.Nil {
		q.Add("id <> "+q.P(), excludeID)
	}
	return q.CountSQL(), q.CountArgs()
}
