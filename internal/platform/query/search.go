// Package query builds the WHERE/ORDER/LIMIT SQL shared by the Postgres and
// SQLite repositories.
package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Dialect selects placeholder and case-insensitive matching syntax.
type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

func (d Dialect) placeholder(n int) string {
	if d == SQLite {
		return "?"
	}
	return fmt.Sprintf("$%d", n)
}

func (d Dialect) ilike() string {
	if d == SQLite {
		// LIKE is case-insensitive for ASCII in SQLite.
		return "LIKE"
	}
	return "ILIKE"
}

// SearchQuery accumulates AND-ed filter clauses for one table.
type SearchQuery struct {
	dialect Dialect
	table   string
	cols    string
	where   string
	args    []interface{}
	idx     int
	orderBy string
}

func NewSearchQuery(d Dialect, table, cols string) *SearchQuery {
	return &SearchQuery{dialect: d, table: table, cols: cols, idx: 1}
}

// P returns the next placeholder and reserves it.
func (q *SearchQuery) P() string {
	p := q.dialect.placeholder(q.idx)
	q.idx++
	return p
}

// Add appends a clause written with P() placeholders, plus its args.
func (q *SearchQuery) Add(clause string, args ...interface{}) {
	q.where += " AND " + clause
	q.args = append(q.args, args...)
}

// AddEq adds column = value.
func (q *SearchQuery) AddEq(column string, value interface{}) {
	q.Add(column+" = "+q.P(), value)
}

// AddContainsAny adds a case-insensitive "contains" match against any of
// columns, OR-ed together.
func (q *SearchQuery) AddContainsAny(term string, columns ...string) {
	if len(columns) == 0 {
		return
	}
	pattern := "%" + escapeLike(term) + "%"
	parts := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, col := range columns {
		parts[i] = fmt.Sprintf("%s %s %s ESCAPE '\\'", col, q.dialect.ilike(), q.P())
		args[i] = pattern
	}
	q.Add("("+strings.Join(parts, " OR ")+")", args...)
}

// AddRange adds from <= column < to.
func (q *SearchQuery) AddRange(column string, from, to time.Time) {
	q.Add(fmt.Sprintf("%s >= %s AND %s < %s", column, q.P(), column, q.P()), from, to)
}

// OrderBy sets the ORDER BY clause (without the "ORDER BY" keyword).
func (q *SearchQuery) OrderBy(orderBy string) {
	q.orderBy = orderBy
}

func (q *SearchQuery) CountSQL() string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE 1=1%s", q.table, q.where)
}

func (q *SearchQuery) CountArgs() []interface{} {
	return q.args
}

// DataSQL returns the data query with ORDER BY and LIMIT/OFFSET placeholders.
func (q *SearchQuery) DataSQL() string {
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE 1=1%s", q.cols, q.table, q.where)
	if q.orderBy != "" {
		sql += " ORDER BY " + q.orderBy
	}
	sql += fmt.Sprintf(" LIMIT %s OFFSET %s",
		q.dialect.placeholder(q.idx), q.dialect.placeholder(q.idx+1))
	return sql
}

// DataArgs returns the search args followed by limit and offset.
func (q *SearchQuery) DataArgs(limit, offset int) []interface{} {
	result := make([]interface{}, len(q.args)+2)
	copy(result, q.args)
	result[len(q.args)] = limit
	result[len(q.args)+1] = offset
	return result
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// DateHierarchy narrows a timestamp column to a year, month or day, like the
// admin changelist's modified__year/month/day drill-down.
type DateHierarchy struct {
	Year  int
	Month int
	Day   int
}

// IsZero reports whether no level is selected.
func (d DateHierarchy) IsZero() bool { return d.Year == 0 }

// Bounds returns the half-open UTC interval covered by the selection.
func (d DateHierarchy) Bounds() (time.Time, time.Time, error) {
	if d.Year == 0 {
		if d.Month != 0 || d.Day != 0 {
			return time.Time{}, time.Time{}, fmt.Errorf("modified__year is required with month or day")
		}
		return time.Time{}, time.Time{}, nil
	}
	if d.Month < 0 || d.Month > 12 {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month: %d", d.Month)
	}
	if d.Day != 0 && d.Month == 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("modified__month is required with day")
	}
	switch {
	case d.Month == 0:
		from := time.Date(d.Year, 1, 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(1, 0, 0), nil
	case d.Day == 0:
		from := time.Date(d.Year, time.Month(d.Month), 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(0, 1, 0), nil
	default:
		from := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
		if from.Month() != time.Month(d.Month) {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid day: %d", d.Day)
		}
		return from, from.AddDate(0, 0, 1), nil
	}
}

// ApplyDateHierarchy adds the range for d on column, if any level is set.
func (q *SearchQuery) ApplyDateHierarchy(column string, d DateHierarchy) error {
	if d.IsZero() {
		return nil
	}
	from, to, err := d.Bounds()
	if err != nil {
		return err
	}
	q.AddRange(column, from, to)
	return nil
}

// Placeholders returns n comma-separated placeholders numbered from start.
func (d Dialect) Placeholders(start, n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = d.placeholder(start + i)
	}
	return strings.Join(ps, ", ")
}

// InsertSQL builds an INSERT of every column in cols.
func InsertSQL(d Dialect, table string, cols []string) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), d.Placeholders(1, len(cols)))
}

// UpdateSQL builds "UPDATE table SET c1 = p1, ... WHERE key = pN". Args are
// the values of cols followed by the key.
func UpdateSQL(d Dialect, table string, cols []string, key string) string {
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = c + " = " + d.placeholder(i+1)
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		table, strings.Join(sets, ", "), key, d.placeholder(len(cols)+1))
}

// ParseDateHierarchy reads <field>__year, <field>__month and <field>__day.
func ParseDateHierarchy(values url.Values, field string) (DateHierarchy, error) {
	var d DateHierarchy
	for _, part := range []struct {
		suffix string
		dst    *int
	}{{"year", &d.Year}, {"month", &d.Month}, {"day", &d.Day}} {
		raw := values.Get(field + "__" + part.suffix)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return DateHierarchy{}, fmt.Errorf("invalid %s__%s: %q", field, part.suffix, raw)
		}
		*part.dst = n
	}
	if _, _, err := d.Bounds(); err != nil {
		return DateHierarchy{}, err
	}
	return d, nil
}
