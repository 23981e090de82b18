package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/potlako/follow/internal/domain/calllog"
	"github.com/potlako/follow/internal/domain/worklist"
	"github.com/potlako/follow/internal/platform/query"
	"github.com/potlako/follow/pkg/pagination"
)

// ChangeListQuery is one changelist page request.
type ChangeListQuery struct {
	Search   string
	Modified query.DateHierarchy
	Page     pagination.Params
}

// Lister returns one page of a model's records, most recently modified
// first. Items must be a slice of JSON-encodable records.
type Lister func(ctx context.Context, q ChangeListQuery) (items interface{}, total int, err error)

// ChangeList is one page of a model's list_display columns.
type ChangeList struct {
	Model        string              `json:"model"`
	Columns      []string            `json:"columns"`
	Rows         []map[string]string `json:"rows"`
	Total        int                 `json:"total"`
	Page         int                 `json:"page"`
	NumPages     int                 `json:"num_pages"`
	SearchFields []string            `json:"search_fields,omitempty"`
}

// RegisterLister attaches the record source of model's changelist.
func (s *Site) RegisterLister(model string, l Lister) {
	s.listers[model] = l
}

func (s *Site) ChangeList(ctx context.Context, model string, q ChangeListQuery) (*ChangeList, error) {
	m, err := s.registry.Get(model)
	if err != nil {
		return nil, err
	}
	list, ok := s.listers[model]
	if !ok {
		return nil, ErrUnknownModel
	}
	if q.Page.Limit <= 0 {
		q.Page.Limit = m.ListPerPage
	}
	items, total, err := list(ctx, q)
	if err != nil {
		return nil, err
	}
	rows, err := displayRows(m, items)
	if err != nil {
		return nil, err
	}
	return &ChangeList{
		Model:        m.Model,
		Columns:      m.ListDisplay,
		Rows:         rows,
		Total:        total,
		Page:         q.Page.Page(),
		NumPages:     q.Page.NumPages(total),
		SearchFields: m.SearchFields,
	}, nil
}

// displayRows renders the list_display columns of items, with the empty
// value display for blanks.
func displayRows(m *ModelAdmin, items interface{}) ([]map[string]string, error) {
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode %s rows: %w", m.Model, err)
	}
	var records []map[string]interface{}
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode %s rows: %w", m.Model, err)
	}
	rows := make([]map[string]string, len(records))
	for i, rec := range records {
		row := make(map[string]string, len(m.ListDisplay)+1)
		if id, ok := rec["id"].(string); ok {
			row["id"] = id
		}
		for _, col := range m.ListDisplay {
			row[col] = displayValue(rec[col], m.EmptyValueDisplay)
		}
		rows[i] = row
	}
	return rows, nil
}

func displayValue(v interface{}, empty string) string {
	switch x := v.(type) {
	case nil:
		return empty
	case string:
		if x == "" {
			return empty
		}
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "Yes"
		}
		return "No"
	default:
		return fmt.Sprint(x)
	}
}

// CallLister lists calls.
func CallLister(svc *calllog.Service) Lister {
	return func(ctx context.Context, q ChangeListQuery) (interface{}, int, error) {
		return svc.SearchCalls(ctx, calllog.SearchParams{Query: q.Search, Modified: q.Modified}, q.Page.Limit, q.Page.Offset)
	}
}

func LogLister(svc *calllog.Service) Lister {
	return func(ctx context.Context, q ChangeListQuery) (interface{}, int, error) {
		return svc.SearchLogs(ctx, calllog.SearchParams{Query: q.Search, Modified: q.Modified}, q.Page.Limit, q.Page.Offset)
	}
}

func LogEntryLister(svc *calllog.Service) Lister {
	return func(ctx context.Context, q ChangeListQuery) (interface{}, int, error) {
		return svc.SearchLogEntries(ctx, calllog.SearchParams{Query: q.Search, Modified: q.Modified}, q.Page.Limit, q.Page.Offset)
	}
}

// WorkListLister lists either work-list kind.
func WorkListLister(svc *worklist.Service) Lister {
	return func(ctx context.Context, q ChangeListQuery) (interface{}, int, error) {
		return svc.Search(ctx, worklist.SearchParams{Query: q.Search, Modified: q.Modified}, q.Page.Limit, q.Page.Offset)
	}
}

// RegisterListers wires the changelists of all five models.
func (s *Site) RegisterListers(calls *calllog.Service, worklists, navigation *worklist.Service) {
	s.RegisterLister("call", CallLister(calls))
	s.RegisterLister("log", LogLister(calls))
	s.RegisterLister("logentry", LogEntryLister(calls))
	s.RegisterLister(worklists.Kind().Model, WorkListLister(worklists))
	s.RegisterLister(navigation.Kind().Model, WorkListLister(navigation))
}
