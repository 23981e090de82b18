package worklist

import (
	"context"
	"net/url"

	"github.com/potlako/follow/internal/platform/urls"
	"github.com/potlako/follow/pkg/pagination"
)

const listboardURLName = "navigation_listboard_url"

// ListboardQuery is one request for the navigation listboard.
type ListboardQuery struct {
	// SubjectIdentifier restricts the board to one subject.
	SubjectIdentifier string
	Search            string
	Filter            string
	Page              pagination.Params
	// BasePath and Query build the page links.
	BasePath string
	Query    url.Values
}

// ListboardRow is a work-list row plus the link that opens it for editing.
type ListboardRow struct {
	*WorkList
	Href string `json:"href"`
}

type Listboard struct {
	Rows       []ListboardRow   `json:"results"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	NumPages   int              `json:"num_pages"`
	Links      pagination.Links `json:"links"`
	SearchTerm string           `json:"search_term,omitempty"`
	Filter     string           `json:"filter,omitempty"`
	Sync       SyncResult       `json:"sync"`
}

// ListboardService serves the navigation listboard.
type ListboardService struct {
	reconciler *Reconciler
	nav        *Service
	urls       *urls.Reverser
}

func NewListboardService(reconciler *Reconciler, nav *Service, reverser *urls.Reverser) *ListboardService {
	return &ListboardService{reconciler: reconciler, nav: nav, urls: reverser}
}

// Listboard reconciles the navigation work list and then returns one page of
// it, most recently modified first.
func (l *ListboardService) Listboard(ctx context.Context, q ListboardQuery) (*Listboard, error) {
	res, err := l.reconciler.Sync(ctx)
	if err != nil {
		return nil, err
	}

	params := SearchParams{
		Query:             q.Search,
		SubjectIdentifier: q.SubjectIdentifier,
		Filter:            q.Filter,
	}
	items, total, err := l.nav.Search(ctx, params, q.Page.Limit, q.Page.Offset)
	if err != nil {
		return nil, err
	}

	rows := make([]ListboardRow, len(items))
	for i, w := range items {
		rows[i] = ListboardRow{WorkList: w, Href: ChangeURL(l.nav.Kind(), w)}
	}
	basePath := q.BasePath
	if basePath == "" {
		if basePath, err = l.urls.Reverse(listboardURLName, nil); err != nil {
			return nil, err
		}
	}
	return &Listboard{
		Rows:       rows,
		Total:      total,
		Page:       q.Page.Page(),
		NumPages:   q.Page.NumPages(total),
		Links:      q.Page.Links(basePath, q.Query, total),
		SearchTerm: q.Search,
		Filter:     q.Filter,
		Sync:       res,
	}, nil
}

// ChangeURL opens w for editing and returns to the listboard on save.
func ChangeURL(kind Kind, w *WorkList) string {
	v := url.Values{}
	v.Set("next", listboardURLName)
	v.Set("subject_identifier", w.SubjectIdentifier)
	return kind.Path + "/" + w.ID.String() + "?" + v.Encode()
}

// ListboardURL is where deleting or saving a work list returns to.
func (l *ListboardService) ListboardURL() (string, error) {
	return l.urls.Reverse(listboardURLName, nil)
}
