package pagination

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"
)

func newContext(target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestFromContext_Defaults(t *testing.T) {
	p := FromContext(newContext("/"))

	if p.Limit != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, p.Limit)
	}
	if p.Offset != 0 {
		t.Errorf("expected default offset 0, got %d", p.Offset)
	}
}

func TestFromContext_CustomValues(t *testing.T) {
	p := FromContext(newContext("/?limit=25&offset=50"))

	if p.Limit != 25 {
		t.Errorf("expected limit 25, got %d", p.Limit)
	}
	if p.Offset != 50 {
		t.Errorf("expected offset 50, got %d", p.Offset)
	}
}

func TestFromContext_Page(t *testing.T) {
	p := FromContext(newContext("/?page=3"))

	if p.Offset != 20 {
		t.Errorf("expected offset 20 for page 3, got %d", p.Offset)
	}
	if p.Page() != 3 {
		t.Errorf("expected Page() 3, got %d", p.Page())
	}
}

func TestFromContext_MaxLimit(t *testing.T) {
	p := FromContext(newContext("/?limit=500"))
	if p.Limit != MaxLimit {
		t.Errorf("expected limit capped at %d, got %d", MaxLimit, p.Limit)
	}
}

func TestFromContext_NegativeOffset(t *testing.T) {
	p := FromContext(newContext("/?offset=-5"))
	if p.Offset != 0 {
		t.Errorf("expected offset 0 for negative input, got %d", p.Offset)
	}
}

func TestFromContext_Malformed(t *testing.T) {
	p := FromContext(newContext("/?limit=ten&page=two"))
	if p.Limit != DefaultLimit || p.Offset != 0 {
		t.Errorf("expected defaults for malformed input, got %+v", p)
	}
}

func TestFromContext_OffsetWinsOverPage(t *testing.T) {
	p := FromContext(newContext("/?offset=5&page=4"))
	if p.Offset != 5 {
		t.Errorf("expected explicit offset 5, got %d", p.Offset)
	}
}

func TestNewResponse(t *testing.T) {
	resp := NewResponse([]string{"a", "b"}, 25, 10, 10)

	if resp.Total != 25 {
		t.Errorf("expected total 25, got %d", resp.Total)
	}
	if !resp.HasMore {
		t.Error("expected HasMore to be true")
	}

	resp = NewResponse([]string{"a"}, 21, 10, 20)
	if resp.HasMore {
		t.Error("expected HasMore to be false on last page")
	}
}

func TestParams_NumPages(t *testing.T) {
	tests := []struct {
		total int
		want  int
	}{
		{0, 1},
		{1, 1},
		{10, 1},
		{11, 2},
		{95, 10},
	}
	p := Params{Limit: 10}
	for _, tt := range tests {
		if got := p.NumPages(tt.total); got != tt.want {
			t.Errorf("NumPages(%d) = %d, want %d", tt.total, got, tt.want)
		}
	}
}

func TestParams_Links_MiddlePage(t *testing.T) {
	p := Params{Limit: 10, Offset: 10}
	q := url.Values{"q": {"066"}, "page": {"2"}}

	links := p.Links("/listboard/navigation", q, 35)

	if links.Previous != "/listboard/navigation?page=1&q=066" {
		t.Errorf("unexpected previous link %q", links.Previous)
	}
	if links.Next != "/listboard/navigation?page=3&q=066" {
		t.Errorf("unexpected next link %q", links.Next)
	}
}

func TestParams_Links_SinglePage(t *testing.T) {
	p := Params{Limit: 10}
	links := p.Links("/listboard/navigation", nil, 3)
	if links.Previous != "" || links.Next != "" {
		t.Errorf("expected no links, got %+v", links)
	}
}
