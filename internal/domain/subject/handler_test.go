package subject

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newSubjectContext(target, sid string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("subject_identifier")
	c.SetParamValues(sid)
	return c, rec
}

func TestHandler_PhoneChoices(t *testing.T) {
	svc, repo := newTestService()
	repo.locators["066-1"] = &Locator{SubjectIdentifier: "066-1", SubjectCell: strPtr("71234567")}
	h := NewHandler(svc)

	c, rec := newSubjectContext("/api/v1/subjects/066-1/phone-choices", "066-1")
	if err := h.PhoneChoices(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Choices []Choice `json:"choices"`
	}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if len(body.Choices) != 1 || body.Choices[0].Value != "subject_cell" {
		t.Errorf("unexpected choices: %s", rec.Body.String())
	}
}

func TestHandler_PhoneChoices_NoLocator(t *testing.T) {
	svc, _ := newTestService()
	h := NewHandler(svc)

	c, rec := newSubjectContext("/api/v1/subjects/066-9/phone-choices", "066-9")
	if err := h.PhoneChoices(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"choices":[]`) {
		t.Errorf("expected an empty choice list, got %s", rec.Body.String())
	}
}

func TestHandler_RoadMap(t *testing.T) {
	svc, repo := newTestService()
	repo.records["navigation_summary_and_plan/066-1"] = "p1"
	h := NewHandler(svc)

	c, rec := newSubjectContext("/api/v1/subjects/066-1/road-map?models=navigationsummaryandplan", "066-1")
	if err := h.RoadMap(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var rm map[string]RoadMapEntry
	json.Unmarshal(rec.Body.Bytes(), &rm)
	if e := rm["navigationsummaryandplan"]; !e.Exists || e.ID != "p1" {
		t.Errorf("unexpected road map: %s", rec.Body.String())
	}
}

func TestHandler_RoadMap_BadRequest(t *testing.T) {
	h := NewHandler(NewService(newMockSubjectRepo()))
	for _, target := range []string{
		"/api/v1/subjects/066-1/road-map",
		"/api/v1/subjects/066-1/road-map?models=bogus",
	} {
		c, _ := newSubjectContext(target, "066-1")
		err := h.RoadMap(c)
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %v", target, err)
		}
	}
}
