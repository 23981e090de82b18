package calllog

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newTestHandler(t *testing.T) (*Handler, *fixture, *echo.Echo) {
	f := newFixture(t)
	return NewHandler(f.svc), f, echo.New()
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	return he.Code
}

func TestHandler_CreateCall(t *testing.T) {
	h, _, e := newTestHandler(t)
	body := `{"subject_identifier":"066-2","label":"navigation","scheduled":"2024-03-09T00:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.CreateCall(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var got Call
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.CallStatus != CallStatusNew || got.ID == uuid.Nil {
		t.Errorf("unexpected call: %+v", got)
	}
}

func TestHandler_CreateCall_Invalid(t *testing.T) {
	h, _, e := newTestHandler(t)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"label":"x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if code := statusOf(t, h.CreateCall(c)); code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", code)
	}
}

func TestHandler_GetCall_NotFound(t *testing.T) {
	h, _, e := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())
	if code := statusOf(t, h.GetCall(c)); code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", code)
	}
}

func TestHandler_GetCall_InvalidID(t *testing.T) {
	h, _, e := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")
	if code := statusOf(t, h.GetCall(c)); code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", code)
	}
}

func TestHandler_ListCalls(t *testing.T) {
	h, _, e := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/?subject_identifier=066-1&modified__year=2024", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.ListCalls(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Total int `json:"total"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Total != 1 {
		t.Errorf("expected 1 call, got %d", resp.Total)
	}
}

func TestHandler_ListCalls_BadDateHierarchy(t *testing.T) {
	h, _, e := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/?modified__day=4", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if code := statusOf(t, h.ListCalls(c)); code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", code)
	}
}

func TestHandler_DeleteLog(t *testing.T) {
	h, f, e := newTestHandler(t)
	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(f.log.ID.String())
	if err := h.DeleteLog(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}

func logEntryBody(logID uuid.UUID) string {
	return `{"log_id":"` + logID.String() + `","subject_identifier":"066-1",` +
		`"call_datetime":"2024-03-10T09:00:00Z",` +
		`"phone_num_type":["subject_cell"],"phone_num_success":["subject_cell"],` +
		`"appt":"Yes","appt_date":"2024-03-12T00:00:00Z","appt_grading":"weak","appt_location":"home","may_call":"Yes"}`
}

func TestHandler_CreateLogEntry_Redirect(t *testing.T) {
	h, f, e := newTestHandler(t)
	req := httptest.NewRequest(http.MethodPost, "/?next=navigation_listboard_url&subject_identifier=066-1",
		strings.NewReader(logEntryBody(f.log.ID)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.CreateLogEntry(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var resp struct {
		Entry       LogEntry `json:"entry"`
		RedirectURL string   `json:"redirect_url"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.RedirectURL != "/subject/listboard/066-1/" {
		t.Errorf("unexpected redirect %q", resp.RedirectURL)
	}
	if resp.Entry.HomeVisit != NotApplicable {
		t.Errorf("expected home_visit default N/A, got %q", resp.Entry.HomeVisit)
	}
}

func TestHandler_CreateLogEntry_RedirectFailure(t *testing.T) {
	h, f, e := newTestHandler(t)
	req := httptest.NewRequest(http.MethodPost, "/?next=navigation_listboard_url",
		strings.NewReader(logEntryBody(f.log.ID)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if code := statusOf(t, h.CreateLogEntry(c)); code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", code)
	}
}

func TestHandler_CreateLogEntry_Invalid(t *testing.T) {
	h, f, e := newTestHandler(t)
	body := `{"log_id":"` + f.log.ID.String() + `","subject_identifier":"066-1","call_datetime":"2024-03-10T09:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := h.CreateLogEntry(c)
	if code := statusOf(t, err); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	var he *echo.HTTPError
	errors.As(err, &he)
	msg, ok := he.Message.(map[string]interface{})
	if !ok {
		t.Fatalf("expected structured message, got %T", he.Message)
	}
	fields, _ := msg["fields"].(map[string]string)
	if fields["phone_num_type"] == "" {
		t.Errorf("expected phone_num_type error, got %v", fields)
	}
}
