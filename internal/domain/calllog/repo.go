package calllog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/potlako/follow/internal/platform/audit"
	"github.com/potlako/follow/internal/platform/query"
)

// ErrNotFound is returned when a call, log or log entry does not exist.
var ErrNotFound = errors.New("record not found")

// SearchParams narrows changelist queries. Zero values are ignored.
type SearchParams struct {
	Query             string
	SubjectIdentifier string
	CallID            uuid.UUID
	LogID             uuid.UUID
	CallStatus        string
	Modified          query.DateHierarchy
}

type CallRepository interface {
	Create(ctx context.Context, c *Call) error
	GetByID(ctx context.Context, id uuid.UUID) (*Call, error)
	Update(ctx context.Context, c *Call) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, params SearchParams, limit, offset int) ([]*Call, int, error)
}

type LogRepository interface {
	Create(ctx context.Context, l *Log) error
	GetByID(ctx context.Context, id uuid.UUID) (*Log, error)
	Update(ctx context.Context, l *Log) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, params SearchParams, limit, offset int) ([]*Log, int, error)
}

type LogEntryRepository interface {
	Create(ctx context.Context, e *LogEntry) error
	GetByID(ctx context.Context, id uuid.UUID) (*LogEntry, error)
	Update(ctx context.Context, e *LogEntry) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, params SearchParams, limit, offset int) ([]*LogEntry, int, error)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

var callColumns = append([]string{
	"id", "subject_identifier", "label", "scheduled", "repeats", "call_attempts",
	"call_status", "first_called", "last_called", "call_outcome",
}, audit.Columns...)

func callValues(c *Call) []interface{} {
	return append([]interface{}{
		c.ID, c.SubjectIdentifier, c.Label, c.Scheduled.UTC(), c.Repeats, c.CallAttempts,
		c.CallStatus, utcPtr(c.FirstCalled), utcPtr(c.LastCalled), c.CallOutcome,
	}, c.Fields.Values()...)
}

func scanCall(row rowScanner) (*Call, error) {
	var c Call
	dest := append([]interface{}{
		&c.ID, &c.SubjectIdentifier, &c.Label, &c.Scheduled, &c.Repeats, &c.CallAttempts,
		&c.CallStatus, &c.FirstCalled, &c.LastCalled, &c.CallOutcome,
	}, c.Fields.Dest()...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &c, nil
}

var logColumns = append([]string{
	"id", "call_id", "log_datetime", "locator_information", "contact_notes",
}, audit.Columns...)

func logValues(l *Log) []interface{} {
	return append([]interface{}{
		l.ID, l.CallID, l.LogDatetime.UTC(), l.LocatorInformation, l.ContactNotes,
	}, l.Fields.Values()...)
}

func scanLog(row rowScanner) (*Log, error) {
	var l Log
	dest := append([]interface{}{
		&l.ID, &l.CallID, &l.LogDatetime, &l.LocatorInformation, &l.ContactNotes,
	}, l.Fields.Dest()...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &l, nil
}

var logEntryColumns = append([]string{
	"id", "log_id", "subject_identifier", "call_datetime", "phone_num_type", "phone_num_success",
	"cell_contact_fail", "alt_cell_contact_fail", "tel_contact_fail", "alt_tel_contact_fail",
	"work_contact_fail", "cell_alt_contact_fail", "tel_alt_contact_fail",
	"appt", "appt_reason_unwilling", "appt_reason_unwilling_other", "appt_date",
	"appt_grading", "appt_location", "appt_location_other", "may_call",
	"home_visit", "home_visit_other",
}, audit.Columns...)

// logEntryValues takes the two multi-select values already encoded for the
// store.
func logEntryValues(e *LogEntry, numType, numSuccess interface{}) []interface{} {
	return append([]interface{}{
		e.ID, e.LogID, e.SubjectIdentifier, e.CallDatetime.UTC(), numType, numSuccess,
		e.CellContactFail, e.AltCellContactFail, e.TelContactFail, e.AltTelContactFail,
		e.WorkContactFail, e.CellAltContactFail, e.TelAltContactFail,
		e.Appt, e.ApptReasonUnwilling, e.ApptReasonUnwillingOther, utcPtr(e.ApptDate),
		e.ApptGrading, e.ApptLocation, e.ApptLocationOther, e.MayCall,
		e.HomeVisit, e.HomeVisitOther,
	}, e.Fields.Values()...)
}

func logEntryDest(e *LogEntry, numType, numSuccess interface{}) []interface{} {
	return append([]interface{}{
		&e.ID, &e.LogID, &e.SubjectIdentifier, &e.CallDatetime, numType, numSuccess,
		&e.CellContactFail, &e.AltCellContactFail, &e.TelContactFail, &e.AltTelContactFail,
		&e.WorkContactFail, &e.CellAltContactFail, &e.TelAltContactFail,
		&e.Appt, &e.ApptReasonUnwilling, &e.ApptReasonUnwillingOther, &e.ApptDate,
		&e.ApptGrading, &e.ApptLocation, &e.ApptLocationOther, &e.MayCall,
		&e.HomeVisit, &e.HomeVisitOther,
	}, e.Fields.Dest()...)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// searchFields are the columns a changelist "q" term matches, per table.
var searchFields = map[string][]string{
	"call":      {"subject_identifier", "label"},
	"log":       {"locator_information", "contact_notes"},
	"log_entry": {"subject_identifier"},
}

func applySearch(q *query.SearchQuery, table string, p SearchParams) error {
	if term := strings.TrimSpace(p.Query); term != "" {
		q.AddContainsAny(term, searchFields[table]...)
	}
	if p.SubjectIdentifier != "" && table != "log" {
		q.AddEq("subject_identifier", p.SubjectIdentifier)
	}
	if p.CallStatus != "" && table == "call" {
		q.AddEq("call_status", p.CallStatus)
	}
	if p.CallID != uuid.Nil && table == "log" {
		q.AddEq("call_id", p.CallID)
	}
	if p.LogID != uuid.Nil && table == "log_entry" {
		q.AddEq("log_id", p.LogID)
	}
	q.OrderBy("modified DESC")
	return q.ApplyDateHierarchy("modified", p.Modified)
}
