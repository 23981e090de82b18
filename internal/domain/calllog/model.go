package calllog

import (
	"time"

	"github.com/google/uuid"

	"github.com/potlako/follow/internal/platform/audit"
)

// Call is a scheduled series of phone contacts with one participant.
type Call struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	SubjectIdentifier string     `db:"subject_identifier" json:"subject_identifier"`
	Label             string     `db:"label" json:"label"`
	Scheduled         time.Time  `db:"scheduled" json:"scheduled"`
	Repeats           bool       `db:"repeats" json:"repeats"`
	CallAttempts      int        `db:"call_attempts" json:"call_attempts"`
	CallStatus        string     `db:"call_status" json:"call_status"`
	FirstCalled       *time.Time `db:"first_called" json:"first_called,omitempty"`
	LastCalled        *time.Time `db:"last_called" json:"last_called,omitempty"`
	CallOutcome       *string    `db:"call_outcome" json:"call_outcome,omitempty"`
	audit.Fields
}

// Log groups the attempts made for one Call.
type Log struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	CallID             uuid.UUID `db:"call_id" json:"call_id"`
	LogDatetime        time.Time `db:"log_datetime" json:"log_datetime"`
	LocatorInformation *string   `db:"locator_information" json:"locator_information,omitempty"`
	ContactNotes       *string   `db:"contact_notes" json:"contact_notes,omitempty"`
	audit.Fields
}

// LogEntry records the outcome of a single contact attempt.
type LogEntry struct {
	ID                       uuid.UUID  `db:"id" json:"id"`
	LogID                    uuid.UUID  `db:"log_id" json:"log_id"`
	SubjectIdentifier        string     `db:"subject_identifier" json:"subject_identifier"`
	CallDatetime             time.Time  `db:"call_datetime" json:"call_datetime"`
	PhoneNumType             []string   `db:"phone_num_type" json:"phone_num_type"`
	PhoneNumSuccess          []string   `db:"phone_num_success" json:"phone_num_success"`
	CellContactFail          string     `db:"cell_contact_fail" json:"cell_contact_fail"`
	AltCellContactFail       string     `db:"alt_cell_contact_fail" json:"alt_cell_contact_fail"`
	TelContactFail           string     `db:"tel_contact_fail" json:"tel_contact_fail"`
	AltTelContactFail        string     `db:"alt_tel_contact_fail" json:"alt_tel_contact_fail"`
	WorkContactFail          string     `db:"work_contact_fail" json:"work_contact_fail"`
	CellAltContactFail       string     `db:"cell_alt_contact_fail" json:"cell_alt_contact_fail"`
	TelAltContactFail        string     `db:"tel_alt_contact_fail" json:"tel_alt_contact_fail"`
	Appt                     string     `db:"appt" json:"appt"`
	ApptReasonUnwilling      string     `db:"appt_reason_unwilling" json:"appt_reason_unwilling"`
	ApptReasonUnwillingOther *string    `db:"appt_reason_unwilling_other" json:"appt_reason_unwilling_other,omitempty"`
	ApptDate                 *time.Time `db:"appt_date" json:"appt_date,omitempty"`
	ApptGrading              string     `db:"appt_grading" json:"appt_grading"`
	ApptLocation             string     `db:"appt_location" json:"appt_location"`
	ApptLocationOther        *string    `db:"appt_location_other" json:"appt_location_other,omitempty"`
	MayCall                  string     `db:"may_call" json:"may_call"`
	HomeVisit                string     `db:"home_visit" json:"home_visit"`
	HomeVisitOther           *string    `db:"home_visit_other" json:"home_visit_other,omitempty"`
	audit.Fields
}

// ContactFail returns the reason recorded in a contact-fail field.
func (e *LogEntry) ContactFail(field string) string {
	switch field {
	case "cell_contact_fail":
		return e.CellContactFail
	case "alt_cell_contact_fail":
		return e.AltCellContactFail
	case "tel_contact_fail":
		return e.TelContactFail
	case "alt_tel_contact_fail":
		return e.AltTelContactFail
	case "work_contact_fail":
		return e.WorkContactFail
	case "cell_alt_contact_fail":
		return e.CellAltContactFail
	case "tel_alt_contact_fail":
		return e.TelAltContactFail
	}
	return ""
}

func (e *LogEntry) setContactFail(field, value string) {
	switch field {
	case "cell_contact_fail":
		e.CellContactFail = value
	case "alt_cell_contact_fail":
		e.AltCellContactFail = value
	case "tel_contact_fail":
		e.TelContactFail = value
	case "alt_tel_contact_fail":
		e.AltTelContactFail = value
	case "work_contact_fail":
		e.WorkContactFail = value
	case "cell_alt_contact_fail":
		e.CellAltContactFail = value
	case "tel_alt_contact_fail":
		e.TelAltContactFail = value
	}
}

// applyDefaults sets unanswered choice fields to N/A.
func (e *LogEntry) applyDefaults() {
	for _, f := range ContactFailFields {
		if e.ContactFail(f.Field) == "" {
			e.setContactFail(f.Field, NotApplicable)
		}
	}
	for _, p := range []*string{&e.Appt, &e.ApptReasonUnwilling, &e.ApptGrading, &e.ApptLocation, &e.MayCall, &e.HomeVisit} {
		if *p == "" {
			*p = NotApplicable
		}
	}
	if e.PhoneNumType == nil {
		e.PhoneNumType = []string{}
	}
	if e.PhoneNumSuccess == nil {
		e.PhoneNumSuccess = []string{}
	}
}

// Successful reports whether at least one number was reached.
func (e *LogEntry) Successful() bool {
	for _, s := range e.PhoneNumSuccess {
		if s != NoneOfTheAbove {
			return true
		}
	}
	return false
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
