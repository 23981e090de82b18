package calllog

import (
	"time"

	"github.com/potlako/follow/internal/domain/subject"
	"github.com/potlako/follow/internal/platform/validation"
)

// ValidationError is returned for invalid form input.
type ValidationError = validation.Error

var knownPhoneFields = func() map[string]bool {
	m := make(map[string]bool, len(subject.PhoneFields))
	for _, f := range subject.PhoneFields {
		m[f] = true
	}
	return m
}()

// validateLogEntry checks e against its choice sets and the skip logic of the
// form. available lists the numbers on the subject's locator; nil means the
// subject has no locator and only the field names are checked.
func validateLogEntry(e *LogEntry, available []subject.Choice, now time.Time) error {
	fe := validation.Errors{}

	if e.SubjectIdentifier == "" {
		fe.Add("subject_identifier", validation.MsgRequired)
	}
	if e.CallDatetime.IsZero() {
		fe.Add("call_datetime", validation.MsgRequired)
	} else if e.CallDatetime.After(now) {
		fe.Add("call_datetime", "Cannot be a future date/time.")
	}

	offered := map[string]bool{}
	for _, c := range available {
		offered[c.Value] = true
	}
	if len(e.PhoneNumType) == 0 {
		fe.Add("phone_num_type", validation.MsgRequired)
	}
	for _, v := range e.PhoneNumType {
		switch {
		case v == NoneOfTheAbove:
			if len(e.PhoneNumType) > 1 {
				fe.Add("phone_num_type", "None of the above cannot be combined with other options.")
			}
		case !knownPhoneFields[v]:
			fe.Addf("phone_num_type", "Invalid choice: %s", v)
		case available != nil && !offered[v]:
			fe.Addf("phone_num_type", "The subject has no %s on record.", subject.FieldTitle(v))
		}
	}

	if len(e.PhoneNumSuccess) == 0 {
		fe.Add("phone_num_success", validation.MsgRequired)
	}
	for _, v := range e.PhoneNumSuccess {
		switch {
		case v == NoneOfTheAbove:
			if len(e.PhoneNumSuccess) > 1 {
				fe.Add("phone_num_success", "None of the above cannot be combined with other options.")
			}
		case !contains(e.PhoneNumType, v):
			fe.Addf("phone_num_success", "%s was not one of the numbers called.", subject.FieldTitle(v))
		}
	}

	for _, f := range ContactFailFields {
		value := e.ContactFail(f.Field)
		if !validContactFailReasons[value] {
			fe.Addf(f.Field, "Invalid choice: %s", value)
			continue
		}
		failed := contains(e.PhoneNumType, f.LocatorField) && !contains(e.PhoneNumSuccess, f.LocatorField)
		switch {
		case failed && value == NotApplicable:
			fe.Add(f.Field, validation.MsgRequired)
		case !failed && value != NotApplicable:
			fe.Add(f.Field, validation.MsgNotApplicable)
		}
	}

	validateAppointment(e, fe)
	validateHomeVisit(e, fe)

	if !validYesNoNA[e.MayCall] {
		fe.Addf("may_call", "Invalid choice: %s", e.MayCall)
	}

	return fe.Err()
}

func validateAppointment(e *LogEntry, fe validation.Errors) {
	checks := []struct {
		field string
		value string
		valid map[string]bool
	}{
		{"appt", e.Appt, validYesNoNA},
		{"appt_reason_unwilling", e.ApptReasonUnwilling, validApptReasonsUnwilling},
		{"appt_grading", e.ApptGrading, validApptGradings},
		{"appt_location", e.ApptLocation, validApptLocations},
	}
	for _, c := range checks {
		if !c.valid[c.value] {
			fe.Addf(c.field, "Invalid choice: %s", c.value)
		}
	}

	reached := e.Successful()
	switch {
	case reached && e.Appt == NotApplicable:
		fe.Add("appt", validation.MsgRequired)
	case !reached && e.Appt != NotApplicable:
		fe.Add("appt", validation.MsgNotApplicable)
	}

	fe.ApplicableIf("appt_reason_unwilling", e.ApptReasonUnwilling, NotApplicable, e.Appt == No)
	fe.ApplicableIf("appt_grading", e.ApptGrading, NotApplicable, e.Appt == Yes)
	fe.ApplicableIf("appt_location", e.ApptLocation, NotApplicable, e.Appt == Yes)

	if e.Appt == Yes {
		if e.ApptDate == nil {
			fe.Add("appt_date", validation.MsgRequired)
		} else if !e.CallDatetime.IsZero() && dateOf(*e.ApptDate).Before(dateOf(e.CallDatetime)) {
			fe.Add("appt_date", "Appointment date cannot be before the call date.")
		}
	} else if e.ApptDate != nil {
		fe.Add("appt_date", validation.MsgNotApplicable)
	}

	fe.RequiredIf("appt_reason_unwilling_other", e.ApptReasonUnwillingOther, e.ApptReasonUnwilling == Other)
	fe.RequiredIf("appt_location_other", e.ApptLocationOther, e.ApptLocation == Other)
}

// validateHomeVisit asks for a home visit only when none of the numbers
// tried reached the participant.
func validateHomeVisit(e *LogEntry, fe validation.Errors) {
	if !validHomeVisits[e.HomeVisit] {
		fe.Addf("home_visit", "Invalid choice: %s", e.HomeVisit)
		return
	}
	fe.ApplicableIf("home_visit", e.HomeVisit, NotApplicable, len(e.PhoneNumSuccess) > 0 && !e.Successful())
	fe.RequiredIf("home_visit_other", e.HomeVisitOther, e.HomeVisit == Other)
}

func dateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func validateCall(c *Call) error {
	fe := validation.Errors{}
	if c.SubjectIdentifier == "" {
		fe.Add("subject_identifier", validation.MsgRequired)
	}
	if c.Label == "" {
		fe.Add("label", validation.MsgRequired)
	}
	if c.Scheduled.IsZero() {
		fe.Add("scheduled", validation.MsgRequired)
	}
	if !validCallStatuses[c.CallStatus] {
		fe.Addf("call_status", "Invalid choice: %s", c.CallStatus)
	}
	if c.CallAttempts < 0 {
		fe.Add("call_attempts", "Cannot be negative.")
	}
	return fe.Err()
}
