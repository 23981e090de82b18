package admin

import (
	"sort"
	"strings"

	"github.com/potlako/follow/internal/domain/calllog"
	"github.com/potlako/follow/internal/domain/subject"
	"github.com/potlako/follow/internal/domain/worklist"
)

// Widget kinds.
const (
	WidgetText        = "text"
	WidgetTextarea    = "textarea"
	WidgetDate        = "date"
	WidgetDateTime    = "datetime"
	WidgetNumber      = "number"
	WidgetCheckbox    = "checkbox"
	WidgetSelect      = "select"
	WidgetRadio       = "radio"
	WidgetMultiSelect = "checkbox_select_multiple"
)

type fieldSpec struct {
	label  string
	widget string
}

var fieldSpecs = map[string]fieldSpec{
	"subject_identifier":  {"Subject Identifier", WidgetText},
	"report_datetime":     {"Report date and time", WidgetDateTime},
	"label":               {"Label", WidgetText},
	"scheduled":           {"Scheduled", WidgetDate},
	"repeats":             {"Repeats", WidgetCheckbox},
	"call_attempts":       {"Call attempts", WidgetNumber},
	"call_status":         {"Call status", WidgetSelect},
	"first_called":        {"First called", WidgetDateTime},
	"last_called":         {"Last called", WidgetDateTime},
	"call_outcome":        {"Call outcome", WidgetTextarea},
	"call":                {"Call", WidgetSelect},
	"log_datetime":        {"Log date and time", WidgetDateTime},
	"locator_information": {"Locator information", WidgetTextarea},
	"contact_notes":       {"Contact notes", WidgetTextarea},

	"log":               {"Log", WidgetSelect},
	"call_datetime":     {"Date of call", WidgetDateTime},
	"phone_num_type":    {"Which phone number(s) was used for contact?", WidgetMultiSelect},
	"phone_num_success": {"Which number(s) were you successful in reaching?", WidgetMultiSelect},

	"cell_contact_fail":     {"Why was the contact to the primary cell unsuccessful?", WidgetSelect},
	"alt_cell_contact_fail": {"Why was the contact to the alternative cell unsuccessful?", WidgetSelect},
	"tel_contact_fail":      {"Why was the contact to the primary telephone unsuccessful?", WidgetSelect},
	"alt_tel_contact_fail":  {"Why was the contact to the alternative telephone unsuccessful?", WidgetSelect},
	"work_contact_fail":     {"Why was the contact to the work telephone unsuccessful?", WidgetSelect},
	"cell_alt_contact_fail": {"Why was the contact to the indirect contact cell unsuccessful?", WidgetSelect},
	"tel_alt_contact_fail":  {"Why was the contact to the indirect contact telephone unsuccessful?", WidgetSelect},

	"appt":                        {"Is the participant willing to schedule an appointment?", WidgetSelect},
	"appt_reason_unwilling":       {"What is the reason the participant is unwilling to schedule an appointment?", WidgetSelect},
	"appt_reason_unwilling_other": {"Other reason, please specify", WidgetText},
	"appt_date":                   {"Appointment date", WidgetDate},
	"appt_grading":                {"Is this appointment...", WidgetSelect},
	"appt_location":               {"Appointment location", WidgetSelect},
	"appt_location_other":         {"Other location, please specify", WidgetText},
	"may_call":                    {"May we continue to contact the participant?", WidgetSelect},
	"home_visit":                  {"Why is a home visit needed?", WidgetSelect},
	"home_visit_other":            {"Other reason, please specify", WidgetText},

	"is_called":       {"Has the participant been called?", WidgetSelect},
	"called_datetime": {"Date and time called", WidgetDateTime},
	"visited":         {"Has the participant been visited?", WidgetSelect},
	"village_town":    {"Village or town", WidgetText},

	"created":           {"Created", WidgetDateTime},
	"modified":          {"Modified", WidgetDateTime},
	"user_created":      {"User created", WidgetText},
	"user_modified":     {"User modified", WidgetText},
	"hostname_created":  {"Hostname created", WidgetText},
	"hostname_modified": {"Hostname modified", WidgetText},
	"revision":          {"Revision", WidgetText},
}

func specFor(field string) fieldSpec {
	if s, ok := fieldSpecs[field]; ok {
		return s
	}
	return fieldSpec{label: subject.FieldTitle(field), widget: WidgetText}
}

// staticChoices returns the fixed choices of field, if it has any.
func staticChoices(field string) []subject.Choice {
	switch field {
	case "is_called", "visited":
		return []subject.Choice{{Value: worklist.Yes, Label: worklist.Yes}, {Value: worklist.No, Label: worklist.No}}
	case "call_status":
		return []subject.Choice{
			{Value: calllog.CallStatusNew, Label: "New"},
			{Value: calllog.CallStatusOpen, Label: "Open"},
			{Value: calllog.CallStatusClosed, Label: "Closed"},
		}
	}
	set, ok := calllog.FieldChoices[field]
	if !ok {
		return nil
	}
	values := make([]string, 0, len(set))
	for v := range set {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool { return choiceRank(values[i], values[j]) })
	out := make([]subject.Choice, len(values))
	for i, v := range values {
		out[i] = subject.Choice{Value: v, Label: choiceLabel(v)}
	}
	return out
}

// choiceRank orders Yes and No first, then alphabetically, with Other and
// Not applicable last.
func choiceRank(a, b string) bool {
	weight := func(v string) int {
		switch v {
		case calllog.Yes:
			return 0
		case calllog.No:
			return 1
		case calllog.Other:
			return 3
		case calllog.NotApplicable:
			return 4
		}
		return 2
	}
	if wa, wb := weight(a), weight(b); wa != wb {
		return wa < wb
	}
	return a < b
}

func choiceLabel(v string) string {
	switch v {
	case calllog.NotApplicable:
		return "Not applicable"
	case calllog.Other:
		return "Other"
	}
	s := strings.ReplaceAll(v, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
