package calllog

const (
	Yes           = "Yes"
	No            = "No"
	NotApplicable = "N/A"
	Other         = "OTHER"

	NoneOfTheAbove = "none_of_the_above"

	CallStatusNew    = "NEW"
	CallStatusOpen   = "OPEN"
	CallStatusClosed = "CLOSED"
)

// ContactFailField pairs a LogEntry contact-fail field with the locator
// number it asks about.
type ContactFailField struct {
	Field        string
	LocatorField string
}

// ContactFailFields is ordered as the fields appear on the LogEntry form.
var ContactFailFields = []ContactFailField{
	{"cell_contact_fail", "subject_cell"},
	{"alt_cell_contact_fail", "subject_cell_alt"},
	{"tel_contact_fail", "subject_phone"},
	{"alt_tel_contact_fail", "subject_phone_alt"},
	{"work_contact_fail", "subject_work_phone"},
	{"cell_alt_contact_fail", "indirect_contact_cell"},
	{"tel_alt_contact_fail", "indirect_contact_phone"},
}

// LocatorFieldFor returns the locator field behind a contact-fail field.
func LocatorFieldFor(field string) (string, bool) {
	for _, f := range ContactFailFields {
		if f.Field == field {
			return f.LocatorField, true
		}
	}
	return "", false
}

var validCallStatuses = map[string]bool{
	CallStatusNew:    true,
	CallStatusOpen:   true,
	CallStatusClosed: true,
}

var validYesNoNA = map[string]bool{
	Yes:           true,
	No:            true,
	NotApplicable: true,
}

var validContactFailReasons = map[string]bool{
	"no_response":             true,
	"no_response_vm_not_left": true,
	"no_response_vm_left":     true,
	"number_changed":          true,
	"number_not_in_use":       true,
	"wrong_number":            true,
	"phone_off":               true,
	NotApplicable:             true,
}

var validApptReasonsUnwilling = map[string]bool{
	"not_interested":   true,
	"busy":             true,
	"away":             true,
	"too_ill":          true,
	"already_attended": true,
	Other:              true,
	NotApplicable:      true,
}

var validApptGradings = map[string]bool{
	"firm":        true,
	"weak":        true,
	"guess":       true,
	NotApplicable: true,
}

var validApptLocations = map[string]bool{
	"home":        true,
	"work":        true,
	"clinic":      true,
	Other:         true,
	NotApplicable: true,
}

var validHomeVisits = map[string]bool{
	"never_answered": true,
	"no_phone":       true,
	"wrong_number":   true,
	"no_locator":     true,
	Other:            true,
	NotApplicable:    true,
}

// FieldChoices exposes the radio choices of each LogEntry field for forms.
var FieldChoices = map[string]map[string]bool{
	"appt":                  validYesNoNA,
	"appt_reason_unwilling": validApptReasonsUnwilling,
	"appt_grading":          validApptGradings,
	"appt_location":         validApptLocations,
	"may_call":              validYesNoNA,
	"home_visit":            validHomeVisits,
	"cell_contact_fail":     validContactFailReasons,
	"alt_cell_contact_fail": validContactFailReasons,
	"tel_contact_fail":      validContactFailReasons,
	"alt_tel_contact_fail":  validContactFailReasons,
	"work_contact_fail":     validContactFailReasons,
	"cell_alt_contact_fail": validContactFailReasons,
	"tel_alt_contact_fail":  validContactFailReasons,
}
