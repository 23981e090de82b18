// Package subject reads the participant records owned by the enrolment and
// clinical modules: locator contact numbers, visits, baseline summaries,
// schedules and navigation plans. Nothing here writes to those tables.
package subject

import "strings"

const (
	// BaselineVisitCode identifies the enrolment (baseline) visit.
	BaselineVisitCode = "1000"

	ArmIntervention = "Intervention"
	ArmStandardCare = "Standard of Care"

	Yes = "Yes"
	No  = "No"
)

// Locator holds a participant's contact details.
type Locator struct {
	SubjectIdentifier    string  `db:"subject_identifier" json:"subject_identifier"`
	SubjectCell          *string `db:"subject_cell" json:"subject_cell,omitempty"`
	SubjectCellAlt       *string `db:"subject_cell_alt" json:"subject_cell_alt,omitempty"`
	SubjectPhone         *string `db:"subject_phone" json:"subject_phone,omitempty"`
	SubjectPhoneAlt      *string `db:"subject_phone_alt" json:"subject_phone_alt,omitempty"`
	SubjectWorkPhone     *string `db:"subject_work_phone" json:"subject_work_phone,omitempty"`
	IndirectContactCell  *string `db:"indirect_contact_cell" json:"indirect_contact_cell,omitempty"`
	IndirectContactPhone *string `db:"indirect_contact_phone" json:"indirect_contact_phone,omitempty"`
	VillageTown          *string `db:"village_town" json:"village_town,omitempty"`
}

// PhoneFields lists the locator contact-number fields in display order.
var PhoneFields = []string{
	"subject_cell",
	"subject_cell_alt",
	"subject_phone",
	"subject_phone_alt",
	"subject_work_phone",
	"indirect_contact_cell",
	"indirect_contact_phone",
}

// Number returns the value of a contact-number field, or "" when the field
// is unknown or empty.
func (l *Locator) Number(field string) string {
	var v *string
	switch field {
	case "subject_cell":
		v = l.SubjectCell
	case "subject_cell_alt":
		v = l.SubjectCellAlt
	case "subject_phone":
		v = l.SubjectPhone
	case "subject_phone_alt":
		v = l.SubjectPhoneAlt
	case "subject_work_phone":
		v = l.SubjectWorkPhone
	case "indirect_contact_cell":
		v = l.IndirectContactCell
	case "indirect_contact_phone":
		v = l.IndirectContactPhone
	}
	if v == nil {
		return ""
	}
	return *v
}

// Choice is a (value, label) pair offered by a form widget.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FieldTitle turns "subject_cell_alt" into "Subject Cell Alt".
func FieldTitle(field string) string {
	words := strings.Split(field, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// RoadMapEntry tells whether a baseline form has been filled for a subject.
type RoadMapEntry struct {
	Model  string `json:"model"`
	Exists bool   `json:"exists"`
	ID     string `json:"id,omitempty"`
}

// RoadMapTables maps baseline form names to the tables that hold them.
var RoadMapTables = map[string]string{
	"cliniciancallenrollment":  "clinician_call_enrollment",
	"navigationsummaryandplan": "navigation_summary_and_plan",
	"baselineclinicalsummary":  "baseline_clinical_summary",
}
