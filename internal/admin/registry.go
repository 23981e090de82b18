package admin

import (
	"github.com/potlako/follow/internal/domain/calllog"
	"github.com/potlako/follow/internal/domain/worklist"
)

func workListFieldsets() []Fieldset {
	return []Fieldset{{
		Fields: []string{"subject_identifier", "report_datetime", "is_called", "called_datetime", "visited"},
	}}
}

func logEntryRadioFields() map[string]Orientation {
	radio := map[string]Orientation{
		"appt":                  Vertical,
		"appt_reason_unwilling": Vertical,
		"appt_grading":          Vertical,
		"appt_location":         Vertical,
		"may_call":              Vertical,
		"home_visit":            Vertical,
	}
	for _, f := range calllog.ContactFailFields {
		radio[f.Field] = Vertical
	}
	return radio
}

// DefaultRegistry registers the five follow-up record types.
func DefaultRegistry() *Registry {
	return NewRegistry(
		&ModelAdmin{
			Model:       "call",
			VerboseName: "Call",
			Fieldsets: []Fieldset{{
				Fields: []string{"subject_identifier", "label", "scheduled", "repeats", "call_attempts",
					"call_status", "first_called", "last_called", "call_outcome"},
			}},
			RadioFields: map[string]Orientation{"call_status": Vertical},
			ListDisplay: []string{"subject_identifier", "call_attempts", "call_outcome", "scheduled", "label",
				"first_called", "last_called", "call_status", "user_modified", "modified"},
			SearchFields:   []string{"subject_identifier", "label"},
			ChangelistPath: calllog.CallChangelistPath,
		},
		&ModelAdmin{
			Model:       "log",
			VerboseName: "Log",
			Fieldsets: []Fieldset{{
				Fields: []string{"call", "log_datetime", "locator_information", "contact_notes"},
			}},
			ListDisplay:    []string{"call_id", "log_datetime", "modified"},
			SearchFields:   []string{"locator_information", "contact_notes"},
			ChangelistPath: calllog.LogChangelistPath,
		},
		&ModelAdmin{
			Model:       "logentry",
			VerboseName: "Log Entry",
			Fieldsets: []Fieldset{
				{Fields: []string{"log", "subject_identifier", "call_datetime", "phone_num_type", "phone_num_success"}},
				{Name: "Subject Cell & Telephones", Fields: []string{
					"cell_contact_fail", "alt_cell_contact_fail", "tel_contact_fail", "alt_tel_contact_fail"}},
				{Name: "Subject Work Contact", Fields: []string{"work_contact_fail"}},
				{Name: "Indirect Contact Cell & Telephone", Fields: []string{"cell_alt_contact_fail", "tel_alt_contact_fail"}},
				{Name: "Schedule Appointment With Participant", Fields: []string{
					"appt", "appt_reason_unwilling", "appt_reason_unwilling_other", "appt_date",
					"appt_grading", "appt_location", "appt_location_other", "may_call",
					"home_visit", "home_visit_other"}},
			},
			RadioFields:        logEntryRadioFields(),
			ListDisplay:        []string{"subject_identifier", "call_datetime"},
			SearchFields:       []string{"subject_identifier"},
			ExtraContextModels: []string{"cliniciancallenrollment", "navigationsummaryandplan"},
			ContactForm:        true,
			ChangelistPath:     calllog.LogEntryChangelistPath,
		},
		&ModelAdmin{
			Model:          worklist.KindWorkList.Model,
			VerboseName:    "Work List",
			Fieldsets:      workListFieldsets(),
			ListDisplay:    []string{"subject_identifier", "report_datetime", "is_called", "visited"},
			SearchFields:   []string{"subject_identifier"},
			Instructions:   []string{worklist.Instructions},
			ChangelistPath: worklist.KindWorkList.Path,
		},
		&ModelAdmin{
			Model:          worklist.KindNavigation.Model,
			VerboseName:    "Navigation Work List",
			Fieldsets:      workListFieldsets(),
			ListDisplay:    []string{"subject_identifier", "village_town", "report_datetime", "is_called", "visited"},
			SearchFields:   []string{"subject_identifier", "village_town"},
			Instructions:   []string{worklist.Instructions},
			ChangelistPath: worklist.KindNavigation.Path,
		},
	)
}
