package admin

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/potlako/follow/internal/domain/calllog"
	"github.com/potlako/follow/internal/domain/subject"
)

// ContactForms supplies the subject-specific parts of a contact form.
// *calllog.Service implements it.
type ContactForms interface {
	CustomFieldLabel(ctx context.Context, subjectIdentifier, field string) (string, error)
	PhoneChoices(ctx context.Context, subjectIdentifier string) ([]subject.Choice, error)
	LogChoices(ctx context.Context, logID uuid.UUID) ([]*calllog.Log, error)
}

// RoadMap reports which baseline forms a subject has. *subject.Service
// implements it.
type RoadMap interface {
	BaselineRoadMap(ctx context.Context, subjectIdentifier string, models []string) (map[string]subject.RoadMapEntry, error)
}

type FormField struct {
	Name        string           `json:"name"`
	Label       string           `json:"label"`
	Widget      string           `json:"widget"`
	Orientation Orientation      `json:"orientation,omitempty"`
	Choices     []subject.Choice `json:"choices,omitempty"`
	ReadOnly    bool             `json:"read_only,omitempty"`
}

type FormFieldset struct {
	Name    string      `json:"name,omitempty"`
	Classes []string    `json:"classes,omitempty"`
	Fields  []FormField `json:"fields"`
}

// Form is everything a client needs to render one add/change form.
type Form struct {
	Model             string                          `json:"model"`
	VerboseName       string                          `json:"verbose_name"`
	SubjectIdentifier string                          `json:"subject_identifier,omitempty"`
	Institution       string                          `json:"institution"`
	Instructions      []string                        `json:"instructions,omitempty"`
	Fieldsets         []FormFieldset                  `json:"fieldsets"`
	CustomChoices     []subject.Choice                `json:"custom_choices,omitempty"`
	ExtraContext      map[string]subject.RoadMapEntry `json:"extra_context,omitempty"`
}

// Site builds forms and changelists from a Registry.
type Site struct {
	registry    *Registry
	contacts    ContactForms
	roadMap     RoadMap
	institution string
	listers     map[string]Lister
}

func NewSite(registry *Registry, contacts ContactForms, roadMap RoadMap, institution string) *Site {
	return &Site{
		registry:    registry,
		contacts:    contacts,
		roadMap:     roadMap,
		institution: institution,
		listers:     make(map[string]Lister),
	}
}

func (s *Site) Registry() *Registry { return s.registry }

// FormDescriptor describes the form of model for subjectIdentifier. logID
// restricts the log choice of a log entry form to that log.
func (s *Site) FormDescriptor(ctx context.Context, model, subjectIdentifier string, logID uuid.UUID) (*Form, error) {
	m, err := s.registry.Get(model)
	if err != nil {
		return nil, err
	}

	form := &Form{
		Model:             m.Model,
		VerboseName:       m.VerboseName,
		SubjectIdentifier: subjectIdentifier,
		Institution:       s.institution,
		Instructions:      m.Instructions,
	}

	if m.ContactForm {
		if form.CustomChoices, err = s.contacts.PhoneChoices(ctx, subjectIdentifier); err != nil {
			return nil, fmt.Errorf("phone choices: %w", err)
		}
		if form.CustomChoices == nil {
			form.CustomChoices = []subject.Choice{}
		}
	}

	if len(m.ExtraContextModels) > 0 {
		if form.ExtraContext, err = s.roadMap.BaselineRoadMap(ctx, subjectIdentifier, m.ExtraContextModels); err != nil {
			return nil, fmt.Errorf("road map: %w", err)
		}
	}

	n := 0
	for _, fs := range m.Fieldsets {
		out := FormFieldset{Name: fs.Name, Classes: fs.Classes}
		readOnly := fs.Name == AuditFieldsetName
		for _, name := range fs.Fields {
			f := formField(m, form, name, readOnly)
			if !readOnly {
				n++
				f.Label = fmt.Sprintf("%d. %s", n, f.Label)
				if m.ContactForm {
					if err := s.contactLabel(ctx, subjectIdentifier, n, &f); err != nil {
						return nil, err
					}
				}
			}
			out.Fields = append(out.Fields, f)
		}
		form.Fieldsets = append(form.Fieldsets, out)
	}

	if m.ContactForm {
		if err := s.restrictLogs(ctx, form, logID); err != nil {
			return nil, err
		}
	}
	return form, nil
}

func formField(m *ModelAdmin, form *Form, name string, readOnly bool) FormField {
	spec := specFor(name)
	f := FormField{Name: name, Label: spec.label, Widget: spec.widget, ReadOnly: readOnly}
	if readOnly {
		return f
	}
	if o, ok := m.RadioFields[name]; ok {
		f.Widget, f.Orientation = WidgetRadio, o
	}
	f.Choices = staticChoices(name)
	if m.ContactForm && (name == "phone_num_type" || name == "phone_num_success") {
		f.Choices = append(append([]subject.Choice{}, form.CustomChoices...),
			subject.Choice{Value: calllog.NoneOfTheAbove, Label: "None of the above"})
	}
	return f
}

// contactLabel replaces the label of a contact-fail field with one naming
// the number that was tried.
func (s *Site) contactLabel(ctx context.Context, subjectIdentifier string, n int, f *FormField) error {
	number, err := s.contacts.CustomFieldLabel(ctx, subjectIdentifier, f.Name)
	if err != nil {
		return fmt.Errorf("label for %s: %w", f.Name, err)
	}
	if number != "" {
		f.Label = fmt.Sprintf("%d. Why was the contact to %s unsuccessful?", n, number)
	}
	return nil
}

func (s *Site) restrictLogs(ctx context.Context, form *Form, logID uuid.UUID) error {
	logs, err := s.contacts.LogChoices(ctx, logID)
	if err != nil {
		return fmt.Errorf("log choices: %w", err)
	}
	choices := make([]subject.Choice, 0, len(logs))
	for _, l := range logs {
		choices = append(choices, subject.Choice{
			Value: l.ID.String(),
			Label: l.LogDatetime.UTC().Format("2006-01-02 15:04"),
		})
	}
	for i := range form.Fieldsets {
		for j := range form.Fieldsets[i].Fields {
			if form.Fieldsets[i].Fields[j].Name == "log" {
				form.Fieldsets[i].Fields[j].Choices = choices
			}
		}
	}
	return nil
}
