// Package admin describes how each follow-up record is laid out for data
// entry: fieldsets, radio widgets, changelist columns and the per-subject
// context shown next to a form.
package admin

import (
	"errors"
	"sort"

	"github.com/potlako/follow/internal/platform/audit"
)

var ErrUnknownModel = errors.New("unknown admin model")

// Orientation of a radio widget.
type Orientation string

const (
	Vertical   Orientation = "vertical"
	Horizontal Orientation = "horizontal"
)

const (
	// AuditFieldsetName heads the read-only bookkeeping fieldset.
	AuditFieldsetName = "Audit"
	EmptyValueDisplay = "-"
	ListPerPage       = 10
	DateHierarchy     = "modified"
)

// Fieldset is a named group of form fields. The first group of a form
// usually has no name.
type Fieldset struct {
	Name    string   `json:"name,omitempty"`
	Fields  []string `json:"fields"`
	Classes []string `json:"classes,omitempty"`
}

// ModelAdmin is the admin definition of one record type.
type ModelAdmin struct {
	Model        string                 `json:"model"`
	VerboseName  string                 `json:"verbose_name"`
	Fieldsets    []Fieldset             `json:"fieldsets"`
	RadioFields  map[string]Orientation `json:"radio_fields,omitempty"`
	ListDisplay  []string               `json:"list_display"`
	SearchFields []string               `json:"search_fields,omitempty"`
	Instructions []string               `json:"instructions,omitempty"`
	// ExtraContextModels are baseline forms whose presence is shown next to
	// the form.
	ExtraContextModels []string `json:"extra_context_models,omitempty"`
	// ContactForm forms name the number tried in each contact-fail label
	// and offer the subject's locator numbers as phone choices.
	ContactForm       bool   `json:"contact_form,omitempty"`
	ListPerPage       int    `json:"list_per_page"`
	DateHierarchy     string `json:"date_hierarchy"`
	EmptyValueDisplay string `json:"empty_value_display"`
	ChangelistPath    string `json:"changelist_path"`
}

// auditFieldset lists the audit columns shown read-only on every form.
func auditFieldset() Fieldset {
	var fields []string
	for _, c := range audit.Columns {
		if c != "site_id" {
			fields = append(fields, c)
		}
	}
	return Fieldset{Name: AuditFieldsetName, Fields: fields, Classes: []string{"collapse"}}
}

// withDefaults fills the settings shared by every follow-up admin and
// appends the audit fieldset.
func withDefaults(m *ModelAdmin) *ModelAdmin {
	if m.ListPerPage == 0 {
		m.ListPerPage = ListPerPage
	}
	if m.DateHierarchy == "" {
		m.DateHierarchy = DateHierarchy
	}
	if m.EmptyValueDisplay == "" {
		m.EmptyValueDisplay = EmptyValueDisplay
	}
	m.Fieldsets = append(m.Fieldsets, auditFieldset())
	return m
}

// FormFields returns the editable fields in fieldset order.
func (m *ModelAdmin) FormFields() []string {
	var out []string
	for _, fs := range m.Fieldsets {
		if fs.Name == AuditFieldsetName {
			continue
		}
		out = append(out, fs.Fields...)
	}
	return out
}

// Registry holds the admin definitions by model name.
type Registry struct {
	admins map[string]*ModelAdmin
}

func NewRegistry(admins ...*ModelAdmin) *Registry {
	r := &Registry{admins: make(map[string]*ModelAdmin, len(admins))}
	for _, m := range admins {
		r.admins[m.Model] = withDefaults(m)
	}
	return r
}

func (r *Registry) Get(model string) (*ModelAdmin, error) {
	m, ok := r.admins[model]
	if !ok {
		return nil, ErrUnknownModel
	}
	return m, nil
}

// Models returns the registered model names, sorted.
func (r *Registry) Models() []string {
	out := make([]string, 0, len(r.admins))
	for name := range r.admins {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
