// Package worklist holds the daily follow-up work lists and the navigation
// work list that tracks intervention-arm participants still waiting for a
// navigation plan.
package worklist

import (
	"time"

	"github.com/google/uuid"

	"github.com/potlako/follow/internal/platform/audit"
)

const (
	Yes = "Yes"
	No  = "No"
)

// Instructions is shown above both work-list forms.
const Instructions = "Complete this form once per day."

// Kind describes one of the two work-list tables.
type Kind struct {
	// Model is the admin registry name.
	Model string
	Table string
	Path  string
	// OncePerDay limits a subject to one row per report date.
	OncePerDay bool
	// OnePerSubject limits a subject to a single row.
	OnePerSubject bool
}

var (
	KindWorkList = Kind{
		Model:      "worklist",
		Table:      "work_list",
		Path:       "/api/v1/worklists",
		OncePerDay: true,
	}
	KindNavigation = Kind{
		Model:         "navigationworklist",
		Table:         "navigation_work_list",
		Path:          "/api/v1/navigation-worklists",
		OnePerSubject: true,
	}
)

// WorkList is a per-participant follow-up task: was the participant called,
// and were they visited.
type WorkList struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	SubjectIdentifier string     `db:"subject_identifier" json:"subject_identifier"`
	ReportDatetime    time.Time  `db:"report_datetime" json:"report_datetime"`
	IsCalled          string     `db:"is_called" json:"is_called"`
	CalledDatetime    *time.Time `db:"called_datetime" json:"called_datetime,omitempty"`
	Visited           string     `db:"visited" json:"visited"`
	VillageTown       *string    `db:"village_town" json:"village_town,omitempty"`
	audit.Fields
}

var validYesNo = map[string]bool{Yes: true, No: true}

// Listboard filters.
const (
	FilterCalled     = "called"
	FilterNotCalled  = "not_called"
	FilterVisited    = "visited"
	FilterNotVisited = "not_visited"
)

var filterClauses = map[string]struct{ column, value string }{
	FilterCalled:     {"is_called", Yes},
	FilterNotCalled:  {"is_called", No},
	FilterVisited:    {"visited", Yes},
	FilterNotVisited: {"visited", No},
}
