package subject

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested subject record does not exist.
var ErrNotFound = errors.New("subject record not found")

type Repository interface {
	GetLocator(ctx context.Context, subjectIdentifier string) (*Locator, error)
	// BaselineVisitSubjects returns the distinct subjects with a baseline visit.
	BaselineVisitSubjects(ctx context.Context) ([]string, error)
	HasTeamDiscussion(ctx context.Context, subjectIdentifier string) (bool, error)
	// CommunityArm returns ErrNotFound when the subject is not on schedule.
	CommunityArm(ctx context.Context, subjectIdentifier string) (string, error)
	HasNavigationPlan(ctx context.Context, subjectIdentifier string) (bool, error)
	// RecordID returns the id of the subject's row in a RoadMapTables table.
	RecordID(ctx context.Context, table, subjectIdentifier string) (string, error)
}
