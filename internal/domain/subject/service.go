package subject

import (
	"context"
	"errors"
	"fmt"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// PhoneChoices returns one choice per non-empty locator number, labelled
// "<number> <Field Title>", in PhoneFields order. A subject without a
// locator yields nil and no error.
func (s *Service) PhoneChoices(ctx context.Context, subjectIdentifier string) ([]Choice, error) {
	loc, err := s.locator(ctx, subjectIdentifier)
	if err != nil || loc == nil {
		return nil, err
	}
	choices := []Choice{}
	for _, field := range PhoneFields {
		if n := loc.Number(field); n != "" {
			choices = append(choices, Choice{Value: field, Label: n + " " + FieldTitle(field)})
		}
	}
	return choices, nil
}

// ContactNumber returns the locator number stored in field, or "" when the
// subject has no locator or the field is empty.
func (s *Service) ContactNumber(ctx context.Context, subjectIdentifier, field string) (string, error) {
	loc, err := s.locator(ctx, subjectIdentifier)
	if err != nil || loc == nil {
		return "", err
	}
	return loc.Number(field), nil
}

// VillageTown returns the subject's village or town, if recorded.
func (s *Service) VillageTown(ctx context.Context, subjectIdentifier string) (*string, error) {
	loc, err := s.locator(ctx, subjectIdentifier)
	if err != nil || loc == nil {
		return nil, err
	}
	return loc.VillageTown, nil
}

func (s *Service) locator(ctx context.Context, subjectIdentifier string) (*Locator, error) {
	if subjectIdentifier == "" {
		return nil, nil
	}
	loc, err := s.repo.GetLocator(ctx, subjectIdentifier)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return loc, err
}

// CommunityArm returns "" for subjects that are not on schedule.
func (s *Service) CommunityArm(ctx context.Context, subjectIdentifier string) (string, error) {
	arm, err := s.repo.CommunityArm(ctx, subjectIdentifier)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return arm, err
}

// BaselineRoadMap reports, for each requested baseline form, whether the
// subject already has one.
func (s *Service) BaselineRoadMap(ctx context.Context, subjectIdentifier string, models []string) (map[string]RoadMapEntry, error) {
	out := make(map[string]RoadMapEntry, len(models))
	for _, m := range models {
		table, ok := RoadMapTables[m]
		if !ok {
			return nil, fmt.Errorf("unknown baseline model %q", m)
		}
		entry := RoadMapEntry{Model: m}
		if subjectIdentifier != "" {
			id, err := s.repo.RecordID(ctx, table, subjectIdentifier)
			switch {
			case err == nil:
				entry.Exists, entry.ID = true, id
			case !errors.Is(err, ErrNotFound):
				return nil, err
			}
		}
		out[m] = entry
	}
	return out, nil
}

// Eligibility is the subject state the navigation work list depends on.
type Eligibility struct {
	SubjectIdentifier string
	TeamDiscussion    bool
	CommunityArm      string
	NavigationPlan    bool
}

// Qualifies reports whether a navigation work-list row should exist.
func (e Eligibility) Qualifies() bool {
	return !e.TeamDiscussion && e.CommunityArm == ArmIntervention && !e.NavigationPlan
}

// BaselineSubjects lists the subjects with a baseline visit.
func (s *Service) BaselineSubjects(ctx context.Context) ([]string, error) {
	return s.repo.BaselineVisitSubjects(ctx)
}

// Eligibility gathers the work-list conditions for one subject.
func (s *Service) Eligibility(ctx context.Context, subjectIdentifier string) (Eligibility, error) {
	e := Eligibility{SubjectIdentifier: subjectIdentifier}
	var err error
	if e.TeamDiscussion, err = s.repo.HasTeamDiscussion(ctx, subjectIdentifier); err != nil {
		return e, fmt.Errorf("team discussion for %s: %w", subjectIdentifier, err)
	}
	if e.CommunityArm, err = s.CommunityArm(ctx, subjectIdentifier); err != nil {
		return e, fmt.Errorf("community arm for %s: %w", subjectIdentifier, err)
	}
	if e.NavigationPlan, err = s.repo.HasNavigationPlan(ctx, subjectIdentifier); err != nil {
		return e, fmt.Errorf("navigation plan for %s: %w", subjectIdentifier, err)
	}
	return e, nil
}
