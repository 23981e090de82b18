package subject

import (
	"context"
	"errors"
	"testing"
)

// -- Mock Repository --

type mockSubjectRepo struct {
	locators map[string]*Locator
	baseline []string
	team     map[string]bool
	arms     map[string]string
	plans    map[string]bool
	records  map[string]string // table/subject -> id
	failTeam error
}

func newMockSubjectRepo() *mockSubjectRepo {
	return &mockSubjectRepo{
		locators: make(map[string]*Locator),
		team:     make(map[string]bool),
		arms:     make(map[string]string),
		plans:    make(map[string]bool),
		records:  make(map[string]string),
	}
}

func (m *mockSubjectRepo) GetLocator(_ context.Context, sid string) (*Locator, error) {
	l, ok := m.locators[sid]
	if !ok {
		return nil, ErrNotFound
	}
	return l, nil
}

func (m *mockSubjectRepo) BaselineVisitSubjects(_ context.Context) ([]string, error) {
	return m.baseline, nil
}

func (m *mockSubjectRepo) HasTeamDiscussion(_ context.Context, sid string) (bool, error) {
	if m.failTeam != nil {
		return false, m.failTeam
	}
	return m.team[sid], nil
}

func (m *mockSubjectRepo) CommunityArm(_ context.Context, sid string) (string, error) {
	arm, ok := m.arms[sid]
	if !ok {
		return "", ErrNotFound
	}
	return arm, nil
}

func (m *mockSubjectRepo) HasNavigationPlan(_ context.Context, sid string) (bool, error) {
	return m.plans[sid], nil
}

func (m *mockSubjectRepo) RecordID(_ context.Context, table, sid string) (string, error) {
	id, ok := m.records[table+"/"+sid]
	if !ok {
		return "", ErrNotFound
	}
	return id, nil
}

func strPtr(s string) *string { return &s }

func newTestService() (*Service, *mockSubjectRepo) {
	repo := newMockSubjectRepo()
	return NewService(repo), repo
}

// -- Tests --

func TestPhoneChoices_OrderAndLabels(t *testing.T) {
	svc, repo := newTestService()
	repo.locators["066-1"] = &Locator{
		SubjectIdentifier:    "066-1",
		SubjectCell:          strPtr("71234567"),
		SubjectPhone:         strPtr(""),
		SubjectWorkPhone:     strPtr("3901234"),
		IndirectContactPhone: strPtr("3955555"),
	}

	choices, err := svc.PhoneChoices(context.Background(), "066-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Choice{
		{Value: "subject_cell", Label: "71234567 Subject Cell"},
		{Value: "subject_work_phone", Label: "3901234 Subject Work Phone"},
		{Value: "indirect_contact_phone", Label: "3955555 Indirect Contact Phone"},
	}
	if len(choices) != len(want) {
		t.Fatalf("expected %d choices, got %d: %v", len(want), len(choices), choices)
	}
	for i := range want {
		if choices[i] != want[i] {
			t.Errorf("choice %d = %+v, want %+v", i, choices[i], want[i])
		}
	}
}

func TestPhoneChoices_NoLocator(t *testing.T) {
	svc, _ := newTestService()
	choices, err := svc.PhoneChoices(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if choices != nil {
		t.Errorf("expected nil choices, got %v", choices)
	}
}

func TestPhoneChoices_LocatorWithoutNumbers(t *testing.T) {
	svc, repo := newTestService()
	repo.locators["066-2"] = &Locator{SubjectIdentifier: "066-2"}

	choices, err := svc.PhoneChoices(context.Background(), "066-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if choices == nil || len(choices) != 0 {
		t.Errorf("expected empty non-nil choices, got %#v", choices)
	}
}

func TestContactNumber(t *testing.T) {
	svc, repo := newTestService()
	repo.locators["066-1"] = &Locator{SubjectIdentifier: "066-1", SubjectCellAlt: strPtr("72000000")}

	got, err := svc.ContactNumber(context.Background(), "066-1", "subject_cell_alt")
	if err != nil || got != "72000000" {
		t.Errorf("ContactNumber() = %q, %v", got, err)
	}
	got, _ = svc.ContactNumber(context.Background(), "066-1", "subject_cell")
	if got != "" {
		t.Errorf("expected empty number, got %q", got)
	}
	got, _ = svc.ContactNumber(context.Background(), "nobody", "subject_cell")
	if got != "" {
		t.Errorf("expected empty number without locator, got %q", got)
	}
}

func TestFieldTitle(t *testing.T) {
	tests := map[string]string{
		"subject_cell":           "Subject Cell",
		"indirect_contact_phone": "Indirect Contact Phone",
		"subject_cell_alt":       "Subject Cell Alt",
	}
	for in, want := range tests {
		if got := FieldTitle(in); got != want {
			t.Errorf("FieldTitle(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCommunityArm_NotOnSchedule(t *testing.T) {
	svc, _ := newTestService()
	arm, err := svc.CommunityArm(context.Background(), "nobody")
	if err != nil || arm != "" {
		t.Errorf("CommunityArm() = %q, %v; want empty, nil", arm, err)
	}
}

func TestBaselineRoadMap(t *testing.T) {
	svc, repo := newTestService()
	repo.records["clinician_call_enrollment/066-1"] = "abc"

	rm, err := svc.BaselineRoadMap(context.Background(), "066-1",
		[]string{"cliniciancallenrollment", "navigationsummaryandplan"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e := rm["cliniciancallenrollment"]; !e.Exists || e.ID != "abc" {
		t.Errorf("unexpected enrollment entry: %+v", e)
	}
	if e := rm["navigationsummaryandplan"]; e.Exists {
		t.Errorf("expected missing plan, got %+v", e)
	}

	if _, err := svc.BaselineRoadMap(context.Background(), "066-1", []string{"bogus"}); err == nil {
		t.Error("expected error for unknown model")
	}
}

func TestEligibility(t *testing.T) {
	svc, repo := newTestService()
	repo.arms["A"] = ArmIntervention
	repo.arms["B"] = ArmStandardCare
	repo.arms["C"] = ArmIntervention
	repo.team["C"] = true
	repo.arms["D"] = ArmIntervention
	repo.plans["D"] = true

	tests := map[string]bool{"A": true, "B": false, "C": false, "D": false, "E": false}
	for sid, want := range tests {
		e, err := svc.Eligibility(context.Background(), sid)
		if err != nil {
			t.Fatalf("Eligibility(%s): %v", sid, err)
		}
		if e.Qualifies() != want {
			t.Errorf("Eligibility(%s).Qualifies() = %v, want %v", sid, e.Qualifies(), want)
		}
	}
}

func TestEligibility_PropagatesErrors(t *testing.T) {
	svc, repo := newTestService()
	repo.failTeam = errors.New("connection reset")

	if _, err := svc.Eligibility(context.Background(), "A"); err == nil {
		t.Fatal("expected error")
	}
}
