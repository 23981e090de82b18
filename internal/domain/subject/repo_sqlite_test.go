package subject

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/potlako/follow/internal/platform/sqlitedb"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sqlitedb.Open(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func mustExec(t *testing.T, db *sql.DB, query string, args ...interface{}) {
	t.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}

func TestRepoSQLite_Lookups(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepoSQLite(db)
	ctx := context.Background()
	now := time.Now().UTC()

	mustExec(t, db, `INSERT INTO subject_locator (subject_identifier, subject_cell, village_town) VALUES (?, ?, ?)`,
		"066-1", "71234567", "Mochudi")
	mustExec(t, db, `INSERT INTO subject_visit (id, subject_identifier, visit_code, report_datetime) VALUES (?, ?, ?, ?)`,
		"v1", "066-1", "1000", now)
	mustExec(t, db, `INSERT INTO subject_visit (id, subject_identifier, visit_code, report_datetime) VALUES (?, ?, ?, ?)`,
		"v2", "066-1", "1000", now)
	mustExec(t, db, `INSERT INTO subject_visit (id, subject_identifier, visit_code, report_datetime) VALUES (?, ?, ?, ?)`,
		"v3", "066-2", "2000", now)
	mustExec(t, db, `INSERT INTO baseline_clinical_summary (id, subject_identifier, team_discussion) VALUES (?, ?, ?)`,
		"b1", "066-1", "No")
	mustExec(t, db, `INSERT INTO onschedule (subject_identifier, community_arm) VALUES (?, ?)`, "066-1", ArmIntervention)
	mustExec(t, db, `INSERT INTO clinician_call_enrollment (id, subject_identifier) VALUES (?, ?)`, "ce1", "066-1")

	loc, err := repo.GetLocator(ctx, "066-1")
	if err != nil {
		t.Fatalf("GetLocator: %v", err)
	}
	if loc.Number("subject_cell") != "71234567" || loc.VillageTown == nil || *loc.VillageTown != "Mochudi" {
		t.Errorf("unexpected locator: %+v", loc)
	}
	if _, err := repo.GetLocator(ctx, "none"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	ids, err := repo.BaselineVisitSubjects(ctx)
	if err != nil {
		t.Fatalf("BaselineVisitSubjects: %v", err)
	}
	if len(ids) != 1 || ids[0] != "066-1" {
		t.Errorf("expected [066-1], got %v", ids)
	}

	if team, _ := repo.HasTeamDiscussion(ctx, "066-1"); team {
		t.Error("team_discussion=No must not count")
	}
	if arm, _ := repo.CommunityArm(ctx, "066-1"); arm != ArmIntervention {
		t.Errorf("expected Intervention, got %q", arm)
	}
	if _, err := repo.CommunityArm(ctx, "066-2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing onschedule, got %v", err)
	}
	if plan, _ := repo.HasNavigationPlan(ctx, "066-1"); plan {
		t.Error("expected no navigation plan")
	}
	if id, err := repo.RecordID(ctx, "clinician_call_enrollment", "066-1"); err != nil || id != "ce1" {
		t.Errorf("RecordID() = %q, %v", id, err)
	}
	if _, err := repo.RecordID(ctx, "subject_locator; DROP TABLE call", "066-1"); err == nil {
		t.Error("expected unknown table to be rejected")
	}
}
