package calllog

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/potlako/follow/internal/domain/subject"
	"github.com/potlako/follow/internal/platform/query"
	"github.com/potlako/follow/internal/platform/sqlitedb"
	"github.com/potlako/follow/internal/platform/urls"
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

func newSQLiteService(t *testing.T, db *sql.DB) *Service {
	t.Helper()
	phones := subject.NewService(subject.NewRepoSQLite(db))
	svc := NewService(NewCallRepoSQLite(db), NewLogRepoSQLite(db), NewLogEntryRepoSQLite(db),
		sqlitedb.NewTxRunner(db), phones, nil, urls.NewReverser(testURLNames))
	svc.now = func() time.Time { return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestSQLite_CallRoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewCallRepoSQLite(db)
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)

	outcome := "reached"
	c := &Call{
		ID:                uuid.New(),
		SubjectIdentifier: "066-1",
		Label:             "navigation",
		Scheduled:         time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Repeats:           true,
		CallStatus:        CallStatusNew,
		FirstCalled:       &now,
		CallOutcome:       &outcome,
	}
	c.Created, c.Modified = now, now
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.SubjectIdentifier != "066-1" || !got.Repeats || got.CallStatus != CallStatusNew {
		t.Errorf("unexpected call: %+v", got)
	}
	if got.FirstCalled == nil || !got.FirstCalled.Equal(now) || got.LastCalled != nil {
		t.Errorf("unexpected called times: %v / %v", got.FirstCalled, got.LastCalled)
	}
	if got.CallOutcome == nil || *got.CallOutcome != "reached" {
		t.Errorf("unexpected outcome: %v", got.CallOutcome)
	}

	got.CallStatus = CallStatusClosed
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if again, _ := repo.GetByID(ctx, c.ID); again.CallStatus != CallStatusClosed {
		t.Errorf("update not persisted: %s", again.CallStatus)
	}

	if err := repo.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestSQLite_CallSearch(t *testing.T) {
	db := openTestDB(t)
	repo := NewCallRepoSQLite(db)
	ctx := context.Background()

	for i, sid := range []string{"066-1", "066-2", "077-1"} {
		c := &Call{
			ID: uuid.New(), SubjectIdentifier: sid, Label: "navigation",
			Scheduled: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), CallStatus: CallStatusNew,
		}
		c.Created = time.Date(2024, 3, 1+i, 0, 0, 0, 0, time.UTC)
		c.Modified = time.Date(2024, time.Month(1+i), 5, 0, 0, 0, 0, time.UTC)
		if err := repo.Create(ctx, c); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	items, total, err := repo.Search(ctx, SearchParams{Query: "066"}, 10, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("expected 2 matches for 066, got %d/%d", total, len(items))
	}
	if items[0].SubjectIdentifier != "066-2" {
		t.Errorf("expected newest modified first, got %s", items[0].SubjectIdentifier)
	}

	_, total, err = repo.Search(ctx, SearchParams{Modified: query.DateHierarchy{Year: 2024, Month: 3}}, 10, 0)
	if err != nil {
		t.Fatalf("Search by month: %v", err)
	}
	if total != 1 {
		t.Errorf("expected 1 call modified in March, got %d", total)
	}

	items, total, _ = repo.Search(ctx, SearchParams{}, 1, 1)
	if total != 3 || len(items) != 1 || items[0].SubjectIdentifier != "066-2" {
		t.Errorf("unexpected page: total=%d items=%v", total, items)
	}
}

func TestSQLite_CreateLogEntryEndToEnd(t *testing.T) {
	db := openTestDB(t)
	svc := newSQLiteService(t, db)
	ctx := context.Background()

	if _, err := db.Exec(`INSERT INTO subject_locator (subject_identifier, subject_cell, subject_phone) VALUES (?, ?, ?)`,
		"066-1", "71234567", "3951234"); err != nil {
		t.Fatalf("seed locator: %v", err)
	}

	call := &Call{SubjectIdentifier: "066-1", Label: "navigation", Scheduled: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)}
	if err := svc.CreateCall(ctx, call); err != nil {
		t.Fatalf("CreateCall: %v", err)
	}
	l := &Log{CallID: call.ID}
	if err := svc.CreateLog(ctx, l); err != nil {
		t.Fatalf("CreateLog: %v", err)
	}

	e := reachedEntry(l.ID)
	if err := svc.CreateLogEntry(ctx, e); err != nil {
		t.Fatalf("CreateLogEntry: %v", err)
	}

	stored, err := svc.GetLogEntry(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetLogEntry: %v", err)
	}
	if len(stored.PhoneNumType) != 2 || stored.PhoneNumType[1] != "subject_phone" {
		t.Errorf("phone_num_type not round-tripped: %v", stored.PhoneNumType)
	}
	if len(stored.PhoneNumSuccess) != 1 || stored.PhoneNumSuccess[0] != "subject_cell" {
		t.Errorf("phone_num_success not round-tripped: %v", stored.PhoneNumSuccess)
	}
	if stored.TelContactFail != "no_response" || stored.CellContactFail != NotApplicable {
		t.Errorf("unexpected contact-fail values: %+v", stored)
	}
	if stored.ApptDate == nil || !stored.ApptDate.Equal(*e.ApptDate) {
		t.Errorf("unexpected appt_date: %v", stored.ApptDate)
	}

	updated, err := svc.GetCall(ctx, call.ID)
	if err != nil {
		t.Fatalf("GetCall: %v", err)
	}
	if updated.CallAttempts != 1 || updated.CallStatus != CallStatusOpen {
		t.Errorf("call not bumped: attempts=%d status=%s", updated.CallAttempts, updated.CallStatus)
	}

	items, total, err := svc.SearchLogEntries(ctx, SearchParams{LogID: l.ID}, 10, 0)
	if err != nil || total != 1 || len(items) != 1 {
		t.Fatalf("expected one entry for log, got %d (%v)", total, err)
	}

	label, err := svc.CustomFieldLabel(ctx, "066-1", "tel_contact_fail")
	if err != nil || label != "3951234" {
		t.Errorf("expected phone number label, got %q, %v", label, err)
	}
}

func TestSQLite_CreateLogEntryRollsBack(t *testing.T) {
	db := openTestDB(t)
	svc := newSQLiteService(t, db)
	ctx := context.Background()

	call := &Call{SubjectIdentifier: "066-1", Label: "navigation", Scheduled: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)}
	if err := svc.CreateCall(ctx, call); err != nil {
		t.Fatalf("CreateCall: %v", err)
	}
	l := &Log{CallID: call.ID}
	if err := svc.CreateLog(ctx, l); err != nil {
		t.Fatalf("CreateLog: %v", err)
	}
	// Removing the call after the log exists makes the attempt bookkeeping fail.
	if _, err := db.Exec(`PRAGMA foreign_keys = OFF`); err != nil {
		t.Fatalf("pragma: %v", err)
	}
	if _, err := db.Exec(`DELETE FROM call WHERE id = ?`, call.ID); err != nil {
		t.Fatalf("delete call: %v", err)
	}

	e := unreachedEntry(l.ID)
	e.SubjectIdentifier = "066-9"
	if err := svc.CreateLogEntry(ctx, e); err == nil {
		t.Fatal("expected error when the parent call is missing")
	}
	var n int
	db.QueryRow(`SELECT COUNT(*) FROM log_entry`).Scan(&n)
	if n != 0 {
		t.Errorf("expected the entry to be rolled back, found %d", n)
	}
}
