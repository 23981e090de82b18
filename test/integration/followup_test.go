package integration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/potlako/follow/internal/config"
	"github.com/potlako/follow/internal/domain/calllog"
	"github.com/potlako/follow/internal/domain/subject"
	"github.com/potlako/follow/internal/domain/worklist"
	"github.com/potlako/follow/internal/platform/audit"
	"github.com/potlako/follow/internal/platform/db"
	"github.com/potlako/follow/internal/platform/urls"
	"github.com/potlako/follow/pkg/pagination"
)

func seedSubject(t *testing.T, ctx context.Context, sid, arm, village string) {
	t.Helper()
	mustExec(t, ctx, `INSERT INTO subject_visit (id, subject_identifier, visit_code, report_datetime) VALUES ($1, $2, $3, NOW())`,
		uuid.New(), sid, subject.BaselineVisitCode)
	mustExec(t, ctx, `INSERT INTO subject_locator (subject_identifier, subject_cell, subject_phone, village_town) VALUES ($1, '71234567', '3951234', $2)`,
		sid, village)
	mustExec(t, ctx, `INSERT INTO onschedule (subject_identifier, community_arm) VALUES ($1, $2)`, sid, arm)
}

func TestNavigationWorkList_Postgres(t *testing.T) {
	ctx := newSite(t, "nav")
	pool := requirePool(t)

	seedSubject(t, ctx, "066-01", subject.ArmIntervention, "Mochudi")
	seedSubject(t, ctx, "066-02", subject.ArmIntervention, "Molepolole")
	seedSubject(t, ctx, "066-03", "Standard of Care", "Mochudi")

	stamper := audit.NewStamper("test", "default")
	subjects := subject.NewService(subject.NewRepoPG(pool))
	navRepo := worklist.NewRepoPG(pool, worklist.KindNavigation)
	navigation := worklist.NewService(worklist.KindNavigation, navRepo, stamper)
	reconciler := worklist.NewReconciler(navRepo, subjects, db.NewTxRunner(pool), stamper, zerolog.Nop())
	board := worklist.NewListboardService(reconciler, navigation, urls.NewReverser(config.DefaultURLNames))

	lb, err := board.Listboard(ctx, worklist.ListboardQuery{
		Page:     pagination.Params{Limit: 10},
		BasePath: "/listboard/navigation/",
	})
	if err != nil {
		t.Fatalf("Listboard: %v", err)
	}
	if lb.Sync != (worklist.SyncResult{Created: 2}) {
		t.Errorf("unexpected sync: %+v", lb.Sync)
	}
	if lb.Total != 2 {
		t.Fatalf("expected 2 rows, got %d", lb.Total)
	}

	lb, err = board.Listboard(ctx, worklist.ListboardQuery{
		Search:   "molepolole",
		Page:     pagination.Params{Limit: 10},
		BasePath: "/listboard/navigation/",
	})
	if err != nil {
		t.Fatalf("Listboard search: %v", err)
	}
	if lb.Total != 1 || lb.Rows[0].SubjectIdentifier != "066-02" {
		t.Errorf("expected only 066-02 for the village search, got %+v", lb.Rows)
	}

	// A navigation plan takes the subject off the list.
	mustExec(t, ctx, `INSERT INTO navigation_summary_and_plan (id, subject_identifier) VALUES ($1, '066-01')`, uuid.New())
	res, err := reconciler.Sync(ctx)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if res != (worklist.SyncResult{Deleted: 1, Kept: 1}) {
		t.Errorf("unexpected sync after plan: %+v", res)
	}

	// The unique subject constraint holds at the database level too.
	dup := &worklist.WorkList{ID: uuid.New(), SubjectIdentifier: "066-02", ReportDatetime: time.Now(), IsCalled: worklist.No, Visited: worklist.No}
	if err := navRepo.Create(ctx, dup); err == nil {
		t.Error("expected duplicate navigation row to be rejected")
	}
}

func TestNavigationSync_ConcurrentListboards(t *testing.T) {
	ctx := newSite(t, "navrace")
	pool := requirePool(t)
	site := db.SiteFromContext(ctx)
	for i := 1; i <= 5; i++ {
		seedSubject(t, ctx, fmt.Sprintf("066-1%d", i), subject.ArmIntervention, "Mochudi")
	}

	stamper := audit.NewStamper("test", site)
	navRepo := worklist.NewRepoPG(pool, worklist.KindNavigation)
	reconciler := worklist.NewReconciler(navRepo, subject.NewService(subject.NewRepoPG(pool)), db.NewTxRunner(pool), stamper, zerolog.Nop())

	const loads = 4
	results := make([]worklist.SyncResult, loads)
	errs := make([]error, loads)
	var wg sync.WaitGroup
	for i := 0; i < loads; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pinned, release, err := db.PinSite(context.Background(), pool, site)
			if err != nil {
				errs[i] = err
				return
			}
			defer release()
			results[i], errs[i] = reconciler.Sync(pinned)
		}(i)
	}
	wg.Wait()

	created := 0
	for i := range results {
		if errs[i] != nil {
			t.Fatalf("load %d: %v", i, errs[i])
		}
		created += results[i].Created
	}
	if created != 5 {
		t.Errorf("expected 5 rows created across all loads, got %d", created)
	}
}

func TestCallLog_Postgres(t *testing.T) {
	ctx := newSite(t, "calls")
	pool := requirePool(t)
	seedSubject(t, ctx, "066-01", subject.ArmIntervention, "Mochudi")

	subjects := subject.NewService(subject.NewRepoPG(pool))
	svc := calllog.NewService(
		calllog.NewCallRepoPG(pool),
		calllog.NewLogRepoPG(pool),
		calllog.NewLogEntryRepoPG(pool),
		db.NewTxRunner(pool),
		subjects,
		audit.NewStamper("test", "default"),
		urls.NewReverser(config.DefaultURLNames),
	)

	call := &calllog.Call{SubjectIdentifier: "066-01", Label: "navigation", Scheduled: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	if err := svc.CreateCall(ctx, call); err != nil {
		t.Fatalf("CreateCall: %v", err)
	}
	l := &calllog.Log{CallID: call.ID, ContactNotes: ptrStr("first attempt")}
	if err := svc.CreateLog(ctx, l); err != nil {
		t.Fatalf("CreateLog: %v", err)
	}

	at := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	entry := &calllog.LogEntry{
		LogID:             l.ID,
		SubjectIdentifier: "066-01",
		CallDatetime:      at,
		PhoneNumType:      []string{"subject_cell"},
		PhoneNumSuccess:   []string{calllog.NoneOfTheAbove},
		CellContactFail:   "no_response_vm_left",
		HomeVisit:         "never_answered",
	}
	if err := svc.CreateLogEntry(ctx, entry); err != nil {
		t.Fatalf("CreateLogEntry: %v", err)
	}

	got, err := svc.GetLogEntry(ctx, entry.ID)
	if err != nil {
		t.Fatalf("GetLogEntry: %v", err)
	}
	if len(got.PhoneNumSuccess) != 1 || got.PhoneNumSuccess[0] != calllog.NoneOfTheAbove {
		t.Errorf("multi-select not round-tripped: %v", got.PhoneNumSuccess)
	}

	updated, err := svc.GetCall(ctx, call.ID)
	if err != nil {
		t.Fatalf("GetCall: %v", err)
	}
	if updated.CallAttempts != 1 || updated.CallStatus != calllog.CallStatusOpen {
		t.Errorf("expected one attempt and OPEN status, got %d %s", updated.CallAttempts, updated.CallStatus)
	}
	if updated.LastCalled == nil || !updated.LastCalled.Equal(at) {
		t.Errorf("expected last_called %v, got %v", at, updated.LastCalled)
	}

	if err := svc.DeleteCall(ctx, call.ID); err != nil {
		t.Fatalf("DeleteCall: %v", err)
	}
	if _, err := svc.GetLog(ctx, l.ID); !errors.Is(err, calllog.ErrNotFound) {
		t.Errorf("expected log to cascade with its call, got %v", err)
	}
}
