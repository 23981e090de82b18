package sqlitedb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestOpen_AppliesSchema(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer db.Close()

	for _, table := range []string{"call", "log", "log_entry", "work_list", "navigation_work_list", "subject_locator", "onschedule"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&name)
		if err != nil {
			t.Errorf("expected table %s: %v", table, err)
		}
	}
}

func TestRunInTx_CommitAndRollback(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer db.Close()
	runner := NewTxRunner(db)
	ctx := context.Background()

	err = runner.RunInTx(ctx, func(ctx context.Context) error {
		if TxFromContext(ctx) == nil {
			t.Error("expected tx in context")
		}
		_, err := Conn(ctx, db).ExecContext(ctx, "INSERT INTO onschedule (subject_identifier, community_arm) VALUES (?, ?)", "S1", "Intervention")
		return err
	})
	if err != nil {
		t.Fatalf("RunInTx() error: %v", err)
	}

	boom := errors.New("boom")
	err = runner.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := Conn(ctx, db).ExecContext(ctx, "INSERT INTO onschedule (subject_identifier, community_arm) VALUES (?, ?)", "S2", "Standard of Care"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM onschedule").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected 1 committed row, got %d", count)
	}
}

func TestRunInTx_Nested(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer db.Close()
	runner := NewTxRunner(db)

	err = runner.RunInTx(context.Background(), func(outer context.Context) error {
		return runner.RunInTx(outer, func(inner context.Context) error {
			if TxFromContext(inner) != TxFromContext(outer) {
				t.Error("expected nested call to reuse the outer transaction")
			}
			return nil
		})
	})
	if err != nil {
		t.Fatalf("RunInTx() error: %v", err)
	}
}

func TestHealthHandler(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer db.Close()

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/db", nil), rec)
	if err := HealthHandler(db)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
