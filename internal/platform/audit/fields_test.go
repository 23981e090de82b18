package audit

import (
	"context"
	"testing"
	"time"

	"github.com/potlako/follow/internal/platform/auth"
	"github.com/potlako/follow/internal/platform/db"
)

func fixedStamper(t time.Time) *Stamper {
	return &Stamper{Hostname: "host-a", Revision: "1.2.0", DefaultSite: "default", now: func() time.Time { return t }}
}

func TestStamper_Create(t *testing.T) {
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	s := fixedStamper(now)
	ctx := auth.WithUser(context.Background(), "nav-1", nil)

	var f Fields
	s.Create(ctx, &f)

	if !f.Created.Equal(now) || !f.Modified.Equal(now) {
		t.Errorf("unexpected timestamps: %+v", f)
	}
	if f.UserCreated != "nav-1" || f.UserModified != "nav-1" {
		t.Errorf("unexpected users: %+v", f)
	}
	if f.HostnameCreated != "host-a" || f.Revision != "1.2.0" || f.SiteID != "default" {
		t.Errorf("unexpected stamp: %+v", f)
	}
}

func TestStamper_CreateUsesSiteFromContext(t *testing.T) {
	s := fixedStamper(time.Now())
	ctx := context.WithValue(context.Background(), db.SiteIDKey, "gaborone")

	var f Fields
	s.Create(ctx, &f)
	if f.SiteID != "gaborone" {
		t.Errorf("expected site gaborone, got %q", f.SiteID)
	}
}

func TestStamper_ModifyKeepsCreation(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	prev := Fields{Created: created, UserCreated: "ra-1", HostnameCreated: "host-old", SiteID: "s1"}
	s := fixedStamper(created.Add(time.Hour))
	ctx := auth.WithUser(context.Background(), "nav-2", nil)

	var f Fields
	s.Modify(ctx, &f, prev)

	if !f.Created.Equal(created) || f.UserCreated != "ra-1" || f.HostnameCreated != "host-old" || f.SiteID != "s1" {
		t.Errorf("creation columns changed: %+v", f)
	}
	if f.UserModified != "nav-2" || f.HostnameModified != "host-a" || !f.Modified.Equal(created.Add(time.Hour)) {
		t.Errorf("modification columns not stamped: %+v", f)
	}
}

func TestStamper_Nil(t *testing.T) {
	var s *Stamper
	var f Fields
	s.Create(context.Background(), &f)
	if f.Created.IsZero() {
		t.Error("expected nil stamper to set timestamps")
	}
}

func TestFields_DestMatchesColumns(t *testing.T) {
	var f Fields
	if len(f.Dest()) != len(Columns) || len(f.Values()) != len(Columns) {
		t.Fatalf("Dest/Values must line up with Columns: %d/%d/%d", len(f.Dest()), len(f.Values()), len(Columns))
	}
	f.SiteID = "gaborone"
	if got := f.Values()[7]; got != "gaborone" {
		t.Errorf("expected site_id last, got %v", got)
	}
}
