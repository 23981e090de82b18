// Package audit stamps the created/modified bookkeeping columns every
// follow-up record carries.
package audit

import (
	"context"
	"os"
	"time"

	"github.com/potlako/follow/internal/platform/auth"
	"github.com/potlako/follow/internal/platform/db"
)

// Fields are the audit columns shared by all follow-up tables.
type Fields struct {
	Created          time.Time `db:"created" json:"created"`
	Modified         time.Time `db:"modified" json:"modified"`
	UserCreated      string    `db:"user_created" json:"user_created"`
	UserModified     string    `db:"user_modified" json:"user_modified"`
	HostnameCreated  string    `db:"hostname_created" json:"hostname_created"`
	HostnameModified string    `db:"hostname_modified" json:"hostname_modified"`
	Revision         string    `db:"revision" json:"revision"`
	SiteID           string    `db:"site_id" json:"site_id"`
}

// Stamper fills Fields from the request context.
type Stamper struct {
	Hostname    string
	Revision    string
	DefaultSite string
	now         func() time.Time
}

func NewStamper(revision, defaultSite string) *Stamper {
	host, _ := os.Hostname()
	return &Stamper{Hostname: host, Revision: revision, DefaultSite: defaultSite, now: time.Now}
}

func (s *Stamper) clock() time.Time {
	if s == nil || s.now == nil {
		return time.Now().UTC()
	}
	return s.now().UTC()
}

// Create stamps a new record. A nil Stamper only sets the timestamps and user.
func (s *Stamper) Create(ctx context.Context, f *Fields) {
	now := s.clock()
	user := auth.UserIDFromContext(ctx)
	f.Created, f.Modified = now, now
	f.UserCreated, f.UserModified = user, user
	if s == nil {
		return
	}
	f.HostnameCreated, f.HostnameModified = s.Hostname, s.Hostname
	f.Revision = s.Revision
	f.SiteID = s.site(ctx)
}

// Modify stamps an update, keeping the creation columns of prev.
func (s *Stamper) Modify(ctx context.Context, f *Fields, prev Fields) {
	f.Created = prev.Created
	f.UserCreated = prev.UserCreated
	f.HostnameCreated = prev.HostnameCreated
	f.SiteID = prev.SiteID
	f.Modified = s.clock()
	f.UserModified = auth.UserIDFromContext(ctx)
	if s == nil {
		f.HostnameModified = prev.HostnameModified
		f.Revision = prev.Revision
		return
	}
	f.HostnameModified = s.Hostname
	f.Revision = s.Revision
}

func (s *Stamper) site(ctx context.Context) string {
	if sid := db.SiteFromContext(ctx); sid != "" {
		return sid
	}
	return s.DefaultSite
}

// Columns lists the audit columns in the order Dest and Values use.
var Columns = []string{
	"created", "modified", "user_created", "user_modified",
	"hostname_created", "hostname_modified", "revision", "site_id",
}

// Dest returns scan targets for Columns.
func (f *Fields) Dest() []interface{} {
	return []interface{}{
		&f.Created, &f.Modified, &f.UserCreated, &f.UserModified,
		&f.HostnameCreated, &f.HostnameModified, &f.Revision, &f.SiteID,
	}
}

// Values returns query args for Columns.
func (f *Fields) Values() []interface{} {
	return []interface{}{
		f.Created.UTC(), f.Modified.UTC(), f.UserCreated, f.UserModified,
		f.HostnameCreated, f.HostnameModified, f.Revision, f.SiteID,
	}
}
