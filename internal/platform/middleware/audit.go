package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/potlako/follow/internal/platform/auth"
)

// AuditEntry records one access to participant follow-up data.
type AuditEntry struct {
	UserID            string
	UserRoles         []string
	SiteID            string
	Model             string
	SubjectIdentifier string
	Action            string // read, create, update, delete
	IPAddress         string
	UserAgent         string
	Path              string
	Method            string
	Timestamp         time.Time
	RequestID         string
	StatusCode        int
}

type AuditRecorder interface {
	RecordAccess(entry AuditEntry) error
}

type AuditRecorderFunc func(entry AuditEntry) error

func (f AuditRecorderFunc) RecordAccess(entry AuditEntry) error {
	return f(entry)
}

var auditedPrefixes = []string{"/api/v1/", "/listboard/"}

// Audit writes a participant_access log line for every request that reaches
// follow-up data, then passes the entry to each recorder. Recorder failures
// are logged and never fail the request.
func Audit(logger zerolog.Logger, recorders ...AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			prefix, ok := auditedPrefix(c.Request().URL.Path)
			if !ok {
				return next(c)
			}

			err := next(c)
			entry := newAuditEntry(c, prefix, err)

			for _, r := range recorders {
				if r == nil {
					continue
				}
				if recErr := r.RecordAccess(entry); recErr != nil {
					logger.Error().Err(recErr).Str("request_id", entry.RequestID).Msg("failed to record audit entry")
				}
			}

			logger.Info().
				Str("type", "followup_audit").
				Str("request_id", entry.RequestID).
				Str("user_id", entry.UserID).
				Strs("user_roles", entry.UserRoles).
				Str("site_id", entry.SiteID).
				Str("model", entry.Model).
				Str("subject_identifier", entry.SubjectIdentifier).
				Str("action", entry.Action).
				Str("method", entry.Method).
				Str("path", entry.Path).
				Str("remote_ip", entry.IPAddress).
				Int("status", entry.StatusCode).
				Msg("participant_access")

			return err
		}
	}
}

func newAuditEntry(c echo.Context, prefix string, err error) AuditEntry {
	req := c.Request()
	ctx := req.Context()

	status := c.Response().Status
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
	}

	site, _ := c.Get("site_id").(string)
	rid, _ := c.Get("request_id").(string)
	subjectID := c.Param("subject_identifier")
	if subjectID == "" {
		subjectID = c.QueryParam("subject_identifier")
	}

	return AuditEntry{
		Timestamp:         time.Now().UTC(),
		Path:              req.URL.Path,
		Method:            req.Method,
		IPAddress:         c.RealIP(),
		UserAgent:         req.UserAgent(),
		StatusCode:        status,
		UserID:            auth.UserIDFromContext(ctx),
		UserRoles:         auth.RolesFromContext(ctx),
		SiteID:            site,
		RequestID:         rid,
		Action:            actionFor(req.Method),
		Model:             modelFor(c, prefix),
		SubjectIdentifier: subjectID,
	}
}

func auditedPrefix(path string) (string, bool) {
	for _, p := range auditedPrefixes {
		if strings.HasPrefix(path, p) {
			return p, true
		}
	}
	return "", false
}

func actionFor(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	}
	return "read"
}

// modelFor names the resource touched: the admin :model param when routed
// through the admin site ("admin.logentry"), else the first path segment
// after prefix ("log-entries", "navigation").
func modelFor(c echo.Context, prefix string) string {
	if m := c.Param("model"); m != "" {
		return "admin." + m
	}
	rest := strings.TrimPrefix(c.Request().URL.Path, prefix)
	if seg, _, _ := strings.Cut(rest, "/"); seg != "" {
		return seg
	}
	return "unknown"
}
