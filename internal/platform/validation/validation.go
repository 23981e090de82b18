// Package validation collects per-field form errors the way the admin forms
// report them.
package validation

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	MsgRequired      = "This field is required."
	MsgNotApplicable = "This field is not applicable."
	MsgInvalidChoice = "Select a valid choice."
)

// Error maps field names to messages.
type Error struct {
	Fields map[string]string `json:"fields"`
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Field returns an Error for a single field.
func Field(field, msg string) *Error {
	return &Error{Fields: map[string]string{field: msg}}
}

// Errors accumulates messages; the first message per field wins.
type Errors map[string]string

func (fe Errors) Add(field, msg string) {
	if _, ok := fe[field]; !ok {
		fe[field] = msg
	}
}

func (fe Errors) Addf(field, format string, args ...interface{}) {
	fe.Add(field, fmt.Sprintf(format, args...))
}

// Err returns nil when no field failed.
func (fe Errors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return &Error{Fields: fe}
}

// ApplicableIf checks a choice that must be answered (not N/A) exactly when
// applicable holds.
func (fe Errors) ApplicableIf(field, value, notApplicable string, applicable bool) {
	switch {
	case applicable && value == notApplicable:
		fe.Add(field, MsgRequired)
	case !applicable && value != notApplicable:
		fe.Add(field, MsgNotApplicable)
	}
}

// RequiredIf checks a free-text field that must be filled exactly when
// required holds.
func (fe Errors) RequiredIf(field string, value *string, required bool) {
	has := value != nil && strings.TrimSpace(*value) != ""
	switch {
	case required && !has:
		fe.Add(field, MsgRequired)
	case !required && has:
		fe.Add(field, MsgNotApplicable)
	}
}

// HTTPError turns an *Error into a 400 carrying the field map; ok is false
// for any other error.
func HTTPError(err error) (*echo.HTTPError, bool) {
	var verr *Error
	if !errors.As(err, &verr) {
		return nil, false
	}
	return echo.NewHTTPError(http.StatusBadRequest, map[string]interface{}{
		"message": "validation failed",
		"fields":  verr.Fields,
	}), true
}
