// Package urls reverses configured dashboard URL names and implements the
// "next" redirect used after saving a form.
package urls

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

// NoReverseMatch is returned when a URL name is unknown or its kwargs do not
// fit the path template.
type NoReverseMatch struct {
	Name   string
	Kwargs map[string]string
	Reason string
}

func (e *NoReverseMatch) Error() string {
	return fmt.Sprintf("reverse for %q with kwargs %s not found: %s", e.Name, formatKwargs(e.Kwargs), e.Reason)
}

// NextURLRedirectError reports a post-save redirect that could not be built.
type NextURLRedirectError struct {
	URLName string
	Kwargs  map[string]string
	Err     error
}

func (e *NextURLRedirectError) Error() string {
	return fmt.Sprintf("%v. Got url_name=%s, kwargs=%s", e.Err, e.URLName, formatKwargs(e.Kwargs))
}

func (e *NextURLRedirectError) Unwrap() error { return e.Err }

func formatKwargs(kwargs map[string]string) string {
	keys := make([]string, 0, len(kwargs))
	for k := range kwargs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %q", k, kwargs[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Reverser resolves URL names to paths. Templates use {kwarg} placeholders.
type Reverser struct {
	names map[string]string
}

func NewReverser(names map[string]string) *Reverser {
	cp := make(map[string]string, len(names))
	for k, v := range names {
		cp[k] = v
	}
	return &Reverser{names: cp}
}

// Reverse fills name's template with kwargs. Every placeholder must be given
// a non-empty value and every kwarg must match a placeholder.
func (r *Reverser) Reverse(name string, kwargs map[string]string) (string, error) {
	tmpl, ok := r.names[name]
	if !ok || name == "" {
		return "", &NoReverseMatch{Name: name, Kwargs: kwargs, Reason: "unknown url name"}
	}
	used := make(map[string]bool, len(kwargs))
	var missing []string
	path := placeholderPattern.ReplaceAllStringFunc(tmpl, func(m string) string {
		key := m[1 : len(m)-1]
		v := kwargs[key]
		if v == "" {
			missing = append(missing, key)
			return m
		}
		used[key] = true
		return url.PathEscape(v)
	})
	if len(missing) > 0 {
		return "", &NoReverseMatch{Name: name, Kwargs: kwargs, Reason: "missing " + strings.Join(missing, ", ")}
	}
	for k := range kwargs {
		if !used[k] {
			return "", &NoReverseMatch{Name: name, Kwargs: kwargs, Reason: "unexpected kwarg " + k}
		}
	}
	return path, nil
}

// Has reports whether name is registered.
func (r *Reverser) Has(name string) bool {
	_, ok := r.names[name]
	return ok
}

// NextURL implements the default post-save redirect. With no "next" query
// value it returns fallback. Otherwise next is "<url_name>,<kwarg>,..." and
// each listed kwarg is read from query; empty values are dropped.
func (r *Reverser) NextURL(query url.Values, fallback string) (string, error) {
	next := query.Get("next")
	if next == "" {
		return fallback, nil
	}
	parts := strings.Split(next, ",")
	name := strings.TrimSpace(parts[0])
	kwargs := make(map[string]string)
	for _, attr := range parts[1:] {
		attr = strings.TrimSpace(attr)
		if v := query.Get(attr); attr != "" && v != "" {
			kwargs[attr] = v
		}
	}
	path, err := r.Reverse(name, kwargs)
	if err != nil {
		return "", &NextURLRedirectError{URLName: name, Kwargs: kwargs, Err: err}
	}
	return path, nil
}
