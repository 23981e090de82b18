package urls

import (
	"errors"
	"net/url"
	"testing"
)

func testReverser() *Reverser {
	return NewReverser(map[string]string{
		"subject_listboard_url":    "/subject/listboard/{subject_identifier}/",
		"navigation_listboard_url": "/listboard/navigation/",
	})
}

func TestReverse(t *testing.T) {
	r := testReverser()

	got, err := r.Reverse("subject_listboard_url", map[string]string{"subject_identifier": "066-123"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "/subject/listboard/066-123/" {
		t.Errorf("unexpected path %q", got)
	}

	if got, _ := r.Reverse("navigation_listboard_url", nil); got != "/listboard/navigation/" {
		t.Errorf("unexpected path %q", got)
	}
}

func TestReverse_Errors(t *testing.T) {
	r := testReverser()
	tests := []struct {
		name   string
		url    string
		kwargs map[string]string
	}{
		{"unknown", "nope_url", nil},
		{"empty name", "", nil},
		{"missing kwarg", "subject_listboard_url", nil},
		{"empty kwarg", "subject_listboard_url", map[string]string{"subject_identifier": ""}},
		{"extra kwarg", "navigation_listboard_url", map[string]string{"subject_identifier": "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Reverse(tt.url, tt.kwargs)
			var nrm *NoReverseMatch
			if !errors.As(err, &nrm) {
				t.Fatalf("expected NoReverseMatch, got %v", err)
			}
		})
	}
}

func TestReverse_EscapesValues(t *testing.T) {
	got, err := testReverser().Reverse("subject_listboard_url", map[string]string{"subject_identifier": "a/b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "/subject/listboard/a%2Fb/" {
		t.Errorf("expected escaped value, got %q", got)
	}
}

func TestNextURL(t *testing.T) {
	r := testReverser()

	got, err := r.NextURL(url.Values{}, "/fallback/")
	if err != nil || got != "/fallback/" {
		t.Errorf("NextURL() without next = %q, %v", got, err)
	}

	q := url.Values{"next": {"subject_listboard_url,subject_identifier"}, "subject_identifier": {"066-9"}}
	got, err = r.NextURL(q, "/fallback/")
	if err != nil || got != "/subject/listboard/066-9/" {
		t.Errorf("NextURL() = %q, %v", got, err)
	}

	q = url.Values{"next": {"navigation_listboard_url"}}
	if got, err = r.NextURL(q, "/fallback/"); err != nil || got != "/listboard/navigation/" {
		t.Errorf("NextURL() = %q, %v", got, err)
	}
}

func TestNextURL_RedirectError(t *testing.T) {
	r := testReverser()
	q := url.Values{"next": {"missing_url,subject_identifier"}, "subject_identifier": {"066-9"}}

	_, err := r.NextURL(q, "/fallback/")
	var redirErr *NextURLRedirectError
	if !errors.As(err, &redirErr) {
		t.Fatalf("expected NextURLRedirectError, got %v", err)
	}
	if redirErr.URLName != "missing_url" || redirErr.Kwargs["subject_identifier"] != "066-9" {
		t.Errorf("unexpected error fields: %+v", redirErr)
	}
	var nrm *NoReverseMatch
	if !errors.As(err, &nrm) {
		t.Error("expected wrapped NoReverseMatch")
	}
}
