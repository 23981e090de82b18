package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestAuthSkipper(t *testing.T) {
	tests := map[string]bool{
		"/health":                            true,
		"/health/db":                         true,
		"/metrics":                           true,
		"/api/v1/log-entries":                false,
		"/api/v1/navigation-worklists/_sync": false,
		"/listboard/navigation":              false,
		"/":                                  false,
		"/health/extra":                      false,
	}
	e := echo.New()
	for path, public := range tests {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, path, nil), httptest.NewRecorder())
		c.SetPath(path)
		if got := AuthSkipper(c); got != public {
			t.Errorf("AuthSkipper(%s) = %v, want %v", path, got, public)
		}
	}
}
