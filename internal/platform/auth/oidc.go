package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Discovery is the part of an OpenID Connect discovery document used to
// verify staff tokens.
type Discovery struct {
	Issuer  string `json:"issuer"`
	JWKSURI string `json:"jwks_uri"`
}

// Discover reads issuer/.well-known/openid-configuration. The document must
// name the same issuer and a jwks_uri.
func Discover(ctx context.Context, client *http.Client, issuer string) (*Discovery, error) {
	base := strings.TrimRight(issuer, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/.well-known/openid-configuration", nil)
	if err != nil {
		return nil, err
	}
	var d Discovery
	if err := getJSON(client, req, &d); err != nil {
		return nil, fmt.Errorf("openid discovery for %s: %w", base, err)
	}
	if d.JWKSURI == "" {
		return nil, fmt.Errorf("openid discovery for %s: no jwks_uri", base)
	}
	if d.Issuer != "" && strings.TrimRight(d.Issuer, "/") != base {
		return nil, fmt.Errorf("openid discovery for %s: document names issuer %q", base, d.Issuer)
	}
	return &d, nil
}

func getJSON(client *http.Client, req *http.Request, out interface{}) error {
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", req.URL, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
