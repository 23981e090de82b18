package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultKeyTTL      = 5 * time.Minute
	minRefreshInterval = 10 * time.Second
)

var ErrUnknownKey = errors.New("signing key not published by issuer")

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// KeySet holds the issuer's RSA signing keys. The JWKS location is
// discovered from the issuer on first use unless given. Keys are refreshed
// after the TTL, and at most every ten seconds when a token names an unknown
// kid.
type KeySet struct {
	issuer  string
	jwksURL string
	ttl     time.Duration
	client  *http.Client

	mu        sync.Mutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

func NewKeySet(issuer, jwksURL string, ttl time.Duration) *KeySet {
	if ttl <= 0 {
		ttl = defaultKeyTTL
	}
	return &KeySet{
		issuer:  issuer,
		jwksURL: jwksURL,
		ttl:     ttl,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Key returns the key for kid. An empty kid matches the only key when the
// issuer publishes exactly one.
func (s *KeySet) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stale := time.Since(s.fetchedAt) > s.ttl
	if key := s.lookup(kid); key != nil && !stale {
		return key, nil
	}
	if stale || time.Since(s.fetchedAt) > minRefreshInterval {
		if err := s.refresh(ctx); err != nil {
			return nil, err
		}
	}
	if key := s.lookup(kid); key != nil {
		return key, nil
	}
	return nil, fmt.Errorf("kid %q: %w", kid, ErrUnknownKey)
}

func (s *KeySet) lookup(kid string) *rsa.PublicKey {
	if kid == "" && len(s.keys) == 1 {
		for _, k := range s.keys {
			return k
		}
	}
	return s.keys[kid]
}

// Keyfunc adapts the set to jwt.Parse.
func (s *KeySet) Keyfunc(ctx context.Context) jwt.Keyfunc {
	return func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		return s.Key(ctx, kid)
	}
}

func (s *KeySet) refresh(ctx context.Context) error {
	if s.jwksURL == "" {
		d, err := Discover(ctx, s.client, s.issuer)
		if err != nil {
			return err
		}
		s.jwksURL = d.JWKSURI
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.jwksURL, nil)
	if err != nil {
		return err
	}
	var doc struct {
		Keys []jwk `json:"keys"`
	}
	if err := getJSON(s.client, req, &doc); err != nil {
		return fmt.Errorf("fetch signing keys: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" || (k.Use != "" && k.Use != "sig") {
			continue
		}
		pub, err := k.rsaKey()
		if err != nil {
			continue
		}
		keys[k.Kid] = pub
	}
	s.keys = keys
	s.fetchedAt = time.Now()
	return nil
}

func (k jwk) rsaKey() (*rsa.PublicKey, error) {
	n, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("modulus: %w", err)
	}
	e, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("exponent: %w", err)
	}
	exp := new(big.Int).SetBytes(e)
	if !exp.IsInt64() || exp.Int64() > 1<<31-1 || exp.Int64() < 3 {
		return nil, fmt.Errorf("exponent out of range")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(n), E: int(exp.Int64())}, nil
}
