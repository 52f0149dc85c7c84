package scm

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"sync"
	"time"
)

// refreshSkew is how far before expiry a cached installation token is
// treated as stale, per the configured-app-token contract (§6).
const refreshSkew = 5 * time.Minute

// tokenFetcher exchanges a freshly-minted app JWT for an installation
// access token; split out so tests can substitute a fake GitHub response
// without signing real JWTs.
type tokenFetcher func(appJWT string) (token string, expiry time.Time, err error)

// tokenCache mints and caches a GitHub App installation token, refreshing it
// shortly before expiry. No JWT library exists in the dependency stack
// wired for this repo, so the JWT is hand-assembled from stdlib crypto/rsa;
// see the grounding ledger.
type tokenCache struct {
	appID          string
	installationID string
	privateKey     *rsa.PrivateKey
	fetch          tokenFetcher

	mu      sync.Mutex
	token   string
	expiry  time.Time
}

func newTokenCache(appID, installationID, pemKey string, fetch tokenFetcher) (*tokenCache, error) {
	key, err := parsePrivateKey(pemKey)
	if err != nil {
		return nil, fmt.Errorf("parse github app private key: %w", err)
	}
	return &tokenCache{
		appID:          appID,
		installationID: installationID,
		privateKey:     key,
		fetch:          fetch,
	}, nil
}

func parsePrivateKey(pemKey string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(pemKey))
	if block == nil {
		return nil, errors.New("no PEM block found")
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("private key is not RSA")
	}
	return key, nil
}

// Token returns a valid installation token, refreshing it if the cached one
// is within refreshSkew of expiry.
func (c *tokenCache) Token(now time.Time) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && now.Add(refreshSkew).Before(c.expiry) {
		return c.token, nil
	}

	appJWT, err := c.mintAppJWT(now)
	if err != nil {
		return "", fmt.Errorf("mint app jwt: %w", err)
	}
	token, expiry, err := c.fetch(appJWT)
	if err != nil {
		return "", fmt.Errorf("exchange installation token: %w", err)
	}
	c.token = token
	c.expiry = expiry
	return c.token, nil
}

// mintAppJWT builds a short-lived RS256 JWT identifying the GitHub App,
// per GitHub's app-authentication contract: iat slightly in the past to
// tolerate clock drift, exp 9 minutes out (GitHub's 10-minute ceiling).
func (c *tokenCache) mintAppJWT(now time.Time) (string, error) {
	header := map[string]string{"alg": "RS256", "typ": "JWT"}
	claims := map[string]interface{}{
		"iat": now.Add(-60 * time.Second).Unix(),
		"exp": now.Add(9 * time.Minute).Unix(),
		"iss": c.appID,
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return "", err
	}
	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	signingInput := b64URL(headerJSON) + "." + b64URL(claimsJSON)
	digest := sha256.Sum256([]byte(signingInput))
	sig, err := rsa.SignPKCS1v15(rand.Reader, c.privateKey, crypto.SHA256, digest[:])
	if err != nil {
		return "", err
	}
	return signingInput + "." + base64.RawURLEncoding.EncodeToString(sig), nil
}

func b64URL(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}
