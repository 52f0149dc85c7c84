package scm

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"
)

func testPrivateKeyPEM(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	der := x509.MarshalPKCS1PrivateKey(key)
	block := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: der}
	return string(pem.EncodeToMemory(block))
}

func TestTokenCache_FetchesOnceAndCaches(t *testing.T) {
	calls := 0
	fetch := func(appJWT string) (string, time.Time, error) {
		calls++
		return "tok-1", time.Now().Add(time.Hour), nil
	}
	cache, err := newTokenCache("app-1", "inst-1", testPrivateKeyPEM(t), fetch)
	if err != nil {
		t.Fatalf("newTokenCache() error = %v", err)
	}

	now := time.Now()
	tok1, err := cache.Token(now)
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	tok2, err := cache.Token(now.Add(time.Minute))
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}

	if tok1 != "tok-1" || tok2 != "tok-1" {
		t.Errorf("tok1=%q tok2=%q, want both tok-1", tok1, tok2)
	}
	if calls != 1 {
		t.Errorf("fetch called %d times, want 1", calls)
	}
}

func TestTokenCache_RefreshesWithinSkewWindow(t *testing.T) {
	calls := 0
	expiry := time.Now().Add(10 * time.Minute)
	fetch := func(appJWT string) (string, time.Time, error) {
		calls++
		return "tok", expiry, nil
	}
	cache, err := newTokenCache("app-1", "inst-1", testPrivateKeyPEM(t), fetch)
	if err != nil {
		t.Fatalf("newTokenCache() error = %v", err)
	}

	cache.Token(time.Now())
	// 4 minutes before expiry (inside the 5-minute skew) should trigger refresh.
	cache.Token(expiry.Add(-4 * time.Minute))

	if calls != 2 {
		t.Errorf("fetch called %d times, want 2 (initial + refresh within skew)", calls)
	}
}
