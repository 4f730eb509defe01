package accounts

import (
	"testing"
	"time"
)

var testSecret = []byte("test-secret-key-32-bytes-long!!!")

func newTokens() TokenService {
	return TokenService{Secret: testSecret, AccessTokenTTL: time.Hour}
}

func TestAccessToken_RoundTrip(t *testing.T) {
	svc := newTokens()
	now := time.Now().UTC()

	tok, exp, err := svc.NewAccessToken("user-1", "admin", now)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if want := now.Add(time.Hour); !exp.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, exp)
	}

	claims, err := svc.ParseAccessToken(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("expected subject 'user-1', got %q", claims.Subject)
	}
	if claims.Role != "admin" {
		t.Fatalf("expected role 'admin', got %q", claims.Role)
	}
}

func TestAccessToken_ZeroNowDefaults(t *testing.T) {
	tok, exp, err := newTokens().NewAccessToken("user-1", "user", time.Time{})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if tok == "" || exp.Before(time.Now()) {
		t.Fatalf("expected future expiry, got %v", exp)
	}
}

func TestAccessToken_MissingSecret(t *testing.T) {
	svc := TokenService{AccessTokenTTL: time.Hour}
	if _, _, err := svc.NewAccessToken("user-1", "user", time.Now()); err == nil {
		t.Fatal("expected error for missing secret")
	}
}

func TestAccessToken_Expired(t *testing.T) {
	svc := newTokens()
	tok, _, err := svc.NewAccessToken("user-1", "user", time.Now().Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := svc.ParseAccessToken(tok); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestAccessToken_WrongSecret(t *testing.T) {
	tok, _, err := newTokens().NewAccessToken("user-1", "user", time.Now())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	other := TokenService{Secret: []byte("a-different-secret"), AccessTokenTTL: time.Hour}
	if _, err := other.ParseAccessToken(tok); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}
