package jwt

import (
	"testing"
	"time"
)

func TestVerifyRoundTrip(t *testing.T) {
	v := NewVerifier("secret")

	token, err := v.Sign("backend", time.Minute)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	claims, err := v.Verify(token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if claims.Subject != "backend" {
		t.Errorf("unexpected subject %q", claims.Subject)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	token, err := NewVerifier("secret-a").Sign("backend", time.Minute)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if _, err := NewVerifier("secret-b").Verify(token); err == nil {
		t.Fatal("expected verification to fail with the wrong secret")
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	v := NewVerifier("secret")
	token, err := v.Sign("backend", -2*time.Minute)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if _, err := v.Verify(token); err == nil {
		t.Fatal("expected verification to fail for an expired token")
	}
}

func TestVerifyGarbage(t *testing.T) {
	if _, err := NewVerifier("secret").Verify("not.a.token"); err == nil {
		t.Fatal("expected verification to fail for malformed input")
	}
}
