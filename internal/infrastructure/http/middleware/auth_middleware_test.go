package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/meeting-insights/pkg/jwt"
)

func runMiddleware(t *testing.T, mw echo.MiddlewareFunc, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	handler := mw(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	if err := handler(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	return rec
}

func TestAuthenticateDisabledWithoutVerifier(t *testing.T) {
	mw := NewAuthMiddleware(nil, "")
	req := httptest.NewRequest(http.MethodPost, "/", nil)

	rec := runMiddleware(t, mw.Authenticate, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected pass-through without verifier, got %d", rec.Code)
	}
}

func TestAuthenticateRejectsMissingToken(t *testing.T) {
	mw := NewAuthMiddleware(jwt.NewVerifier("secret"), "")
	req := httptest.NewRequest(http.MethodPost, "/", nil)

	rec := runMiddleware(t, mw.Authenticate, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for missing token, got %d", rec.Code)
	}
}

func TestAuthenticateAcceptsValidToken(t *testing.T) {
	verifier := jwt.NewVerifier("secret")
	token, err := verifier.Sign("backend", time.Minute)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	mw := NewAuthMiddleware(verifier, "")
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := runMiddleware(t, mw.Authenticate, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for valid token, got %d", rec.Code)
	}
}

func TestVerifySignatureAcceptsValidHMAC(t *testing.T) {
	secret := "signing-secret"
	body := `{"id":"m1"}`
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	sig := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	mw := NewAuthMiddleware(nil, secret)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("X-Webhook-Signature", sig)

	rec := runMiddleware(t, mw.VerifySignature, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for valid signature, got %d", rec.Code)
	}
}

func TestVerifySignatureRejectsTamperedBody(t *testing.T) {
	secret := "signing-secret"
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(`{"id":"m1"}`))
	sig := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	mw := NewAuthMiddleware(nil, secret)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"id":"m2"}`))
	req.Header.Set("X-Webhook-Signature", sig)

	rec := runMiddleware(t, mw.VerifySignature, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for tampered body, got %d", rec.Code)
	}
}
