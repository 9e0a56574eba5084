package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/meeting-insights/pkg/jwt"
)

// AuthMiddleware guards the webhook endpoints. Both checks are
// optional: a nil verifier disables the bearer check and an empty
// signing secret disables the HMAC check.
type AuthMiddleware struct {
	verifier      *jwt.Verifier
	signingSecret string
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(verifier *jwt.Verifier, signingSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		verifier:      verifier,
		signingSecret: signingSecret,
	}
}

// Authenticate validates the bearer token on the request.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if m.verifier == nil {
			return next(c)
		}

		token := extractToken(c.Request())
		if token == "" {
			return respondError(c, http.StatusUnauthorized, "Missing authorization token")
		}
		if _, err := m.verifier.Verify(token); err != nil {
			return respondError(c, http.StatusUnauthorized, "Invalid or expired token")
		}
		return next(c)
	}
}

// VerifySignature checks the X-Webhook-Signature header against an
// HMAC-SHA256 of the raw body. The body is restored for downstream
// binding.
func (m *AuthMiddleware) VerifySignature(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if m.signingSecret == "" {
			return next(c)
		}

		sig := c.Request().Header.Get("X-Webhook-Signature")
		if sig == "" {
			return respondError(c, http.StatusUnauthorized, "Missing webhook signature")
		}

		body, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return respondError(c, http.StatusBadRequest, "Unreadable request body")
		}
		c.Request().Body = io.NopCloser(strings.NewReader(string(body)))

		mac := hmac.New(sha256.New, []byte(m.signingSecret))
		mac.Write(body)
		expected := hex.EncodeToString(mac.Sum(nil))
		if !hmac.Equal([]byte(expected), []byte(strings.TrimPrefix(sig, "sha256="))) {
			return respondError(c, http.StatusUnauthorized, "Invalid webhook signature")
		}
		return next(c)
	}
}

// extractToken pulls the bearer token from the Authorization header.
func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func respondError(c echo.Context, code int, message string) error {
	return c.JSON(code, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
