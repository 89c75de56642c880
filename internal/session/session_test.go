package session

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, secret string, claims *Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func TestParseTokenRoundTrip(t *testing.T) {
	token := signToken(t, "secret-1", &Claims{
		Operator: "priya",
		Role:     "Administrator",
		Region:   "North Goa",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := ParseToken(token, "secret-1")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Operator != "priya" || claims.Region != "North Goa" {
		t.Fatalf("claims lost: %+v", claims)
	}
	if claims.Role != "admin" {
		t.Fatalf("role not normalized: %q", claims.Role)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token := signToken(t, "secret-1", &Claims{Operator: "priya"})
	if _, err := ParseToken(token, "secret-2"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseTokenExpired(t *testing.T) {
	token := signToken(t, "secret-1", &Claims{
		Operator: "priya",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	if _, err := ParseToken(token, "secret-1"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestParseTokenEmpty(t *testing.T) {
	if _, err := ParseToken("", "secret-1"); !errors.Is(err, ErrEmptyToken) {
		t.Fatalf("expected ErrEmptyToken, got %v", err)
	}
}

func TestNormalizeRoleDefault(t *testing.T) {
	token := signToken(t, "s", &Claims{Operator: "x", Role: "dispatcher"})
	claims, err := ParseToken(token, "s")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Role != "operator" {
		t.Fatalf("unknown role should fall back to operator, got %q", claims.Role)
	}
}
