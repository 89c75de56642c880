package session

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the operator identity embedded in the console token.
// The token only decorates the UI and the Authorization header; access
// control itself lives on the backend.
type Claims struct {
	Operator string `json:"operator"`
	Role     string `json:"role"`
	Region   string `json:"region"`
	jwt.RegisteredClaims
}

var (
	ErrEmptyToken   = errors.New("session: empty token")
	ErrInvalidToken = errors.New("session: invalid token")
)

// ParseToken validates an HS256 operator token and returns its claims.
func ParseToken(token, secret string) (*Claims, error) {
	if token == "" {
		return nil, ErrEmptyToken
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &Claims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	claims.Role = normalizeRole(claims.Role)
	return claims, nil
}

func normalizeRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "admin", "administrator":
		return "admin"
	case "supervisor":
		return "supervisor"
	default:
		return "operator"
	}
}
