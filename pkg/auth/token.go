package auth

import (
	"time"

	apperrors "roomline/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the decoded result of credential validation: who is calling
// and with which role. Issuing credentials is another service's job; this
// package only consumes them.
type Identity struct {
	UserID string
	Role   Role
}

type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// ParseToken validates a bearer token and extracts the caller identity.
func ParseToken(secret, tokenString string) (*Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, apperrors.Unauthorized("Invalid or expired token")
	}

	role, ok := ParseRole(claims.Role)
	if !ok {
		return nil, apperrors.Unauthorized("Unknown role in token")
	}
	if claims.UserID == "" {
		return nil, apperrors.Unauthorized("Token carries no user identity")
	}

	return &Identity{UserID: claims.UserID, Role: role}, nil
}

// NewServiceToken mints a short-lived service-account token used for
// inter-service calls.
func NewServiceToken(secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: "service_account",
		Role:   string(RoleServiceAccount),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
