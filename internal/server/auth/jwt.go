// Package auth issues and validates the JWT access tokens used by the
// HTTP layer to establish the ambient user identity.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/edensitko/RED-CRM-sub001/internal/common"
)

// Claims extends the registered claims with the user identifier.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
}

// GenerateToken mints a signed HS256 token for userID.
func GenerateToken(userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetUserIDFromToken validates tokenString and extracts the user identifier.
func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return "", err
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.UserID, nil
}
