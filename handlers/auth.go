package handlers

import (
	"fmt"

	"github.com/golang-jwt/jwt/v4"

	"github.com/amu-telemed/telemed-backend/models"
)

// ValidateToken verifies an access token and returns its claims. The token
// issuance flow lives in the excluded authentication collaborator; the
// realtime handshake only verifies.
func ValidateToken(tokenStr, secret string) (*models.CustomClaims, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret not configured")
	}

	claims := &models.CustomClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}
