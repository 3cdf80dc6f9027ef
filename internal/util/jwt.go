package util

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"gigledger/internal/model"
)

// GenerateJWT creates a token whose address claim is the caller identity for
// every ledger operation.
func GenerateJWT(address model.Address, secret string) (string, error) {
	claims := jwt.MapClaims{
		"address": string(address),
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseJWT validates the token and extracts the caller address.
func ParseJWT(tokenStr, secret string) (model.Address, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return model.ZeroAddress, err
	}

	if !token.Valid {
		return model.ZeroAddress, jwt.ErrTokenInvalidClaims
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return model.ZeroAddress, jwt.ErrTokenMalformed
	}

	addr, ok := claims["address"].(string)
	if !ok || addr == "" {
		return model.ZeroAddress, jwt.ErrTokenMalformed
	}

	return model.Address(addr), nil
}

func ExtractToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}

	parts := strings.Split(auth, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return parts[1]
}
