package jwtutil

import (
	"time"

	"github.com/golang-jwt/jwt/v4"

	"tenant-platform/pkg/config"
)

var (
	signingKey []byte
	expiry     = time.Hour * 24
)

// Initialize sets the signing key and token lifetime from configuration.
// Must be called once at startup before tokens are issued or validated.
func Initialize(cfg *config.JWTConfig) {
	signingKey = []byte(cfg.SigningKey)
	if cfg.ExpirationHours > 0 {
		expiry = time.Duration(cfg.ExpirationHours) * time.Hour
	}
}

// Expiry returns the configured token lifetime. Live redis sessions share
// this TTL so the ledger, the session store and the token expire together.
func Expiry() time.Duration {
	return expiry
}

// UserClaims represents the JWT claims for user authentication
type UserClaims struct {
	Username   string `json:"username"`
	UserID     uint   `json:"user_id"`
	SessionKey string `json:"session_key"`
	IsAdmin    bool   `json:"is_admin,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken creates a JWT token bound to one login session. The
// session key correlates the token with its LoginSession ledger row and
// its live redis session.
func GenerateToken(username string, userID uint, sessionKey string, isAdmin bool) (string, error) {
	claims := UserClaims{
		Username:   username,
		UserID:     userID,
		SessionKey: sessionKey,
		IsAdmin:    isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(signingKey)
}

// ValidateToken validates and parses the JWT token
func ValidateToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return signingKey, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
