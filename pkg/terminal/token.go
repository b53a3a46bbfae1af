package terminal

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fatman2021/pcbasic/pkg/configuration"
	"github.com/fatman2021/pcbasic/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
)

const defaultJWTSecret = "fallback_secret_change_in_production"

// getJWTSecret reads the signing secret from the environment or the
// configuration file.
func getJWTSecret() string {
	if envSecret := os.Getenv("JWT_SECRET_KEY"); envSecret != "" {
		return envSecret
	}
	secret := configuration.GetString("JWT", "secret_key", defaultJWTSecret)
	if secret == defaultJWTSecret {
		logger.Warn(logger.AreaSession, "using fallback JWT secret, set JWT_SECRET_KEY for production")
	}
	return secret
}

func getTokenExpiry() time.Duration {
	hours := configuration.GetInt("JWT", "token_expiry_hours", 24)
	return time.Duration(hours) * time.Hour
}

// SessionClaims are the claims of a session token.
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// GenerateSessionToken signs a token for a new session.
func GenerateSessionToken(sessionID string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(getTokenExpiry())),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "pcbasic",
			Subject:   "session",
			ID:        sessionID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(getJWTSecret()))
	if err != nil {
		return "", fmt.Errorf("could not sign token: %v", err)
	}
	logger.SessionInfo("session token generated for %s", sessionID)
	return signed, nil
}

// ValidateSessionToken checks a token and returns its claims.
func ValidateSessionToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&SessionClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing algorithm: %v", token.Header["alg"])
			}
			return []byte(getJWTSecret()), nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("token parsing failed: %v", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return nil, fmt.Errorf("could not extract token claims")
	}
	if claims.ExpiresAt.Time.Before(time.Now()) {
		return nil, fmt.Errorf("token has expired")
	}
	return claims, nil
}

// ExtractTokenFromRequest pulls the token from the Authorization
// header or the token query parameter.
func ExtractTokenFromRequest(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1], nil
		}
		return "", fmt.Errorf("invalid authorization header format")
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return token, nil
	}
	return "", fmt.Errorf("no token found in request")
}
