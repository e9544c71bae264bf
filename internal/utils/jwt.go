package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token types carried in the token_type claim.
const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// TokenPair is the transient credential pair issued on successful
// authentication. Neither token is persisted.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type jwtCustomClaims struct {
	UserID    string `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// GenerateTokenPair creates signed access and refresh JWTs for the user.
func GenerateTokenPair(secret string, userID uuid.UUID, accessTTL, refreshTTL time.Duration) (TokenPair, error) {
	access, err := signToken(secret, userID, tokenTypeAccess, accessTTL)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := signToken(secret, userID, tokenTypeRefresh, refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{Access: access, Refresh: refresh}, nil
}

func signToken(secret string, userID uuid.UUID, tokenType string, ttl time.Duration) (string, error) {
	claims := &jwtCustomClaims{
		UserID:    userID.String(),
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseAccessToken validates an access token and returns the embedded
// user ID. Refresh tokens are rejected here; they are only accepted by
// the refresh endpoint.
func ParseAccessToken(secret, tokenString string) (uuid.UUID, error) {
	return parseToken(secret, tokenString, tokenTypeAccess)
}

// ParseRefreshToken validates a refresh token and returns the embedded
// user ID.
func ParseRefreshToken(secret, tokenString string) (uuid.UUID, error) {
	return parseToken(secret, tokenString, tokenTypeRefresh)
}

func parseToken(secret, tokenString, wantType string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	claims, ok := token.Claims.(*jwtCustomClaims)
	if !ok || !token.Valid {
		return uuid.Nil, jwt.ErrTokenInvalidClaims
	}

	if claims.TokenType != wantType {
		return uuid.Nil, jwt.ErrTokenInvalidClaims
	}

	return uuid.Parse(claims.UserID)
}
