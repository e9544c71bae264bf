package services

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"
)

// GoogleClaims holds the verified claims extracted from a Google ID token.
// Claims are only read after signature and audience verification.
type GoogleClaims struct {
	Email    string
	FullName string
}

// GoogleVerifier verifies Google ID tokens against a configured client ID.
type GoogleVerifier interface {
	Verify(ctx context.Context, token string) (*GoogleClaims, error)
}

type googleVerifier struct {
	clientID string
}

// NewGoogleVerifier builds a GoogleVerifier for the given OAuth client ID.
func NewGoogleVerifier(clientID string) GoogleVerifier {
	return &googleVerifier{clientID: clientID}
}

func (v *googleVerifier) Verify(ctx context.Context, token string) (*GoogleClaims, error) {
	payload, err := idtoken.Validate(ctx, token, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("invalid google token: %w", err)
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return nil, errors.New("google token missing email claim")
	}
	fullName, _ := payload.Claims["name"].(string)

	return &GoogleClaims{Email: email, FullName: fullName}, nil
}
