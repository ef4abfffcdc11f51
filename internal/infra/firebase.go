// README: Caller identity and the Firebase-backed verifier for back-office tokens.
package infra

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

const (
	claimEmail = "email"
	claimRole  = "role"
)

// Token is the caller identity the auth middleware puts on the request.
type Token struct {
	UID    string
	Email  string
	Claims map[string]interface{}
}

// Role is empty for plain clients.
func (t *Token) Role() string {
	if t == nil {
		return ""
	}
	role, _ := t.Claims[claimRole].(string)
	return role
}

type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*Token, error)
}

func tokenFromClaims(uid string, claims map[string]interface{}) *Token {
	email, _ := claims[claimEmail].(string)
	return &Token{UID: uid, Email: email, Claims: claims}
}

type firebaseAuth struct {
	client *auth.Client
}

// NewFirebaseVerifier uses the service-account file when one is configured and
// application-default credentials otherwise.
func NewFirebaseVerifier(ctx context.Context, projectID, credentialsFile string) (TokenVerifier, error) {
	if projectID == "" {
		return nil, errors.New("firebase project id is empty")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app %s: %w", projectID, err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth client: %w", err)
	}
	return &firebaseAuth{client: client}, nil
}

func (f *firebaseAuth) VerifyIDToken(ctx context.Context, idToken string) (*Token, error) {
	verified, err := f.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return tokenFromClaims(verified.UID, verified.Claims), nil
}
