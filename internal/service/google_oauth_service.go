package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/authform/authform/internal/utils"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

var GoogleOAuthScopes = []string{"openid", "email", "profile"}

type GoogleOAuthServiceConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Endpoint     oauth2.Endpoint
}

// GoogleOAuthService drives the authorization code flow. It only hands back
// the raw ID token, verification is left to the identity service.
type GoogleOAuthService struct {
	config  oauth2.Config
	context context.Context
}

func NewGoogleOAuthService(config GoogleOAuthServiceConfig) *GoogleOAuthService {
	endpoint := config.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = endpoints.Google
	}
	return &GoogleOAuthService{
		config: oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Scopes:       GoogleOAuthScopes,
			Endpoint:     endpoint,
		},
	}
}

func (google *GoogleOAuthService) Init() error {
	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}
	ctx := context.Background()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	google.context = ctx
	return nil
}

func (google *GoogleOAuthService) GenerateState() (string, error) {
	return utils.GetRandomString(64)
}

func (google *GoogleOAuthService) GenerateVerifier() string {
	return oauth2.GenerateVerifier()
}

func (google *GoogleOAuthService) GetAuthURL(state string, verifier string) string {
	return google.config.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
}

// ExchangeIDToken trades the authorization code for tokens and returns the ID token.
func (google *GoogleOAuthService) ExchangeIDToken(ctx context.Context, code string, verifier string) (string, error) {
	client, _ := google.context.Value(oauth2.HTTPClient).(*http.Client)
	ctx = context.WithValue(ctx, oauth2.HTTPClient, client)

	token, err := google.config.Exchange(ctx, code, oauth2.VerifierOption(verifier))

	if err != nil {
		return "", err
	}

	idToken, ok := token.Extra("id_token").(string)

	if !ok || idToken == "" {
		return "", errors.New("token response has no id_token")
	}

	return idToken, nil
}
