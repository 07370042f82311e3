package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

type OIDCConfig struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

func (c OIDCConfig) Enabled() bool {
	return c.Issuer != "" && c.ClientID != "" && c.RedirectURL != ""
}

// FederatedClaims are the identity fields taken from a verified ID token.
type FederatedClaims struct {
	Issuer        string
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// OIDCProvider runs the authorization-code flow against one issuer.
type OIDCProvider struct {
	verifier *oidc.IDTokenVerifier
	config   oauth2.Config
}

// NewOIDCProvider fetches the issuer's discovery document.
func NewOIDCProvider(ctx context.Context, cfg OIDCConfig) (*OIDCProvider, error) {
	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery for %s: %w", cfg.Issuer, err)
	}
	return &OIDCProvider{
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		config: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}

func (p *OIDCProvider) AuthCodeURL(state, nonce string) string {
	return p.config.AuthCodeURL(state, oidc.Nonce(nonce))
}

// Exchange trades an authorization code for verified identity claims.
func (p *OIDCProvider) Exchange(ctx context.Context, code, nonce string) (*FederatedClaims, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, errors.New("token response has no id_token")
	}
	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("verify id_token: %w", err)
	}
	if idToken.Nonce != nonce {
		return nil, errors.New("id_token nonce mismatch")
	}

	var extra struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := idToken.Claims(&extra); err != nil {
		return nil, fmt.Errorf("decode id_token claims: %w", err)
	}
	return &FederatedClaims{
		Issuer:        idToken.Issuer,
		Subject:       idToken.Subject,
		Email:         extra.Email,
		EmailVerified: extra.EmailVerified,
		Name:          extra.Name,
		Picture:       extra.Picture,
	}, nil
}
