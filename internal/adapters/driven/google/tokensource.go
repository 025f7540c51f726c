package google

import (
	"context"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
)

// tokenLifetime bounds how long transports may reuse a token before asking
// the provider again. The provider does its own caching and refresh.
const tokenLifetime = time.Minute

// TokenSourceAdapter adapts a CredentialProvider to oauth2.TokenSource.
// This allows Google API transports to use our credential handling.
type TokenSourceAdapter struct {
	provider driven.CredentialProvider
	ctx      context.Context
}

// NewTokenSource creates an oauth2.TokenSource from a CredentialProvider.
// The returned TokenSource can be used with option.WithTokenSource() when
// creating Google API clients.
func NewTokenSource(ctx context.Context, provider driven.CredentialProvider) oauth2.TokenSource {
	return &TokenSourceAdapter{
		provider: provider,
		ctx:      ctx,
	}
}

// Token implements oauth2.TokenSource interface.
// Called by the transport when it needs an access token.
func (t *TokenSourceAdapter) Token() (*oauth2.Token, error) {
	accessToken, err := t.provider.GetToken(t.ctx)
	if err != nil {
		return nil, err
	}

	return &oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(tokenLifetime),
	}, nil
}
