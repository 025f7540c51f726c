package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
)

// Ensure GoogleCredentialProvider implements the CredentialProvider interface.
var _ driven.CredentialProvider = (*GoogleCredentialProvider)(nil)

// cloudPlatformScope grants access to Vertex AI.
const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// GoogleCredentialProvider provides Google Cloud access tokens with automatic refresh.
// Key material comes from a file path, raw JSON, base64 JSON, or
// Application Default Credentials when no source is given.
type GoogleCredentialProvider struct {
	source    string
	projectID string

	mu     sync.Mutex
	tokens oauth2.TokenSource
}

// NewGoogleCredentialProvider loads credentials from source.
// Failures to load or parse the key wrap domain.ErrConfiguration.
func NewGoogleCredentialProvider(ctx context.Context, source string) (*GoogleCredentialProvider, error) {
	creds, err := loadCredentials(ctx, strings.TrimSpace(source))
	if err != nil {
		return nil, err
	}
	return &GoogleCredentialProvider{
		source:    describeSource(source),
		projectID: creds.ProjectID,
		tokens:    oauth2.ReuseTokenSource(nil, creds.TokenSource),
	}, nil
}

func loadCredentials(ctx context.Context, source string) (*google.Credentials, error) {
	if source == "" {
		creds, err := google.FindDefaultCredentials(ctx, cloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("%w: no Google credentials configured and no application default credentials found: %v",
				domain.ErrConfiguration, err)
		}
		return creds, nil
	}

	data, err := credentialJSON(source)
	if err != nil {
		return nil, err
	}

	//nolint:staticcheck // The key is supplied by the operator, not by an untrusted client.
	creds, err := google.CredentialsFromJSON(ctx, data, cloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("%w: parse Google credentials: %v", domain.ErrConfiguration, err)
	}
	return creds, nil
}

// credentialJSON resolves source to key JSON. Malformed material is rejected.
func credentialJSON(source string) ([]byte, error) {
	if strings.HasPrefix(source, "{") {
		return []byte(source), nil
	}

	if data, err := os.ReadFile(source); err == nil {
		return data, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: read Google credentials file: %v", domain.ErrConfiguration, err)
	}

	decoded, err := base64.StdEncoding.DecodeString(source)
	if err != nil {
		return nil, fmt.Errorf("%w: Google credentials are not a readable file, JSON, or base64 JSON",
			domain.ErrConfiguration)
	}
	if !strings.HasPrefix(strings.TrimSpace(string(decoded)), "{") {
		return nil, fmt.Errorf("%w: decoded Google credentials are not JSON", domain.ErrConfiguration)
	}
	return decoded, nil
}

func describeSource(source string) string {
	switch {
	case source == "":
		return "application default credentials"
	case strings.HasPrefix(strings.TrimSpace(source), "{"):
		return "inline JSON"
	default:
		if _, err := os.Stat(source); err == nil {
			return source
		}
		return "base64 JSON"
	}
}

// GetToken returns a valid access token, refreshing if necessary.
func (p *GoogleCredentialProvider) GetToken(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	tok, err := p.tokens.Token()
	if err != nil {
		return "", p.classify(err)
	}
	return tok.AccessToken, nil
}

// classify maps token failures: rejected keys are configuration problems,
// unreachable token endpoints are transient.
func (p *GoogleCredentialProvider) classify(err error) error {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) && rerr.Response != nil {
		return domain.NewProviderError("google-auth", "token", rerr.Response.StatusCode, err)
	}
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return domain.NewProviderError("google-auth", "token", 0, err)
	}
	return fmt.Errorf("%w: obtain Google access token from %s: %v", domain.ErrConfiguration, p.source, err)
}

// ProjectID returns the project embedded in the credentials, if any.
func (p *GoogleCredentialProvider) ProjectID() string {
	return p.projectID
}

// Source describes where the credentials were loaded from.
func (p *GoogleCredentialProvider) Source() string {
	return p.source
}
