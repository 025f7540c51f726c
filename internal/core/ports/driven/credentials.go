package driven

import "context"

// CredentialProvider supplies access tokens for Google Cloud APIs.
// Implementations refresh tokens transparently.
type CredentialProvider interface {
	// GetToken returns a valid access token.
	// Failures to load or parse credentials wrap domain.ErrConfiguration.
	GetToken(ctx context.Context) (string, error)

	// ProjectID returns the project embedded in the credentials, if any.
	ProjectID() string
}
