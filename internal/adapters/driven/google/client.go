package google

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	htransport "google.golang.org/api/transport/http"

	"github.com/custodia-labs/pdfchat/internal/adapters/driven/httpapi"
	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
)

// CloudPlatformScope is the OAuth scope required by Vertex AI.
const CloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// NewHTTPClient creates an HTTP client that authorises every request with a
// token from provider.
func NewHTTPClient(ctx context.Context, provider driven.CredentialProvider) (*http.Client, error) {
	client, _, err := htransport.NewClient(ctx,
		option.WithTokenSource(NewTokenSource(ctx, provider)),
		option.WithScopes(CloudPlatformScope),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: create google http client: %v", domain.ErrConfiguration, err)
	}
	return client, nil
}

// ModelEndpoint returns the resource URL of a Google publisher model on
// Vertex AI. An empty baseURL selects the regional endpoint.
func ModelEndpoint(baseURL, project, location, model string) string {
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s-aiplatform.googleapis.com/v1", location)
	}
	return fmt.Sprintf("%s/projects/%s/locations/%s/publishers/google/models/%s", baseURL, project, location, model)
}

// PostJSON sends body to url and decodes the JSON response into out.
// Failures are returned as *domain.ProviderError, credential failures as
// configuration errors, and cancellation as the context error.
func PostJSON(ctx context.Context, client *http.Client, provider, op, url string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, domain.ErrConfiguration) {
			return fmt.Errorf("%s %s: %w", provider, op, err)
		}
		var pe *domain.ProviderError
		if errors.As(err, &pe) {
			return pe
		}
		return httpapi.TransportError(ctx, provider, op, err)
	}
	defer resp.Body.Close()

	if err := googleapi.CheckResponse(resp); err != nil {
		return WrapError(provider, op, err)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.NewInvalidResponseError(provider, op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}
