// Package httpapi holds the JSON-over-HTTP plumbing shared by the AI
// provider adapters. Every failure comes back as a *domain.ProviderError
// classified by HTTP status, or as the context error when the caller gave up.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
)

// maxErrorBody bounds how much of an error response is kept in the message.
const maxErrorBody = 512

// Request describes one provider call.
type Request struct {
	// Provider and Op label errors, e.g. "ollama" and "embed".
	Provider string
	Op       string

	Method  string
	URL     string
	Headers map[string]string

	// Body is marshalled as JSON when non-nil.
	Body any
}

// Do sends req and decodes a 2xx JSON response into out. out may be nil.
func Do(ctx context.Context, client *http.Client, req Request, out any) error {
	var body io.Reader = http.NoBody
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	method := req.Method
	if method == "" {
		method = http.MethodPost
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return TransportError(ctx, req.Provider, req.Op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return TransportError(ctx, req.Provider, req.Op, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.NewProviderError(req.Provider, req.Op, resp.StatusCode, errors.New(Excerpt(data)))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return domain.NewInvalidResponseError(req.Provider, req.Op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// TransportError classifies a failure that produced no HTTP response.
// Cancellation and deadline errors from ctx are returned unwrapped.
func TransportError(ctx context.Context, provider, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s %s: %w", provider, op, ctxErr)
	}
	return domain.NewProviderError(provider, op, 0, err)
}

// Excerpt returns a single-line, bounded rendering of an error body.
func Excerpt(body []byte) string {
	s := strings.Join(strings.Fields(string(body)), " ")
	if s == "" {
		return "empty response body"
	}
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody] + "..."
	}
	return s
}
