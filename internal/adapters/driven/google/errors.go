package google

import (
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
)

// WrapError converts a Google API error into a *domain.ProviderError
// classified by its HTTP status. Other errors are returned unchanged.
func WrapError(provider, op string, err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	msg := gerr.Message
	if msg == "" {
		msg = gerr.Body
	}
	if msg == "" {
		msg = http.StatusText(gerr.Code)
	}
	return domain.NewProviderError(provider, op, gerr.Code, errors.New(msg))
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, domain.ErrRateLimited) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests
	}
	return false
}
