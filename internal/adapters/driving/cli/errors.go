package cli

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/pdfchat/internal/adapters/driven/extractor/pdf"
	"github.com/custodia-labs/pdfchat/internal/core/domain"
)

var errSettingsNotConfigured = errors.New("settings service not configured")

// Hint returns follow-up advice for an error, or "" when none applies.
func Hint(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, pdf.ErrPDFToolNotFound):
		return pdf.InstallInstructions()
	case errors.Is(err, domain.ErrIndexNotReady):
		return "Index a document first: pdfchat index <file.pdf>"
	case errors.Is(err, domain.ErrDimensionMismatch):
		return "The saved index was built with a different embedding model. Re-run: pdfchat index <file.pdf>"
	case errors.Is(err, domain.ErrConfiguration):
		return "Check your configuration with: pdfchat settings show"
	case errors.Is(err, domain.ErrProvider):
		return "The AI provider could not be reached. Try again later or run: pdfchat settings check"
	}
	return ""
}

// FormatError renders err with its hint for the terminal.
func FormatError(err error) string {
	msg := fmt.Sprintf("Error: %v", err)
	if hint := Hint(err); hint != "" {
		msg += "\n\n" + hint
	}
	return msg
}
