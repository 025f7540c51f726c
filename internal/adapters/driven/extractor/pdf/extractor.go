// Package pdf extracts page text from PDF files using pdftotext (poppler).
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// toolName is the poppler binary used for extraction.
const toolName = "pdftotext"

// pdfMagic starts every PDF file.
var pdfMagic = []byte("%PDF-")

// ErrPDFToolNotFound indicates pdftotext is not installed or not in PATH.
var ErrPDFToolNotFound = fmt.Errorf("%w: pdftotext not found in PATH", domain.ErrConfiguration)

// CommandRunner runs an external command and returns its standard output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands with os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return out, nil
}

// Extractor reads page text with pdftotext, keeping the page layout.
type Extractor struct {
	runner   CommandRunner
	lookPath func(string) (string, error)
}

// New creates an Extractor that runs the installed pdftotext.
func New() *Extractor {
	return &Extractor{
		runner:   execRunner{},
		lookPath: exec.LookPath,
	}
}

// NewWithRunner creates an Extractor with a custom command runner.
// The PATH check is skipped since the runner decides what runs.
func NewWithRunner(runner CommandRunner) *Extractor {
	return &Extractor{
		runner:   runner,
		lookPath: func(name string) (string, error) { return name, nil },
	}
}

// CheckAvailable returns ErrPDFToolNotFound when pdftotext is not installed.
func CheckAvailable() error {
	if _, err := exec.LookPath(toolName); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions returns how to install pdftotext.
func InstallInstructions() string {
	return `pdftotext is required to read PDF files.

Install poppler:
  macOS:         brew install poppler
  Debian/Ubuntu: sudo apt install poppler-utils
  Fedora:        sudo dnf install poppler-utils
  Windows:       choco install poppler`
}

// Extract returns the text of each page of the PDF at path.
func (e *Extractor) Extract(ctx context.Context, path string) (*domain.SourceDocument, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: empty path", domain.ErrInvalidInput)
	}
	if err := validatePDF(path); err != nil {
		return nil, err
	}

	tool, err := e.lookPath(toolName)
	if err != nil {
		return nil, ErrPDFToolNotFound
	}

	// "-" writes to stdout; pages are separated by form feeds.
	out, err := e.runner.Run(ctx, tool, "-layout", "-enc", "UTF-8", path, "-")
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: pdftotext failed on %s: %v", domain.ErrInvalidInput, filepath.Base(path), err)
	}

	return &domain.SourceDocument{
		Name:  filepath.Base(path),
		Path:  path,
		Pages: splitPages(string(out)),
	}, nil
}

// validatePDF checks that path is a readable regular file with a PDF header.
func validatePDF(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", domain.ErrInvalidInput, path)
	}

	header := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(f, header); err != nil || !bytes.Equal(header, pdfMagic) {
		return fmt.Errorf("%w: %s is not a PDF file", domain.ErrInvalidInput, filepath.Base(path))
	}
	return nil
}

// splitPages splits pdftotext output on form feeds. The feed after the last
// page does not start a new page.
func splitPages(text string) []domain.Page {
	text = strings.TrimSuffix(text, "\f")
	if text == "" {
		return nil
	}

	raw := strings.Split(text, "\f")
	pages := make([]domain.Page, len(raw))
	for i, p := range raw {
		pages[i] = domain.Page{Number: i + 1, Text: p}
	}
	return pages
}
