// Package pdf provides a Normaliser implementation for PDF documents such
// as vendor release notes. Text is extracted page by page in memory; pages
// that fail to decode are skipped.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/dslipak/pdf"

	"github.com/custodia-labs/netassist/internal/core/domain"
	"github.com/custodia-labs/netassist/internal/core/ports/driven"
	"github.com/custodia-labs/netassist/internal/logger"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// maxTitleLength bounds titles taken from the first line of text.
const maxTitleLength = 200

// Normaliser handles PDF documents.
type Normaliser struct{}

// New creates a new PDF normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts plain text from a PDF.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (result *driven.NormaliseResult, err error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	// The decoder panics on some malformed streams.
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("decode pdf %s: %v", raw.URI, r)
		}
	}()

	content, pages, err := extractText(raw.Content)
	if err != nil {
		return nil, fmt.Errorf("decode pdf %s: %w", raw.URI, err)
	}
	if content == "" {
		return nil, domain.ErrNoContent
	}

	return &driven.NormaliseResult{
		Title:   ExtractTitle(content, raw.URI),
		Content: content,
		Metadata: domain.Metadata{
			"mime_type":  raw.MIMEType,
			"format":     "pdf",
			"page_count": pages,
		},
	}, nil
}

// extractText returns the text of every decodable page, pages separated by
// a blank line.
func extractText(data []byte) (string, int, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, err
	}

	numPages := r.NumPage()
	var parts []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			logger.Debug("pdf: skipping page %d: %v", i, err)
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n"), numPages, nil
}

// ExtractTitle returns the first non-empty line of text, or a name derived
// from the URI.
func ExtractTitle(content, uri string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if r := []rune(line); len(r) > maxTitleLength {
			line = string(r[:maxTitleLength])
		}
		return line
	}

	name := path.Base(uri)
	name = strings.TrimSuffix(name, path.Ext(name))
	return strings.NewReplacer("_", " ", "-", " ").Replace(name)
}
