// Package document turns resume files into plain text.
package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
	"go.uber.org/zap"
)

// Kind is a supported document format.
type Kind string

const (
	KindPDF  Kind = ".pdf"
	KindDOCX Kind = ".docx"
)

// ErrUnsupportedFormat is returned for extensions other than .pdf and .docx.
var ErrUnsupportedFormat = errors.New("unsupported file type")

// Ext returns the lower-cased extension of name, including the dot.
func Ext(name string) string {
	return strings.ToLower(path.Ext(strings.TrimSpace(name)))
}

// KindOf maps a file name to its Kind.
func KindOf(name string) (Kind, error) {
	ext := Ext(name)
	switch Kind(ext) {
	case KindPDF, KindDOCX:
		return Kind(ext), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// ContentType returns the MIME type of the kind.
func (k Kind) ContentType() string {
	switch k {
	case KindPDF:
		return "application/pdf"
	case KindDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}

// TextExtractor reads the text of PDF and DOCX files.
type TextExtractor struct {
	pdf    einoParser.Parser
	logger *zap.Logger
}

// NewTextExtractor prepares the PDF parser. The whole document is returned as
// one text instead of one text per page.
func NewTextExtractor(ctx context.Context, logger *zap.Logger) (*TextExtractor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{ToPages: false})
	if err != nil {
		return nil, fmt.Errorf("failed to create pdf parser: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &TextExtractor{pdf: p, logger: logger}, nil
}

// Extract returns the text of data according to the extension of name.
func (e *TextExtractor) Extract(ctx context.Context, name string, data []byte) (string, error) {
	kind, err := KindOf(name)
	if err != nil {
		return "", err
	}

	var text string
	switch kind {
	case KindPDF:
		text, err = e.extractPDF(ctx, name, data)
	case KindDOCX:
		text, err = extractDOCX(data)
	}
	if err != nil {
		return "", err
	}

	e.logger.Debug("extracted document text",
		zap.String("name", name),
		zap.String("kind", string(kind)),
		zap.Int("bytes", len(data)),
		zap.Int("text_length", len(text)),
	)

	return text, nil
}

func (e *TextExtractor) extractPDF(ctx context.Context, name string, data []byte) (string, error) {
	docs, err := e.pdf.Parse(ctx, bytes.NewReader(data), einoParser.WithURI(name))
	if err != nil {
		return "", fmt.Errorf("parse pdf %s: %w", name, err)
	}

	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc == nil || strings.TrimSpace(doc.Content) == "" {
			continue
		}
		parts = append(parts, doc.Content)
	}

	return strings.Join(parts, "\n"), nil
}
