package reader

import (
	"context"
	"fmt"
	"strings"

	"github.com/akolanti/AviationCompliance/internal/config"
	"github.com/akolanti/AviationCompliance/internal/domain/commonModels"
	"github.com/akolanti/AviationCompliance/pkg/logger_i"
	"github.com/lu4p/cat"
)

// PlainTextReader covers the formats lu4p/cat flattens to text: txt, md, odt and rtf.
// Register one instance per format.
type PlainTextReader struct {
	baseReader
}

func NewPlainTextReader(format commonModels.DocType, settings config.ReaderSettings, logger *logger_i.Logger) (*PlainTextReader, error) {
	var extensions, mimeTypes []string
	switch format {
	case commonModels.TXT:
		extensions, mimeTypes = []string{"txt", "text"}, []string{"text/plain"}
	case commonModels.MD:
		extensions = []string{"md", "markdown"}
	case commonModels.ODT:
		extensions, mimeTypes = []string{"odt"}, []string{"application/vnd.oasis.opendocument.text"}
	case commonModels.RTF:
		extensions, mimeTypes = []string{"rtf"}, []string{"text/rtf"}
	default:
		return nil, fmt.Errorf("plain text reader does not handle %q", format)
	}
	return &PlainTextReader{
		baseReader: newBaseReader(string(format), extensions, mimeTypes, settings, logger),
	}, nil
}

func (t *PlainTextReader) Read(ctx context.Context, path string) (Result, error) {
	return t.read(ctx, path, t.parse)
}

func (t *PlainTextReader) parse(_ context.Context, path string) (*parsedDocument, error) {
	text, err := cat.File(path)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", t.format, err)
	}

	paragraphs := splitParagraphs(text)
	doc := &parsedDocument{
		paragraphs: paragraphs,
		structure: Structure{
			Paragraphs:     paragraphs,
			ParagraphCount: len(paragraphs),
			SectionCount:   1,
		},
	}
	if t.format == string(commonModels.MD) {
		doc.properties = func() (Properties, error) {
			return Properties{Title: markdownTitle(paragraphs)}, nil
		}
	}
	return doc, nil
}

// markdownTitle is the text of the first level one ATX heading.
func markdownTitle(paragraphs []string) string {
	for _, p := range paragraphs {
		for _, line := range strings.Split(p, "\n") {
			line = strings.TrimSpace(line)
			if strings.HasPrefix(line, "# ") {
				return strings.TrimSpace(strings.TrimPrefix(line, "# "))
			}
		}
	}
	return ""
}
