// Package reader turns source documents into normalized text plus a fixed metadata
// record. Each format has its own FormatReader; the Registry picks one per path.
package reader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/akolanti/AviationCompliance/internal/config"
	"github.com/akolanti/AviationCompliance/internal/domain/commonModels"
	"github.com/akolanti/AviationCompliance/internal/domain/complianceErrors"
	"github.com/akolanti/AviationCompliance/pkg/logger_i"
	"github.com/gabriel-vasile/mimetype"
)

const (
	blockSeparator = "\n\n"
	cellSeparator  = " | "
)

type FormatReader interface {
	// Format is the canonical, lowercase name of the format, e.g. "docx".
	Format() string
	Extensions() []string
	// Supports is a pure extension check, it never touches the file.
	Supports(path string) bool
	Read(ctx context.Context, path string) (Result, error)
}

// ContentSniffer is implemented by readers that can claim a file by its detected MIME type
// when the extension did not match any reader.
type ContentSniffer interface {
	SniffMIME(detected *mimetype.MIME) bool
}

// ExtractionWarning is a non-fatal problem hit while reading, such as unreadable
// document properties or a PDF page that timed out.
type ExtractionWarning struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (w ExtractionWarning) String() string {
	return w.Field + ": " + w.Message
}

type Result struct {
	Payload  commonModels.DocumentPayload `json:"payload"`
	Warnings []ExtractionWarning          `json:"warnings,omitempty"`
}

// parsedDocument is what a format parser hands back to the shared read path.
type parsedDocument struct {
	paragraphs []string
	tables     [][][]string
	structure  Structure
	properties PropertySource
	warnings   []ExtractionWarning
}

type parseFunc func(ctx context.Context, path string) (*parsedDocument, error)

// baseReader carries what every format reader shares: identity, limits, logging and the
// metadata extractor.
type baseReader struct {
	format     string
	extensions []string
	mimeTypes  []string
	maxSize    int64
	logger     *logger_i.Logger
	extractor  *MetadataExtractor
}

func newBaseReader(format string, extensions, mimeTypes []string, settings config.ReaderSettings, logger *logger_i.Logger) baseReader {
	if logger == nil {
		logger = logger_i.Discard()
	}
	named := logger.Named("reader." + format)
	return baseReader{
		format:     format,
		extensions: extensions,
		mimeTypes:  mimeTypes,
		maxSize:    settings.MaxFileSize(),
		logger:     named,
		extractor:  NewMetadataExtractor(named),
	}
}

func (b *baseReader) Format() string {
	return b.format
}

func (b *baseReader) Extensions() []string {
	out := make([]string, len(b.extensions))
	copy(out, b.extensions)
	return out
}

func (b *baseReader) Supports(path string) bool {
	ext := extensionOf(path)
	if ext == "" {
		return false
	}
	for _, e := range b.extensions {
		if e == ext {
			return true
		}
	}
	return false
}

func (b *baseReader) SniffMIME(detected *mimetype.MIME) bool {
	if detected == nil {
		return false
	}
	for _, m := range b.mimeTypes {
		if detected.Is(m) {
			return true
		}
	}
	return false
}

// read runs the steps every format shares around a format specific parser.
func (b *baseReader) read(ctx context.Context, path string, parse parseFunc) (Result, error) {
	log := b.logger.WithTrace(ctx, config.TRACE_ID_KEY).With("path", path)
	log.Info("Reading document")
	if err := ctx.Err(); err != nil {
		return Result{}, complianceErrors.New(complianceErrors.KindDocumentProcessing, "reading "+path+" interrupted", err)
	}

	if _, err := checkFile(path, b.maxSize); err != nil {
		log.Error("Error reading document", "error", err)
		return Result{}, err
	}

	doc, err := safeParse(ctx, path, parse)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = complianceErrors.New(complianceErrors.KindDocumentProcessing, "reading "+path+" interrupted", ctxErr)
		} else {
			err = complianceErrors.ParseFailure(path, b.format, err)
		}
		log.Error("Error reading document", "error", err)
		return Result{}, err
	}

	meta, err := b.extractor.Extract(path, b.format, doc.structure, doc.properties)
	if err != nil {
		log.Error("Error extracting metadata", "error", err)
		return Result{}, err
	}

	warnings := make([]ExtractionWarning, 0, len(doc.warnings)+len(meta.Warnings))
	warnings = append(warnings, doc.warnings...)
	warnings = append(warnings, meta.Warnings...)
	if len(warnings) == 0 {
		warnings = nil
	}

	result := Result{
		Payload: commonModels.DocumentPayload{
			Text:     assembleText(doc.paragraphs, doc.tables),
			Metadata: meta.Metadata,
		},
		Warnings: warnings,
	}
	log.Info("Document read",
		"paragraphs", meta.Metadata.ParagraphCount,
		"tables", meta.Metadata.TableCount,
		"document_type", meta.Metadata.DocumentType,
		"warnings", len(warnings))
	return result, nil
}

// safeParse turns a panic inside a third party parser into an ordinary error.
func safeParse(ctx context.Context, path string, parse parseFunc) (doc *parsedDocument, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("parser panic: %v", r)
		}
	}()
	doc, err = parse(ctx, path)
	if err == nil && doc == nil {
		err = errors.New("parser returned no document")
	}
	return doc, err
}

// checkFile enforces the read preconditions: a regular file within the size limit.
func checkFile(path string, maxSize int64) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, complianceErrors.FileNotFound(path)
		}
		return nil, complianceErrors.New(complianceErrors.KindDocumentProcessing, "cannot stat "+path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, complianceErrors.FileNotFound(path)
	}
	if maxSize > 0 && info.Size() > maxSize {
		return nil, complianceErrors.FileTooLarge(path, info.Size(), maxSize)
	}
	return info, nil
}

// extensionOf returns the lowercased extension without its leading dot.
func extensionOf(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

// assembleText joins non-empty paragraphs and then non-empty table rows. Rows are the
// trimmed, non-empty cells joined with " | ".
func assembleText(paragraphs []string, tables [][][]string) string {
	blocks := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		if strings.TrimSpace(p) != "" {
			blocks = append(blocks, p)
		}
	}
	for _, table := range tables {
		for _, row := range table {
			if line := rowText(row); line != "" {
				blocks = append(blocks, line)
			}
		}
	}
	return strings.Join(blocks, blockSeparator)
}

func rowText(row []string) string {
	cells := make([]string, 0, len(row))
	for _, c := range row {
		if c = strings.TrimSpace(c); c != "" {
			cells = append(cells, c)
		}
	}
	return strings.Join(cells, cellSeparator)
}

// splitParagraphs breaks flat text on blank lines, the way PDF and plain text
// extractors hand it to us.
func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var out []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			out = append(out, strings.TrimSpace(strings.Join(current, "\n")))
			current = current[:0]
		}
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	return out
}
