package reader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/akolanti/AviationCompliance/internal/config"
	"github.com/akolanti/AviationCompliance/internal/domain/commonModels"
	"github.com/akolanti/AviationCompliance/pkg/logger_i"
	"github.com/dslipak/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// PdfReader extracts page text with dslipak/pdf and document info with pdfcpu.
// Scanned PDFs without a text layer come back empty.
type PdfReader struct {
	baseReader
	pageTimeout time.Duration
}

func NewPdfReader(settings config.ReaderSettings, logger *logger_i.Logger) *PdfReader {
	timeout := settings.PdfPageTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PdfReader{
		baseReader:  newBaseReader(string(commonModels.PDF), []string{"pdf"}, []string{"application/pdf"}, settings, logger),
		pageTimeout: timeout,
	}
}

func (p *PdfReader) Read(ctx context.Context, path string) (Result, error) {
	return p.read(ctx, path, p.parse)
}

func (p *PdfReader) parse(ctx context.Context, path string) (*parsedDocument, error) {
	log := p.logger.WithTrace(ctx, config.TRACE_ID_KEY)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat pdf: %w", err)
	}
	r, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	doc := &parsedDocument{}
	numPages := r.NumPage()
	log.Debug("extractPDF", "number of pages", numPages)

	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			log.Debug("extractPDF", "page value is null", i)
			continue
		}

		content, err := p.protectExtract(ctx, page)
		switch {
		case err == nil:
			doc.paragraphs = append(doc.paragraphs, splitParagraphs(content)...)
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case errors.Is(err, errPageTimeout):
			// the timed out goroutine still owns the reader, so no further page is started
			log.Warn("Page extraction timed out, skipping remaining pages", "page", i, "pages", numPages)
			doc.warnings = append(doc.warnings, ExtractionWarning{
				Field:   "page " + strconv.Itoa(i),
				Message: fmt.Sprintf("%v; pages %d-%d skipped", err, i, numPages),
			})
			i = numPages
		default:
			// one bad page does not sink the document
			log.Warn("Error parsing page content", "page", i, "error", err)
			doc.warnings = append(doc.warnings, ExtractionWarning{
				Field:   "page " + strconv.Itoa(i),
				Message: err.Error(),
			})
		}
	}

	doc.structure = Structure{
		Paragraphs:     doc.paragraphs,
		ParagraphCount: len(doc.paragraphs),
		SectionCount:   numPages,
	}
	doc.properties = func() (Properties, error) {
		return pdfProperties(path)
	}
	return doc, nil
}

var errPageTimeout = errors.New("page extraction timed out")

// protectExtract bounds a single page extraction; dslipak/pdf can spin or panic on
// malformed content streams. A page abandoned on timeout keeps running until the
// deferred Close in parse makes its reads fail; its result lands in the buffered channel.
func (p *PdfReader) protectExtract(ctx context.Context, page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resChan <- result{err: fmt.Errorf("page extraction panic: %v", r)}
			}
		}()
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()

	timer := time.NewTimer(p.pageTimeout)
	defer timer.Stop()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-timer.C:
		return "", errPageTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// pdfProperties reads the info dictionary with pdfcpu.
func pdfProperties(path string) (Properties, error) {
	f, err := os.Open(path)
	if err != nil {
		return Properties{}, err
	}
	defer f.Close()

	pdfCtx, err := api.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
	if err != nil {
		return Properties{}, fmt.Errorf("pdfcpu read: %w", err)
	}
	// Configuration also carries a CreationDate, so the info fields are read off the xref table
	info := pdfCtx.XRefTable
	return Properties{
		Title:    strings.TrimSpace(info.Title),
		Author:   strings.TrimSpace(info.Author),
		Subject:  strings.TrimSpace(info.Subject),
		Keywords: strings.TrimSpace(info.Keywords),
		Created:  pdfDate(info.CreationDate),
		Modified: pdfDate(info.ModDate),
	}, nil
}

func pdfDate(value string) string {
	if value == "" {
		return ""
	}
	t, ok := types.DateTime(value, true)
	if !ok {
		return ""
	}
	return isoFormat(t.UTC())
}
