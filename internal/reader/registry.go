package reader

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/akolanti/AviationCompliance/internal/config"
	"github.com/akolanti/AviationCompliance/internal/domain/complianceErrors"
	"github.com/akolanti/AviationCompliance/internal/metrics"
	"github.com/akolanti/AviationCompliance/pkg/logger_i"
	"github.com/gabriel-vasile/mimetype"
)

// capability maps one extension to the reader that registered it first.
type capability struct {
	extension string
	reader    FormatReader
}

// Registry resolves a path to a FormatReader. Lookup is an exact extension match,
// then each reader's Supports predicate, then (optionally) content sniffing, all in
// registration order.
type Registry struct {
	mu           sync.RWMutex
	capabilities []capability
	readers      []FormatReader
	sniff        bool
	logger       *logger_i.Logger
}

func NewRegistry(logger *logger_i.Logger, sniff bool) *Registry {
	if logger == nil {
		logger = logger_i.Discard()
	}
	return &Registry{
		sniff:  sniff,
		logger: logger.Named("reader.registry"),
	}
}

// Register appends r. An extension already claimed by an earlier reader stays with it.
func (r *Registry) Register(fr FormatReader) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.readers = append(r.readers, fr)
	for _, ext := range fr.Extensions() {
		if _, taken := r.lookupLocked(ext); taken {
			r.logger.Warn("Extension already registered, keeping first reader", "extension", ext, "format", fr.Format())
			continue
		}
		r.capabilities = append(r.capabilities, capability{extension: ext, reader: fr})
	}
	r.logger.Debug("Registered reader", "format", fr.Format(), "extensions", fr.Extensions())
}

func (r *Registry) lookupLocked(ext string) (FormatReader, bool) {
	for _, c := range r.capabilities {
		if c.extension == ext {
			return c.reader, true
		}
	}
	return nil, false
}

// ReaderFor returns the reader responsible for path.
func (r *Registry) ReaderFor(path string) (FormatReader, error) {
	if fr, ok := r.match(path); ok {
		return fr, nil
	}

	if r.sniff {
		if fr, ok := r.sniffReader(path); ok {
			return fr, nil
		}
	}

	err := complianceErrors.UnsupportedFormat(path, extensionOf(path))
	r.logger.Error("No reader for document", "path", path, "error", err)
	return nil, err
}

// match resolves by extension only and never touches the file.
func (r *Registry) match(path string) (FormatReader, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if ext := extensionOf(path); ext != "" {
		if fr, ok := r.lookupLocked(ext); ok {
			return fr, true
		}
	}
	for _, fr := range r.readers {
		if fr.Supports(path) {
			return fr, true
		}
	}
	return nil, false
}

func (r *Registry) sniffReader(path string) (FormatReader, bool) {
	detected, err := mimetype.DetectFile(path)
	if err != nil {
		r.logger.Debug("Content sniffing failed", "path", path, "error", err)
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, fr := range r.readers {
		if s, ok := fr.(ContentSniffer); ok && s.SniffMIME(detected) {
			r.logger.Debug("Reader chosen by content", "path", path, "mime", detected.String(), "format", fr.Format())
			return fr, true
		}
	}
	return nil, false
}

// Read resolves the reader for path and delegates to it.
func (r *Registry) Read(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	fr, err := r.ReaderFor(path)
	if err != nil {
		metrics.CaptureDocumentRead(extensionOf(path), string(complianceErrors.ReasonOf(err)), time.Since(start))
		return Result{}, err
	}

	res, err := fr.Read(ctx, path)
	if err != nil {
		outcome := string(complianceErrors.ReasonOf(err))
		if outcome == "" {
			outcome = "error"
		}
		metrics.CaptureDocumentRead(fr.Format(), outcome, time.Since(start))
		r.logger.WithTrace(ctx, config.TRACE_ID_KEY).Error("Document read failed", "path", path, "format", fr.Format(), "error", err)
		return Result{}, err
	}

	metrics.CaptureDocumentRead(fr.Format(), "success", time.Since(start))
	metrics.CaptureDocumentType(string(res.Payload.Metadata.DocumentType))
	return res, nil
}

// Supports reports whether some reader claims path by extension.
func (r *Registry) Supports(path string) bool {
	_, ok := r.match(path)
	return ok
}

// Formats lists registered formats in registration order.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.readers))
	for _, fr := range r.readers {
		out = append(out, fr.Format())
	}
	return out
}

// Extensions lists every claimed extension, sorted.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.capabilities))
	for _, c := range r.capabilities {
		out = append(out, c.extension)
	}
	sort.Strings(out)
	return out
}
