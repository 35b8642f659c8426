// Package complianceErrors is the error taxonomy of the service. Every error it
// produces matches ErrAviationCompliance; document reading failures additionally
// match ErrDocumentProcessing and one of the reason sentinels.
package complianceErrors

import (
	"errors"
	"strings"

	"github.com/dustin/go-humanize"
)

type Kind string

const (
	KindConfiguration      Kind = "configuration"
	KindDocumentProcessing Kind = "document_processing"
	KindEmbedding          Kind = "embedding"
	KindStorage            Kind = "storage"
	KindRetrieval          Kind = "retrieval"
	KindGeneration         Kind = "generation"
	KindRegulatory         Kind = "regulatory"
	KindAccidentAnalysis   Kind = "accident_analysis"
	KindAPI                Kind = "api"
)

// Reason narrows a document processing failure.
type Reason string

const (
	ReasonNotFound          Reason = "not_found"
	ReasonUnsupportedFormat Reason = "unsupported_format"
	ReasonTooLarge          Reason = "too_large"
	ReasonParse             Reason = "parse"
)

type Error struct {
	Kind    Kind
	Reason  Reason
	Path    string
	Message string
	Err     error
}

var ErrAviationCompliance = errors.New("aviation compliance error")

var (
	ErrDocumentProcessing = &Error{Kind: KindDocumentProcessing}
	ErrFileNotFound       = &Error{Kind: KindDocumentProcessing, Reason: ReasonNotFound}
	ErrUnsupportedFormat  = &Error{Kind: KindDocumentProcessing, Reason: ReasonUnsupportedFormat}
	ErrFileTooLarge       = &Error{Kind: KindDocumentProcessing, Reason: ReasonTooLarge}
	ErrParse              = &Error{Kind: KindDocumentProcessing, Reason: ReasonParse}

	ErrConfiguration = &Error{Kind: KindConfiguration}
	ErrEmbedding     = &Error{Kind: KindEmbedding}
	ErrStorage       = &Error{Kind: KindStorage}
	ErrRetrieval     = &Error{Kind: KindRetrieval}
	ErrGeneration    = &Error{Kind: KindGeneration}
)

func (e *Error) Error() string {
	var sb strings.Builder
	if e.Message != "" {
		sb.WriteString(e.Message)
	} else {
		sb.WriteString(string(e.Kind))
		sb.WriteString(" error")
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the root sentinel, or another *Error when kind (and reason, if the
// target sets one) agree.
func (e *Error) Is(target error) bool {
	if target == ErrAviationCompliance {
		return true
	}
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Reason == "" || t.Reason == e.Reason
}

func New(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func FileNotFound(path string) *Error {
	return &Error{
		Kind:    KindDocumentProcessing,
		Reason:  ReasonNotFound,
		Path:    path,
		Message: "file not found: " + path,
	}
}

func UnsupportedFormat(path, extension string) *Error {
	if extension == "" {
		extension = "<none>"
	}
	return &Error{
		Kind:    KindDocumentProcessing,
		Reason:  ReasonUnsupportedFormat,
		Path:    path,
		Message: "unsupported document format " + extension + ": " + path,
	}
}

func FileTooLarge(path string, size, limit int64) *Error {
	return &Error{
		Kind:    KindDocumentProcessing,
		Reason:  ReasonTooLarge,
		Path:    path,
		Message: "file too large: " + path + " (" + humanize.Bytes(uint64(size)) + " > " + humanize.Bytes(uint64(limit)) + ")",
	}
}

// ParseFailure keeps the cause's message so the diagnostics survive propagation.
func ParseFailure(path, format string, cause error) *Error {
	return &Error{
		Kind:    KindDocumentProcessing,
		Reason:  ReasonParse,
		Path:    path,
		Message: "error reading " + strings.ToUpper(format) + " document",
		Err:     cause,
	}
}

// ReasonOf returns the document processing reason of err, or "" when err is not one.
func ReasonOf(err error) Reason {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ""
}
