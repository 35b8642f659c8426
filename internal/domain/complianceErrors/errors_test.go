package complianceErrors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestDocumentErrorsMatchTaxonomy(t *testing.T) {
	cause := errors.New("zip: not a valid zip file")
	tests := []struct {
		name     string
		err      error
		sentinel error
		reason   Reason
	}{
		{"not found", FileNotFound("/no/such/file.docx"), ErrFileNotFound, ReasonNotFound},
		{"unsupported", UnsupportedFormat("/tmp/a.exe", "exe"), ErrUnsupportedFormat, ReasonUnsupportedFormat},
		{"too large", FileTooLarge("/tmp/a.pdf", 2048, 1024), ErrFileTooLarge, ReasonTooLarge},
		{"parse", ParseFailure("/tmp/a.docx", "docx", cause), ErrParse, ReasonParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, ErrAviationCompliance) {
				t.Errorf("%v does not match the root error", tt.err)
			}
			if !errors.Is(tt.err, ErrDocumentProcessing) {
				t.Errorf("%v does not match ErrDocumentProcessing", tt.err)
			}
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("%v does not match its reason sentinel", tt.err)
			}
			if errors.Is(tt.err, ErrEmbedding) {
				t.Errorf("%v matched an unrelated kind", tt.err)
			}
			if got := ReasonOf(fmt.Errorf("wrapped: %w", tt.err)); got != tt.reason {
				t.Errorf("ReasonOf = %q; want %q", got, tt.reason)
			}
		})
	}
}

func TestParseFailureKeepsCause(t *testing.T) {
	cause := errors.New("word/document.xml not found in archive")
	err := ParseFailure("/tmp/a.docx", "docx", cause)

	if !errors.Is(err, cause) {
		t.Error("cause is not reachable through Unwrap")
	}
	if !strings.Contains(err.Error(), "DOCX") || !strings.Contains(err.Error(), cause.Error()) {
		t.Errorf("message %q lost the format or the cause", err.Error())
	}
}

func TestNotFoundMessage(t *testing.T) {
	err := FileNotFound("/no/such/file.docx")
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("message %q does not mention not found", err.Error())
	}
}

func TestReasonOfForeignError(t *testing.T) {
	if got := ReasonOf(errors.New("boom")); got != "" {
		t.Errorf("ReasonOf(foreign) = %q; want empty", got)
	}
	if got := ReasonOf(New(KindStorage, "redis offline", nil)); got != "" {
		t.Errorf("ReasonOf(storage) = %q; want empty", got)
	}
}
