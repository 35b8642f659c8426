package reader

import (
	"testing"

	"github.com/akolanti/AviationCompliance/internal/domain/commonModels"
	"github.com/stretchr/testify/assert"
)

func TestClassifyDocumentType(t *testing.T) {
	tests := []struct {
		name       string
		paragraphs []string
		filename   string
		want       commonModels.DocumentType
	}{
		{"regulatory content", []string{"Airworthiness Directive 2023-12"}, "x.docx", commonModels.Regulatory},
		{"accident content", []string{"Preliminary Incident summary"}, "x.docx", commonModels.AccidentReport},
		{"safety report phrase", []string{"Annual Safety Report"}, "x.docx", commonModels.AccidentReport},
		{"manual content", []string{"Flight crew handbook"}, "x.docx", commonModels.Manual},
		{"regulatory beats manual", []string{"Operations manual", "issued under this regulation"}, "x.docx", commonModels.Regulatory},
		{"accident beats manual", []string{"Maintenance procedure", "accident history"}, "x.docx", commonModels.AccidentReport},
		{"content beats filename", []string{"Pilot guide"}, "EASA_rules.docx", commonModels.Manual},
		{"filename regulatory", []string{"Nothing relevant"}, "FAA_Part139.docx", commonModels.Regulatory},
		{"filename accident", nil, "NTSB_Accident_Brief.docx", commonModels.AccidentReport},
		{"filename safety alone", nil, "runway_safety.docx", commonModels.AccidentReport},
		{"filename manual", nil, "Ops_Handbook.docx", commonModels.Manual},
		{"filename case folded", nil, "EASA.DOCX", commonModels.Regulatory},
		{"unknown", []string{"Catering schedule"}, "menu.docx", commonModels.Unknown},
		{"empty", nil, "", commonModels.Unknown},
		// substring matching is deliberate: "recorder" contains "order"
		{"substring match", []string{"Flight data recorder readout"}, "x.docx", commonModels.Regulatory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyDocumentType(tt.paragraphs, tt.filename))
		})
	}
}

func TestClassifierWindowSkipsEmptyParagraphs(t *testing.T) {
	filler := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i"}

	// empty paragraphs do not use up the window, so the 10th non-empty one is seen
	withBlanks := append([]string{"", "  ", "\t"}, filler...)
	withBlanks = append(withBlanks, "Investigation findings")
	assert.Equal(t, commonModels.AccidentReport, ClassifyDocumentType(withBlanks, "x.docx"))

	// the 11th non-empty paragraph is out of reach
	beyond := append(append([]string{}, filler...), "j", "Investigation findings")
	assert.Equal(t, commonModels.Unknown, ClassifyDocumentType(beyond, "x.docx"))
}

func TestClassifyDocumentTypeAlwaysInDomain(t *testing.T) {
	inputs := [][]string{nil, {""}, {"regulation"}, {"zzz"}}
	for _, in := range inputs {
		got := ClassifyDocumentType(in, "file.txt")
		assert.True(t, got.Valid(), "%q is not a document type", got)
	}
}
