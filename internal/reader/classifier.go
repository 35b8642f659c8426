package reader

import (
	"strings"

	"github.com/akolanti/AviationCompliance/internal/domain/commonModels"
)

// classifierWindow is how many non-empty paragraphs the content check looks at.
const classifierWindow = 10

type typeRule struct {
	docType commonModels.DocumentType
	terms   []string
}

// Order matters: the first matching rule wins.
var contentRules = []typeRule{
	{commonModels.Regulatory, []string{"regulation", "directive", "advisory", "circular", "order"}},
	{commonModels.AccidentReport, []string{"accident", "incident", "investigation", "safety report"}},
	{commonModels.Manual, []string{"manual", "handbook", "guide", "procedure"}},
}

var filenameRules = []typeRule{
	{commonModels.Regulatory, []string{"faa", "easa", "regulation", "part", "advisory"}},
	{commonModels.AccidentReport, []string{"accident", "incident", "investigation", "safety"}},
	{commonModels.Manual, []string{"manual", "handbook", "guide", "procedure"}},
}

// ClassifyDocumentType guesses the document category from its leading paragraphs, then
// from its filename. Matching is plain case-insensitive substring search.
func ClassifyDocumentType(paragraphs []string, filename string) commonModels.DocumentType {
	if t, ok := matchRules(leadingText(paragraphs), contentRules); ok {
		return t
	}
	if t, ok := matchRules(strings.ToLower(filename), filenameRules); ok {
		return t
	}
	return commonModels.Unknown
}

func leadingText(paragraphs []string) string {
	picked := make([]string, 0, classifierWindow)
	for _, p := range paragraphs {
		if len(picked) == classifierWindow {
			break
		}
		if strings.TrimSpace(p) != "" {
			picked = append(picked, p)
		}
	}
	return strings.ToLower(strings.Join(picked, " "))
}

func matchRules(text string, rules []typeRule) (commonModels.DocumentType, bool) {
	if text == "" {
		return "", false
	}
	for _, rule := range rules {
		for _, term := range rule.terms {
			if strings.Contains(text, term) {
				return rule.docType, true
			}
		}
	}
	return "", false
}
