package llm

import (
	"context"
	"fmt"
	"strings"
)

type Provider interface {
	Generate(ctx context.Context, query string, matches []string, messageHistory []string) (string, error)
}

// BuildPrompt lays out retrieved passages, prior turns and the question the same way
// for every provider.
func BuildPrompt(userQuery string, matches []string, messageHistory []string) string {
	var sb strings.Builder
	sb.WriteString("Context:\n")
	if len(matches) == 0 {
		sb.WriteString("(no matching documents)\n")
	}
	for i, m := range matches {
		fmt.Fprintf(&sb, "[%d] %s\n", i+1, m)
	}

	if len(messageHistory) > 0 {
		sb.WriteString("\nMessage History (question is the user question, answer is what you replied, sources are the documents used):\n")
		sb.WriteString(strings.Join(messageHistory, "\n"))
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "\nUser Question: %s", userQuery)
	return sb.String()
}
