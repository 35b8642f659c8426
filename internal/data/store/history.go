package store

import (
	"encoding/json"

	"github.com/akolanti/AviationCompliance/internal/domain/jobModel"
)

const historyWindow = 5

// historyLine is what the LLM sees of one past exchange.
type historyLine struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Sources  []string `json:"sources,omitempty"`
}

func isEmptyExchange(p jobModel.JobPayload) bool {
	return p.Question == "" && p.Answer == ""
}

// formatHistory renders exchanges newest first, skipping the placeholder a new chat starts with.
func formatHistory(payloads []jobModel.JobPayload) []string {
	out := make([]string, 0, len(payloads))
	for i := len(payloads) - 1; i >= 0; i-- {
		p := payloads[i]
		if isEmptyExchange(p) {
			continue
		}
		data, err := json.Marshal(historyLine{Question: p.Question, Answer: p.Answer, Sources: p.Sources})
		if err != nil {
			continue
		}
		out = append(out, string(data))
	}
	return out
}
