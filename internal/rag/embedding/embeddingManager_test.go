package embedding

import (
	"testing"

	"github.com/akolanti/AviationCompliance/internal/config"
)

func TestCheckBatch(t *testing.T) {
	good := make([]float32, config.EmbeddingOutputDimensionality)

	tests := []struct {
		name    string
		inputs  int
		vectors [][]float32
		wantErr bool
	}{
		{"matching", 2, [][]float32{good, good}, false},
		{"empty batch", 0, nil, false},
		{"missing vector", 2, [][]float32{good}, true},
		{"wrong dimension", 1, [][]float32{{0.1, 0.2}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := CheckBatch(tt.inputs, tt.vectors); (err != nil) != tt.wantErr {
				t.Errorf("CheckBatch() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
