package adapter

import (
	"net/http"
	"testing"
	"time"

	"github.com/akolanti/AviationCompliance/internal/data/catalog"
	"github.com/akolanti/AviationCompliance/internal/domain/commonModels"
	"github.com/akolanti/AviationCompliance/internal/domain/jobModel"
)

func TestToAPIResponse(t *testing.T) {
	tests := []struct {
		name       string
		job        jobModel.Job
		wantRAG    bool
		wantIngest bool
		wantErr    bool
	}{
		{"query answered", jobModel.Job{JobType: jobModel.JobTypeQuery, JobPayload: jobModel.JobPayload{Answer: "a"}}, true, false, false},
		{"query pending", jobModel.Job{JobType: jobModel.JobTypeQuery}, false, false, false},
		{"ingest read", jobModel.Job{JobType: jobModel.JobTypeIngest, JobPayload: jobModel.JobPayload{DocumentType: "manual", IngestChunks: 4}}, false, true, false},
		{"ingest failed", jobModel.Job{JobType: jobModel.JobTypeIngest, Error: jobModel.JobError{Code: http.StatusUnsupportedMediaType}}, false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ToAPIResponse(tt.job)
			if (res.Result.RAGExternalResponse != nil) != tt.wantRAG {
				t.Errorf("rag response present = %v", res.Result.RAGExternalResponse != nil)
			}
			if (res.Result.Ingest != nil) != tt.wantIngest {
				t.Errorf("ingest response present = %v", res.Result.Ingest != nil)
			}
			if (res.Error != nil) != tt.wantErr {
				t.Errorf("error present = %v", res.Error != nil)
			}
		})
	}
}

func TestToDocumentResponse(t *testing.T) {
	at := time.Unix(1700000000, 0).UTC()
	res := ToDocumentResponse(catalog.Entry{
		Document: commonModels.Document{
			Id: "d1", Name: "ntsb.pdf", ContentType: commonModels.PDF, DocumentType: commonModels.AccidentReport,
			LastIngestTimestamp: at,
		},
		ChunkCount: 12,
	})
	if res.Format != "pdf" || res.DocumentType != "accident_report" || res.Chunks != 12 || !res.IngestedAt.Equal(at) {
		t.Errorf("unexpected response: %+v", res)
	}
	if res.Warnings == nil {
		t.Error("warnings should serialize as an empty list")
	}

	list := ToDocumentListResponse(nil)
	if list.Count != 0 || list.Documents == nil {
		t.Errorf("empty list should still carry a documents array: %+v", list)
	}
}
