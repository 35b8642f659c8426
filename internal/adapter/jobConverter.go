package adapter

import (
	"fmt"

	"github.com/akolanti/AviationCompliance/internal/api"
	"github.com/akolanti/AviationCompliance/internal/data/catalog"
	"github.com/akolanti/AviationCompliance/internal/domain/commonModels"
	"github.com/akolanti/AviationCompliance/internal/domain/jobModel"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("status/%s", id),
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {
	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{Status: string(job.Status)}
	if job.JobType == jobModel.JobTypeIngest {
		result.Ingest = ToIngestResponse(job.JobPayload)
	} else {
		result.RAGExternalResponse = ToRAGExternalStatus(job.JobPayload)
	}

	return api.JobResponse{
		Id:        job.Id,
		ChatId:    job.ChatId,
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

func ToRAGExternalStatus(ragData jobModel.JobPayload) *api.RAGResponse {
	if ragData.Answer == "" && len(ragData.Sources) == 0 {
		return nil
	}

	return &api.RAGResponse{
		Question:     ragData.Question,
		Answer:       ragData.Answer,
		Sources:      ragData.Sources,
		DocumentType: ragData.DocumentType,
	}
}

// ToIngestResponse is nil until the document has been read.
func ToIngestResponse(payload jobModel.JobPayload) *api.IngestResponse {
	if payload.DocumentType == "" {
		return nil
	}
	return &api.IngestResponse{
		DocumentName: payload.IngestFileName,
		DocumentType: payload.DocumentType,
		Title:        payload.IngestTitle,
		Chunks:       payload.IngestChunks,
		Warnings:     payload.IngestWarnings,
	}
}

func ToDocumentResponse(entry catalog.Entry) api.DocumentResponse {
	warnings := entry.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return api.DocumentResponse{
		Id:           entry.Document.Id,
		Name:         entry.Document.Name,
		Format:       string(entry.Document.ContentType),
		DocumentType: string(entry.Document.DocumentType),
		Chunks:       entry.ChunkCount,
		Warnings:     warnings,
		IngestedAt:   entry.Document.LastIngestTimestamp,
		Metadata:     entry.Document.Metadata,
	}
}

func ToDocumentListResponse(entries []catalog.Entry) api.DocumentListResponse {
	docs := make([]api.DocumentResponse, len(entries))
	for i, e := range entries {
		docs[i] = ToDocumentResponse(e)
	}
	return api.DocumentListResponse{Count: len(docs), Documents: docs}
}

func ToFormatsResponse(formats, extensions []string) api.FormatsResponse {
	types := commonModels.DocumentTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return api.FormatsResponse{Formats: formats, Extensions: extensions, DocumentTypes: names}
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id: id,
		Result: api.Result{
			Status: string(api.JobStatusError),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}

