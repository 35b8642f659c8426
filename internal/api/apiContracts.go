package api

import (
	"time"

	"github.com/akolanti/AviationCompliance/internal/domain/commonModels"
)

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	ChatId    string            `json:"chat_id" example:"chat_550"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type RAGResponse struct {
	Question     string   `json:"question"`
	Answer       string   `json:"answer"`
	Sources      []string `json:"sources"`
	DocumentType string   `json:"document_type,omitempty" example:"regulatory"`
}

type IngestResponse struct {
	DocumentName string   `json:"document_name" example:"FAA_Part139.docx"`
	DocumentType string   `json:"document_type" example:"regulatory"`
	Title        string   `json:"title,omitempty"`
	Chunks       int      `json:"chunks"`
	Warnings     []string `json:"warnings,omitempty"`
}

type Result struct {
	Status              string          `json:"status"`
	RAGExternalResponse *RAGResponse    `json:"rag_response,omitempty"`
	Ingest              *IngestResponse `json:"ingest,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

type DocumentResponse struct {
	Id           string                `json:"id"`
	Name         string                `json:"name" example:"FAA_Part139.docx"`
	Format       string                `json:"format" example:"docx"`
	DocumentType string                `json:"document_type" example:"regulatory"`
	Chunks       int                   `json:"chunks"`
	Warnings     []string              `json:"warnings"`
	IngestedAt   time.Time             `json:"ingested_at"`
	Metadata     commonModels.Metadata `json:"metadata"`
}

type DocumentListResponse struct {
	Count     int                `json:"count"`
	Documents []DocumentResponse `json:"documents"`
}

type FormatsResponse struct {
	Formats       []string `json:"formats" example:"docx,pdf"`
	Extensions    []string `json:"extensions" example:"docx,htm,html"`
	DocumentTypes []string `json:"document_types" example:"regulatory,accident_report"`
}

// requests---------------------

type ChatRequest struct {
	Message      string `json:"message" validate:"required" `
	ChatID       string `json:"chatID,omitempty" `
	DocumentType string `json:"document_type,omitempty" example:"accident_report"`
}
