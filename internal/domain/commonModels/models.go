package commonModels

import "time"

type Document struct {
	Id                  string       `json:"source_doc_id"`
	Name                string       `json:"doc_name"`
	LastIngestTimestamp time.Time    `json:"ingested_at"`
	ContentType         DocType      `json:"contentType"`
	DocumentType        DocumentType `json:"document_type"`
	Metadata            Metadata     `json:"metadata"`
}

type DocChunk struct {
	Doc                Document
	ChunkId            string `json:"chunk_id"`
	Chunk              string `json:"content"`
	ChunkOrder         int    `json:"chunk_order"`
	EmbeddingDimension string `json:"embeddingModel"`
}

// DocType is the source file format, named after the reader that handles it.
type DocType string

const (
	DOCX DocType = "docx"
	PDF  DocType = "pdf"
	XLSX DocType = "xlsx"
	HTML DocType = "html"
	TXT  DocType = "txt"
	MD   DocType = "md"
	ODT  DocType = "odt"
	RTF  DocType = "rtf"
	ERR  DocType = "error"
)

// DocumentType is the coarse category assigned by the classifier.
type DocumentType string

const (
	Regulatory     DocumentType = "regulatory"
	AccidentReport DocumentType = "accident_report"
	Manual         DocumentType = "manual"
	Unknown        DocumentType = "unknown"
)

func DocumentTypes() []DocumentType {
	return []DocumentType{Regulatory, AccidentReport, Manual, Unknown}
}

func (d DocumentType) Valid() bool {
	switch d {
	case Regulatory, AccidentReport, Manual, Unknown:
		return true
	}
	return false
}
