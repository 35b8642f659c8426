package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/akolanti/AviationCompliance/internal/adapter"
	"github.com/akolanti/AviationCompliance/internal/adapter/utils"
	"github.com/akolanti/AviationCompliance/internal/data/catalog"
	"github.com/akolanti/AviationCompliance/internal/domain/commonModels"
	"github.com/akolanti/AviationCompliance/internal/reader"
)

// FormatRegistry is the part of reader.Registry the HTTP layer needs.
type FormatRegistry interface {
	Supports(path string) bool
	// ReaderFor also looks at the file content when sniffing is enabled.
	ReaderFor(path string) (reader.FormatReader, error)
	Formats() []string
	Extensions() []string
}

type DocumentCatalog interface {
	Get(ctx context.Context, id string) (catalog.Entry, error)
	List(ctx context.Context, documentType commonModels.DocumentType) ([]catalog.Entry, error)
}

type documentHandler struct {
	registry  FormatRegistry
	catalog   DocumentCatalog
	uploadDir string
}

var (
	docsMu       sync.RWMutex
	docsInstance *documentHandler
)

// InitDocumentHandler wires the reader registry and the catalog into the ingest and
// document endpoints. catalog may be nil, the document listing then answers 503.
func InitDocumentHandler(registry FormatRegistry, docCatalog DocumentCatalog, uploadDir string) {
	docsMu.Lock()
	defer docsMu.Unlock()
	docsInstance = &documentHandler{registry: registry, catalog: docCatalog, uploadDir: uploadDir}
}

func documentsInstance() *documentHandler {
	docsMu.RLock()
	defer docsMu.RUnlock()
	return docsInstance
}

// ListDocumentsHandler godoc
// @Summary      List ingested documents
// @Description  Lists catalogued documents newest first, optionally filtered by document type.
// @Tags         Documents
// @Produce      json
// @Param        document_type  query     string  false  "regulatory, accident_report, manual or unknown"
// @Success      200  {object}  api.DocumentListResponse
// @Failure      400  {object}  api.JobResponse "Unknown document type"
// @Router       /documents [get]
func ListDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	docs := documentsInstance()
	if docs == nil || docs.catalog == nil {
		WriteErrorResponse(w, http.StatusServiceUnavailable, "", "Catalog unavailable")
		return
	}

	docType := commonModels.DocumentType(r.URL.Query().Get("document_type"))
	if docType != "" && !docType.Valid() {
		WriteErrorResponse(w, http.StatusBadRequest, "", "unknown document_type")
		return
	}

	entries, err := docs.catalog.List(r.Context(), docType)
	if err != nil {
		logRH.Error("Listing documents failed", "err", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Catalog error")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentListResponse(entries))
}

// GetDocumentHandler godoc
// @Summary      Get one ingested document
// @Description  Returns the catalogued metadata of a document. The id is the ingestion job id.
// @Tags         Documents
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  api.DocumentResponse
// @Failure      404  {object}  api.JobResponse "Document not found"
// @Router       /documents/{id} [get]
func GetDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	docs := documentsInstance()
	if docs == nil || docs.catalog == nil {
		WriteErrorResponse(w, http.StatusServiceUnavailable, "", "Catalog unavailable")
		return
	}

	id := utils.GetChiURLParam(r, "id")
	entry, err := docs.catalog.Get(r.Context(), id)
	if errors.Is(err, catalog.ErrNotFound) {
		WriteErrorResponse(w, http.StatusNotFound, id, "Document not found")
		return
	}
	if err != nil {
		logRH.Error("Reading document failed", "id", id, "err", err)
		WriteErrorResponse(w, http.StatusInternalServerError, id, "Catalog error")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentResponse(entry))
}

// FormatsHandler godoc
// @Summary      Supported formats
// @Description  Lists the document formats and file extensions the service can ingest.
// @Tags         Documents
// @Produce      json
// @Success      200  {object}  api.FormatsResponse
// @Router       /formats [get]
func FormatsHandler(w http.ResponseWriter, r *http.Request) {
	docs := documentsInstance()
	if docs == nil {
		WriteErrorResponse(w, http.StatusServiceUnavailable, "", "Readers unavailable")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToFormatsResponse(docs.registry.Formats(), docs.registry.Extensions()))
}
