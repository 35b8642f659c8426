package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/akolanti/AviationCompliance/internal/api"
	"github.com/akolanti/AviationCompliance/internal/config"
	"github.com/akolanti/AviationCompliance/internal/data/catalog"
	"github.com/akolanti/AviationCompliance/internal/data/store"
	"github.com/akolanti/AviationCompliance/internal/domain/commonModels"
	"github.com/akolanti/AviationCompliance/internal/domain/jobModel"
	"github.com/akolanti/AviationCompliance/internal/job"
	"github.com/akolanti/AviationCompliance/internal/reader"
	"github.com/akolanti/AviationCompliance/pkg/logger_i"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupJobService(t *testing.T) *job.Service {
	t.Helper()
	svc := job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobModel.Job, 10),
		DispatcherChannel: make(chan bool, 10),
		JobStore:          store.InitInMemoryJobStore(),
		MessageStore:      store.InitMessageStore(),
	})
	old := handlerInstance
	handlerInstance = &JobHandler{service: svc}
	t.Cleanup(func() { handlerInstance = old })
	return svc
}

func setupDocuments(t *testing.T, docCatalog DocumentCatalog) string {
	t.Helper()
	uploadDir := t.TempDir()
	InitDocumentHandler(reader.NewDefaultRegistry(config.DefaultSettings().Readers, nil), docCatalog, uploadDir)
	t.Cleanup(func() { InitDocumentHandler(nil, nil, "") })
	return uploadDir
}

func routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/chat", ChatHandler)
	r.Get("/status/{id}", GetStatusHandler)
	r.Post("/ingest", PostIngestHandler)
	r.Get("/documents", ListDocumentsHandler)
	r.Get("/documents/{id}", GetDocumentHandler)
	r.Get("/formats", FormatsHandler)
	return r
}

func serve(req *http.Request) *httptest.ResponseRecorder {
	ctx := context.WithValue(req.Context(), config.TRACE_ID_KEY, "test-trace")
	rr := httptest.NewRecorder()
	routes().ServeHTTP(rr, req.WithContext(ctx))
	return rr
}

func uploadRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(config.UploadFormField, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/ingest", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestChatHandler(t *testing.T) {
	svc := setupJobService(t)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"malformed json", `{"message":`, http.StatusBadRequest},
		{"missing message", `{"message":""}`, http.StatusBadRequest},
		{"unknown document type", `{"message":"hi","document_type":"memo"}`, http.StatusBadRequest},
		{"unknown chat", `{"message":"hi","chatID":"ghost"}`, http.StatusBadRequest},
		{"filtered question", `{"message":"Part 139 lighting?","document_type":"regulatory"}`, http.StatusAccepted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString(tt.body)))
			assert.Equal(t, tt.code, rr.Code, rr.Body.String())
		})
	}

	require.Len(t, svc.JobChannel, 1)
	queued := <-svc.JobChannel
	assert.Equal(t, jobModel.JobTypeQuery, queued.JobType)
	assert.Equal(t, "regulatory", queued.JobPayload.DocumentType)
	assert.NotEmpty(t, queued.ChatId)

	rr := serve(httptest.NewRequest(http.MethodGet, "/status/"+queued.Id, nil))
	assert.Equal(t, http.StatusOK, rr.Code, "queued jobs are visible before a worker runs")

	rr = serve(httptest.NewRequest(http.MethodGet, "/status/nope", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPostIngestHandler(t *testing.T) {
	svc := setupJobService(t)
	uploadDir := setupDocuments(t, nil)

	t.Run("unsupported format", func(t *testing.T) {
		rr := serve(uploadRequest(t, "payload.exe", []byte("MZ\x90\x00\x03\x00")))
		assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)
		entries, err := os.ReadDir(uploadDir)
		require.NoError(t, err)
		assert.Empty(t, entries, "rejected uploads are not kept")
	})

	t.Run("no extension, recognised by content", func(t *testing.T) {
		page := "<!DOCTYPE html><html><head><title>Bulletin</title></head><body><p>Airworthiness directive</p></body></html>"
		rr := serve(uploadRequest(t, "bulletin", []byte(page)))
		require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())

		require.Len(t, svc.JobChannel, 1)
		queued := <-svc.JobChannel
		assert.Equal(t, filepath.Join(uploadDir, queued.Id, "bulletin"), queued.JobPayload.IngestURL)
		<-svc.DispatcherChannel
	})

	t.Run("missing file", func(t *testing.T) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		require.NoError(t, mw.WriteField("document_name", "x"))
		require.NoError(t, mw.Close())
		req := httptest.NewRequest(http.MethodPost, "/ingest", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		assert.Equal(t, http.StatusBadRequest, serve(req).Code)
	})

	t.Run("accepted", func(t *testing.T) {
		rr := serve(uploadRequest(t, "../../FAA_Part139.txt", []byte("Airport certification regulation")))
		require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())

		var resp api.InitJobResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))

		require.Len(t, svc.JobChannel, 1)
		queued := <-svc.JobChannel
		assert.Equal(t, resp.Id, queued.Id)
		assert.Equal(t, jobModel.JobTypeIngest, queued.JobType)
		assert.Equal(t, "FAA_Part139.txt", queued.JobPayload.IngestFileName)
		assert.Equal(t, filepath.Join(uploadDir, queued.Id, "FAA_Part139.txt"), queued.JobPayload.IngestURL)

		data, err := os.ReadFile(queued.JobPayload.IngestURL)
		require.NoError(t, err)
		assert.Equal(t, "Airport certification regulation", string(data))
		assert.Len(t, svc.DispatcherChannel, 1, "ingestions always ask for a worker")
	})
}

func TestDocumentHandlers(t *testing.T) {
	docCatalog, err := catalog.Open(":memory:", logger_i.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { docCatalog.Close() })
	setupDocuments(t, docCatalog)

	ctx := context.Background()
	for i, d := range []struct {
		id, name string
		docType  commonModels.DocumentType
	}{
		{"doc-1", "FAA_Part139.docx", commonModels.Regulatory},
		{"doc-2", "NTSB_brief.pdf", commonModels.AccidentReport},
	} {
		require.NoError(t, docCatalog.Record(ctx, catalog.Entry{
			Document: commonModels.Document{
				Id:                  d.id,
				Name:                d.name,
				ContentType:         commonModels.DOCX,
				DocumentType:        d.docType,
				LastIngestTimestamp: time.Date(2025, 1, 1+i, 0, 0, 0, 0, time.UTC),
			},
			ChunkCount: 3,
		}))
	}

	rr := serve(httptest.NewRequest(http.MethodGet, "/documents", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var list api.DocumentListResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&list))
	require.Equal(t, 2, list.Count)
	assert.Equal(t, "doc-2", list.Documents[0].Id, "newest first")

	rr = serve(httptest.NewRequest(http.MethodGet, "/documents?document_type=regulatory", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&list))
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "FAA_Part139.docx", list.Documents[0].Name)

	rr = serve(httptest.NewRequest(http.MethodGet, "/documents?document_type=memo", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(httptest.NewRequest(http.MethodGet, "/documents/doc-2", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var doc api.DocumentResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&doc))
	assert.Equal(t, "accident_report", doc.DocumentType)
	assert.Equal(t, 3, doc.Chunks)

	rr = serve(httptest.NewRequest(http.MethodGet, "/documents/missing", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDocumentHandlersWithoutCatalog(t *testing.T) {
	setupDocuments(t, nil)
	rr := serve(httptest.NewRequest(http.MethodGet, "/documents", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestFormatsHandler(t *testing.T) {
	setupDocuments(t, nil)

	rr := serve(httptest.NewRequest(http.MethodGet, "/formats", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var formats api.FormatsResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&formats))
	assert.Contains(t, formats.Formats, "docx")
	assert.Contains(t, formats.Formats, "pdf")
	assert.Contains(t, formats.Extensions, "htm")
	assert.ElementsMatch(t, []string{"regulatory", "accident_report", "manual", "unknown"}, formats.DocumentTypes)
}
