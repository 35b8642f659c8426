package ingest

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akolanti/AviationCompliance/internal/config"
	"github.com/akolanti/AviationCompliance/internal/data/catalog"
	"github.com/akolanti/AviationCompliance/internal/domain/commonModels"
	"github.com/akolanti/AviationCompliance/internal/domain/complianceErrors"
	"github.com/akolanti/AviationCompliance/internal/domain/jobModel"
	"github.com/akolanti/AviationCompliance/internal/rag/vectorDB"
	"github.com/akolanti/AviationCompliance/internal/reader"
)

// --- Mocks ---

type mockEmbedder struct {
	batchFunc func(ctx context.Context, chunks []string, isHuge bool) ([][]float32, error)
}

func (m *mockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	return nil, nil
}
func (m *mockEmbedder) BatchEmbedding(ctx context.Context, chunks []string, isHuge bool) ([][]float32, error) {
	return m.batchFunc(ctx, chunks, isHuge)
}

type mockVectorDB struct {
	upsertFunc func(ctx context.Context, coll string, chunks []commonModels.DocChunk, vectors [][]float32) error
}

func (m *mockVectorDB) Search(ctx context.Context, v []float32, f vectorDB.SearchFilter) ([]string, []string, error) {
	return nil, nil, nil
}
func (m *mockVectorDB) GetCachedAnswer(ctx context.Context, v []float32, f vectorDB.SearchFilter) (string, bool, error) {
	return "", false, nil
}
func (m *mockVectorDB) SaveToCache(ctx context.Context, id string, v []float32, a string, f vectorDB.SearchFilter) error {
	return nil
}
func (m *mockVectorDB) CreateCollection(ctx context.Context, name string) error { return nil }
func (m *mockVectorDB) UpsertBatch(ctx context.Context, coll string, chunks []commonModels.DocChunk, vectors [][]float32) error {
	return m.upsertFunc(ctx, coll, chunks, vectors)
}

type mockReader struct {
	readFunc func(ctx context.Context, path string) (reader.Result, error)
}

func (m *mockReader) Read(ctx context.Context, path string) (reader.Result, error) {
	return m.readFunc(ctx, path)
}

type mockRecorder struct {
	entries []catalog.Entry
	err     error
}

func (m *mockRecorder) Record(ctx context.Context, entry catalog.Entry) error {
	m.entries = append(m.entries, entry)
	return m.err
}

func vectorsFor(n int) [][]float32 {
	out := make([][]float32, n)
	for i := range out {
		out[i] = make([]float32, config.EmbeddingOutputDimensionality)
	}
	return out
}

func okEmbedder() *mockEmbedder {
	return &mockEmbedder{
		batchFunc: func(ctx context.Context, ch []string, huge bool) ([][]float32, error) {
			return vectorsFor(len(ch)), nil
		},
	}
}

// --- Unit Tests ---

func TestSplitTextIntoChunks(t *testing.T) {
	text := "This is a long sentence. This is another sentence that will be split."
	chunks := splitTextIntoChunks(text, 30, 5)

	if len(chunks) < 2 {
		t.Fatalf("Expected multiple chunks, got %d", len(chunks))
	}
	for _, word := range strings.Fields(text) {
		found := false
		for _, c := range chunks {
			if strings.Contains(c, word) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("word %q was lost while splitting: %q", word, chunks)
		}
	}
}

func TestSplitTextIntoChunksKeepsSeparators(t *testing.T) {
	text := "First rule applies. Second rule applies.\nThird rule applies. " + strings.Repeat("x", 45)
	chunks := splitTextIntoChunks(text, 30, 0)

	if got := strings.Join(chunks, ""); got != text {
		t.Fatalf("chunks do not rebuild the text:\n got %q\nwant %q", got, text)
	}
}

func TestSplitTextIntoChunksOverlapSurvivesLongParts(t *testing.T) {
	text := "Alpha beta gamma. " + strings.Repeat("x", 40)
	chunks := splitTextIntoChunks(text, 30, 6)

	if len(chunks) < 2 {
		t.Fatalf("Expected multiple chunks, got %q", chunks)
	}
	if chunks[0] != "Alpha beta gamma. " {
		t.Errorf("first chunk lost its separator: %q", chunks[0])
	}
	if !strings.HasPrefix(chunks[1], "amma. x") {
		t.Errorf("overlap dropped before the oversized part: %q", chunks[1])
	}
	if strings.Count(strings.Join(chunks, ""), "x") != 40 {
		t.Errorf("oversized part lost text: %q", chunks)
	}
}

func TestSplitTextIntoChunksShortText(t *testing.T) {
	chunks := splitTextIntoChunks("short", 1000, 150)
	if len(chunks) != 1 || chunks[0] != "short" {
		t.Errorf("unexpected chunks: %q", chunks)
	}
}

func TestSplitTextIntoChunksHardCutKeepsEverything(t *testing.T) {
	text := strings.Repeat("é", 40) // 80 bytes, no separators
	chunks := splitTextIntoChunks(text, 25, 0)

	if strings.Join(chunks, "") != text {
		t.Fatalf("hard cut lost text: %q", chunks)
	}
	for _, c := range chunks {
		if len(c) > 25 {
			t.Errorf("chunk longer than limit: %d", len(c))
		}
		if !strings.HasPrefix(c, "é") {
			t.Errorf("chunk split inside a rune: %q", c)
		}
	}
}

func TestSplitTextIntoChunksFallsBackToFinerSeparators(t *testing.T) {
	longParagraph := strings.Repeat("word ", 50)
	text := "Intro paragraph.\n\n" + longParagraph
	chunks := splitTextIntoChunks(text, 60, 10)

	for _, c := range chunks {
		if len(c) > 60+10+1 {
			t.Errorf("chunk of %d bytes exceeds limit plus overlap", len(c))
		}
	}
}

func TestPrepareChunksDropsBlankChunks(t *testing.T) {
	doc := commonModels.Document{Id: "doc-1", DocumentType: commonModels.Manual}
	text := strings.Repeat("a", 20) + "\n\n" + strings.Repeat(" ", 20) + "\n\n" + strings.Repeat("b", 20)

	chunks := PrepareChunks(text, doc, "text-embedding-ada-002", 20, 0)

	if len(chunks) != 2 {
		t.Fatalf("Expected 2 non-blank chunks, got %d: %+v", len(chunks), chunks)
	}
	for i, c := range chunks {
		if c.ChunkOrder != i {
			t.Errorf("chunk %d has order %d", i, c.ChunkOrder)
		}
		if c.Doc.Id != "doc-1" || c.Doc.DocumentType != commonModels.Manual || c.ChunkId == "" {
			t.Errorf("Metadata mismatch in chunk %d: %+v", i, c)
		}
	}
}

func TestBatchIngest(t *testing.T) {
	chunks := make([]commonModels.DocChunk, 150) // Should trigger 2 batches (100 + 50)
	for i := range chunks {
		chunks[i] = commonModels.DocChunk{Chunk: "test content"}
	}

	callCount := 0
	vDB := &mockVectorDB{
		upsertFunc: func(ctx context.Context, coll string, c []commonModels.DocChunk, v [][]float32) error {
			callCount++
			if len(c) != len(v) {
				t.Errorf("chunks and vectors out of step: %d vs %d", len(c), len(v))
			}
			return nil
		},
	}

	if err := BatchIngest(context.Background(), chunks, vDB, okEmbedder(), 100); err != nil {
		t.Fatalf("BatchIngest failed: %v", err)
	}
	if callCount != 2 {
		t.Errorf("Expected 2 batches to be upserted, got %d", callCount)
	}
}

func TestBatchIngest_Error(t *testing.T) {
	vDB := &mockVectorDB{
		upsertFunc: func(ctx context.Context, coll string, c []commonModels.DocChunk, v [][]float32) error {
			return errors.New("upsert failed")
		},
	}

	err := BatchIngest(context.Background(), []commonModels.DocChunk{{Chunk: "hi"}}, vDB, okEmbedder(), 100)
	if !errors.Is(err, complianceErrors.ErrStorage) {
		t.Errorf("Expected a storage error from BatchIngest, got %v", err)
	}
}

func TestBatchIngest_ShortEmbeddingAnswer(t *testing.T) {
	upserted := false
	vDB := &mockVectorDB{upsertFunc: func(ctx context.Context, coll string, c []commonModels.DocChunk, v [][]float32) error {
		upserted = true
		return nil
	}}
	short := &mockEmbedder{batchFunc: func(ctx context.Context, ch []string, huge bool) ([][]float32, error) {
		return vectorsFor(len(ch) - 1), nil
	}}

	err := BatchIngest(context.Background(), []commonModels.DocChunk{{Chunk: "a"}, {Chunk: "b"}}, vDB, short, 100)
	if !errors.Is(err, complianceErrors.ErrEmbedding) {
		t.Errorf("Expected an embedding error, got %v", err)
	}
	if upserted {
		t.Error("nothing should be stored when vectors are missing")
	}
}

func TestPipelineProcess(t *testing.T) {
	uploadDir := t.TempDir()
	jobDir := filepath.Join(uploadDir, "job-1")
	if err := os.MkdirAll(jobDir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(jobDir, "FAA_Part139.docx")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := &mockReader{readFunc: func(ctx context.Context, p string) (reader.Result, error) {
		return reader.Result{
			Payload: commonModels.DocumentPayload{
				Text: "Airport certification.\n\nRunway safety areas.",
				Metadata: commonModels.Metadata{
					Filename: "FAA_Part139.docx", FileExtension: "docx", Title: "Part 139",
					DocumentType: commonModels.Regulatory,
				},
			},
			Warnings: []reader.ExtractionWarning{{Field: "properties", Message: "core.xml unreadable"}},
		}, nil
	}}
	var upserted []commonModels.DocChunk
	vDB := &mockVectorDB{upsertFunc: func(ctx context.Context, coll string, c []commonModels.DocChunk, v [][]float32) error {
		upserted = append(upserted, c...)
		return nil
	}}
	rec := &mockRecorder{}

	settings := config.DefaultSettings().Ingest
	settings.UploadDir = uploadDir
	p := NewPipeline(r, okEmbedder(), vDB, rec, settings, "gemini-embedding-001")

	job := p.Process(context.Background(), jobModel.Job{Id: "job-1", JobPayload: jobModel.JobPayload{IngestFileName: "FAA_Part139.docx", IngestURL: path}})

	if job.Status != jobModel.JobStatusComplete {
		t.Fatalf("expected complete job, got %+v", job)
	}
	if job.JobPayload.DocumentType != "regulatory" || job.JobPayload.IngestTitle != "Part 139" || job.JobPayload.IngestChunks != 1 {
		t.Errorf("unexpected payload: %+v", job.JobPayload)
	}
	if len(job.JobPayload.IngestWarnings) != 1 {
		t.Errorf("warnings not carried: %v", job.JobPayload.IngestWarnings)
	}
	if len(upserted) != 1 || upserted[0].Doc.DocumentType != commonModels.Regulatory || upserted[0].Doc.Metadata.Title != "Part 139" {
		t.Errorf("chunk payload lost document metadata: %+v", upserted)
	}
	if len(rec.entries) != 1 || rec.entries[0].Document.Id != "job-1" || rec.entries[0].ChunkCount != 1 {
		t.Errorf("catalog entry not recorded: %+v", rec.entries)
	}
	if _, err := os.Stat(jobDir); !os.IsNotExist(err) {
		t.Errorf("upload directory should be removed, stat err = %v", err)
	}
}

func TestPipelineProcessReaderFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"unsupported", complianceErrors.UnsupportedFormat("a.exe", "exe"), http.StatusUnsupportedMediaType},
		{"parse", complianceErrors.ParseFailure("a.docx", "docx", errors.New("bad zip")), http.StatusUnprocessableEntity},
		{"missing", complianceErrors.FileNotFound("a.docx"), http.StatusNotFound},
		{"too large", complianceErrors.FileTooLarge("a.docx", 10, 5), http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &mockReader{readFunc: func(ctx context.Context, p string) (reader.Result, error) {
				return reader.Result{}, tt.err
			}}
			vDB := &mockVectorDB{upsertFunc: func(ctx context.Context, coll string, c []commonModels.DocChunk, v [][]float32) error {
				t.Error("nothing should be stored when reading fails")
				return nil
			}}
			rec := &mockRecorder{}
			p := NewPipeline(r, okEmbedder(), vDB, rec, config.DefaultSettings().Ingest, "m")

			job := p.Process(context.Background(), jobModel.Job{Id: "j", JobPayload: jobModel.JobPayload{IngestURL: filepath.Join(t.TempDir(), "a")}})
			if job.Status != jobModel.JobStatusError {
				t.Fatalf("expected error status, got %s", job.Status)
			}
			if job.Error.Code != tt.code || job.Error.Retry {
				t.Errorf("job error = %+v; want code %d without retry", job.Error, tt.code)
			}
			if len(rec.entries) != 0 {
				t.Error("failed documents must not reach the catalog")
			}
		})
	}
}

func TestJobErrorForInterruptedRead(t *testing.T) {
	err := complianceErrors.New(complianceErrors.KindDocumentProcessing, "reading a.pdf interrupted", context.Canceled)

	got := JobErrorFor(err)
	if got.Code != http.StatusGatewayTimeout || !got.Retry {
		t.Errorf("JobErrorFor(cancelled read) = %+v; want %d with retry", got, http.StatusGatewayTimeout)
	}

	wrapped := complianceErrors.ParseFailure("a.pdf", "pdf", context.DeadlineExceeded)
	if got := JobErrorFor(wrapped); got.Code != http.StatusGatewayTimeout {
		t.Errorf("a deadline wins over the parse reason, got %+v", got)
	}
}

func TestPipelineCatalogFailureDoesNotFailJob(t *testing.T) {
	r := &mockReader{readFunc: func(ctx context.Context, p string) (reader.Result, error) {
		return reader.Result{Payload: commonModels.DocumentPayload{Text: "Handbook", Metadata: commonModels.Metadata{DocumentType: commonModels.Manual}}}, nil
	}}
	vDB := &mockVectorDB{upsertFunc: func(ctx context.Context, coll string, c []commonModels.DocChunk, v [][]float32) error { return nil }}
	rec := &mockRecorder{err: errors.New("disk full")}

	job := NewPipeline(r, okEmbedder(), vDB, rec, config.DefaultSettings().Ingest, "m").
		Process(context.Background(), jobModel.Job{Id: "j"})
	if job.Status != jobModel.JobStatusComplete {
		t.Errorf("expected complete job, got %+v", job)
	}
}
