package ingest

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/akolanti/AviationCompliance/internal/adapter/utils"
	"github.com/akolanti/AviationCompliance/internal/config"
	"github.com/akolanti/AviationCompliance/internal/domain/commonModels"
	"github.com/akolanti/AviationCompliance/internal/domain/complianceErrors"
	"github.com/akolanti/AviationCompliance/internal/rag/embedding"
	"github.com/akolanti/AviationCompliance/internal/rag/vectorDB"
	"github.com/akolanti/AviationCompliance/pkg/logger_i"
)

// Separators ordered from "best" to "worst" for semantic meaning
var separators = []string{"\n\n", "\n", ". ", " ", ""}

const hugeDataSetChunks = 1000000

func splitTextIntoChunks(text string, limit int, overlap int) []string {
	if limit <= 0 {
		return []string{text}
	}
	if overlap >= limit {
		overlap = limit / 2
	}
	return splitWith(text, limit, overlap, separators)
}

func splitWith(text string, limit int, overlap int, seps []string) []string {
	if len(text) <= limit {
		return []string{text}
	}

	i := 0
	for i < len(seps)-1 && !strings.Contains(text, seps[i]) {
		i++
	}
	splitChar := seps[i]
	if splitChar == "" {
		return hardCut(text, limit)
	}

	var chunks []string
	var currentChunk strings.Builder
	// pending is false while the builder only holds overlap from the previous chunk
	pending := false
	carry := func(from string) {
		currentChunk.Reset()
		currentChunk.WriteString(tail(from, overlap))
		pending = false
	}
	flush := func() {
		if !pending {
			return
		}
		chunk := currentChunk.String()
		chunks = append(chunks, chunk)
		// start the next chunk with the end of the previous one
		carry(chunk)
	}

	// SplitAfter keeps each separator on the part before it, so nothing is lost at a boundary
	for _, part := range strings.SplitAfter(text, splitChar) {
		if part == "" {
			continue
		}
		if len(part) > limit {
			flush()
			sub := splitWith(part, limit, overlap, seps[i+1:])
			sub[0] = currentChunk.String() + sub[0]
			chunks = append(chunks, sub...)
			carry(sub[len(sub)-1])
			continue
		}
		if currentChunk.Len()+len(part) > limit {
			flush()
		}
		currentChunk.WriteString(part)
		pending = true
	}

	if pending {
		chunks = append(chunks, currentChunk.String())
	}
	return chunks
}

// hardCut splits at limit bytes, never inside a rune.
func hardCut(text string, limit int) []string {
	var out []string
	for len(text) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		if cut == 0 {
			cut = limit
		}
		out = append(out, text[:cut])
		text = text[cut:]
	}
	if text != "" {
		out = append(out, text)
	}
	return out
}

func tail(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return ""
	}
	start := len(s) - n
	for start < len(s) && !utf8.RuneStart(s[start]) {
		start++
	}
	return s[start:]
}

// PrepareChunks splits the document text and drops blank chunks so that every
// chunk handed to the embedder produces exactly one vector.
func PrepareChunks(text string, doc commonModels.Document, embeddingModel string, size int, overlap int) []commonModels.DocChunk {
	var allChunks []commonModels.DocChunk
	for _, chunk := range splitTextIntoChunks(text, size, overlap) {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		allChunks = append(allChunks, commonModels.DocChunk{
			Doc:                doc,
			ChunkId:            utils.GetNewUUID(),
			Chunk:              chunk,
			ChunkOrder:         len(allChunks),
			EmbeddingDimension: embeddingModel,
		})
	}
	return allChunks
}

func BatchIngest(ctx context.Context, chunks []commonModels.DocChunk, vectorDB vectorDB.DataProcessor, embedder embedding.Embedder, batchSize int) error {
	log := logger_i.NewLogger("Batch Ingestion").WithTrace(ctx, config.TRACE_ID_KEY)
	if batchSize <= 0 {
		batchSize = 100
	}

	isHugeDataSet := len(chunks) > hugeDataSetChunks
	if isHugeDataSet {
		log.Debug("Is a huge dataset", "chunks", len(chunks))
	}

	for i := 0; i < len(chunks); i += batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(i+batchSize, len(chunks))
		currentBatch := chunks[i:end]

		texts := make([]string, len(currentBatch))
		for j, c := range currentBatch {
			texts[j] = c.Chunk
		}

		log.Debug("Starting embedding call", "batch", i/batchSize, "size", len(texts))
		vectors, err := embedder.BatchEmbedding(ctx, texts, isHugeDataSet)
		if err != nil {
			return complianceErrors.New(complianceErrors.KindEmbedding, "embedding batch failed", err)
		}
		if err = embedding.CheckBatch(len(texts), vectors); err != nil {
			return complianceErrors.New(complianceErrors.KindEmbedding, "embedding batch rejected", err)
		}

		if err = vectorDB.UpsertBatch(ctx, config.EmbeddingDBName, currentBatch, vectors); err != nil {
			return complianceErrors.New(complianceErrors.KindStorage, "upserting to qdrant failed", err)
		}
	}
	return nil
}
