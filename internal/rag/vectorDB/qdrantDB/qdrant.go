package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/akolanti/AviationCompliance/internal/config"
	"github.com/akolanti/AviationCompliance/internal/domain/commonModels"
	"github.com/akolanti/AviationCompliance/internal/domain/complianceErrors"
	"github.com/akolanti/AviationCompliance/internal/rag/vectorDB"
	"github.com/akolanti/AviationCompliance/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
)

const documentTypeField = "document_type"

var logger *logger_i.Logger
var quadrantInstance *qdrant.Client
var once sync.Once
var dimension = uint64(config.EmbeddingOutputDimensionality)
var collectionName = config.EmbeddingDBName

type ClientHolder struct {
	QObj     *qdrant.Client
	settings config.RetrievalSettings
}

func GetQuadrantClient(ctx context.Context, settings config.RetrievalSettings) *ClientHolder {
	once.Do(func() {
		logger = logger_i.NewLogger("Qdrant")
		res := newClient(ctx)
		if res != nil {
			quadrantInstance = res
			initCacheCollection(ctx, quadrantInstance)
			go closeQdrant(ctx, quadrantInstance)
		}
	})

	if quadrantInstance == nil {
		return nil
	}
	return &ClientHolder{
		QObj:     quadrantInstance,
		settings: settings,
	}
}

func newClient(ctx context.Context) *qdrant.Client {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     config.QdrantHost,
		Port:     config.QdrantGrpcPort,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate", "host", config.QdrantHost, "port", config.QdrantGrpcPort, "error", err)
		return nil
	}

	setupCtx, cancel := context.WithTimeout(ctx, config.QdrantConnectionTimeout)
	defer cancel()
	if err = createCollection(setupCtx, client, collectionName); err != nil {
		logger.Error("could not create collection", "collectionName", collectionName, "error", err)
		return nil
	}
	return client
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	if err := qi.Close(); err != nil {
		logger.Error("could not close Qdrant", "error", err)
	}
	logger.Info("Closed Qdrant")
}

func (db *ClientHolder) Search(ctx context.Context, vectorFloat []float32, filter vectorDB.SearchFilter) ([]string, []string, error) {
	loggr := logger.WithTrace(ctx, config.TRACE_ID_KEY)

	query := &qdrant.QueryPoints{
		CollectionName: collectionName,
		Query:          qdrant.NewQuery(vectorFloat...),
		Limit:          qdrant.PtrOf(db.settings.TopK),
		WithPayload:    qdrant.NewWithPayload(true),
		Filter:         buildFilter(filter),
	}
	if db.settings.MinSimilarity > 0 {
		query.ScoreThreshold = qdrant.PtrOf(db.settings.MinSimilarity)
	}

	result, err := db.QObj.Query(ctx, query)
	if err != nil {
		loggr.Error("Error querying Qdrant", "error", err)
		return nil, nil, complianceErrors.New(complianceErrors.KindRetrieval, "vector search failed", err)
	}

	var matches []string
	var metadata []string
	for _, hit := range result {
		match, source := formatHit(hit.Payload)
		matches = append(matches, match)
		metadata = append(metadata, source)
	}

	loggr.Debug("Found matches", "count", len(matches), "documentType", filter.DocumentType)
	return matches, metadata, nil
}

// formatHit renders one stored chunk as prompt context plus a source line for the caller.
func formatHit(payload map[string]*qdrant.Value) (string, string) {
	str := func(key string) string { return payload[key].GetStringValue() }

	match := fmt.Sprintf("Content: %s, DocumentName: %s, Title: %s, DocumentType: %s",
		str("content"), str("doc_name"), str("title"), str("document_type"))
	source := fmt.Sprintf("source_doc_id:%s filename:%s document_type:%s chunk_order:%d chunk_id:%s ingested_at:%d",
		str("source_doc_id"), str("filename"), str("document_type"),
		payload["chunk_order"].GetIntegerValue(), str("chunk_id"), payload["ingested_at"].GetIntegerValue())
	return match, source
}

func buildFilter(filter vectorDB.SearchFilter) *qdrant.Filter {
	if filter.IsEmpty() {
		return nil
	}
	return &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch(documentTypeField, string(filter.DocumentType)),
		},
	}
}

func (db *ClientHolder) CreateCollection(ctx context.Context, collectionName string) error {
	return createCollection(ctx, db.QObj, collectionName)
}

func (db *ClientHolder) UpsertBatch(ctx context.Context, collectionName string, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return complianceErrors.New(complianceErrors.KindStorage,
			fmt.Sprintf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors)), nil)
	}

	qdrantPoints := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		qdrantPoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(chunk.ChunkId),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(chunkPayload(chunk)),
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collectionName,
		Points:         qdrantPoints,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return complianceErrors.New(complianceErrors.KindStorage, "qdrant upsert failed", err)
	}
	return nil
}

func chunkPayload(chunk commonModels.DocChunk) map[string]any {
	meta := chunk.Doc.Metadata
	return map[string]any{
		"content":        chunk.Chunk,
		"source_doc_id":  chunk.Doc.Id,
		"doc_name":       chunk.Doc.Name,
		"chunk_order":    chunk.ChunkOrder,
		"chunk_id":       chunk.ChunkId,
		"ingested_at":    chunk.Doc.LastIngestTimestamp.Unix(),
		"document_type":  string(chunk.Doc.DocumentType),
		"file_extension": string(chunk.Doc.ContentType),
		"title":          meta.Title,
		"author":         meta.Author,
		"filename":       meta.Filename,
	}
}

func createCollection(ctx context.Context, client *qdrant.Client, collectionName string) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return err
	}

	// keyword index so document_type filters stay cheap
	_, err = client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: collectionName,
		FieldName:      documentTypeField,
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		Wait:           qdrant.PtrOf(true),
	})
	return err
}
