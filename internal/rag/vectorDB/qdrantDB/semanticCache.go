package qdrantDB

import (
	"context"
	"time"

	"github.com/akolanti/AviationCompliance/internal/config"
	"github.com/akolanti/AviationCompliance/internal/domain/complianceErrors"
	"github.com/akolanti/AviationCompliance/internal/rag/vectorDB"
	"github.com/qdrant/go-client/qdrant"
)

var semanticCacheDBName = config.SemanticCacheName

// unfiltered answers are cached under their own scope so a filtered question never
// gets an answer built from the whole corpus
const allDocumentsScope = "all"

func initCacheCollection(ctx context.Context, client *qdrant.Client) {
	loggr := logger.WithTrace(ctx, config.TRACE_ID_KEY)
	if err := createCollection(ctx, client, semanticCacheDBName); err != nil {
		loggr.Error("Semantic cache collection creation failed", "error", err)
	}
}

func cacheScope(filter vectorDB.SearchFilter) string {
	if filter.IsEmpty() {
		return allDocumentsScope
	}
	return string(filter.DocumentType)
}

func (db *ClientHolder) GetCachedAnswer(ctx context.Context, queryVector []float32, filter vectorDB.SearchFilter) (string, bool, error) {
	loggr := logger.WithTrace(ctx, config.TRACE_ID_KEY)

	loggr.Debug("Searching for cached answer", "scope", cacheScope(filter))
	searchResult, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: semanticCacheDBName,
		Query:          qdrant.NewQuery(queryVector...),
		Limit:          qdrant.PtrOf(uint64(1)),
		WithPayload:    qdrant.NewWithPayload(true),
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch(documentTypeField, cacheScope(filter))},
		},
	})
	if err != nil {
		loggr.Error("Cache Query failed", "error", err)
		return "", false, complianceErrors.New(complianceErrors.KindRetrieval, "semantic cache lookup failed", err)
	}
	if len(searchResult) == 0 {
		return "", false, nil
	}

	loggr.Debug("Closest cached answer", "score", searchResult[0].Score)
	if searchResult[0].Score < db.settings.CacheSimilarity {
		return "", false, nil
	}

	loggr.Info("Semantic cache hit")
	return searchResult[0].Payload["answer"].GetStringValue(), true, nil
}

func (db *ClientHolder) SaveToCache(ctx context.Context, id string, vector []float32, answer string, filter vectorDB.SearchFilter) error {
	loggr := logger.WithTrace(ctx, config.TRACE_ID_KEY)

	loggr.Debug("Saving answer to cache")
	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: semanticCacheDBName,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewID(id),
				Vectors: qdrant.NewVectors(vector...),
				Payload: qdrant.NewValueMap(map[string]any{
					"answer":          answer,
					documentTypeField: cacheScope(filter),
					"timestamp":       time.Now().Unix(),
				}),
			},
		},
	})
	if err != nil {
		loggr.Error("Saving answer to cache failed", "error", err)
		return complianceErrors.New(complianceErrors.KindStorage, "semantic cache save failed", err)
	}
	return nil
}
