// Package catalog keeps a sqlite record of every document that made it through ingestion.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/akolanti/AviationCompliance/internal/domain/commonModels"
	"github.com/akolanti/AviationCompliance/internal/domain/complianceErrors"
	"github.com/akolanti/AviationCompliance/pkg/logger_i"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	format        TEXT NOT NULL,
	document_type TEXT NOT NULL,
	title         TEXT NOT NULL DEFAULT '',
	chunk_count   INTEGER NOT NULL DEFAULT 0,
	warnings      TEXT NOT NULL DEFAULT '[]',
	metadata      TEXT NOT NULL,
	ingested_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_type ON documents(document_type);
`

var pragmas = []string{
	"PRAGMA foreign_keys = ON",
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 10000",
	"PRAGMA synchronous = NORMAL",
}

var ErrNotFound = errors.New("document not in catalog")

type Entry struct {
	Document   commonModels.Document `json:"document"`
	ChunkCount int                   `json:"chunk_count"`
	Warnings   []string              `json:"warnings"`
}

type Catalog struct {
	db     *sql.DB
	logger *logger_i.Logger
}

// Open creates the database file and schema if needed. ":memory:" is accepted for tests.
func Open(path string, logger *logger_i.Logger) (*Catalog, error) {
	if logger == nil {
		logger = logger_i.Discard()
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, complianceErrors.New(complianceErrors.KindStorage, "catalog: mkdir", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, complianceErrors.New(complianceErrors.KindStorage, "catalog: open", err)
	}
	// a second connection to ":memory:" would see an empty database
	db.SetMaxOpenConns(1)

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, complianceErrors.New(complianceErrors.KindStorage, fmt.Sprintf("catalog: %s", p), err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, complianceErrors.New(complianceErrors.KindStorage, "catalog: schema", err)
	}

	logger.Info("Catalog opened", "path", path)
	return &Catalog{db: db, logger: logger.Named("catalog")}, nil
}

func (c *Catalog) Close() error {
	return c.db.Close()
}

// Record inserts or replaces the entry for entry.Document.Id.
func (c *Catalog) Record(ctx context.Context, entry Entry) error {
	doc := entry.Document
	if doc.Id == "" {
		return complianceErrors.New(complianceErrors.KindStorage, "catalog: empty document id", nil)
	}

	meta, err := json.Marshal(doc.Metadata)
	if err != nil {
		return complianceErrors.New(complianceErrors.KindStorage, "catalog: encode metadata", err)
	}
	warnings := entry.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	warn, err := json.Marshal(warnings)
	if err != nil {
		return complianceErrors.New(complianceErrors.KindStorage, "catalog: encode warnings", err)
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO documents (id, name, format, document_type, title, chunk_count, warnings, metadata, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, format = excluded.format, document_type = excluded.document_type,
			title = excluded.title, chunk_count = excluded.chunk_count, warnings = excluded.warnings,
			metadata = excluded.metadata, ingested_at = excluded.ingested_at`,
		doc.Id, doc.Name, string(doc.ContentType), string(doc.DocumentType), doc.Metadata.Title,
		entry.ChunkCount, string(warn), string(meta), doc.LastIngestTimestamp.Unix())
	if err != nil {
		return complianceErrors.New(complianceErrors.KindStorage, "catalog: insert", err)
	}
	c.logger.Debug("Recorded document", "id", doc.Id, "documentType", doc.DocumentType)
	return nil
}

func (c *Catalog) Get(ctx context.Context, id string) (Entry, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT id, name, format, document_type, chunk_count, warnings, metadata, ingested_at
		FROM documents WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	return entry, err
}

// List returns entries newest first, optionally limited to one document type.
func (c *Catalog) List(ctx context.Context, documentType commonModels.DocumentType) ([]Entry, error) {
	query := `SELECT id, name, format, document_type, chunk_count, warnings, metadata, ingested_at FROM documents`
	var args []any
	if documentType != "" {
		query += ` WHERE document_type = ?`
		args = append(args, string(documentType))
	}
	query += ` ORDER BY ingested_at DESC, id`

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, complianceErrors.New(complianceErrors.KindStorage, "catalog: list", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, complianceErrors.New(complianceErrors.KindStorage, "catalog: list", err)
	}
	return entries, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (Entry, error) {
	var (
		e                           Entry
		format, docType, warn, meta string
		ingestedAt                  int64
	)
	err := s.Scan(&e.Document.Id, &e.Document.Name, &format, &docType, &e.ChunkCount, &warn, &meta, &ingestedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, err
	}
	if err != nil {
		return Entry{}, complianceErrors.New(complianceErrors.KindStorage, "catalog: scan", err)
	}
	e.Document.ContentType = commonModels.DocType(format)
	e.Document.DocumentType = commonModels.DocumentType(docType)
	e.Document.LastIngestTimestamp = time.Unix(ingestedAt, 0).UTC()
	if err := json.Unmarshal([]byte(meta), &e.Document.Metadata); err != nil {
		return Entry{}, complianceErrors.New(complianceErrors.KindStorage, "catalog: decode metadata", err)
	}
	if err := json.Unmarshal([]byte(warn), &e.Warnings); err != nil {
		return Entry{}, complianceErrors.New(complianceErrors.KindStorage, "catalog: decode warnings", err)
	}
	return e, nil
}
