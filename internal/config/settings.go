package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/akolanti/AviationCompliance/internal/domain/complianceErrors"
	"gopkg.in/yaml.v3"
)

const DefaultSettingsPath = "config.yaml"

type ReaderSettings struct {
	// Formats limits which readers get registered; empty means all of them.
	Formats         []string      `yaml:"formats"`
	MaxFileSizeMB   int64         `yaml:"max_file_size_mb"`
	PdfPageTimeout  time.Duration `yaml:"pdf_page_timeout"`
	ContentSniffing bool          `yaml:"content_sniffing"`
}

type IngestSettings struct {
	ChunkSize          int    `yaml:"chunk_size"`
	ChunkOverlap       int    `yaml:"chunk_overlap"`
	EmbeddingBatchSize int    `yaml:"embedding_batch_size"`
	UploadDir          string `yaml:"upload_dir"`
}

type RetrievalSettings struct {
	TopK            uint64  `yaml:"top_k"`
	MinSimilarity   float32 `yaml:"min_similarity"`
	CacheSimilarity float32 `yaml:"cache_similarity"`
}

type ProviderSettings struct {
	Embedding            string  `yaml:"embedding"`
	LLM                  string  `yaml:"llm"`
	GoogleEmbeddingModel string  `yaml:"google_embedding_model"`
	GeminiModel          string  `yaml:"gemini_model"`
	OpenAIEmbeddingModel string  `yaml:"openai_embedding_model"`
	OpenAIChatModel      string  `yaml:"openai_chat_model"`
	Temperature          float32 `yaml:"temperature"`
	MaxOutputTokens      int32   `yaml:"max_output_tokens"`
}

type CatalogSettings struct {
	Path string `yaml:"path"`
}

type Settings struct {
	Readers   ReaderSettings    `yaml:"readers"`
	Ingest    IngestSettings    `yaml:"ingest"`
	Retrieval RetrievalSettings `yaml:"retrieval"`
	Providers ProviderSettings  `yaml:"providers"`
	Catalog   CatalogSettings   `yaml:"catalog"`
}

func DefaultSettings() *Settings {
	return &Settings{
		Readers: ReaderSettings{
			MaxFileSizeMB:   50,
			PdfPageTimeout:  10 * time.Second,
			ContentSniffing: true,
		},
		Ingest: IngestSettings{
			ChunkSize:          1000,
			ChunkOverlap:       150,
			EmbeddingBatchSize: 100,
			UploadDir:          os.TempDir(),
		},
		Retrieval: RetrievalSettings{
			TopK:            20,
			MinSimilarity:   0.7,
			CacheSimilarity: 0.97,
		},
		Providers: ProviderSettings{
			Embedding:            ProviderGoogle,
			LLM:                  ProviderGemini,
			GoogleEmbeddingModel: "gemini-embedding-001",
			GeminiModel:          "gemini-2.5-flash-lite-preview-09-2025",
			OpenAIEmbeddingModel: "text-embedding-ada-002",
			OpenAIChatModel:      "gpt-4-turbo",
			Temperature:          0.6,
			MaxOutputTokens:      2000,
		},
		Catalog: CatalogSettings{
			Path: "catalog.db",
		},
	}
}

// LoadSettings reads a yaml settings file over the defaults. A missing file yields the
// defaults. EMBEDDING_PROVIDER and LLM_PROVIDER take precedence over the file.
func LoadSettings(path string) (*Settings, error) {
	s := DefaultSettings()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, complianceErrors.New(complianceErrors.KindConfiguration, "read settings "+path, err)
	default:
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, complianceErrors.New(complianceErrors.KindConfiguration, "parse settings "+path, err)
		}
	}

	if v := os.Getenv("EMBEDDING_PROVIDER"); v != "" {
		s.Providers.Embedding = strings.ToLower(v)
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		s.Providers.LLM = strings.ToLower(v)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) Validate() error {
	var problems []string
	if s.Readers.MaxFileSizeMB <= 0 {
		problems = append(problems, "readers.max_file_size_mb must be > 0")
	}
	if s.Readers.PdfPageTimeout <= 0 {
		problems = append(problems, "readers.pdf_page_timeout must be > 0")
	}
	if s.Ingest.ChunkSize <= 0 {
		problems = append(problems, "ingest.chunk_size must be > 0")
	}
	if s.Ingest.ChunkOverlap < 0 || s.Ingest.ChunkOverlap >= s.Ingest.ChunkSize {
		problems = append(problems, "ingest.chunk_overlap must be in [0, chunk_size)")
	}
	if s.Ingest.EmbeddingBatchSize <= 0 {
		problems = append(problems, "ingest.embedding_batch_size must be > 0")
	}
	if s.Retrieval.TopK == 0 {
		problems = append(problems, "retrieval.top_k must be > 0")
	}
	switch s.Providers.Embedding {
	case ProviderGoogle, ProviderOpenAI:
	default:
		problems = append(problems, fmt.Sprintf("providers.embedding %q is not one of google, openai", s.Providers.Embedding))
	}
	switch s.Providers.LLM {
	case ProviderGemini, ProviderOpenAI:
	default:
		problems = append(problems, fmt.Sprintf("providers.llm %q is not one of gemini, openai", s.Providers.LLM))
	}
	if len(problems) > 0 {
		return complianceErrors.New(complianceErrors.KindConfiguration, "invalid settings: "+strings.Join(problems, "; "), nil)
	}
	return nil
}

// MaxFileSize is the reader size limit in bytes.
func (r ReaderSettings) MaxFileSize() int64 {
	return r.MaxFileSizeMB << 20
}

// FormatEnabled reports whether format should be registered.
func (r ReaderSettings) FormatEnabled(format string) bool {
	if len(r.Formats) == 0 {
		return true
	}
	for _, f := range r.Formats {
		if strings.EqualFold(strings.TrimPrefix(f, "."), format) {
			return true
		}
	}
	return false
}
