package reader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/akolanti/AviationCompliance/internal/domain/commonModels"
	"github.com/akolanti/AviationCompliance/internal/domain/complianceErrors"
	"github.com/akolanti/AviationCompliance/pkg/logger_i"
)

const isoLayout = "2006-01-02T15:04:05"

// Properties are the document level properties a format may carry.
type Properties struct {
	Title          string
	Author         string
	Created        string
	Modified       string
	LastModifiedBy string
	Revision       string
	Category       string
	Comments       string
	Subject        string
	Keywords       string
}

// PropertySource loads Properties lazily. Failures are tolerated by the extractor.
type PropertySource func() (Properties, error)

// Structure holds the counts of a parsed document and the text blocks the classifier
// looks at.
type Structure struct {
	Paragraphs     []string
	ParagraphCount int
	TableCount     int
	SectionCount   int
}

type MetadataResult struct {
	Metadata commonModels.Metadata
	Warnings []ExtractionWarning
}

type MetadataExtractor struct {
	logger *logger_i.Logger
}

func NewMetadataExtractor(logger *logger_i.Logger) *MetadataExtractor {
	if logger == nil {
		logger = logger_i.Discard()
	}
	return &MetadataExtractor{logger: logger}
}

// Extract builds the metadata record for an already parsed document. File system facts
// are mandatory; properties are best effort.
func (m *MetadataExtractor) Extract(path, format string, structure Structure, props PropertySource) (MetadataResult, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return MetadataResult{}, complianceErrors.FileNotFound(path)
		}
		return MetadataResult{}, complianceErrors.New(complianceErrors.KindDocumentProcessing, "cannot stat "+path, err)
	}

	meta := commonModels.Metadata{
		Filename:       filepath.Base(abs),
		FileExtension:  format,
		FilePath:       abs,
		FileSize:       info.Size(),
		LastModified:   isoFormat(info.ModTime().Local()),
		ParagraphCount: structure.ParagraphCount,
		TableCount:     structure.TableCount,
		SectionCount:   structure.SectionCount,
	}

	var warnings []ExtractionWarning
	if props != nil {
		p, err := loadProperties(props)
		if err != nil {
			m.logger.Warn("Could not extract document properties", "path", path, "error", err)
			warnings = append(warnings, ExtractionWarning{Field: "properties", Message: err.Error()})
		} else {
			meta.Title = p.Title
			meta.Author = p.Author
			meta.Created = p.Created
			meta.Modified = p.Modified
			meta.LastModifiedBy = p.LastModifiedBy
			meta.Revision = p.Revision
			meta.Category = p.Category
			meta.Comments = p.Comments
			meta.Subject = p.Subject
			meta.Keywords = p.Keywords
		}
	}

	meta.DocumentType = ClassifyDocumentType(structure.Paragraphs, meta.Filename)
	return MetadataResult{Metadata: meta, Warnings: warnings}, nil
}

func loadProperties(props PropertySource) (p Properties, err error) {
	defer func() {
		if r := recover(); r != nil {
			p = Properties{}
			err = fmt.Errorf("property extraction panic: %v", r)
		}
	}()
	return props()
}

// isoFormat renders t like an ISO-8601 local timestamp, with microseconds only
// when there are any.
func isoFormat(t time.Time) string {
	s := t.Format(isoLayout)
	if us := t.Nanosecond() / 1000; us != 0 {
		s += fmt.Sprintf(".%06d", us)
	}
	return s
}
