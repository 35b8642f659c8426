package reader

import (
	"github.com/akolanti/AviationCompliance/internal/config"
	"github.com/akolanti/AviationCompliance/internal/domain/commonModels"
	"github.com/akolanti/AviationCompliance/pkg/logger_i"
)

// DefaultFormats is the registration order used by NewDefaultRegistry.
var DefaultFormats = []commonModels.DocType{
	commonModels.DOCX,
	commonModels.PDF,
	commonModels.XLSX,
	commonModels.HTML,
	commonModels.TXT,
	commonModels.MD,
	commonModels.ODT,
	commonModels.RTF,
}

// NewDefaultRegistry registers a reader for every enabled format.
func NewDefaultRegistry(settings config.ReaderSettings, logger *logger_i.Logger) *Registry {
	registry := NewRegistry(logger, settings.ContentSniffing)
	for _, format := range DefaultFormats {
		if !settings.FormatEnabled(string(format)) {
			continue
		}
		switch format {
		case commonModels.DOCX:
			registry.Register(NewDocxReader(settings, logger))
		case commonModels.PDF:
			registry.Register(NewPdfReader(settings, logger))
		case commonModels.XLSX:
			registry.Register(NewXlsxReader(settings, logger))
		case commonModels.HTML:
			registry.Register(NewHtmlReader(settings, logger))
		default:
			// every remaining default format is a plain text one
			r, _ := NewPlainTextReader(format, settings, logger)
			registry.Register(r)
		}
	}
	return registry
}
