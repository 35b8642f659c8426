package reader

import (
	"context"
	"fmt"
	"strings"

	"github.com/akolanti/AviationCompliance/internal/config"
	"github.com/akolanti/AviationCompliance/internal/domain/commonModels"
	"github.com/akolanti/AviationCompliance/pkg/logger_i"
	"github.com/xuri/excelize/v2"
)

// XlsxReader treats every sheet as one table. Workbooks have no paragraphs, so the
// classifier looks at the row text instead.
type XlsxReader struct {
	baseReader
}

func NewXlsxReader(settings config.ReaderSettings, logger *logger_i.Logger) *XlsxReader {
	return &XlsxReader{
		baseReader: newBaseReader(string(commonModels.XLSX), []string{"xlsx"},
			[]string{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"}, settings, logger),
	}
}

func (x *XlsxReader) Read(ctx context.Context, path string) (Result, error) {
	return x.read(ctx, path, parseXlsx)
}

func parseXlsx(_ context.Context, path string) (*parsedDocument, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	tables := make([][][]string, 0, len(sheets))
	var rowTexts []string
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		tables = append(tables, rows)
		for _, row := range rows {
			if line := rowText(row); line != "" {
				rowTexts = append(rowTexts, line)
			}
		}
	}

	// the workbook is closed once we return, so properties are read now
	props, propsErr := xlsxProperties(f)

	return &parsedDocument{
		tables: tables,
		structure: Structure{
			Paragraphs:   rowTexts,
			TableCount:   len(sheets),
			SectionCount: len(sheets),
		},
		properties: func() (Properties, error) {
			return props, propsErr
		},
	}, nil
}

func xlsxProperties(f *excelize.File) (Properties, error) {
	dp, err := f.GetDocProps()
	if err != nil {
		return Properties{}, fmt.Errorf("read document properties: %w", err)
	}
	return Properties{
		Title:          dp.Title,
		Author:         dp.Creator,
		Created:        w3cdtf(dp.Created),
		Modified:       w3cdtf(dp.Modified),
		LastModifiedBy: dp.LastModifiedBy,
		Revision:       revision(dp.Revision),
		Category:       dp.Category,
		Comments:       dp.Description,
		Subject:        dp.Subject,
		Keywords:       strings.TrimSpace(dp.Keywords),
	}, nil
}
