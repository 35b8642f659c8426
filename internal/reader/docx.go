package reader

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/akolanti/AviationCompliance/internal/config"
	"github.com/akolanti/AviationCompliance/internal/domain/commonModels"
	"github.com/akolanti/AviationCompliance/pkg/logger_i"
)

const (
	docxDocumentPart = "word/document.xml"
	docxCorePart     = "docProps/core.xml"
)

// DocxReader reads WordprocessingML documents straight from the zip container.
type DocxReader struct {
	baseReader
}

func NewDocxReader(settings config.ReaderSettings, logger *logger_i.Logger) *DocxReader {
	return &DocxReader{
		baseReader: newBaseReader(string(commonModels.DOCX), []string{"docx"},
			[]string{"application/vnd.openxmlformats-officedocument.wordprocessingml.document"}, settings, logger),
	}
}

func (d *DocxReader) Read(ctx context.Context, path string) (Result, error) {
	return d.read(ctx, path, parseDocx)
}

func parseDocx(_ context.Context, path string) (*parsedDocument, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer zr.Close()

	var documentPart, corePart *zip.File
	for _, f := range zr.File {
		switch f.Name {
		case docxDocumentPart:
			documentPart = f
		case docxCorePart:
			corePart = f
		}
	}
	if documentPart == nil {
		return nil, errors.New(docxDocumentPart + " not found in archive")
	}

	body, err := readDocxBody(documentPart)
	if err != nil {
		return nil, err
	}

	// core.xml is read now, while the archive is open, and parsed lazily.
	var coreXML []byte
	var coreErr error
	if corePart != nil {
		coreXML, coreErr = readZipPart(corePart)
	}

	return &parsedDocument{
		paragraphs: body.paragraphs,
		tables:     body.tables,
		structure: Structure{
			Paragraphs:     body.paragraphs,
			ParagraphCount: len(body.paragraphs),
			TableCount:     len(body.tables),
			SectionCount:   body.sections,
		},
		properties: func() (Properties, error) {
			if coreErr != nil {
				return Properties{}, fmt.Errorf("read %s: %w", docxCorePart, coreErr)
			}
			if coreXML == nil {
				return Properties{}, nil
			}
			return parseCoreProperties(coreXML)
		},
	}, nil
}

func readZipPart(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

type docxBody struct {
	paragraphs []string
	tables     [][][]string
	sections   int
}

func readDocxBody(part *zip.File) (*docxBody, error) {
	rc, err := part.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", docxDocumentPart, err)
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	body := &docxBody{}
	foundBody := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", docxDocumentPart, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "document":
			continue
		case "body":
			foundBody = true
			if err := body.readChildren(dec); err != nil {
				return nil, fmt.Errorf("parse %s: %w", docxDocumentPart, err)
			}
		default:
			if err := dec.Skip(); err != nil {
				return nil, fmt.Errorf("parse %s: %w", docxDocumentPart, err)
			}
		}
	}
	if !foundBody {
		return nil, errors.New(docxDocumentPart + " has no body")
	}
	return body, nil
}

// readChildren consumes the direct children of w:body up to its end element.
func (b *docxBody) readChildren(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return nil
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				text, hasSection, err := readParagraph(dec)
				if err != nil {
					return err
				}
				b.paragraphs = append(b.paragraphs, text)
				if hasSection {
					b.sections++
				}
			case "tbl":
				rows, err := readTable(dec)
				if err != nil {
					return err
				}
				b.tables = append(b.tables, rows)
			case "sectPr":
				b.sections++
				if err := dec.Skip(); err != nil {
					return err
				}
			default:
				if err := dec.Skip(); err != nil {
					return err
				}
			}
		}
	}
}

// skippedRunContent holds subtrees whose text is not part of the visible paragraph.
var skippedRunContent = map[string]bool{
	"drawing":          true,
	"pict":             true,
	"object":           true,
	"AlternateContent": true,
	"del":              true,
	"instrText":        true,
}

// readParagraph consumes a w:p element and returns its text and whether its
// properties carry a section break.
func readParagraph(dec *xml.Decoder) (string, bool, error) {
	var sb strings.Builder
	hasSection := false
	depth := 1
	inText := false
	inProps := false

	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", false, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			if skippedRunContent[name] {
				if err := dec.Skip(); err != nil {
					return "", false, err
				}
				continue
			}
			depth++
			switch name {
			case "pPr":
				if depth == 2 {
					inProps = true
				}
			case "sectPr":
				if inProps && depth == 3 {
					hasSection = true
				}
			case "t":
				inText = true
			case "tab":
				if !inProps {
					sb.WriteByte('\t')
				}
			case "br", "cr":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			depth--
			switch t.Name.Local {
			case "t":
				inText = false
			case "pPr":
				if depth == 1 {
					inProps = false
				}
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), hasSection, nil
}

// readTable consumes a w:tbl element into one text per grid column. A cell spanning
// several columns repeats its text in each of them, and a vertical merge continuation
// repeats the text of the cell it continues. Nested tables are not descended into.
func readTable(dec *xml.Decoder) ([][]string, error) {
	var rows [][]string
	var above []string
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return rows, nil
		case xml.StartElement:
			if t.Name.Local != "tr" {
				if err := dec.Skip(); err != nil {
					return nil, err
				}
				continue
			}
			cells, err := readRow(dec)
			if err != nil {
				return nil, err
			}
			var row []string
			for _, c := range cells {
				col := len(row)
				text := c.text
				if c.mergeContinues && col < len(above) {
					text = above[col]
				}
				for k := 0; k < c.span; k++ {
					row = append(row, text)
				}
			}
			above = row
			rows = append(rows, row)
		}
	}
}

type docxCell struct {
	text           string
	span           int
	mergeContinues bool
}

func readRow(dec *xml.Decoder) ([]docxCell, error) {
	var cells []docxCell
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return cells, nil
		case xml.StartElement:
			if t.Name.Local != "tc" {
				if err := dec.Skip(); err != nil {
					return nil, err
				}
				continue
			}
			cell, err := readCell(dec)
			if err != nil {
				return nil, err
			}
			cells = append(cells, cell)
		}
	}
}

func readCell(dec *xml.Decoder) (docxCell, error) {
	cell := docxCell{span: 1}
	var paragraphs []string
	for {
		tok, err := dec.Token()
		if err != nil {
			return docxCell{}, err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			cell.text = strings.Join(paragraphs, "\n")
			return cell, nil
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				text, _, err := readParagraph(dec)
				if err != nil {
					return docxCell{}, err
				}
				paragraphs = append(paragraphs, text)
			case "tcPr":
				if err := readCellProperties(dec, &cell); err != nil {
					return docxCell{}, err
				}
			default:
				if err := dec.Skip(); err != nil {
					return docxCell{}, err
				}
			}
		}
	}
}

// readCellProperties picks gridSpan and vMerge out of w:tcPr. A vMerge without a
// val, or with val="continue", continues the merge started above.
func readCellProperties(dec *xml.Decoder, cell *docxCell) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return nil
		case xml.StartElement:
			val := attrValue(t, "val")
			switch t.Name.Local {
			case "gridSpan":
				if n, err := strconv.Atoi(val); err == nil && n > 1 {
					cell.span = n
				}
			case "vMerge":
				cell.mergeContinues = val == "" || val == "continue"
			}
			if err := dec.Skip(); err != nil {
				return err
			}
		}
	}
}

func attrValue(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// coreProperties mirrors docProps/core.xml. Field tags match on local names, so the
// dc, cp and dcterms prefixes all resolve.
type coreProperties struct {
	Title          string `xml:"title"`
	Subject        string `xml:"subject"`
	Creator        string `xml:"creator"`
	Keywords       string `xml:"keywords"`
	Description    string `xml:"description"`
	LastModifiedBy string `xml:"lastModifiedBy"`
	Revision       string `xml:"revision"`
	Created        string `xml:"created"`
	Modified       string `xml:"modified"`
	Category       string `xml:"category"`
}

func parseCoreProperties(data []byte) (Properties, error) {
	var core coreProperties
	if err := xml.Unmarshal(data, &core); err != nil {
		return Properties{}, fmt.Errorf("parse %s: %w", docxCorePart, err)
	}
	return Properties{
		Title:          core.Title,
		Author:         core.Creator,
		Created:        w3cdtf(core.Created),
		Modified:       w3cdtf(core.Modified),
		LastModifiedBy: core.LastModifiedBy,
		Revision:       revision(core.Revision),
		Category:       core.Category,
		Comments:       core.Description,
		Subject:        core.Subject,
		Keywords:       core.Keywords,
	}, nil
}

var w3cdtfLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006-01",
	"2006",
}

// w3cdtf normalizes a W3C date-time to UTC without offset; unparseable values are
// dropped.
func w3cdtf(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	for _, layout := range w3cdtfLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return isoFormat(t.UTC())
		}
	}
	return ""
}

// revision keeps positive integer revisions only.
func revision(value string) string {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}
