package reader

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/akolanti/AviationCompliance/internal/config"
	"github.com/akolanti/AviationCompliance/internal/domain/commonModels"
	"github.com/akolanti/AviationCompliance/pkg/logger_i"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type HtmlReader struct {
	baseReader
}

func NewHtmlReader(settings config.ReaderSettings, logger *logger_i.Logger) *HtmlReader {
	return &HtmlReader{
		baseReader: newBaseReader(string(commonModels.HTML), []string{"html", "htm"}, []string{"text/html"}, settings, logger),
	}
}

func (h *HtmlReader) Read(ctx context.Context, path string) (Result, error) {
	return h.read(ctx, path, parseHtml)
}

type htmlDocument struct {
	paragraphs []string
	tables     [][][]string
	sections   int
	title      string
	meta       map[string]string
}

func parseHtml(_ context.Context, path string) (*parsedDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open html: %w", err)
	}
	defer f.Close()

	root, err := html.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc := &htmlDocument{meta: map[string]string{}}
	doc.walk(root)

	props := Properties{
		Title:    doc.title,
		Author:   doc.meta["author"],
		Subject:  doc.meta["subject"],
		Keywords: doc.meta["keywords"],
		Comments: doc.meta["description"],
		Category: doc.meta["category"],
		Created:  w3cdtf(doc.meta["dcterms.created"]),
		Modified: w3cdtf(doc.meta["dcterms.modified"]),
	}

	return &parsedDocument{
		paragraphs: doc.paragraphs,
		tables:     doc.tables,
		structure: Structure{
			Paragraphs:     doc.paragraphs,
			ParagraphCount: len(doc.paragraphs),
			TableCount:     len(doc.tables),
			SectionCount:   doc.sections,
		},
		properties: func() (Properties, error) {
			return props, nil
		},
	}, nil
}

// walk collects block level text. Tables are pulled out whole so their cells do not
// also show up as paragraphs.
func (d *htmlDocument) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Noscript, atom.Template:
			return
		case atom.Title:
			if d.title == "" {
				d.title = collectText(n)
			}
			return
		case atom.Meta:
			d.readMeta(n)
			return
		case atom.Table:
			d.tables = append(d.tables, tableRows(n))
			return
		case atom.Section, atom.Article:
			d.sections++
		case atom.P, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
			atom.Li, atom.Blockquote, atom.Pre, atom.Dt, atom.Dd, atom.Figcaption:
			d.paragraphs = append(d.paragraphs, collectText(n))
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.walk(c)
	}
}

func (d *htmlDocument) readMeta(n *html.Node) {
	var name, content string
	for _, a := range n.Attr {
		switch strings.ToLower(a.Key) {
		case "name":
			name = strings.ToLower(strings.TrimSpace(a.Val))
		case "content":
			content = strings.TrimSpace(a.Val)
		}
	}
	if name != "" {
		d.meta[name] = content
	}
}

// tableRows returns the rows of a table, skipping rows of nested tables.
func tableRows(table *html.Node) [][]string {
	var rows [][]string
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Table:
				continue
			case atom.Tr:
				var cells []string
				for cell := c.FirstChild; cell != nil; cell = cell.NextSibling {
					if cell.Type == html.ElementNode && (cell.DataAtom == atom.Td || cell.DataAtom == atom.Th) {
						cells = append(cells, collectText(cell))
					}
				}
				rows = append(rows, cells)
			default:
				visit(c)
			}
		}
	}
	visit(table)
	return rows
}

// collectText joins the visible text nodes under n with single spaces.
func collectText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if text := strings.Join(strings.Fields(n.Data), " "); text != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(text)
			}
		}
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript:
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
