// Package mcpTools exposes the document readers as Model Context Protocol tools, so agents can
// read and classify aviation documents without going through the ingestion pipeline.
package mcpTools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/akolanti/AviationCompliance/internal/domain/commonModels"
	"github.com/akolanti/AviationCompliance/internal/reader"
	"github.com/akolanti/AviationCompliance/pkg/logger_i"
	"github.com/dustin/go-humanize"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	ReadDocumentTool     = "read_document"
	ClassifyDocumentTool = "classify_document"
	SupportedFormatsTool = "supported_formats"
)

// DocumentReader is the part of reader.Registry the tools use.
type DocumentReader interface {
	Read(ctx context.Context, path string) (reader.Result, error)
	Formats() []string
	Extensions() []string
}

type Tools struct {
	registry DocumentReader
	log      *logger_i.Logger
}

func New(registry DocumentReader, logger *logger_i.Logger) *Tools {
	if logger == nil {
		logger = logger_i.NewLogger("mcpTools")
	}
	return &Tools{registry: registry, log: logger}
}

// NewServer builds an MCP server with every document tool registered.
func NewServer(registry DocumentReader, version string, logger *logger_i.Logger) *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{Name: "aviation-compliance", Version: version}, nil)
	New(registry, logger).Register(srv)
	return srv
}

// HTTPHandler serves srv over the streamable HTTP transport.
func HTTPHandler(srv *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return srv }, nil)
}

func (t *Tools) Register(srv *mcp.Server) {
	srv.AddTool(&mcp.Tool{
		Name:        ReadDocumentTool,
		Description: "Read a document file (docx, pdf, xlsx, html, txt, md, odt, rtf) and return its text, metadata and document type.",
		InputSchema: inputSchema(map[string]any{
			"path": map[string]any{"type": "string", "description": "Path of the file to read"},
		}, []string{"path"}),
	}, t.handle(t.readDocument))

	srv.AddTool(&mcp.Tool{
		Name:        ClassifyDocumentTool,
		Description: "Classify a document as regulatory, accident_report, manual or unknown. Pass a path, or text with an optional filename.",
		InputSchema: inputSchema(map[string]any{
			"path":     map[string]any{"type": "string", "description": "Path of the file to classify"},
			"text":     map[string]any{"type": "string", "description": "Document text, used when no path is given"},
			"filename": map[string]any{"type": "string", "description": "Filename hint for text input"},
		}, nil),
	}, t.handle(t.classifyDocument))

	srv.AddTool(&mcp.Tool{
		Name:        SupportedFormatsTool,
		Description: "List the enabled document formats, their file extensions and the document types.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}, t.handle(t.supportedFormats))
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

type toolArgs struct {
	Path     string `json:"path"`
	Text     string `json:"text"`
	Filename string `json:"filename"`
}

type toolFunc func(ctx context.Context, args toolArgs) (any, error)

// handle decodes arguments and turns results into JSON text content. Failures are reported
// as tool errors so the calling model sees them, not as protocol errors.
func (t *Tools) handle(fn toolFunc) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args toolArgs
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
				return toolError(fmt.Errorf("invalid arguments: %w", err)), nil
			}
		}

		resp, err := fn(ctx, args)
		if err != nil {
			t.log.Warn("tool call failed", "tool", req.Params.Name, "err", err)
			return toolError(err), nil
		}
		data, err := json.Marshal(resp)
		if err != nil {
			return toolError(fmt.Errorf("marshal: %w", err)), nil
		}
		return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: string(data)}}}, nil
	}
}

func toolError(err error) *mcp.CallToolResult {
	var res mcp.CallToolResult
	res.SetError(err)
	return &res
}

type readResponse struct {
	Text         string                `json:"text"`
	Metadata     commonModels.Metadata `json:"metadata"`
	DocumentType string                `json:"document_type"`
	Size         string                `json:"size"`
	Warnings     []string              `json:"warnings,omitempty"`
}

func (t *Tools) readDocument(ctx context.Context, args toolArgs) (any, error) {
	if args.Path == "" {
		return nil, errors.New("path is required")
	}
	res, err := t.registry.Read(ctx, args.Path)
	if err != nil {
		return nil, err
	}
	out := readResponse{
		Text:         res.Payload.Text,
		Metadata:     res.Payload.Metadata,
		DocumentType: string(res.Payload.Metadata.DocumentType),
		Size:         humanize.IBytes(uint64(res.Payload.Metadata.FileSize)),
	}
	for _, w := range res.Warnings {
		out.Warnings = append(out.Warnings, w.String())
	}
	return out, nil
}

func (t *Tools) classifyDocument(ctx context.Context, args toolArgs) (any, error) {
	switch {
	case args.Path != "":
		res, err := t.registry.Read(ctx, args.Path)
		if err != nil {
			return nil, err
		}
		return map[string]any{"document_type": res.Payload.Metadata.DocumentType}, nil
	case args.Text != "" || args.Filename != "":
		docType := reader.ClassifyDocumentType(strings.Split(args.Text, "\n"), args.Filename)
		return map[string]any{"document_type": docType}, nil
	}
	return nil, errors.New("path or text is required")
}

func (t *Tools) supportedFormats(_ context.Context, _ toolArgs) (any, error) {
	types := commonModels.DocumentTypes()
	names := make([]string, len(types))
	for i, dt := range types {
		names[i] = string(dt)
	}
	return map[string]any{
		"formats":        t.registry.Formats(),
		"extensions":     t.registry.Extensions(),
		"document_types": names,
	}, nil
}
