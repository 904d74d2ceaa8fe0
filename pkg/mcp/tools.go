package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rendis/seqdiag/internal/diagram"
	"github.com/rendis/seqdiag/internal/document"
	"github.com/rendis/seqdiag/internal/validation"
	"github.com/rendis/seqdiag/pkg/schema"
)

// handleRender renders a document to Mermaid text.
func (s *SeqdiagServer) handleRender(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	value, errResult := documentValue(req)
	if errResult != nil {
		return errResult, nil
	}

	res, err := s.renderer.Render(ctx, document.Request{
		Value:  value,
		Query:  req.GetString("query", ""),
		Vars:   mcp.ParseStringMap(req, "vars", nil),
		Format: document.OutputFormat(req.GetString("format", "")),
		Source: "mcp",
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("render failed: %v", err)), nil
	}
	return marshalResult(res)
}

// validateResponse is the seqdiag.validate payload.
type validateResponse struct {
	Valid    bool                     `json:"valid"`
	Errors   []schema.ValidationIssue `json:"errors"`
	Warnings []schema.ValidationIssue `json:"warnings"`
}

// handleValidate reports every issue of a document without rendering it.
func (s *SeqdiagServer) handleValidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	value, errResult := documentValue(req)
	if errResult != nil {
		return errResult, nil
	}

	result, err := s.renderer.Validate(ctx, document.Request{
		Value:  value,
		Query:  req.GetString("query", ""),
		Source: "mcp",
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("validate failed: %v", err)), nil
	}

	resp := validateResponse{
		Valid:    result.Valid(),
		Errors:   append([]schema.ValidationIssue{}, result.Errors...),
		Warnings: append([]schema.ValidationIssue{}, result.Warnings...),
	}
	return marshalResult(resp)
}

// colorEntry describes one named highlight color.
type colorEntry struct {
	Name string `json:"name"`
	RGBA string `json:"rgba"`
}

func (s *SeqdiagServer) handleColors(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names := diagram.ColorNames()
	entries := make([]colorEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, colorEntry{Name: name, RGBA: diagram.ColorOf(name).String()})
	}
	return marshalResult(entries)
}

func (s *SeqdiagServer) handleSchema(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(validation.DocumentSchemaJSON), nil
}

// documentValue reads the document from the "document" object, or decodes
// the "source" text. A non-nil result is the error to return to the caller.
func documentValue(req mcp.CallToolRequest) (any, *mcp.CallToolResult) {
	if doc := mcp.ParseStringMap(req, "document", nil); doc != nil {
		return doc, nil
	}

	source := req.GetString("source", "")
	if source == "" {
		return nil, mcp.NewToolResultError("one of document or source is required")
	}

	format, err := document.ParseFormat(req.GetString("source_format", "json"))
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	value, err := document.Decode([]byte(source), format)
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	return value, nil
}

// marshalResult converts a value to a JSON text tool result.
func marshalResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultJSON(json.RawMessage(data))
}
