package document

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rendis/seqdiag/internal/diagram"
	"github.com/rendis/seqdiag/internal/expressions"
	"github.com/rendis/seqdiag/internal/logging"
	"github.com/rendis/seqdiag/internal/validation"
	"github.com/rendis/seqdiag/pkg/schema"
)

// OutputFormat selects how rendered text is wrapped.
type OutputFormat string

const (
	OutputMermaid  OutputFormat = "mermaid"
	OutputMarkdown OutputFormat = "markdown"
)

// ParseOutputFormat resolves an output format name; "" means mermaid.
func ParseOutputFormat(name string) (OutputFormat, error) {
	switch OutputFormat(name) {
	case "", OutputMermaid:
		return OutputMermaid, nil
	case OutputMarkdown:
		return OutputMarkdown, nil
	default:
		return "", schema.NewErrorf(schema.ErrCodeValidation,
			"unknown output format %q; supported: mermaid, markdown", name)
	}
}

// Options configures a Renderer.
type Options struct {
	// Engine names the ${{ }} expression engine: "expr" (default) or "jq".
	Engine string
	Logger *slog.Logger
}

// Renderer runs the document pipeline: select, validate, compile, render.
// It is safe for concurrent use.
type Renderer struct {
	validator *validation.DocumentValidator
	compiler  *Compiler
	jq        *expressions.GoJQEngine
	logger    *slog.Logger
}

// NewRenderer creates a Renderer.
func NewRenderer(opts Options) (*Renderer, error) {
	engine, err := expressions.New(opts.Engine)
	if err != nil {
		return nil, err
	}
	if engine.Name() == "cel" {
		return nil, schema.NewError(schema.ErrCodeValidation,
			"cel is reserved for when guards; use expr or jq for interpolation")
	}

	v, err := validation.NewDocumentValidator()
	if err != nil {
		return nil, err
	}
	c, err := NewCompiler(expressions.NewInterpolator(engine))
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Renderer{
		validator: v,
		compiler:  c,
		jq:        expressions.NewGoJQEngine(),
		logger:    logger,
	}, nil
}

// Request is one render or validate call.
type Request struct {
	Value  any            // decoded document value (see Decode)
	Query  string         // optional jq selection applied to Value first
	Vars   map[string]any // overrides for the document's vars
	Format OutputFormat
	Source string // file name or tool name, for logging only
}

// Result is a rendered document.
type Result struct {
	RenderID string                   `json:"render_id"`
	Title    string                   `json:"title,omitempty"`
	Mermaid  string                   `json:"mermaid"`
	Output   string                   `json:"output"`
	Warnings []schema.ValidationIssue `json:"warnings,omitempty"`
}

// Render validates, compiles and renders the requested document.
func (r *Renderer) Render(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	renderID := uuid.NewString()
	ctx = logging.WithRenderID(ctx, renderID)
	if req.Source != "" {
		ctx = logging.WithDocument(ctx, req.Source)
	}

	format, err := ParseOutputFormat(string(req.Format))
	if err != nil {
		return nil, err
	}

	value, err := Select(ctx, r.jq, req.Value, req.Query)
	if err != nil {
		r.logger.WarnContext(ctx, "document selection failed", "error", err)
		return nil, err
	}

	result := r.validator.Validate(value)
	if !result.Valid() {
		r.logger.WarnContext(ctx, "document rejected", "errors", len(result.Errors))
		return nil, result.ToError()
	}
	for _, w := range result.Warnings {
		r.logger.WarnContext(ctx, w.Message, "path", w.Path)
	}

	doc, err := schema.BindDocument(value)
	if err != nil {
		return nil, err
	}

	tree, err := r.compiler.Compile(ctx, doc, req.Vars)
	if err != nil {
		r.logger.WarnContext(ctx, "document compilation failed", "error", err)
		return nil, err
	}

	mermaid := diagram.RenderMermaid(tree)
	output := mermaid
	if format == OutputMarkdown {
		output = diagram.RenderMarkdown(doc.Title, mermaid)
	}

	r.logger.InfoContext(ctx, "document rendered",
		"elements", len(doc.Elements),
		"lines", countLines(mermaid),
		"duration", time.Since(start))

	return &Result{
		RenderID: renderID,
		Title:    doc.Title,
		Mermaid:  mermaid,
		Output:   output,
		Warnings: result.Warnings,
	}, nil
}

// Validate runs selection and the validation pipeline without rendering.
func (r *Renderer) Validate(ctx context.Context, req Request) (*schema.ValidationResult, error) {
	if req.Source != "" {
		ctx = logging.WithDocument(ctx, req.Source)
	}
	value, err := Select(ctx, r.jq, req.Value, req.Query)
	if err != nil {
		return nil, err
	}
	result := r.validator.Validate(value)
	r.logger.DebugContext(ctx, "document validated", "errors", len(result.Errors), "warnings", len(result.Warnings))
	return result, nil
}

func countLines(s string) int {
	return strings.Count(s, "\n") + 1
}
