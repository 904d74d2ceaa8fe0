package mcp

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rendis/seqdiag/internal/document"
	"github.com/rendis/seqdiag/internal/logging"
)

// SeqdiagServerDeps holds the dependencies for creating a SeqdiagServer.
type SeqdiagServerDeps struct {
	Renderer *document.Renderer // nil builds a default renderer
	Logger   *slog.Logger
	Version  string
}

// SeqdiagServer wraps an MCP server with the diagram tool handlers.
type SeqdiagServer struct {
	renderer  *document.Renderer
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewSeqdiagServer creates a new SeqdiagServer with all 4 tools registered.
func NewSeqdiagServer(deps SeqdiagServerDeps) (*SeqdiagServer, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(logging.NewCorrelationHandler(
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))
	}

	renderer := deps.Renderer
	if renderer == nil {
		var err error
		renderer, err = document.NewRenderer(document.Options{Logger: logger})
		if err != nil {
			return nil, err
		}
	}

	version := deps.Version
	if version == "" {
		version = "dev"
	}

	s := &SeqdiagServer{
		renderer: renderer,
		logger:   logger,
	}

	mcpSrv := server.NewMCPServer(
		"seqdiag",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("seqdiag renders Mermaid sequence diagrams from declarative documents. Use seqdiag.schema to learn the document format, seqdiag.validate to check a document, seqdiag.render to get Mermaid text, and seqdiag.colors to list highlight colors."),
	)

	mcpSrv.AddTools(s.tools()...)
	s.mcpServer = mcpSrv
	return s, nil
}

// Serve starts the stdio transport and blocks until ctx is cancelled or stdin closes.
func (s *SeqdiagServer) Serve(ctx context.Context) error {
	s.logger.InfoContext(ctx, "mcp server listening on stdio")
	stdio := server.NewStdioServer(s.mcpServer)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// HTTPHandler returns a streamable HTTP transport over the same tools.
func (s *SeqdiagServer) HTTPHandler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcpServer)
}

// MCPServer returns the underlying MCPServer for testing or custom transports.
func (s *SeqdiagServer) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// tools returns the registered MCP tools as ServerTool entries.
func (s *SeqdiagServer) tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: renderTool(), Handler: s.withTool("seqdiag.render", s.handleRender)},
		{Tool: validateTool(), Handler: s.withTool("seqdiag.validate", s.handleValidate)},
		{Tool: colorsTool(), Handler: s.withTool("seqdiag.colors", s.handleColors)},
		{Tool: schemaTool(), Handler: s.withTool("seqdiag.schema", s.handleSchema)},
	}
}

// withTool tags the handler context with the tool name for log correlation.
func (s *SeqdiagServer) withTool(name string, h server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx = logging.WithTool(ctx, name)
		s.logger.DebugContext(ctx, "tool called")
		return h(ctx, req)
	}
}

// --- Tool definitions ---

func documentArgs() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithObject("document", mcp.Description("Diagram document object: {title, vars, elements}. See seqdiag.schema")),
		mcp.WithString("source", mcp.Description("Document as text, used when document is omitted")),
		mcp.WithString("source_format",
			mcp.Enum("json", "yaml", "toml", "hcl"),
			mcp.Description("Encoding of source (default: json)"),
		),
		mcp.WithString("query", mcp.Description("jq query selecting the document inside the input, e.g. .diagrams.login")),
	}
}

func renderTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Render a diagram document as Mermaid sequence diagram text"),
		mcp.WithObject("vars", mcp.Description("Overrides for the document vars")),
		mcp.WithString("format",
			mcp.Enum("mermaid", "markdown"),
			mcp.Description("Output wrapping (default: mermaid)"),
		),
	}, documentArgs()...)
	return mcp.NewTool("seqdiag.render", opts...)
}

func validateTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Validate a diagram document and list its errors and warnings"),
	}, documentArgs()...)
	return mcp.NewTool("seqdiag.validate", opts...)
}

func colorsTool() mcp.Tool {
	return mcp.NewTool("seqdiag.colors",
		mcp.WithDescription("List the named highlight colors usable in rect elements"),
	)
}

func schemaTool() mcp.Tool {
	return mcp.NewTool("seqdiag.schema",
		mcp.WithDescription("Return the JSON Schema of diagram documents"),
	)
}
