package panel

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rendis/seqdiag/internal/diagram"
	"github.com/rendis/seqdiag/internal/document"
)

//go:embed templates
var content embed.FS

// PanelDeps holds the dependencies for the panel server.
type PanelDeps struct {
	Renderer *document.Renderer
	MCP      http.Handler // optional; mounted at /mcp
	Logger   *slog.Logger
	Version  string
}

// PanelServer serves the live preview page and the JSON render API.
type PanelServer struct {
	deps PanelDeps
	page *template.Template
}

// NewPanelServer creates a new PanelServer with the parsed preview page.
func NewPanelServer(deps PanelDeps) *PanelServer {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	page := template.Must(template.ParseFS(content, "templates/index.html"))

	return &PanelServer{deps: deps, page: page}
}

// Handler returns the HTTP handler for the panel routes.
func (s *PanelServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", s.handleIndex)

	r.Route("/api", func(r chi.Router) {
		r.Post("/render", s.handleRender)
		r.Post("/validate", s.handleValidate)
		r.Get("/colors", s.handleColors)
		r.Get("/schema", s.handleSchema)
	})

	if s.deps.MCP != nil {
		r.Mount("/mcp", s.deps.MCP)
	}
	return r
}

// indexData feeds templates/index.html.
type indexData struct {
	Version string
	Colors  []string
	Sample  string
}

const sampleDocument = `title: Login
vars:
  user: alice
elements:
  - type: autonumber
  - type: arrow
    from: "${{ vars.user }}"
    to: api
    message: POST /login
    activate: true
  - type: alt
    condition: valid
    body:
      - type: arrow
        from: api
        to: "${{ vars.user }}"
        message: 200 OK
        stroke: dotted
        deactivate: true
      - type: else
        condition: invalid
        body:
          - type: arrow
            from: api
            to: "${{ vars.user }}"
            message: 401 Unauthorized
            stroke: dotted
            deactivate: true
`

func (s *PanelServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := indexData{Version: s.deps.Version, Colors: diagram.ColorNames(), Sample: sampleDocument}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, data); err != nil {
		s.deps.Logger.ErrorContext(r.Context(), "template render error", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// logRequests logs one line per request at debug level.
func (s *PanelServer) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.deps.Logger.DebugContext(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start))
	})
}
