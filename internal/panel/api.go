package panel

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rendis/seqdiag/internal/diagram"
	"github.com/rendis/seqdiag/internal/document"
	"github.com/rendis/seqdiag/internal/validation"
	"github.com/rendis/seqdiag/pkg/schema"
)

// apiRequest is the body of /api/render and /api/validate. Either Document
// or Source must be set.
type apiRequest struct {
	Document     map[string]any `json:"document"`
	Source       string         `json:"source"`
	SourceFormat string         `json:"source_format"`
	Query        string         `json:"query"`
	Vars         map[string]any `json:"vars"`
	Format       string         `json:"format"`
}

// decodeRequest reads the body and resolves the document value.
func decodeRequest(r *http.Request) (*apiRequest, any, error) {
	var body apiRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, nil, fmt.Errorf("invalid JSON: %w", err)
	}

	if body.Document != nil {
		return &body, body.Document, nil
	}
	if body.Source == "" {
		return nil, nil, fmt.Errorf("one of document or source is required")
	}

	format := document.FormatJSON
	if body.SourceFormat != "" {
		f, err := document.ParseFormat(body.SourceFormat)
		if err != nil {
			return nil, nil, err
		}
		format = f
	}
	value, err := document.Decode([]byte(body.Source), format)
	if err != nil {
		return nil, nil, err
	}
	return &body, value, nil
}

// handleRender renders a document and returns the document.Result.
func (s *PanelServer) handleRender(w http.ResponseWriter, r *http.Request) {
	body, value, err := decodeRequest(r)
	if err != nil {
		s.writeRequestError(w, err)
		return
	}

	res, err := s.deps.Renderer.Render(r.Context(), document.Request{
		Value:  value,
		Query:  body.Query,
		Vars:   body.Vars,
		Format: document.OutputFormat(body.Format),
		Source: "http",
	})
	if err != nil {
		writeSchemaError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleValidate returns the validation result; an invalid document is still
// a 200 response.
func (s *PanelServer) handleValidate(w http.ResponseWriter, r *http.Request) {
	body, value, err := decodeRequest(r)
	if err != nil {
		s.writeRequestError(w, err)
		return
	}

	result, err := s.deps.Renderer.Validate(r.Context(), document.Request{
		Value:  value,
		Query:  body.Query,
		Source: "http",
	})
	if err != nil {
		writeSchemaError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":    result.Valid(),
		"errors":   result.Errors,
		"warnings": result.Warnings,
	})
}

func (s *PanelServer) handleColors(w http.ResponseWriter, r *http.Request) {
	colors := make(map[string]string)
	for _, name := range diagram.ColorNames() {
		colors[name] = diagram.ColorOf(name).String()
	}
	writeJSON(w, http.StatusOK, colors)
}

func (s *PanelServer) handleSchema(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/schema+json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(validation.DocumentSchemaJSON))
}

// writeRequestError reports a body that could not be turned into a document.
func (s *PanelServer) writeRequestError(w http.ResponseWriter, err error) {
	var se *schema.Error
	if errors.As(err, &se) {
		writeSchemaError(w, err)
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}
