package panel

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rendis/seqdiag/pkg/schema"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeSchemaError maps a structured error to a status code: malformed
// input is 400, a well-formed but unusable document is 422.
func writeSchemaError(w http.ResponseWriter, err error) {
	var se *schema.Error
	if !errors.As(err, &se) {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	status := http.StatusUnprocessableEntity
	if se.Code == schema.ErrCodeDecode {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]any{
		"error":   se.Message,
		"code":    se.Code,
		"path":    se.Path,
		"details": se.Details,
	})
}
