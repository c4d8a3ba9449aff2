// Package respond agrupa los helpers de respuesta JSON de la API.
package respond

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/hlog"
)

// ErrorBody es el cuerpo de todos los errores 4xx/5xx de la API.
type ErrorBody struct {
	Error         string   `json:"error"`
	ValidStatuses []string `json:"validStatuses,omitempty"`
}

// ValidationError es un error de validación con mensaje apto para el cliente.
type ValidationError struct {
	Message string
	Allowed []string
}

func (e *ValidationError) Error() string { return e.Message }

// Invalid construye un *ValidationError.
func Invalid(msg string) error {
	return &ValidationError{Message: msg}
}

// AsValidation devuelve el *ValidationError envuelto en err, si existe.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorBody{Error: msg})
}

// Validation responde 400 con el mensaje (y el set permitido, si lo hay).
func Validation(w http.ResponseWriter, ve *ValidationError) {
	JSON(w, http.StatusBadRequest, ErrorBody{Error: ve.Message, ValidStatuses: ve.Allowed})
}

func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "Unauthorized")
}

// Internal loguea el error con el request id y responde un 500 opaco.
func Internal(w http.ResponseWriter, r *http.Request, err error, msg string) {
	hlog.FromRequest(r).Error().Err(err).Str("path", r.URL.Path).Msg(msg)
	Error(w, http.StatusInternalServerError, "Internal server error")
}

// DecodeJSON decodifica el body. Body vacío => v queda en su zero value.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return Invalid("invalid json")
	}
	return nil
}
