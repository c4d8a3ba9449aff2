package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogging_AccessLineWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	h := chimw.RequestID(Logging(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/clients", nil))

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "request", line["message"])
	assert.Equal(t, "POST", line["method"])
	assert.Equal(t, "/api/clients", line["path"])
	assert.EqualValues(t, http.StatusCreated, line["status"])
	assert.NotEmpty(t, line["request_id"])
	assert.Equal(t, line["request_id"], rec.Header().Get(chimw.RequestIDHeader))
}

func TestRecover_Returns500(t *testing.T) {
	var buf bytes.Buffer
	h := Logging(zerolog.New(&buf))(Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
	assert.Contains(t, buf.String(), "panic recovered")
}
