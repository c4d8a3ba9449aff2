package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoJSON_RelativePathAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/ping", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "yes", r.Header.Get("X-Extra"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c, err := NewWithBaseURL(srv.URL+"/", time.Second)
	require.NoError(t, err)

	var out struct {
		OK bool `json:"ok"`
	}
	err = c.DoJSON(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "v1/ping",
		Header: map[string]string{"X-Extra": "yes"},
		Body:   map[string]string{"a": "b"},
	}, &out)
	require.NoError(t, err)
	assert.True(t, out.OK)
}

func TestDoJSON_DefaultsToGetWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Empty(t, r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var out map[string]any
	require.NoError(t, New(time.Second).DoJSON(context.Background(), Request{Path: srv.URL}, &out))
	assert.Nil(t, out)
}

func TestDoJSON_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	err := New(0).DoJSON(context.Background(), Request{Path: srv.URL}, nil)
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusUnauthorized, http.StatusForbidden))
	assert.False(t, IsStatus(err, http.StatusNotFound))
	assert.True(t, IsStatus(fmt.Errorf("wrapped: %w", err), http.StatusForbidden))

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "nope", se.Body)
}

func TestDoJSON_LongErrorBodyIsTruncated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(strings.Repeat("x", 2000)))
	}))
	defer srv.Close()

	err := New(time.Second).DoJSON(context.Background(), Request{Path: srv.URL}, nil)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Len(t, se.Body, 512+len("..."))
}

func TestTruncate_KeepsRunesWhole(t *testing.T) {
	s := strings.Repeat("a", 511) + "ñandú"
	got := truncate(s, 512)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", 511)+"...", got)

	assert.Equal(t, "corto", truncate("corto", 512))
	assert.Equal(t, "...", truncate("ñandú", 1))
}

func TestDoJSON_PathErrors(t *testing.T) {
	c := New(time.Second)
	assert.Error(t, c.DoJSON(context.Background(), Request{Path: "/x"}, nil))
	assert.Error(t, c.DoJSON(context.Background(), Request{Path: "  "}, nil))

	var nilClient *Client
	assert.ErrorIs(t, nilClient.DoJSON(context.Background(), Request{Path: "https://a"}, nil), ErrNilClient)
}

func TestNewWithBaseURL_Invalid(t *testing.T) {
	_, err := NewWithBaseURL("not a url", time.Second)
	assert.Error(t, err)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestNewWithTransport_UsesInjectedTransport(t *testing.T) {
	var seen string
	c := NewWithTransport(0, roundTripFunc(func(r *http.Request) (*http.Response, error) {
		seen = r.URL.String()
		return &http.Response{
			StatusCode: http.StatusNoContent,
			Body:       http.NoBody,
			Header:     http.Header{},
			Request:    r,
		}, nil
	}))

	err := c.DoJSON(context.Background(), Request{Method: http.MethodDelete, Path: "https://api.example/v1/x"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example/v1/x", seen)
	assert.Equal(t, DefaultTimeout, c.HTTP.Timeout)
}
