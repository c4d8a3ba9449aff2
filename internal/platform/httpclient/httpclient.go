package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	DefaultTimeout = 10 * time.Second
	UserAgent      = "health-dashboard/1"

	maxBodyBytes = 1 << 20
)

var ErrNilClient = errors.New("httpclient: nil client")

// Client es el cliente JSON que usan los adapters hacia servicios externos.
type Client struct {
	HTTP    *http.Client
	BaseURL string // vacío => solo URLs absolutas
}

func New(timeout time.Duration) *Client {
	return NewWithTransport(timeout, nil)
}

func NewWithBaseURL(baseURL string, timeout time.Duration) (*Client, error) {
	c := New(timeout)
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return c, nil
	}
	u, err := url.ParseRequestURI(baseURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("httpclient: invalid base url %q", baseURL)
	}
	c.BaseURL = strings.TrimRight(baseURL, "/")
	return c, nil
}

// NewWithTransport permite inyectar un RoundTripper (tests, proxies). nil => default.
func NewWithTransport(timeout time.Duration, tr http.RoundTripper) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{HTTP: &http.Client{Timeout: timeout, Transport: tr}}
}

// StatusError es una respuesta no-2xx. Body va truncado.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("httpclient: status %d", e.StatusCode)
	}
	return fmt.Sprintf("httpclient: status %d: %s", e.StatusCode, e.Body)
}

// IsStatus indica si err es un *StatusError con alguno de los códigos dados.
func IsStatus(err error, codes ...int) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	for _, c := range codes {
		if se.StatusCode == c {
			return true
		}
	}
	return false
}

// Request describe una llamada JSON. Path puede ser relativo a BaseURL o absoluto.
type Request struct {
	Method string
	Path   string
	Header map[string]string
	Body   any // nil => sin body
}

// DoJSON envía req y decodifica la respuesta 2xx en out (si out != nil y hay body).
func (c *Client) DoJSON(ctx context.Context, req Request, out any) error {
	if c == nil || c.HTTP == nil {
		return ErrNilClient
	}

	target, err := c.resolve(req.Path)
	if err != nil {
		return err
	}

	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("httpclient: encode body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	hreq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("httpclient: build request: %w", err)
	}
	hreq.Header.Set("Accept", "application/json")
	hreq.Header.Set("User-Agent", UserAgent)
	if req.Body != nil {
		hreq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.Header {
		if strings.TrimSpace(k) != "" {
			hreq.Header.Set(k, v)
		}
	}

	resp, err := c.HTTP.Do(hreq)
	if err != nil {
		return fmt.Errorf("httpclient: %s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Body: truncate(strings.TrimSpace(string(raw)), 512)}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("httpclient: decode body: %w", err)
	}
	return nil
}

func (c *Client) resolve(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "", errors.New("httpclient: empty path")
	}
	if u, err := url.Parse(p); err == nil && u.IsAbs() {
		return p, nil
	}
	if c.BaseURL == "" {
		return "", fmt.Errorf("httpclient: relative path %q without base url", p)
	}
	return c.BaseURL + "/" + strings.TrimLeft(p, "/"), nil
}

// truncate corta en n bytes como máximo sin partir una runa.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
