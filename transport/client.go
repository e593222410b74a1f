package transport

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

	"go.uber.org/zap"

	"github.com/kingsrook/qqq-client/logger"
)

const contentTypeForm = "application/x-www-form-urlencoded"
const contentTypeJSON = "application/json"

// Client talks to a qqq backend over HTTP. It never retries.
type Client struct {
	baseURL *url.URL
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, errors.New("please define the base url with a scheme, e.g. `http://localhost:8000`")
	}
	parsedURL.Path = strings.TrimRight(parsedURL.Path, "/")
	return &Client{
		baseURL: parsedURL,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// NewClientWithHTTP uses hc as is, for callers that need their own round tripper.
func NewClientWithHTTP(baseURL string, hc *http.Client) (*Client, error) {
	c, err := NewClient(baseURL, 0)
	if err != nil {
		return nil, err
	}
	c.client = hc
	return c, nil
}

func (c *Client) url(query url.Values, segments ...string) string {
	u := *c.baseURL
	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(s))
	}
	u.Path = c.baseURL.Path + "/" + strings.Join(segments, "/")
	u.RawPath = c.baseURL.EscapedPath() + "/" + strings.Join(escaped, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

type response struct {
	status int
	body   []byte
}

func (c *Client) do(ctx context.Context, method string, target string, contentType string, body io.Reader) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, &TransportError{Method: method, Path: target, Err: err}
	}
	req.Header.Set("Accept", contentTypeJSON)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Method: method, Path: target, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, Path: target, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response body failed: %w", err)}
	}
	logger.Debug("backend response", zap.String("method", method), zap.String("url", target), zap.Int("status", resp.StatusCode), zap.Duration("latency", time.Since(start)))
	return &response{status: resp.StatusCode, body: raw}, nil
}

func (r *response) ok() bool {
	return r.status >= 200 && r.status < 300
}

// errorMessage returns the body's error key, or the body itself when it is short text.
func (r *response) errorMessage() string {
	var payload map[string]any
	if err := json.Unmarshal(r.body, &payload); err == nil {
		if msg, ok := payload["error"].(string); ok {
			return msg
		}
	}
	text := strings.TrimSpace(string(r.body))
	if len(text) > 200 {
		text = text[:200]
	}
	if text == "" {
		return http.StatusText(r.status)
	}
	return text
}

// payload decodes a process response. A JSON object is returned whatever the status, so
// application errors reach the classifier; anything else fails.
func (c *Client) payload(method string, target string, resp *response) (map[string]any, error) {
	var payload map[string]any
	if err := json.Unmarshal(resp.body, &payload); err != nil || payload == nil {
		if resp.ok() {
			if err == nil {
				err = errors.New("response body is not a json object")
			}
			return nil, &TransportError{Method: method, Path: target, StatusCode: resp.status, Message: "decoding json response failed", Err: err}
		}
		return nil, &TransportError{Method: method, Path: target, StatusCode: resp.status, Message: resp.errorMessage()}
	}
	return payload, nil
}

// decode fills out from a data or metadata response; every non-2xx status fails.
func (c *Client) decode(method string, target string, resp *response, out any) error {
	if !resp.ok() {
		return &TransportError{Method: method, Path: target, StatusCode: resp.status, Message: resp.errorMessage()}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return &TransportError{Method: method, Path: target, StatusCode: resp.status, Message: "decoding json response failed", Err: err}
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, out any, query url.Values, segments ...string) error {
	target := c.url(query, segments...)
	resp, err := c.do(ctx, http.MethodGet, target, "", nil)
	if err != nil {
		return err
	}
	return c.decode(http.MethodGet, target, resp, out)
}

func (c *Client) sendForm(ctx context.Context, method string, out any, values map[string]any, segments ...string) error {
	form, err := encodeForm(values)
	if err != nil {
		return err
	}
	target := c.url(nil, segments...)
	resp, err := c.do(ctx, method, target, contentTypeForm, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return err
	}
	return c.decode(method, target, resp, out)
}
