package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Client translates domain operations into REST calls against the backend
// and normalizes every failure into *Error. The bearer credential is held
// by the client instance with an explicit Attach/Detach lifecycle; there
// is no ambient global token.
//
// No retries happen at this layer. Retry policy, if any, belongs to the
// caller.
type Client struct {
	baseURL string
	httpc   *http.Client
	log     *logrus.Logger

	mu     sync.RWMutex
	bearer string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpc:   &http.Client{Timeout: 30 * time.Second},
		log:     logrus.StandardLogger(),
	}
}

// Attach sets the bearer credential injected into every outgoing call.
func (c *Client) Attach(token string) {
	c.mu.Lock()
	c.bearer = strings.TrimSpace(token)
	c.mu.Unlock()
}

// Detach clears the bearer credential.
func (c *Client) Detach() {
	c.mu.Lock()
	c.bearer = ""
	c.mu.Unlock()
}

func (c *Client) Bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bearer
}

// serverMessage is the error envelope the backend uses on every failure.
type serverMessage struct {
	Msg string `json:"msg"`
}

// do issues one request and decodes a JSON response into out (when out is
// non-nil). Failures come back as *Error.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return &Error{Kind: ErrNetwork, Message: err.Error()}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if b := c.Bearer(); b != "" {
		req.Header.Set("Authorization", "Bearer "+b)
	}

	reqID := uuid.NewString()
	c.log.WithFields(logrus.Fields{
		"request_id": reqID,
		"method":     method,
		"path":       path,
	}).Debug("api: request")

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.log.WithField("request_id", reqID).WithError(err).Debug("api: transport failure")
		return &Error{Kind: ErrNetwork, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg := serverMessage{}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&msg)
		if strings.TrimSpace(msg.Msg) == "" {
			msg.Msg = http.StatusText(resp.StatusCode)
		}
		c.log.WithFields(logrus.Fields{
			"request_id": reqID,
			"status":     resp.StatusCode,
		}).Debug("api: error response")
		return &Error{Kind: kindForStatus(resp.StatusCode), Message: msg.Msg, Status: resp.StatusCode}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &Error{Kind: ErrServer, Message: "malformed response: " + err.Error(), Status: resp.StatusCode}
		}
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, "", out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	buf := new(bytes.Buffer)
	if body != nil {
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return &Error{Kind: ErrNetwork, Message: err.Error()}
		}
	}
	return c.do(ctx, http.MethodPost, path, nil, buf, "application/json", out)
}

func (c *Client) putJSON(ctx context.Context, path string, body, out any) error {
	buf := new(bytes.Buffer)
	if body != nil {
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return &Error{Kind: ErrNetwork, Message: err.Error()}
		}
	}
	return c.do(ctx, http.MethodPut, path, nil, buf, "application/json", out)
}

func (c *Client) deleteCall(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, "", nil)
}

// newRawRequest builds a GET request with the bearer attached, for calls
// whose response body is not JSON (document downloads).
func (c *Client) newRawRequest(ctx context.Context, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, &Error{Kind: ErrNetwork, Message: err.Error()}
	}
	if b := c.Bearer(); b != "" {
		req.Header.Set("Authorization", "Bearer "+b)
	}
	return req, nil
}

// responseError normalizes a non-2xx response whose body has already been
// left unread by the caller.
func responseError(resp *http.Response) *Error {
	msg := serverMessage{}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&msg)
	if strings.TrimSpace(msg.Msg) == "" {
		msg.Msg = http.StatusText(resp.StatusCode)
	}
	return &Error{Kind: kindForStatus(resp.StatusCode), Message: msg.Msg, Status: resp.StatusCode}
}
