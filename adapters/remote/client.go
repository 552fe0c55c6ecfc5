package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"goanalytics/internal"
)

// Client talks to the remote analysis service. One Client serves as the job
// client, the method catalog and the dataset catalog.
type Client struct {
	config ClientConfig
	http   *http.Client
	log    *internal.Logger
}

// NewClient creates a client for the configured service
func NewClient(config ClientConfig, logger *internal.Logger) *Client {
	config = config.withDefaults()
	if logger == nil {
		logger = internal.NewDefaultLogger()
	}
	return &Client{
		config: config,
		http:   config.HTTPClient,
		log:    logger.With("JobClient"),
	}
}

// BaseURL returns the service root without a trailing slash
func (c *Client) BaseURL() string {
	return strings.TrimRight(c.config.BaseURL, "/")
}

func (c *Client) endpoint(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return c.BaseURL() + "/analytics/" + strings.Join(escaped, "/")
}

// buildRequest creates an HTTP request with authentication
func (c *Client) buildRequest(ctx context.Context, method, endpoint string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}
	return req, nil
}

// do sends the request and returns the body of a 2xx response. Non-2xx
// responses come back as *statusError.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &statusError{status: resp.StatusCode, message: errorMessage(body, resp.Status)}
	}
	return body, nil
}

type statusError struct {
	status  int
	message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("analysis service returned %d: %s", e.status, e.message)
}

// errorMessage extracts the human-readable message from an error body.
// FastAPI style {"detail": ...} wins over {"message"} and {"error"}.
func errorMessage(body []byte, fallback string) string {
	if gjson.ValidBytes(body) {
		for _, path := range []string{"detail", "message", "error", "error.message"} {
			r := gjson.GetBytes(body, path)
			if r.Type == gjson.String && r.String() != "" {
				return r.String()
			}
			if r.IsArray() {
				// Validation errors arrive as a list of {msg: ...}
				msgs := r.Get("#.msg").Array()
				parts := make([]string, 0, len(msgs))
				for _, m := range msgs {
					parts = append(parts, m.String())
				}
				if len(parts) > 0 {
					return strings.Join(parts, "; ")
				}
			}
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 512 {
		return text
	}
	return fallback
}
