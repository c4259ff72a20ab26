package upstream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html/charset"
)

const (
	maxBodySize  = 4 << 20
	maxLoggedLen = 512
)

var (
	// ErrNotFound is returned for 404 responses, Response still holds the body
	ErrNotFound = errors.New("not found")
	// ErrUnexpectedStatus is returned for non-2xx responses
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrBodyTooLarge is returned instead of a truncated body
	ErrBodyTooLarge = errors.New("response body too large")
)

// Response holds UTF-8 body of an upstream response
type Response struct {
	// URL the body was served from after redirects
	URL         *url.URL
	StatusCode  int
	ContentType string
	Body        []byte
}

// Client fetches third-party dictionary pages and APIs
type Client struct {
	client *http.Client
}

// Get fetches url with given headers.
// Redirects are followed, non-JSON bodies are converted to UTF-8.
func (c Client) Get(ctx context.Context, rawURL string, headers map[string]string) (Response, error) {
	var result Response
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return result, fmt.Errorf("create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return result, fmt.Errorf("fetch %s: %w", req.URL.Host, err)
	}
	defer resp.Body.Close()

	result.URL = req.URL
	if resp.Request != nil {
		result.URL = resp.Request.URL
	}
	result.StatusCode = resp.StatusCode
	result.ContentType = resp.Header.Get("Content-Type")
	body, err := readBody(resp.Body, result.ContentType)
	if err != nil {
		return result, fmt.Errorf("read response body: %w", err)
	}
	result.Body = body

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return result, ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		logged := body
		if len(logged) > maxLoggedLen {
			logged = logged[:maxLoggedLen]
		}
		log.Error().
			Str("host", req.URL.Host).
			Str("status", resp.Status).
			Bytes("body", logged).
			Msg("unsuccessful upstream response")
		return result, fmt.Errorf("%w %v", ErrUnexpectedStatus, resp.StatusCode)
	}
	return result, nil
}

func readBody(body io.Reader, contentType string) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(body, maxBodySize+1))
	if err != nil {
		return nil, err
	}
	if len(raw) > maxBodySize {
		return nil, fmt.Errorf("%w: over %d bytes", ErrBodyTooLarge, maxBodySize)
	}
	if strings.Contains(contentType, "json") {
		return raw, nil
	}
	decoded, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(decoded)
}

// NewClient creates Client with default HTTP client.
// Timeouts are controlled by request context.
func NewClient() Client {
	return Client{client: &http.Client{}}
}

// NewClientWithHTTP creates Client with custom HTTP client
func NewClientWithHTTP(client *http.Client) Client {
	return Client{client: client}
}
