package upstream

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type RoundTripFunc func(req *http.Request) (*http.Response, error)

func (f RoundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestGet(t *testing.T) {
	validURL := "https://api.dictionaryapi.dev/api/v2/entries/en/hello"
	t.Run("success", func(t *testing.T) {
		client := NewClientWithHTTP(&http.Client{
			Transport: RoundTripFunc(func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, validURL, req.URL.String())
				assert.Equal(t, "test-agent", req.Header.Get("User-Agent"))
				return &http.Response{
					StatusCode: 200,
					Body:       io.NopCloser(bytes.NewBufferString(`[{"word":"hello"}]`)),
					Header:     http.Header{"Content-Type": []string{"application/json"}},
				}, nil
			}),
		})
		resp, err := client.Get(context.TODO(), validURL, map[string]string{"User-Agent": "test-agent"})
		require.NoError(t, err)
		assert.Equal(t, `[{"word":"hello"}]`, string(resp.Body))
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, validURL, resp.URL.String())
	})
	t.Run("request error", func(t *testing.T) {
		client := NewClientWithHTTP(&http.Client{
			Transport: RoundTripFunc(func(req *http.Request) (*http.Response, error) {
				return nil, http.ErrServerClosed
			}),
		})
		_, err := client.Get(context.TODO(), validURL, nil)
		assert.ErrorIs(t, err, http.ErrServerClosed)
	})
	t.Run("error status", func(t *testing.T) {
		client := NewClientWithHTTP(&http.Client{
			Transport: RoundTripFunc(func(req *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: 500,
					Status:     "500 Internal Server Error",
					Body:       io.NopCloser(bytes.NewBufferString(`{"status": "ERROR"}`)),
					Header:     make(http.Header),
				}, nil
			}),
		})
		_, err := client.Get(context.TODO(), validURL, nil)
		assert.ErrorIs(t, err, ErrUnexpectedStatus)
	})
	t.Run("error status 404", func(t *testing.T) {
		client := NewClientWithHTTP(&http.Client{
			Transport: RoundTripFunc(func(req *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: 404,
					Body:       io.NopCloser(bytes.NewBufferString(`<p>no such word</p>`)),
					Header:     http.Header{"Content-Type": []string{"text/html; charset=utf-8"}},
				}, nil
			}),
		})
		resp, err := client.Get(context.TODO(), validURL, nil)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, `<p>no such word</p>`, string(resp.Body))
	})
	t.Run("charset", func(t *testing.T) {
		client := NewClientWithHTTP(&http.Client{
			Transport: RoundTripFunc(func(req *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: 200,
					// "café" in ISO-8859-1
					Body:   io.NopCloser(bytes.NewReader([]byte{'c', 'a', 'f', 0xe9})),
					Header: http.Header{"Content-Type": []string{"text/html; charset=iso-8859-1"}},
				}, nil
			}),
		})
		resp, err := client.Get(context.TODO(), validURL, nil)
		require.NoError(t, err)
		assert.Equal(t, "café", string(resp.Body))
	})
	t.Run("redirect", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/new", http.StatusMovedPermanently)
		})
		mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("moved"))
		})
		ts := httptest.NewServer(mux)
		defer ts.Close()

		resp, err := NewClient().Get(context.TODO(), ts.URL+"/old", nil)
		require.NoError(t, err)
		assert.Equal(t, "moved", string(resp.Body))
		assert.Equal(t, "/new", resp.URL.Path)
	})
	t.Run("body too large", func(t *testing.T) {
		client := NewClientWithHTTP(&http.Client{
			Transport: RoundTripFunc(func(req *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: 200,
					Body:       io.NopCloser(bytes.NewReader(make([]byte, maxBodySize+1))),
					Header:     http.Header{"Content-Type": []string{"text/html"}},
				}, nil
			}),
		})
		_, err := client.Get(context.TODO(), validURL, nil)
		assert.ErrorIs(t, err, ErrBodyTooLarge)
	})
	t.Run("body at limit", func(t *testing.T) {
		client := NewClientWithHTTP(&http.Client{
			Transport: RoundTripFunc(func(req *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: 200,
					Body:       io.NopCloser(bytes.NewReader(make([]byte, maxBodySize))),
					Header:     http.Header{"Content-Type": []string{"application/json"}},
				}, nil
			}),
		})
		resp, err := client.Get(context.TODO(), validURL, nil)
		require.NoError(t, err)
		assert.Len(t, resp.Body, maxBodySize)
	})
	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewClient().Get(ctx, validURL, nil)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
