package api

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rbhz/word-lookup/app/clients/upstream"
	"github.com/rbhz/word-lookup/app/lookup"
	"github.com/rbhz/word-lookup/app/metrics"
	"github.com/rbhz/word-lookup/app/proxy"
	"github.com/rbhz/word-lookup/app/sources"
)

type RoundTripFunc func(req *http.Request) (*http.Response, error)

func (f RoundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// fakeUpstream answers upstream requests with bodies keyed by host
type fakeUpstream struct {
	calls  int64
	bodies map[string]string

	mx   sync.Mutex
	urls []string
}

func (u *fakeUpstream) RoundTrip(req *http.Request) (*http.Response, error) {
	atomic.AddInt64(&u.calls, 1)
	u.mx.Lock()
	u.urls = append(u.urls, req.URL.String())
	u.mx.Unlock()
	for host, body := range u.bodies {
		if strings.HasSuffix(req.URL.Host, host) {
			return &http.Response{
				StatusCode: 200,
				Body:       io.NopCloser(bytes.NewBufferString(body)),
				Header:     http.Header{"Content-Type": []string{"text/html; charset=utf-8"}},
				Request:    req,
			}, nil
		}
	}
	return &http.Response{
		StatusCode: 404,
		Body:       io.NopCloser(bytes.NewBufferString("")),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

func (u *fakeUpstream) Calls() int64 {
	return atomic.LoadInt64(&u.calls)
}

func (u *fakeUpstream) URLs() []string {
	u.mx.Lock()
	defer u.mx.Unlock()
	return append([]string(nil), u.urls...)
}

// getTestServer returns a test server backed by upstream transport
func getTestServer(transport http.RoundTripper) (*httptest.Server, func()) {
	client := upstream.NewClientWithHTTP(&http.Client{Transport: transport})
	collector := metrics.NewCollector()
	aggregator := lookup.NewAggregator(sources.Default(), client,
		lookup.WithAPIKey("secret"), lookup.WithMetrics(collector))
	pages := proxy.NewProxy(client, proxy.WithMetrics(collector))

	server := NewServer(aggregator, pages, collector)
	srv := httptest.NewServer(server.router)
	return srv, srv.Close
}
