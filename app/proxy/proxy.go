package proxy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	nethtml "golang.org/x/net/html"

	"github.com/rbhz/word-lookup/app/clients/upstream"
	"github.com/rbhz/word-lookup/app/metrics"
	"github.com/rbhz/word-lookup/app/sources"
)

// DefaultPrefix is a path the proxy is served at
const DefaultPrefix = "/api/proxy"

var (
	ErrMissingParams = errors.New("source and word are required")
	ErrUnknownSource = errors.New("unknown source")
	ErrForeignURL    = errors.New("url does not belong to source")
)

var pageHeaders = map[string]string{
	"User-Agent":      sources.DesktopUserAgent,
	"Accept-Language": "en-US,en;q=0.9",
	"Accept":          "text/html",
}

// Fetcher fetches upstream responses
type Fetcher interface {
	Get(ctx context.Context, rawURL string, headers map[string]string) (upstream.Response, error)
}

// Option configures Proxy
type Option func(*Proxy)

// WithPrefix sets path rewritten links point to
func WithPrefix(prefix string) Option {
	return func(p *Proxy) { p.prefix = prefix }
}

// WithoutRewrite leaves page links untouched
func WithoutRewrite() Option {
	return func(p *Proxy) { p.rewrite = false }
}

// WithTargets replaces built-in targets
func WithTargets(targets []Target) Option {
	return func(p *Proxy) {
		p.targets = make(map[string]Target, len(targets))
		for _, t := range targets {
			p.targets[t.ID] = t
		}
	}
}

// WithMetrics enables proxy metrics
func WithMetrics(c *metrics.Collector) Option {
	return func(p *Proxy) { p.metrics = c }
}

// Proxy serves sanitized third-party dictionary pages
type Proxy struct {
	fetcher Fetcher
	targets map[string]Target
	prefix  string
	rewrite bool
	metrics *metrics.Collector
}

// Fetch returns sanitized page of source for word
func (p *Proxy) Fetch(ctx context.Context, source string, word string) ([]byte, error) {
	source, word = strings.TrimSpace(source), strings.TrimSpace(word)
	if source == "" || word == "" {
		return nil, ErrMissingParams
	}
	target, ok := p.targets[source]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}
	rawURL, err := target.resolve(word)
	if err != nil {
		return nil, err
	}
	var page []byte
	if target.Definition != "" {
		page, err = p.definition(ctx, target, rawURL, word)
	} else {
		page, err = p.page(ctx, target, rawURL)
	}
	if err != nil {
		p.metrics.ObserveProxy(source, metrics.OutcomeError)
		return nil, err
	}
	p.metrics.ObserveProxy(source, metrics.OutcomeOK)
	return page, nil
}

// definition renders minimal page from JSON API response
func (p *Proxy) definition(ctx context.Context, target Target, rawURL string, word string) ([]byte, error) {
	resp, err := p.fetcher.Get(ctx, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s definition: %w", target.ID, err)
	}
	text := "No definition found"
	if def := gjson.GetBytes(resp.Body, target.Definition); def.Exists() && def.String() != "" {
		text = def.String()
	}
	return []byte("<h1>" + html.EscapeString(word) + "</h1><p>" + html.EscapeString(text) + "</p>"), nil
}

func (p *Proxy) page(ctx context.Context, target Target, rawURL string) ([]byte, error) {
	resp, err := p.fetcher.Get(ctx, rawURL, pageHeaders)
	switch {
	case errors.Is(err, upstream.ErrNotFound):
		// not found pages usually suggest similar words
		log.Debug().Str("source", target.ID).Str("url", rawURL).Msg("upstream page not found")
	case err != nil:
		return nil, fmt.Errorf("fetch %s page: %w", target.ID, err)
	}
	doc, err := nethtml.Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parse %s page: %w", target.ID, err)
	}
	sanitize(doc)
	if p.rewrite {
		base := resp.URL
		if base == nil {
			if base, err = url.Parse(rawURL); err != nil {
				return nil, fmt.Errorf("parse page url: %w", err)
			}
		}
		rewriter{base: base, prefix: p.prefix, source: target.ID}.rewrite(doc)
	}
	buf := &bytes.Buffer{}
	if err := nethtml.Render(buf, doc); err != nil {
		return nil, fmt.Errorf("render %s page: %w", target.ID, err)
	}
	return buf.Bytes(), nil
}

// NewProxy creates Proxy with built-in targets and link rewriting enabled
func NewProxy(fetcher Fetcher, opts ...Option) *Proxy {
	p := &Proxy{
		fetcher: fetcher,
		prefix:  DefaultPrefix,
		rewrite: true,
	}
	WithTargets(DefaultTargets())(p)
	for _, opt := range opts {
		opt(p)
	}
	return p
}
