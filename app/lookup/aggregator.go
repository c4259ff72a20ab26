package lookup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/rbhz/word-lookup/app/clients/upstream"
	"github.com/rbhz/word-lookup/app/db"
	"github.com/rbhz/word-lookup/app/metrics"
	"github.com/rbhz/word-lookup/app/sources"
)

// DefaultTimeout limits a single source lookup
const DefaultTimeout = 5 * time.Second

var (
	ErrEmptyWord     = errors.New("word is required")
	ErrUnknownSource = errors.New("unknown source")

	errMissingKey = errors.New("api key is not configured")
)

// Fetcher fetches upstream responses
type Fetcher interface {
	Get(ctx context.Context, rawURL string, headers map[string]string) (upstream.Response, error)
}

// Entry holds display values of a single source
type Entry struct {
	Source sources.Source
	Values []string
	// Degraded entries hold a placeholder instead of extracted values
	Degraded bool
	Cached   bool
}

// Display returns values to render, never empty
func (e Entry) Display() []string {
	if len(e.Values) == 0 {
		return e.Source.FallbackValues()
	}
	return e.Values
}

// Result holds entries of all displayed sources in display order
type Result struct {
	ID      string
	Word    string
	Entries []Entry
}

// Option configures Aggregator
type Option func(*Aggregator)

// WithTimeout sets per source timeout
func WithTimeout(d time.Duration) Option {
	return func(a *Aggregator) { a.timeout = d }
}

// WithAPIKey sets credential for sources which require it
func WithAPIKey(key string) Option {
	return func(a *Aggregator) { a.apiKey = key }
}

// WithCache enables lookup cache
func WithCache(c db.Cache) Option {
	return func(a *Aggregator) { a.cache = c }
}

// WithMetrics enables lookup metrics
func WithMetrics(c *metrics.Collector) Option {
	return func(a *Aggregator) { a.metrics = c }
}

// Aggregator looks words up in all configured sources
type Aggregator struct {
	registry *sources.Registry
	fetcher  Fetcher
	cache    db.Cache
	metrics  *metrics.Collector
	timeout  time.Duration
	apiKey   string
}

// Lookup queries every displayed source concurrently and waits for all of them.
// Source failures are replaced by fallback values and never returned.
func (a *Aggregator) Lookup(ctx context.Context, word string) (Result, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return Result{}, ErrEmptyWord
	}
	result := Result{ID: uuid.NewString(), Word: word}
	ordered := a.registry.Ordered()
	result.Entries = make([]Entry, len(ordered))

	var g errgroup.Group
	for i, src := range ordered {
		i, src := i, src
		g.Go(func() error {
			entry, err := a.lookupSource(ctx, src, word)
			if err != nil {
				log.Warn().
					Err(err).
					Str("lookup", result.ID).
					Str("source", src.ID).
					Str("word", word).
					Msg("source lookup failed, using fallback")
				entry = Entry{Source: src, Values: src.FallbackValues(), Degraded: true}
			}
			result.Entries[i] = entry
			return nil
		})
	}
	// lookups never return errors
	_ = g.Wait()
	return result, nil
}

// LookupSource looks word up in a single source.
// Upstream failures are returned, missing data is replaced by fallback value.
func (a *Aggregator) LookupSource(ctx context.Context, id string, word string) (Entry, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return Entry{}, ErrEmptyWord
	}
	src, ok := a.registry.Get(id)
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownSource, id)
	}
	entry, err := a.lookupSource(ctx, src, word)
	if err != nil {
		return Entry{Source: src}, fmt.Errorf("lookup %s: %w", id, err)
	}
	return entry, nil
}

func (a *Aggregator) lookupSource(ctx context.Context, src sources.Source, word string) (Entry, error) {
	start := time.Now()
	values, cached, err := a.fetch(ctx, src, word)
	took := time.Since(start)
	switch {
	case errors.Is(err, errMissingKey):
		a.metrics.ObserveSource(src.ID, metrics.OutcomeMissingKey, took)
		return Entry{Source: src, Values: src.MissingKeyValues(), Degraded: true}, nil
	case errors.Is(err, context.DeadlineExceeded):
		a.metrics.ObserveSource(src.ID, metrics.OutcomeTimeout, took)
		return Entry{}, err
	case err != nil:
		a.metrics.ObserveSource(src.ID, metrics.OutcomeError, took)
		return Entry{}, err
	case len(values) == 0:
		a.metrics.ObserveSource(src.ID, metrics.OutcomeEmpty, took)
		return Entry{Source: src, Values: src.FallbackValues(), Degraded: true}, nil
	case cached:
		a.metrics.ObserveSource(src.ID, metrics.OutcomeCached, took)
	default:
		a.metrics.ObserveSource(src.ID, metrics.OutcomeOK, took)
	}
	return Entry{Source: src, Values: values, Cached: cached}, nil
}

func (a *Aggregator) fetch(ctx context.Context, src sources.Source, word string) ([]string, bool, error) {
	if src.RequiresKey && a.apiKey == "" {
		return nil, false, errMissingKey
	}
	key := db.Key{Source: src.ID, Word: word}
	if a.cache != nil {
		values, err := a.cache.Get(ctx, key)
		if err == nil && len(values) > 0 {
			return values, true, nil
		}
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			log.Error().Err(err).Str("key", key.String()).Msg("failed to get cached values")
		}
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	resp, err := a.fetcher.Get(ctx, src.RequestURL(word, a.apiKey), src.Headers)
	if err != nil {
		if errors.Is(err, upstream.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	values, err := src.Extract(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("extract: %w", err)
	}
	if a.cache != nil && len(values) > 0 {
		if err := a.cache.Save(ctx, key, values); err != nil {
			log.Error().Err(err).Str("key", key.String()).Msg("failed to save values")
		}
	}
	return values, false, nil
}

// NewAggregator creates Aggregator for registry sources
func NewAggregator(registry *sources.Registry, fetcher Fetcher, opts ...Option) *Aggregator {
	a := &Aggregator{
		registry: registry,
		fetcher:  fetcher,
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}
