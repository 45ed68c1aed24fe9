package catalog

import (
	"context"
	"crypto/rand"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/Sternrassler/catalog-loader/pkg/client"
	"github.com/Sternrassler/catalog-loader/pkg/fanout"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Default endpoint and page size of the public catalog.
const (
	DefaultIndexURL = "https://pokeapi.co/api/v2/pokemon"
	DefaultLimit    = 1302
)

// Getter fetches a URL and decodes its JSON body into v.
// *client.Client satisfies it.
type Getter interface {
	GetJSON(ctx context.Context, rawURL string, v any) error
}

// Config holds loader configuration.
type Config struct {
	// Concurrency bounds in-flight detail requests. Zero starts them all at once.
	Concurrency int

	// ItemTimeout bounds each detail request. Zero means no timeout.
	ItemTimeout time.Duration
}

// DefaultConfig returns the eager, unbounded fan-out.
func DefaultConfig() Config {
	return Config{}
}

// Loader runs catalog loads.
type Loader struct {
	getter Getter
	config Config
	logger zerolog.Logger
}

// New creates a Loader.
func New(getter Getter, cfg Config) (*Loader, error) {
	if getter == nil {
		return nil, fmt.Errorf("getter is required")
	}
	if cfg.Concurrency < 0 {
		return nil, fmt.Errorf("concurrency must be >= 0 (got %d)", cfg.Concurrency)
	}
	if cfg.ItemTimeout < 0 {
		return nil, fmt.Errorf("item timeout must be >= 0 (got %s)", cfg.ItemTimeout)
	}

	return &Loader{
		getter: getter,
		config: cfg,
		logger: log.With().Str("component", "catalog").Logger(),
	}, nil
}

// Load runs one complete load: index request, detail fan-out, join,
// normalization and filtering. It always returns a terminal state.
//
// limit is sent as the "limit" query parameter; zero or negative omits it.
func (l *Loader) Load(ctx context.Context, indexURL string, limit int) LoadState {
	return l.load(ctx, newInvocationID(), indexURL, limit)
}

func (l *Loader) load(ctx context.Context, id, indexURL string, limit int) LoadState {
	start := time.Now()
	logger := l.logger.With().Str("invocation_id", id).Logger()

	logger.Info().
		Str("index_url", indexURL).
		Int("limit", limit).
		Int("concurrency", l.config.Concurrency).
		Msg("Loading catalog")

	entries, err := l.FetchIndex(ctx, indexURL, limit)
	if err != nil {
		logger.Error().Err(err).Str("index_url", indexURL).Msg("Catalog index fetch failed")
		loadsTotal.WithLabelValues(string(StatusFailed)).Inc()
		loadDuration.Observe(time.Since(start).Seconds())
		return LoadState{
			ID:     id,
			Status: StatusFailed,
			Error:  FailureMessage,
			Cause:  err,
		}
	}

	results := l.resolve(ctx, logger, entries)
	summaries := Survivors(results)

	loadsTotal.WithLabelValues(string(StatusReady)).Inc()
	loadDuration.Observe(time.Since(start).Seconds())
	entriesLoaded.Set(float64(len(summaries)))

	logger.Info().
		Int("index_entries", len(entries)).
		Int("entries", len(summaries)).
		Int("dropped", len(entries)-len(summaries)).
		Dur("duration", time.Since(start)).
		Msg("Catalog loaded")

	return LoadState{
		ID:      id,
		Status:  StatusReady,
		Entries: summaries,
	}
}

// FetchIndex issues the single index request and returns its entries in
// order. Relative detail URLs are resolved against indexURL.
func (l *Loader) FetchIndex(ctx context.Context, indexURL string, limit int) ([]IndexEntry, error) {
	base, err := url.Parse(indexURL)
	if err != nil {
		return nil, &IndexFetchError{URL: indexURL, Err: err}
	}
	target := withLimit(base, limit)

	var doc indexDocument
	if err := l.getter.GetJSON(ctx, target.String(), &doc); err != nil {
		return nil, &IndexFetchError{URL: target.String(), Err: err}
	}
	if doc.Results == nil {
		return nil, &IndexFetchError{URL: target.String(), Err: ErrMissingResults}
	}

	entries := make([]IndexEntry, 0, len(*doc.Results))
	for _, e := range *doc.Results {
		// null rows and rows without a url stay in place; Resolve drops them
		if e.DetailURL == "" {
			entries = append(entries, e)
			continue
		}
		if ref, err := url.Parse(e.DetailURL); err == nil {
			e.DetailURL = target.ResolveReference(ref).String()
		}
		entries = append(entries, e)
	}

	l.logger.Debug().Int("entries", len(entries)).Str("index_url", target.String()).Msg("Index fetched")
	return entries, nil
}

// Resolve fetches and normalizes every entry concurrently. Result i belongs
// to entries[i]; failed entries carry a *DetailFetchError.
func (l *Loader) Resolve(ctx context.Context, entries []IndexEntry) []DetailResult {
	return l.resolve(ctx, l.logger, entries)
}

func (l *Loader) resolve(ctx context.Context, logger zerolog.Logger, entries []IndexEntry) []DetailResult {
	cfg := fanout.Config{Width: l.config.Concurrency, ItemTimeout: l.config.ItemTimeout}

	outcomes := fanout.Settle(ctx, len(entries), cfg, func(ctx context.Context, i int) (EntitySummary, error) {
		if entries[i].DetailURL == "" {
			return EntitySummary{}, &client.APIError{
				ErrorClass: client.ErrorClassDecode,
				Message:    "index entry has no detail url",
				Err:        client.ErrMalformedPayload,
			}
		}
		var detail Detail
		if err := l.getter.GetJSON(ctx, entries[i].DetailURL, &detail); err != nil {
			return EntitySummary{}, err
		}
		summary, err := Normalize(entries[i], detail)
		if err != nil {
			return EntitySummary{}, &client.APIError{
				URL:        entries[i].DetailURL,
				ErrorClass: client.ErrorClassDecode,
				Message:    "unexpected detail document shape",
				Err:        err,
			}
		}
		return summary, nil
	})

	results := make([]DetailResult, len(entries))
	for i, o := range outcomes {
		results[i] = DetailResult{Entry: entries[i], Summary: o.Value}
		if o.Err == nil {
			detailResultsTotal.WithLabelValues("ok").Inc()
			continue
		}

		results[i].Summary = EntitySummary{}
		results[i].Err = &DetailFetchError{Name: entries[i].Name, URL: entries[i].DetailURL, Err: o.Err}
		detailResultsTotal.WithLabelValues("dropped").Inc()
		logger.Warn().
			Err(o.Err).
			Str("name", entries[i].Name).
			Str("url", entries[i].DetailURL).
			Str("error_class", string(client.ClassOf(o.Err))).
			Msg("Dropping catalog entry")
	}

	return results
}

// Survivors returns the summaries of successful results in their original order.
func Survivors(results []DetailResult) []EntitySummary {
	out := make([]EntitySummary, 0, len(results))
	for _, r := range results {
		if r.OK() {
			out = append(out, r.Summary)
		}
	}
	return out
}

// withLimit returns a copy of u with the limit query parameter set.
func withLimit(u *url.URL, limit int) *url.URL {
	out := *u
	if limit <= 0 {
		return &out
	}
	q := out.Query()
	q.Set("limit", strconv.Itoa(limit))
	out.RawQuery = q.Encode()
	return &out
}

func newInvocationID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}
