package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/mathieu-neron/vidsource/internal/model"
)

// Search outcomes reported to the observer.
const (
	OutcomeOK        = "ok"
	OutcomeCached    = "cached"
	OutcomeHTTPError = "http_error"
	OutcomeDecode    = "decode_error"
	OutcomeTransport = "transport_error"
)

const maxSearchBody = 8 << 20

// HTTPStatusError means the search backend answered with a non-2xx status.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("search backend returned HTTP %d", e.StatusCode)
}

// SearchObserver receives per-request telemetry. Implementations must be
// safe for concurrent use.
type SearchObserver interface {
	ObserveSearch(source, outcome string, d time.Duration)
	ObserveCache(hit bool)
}

type nopObserver struct{}

func (nopObserver) ObserveSearch(string, string, time.Duration) {}
func (nopObserver) ObserveCache(bool)                           {}

// SearchClient queries the backend search endpoint.
type SearchClient struct {
	endpoint string
	http     *http.Client
	cache    *CacheService
	obs      SearchObserver
	log      zerolog.Logger
	group    singleflight.Group
}

// NewSearchClient builds a client for endpoint, e.g. http://host/api/search.
// cache and obs may be nil.
func NewSearchClient(endpoint string, timeout time.Duration, cache *CacheService, obs SearchObserver, log zerolog.Logger) *SearchClient {
	if cache == nil {
		cache = &CacheService{}
	}
	if obs == nil {
		obs = nopObserver{}
	}
	return &SearchClient{
		endpoint: endpoint,
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:          20,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       60 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: timeout,
			},
		},
		cache: cache,
		obs:   obs,
		log:   log,
	}
}

// Search returns the results for query on source. Identical concurrent calls
// share one backend request.
func (s *SearchClient) Search(ctx context.Context, query, source string) ([]model.VideoSummary, error) {
	if videos, ok, err := s.cache.GetSearch(ctx, query, source); err != nil {
		s.log.Warn().Err(err).Str("source", source).Msg("search cache read failed")
	} else {
		s.obs.ObserveCache(ok)
		if ok {
			s.obs.ObserveSearch(source, OutcomeCached, 0)
			return videos, nil
		}
	}

	v, err, _ := s.group.Do(source+"\x00"+query, func() (any, error) {
		return s.fetch(ctx, query, source)
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.VideoSummary), nil
}

func (s *SearchClient) fetch(ctx context.Context, query, source string) ([]model.VideoSummary, error) {
	start := time.Now()
	videos, outcome, err := s.do(ctx, query, source)
	s.obs.ObserveSearch(source, outcome, time.Since(start))
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetSearch(ctx, query, source, videos); err != nil {
		s.log.Warn().Err(err).Str("source", source).Msg("search cache write failed")
	}
	return videos, nil
}

func (s *SearchClient) do(ctx context.Context, query, source string) ([]model.VideoSummary, string, error) {
	u, err := SearchURL(s.endpoint, query, source)
	if err != nil {
		return nil, OutcomeTransport, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, OutcomeTransport, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, OutcomeTransport, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, OutcomeHTTPError, &HTTPStatusError{URL: u, StatusCode: resp.StatusCode}
	}

	var body model.SearchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxSearchBody)).Decode(&body); err != nil {
		return nil, OutcomeDecode, fmt.Errorf("decode search response: %w", err)
	}
	if body.Results == nil {
		body.Results = []model.VideoSummary{}
	}
	return body.Results, OutcomeOK, nil
}

// SearchURL appends the q and source parameters to endpoint.
func SearchURL(endpoint, query, source string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse search url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", errors.New("search url must be absolute")
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("source", source)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
