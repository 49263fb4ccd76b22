package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
	hits     int
	misses   int
}

func (o *recordingObserver) ObserveSearch(_, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

func (o *recordingObserver) ObserveCache(hit bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if hit {
		o.hits++
	} else {
		o.misses++
	}
}

func newTestClient(t *testing.T, h http.HandlerFunc) (*SearchClient, *recordingObserver) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	obs := &recordingObserver{}
	return NewSearchClient(srv.URL+"/api/search", 2*time.Second, nil, obs, zerolog.Nop()), obs
}

func TestSearch_DecodesResults(t *testing.T) {
	var gotQuery, gotSource string
	c, obs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotSource = r.URL.Query().Get("source")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[
			{"id":"1","source":"ff","title":"狂飙","year":"2023","poster":"p.jpg","episodes":["a","b","c"],"source_name":"非凡影视","class":"剧情","desc":"ignored"},
			{"id":"2","source":"ff","title":"满江红","episodes":["m"],"source_name":"非凡影视"}
		]}`))
	})

	videos, err := c.Search(context.Background(), "热门 剧", "ff")
	require.NoError(t, err)

	assert.Equal(t, "热门 剧", gotQuery)
	assert.Equal(t, "ff", gotSource)
	require.Len(t, videos, 2)
	assert.Equal(t, "狂飙", videos[0].Title)
	assert.Equal(t, "剧情", videos[0].Class)
	assert.Len(t, videos[0].Episodes, 3)
	assert.Empty(t, videos[1].Class)
	assert.Equal(t, []string{OutcomeOK}, obs.outcomes)
	assert.Equal(t, 1, obs.misses)
}

func TestSearch_MissingResultsIsEmpty(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	videos, err := c.Search(context.Background(), "热门", "ff")
	require.NoError(t, err)
	assert.NotNil(t, videos)
	assert.Empty(t, videos)
}

func TestSearch_NonOKStatus(t *testing.T) {
	c, obs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := c.Search(context.Background(), "热门", "ff")

	var statusErr *HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, []string{OutcomeHTTPError}, obs.outcomes)
}

func TestSearch_MalformedJSON(t *testing.T) {
	c, obs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": [`))
	})

	_, err := c.Search(context.Background(), "热门", "ff")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode search response")
	assert.Equal(t, []string{OutcomeDecode}, obs.outcomes)
}

func TestSearch_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})
	c := NewSearchClient(srv.URL, 50*time.Millisecond, nil, nil, zerolog.Nop())

	_, err := c.Search(context.Background(), "热门", "ff")
	require.Error(t, err)
}

func TestSearch_CollapsesConcurrentCalls(t *testing.T) {
	var hits atomic.Int32
	gate := make(chan struct{})
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-gate
		_, _ = w.Write([]byte(`{"results":[{"id":"1","source":"ff","title":"x","episodes":["a"],"source_name":"s"}]}`))
	})

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			videos, err := c.Search(context.Background(), "热门", "ff")
			assert.NoError(t, err)
			assert.Len(t, videos, 1)
		}()
	}
	// Give every goroutine time to join the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, int32(1), hits.Load())
}

func TestSearchURL(t *testing.T) {
	u, err := SearchURL("http://moontv:3000/api/search?token=abc", "喜剧 片", "ff")
	require.NoError(t, err)
	assert.Equal(t, "http://moontv:3000/api/search?q=%E5%96%9C%E5%89%A7+%E7%89%87&source=ff&token=abc", u)

	_, err = SearchURL("/api/search", "q", "ff")
	assert.Error(t, err)
}
