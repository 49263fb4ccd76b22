package page

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathieu-neron/vidsource/internal/model"
)

type stubLister struct {
	sources []model.Source
	err     error
}

func (l stubLister) ListSources(context.Context) ([]model.Source, error) {
	return l.sources, l.err
}

type call struct{ query, source string }

type stubSearcher struct {
	mu      sync.Mutex
	calls   []call
	results map[string][]model.VideoSummary
	err     error
}

func (s *stubSearcher) Search(_ context.Context, query, source string) ([]model.VideoSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call{query, source})
	if s.err != nil {
		return nil, s.err
	}
	return s.results[query], nil
}

var testSources = []model.Source{
	{Key: "ff", Name: "非凡影视", Detail: "ffzy"},
	{Key: "lz", Name: "量子资源"},
}

func video(id, class string, episodes int) model.VideoSummary {
	eps := make([]string, episodes)
	for i := range eps {
		eps[i] = "ep"
	}
	return model.VideoSummary{ID: id, Source: "ff", Title: "t" + id, Class: class, Episodes: eps, SourceName: "非凡影视"}
}

func TestInitialize_SelectsFirstSourceAndFetchesPopular(t *testing.T) {
	s := &stubSearcher{}
	p := New(s, Options{})

	f := p.Initialize(context.Background(), stubLister{sources: testSources})
	require.NotNil(t, f)
	assert.Equal(t, Fetch{Seq: 1, Query: model.PopularKey, Source: "ff"}, *f)

	v := p.View()
	require.NotNil(t, v.Selected)
	assert.Equal(t, "ff", v.Selected.Key)
	assert.True(t, v.Loading)
	assert.Equal(t, model.StateLoading, v.Videos.State)
	assert.Equal(t, model.PlaceholderCount, v.Videos.Placeholders)

	p.Run(context.Background(), f)
	assert.Equal(t, []call{{model.PopularKey, "ff"}}, s.calls)
}

func TestInitialize_NoSources(t *testing.T) {
	p := New(&stubSearcher{}, Options{})

	f := p.Initialize(context.Background(), stubLister{})

	assert.Nil(t, f)
	v := p.View()
	assert.Empty(t, v.Sources)
	assert.Nil(t, v.Videos)
}

func TestInitialize_ListerFailure(t *testing.T) {
	s := &stubSearcher{}
	p := New(s, Options{})

	var f *Fetch
	assert.NotPanics(t, func() {
		f = p.Initialize(context.Background(), stubLister{err: errors.New("config unavailable")})
	})

	assert.Nil(t, f)
	v := p.View()
	assert.Empty(t, v.Sources)
	assert.Nil(t, v.Selected)
	assert.Nil(t, v.Videos)
	assert.Empty(t, s.calls)
}

func TestRun_DerivesCategories(t *testing.T) {
	s := &stubSearcher{results: map[string][]model.VideoSummary{
		model.PopularKey: {video("1", "剧情", 1), video("2", "剧情", 3), video("3", "喜剧", 1)},
	}}
	p := New(s, Options{})

	p.Run(context.Background(), p.Initialize(context.Background(), stubLister{sources: testSources}))

	v := p.View()
	keys := make([]string, 0, len(v.Categories))
	for _, c := range v.Categories {
		keys = append(keys, c.Key)
	}
	assert.Equal(t, []string{model.PopularKey, "剧情", "喜剧"}, keys)
	assert.True(t, v.Categories[0].Active)
	assert.False(t, v.Loading)
	assert.Equal(t, model.StateResults, v.Videos.State)
	require.Len(t, v.Videos.Cards, 3)
	assert.Equal(t, model.CardTypeMovie, v.Videos.Cards[0].Type)
	assert.Equal(t, model.CardTypeTV, v.Videos.Cards[1].Type)
}

func TestRun_EmptyResultKeepsCategories(t *testing.T) {
	s := &stubSearcher{results: map[string][]model.VideoSummary{
		model.PopularKey: {video("1", "剧情", 1), video("2", "喜剧", 1)},
	}}
	p := New(s, Options{})
	p.Run(context.Background(), p.Initialize(context.Background(), stubLister{sources: testSources}))

	f, err := p.SelectCategory("剧情")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "剧情", f.Query)
	p.Run(context.Background(), f)

	v := p.View()
	assert.Equal(t, model.StateEmpty, v.Videos.State)
	assert.Equal(t, model.EmptyText, v.Videos.EmptyText)
	assert.Empty(t, v.Videos.Cards)
	assert.Len(t, v.Categories, 3)
	assert.True(t, v.Categories[1].Active)
}

func TestRun_SearchFailureLeavesListEmpty(t *testing.T) {
	s := &stubSearcher{err: errors.New("HTTP 502")}
	p := New(s, Options{})

	p.Run(context.Background(), p.Initialize(context.Background(), stubLister{sources: testSources}))

	v := p.View()
	assert.False(t, v.Loading)
	assert.Equal(t, model.StateEmpty, v.Videos.State)
	assert.Equal(t, []model.CategoryButton{{Category: model.Popular(), Active: true}}, v.Categories)
}

func TestRun_StaleResponseDropped(t *testing.T) {
	s := &stubSearcher{results: map[string][]model.VideoSummary{
		model.PopularKey: {video("1", "剧情", 1), video("2", "喜剧", 1)},
		"剧情":             {video("old", "剧情", 1)},
		"喜剧":             {video("new", "喜剧", 2)},
	}}
	stale := 0
	p := New(s, Options{OnStale: func() { stale++ }})
	p.Run(context.Background(), p.Initialize(context.Background(), stubLister{sources: testSources}))

	older, err := p.SelectCategory("剧情")
	require.NoError(t, err)
	newer, err := p.SelectCategory("喜剧")
	require.NoError(t, err)
	require.NotNil(t, older)
	require.NotNil(t, newer)
	require.Less(t, older.Seq, newer.Seq)

	// Older request settles first while the newer one is pending.
	p.Run(context.Background(), older)
	v := p.View()
	assert.True(t, v.Loading, "stale completion must not end loading")
	assert.Empty(t, v.Videos.Cards)

	p.Run(context.Background(), newer)
	v = p.View()
	require.Len(t, v.Videos.Cards, 1)
	assert.Equal(t, "new", v.Videos.Cards[0].ID)

	// A response for an even older request arriving last changes nothing.
	p.apply(older, []model.VideoSummary{video("late", "剧情", 1)}, nil)
	v = p.View()
	require.Len(t, v.Videos.Cards, 1)
	assert.Equal(t, "new", v.Videos.Cards[0].ID)
	assert.Equal(t, 2, stale)
}

func TestSelectSource(t *testing.T) {
	p := New(&stubSearcher{}, Options{})
	p.Initialize(context.Background(), stubLister{sources: testSources})

	f, err := p.SelectSource("ff")
	require.NoError(t, err)
	assert.Nil(t, f, "reselecting the current source should not refetch")

	f, err = p.SelectSource("lz")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "lz", f.Source)
	assert.Equal(t, model.PopularKey, f.Query)

	v := p.View()
	assert.False(t, v.Sources[0].Active)
	assert.True(t, v.Sources[1].Active)
	assert.Equal(t, "量子资源", v.Videos.SourceName)

	_, err = p.SelectSource("nope")
	assert.ErrorIs(t, err, ErrUnknownSource)
}

func TestSelectCategory_BeforeSourceLoaded(t *testing.T) {
	p := New(&stubSearcher{}, Options{})

	f, err := p.SelectCategory(model.PopularKey)
	require.NoError(t, err)
	assert.Nil(t, f)

	f = p.Initialize(context.Background(), stubLister{sources: testSources})
	require.NotNil(t, f)
	assert.Equal(t, model.PopularKey, f.Query)
}

func TestSelectCategory_RejectsUnknownKey(t *testing.T) {
	s := &stubSearcher{results: map[string][]model.VideoSummary{
		model.PopularKey: {video("1", "剧情", 1)},
	}}
	p := New(s, Options{})
	p.Run(context.Background(), p.Initialize(context.Background(), stubLister{sources: testSources}))

	f, err := p.SelectCategory("any free text query")
	assert.ErrorIs(t, err, ErrUnknownCategory)
	assert.Nil(t, f)

	f, err = p.SelectCategory(model.PopularKey)
	require.NoError(t, err)
	assert.Nil(t, f, "reselecting the current category should not refetch")

	f, err = p.SelectCategory("剧情")
	require.NoError(t, err)
	require.NotNil(t, f)

	assert.Equal(t, []call{{model.PopularKey, "ff"}}, s.calls)
	assert.Equal(t, "剧情", p.View().Category)
}

type flakyLister struct {
	calls int
}

func (l *flakyLister) ListSources(context.Context) ([]model.Source, error) {
	l.calls++
	if l.calls == 1 {
		return nil, errors.New("connection refused")
	}
	return testSources, nil
}

func TestInitialize_RetriesAfterFailure(t *testing.T) {
	p := New(&stubSearcher{}, Options{})
	lister := &flakyLister{}

	assert.True(t, p.NeedsInit())
	assert.Nil(t, p.Initialize(context.Background(), lister))
	assert.True(t, p.NeedsInit())

	f := p.Initialize(context.Background(), lister)
	require.NotNil(t, f)
	assert.False(t, p.NeedsInit())

	assert.Nil(t, p.Initialize(context.Background(), lister), "a loaded page keeps its sources")
	assert.Equal(t, 3, lister.calls)
	assert.Len(t, p.View().Sources, 2)
}

func TestRun_NilFetch(t *testing.T) {
	s := &stubSearcher{}
	p := New(s, Options{})
	p.Run(context.Background(), nil)
	assert.Empty(t, s.calls)
}
