// Package page holds the state of a sources page: the source and category
// pickers, the current video list and the loading flag.
//
// A selection change returns a Fetch ticket. The caller runs the ticket with
// Run, usually on its own goroutine. Every ticket carries a sequence number
// and only the most recently issued one may update the page.
package page

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mathieu-neron/vidsource/internal/model"
)

var (
	// ErrUnknownSource is returned when a source key is not in the loaded list.
	ErrUnknownSource = errors.New("page: unknown source")
	// ErrUnknownCategory is returned when a category key is not among the
	// categories currently offered.
	ErrUnknownCategory = errors.New("page: unknown category")
)

// SourceLister provides the available sources.
type SourceLister interface {
	ListSources(ctx context.Context) ([]model.Source, error)
}

// Searcher queries the search backend for one source.
type Searcher interface {
	Search(ctx context.Context, query, source string) ([]model.VideoSummary, error)
}

// Fetch is a video request issued by a selection change.
type Fetch struct {
	Seq    uint64
	Query  string
	Source string
}

// Options tune a Page. The zero value is usable.
type Options struct {
	Logger zerolog.Logger
	// OnStale is called whenever a superseded response is dropped.
	OnStale func()
}

// Page is safe for concurrent use.
type Page struct {
	searcher Searcher
	log      zerolog.Logger
	onStale  func()

	mu         sync.Mutex
	sources    []model.Source
	selected   *model.Source
	category   string
	categories []model.Category
	videos     []model.VideoSummary
	loading    bool
	seq        uint64
	touched    time.Time
}

// New returns a page with no sources and the Popular category selected.
func New(searcher Searcher, opts Options) *Page {
	return &Page{
		searcher:   searcher,
		log:        opts.Logger,
		onStale:    opts.OnStale,
		category:   model.PopularKey,
		categories: []model.Category{model.Popular()},
		touched:    time.Now(),
	}
}

// Initialize loads the sources and selects the first one. It returns the fetch
// for that selection, or nil when there is nothing to fetch. A lister failure
// is logged and leaves the page without sources, so a later call may retry.
// A page that already has sources is left alone.
func (p *Page) Initialize(ctx context.Context, lister SourceLister) *Fetch {
	sources, err := lister.ListSources(ctx)
	if err != nil {
		p.log.Error().Err(err).Msg("load video sources failed")
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.sources) > 0 {
		return nil
	}
	p.sources = append([]model.Source(nil), sources...)
	if len(p.sources) == 0 {
		return nil
	}
	first := p.sources[0]
	p.selected = &first
	return p.beginLocked()
}

// SelectSource makes the source with the given key current. Selecting the
// already selected source returns a nil fetch.
func (p *Page) SelectSource(key string) (*Fetch, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.touched = time.Now()
	for i := range p.sources {
		if p.sources[i].Key != key {
			continue
		}
		if p.selected != nil && p.selected.Key == key {
			return nil, nil
		}
		src := p.sources[i]
		p.selected = &src
		return p.beginLocked(), nil
	}
	return nil, ErrUnknownSource
}

// SelectCategory makes the category with the given key current. Only keys of
// the offered categories are accepted. It returns a nil fetch when the
// category is unchanged or no source is selected yet.
func (p *Page) SelectCategory(key string) (*Fetch, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.touched = time.Now()
	known := false
	for _, c := range p.categories {
		if c.Key == key {
			known = true
			break
		}
	}
	if !known {
		return nil, ErrUnknownCategory
	}
	if key == p.category {
		return nil, nil
	}
	p.category = key
	if p.selected == nil {
		return nil, nil
	}
	return p.beginLocked(), nil
}

// beginLocked clears the list, enters the loading state and issues a ticket.
func (p *Page) beginLocked() *Fetch {
	p.seq++
	p.videos = nil
	p.loading = true
	return &Fetch{
		Seq:    p.seq,
		Query:  model.EffectiveQuery(p.category),
		Source: p.selected.Key,
	}
}

// Run performs the fetch and applies its outcome. A nil fetch is a no-op.
func (p *Page) Run(ctx context.Context, f *Fetch) {
	if f == nil {
		return
	}
	videos, err := p.searcher.Search(ctx, f.Query, f.Source)
	p.apply(f, videos, err)
}

func (p *Page) apply(f *Fetch, videos []model.VideoSummary, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if f.Seq != p.seq {
		p.log.Debug().
			Uint64("seq", f.Seq).
			Uint64("latest", p.seq).
			Str("source", f.Source).
			Str("query", f.Query).
			Msg("dropping stale video response")
		if p.onStale != nil {
			p.onStale()
		}
		return
	}

	p.loading = false
	if err != nil {
		p.log.Error().Err(err).
			Str("source", f.Source).
			Str("query", f.Query).
			Msg("fetch video list failed")
		return
	}

	p.videos = videos
	if len(videos) > 0 {
		p.categories = model.DeriveCategories(videos)
	}
}

// NeedsInit reports whether the source list is still missing, either because
// it was never loaded or because loading it failed.
func (p *Page) NeedsInit() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sources) == 0 && p.selected == nil
}

// Loading reports whether the latest fetch is still in flight.
func (p *Page) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// Touched returns when the page was last created or changed by a selection.
func (p *Page) Touched() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.touched
}

// View returns a snapshot suitable for rendering.
func (p *Page) View() model.PageView {
	p.mu.Lock()
	defer p.mu.Unlock()

	view := model.PageView{
		Categories: make([]model.CategoryButton, 0, len(p.categories)),
		Sources:    make([]model.SourceButton, 0, len(p.sources)),
		Category:   p.category,
		Loading:    p.loading,
	}
	for _, c := range p.categories {
		view.Categories = append(view.Categories, model.CategoryButton{Category: c, Active: c.Key == p.category})
	}
	for _, s := range p.sources {
		active := p.selected != nil && p.selected.Key == s.Key
		view.Sources = append(view.Sources, model.SourceButton{Source: s, Active: active})
	}
	if p.selected == nil {
		return view
	}

	sel := *p.selected
	view.Selected = &sel
	section := &model.VideoSection{
		SourceName: sel.Name,
		Category:   p.category,
		Cards:      []model.Card{},
	}
	switch {
	case p.loading:
		section.State = model.StateLoading
		section.Placeholders = model.PlaceholderCount
	case len(p.videos) > 0:
		section.State = model.StateResults
		for _, v := range p.videos {
			section.Cards = append(section.Cards, model.NewCard(v))
		}
	default:
		section.State = model.StateEmpty
		section.EmptyText = model.EmptyText
	}
	view.Videos = section
	return view
}
