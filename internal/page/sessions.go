package page

import (
	"sync"
	"time"
)

// Sessions keeps one Page per browser session.
type Sessions struct {
	mu    sync.Mutex
	pages map[string]*Page
	ttl   time.Duration
	newFn func() *Page
}

// NewSessions creates a registry whose pages are built by newFn and expire
// after ttl without a selection change or a Get.
func NewSessions(ttl time.Duration, newFn func() *Page) *Sessions {
	return &Sessions{
		pages: make(map[string]*Page),
		ttl:   ttl,
		newFn: newFn,
	}
}

// Get returns the page for id, creating it when missing. created reports
// whether the caller must initialize the page.
func (s *Sessions) Get(id string) (p *Page, created bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.pages[id]; ok {
		p.touch()
		return p, false
	}
	p = s.newFn()
	s.pages[id] = p
	return p, true
}

// Lookup returns the page for id without creating one.
func (s *Sessions) Lookup(id string) (*Page, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pages[id]
	return p, ok
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pages)
}

// Sweep removes pages idle since before now-ttl and returns how many went.
func (s *Sessions) Sweep(now time.Time) int {
	cutoff := now.Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, p := range s.pages {
		if p.Touched().Before(cutoff) {
			delete(s.pages, id)
			removed++
		}
	}
	return removed
}

func (p *Page) touch() {
	p.mu.Lock()
	p.touched = time.Now()
	p.mu.Unlock()
}
