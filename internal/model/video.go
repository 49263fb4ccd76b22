package model

// VideoSummary is one search result as returned by the search backend.
type VideoSummary struct {
	ID         string   `json:"id"`
	Source     string   `json:"source"`
	Title      string   `json:"title"`
	Year       string   `json:"year,omitempty"`
	Poster     string   `json:"poster,omitempty"`
	Episodes   []string `json:"episodes"`
	SourceName string   `json:"source_name"`
	Class      string   `json:"class,omitempty"`
}

// SearchResponse is the envelope of GET /api/search on the backend.
type SearchResponse struct {
	Results []VideoSummary `json:"results"`
}

// IsSeries reports whether the title has more than one episode.
func (v VideoSummary) IsSeries() bool {
	return len(v.Episodes) > 1
}
