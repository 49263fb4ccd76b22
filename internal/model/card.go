package model

// Card types handed to the card renderer.
const (
	CardTypeTV    = "tv"
	CardTypeMovie = "movie"

	CardFromSearch = "search"
)

// Card carries the props a video card is rendered from.
type Card struct {
	Query      string `json:"query"`
	ID         string `json:"id"`
	Source     string `json:"source"`
	Title      string `json:"title"`
	Year       string `json:"year,omitempty"`
	Poster     string `json:"poster,omitempty"`
	Episodes   int    `json:"episodes"`
	SourceName string `json:"source_name"`
	From       string `json:"from"`
	Type       string `json:"type"`
}

// NewCard maps a search result onto card props.
func NewCard(v VideoSummary) Card {
	typ := CardTypeMovie
	if v.IsSeries() {
		typ = CardTypeTV
	}
	return Card{
		Query:      v.Title,
		ID:         v.ID,
		Source:     v.Source,
		Title:      v.Title,
		Year:       v.Year,
		Poster:     v.Poster,
		Episodes:   len(v.Episodes),
		SourceName: v.SourceName,
		From:       CardFromSearch,
		Type:       typ,
	}
}

// Key uniquely identifies a card within one result list.
func (c Card) Key() string {
	return c.Source + c.ID
}
