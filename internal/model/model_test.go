package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveCategories_DedupFirstSeen(t *testing.T) {
	videos := []VideoSummary{
		{ID: "1", Class: "剧情"},
		{ID: "2", Class: "剧情"},
		{ID: "3"},
		{ID: "4", Class: "喜剧"},
	}

	got := DeriveCategories(videos)

	assert.Equal(t, []Category{
		{Key: PopularKey, Label: PopularKey},
		{Key: "剧情", Label: "剧情"},
		{Key: "喜剧", Label: "喜剧"},
	}, got)
}

func TestDeriveCategories_PopularTagNotDuplicated(t *testing.T) {
	got := DeriveCategories([]VideoSummary{{ID: "1", Class: PopularKey}, {ID: "2", Class: "动作"}})

	assert.Len(t, got, 2)
	assert.Equal(t, PopularKey, got[0].Key)
	assert.Equal(t, "动作", got[1].Key)
}

func TestDeriveCategories_NoTags(t *testing.T) {
	got := DeriveCategories([]VideoSummary{{ID: "1"}, {ID: "2"}})
	assert.Equal(t, []Category{Popular()}, got)
}

func TestEffectiveQuery(t *testing.T) {
	assert.Equal(t, PopularKey, EffectiveQuery(PopularKey))
	assert.Equal(t, PopularKey, EffectiveQuery(""))
	assert.Equal(t, "喜剧", EffectiveQuery("喜剧"))
}

func TestNewCard_Type(t *testing.T) {
	tests := []struct {
		name     string
		episodes []string
		want     string
	}{
		{"single episode is movie", []string{"e1"}, CardTypeMovie},
		{"no episodes is movie", nil, CardTypeMovie},
		{"three episodes is tv", []string{"e1", "e2", "e3"}, CardTypeTV},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := NewCard(VideoSummary{ID: "42", Source: "ff", Title: "T", Episodes: tt.episodes})
			assert.Equal(t, tt.want, card.Type)
			assert.Equal(t, len(tt.episodes), card.Episodes)
		})
	}
}

func TestNewCard_Props(t *testing.T) {
	card := NewCard(VideoSummary{
		ID: "42", Source: "ff", Title: "流浪地球", Year: "2019",
		Poster: "http://img/p.jpg", Episodes: []string{"a"}, SourceName: "非凡",
	})

	assert.Equal(t, Card{
		Query: "流浪地球", ID: "42", Source: "ff", Title: "流浪地球", Year: "2019",
		Poster: "http://img/p.jpg", Episodes: 1, SourceName: "非凡",
		From: CardFromSearch, Type: CardTypeMovie,
	}, card)
	assert.Equal(t, "ff42", card.Key())
}
