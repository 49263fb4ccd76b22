package model

// Video section states.
const (
	StateLoading = "loading"
	StateResults = "results"
	StateEmpty   = "empty"
)

// PlaceholderCount is the number of skeleton cards shown while loading.
const PlaceholderCount = 8

// EmptyText is shown when a fetch settles with no results.
const EmptyText = "暂无视频数据"

// SourceButton is a source entry as rendered in the picker.
type SourceButton struct {
	Source
	Active bool `json:"active"`
}

// CategoryButton is a category entry as rendered in the picker.
type CategoryButton struct {
	Category
	Active bool `json:"active"`
}

// VideoSection is present only when a source is selected.
type VideoSection struct {
	SourceName   string `json:"sourceName"`
	Category     string `json:"category"`
	State        string `json:"state"`
	Placeholders int    `json:"placeholders,omitempty"`
	Cards        []Card `json:"cards"`
	EmptyText    string `json:"emptyText,omitempty"`
}

// PageView is a point-in-time snapshot of a sources page.
type PageView struct {
	Categories []CategoryButton `json:"categories"`
	Sources    []SourceButton   `json:"sources"`
	Selected   *Source          `json:"selected,omitempty"`
	Category   string           `json:"category"`
	Loading    bool             `json:"loading"`
	Videos     *VideoSection    `json:"videos,omitempty"`
}
