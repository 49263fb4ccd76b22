package model

// PopularKey is the synthetic default category. It doubles as the query term
// sent to the search backend when no derived category is selected.
const PopularKey = "热门"

// Category is a classification tag offered as a filter button.
type Category struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Popular returns the synthetic default category entry.
func Popular() Category {
	return Category{Key: PopularKey, Label: PopularKey}
}

// DeriveCategories builds [Popular, ...distinct class tags] in first-seen order.
// Items without a class tag are skipped.
func DeriveCategories(videos []VideoSummary) []Category {
	cats := []Category{Popular()}
	seen := map[string]struct{}{PopularKey: {}}
	for _, v := range videos {
		if v.Class == "" {
			continue
		}
		if _, ok := seen[v.Class]; ok {
			continue
		}
		seen[v.Class] = struct{}{}
		cats = append(cats, Category{Key: v.Class, Label: v.Class})
	}
	return cats
}

// EffectiveQuery returns the search term for a selected category key.
func EffectiveQuery(categoryKey string) string {
	if categoryKey == "" || categoryKey == PopularKey {
		return PopularKey
	}
	return categoryKey
}
