package core

import (
	"encoding/json"
	"strings"
)

// Category is one of a closed set of spending categories.
type Category string

const (
	Food          Category = "Food"
	Transport     Category = "Transport"
	Entertainment Category = "Entertainment"
	Shopping      Category = "Shopping"
	Housing       Category = "Housing"
	Utilities     Category = "Utilities"
	Healthcare    Category = "Healthcare"
	Travel        Category = "Travel"
	Education     Category = "Education"
	Bills         Category = "Bills"
	Other         Category = "Other"
)

type categoryInfo struct {
	emoji string
	color string
}

var categoryTable = map[Category]categoryInfo{
	Food:          {"🍔", "#3B82F6"},
	Transport:     {"🚗", "#F97316"},
	Entertainment: {"🎬", "#8B5CF6"},
	Shopping:      {"🛍️", "#EC4899"},
	Housing:       {"🏠", "#10B981"},
	Utilities:     {"💡", "#6366F1"},
	Healthcare:    {"🏥", "#EF4444"},
	Travel:        {"✈️", "#F59E0B"},
	Education:     {"📚", "#14B8A6"},
	Bills:         {"🧾", "#0EA5E9"},
	Other:         {"📋", "#6B7280"},
}

// AllCategories returns every category in display order.
func AllCategories() []Category {
	return []Category{
		Food,
		Transport,
		Entertainment,
		Shopping,
		Housing,
		Utilities,
		Healthcare,
		Travel,
		Education,
		Bills,
		Other,
	}
}

// ParseCategory maps a free-form name onto the closed set. Matching is
// case-insensitive; unknown names become Other.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyCategory
	}
	for _, c := range AllCategories() {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return Other, nil
}

// IsValid reports whether c belongs to the closed set.
func (c Category) IsValid() bool {
	_, ok := categoryTable[c]
	return ok
}

func (c Category) String() string {
	return string(c)
}

// Emoji returns the icon shown next to the category.
func (c Category) Emoji() string {
	if info, ok := categoryTable[c]; ok {
		return info.emoji
	}
	return categoryTable[Other].emoji
}

// Color returns the chart color for the category.
func (c Category) Color() string {
	if info, ok := categoryTable[c]; ok {
		return info.color
	}
	return categoryTable[Other].color
}

// UnmarshalJSON normalises stored names, so legacy free-form categories load
// as Other instead of failing.
func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		*c = ""
		return nil
	}
	parsed, err := ParseCategory(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
