package core

import (
	"encoding/json"
	"testing"
)

func TestParseCategory(t *testing.T) {
	cases := []struct {
		in   string
		want Category
		ok   bool
	}{
		{"Food", Food, true},
		{"  transport ", Transport, true},
		{"BILLS", Bills, true},
		{"Groceries", Other, true},
		{"", "", false},
		{"   ", "", false},
	}
	for _, tc := range cases {
		got, err := ParseCategory(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q expected %q, got %q (err=%v)", tc.in, tc.want, got, err)
		}
		if !tc.ok && err != ErrEmptyCategory {
			t.Fatalf("%q expected ErrEmptyCategory, got %v", tc.in, err)
		}
	}
}

func TestCategoryLookups(t *testing.T) {
	for _, c := range AllCategories() {
		if !c.IsValid() {
			t.Fatalf("%s should be valid", c)
		}
		if c.Emoji() == "" || c.Color() == "" {
			t.Fatalf("%s missing emoji or color", c)
		}
	}
	unknown := Category("Snacks")
	if unknown.IsValid() {
		t.Fatalf("unknown category reported valid")
	}
	if unknown.Emoji() != Other.Emoji() || unknown.Color() != Other.Color() {
		t.Fatalf("unknown category should fall back to Other")
	}
}

func TestCategoryUnmarshal(t *testing.T) {
	var c Category
	if err := json.Unmarshal([]byte(`"healthcare"`), &c); err != nil || c != Healthcare {
		t.Fatalf("got %q err=%v", c, err)
	}
	if err := json.Unmarshal([]byte(`12`), &c); err == nil {
		t.Fatalf("expected error for non-string category")
	}
}
