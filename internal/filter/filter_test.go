package filter

import (
	"testing"

	"internwatch/internal/model"
)

func TestEmptyWhitelistPassesEverything(t *testing.T) {
	f := NewAgeFilter(nil)
	if !f.Fresh(model.Posting{Age: "30d"}) {
		t.Error("empty whitelist must pass any age")
	}
	if !f.Fresh(model.Posting{}) {
		t.Error("empty whitelist must pass postings with no age")
	}
}

func TestWhitelistMatching(t *testing.T) {
	f := NewAgeFilter([]string{"0d", "1d"})
	tests := []struct {
		age  string
		want bool
	}{
		{"0d", true},
		{"1d", true},
		{" 1D ", true}, // case and padding insensitive
		{"2d", false},
		{"1w", false},
		{"", false}, // no age bucket is not fresh under a whitelist
	}
	for _, tt := range tests {
		if got := f.Fresh(model.Posting{Age: tt.age}); got != tt.want {
			t.Errorf("Fresh(age=%q) = %v, want %v", tt.age, got, tt.want)
		}
	}
}

func TestWhitelistIgnoresBlankEntries(t *testing.T) {
	f := NewAgeFilter([]string{" ", ""})
	if !f.Fresh(model.Posting{Age: "9d"}) {
		t.Error("whitelist of blank entries must behave as empty")
	}
}
