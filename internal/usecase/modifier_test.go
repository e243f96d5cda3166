package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wavebreaker/backend/internal/usecase"
)

func TestParseModifiers(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  []string
	}{
		{name: "no suffix", title: "Bohemian Rhapsody", want: nil},
		{name: "single tag", title: "Bohemian Rhapsody [as-remix]", want: []string{"remix"}},
		{name: "multiple tags", title: "Song [as-live][as-2024]", want: []string{"live", "2024"}},
		{name: "tags with interior whitespace", title: "Song [as-a] [as-b]", want: []string{"a", "b"}},
		{name: "case sensitive tag preserved", title: "Song [as-Remix]", want: []string{"Remix"}},
		{name: "bracket in middle is not a suffix", title: "Song [as-live] extra", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, usecase.ParseModifiers(tt.title))
		})
	}
}

func TestStripModifiers(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{name: "no suffix", title: "Bohemian Rhapsody", want: "Bohemian Rhapsody"},
		{name: "single tag", title: "Bohemian Rhapsody [as-remix]", want: "Bohemian Rhapsody"},
		{name: "multiple tags with trailing space trimmed", title: "Song [as-live][as-2024]  ", want: "Song"},
		{name: "bracket in middle is untouched", title: "Song [as-live] extra", want: "Song [as-live] extra"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, usecase.StripModifiers(tt.title))
		})
	}
}
