package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func words(n int) string {
	w := make([]string, n)
	for i := range w {
		w[i] = "w"
	}
	return strings.Join(w, " ")
}

func TestSplitWords(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		size      int
		overlap   int
		wantSizes []int
	}{
		{name: "empty", text: "   ", size: 300, overlap: 50, wantSizes: nil},
		{name: "shorter than window", text: words(10), size: 300, overlap: 50, wantSizes: []int{10}},
		{name: "exact window", text: words(300), size: 300, overlap: 50, wantSizes: []int{300}},
		{name: "overlapping tail", text: words(350), size: 300, overlap: 50, wantSizes: []int{300, 100}},
		{name: "three windows", text: words(700), size: 300, overlap: 50, wantSizes: []int{300, 300, 200}},
		{name: "no overlap-only tail", text: words(550), size: 300, overlap: 50, wantSizes: []int{300, 300}},
		{name: "overlap too large", text: words(5), size: 2, overlap: 2, wantSizes: []int{2, 2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := SplitWords(tt.text, tt.size, tt.overlap)
			var sizes []int
			for _, c := range chunks {
				sizes = append(sizes, len(strings.Fields(c)))
			}
			assert.Equal(t, tt.wantSizes, sizes)
		})
	}
}

func TestSplitWordsOverlapContent(t *testing.T) {
	chunks := SplitWords("a b c d e", 3, 1)
	assert.Equal(t, []string{"a b c", "c d e"}, chunks)
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{in: "pizza", n: 10, want: "pizza"},
		{in: "pizza", n: 3, want: "piz"},
		{in: "menú", n: 4, want: "menú"},
		{in: "años", n: 2, want: "añ"},
		{in: "x", n: 0, want: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TruncateRunes(tt.in, tt.n))
	}
	assert.Equal(t, "añ...", Ellipsis("años", 2))
	assert.Equal(t, "años", Ellipsis("años", 4))
}
