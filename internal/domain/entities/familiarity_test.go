package entities

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestStarCount(t *testing.T) {
	tests := []struct {
		name          string
		unfamiliarity float64
		want          int
	}{
		{"fully familiar", 0, 10},
		{"quarter", 0.25, 7},
		{"half", 0.5, 5},
		{"almost familiar", 0.05, 9},
		{"below ten percent", 0.95, 0},
		{"unknown word", 1, 0},
		{"out of range low", -0.5, 10},
		{"out of range high", 1.5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StarCount(tt.unfamiliarity))
		})
	}
}

func TestFamiliarityStars_MatchesFloorForWholeRange(t *testing.T) {
	for i := 0; i <= 1000; i++ {
		u := float64(i) / 1000
		want := int(math.Floor((1 - u) * 10))
		stars := FamiliarityStars(u)

		if want == 0 {
			assert.Equal(t, hollowStar, stars, "u=%v", u)
			continue
		}
		assert.Equal(t, want, utf8.RuneCountInString(stars), "u=%v", u)
		assert.Equal(t, strings.Repeat(filledStar, want), stars, "u=%v", u)
	}
}

func TestFamiliarityLabel(t *testing.T) {
	assert.Equal(t, "熟悉度：★★★★★★★ 0.25", FamiliarityLabel(0.25))
	assert.Equal(t, "熟悉度：☆ 1", FamiliarityLabel(1))
	assert.Equal(t, "熟悉度：★★★★★★★★★★ 0", FamiliarityLabel(0))
}

func TestSessionState_AcceptsSelection(t *testing.T) {
	q := &Question{ID: "7", Options: []string{"a", "b", "c"}}

	s := NewSessionState()
	assert.False(t, s.AcceptsSelection(0), "no active question")

	s.Question = q
	s.OptionCount = q.OptionCount()
	assert.True(t, s.AcceptsSelection(0))
	assert.True(t, s.AcceptsSelection(2))
	assert.False(t, s.AcceptsSelection(3))
	assert.False(t, s.AcceptsSelection(-1))

	s.Locked = true
	assert.False(t, s.AcceptsSelection(1))
}

func TestAnswerStats_Accuracy(t *testing.T) {
	assert.Zero(t, AnswerStats{}.Accuracy())
	assert.InDelta(t, 75.0, AnswerStats{Total: 4, Correct: 3}.Accuracy(), 1e-9)
}
