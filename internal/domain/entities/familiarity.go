package entities

import (
	"math"
	"strconv"
	"strings"
)

const (
	familiarityPrefix = "熟悉度："
	filledStar        = "★"
	hollowStar        = "☆"
	maxStars          = 10
)

// StarCount returns the number of filled stars for an unfamiliarity score:
// every full 10% of familiarity (1 - u) earns one star.
func StarCount(unfamiliarity float64) int {
	n := int(math.Floor((1 - unfamiliarity) * maxStars))
	if n < 0 {
		return 0
	}
	if n > maxStars {
		return maxStars
	}
	return n
}

// FamiliarityStars renders the star rating. A single hollow star is shown
// when the familiarity is below 10%.
func FamiliarityStars(unfamiliarity float64) string {
	n := StarCount(unfamiliarity)
	if n == 0 {
		return hollowStar
	}
	return strings.Repeat(filledStar, n)
}

// FamiliarityLabel renders the full label shown next to a question,
// e.g. "熟悉度：★★★★★★★ 0.25".
func FamiliarityLabel(unfamiliarity float64) string {
	return familiarityPrefix + FamiliarityStars(unfamiliarity) + " " +
		strconv.FormatFloat(unfamiliarity, 'f', -1, 64)
}
