package table

import (
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// Suggest 返回与 name 最接近的列名，没有足够接近的列时返回空串
func (t *Table) Suggest(name string) string {
	target := strings.ToLower(name)
	best := ""
	bestDist := -1
	for _, c := range t.columns {
		candidate := strings.ToLower(c.Name)
		if candidate == target {
			return c.Name
		}
		dist := levenshtein.DistanceForStrings([]rune(target), []rune(candidate), levenshtein.DefaultOptions)
		if bestDist == -1 || dist < bestDist {
			best, bestDist = c.Name, dist
		}
	}
	if bestDist == -1 || bestDist > maxSuggestDistance(name) {
		return ""
	}
	return best
}

// maxSuggestDistance 允许的最大编辑距离：名称长度的三分之一，至少为 1
func maxSuggestDistance(name string) int {
	d := len([]rune(name)) / 3
	if d < 1 {
		return 1
	}
	return d
}
