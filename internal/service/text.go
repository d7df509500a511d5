package service

import (
	"strings"
	"unicode"
)

const slugWords = 6

// normalizeTags trims tags, drops empties and duplicates, keeping first-seen order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// slugify builds a lowercase dash-joined slug from the first words of text.
func slugify(text, suffix string) string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) > slugWords {
		words = words[:slugWords]
	}
	if suffix != "" {
		words = append(words, suffix)
	}
	return strings.Join(words, "-")
}
