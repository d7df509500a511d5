// Package roster applies the student list view rules to a loaded roster.
package roster

import (
	"sort"
	"strings"

	"classboard/internal/domain"
)

type Filter struct {
	Name         string
	Tags         []string
	ShowArchived bool
}

// Active reports whether a name or tag filter is set. The archive toggle only
// applies when nothing else filters the roster.
func (f Filter) Active() bool {
	return strings.TrimSpace(f.Name) != "" || len(f.Tags) > 0
}

// Apply returns the students visible under f, archived students last. The
// input slice is not modified.
func Apply(students []domain.Student, f Filter) []domain.Student {
	name := strings.ToLower(strings.TrimSpace(f.Name))

	visible := make([]domain.Student, 0, len(students))
	for _, s := range students {
		if !f.Active() && s.Archived() != f.ShowArchived {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(s.Name), name) {
			continue
		}
		if len(f.Tags) > 0 && !s.HasTags(f.Tags) {
			continue
		}
		visible = append(visible, s)
	}

	sort.SliceStable(visible, func(i, j int) bool {
		return !visible[i].Archived() && visible[j].Archived()
	})
	return visible
}

// Tags is the sorted union of every tag in the roster.
func Tags(students []domain.Student) []string {
	seen := make(map[string]struct{})
	for _, s := range students {
		for _, t := range s.Tags {
			seen[t] = struct{}{}
		}
	}

	tags := make([]string, 0, len(seen))
	for t := range seen {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// ToggleTag adds tag to the selection or removes it when already selected.
func ToggleTag(selected []string, tag string) []string {
	out := make([]string, 0, len(selected)+1)
	found := false
	for _, t := range selected {
		if t == tag {
			found = true
			continue
		}
		out = append(out, t)
	}
	if !found {
		out = append(out, tag)
	}
	return out
}
