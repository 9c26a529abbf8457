package taskstore

import (
	"strings"
	"unicode"

	"tracker/internal/dto"
	"tracker/internal/model"
)

// All matches every priority or status in Filter.
const All = "all"

func (s *Store) ByPriority(p string) []dto.Task {
	return s.Filter(p, All)
}

func (s *Store) ByStatus(status string) []dto.Task {
	return s.Filter(All, status)
}

// Filter returns the cached tasks matching both priority and status; All
// (or an empty string) disables that criterion.
func (s *Store) Filter(priority, status string) []dto.Task {
	tasks := s.Tasks()
	out := make([]dto.Task, 0, len(tasks))
	for _, t := range tasks {
		if priority != All && priority != "" && string(t.Priority) != priority {
			continue
		}
		if status != All && status != "" && string(t.Status) != status {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Search matches query against title or description, case-insensitively. A
// query also matches when whitespace is ignored on both sides, so "duedate"
// finds "Due Date Review". An empty query returns tasks unchanged.
func Search(query string, tasks []dto.Task) []dto.Task {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return tasks
	}
	compact := stripSpaces(q)

	out := make([]dto.Task, 0, len(tasks))
	for _, t := range tasks {
		title := strings.ToLower(t.Title)
		desc := strings.ToLower(t.Description)
		if strings.Contains(title, q) || strings.Contains(desc, q) ||
			strings.Contains(stripSpaces(title), compact) || strings.Contains(stripSpaces(desc), compact) {
			out = append(out, t)
		}
	}
	return out
}

// GroupByPriority buckets tasks into every known priority lane, keeping order.
// Lanes without tasks are present and empty.
func GroupByPriority(tasks []dto.Task) map[model.Priority][]dto.Task {
	grouped := make(map[model.Priority][]dto.Task, len(model.Priorities))
	for _, p := range model.Priorities {
		grouped[p] = []dto.Task{}
	}
	for _, t := range tasks {
		if t.Priority == "" {
			continue
		}
		grouped[t.Priority] = append(grouped[t.Priority], t)
	}
	return grouped
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
