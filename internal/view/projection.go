// Package view derives what the sidebar and editor show from a note collection.
package view

import (
	"fmt"
	"slices"
	"strings"

	"github.com/evgeniy-krivenko/notepad/internal/entity"
)

type Sort string

const (
	SortUpdated Sort = "updated"
	SortTitle   Sort = "alpha"
)

// ParseSort accepts "" as the default most-recent-first order.
func ParseSort(s string) (Sort, error) {
	switch Sort(s) {
	case "", SortUpdated:
		return SortUpdated, nil
	case SortTitle:
		return SortTitle, nil
	default:
		return "", fmt.Errorf("unknown sort order %q", s)
	}
}

type Query struct {
	Mode   entity.ViewMode
	Search string
	Sort   Sort
}

// Project returns the notes visible under q. The input is never modified.
func Project(notes []entity.Note, q Query) []entity.Note {
	trash := q.Mode == entity.ViewTrash
	term := strings.ToLower(q.Search)

	visible := make([]entity.Note, 0, len(notes))
	for _, n := range notes {
		if n.IsDeleted != trash {
			continue
		}
		if !Matches(n, term) {
			continue
		}
		visible = append(visible, n)
	}

	switch q.Sort {
	case SortTitle:
		slices.SortStableFunc(visible, func(a, b entity.Note) int {
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		})
	default:
		slices.SortStableFunc(visible, func(a, b entity.Note) int {
			switch {
			case a.UpdatedAt > b.UpdatedAt:
				return -1
			case a.UpdatedAt < b.UpdatedAt:
				return 1
			default:
				return 0
			}
		})
	}

	return visible
}

// Matches expects term to be lower-cased already.
func Matches(n entity.Note, term string) bool {
	if term == "" {
		return true
	}

	return strings.Contains(strings.ToLower(n.Title), term) ||
		strings.Contains(strings.ToLower(n.Content), term)
}

// ActiveNote looks id up in the unfiltered collection.
func ActiveNote(notes []entity.Note, id string) (entity.Note, bool) {
	if id == "" {
		return entity.Note{}, false
	}

	for _, n := range notes {
		if n.ID == id {
			return n, true
		}
	}

	return entity.Note{}, false
}

func Counts(notes []entity.Note) (active, trash int) {
	for _, n := range notes {
		if n.IsDeleted {
			trash++
		} else {
			active++
		}
	}

	return active, trash
}
