package entity

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoteNotFound     = errors.New("note not found")
	ErrUnauthenticated  = errors.New("user not authenticated")
	ErrNoPendingDelete  = errors.New("no note awaiting delete confirmation")
	ErrDeleteInProgress = errors.New("permanent delete already in progress")
	ErrNoteNotPersisted = errors.New("note is not saved yet")
	ErrNoteInTrash      = errors.New("note is in trash")
	ErrEmptyText        = errors.New("text is empty")
)

type Note struct {
	ID        string
	Title     string
	Content   string
	UpdatedAt int64 // epoch milliseconds
	IsDeleted bool
}

// NoteFields is a partial edit of the user editable fields.
type NoteFields struct {
	Title   *string
	Content *string
}

func (f NoteFields) Apply(n Note) Note {
	if f.Title != nil {
		n.Title = *f.Title
	}
	if f.Content != nil {
		n.Content = *f.Content
	}

	return n
}

// NotePatch is the subset of store columns written by one update.
type NotePatch struct {
	Title     *string
	Content   *string
	IsDeleted *bool
	UpdatedAt time.Time
}

func PatchFromFields(f NoteFields, at time.Time) NotePatch {
	return NotePatch{Title: f.Title, Content: f.Content, UpdatedAt: at}
}

// Merge overlays the set fields of other onto p. The later timestamp wins.
func (p NotePatch) Merge(other NotePatch) NotePatch {
	if other.Title != nil {
		p.Title = other.Title
	}
	if other.Content != nil {
		p.Content = other.Content
	}
	if other.IsDeleted != nil {
		p.IsDeleted = other.IsDeleted
	}
	if other.UpdatedAt.After(p.UpdatedAt) {
		p.UpdatedAt = other.UpdatedAt
	}

	return p
}

func (p NotePatch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.IsDeleted == nil
}

type ViewMode string

const (
	ViewActive ViewMode = "active"
	ViewTrash  ViewMode = "trash"
)

func ParseViewMode(s string) (ViewMode, error) {
	switch ViewMode(s) {
	case "", ViewActive:
		return ViewActive, nil
	case ViewTrash:
		return ViewTrash, nil
	default:
		return "", fmt.Errorf("unknown view mode %q", s)
	}
}

func Ptr[T any](v T) *T {
	return &v
}
