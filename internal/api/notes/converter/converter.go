package converter

import (
	"github.com/evgeniy-krivenko/notepad/internal/entity"
)

type Note struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	UpdatedAt int64  `json:"updatedAt"`
	IsDeleted bool   `json:"isDeleted"`
}

type Counts struct {
	Active int `json:"active"`
	Trash  int `json:"trash"`
}

type NoteList struct {
	Notes  []Note `json:"notes"`
	Active *Note  `json:"active"`
	View   string `json:"view"`
	Search string `json:"search"`
	Sort   string `json:"sort"`
	Counts Counts `json:"counts"`
}

type State struct {
	Notes         []Note   `json:"notes"`
	ActiveID      string   `json:"activeId,omitempty"`
	ListVisible   bool     `json:"listVisible"`
	PendingDelete string   `json:"pendingDelete,omitempty"`
	Deleting      bool     `json:"deleting"`
	Alerts        []string `json:"alerts"`
}

// NoteUpdate is a partial edit; absent fields stay untouched.
type NoteUpdate struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func ConvertNoteToDTO(n entity.Note) Note {
	return Note{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		UpdatedAt: n.UpdatedAt,
		IsDeleted: n.IsDeleted,
	}
}

func ConvertNotesToDTO(notes []entity.Note) []Note {
	out := make([]Note, 0, len(notes))
	for _, n := range notes {
		out = append(out, ConvertNoteToDTO(n))
	}

	return out
}

func ConvertStateToDTO(s entity.State, alerts []string) State {
	if alerts == nil {
		alerts = []string{}
	}

	return State{
		Notes:         ConvertNotesToDTO(s.Notes),
		ActiveID:      s.ActiveID,
		ListVisible:   s.ListVisible,
		PendingDelete: s.PendingDelete,
		Deleting:      s.Deleting,
		Alerts:        alerts,
	}
}

func (u NoteUpdate) Fields() entity.NoteFields {
	return entity.NoteFields{Title: u.Title, Content: u.Content}
}
