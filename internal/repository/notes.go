package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/evgeniy-krivenko/notepad/internal/entity"
	"github.com/evgeniy-krivenko/notepad/internal/repository/converter"
	"github.com/evgeniy-krivenko/notepad/pkg/logger/slogx"
)

const (
	noteColumns = "id::text, COALESCE(title, ''), COALESCE(content, ''), updated_at, COALESCE(is_deleted, FALSE)"

	listNotesQuery  = "SELECT " + noteColumns + " FROM notes WHERE user_id = $1 ORDER BY updated_at DESC"
	insertNoteQuery = "INSERT INTO notes (user_id, title, content, updated_at) VALUES ($1, $2, $3, $4) RETURNING " + noteColumns
	deleteNoteQuery = "DELETE FROM notes WHERE id = $1"
)

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(row scanner) (converter.Note, error) {
	var n converter.Note
	err := row.Scan(&n.ID, &n.Title, &n.Content, &n.UpdatedAt, &n.IsDeleted)
	return n, err
}

func (r *Repo) ListNotes(ctx context.Context, ownerID string) ([]entity.Note, error) {
	rows, err := r.db.Query(ctx, listNotesQuery, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %v", err)
	}
	defer rows.Close()

	var result []converter.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %v", err)
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notes: %v", err)
	}

	return converter.ConvertNotesToEntity(result), nil
}

func (r *Repo) InsertNote(ctx context.Context, ownerID, title, content string, updatedAt time.Time) (entity.Note, error) {
	row, err := scanNote(r.db.QueryRow(
		ctx,
		insertNoteQuery,
		ownerID,
		title,
		content,
		converter.ConvertTimeToTimestamptz(updatedAt),
	))
	if err != nil {
		return entity.Note{}, fmt.Errorf("insert note: %v", err)
	}

	slogx.Debug(ctx, "success to insert note", slogx.UserId(ownerID), slogx.NoteID(row.ID))

	return converter.ConvertNoteToEntity(row), nil
}

// UpdateNote writes only the columns set in patch, plus updated_at.
func (r *Repo) UpdateNote(ctx context.Context, id string, patch entity.NotePatch) error {
	var (
		sets []string
		args []any
	)
	add := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Content != nil {
		add("content", *patch.Content)
	}
	if patch.IsDeleted != nil {
		add("is_deleted", *patch.IsDeleted)
	}
	add("updated_at", converter.ConvertTimeToTimestamptz(patch.UpdatedAt))

	args = append(args, id)
	query := "UPDATE notes SET " + strings.Join(sets, ", ") + " WHERE id = $" + strconv.Itoa(len(args))

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("update note: %v", err)
	}

	return nil
}

// DeleteNote succeeds when the row is already absent.
func (r *Repo) DeleteNote(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, deleteNoteQuery, id); err != nil {
		return fmt.Errorf("delete note: %v", err)
	}

	return nil
}
