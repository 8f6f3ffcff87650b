package converter

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/evgeniy-krivenko/notepad/internal/entity"
)

// Note mirrors one row of the notes table.
type Note struct {
	ID        string
	Title     string
	Content   string
	UpdatedAt time.Time
	IsDeleted bool
}

func ConvertNoteToEntity(row Note) entity.Note {
	return entity.Note{
		ID:        row.ID,
		Title:     row.Title,
		Content:   row.Content,
		UpdatedAt: ConvertTimeToMillis(row.UpdatedAt),
		IsDeleted: row.IsDeleted,
	}
}

func ConvertNotesToEntity(rows []Note) []entity.Note {
	notes := make([]entity.Note, 0, len(rows))
	for _, row := range rows {
		notes = append(notes, ConvertNoteToEntity(row))
	}

	return notes
}

func ConvertTimeToMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}

	return t.UnixMilli()
}

func ConvertTimeToTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: !t.IsZero()}
}
