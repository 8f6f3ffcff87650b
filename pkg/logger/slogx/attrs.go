package slogx

import "log/slog"

func Err(err error) slog.Attr {
	return slog.Any("err", err)
}

func UserId(id string) slog.Attr {
	return slog.String("user_id", id)
}

func NoteID(id string) slog.Attr {
	return slog.String("note_id", id)
}
