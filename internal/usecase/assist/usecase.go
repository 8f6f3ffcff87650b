// Package assist rewrites note text through a language model.
package assist

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -destination=mocks/mock_completer.go -package=mocks github.com/evgeniy-krivenko/notepad/internal/usecase/assist Completer

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/evgeniy-krivenko/notepad/internal/entity"
	"github.com/evgeniy-krivenko/notepad/pkg/logger/slogx"
)

const DefaultTitle = "New note"

type Tone string

const (
	ToneFormal       Tone = "formal"
	ToneProfessional Tone = "professional"
	ToneInformal     Tone = "informal"
)

func ParseTone(s string) (Tone, error) {
	switch t := Tone(s); t {
	case ToneFormal, ToneProfessional, ToneInformal:
		return t, nil
	default:
		return "", fmt.Errorf("unknown tone %q", s)
	}
}

const (
	enhanceInstruction = "You are an expert text editor. Improve the given text: fix grammar, improve clarity " +
		"and flow, and format it better if needed. Keep the original language. Return ONLY the improved " +
		"text, without introductions, quotes or explanations."
	grammarInstruction = "You are a strict proofreader. Fix only grammar, spelling and punctuation errors in " +
		"the given text. Do NOT change style, tone or sentence structure unless it is grammatically wrong. " +
		"Return ONLY the corrected text."
	titleInstruction = "Generate a short, concise and descriptive title (at most 5 words) for the given " +
		"text. Return ONLY the title, without quotes."
	toneSuffix = " Return ONLY the rewritten text, without Markdown formatting."
)

var toneInstructions = map[Tone]string{
	ToneFormal: "Rewrite the following text in a formal, cultivated and respectful tone. Use suitable " +
		"vocabulary and elegant sentence structure. Keep the original meaning.",
	ToneProfessional: "Rewrite the following text in a professional, corporate and objective tone. Be " +
		"clear and direct, suitable for a workplace. Keep the original meaning.",
	ToneInformal: "Rewrite the following text in an informal, conversational and friendly tone, as if " +
		"talking to a friend. Keep the original meaning.",
}

// Completer is the text transform service.
type Completer interface {
	Complete(ctx context.Context, input, instruction string) (string, error)
}

type notesEngine interface {
	Note(id string) (entity.Note, error)
	UpdateNote(ctx context.Context, id string, fields entity.NoteFields) error
}

type notifier interface {
	Alert(ctx context.Context, msg string)
}

type Usecase struct {
	completer Completer
	notes     notesEngine
	notifier  notifier
}

func New(completer Completer, notes notesEngine, n notifier) *Usecase {
	return &Usecase{completer: completer, notes: notes, notifier: n}
}

// Enhance improves grammar, clarity and flow of the note content.
func (u *Usecase) Enhance(ctx context.Context, id string) (entity.Note, error) {
	return u.rewriteContent(ctx, id, enhanceInstruction, "Failed to improve the text. Check your connection or API key.")
}

// FixGrammar corrects grammar and spelling without changing style.
func (u *Usecase) FixGrammar(ctx context.Context, id string) (entity.Note, error) {
	return u.rewriteContent(ctx, id, grammarInstruction, "Failed to fix grammar.")
}

func (u *Usecase) ChangeTone(ctx context.Context, id string, tone Tone) (entity.Note, error) {
	instruction, ok := toneInstructions[tone]
	if !ok {
		return entity.Note{}, fmt.Errorf("usecase change tone: unknown tone %q", tone)
	}

	return u.rewriteContent(ctx, id, instruction+toneSuffix, "Failed to rewrite the text.")
}

// GenerateTitle derives a title from the content and writes it to the note.
func (u *Usecase) GenerateTitle(ctx context.Context, id string) (entity.Note, error) {
	note, err := u.editable(id)
	if err != nil {
		return entity.Note{}, err
	}

	title := DefaultTitle
	if strings.TrimSpace(note.Content) != "" {
		out, err := u.completer.Complete(ctx, note.Content, titleInstruction)
		if err != nil {
			return entity.Note{}, u.fail(ctx, id, "Failed to generate a title.", err)
		}

		if t := StripQuotes(Sanitize(out)); t != "" {
			title = t
		}
	}

	return u.write(ctx, id, entity.NoteFields{Title: &title})
}

func (u *Usecase) rewriteContent(ctx context.Context, id, instruction, alert string) (entity.Note, error) {
	note, err := u.editable(id)
	if err != nil {
		return entity.Note{}, err
	}

	if strings.TrimSpace(note.Content) == "" {
		return note, nil
	}

	out, err := u.completer.Complete(ctx, note.Content, instruction)
	if err != nil {
		return entity.Note{}, u.fail(ctx, id, alert, err)
	}

	content := Sanitize(out)
	if content == "" {
		return note, nil
	}

	return u.write(ctx, id, entity.NoteFields{Content: &content})
}

func (u *Usecase) editable(id string) (entity.Note, error) {
	note, err := u.notes.Note(id)
	if err != nil {
		return entity.Note{}, err
	}
	if note.IsDeleted {
		return entity.Note{}, entity.ErrNoteInTrash
	}

	return note, nil
}

func (u *Usecase) write(ctx context.Context, id string, fields entity.NoteFields) (entity.Note, error) {
	if err := u.notes.UpdateNote(ctx, id, fields); err != nil {
		return entity.Note{}, fmt.Errorf("usecase assist update note: %w", err)
	}

	return u.notes.Note(id)
}

func (u *Usecase) fail(ctx context.Context, id, alert string, err error) error {
	slogx.Error(ctx, "text transform failed", slogx.NoteID(id), slogx.Err(err))
	if u.notifier != nil {
		u.notifier.Alert(ctx, alert)
	}

	return fmt.Errorf("usecase assist: %w", err)
}

var (
	openingFence = regexp.MustCompile("(?i)^```(markdown|html|text)?\n")
	closingFence = regexp.MustCompile("\n```$")
	wrapQuotes   = regexp.MustCompile(`^["']|["']$`)
)

// Sanitize removes a wrapping code fence and surrounding whitespace.
func Sanitize(text string) string {
	text = openingFence.ReplaceAllString(text, "")
	text = closingFence.ReplaceAllString(text, "")

	return strings.TrimSpace(text)
}

func StripQuotes(text string) string {
	return strings.TrimSpace(wrapQuotes.ReplaceAllString(text, ""))
}
