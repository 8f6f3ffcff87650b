// Package notes keeps an in-memory note collection consistent with the remote
// store: edits are applied locally first and persisted behind a per-note debounce.
package notes

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/imkira/go-observer"

	"github.com/evgeniy-krivenko/notepad/internal/entity"
	"github.com/evgeniy-krivenko/notepad/pkg/logger/slogx"
)

type notesStore interface {
	ListNotes(ctx context.Context, ownerID string) ([]entity.Note, error)
	InsertNote(ctx context.Context, ownerID, title, content string, updatedAt time.Time) (entity.Note, error)
	UpdateNote(ctx context.Context, id string, patch entity.NotePatch) error
	DeleteNote(ctx context.Context, id string) error
}

// notifier receives failures the user has to see.
type notifier interface {
	Alert(ctx context.Context, msg string)
}

//go:generate go run github.com/kazhuravlev/options-gen/cmd/options-gen@v0.55.3 -out-filename=usecase_options.gen.go -from-struct=Options
type Options struct {
	store   notesStore     `option:"mandatory" validate:"required"`
	session entity.Session `option:"mandatory"`

	notifier     notifier
	clock        func() time.Time
	debounce     time.Duration `default:"1s"`
	storeTimeout time.Duration `default:"10s"`
}

type pendingSave struct {
	id    string
	patch entity.NotePatch
	timer *time.Timer
	ctx   context.Context
}

type Usecase struct {
	Options

	mu    sync.Mutex
	notes []entity.Note
	// temporary ids waiting for the store to assign a durable one.
	temporary map[string]struct{}
	// store writes issued while the note had no durable id.
	deferred map[string]entity.NotePatch
	saves    map[string]*pendingSave

	activeID    string
	listVisible bool
	deletion    deletion

	prop     observer.Property
	inflight sync.WaitGroup
}

func New(opts Options) (*Usecase, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("validate notes usecase options: %v", err)
	}

	if opts.clock == nil {
		opts.clock = time.Now
	}
	if opts.notifier == nil {
		opts.notifier = logNotifier{}
	}

	u := &Usecase{
		Options:     opts,
		temporary:   make(map[string]struct{}),
		deferred:    make(map[string]entity.NotePatch),
		saves:       make(map[string]*pendingSave),
		listVisible: true,
	}
	u.prop = observer.NewProperty(u.snapshotLocked())

	return u, nil
}

// Load replaces the collection with the owner's notes from the store.
// On failure the collection is left empty; there is no automatic retry.
func (u *Usecase) Load(ctx context.Context) error {
	if !u.session.Authenticated() {
		return entity.ErrUnauthenticated
	}

	ctx, cancel := u.storeContext(ctx)
	defer cancel()

	notes, err := u.store.ListNotes(ctx, u.session.OwnerID)

	u.mu.Lock()
	defer u.mu.Unlock()

	if err != nil {
		u.notes = nil
		u.publishLocked()
		slogx.Error(ctx, "failed to load notes", slogx.UserId(u.session.OwnerID), slogx.Err(err))
		return fmt.Errorf("usecase load notes: %w", err)
	}

	u.notes = slices.Clone(notes)
	u.dropOrphanSavesLocked()
	u.temporary = make(map[string]struct{})
	u.deferred = make(map[string]entity.NotePatch)
	if _, ok := u.indexLocked(u.activeID); !ok {
		u.activeID = ""
	}
	u.publishLocked()

	slogx.Info(ctx, "notes loaded", slogx.UserId(u.session.OwnerID))
	return nil
}

// AddNote inserts an empty note under a temporary id, selects it and
// persists it in the background.
func (u *Usecase) AddNote(ctx context.Context) (entity.Note, error) {
	if !u.session.Authenticated() {
		return entity.Note{}, entity.ErrUnauthenticated
	}

	now := u.clock()
	note := entity.Note{
		ID:        "tmp-" + uuid.NewString(),
		UpdatedAt: now.UnixMilli(),
	}

	u.mu.Lock()
	u.notes = append([]entity.Note{note}, u.notes...)
	u.temporary[note.ID] = struct{}{}
	u.activeID = note.ID
	u.listVisible = false
	u.publishLocked()
	u.mu.Unlock()

	u.goStore(ctx, func(ctx context.Context) {
		created, err := u.store.InsertNote(ctx, u.session.OwnerID, note.Title, note.Content, now)
		if err != nil {
			slogx.Error(ctx, "failed to add note", slogx.NoteID(note.ID), slogx.Err(err))
			return
		}
		u.reconcileCreated(ctx, note.ID, created.ID)
	})

	return note, nil
}

// reconcileCreated swaps tempID for durableID in place, keeping position and fields.
func (u *Usecase) reconcileCreated(ctx context.Context, tempID, durableID string) {
	u.mu.Lock()
	defer u.mu.Unlock()

	delete(u.temporary, tempID)

	idx, ok := u.indexLocked(tempID)
	if !ok {
		u.stopSaveLocked(tempID)
		delete(u.deferred, tempID)
		return
	}

	notes := slices.Clone(u.notes)
	notes[idx].ID = durableID
	u.notes = notes

	if u.activeID == tempID {
		u.activeID = durableID
	}
	if u.deletion.pendingID == tempID {
		u.deletion.pendingID = durableID
	}
	if ps, ok := u.saves[tempID]; ok {
		delete(u.saves, tempID)
		ps.id = durableID
		u.saves[durableID] = ps
	}
	if patch, ok := u.deferred[tempID]; ok {
		delete(u.deferred, tempID)
		u.writeLocked(ctx, durableID, patch)
	}

	u.publishLocked()
}

// UpdateNote applies fields locally and (re)arms the debounced save for id.
func (u *Usecase) UpdateNote(ctx context.Context, id string, fields entity.NoteFields) error {
	now := u.clock()

	u.mu.Lock()
	defer u.mu.Unlock()

	err := u.mutateLocked(id, func(n entity.Note) entity.Note {
		n = fields.Apply(n)
		n.UpdatedAt = now.UnixMilli()
		return n
	})
	if err != nil {
		return err
	}

	patch := entity.PatchFromFields(fields, now)
	if prev, ok := u.saves[id]; ok {
		prev.timer.Stop()
		patch = prev.patch.Merge(patch)
	}

	ps := &pendingSave{id: id, patch: patch, ctx: context.WithoutCancel(ctx)}
	ps.timer = time.AfterFunc(u.debounce, func() { u.fireSave(ps) })
	u.saves[id] = ps

	u.publishLocked()
	return nil
}

func (u *Usecase) fireSave(ps *pendingSave) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.saves[ps.id] != ps {
		return
	}
	delete(u.saves, ps.id)

	patch := ps.patch
	patch.UpdatedAt = u.clock()
	u.writeLocked(ps.ctx, ps.id, patch)
}

// writeLocked sends patch for id, or parks it while id is still temporary.
func (u *Usecase) writeLocked(ctx context.Context, id string, patch entity.NotePatch) {
	if _, ok := u.temporary[id]; ok {
		u.deferred[id] = u.deferred[id].Merge(patch)
		return
	}

	u.goStore(ctx, func(ctx context.Context) {
		if err := u.store.UpdateNote(ctx, id, patch); err != nil {
			slogx.Error(ctx, "failed to update note", slogx.NoteID(id), slogx.Err(err))
		}
	})
}

func (u *Usecase) MoveToTrash(ctx context.Context, id string) error {
	return u.setDeleted(ctx, id, true)
}

func (u *Usecase) RestoreFromTrash(ctx context.Context, id string) error {
	return u.setDeleted(ctx, id, false)
}

func (u *Usecase) setDeleted(ctx context.Context, id string, deleted bool) error {
	now := u.clock()

	u.mu.Lock()
	defer u.mu.Unlock()

	err := u.mutateLocked(id, func(n entity.Note) entity.Note {
		n.IsDeleted = deleted
		n.UpdatedAt = now.UnixMilli()
		return n
	})
	if err != nil {
		return err
	}

	if deleted && u.activeID == id {
		u.activeID = ""
		u.listVisible = true
	}

	u.writeLocked(ctx, id, entity.NotePatch{IsDeleted: entity.Ptr(deleted), UpdatedAt: now})
	u.publishLocked()
	return nil
}

func (u *Usecase) SelectNote(id string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if _, ok := u.indexLocked(id); !ok {
		return entity.ErrNoteNotFound
	}

	u.activeID = id
	u.listVisible = false
	u.publishLocked()
	return nil
}

// ShowList returns a narrow layout to the note list without touching the selection.
func (u *Usecase) ShowList() {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.listVisible = true
	u.publishLocked()
}

func (u *Usecase) State() entity.State {
	u.mu.Lock()
	defer u.mu.Unlock()

	return u.snapshotLocked()
}

// Note returns the current copy of one note.
func (u *Usecase) Note(id string) (entity.Note, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	idx, ok := u.indexLocked(id)
	if !ok {
		return entity.Note{}, entity.ErrNoteNotFound
	}

	return u.notes[idx], nil
}

// Subscribe streams a snapshot after every state change until ctx is done.
func (u *Usecase) Subscribe(ctx context.Context) <-chan entity.State {
	stream := u.prop.Observe()

	result := make(chan entity.State)
	go func() {
		defer close(result)
		for {
			select {
			case <-ctx.Done():
				return

			case <-stream.Changes():
				state := stream.Next().(entity.State)

				select {
				case <-ctx.Done():
					return
				case result <- state:
				}
			}
		}
	}()

	return result
}

// Flush fires every pending save immediately and waits for in-flight store calls.
func (u *Usecase) Flush(ctx context.Context) error {
	u.mu.Lock()
	pending := make([]*pendingSave, 0, len(u.saves))
	for _, ps := range u.saves {
		pending = append(pending, ps)
	}
	u.mu.Unlock()

	for _, ps := range pending {
		if ps.timer.Stop() {
			u.fireSave(ps)
		}
	}

	done := make(chan struct{})
	go func() {
		u.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("flush notes: %w", ctx.Err())
	case <-done:
		return nil
	}
}

// Wait blocks until every store call issued so far has completed.
func (u *Usecase) Wait() {
	u.inflight.Wait()
}

// dropOrphanSavesLocked cancels pending saves of temporary ids and of notes
// missing from the collection.
func (u *Usecase) dropOrphanSavesLocked() {
	for id := range u.saves {
		_, tmp := u.temporary[id]
		if _, ok := u.indexLocked(id); tmp || !ok {
			u.stopSaveLocked(id)
		}
	}
}

func (u *Usecase) stopSaveLocked(id string) {
	if ps, ok := u.saves[id]; ok {
		ps.timer.Stop()
		delete(u.saves, id)
	}
}

func (u *Usecase) mutateLocked(id string, f func(entity.Note) entity.Note) error {
	idx, ok := u.indexLocked(id)
	if !ok {
		return entity.ErrNoteNotFound
	}

	notes := slices.Clone(u.notes)
	notes[idx] = f(notes[idx])
	u.notes = notes

	return nil
}

func (u *Usecase) indexLocked(id string) (int, bool) {
	if id == "" {
		return 0, false
	}

	idx := slices.IndexFunc(u.notes, func(n entity.Note) bool { return n.ID == id })
	return idx, idx >= 0
}

func (u *Usecase) snapshotLocked() entity.State {
	return entity.State{
		Notes:         slices.Clone(u.notes),
		ActiveID:      u.activeID,
		ListVisible:   u.listVisible,
		PendingDelete: u.deletion.pendingID,
		Deleting:      u.deletion.inFlight,
	}
}

func (u *Usecase) publishLocked() {
	u.prop.Update(u.snapshotLocked())
}

// goStore runs f on its own goroutine, detached from the caller's cancellation.
func (u *Usecase) goStore(ctx context.Context, f func(context.Context)) {
	ctx = context.WithoutCancel(ctx)

	u.inflight.Add(1)
	go func() {
		defer u.inflight.Done()

		ctx, cancel := u.storeContext(ctx)
		defer cancel()

		f(ctx)
	}()
}

func (u *Usecase) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if u.storeTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, u.storeTimeout)
}

type logNotifier struct{}

func (logNotifier) Alert(ctx context.Context, msg string) {
	slogx.Warn(ctx, "user alert", slog.String("alert", msg))
}
