package notes_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evgeniy-krivenko/notepad/internal/entity"
	"github.com/evgeniy-krivenko/notepad/internal/usecase/notes"
	"github.com/evgeniy-krivenko/notepad/internal/view"
)

const (
	testDebounce = 30 * time.Millisecond
	waitFor      = time.Second
	tick         = 5 * time.Millisecond
)

var errStore = errors.New("store unavailable")

var owner = entity.Session{OwnerID: "owner-1"}

func newUsecase(t *testing.T, store *fakeStore, opts ...notes.OptOptionsSetter) (*notes.Usecase, *fakeNotifier) {
	t.Helper()

	n := &fakeNotifier{}
	opts = append([]notes.OptOptionsSetter{
		notes.WithDebounce(testDebounce),
		notes.WithNotifier(n),
	}, opts...)

	u, err := notes.New(notes.NewOptions(store, owner, opts...))
	require.NoError(t, err)
	t.Cleanup(u.Wait)

	return u, n
}

// addPersisted creates a note and waits for its durable id.
func addPersisted(t *testing.T, u *notes.Usecase) string {
	t.Helper()

	tmp, err := u.AddNote(context.Background())
	require.NoError(t, err)

	u.Wait()
	st := u.State()
	require.NotEqual(t, tmp.ID, st.ActiveID)

	return st.ActiveID
}

func TestNew_RequiresStore(t *testing.T) {
	_, err := notes.New(notes.NewOptions(nil, owner))
	assert.Error(t, err)
}

func TestUsecase_Load(t *testing.T) {
	t.Run("populates collection in store order", func(t *testing.T) {
		store := &fakeStore{listed: []entity.Note{
			{ID: "d2", Title: "b", UpdatedAt: 200},
			{ID: "d1", Title: "a", UpdatedAt: 100, IsDeleted: true},
		}}
		u, _ := newUsecase(t, store)

		require.NoError(t, u.Load(context.Background()))

		st := u.State()
		assert.Equal(t, store.listed, st.Notes)
		assert.True(t, st.ListVisible)
	})

	t.Run("failure leaves collection empty", func(t *testing.T) {
		store := &fakeStore{listErr: errStore}
		u, _ := newUsecase(t, store)

		err := u.Load(context.Background())
		require.ErrorIs(t, err, errStore)
		assert.Empty(t, u.State().Notes)
	})

	t.Run("requires an owner", func(t *testing.T) {
		u, err := notes.New(notes.NewOptions(&fakeStore{}, entity.Session{}))
		require.NoError(t, err)

		assert.ErrorIs(t, u.Load(context.Background()), entity.ErrUnauthenticated)
	})
}

func TestUsecase_AddNote_TemporaryIDReplaced(t *testing.T) {
	gate := make(chan struct{})
	store := &fakeStore{
		listed:     []entity.Note{{ID: "old", Title: "existing", UpdatedAt: 1}},
		insertGate: gate,
		durableIDs: []string{"d1"},
	}
	u, _ := newUsecase(t, store)
	require.NoError(t, u.Load(context.Background()))

	note, err := u.AddNote(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(note.ID, "tmp-"))

	// Visible and selected before the store answers.
	st := u.State()
	require.Len(t, st.Notes, 2)
	assert.Equal(t, note.ID, st.Notes[0].ID)
	assert.Equal(t, note.ID, st.ActiveID)
	assert.False(t, st.Notes[0].IsDeleted)
	assert.Empty(t, st.Notes[0].Title)
	assert.NotZero(t, st.Notes[0].UpdatedAt)

	close(gate)
	u.Wait()

	st = u.State()
	require.Len(t, st.Notes, 2)
	assert.Equal(t, "d1", st.Notes[0].ID)
	assert.Equal(t, note.UpdatedAt, st.Notes[0].UpdatedAt)
	assert.Equal(t, "old", st.Notes[1].ID)
	assert.Equal(t, "d1", st.ActiveID)
	_, ok := st.Note(note.ID)
	assert.False(t, ok, "temporary id must be gone")
}

func TestUsecase_AddNote_InsertFailureKeepsOptimisticNote(t *testing.T) {
	store := &fakeStore{insertErr: errStore}
	u, _ := newUsecase(t, store)

	note, err := u.AddNote(context.Background())
	require.NoError(t, err)
	u.Wait()

	st := u.State()
	require.Len(t, st.Notes, 1)
	assert.Equal(t, note.ID, st.Notes[0].ID)

	// Edits stay local: the temporary id is never sent to the store.
	require.NoError(t, u.UpdateNote(context.Background(), note.ID, entity.NoteFields{Title: entity.Ptr("draft")}))
	time.Sleep(3 * testDebounce)
	u.Wait()

	assert.Empty(t, store.Updates())
	got, err := u.Note(note.ID)
	require.NoError(t, err)
	assert.Equal(t, "draft", got.Title)
}

func TestUsecase_AddNote_Unauthenticated(t *testing.T) {
	store := &fakeStore{}
	u, err := notes.New(notes.NewOptions(store, entity.Session{}))
	require.NoError(t, err)

	_, err = u.AddNote(context.Background())
	require.ErrorIs(t, err, entity.ErrUnauthenticated)
	assert.Empty(t, u.State().Notes)
	assert.Zero(t, store.Inserts())
}

func TestUsecase_Load_DropsPendingSavesOfTemporaryNotes(t *testing.T) {
	store := &fakeStore{insertErr: errStore, listed: []entity.Note{{ID: "d1", Title: "kept", UpdatedAt: 100}}}
	u, _ := newUsecase(t, store, notes.WithDebounce(100*time.Millisecond))

	note, err := u.AddNote(context.Background())
	require.NoError(t, err)
	u.Wait()

	require.NoError(t, u.UpdateNote(context.Background(), note.ID, entity.NoteFields{Title: entity.Ptr("x")}))
	require.NoError(t, u.Load(context.Background()))

	time.Sleep(300 * time.Millisecond)
	u.Wait()

	assert.Empty(t, store.Updates())
	assert.Equal(t, store.listed, u.State().Notes)
}

func TestUsecase_Load_KeepsPendingSavesOfReloadedNotes(t *testing.T) {
	store := &fakeStore{listed: []entity.Note{{ID: "d1", Title: "a", UpdatedAt: 100}}}
	u, _ := newUsecase(t, store, notes.WithDebounce(100*time.Millisecond))
	require.NoError(t, u.Load(context.Background()))

	require.NoError(t, u.UpdateNote(context.Background(), "d1", entity.NoteFields{Title: entity.Ptr("b")}))
	require.NoError(t, u.Load(context.Background()))

	require.Eventually(t, func() bool { return len(store.Updates()) == 1 }, waitFor, tick)
	assert.Equal(t, "d1", store.Updates()[0].ID)
}

func TestUsecase_InsertAfterReload_DoesNotWrite(t *testing.T) {
	gate := make(chan struct{})
	store := &fakeStore{insertGate: gate, durableIDs: []string{"d9"}, listed: []entity.Note{{ID: "d1", UpdatedAt: 100}}}
	u, _ := newUsecase(t, store, notes.WithDebounce(100*time.Millisecond))

	note, err := u.AddNote(context.Background())
	require.NoError(t, err)
	require.NoError(t, u.UpdateNote(context.Background(), note.ID, entity.NoteFields{Content: entity.Ptr("lost")}))
	require.NoError(t, u.MoveToTrash(context.Background(), note.ID))
	require.NoError(t, u.Load(context.Background()))

	close(gate)
	u.Wait()
	time.Sleep(300 * time.Millisecond)
	u.Wait()

	assert.Empty(t, store.Updates())
	for _, n := range u.State().Notes {
		assert.NotEqual(t, "d9", n.ID)
		assert.False(t, strings.HasPrefix(n.ID, "tmp-"))
	}
}

func TestUsecase_EditBeforeDurableID(t *testing.T) {
	gate := make(chan struct{})
	store := &fakeStore{insertGate: gate, durableIDs: []string{"d1"}}
	u, _ := newUsecase(t, store)

	note, err := u.AddNote(context.Background())
	require.NoError(t, err)
	require.NoError(t, u.UpdateNote(context.Background(), note.ID, entity.NoteFields{Content: entity.Ptr("hello")}))
	require.NoError(t, u.MoveToTrash(context.Background(), note.ID))

	// The debounced save fires while the id is still temporary.
	time.Sleep(3 * testDebounce)
	assert.Empty(t, store.Updates())

	close(gate)
	u.Wait()

	updates := store.Updates()
	require.Len(t, updates, 1)
	assert.Equal(t, "d1", updates[0].ID)
	require.NotNil(t, updates[0].Patch.Content)
	assert.Equal(t, "hello", *updates[0].Patch.Content)
	require.NotNil(t, updates[0].Patch.IsDeleted)
	assert.True(t, *updates[0].Patch.IsDeleted)
	assert.Nil(t, updates[0].Patch.Title)
}

func TestUsecase_PendingSaveFollowsDurableID(t *testing.T) {
	gate := make(chan struct{})
	store := &fakeStore{insertGate: gate, durableIDs: []string{"d1"}}
	u, _ := newUsecase(t, store, notes.WithDebounce(200*time.Millisecond))

	note, err := u.AddNote(context.Background())
	require.NoError(t, err)
	require.NoError(t, u.UpdateNote(context.Background(), note.ID, entity.NoteFields{Title: entity.Ptr("t")}))

	close(gate)
	u.Wait()
	assert.Empty(t, store.Updates(), "timer still pending")

	require.Eventually(t, func() bool { return len(store.Updates()) == 1 }, waitFor, tick)
	assert.Equal(t, "d1", store.Updates()[0].ID)
}

func TestUsecase_UpdateNote_DebounceCoalescing(t *testing.T) {
	store := &fakeStore{}
	u, _ := newUsecase(t, store, notes.WithDebounce(100*time.Millisecond))
	id := addPersisted(t, u)

	for _, title := range []string{"S", "Sh", "Sho", "Shop", "Shopping"} {
		require.NoError(t, u.UpdateNote(context.Background(), id, entity.NoteFields{Title: entity.Ptr(title)}))
	}

	got, err := u.Note(id)
	require.NoError(t, err)
	assert.Equal(t, "Shopping", got.Title, "local state is updated immediately")
	assert.Empty(t, store.Updates())

	require.Eventually(t, func() bool { return len(store.Updates()) == 1 }, waitFor, tick)
	time.Sleep(200 * time.Millisecond)

	updates := store.Updates()
	require.Len(t, updates, 1)
	assert.Equal(t, id, updates[0].ID)
	require.NotNil(t, updates[0].Patch.Title)
	assert.Equal(t, "Shopping", *updates[0].Patch.Title)
	assert.Nil(t, updates[0].Patch.Content)
	assert.Nil(t, updates[0].Patch.IsDeleted)
	assert.False(t, updates[0].Patch.UpdatedAt.IsZero())
}

func TestUsecase_UpdateNote_FieldsTouchedInWindowAreKept(t *testing.T) {
	store := &fakeStore{}
	u, _ := newUsecase(t, store)
	id := addPersisted(t, u)

	require.NoError(t, u.UpdateNote(context.Background(), id, entity.NoteFields{Title: entity.Ptr("title")}))
	require.NoError(t, u.UpdateNote(context.Background(), id, entity.NoteFields{Content: entity.Ptr("body")}))

	require.Eventually(t, func() bool { return len(store.Updates()) == 1 }, waitFor, tick)

	patch := store.Updates()[0].Patch
	require.NotNil(t, patch.Title)
	require.NotNil(t, patch.Content)
	assert.Equal(t, "title", *patch.Title)
	assert.Equal(t, "body", *patch.Content)
}

func TestUsecase_UpdateNote_IndependentNotes(t *testing.T) {
	store := &fakeStore{}
	u, _ := newUsecase(t, store)
	first := addPersisted(t, u)
	second := addPersisted(t, u)

	require.NoError(t, u.UpdateNote(context.Background(), first, entity.NoteFields{Title: entity.Ptr("a")}))
	require.NoError(t, u.UpdateNote(context.Background(), second, entity.NoteFields{Title: entity.Ptr("b")}))

	require.Eventually(t, func() bool { return len(store.Updates()) == 2 }, waitFor, tick)

	byID := map[string]string{}
	for _, c := range store.Updates() {
		byID[c.ID] = *c.Patch.Title
	}
	assert.Equal(t, map[string]string{first: "a", second: "b"}, byID)
}

func TestUsecase_UpdateNote_FailureKeepsLocalState(t *testing.T) {
	store := &fakeStore{updateErr: errStore}
	u, _ := newUsecase(t, store)
	id := addPersisted(t, u)

	require.NoError(t, u.UpdateNote(context.Background(), id, entity.NoteFields{Content: entity.Ptr("kept")}))
	require.Eventually(t, func() bool { return len(store.Updates()) == 1 }, waitFor, tick)
	u.Wait()

	got, err := u.Note(id)
	require.NoError(t, err)
	assert.Equal(t, "kept", got.Content)
}

func TestUsecase_UpdateNote_UnknownID(t *testing.T) {
	store := &fakeStore{}
	u, _ := newUsecase(t, store)

	err := u.UpdateNote(context.Background(), "missing", entity.NoteFields{Title: entity.Ptr("x")})
	require.ErrorIs(t, err, entity.ErrNoteNotFound)

	time.Sleep(3 * testDebounce)
	assert.Empty(t, store.Updates())
}

func TestUsecase_UpdateNote_SaveSurvivesNavigation(t *testing.T) {
	store := &fakeStore{}
	u, _ := newUsecase(t, store)
	first := addPersisted(t, u)
	second := addPersisted(t, u)

	require.NoError(t, u.SelectNote(first))
	require.NoError(t, u.UpdateNote(context.Background(), first, entity.NoteFields{Title: entity.Ptr("a")}))
	require.NoError(t, u.SelectNote(second))
	u.ShowList()

	require.Eventually(t, func() bool { return len(store.Updates()) == 1 }, waitFor, tick)
	assert.Equal(t, first, store.Updates()[0].ID)
}

func TestUsecase_TrashAndRestore(t *testing.T) {
	store := &fakeStore{}
	u, _ := newUsecase(t, store)
	id := addPersisted(t, u)
	before, err := u.Note(id)
	require.NoError(t, err)

	time.Sleep(2 * time.Millisecond)
	require.NoError(t, u.MoveToTrash(context.Background(), id))
	u.Wait()

	st := u.State()
	trashed, _ := st.Note(id)
	assert.True(t, trashed.IsDeleted)
	assert.Greater(t, trashed.UpdatedAt, before.UpdatedAt)
	assert.Empty(t, st.ActiveID, "trashing the active note clears selection")
	assert.True(t, st.ListVisible)
	assert.Empty(t, view.Project(st.Notes, view.Query{Mode: entity.ViewActive}))
	assert.Len(t, view.Project(st.Notes, view.Query{Mode: entity.ViewTrash}), 1)

	require.NoError(t, u.RestoreFromTrash(context.Background(), id))
	u.Wait()

	st = u.State()
	restored, _ := st.Note(id)
	assert.False(t, restored.IsDeleted)
	assert.Len(t, view.Project(st.Notes, view.Query{Mode: entity.ViewActive}), 1)

	updates := store.Updates()
	require.Len(t, updates, 2)
	assert.True(t, *updates[0].Patch.IsDeleted)
	assert.False(t, *updates[1].Patch.IsDeleted)
	assert.Nil(t, updates[0].Patch.Title)

	assert.ErrorIs(t, u.MoveToTrash(context.Background(), "missing"), entity.ErrNoteNotFound)
}

func TestUsecase_TrashFailureIsNotRolledBack(t *testing.T) {
	store := &fakeStore{updateErr: errStore}
	u, _ := newUsecase(t, store)
	id := addPersisted(t, u)

	require.NoError(t, u.MoveToTrash(context.Background(), id))
	u.Wait()

	n, err := u.Note(id)
	require.NoError(t, err)
	assert.True(t, n.IsDeleted)
}

func TestUsecase_TrashOtherNoteKeepsSelection(t *testing.T) {
	store := &fakeStore{}
	u, _ := newUsecase(t, store)
	first := addPersisted(t, u)
	second := addPersisted(t, u)

	require.NoError(t, u.MoveToTrash(context.Background(), first))

	assert.Equal(t, second, u.State().ActiveID)
}

func TestUsecase_SelectNote(t *testing.T) {
	store := &fakeStore{listed: []entity.Note{{ID: "d1"}}}
	u, _ := newUsecase(t, store)
	require.NoError(t, u.Load(context.Background()))

	require.NoError(t, u.SelectNote("d1"))
	st := u.State()
	assert.Equal(t, "d1", st.ActiveID)
	assert.False(t, st.ListVisible)

	u.ShowList()
	st = u.State()
	assert.Equal(t, "d1", st.ActiveID)
	assert.True(t, st.ListVisible)

	assert.ErrorIs(t, u.SelectNote("nope"), entity.ErrNoteNotFound)
}

func TestUsecase_Subscribe(t *testing.T) {
	store := &fakeStore{listed: []entity.Note{{ID: "d1"}}}
	u, _ := newUsecase(t, store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	states := u.Subscribe(ctx)
	require.NoError(t, u.Load(context.Background()))

	select {
	case st := <-states:
		require.Len(t, st.Notes, 1)
		assert.Equal(t, "d1", st.Notes[0].ID)
	case <-time.After(waitFor):
		t.Fatal("no state published")
	}

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-states:
			return !ok
		default:
			return false
		}
	}, waitFor, tick)
}

func TestUsecase_Flush(t *testing.T) {
	store := &fakeStore{}
	u, _ := newUsecase(t, store, notes.WithDebounce(time.Hour))
	id := addPersisted(t, u)

	require.NoError(t, u.UpdateNote(context.Background(), id, entity.NoteFields{Content: entity.Ptr("bye")}))
	require.NoError(t, u.Flush(context.Background()))

	updates := store.Updates()
	require.Len(t, updates, 1)
	assert.Equal(t, "bye", *updates[0].Patch.Content)
}

func TestUsecase_SnapshotsDoNotAlias(t *testing.T) {
	store := &fakeStore{listed: []entity.Note{{ID: "d1", Title: "a"}}}
	u, _ := newUsecase(t, store)
	require.NoError(t, u.Load(context.Background()))

	st := u.State()
	st.Notes[0].Title = "mutated"

	n, err := u.Note("d1")
	require.NoError(t, err)
	assert.Equal(t, "a", n.Title)
}
