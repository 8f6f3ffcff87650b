package notes

import (
	"context"
	"fmt"
	"slices"

	"github.com/evgeniy-krivenko/notepad/internal/entity"
	"github.com/evgeniy-krivenko/notepad/pkg/logger/slogx"
)

const deleteFailedAlert = "Failed to delete the note permanently. Check your connection or permissions."

// deletion is idle when pendingID is empty, otherwise awaiting confirmation
// of pendingID. inFlight is set while the store delete runs.
type deletion struct {
	pendingID string
	inFlight  bool
}

// RequestPermanentDelete records the intent only; nothing changes until confirmed.
func (u *Usecase) RequestPermanentDelete(id string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.deletion.inFlight {
		return entity.ErrDeleteInProgress
	}
	if _, ok := u.indexLocked(id); !ok {
		return entity.ErrNoteNotFound
	}

	u.deletion.pendingID = id
	u.publishLocked()
	return nil
}

func (u *Usecase) CancelPermanentDelete() {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.deletion.inFlight {
		return
	}

	u.deletion.pendingID = ""
	u.publishLocked()
}

// ConfirmPermanentDelete deletes the pending note from the store and, only
// after the store succeeds, from memory. On failure the note is kept, the
// confirmation is closed and the notifier is alerted.
func (u *Usecase) ConfirmPermanentDelete(ctx context.Context) error {
	u.mu.Lock()
	if u.deletion.inFlight {
		u.mu.Unlock()
		return entity.ErrDeleteInProgress
	}

	id := u.deletion.pendingID
	if id == "" {
		u.mu.Unlock()
		return entity.ErrNoPendingDelete
	}

	if _, ok := u.temporary[id]; ok {
		u.deletion = deletion{}
		u.publishLocked()
		u.mu.Unlock()

		u.notifier.Alert(ctx, deleteFailedAlert)
		return fmt.Errorf("usecase permanent delete %s: %w", id, entity.ErrNoteNotPersisted)
	}

	// A save firing after the delete must not touch the row again.
	u.stopSaveLocked(id)
	delete(u.deferred, id)

	u.deletion.inFlight = true
	u.publishLocked()
	u.mu.Unlock()

	storeCtx, cancel := u.storeContext(ctx)
	err := u.store.DeleteNote(storeCtx, id)
	cancel()

	u.mu.Lock()
	u.deletion = deletion{}

	if err != nil {
		u.publishLocked()
		u.mu.Unlock()

		slogx.Error(ctx, "failed to delete note", slogx.NoteID(id), slogx.Err(err))
		u.notifier.Alert(ctx, deleteFailedAlert)
		return fmt.Errorf("usecase permanent delete %s: %w", id, err)
	}

	u.notes = slices.DeleteFunc(slices.Clone(u.notes), func(n entity.Note) bool { return n.ID == id })
	if u.activeID == id {
		u.activeID = ""
		u.listVisible = true
	}
	u.publishLocked()
	u.mu.Unlock()

	slogx.Info(ctx, "note deleted permanently", slogx.NoteID(id))
	return nil
}
