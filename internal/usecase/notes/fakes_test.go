package notes_test

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/evgeniy-krivenko/notepad/internal/entity"
)

type updateCall struct {
	ID    string
	Patch entity.NotePatch
}

type fakeStore struct {
	mu sync.Mutex

	listed    []entity.Note
	listErr   error
	insertErr error
	updateErr error
	deleteErr error

	// insertGate blocks InsertNote until closed when set.
	insertGate chan struct{}
	nextID     int
	durableIDs []string

	inserts int
	updates []updateCall
	deletes []string
}

func (s *fakeStore) ListNotes(_ context.Context, _ string) ([]entity.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listErr != nil {
		return nil, s.listErr
	}
	return slices.Clone(s.listed), nil
}

func (s *fakeStore) InsertNote(ctx context.Context, _ string, title, content string, updatedAt time.Time) (entity.Note, error) {
	s.mu.Lock()
	gate := s.insertGate
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return entity.Note{}, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.inserts++
	if s.insertErr != nil {
		return entity.Note{}, s.insertErr
	}

	id := fmt.Sprintf("d%d", s.nextID+1)
	if s.nextID < len(s.durableIDs) {
		id = s.durableIDs[s.nextID]
	}
	s.nextID++

	return entity.Note{ID: id, Title: title, Content: content, UpdatedAt: updatedAt.UnixMilli()}, nil
}

func (s *fakeStore) UpdateNote(_ context.Context, id string, patch entity.NotePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.updates = append(s.updates, updateCall{ID: id, Patch: patch})
	return s.updateErr
}

func (s *fakeStore) DeleteNote(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deletes = append(s.deletes, id)
	return s.deleteErr
}

func (s *fakeStore) Updates() []updateCall {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.updates)
}

func (s *fakeStore) Deletes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.deletes)
}

func (s *fakeStore) Inserts() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.inserts
}

type fakeNotifier struct {
	mu     sync.Mutex
	alerts []string
}

func (n *fakeNotifier) Alert(_ context.Context, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.alerts = append(n.alerts, msg)
}

func (n *fakeNotifier) Alerts() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	return slices.Clone(n.alerts)
}
