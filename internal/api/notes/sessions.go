package notes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/evgeniy-krivenko/notepad/internal/entity"
	"github.com/evgeniy-krivenko/notepad/internal/usecase/assist"
	notesuc "github.com/evgeniy-krivenko/notepad/internal/usecase/notes"
	"github.com/evgeniy-krivenko/notepad/internal/view"
	"github.com/evgeniy-krivenko/notepad/pkg/logger/slogx"
)

// EngineFactory builds the note engine of one owner.
type EngineFactory func(s entity.Session, n *Alerts) (*notesuc.Usecase, error)

// Alerts collects user-visible failures until the client reads them.
type Alerts struct {
	owner string

	mu   sync.Mutex
	msgs []string
}

func (a *Alerts) Alert(ctx context.Context, msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	slogx.Warn(ctx, "user alert queued", slogx.UserId(a.owner), slog.String("alert", msg))
	a.msgs = append(a.msgs, msg)
}

func (a *Alerts) Drain() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	msgs := a.msgs
	a.msgs = nil
	return msgs
}

type session struct {
	engine *notesuc.Usecase
	assist *assist.Usecase
	alerts *Alerts

	loadOnce sync.Once

	mu    sync.Mutex
	query view.Query
}

// load fills the engine on first use. A failed load still opens the session
// with an empty collection.
func (s *session) load(ctx context.Context) {
	s.loadOnce.Do(func() {
		err := s.engine.Load(ctx)
		if err != nil && !errors.Is(err, entity.ErrUnauthenticated) {
			s.alerts.Alert(ctx, "Failed to load notes. Reload to try again.")
		}
	})
}

func (s *session) Query() view.Query {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.query
}

func (s *session) SetQuery(q view.Query) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.query = q
}

type Sessions struct {
	factory   EngineFactory
	completer assist.Completer

	mu      sync.Mutex
	byOwner map[string]*session
}

func NewSessions(factory EngineFactory, completer assist.Completer) *Sessions {
	return &Sessions{
		factory:   factory,
		completer: completer,
		byOwner:   make(map[string]*session),
	}
}

// get returns the owner's session, loading its notes on first use outside the
// registry lock.
func (s *Sessions) get(ctx context.Context, es entity.Session) (*session, error) {
	sess, err := s.lookup(es)
	if err != nil {
		return nil, err
	}

	sess.load(ctx)
	return sess, nil
}

func (s *Sessions) lookup(es entity.Session) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.byOwner[es.OwnerID]; ok {
		return sess, nil
	}

	alerts := &Alerts{owner: es.OwnerID}
	engine, err := s.factory(es, alerts)
	if err != nil {
		return nil, fmt.Errorf("create notes engine: %w", err)
	}

	sess := &session{
		engine: engine,
		alerts: alerts,
		query:  view.Query{Mode: entity.ViewActive, Sort: view.SortUpdated},
	}
	if s.completer != nil {
		sess.assist = assist.New(s.completer, engine, alerts)
	}

	s.byOwner[es.OwnerID] = sess
	return sess, nil
}

// Flush persists every pending edit of every session.
func (s *Sessions) Flush(ctx context.Context) error {
	s.mu.Lock()
	sessions := make([]*session, 0, len(s.byOwner))
	for _, sess := range s.byOwner {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	var errs []error
	for _, sess := range sessions {
		if err := sess.engine.Flush(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
