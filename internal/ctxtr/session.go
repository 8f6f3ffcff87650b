package ctxtr

import (
	"context"
	"net/http"
	"strings"

	"github.com/evgeniy-krivenko/notepad/internal/entity"
)

type ctxKey string

const SessionKey ctxKey = "session"

const (
	UserIDHeader        = "X-User-ID"
	AuthorizationHeader = "Authorization"
)

func WithSession(ctx context.Context, s entity.Session) context.Context {
	return context.WithValue(ctx, SessionKey, s)
}

func Session(ctx context.Context) (entity.Session, error) {
	s, ok := ctx.Value(SessionKey).(entity.Session)
	if !ok || !s.Authenticated() {
		return entity.Session{}, entity.ErrUnauthenticated
	}

	return s, nil
}

// SessionMiddleware trusts the owner id set by the identity provider in front
// of the service and rejects requests without one.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerID := strings.TrimSpace(r.Header.Get(UserIDHeader))
		if ownerID == "" {
			http.Error(w, entity.ErrUnauthenticated.Error(), http.StatusUnauthorized)
			return
		}

		s := entity.Session{
			OwnerID: ownerID,
			Token:   strings.TrimPrefix(r.Header.Get(AuthorizationHeader), "Bearer "),
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}
