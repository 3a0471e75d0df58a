// Package session keeps one ledger per browser session. Ledgers live in an LRU
// with sliding expiration: an idle session is dropped after its TTL and the least
// recently used one goes first when the store is full.
package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"listrik/internal/cache"
	"listrik/internal/core"
	"listrik/internal/log"
)

type ctxKey struct{}

type Options struct {
	MaxSessions int
	TTL         time.Duration
	CookieName  string
	// NewLedger builds the ledger handed to a new session, normally a seeded one.
	NewLedger func() (*core.Ledger, error)
	// OnEnd runs after a session leaves the store for any reason.
	OnEnd  func(id string)
	Logger *log.Logger
}

type Store struct {
	ledgers    *cache.LRUCache[*core.Ledger]
	newLedger  func() (*core.Ledger, error)
	cookieName string
	ttl        time.Duration
	logger     *log.Logger
}

func NewStore(opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentSession)

	newLedger := opts.NewLedger
	if newLedger == nil {
		newLedger = func() (*core.Ledger, error) { return core.NewLedger(), nil }
	}
	cookie := opts.CookieName
	if cookie == "" {
		cookie = "listrik_session"
	}

	s := &Store{
		newLedger:  newLedger,
		cookieName: cookie,
		ttl:        opts.TTL,
		logger:     logger,
	}
	s.ledgers = cache.NewLRUCache[*core.Ledger](opts.MaxSessions, opts.TTL,
		cache.WithSlidingExpiration[*core.Ledger](),
		cache.WithOnEvict(func(id string, _ *core.Ledger, reason cache.EvictReason) {
			logger.Debug("Session dropped", log.FieldSessionID, id, "reason", string(reason))
			if opts.OnEnd != nil {
				opts.OnEnd(id)
			}
		}),
	)
	return s
}

// Get returns the live ledger of a session.
func (s *Store) Get(id string) (*core.Ledger, bool) {
	return s.ledgers.Get(id)
}

// Resolve returns the ledger of an existing session, or starts a new session
// when id is empty, malformed or expired. The returned id is the one to hand
// back to the client.
func (s *Store) Resolve(id string) (string, *core.Ledger, bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	l, created, err := s.ledgers.GetOrCreate(id, s.newLedger)
	if err != nil {
		return "", nil, false, fmt.Errorf("create session ledger: %w", err)
	}
	if created {
		s.logger.Debug("Session started", log.FieldSessionID, id)
	}
	return id, l, created, nil
}

// Drop ends a session.
func (s *Store) Drop(id string) {
	s.ledgers.Delete(id)
}

func (s *Store) Count() int {
	return s.ledgers.Size()
}

// CleanExpired lets a cache.Manager sweep idle sessions.
func (s *Store) CleanExpired() int {
	return s.ledgers.CleanExpired()
}

// Middleware attaches the caller's ledger to the request context and refreshes
// the session cookie.
func (s *Store) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var current string
		if c, err := r.Cookie(s.cookieName); err == nil {
			current = c.Value
		}

		id, ledger, _, err := s.Resolve(current)
		if err != nil {
			log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to resolve session", log.FieldError, err)
			http.Error(w, "Session unavailable", http.StatusInternalServerError)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     s.cookieName,
			Value:    id,
			Path:     "/",
			MaxAge:   int(s.ttl.Seconds()),
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})

		ctx := WithLedger(r.Context(), id, ledger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type entry struct {
	id     string
	ledger *core.Ledger
}

// WithLedger stores a session ledger in ctx.
func WithLedger(ctx context.Context, id string, l *core.Ledger) context.Context {
	return context.WithValue(ctx, ctxKey{}, entry{id: id, ledger: l})
}

// FromContext returns the session id and ledger put there by Middleware.
func FromContext(ctx context.Context) (string, *core.Ledger, bool) {
	e, ok := ctx.Value(ctxKey{}).(entry)
	if !ok || e.ledger == nil {
		return "", nil, false
	}
	return e.id, e.ledger, true
}
