package architecturecreator

import (
	"context"
	"sync"
	"time"

	apperrors "solution-creator/internal/common/errors"
	"solution-creator/internal/common/logger"
	"solution-creator/internal/models"

	"github.com/google/uuid"
)

type sessionEntry struct {
	session    *models.WidgetSession
	controller *Controller
}

// DefaultMaxSessions bounds a registry built without WithMaxSessions.
const DefaultMaxSessions = 10000

// ControllerFactory builds the controller for a new session.
type ControllerFactory func(sessionID string) *Controller

// SessionOption configures a SessionRegistry.
type SessionOption func(*SessionRegistry)

// WithMaxSessions caps the number of live sessions. Zero means no cap.
func WithMaxSessions(n int) SessionOption {
	return func(r *SessionRegistry) { r.maxSessions = n }
}

// SessionRegistry keeps one controller per browser session in memory.
type SessionRegistry struct {
	mu          sync.Mutex
	entries     map[string]*sessionEntry
	ttl         time.Duration
	maxSessions int
	factory     ControllerFactory
	logger      logger.Logger
	now         func() time.Time
}

func NewSessionRegistry(ttl time.Duration, factory ControllerFactory, log logger.Logger, opts ...SessionOption) *SessionRegistry {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	r := &SessionRegistry{
		entries:     make(map[string]*sessionEntry),
		ttl:         ttl,
		maxSessions: DefaultMaxSessions,
		factory:     factory,
		logger:      log,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Lookup returns the live controller for id and refreshes its session. It
// never creates a session.
func (r *SessionRegistry) Lookup(id string) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.liveLocked(id, r.now())
	if e == nil {
		return nil, false
	}
	return e.controller, true
}

// Get returns the controller for id, creating a fresh session when id is
// empty, unknown or expired. The returned id may differ from the argument.
// Creating fails with SESSION_LIMIT_REACHED once the cap is hit and no
// expired session can be dropped.
func (r *SessionRegistry) Get(id string) (string, *Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if e := r.liveLocked(id, now); e != nil {
		return id, e.controller, nil
	}

	if r.maxSessions > 0 && len(r.entries) >= r.maxSessions {
		r.evictLocked(now)
		if len(r.entries) >= r.maxSessions {
			r.logger.Warn("session limit reached", map[string]interface{}{"limit": r.maxSessions})
			return "", nil, apperrors.NewSessionLimitError(r.maxSessions)
		}
	}

	newID := uuid.NewString()
	r.entries[newID] = &sessionEntry{
		session:    models.NewWidgetSession(newID, r.ttl, now),
		controller: r.factory(newID),
	}
	r.logger.Debug("session created", map[string]interface{}{"sessionId": newID})
	return newID, r.entries[newID].controller, nil
}

// liveLocked returns the entry for id if it is usable, touching it. An expired
// idle entry is dropped. Pending entries outlive their TTL.
func (r *SessionRegistry) liveLocked(id string, now time.Time) *sessionEntry {
	if id == "" {
		return nil
	}
	e, ok := r.entries[id]
	if !ok {
		return nil
	}
	if e.session.IsExpired(now) && !e.controller.State().Pending() {
		delete(r.entries, id)
		return nil
	}
	e.session.UpdateActivity(r.ttl, now)
	return e
}

// Len reports the number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Evict removes expired sessions that are not mid-submission and returns how
// many were removed.
func (r *SessionRegistry) Evict() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.evictLocked(r.now())
}

func (r *SessionRegistry) evictLocked(now time.Time) int {
	removed := 0
	for id, e := range r.entries {
		if e.session.IsExpired(now) && !e.controller.State().Pending() {
			delete(r.entries, id)
			removed++
		}
	}
	return removed
}

// Run evicts expired sessions every interval until ctx is done.
func (r *SessionRegistry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Evict(); n > 0 {
				r.logger.Debug("sessions evicted", map[string]interface{}{"count": n})
			}
		}
	}
}
