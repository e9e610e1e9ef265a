package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/MeiTetsuH/diffchecker/internal/config"
	"github.com/MeiTetsuH/diffchecker/internal/ingest"
	"github.com/google/uuid"
)

const (
	sessionCookieName = "diffchecker_session"
	defaultSessionTTL = time.Hour
)

// sideState is what a session remembers about one side of a table comparison.
type sideState struct {
	workbook *ingest.Workbook
}

type session struct {
	left     sideState
	right    sideState
	lastSeen time.Time
}

// sessionStore keeps the last successfully loaded file of each side per session, so a
// failed upload leaves the previous file in place.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
	now      func() time.Time
}

func newSessionStore(ttl time.Duration) *sessionStore {
	return &sessionStore{
		sessions: make(map[string]*session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// sides returns the current workbooks of a session.
func (ss *sessionStore) sides(key string) (left, right *ingest.Workbook) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	s := ss.touch(key)
	return s.left.workbook, s.right.workbook
}

// setSide records a successfully loaded workbook for one side.
func (ss *sessionStore) setSide(key string, isLeft bool, wb *ingest.Workbook) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	s := ss.touch(key)
	if isLeft {
		s.left.workbook = wb
	} else {
		s.right.workbook = wb
	}
}

func (ss *sessionStore) len() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return len(ss.sessions)
}

// touch must be called with mu held. It also drops sessions idle for longer than ttl.
func (ss *sessionStore) touch(key string) *session {
	now := ss.now()
	for k, s := range ss.sessions {
		if k != key && now.Sub(s.lastSeen) > ss.ttl {
			delete(ss.sessions, k)
		}
	}
	s, ok := ss.sessions[key]
	if !ok {
		s = &session{}
		ss.sessions[key] = s
	}
	s.lastSeen = now
	return s
}

// sessionKey identifies the caller by the session header, then the session cookie. A new
// key is issued as a cookie when neither is present.
func (s *Server) sessionKey(w http.ResponseWriter, r *http.Request) string {
	header := s.cfg.SessionHeader
	if header == "" {
		header = config.DefaultServerSessionHeader
	}
	if key := r.Header.Get(header); key != "" {
		return key
	}
	if c, err := r.Cookie(sessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	key := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    key,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return key
}
