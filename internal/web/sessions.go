package web

import (
	"sync"
	"time"

	"paper-review/internal/uploads"
)

const defaultSessionTTL = 12 * time.Hour

// Sessions holds one upload controller per browser session, in memory only.
type Sessions struct {
	NewController func() *uploads.Controller
	TTL           time.Duration

	mu       sync.Mutex
	sessions map[string]*session
	now      func() time.Time
}

type session struct {
	ctrl     *uploads.Controller
	notice   string
	lastSeen time.Time
}

// NewSessions builds a store creating controllers with factory.
func NewSessions(factory func() *uploads.Controller) *Sessions {
	return &Sessions{
		NewController: factory,
		TTL:           defaultSessionTTL,
		sessions:      make(map[string]*session),
		now:           time.Now,
	}
}

// Controller returns the controller of a session, creating it on first use.
func (s *Sessions) Controller(id string) *uploads.Controller {
	return s.get(id).ctrl
}

// SetNotice stores a one-shot message for the next page render.
func (s *Sessions) SetNotice(id, msg string) {
	sess := s.get(id)
	s.mu.Lock()
	sess.notice = msg
	s.mu.Unlock()
}

// TakeNotice returns and clears the pending message.
func (s *Sessions) TakeNotice(id string) string {
	sess := s.get(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := sess.notice
	sess.notice = ""
	return msg
}

// Len is the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Sessions) get(id string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	sess, ok := s.sessions[id]
	if !ok {
		s.sweepLocked(now)
		sess = &session{ctrl: s.NewController()}
		s.sessions[id] = sess
	}
	sess.lastSeen = now
	return sess
}

// sweepLocked drops idle sessions whose controller is not uploading.
func (s *Sessions) sweepLocked(now time.Time) {
	if s.TTL <= 0 {
		return
	}
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) < s.TTL {
			continue
		}
		if sess.ctrl.State().Status == uploads.StatusUploading {
			continue
		}
		delete(s.sessions, id)
	}
}
