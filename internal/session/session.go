// Package session holds the signed-in state of one client explicitly, instead
// of relying on a process-wide "current user".
package session

import (
	"context"
	"sync"
	"time"

	"github.com/honari/reading-backend/internal/models"
)

// Principal is the identity provider's view of a signed-in account.
type Principal struct {
	UID          string    `json:"uid"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"displayName"`
	IDToken      string    `json:"idToken,omitempty"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// Session is a latest-value slot for the current identity. It is safe for
// concurrent use; watchers never see history, only the newest value.
type Session struct {
	mu        sync.Mutex
	principal *Principal
	identity  *models.User
	watchers  map[int]chan *models.User
	nextID    int
}

func New() *Session {
	return &Session{watchers: make(map[int]chan *models.User)}
}

// Principal returns the signed-in principal, if any.
func (s *Session) Principal() (Principal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.principal == nil {
		return Principal{}, false
	}
	return *s.principal, true
}

// Identity returns a copy of the latest identity, or nil when signed out or
// when only a principal has been restored.
func (s *Session) Identity() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity.Clone()
}

// SignIn records a fully established session and notifies watchers.
func (s *Session) SignIn(p Principal, u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.principal = &p
	s.identity = u.Clone()
	s.publishLocked()
}

// Restore seeds the principal from a verified token without touching the
// identity; the identity is loaded lazily by the session manager.
func (s *Session) Restore(p Principal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.principal != nil && s.principal.UID != p.UID {
		s.identity = nil
	}
	s.principal = &p
}

// SetIdentity replaces the latest identity if it belongs to the signed-in
// principal. It reports whether the value was accepted.
func (s *Session) SetIdentity(u *models.User) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.principal == nil || u == nil || u.ID != s.principal.UID {
		return false
	}
	s.identity = u.Clone()
	s.publishLocked()
	return true
}

// SignOut clears the session and returns the principal that was signed in.
func (s *Session) SignOut() (Principal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.principal == nil {
		return Principal{}, false
	}
	prev := *s.principal
	s.principal = nil
	s.identity = nil
	s.publishLocked()
	return prev, true
}

// Watch subscribes to identity changes until ctx is done. The current value
// (possibly nil) is delivered first. The channel is closed on cancellation.
func (s *Session) Watch(ctx context.Context) <-chan *models.User {
	ch := make(chan *models.User, 1)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = ch
	ch <- s.identity.Clone()
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.watchers, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

// publishLocked replaces whatever a watcher has not consumed yet with the
// newest value. Callers hold s.mu.
func (s *Session) publishLocked() {
	for _, ch := range s.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- s.identity.Clone()
	}
}
