// Package auth tracks the user signed in through the external identity provider.
package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/apperrors"
)

// User is the identity reported by the provider.
type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email,omitempty"`
	SignedInAt time.Time `json:"signedInAt"`
}

// SignInListener runs after a user signs in, in registration order.
type SignInListener func(ctx context.Context, user User) error

// Session holds the current user of this tracker process.
type Session struct {
	mu        sync.RWMutex
	user      *User
	listeners []SignInListener
	now       func() time.Time
}

// NewSession creates a signed-out session.
func NewSession() *Session {
	return &Session{now: time.Now}
}

// OnSignIn registers a listener. Listeners are used to migrate local data and
// reload in-memory state against the hosted tier.
func (s *Session) OnSignIn(l SignInListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// SignIn records the user and runs listeners. A listener error is returned
// but the user stays signed in.
func (s *Session) SignIn(ctx context.Context, id, email string) (User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, apperrors.ErrNotSignedIn
	}

	s.mu.Lock()
	user := User{ID: id, Email: email, SignedInAt: s.now().UTC()}
	s.user = &user
	listeners := append([]SignInListener(nil), s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		if err := l(ctx, user); err != nil {
			return user, err
		}
	}
	return user, nil
}

// SignOut clears the current user.
func (s *Session) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
}

// CurrentUser returns the signed-in user.
func (s *Session) CurrentUser() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// CurrentUserID returns the signed-in user's ID or "".
func (s *Session) CurrentUserID() string {
	u, ok := s.CurrentUser()
	if !ok {
		return ""
	}
	return u.ID
}
