package storefront

import "sync"

// Session holds the identity of the logged-in shopper.
type Session struct {
	mu    sync.RWMutex
	token string
	email string
	view  View
}

func NewSession(view View) *Session {
	if view == nil {
		view = NopView{}
	}
	return &Session{view: view}
}

func (s *Session) Set(token, email string) {
	s.mu.Lock()
	s.token, s.email = token, email
	s.mu.Unlock()
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Email() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.email
}

// Active reports whether a token is held.
func (s *Session) Active() bool {
	return s.Token() != ""
}

// Purge drops the credentials and tells the view the shopper is logged out.
func (s *Session) Purge() {
	s.mu.Lock()
	s.token, s.email = "", ""
	s.mu.Unlock()
	s.view.LoggedOut()
}
