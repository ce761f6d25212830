package client

import (
	"fmt"
	"log"
	"sync"
)

// Identity is the signed-in agent as the API reports it.
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"name"`
}

// SessionControl is the slice of the session the request pipeline needs:
// read the current credential and tear the session down on a 401.
type SessionControl interface {
	Credential() string
	Teardown()
}

// Session holds the bearer credential and identity of the signed-in agent,
// persisted through a prefs Store so it survives restarts.
type Session struct {
	mu         sync.Mutex
	prefs      Store
	credential string
	identity   *Identity
}

// NewSession restores any persisted credential and identity from the store.
func NewSession(prefs Store) *Session {
	s := &Session{prefs: prefs}

	var token string
	if ok, err := prefs.Load(KeyToken, &token); err != nil {
		log.Printf("Failed to restore session token: %v", err)
	} else if ok {
		s.credential = token
	}

	var identity Identity
	if ok, err := prefs.Load(KeyUser, &identity); err != nil {
		log.Printf("Failed to restore session identity: %v", err)
	} else if ok {
		s.identity = &identity
	}

	return s
}

// Credential returns the current bearer credential, empty when signed out.
func (s *Session) Credential() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credential
}

// Identity returns a copy of the signed-in identity, nil when signed out.
func (s *Session) Identity() *Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil
	}
	id := *s.identity
	return &id
}

// Login stores the credential and identity and persists both.
func (s *Session) Login(credential string, identity Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.credential = credential
	s.identity = &identity

	if err := s.prefs.Save(KeyToken, credential); err != nil {
		return fmt.Errorf("failed to persist session token: %w", err)
	}
	if err := s.prefs.Save(KeyUser, identity); err != nil {
		return fmt.Errorf("failed to persist session identity: %w", err)
	}
	return nil
}

// SetRedirectAfterLogin persists the path the app should return to once the
// agent signs in. Apps call this when an unauthenticated visit gets bounced
// to the login view.
func (s *Session) SetRedirectAfterLogin(path string) error {
	if err := s.prefs.Save(KeyRedirectAfterLogin, path); err != nil {
		return fmt.Errorf("failed to persist redirect target: %w", err)
	}
	return nil
}

// ConsumeRedirectAfterLogin returns the persisted redirect target and clears
// it, so a later login does not replay an old destination. Empty when none
// was set.
func (s *Session) ConsumeRedirectAfterLogin() string {
	var path string
	ok, err := s.prefs.Load(KeyRedirectAfterLogin, &path)
	if err != nil {
		log.Printf("Failed to load redirect target: %v", err)
		return ""
	}
	if !ok {
		return ""
	}
	if err := s.prefs.Delete(KeyRedirectAfterLogin); err != nil {
		log.Printf("Failed to clear redirect target: %v", err)
	}
	return path
}

// Teardown clears the credential and identity. It completes synchronously
// under the session lock, so a request issued after it returns will not
// observe the old credential.
func (s *Session) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.credential = ""
	s.identity = nil

	if err := s.prefs.Delete(KeyToken); err != nil {
		log.Printf("Failed to clear persisted token: %v", err)
	}
	if err := s.prefs.Delete(KeyUser); err != nil {
		log.Printf("Failed to clear persisted identity: %v", err)
	}
}
