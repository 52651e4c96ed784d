package model

import "time"

// Session is the per-browser state carried between requests
type Session struct {
	ID          string            `json:"id"`
	IsLoggedIn  bool              `json:"is_logged_in"`
	Username    string            `json:"username,omitempty"`
	DisplayName string            `json:"display_name,omitempty"`
	IsAdmin     bool              `json:"is_admin"`
	Targets     map[Action]Target `json:"targets,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	ExpiresAt   time.Time         `json:"expires_at"`
}

// Target returns the collection selected for an action
func (s *Session) Target(a Action) (Target, bool) {
	t, ok := s.Targets[a]
	if !ok || !t.Valid() {
		return Target{}, false
	}
	return t, true
}

// SetTarget records the collection selected for an action
func (s *Session) SetTarget(a Action, t Target) {
	if s.Targets == nil {
		s.Targets = make(map[Action]Target)
	}
	s.Targets[a] = t
}

// Clear resets the session to the logged-out state, keeping its identity
func (s *Session) Clear() {
	s.IsLoggedIn = false
	s.Username = ""
	s.DisplayName = ""
	s.IsAdmin = false
	s.Targets = nil
}
