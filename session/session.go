// Package session holds the state one user's run of the client carries
// around: identity, chosen cinema, active showtime and its seat selection.
// Views and the booking orchestrator share a *Session instead of globals.
package session

import (
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"moviebook-cli/catalog"
	"moviebook-cli/model"
	"moviebook-cli/seating"
	"moviebook-cli/store"
)

type Session struct {
	mu        sync.RWMutex
	user      *model.User
	token     string
	cinemaID  string
	filter    catalog.Filter
	showtime  *model.Showtime
	selection *seating.Selection
}

func New(maxSeats int) *Session {
	return &Session{selection: seating.NewSelection(maxSeats)}
}

// Restore loads the persisted profile. An expired token is dropped along
// with the user it belonged to.
func Restore(maxSeats int, now time.Time) (*Session, error) {
	s := New(maxSeats)
	profile, err := store.LoadProfile()
	if err != nil {
		return s, err
	}
	s.cinemaID = profile.CinemaID
	if profile.Token != "" && TokenExpired(profile.Token, now) {
		return s, nil
	}
	if profile.User != nil {
		user := *profile.User
		s.user = &user
	}
	s.token = profile.Token
	return s, nil
}

// Persist writes identity and cinema. Selections never leave memory.
func (s *Session) Persist() error {
	s.mu.RLock()
	profile := store.Profile{Token: s.token, CinemaID: s.cinemaID}
	if s.user != nil {
		user := *s.user
		profile.User = &user
	}
	s.mu.RUnlock()
	return store.SaveProfile(profile)
}

func (s *Session) Login(user model.User, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &user
	s.token = strings.TrimSpace(token)
}

// Logout forgets the identity and the booking in progress. The chosen
// cinema survives.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.token = ""
	s.showtime = nil
	s.selection.Clear()
}

// HandleUnauthorized drops credentials the API rejected.
func (s *Session) HandleUnauthorized() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.token = ""
}

// User returns a copy of the logged-in user, or nil for a guest.
func (s *Session) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	user := *s.user
	return &user
}

func (s *Session) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

func (s *Session) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.IsAdmin()
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) CinemaID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cinemaID
}

func (s *Session) SetCinema(cinemaID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cinemaID = strings.TrimSpace(cinemaID)
}

func (s *Session) Filter() catalog.Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

func (s *Session) SetFilter(filter catalog.Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = filter
}

func (s *Session) ClearFilter() {
	s.SetFilter(catalog.Filter{})
}

// EnterShowtime makes showtime the active one. Moving to a different
// showtime clears the selection; re-entering the same one keeps it and
// only drops seats that have since been booked.
func (s *Session) EnterShowtime(showtime model.Showtime) *seating.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	booked := seating.BookedFromAvailability(showtime.TotalSeats, showtime.AvailableSeats)
	if s.showtime != nil && s.showtime.Id == showtime.Id {
		s.selection.Rebind(showtime.TotalSeats, booked)
	} else {
		s.selection.Reset(showtime.TotalSeats, booked)
	}
	current := showtime
	s.showtime = &current
	return s.selection
}

func (s *Session) LeaveShowtime() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showtime = nil
	s.selection.Clear()
}

func (s *Session) Showtime() (model.Showtime, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.showtime == nil {
		return model.Showtime{}, false
	}
	return *s.showtime, true
}

func (s *Session) Selection() *seating.Selection {
	return s.selection
}

// TokenExpired reports whether a JWT's exp claim is in the past. Tokens that
// are not JWTs, or carry no exp, never expire client-side. The signature is
// not checked; the API does that.
func TokenExpired(token string, now time.Time) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && !now.Before(claims.ExpiresAt.Time)
}
