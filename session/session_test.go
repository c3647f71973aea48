package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moviebook-cli/model"
	"moviebook-cli/store"
)

func isolate(t *testing.T) {
	t.Helper()
	root := t.TempDir()
	t.Setenv("HOME", root)
	t.Setenv("XDG_CONFIG_HOME", root)
	t.Setenv("XDG_CACHE_HOME", root)
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u-1",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestEnterShowtime_DifferentShowtimeClearsSelection(t *testing.T) {
	s := New(10)
	sel := s.EnterShowtime(model.Showtime{Id: "st-1", TotalSeats: 36, AvailableSeats: 30})
	require.NoError(t, sel.Select(10))
	require.NoError(t, sel.Select(11))

	sel = s.EnterShowtime(model.Showtime{Id: "st-2", TotalSeats: 36, AvailableSeats: 36})
	assert.Empty(t, sel.Seats())
	current, ok := s.Showtime()
	require.True(t, ok)
	assert.Equal(t, "st-2", current.Id)
}

func TestEnterShowtime_SameShowtimeKeepsSelection(t *testing.T) {
	s := New(10)
	sel := s.EnterShowtime(model.Showtime{Id: "st-1", TotalSeats: 36, AvailableSeats: 30})
	require.NoError(t, sel.Select(7))
	require.NoError(t, sel.Select(20))

	sel = s.EnterShowtime(model.Showtime{Id: "st-1", TotalSeats: 36, AvailableSeats: 28})
	assert.Equal(t, []int{20}, sel.Seats())
}

func TestEnterShowtime_BookedSeatsRejected(t *testing.T) {
	s := New(10)
	sel := s.EnterShowtime(model.Showtime{Id: "st-1", TotalSeats: 36, AvailableSeats: 33})
	assert.Error(t, sel.Select(3))
	assert.NoError(t, sel.Select(4))
}

func TestLeaveShowtime(t *testing.T) {
	s := New(10)
	sel := s.EnterShowtime(model.Showtime{Id: "st-1", TotalSeats: 36, AvailableSeats: 36})
	require.NoError(t, sel.Select(1))
	s.LeaveShowtime()
	_, ok := s.Showtime()
	assert.False(t, ok)
	assert.Zero(t, s.Selection().Len())
}

func TestLogoutKeepsCinema(t *testing.T) {
	s := New(10)
	s.SetCinema("c-1")
	s.Login(model.User{Id: "u-1", UserType: model.UserTypeCinemaAdmin}, "tok")
	assert.True(t, s.LoggedIn())
	assert.True(t, s.IsAdmin())

	sel := s.EnterShowtime(model.Showtime{Id: "st-1", TotalSeats: 36, AvailableSeats: 36})
	require.NoError(t, sel.Select(1))

	s.Logout()
	assert.Nil(t, s.User())
	assert.Empty(t, s.Token())
	assert.Equal(t, "c-1", s.CinemaID())
	assert.Zero(t, s.Selection().Len())
}

func TestUserReturnsCopy(t *testing.T) {
	s := New(10)
	s.Login(model.User{Id: "u-1", Name: "Ana"}, "")
	u := s.User()
	u.Name = "changed"
	assert.Equal(t, "Ana", s.User().Name)
}

func TestPersistAndRestore(t *testing.T) {
	isolate(t)
	now := time.Now()

	s := New(10)
	s.SetCinema("c-9")
	s.Login(model.User{Id: "u-1", Email: "ana@example.com"}, signedToken(t, now.Add(time.Hour)))
	sel := s.EnterShowtime(model.Showtime{Id: "st-1", TotalSeats: 36, AvailableSeats: 36})
	require.NoError(t, sel.Select(1))
	require.NoError(t, s.Persist())

	restored, err := Restore(10, now)
	require.NoError(t, err)
	require.NotNil(t, restored.User())
	assert.Equal(t, "u-1", restored.User().Id)
	assert.Equal(t, "c-9", restored.CinemaID())
	assert.NotEmpty(t, restored.Token())
	assert.Zero(t, restored.Selection().Len())
	_, ok := restored.Showtime()
	assert.False(t, ok)
}

func TestRestore_ExpiredTokenDropsIdentity(t *testing.T) {
	isolate(t)
	now := time.Now()
	require.NoError(t, store.SaveProfile(store.Profile{
		User:     &model.User{Id: "u-1"},
		Token:    signedToken(t, now.Add(-time.Minute)),
		CinemaID: "c-1",
	}))

	restored, err := Restore(10, now)
	require.NoError(t, err)
	assert.Nil(t, restored.User())
	assert.Empty(t, restored.Token())
	assert.Equal(t, "c-1", restored.CinemaID())
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()
	assert.True(t, TokenExpired(signedToken(t, now.Add(-time.Second)), now))
	assert.False(t, TokenExpired(signedToken(t, now.Add(time.Hour)), now))
	assert.False(t, TokenExpired("opaque-session-token", now))
}

func TestHandleUnauthorized(t *testing.T) {
	s := New(10)
	s.Login(model.User{Id: "u-1"}, "tok")
	s.HandleUnauthorized()
	assert.False(t, s.LoggedIn())
	assert.Empty(t, s.Token())
}
