package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"moviebook-cli/model"
)

const (
	appDir          = "moviebook-cli"
	movieCacheTTL   = 10 * time.Minute
	cinemaCacheTTL  = 72 * time.Hour
	maxRecentMovies = 8
)

type cacheEnvelope[T any] struct {
	UpdatedAt time.Time `json:"updated_at"`
	Data      T         `json:"data"`
}

// Profile is the persisted part of a session: who is logged in and which
// cinema they picked. Seat selections are never persisted.
type Profile struct {
	User     *model.User `json:"user,omitempty"`
	Token    string      `json:"token,omitempty"`
	CinemaID string      `json:"cinema_id,omitempty"`
	SavedAt  time.Time   `json:"saved_at"`
}

type RecentMovie struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type movieHistory struct {
	Movies []RecentMovie `json:"movies"`
}

func LoadMovieCache(cinemaID string) ([]model.Movie, bool, error) {
	path, err := cachePath(movieCacheName(cinemaID))
	if err != nil {
		return nil, false, err
	}
	cache, err := loadCache[[]model.Movie](path)
	if err != nil {
		return nil, false, err
	}
	return cache.Data, time.Since(cache.UpdatedAt) <= movieCacheTTL, nil
}

func SaveMovieCache(cinemaID string, movies []model.Movie) error {
	path, err := cachePath(movieCacheName(cinemaID))
	if err != nil {
		return err
	}
	return saveCache(path, movies, 0o644)
}

func LoadCinemaCache() ([]model.Cinema, bool, error) {
	path, err := cachePath("cinemas.json")
	if err != nil {
		return nil, false, err
	}
	cache, err := loadCache[[]model.Cinema](path)
	if err != nil {
		return nil, false, err
	}
	return cache.Data, time.Since(cache.UpdatedAt) <= cinemaCacheTTL, nil
}

func SaveCinemaCache(cinemas []model.Cinema) error {
	path, err := cachePath("cinemas.json")
	if err != nil {
		return err
	}
	return saveCache(path, cinemas, 0o644)
}

// InvalidateMovieCache drops every cached movie list, e.g. after an admin
// edit or a booking changed seat counts.
func InvalidateMovieCache() error {
	dir, err := cachePath("")
	if err != nil {
		return err
	}
	matches, err := filepath.Glob(filepath.Join(dir, "movies*.json"))
	if err != nil {
		return err
	}
	for _, match := range matches {
		if err := os.Remove(match); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

func LoadProfile() (Profile, error) {
	path, err := configPath("profile.json")
	if err != nil {
		return Profile{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Profile{}, nil
		}
		return Profile{}, err
	}
	var profile Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return Profile{}, errors.New("invalid profile format")
	}
	return profile, nil
}

// SaveProfile writes the profile with owner-only permissions since it holds
// the bearer token.
func SaveProfile(profile Profile) error {
	path, err := configPath("profile.json")
	if err != nil {
		return err
	}
	profile.SavedAt = time.Now()
	return writeJSON(path, profile, 0o600)
}

func ClearProfile() error {
	path, err := configPath("profile.json")
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func LoadRecentMovies() ([]RecentMovie, error) {
	path, err := configPath("history.json")
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var history movieHistory
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, errors.New("invalid movie history format")
	}
	return history.Movies, nil
}

// RememberMovie moves movie to the front of the history, deduplicating by id
// and then by title.
func RememberMovie(movie model.Movie) error {
	if strings.TrimSpace(movie.Id) == "" {
		return errors.New("movie id is required")
	}
	history, _ := LoadRecentMovies()
	next := []RecentMovie{{ID: movie.Id, Title: movie.Title}}

	for _, existing := range history {
		if existing.ID == movie.Id {
			continue
		}
		if existing.Title != "" && stringsEqualFold(existing.Title, movie.Title) {
			continue
		}
		next = append(next, existing)
		if len(next) >= maxRecentMovies {
			break
		}
	}

	path, err := configPath("history.json")
	if err != nil {
		return err
	}
	return writeJSON(path, movieHistory{Movies: next}, 0o644)
}

func movieCacheName(cinemaID string) string {
	cinemaID = strings.TrimSpace(cinemaID)
	if cinemaID == "" {
		return "movies.json"
	}
	return fmt.Sprintf("movies_%s.json", cinemaID)
}

func loadCache[T any](path string) (cacheEnvelope[T], error) {
	var cache cacheEnvelope[T]
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cache, nil
		}
		return cache, err
	}
	if err := json.Unmarshal(data, &cache); err != nil {
		return cache, err
	}
	return cache, nil
}

func saveCache[T any](path string, data T, perm os.FileMode) error {
	return writeJSON(path, cacheEnvelope[T]{
		UpdatedAt: time.Now(),
		Data:      data,
	}, perm)
}

func writeJSON(path string, v any, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, perm)
}

func configPath(name string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDir, name), nil
}

func cachePath(name string) (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDir, name), nil
}

func stringsEqualFold(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}
