// Package catalog reads movies, cinemas and showtimes, caching list
// results on disk between runs.
package catalog

import (
	"context"
	"errors"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/exp/maps"

	"moviebook-cli/model"
	"moviebook-cli/store"
)

// Source is the read side of the booking API. *service.Client satisfies it.
type Source interface {
	ListMovies(ctx context.Context) ([]model.Movie, error)
	MoviesByCinema(ctx context.Context, cinemaID string) ([]model.Movie, error)
	SearchMovies(ctx context.Context, query string) ([]model.Movie, error)
	GetMovie(ctx context.Context, movieID string) (model.Movie, error)
	GetShowtime(ctx context.Context, showtimeID string) (model.Showtime, error)
	ListCinemas(ctx context.Context) ([]model.Cinema, error)
}

type Reader struct {
	source Source
	cache  bool
	logger *zap.Logger
}

type Option func(*Reader)

// WithoutCache makes every read hit the API.
func WithoutCache() Option {
	return func(r *Reader) {
		r.cache = false
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(r *Reader) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewReader(source Source, opts ...Option) *Reader {
	r := &Reader{source: source, cache: true, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Movies lists movies, limited to cinemaID when set. A fresh cache is used
// unless refresh is set; a stale cache is served when the API is down.
func (r *Reader) Movies(ctx context.Context, cinemaID string, refresh bool) ([]model.Movie, error) {
	var cached []model.Movie
	if r.cache {
		movies, fresh, err := store.LoadMovieCache(cinemaID)
		if err != nil {
			r.logger.Warn("movie cache unreadable", zap.Error(err))
		}
		if fresh && !refresh && len(movies) > 0 {
			return movies, nil
		}
		cached = movies
	}

	var movies []model.Movie
	var err error
	if strings.TrimSpace(cinemaID) != "" {
		movies, err = r.source.MoviesByCinema(ctx, cinemaID)
	} else {
		movies, err = r.source.ListMovies(ctx)
	}
	if err != nil {
		if len(cached) > 0 && !errors.Is(err, context.Canceled) {
			r.logger.Warn("serving stale movie cache", zap.Error(err))
			return cached, nil
		}
		return nil, err
	}

	if r.cache {
		if err := store.SaveMovieCache(cinemaID, movies); err != nil {
			r.logger.Warn("save movie cache", zap.Error(err))
		}
	}
	return movies, nil
}

func (r *Reader) Cinemas(ctx context.Context, refresh bool) ([]model.Cinema, error) {
	var cached []model.Cinema
	if r.cache {
		cinemas, fresh, err := store.LoadCinemaCache()
		if err != nil {
			r.logger.Warn("cinema cache unreadable", zap.Error(err))
		}
		if fresh && !refresh && len(cinemas) > 0 {
			return cinemas, nil
		}
		cached = cinemas
	}

	cinemas, err := r.source.ListCinemas(ctx)
	if err != nil {
		if len(cached) > 0 {
			r.logger.Warn("serving stale cinema cache", zap.Error(err))
			return cached, nil
		}
		return nil, err
	}
	if r.cache {
		if err := store.SaveCinemaCache(cinemas); err != nil {
			r.logger.Warn("save cinema cache", zap.Error(err))
		}
	}
	return cinemas, nil
}

// Search runs the server-side title search. Results are not cached.
func (r *Reader) Search(ctx context.Context, query string) ([]model.Movie, error) {
	return r.source.SearchMovies(ctx, query)
}

// Movie fetches one movie with its showtimes, always from the API.
func (r *Reader) Movie(ctx context.Context, movieID string) (model.Movie, error) {
	return r.source.GetMovie(ctx, movieID)
}

// Showtime fetches live seat counts; never cached.
func (r *Reader) Showtime(ctx context.Context, showtimeID string) (model.Showtime, error) {
	return r.source.GetShowtime(ctx, showtimeID)
}

// Invalidate drops cached movie lists so the next read sees new seat counts.
func (r *Reader) Invalidate() {
	if r == nil || !r.cache {
		return
	}
	if err := store.InvalidateMovieCache(); err != nil {
		r.logger.Warn("invalidate movie cache", zap.Error(err))
	}
}

// Filter narrows a movie list client-side. Empty fields match everything.
type Filter struct {
	Genre    string
	Language string
	Query    string
}

func (f Filter) Empty() bool {
	return f.Genre == "" && f.Language == "" && strings.TrimSpace(f.Query) == ""
}

func (f Filter) Match(movie model.Movie) bool {
	if f.Genre != "" && !strings.EqualFold(movie.Genre, f.Genre) {
		return false
	}
	if f.Language != "" && !strings.EqualFold(movie.Language, f.Language) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		haystack := strings.ToLower(movie.Title + " " + movie.Director + " " + strings.Join(movie.Cast, " "))
		if !strings.Contains(haystack, q) {
			return false
		}
	}
	return true
}

func (f Filter) Apply(movies []model.Movie) []model.Movie {
	if f.Empty() {
		return movies
	}
	out := make([]model.Movie, 0, len(movies))
	for _, movie := range movies {
		if f.Match(movie) {
			out = append(out, movie)
		}
	}
	return out
}

// Genres lists the distinct genres present, sorted.
func Genres(movies []model.Movie) []string {
	return facet(movies, func(m model.Movie) string { return m.Genre })
}

// Languages lists the distinct languages present, sorted.
func Languages(movies []model.Movie) []string {
	return facet(movies, func(m model.Movie) string { return m.Language })
}

func facet(movies []model.Movie, field func(model.Movie) string) []string {
	seen := map[string]struct{}{}
	for _, movie := range movies {
		if value := strings.TrimSpace(field(movie)); value != "" {
			seen[value] = struct{}{}
		}
	}
	values := maps.Keys(seen)
	slices.Sort(values)
	return values
}
