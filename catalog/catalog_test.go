package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moviebook-cli/model"
)

type fakeSource struct {
	movies      []model.Movie
	cinemas     []model.Cinema
	err         error
	listCalls   int
	cinemaCalls int
	byCinema    string
}

func (f *fakeSource) ListMovies(ctx context.Context) ([]model.Movie, error) {
	f.listCalls++
	return f.movies, f.err
}

func (f *fakeSource) MoviesByCinema(ctx context.Context, cinemaID string) ([]model.Movie, error) {
	f.byCinema = cinemaID
	return f.movies, f.err
}

func (f *fakeSource) SearchMovies(ctx context.Context, query string) ([]model.Movie, error) {
	return Filter{Query: query}.Apply(f.movies), f.err
}

func (f *fakeSource) GetMovie(ctx context.Context, movieID string) (model.Movie, error) {
	for _, m := range f.movies {
		if m.Id == movieID {
			return m, nil
		}
	}
	return model.Movie{}, errors.New("not found")
}

func (f *fakeSource) GetShowtime(ctx context.Context, showtimeID string) (model.Showtime, error) {
	return model.Showtime{Id: showtimeID}, f.err
}

func (f *fakeSource) ListCinemas(ctx context.Context) ([]model.Cinema, error) {
	f.cinemaCalls++
	return f.cinemas, f.err
}

func isolateCache(t *testing.T) {
	t.Helper()
	root := t.TempDir()
	t.Setenv("HOME", root)
	t.Setenv("XDG_CONFIG_HOME", root)
	t.Setenv("XDG_CACHE_HOME", root)
}

var sampleMovies = []model.Movie{
	{Id: "1", Title: "Dune", Genre: "Sci-Fi", Language: "English", Director: "Denis Villeneuve"},
	{Id: "2", Title: "Amelie", Genre: "Romance", Language: "French"},
	{Id: "3", Title: "Parasite", Genre: "Thriller", Language: "Korean", Cast: []string{"Song Kang-ho"}},
	{Id: "4", Title: "Arrival", Genre: "Sci-Fi", Language: "English"},
}

func TestMovies_CachesBetweenReads(t *testing.T) {
	isolateCache(t)
	source := &fakeSource{movies: sampleMovies}
	reader := NewReader(source)

	movies, err := reader.Movies(context.Background(), "", false)
	require.NoError(t, err)
	assert.Len(t, movies, 4)

	movies, err = reader.Movies(context.Background(), "", false)
	require.NoError(t, err)
	assert.Len(t, movies, 4)
	assert.Equal(t, 1, source.listCalls)

	_, err = reader.Movies(context.Background(), "", true)
	require.NoError(t, err)
	assert.Equal(t, 2, source.listCalls)
}

func TestMovies_StaleCacheOnError(t *testing.T) {
	isolateCache(t)
	source := &fakeSource{movies: sampleMovies}
	reader := NewReader(source)
	_, err := reader.Movies(context.Background(), "c-1", false)
	require.NoError(t, err)
	assert.Equal(t, "c-1", source.byCinema)

	source.err = errors.New("connection refused")
	movies, err := reader.Movies(context.Background(), "c-1", true)
	require.NoError(t, err)
	assert.Len(t, movies, 4)
}

func TestMovies_NoCacheReturnsError(t *testing.T) {
	isolateCache(t)
	source := &fakeSource{err: errors.New("connection refused")}
	reader := NewReader(source, WithoutCache())

	_, err := reader.Movies(context.Background(), "", false)
	assert.Error(t, err)
}

func TestInvalidate_ForcesRefetch(t *testing.T) {
	isolateCache(t)
	source := &fakeSource{movies: sampleMovies}
	reader := NewReader(source)
	_, _ = reader.Movies(context.Background(), "", false)
	reader.Invalidate()
	_, _ = reader.Movies(context.Background(), "", false)
	assert.Equal(t, 2, source.listCalls)
}

func TestCinemas_Cached(t *testing.T) {
	isolateCache(t)
	source := &fakeSource{cinemas: []model.Cinema{{Id: "c-1", Name: "Downtown"}}}
	reader := NewReader(source)
	for i := 0; i < 3; i++ {
		cinemas, err := reader.Cinemas(context.Background(), false)
		require.NoError(t, err)
		assert.Len(t, cinemas, 1)
	}
	assert.Equal(t, 1, source.cinemaCalls)
}

func TestFilter(t *testing.T) {
	assert.Len(t, Filter{}.Apply(sampleMovies), 4)
	assert.Len(t, Filter{Genre: "sci-fi"}.Apply(sampleMovies), 2)
	assert.Len(t, Filter{Genre: "Sci-Fi", Language: "French"}.Apply(sampleMovies), 0)

	found := Filter{Query: "song"}.Apply(sampleMovies)
	require.Len(t, found, 1)
	assert.Equal(t, "Parasite", found[0].Title)

	found = Filter{Query: "villeneuve"}.Apply(sampleMovies)
	require.Len(t, found, 1)
	assert.Equal(t, "Dune", found[0].Title)
}

func TestFacets(t *testing.T) {
	assert.Equal(t, []string{"Romance", "Sci-Fi", "Thriller"}, Genres(sampleMovies))
	assert.Equal(t, []string{"English", "French", "Korean"}, Languages(sampleMovies))
	assert.Empty(t, Genres(nil))
}

func TestByDate(t *testing.T) {
	groups := ByDate([]model.Showtime{
		{Id: "c", ShowDate: "2026-03-05", StartTime: "21:00"},
		{Id: "a", ShowDate: "2026-03-04", StartTime: "19:30"},
		{Id: "b", ShowDate: "2026-03-04", StartTime: "14:00"},
	})
	require.Len(t, groups, 2)
	assert.Equal(t, "2026-03-04", groups[0].Date)
	assert.Equal(t, "b", groups[0].Showtimes[0].Id)
	assert.Equal(t, "a", groups[0].Showtimes[1].Id)
	assert.Equal(t, "c", groups[1].Showtimes[0].Id)
}

func TestBookable(t *testing.T) {
	out := Bookable([]model.Showtime{{Id: "full", AvailableSeats: 0}, {Id: "open", AvailableSeats: 3}})
	require.Len(t, out, 1)
	assert.Equal(t, "open", out[0].Id)
}
