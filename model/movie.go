package model

type Movie struct {
	Id          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Genre       string     `json:"genre"`
	Duration    int        `json:"duration"`
	Language    string     `json:"language"`
	ReleaseDate string     `json:"releaseDate"`
	Director    string     `json:"director"`
	Cast        []string   `json:"cast"`
	Rating      string     `json:"rating"`
	PosterUrl   string     `json:"posterUrl"`
	TrailerUrl  string     `json:"trailerUrl"`
	CinemaId    string     `json:"cinemaId"`
	Showtimes   []Showtime `json:"showtimes"`
}

// Showtime returns the embedded showtime with the given id.
func (m Movie) Showtime(id string) (Showtime, bool) {
	for _, showtime := range m.Showtimes {
		if showtime.Id == id {
			return showtime, true
		}
	}
	return Showtime{}, false
}

type MovieDTO struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	Genre       string   `json:"genre" validate:"required"`
	Duration    int      `json:"duration" validate:"gt=0"`
	Language    string   `json:"language" validate:"required"`
	ReleaseDate string   `json:"releaseDate" validate:"omitempty,datetime=2006-01-02"`
	Director    string   `json:"director"`
	Cast        []string `json:"cast"`
	Rating      string   `json:"rating" validate:"omitempty,oneof=G PG PG-13 R NC-17"`
	PosterUrl   string   `json:"posterUrl" validate:"omitempty,url"`
	TrailerUrl  string   `json:"trailerUrl" validate:"omitempty,url"`
	CinemaId    string   `json:"cinemaId" validate:"required"`
}

type Cinema struct {
	Id       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

type CinemaDTO struct {
	Name     string `json:"name" validate:"required"`
	Location string `json:"location" validate:"required"`
}
