package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Showtime struct {
	Id             string  `json:"id"`
	MovieId        string  `json:"movieId,omitempty"`
	CinemaId       string  `json:"cinemaId,omitempty"`
	ScreenNumber   string  `json:"screenNumber"`
	ShowDate       string  `json:"showDate"`
	StartTime      string  `json:"startTime"`
	Price          float64 `json:"price"`
	TotalSeats     int     `json:"totalSeats"`
	AvailableSeats int     `json:"availableSeats"`
}

// BookedCount is the number of seats already taken. The backend only reports
// counts, never which seats.
func (s Showtime) BookedCount() int {
	booked := s.TotalSeats - s.AvailableSeats
	if booked < 0 {
		return 0
	}
	if booked > s.TotalSeats {
		return s.TotalSeats
	}
	return booked
}

// StartsAt combines ShowDate and StartTime in loc. StartTime may carry seconds.
func (s Showtime) StartsAt(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	date := strings.TrimSpace(s.ShowDate)
	clock := strings.TrimSpace(s.StartTime)
	if date == "" || clock == "" {
		return time.Time{}, errors.New("showtime has no schedule")
	}
	if len(clock) == len("15:04") {
		clock += ":00"
	}
	t, err := time.ParseInLocation(time.DateOnly+" "+time.TimeOnly, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse showtime schedule: %w", err)
	}
	return t, nil
}

type ShowtimeDTO struct {
	MovieId        string  `json:"movieId,omitempty"`
	CinemaId       string  `json:"cinemaId,omitempty"`
	ScreenNumber   string  `json:"screenNumber" validate:"required"`
	ShowDate       string  `json:"showDate" validate:"required,datetime=2006-01-02"`
	StartTime      string  `json:"startTime" validate:"required"`
	Price          float64 `json:"price" validate:"gt=0"`
	TotalSeats     int     `json:"totalSeats" validate:"gt=0"`
	AvailableSeats int     `json:"availableSeats" validate:"gte=0,ltefield=TotalSeats"`
}
