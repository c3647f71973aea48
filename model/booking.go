package model

const (
	BookingStatusConfirmed = "CONFIRMED"
	BookingStatusCancelled = "CANCELLED"
)

type Booking struct {
	Id          string   `json:"id"`
	UserId      string   `json:"userId"`
	ShowtimeId  string   `json:"showtimeId"`
	Seats       []string `json:"seats"`
	TotalPrice  float64  `json:"totalPrice"`
	BookingDate string   `json:"bookingDate"`
	Status      string   `json:"status"`
}

type BookingDTO struct {
	UserId      string   `json:"userId"`
	ShowtimeId  string   `json:"showtimeId"`
	Seats       []string `json:"seats"`
	TotalPrice  float64  `json:"totalPrice"`
	Status      string   `json:"status"`
	BookingDate string   `json:"bookingDate,omitempty"`
}
