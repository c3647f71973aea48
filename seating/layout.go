// Package seating models a showtime's seat map: the row-major grid, the
// per-seat state and the user's bounded selection.
package seating

import (
	"iter"
	"slices"
)

// DefaultColumns is the seat map width used when none is configured.
const DefaultColumns = 6

// Slot is one position in a row. Padding slots past the last seat have
// Empty set and Number zero.
type Slot struct {
	Number int
	Empty  bool
}

type Row struct {
	Index int
	Label string
	Slots []Slot
}

// Seats returns the non-empty seat numbers of the row.
func (r Row) Seats() []int {
	seats := make([]int, 0, len(r.Slots))
	for _, slot := range r.Slots {
		if !slot.Empty {
			seats = append(seats, slot.Number)
		}
	}
	return seats
}

// Layout yields the rows of a total-seat map that is columns wide, numbered
// row-major from 1. The last row is padded with empty slots. The sequence is
// restartable; total <= 0 or columns <= 0 yields nothing.
func Layout(total, columns int) iter.Seq[Row] {
	return func(yield func(Row) bool) {
		if total <= 0 || columns <= 0 {
			return
		}
		rows := RowCount(total, columns)
		for index := 0; index < rows; index++ {
			row := Row{
				Index: index,
				Label: RowLabel(index),
				Slots: make([]Slot, columns),
			}
			for col := 0; col < columns; col++ {
				number := index*columns + col + 1
				if number > total {
					row.Slots[col] = Slot{Empty: true}
					continue
				}
				row.Slots[col] = Slot{Number: number}
			}
			if !yield(row) {
				return
			}
		}
	}
}

func RowCount(total, columns int) int {
	if total <= 0 || columns <= 0 {
		return 0
	}
	return (total + columns - 1) / columns
}

// Position returns the zero-based row and column of seat n.
func Position(n, columns int) (row, col int) {
	if n <= 0 || columns <= 0 {
		return -1, -1
	}
	return (n - 1) / columns, (n - 1) % columns
}

// RowLabel names a row the way spreadsheets name columns: A..Z, AA, AB, ...
func RowLabel(index int) string {
	if index < 0 {
		return ""
	}
	var label []byte
	for n := index + 1; n > 0; n = (n - 1) / 26 {
		label = append(label, byte('A'+(n-1)%26))
	}
	slices.Reverse(label)
	return string(label)
}

// SeatLabel is the human name of a seat, e.g. "B4" for seat 10 at six columns.
func SeatLabel(n, columns int) string {
	row, col := Position(n, columns)
	if row < 0 {
		return ""
	}
	return RowLabel(row) + itoa(col+1)
}
