package seating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectRows(total, columns int) []Row {
	var rows []Row
	for row := range Layout(total, columns) {
		rows = append(rows, row)
	}
	return rows
}

func TestLayout_ThirtySixBySix(t *testing.T) {
	rows := collectRows(36, 6)
	require.Len(t, rows, 6)
	assert.Equal(t, "A", rows[0].Label)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, rows[0].Seats())
	assert.Equal(t, "F", rows[5].Label)
	assert.Equal(t, []int{31, 32, 33, 34, 35, 36}, rows[5].Seats())
}

func TestLayout_CoversEverySeatOnce(t *testing.T) {
	for _, tc := range []struct{ total, columns int }{
		{0, 6}, {1, 6}, {5, 6}, {6, 6}, {7, 6}, {37, 6}, {100, 7}, {13, 1},
	} {
		rows := collectRows(tc.total, tc.columns)
		assert.Len(t, rows, RowCount(tc.total, tc.columns), "total=%d columns=%d", tc.total, tc.columns)

		var seen []int
		for _, row := range rows {
			assert.Len(t, row.Slots, tc.columns)
			seen = append(seen, row.Seats()...)
		}
		require.Len(t, seen, tc.total)
		for i, n := range seen {
			assert.Equal(t, i+1, n)
		}
	}
}

func TestLayout_PadsLastRow(t *testing.T) {
	rows := collectRows(8, 6)
	require.Len(t, rows, 2)
	last := rows[1]
	assert.Equal(t, []int{7, 8}, last.Seats())
	for _, slot := range last.Slots[2:] {
		assert.True(t, slot.Empty)
		assert.Zero(t, slot.Number)
	}
}

func TestLayout_DegenerateInput(t *testing.T) {
	assert.Empty(t, collectRows(-3, 6))
	assert.Empty(t, collectRows(10, 0))
}

func TestLayout_Restartable(t *testing.T) {
	seq := Layout(12, 6)
	first := 0
	for range seq {
		first++
	}
	second := 0
	for range seq {
		second++
	}
	assert.Equal(t, 2, first)
	assert.Equal(t, first, second)
}

func TestLayout_StopsEarly(t *testing.T) {
	count := 0
	for row := range Layout(60, 6) {
		count++
		if row.Index == 2 {
			break
		}
	}
	assert.Equal(t, 3, count)
}

func TestPosition(t *testing.T) {
	row, col := Position(1, 6)
	assert.Equal(t, 0, row)
	assert.Equal(t, 0, col)

	row, col = Position(10, 6)
	assert.Equal(t, 1, row)
	assert.Equal(t, 3, col)

	row, _ = Position(0, 6)
	assert.Equal(t, -1, row)
}

func TestRowLabel(t *testing.T) {
	cases := map[int]string{0: "A", 1: "B", 25: "Z", 26: "AA", 27: "AB", 51: "AZ", 52: "BA", 701: "ZZ", 702: "AAA"}
	for index, want := range cases {
		assert.Equal(t, want, RowLabel(index), "index %d", index)
	}
	assert.Empty(t, RowLabel(-1))
}

func TestSeatLabel(t *testing.T) {
	assert.Equal(t, "A1", SeatLabel(1, 6))
	assert.Equal(t, "B4", SeatLabel(10, 6))
	assert.Empty(t, SeatLabel(0, 6))
}
