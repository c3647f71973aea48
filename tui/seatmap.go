package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"moviebook-cli/display"
	"moviebook-cli/model"
	"moviebook-cli/seating"
)

// enterSeatMap activates showtime and puts the cursor on the first seat
// that can still be picked.
func (m *appModel) enterSeatMap(showtime model.Showtime) {
	m.showtime = showtime
	selection := m.session.EnterShowtime(showtime)
	booked := selection.Booked()
	if m.cursor < 1 || m.cursor > showtime.TotalSeats || booked.Contains(m.cursor) {
		m.cursor = firstOpenSeat(showtime.TotalSeats, booked)
	}
	m.state = stateSeatMap
}

func firstOpenSeat(total int, booked seating.BookedSet) int {
	for n := 1; n <= total; n++ {
		if !booked.Contains(n) {
			return n
		}
	}
	if total > 0 {
		return 1
	}
	return 0
}

func (m appModel) handleSeatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "up", "k":
		m.moveCursor(-1, 0)
	case "down", "j":
		m.moveCursor(1, 0)
	case "left", "h":
		m.moveCursor(0, -1)
	case "right", "l":
		m.moveCursor(0, 1)
	case " ", "space", "x":
		m.toggleSeat()
	case "c":
		m.session.Selection().Clear()
		m.notice = ""
	case "n":
		m.showSeatNumbers = !m.showSeatNumbers
	case "r":
		m.state = stateLoadingSeats
		return m, tea.Batch(m.fetchShowtimeCmd(m.showtime.Id, ""), m.spinner.Tick), true
	default:
		return m, nil, false
	}
	return m, nil, true
}

// moveCursor steps by whole rows or columns and stays put at the edges.
func (m *appModel) moveCursor(dRow, dCol int) {
	total := m.showtime.TotalSeats
	if total <= 0 {
		return
	}
	row, col := seating.Position(m.cursor, m.columns)
	if row < 0 {
		m.cursor = 1
		return
	}
	row += dRow
	col += dCol
	if row < 0 || col < 0 || col >= m.columns {
		return
	}
	next := row*m.columns + col + 1
	if next > total {
		return
	}
	m.cursor = next
}

func (m *appModel) toggleSeat() {
	if m.cursor < 1 {
		return
	}
	m.notice = ""
	if err := m.session.Selection().Toggle(m.cursor); err != nil {
		var constraint *seating.ConstraintError
		if errors.As(err, &constraint) && errors.Is(err, seating.ErrSeatBooked) {
			m.notice = fmt.Sprintf("Seat %s is already booked.", seating.SeatLabel(m.cursor, m.columns))
			return
		}
		m.notice = err.Error()
	}
}

func (m appModel) renderSeatMap() string {
	total := m.showtime.TotalSeats
	if total <= 0 {
		return "No seat map data."
	}
	selection := m.session.Selection()
	booked := selection.Booked()

	cellWidth := 2
	if m.showSeatNumbers {
		cellWidth = max(cellWidth, len(fmt.Sprint(total)))
	}
	rowWidth := len(seating.RowLabel(seating.RowCount(total, m.columns) - 1))

	seatStyleAvailable := lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	seatStyleSelected := lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("214")).Bold(true)
	seatStyleBooked := lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	cursorStyle := lipgloss.NewStyle().Reverse(true)

	gridWidth := m.columns*(cellWidth+1) - 1
	screenStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("214"))
	screenBorderStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")).
		Background(lipgloss.Color("236"))
	screenBar := screenBarBlock(gridWidth, "SCREEN")

	var b strings.Builder
	indent := strings.Repeat(" ", rowWidth+1)
	b.WriteString(indent)
	b.WriteString(screenBorderStyle.Render(screenBar.top))
	b.WriteString("\n")
	b.WriteString(indent)
	b.WriteString(screenStyle.Render(screenBar.mid))
	b.WriteString("\n")
	b.WriteString(indent)
	b.WriteString(screenBorderStyle.Render(screenBar.bot))
	b.WriteString("\n\n")

	for row := range seating.Layout(total, m.columns) {
		b.WriteString(fmt.Sprintf("%*s ", rowWidth, row.Label))
		for i, slot := range row.Slots {
			if i > 0 {
				b.WriteString(" ")
			}
			if slot.Empty {
				b.WriteString(padCell("", cellWidth))
				continue
			}
			state := seating.StateOf(slot.Number, booked, selection)
			text := seatToken(state)
			if m.showSeatNumbers && state != seating.Booked {
				text = fmt.Sprint(slot.Number)
			}
			rendered := padCell(text, cellWidth)
			switch state {
			case seating.Selected:
				rendered = seatStyleSelected.Render(rendered)
			case seating.Booked:
				rendered = seatStyleBooked.Render(rendered)
			default:
				rendered = seatStyleAvailable.Render(rendered)
			}
			if slot.Number == m.cursor {
				rendered = cursorStyle.Render(rendered)
			}
			b.WriteString(rendered)
		}
		b.WriteString(fmt.Sprintf(" %*s\n", rowWidth, row.Label))
	}

	legend := "Legend: [] available • ** selected • XX booked"
	if m.showSeatNumbers {
		legend = "Legend: green available • orange selected • XX booked"
	}
	available := total - booked.Len()
	percent := float64(available) / float64(max(1, total)) * 100
	counts := fmt.Sprintf("Available: %d • Booked: %d • Total: %d • %.0f%% available", available, booked.Len(), total, percent)
	return b.String() + "\n" + hint(legend) + "\n" + hint(counts)
}

func seatToken(state seating.SeatState) string {
	switch state {
	case seating.Selected:
		return "**"
	case seating.Booked:
		return "XX"
	default:
		return "[]"
	}
}

func (m appModel) summaryView() string {
	summary := m.session.Selection().Summary(m.showtime.Price)
	cursor := ""
	if m.cursor > 0 {
		cursor = fmt.Sprintf("Cursor: %s", seating.SeatLabel(m.cursor, m.columns))
	}
	if summary.Count == 0 {
		return hint(strings.TrimSpace(cursor + "   No seats selected"))
	}

	labels := make([]string, 0, len(summary.Seats))
	for _, n := range summary.Seats {
		labels = append(labels, seating.SeatLabel(n, m.columns))
	}
	lines := []string{
		lipgloss.NewStyle().Bold(true).Render("Your selection"),
		fmt.Sprintf("Seats: %s", strings.Join(labels, ", ")),
		fmt.Sprintf("%d × %s = %s", summary.Count, display.Price(m.showtime.Price), display.Price(summary.Total)),
		hint(fmt.Sprintf("%d of %d seats • %s", summary.Count, m.session.Selection().Max(), cursor)),
	}
	return lipgloss.NewStyle().
		Padding(0, 2).
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("63")).
		Render(strings.Join(lines, "\n"))
}

func padCell(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if text == "" {
		return strings.Repeat(" ", width)
	}
	if len(text) >= width {
		return text[:width]
	}
	padding := width - len(text)
	left := padding / 2
	right := padding - left
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", right)
}

type screenBlock struct {
	top string
	mid string
	bot string
}

func screenBarBlock(width int, label string) screenBlock {
	if width < len(label)+4 {
		width = len(label) + 4
	}
	if width < 10 {
		width = 10
	}

	border := "╭" + strings.Repeat("─", width-2) + "╮"
	bottom := "╰" + strings.Repeat("─", width-2) + "╯"

	labelText := " " + label + " "
	padding := width - len(labelText) - 2
	left := padding / 2
	right := padding - left
	mid := "│" + strings.Repeat(" ", left) + labelText + strings.Repeat(" ", right) + "│"
	return screenBlock{top: border, mid: mid, bot: bottom}
}
