package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"moviebook-cli/booking"
	"moviebook-cli/display"
	"moviebook-cli/model"
	"moviebook-cli/seating"
)

const (
	guestName = iota
	guestEmail
	guestPhone
)

func newGuestInputs() []textinput.Model {
	inputs := make([]textinput.Model, 3)
	for i := range inputs {
		in := textinput.New()
		in.CharLimit = 80
		in.Width = 40
		switch i {
		case guestName:
			in.Prompt = "Name  › "
			in.Placeholder = "Jane Doe"
		case guestEmail:
			in.Prompt = "Email › "
			in.Placeholder = "jane@example.com"
		case guestPhone:
			in.Prompt = "Phone › "
			in.Placeholder = "+1 555 123 4567"
		}
		inputs[i] = in
	}
	return inputs
}

func (m appModel) guest() booking.Guest {
	return booking.Guest{
		Name:  m.guestInputs[guestName].Value(),
		Email: m.guestInputs[guestEmail].Value(),
		Phone: m.guestInputs[guestPhone].Value(),
	}
}

func (m *appModel) focusGuestInput(i int) tea.Cmd {
	m.guestFocus = (i + len(m.guestInputs)) % len(m.guestInputs)
	var cmd tea.Cmd
	for j := range m.guestInputs {
		if j == m.guestFocus {
			cmd = m.guestInputs[j].Focus()
			continue
		}
		m.guestInputs[j].Blur()
	}
	return cmd
}

func (m *appModel) blurGuestInputs() {
	for j := range m.guestInputs {
		m.guestInputs[j].Blur()
	}
}

// startCheckout submits right away for a signed-in user and asks a guest
// for contact details first.
func (m appModel) startCheckout() (tea.Model, tea.Cmd, bool) {
	if m.session.Selection().Len() == 0 {
		m.notice = "Please select at least one seat."
		return m, nil, true
	}
	m.notice = ""
	if m.session.LoggedIn() {
		model, cmd := m.submit()
		return model, cmd, true
	}
	m.state = stateGuestForm
	cmd := m.focusGuestInput(guestName)
	return m, tea.Batch(cmd, textinput.Blink), true
}

func (m appModel) updateGuestForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		return m.goBack()
	case "tab", "down":
		return m, m.focusGuestInput(m.guestFocus + 1)
	case "shift+tab", "up":
		return m, m.focusGuestInput(m.guestFocus - 1)
	case "enter":
		if m.guestFocus < guestPhone {
			return m, m.focusGuestInput(m.guestFocus + 1)
		}
		m.blurGuestInputs()
		return m.submit()
	}

	var cmd tea.Cmd
	m.guestInputs[m.guestFocus], cmd = m.guestInputs[m.guestFocus].Update(msg)
	return m, cmd
}

func (m appModel) guestFormView() string {
	title := lipgloss.NewStyle().Bold(true).Render("Guest checkout")
	lines := []string{title, hint("We create a guest account so you can find this booking later."), ""}
	for _, in := range m.guestInputs {
		lines = append(lines, in.View())
	}
	summary := m.session.Selection().Summary(m.showtime.Price)
	lines = append(lines, "", hint(fmt.Sprintf("%d seats • %s", summary.Count, display.Price(summary.Total))))
	return strings.Join(lines, "\n")
}

func (m appModel) submit() (tea.Model, tea.Cmd) {
	req := booking.Request{
		ShowtimeID: m.showtime.Id,
		Selection:  m.session.Selection(),
		User:       m.session.User(),
		Guest:      m.guest(),
	}
	if m.state == stateSubmitting {
		return m, nil
	}
	m.lastState = m.state
	m.state = stateSubmitting
	m.submitState = booking.Validating
	submit := func() tea.Msg {
		result, err := m.booker.Submit(m.ctx, req)
		return bookingMsg{booking: result, err: err}
	}
	return m, tea.Batch(submit, m.spinner.Tick)
}

func (m appModel) handleBookingResult(msg bookingMsg) (tea.Model, tea.Cmd) {
	if errors.Is(msg.err, booking.ErrSubmissionInFlight) {
		return m, nil
	}
	from := m.lastState
	if from != stateGuestForm {
		from = stateSeatMap
	}

	switch {
	case msg.err == nil:
		m.confirmed = msg.booking
		m.catalog.Invalidate()
		m.notice = repricedNotice(m.showtime.Price, msg.booking)
		m.state = stateConfirmed
		return m, nil
	case booking.IsValidationError(msg.err):
		m.state = from
		m.notice = validationNotice(msg.err)
		if from == stateGuestForm {
			return m, m.focusGuestInput(m.guestFocus)
		}
		return m, nil
	case booking.SeatsTaken(msg.err):
		m.state = stateLoadingSeats
		notice := "Some seats were taken while you were choosing. The map has been refreshed."
		return m, tea.Batch(m.fetchShowtimeCmd(m.showtime.Id, notice), m.spinner.Tick)
	default:
		return m, errWithOptionsCmd(m.sessionError(msg.err), stateSeatMap)
	}
}

// repricedNotice explains a charged total that differs from the one the
// summary showed, which happens when the showtime price changed meanwhile.
func repricedNotice(shownPerSeat float64, b model.Booking) string {
	shown := display.Price(seating.PriceFor(shownPerSeat, len(b.Seats)))
	charged := display.Price(b.TotalPrice)
	if shown == charged {
		return ""
	}
	return fmt.Sprintf("The ticket price changed since the seat map loaded: you were charged %s, not %s.", charged, shown)
}

// validationNotice drops the sentinel prefix so the form shows only the
// field problem.
func validationNotice(err error) string {
	var failure *booking.Failure
	if errors.As(err, &failure) && failure.Err != nil {
		return failure.Err.Error()
	}
	return err.Error()
}

func (m appModel) submittingView() string {
	steps := []booking.State{
		booking.CheckingAvailability,
		booking.EnsuringIdentity,
		booking.ReservingSeats,
		booking.RecordingBooking,
	}
	lines := []string{fmt.Sprintf("%s Booking your seats", m.spinner.View()), ""}
	for _, step := range steps {
		if step == booking.EnsuringIdentity && m.session.LoggedIn() {
			continue
		}
		marker := "  "
		switch {
		case m.submitState == step:
			marker = "› "
		case m.submitState > step && m.submitState.Busy():
			marker = "✓ "
		}
		lines = append(lines, marker+step.String())
	}
	return strings.Join(lines, "\n")
}

func (m appModel) confirmationView() string {
	headerChip := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("42")).
		Padding(0, 2)

	labels := make([]string, 0, len(m.confirmed.Seats))
	for _, seat := range m.confirmed.Seats {
		if n, err := strconv.Atoi(seat); err == nil {
			labels = append(labels, seating.SeatLabel(n, m.columns))
			continue
		}
		labels = append(labels, seat)
	}

	content := strings.Join([]string{
		headerChip.Render("Booking confirmed"),
		"",
		fmt.Sprintf("Booking: %s", m.confirmed.Id),
		fmt.Sprintf("Movie:   %s", m.movie.Title),
		fmt.Sprintf("When:    %s %s • Screen %s", display.Date(m.showtime.ShowDate), display.Time(m.showtime.StartTime), m.showtime.ScreenNumber),
		fmt.Sprintf("Seats:   %s", strings.Join(labels, ", ")),
		fmt.Sprintf("Total:   %s", display.Price(m.confirmed.TotalPrice)),
		"",
		hint("Press enter to book another movie."),
	}, "\n")

	panelStyle := lipgloss.NewStyle().
		Padding(1, 3).
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("42")).
		MarginTop(1)
	if m.width > 56 {
		panelStyle = panelStyle.Width(min(m.width-8, 84))
	}
	return panelStyle.Render(content)
}
