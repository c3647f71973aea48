package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"moviebook-cli/account"
	"moviebook-cli/booking"
	"moviebook-cli/catalog"
	"moviebook-cli/display"
	"moviebook-cli/model"
	"moviebook-cli/seating"
	"moviebook-cli/service"
	"moviebook-cli/session"
	"moviebook-cli/store"
)

type appState int

const (
	stateLoadingMovies appState = iota
	stateSelectMovie
	stateLoadingMovie
	stateSelectShowtime
	stateLoadingSeats
	stateSeatMap
	stateGuestForm
	stateSubmitting
	stateConfirmed
	stateLoadingBookings
	stateBookings
	stateError
)

// Deps is what the app needs from the outside. Backend is usually the
// *service.Client shared with Catalog and Accounts.
type Deps struct {
	Context  context.Context
	Catalog  *catalog.Reader
	Accounts *account.Service
	Backend  booking.Backend
	Session  *session.Session
	Columns  int
	Logger   *zap.Logger
}

type appModel struct {
	ctx      context.Context
	catalog  *catalog.Reader
	accounts *account.Service
	session  *session.Session
	booker   *booking.Orchestrator
	progress chan booking.State
	logger   *zap.Logger

	state     appState
	lastState appState
	err       error
	notice    string

	width  int
	height int

	movies   []model.Movie
	movie    model.Movie
	showtime model.Showtime
	columns  int
	cursor   int

	movieList    list.Model
	showtimeList list.Model
	bookingList  list.Model

	guestInputs []textinput.Model
	guestFocus  int

	submitState booking.State
	confirmed   model.Booking

	showSeatNumbers bool

	spinner spinner.Model
}

type errMsg struct {
	err            error
	returnState    appState
	returnStateSet bool
}

type moviesMsg struct {
	movies []model.Movie
	err    error
}

type movieMsg struct {
	movie model.Movie
	err   error
}

type showtimeMsg struct {
	showtime model.Showtime
	notice   string
	err      error
}

type progressMsg booking.State

type bookingMsg struct {
	booking model.Booking
	err     error
}

type bookingsMsg struct {
	views []account.BookingView
	err   error
}

type cancelMsg struct {
	bookingID string
	err       error
}

func New(deps Deps) tea.Model {
	if deps.Context == nil {
		deps.Context = context.Background()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Session == nil {
		deps.Session = session.New(seating.DefaultMaxSeats)
	}
	if deps.Columns <= 0 {
		deps.Columns = seating.DefaultColumns
	}

	progress := make(chan booking.State, 16)
	m := appModel{
		ctx:      deps.Context,
		catalog:  deps.Catalog,
		accounts: deps.Accounts,
		session:  deps.Session,
		logger:   deps.Logger,
		progress: progress,
		state:    stateLoadingMovies,
		columns:  deps.Columns,
	}
	m.booker = booking.New(deps.Backend,
		booking.WithLogger(deps.Logger),
		booking.WithObserver(func(state booking.State) {
			select {
			case progress <- state:
			default:
			}
		}),
	)

	m.movieList = newList("Select Movie")
	m.showtimeList = newList("Select Showtime")
	m.bookingList = newList("My Bookings")
	m.guestInputs = newGuestInputs()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	m.spinner = sp

	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.fetchMoviesCmd(false), m.waitProgressCmd(), m.spinner.Tick)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return m, nil

	case tea.KeyMsg:
		if m.state == stateGuestForm {
			return m.updateGuestForm(msg)
		}
		if m.handleFilterInput(msg) {
			return m, nil
		}
		m, cmd, handled := m.handleKey(msg)
		if handled {
			return m, cmd
		}
		// fallthrough to component update
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.isLoadingState() {
			return m, cmd
		}
		return m, nil

	case errMsg:
		m.err = msg.err
		if msg.returnStateSet {
			m.lastState = msg.returnState
		} else {
			m.lastState = recoverStateFrom(m.state)
		}
		m.state = stateError
		return m, nil

	case moviesMsg:
		if msg.err != nil {
			return m, m.failCmd(msg.err)
		}
		m.movies = msg.movies
		m.refreshMovieList()
		m.state = stateSelectMovie
		return m, nil

	case movieMsg:
		if msg.err != nil {
			return m, m.failCmd(msg.err)
		}
		m.movie = msg.movie
		_ = store.RememberMovie(m.movie)
		items := buildShowtimeItems(m.movie.Showtimes)
		if len(items) == 0 {
			return m, errWithOptionsCmd(fmt.Errorf("%s has no showtimes scheduled", m.movie.Title), stateSelectMovie)
		}
		m.showtimeList.Title = "Showtimes • " + m.movie.Title
		m.showtimeList.SetItems(items)
		m.showtimeList.ResetFilter()
		m.showtimeList.Select(0)
		m.state = stateSelectShowtime
		return m, nil

	case showtimeMsg:
		if msg.err != nil {
			return m, m.failCmd(msg.err)
		}
		m.enterSeatMap(msg.showtime)
		m.notice = msg.notice
		return m, nil

	case progressMsg:
		m.submitState = booking.State(msg)
		return m, m.waitProgressCmd()

	case bookingMsg:
		return m.handleBookingResult(msg)

	case bookingsMsg:
		if msg.err != nil {
			return m, m.failCmd(msg.err)
		}
		m.bookingList.SetItems(buildBookingItems(msg.views))
		m.state = stateBookings
		return m, nil

	case cancelMsg:
		if msg.err != nil {
			return m, errWithOptionsCmd(msg.err, stateBookings)
		}
		m.notice = fmt.Sprintf("Booking %s cancelled.", msg.bookingID)
		m.catalog.Invalidate()
		m.state = stateLoadingBookings
		return m, tea.Batch(m.fetchBookingsCmd(), m.spinner.Tick)
	}

	var cmd tea.Cmd
	switch m.state {
	case stateSelectMovie:
		m.movieList, cmd = m.movieList.Update(msg)
	case stateSelectShowtime:
		m.showtimeList, cmd = m.showtimeList.Update(msg)
	case stateBookings:
		m.bookingList, cmd = m.bookingList.Update(msg)
	}
	return m, cmd
}

func (m appModel) View() string {
	header := m.headerView()
	switch m.state {
	case stateLoadingMovies, stateLoadingMovie, stateLoadingSeats, stateLoadingBookings:
		return header + "\n\n" + m.loadingView()
	case stateSelectMovie:
		return header + "\n\n" + m.movieList.View() + m.noticeView()
	case stateSelectShowtime:
		return header + "\n\n" + m.showtimeList.View()
	case stateSeatMap:
		return header + "\n\n" + m.renderSeatMap() + "\n\n" + m.summaryView() + m.noticeView()
	case stateGuestForm:
		return header + "\n\n" + m.guestFormView() + m.noticeView()
	case stateSubmitting:
		return header + "\n\n" + m.submittingView()
	case stateConfirmed:
		return header + "\n\n" + m.confirmationView() + m.noticeView()
	case stateBookings:
		return header + "\n\n" + m.bookingList.View() + m.noticeView()
	case stateError:
		return header + "\n\n" + m.errorView()
	default:
		return header
	}
}

func (m appModel) headerView() string {
	title := lipgloss.NewStyle().Bold(true).Render("Moviebook")
	sub := []string{}
	if user := m.session.User(); user != nil {
		sub = append(sub, fmt.Sprintf("Signed in: %s", user.Name))
	} else {
		sub = append(sub, "Guest")
	}
	if filter := m.session.Filter(); !filter.Empty() {
		if filter.Genre != "" {
			sub = append(sub, "Genre: "+filter.Genre)
		}
		if filter.Language != "" {
			sub = append(sub, "Language: "+filter.Language)
		}
	}
	if m.state >= stateSelectShowtime && m.state != stateBookings && m.state != stateLoadingBookings && m.movie.Title != "" {
		sub = append(sub, "Movie: "+display.Truncate(m.movie.Title, 32))
	}
	if m.state >= stateSeatMap && m.state <= stateConfirmed && m.showtime.Id != "" {
		sub = append(sub, fmt.Sprintf("Showtime: %s %s • Screen %s",
			display.Date(m.showtime.ShowDate),
			display.Time(m.showtime.StartTime),
			m.showtime.ScreenNumber,
		))
	}
	meta := strings.Join(sub, " • ")
	if meta != "" {
		meta = "\n" + lipgloss.NewStyle().Faint(true).Render(meta)
	}

	hints := "ctrl+c quit • esc back • type to filter"
	switch m.state {
	case stateSelectMovie:
		hints = "ctrl+c quit • type to filter • enter showtimes • ctrl+g genre • ctrl+l language • ctrl+r refresh"
		if m.session.LoggedIn() {
			hints += " • ctrl+b my bookings"
		}
	case stateSelectShowtime:
		hints = "ctrl+c quit • esc back • type to filter • enter seat map"
	case stateSeatMap:
		hints = "ctrl+c quit • esc back • arrows move • space select • c clear • n numbers • r refresh • enter checkout"
	case stateGuestForm:
		hints = "ctrl+c quit • esc back • tab next field • enter confirm"
	case stateSubmitting:
		hints = "ctrl+c quit"
	case stateConfirmed:
		hints = "ctrl+c quit • enter back to movies"
	case stateBookings:
		hints = "ctrl+c quit • esc back • type to filter • ctrl+x cancel booking"
	}
	filterLine := ""
	if listPtr := m.activeList(); listPtr != nil {
		if filter := listPtr.FilterValue(); filter != "" {
			filterLine = "\n" + hint(fmt.Sprintf("Filter: %s", filter))
		}
	}
	return title + meta + filterLine + "\n" + hint(hints)
}

func (m appModel) errorView() string {
	message := lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(service.Message(m.err))
	var extra string
	switch {
	case booking.SeatsMayBeHeld(m.err):
		extra = "\n" + hint("Your seats were reserved but the booking was not saved. Contact the cinema before trying again.")
	case booking.IsIdentityError(m.err):
		extra = "\n" + hint("We could not create a guest account with these details. Check your email and phone.")
	case booking.IsReservationError(m.err):
		extra = "\n" + hint("The seats could not be reserved. Your selection is unchanged; try again.")
	}
	return message + extra + "\n\n" + hint("Press esc to go back or ctrl+c to quit.")
}

func (m appModel) noticeView() string {
	if m.notice == "" {
		return ""
	}
	return "\n\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render(m.notice)
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit, true
	case "q":
		if m.state != stateSubmitting {
			return m, tea.Quit, true
		}
	case "esc":
		if listPtr := m.activeList(); listPtr != nil {
			if listPtr.SettingFilter() || listPtr.IsFiltered() {
				listPtr.ResetFilter()
				return m, nil, true
			}
		}
		model, cmd := m.goBack()
		return model, cmd, true
	case "ctrl+r":
		if m.state == stateSelectMovie {
			m.state = stateLoadingMovies
			return m, tea.Batch(m.fetchMoviesCmd(true), m.spinner.Tick), true
		}
	case "ctrl+g":
		if m.state == stateSelectMovie {
			m.cycleGenre()
			return m, nil, true
		}
	case "ctrl+l":
		if m.state == stateSelectMovie {
			m.cycleLanguage()
			return m, nil, true
		}
	case "ctrl+b":
		if m.state == stateSelectMovie && m.session.LoggedIn() {
			m.notice = ""
			m.state = stateLoadingBookings
			return m, tea.Batch(m.fetchBookingsCmd(), m.spinner.Tick), true
		}
	case "ctrl+x":
		if m.state == stateBookings {
			return m.cancelSelectedBooking()
		}
	case "enter":
		return m.handleEnter()
	}

	if m.state == stateSeatMap {
		return m.handleSeatKey(msg)
	}
	return m, nil, false
}

func (m appModel) handleEnter() (tea.Model, tea.Cmd, bool) {
	switch m.state {
	case stateSelectMovie:
		item, ok := m.movieList.SelectedItem().(movieItem)
		if !ok {
			return m, nil, true
		}
		m.notice = ""
		m.state = stateLoadingMovie
		return m, tea.Batch(m.fetchMovieCmd(item.movie.Id), m.spinner.Tick), true
	case stateSelectShowtime:
		item, ok := m.showtimeList.SelectedItem().(showtimeItem)
		if !ok {
			return m, nil, true
		}
		m.state = stateLoadingSeats
		return m, tea.Batch(m.fetchShowtimeCmd(item.showtime.Id, ""), m.spinner.Tick), true
	case stateSeatMap:
		return m.startCheckout()
	case stateConfirmed:
		m.notice = ""
		m.state = stateLoadingMovies
		return m, tea.Batch(m.fetchMoviesCmd(true), m.spinner.Tick), true
	case stateError:
		model, cmd := m.goBack()
		return model, cmd, true
	}
	return m, nil, false
}

func (m appModel) goBack() (tea.Model, tea.Cmd) {
	m.notice = ""
	switch m.state {
	case stateSelectShowtime:
		m.state = stateSelectMovie
	case stateSeatMap:
		m.session.LeaveShowtime()
		m.state = stateSelectShowtime
	case stateGuestForm:
		m.blurGuestInputs()
		m.state = stateSeatMap
	case stateConfirmed, stateBookings:
		m.state = stateSelectMovie
	case stateError:
		m.state = m.lastState
	default:
		return m, nil
	}
	return m, nil
}

func (m *appModel) refreshMovieList() {
	filter := m.session.Filter()
	m.movieList.SetItems(buildMovieItems(filter.Apply(m.movies)))
	m.movieList.ResetFilter()
	m.movieList.Select(0)
}

func (m *appModel) cycleGenre() {
	filter := m.session.Filter()
	filter.Genre = nextFacet(catalog.Genres(m.movies), filter.Genre)
	m.session.SetFilter(filter)
	m.refreshMovieList()
}

func (m *appModel) cycleLanguage() {
	filter := m.session.Filter()
	filter.Language = nextFacet(catalog.Languages(m.movies), filter.Language)
	m.session.SetFilter(filter)
	m.refreshMovieList()
}

// nextFacet steps through values and back to "" (any).
func nextFacet(values []string, current string) string {
	if len(values) == 0 {
		return ""
	}
	if current == "" {
		return values[0]
	}
	for i, value := range values {
		if value == current {
			if i+1 < len(values) {
				return values[i+1]
			}
			return ""
		}
	}
	return ""
}

func (m *appModel) handleFilterInput(msg tea.KeyMsg) bool {
	listPtr := m.activeList()
	if listPtr == nil {
		return false
	}
	if !listPtr.FilteringEnabled() {
		return false
	}
	switch msg.Type {
	case tea.KeyRunes:
		if len(msg.Runes) == 0 {
			return false
		}
		m.appendFilter(listPtr, string(msg.Runes))
		return true
	case tea.KeySpace:
		m.appendFilter(listPtr, " ")
		return true
	case tea.KeyBackspace, tea.KeyDelete:
		if listPtr.FilterValue() == "" {
			return false
		}
		m.popFilter(listPtr)
		return true
	default:
		return false
	}
}

func (m *appModel) appendFilter(listPtr *list.Model, value string) {
	if value == "" {
		return
	}
	current := listPtr.FilterValue()
	listPtr.SetFilterText(current + value)
}

func (m *appModel) popFilter(listPtr *list.Model) {
	value := listPtr.FilterValue()
	if value == "" {
		return
	}
	value = trimLastRune(value)
	if value == "" {
		listPtr.ResetFilter()
		return
	}
	listPtr.SetFilterText(value)
}

func trimLastRune(value string) string {
	runes := []rune(value)
	if len(runes) <= 1 {
		return ""
	}
	return string(runes[:len(runes)-1])
}

func (m *appModel) activeList() *list.Model {
	switch m.state {
	case stateSelectMovie:
		return &m.movieList
	case stateSelectShowtime:
		return &m.showtimeList
	case stateBookings:
		return &m.bookingList
	default:
		return nil
	}
}

func (m appModel) isLoadingState() bool {
	return m.state == stateLoadingMovies ||
		m.state == stateLoadingMovie ||
		m.state == stateLoadingSeats ||
		m.state == stateLoadingBookings ||
		m.state == stateSubmitting
}

func (m appModel) loadingView() string {
	title := "Loading"
	switch m.state {
	case stateLoadingMovies:
		title = "Loading movies"
	case stateLoadingMovie:
		title = "Loading showtimes"
	case stateLoadingSeats:
		title = "Loading seat map"
	case stateLoadingBookings:
		title = "Loading your bookings"
	}

	return fmt.Sprintf("%s %s\n\n%s", m.spinner.View(), title, hint("Fetching data..."))
}

func (m *appModel) resizeLists() {
	if m.width == 0 || m.height == 0 {
		return
	}
	h := m.height - 6
	if h < 6 {
		h = 6
	}
	m.movieList.SetSize(m.width, h)
	m.showtimeList.SetSize(m.width, h)
	m.bookingList.SetSize(m.width, h)
}

func newList(title string) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = title
	l.Filter = caseInsensitiveFilter
	l.SetFilteringEnabled(true)
	l.SetShowFilter(true)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	return l
}

func hint(text string) string {
	return lipgloss.NewStyle().Faint(true).Render(text)
}

func errCmd(err error) tea.Cmd {
	return func() tea.Msg {
		return errMsg{err: err}
	}
}

func errWithOptionsCmd(err error, returnState appState) tea.Cmd {
	return func() tea.Msg {
		return errMsg{
			err:            err,
			returnState:    returnState,
			returnStateSet: true,
		}
	}
}

// failCmd reports err and drops credentials the API no longer accepts.
func (m appModel) failCmd(err error) tea.Cmd {
	return errCmd(m.sessionError(err))
}

func (m appModel) sessionError(err error) error {
	if !service.IsUnauthorized(err) {
		return err
	}
	m.session.HandleUnauthorized()
	if perr := m.session.Persist(); perr != nil {
		m.logger.Warn("persist session", zap.Error(perr))
	}
	return errors.New("your session has expired, please log in again")
}

func recoverStateFrom(state appState) appState {
	switch state {
	case stateLoadingMovies:
		return stateSelectMovie
	case stateLoadingMovie:
		return stateSelectMovie
	case stateLoadingSeats:
		return stateSelectShowtime
	case stateLoadingBookings:
		return stateSelectMovie
	case stateSubmitting:
		return stateSeatMap
	case stateError:
		return stateSelectMovie
	default:
		return state
	}
}

func caseInsensitiveFilter(term string, targets []string) []list.Rank {
	term = strings.ToLower(term)
	lower := make([]string, len(targets))
	for i, t := range targets {
		lower[i] = strings.ToLower(t)
	}
	return list.DefaultFilter(term, lower)
}

func (m appModel) fetchMoviesCmd(refresh bool) tea.Cmd {
	return func() tea.Msg {
		movies, err := m.catalog.Movies(m.ctx, m.session.CinemaID(), refresh)
		if err != nil {
			return moviesMsg{err: err}
		}
		return moviesMsg{movies: movies}
	}
}

func (m appModel) fetchMovieCmd(movieID string) tea.Cmd {
	return func() tea.Msg {
		movie, err := m.catalog.Movie(m.ctx, movieID)
		if err != nil {
			return movieMsg{err: err}
		}
		return movieMsg{movie: movie}
	}
}

func (m appModel) fetchShowtimeCmd(showtimeID string, notice string) tea.Cmd {
	return func() tea.Msg {
		showtime, err := m.catalog.Showtime(m.ctx, showtimeID)
		if err != nil {
			return showtimeMsg{err: err}
		}
		return showtimeMsg{showtime: showtime, notice: notice}
	}
}

func (m appModel) fetchBookingsCmd() tea.Cmd {
	user := m.session.User()
	return func() tea.Msg {
		if user == nil {
			return bookingsMsg{err: errors.New("log in to see your bookings")}
		}
		views, err := m.accounts.Bookings(m.ctx, user.Id)
		if err != nil {
			return bookingsMsg{err: err}
		}
		return bookingsMsg{views: views}
	}
}

func (m appModel) cancelSelectedBooking() (tea.Model, tea.Cmd, bool) {
	item, ok := m.bookingList.SelectedItem().(bookingItem)
	if !ok {
		return m, nil, true
	}
	if item.view.Booking.Status == model.BookingStatusCancelled {
		m.notice = "That booking is already cancelled."
		return m, nil, true
	}
	return m, func() tea.Msg {
		err := m.accounts.Cancel(m.ctx, item.view.Booking)
		return cancelMsg{bookingID: item.view.Booking.Id, err: err}
	}, true
}

func (m appModel) waitProgressCmd() tea.Cmd {
	return func() tea.Msg {
		return progressMsg(<-m.progress)
	}
}
