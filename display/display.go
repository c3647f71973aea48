// Package display formats prices, dates and times for terminal output and
// checks admin-entered schedule dates.
package display

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// MaxAdvanceDays is how far ahead a showtime may be scheduled.
const MaxAdvanceDays = 7

var printer = message.NewPrinter(language.AmericanEnglish)

// Price renders an amount in US dollars, e.g. "$1,234.50".
func Price(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + "$" + printer.Sprintf("%.2f", math.Round(amount*100)/100)
}

// Time turns a 24h "HH:MM" or "HH:MM:SS" clock into "7:30 PM". Unparseable
// input is returned unchanged.
func Time(clock string) string {
	clock = strings.TrimSpace(clock)
	for _, layout := range []string{"15:04", time.TimeOnly} {
		if t, err := time.Parse(layout, clock); err == nil {
			return t.Format("3:04 PM")
		}
	}
	return clock
}

// Date turns "2006-01-02" into "Jan 02, 2006". Unparseable input is returned
// unchanged.
func Date(date string) string {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(date))
	if err != nil {
		return date
	}
	return t.Format("Jan 02, 2006")
}

// ValidateShowDate accepts dates from today through MaxAdvanceDays ahead,
// inclusive, in now's location.
func ValidateShowDate(date string, now time.Time) error {
	day, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(date), now.Location())
	if err != nil {
		return fmt.Errorf("show date must look like 2006-01-02: %q", date)
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	latest := today.AddDate(0, 0, MaxAdvanceDays)
	if day.Before(today) || day.After(latest) {
		return fmt.Errorf("show date must be between %s and %s",
			today.Format(time.DateOnly), latest.Format(time.DateOnly))
	}
	return nil
}

// Truncate shortens text to width cells, ending with an ellipsis.
func Truncate(text string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(text, width, "…")
}

// Duration renders minutes as "2h 15m".
func Duration(minutes int) string {
	if minutes <= 0 {
		return "-"
	}
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %02dm", h, m)
	}
}
