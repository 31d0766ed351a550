// Package period maps named period tokens to concrete date windows.
package period

import "time"

// Supported period tokens.
const (
	CurrentWeek  = "current-week"
	CurrentMonth = "current-month"
	CurrentYear  = "current-year"
	LastMonth    = "last-month"
)

// Window is a closed date interval [Start, End] used to filter
// expenses. End sits at 23:59:59.999 of the window's last day.
type Window struct {
	Start time.Time
	End   time.Time
	Label string
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// endOfDay is the last representable instant of the day holding t, at
// millisecond precision to match how dates serialize on the wire.
func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// Resolve maps a period token to its window relative to the reference
// instant, using ref's location for calendar boundaries. Unrecognized
// or empty tokens deliberately fall back to current-month rather than
// failing; callers that care can compare the returned Label.
//
// Start and End are each derived directly from ref. Nothing is
// computed from an already-shifted intermediate, so the week window is
// always the Sunday through Saturday containing ref.
func Resolve(token string, ref time.Time) Window {
	y, m, _ := ref.Date()

	switch token {
	case CurrentWeek:
		weekStart := ref.AddDate(0, 0, -int(ref.Weekday()))
		sy, sm, sd := weekStart.Date()
		start := time.Date(sy, sm, sd, 0, 0, 0, 0, ref.Location())
		return Window{
			Start: start,
			End:   endOfDay(start.AddDate(0, 0, 6)),
			Label: CurrentWeek,
		}
	case CurrentYear:
		return Window{
			Start: time.Date(y, time.January, 1, 0, 0, 0, 0, ref.Location()),
			End:   endOfDay(time.Date(y, time.December, 31, 0, 0, 0, 0, ref.Location())),
			Label: CurrentYear,
		}
	case LastMonth:
		firstOfThis := time.Date(y, m, 1, 0, 0, 0, 0, ref.Location())
		return Window{
			Start: firstOfThis.AddDate(0, -1, 0),
			End:   endOfDay(firstOfThis.AddDate(0, 0, -1)),
			Label: LastMonth,
		}
	case CurrentMonth:
		return monthWindow(y, m, ref.Location(), CurrentMonth)
	default:
		w := monthWindow(y, m, ref.Location(), CurrentMonth)
		return w
	}
}

func monthWindow(y int, m time.Month, loc *time.Location, label string) Window {
	start := time.Date(y, m, 1, 0, 0, 0, 0, loc)
	return Window{
		Start: start,
		End:   endOfDay(start.AddDate(0, 1, -1)),
		Label: label,
	}
}
