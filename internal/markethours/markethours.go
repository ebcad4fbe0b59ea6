// Package markethours answers whether the NSE cash market is open and when
// it next opens or closes.
package markethours

import (
	"fmt"
	"time"
)

// IST is the Indian Standard Time location (UTC+5:30).
var IST = time.FixedZone("IST", 5*3600+30*60)

// Market hours in IST
const (
	OpenHour    = 9
	OpenMinute  = 15
	CloseHour   = 15
	CloseMinute = 30
)

// Phase labels returned in Status.
const (
	PhaseOpen     = "open"
	PhasePreOpen  = "pre-open"
	PhaseClosed   = "closed"
	PhaseWeekend  = "weekend"
	PhaseHoliday  = "holiday"
	preOpenWindow = 15 * time.Minute
)

// Status is a structured market status for display.
type Status struct {
	Open     bool      `json:"open"`
	Phase    string    `json:"phase"`
	Holiday  string    `json:"holiday,omitempty"`
	Message  string    `json:"message"`
	NextOpen time.Time `json:"nextOpen"`
	ClosesAt time.Time `json:"closesAt"`
}

// IsMarketOpen returns true if t falls within NSE trading hours
// (9:15 AM – 3:30 PM IST, Mon–Fri, excluding holidays).
func IsMarketOpen(t time.Time) bool {
	ist := t.In(IST)
	if !IsTradingDay(ist) {
		return false
	}
	hm := ist.Hour()*60 + ist.Minute()
	return hm >= OpenHour*60+OpenMinute && hm < CloseHour*60+CloseMinute
}

// IsWeekday returns true if t is Mon–Fri.
func IsWeekday(t time.Time) bool {
	wd := t.In(IST).Weekday()
	return wd >= time.Monday && wd <= time.Friday
}

// IsTradingDay returns true if t is a weekday and not a holiday.
func IsTradingDay(t time.Time) bool {
	ist := t.In(IST)
	return IsWeekday(ist) && !IsHoliday(ist)
}

// NextOpen returns the next market open time (9:15 AM IST on next trading day).
// If t is before today's open on a trading day, returns today's open.
func NextOpen(t time.Time) time.Time {
	ist := t.In(IST)

	todayOpen := time.Date(ist.Year(), ist.Month(), ist.Day(), OpenHour, OpenMinute, 0, 0, IST)
	if ist.Before(todayOpen) && IsTradingDay(ist) {
		return todayOpen
	}

	d := ist.AddDate(0, 0, 1)
	for i := 0; i < 10; i++ { // max 10 days ahead (holidays + weekends)
		if IsTradingDay(d) {
			return time.Date(d.Year(), d.Month(), d.Day(), OpenHour, OpenMinute, 0, 0, IST)
		}
		d = d.AddDate(0, 0, 1)
	}
	return time.Date(ist.Year(), ist.Month(), ist.Day()+1, OpenHour, OpenMinute, 0, 0, IST)
}

// TodayClose returns today's market close time (3:30 PM IST).
func TodayClose(t time.Time) time.Time {
	ist := t.In(IST)
	return time.Date(ist.Year(), ist.Month(), ist.Day(), CloseHour, CloseMinute, 0, 0, IST)
}

// TimeUntilClose returns the duration until today's close.
// Returns 0 if market is already closed.
func TimeUntilClose(t time.Time) time.Duration {
	d := TodayClose(t).Sub(t.In(IST))
	if d < 0 {
		return 0
	}
	return d
}

// TimeUntilOpen returns the duration until the next market open.
func TimeUntilOpen(t time.Time) time.Duration {
	return NextOpen(t).Sub(t.In(IST))
}

// CurrentStatus builds the Status at t.
func CurrentStatus(t time.Time) Status {
	ist := t.In(IST)
	s := Status{NextOpen: NextOpen(ist)}

	switch {
	case IsMarketOpen(ist):
		s.Open = true
		s.Phase = PhaseOpen
		s.ClosesAt = TodayClose(ist)
		s.NextOpen = time.Time{}
	case !IsWeekday(ist):
		s.Phase = PhaseWeekend
	case IsHoliday(ist):
		s.Phase = PhaseHoliday
		s.Holiday, _ = HolidayName(ist)
	case s.NextOpen.Sub(ist) <= preOpenWindow && s.NextOpen.YearDay() == ist.YearDay():
		s.Phase = PhasePreOpen
	default:
		s.Phase = PhaseClosed
	}
	s.Message = StatusString(ist)
	if s.Holiday != "" {
		s.Message = fmt.Sprintf("%s (%s)", s.Message, s.Holiday)
	}
	return s
}

// StatusString returns a human-readable market status.
func StatusString(t time.Time) string {
	if IsMarketOpen(t) {
		return fmt.Sprintf("Market Open, closes in %s", fmtDur(TimeUntilClose(t)))
	}
	next := NextOpen(t)
	ist := next.In(IST)
	return fmt.Sprintf("Market Closed, opens %s %s (%s)",
		ist.Weekday().String()[:3], ist.Format("15:04"), fmtDur(next.Sub(t)))
}

func fmtDur(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
