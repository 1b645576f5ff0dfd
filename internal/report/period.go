package report

import (
	"fmt"
	"strings"
	"time"

	errors "github.com/frahmantamala/petshop-commerce/internal"
)

type PeriodName string

const (
	PeriodToday     PeriodName = "today"
	PeriodYesterday PeriodName = "yesterday"
	PeriodLast7Days PeriodName = "last_7_days"
	PeriodThisMonth PeriodName = "this_month"
	PeriodLastMonth PeriodName = "last_month"
	PeriodCustom    PeriodName = "custom"
)

const (
	dateLayout       = "2006-01-02"
	maxCustomDays    = 366
	defaultPeriodKey = PeriodToday
)

// Period is the dashboard filter as sent by the client. From and To are
// inclusive calendar dates in the store time zone and only apply to custom.
type Period struct {
	Name PeriodName `json:"period"`
	From string     `json:"from,omitempty"`
	To   string     `json:"to,omitempty"`
}

// Window is a resolved period: the half-open interval [Start, End).
type Window struct {
	Period   PeriodName `json:"period"`
	Start    time.Time  `json:"start"`
	End      time.Time  `json:"end"`
	Timezone string     `json:"timezone"`
}

// Days lists the calendar dates covered by the window.
func (w Window) Days() []string {
	var days []string
	for d := w.Start; d.Before(w.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(dateLayout))
	}
	return days
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Key identifies the window for caching.
func (w Window) Key() string {
	return fmt.Sprintf("%s:%d:%d", w.Period, w.Start.Unix(), w.End.Unix())
}

func invalidPeriod(msg string) error {
	return errors.NewValidationError(msg, errors.ErrCodeInvalidPeriod)
}

// Resolve turns the period into a window relative to now in loc.
func (p Period) Resolve(now time.Time, loc *time.Location) (Window, error) {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	name := PeriodName(strings.ToLower(strings.TrimSpace(string(p.Name))))
	if name == "" {
		name = defaultPeriodKey
	}

	w := Window{Period: name, Timezone: loc.String()}
	switch name {
	case PeriodToday:
		w.Start, w.End = today, today.AddDate(0, 0, 1)
	case PeriodYesterday:
		w.Start, w.End = today.AddDate(0, 0, -1), today
	case PeriodLast7Days:
		w.Start, w.End = today.AddDate(0, 0, -6), today.AddDate(0, 0, 1)
	case PeriodThisMonth:
		w.Start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		w.End = w.Start.AddDate(0, 1, 0)
	case PeriodLastMonth:
		w.End = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		w.Start = w.End.AddDate(0, -1, 0)
	case PeriodCustom:
		from, err := time.ParseInLocation(dateLayout, strings.TrimSpace(p.From), loc)
		if err != nil {
			return Window{}, invalidPeriod("from must be a date in YYYY-MM-DD format")
		}
		to, err := time.ParseInLocation(dateLayout, strings.TrimSpace(p.To), loc)
		if err != nil {
			return Window{}, invalidPeriod("to must be a date in YYYY-MM-DD format")
		}
		if to.Before(from) {
			return Window{}, invalidPeriod("to must not be before from")
		}
		w.Start, w.End = from, to.AddDate(0, 0, 1)
		if len(w.Days()) > maxCustomDays {
			return Window{}, invalidPeriod(fmt.Sprintf("custom periods are limited to %d days", maxCustomDays))
		}
	default:
		return Window{}, invalidPeriod(fmt.Sprintf("unknown period %q", p.Name))
	}
	return w, nil
}
