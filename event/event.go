package event

import (
	"cmp"
	"crypto/sha1"
	"fmt"
	"slices"
	"time"

	ical "github.com/arran4/golang-ical"
)

// Event is a scheduled event
type Event struct {
	Name string    `json:"name" plist:"name" yaml:"name"`
	Date time.Time `json:"date" plist:"date" yaml:"date"`
}

// Equal compares by value. Dates are compared with time.Time.Equal
// so that location and monotonic clock reading don't matter.
func (e Event) Equal(o Event) bool {
	return e.Name == o.Name && e.Date.Equal(o.Date)
}

// String formats the date in local time
func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Date.Local().Format("2006-01-02 15:04"), e.Name)
}

// UID is stable for the same name and date
func (e Event) UID() string {
	d := fmt.Sprintf("%s\n%d", e.Name, e.Date.Unix())
	return fmt.Sprintf("%x@scheduler", sha1.Sum([]byte(d)))
}

// SortedByDate returns a copy of events sorted by date, stable for equal dates
func SortedByDate(events []Event) []Event {
	res := slices.Clone(events)
	slices.SortStableFunc(res, func(a, b Event) int {
		return cmp.Compare(a.Date.UnixNano(), b.Date.UnixNano())
	})
	return res
}

// ToICS formats events as an iCalendar document
func ToICS(events []Event, calName string) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//kjk//scheduler//EN")
	if calName != "" {
		cal.SetXWRCalName(calName)
	}
	now := time.Now().UTC()
	for _, e := range events {
		ve := cal.AddEvent(e.UID())
		ve.SetDtStampTime(now)
		ve.SetStartAt(e.Date)
		ve.SetSummary(e.Name)
	}
	return cal.Serialize()
}
