// Package doctors holds the read-only doctor catalog and the search logic
// that derives the listing from it.
package doctors

import (
	"sort"
	"time"
)

// DateLayout is the key format used by Availability.
const DateLayout = "2006-01-02"

// Availability maps an ISO date to the ordered times bookable on that date.
type Availability map[string][]string

// Doctor is a provider profile. Doctors are seeded once and never mutated.
type Doctor struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Specialization string       `json:"specialization"`
	Image          string       `json:"image"`
	Rating         float64      `json:"rating"`
	Experience     int          `json:"experience"`
	Education      string       `json:"education"`
	Location       string       `json:"location"`
	About          string       `json:"about"`
	Availability   Availability `json:"availability"`
	IsAvailable    bool         `json:"is_available"`
}

// Dates returns the availability keys in chronological order.
func (a Availability) Dates() []string {
	dates := make([]string, 0, len(a))
	for date := range a {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}

// TimesOn returns a copy of the times listed for date. An empty or unknown
// date yields an empty slice.
func (a Availability) TimesOn(date string) []string {
	if date == "" {
		return []string{}
	}
	times, ok := a[date]
	if !ok {
		return []string{}
	}
	out := make([]string, len(times))
	copy(out, times)
	return out
}

// Has reports whether date is a key of the map.
func (a Availability) Has(date string) bool {
	if date == "" {
		return false
	}
	_, ok := a[date]
	return ok
}

// HasSlot reports whether time is listed under date.
func (a Availability) HasSlot(date, clock string) bool {
	if clock == "" {
		return false
	}
	for _, t := range a[date] {
		if t == clock {
			return true
		}
	}
	return false
}

// TotalSlots counts every (date, time) pair.
func (a Availability) TotalSlots() int {
	total := 0
	for _, times := range a {
		total += len(times)
	}
	return total
}

// Bookable reports whether the doctor accepts appointments and has at least
// one slot to offer.
func (d Doctor) Bookable() bool {
	return d.IsAvailable && d.Availability.TotalSlots() > 0
}

// Clone returns a copy of a that shares no slices with it.
func (a Availability) Clone() Availability {
	if a == nil {
		return nil
	}
	out := make(Availability, len(a))
	for date, times := range a {
		out[date] = append([]string(nil), times...)
	}
	return out
}

// Clone returns a copy of d whose availability can be changed freely.
func (d Doctor) Clone() Doctor {
	d.Availability = d.Availability.Clone()
	return d
}

// CloneAll deep-copies list.
func CloneAll(list []Doctor) []Doctor {
	out := make([]Doctor, len(list))
	for i, d := range list {
		out[i] = d.Clone()
	}
	return out
}

// Find returns the doctor with the given id.
func Find(list []Doctor, id string) (Doctor, bool) {
	for _, d := range list {
		if d.ID == id {
			return d, true
		}
	}
	return Doctor{}, false
}

// ParseDate parses an availability key.
func ParseDate(date string) (time.Time, error) {
	return time.Parse(DateLayout, date)
}

// FormatDate renders an availability key as "Sunday, March 10", adding the
// year when withYear is set. Unparsable input is returned unchanged.
func FormatDate(date string, withYear bool) string {
	t, err := ParseDate(date)
	if err != nil {
		return date
	}
	if withYear {
		return t.Format("Monday, January 2, 2006")
	}
	return t.Format("Monday, January 2")
}
