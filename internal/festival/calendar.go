// Package festival holds the fixed festival coupon policy table and its
// window arithmetic. The table is data, not logic: which festivals exist and
// what they discount is decided outside this service.
package festival

import "time"

// Festival is one entry of the coupon policy table.
type Festival struct {
	Name               string
	Month              time.Month
	Day                int
	Code               string
	DiscountPercentage int
	Message            string
}

// Window lead and lag around the festival date. Coupons open five days before
// the festival and expire one day after it.
const (
	windowLead = 5 * 24 * time.Hour
	windowLag  = 1 * 24 * time.Hour
)

// DefaultCalendar is the festival policy table shipped with the service.
var DefaultCalendar = []Festival{
	{Name: "New Year", Month: time.January, Day: 1, Code: "NEWYEAR25", DiscountPercentage: 15, Message: "Happy New Year! Start the year with style."},
	{Name: "Valentine's Day", Month: time.February, Day: 14, Code: "LOVE20", DiscountPercentage: 20, Message: "Gift something special this Valentine's."},
	{Name: "Eid Special", Month: time.April, Day: 10, Code: "EIDMUBARAK", DiscountPercentage: 25, Message: "Eid Mubarak! Celebrate with exclusive gear."},
	{Name: "Halloween", Month: time.October, Day: 31, Code: "SPOOKY15", DiscountPercentage: 15, Message: "Spooky seasonal savings!"},
	{Name: "Diwali", Month: time.October, Day: 20, Code: "DIWALI30", DiscountPercentage: 30, Message: "Light up your world with this Diwali offer."},
	{Name: "Black Friday", Month: time.November, Day: 29, Code: "BLACKFRIDAY", DiscountPercentage: 50, Message: "Biggest sale of the year!"},
	{Name: "Christmas", Month: time.December, Day: 25, Code: "SANTA25", DiscountPercentage: 25, Message: "Merry Christmas! Ho Ho Ho"},
}

// WindowFor returns the coupon validity window for the festival in the given
// year, in the given location.
func (f Festival) WindowFor(year int, loc *time.Location) (from, until time.Time) {
	date := time.Date(year, f.Month, f.Day, 0, 0, 0, 0, loc)
	return date.Add(-windowLead), date.Add(windowLag)
}

// InWindow reports whether now falls inside this year's coupon window for the
// festival, and returns that window. The interval is closed on both ends.
func (f Festival) InWindow(now time.Time) (from, until time.Time, ok bool) {
	from, until = f.WindowFor(now.Year(), now.Location())
	if now.Before(from) || now.After(until) {
		return from, until, false
	}
	return from, until, true
}
