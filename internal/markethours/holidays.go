package markethours

import "time"

// NSE trading holidays for 2026 (tentative dates follow the lunar calendar
// and may move when the exchange publishes its final circular).
var nseHolidays2026 = []struct {
	month time.Month
	day   int
	name  string
}{
	{time.January, 26, "Republic Day"},
	{time.February, 17, "Mahashivratri"},
	{time.March, 14, "Holi"},
	{time.March, 31, "Id-ul-Fitr"},
	{time.April, 2, "Ram Navami"},
	{time.April, 6, "Mahavir Jayanti"},
	{time.April, 10, "Good Friday"},
	{time.April, 14, "Dr. Ambedkar Jayanti"},
	{time.May, 1, "Maharashtra Day"},
	{time.June, 7, "Bakri Id"},
	{time.July, 6, "Muharram"},
	{time.August, 15, "Independence Day"},
	{time.August, 16, "Janmashtami"},
	{time.September, 5, "Milad-un-Nabi"},
	{time.October, 2, "Mahatma Gandhi Jayanti"},
	{time.October, 20, "Dussehra"},
	{time.October, 21, "Dussehra"},
	{time.November, 5, "Diwali Laxmi Pujan"},
	{time.November, 6, "Diwali Balipratipada"},
	{time.November, 7, "Bhai Dooj"},
	{time.November, 19, "Guru Nanak Jayanti"},
	{time.December, 25, "Christmas"},
}

var holidays map[string]string

func init() {
	holidays = make(map[string]string, len(nseHolidays2026))
	for _, h := range nseHolidays2026 {
		holidays[dateKey(2026, h.month, h.day)] = h.name
	}
}

// IsHoliday returns true if the date (in IST) is an NSE holiday.
func IsHoliday(t time.Time) bool {
	_, ok := HolidayName(t)
	return ok
}

// HolidayName returns the holiday observed on t's IST date, if any.
func HolidayName(t time.Time) (string, bool) {
	ist := t.In(IST)
	name, ok := holidays[dateKey(ist.Year(), ist.Month(), ist.Day())]
	return name, ok
}

func dateKey(year int, month time.Month, day int) string {
	return time.Date(year, month, day, 0, 0, 0, 0, IST).Format("2006-01-02")
}
