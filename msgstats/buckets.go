package msgstats

import "time"

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

// DayKey returns the daily bucket key for t.
func DayKey(t time.Time) string {
	return t.Format(dayLayout)
}

// WeekKey returns the date of the most recent weekStart on or before t.
func WeekKey(t time.Time, weekStart time.Weekday) string {
	offset := (int(t.Weekday()) - int(weekStart) + 7) % 7
	return t.AddDate(0, 0, -offset).Format(dayLayout)
}

// MonthKey returns the monthly bucket key for t.
func MonthKey(t time.Time) string {
	return t.Format(monthLayout)
}
