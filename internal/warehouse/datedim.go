package warehouse

import "time"

// DateRow is one generated calendar day.
type DateRow struct {
	Key       int64
	Date      time.Time
	Year      int
	Quarter   int
	Month     int
	MonthName string
	Day       int
	DayOfWeek int
	DayName   string
	IsWeekend bool
}

// DateKey encodes a day as YYYYMMDD, the deterministic surrogate key of
// dim_dates.
func DateKey(t time.Time) int64 {
	return int64(t.Year())*10000 + int64(t.Month())*100 + int64(t.Day())
}

// GenerateDates produces one row per calendar day from start through end
// inclusive. The range is generated in full regardless of which days the fact
// data actually touches, so calendar navigation works even under sparse
// coverage.
func GenerateDates(start, end time.Time) []DateRow {
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	var out []DateRow
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		wd := int(d.Weekday())
		out = append(out, DateRow{
			Key:       DateKey(d),
			Date:      d,
			Year:      d.Year(),
			Quarter:   (int(d.Month())-1)/3 + 1,
			Month:     int(d.Month()),
			MonthName: d.Month().String(),
			Day:       d.Day(),
			DayOfWeek: wd,
			DayName:   d.Weekday().String(),
			IsWeekend: wd == 0 || wd == 6,
		})
	}
	return out
}
