// Package calendar builds month grids with tasks bucketed by due date.
package calendar

import (
	"time"

	"simia-portal/internal/client/store"
)

// Day is one cell in a month grid. Blank leading and trailing cells
// have Day == 0.
type Day struct {
	Day     int
	Date    string
	Today   bool
	Overdue bool
	Tasks   []store.Task
}

// Month is a Sunday-first grid of weeks covering one calendar month
type Month struct {
	Year  int
	Month time.Month
	Weeks [][]Day
}

// BuildMonth lays out the given month. Tasks land on the cell whose
// date matches their Date field, and a cell is Overdue when it is in
// the past and still carries unfinished work.
func BuildMonth(year int, month time.Month, tasks []store.Task, today time.Time) Month {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	todayStr := today.Format("2006-01-02")

	byDate := make(map[string][]store.Task)
	for _, t := range tasks {
		if t.Date != "" {
			byDate[t.Date] = append(byDate[t.Date], t)
		}
	}

	var weeks [][]Day
	week := make([]Day, 0, 7)
	for i := 0; i < int(first.Weekday()); i++ {
		week = append(week, Day{})
	}

	for d := 1; d <= daysInMonth; d++ {
		date := time.Date(year, month, d, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		cell := Day{
			Day:   d,
			Date:  date,
			Today: date == todayStr,
			Tasks: byDate[date],
		}
		if date < todayStr {
			for _, t := range cell.Tasks {
				if t.Status == store.StatusPending || t.Status == store.StatusInProgress {
					cell.Overdue = true
					break
				}
			}
		}
		week = append(week, cell)
		if len(week) == 7 {
			weeks = append(weeks, week)
			week = make([]Day, 0, 7)
		}
	}

	if len(week) > 0 {
		for len(week) < 7 {
			week = append(week, Day{})
		}
		weeks = append(weeks, week)
	}

	return Month{Year: year, Month: month, Weeks: weeks}
}
