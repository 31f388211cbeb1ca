package model

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format used by forms, views and the SQLite store.
const DateLayout = "2006-01-02"

// parseLayout also accepts month and day without a leading zero (2024-1-5).
const parseLayout = "2006-1-2"

const secondsPerDay = 24 * 60 * 60

type Task struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
	AssignedTo     string     `json:"assigned_to"`
	Status         string     `json:"status"`
	CompletionDate *time.Time `json:"completion_date"`
}

// TaskForm holds the raw values of a submitted task form.
type TaskForm struct {
	Title          string
	Description    string
	StartDate      string
	EndDate        string
	AssignedTo     string
	Status         string
	CompletionDate string
}

// ReportRow is a task together with the number of days it took to complete.
type ReportRow struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Status         string     `json:"status"`
	AssignedTo     string     `json:"assigned_to"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
	CompletionDate *time.Time `json:"completion_date"`
	TimeTaken      *int       `json:"time_taken"`
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.
// Month and day may omit the leading zero.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(parseLayout, strings.TrimSpace(s), time.UTC)
}

// FormatDate renders d as YYYY-MM-DD, or an empty string when d is nil.
func FormatDate(d *time.Time) string {
	if d == nil {
		return ""
	}
	return d.Format(DateLayout)
}

// DaysBetween returns the whole number of calendar days from start to end.
// It works on day numbers rather than time.Duration, which overflows past ~292 years.
func DaysBetween(start, end time.Time) int {
	return int(dayNumber(end) - dayNumber(start))
}

// dayNumber counts days since the Unix epoch; exact because the time is UTC midnight.
func dayNumber(t time.Time) int64 {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.Unix() / secondsPerDay
}
