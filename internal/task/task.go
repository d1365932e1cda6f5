// Package task defines the task record and the projections derived from a
// task list: pending/completed tallies, progress percentage, and title
// matching for the search filter.
package task

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Task is a single to-do entry. Start and End carry the same instant: a task
// occupies a point on the calendar, not a range.
type Task struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Category  string    `json:"category"`
	Completed bool      `json:"completed"`
}

// Label returns the decorated title shown in lists and calendar cells,
// "<title> [<category>]", or just the title when the category is empty.
func (t Task) Label() string {
	if strings.TrimSpace(t.Category) == "" {
		return t.Title
	}
	return t.Title + " [" + t.Category + "]"
}

// Matches reports whether the decorated title contains the query,
// case-insensitively. An empty or whitespace-only query matches everything.
func (t Task) Matches(query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Label()), query)
}

// On reports whether the task is due on the given calendar day.
func (t Task) On(day time.Time) bool {
	y1, m1, d1 := t.Start.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// NewID derives an id from the creation timestamp (millisecond precision).
// When the millisecond is already taken the counter is bumped until the id
// is free, so two tasks created within the same millisecond stay distinct.
func NewID(now time.Time, taken func(string) bool) string {
	ms := now.UnixMilli()
	id := strconv.FormatInt(ms, 10)
	for taken != nil && taken(id) {
		ms++
		id = strconv.FormatInt(ms, 10)
	}
	return id
}

// Tally returns the total and completed counts for the list. Counts are
// always derived here rather than kept in separate counters, so they cannot
// drift from the list itself.
func Tally(tasks []Task) (total, completed int) {
	for _, t := range tasks {
		total++
		if t.Completed {
			completed++
		}
	}
	return total, completed
}

// Progress returns round(100*completed/total), or 0 for an empty list.
func Progress(tasks []Task) int {
	total, completed := Tally(tasks)
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}
