package ui

import (
	"strings"
	"time"
)

// addForm holds the three fields of the task creation form while the shared
// text input edits one of them at a time.
type addForm struct {
	title    string
	due      string
	category string
	index    int
}

func formFields() []string {
	return []string{"title", "due (YYYY-MM-DD HH:MM)", "category"}
}

func (f addForm) currentLabel() string {
	return formFields()[f.index]
}

func (f addForm) currentValue() string {
	switch f.index {
	case 0:
		return f.title
	case 1:
		return f.due
	default:
		return f.category
	}
}

func (f *addForm) setCurrentValue(v string) {
	switch f.index {
	case 0:
		f.title = v
	case 1:
		f.due = v
	default:
		f.category = v
	}
}

var dueLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseDue accepts a date or date-time in local time. An empty string yields
// the zero time, which the store rejects as a validation failure.
func parseDue(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	var firstErr error
	for _, layout := range dueLayouts {
		t, err := time.ParseInLocation(layout, v, time.Local)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}
