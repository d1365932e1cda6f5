// Package calendar renders month, week, and day grids of the task list.
// One cell marker per non-completed task: completed tasks never appear on
// the calendar.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"agenda/internal/task"
)

type View int

const (
	ViewMonth View = iota
	ViewWeek
	ViewDay
)

func (v View) String() string {
	switch v {
	case ViewWeek:
		return "week"
	case ViewDay:
		return "day"
	default:
		return "month"
	}
}

var (
	styleTitle    = lipgloss.NewStyle().Bold(true)
	styleWeekday  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	styleDay      = lipgloss.NewStyle()
	styleToday    = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	styleSelected = lipgloss.NewStyle().Reverse(true)
	styleBusy     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleFaint    = lipgloss.NewStyle().Faint(true)
)

// Grid is the calendar pane state: the visible view and the focused day.
type Grid struct {
	view      View
	focus     time.Time
	weekStart time.Weekday
}

func New(today time.Time, weekStart time.Weekday) Grid {
	return Grid{
		view:      ViewMonth,
		focus:     midnight(today),
		weekStart: weekStart,
	}
}

// Focus returns the focused day at midnight local time.
func (g Grid) Focus() time.Time { return g.focus }

func (g Grid) View() View { return g.view }

// CycleView rotates month -> week -> day -> month.
func (g *Grid) CycleView() {
	g.view = (g.view + 1) % 3
}

// MoveDays shifts the focused day; month and year roll over naturally.
func (g *Grid) MoveDays(n int) {
	g.focus = g.focus.AddDate(0, 0, n)
}

// MoveMonths pages by whole months, clamping the day to the target month's
// length.
func (g *Grid) MoveMonths(n int) {
	first := time.Date(g.focus.Year(), g.focus.Month(), 1, 0, 0, 0, 0, g.focus.Location())
	target := first.AddDate(0, n, 0)
	day := g.focus.Day()
	if last := target.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	g.focus = time.Date(target.Year(), target.Month(), day, 0, 0, 0, 0, target.Location())
}

// SetToday snaps the focus back to the current day.
func (g *Grid) SetToday(now time.Time) {
	g.focus = midnight(now)
}

// EventsOn returns the non-completed tasks due on the given day, in
// insertion order.
func EventsOn(tasks []task.Task, day time.Time) []task.Task {
	var out []task.Task
	for _, t := range tasks {
		if !t.Completed && t.On(day) {
			out = append(out, t)
		}
	}
	return out
}

// Render draws the current view over the given tasks.
func (g Grid) Render(tasks []task.Task, now time.Time) string {
	switch g.view {
	case ViewWeek:
		return g.renderWeek(tasks, now)
	case ViewDay:
		return g.renderDay(tasks)
	default:
		return g.renderMonth(tasks, now)
	}
}

func (g Grid) renderMonth(tasks []task.Task, now time.Time) string {
	var b strings.Builder
	b.WriteString(styleTitle.Render(g.focus.Format("January 2006")))
	b.WriteString("\n")

	for i := 0; i < 7; i++ {
		wd := time.Weekday((int(g.weekStart) + i) % 7)
		b.WriteString(styleWeekday.Render(fmt.Sprintf(" %.3s ", wd.String())))
	}
	b.WriteString("\n")

	firstOfMonth := time.Date(g.focus.Year(), g.focus.Month(), 1, 0, 0, 0, 0, g.focus.Location())
	daysInMonth := firstOfMonth.AddDate(0, 1, -1).Day()
	lead := (int(firstOfMonth.Weekday()) - int(g.weekStart) + 7) % 7

	busy := map[int]bool{}
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		if t.Start.Year() == g.focus.Year() && t.Start.Month() == g.focus.Month() {
			busy[t.Start.Day()] = true
		}
	}

	day := 1
	for week := 0; day <= daysInMonth && week < 6; week++ {
		for weekday := 0; weekday < 7; weekday++ {
			if (week == 0 && weekday < lead) || day > daysInMonth {
				b.WriteString("     ")
				continue
			}

			cell := fmt.Sprintf(" %2d ", day)
			if busy[day] {
				cell = fmt.Sprintf(" %2d*", day)
			}

			style := styleDay
			switch {
			case day == g.focus.Day():
				style = styleSelected
			case sameDay(now, firstOfMonth.AddDate(0, 0, day-1)):
				style = styleToday
			case busy[day]:
				style = styleBusy
			}
			b.WriteString(style.Render(cell))
			b.WriteString(" ")
			day++
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(g.renderDay(tasks))
	return b.String()
}

func (g Grid) renderWeek(tasks []task.Task, now time.Time) string {
	var b strings.Builder
	start := g.weekOrigin()
	end := start.AddDate(0, 0, 6)
	b.WriteString(styleTitle.Render(fmt.Sprintf("%s – %s", start.Format("Jan 2"), end.Format("Jan 2, 2006"))))
	b.WriteString("\n")

	for i := 0; i < 7; i++ {
		day := start.AddDate(0, 0, i)
		label := day.Format("Mon Jan 2")
		style := styleDay
		switch {
		case sameDay(day, g.focus):
			style = styleSelected
		case sameDay(day, now):
			style = styleToday
		}
		b.WriteString(style.Render(label))

		events := EventsOn(tasks, day)
		if len(events) == 0 {
			b.WriteString(styleFaint.Render("  —"))
		}
		for _, t := range events {
			b.WriteString("  ")
			b.WriteString(styleBusy.Render(t.Start.Format("15:04") + " " + t.Label()))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (g Grid) renderDay(tasks []task.Task) string {
	var b strings.Builder
	b.WriteString(styleTitle.Render(g.focus.Format("Monday, January 2")))
	b.WriteString("\n")

	events := EventsOn(tasks, g.focus)
	if len(events) == 0 {
		b.WriteString(styleFaint.Render("No tasks for this day"))
		b.WriteString("\n")
		return b.String()
	}
	for _, t := range events {
		b.WriteString(fmt.Sprintf("%s  %s\n", t.Start.Format("15:04"), t.Label()))
	}
	return b.String()
}

// weekOrigin returns the first day of the focused week.
func (g Grid) weekOrigin() time.Time {
	back := (int(g.focus.Weekday()) - int(g.weekStart) + 7) % 7
	return g.focus.AddDate(0, 0, -back)
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
