// Package ui is the terminal front end: the pending/completed lists, the
// progress bar, the calendar pane, the search filter, and the toast line.
// All mutations go through the task store; everything drawn here is derived
// view state rebuilt from the store after each change.
package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"agenda/internal/calendar"
	"agenda/internal/config"
	"agenda/internal/storage"
	"agenda/internal/task"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeSearch
	modeCalendar
	modeCalTitle
	modeCalPick
	modeConfirm
	modeHelp
)

var (
	styleHeader    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	styleSection   = lipgloss.NewStyle().Bold(true)
	styleDone      = lipgloss.NewStyle().Strikethrough(true).Faint(true)
	styleDate      = lipgloss.NewStyle().Faint(true)
	styleHelpLine  = lipgloss.NewStyle().Faint(true)
	styleConfirmQ  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	styleFieldMark = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
)

type Model struct {
	store *storage.Store
	cfg   config.Config
	log   *log.Logger

	tasks    []task.Task
	cursor   int
	mode     mode
	prevMode mode

	input  textinput.Model
	search textinput.Model
	form   *addForm
	bar    progress.Model

	cal        calendar.Grid
	pickCursor int

	pendingDel *task.Task

	toast    *toast
	toastSeq int
}

// New builds the model seeded from the store's persisted collection.
func New(store *storage.Store, cfg config.Config, logger *log.Logger) Model {
	ti := textinput.New()
	ti.Placeholder = "Task title"
	ti.CharLimit = 256
	ti.Width = 40

	si := textinput.New()
	si.Placeholder = "Search tasks..."
	si.CharLimit = 128
	si.Width = 30

	return Model{
		store:  store,
		cfg:    cfg,
		log:    logger,
		tasks:  store.Tasks(),
		input:  ti,
		search: si,
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		cal:    calendar.New(time.Now(), cfg.FirstWeekday()),
	}
}

func Run(store *storage.Store, cfg config.Config, logger *log.Logger) error {
	program := tea.NewProgram(New(store, cfg, logger))
	_, err := program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		width := msg.Width - 10
		if width < 20 {
			width = 20
		}
		m.input.Width = width
		m.search.Width = width
		m.bar.Width = width
	case toastExpiredMsg:
		if m.toast != nil && m.toast.seq == msg.seq {
			m.toast = nil
		}
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case modeConfirm:
		return m.updateConfirm(key)
	case modeAdd:
		return m.updateAdd(key, msg)
	case modeSearch:
		return m.updateSearch(key, msg)
	case modeCalTitle:
		return m.updateCalTitle(key, msg)
	case modeCalPick:
		return m.updateCalPick(key)
	case modeCalendar:
		return m.updateCalendar(key)
	case modeHelp:
		m.mode = modeList
		return m, nil
	default:
		return m.updateList(key)
	}
}

// pendingRows and completedRows are the two list projections; the search
// query hides rows without touching the store.
func (m Model) pendingRows() []task.Task {
	return m.filterRows(false)
}

func (m Model) completedRows() []task.Task {
	return m.filterRows(true)
}

func (m Model) filterRows(completed bool) []task.Task {
	var out []task.Task
	for _, t := range m.tasks {
		if t.Completed == completed && t.Matches(m.search.Value()) {
			out = append(out, t)
		}
	}
	return out
}

func (m Model) visibleRows() []task.Task {
	return append(m.pendingRows(), m.completedRows()...)
}

func (m Model) updateList(key string) (tea.Model, tea.Cmd) {
	rows := m.visibleRows()
	switch key {
	case m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Down, "down":
		if len(rows) > 0 {
			m.cursor = clampCursor(m.cursor+1, len(rows))
		}
	case m.cfg.Keys.Up, "up":
		if m.cursor > 0 {
			m.cursor = clampCursor(m.cursor-1, len(rows))
		}
	case m.cfg.Keys.Add:
		m.form = &addForm{category: m.cfg.DefaultCategory}
		m.input.SetValue(m.form.currentValue())
		m.input.Placeholder = m.form.currentLabel()
		m.input.Focus()
		m.mode = modeAdd
	case m.cfg.Keys.Toggle:
		if len(rows) == 0 {
			return m, nil
		}
		return m.toggleTask(rows[clampCursor(m.cursor, len(rows))])
	case m.cfg.Keys.Delete:
		if len(rows) == 0 {
			return m, nil
		}
		t := rows[clampCursor(m.cursor, len(rows))]
		m.pendingDel = &t
		m.prevMode = modeList
		m.mode = modeConfirm
	case m.cfg.Keys.Search:
		m.mode = modeSearch
		m.search.Focus()
	case m.cfg.Keys.Calendar:
		m.mode = modeCalendar
	case m.cfg.Keys.Help:
		m.mode = modeHelp
	case m.cfg.Keys.Cancel:
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.cursor = clampCursor(m.cursor, len(m.visibleRows()))
		}
	}
	return m, nil
}

func (m Model) toggleTask(t task.Task) (tea.Model, tea.Cmd) {
	if err := m.store.SetCompleted(t.ID, !t.Completed); err != nil {
		m.log.Error("toggle failed", "id", t.ID, "err", err)
		m.reload()
		return m.notify("Could not save the task list", toastError)
	}
	m.reload()
	m.log.Info("task toggled", "id", t.ID, "completed", !t.Completed)
	if t.Completed {
		return m.notify("Task moved back to to-do", toastSuccess)
	}
	return m.notify("Task completed!", toastSuccess)
}

func (m Model) updateSearch(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel:
		m.search.SetValue("")
		m.search.Blur()
		m.mode = modeList
		m.cursor = clampCursor(m.cursor, len(m.visibleRows()))
		return m, nil
	case m.cfg.Keys.Confirm:
		m.search.Blur()
		m.mode = modeList
		m.cursor = clampCursor(m.cursor, len(m.visibleRows()))
		return m, nil
	default:
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.cursor = clampCursor(m.cursor, len(m.visibleRows()))
		return m, cmd
	}
}

func (m Model) updateAdd(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel:
		m.form = nil
		m.mode = modeList
		m.input.SetValue("")
		m.input.Blur()
		return m, nil
	case "tab", "down":
		m.form.setCurrentValue(m.input.Value())
		m.form.index = wrapIndex(m.form.index+1, len(formFields()))
		m.input.SetValue(m.form.currentValue())
		m.input.Placeholder = m.form.currentLabel()
		return m, nil
	case "shift+tab", "up":
		m.form.setCurrentValue(m.input.Value())
		m.form.index = wrapIndex(m.form.index-1, len(formFields()))
		m.input.SetValue(m.form.currentValue())
		m.input.Placeholder = m.form.currentLabel()
		return m, nil
	case m.cfg.Keys.Confirm:
		m.form.setCurrentValue(m.input.Value())
		if m.form.index < len(formFields())-1 {
			m.form.index++
			m.input.SetValue(m.form.currentValue())
			m.input.Placeholder = m.form.currentLabel()
			return m, nil
		}
		return m.submitForm()
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	due, err := parseDue(m.form.due)
	if err != nil {
		return m.notify("Due date must look like 2024-06-01 10:00", toastError)
	}
	created, err := m.store.Add(m.form.title, due, m.form.category)
	if err != nil {
		return m.addFailed(err)
	}

	m.form = nil
	m.mode = modeList
	m.input.SetValue("")
	m.input.Blur()
	m.reload()
	m.log.Info("task added", "id", created.ID, "title", created.Title)
	m.cursor = clampCursor(len(m.pendingRows())-1, len(m.visibleRows()))
	return m.notify("Task added!", toastSuccess)
}

func (m Model) addFailed(err error) (Model, tea.Cmd) {
	if errors.Is(err, storage.ErrValidation) {
		return m.notify("Fill in the title and due date to add a task", toastError)
	}
	// The task is in memory even when the write failed; show it and let the
	// next successful write persist it.
	m.log.Error("persist failed", "err", err)
	m.reload()
	return m.notify("Could not save the task list", toastError)
}

func (m Model) updateCalendar(key string) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Cancel, m.cfg.Keys.Calendar:
		m.mode = modeList
	case "h", "left":
		m.cal.MoveDays(-1)
	case "l", "right":
		m.cal.MoveDays(1)
	case "k", "up":
		m.cal.MoveDays(-7)
	case "j", "down":
		m.cal.MoveDays(7)
	case "[":
		m.cal.MoveMonths(-1)
	case "]":
		m.cal.MoveMonths(1)
	case m.cfg.Keys.Today:
		m.cal.SetToday(time.Now())
	case m.cfg.Keys.View:
		m.cal.CycleView()
	case m.cfg.Keys.Add:
		return m.openCalTitle()
	case m.cfg.Keys.Confirm:
		events := calendar.EventsOn(m.tasks, m.cal.Focus())
		switch len(events) {
		case 0:
			return m.openCalTitle()
		case 1:
			t := events[0]
			m.pendingDel = &t
			m.prevMode = modeCalendar
			m.mode = modeConfirm
		default:
			m.pickCursor = 0
			m.mode = modeCalPick
		}
	}
	return m, nil
}

func (m Model) openCalTitle() (tea.Model, tea.Cmd) {
	m.input.SetValue("")
	m.input.Placeholder = "Task title"
	m.input.Focus()
	m.mode = modeCalTitle
	return m, nil
}

// updateCalTitle handles the title entry that follows a date selection.
// An empty or cancelled entry discards the selection without creating
// anything.
func (m Model) updateCalTitle(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel:
		m.input.SetValue("")
		m.input.Blur()
		m.mode = modeCalendar
		return m, nil
	case m.cfg.Keys.Confirm:
		title := strings.TrimSpace(m.input.Value())
		m.input.SetValue("")
		m.input.Blur()
		m.mode = modeCalendar
		if title == "" {
			return m, nil
		}
		created, err := m.store.Add(title, m.cal.Focus(), m.cfg.DefaultCategory)
		if err != nil {
			return m.addFailed(err)
		}
		m.reload()
		m.log.Info("task added from calendar", "id", created.ID, "title", created.Title)
		return m.notify("Task added!", toastSuccess)
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) updateCalPick(key string) (tea.Model, tea.Cmd) {
	events := calendar.EventsOn(m.tasks, m.cal.Focus())
	switch key {
	case m.cfg.Keys.Cancel:
		m.mode = modeCalendar
	case m.cfg.Keys.Down, "down":
		m.pickCursor = clampCursor(m.pickCursor+1, len(events))
	case m.cfg.Keys.Up, "up":
		m.pickCursor = clampCursor(m.pickCursor-1, len(events))
	case m.cfg.Keys.Confirm:
		if len(events) == 0 {
			m.mode = modeCalendar
			return m, nil
		}
		t := events[clampCursor(m.pickCursor, len(events))]
		m.pendingDel = &t
		m.prevMode = modeCalendar
		m.mode = modeConfirm
	}
	return m, nil
}

func (m Model) updateConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "y", "Y":
		if m.pendingDel == nil {
			m.mode = m.prevMode
			return m, nil
		}
		id := m.pendingDel.ID
		m.pendingDel = nil
		m.mode = m.prevMode
		if err := m.store.Remove(id); err != nil {
			m.log.Error("delete failed", "id", id, "err", err)
			m.reload()
			m.cursor = clampCursor(m.cursor, len(m.visibleRows()))
			return m.notify("Could not save the task list", toastError)
		}
		m.reload()
		m.cursor = clampCursor(m.cursor, len(m.visibleRows()))
		m.log.Info("task deleted", "id", id)
		return m.notify("Task deleted!", toastSuccess)
	case "n", "N", m.cfg.Keys.Cancel:
		m.pendingDel = nil
		m.mode = m.prevMode
		return m, nil
	default:
		return m, nil
	}
}

// reload refreshes the cached snapshot from the store. Rows and calendar
// events are rebuilt from it on the next frame.
func (m *Model) reload() {
	m.tasks = m.store.Tasks()
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(styleHeader.Render("Agenda"))
	b.WriteString("\n")
	b.WriteString(m.renderProgress())
	b.WriteString("\n\n")

	switch m.mode {
	case modeHelp:
		b.WriteString(m.renderHelp())
	case modeAdd:
		b.WriteString(m.renderAddForm())
	case modeCalendar, modeCalTitle, modeCalPick, modeConfirm:
		if m.mode == modeConfirm && m.prevMode == modeList {
			b.WriteString(m.renderLists())
		} else {
			b.WriteString(m.renderCalendarPane())
		}
	default:
		b.WriteString(m.renderLists())
	}

	b.WriteString("\n")
	if m.mode == modeConfirm && m.pendingDel != nil {
		b.WriteString(styleConfirmQ.Render(fmt.Sprintf("Delete %q? y/n", m.pendingDel.Label())))
		b.WriteString("\n")
	}
	if m.toast != nil {
		b.WriteString(m.toast.render())
		b.WriteString("\n")
	}
	b.WriteString(styleHelpLine.Render(m.helpLine()))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderProgress() string {
	pct := task.Progress(m.tasks)
	return fmt.Sprintf("%s %d%%", m.bar.ViewAs(float64(pct)/100), pct)
}

func (m Model) renderLists() string {
	var b strings.Builder

	if m.mode == modeSearch || m.search.Value() != "" {
		b.WriteString("Search: ")
		b.WriteString(m.search.View())
		b.WriteString("\n\n")
	}

	pending := m.pendingRows()
	completed := m.completedRows()

	b.WriteString(styleSection.Render("To do"))
	b.WriteString("\n")
	if len(pending) == 0 {
		b.WriteString(styleHelpLine.Render("Nothing to do. Press 'a' to add a task."))
		b.WriteString("\n")
	}
	for i, t := range pending {
		b.WriteString(m.renderRow(t, i))
	}

	b.WriteString("\n")
	b.WriteString(styleSection.Render("Done"))
	b.WriteString("\n")
	for i, t := range completed {
		b.WriteString(m.renderRow(t, len(pending)+i))
	}

	return b.String()
}

func (m Model) renderRow(t task.Task, index int) string {
	cursor := " "
	if index == m.cursor && (m.mode == modeList || m.mode == modeSearch) {
		cursor = ">"
	}
	checkbox := "[ ]"
	label := t.Label()
	if t.Completed {
		checkbox = "[x]"
		label = styleDone.Render(label)
	}
	date := styleDate.Render(t.Start.Format("Jan 2, 2006 15:04"))
	return fmt.Sprintf("%s %s %s  %s\n", cursor, checkbox, label, date)
}

func (m Model) renderAddForm() string {
	var b strings.Builder
	b.WriteString(styleSection.Render("New task"))
	b.WriteString("\n\n")
	values := []string{m.form.title, m.form.due, m.form.category}
	for i, name := range formFields() {
		prefix := " "
		if i == m.form.index {
			prefix = styleFieldMark.Render(">")
		}
		val := values[i]
		if i == m.form.index {
			val = m.input.Value()
		}
		if strings.TrimSpace(val) == "" {
			val = styleHelpLine.Render("(empty)")
		}
		b.WriteString(fmt.Sprintf("%s %-24s : %s\n", prefix, name, val))
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderCalendarPane() string {
	var b strings.Builder
	b.WriteString(m.cal.Render(m.tasks, time.Now()))

	switch m.mode {
	case modeCalTitle:
		b.WriteString("\n")
		b.WriteString(styleSection.Render("New task on " + m.cal.Focus().Format("Jan 2, 2006")))
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	case modeCalPick:
		events := calendar.EventsOn(m.tasks, m.cal.Focus())
		b.WriteString("\n")
		b.WriteString(styleSection.Render("Pick a task to delete"))
		b.WriteString("\n")
		for i, t := range events {
			cursor := " "
			if i == m.pickCursor {
				cursor = ">"
			}
			b.WriteString(fmt.Sprintf("%s %s\n", cursor, t.Label()))
		}
	}
	return b.String()
}

func (m Model) renderHelp() string {
	k := m.cfg.Keys
	var b strings.Builder
	b.WriteString(styleSection.Render("How it works"))
	b.WriteString("\n\n")
	b.WriteString("Add a task with a title, due date, and category; it shows up in the\n")
	b.WriteString("to-do list and on the calendar. Toggle a task to move it to the done\n")
	b.WriteString("list; done tasks leave the calendar. Delete from either the list or\n")
	b.WriteString("the calendar after confirming. The search box filters the lists by\n")
	b.WriteString("title without touching your data.\n\n")
	b.WriteString(fmt.Sprintf("%s/%s move • %s add • %s toggle • %s delete\n", k.Up, k.Down, k.Add, strings.TrimSpace(k.Toggle)+"(space)", k.Delete))
	b.WriteString(fmt.Sprintf("%s search • %s calendar • %s cycle calendar view • %s today\n", k.Search, k.Calendar, k.View, k.Today))
	b.WriteString(fmt.Sprintf("%s quit • any key to close this help\n", k.Quit))
	return b.String()
}

func (m Model) helpLine() string {
	k := m.cfg.Keys
	switch m.mode {
	case modeAdd:
		return "tab/shift+tab move between fields • enter next/save • esc cancel"
	case modeSearch:
		return "type to filter • enter keep filter • esc clear"
	case modeCalendar:
		return "h/l day • k/j week • [/] month • " + k.Today + " today • " + k.View + " view • enter select • esc back"
	case modeCalTitle:
		return "enter create • esc discard selection"
	case modeCalPick:
		return k.Up + "/" + k.Down + " move • enter delete • esc back"
	case modeConfirm:
		return "y delete • n keep"
	default:
		return fmt.Sprintf("%s/%s move • %s add • space toggle • %s delete • %s search • %s calendar • %s help • %s quit",
			k.Up, k.Down, k.Add, k.Delete, k.Search, k.Calendar, k.Help, k.Quit)
	}
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}

