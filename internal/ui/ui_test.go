package ui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"agenda/internal/calendar"
	"agenda/internal/config"
	"agenda/internal/logging"
	"agenda/internal/storage"
)

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
)

func testConfig() config.Config {
	return config.Config{
		DefaultCategory: "errands",
		WeekStart:       "sunday",
		ToastSeconds:    3,
		Keys: config.Keymap{
			Quit:     "q",
			Add:      "a",
			Up:       "k",
			Down:     "j",
			Toggle:   " ",
			Delete:   "d",
			Search:   "/",
			Calendar: "c",
			View:     "v",
			Today:    "t",
			Confirm:  "enter",
			Cancel:   "esc",
			Help:     "?",
		},
	}
}

func newTestModel(t *testing.T, seed func(*storage.Store)) (Model, *storage.Store) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "tasks.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if seed != nil {
		seed(store)
	}
	return New(store, testConfig(), logging.Discard()), store
}

func press(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	return press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func TestAddTaskThroughForm(t *testing.T) {
	m, store := newTestModel(t, nil)

	m = typeText(t, m, "a")
	m = typeText(t, m, "Buy milk")
	m = press(t, m, keyEnter)
	m = typeText(t, m, "2024-06-01 10:00")
	m = press(t, m, keyEnter) // category field, prefilled with the default
	m = press(t, m, keyEnter) // submit

	tasks := store.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("store has %d tasks after add, want 1", len(tasks))
	}
	got := tasks[0]
	if got.Title != "Buy milk" || got.Category != "errands" {
		t.Errorf("created task = %+v", got)
	}
	want := time.Date(2024, 6, 1, 10, 0, 0, 0, time.Local)
	if !got.Start.Equal(want) || !got.End.Equal(want) {
		t.Errorf("due = %v/%v, want %v", got.Start, got.End, want)
	}

	view := m.View()
	if !strings.Contains(view, "Buy milk [errands]") {
		t.Error("new task missing from the to-do list")
	}
	if !strings.Contains(view, "0%") {
		t.Error("progress should read 0% with one pending task")
	}
	if !strings.Contains(view, "Task added!") {
		t.Error("missing success toast")
	}
	if events := calendar.EventsOn(store.Tasks(), want); len(events) != 1 {
		t.Errorf("calendar shows %d events on the due day, want 1", len(events))
	}
}

func TestAddRejectsEmptyTitle(t *testing.T) {
	m, store := newTestModel(t, nil)

	m = typeText(t, m, "a")
	m = press(t, m, keyEnter, keyEnter, keyEnter)

	if len(store.Tasks()) != 0 {
		t.Error("rejected add reached the store")
	}
	view := m.View()
	if !strings.Contains(view, "Fill in the title and due date") {
		t.Error("missing validation toast")
	}
	if !strings.Contains(view, "New task") {
		t.Error("form should stay open after a rejected add")
	}
}

func TestAddRejectsBadDueDate(t *testing.T) {
	m, store := newTestModel(t, nil)

	m = typeText(t, m, "a")
	m = typeText(t, m, "Buy milk")
	m = press(t, m, keyEnter)
	m = typeText(t, m, "tomorrowish")
	m = press(t, m, keyEnter, keyEnter)

	if len(store.Tasks()) != 0 {
		t.Error("task with unparseable due date reached the store")
	}
	if !strings.Contains(m.View(), "Due date must look like") {
		t.Error("missing due date toast")
	}
}

func TestToggleMovesTaskAndUpdatesProgress(t *testing.T) {
	due := time.Date(2024, 6, 1, 10, 0, 0, 0, time.Local)
	m, store := newTestModel(t, func(s *storage.Store) {
		if _, err := s.Add("Buy milk", due, "errands"); err != nil {
			t.Fatalf("seed: %v", err)
		}
	})

	m = press(t, m, keySpace)

	if got := store.Tasks()[0]; !got.Completed {
		t.Error("toggle did not complete the task")
	}
	view := m.View()
	if !strings.Contains(view, "[x]") {
		t.Error("completed task missing its checkbox mark")
	}
	if !strings.Contains(view, "100%") {
		t.Error("progress should read 100% with the only task done")
	}
	if !strings.Contains(view, "Task completed!") {
		t.Error("missing completion toast")
	}
	if events := calendar.EventsOn(store.Tasks(), due); len(events) != 0 {
		t.Error("completed task still on the calendar")
	}

	// Toggling again moves it back.
	m = press(t, m, keySpace)
	if got := store.Tasks()[0]; got.Completed {
		t.Error("second toggle did not restore the task")
	}
	if !strings.Contains(m.View(), "Task moved back to to-do") {
		t.Error("missing un-complete toast")
	}
}

func TestProgressWithMixedTasks(t *testing.T) {
	due := time.Date(2024, 6, 1, 10, 0, 0, 0, time.Local)
	m, _ := newTestModel(t, func(s *storage.Store) {
		s.Add("Buy milk", due, "errands")
		s.Add("Walk dog", due, "home")
	})

	m = press(t, m, keySpace)
	if !strings.Contains(m.View(), "50%") {
		t.Error("progress should read 50% with one of two tasks done")
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	due := time.Date(2024, 6, 1, 10, 0, 0, 0, time.Local)
	m, store := newTestModel(t, func(s *storage.Store) {
		s.Add("Buy milk", due, "errands")
	})

	m = typeText(t, m, "d")
	if !strings.Contains(m.View(), `Delete "Buy milk [errands]"? y/n`) {
		t.Fatal("missing confirmation prompt")
	}

	// Declining keeps the task.
	m = typeText(t, m, "n")
	if len(store.Tasks()) != 1 {
		t.Fatal("declined delete removed the task")
	}

	m = typeText(t, m, "d")
	m = typeText(t, m, "y")
	if len(store.Tasks()) != 0 {
		t.Error("confirmed delete left the task in the store")
	}
	if !strings.Contains(m.View(), "Task deleted!") {
		t.Error("missing delete toast")
	}
}

func TestSearchFiltersWithoutMutating(t *testing.T) {
	due := time.Date(2024, 6, 1, 10, 0, 0, 0, time.Local)
	m, store := newTestModel(t, func(s *storage.Store) {
		s.Add("Buy milk", due, "errands")
		s.Add("Walk dog", due, "home")
	})

	m = typeText(t, m, "/")
	m = typeText(t, m, "milk")

	view := m.View()
	if !strings.Contains(view, "Buy milk") {
		t.Error("matching task hidden by the filter")
	}
	if strings.Contains(view, "Walk dog") {
		t.Error("non-matching task still visible")
	}
	if len(store.Tasks()) != 2 {
		t.Error("filtering changed the store")
	}

	// Clearing the query restores every row.
	m = press(t, m, keyEsc)
	view = m.View()
	if !strings.Contains(view, "Buy milk") || !strings.Contains(view, "Walk dog") {
		t.Error("rows missing after the filter was cleared")
	}
}

func TestCalendarCreateOnSelectedDay(t *testing.T) {
	m, store := newTestModel(t, nil)

	m = typeText(t, m, "c")
	m = typeText(t, m, "a")
	m = typeText(t, m, "Pay rent")
	m = press(t, m, keyEnter)

	tasks := store.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("store has %d tasks after calendar add, want 1", len(tasks))
	}
	got := tasks[0]
	if got.Title != "Pay rent" || got.Category != "errands" {
		t.Errorf("created task = %+v", got)
	}
	if !got.On(time.Now()) {
		t.Errorf("task due %v, want the selected day", got.Start)
	}
	if !strings.Contains(m.View(), "Task added!") {
		t.Error("missing success toast")
	}
}

func TestCalendarEmptyTitleDiscards(t *testing.T) {
	m, store := newTestModel(t, nil)

	m = typeText(t, m, "c")
	m = typeText(t, m, "a")
	m = press(t, m, keyEnter)

	if len(store.Tasks()) != 0 {
		t.Error("empty title created a task")
	}
	if strings.Contains(m.View(), "Task added!") {
		t.Error("toast shown for a discarded selection")
	}
}

func TestCalendarDeleteSingleEvent(t *testing.T) {
	m, store := newTestModel(t, func(s *storage.Store) {
		s.Add("Pay rent", time.Now(), "home")
	})

	m = typeText(t, m, "c")
	m = press(t, m, keyEnter)
	if !strings.Contains(m.View(), `Delete "Pay rent [home]"? y/n`) {
		t.Fatal("missing confirmation prompt for the calendar event")
	}
	m = typeText(t, m, "y")
	if len(store.Tasks()) != 0 {
		t.Error("confirmed calendar delete left the task in the store")
	}
}

func TestCalendarPickAmongSeveralEvents(t *testing.T) {
	now := time.Now()
	m, store := newTestModel(t, func(s *storage.Store) {
		s.Add("Pay rent", now, "home")
		s.Add("Buy milk", now, "errands")
	})

	m = typeText(t, m, "c")
	m = press(t, m, keyEnter)
	if !strings.Contains(m.View(), "Pick a task to delete") {
		t.Fatal("missing event picker")
	}

	m = typeText(t, m, "j") // second event
	m = press(t, m, keyEnter)
	m = typeText(t, m, "y")

	tasks := store.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("store has %d tasks after picking, want 1", len(tasks))
	}
	if tasks[0].Title != "Pay rent" {
		t.Errorf("wrong event deleted, %q survived", tasks[0].Title)
	}
}

func TestToastExpiry(t *testing.T) {
	due := time.Date(2024, 6, 1, 10, 0, 0, 0, time.Local)
	m, _ := newTestModel(t, func(s *storage.Store) {
		s.Add("Buy milk", due, "errands")
	})

	m = press(t, m, keySpace)
	if m.toast == nil {
		t.Fatal("toggle did not raise a toast")
	}

	// A stale expiry for an earlier toast must not clear the current one.
	m = press(t, m, toastExpiredMsg{seq: m.toast.seq - 1})
	if m.toast == nil {
		t.Fatal("stale expiry cleared a live toast")
	}

	m = press(t, m, toastExpiredMsg{seq: m.toast.seq})
	if m.toast != nil {
		t.Error("toast survived its own expiry")
	}
}
