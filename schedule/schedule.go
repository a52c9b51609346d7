// Package schedule keeps scheduled events and a list of completed events.
// Deleting (completing) an active event moves it to the completed list.
package schedule

import (
	"time"

	"github.com/kjk/scheduler/event"
	"github.com/kjk/scheduler/log"
	"github.com/kjk/scheduler/recordstore"
)

const (
	DefaultActiveFile    = "schedules.plist"
	DefaultCompletedFile = "completedEvents.plist"
)

type Book struct {
	Active    *recordstore.Store[event.Event]
	Completed *recordstore.Store[event.Event]

	// view of Completed, refreshed after every move
	completed []event.Event
}

// Open creates a book over two files in dir. The completed store
// observes the active store.
func Open(dir string, activeFile string, completedFile string) (*Book, error) {
	if activeFile == "" {
		activeFile = DefaultActiveFile
	}
	if completedFile == "" {
		completedFile = DefaultCompletedFile
	}
	b := &Book{
		Active:    recordstore.New[event.Event](dir, activeFile),
		Completed: recordstore.New[event.Event](dir, completedFile),
	}
	b.Active.SetObserver(b)
	if _, err := b.Active.Load(); err != nil {
		return nil, err
	}
	if err := b.reloadCompleted(); err != nil {
		return nil, err
	}
	return b, nil
}

// ItemDeleted implements recordstore.Observer for the active store
func (b *Book) ItemDeleted(_ *recordstore.Store[event.Event], e event.Event) {
	err := b.Completed.Create(e)
	if log.IfErrf(err, "schedule: moving '%s' to completed failed with '%v'", e.Name, err) {
		return
	}
	log.IfErrf(b.reloadCompleted())
}

func (b *Book) reloadCompleted() error {
	items, err := b.Completed.Load()
	if err != nil {
		return err
	}
	b.completed = items
	return nil
}

// Add schedules a new event
func (b *Book) Add(name string, date time.Time) (event.Event, error) {
	e := event.Event{Name: name, Date: date}
	return e, b.Active.Create(e)
}

// Events returns active events in stored order
func (b *Book) Events() ([]event.Event, error) {
	return b.Active.Load()
}

// Upcoming returns active events at or after now, sorted by date
func (b *Book) Upcoming(now time.Time) ([]event.Event, error) {
	items, err := b.Active.Load()
	if err != nil {
		return nil, err
	}
	var res []event.Event
	for _, e := range event.SortedByDate(items) {
		if !e.Date.Before(now) {
			res = append(res, e)
		}
	}
	return res, nil
}

// CompletedEvents returns the completed list as of the last move or reload
func (b *Book) CompletedEvents() []event.Event {
	return b.completed
}

// Complete removes active event at index, which moves it to completed
func (b *Book) Complete(index int) error {
	if _, err := b.Active.Load(); err != nil {
		return err
	}
	return b.Active.DeleteAt(index)
}

// Purge permanently removes completed event at index
func (b *Book) Purge(index int) error {
	if err := b.reloadCompleted(); err != nil {
		return err
	}
	if err := b.Completed.DeleteAt(index); err != nil {
		return err
	}
	return b.reloadCompleted()
}

// ClearCompleted removes all completed events
func (b *Book) ClearCompleted() error {
	b.Completed.RemoveAll()
	return b.reloadCompleted()
}
