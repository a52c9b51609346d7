// Package recordstore keeps an ordered list of records in a single file.
//
// A Store caches items in memory and writes the whole list to the file
// after every change. Writes are atomic (see package atomicfile) so the
// file always has either the previous or the new list.
//
// # Basic Usage
//
//	type Event struct {
//	    Name string
//	    Date time.Time
//	}
//
//	func (e Event) Equal(o Event) bool {
//	    return e.Name == o.Name && e.Date.Equal(o.Date)
//	}
//
//	s := recordstore.New[Event](dataDir, "schedules.plist")
//	err := s.Create(Event{Name: "standup", Date: when})
//	items, err := s.Load()
//	err = s.DeleteAt(0)
//
// The file format is picked from the file extension, see package codec.
//
// # Errors
//
// Create, Load and DeleteAt return errors (*DecodeError, *WriteError,
// *DeleteError, *IndexError). Synchronize, UpdateAt, UpdateByMatch,
// HasBeenSaved and RemoveAll only report success as a bool (or not at all)
// and log the error.
//
// A failed save leaves both the file and in-memory items unchanged,
// except for Synchronize which always takes the new items.
//
// # Observer
//
// A store has at most one Observer, called after DeleteAt saved the
// remaining items. This is how a deleted item can be moved to another store:
//
//	completed := recordstore.New[Event](dataDir, "completedEvents.plist")
//	active.SetObserver(recordstore.ObserverFunc[Event](func(_ *recordstore.Store[Event], e Event) {
//	    _ = completed.Create(e)
//	}))
//
// # Concurrency
//
// Methods are safe to call from multiple goroutines. Two stores using the
// same file are not coordinated: the last one to save wins.
package recordstore
