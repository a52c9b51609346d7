package recordstore

import (
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/kjk/scheduler/atomicfile"
	"github.com/kjk/scheduler/codec"
	"github.com/kjk/scheduler/log"
	"github.com/kjk/scheduler/u"
)

// Record is a value that can be stored. Equal is value equality,
// used by UpdateByMatch and HasBeenSaved.
// Fields must be serializable by the codec picked for the file.
type Record[T any] interface {
	Equal(T) bool
}

type Store[T Record[T]] struct {
	// directory of the backing file, created on first save
	Dir string
	// name of the backing file, its extension selects Codec
	FileName string
	// if nil, picked with codec.ForFile(FileName)
	Codec codec.Codec

	observer Observer[T]
	// in-memory cache of the file, in file order
	items []T
	mu    sync.Mutex
}

// New returns a store for dir/fileName. Nothing is read until
// Load() or Create().
func New[T Record[T]](dir string, fileName string) *Store[T] {
	return &Store[T]{
		Dir:      dir,
		FileName: fileName,
	}
}

// Path returns path of the backing file
func (s *Store[T]) Path() string {
	path := filepath.Join(s.Dir, s.FileName)
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// SetObserver sets the observer notified on DeleteAt(), nil to remove
func (s *Store[T]) SetObserver(o Observer[T]) {
	s.mu.Lock()
	s.observer = o
	s.mu.Unlock()
}

func (s *Store[T]) getCodec() (codec.Codec, error) {
	if s.Codec != nil {
		return s.Codec, nil
	}
	return codec.ForFile(s.FileName)
}

// loadLocked reads the file into s.items. If the file doesn't
// exist s.items is left as is.
func (s *Store[T]) loadLocked() ([]T, error) {
	path := s.Path()
	if !u.FileExists(path) {
		return s.items, nil
	}
	c, err := s.getCodec()
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	d, err := os.ReadFile(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	var items []T
	if err = c.Unmarshal(d, &items); err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	log.Verbosef("recordstore: loaded %d items from '%s'\n", len(items), path)
	s.items = items
	return items, nil
}

// saveLocked writes items to the file. It doesn't touch s.items,
// callers commit to s.items only after a successful save.
func (s *Store[T]) saveLocked(items []T) error {
	path := s.Path()
	c, err := s.getCodec()
	if err != nil {
		return &WriteError{Path: path, Err: &EncodeError{Path: path, Err: err}}
	}
	if items == nil {
		// encoders differ in how they treat nil slice
		items = []T{}
	}
	d, err := c.Marshal(items)
	if err != nil {
		return &WriteError{Path: path, Err: &EncodeError{Path: path, Err: err}}
	}
	if err = u.CreateDirForFile(path); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err = atomicfile.WriteFile(path, d, 0644); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// Create appends item and saves all items.
// The file is re-read first so that we append to its latest content.
// Returns *DecodeError if the existing file can't be read
// and *WriteError if saving failed. On error the store is unchanged.
func (s *Store[T]) Create(item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.loadLocked()
	if err != nil {
		return err
	}
	next := append(slices.Clone(items), item)
	if err = s.saveLocked(next); err != nil {
		return err
	}
	s.items = next
	log.Event("store.create", "file", s.FileName, "count", len(next))
	return nil
}

// Load reads items from the file, replacing in-memory items.
// If the file doesn't exist, returns in-memory items (empty for a new store).
func (s *Store[T]) Load() ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.loadLocked()
	if err != nil {
		return nil, err
	}
	if items == nil {
		return []T{}, nil
	}
	return slices.Clone(items), nil
}

// Items returns in-memory items without reading the file
func (s *Store[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// Len returns number of in-memory items
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Synchronize replaces all items, e.g. after re-ordering, and saves them.
// Saving is best effort: an error is logged, not returned.
func (s *Store[T]) Synchronize(items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = slices.Clone(items)
	err := s.saveLocked(s.items)
	if log.IfErrf(err, "recordstore: Synchronize() failed with '%v'", err) {
		return
	}
	log.Event("store.sync", "file", s.FileName, "count", len(items))
}

// UpdateByMatch replaces the first item equal to oldItem with newItem.
// Returns false if there is no such item or saving failed.
func (s *Store[T]) UpdateByMatch(oldItem T, newItem T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.items, oldItem.Equal)
	if idx < 0 {
		return false
	}
	return s.updateAtLocked(newItem, idx)
}

// UpdateAt replaces item at index and saves.
// Returns false if index is out of range or saving failed.
func (s *Store[T]) UpdateAt(item T, index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateAtLocked(item, index)
}

func (s *Store[T]) updateAtLocked(item T, index int) bool {
	if index < 0 || index >= len(s.items) {
		err := &IndexError{Index: index, Len: len(s.items)}
		log.Errorf("recordstore: UpdateAt() failed with '%v'", err)
		return false
	}
	next := slices.Clone(s.items)
	next[index] = item
	err := s.saveLocked(next)
	if log.IfErrf(err, "recordstore: UpdateAt(%d) failed with '%v'", index, err) {
		return false
	}
	s.items = next
	log.Event("store.update", "file", s.FileName, "index", index)
	return true
}

// DeleteAt removes item at index and saves the rest.
// After a successful save the observer (if any) is called with the
// removed item. The observer runs after the store is unlocked so it
// can use the store.
// Returns *IndexError or *DeleteError. On error the store is unchanged
// and the observer is not called.
func (s *Store[T]) DeleteAt(index int) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.items) {
		n := len(s.items)
		s.mu.Unlock()
		return &IndexError{Index: index, Len: n}
	}
	deleted := s.items[index]
	next := slices.Delete(slices.Clone(s.items), index, index+1)
	if err := s.saveLocked(next); err != nil {
		s.mu.Unlock()
		return &DeleteError{Path: s.Path(), Index: index, Err: err}
	}
	s.items = next
	observer := s.observer
	s.mu.Unlock()

	log.Event("store.delete", "file", s.FileName, "index", index)
	if observer != nil {
		observer.ItemDeleted(s, deleted)
	}
	return nil
}

// HasBeenSaved re-reads the file and returns true if it has an item
// equal to item. Returns false if reading failed.
func (s *Store[T]) HasBeenSaved(item T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.loadLocked()
	if log.IfErrf(err, "recordstore: HasBeenSaved() failed with '%v'", err) {
		return false
	}
	return slices.ContainsFunc(items, item.Equal)
}

// RemoveAll deletes all items. Best effort: errors are logged.
func (s *Store[T]) RemoveAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.loadLocked()
	if log.IfErrf(err, "recordstore: RemoveAll() failed with '%v'", err) {
		return
	}
	err = s.saveLocked(nil)
	if log.IfErrf(err, "recordstore: RemoveAll() failed with '%v'", err) {
		return
	}
	s.items = nil
	log.Event("store.clear", "file", s.FileName)
}

// Snapshot returns content of the backing file, decompressed
// if the file is compressed. Returns *PathNotFoundError if the file
// doesn't exist.
func (s *Store[T]) Snapshot() ([]byte, error) {
	path := s.Path()
	if !u.FileExists(path) {
		return nil, &PathNotFoundError{Path: path}
	}
	d, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := s.getCodec()
	if err != nil {
		return nil, err
	}
	return codec.Decompress(c, d)
}
