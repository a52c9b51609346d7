package recordstore

// Observer is notified after an item was deleted from a store and
// the remaining items were saved. The store doesn't own the observer,
// clear it with SetObserver(nil) when the observer goes away.
type Observer[T Record[T]] interface {
	ItemDeleted(s *Store[T], item T)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc[T Record[T]] func(s *Store[T], item T)

func (f ObserverFunc[T]) ItemDeleted(s *Store[T], item T) {
	f(s, item)
}
