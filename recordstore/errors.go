package recordstore

import (
	"fmt"
)

// Sentinels for errors.Is(). Each matches any error of its type:
//
//	if errors.Is(err, recordstore.ErrDecode) { ... }
var (
	ErrEncode       = &EncodeError{}
	ErrDecode       = &DecodeError{}
	ErrWrite        = &WriteError{}
	ErrDelete       = &DeleteError{}
	ErrPathNotFound = &PathNotFoundError{}
	ErrIndex        = &IndexError{}
)

func causeSuffix(err error) string {
	if err == nil {
		return ""
	}
	return ": " + err.Error()
}

// EncodeError means items couldn't be serialized
type EncodeError struct {
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("recordstore: encoding '%s' failed%s", e.Path, causeSuffix(e.Err))
}

func (e *EncodeError) Unwrap() error { return e.Err }

func (e *EncodeError) Is(target error) bool {
	_, ok := target.(*EncodeError)
	return ok
}

// DecodeError means the backing file exists but couldn't be read
// or its content is not a sequence of records
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("recordstore: decoding '%s' failed%s", e.Path, causeSuffix(e.Err))
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool {
	_, ok := target.(*DecodeError)
	return ok
}

// WriteError means saving to the backing file failed.
// Err is *EncodeError if serialization failed.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("recordstore: writing '%s' failed%s", e.Path, causeSuffix(e.Err))
}

func (e *WriteError) Unwrap() error { return e.Err }

func (e *WriteError) Is(target error) bool {
	_, ok := target.(*WriteError)
	return ok
}

// DeleteError means the item was not deleted because
// the remaining items couldn't be saved
type DeleteError struct {
	Path  string
	Index int
	Err   error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("recordstore: deleting item %d from '%s' failed%s", e.Index, e.Path, causeSuffix(e.Err))
}

func (e *DeleteError) Unwrap() error { return e.Err }

func (e *DeleteError) Is(target error) bool {
	_, ok := target.(*DeleteError)
	return ok
}

// PathNotFoundError is returned when raw content of a backing
// file that doesn't exist is requested
type PathNotFoundError struct {
	Path string
}

func (e *PathNotFoundError) Error() string {
	return fmt.Sprintf("recordstore: no content at '%s'", e.Path)
}

func (e *PathNotFoundError) Is(target error) bool {
	_, ok := target.(*PathNotFoundError)
	return ok
}

// IndexError is returned for an index outside of [0, Len)
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("recordstore: index %d out of range [0:%d)", e.Index, e.Len)
}

func (e *IndexError) Is(target error) bool {
	_, ok := target.(*IndexError)
	return ok
}
