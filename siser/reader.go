package siser

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"time"
)

// Reader reads blocks written by Writer / MarshalLine
type Reader struct {
	r *bufio.Reader

	// hints that the data was written without a timestamp
	// (see Writer.NoTimestamp). We're permissive i.e. we'll
	// read timestamp if it's written even if NoTimestamp is true
	NoTimestamp bool

	// Data / Name / Timestamp are available after ReadNextData.
	// They are over-written in next ReadNextData.
	Data      []byte
	Name      string
	Timestamp time.Time

	err error

	// true if reached end of file with io.EOF
	done bool
}

// NewReader creates a new reader
func NewReader(r io.Reader) *Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Reader{
		r: br,
	}
}

// Done returns true if we're finished reading from the reader
func (r *Reader) Done() bool {
	return r.err != nil || r.done
}

// Err returns error from last Read. io.EOF is not an error
func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) badHeader(hdr []byte) bool {
	r.err = fmt.Errorf("unexpected header '%s'", string(bytes.TrimSpace(hdr)))
	return false
}

// ReadNextData reads next block, returns false when there are no more.
// If it returns false, check Err() to see if there were errors.
func (r *Reader) ReadNextData() bool {
	if r.Done() {
		return false
	}
	r.Name = ""
	r.Timestamp = time.Time{}

	hdr, err := r.r.ReadBytes('\n')
	if err != nil {
		if err == io.EOF && len(hdr) == 0 {
			r.done = true
		} else if err == io.EOF {
			r.err = io.ErrUnexpectedEOF
		} else {
			r.err = err
		}
		return false
	}
	if !bytes.HasPrefix(hdr, hdrPrefix) {
		return r.badHeader(hdr)
	}
	rest := hdr[len(hdrPrefix) : len(hdr)-1]

	parts := bytes.SplitN(rest, []byte{' '}, 3)
	size, err := strconv.Atoi(string(parts[0]))
	if err != nil || size < 0 {
		return r.badHeader(hdr)
	}
	parts = parts[1:]
	if len(parts) > 0 && !r.NoTimestamp {
		ms, err := strconv.ParseInt(string(parts[0]), 10, 64)
		if err != nil {
			return r.badHeader(hdr)
		}
		r.Timestamp = TimeFromUnixMillisecond(ms)
		parts = parts[1:]
	}
	if len(parts) > 0 {
		r.Name = string(bytes.Join(parts, []byte{' '}))
	}

	// re-use r.Data as long as it doesn't grow too much
	if cap(r.Data) > 1024*1024 || size > cap(r.Data) {
		r.Data = make([]byte, size)
	} else {
		r.Data = r.Data[:size]
	}
	if _, err = io.ReadFull(r.r, r.Data); err != nil {
		r.err = err
		return false
	}

	// account for the '\n' added by MarshalLine for readability
	if size > 0 && r.Data[size-1] != '\n' {
		if _, err = r.r.Discard(1); err != nil {
			r.err = err
			return false
		}
	}
	return true
}
