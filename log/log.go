// Package log writes daily log files: regular messages, errors with
// callstack and events. Events are siser blocks with a toon payload.
package log

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/toon-format/toon-go"

	"github.com/kjk/scheduler/siser"
	"github.com/kjk/scheduler/u"
)

var (
	log       *dailyFile
	errorsLog *dailyFile
	eventsLog *dailyFile

	// if true, Verbosef() will log messages
	Verbose bool

	// Stdout is where Logf() echoes messages, nil disables echo
	Stdout io.Writer = os.Stdout
)

// dailyFile appends to dir/YYYY-MM-DD.txt, switching files when UTC day changes.
// Methods are no-ops on nil receiver so that logging before Init() is safe.
type dailyFile struct {
	dir  string
	day  string
	file *os.File
	mu   sync.Mutex
}

func dayOf(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Path returns path of today's file
func (f *dailyFile) Path() string {
	return filepath.Join(f.dir, dayOf(time.Now())+".txt")
}

func (f *dailyFile) Write(d []byte) error {
	if f == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	day := dayOf(time.Now())
	if f.file != nil && f.day != day {
		f.closeLocked()
	}
	if f.file == nil {
		if err := os.MkdirAll(f.dir, 0755); err != nil {
			return err
		}
		path := filepath.Join(f.dir, day+".txt")
		file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		f.file = file
		f.day = day
	}
	_, err := f.file.Write(d)
	return err
}

func (f *dailyFile) Sync() error {
	if f == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return nil
	}
	return f.file.Sync()
}

func (f *dailyFile) closeLocked() error {
	if f.file == nil {
		return nil
	}
	f.file.Sync()
	err := f.file.Close()
	f.file = nil
	f.day = ""
	return err
}

func (f *dailyFile) Close() error {
	if f == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closeLocked()
}

type Config struct {
	// directory where log files are stored
	// each log type (regular, error, event) has its own subdirectory
	Dir string
}

// Init starts logging to files in config.Dir.
// Until Init is called, logging only goes to Stdout.
// Files are created on first write.
func Init(config *Config) {
	Close()
	log = &dailyFile{dir: filepath.Join(config.Dir, "log")}
	errorsLog = &dailyFile{dir: filepath.Join(config.Dir, "errors")}
	eventsLog = &dailyFile{dir: filepath.Join(config.Dir, "events")}
}

// EventsPath returns path of today's events log, empty if Init wasn't called
func EventsPath() string {
	if eventsLog == nil {
		return ""
	}
	return eventsLog.Path()
}

func Close() {
	for _, f := range []**dailyFile{&log, &errorsLog, &eventsLog} {
		(*f).Close()
		*f = nil
	}
}

func Logf(s string, args ...any) {
	if len(args) > 0 {
		s = fmt.Sprintf(s, args...)
	}
	if Stdout != nil {
		fmt.Fprint(Stdout, s)
	}
	log.Write([]byte(s))
}

func Verbosef(format string, args ...any) {
	if Verbose {
		Logf(format, args...)
	}
}

// callstack returns file:line of callers, one per line
func callstack(skip int) string {
	var pcs [32]uintptr
	n := runtime.Callers(skip+2, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])
	var lines []string
	for {
		frame, more := frames.Next()
		if !more {
			break
		}
		lines = append(lines, frame.File+":"+strconv.Itoa(frame.Line))
	}
	return strings.Join(lines, "\n")
}

// Errorf logs an error message along with the callstack
// to both regular and errors log
func Errorf(s string, args ...any) {
	if len(args) > 0 {
		s = fmt.Sprintf(s, args...)
	}
	s = s + "\n" + callstack(1) + "\n"
	Logf("%s", s)
	errorsLog.Write([]byte(s))
}

// IfErrf logs and returns true if err != nil.
// IfErrf(err) logs err.Error(), IfErrf(err, "load failed with '%v'", err)
// logs formatted message.
func IfErrf(err error, a ...any) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	if len(a) > 0 {
		s = fmt.Sprint(a[0])
		if len(a) > 1 {
			s = fmt.Sprintf(s, a[1:]...)
		}
	}
	Errorf("%s", s)
	return true
}

// MarshalEvent returns an event as a siser block with toon payload.
// vals are key / value pairs, keys must be strings.
// If toon can't encode vals, payload is "key: value" lines.
func MarshalEvent(name string, t time.Time, vals ...any) []byte {
	n := len(vals)
	u.PanicIf(n%2 != 0, "odd number of key/value args: %d", n)
	if n == 0 {
		return siser.MarshalLine(name, t, nil, nil)
	}
	m := map[string]any{}
	for i := 0; i < n; i += 2 {
		k, ok := vals[i].(string)
		u.PanicIf(!ok, "event key must be string, got %T", vals[i])
		m[k] = vals[i+1]
	}
	d, err := toon.Marshal(m)
	if err != nil {
		errorsLog.Write([]byte(fmt.Sprintf("log: toon.Marshal() of event '%s' failed with '%s'\n", name, err)))
		var buf bytes.Buffer
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			fmt.Fprintf(&buf, "%s: %q\n", k, fmt.Sprint(m[k]))
		}
		d = buf.Bytes()
	}
	return siser.MarshalLine(name, t, d, nil)
}

// Event logs event to events log, vals are key / value pairs
func Event(name string, vals ...any) {
	if eventsLog == nil {
		return
	}
	d := MarshalEvent(name, time.Now(), vals...)
	eventsLog.Write(d)
}
