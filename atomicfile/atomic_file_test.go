package atomicfile

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func assertFileExists(t *testing.T, path string) {
	st, err := os.Stat(path)
	if err != nil {
		t.Fatalf("file '%s' doesn't exist, os.Stat() failed with '%s'", path, err)
	}
	if !st.Mode().IsRegular() {
		t.Fatalf("Path '%s' exists but is not a file (mode: %d)", path, int(st.Mode()))
	}
}

func assertFileNotExists(t *testing.T, path string) {
	_, err := os.Stat(path)
	if err == nil {
		t.Fatalf("file '%s' exist, expected to not exist", path)
	}
}

func assertNoError(t *testing.T, err error) {
	if err != nil {
		t.Fatalf("error: %s", err)
	}
}

func assertError(t *testing.T, err error) {
	if err == nil {
		t.Fatal("expected to get an error")
	}
}

func assertFileContent(t *testing.T, path string, exp string) {
	d, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("os.ReadFile('%s') failed with '%s'", path, err)
	}
	if string(d) != exp {
		t.Fatalf("path: '%s', expected content: %q, got: %q", path, exp, string(d))
	}
}

func TestSimulateError(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "schedules.plist")
	f, err := New(dst)
	assertNoError(t, err)
	assertFileExists(t, f.tmpPath)
	_, err = f.Write([]byte("foo"))
	assertNoError(t, err)
	// simulate an error
	errSimulated := errors.New("simulated")
	f.err = errSimulated
	err = f.Close()
	if err != errSimulated {
		t.Fatalf("got unexpected error")
	}
	assertFileNotExists(t, f.tmpPath)
	assertFileNotExists(t, dst)
	// on second Close() should get the same error
	err = f.Close()
	if err != errSimulated {
		t.Fatalf("got unexpected error")
	}
}

func TestFailedWriteKeepsPreviousContent(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "schedules.json")
	assertNoError(t, WriteFile(dst, []byte("[1]"), 0644))

	f, err := New(dst)
	assertNoError(t, err)
	_, err = f.Write([]byte("[1,2"))
	assertNoError(t, err)
	f.err = errors.New("disk full")
	assertError(t, f.Close())

	assertFileContent(t, dst, "[1]")
	assertFileNotExists(t, f.tmpPath)
}

func writeWithPanicCancel(t *testing.T, f *File) {
	defer f.RemoveIfNotClosed()

	_, err := f.Write([]byte("foo"))
	assertNoError(t, err)
	panic("simulating a crash")
}

func recoverCancelPanic(t *testing.T, f *File) {
	defer func() {
		err := recover()
		if err == nil {
			t.Fatalf("expected to panic")
		}
	}()

	writeWithPanicCancel(t, f)
}

func TestCancel(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "events.json")
	f, err := New(dst)
	assertNoError(t, err)
	assertFileExists(t, f.tmpPath)
	recoverCancelPanic(t, f)
	assertFileNotExists(t, f.tmpPath)
	assertFileNotExists(t, dst)

	_, err = f.Write([]byte("foo"))
	if err != ErrCancelled {
		t.Fatalf("expected err to be %v, got %v", ErrCancelled, err)
	}
	if err = f.Close(); err != ErrCancelled {
		t.Fatalf("expected err to be %v, got %v", ErrCancelled, err)
	}
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "events.json")
	{
		f, err := New(dst)
		assertNoError(t, err)
		assertFileExists(t, f.tmpPath)
		assertNoError(t, f.Close())
		assertFileContent(t, dst, "")
		assertFileNotExists(t, f.tmpPath)
	}
	{
		f, err := New(dst)
		assertNoError(t, err)
		n, err := f.WriteString("[\"standup\"]")
		assertNoError(t, err)
		if n != 11 {
			t.Fatalf("expected: %d, got: %d", 11, n)
		}
		assertNoError(t, f.Close())
		assertFileNotExists(t, f.tmpPath)
		assertFileContent(t, dst, "[\"standup\"]")
		// calling Close twice is a no-op
		assertNoError(t, f.Close())
	}

	// we can't create files in directories that don't exist
	// so verify we do an early check
	{
		f, err := New(filepath.Join(dir, "foo", "bar.txt"))
		assertError(t, err)
		if f != nil {
			t.Fatalf("expected f to be nil, got %v", f)
		}
	}
}

func TestWriteFilePerm(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "config.yaml")
	assertNoError(t, WriteFile(dst, []byte("verbose: true\n"), 0600))
	assertFileContent(t, dst, "verbose: true\n")
	st, err := os.Stat(dst)
	assertNoError(t, err)
	if runtime.GOOS != "windows" && st.Mode().Perm() != 0600 {
		t.Fatalf("expected perm 0600, got %v", st.Mode().Perm())
	}
}
