package require

import (
	"errors"
	"fmt"
	"testing"
)

// recordingT records failures instead of stopping the test
type recordingT struct {
	errors  []string
	failNow int
}

func (t *recordingT) Errorf(format string, args ...interface{}) {
	t.errors = append(t.errors, fmt.Sprintf(format, args...))
}

func (t *recordingT) FailNow() {
	t.failNow++
}

func TestPassingAssertions(t *testing.T) {
	rt := &recordingT{}
	Len(rt, []int{1, 2}, 2)
	Nil(rt, nil)
	NoError(rt, nil)
	Error(rt, errors.New("boom"))
	Equal(rt, "a", "a")
	NotNil(rt, rt)
	True(rt, true)
	False(rt, false)
	if len(rt.errors) != 0 || rt.failNow != 0 {
		t.Fatalf("expected no failures, got %d errors and %d FailNow calls: %v", len(rt.errors), rt.failNow, rt.errors)
	}
}

func TestFailingAssertions(t *testing.T) {
	checks := map[string]func(TestingT){
		"Len":     func(t TestingT) { Len(t, []int{1}, 2) },
		"Nil":     func(t TestingT) { Nil(t, 1) },
		"NoError": func(t TestingT) { NoError(t, errors.New("boom")) },
		"Error":   func(t TestingT) { Error(t, nil) },
		"Equal":   func(t TestingT) { Equal(t, "a", "b") },
		"NotNil":  func(t TestingT) { NotNil(t, nil) },
		"True":    func(t TestingT) { True(t, false) },
		"False":   func(t TestingT) { False(t, true) },
	}
	for name, check := range checks {
		rt := &recordingT{}
		check(rt)
		if len(rt.errors) == 0 {
			t.Errorf("%s: expected an error to be reported", name)
		}
		if rt.failNow == 0 {
			t.Errorf("%s: expected FailNow() to be called", name)
		}
	}
}
