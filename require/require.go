package require

import "github.com/alecthomas/assert"

// this is a subset of github.com/stretchr/testify/require
// on top of github.com/alecthomas/assert, only the functions I use.
// assert functions call t.FailNow() on failure

// TestingT is an interface wrapper around *testing.T
type TestingT = assert.TestingT

// Len asserts that the specified object has specific length.
//
//	require.Len(t, items, 3)
func Len(t TestingT, object interface{}, length int, msgAndArgs ...interface{}) {
	assert.Len(t, object, length, msgAndArgs...)
}

// Nil asserts that the specified object is nil.
func Nil(t TestingT, object interface{}, msgAndArgs ...interface{}) {
	assert.Nil(t, object, msgAndArgs...)
}

// NoError asserts that a function returned no error (i.e. `nil`).
//
//	items, err := s.Load()
//	require.NoError(t, err)
func NoError(t TestingT, err error, msgAndArgs ...interface{}) {
	assert.NoError(t, err, msgAndArgs...)
}

// Error asserts that a function returned an error (i.e. not `nil`).
func Error(t TestingT, err error, msgAndArgs ...interface{}) {
	assert.Error(t, err, msgAndArgs...)
}

// Equal asserts that two objects are equal.
//
//	require.Equal(t, 123, 123)
func Equal(t TestingT, expected interface{}, actual interface{}, msgAndArgs ...interface{}) {
	assert.Equal(t, expected, actual, msgAndArgs...)
}

// NotNil asserts that the specified object is not nil.
func NotNil(t TestingT, object interface{}, msgAndArgs ...interface{}) {
	assert.NotNil(t, object, msgAndArgs...)
}

// True asserts that the specified value is true.
func True(t TestingT, value bool, msgAndArgs ...interface{}) {
	assert.True(t, value, msgAndArgs...)
}

// False asserts that the specified value is false.
func False(t TestingT, value bool, msgAndArgs ...interface{}) {
	assert.False(t, value, msgAndArgs...)
}
