package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	ical "github.com/arran4/golang-ical"

	"github.com/kjk/scheduler/config"
	"github.com/kjk/scheduler/log"
	"github.com/kjk/scheduler/require"
)

type testEnv struct {
	dir     string
	cfgPath string
}

func newTestEnv(t *testing.T) *testEnv {
	dir := t.TempDir()
	cfg := &config.Config{
		DataDir: filepath.Join(dir, "data"),
		LogDir:  filepath.Join(dir, "logs"),
	}
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, config.Save(cfgPath, cfg))
	return &testEnv{dir: dir, cfgPath: cfgPath}
}

func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	var buf bytes.Buffer
	app := newApp()
	app.Writer = &buf
	app.ErrWriter = &buf
	args = append([]string{"scheduler", "--config", e.cfgPath}, args...)
	err := app.Run(args)
	log.Close()
	return buf.String(), err
}

func (e *testEnv) mustRun(t *testing.T, args ...string) string {
	out, err := e.run(t, args...)
	require.NoError(t, err, strings.Join(args, " "))
	return out
}

func TestAddAndList(t *testing.T) {
	e := newTestEnv(t)
	out := e.mustRun(t, "add", "--date", "2026-01-05 09:30", "standup")
	require.True(t, strings.Contains(out, "2026-01-05 09:30 standup"), out)
	e.mustRun(t, "add", "--date", "2026-01-04", "dentist", "visit")

	out = e.mustRun(t, "list")
	require.True(t, strings.Contains(out, "  0 2026-01-05 09:30 standup"), out)
	require.True(t, strings.Contains(out, "  1 2026-01-04 00:00 dentist visit"), out)

	out = e.mustRun(t, "list", "--completed")
	require.True(t, strings.Contains(out, "no events"), out)

	_, err := os.Stat(filepath.Join(e.dir, "data", "schedules.plist"))
	require.NoError(t, err)
}

func TestAddErrors(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.run(t, "add", "--date", "2026-01-05")
	require.Error(t, err)
	_, err = e.run(t, "add", "--date", "next tuesday", "standup")
	require.Error(t, err)
}

func TestCompleteMovesEvent(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun(t, "add", "--date", "2026-01-05", "standup")
	e.mustRun(t, "add", "--date", "2026-01-06", "retro")

	out := e.mustRun(t, "complete", "1")
	require.True(t, strings.Contains(out, "1 completed events"), out)

	out = e.mustRun(t, "list")
	require.False(t, strings.Contains(out, "retro"), out)
	out = e.mustRun(t, "list", "--completed")
	require.True(t, strings.Contains(out, "  0 2026-01-06 00:00 retro"), out)

	_, err := e.run(t, "complete", "5")
	require.Error(t, err)

	e.mustRun(t, "delete", "0")
	out = e.mustRun(t, "list", "--completed")
	require.True(t, strings.Contains(out, "no events"), out)
}

func TestClear(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun(t, "add", "--date", "2026-01-05", "a")
	e.mustRun(t, "add", "--date", "2026-01-06", "b")
	e.mustRun(t, "complete", "0")
	e.mustRun(t, "complete", "0")
	out := e.mustRun(t, "list", "--completed")
	require.True(t, strings.Contains(out, "  1 2026-01-06 00:00 b"), out)

	e.mustRun(t, "clear")
	out = e.mustRun(t, "list", "--completed")
	require.True(t, strings.Contains(out, "no events"), out)
}

func TestUpdate(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun(t, "add", "--date", "2026-01-05", "standup")
	out := e.mustRun(t, "update", "--name", "daily standup", "--date", "2026-01-07 10:00", "0")
	require.True(t, strings.Contains(out, "2026-01-07 10:00 daily standup"), out)

	out = e.mustRun(t, "list")
	require.True(t, strings.Contains(out, "  0 2026-01-07 10:00 daily standup"), out)

	_, err := e.run(t, "update", "--name", "x", "3")
	require.Error(t, err)
	_, err = e.run(t, "update", "0")
	require.Error(t, err)
}

func TestReorder(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun(t, "add", "--date", "2026-01-05", "a")
	e.mustRun(t, "add", "--date", "2026-01-06", "b")
	e.mustRun(t, "add", "--date", "2026-01-07", "c")

	e.mustRun(t, "reorder", "2", "0")
	out := e.mustRun(t, "list")
	require.True(t, strings.Contains(out, "  0 2026-01-07 00:00 c"), out)
	require.True(t, strings.Contains(out, "  1 2026-01-05 00:00 a"), out)
	require.True(t, strings.Contains(out, "  2 2026-01-06 00:00 b"), out)

	_, err := e.run(t, "reorder", "0", "3")
	require.Error(t, err)
}

func TestExportICS(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun(t, "add", "--date", "2026-01-06", "retro")
	e.mustRun(t, "add", "--date", "2026-01-05", "standup")

	out := e.mustRun(t, "export-ics")
	cal, err := ical.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 2)
	require.Equal(t, "standup", events[0].GetProperty(ical.ComponentPropertySummary).Value)

	path := filepath.Join(e.dir, "out.ics")
	e.mustRun(t, "export-ics", "--out", path)
	d, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(d), "BEGIN:VCALENDAR"))
}

func TestCatAndDump(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.run(t, "cat")
	require.Error(t, err)

	e.mustRun(t, "add", "--date", "2026-01-05", "standup")
	out := e.mustRun(t, "cat")
	require.True(t, strings.Contains(out, "<plist"), out)
	require.True(t, strings.Contains(out, "standup"), out)

	out = e.mustRun(t, "dump")
	require.True(t, strings.Contains(out, "schedules.plist"), out)
	require.True(t, strings.Contains(out, "(string) (len=7) \"standup\""), out)
}

func TestDiff(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun(t, "add", "--date", "2026-01-05", "a")
	e.mustRun(t, "add", "--date", "2026-01-06", "b")
	e.mustRun(t, "complete", "1")

	out := e.mustRun(t, "diff", "schedules.plist", "completedEvents.plist")
	require.True(t, strings.Contains(out, "--- schedules.plist"), out)
	require.True(t, strings.Contains(out, "-2026-01-05 00:00 a"), out)
	require.True(t, strings.Contains(out, "+2026-01-06 00:00 b"), out)

	_, err := e.run(t, "diff", "schedules.plist")
	require.Error(t, err)
}

func TestHistory(t *testing.T) {
	e := newTestEnv(t)
	out := e.mustRun(t, "history")
	require.True(t, strings.Contains(out, "no changes today"), out)

	e.mustRun(t, "add", "--date", "2026-01-05", "a")
	e.mustRun(t, "complete", "0")
	out = e.mustRun(t, "history")
	require.True(t, strings.Contains(out, "store.create"), out)
	require.True(t, strings.Contains(out, "store.delete"), out)
}

func TestDataDirFlag(t *testing.T) {
	e := newTestEnv(t)
	dataDir := filepath.Join(e.dir, "other")
	e.mustRun(t, "--data-dir", dataDir, "add", "--date", "2026-01-05", "a")
	_, err := os.Stat(filepath.Join(dataDir, "schedules.plist"))
	require.NoError(t, err)

	out := e.mustRun(t, "list")
	require.True(t, strings.Contains(out, "no events"), out)
}

func TestParseDate(t *testing.T) {
	for _, s := range []string{"2026-01-05", "2026-01-05 09:30", "2026-01-05T09:30:00Z", " 2026-01-05 "} {
		_, err := parseDate(s)
		require.NoError(t, err, s)
	}
	for _, s := range []string{"", "05/01/2026", "2026-13-01"} {
		_, err := parseDate(s)
		require.Error(t, err, s)
	}
}
