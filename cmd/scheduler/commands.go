package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/urfave/cli/v2"

	"github.com/kjk/scheduler/atomicfile"
	"github.com/kjk/scheduler/event"
	"github.com/kjk/scheduler/log"
	"github.com/kjk/scheduler/recordstore"
	"github.com/kjk/scheduler/siser"
	"github.com/kjk/scheduler/u"
)

var dateLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC3339,
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date '%s', expected YYYY-MM-DD, 'YYYY-MM-DD HH:MM' or RFC 3339", s)
}

func argIndex(c *cli.Context, n int) (int, error) {
	s := c.Args().Get(n)
	if s == "" {
		return 0, fmt.Errorf("missing index argument")
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid index '%s'", s)
	}
	return i, nil
}

func printEvents(w io.Writer, events []event.Event) {
	if len(events) == 0 {
		fmt.Fprintln(w, "no events")
		return
	}
	for i, e := range events {
		fmt.Fprintf(w, "%3d %s\n", i, e)
	}
}

func addCommand(c *cli.Context) error {
	name := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if name == "" {
		return errors.New("missing event name")
	}
	date, err := parseDate(c.String("date"))
	if err != nil {
		return err
	}
	b, err := openBook(c)
	if err != nil {
		return err
	}
	e, err := b.Add(name, date)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "added: %s\n", e)
	return nil
}

func listCommand(c *cli.Context) error {
	b, err := openBook(c)
	if err != nil {
		return err
	}
	var events []event.Event
	switch {
	case c.Bool("completed"):
		events = b.CompletedEvents()
	case c.Bool("upcoming"):
		events, err = b.Upcoming(time.Now())
	default:
		events, err = b.Events()
	}
	if err != nil {
		return err
	}
	printEvents(c.App.Writer, events)
	return nil
}

func updateCommand(c *cli.Context) error {
	idx, err := argIndex(c, 0)
	if err != nil {
		return err
	}
	if !c.IsSet("name") && !c.IsSet("date") {
		return errors.New("nothing to update, provide --name and/or --date")
	}
	b, err := openBook(c)
	if err != nil {
		return err
	}
	events, err := b.Events()
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(events) {
		return &recordstore.IndexError{Index: idx, Len: len(events)}
	}
	old := events[idx]
	updated := old
	if c.IsSet("name") {
		updated.Name = c.String("name")
	}
	if c.IsSet("date") {
		if updated.Date, err = parseDate(c.String("date")); err != nil {
			return err
		}
	}
	if !b.Active.UpdateByMatch(old, updated) {
		return fmt.Errorf("failed to update event %d in '%s'", idx, b.Active.Path())
	}
	fmt.Fprintf(c.App.Writer, "updated: %s\n", updated)
	return nil
}

func completeCommand(c *cli.Context) error {
	idx, err := argIndex(c, 0)
	if err != nil {
		return err
	}
	b, err := openBook(c)
	if err != nil {
		return err
	}
	if err = b.Complete(idx); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "completed event %d, %d completed events\n", idx, len(b.CompletedEvents()))
	return nil
}

func deleteCommand(c *cli.Context) error {
	idx, err := argIndex(c, 0)
	if err != nil {
		return err
	}
	b, err := openBook(c)
	if err != nil {
		return err
	}
	if err = b.Purge(idx); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "deleted completed event %d\n", idx)
	return nil
}

func clearCommand(c *cli.Context) error {
	b, err := openBook(c)
	if err != nil {
		return err
	}
	if err = b.ClearCompleted(); err != nil {
		return err
	}
	if n := len(b.CompletedEvents()); n > 0 {
		return fmt.Errorf("failed to clear '%s', %d events left", b.Completed.Path(), n)
	}
	fmt.Fprintln(c.App.Writer, "cleared completed events")
	return nil
}

func reorderCommand(c *cli.Context) error {
	from, err := argIndex(c, 0)
	if err != nil {
		return err
	}
	to, err := argIndex(c, 1)
	if err != nil {
		return err
	}
	b, err := openBook(c)
	if err != nil {
		return err
	}
	events, err := b.Events()
	if err != nil {
		return err
	}
	n := len(events)
	if from < 0 || from >= n {
		return &recordstore.IndexError{Index: from, Len: n}
	}
	if to < 0 || to >= n {
		return &recordstore.IndexError{Index: to, Len: n}
	}
	e := events[from]
	events = slices.Delete(events, from, from+1)
	events = slices.Insert(events, to, e)
	b.Active.Synchronize(events)
	printEvents(c.App.Writer, b.Active.Items())
	return nil
}

func exportICSCommand(c *cli.Context) error {
	b, err := openBook(c)
	if err != nil {
		return err
	}
	events := b.CompletedEvents()
	calName := "Completed events"
	if !c.Bool("completed") {
		calName = "Scheduled events"
		if events, err = b.Events(); err != nil {
			return err
		}
	}
	s := event.ToICS(event.SortedByDate(events), calName)
	out := c.String("out")
	if out == "" {
		_, err = io.WriteString(c.App.Writer, s)
		return err
	}
	if err = atomicfile.WriteFile(out, []byte(s), 0644); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "wrote %d events to '%s'\n", len(events), out)
	return nil
}

func pickStore(c *cli.Context) (*recordstore.Store[event.Event], error) {
	b, err := openBook(c)
	if err != nil {
		return nil, err
	}
	if c.Bool("completed") {
		return b.Completed, nil
	}
	return b.Active, nil
}

func catCommand(c *cli.Context) error {
	s, err := pickStore(c)
	if err != nil {
		return err
	}
	d, err := s.Snapshot()
	if err != nil {
		return err
	}
	_, err = c.App.Writer.Write(d)
	return err
}

func dumpCommand(c *cli.Context) error {
	s, err := pickStore(c)
	if err != nil {
		return err
	}
	type dumpEvent struct {
		Name string
		Date string
		UID  string
	}
	var items []dumpEvent
	for _, e := range s.Items() {
		items = append(items, dumpEvent{
			Name: e.Name,
			Date: e.Date.Format(time.RFC3339Nano),
			UID:  e.UID(),
		})
	}
	fmt.Fprintf(c.App.Writer, "%s (%d bytes):\n", s.Path(), u.FileSize(s.Path()))
	spew.Fdump(c.App.Writer, items)
	return nil
}

// storeForPath returns a store for path, relative paths are inside data dir
func storeForPath(c *cli.Context, path string) *recordstore.Store[event.Event] {
	if !filepath.IsAbs(path) {
		path = filepath.Join(getConfig(c).DataDir, path)
	}
	dir, name := filepath.Split(path)
	return recordstore.New[event.Event](dir, name)
}

func eventLines(c *cli.Context, path string) ([]string, error) {
	s := storeForPath(c, path)
	if !u.PathExists(s.Path()) {
		return nil, &recordstore.PathNotFoundError{Path: s.Path()}
	}
	events, err := s.Load()
	if err != nil {
		return nil, err
	}
	var res []string
	for _, e := range events {
		res = append(res, e.String()+"\n")
	}
	return res, nil
}

func diffCommand(c *cli.Context) error {
	if c.NArg() != 2 {
		return errors.New("expected 2 store files")
	}
	path1, path2 := c.Args().Get(0), c.Args().Get(1)
	lines1, err := eventLines(c, path1)
	if err != nil {
		return err
	}
	lines2, err := eventLines(c, path2)
	if err != nil {
		return err
	}
	diff := difflib.UnifiedDiff{
		A:        lines1,
		B:        lines2,
		FromFile: path1,
		ToFile:   path2,
		Context:  2,
	}
	return difflib.WriteUnifiedDiff(c.App.Writer, diff)
}

func historyCommand(c *cli.Context) error {
	path := log.EventsPath()
	if path == "" {
		return errors.New("logging is disabled, set log_dir in config")
	}
	if !u.DirExists(filepath.Dir(path)) || !u.FileExists(path) {
		fmt.Fprintln(c.App.Writer, "no changes today")
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := siser.NewReader(f)
	for r.ReadNextData() {
		ts := r.Timestamp.Local().Format("15:04:05")
		vals := strings.ReplaceAll(strings.TrimSpace(string(r.Data)), "\n", ", ")
		fmt.Fprintf(c.App.Writer, "%s %s %s\n", ts, r.Name, vals)
	}
	return r.Err()
}
