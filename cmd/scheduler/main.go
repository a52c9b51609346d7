package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/kjk/scheduler/config"
	"github.com/kjk/scheduler/log"
	"github.com/kjk/scheduler/schedule"
)

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		log.Close()
		os.Exit(1)
	}
	log.Close()
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "scheduler",
		Usage: "Track scheduled events and the ones already done",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file, created if missing",
				Value:   filepath.Join(config.DefaultDir(), "config.yaml"),
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Aliases: []string{"d"},
				Usage:   "Directory with store files (overrides config)",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Verbose logging",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Schedule a new event",
				ArgsUsage: "<name>",
				Action:    addCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "date",
						Usage:    "Date as YYYY-MM-DD, 'YYYY-MM-DD HH:MM' or RFC 3339",
						Required: true,
					},
				},
			},
			{
				Name:   "list",
				Usage:  "List events",
				Action: listCommand,
				Flags: []cli.Flag{
					completedFlag(),
					&cli.BoolFlag{
						Name:  "upcoming",
						Usage: "Only future events, sorted by date",
					},
				},
			},
			{
				Name:      "update",
				Usage:     "Change name and/or date of an event",
				ArgsUsage: "<index>",
				Action:    updateCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "New name"},
					&cli.StringFlag{Name: "date", Usage: "New date"},
				},
			},
			{
				Name:      "complete",
				Usage:     "Mark event as done, moving it to completed events",
				ArgsUsage: "<index>",
				Action:    completeCommand,
			},
			{
				Name:      "delete",
				Usage:     "Permanently delete a completed event",
				ArgsUsage: "<index>",
				Action:    deleteCommand,
			},
			{
				Name:   "clear",
				Usage:  "Delete all completed events",
				Action: clearCommand,
			},
			{
				Name:      "reorder",
				Usage:     "Move event from one position to another",
				ArgsUsage: "<from> <to>",
				Action:    reorderCommand,
			},
			{
				Name:   "export-ics",
				Usage:  "Export events as iCalendar",
				Action: exportICSCommand,
				Flags: []cli.Flag{
					completedFlag(),
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Output file, stdout if not given",
					},
				},
			},
			{
				Name:   "cat",
				Usage:  "Show raw content of a store file",
				Action: catCommand,
				Flags:  []cli.Flag{completedFlag()},
			},
			{
				Name:   "dump",
				Usage:  "Dump decoded events for debugging",
				Action: dumpCommand,
				Flags:  []cli.Flag{completedFlag()},
			},
			{
				Name:      "diff",
				Usage:     "Show difference between events in two store files",
				ArgsUsage: "<file1> <file2>",
				Action:    diffCommand,
			},
			{
				Name:   "history",
				Usage:  "Show today's log of store changes",
				Action: historyCommand,
			},
		},
	}
}

func completedFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "completed",
		Usage: "Use completed events instead of scheduled",
	}
}

// setup loads config and initializes logging
func setup(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("loading config '%s' failed: %w", c.String("config"), err)
	}
	if dir := c.String("data-dir"); dir != "" {
		cfg.DataDir = dir
	}
	if c.Bool("verbose") {
		cfg.Verbose = true
	}
	log.Verbose = cfg.Verbose
	if cfg.LogDir != "" {
		log.Init(&log.Config{Dir: cfg.LogDir})
	}
	log.Verbosef("data dir: '%s', files: '%s', '%s'\n", cfg.DataDir, cfg.SchedulesFile, cfg.CompletedFile)
	c.App.Metadata = map[string]any{"config": cfg}
	return nil
}

func getConfig(c *cli.Context) *config.Config {
	return c.App.Metadata["config"].(*config.Config)
}

func openBook(c *cli.Context) (*schedule.Book, error) {
	cfg := getConfig(c)
	return schedule.Open(cfg.DataDir, cfg.SchedulesFile, cfg.CompletedFile)
}
