package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kjk/scheduler/atomicfile"
	"github.com/kjk/scheduler/u"
)

// Config is configuration of scheduler
type Config struct {
	// DataDir is where store files are kept
	DataDir string `yaml:"data_dir"`

	// SchedulesFile is the file name of active events, its extension
	// selects the format (.plist, .json, .yaml, .msgpack, .toon,
	// optionally followed by .gz, .zst or .br)
	SchedulesFile string `yaml:"schedules_file"`

	// CompletedFile is the file name of completed events
	CompletedFile string `yaml:"completed_file"`

	// LogDir is where daily logs are written. Empty disables file logging.
	LogDir string `yaml:"log_dir"`

	Verbose bool `yaml:"verbose"`
}

// DefaultDir returns directory for config and data files
func DefaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".scheduler"
	}
	return filepath.Join(dir, "scheduler")
}

func DefaultConfig() *Config {
	dir := DefaultDir()
	return &Config{
		DataDir:       dir,
		SchedulesFile: "schedules.plist",
		CompletedFile: "completedEvents.plist",
		LogDir:        filepath.Join(dir, "logs"),
	}
}

// Normalize fills in missing values with defaults
func (c *Config) Normalize() {
	if c.DataDir == "" {
		c.DataDir = DefaultDir()
	}
	c.DataDir = u.ExpandTildeInPath(c.DataDir)
	c.LogDir = u.ExpandTildeInPath(c.LogDir)
	if c.SchedulesFile == "" {
		c.SchedulesFile = "schedules.plist"
	}
	if c.CompletedFile == "" {
		c.CompletedFile = "completedEvents.plist"
	}
}

// Load loads configuration from YAML file at path.
// If the file doesn't exist, it's created with default config.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	d, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			// even if save fails, return cfg so caller can decide
			return cfg, Save(path, cfg)
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(d, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save writes cfg as YAML to path, atomically, with 0600 permissions
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	d, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return atomicfile.WriteFile(path, d, 0o600)
}
