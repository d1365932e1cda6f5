package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultStoreName      = "tasks.json"
	DefaultLogName        = "agenda.log"
)

type Keymap struct {
	Quit     string `toml:"quit"`
	Add      string `toml:"add"`
	Up       string `toml:"up"`
	Down     string `toml:"down"`
	Toggle   string `toml:"toggle"`
	Delete   string `toml:"delete"`
	Search   string `toml:"search"`
	Calendar string `toml:"calendar"`
	View     string `toml:"view"`
	Today    string `toml:"today"`
	Confirm  string `toml:"confirm"`
	Cancel   string `toml:"cancel"`
	Help     string `toml:"help"`
}

type Config struct {
	StorePath       string `toml:"store_path"`
	LogPath         string `toml:"log_path"`
	DefaultCategory string `toml:"default_category"`
	WeekStart       string `toml:"week_start"`
	ToastSeconds    int    `toml:"toast_seconds"`
	Keys            Keymap `toml:"keys"`
}

// ResolveConfigPath returns the config file location, preferring the user
// config dir and falling back to the working directory.
func ResolveConfigPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "agenda", DefaultConfigFileName)
	}
	return DefaultConfigFileName
}

func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig(filepath.Dir(path))
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.StorePath == "" {
		cfg.StorePath = filepath.Join(filepath.Dir(path), DefaultStoreName)
	}
	if cfg.LogPath == "" {
		cfg.LogPath = filepath.Join(filepath.Dir(path), DefaultLogName)
	}
	if cfg.ToastSeconds <= 0 {
		cfg.ToastSeconds = 3
	}
	return cfg, nil
}

// FirstWeekday maps the configured week start onto a time.Weekday,
// defaulting to Sunday.
func (c Config) FirstWeekday() time.Weekday {
	switch strings.ToLower(strings.TrimSpace(c.WeekStart)) {
	case "monday":
		return time.Monday
	case "saturday":
		return time.Saturday
	default:
		return time.Sunday
	}
}

// ToastDuration returns how long a notification stays on screen.
func (c Config) ToastDuration() time.Duration {
	secs := c.ToastSeconds
	if secs <= 0 {
		secs = 3
	}
	return time.Duration(secs) * time.Second
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig(dir string) Config {
	return Config{
		StorePath:       filepath.Join(dir, DefaultStoreName),
		LogPath:         filepath.Join(dir, DefaultLogName),
		DefaultCategory: "work",
		WeekStart:       "sunday",
		ToastSeconds:    3,
		Keys: Keymap{
			Quit:     "q",
			Add:      "a",
			Up:       "k",
			Down:     "j",
			Toggle:   " ",
			Delete:   "d",
			Search:   "/",
			Calendar: "c",
			View:     "v",
			Today:    "t",
			Confirm:  "enter",
			Cancel:   "esc",
			Help:     "?",
		},
	}
}
