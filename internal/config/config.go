package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env     string        `yaml:"env" env:"ENV" env-default:"local"`
	Watch   WatchConfig   `yaml:"watch"`
	HTTP    HTTPConfig    `yaml:"http"`
	Journal JournalConfig `yaml:"journal"`
}

type WatchConfig struct {
	Roots           []string      `yaml:"roots" env:"WATCH_ROOTS" env-separator:":"`
	Debounce        time.Duration `yaml:"debounce" env:"WATCH_DEBOUNCE" env-default:"500ms"`
	Recursive       bool          `yaml:"recursive" env:"WATCH_RECURSIVE" env-default:"true"`
	MaxDepth        int           `yaml:"max_depth" env:"WATCH_MAX_DEPTH" env-default:"-1"`
	FollowSymlinks  bool          `yaml:"follow_symlinks" env:"WATCH_FOLLOW_SYMLINKS"`
	IncludeHidden   bool          `yaml:"include_hidden" env:"WATCH_INCLUDE_HIDDEN"`
	ExcludePatterns []string      `yaml:"exclude_patterns" env:"WATCH_EXCLUDE" env-separator:","`
	Extensions      []string      `yaml:"extensions" env:"WATCH_EXTENSIONS" env-separator:","`
	IgnorePatterns  []string      `yaml:"ignore_patterns" env:"WATCH_IGNORE" env-separator:","`
	Transforms      []Transform   `yaml:"transforms"`
}

// Transform declares a predicted-output rule: files matching Pattern
// are expected to produce Output (template placeholders {name},
// {ext}, {timestamp}, {date}).
type Transform struct {
	Pattern string `yaml:"pattern"`
	Output  string `yaml:"output"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr" env:"HTTP_ADDR" env-default:":8090"`
}

type JournalConfig struct {
	Path      string        `yaml:"path" env:"JOURNAL_PATH" env-default:"fswatcher.db"`
	Retention time.Duration `yaml:"retention" env:"JOURNAL_RETENTION" env-default:"168h"`
}

func MustLoad() *Config {
	configPath := fetchConfigPath()
	if configPath == "" {
		panic("config path is empty")
	}

	return MustLoadConfig(configPath)
}

func MustLoadConfig(configPath string) *Config {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	return &cfg
}

// Priority: flag > env > default.
// default value is empty string.
func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}
	return res
}
