package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/codalotl/editview/internal/highlight"
	"github.com/codalotl/editview/internal/logging"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix      = "EDITVIEW"
	configDirName  = ".editview"
	configFileName = "config.json"
)

// Color modes.
const (
	colorAuto   = "auto"
	colorAlways = "always"
	colorNever  = "never"
)

var colorModes = []string{colorAuto, colorAlways, colorNever}

// Config is editview's configuration.
//
// Sources, lowest to highest precedence: defaults, ~/.editview/config.json, the nearest .editview/config.json walking up from the working directory, the
// file named by --config, EDITVIEW_* environment variables (ex: EDITVIEW_MAX_WIDTH), and flags.
type Config struct {
	// Color is "auto" (color when writing to a terminal), "always", or "never".
	Color string `mapstructure:"color"`

	// MaxWidth caps rendered line width. When writing to a terminal, its width caps it further. Defaults to 120.
	MaxWidth int `mapstructure:"max_width"`

	// ContextLines is how many unchanged lines to show around each change. -1 shows all of them.
	ContextLines int `mapstructure:"context_lines"`

	// HighlightStyle is a chroma style name.
	HighlightStyle string `mapstructure:"highlight_style"`

	// SettleDelay is how long `watch` waits after the last write before re-rendering.
	SettleDelay time.Duration `mapstructure:"settle_delay"`

	// LogFile, if set, receives debug logs.
	LogFile string `mapstructure:"log_file"`
}

var configDefaults = map[string]any{
	"color":           colorAuto,
	"max_width":       120,
	"context_lines":   3,
	"highlight_style": highlight.DefaultStyle,
	"settle_delay":    "300ms",
	"log_file":        "",
}

// configSources says where loadConfig looks. Zero values mean the process defaults.
type configSources struct {
	home    string         // user home dir; "" uses os.UserHomeDir
	workDir string         // start of the nearest-config search; "" uses os.Getwd
	file    string         // explicit --config file; must exist when set
	flags   *pflag.FlagSet // flags bound to keys of the same name
}

func loadConfig(src configSources) (Config, error) {
	v := viper.New()
	for k, val := range configDefaults {
		v.SetDefault(k, val)
	}

	files, err := configFiles(src)
	if err != nil {
		return Config{}, err
	}
	for _, f := range files {
		v.SetConfigFile(f)
		if err := v.MergeInConfig(); err != nil {
			return Config{}, fmt.Errorf("load configuration: %s: %w", f, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	if err := v.BindEnv("log_file", logging.EnvLogFile); err != nil {
		return Config{}, fmt.Errorf("bind env %s: %w", logging.EnvLogFile, err)
	}

	if src.flags != nil {
		for _, key := range []string{"color", "max_width", "context_lines", "highlight_style", "settle_delay"} {
			if f := src.flags.Lookup(flagName(key)); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", f.Name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.UnmarshalExact(&cfg); err != nil {
		return Config{}, fmt.Errorf("load configuration: %w", err)
	}
	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// configFiles returns the existing config files in increasing precedence.
func configFiles(src configSources) ([]string, error) {
	var files []string

	home := src.home
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	var homeCfg string
	if home != "" {
		homeCfg = filepath.Join(home, configDirName, configFileName)
		if isFile(homeCfg) {
			files = append(files, homeCfg)
		}
	}

	workDir := src.workDir
	if workDir == "" {
		workDir, _ = os.Getwd()
	}
	if nearest := nearestConfig(workDir); nearest != "" && nearest != homeCfg {
		files = append(files, nearest)
	}

	if src.file != "" {
		if !isFile(src.file) {
			return nil, fmt.Errorf("load configuration: %s: %w", src.file, os.ErrNotExist)
		}
		files = append(files, src.file)
	}
	return files, nil
}

// nearestConfig returns the .editview/config.json closest to dir (dir itself, then its ancestors), or "".
func nearestConfig(dir string) string {
	if dir == "" {
		return ""
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, configDirName, configFileName)
		if isFile(candidate) {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func isFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

func validateConfig(cfg Config) error {
	var errs []error
	if !slices.Contains(colorModes, cfg.Color) {
		errs = append(errs, fmt.Errorf("color must be one of auto, always, never (got %q)", cfg.Color))
	}
	if cfg.MaxWidth <= 0 {
		errs = append(errs, fmt.Errorf("max_width must be > 0 (got %d)", cfg.MaxWidth))
	}
	if cfg.ContextLines < -1 {
		errs = append(errs, fmt.Errorf("context_lines must be >= -1 (got %d)", cfg.ContextLines))
	}
	if !highlight.StyleExists(cfg.HighlightStyle) {
		errs = append(errs, fmt.Errorf("highlight_style %q is not a known style", cfg.HighlightStyle))
	}
	if cfg.SettleDelay < 0 {
		errs = append(errs, fmt.Errorf("settle_delay must be >= 0 (got %s)", cfg.SettleDelay))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
}

func writeConfigJSON(w io.Writer, cfg Config) error {
	out := struct {
		Color          string `json:"color"`
		MaxWidth       int    `json:"max_width"`
		ContextLines   int    `json:"context_lines"`
		HighlightStyle string `json:"highlight_style"`
		SettleDelay    string `json:"settle_delay"`
		LogFile        string `json:"log_file"`
	}{
		Color:          cfg.Color,
		MaxWidth:       cfg.MaxWidth,
		ContextLines:   cfg.ContextLines,
		HighlightStyle: cfg.HighlightStyle,
		SettleDelay:    cfg.SettleDelay.String(),
		LogFile:        cfg.LogFile,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}
