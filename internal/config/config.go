package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"

	"dda-extractor/internal/export"
)

// Config holds the game location, the output location and export settings.
type Config struct {
	// Paths
	GameDir   string `json:"game_dir"`
	OutputDir string `json:"output_dir"`

	// Files restricts the run to these registry names. Empty means all.
	Files []string `json:"files"`

	// Export settings
	Format     string `json:"format"`
	Scale      int    `json:"scale"`
	Filter     string `json:"filter"`
	NoScene    bool   `json:"no_scene"`
	Force      bool   `json:"force"`
	ScanBudget int    `json:"scan_budget"`
	Workers    int    `json:"workers"`
	Verbose    bool   `json:"verbose"`

	// TextureWorkers bounds the concurrent texture writes of one file.
	TextureWorkers int `json:"texture_workers"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: read %s", path)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "config: parse %s", path)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	GameDir    string
	OutputDir  string
	Files      string // comma separated
	Format     string
	Scale      int
	Filter     string
	NoScene    bool
	Force      bool
	ScanBudget int
	Workers    int
	Verbose    bool

	TextureWorkers int
}

// Resolve fills in any empty fields with auto-detected defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.GameDir != "" {
		c.GameDir = flags.GameDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Files != "" {
		c.Files = splitList(flags.Files)
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.Scale > 0 {
		c.Scale = flags.Scale
	}
	if flags.Filter != "" {
		c.Filter = flags.Filter
	}
	if flags.ScanBudget > 0 {
		c.ScanBudget = flags.ScanBudget
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.TextureWorkers > 0 {
		c.TextureWorkers = flags.TextureWorkers
	}
	c.NoScene = c.NoScene || flags.NoScene
	c.Force = c.Force || flags.Force
	c.Verbose = c.Verbose || flags.Verbose

	if c.GameDir == "" {
		c.GameDir = detectGameDir()
	}

	if c.GameDir != "" {
		if c.OutputDir == "" {
			c.OutputDir = filepath.Join(c.GameDir, "EXTRACTED")
		} else if !filepath.IsAbs(c.OutputDir) {
			c.OutputDir = filepath.Join(c.GameDir, c.OutputDir)
		}
	}

	if c.Format == "" {
		c.Format = string(export.PNG)
	}
	if c.Scale <= 0 {
		c.Scale = 1
	}
	if c.Filter == "" {
		c.Filter = string(export.Nearest)
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	// CPUs left per file worker.
	if c.TextureWorkers <= 0 {
		c.TextureWorkers = max(1, runtime.NumCPU()/c.Workers)
	}
}

// TextureOptions converts the export settings, rejecting unknown format and
// filter names.
func (c *Config) TextureOptions() (export.TextureOptions, error) {
	format, err := export.ParseFormat(c.Format)
	if err != nil {
		return export.TextureOptions{}, errors.WithMessage(err, "config")
	}
	filter, err := export.ParseFilter(c.Filter)
	if err != nil {
		return export.TextureOptions{}, errors.WithMessage(err, "config")
	}
	return export.TextureOptions{
		Format:    format,
		Scale:     c.Scale,
		Filter:    filter,
		Workers:   c.TextureWorkers,
		Overwrite: c.Force,
	}, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// A game directory is recognised by its TRACKS folder.
func isGameDir(dir string) bool {
	st, err := os.Stat(filepath.Join(dir, "TRACKS"))
	return err == nil && st.IsDir()
}

func detectGameDir() string {
	// Try relative to executable
	exe, _ := os.Executable()
	if exe != "" {
		dir := filepath.Dir(exe)
		for _, base := range []string{dir, filepath.Dir(dir)} {
			if isGameDir(base) {
				return base
			}
		}
	}

	// Try current working directory and its parent
	cwd, _ := os.Getwd()
	for _, base := range []string{cwd, filepath.Dir(cwd)} {
		if isGameDir(base) {
			return base
		}
	}

	return ""
}
