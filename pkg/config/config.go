// Package config loads plantmesh settings from a TOML file.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config holds every tunable of the conversion pipeline.
type Config struct {
	Tessellate Tessellate `toml:"tessellate"`
	Instancing Instancing `toml:"instancing"`
	Connect    Connect    `toml:"connect"`
	Log        Log        `toml:"log"`
}

type Tessellate struct {
	FaceEpsilon     float64 `toml:"face_epsilon"`
	CornerTolerance float64 `toml:"corner_tolerance"`
	RadiusSlack     float64 `toml:"radius_slack"`
	Workers         int     `toml:"workers"` // 0 = GOMAXPROCS
	Preview         bool    `toml:"preview"`
	PreviewKernel   string  `toml:"preview_kernel"`   // sdfx or manifold
	PreviewCells    int     `toml:"preview_cells"`    // sdfx marching cubes resolution
	PreviewSegments int     `toml:"preview_segments"` // manifold facets per circle
}

type Instancing struct {
	Enabled   bool    `toml:"enabled"`
	Tolerance float64 `toml:"tolerance"`
	Workers   int     `toml:"workers"` // 0 = GOMAXPROCS
}

type Connect struct {
	Enabled   bool    `toml:"enabled"`
	Tolerance float64 `toml:"tolerance"`
}

type Log struct {
	Level string `toml:"level"` // debug, info, warn or error
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Tessellate: Tessellate{
			FaceEpsilon:     1e-5,
			CornerTolerance: 1e-3,
			RadiusSlack:     1.05,
			PreviewKernel:   "sdfx",
			PreviewCells:    64,
			PreviewSegments: 48,
		},
		Instancing: Instancing{Enabled: true, Tolerance: 1e-3},
		Connect:    Connect{Enabled: true, Tolerance: 1e-3},
		Log:        Log{Level: "info"},
	}
}

// Load reads path over the defaults. An empty path or a missing file
// yields the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	if err := Read(&cfg, bufio.NewReader(f)); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Read decodes TOML from r into cfg and validates the result. Keys absent
// from r keep their current values.
func Read(cfg *Config, r io.Reader) error {
	d := toml.NewDecoder(r)
	d.DisallowUnknownFields()
	if err := d.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return errors.New(strict.String())
		}
		return err
	}
	return cfg.Validate()
}

// Write encodes cfg as TOML.
func (c Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Validate reports every out-of-range setting.
func (c Config) Validate() error {
	var errs []error
	positive := func(key string, v float64) {
		if !(v > 0) {
			errs = append(errs, fmt.Errorf("%s must be positive, got %g", key, v))
		}
	}
	positive("tessellate.face_epsilon", c.Tessellate.FaceEpsilon)
	positive("tessellate.corner_tolerance", c.Tessellate.CornerTolerance)
	positive("instancing.tolerance", c.Instancing.Tolerance)
	positive("connect.tolerance", c.Connect.Tolerance)
	if !(c.Tessellate.RadiusSlack >= 1) {
		errs = append(errs, fmt.Errorf("tessellate.radius_slack must be at least 1, got %g", c.Tessellate.RadiusSlack))
	}
	if c.Tessellate.PreviewCells < 2 {
		errs = append(errs, fmt.Errorf("tessellate.preview_cells must be at least 2, got %d", c.Tessellate.PreviewCells))
	}
	if c.Tessellate.PreviewSegments < 3 {
		errs = append(errs, fmt.Errorf("tessellate.preview_segments must be at least 3, got %d", c.Tessellate.PreviewSegments))
	}
	if k := c.Tessellate.PreviewKernel; k != "sdfx" && k != "manifold" {
		errs = append(errs, fmt.Errorf("tessellate.preview_kernel must be sdfx or manifold, got %q", k))
	}
	if c.Tessellate.Workers < 0 {
		errs = append(errs, fmt.Errorf("tessellate.workers must not be negative, got %d", c.Tessellate.Workers))
	}
	if c.Instancing.Workers < 0 {
		errs = append(errs, fmt.Errorf("instancing.workers must not be negative, got %d", c.Instancing.Workers))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SlogLevel parses the configured level.
func (l Log) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
