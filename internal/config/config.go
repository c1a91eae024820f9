// Package config loads the server configuration from TOML.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

type ServerConfig struct {
	Addr          string  `toml:"addr"`
	MaxConns      int     `toml:"max_conns"`
	MaxConnsPerIP int     `toml:"max_conns_per_ip"`
	AcceptRate    float64 `toml:"accept_rate"`
	AcceptBurst   int     `toml:"accept_burst"`
}

type WorldConfig struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
	Rate   int `toml:"rate"`
}

type StoreConfig struct {
	Path            string `toml:"path"` // empty disables persistence
	BatchSize       int    `toml:"batch_size"`
	FlushIntervalMs int    `toml:"flush_interval_ms"`
}

type AdminConfig struct {
	Addr               string `toml:"addr"` // empty disables the HTTP surface
	SpectateIntervalMs int    `toml:"spectate_interval_ms"`
	PublicAddr         string `toml:"public_addr"`
}

type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

type Config struct {
	Server ServerConfig `toml:"server"`
	World  WorldConfig  `toml:"world"`
	Store  StoreConfig  `toml:"store"`
	Admin  AdminConfig  `toml:"admin"`
	Log    LogConfig    `toml:"log"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:          ":9998",
			MaxConns:      1000,
			MaxConnsPerIP: 5,
			AcceptRate:    1,
			AcceptBurst:   3,
		},
		World: WorldConfig{Width: 1000, Height: 1000, Rate: 15},
		Store: StoreConfig{Path: "starfight.db", BatchSize: 50, FlushIntervalMs: 5000},
		Admin: AdminConfig{Addr: ":8080", SpectateIntervalMs: 200, PublicAddr: "localhost:9998"},
		Log:   LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// BindFlags registers command-line overrides on fs. Call Validate after
// fs.Parse.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Server.Addr, "addr", c.Server.Addr, "game listen address")
	fs.StringVar(&c.Admin.Addr, "admin", c.Admin.Addr, "admin HTTP listen address (empty disables)")
	fs.IntVar(&c.World.Rate, "rate", c.World.Rate, "ticks per second")
	fs.StringVar(&c.Store.Path, "db", c.Store.Path, "SQLite database path (empty disables)")
	fs.StringVar(&c.Log.File, "log", c.Log.File, "log file (rotated)")
}

// Parse resolves the configuration for a command line: defaults, then the
// -config file, then the remaining flags. The result is validated.
func Parse(name string, args []string) (*Config, error) {
	probe := flag.NewFlagSet(name, flag.ContinueOnError)
	probe.SetOutput(io.Discard)
	path := probe.String("config", "", "")
	Default().BindFlags(probe)
	if err := probe.Parse(args); err != nil && !errors.Is(err, flag.ErrHelp) {
		return nil, err
	}

	cfg, err := Load(*path)
	if err != nil {
		return nil, err
	}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.String("config", *path, "TOML config file")
	cfg.BindFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// Validate rejects sizes and rates that cannot run.
func (c *Config) Validate() error {
	switch {
	case c.Server.Addr == "":
		return fmt.Errorf("%w: server.addr is empty", ErrInvalid)
	case c.Server.MaxConns <= 0 || c.Server.MaxConnsPerIP <= 0:
		return fmt.Errorf("%w: connection limits must be positive", ErrInvalid)
	case c.Server.AcceptRate <= 0 || c.Server.AcceptBurst <= 0:
		return fmt.Errorf("%w: accept rate and burst must be positive", ErrInvalid)
	case c.World.Width <= 0 || c.World.Height <= 0 || c.World.Width > math.MaxInt16 || c.World.Height > math.MaxInt16:
		return fmt.Errorf("%w: world size %dx%d", ErrInvalid, c.World.Width, c.World.Height)
	case c.World.Rate <= 0:
		return fmt.Errorf("%w: tick rate %d", ErrInvalid, c.World.Rate)
	case c.Store.BatchSize <= 0 || c.Store.FlushIntervalMs <= 0:
		return fmt.Errorf("%w: store batch size and flush interval must be positive", ErrInvalid)
	case c.Admin.SpectateIntervalMs <= 0:
		return fmt.Errorf("%w: spectate interval must be positive", ErrInvalid)
	}
	return nil
}

func (s StoreConfig) FlushInterval() time.Duration {
	return time.Duration(s.FlushIntervalMs) * time.Millisecond
}

func (a AdminConfig) SpectateInterval() time.Duration {
	return time.Duration(a.SpectateIntervalMs) * time.Millisecond
}
