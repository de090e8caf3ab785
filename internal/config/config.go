// Package config provides Viper-based configuration loading for the
// simulation server.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// SimConfig holds the tick driver and grid settings.
type SimConfig struct {
	// GridWidth and GridHeight are the map dimensions in tiles.
	GridWidth  int `mapstructure:"grid_width"`
	GridHeight int `mapstructure:"grid_height"`
	// TileWidth and TileHeight are the isometric projection metrics in
	// world units.
	TileWidth  float64 `mapstructure:"tile_width"`
	TileHeight float64 `mapstructure:"tile_height"`
	// TickInterval is the fixed simulation step duration.
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// Seed seeds the deterministic random source; 0 seeds from the clock.
	Seed int64 `mapstructure:"seed"`
	// AutosaveInterval is how often the running world is snapshotted to
	// storage; 0 disables autosave.
	AutosaveInterval time.Duration `mapstructure:"autosave_interval"`
	// Tuning holds the behavioral constants.
	Tuning TuningConfig `mapstructure:"tuning"`
}

// TuningConfig holds the unit behavior constants.
type TuningConfig struct {
	// RerouteThreshold is how far a pursued target may drift, in tiles,
	// before a mover replans.
	RerouteThreshold int `mapstructure:"reroute_threshold"`
	// AIStrideBase and AIStrideSpread derive per-unit decision strides.
	AIStrideBase   int `mapstructure:"ai_stride_base"`
	AIStrideSpread int `mapstructure:"ai_stride_spread"`
	// StatCap is the hard ceiling for every stat.
	StatCap int `mapstructure:"stat_cap"`
	// TaxRatePercent is the share of kill gold set aside as tax.
	TaxRatePercent int `mapstructure:"tax_rate_percent"`
	// DeathTicks is the death presentation duration in ticks.
	DeathTicks int `mapstructure:"death_ticks"`
	// WanderRadius bounds idle wandering in tiles.
	WanderRadius int `mapstructure:"wander_radius"`
}

// ContentConfig holds the static table locations.
type ContentConfig struct {
	// UnitsDir holds the unit type YAML files.
	UnitsDir string `mapstructure:"units_dir"`
	// BuildingsDir holds the building type YAML files.
	BuildingsDir string `mapstructure:"buildings_dir"`
	// EquipmentPath is the equipment tier table YAML file.
	EquipmentPath string `mapstructure:"equipment_path"`
}

// ScriptingConfig holds the Lua hook settings.
type ScriptingConfig struct {
	// Enabled toggles the Lua hook layer entirely.
	Enabled bool `mapstructure:"enabled"`
	// Dir holds the hook scripts loaded at startup.
	Dir string `mapstructure:"dir"`
	// InstructionLimit bounds a single hook invocation.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	Sim       SimConfig       `mapstructure:"sim"`
	Content   ContentConfig   `mapstructure:"content"`
	Scripting ScriptingConfig `mapstructure:"scripting"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error
// describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateSim(c.Sim); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateScripting(c.Scripting); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSim(s SimConfig) error {
	var errs []string
	if s.GridWidth < 1 || s.GridHeight < 1 {
		errs = append(errs, fmt.Sprintf("sim.grid_width/sim.grid_height must be >= 1, got %dx%d", s.GridWidth, s.GridHeight))
	}
	if s.TileWidth <= 0 || s.TileHeight <= 0 {
		errs = append(errs, fmt.Sprintf("sim.tile_width/sim.tile_height must be > 0, got %vx%v", s.TileWidth, s.TileHeight))
	}
	if s.TickInterval <= 0 {
		errs = append(errs, fmt.Sprintf("sim.tick_interval must be > 0, got %s", s.TickInterval))
	}
	if s.AutosaveInterval < 0 {
		errs = append(errs, "sim.autosave_interval must not be negative")
	}
	if s.Tuning.RerouteThreshold < 1 {
		errs = append(errs, fmt.Sprintf("sim.tuning.reroute_threshold must be >= 1, got %d", s.Tuning.RerouteThreshold))
	}
	if s.Tuning.AIStrideBase < 1 || s.Tuning.AIStrideSpread < 1 {
		errs = append(errs, fmt.Sprintf("sim.tuning.ai_stride_base/spread must be >= 1, got %d/%d", s.Tuning.AIStrideBase, s.Tuning.AIStrideSpread))
	}
	if s.Tuning.StatCap < 1 {
		errs = append(errs, fmt.Sprintf("sim.tuning.stat_cap must be >= 1, got %d", s.Tuning.StatCap))
	}
	if s.Tuning.TaxRatePercent < 0 || s.Tuning.TaxRatePercent > 100 {
		errs = append(errs, fmt.Sprintf("sim.tuning.tax_rate_percent must be 0-100, got %d", s.Tuning.TaxRatePercent))
	}
	if s.Tuning.DeathTicks < 0 {
		errs = append(errs, "sim.tuning.death_ticks must not be negative")
	}
	if s.Tuning.WanderRadius < 0 {
		errs = append(errs, "sim.tuning.wander_radius must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateContent(c ContentConfig) error {
	var errs []string
	if c.UnitsDir == "" {
		errs = append(errs, "content.units_dir must not be empty")
	}
	if c.BuildingsDir == "" {
		errs = append(errs, "content.buildings_dir must not be empty")
	}
	if c.EquipmentPath == "" {
		errs = append(errs, "content.equipment_path must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateScripting(s ScriptingConfig) error {
	var errs []string
	if s.Enabled && s.Dir == "" {
		errs = append(errs, "scripting.dir must not be empty when scripting is enabled")
	}
	if s.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("scripting.instruction_limit must be >= 0, got %d", s.InstructionLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment
// variable overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with SKIRMISH_ prefix
	v.SetEnvPrefix("SKIRMISH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sim.grid_width", 64)
	v.SetDefault("sim.grid_height", 64)
	v.SetDefault("sim.tile_width", 64.0)
	v.SetDefault("sim.tile_height", 32.0)
	v.SetDefault("sim.tick_interval", "40ms")
	v.SetDefault("sim.seed", 0)
	v.SetDefault("sim.autosave_interval", "2m")

	v.SetDefault("sim.tuning.reroute_threshold", 2)
	v.SetDefault("sim.tuning.ai_stride_base", 5)
	v.SetDefault("sim.tuning.ai_stride_spread", 6)
	v.SetDefault("sim.tuning.stat_cap", 100)
	v.SetDefault("sim.tuning.tax_rate_percent", 10)
	v.SetDefault("sim.tuning.death_ticks", 25)
	v.SetDefault("sim.tuning.wander_radius", 2)

	v.SetDefault("content.units_dir", "content/units")
	v.SetDefault("content.buildings_dir", "content/buildings")
	v.SetDefault("content.equipment_path", "content/equipment.yaml")

	v.SetDefault("scripting.enabled", true)
	v.SetDefault("scripting.dir", "content/scripts")
	v.SetDefault("scripting.instruction_limit", 1000000)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "skirmish")
	v.SetDefault("database.password", "skirmish")
	v.SetDefault("database.name", "skirmish")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
