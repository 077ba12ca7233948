// Package config provides Viper-based configuration loading for the fight simulator.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// TransformConfig is the affine point-to-value transform for one stat.
type TransformConfig struct {
	Scale  int `mapstructure:"scale"`
	Offset int `mapstructure:"offset"`
}

// PointBuyConfig bounds how points may be invested into a fighter.
type PointBuyConfig struct {
	// Total is the exact number of points every fighter must invest.
	Total int `mapstructure:"total"`
	// Min and Max bound the points invested in any single stat.
	Min int `mapstructure:"min"`
	Max int `mapstructure:"max"`
}

// RecoveryConfig holds the knockdown recovery policy.
type RecoveryConfig struct {
	// MaxRecoveries is how many times one combatant may get back up per match.
	MaxRecoveries int `mapstructure:"max_recoveries"`
	// Chances is the percent chance to recover on the Nth knockdown; the last
	// entry applies to every later knockdown.
	Chances []int `mapstructure:"chances"`
	// ConvictionBonus adds this many percent per point of effective Conviction.
	ConvictionBonus int `mapstructure:"conviction_bonus"`
	// StackBonuses keeps every recovery's stat bonus; false replaces the previous one.
	StackBonuses bool `mapstructure:"stack_bonuses"`

	AttackPerConviction   int `mapstructure:"attack_per_conviction"`
	DefensePerConviction  int `mapstructure:"defense_per_conviction"`
	SpeedPerConviction    int `mapstructure:"speed_per_conviction"`
	AccuracyPerConviction int `mapstructure:"accuracy_per_conviction"`
	DodgePerConviction    int `mapstructure:"dodge_per_conviction"`
	HealthPerConviction   int `mapstructure:"health_per_conviction"`
}

// RulesConfig holds every combat constant. None of these are algorithm; all
// are tunable.
type RulesConfig struct {
	PointBuy PointBuyConfig             `mapstructure:"point_buy"`
	Stats    map[string]TransformConfig `mapstructure:"stats"`
	// ReadyDie is rolled by the scheduler after every action.
	ReadyDie string `mapstructure:"ready_die"`
	// HitDie is rolled against the defender's dodge.
	HitDie string `mapstructure:"hit_die"`
	// DamageDie is added to the attacker's Attack on a hit.
	DamageDie       string `mapstructure:"damage_die"`
	MinDamage       int    `mapstructure:"min_damage"`
	CritMultiplier  int    `mapstructure:"crit_multiplier"`
	CritBase        int    `mapstructure:"crit_base"`
	CritPerAccuracy int    `mapstructure:"crit_per_accuracy"`
	// MaxRollAlwaysHits makes the hit die's highest face land regardless of dodge.
	// Disabling it requires a turn cap, since two fighters may be unable to hit each other.
	MaxRollAlwaysHits bool           `mapstructure:"max_roll_always_hits"`
	MaxTurns          int            `mapstructure:"max_turns"`
	Recovery          RecoveryConfig `mapstructure:"recovery"`
}

// SimulationConfig holds batch-driver settings.
type SimulationConfig struct {
	// Repeats is how many matches are run per pairing.
	Repeats int `mapstructure:"repeats"`
	// Workers bounds concurrent matches; 0 uses GOMAXPROCS.
	Workers int `mapstructure:"workers"`
	// Seed is the parent seed; 0 draws one from crypto/rand.
	Seed uint64 `mapstructure:"seed"`
	// EnumerateStep is the point granularity used when enumerating legal fighters.
	EnumerateStep int `mapstructure:"enumerate_step"`
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
	// Output is a zap output path: "stderr", "stdout", or a file path.
	Output string `mapstructure:"output"`
}

// Config is the top-level application configuration.
type Config struct {
	Rules      RulesConfig      `mapstructure:"rules"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Database   DatabaseConfig   `mapstructure:"database"`
}

// StatNames lists the keys accepted under rules.stats, in stat order.
var StatNames = []string{"health", "attack", "defense", "speed", "accuracy", "dodge", "conviction"}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateRules(c.Rules); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSimulation(c.Simulation); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateRules(r RulesConfig) error {
	var errs []string
	pb := r.PointBuy
	if pb.Total < 1 {
		errs = append(errs, fmt.Sprintf("rules.point_buy.total must be >= 1, got %d", pb.Total))
	}
	if pb.Min < 0 || pb.Max < pb.Min {
		errs = append(errs, fmt.Sprintf("rules.point_buy requires 0 <= min <= max, got min=%d max=%d", pb.Min, pb.Max))
	}
	if pb.Min*len(StatNames) > pb.Total || pb.Max*len(StatNames) < pb.Total {
		errs = append(errs, "rules.point_buy.total is unreachable with the per-stat bounds")
	}
	for _, name := range StatNames {
		tr, ok := r.Stats[name]
		if !ok {
			errs = append(errs, fmt.Sprintf("rules.stats.%s is missing", name))
			continue
		}
		if tr.Scale < 0 {
			errs = append(errs, fmt.Sprintf("rules.stats.%s.scale must be >= 0, got %d", name, tr.Scale))
		}
	}
	for name := range r.Stats {
		if !isStatName(name) {
			errs = append(errs, fmt.Sprintf("rules.stats.%s is not a known stat", name))
		}
	}
	for key, die := range map[string]string{"ready_die": r.ReadyDie, "hit_die": r.HitDie, "damage_die": r.DamageDie} {
		if die == "" {
			errs = append(errs, fmt.Sprintf("rules.%s must not be empty", key))
		}
	}
	if r.MinDamage < 1 {
		errs = append(errs, fmt.Sprintf("rules.min_damage must be >= 1, got %d", r.MinDamage))
	}
	if r.CritMultiplier < 1 {
		errs = append(errs, fmt.Sprintf("rules.crit_multiplier must be >= 1, got %d", r.CritMultiplier))
	}
	if r.CritBase < 0 || r.CritPerAccuracy < 0 {
		errs = append(errs, "rules.crit_base and rules.crit_per_accuracy must be >= 0")
	}
	if r.MaxTurns < 0 {
		errs = append(errs, fmt.Sprintf("rules.max_turns must be >= 0, got %d", r.MaxTurns))
	}
	if !r.MaxRollAlwaysHits && r.MaxTurns == 0 {
		errs = append(errs, "rules.max_turns must be > 0 when rules.max_roll_always_hits is false")
	}
	if err := validateRecovery(r.Recovery); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateRecovery(r RecoveryConfig) error {
	var errs []string
	if r.MaxRecoveries < 0 {
		errs = append(errs, fmt.Sprintf("rules.recovery.max_recoveries must be >= 0, got %d", r.MaxRecoveries))
	}
	if r.MaxRecoveries > 0 && len(r.Chances) == 0 {
		errs = append(errs, "rules.recovery.chances must not be empty when max_recoveries > 0")
	}
	for i, c := range r.Chances {
		if c < 0 || c > 100 {
			errs = append(errs, fmt.Sprintf("rules.recovery.chances[%d] must be 0-100, got %d", i, c))
		}
	}
	if r.ConvictionBonus < 0 {
		errs = append(errs, "rules.recovery.conviction_bonus must be >= 0")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateSimulation(s SimulationConfig) error {
	var errs []string
	if s.Repeats < 1 {
		errs = append(errs, fmt.Sprintf("simulation.repeats must be >= 1, got %d", s.Repeats))
	}
	if s.Workers < 0 {
		errs = append(errs, fmt.Sprintf("simulation.workers must be >= 0, got %d", s.Workers))
	}
	if s.EnumerateStep < 1 {
		errs = append(errs, fmt.Sprintf("simulation.enumerate_step must be >= 1, got %d", s.EnumerateStep))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
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
	if d.MinConns < 0 || d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must be between 0 and database.max_conns")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
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

func isStatName(name string) bool {
	for _, n := range StatNames {
		if n == name {
			return true
		}
	}
	return false
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path uses defaults and the
// environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := NewViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// NewViper returns a Viper instance with defaults and FIGHTSIM_ environment
// overrides registered.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("FIGHTSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
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

// Default returns the configuration produced by defaults alone.
//
// Postcondition: The returned Config passes Validate.
func Default() Config {
	cfg, err := LoadFromViper(NewViper())
	if err != nil {
		panic("config: defaults do not validate: " + err.Error())
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("rules.point_buy.total", 100)
	v.SetDefault("rules.point_buy.min", 0)
	v.SetDefault("rules.point_buy.max", 50)

	statDefaults := map[string]TransformConfig{
		"health":     {Scale: 10, Offset: 50},
		"attack":     {Scale: 1},
		"defense":    {Scale: 1},
		"speed":      {Scale: 2},
		"accuracy":   {Scale: 10},
		"dodge":      {Scale: 10},
		"conviction": {Scale: 1},
	}
	for name, tr := range statDefaults {
		v.SetDefault("rules.stats."+name+".scale", tr.Scale)
		v.SetDefault("rules.stats."+name+".offset", tr.Offset)
	}

	v.SetDefault("rules.ready_die", "1d140")
	v.SetDefault("rules.hit_die", "1d1000")
	v.SetDefault("rules.damage_die", "1d20")
	v.SetDefault("rules.min_damage", 1)
	v.SetDefault("rules.crit_multiplier", 2)
	v.SetDefault("rules.crit_base", 1000)
	v.SetDefault("rules.crit_per_accuracy", 20)
	v.SetDefault("rules.max_roll_always_hits", true)
	v.SetDefault("rules.max_turns", 0)

	v.SetDefault("rules.recovery.max_recoveries", 1)
	v.SetDefault("rules.recovery.chances", []int{40, 20})
	v.SetDefault("rules.recovery.conviction_bonus", 1)
	v.SetDefault("rules.recovery.stack_bonuses", true)
	v.SetDefault("rules.recovery.attack_per_conviction", 4)
	v.SetDefault("rules.recovery.defense_per_conviction", 4)
	v.SetDefault("rules.recovery.speed_per_conviction", 4)
	v.SetDefault("rules.recovery.accuracy_per_conviction", 10)
	v.SetDefault("rules.recovery.dodge_per_conviction", 10)
	v.SetDefault("rules.recovery.health_per_conviction", 10)

	v.SetDefault("simulation.repeats", 10)
	v.SetDefault("simulation.workers", 0)
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.enumerate_step", 10)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "fightsim")
	v.SetDefault("database.password", "fightsim")
	v.SetDefault("database.name", "fightsim")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")
}
