// Package config provides YAML-based configuration loading and difficulty
// management for wormtrack.
package config

// Config contains all configuration for the wormtrack binary.
type Config struct {
	Sim        SimConfig        `yaml:"sim"`
	Difficulty DifficultyConfig `yaml:"difficulty"`
	Storage    StorageConfig    `yaml:"storage"`
	Log        LogConfig        `yaml:"log"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Levels     LevelsConfig     `yaml:"levels"`
	Server     ServerConfig     `yaml:"server"`
}

// SimConfig defines simulation timing parameters.
type SimConfig struct {
	TickRate    int     `yaml:"tick_rate"`     // Ticks per second
	Seed        int64   `yaml:"seed"`          // 0 = derive from time
	TimeLimitMs float64 `yaml:"time_limit_ms"` // Overrides level limits when > 0
}

// DifficultyConfig selects a preset and defines what each preset does.
type DifficultyConfig struct {
	Preset  DifficultyPreset                   `yaml:"preset"`
	Scaling map[DifficultyPreset]ScalingConfig `yaml:"scaling"`
}

// ScalingConfig defines the magnitude of difficulty changes.
type ScalingConfig struct {
	SpeedMultiplier    float64 `yaml:"speed_multiplier"`    // Applied to every worm speed
	IntervalMultiplier float64 `yaml:"interval_multiplier"` // Applied to hazard intervals and durations
	WarningMultiplier  float64 `yaml:"warning_multiplier"`  // Applied to hazard warning lead times
}

// StorageConfig defines where outcome records are kept.
type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

// LogConfig defines logger settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// MetricsConfig defines the Prometheus endpoint.
type MetricsConfig struct {
	Addr string `yaml:"addr"` // Empty disables the endpoint
}

// LevelsConfig selects the level source.
type LevelsConfig struct {
	Dir string `yaml:"dir"` // Empty = built-in pack
}

// ServerConfig defines the SSH server.
type ServerConfig struct {
	Address            string `yaml:"address"`
	HostKeyPath        string `yaml:"host_key_path"` // Empty = ~/.wormtrack/host_key
	IdleTimeoutMinutes int    `yaml:"idle_timeout_minutes"`
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// ParsePreset converts a string to a DifficultyPreset.
// Returns false for unknown names.
func ParsePreset(s string) (DifficultyPreset, bool) {
	switch p := DifficultyPreset(s); p {
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return p, true
	default:
		return DifficultyNormal, false
	}
}

// IsFixedPreset returns true if the preset leaves levels as authored.
func IsFixedPreset(preset DifficultyPreset) bool {
	return preset == DifficultyFixed
}
