package config

import (
	_ "embed"
)

//go:embed defaults/wormtrack.yaml
var defaultYAML []byte

// Default returns the built-in configuration. It matches the embedded
// defaults/wormtrack.yaml.
func Default() Config {
	return Config{
		Sim: SimConfig{
			TickRate: 60,
		},
		Difficulty: DifficultyConfig{
			Preset:  DifficultyNormal,
			Scaling: DefaultScaling(),
		},
		Storage: StorageConfig{
			DBPath: "~/.wormtrack/results.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Address:            ":23234",
			IdleTimeoutMinutes: 30,
		},
	}
}

// DefaultScaling returns the built-in difficulty presets.
func DefaultScaling() map[DifficultyPreset]ScalingConfig {
	return map[DifficultyPreset]ScalingConfig{
		DifficultyEasy: {
			SpeedMultiplier:    0.8,
			IntervalMultiplier: 1.4,
			WarningMultiplier:  1.5,
		},
		DifficultyNormal: {
			SpeedMultiplier:    1.0,
			IntervalMultiplier: 1.0,
			WarningMultiplier:  1.0,
		},
		DifficultyHard: {
			SpeedMultiplier:    1.25,
			IntervalMultiplier: 0.75,
			WarningMultiplier:  0.6,
		},
	}
}
