package config

import (
	"slices"

	"github.com/vovakirdan/wormtrack/internal/sim"
)

// Minimum values after scaling so a preset cannot make a level unplayable.
const (
	minSpeed    = 1.0  // units per second
	minInterval = 50.0 // ms
)

// ScalingFor returns the scaling for the configured preset.
// Fixed and unknown presets scale by 1.
func (d DifficultyConfig) ScalingFor() ScalingConfig {
	identity := ScalingConfig{SpeedMultiplier: 1, IntervalMultiplier: 1, WarningMultiplier: 1}
	if IsFixedPreset(d.Preset) {
		return identity
	}
	s, ok := d.Scaling[d.Preset]
	if !ok {
		return identity
	}
	if s.SpeedMultiplier <= 0 {
		s.SpeedMultiplier = 1
	}
	if s.IntervalMultiplier <= 0 {
		s.IntervalMultiplier = 1
	}
	if s.WarningMultiplier <= 0 {
		s.WarningMultiplier = 1
	}
	return s
}

// ApplyDifficulty returns a copy of def with worm speeds and hazard timings
// scaled by the configured preset. The input is not modified.
//
// Warning leads are capped at the scaled interval so a hazard still warns
// after it appears.
func ApplyDifficulty(def sim.Definition, cfg DifficultyConfig) sim.Definition {
	s := cfg.ScalingFor()

	out := def
	out.Agents = slices.Clone(def.Agents)
	out.Hazards = make([]sim.HazardSpec, len(def.Hazards))
	for i, h := range def.Hazards {
		h.Pool = slices.Clone(h.Pool)
		out.Hazards[i] = h
	}
	if s == (ScalingConfig{SpeedMultiplier: 1, IntervalMultiplier: 1, WarningMultiplier: 1}) {
		return out
	}

	for i := range out.Agents {
		out.Agents[i].Speed = max(minSpeed, out.Agents[i].Speed*s.SpeedMultiplier)
	}
	for i := range out.Hazards {
		h := &out.Hazards[i]
		if h.IntervalMs > 0 {
			h.IntervalMs = max(minInterval, h.IntervalMs*s.IntervalMultiplier)
		}
		if h.ActiveMs > 0 {
			h.ActiveMs = max(minInterval, h.ActiveMs*s.IntervalMultiplier)
		}
		h.InitialDelayMs *= s.IntervalMultiplier
		h.WarningLeadMs *= s.WarningMultiplier
		if h.IntervalMs > 0 && h.WarningLeadMs > h.IntervalMs {
			h.WarningLeadMs = h.IntervalMs
		}
	}
	return out
}

// ApplySim applies simulation-wide overrides to def.
func ApplySim(def sim.Definition, cfg SimConfig) sim.Definition {
	if cfg.TimeLimitMs > 0 {
		def.TimeLimitMs = cfg.TimeLimitMs
	}
	return def
}
