package core

// RuntimeConfig contains configuration passed to a game at initialization.
// Games use this to adapt to screen size and for deterministic simulation.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Simulation ticks per second (default 60)
	Seed     int64 // RNG seed for deterministic gameplay
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
		Seed:     0, // 0 means use current time in platform layer
	}
}

// TickMs returns the simulated milliseconds covered by one tick.
func (c RuntimeConfig) TickMs() float64 {
	rate := c.TickRate
	if rate <= 0 {
		rate = 60
	}
	return 1000 / float64(rate)
}

// GameState represents the current state of a game.
// Returned by Game.State() to communicate status to the platform.
type GameState struct {
	Score    int    // Current or final score
	Tier     int    // Star tier once the run is won, 0 otherwise
	GameOver bool   // Whether the run has been decided
	Won      bool   // Whether the decided run was a win
	Paused   bool   // Whether the game is paused
	Message  string // Short status line, e.g. the loss reason
}

// StepResult is returned by Game.Step() after each simulation tick.
type StepResult struct {
	State GameState
}

// Game is the contract between a playable game and the platform layer.
// The platform owns timing and input; the game owns its simulation.
type Game interface {
	// ID returns a stable identifier used for storage keys.
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// Reset initializes or restarts the game.
	Reset(cfg RuntimeConfig)

	// Step advances the game by one fixed tick.
	Step(in InputFrame) StepResult

	// Render draws the current state into dst. The screen is pre-cleared.
	Render(dst *Screen)

	// State returns the current game state.
	State() GameState
}
