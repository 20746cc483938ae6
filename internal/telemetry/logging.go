package telemetry

import (
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/wormtrack/internal/sim"
)

// LogEvents mirrors every bus event to logger at Debug level, except the
// outcome which is logged at Info. It returns the unsubscribe function.
func LogEvents(logger *log.Logger, bus *sim.Bus) (unsubscribe func()) {
	return bus.Subscribe(func(env sim.Envelope) {
		at := "at_ms"
		switch ev := env.Event.(type) {
		case sim.RoutingChanged:
			logger.Debug("routing changed", at, env.AtMs, "node", ev.Node, "prev", ev.Prev, "next", ev.Next, "cause", ev.Cause, "hazard", ev.Hazard)
		case sim.HazardWarning:
			logger.Debug("hazard warning", at, env.AtMs, "hazard", ev.Hazard, "kind", ev.Kind, "target", ev.Target, "in_ms", ev.InMs)
		case sim.HazardActivated:
			logger.Debug("blocker active", at, env.AtMs, "hazard", ev.Hazard, "target", ev.Target, "appearance", ev.Appearance)
		case sim.HazardDeactivated:
			logger.Debug("blocker cleared", at, env.AtMs, "hazard", ev.Hazard, "target", ev.Target, "sleeping", ev.Sleeping)
		case sim.ObstacleSpawned:
			logger.Debug("obstacle spawned", at, env.AtMs, "hazard", ev.Hazard, "node", ev.Node)
		case sim.AgentStateChanged:
			logger.Debug("worm state", at, env.AtMs, "worm", ev.Agent, "from", ev.From, "to", ev.To, "node", ev.Node, "edge", ev.Edge)
		case sim.MistakeMade:
			logger.Debug("worm jammed", at, env.AtMs, "worm", ev.Agent, "node", ev.Node, "edge", ev.Edge)
		case sim.LevelReset:
			logger.Debug("level reset", "resets", ev.Resets)
		case sim.OutcomeDecided:
			rec := ev.Record
			logger.Info("run decided",
				"level", rec.LevelID,
				"success", rec.Success,
				"reason", rec.Reason,
				"score", rec.Score,
				"tier", rec.Tier,
				"elapsed_ms", rec.ElapsedMs,
			)
		}
	})
}
