// Package telemetry turns simulation events into Prometheus metrics and log
// lines. It only consumes the event bus; nothing in sim depends on it.
package telemetry

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vovakirdan/wormtrack/internal/sim"
)

// Collector exposes gameplay metrics. One collector may be attached to many
// simulations at once; each bus delivers on its own goroutine and the
// underlying Prometheus metrics are safe for concurrent use.
type Collector struct {
	gatherer prometheus.Gatherer

	Switches      *prometheus.CounterVec
	Warnings      *prometheus.CounterVec
	Activations   prometheus.Counter
	Obstacles     prometheus.Counter
	Mistakes      prometheus.Counter
	Resets        prometheus.Counter
	Outcomes      *prometheus.CounterVec
	Scores        prometheus.Histogram
	ActiveRuns    prometheus.Gauge
	AgentArrivals prometheus.Counter
}

// NewCollector registers wormtrack metrics against the provided registerer.
// A nil registerer uses the Prometheus default.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{gatherer: gatherer}
	var err error

	if c.Switches, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wormtrack_routing_switches_total",
		Help: "Routing changes at branch nodes, by cause.",
	}, []string{"cause"}), "wormtrack_routing_switches_total"); err != nil {
		return nil, err
	}
	if c.Warnings, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wormtrack_hazard_warnings_total",
		Help: "Hazard warnings issued, by hazard kind.",
	}, []string{"kind"}), "wormtrack_hazard_warnings_total"); err != nil {
		return nil, err
	}
	if c.Activations, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wormtrack_blocker_activations_total",
		Help: "Intermittent blocker activations.",
	}), "wormtrack_blocker_activations_total"); err != nil {
		return nil, err
	}
	if c.Obstacles, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wormtrack_obstacles_spawned_total",
		Help: "Obstacles placed by one-shot hazards.",
	}), "wormtrack_obstacles_spawned_total"); err != nil {
		return nil, err
	}
	if c.Mistakes, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wormtrack_mistakes_total",
		Help: "Worms jammed on width-incompatible edges.",
	}), "wormtrack_mistakes_total"); err != nil {
		return nil, err
	}
	if c.Resets, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wormtrack_level_resets_total",
		Help: "Level restarts.",
	}), "wormtrack_level_resets_total"); err != nil {
		return nil, err
	}
	if c.AgentArrivals, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wormtrack_worm_arrivals_total",
		Help: "Worms that reached a matching goal.",
	}), "wormtrack_worm_arrivals_total"); err != nil {
		return nil, err
	}
	if c.Outcomes, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wormtrack_outcomes_total",
		Help: "Decided runs, by level, result and loss reason.",
	}, []string{"level", "result", "reason"}), "wormtrack_outcomes_total"); err != nil {
		return nil, err
	}
	if c.Scores, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "wormtrack_run_score",
		Help:    "Total score of decided runs.",
		Buckets: []float64{10, 25, 40, 55, 70, 80, 90, 95, 100},
	}), "wormtrack_run_score"); err != nil {
		return nil, err
	}
	if c.ActiveRuns, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wormtrack_active_runs",
		Help: "Simulations currently attached to the collector and undecided.",
	}), "wormtrack_active_runs"); err != nil {
		return nil, err
	}

	return c, nil
}

// register adds a collector to reg, reusing an existing one of the same type.
func register[T prometheus.Collector](reg prometheus.Registerer, c T, name string) (T, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("telemetry: collector %s already registered with incompatible type", name)
		}
		var zero T
		return zero, fmt.Errorf("telemetry: registering %s: %w", name, err)
	}
	return c, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *Collector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// Handler serves the collector's metrics in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	gatherer := c.Gatherer()
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Attach subscribes the collector to a simulation bus. The run counts as
// active until its outcome is decided or the returned detach is called.
func (c *Collector) Attach(bus *sim.Bus) (detach func()) {
	if c == nil {
		return func() {}
	}
	active := true
	c.ActiveRuns.Inc()
	unsubscribe := bus.Subscribe(func(env sim.Envelope) {
		switch env.Event.(type) {
		case sim.LevelReset:
			if !active {
				active = true
				c.ActiveRuns.Inc()
			}
		case sim.OutcomeDecided:
			if active {
				active = false
				c.ActiveRuns.Dec()
			}
		}
		c.observe(env.Event)
	})
	return func() {
		unsubscribe()
		if active {
			active = false
			c.ActiveRuns.Dec()
		}
	}
}

func (c *Collector) observe(event sim.Event) {
	switch ev := event.(type) {
	case sim.RoutingChanged:
		c.Switches.WithLabelValues(ev.Cause.String()).Inc()
	case sim.HazardWarning:
		c.Warnings.WithLabelValues(ev.Kind.String()).Inc()
	case sim.HazardActivated:
		c.Activations.Inc()
	case sim.ObstacleSpawned:
		c.Obstacles.Inc()
	case sim.MistakeMade:
		c.Mistakes.Inc()
	case sim.LevelReset:
		c.Resets.Inc()
	case sim.AgentStateChanged:
		if ev.To == sim.AgentArrived {
			c.AgentArrivals.Inc()
		}
	case sim.OutcomeDecided:
		result, reason := "loss", string(ev.Record.Reason)
		if ev.Record.Success {
			result, reason = "win", "none"
		}
		c.Outcomes.WithLabelValues(ev.Record.LevelID, result, reason).Inc()
		c.Scores.Observe(float64(ev.Record.Score))
	}
}
