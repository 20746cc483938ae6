package main

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/wormtrack/internal/config"
	"github.com/vovakirdan/wormtrack/internal/sim"
	"github.com/vovakirdan/wormtrack/internal/telemetry"
)

// replayScript is the YAML file read by the replay command.
type replayScript struct {
	Seed    *int64             `yaml:"seed"` // overrides --seed when set
	Actions []sim.PlayerAction `yaml:"actions"`
}

type replayOptions struct {
	script     string
	dtMs       float64
	maxMs      float64
	save       bool
	showEvents bool
}

func newReplayCmd(a *app) *cobra.Command {
	var opts replayOptions

	cmd := &cobra.Command{
		Use:   "replay <level>",
		Short: "Run a scripted replay of a level",
		Long: `Run a level headlessly with a script of timed player actions and
print the outcome. The same level, seed, difficulty and script always
produce the same outcome.

Script format:
  seed: 7                                # optional, overrides --seed
  actions:
    - {at_ms: 4500, kind: switch, node: J}
    - {at_ms: 9000, kind: reset}

Each action is applied before the first tick starting at or after
at_ms. Times count from the start of the replay, across resets.

Examples:
  wormtrack replay first-fork --script ./first-fork.yaml
  wormtrack replay blockade --script ./b.yaml --difficulty hard --events
  wormtrack replay rush-hour --script ./r.yaml --save`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.runReplay(args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.script, "script", "", "Path to the replay script YAML")
	cmd.Flags().Float64Var(&opts.dtMs, "dt", 0, "Tick length in ms (default: 1000 / fps)")
	cmd.Flags().Float64Var(&opts.maxMs, "max", 10*60*1000, "Give up after this many simulated ms")
	cmd.Flags().BoolVar(&opts.save, "save", false, "Save the outcome to the results database")
	cmd.Flags().BoolVar(&opts.showEvents, "events", false, "Print every simulation event")
	//nolint:errcheck // flag is defined above
	cmd.MarkFlagRequired("script")

	return cmd
}

// loadScript reads and checks a replay script. Actions are sorted by time;
// equal times keep file order.
func loadScript(path string) (replayScript, error) {
	var script replayScript

	data, err := os.ReadFile(path)
	if err != nil {
		return script, fmt.Errorf("reading script: %w", err)
	}
	if err := yaml.Unmarshal(data, &script); err != nil {
		return script, fmt.Errorf("parsing script %s: %w", path, err)
	}

	for i, act := range script.Actions {
		switch act.Kind {
		case sim.ActionSwitch:
			if act.Node == "" {
				return script, fmt.Errorf("script action %d: switch needs a node", i+1)
			}
		case sim.ActionReset:
		default:
			return script, fmt.Errorf("script action %d: unknown kind %q", i+1, act.Kind)
		}
		if act.AtMs < 0 {
			return script, fmt.Errorf("script action %d: negative at_ms", i+1)
		}
	}
	slices.SortStableFunc(script.Actions, func(x, y sim.PlayerAction) int {
		return cmp.Compare(x.AtMs, y.AtMs)
	})
	return script, nil
}

func (a *app) runReplay(levelID string, opts replayOptions) error {
	lvl, err := a.loadLevel(levelID)
	if err != nil {
		return err
	}
	script, err := loadScript(opts.script)
	if err != nil {
		return err
	}

	seed := a.cfg.Sim.Seed
	if script.Seed != nil {
		seed = *script.Seed
	}
	dtMs := opts.dtMs
	if dtMs <= 0 {
		dtMs = 1000 / float64(a.cfg.Sim.TickRate)
	}

	var record *sim.OutcomeRecord
	sink := sim.ResultSinkFunc(func(rec sim.OutcomeRecord) {
		record = &rec
	})

	def := config.ApplySim(config.ApplyDifficulty(lvl.Definition, a.cfg.Difficulty), a.cfg.Sim)
	s, err := sim.New(def,
		sim.WithSeed(seed),
		sim.WithLogger(a.logger),
		sim.WithResultSink(sink),
	)
	if err != nil {
		return fmt.Errorf("building level %s: %w", lvl.ID, err)
	}

	events := sim.NewEventLog(s.Bus())
	defer telemetry.LogEvents(a.logger, s.Bus())()

	result, runErr := s.Run(script.Actions, dtMs, opts.maxMs)
	if errors.Is(runErr, sim.ErrNotDecided) {
		return fmt.Errorf("no outcome after %.0fms of simulated time", opts.maxMs)
	}

	fmt.Fprintf(a.out, "Replay - %s (seed %d, preset %s, dt %.1fms)\n", lvl.Name, seed, a.cfg.Difficulty.Preset, dtMs)
	fmt.Fprintln(a.out)

	if opts.showEvents {
		for _, env := range events.Entries() {
			fmt.Fprintf(a.out, "  %8.1fms  %T %+v\n", env.AtMs, env.Event, env.Event)
		}
		fmt.Fprintln(a.out)
	}

	if record == nil {
		// Only a tick-time configuration error stops a run without a record.
		return runErr
	}
	if runErr != nil {
		result, _ = s.Outcome()
	}
	a.printRecord(result, *record, s.Snapshot(), events.Len())

	if opts.save {
		store, err := a.openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		id, err := store.SaveOutcome(*record)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Saved as result #%d\n", id)
	}

	return runErr
}

func (a *app) printRecord(result sim.Result, rec sim.OutcomeRecord, snapshot uint64, events int) {
	outcome := "win"
	if !result.Success {
		outcome = fmt.Sprintf("loss (%s)", result.Reason)
		if result.Agent != "" {
			outcome += fmt.Sprintf(", worm %s", result.Agent)
		}
		if result.Hazard != "" {
			outcome += fmt.Sprintf(", hazard %s", result.Hazard)
		}
	}
	b := rec.Breakdown
	tier := rec.Tier
	if !rec.Success {
		tier = 0
	}

	fmt.Fprintf(a.out, "  Result:    %s at %.0fms\n", outcome, result.AtMs)
	fmt.Fprintf(a.out, "  Arrived:   %d/%d\n", rec.Arrived, rec.Required)
	fmt.Fprintf(a.out, "  Score:     %d  (planning %d, accuracy %d, efficiency %d)  tier %s\n",
		rec.Score, b.Planning, b.Accuracy, b.Efficiency, stars(tier))
	fmt.Fprintf(a.out, "  Counters:  %d player / %d hazard switches, %d resets, %d mistakes\n",
		rec.Counters.PlayerSwitches, rec.Counters.HazardSwitches, rec.Counters.Resets, rec.Counters.Mistakes)
	fmt.Fprintf(a.out, "  Events:    %d\n", events)
	fmt.Fprintf(a.out, "  Snapshot:  %016x\n", snapshot)
	fmt.Fprintln(a.out)
}
