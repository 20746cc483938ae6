package sim

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCalculateScore(t *testing.T) {
	tests := []struct {
		name string
		in   Counters
		want Score
	}{
		{
			name: "flawless",
			want: Score{Planning: 100, Accuracy: 100, Efficiency: 100, Total: 100, Tier: 3},
		},
		{
			name: "hazard switches are free",
			in:   Counters{HazardSwitches: 40},
			want: Score{Planning: 100, Accuracy: 100, Efficiency: 100, Total: 100, Tier: 3},
		},
		{
			name: "a few switches and one reset",
			in:   Counters{PlayerSwitches: 4, Resets: 1},
			want: Score{Planning: 60, Accuracy: 100, Efficiency: 100, Total: 82, Tier: 2},
		},
		{
			name: "components floor at zero",
			in:   Counters{PlayerSwitches: 30, Resets: 3, Mistakes: 9},
			want: Score{Planning: 0, Accuracy: 0, Efficiency: 100, Total: 25, Tier: 1},
		},
		{
			name: "two mistakes",
			in:   Counters{Mistakes: 2},
			want: Score{Planning: 100, Accuracy: 70, Efficiency: 100, Total: 91, Tier: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateScore(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("CalculateScore mismatch (-want +got):\n%s", diff)
			}
			if again := CalculateScore(tt.in); again != got {
				t.Errorf("CalculateScore not repeatable: %+v vs %+v", got, again)
			}
		})
	}
}

func TestScorerCountsEvents(t *testing.T) {
	bus := NewBus()
	s := NewScorer(bus)

	bus.Publish(RoutingChanged{Node: "J", Cause: CausePlayer})
	bus.Publish(RoutingChanged{Node: "J", Cause: CausePlayer})
	bus.Publish(RoutingChanged{Node: "J", Cause: CauseHazard, Hazard: "h"})
	bus.Publish(MistakeMade{Agent: "w"})
	bus.Publish(LevelReset{Resets: 1})
	bus.Publish(HazardWarning{Hazard: "h"})

	want := Counters{PlayerSwitches: 2, HazardSwitches: 1, Resets: 1, Mistakes: 1}
	if diff := cmp.Diff(want, s.Counters()); diff != "" {
		t.Errorf("Counters mismatch (-want +got):\n%s", diff)
	}
}

func TestOutcomeDecidesOnce(t *testing.T) {
	bus := NewBus()
	events := NewEventLog(bus)
	calls := 0
	o := NewOutcome("lvl", 1, 2, nil, bus, ResultSinkFunc(func(OutcomeRecord) { calls++ }))

	o.ReportArrival("a", 100)
	if o.Decided() {
		t.Fatal("Decided after 1 of 2 arrivals")
	}
	o.ReportFailure(ReasonWrongGoal, "b", "", 200)
	o.ReportArrival("c", 300)
	o.ReportFailure(ReasonHazardCollision, "d", "h", 400)

	r, ok := o.Result()
	if !ok {
		t.Fatal("Expected a decision")
	}
	want := Result{Reason: ReasonWrongGoal, AtMs: 200, Agent: "b"}
	if diff := cmp.Diff(want, r); diff != "" {
		t.Errorf("Result mismatch (-want +got):\n%s", diff)
	}
	if calls != 1 {
		t.Errorf("Expected sink called once, got %d", calls)
	}
	decided := eventsOf[OutcomeDecided](events)
	if len(decided) != 1 {
		t.Fatalf("Expected 1 OutcomeDecided, got %d", len(decided))
	}
	if rec := decided[0].Record; rec.LevelID != "lvl" || rec.Arrived != 1 || rec.Required != 2 {
		t.Errorf("Unexpected record: %+v", rec)
	}
}
