package sim

// Reason explains a lost run.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonWrongGoal       Reason = "wrong-goal"
	ReasonHazardCollision Reason = "hazard-collision"
	ReasonDeadEnd         Reason = "dead-end"
	ReasonTimeout         Reason = "timeout"
)

// Result is the terminal decision of a run.
type Result struct {
	Success bool
	Reason  Reason
	AtMs    float64
	Agent   AgentID  // worm that caused a loss, empty on a win or timeout
	Hazard  HazardID // hazard involved in a collision
}

// OutcomeRecord is the final record handed to the result sink and published
// on the bus once per run.
type OutcomeRecord struct {
	LevelID   string
	Seed      int64
	Success   bool
	Reason    Reason
	Score     int
	Tier      int
	Breakdown Score
	Counters  Counters
	Arrived   int
	Required  int
	ElapsedMs float64
}

// ResultSink receives the outcome record of every decided run.
type ResultSink interface {
	RecordOutcome(OutcomeRecord)
}

// ResultSinkFunc adapts a function to ResultSink.
type ResultSinkFunc func(OutcomeRecord)

// RecordOutcome calls f(rec).
func (f ResultSinkFunc) RecordOutcome(rec OutcomeRecord) {
	f(rec)
}

// Outcome is the single writer of the run decision. It decides at most once:
// a win when enough worms arrive, a loss on the first reported failure.
type Outcome struct {
	levelID  string
	seed     int64
	required int
	arrived  int
	decided  bool
	result   Result
	scorer   *Scorer
	bus      *Bus
	sink     ResultSink
}

// NewOutcome creates a resolver that wins once required worms arrive. A
// required count of zero or less never wins by arrivals.
func NewOutcome(levelID string, seed int64, required int, scorer *Scorer, bus *Bus, sink ResultSink) *Outcome {
	return &Outcome{
		levelID:  levelID,
		seed:     seed,
		required: required,
		scorer:   scorer,
		bus:      bus,
		sink:     sink,
	}
}

// ReportArrival counts an arrived worm and decides a win once the required
// count is reached.
func (o *Outcome) ReportArrival(agent AgentID, atMs float64) {
	if o.decided {
		return
	}
	o.arrived++
	if o.required > 0 && o.arrived >= o.required {
		o.decide(Result{Success: true, AtMs: atMs}, atMs)
	}
}

// ReportFailure irrevocably decides a loss with reason.
func (o *Outcome) ReportFailure(reason Reason, agent AgentID, hazard HazardID, atMs float64) {
	if o.decided {
		return
	}
	o.decide(Result{Reason: reason, AtMs: atMs, Agent: agent, Hazard: hazard}, atMs)
}

func (o *Outcome) decide(r Result, atMs float64) {
	o.decided = true
	o.result = r

	var counters Counters
	if o.scorer != nil {
		counters = o.scorer.Counters()
	}
	score := CalculateScore(counters)
	rec := OutcomeRecord{
		LevelID:   o.levelID,
		Seed:      o.seed,
		Success:   r.Success,
		Reason:    r.Reason,
		Score:     score.Total,
		Tier:      score.Tier,
		Breakdown: score,
		Counters:  counters,
		Arrived:   o.arrived,
		Required:  o.required,
		ElapsedMs: atMs,
	}
	if o.bus != nil {
		o.bus.Publish(OutcomeDecided{Record: rec})
	}
	if o.sink != nil {
		o.sink.RecordOutcome(rec)
	}
}

// Decided reports whether the run has ended.
func (o *Outcome) Decided() bool {
	return o.decided
}

// Result returns the decision and whether one has been made.
func (o *Outcome) Result() (Result, bool) {
	return o.result, o.decided
}

// Arrived returns the number of worms that reached a matching goal.
func (o *Outcome) Arrived() int {
	return o.arrived
}
