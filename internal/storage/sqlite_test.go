package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/vovakirdan/wormtrack/internal/sim"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func record(level string, success bool, score int, elapsed float64) sim.OutcomeRecord {
	tier := 1
	switch {
	case score >= 90:
		tier = 3
	case score >= 70:
		tier = 2
	}
	rec := sim.OutcomeRecord{
		LevelID:   level,
		Seed:      7,
		Success:   success,
		Score:     score,
		Tier:      tier,
		Breakdown: sim.Score{Planning: 90, Accuracy: 85, Efficiency: 100, Total: score, Tier: tier},
		Counters:  sim.Counters{PlayerSwitches: 2, HazardSwitches: 3, Mistakes: 1},
		Arrived:   2,
		Required:  2,
		ElapsedMs: elapsed,
	}
	if !success {
		rec.Reason = sim.ReasonWrongGoal
		rec.Arrived = 1
	}
	return rec
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreSaveAndRetrieve(t *testing.T) {
	store := openTestStore(t)

	want := record("first-fork", true, 91, 6400)
	if _, err := store.SaveOutcome(want); err != nil {
		t.Fatalf("SaveOutcome() failed: %v", err)
	}
	if _, err := store.SaveOutcome(record("first-fork", false, 55, 2800)); err != nil {
		t.Fatalf("SaveOutcome() failed: %v", err)
	}
	if _, err := store.SaveOutcome(record("blockade", true, 80, 9000)); err != nil {
		t.Fatalf("SaveOutcome() failed: %v", err)
	}

	results, err := store.TopResults("first-fork", 10)
	if err != nil {
		t.Fatalf("TopResults() failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if diff := cmp.Diff(want, results[0].Record); diff != "" {
		t.Errorf("stored record mismatch (-want +got):\n%s", diff)
	}
	if results[1].Record.Reason != sim.ReasonWrongGoal || results[1].Record.Success {
		t.Errorf("Expected lost run second, got %+v", results[1].Record)
	}
	if results[0].CreatedAt.IsZero() {
		t.Error("Expected created_at to be set")
	}
}

func TestStoreSaveRejectsMissingLevel(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.SaveOutcome(sim.OutcomeRecord{}); err == nil {
		t.Error("Expected error for record without level id")
	}
}

func TestStoreTopResultsOrderAndLimit(t *testing.T) {
	store := openTestStore(t)

	// Equal scores rank the faster run first.
	store.SaveOutcome(record("lvl", true, 80, 5000))
	store.SaveOutcome(record("lvl", true, 95, 7000))
	store.SaveOutcome(record("lvl", true, 80, 3000))
	store.SaveOutcome(record("lvl", true, 60, 1000))

	results, err := store.TopResults("lvl", 3)
	if err != nil {
		t.Fatalf("TopResults() failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 results with limit, got %d", len(results))
	}

	var got [][2]float64
	for _, r := range results {
		got = append(got, [2]float64{float64(r.Record.Score), r.Record.ElapsedMs})
	}
	want := [][2]float64{{95, 7000}, {80, 3000}, {80, 5000}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreBestTier(t *testing.T) {
	store := openTestStore(t)

	tier, err := store.BestTier("lvl")
	if err != nil {
		t.Fatalf("BestTier() failed: %v", err)
	}
	if tier != 0 {
		t.Errorf("Expected tier 0 for unplayed level, got %d", tier)
	}

	// Lost runs never count, whatever their score.
	store.SaveOutcome(record("lvl", false, 95, 1000))
	store.SaveOutcome(record("lvl", true, 75, 2000))

	tier, err = store.BestTier("lvl")
	if err != nil {
		t.Fatalf("BestTier() failed: %v", err)
	}
	if tier != 2 {
		t.Errorf("Expected best tier 2, got %d", tier)
	}
}

func TestStoreLevelStats(t *testing.T) {
	store := openTestStore(t)

	empty, err := store.LevelStats("lvl")
	if err != nil {
		t.Fatalf("LevelStats() failed: %v", err)
	}
	if empty.Runs != 0 || empty.WinRate() != 0 {
		t.Errorf("Expected empty stats, got %+v", empty)
	}

	store.SaveOutcome(record("lvl", true, 90, 1000))
	store.SaveOutcome(record("lvl", false, 40, 1000))
	store.SaveOutcome(record("lvl", true, 80, 1000))
	store.SaveOutcome(record("lvl", false, 50, 1000))
	store.SaveOutcome(record("other", true, 100, 1000))

	stats, err := store.LevelStats("lvl")
	if err != nil {
		t.Fatalf("LevelStats() failed: %v", err)
	}
	if stats.Runs != 4 || stats.Wins != 2 {
		t.Errorf("Expected 4 runs and 2 wins, got %+v", stats)
	}
	if stats.BestScore != 90 || stats.BestTier != 3 {
		t.Errorf("Expected best 90/tier 3, got %d/%d", stats.BestScore, stats.BestTier)
	}
	if stats.AvgScore != 65 {
		t.Errorf("Expected average 65, got %v", stats.AvgScore)
	}
	if stats.WinRate() != 0.5 {
		t.Errorf("Expected win rate 0.5, got %v", stats.WinRate())
	}

	all, err := store.AllLevelStats()
	if err != nil {
		t.Fatalf("AllLevelStats() failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 levels, got %d", len(all))
	}
	if all["other"].Runs != 1 || all["other"].BestTier != 3 {
		t.Errorf("Unexpected stats for other: %+v", all["other"])
	}
}

func TestStoreClearResults(t *testing.T) {
	store := openTestStore(t)

	store.SaveOutcome(record("a", true, 90, 1000))
	store.SaveOutcome(record("a", true, 80, 1000))
	store.SaveOutcome(record("b", true, 70, 1000))

	if err := store.ClearResults("a"); err != nil {
		t.Fatalf("ClearResults() failed: %v", err)
	}

	aResults, _ := store.TopResults("a", 10)
	if len(aResults) != 0 {
		t.Errorf("Expected 0 results after clear, got %d", len(aResults))
	}

	bResults, _ := store.TopResults("b", 10)
	if len(bResults) != 1 {
		t.Errorf("Results for b should not be affected by clearing a")
	}
}

func TestStoreRecentResults(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 5; i++ {
		store.SaveOutcome(record("lvl", true, 50+i, float64(i)))
	}

	recent, err := store.RecentResults(2)
	if err != nil {
		t.Fatalf("RecentResults() failed: %v", err)
	}
	if len(recent) != 2 || recent[0].Record.Score != 54 || recent[1].Record.Score != 53 {
		t.Errorf("Expected newest two runs, got %+v", recent)
	}
}

func TestStoreSinkSavesDecidedRun(t *testing.T) {
	store := openTestStore(t)

	def := sim.Definition{
		ID: "tiny",
		Nodes: []sim.Node{
			{ID: "S", Kind: sim.NodeSpawn},
			{ID: "G", Kind: sim.NodeGoal, Pos: sim.Pt(10, 0), Color: sim.ColorRed},
		},
		Edges: []sim.Edge{{ID: "s-g", From: "S", To: "G"}},
		Agents: []sim.AgentSpec{
			{ID: "w", Color: sim.ColorRed, Speed: 10, Spawn: "S"},
		},
	}
	s, err := sim.New(def, sim.WithSeed(3), sim.WithResultSink(store.Sink(log.New(os.Stderr))))
	if err != nil {
		t.Fatalf("sim.New() failed: %v", err)
	}
	for i := 0; i < 100 && !s.Done(); i++ {
		if err := s.Tick(100); err != nil {
			t.Fatalf("Tick() failed: %v", err)
		}
	}
	if !s.Done() {
		t.Fatal("Expected run to finish")
	}

	results, err := store.TopResults("tiny", 10)
	if err != nil {
		t.Fatalf("TopResults() failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected exactly 1 stored run, got %d", len(results))
	}
	if got := results[0].Record; !got.Success || got.Seed != 3 || got.Score != 100 {
		t.Errorf("Unexpected stored run: %+v", got)
	}
}

func TestStoreExpandHomePath(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	// Verify nested directories were created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}
