package engine

import (
	"encoding/json"
	"log"
	"os"
	"testing"

	"github.com/FurryFrags/unstable-sandbox/internal/persistence/worlddb"
	"github.com/FurryFrags/unstable-sandbox/internal/protocol"
	"github.com/FurryFrags/unstable-sandbox/internal/sim/tuning"
)

func testTuning() tuning.Tuning {
	t := tuning.Defaults()
	t.WorldSize = 96
	t.RenderRadius = 2
	t.BuildBudget = 3
	t.DayTicks = 100
	return t
}

func testSession() *Session {
	logger := log.New(os.Stderr, "[test] ", 0)
	return NewSession(testTuning(), worlddb.World{ID: 1, Name: "Hearth", Seed: 1337}, logger)
}

// drainOut empties the out channel, returning messages bucketed by
// type.
func drainOut(t *testing.T, s *Session) map[string][][]byte {
	t.Helper()
	got := map[string][][]byte{}
	for {
		select {
		case raw := <-s.out:
			base, err := protocol.DecodeBase(raw)
			if err != nil {
				t.Fatalf("outbound not json: %v", err)
			}
			got[base.Type] = append(got[base.Type], raw)
		default:
			return got
		}
	}
}

func TestTicksEmitStateAndChunks(t *testing.T) {
	s := testSession()
	dt := 1.0 / float64(s.tune.TickRateHz)

	s.step(dt)
	got := drainOut(t, s)
	if len(got[protocol.TypeState]) != 1 {
		t.Fatalf("first tick sent %d STATE messages", len(got[protocol.TypeState]))
	}
	if n := len(got[protocol.TypeChunk]); n == 0 || n > s.tune.BuildBudget {
		t.Fatalf("first tick sent %d CHUNK messages, budget %d", n, s.tune.BuildBudget)
	}

	var st protocol.StateMsg
	if err := json.Unmarshal(got[protocol.TypeState][0], &st); err != nil {
		t.Fatalf("state: %v", err)
	}
	if st.Tick != 1 {
		t.Fatalf("tick=%d want 1", st.Tick)
	}
	if st.TimeOfDay < 0 || st.TimeOfDay >= 1 {
		t.Fatalf("time of day %v out of range", st.TimeOfDay)
	}
}

func TestChunkStreamDrains(t *testing.T) {
	s := testSession()
	dt := 1.0 / float64(s.tune.TickRateHz)

	want := (2*s.tune.RenderRadius + 1) * (2*s.tune.RenderRadius + 1)
	total := 0
	for i := 0; i < 40; i++ {
		s.step(dt)
		total += len(drainOut(t, s)[protocol.TypeChunk])
	}
	if total != want {
		t.Fatalf("streamed %d chunks, want %d", total, want)
	}
}

func TestChunkMessagesDecode(t *testing.T) {
	s := testSession()
	s.step(1.0 / 30)
	for _, raw := range drainOut(t, s)[protocol.TypeChunk] {
		var msg protocol.ChunkMsg
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("chunk msg: %v", err)
		}
		if len(msg.Meshes) == 0 {
			t.Fatalf("chunk (%d,%d) arrived with no meshes", msg.CX, msg.CZ)
		}
		for _, p := range msg.Meshes {
			if _, _, err := protocol.DecodeMeshPayload(p); err != nil {
				t.Fatalf("payload %s: %v", p.Material, err)
			}
		}
	}
}

func TestDayNightWraps(t *testing.T) {
	s := testSession()
	dt := 1.0 / float64(s.tune.TickRateHz)
	seen := map[bool]bool{}
	for i := 0; i < s.tune.DayTicks+10; i++ {
		s.step(dt)
		drainOut(t, s)
		seen[s.timeOfDay < 0.5] = true
		if s.timeOfDay < 0 || s.timeOfDay >= 1 {
			t.Fatalf("time of day %v escaped [0,1)", s.timeOfDay)
		}
	}
	if !seen[true] || !seen[false] {
		t.Fatalf("clock never crossed midday over a full day")
	}
}

func TestWorldSwitchResets(t *testing.T) {
	s := testSession()
	dt := 1.0 / float64(s.tune.TickRateHz)
	for i := 0; i < 20; i++ {
		s.step(dt)
	}
	drainOut(t, s)
	if s.stream.Loaded() == 0 {
		t.Fatalf("nothing loaded before switch")
	}

	s.install(worlddb.World{ID: 2, Name: "Frost", Seed: 999})
	if s.stream.Loaded() != 0 {
		t.Fatalf("chunks survived world switch")
	}
	if s.world.Seed != 999 {
		t.Fatalf("world not swapped")
	}

	// new seed, new terrain: a sweep must find differing columns
	old := NewSession(testTuning(), worlddb.World{ID: 1, Name: "Hearth", Seed: 1337}, s.logger)
	same, total := 0, 0
	for x := 0; x < 96; x += 3 {
		total++
		if s.terrain.HeightAt(x, 40) == old.terrain.HeightAt(x, 40) {
			same++
		}
	}
	if same == total {
		t.Fatalf("terrain identical across different seeds")
	}

	// streaming restarts
	s.step(dt)
	if len(drainOut(t, s)[protocol.TypeChunk]) == 0 {
		t.Fatalf("no chunks streamed after switch")
	}
}

func TestInputMovesPlayer(t *testing.T) {
	s := testSession()
	dt := 1.0 / float64(s.tune.TickRateHz)
	z0 := s.player.Pos.Z
	for i := 0; i < 30; i++ {
		s.Input(protocol.FrameMsg{Type: protocol.TypeFrame, Forward: 1})
		s.step(dt)
		drainOut(t, s)
	}
	if s.player.Pos.Z >= z0 {
		t.Fatalf("forward input did not move the player: %v -> %v", z0, s.player.Pos.Z)
	}
}
