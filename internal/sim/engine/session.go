// Package engine runs one player's world session: a single-goroutine
// tick loop that applies buffered input, steps movement, streams
// chunks and emits state to the transport.
package engine

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/FurryFrags/unstable-sandbox/internal/persistence/worlddb"
	"github.com/FurryFrags/unstable-sandbox/internal/protocol"
	"github.com/FurryFrags/unstable-sandbox/internal/sim/flora"
	"github.com/FurryFrags/unstable-sandbox/internal/sim/geom"
	"github.com/FurryFrags/unstable-sandbox/internal/sim/physics"
	"github.com/FurryFrags/unstable-sandbox/internal/sim/stream"
	"github.com/FurryFrags/unstable-sandbox/internal/sim/terrain"
	"github.com/FurryFrags/unstable-sandbox/internal/sim/tuning"
	"github.com/FurryFrags/unstable-sandbox/internal/sim/voxel"
)

type Session struct {
	tune   tuning.Tuning
	logger *log.Logger

	world    worlddb.World
	terrain  *terrain.Field
	flora    *flora.Field
	resolver *voxel.Resolver
	stream   *stream.Manager
	stepper  *physics.Stepper
	player   physics.Player

	tick      uint64
	timeOfDay float64
	viewProj  geom.Mat4
	hasView   bool
	lastFlags map[stream.Key]protocol.ChunkFlags

	in     chan protocol.FrameMsg
	swapCh chan worlddb.World
	out    chan []byte

	mu      sync.Mutex
	metrics Metrics
}

type Metrics struct {
	Tick         uint64
	LoadedChunks int
	BuiltChunks  uint64
	StepDur      time.Duration
	DroppedMsgs  uint64
}

func NewSession(tune tuning.Tuning, w worlddb.World, logger *log.Logger) *Session {
	s := &Session{
		tune:    tune,
		logger:  logger,
		in:      make(chan protocol.FrameMsg, 64),
		swapCh: make(chan worlddb.World, 1),
		out:     make(chan []byte, 256),
	}
	s.install(w)
	return s
}

// install builds the full derivation chain for a world. Everything
// cached under the previous seed is dropped with the old fields.
func (s *Session) install(w worlddb.World) {
	tp := terrain.DefaultParams()
	tp.WorldSize = s.tune.WorldSize
	tp.MaxHeight = s.tune.MaxHeight
	tp.SeaLevel = s.tune.SeaLevel

	s.mu.Lock()
	s.world = w
	s.mu.Unlock()
	s.terrain = terrain.NewField(w.Seed, tp)
	s.flora = flora.NewField(s.terrain, flora.DefaultParams())
	s.resolver = voxel.NewResolver(s.terrain, s.flora, voxel.DefaultParams(tp.MaxHeight))

	mp := physics.DefaultParams()
	mp.Gravity = s.tune.Movement.Gravity
	mp.WalkSpeed = s.tune.Movement.WalkSpeed
	mp.FlySpeed = s.tune.Movement.FlySpeed
	mp.JumpSpeed = s.tune.Movement.JumpSpeed
	mp.EyeHeight = s.tune.Movement.EyeHeight
	mp.DoubleTapSec = s.tune.Movement.DoubleTapSec
	if s.stepper == nil {
		s.stepper = physics.NewStepper(s.terrain, mp)
	} else {
		s.stepper.SetTerrain(s.terrain)
	}

	sp := stream.Params{
		ChunkSize:    s.tune.ChunkSize,
		WorldChunks:  s.tune.WorldChunks(),
		MaxHeight:    s.tune.MaxHeight,
		RenderRadius: s.tune.RenderRadius,
		BuildBudget:  s.tune.BuildBudget,
		ShadowRadius: s.tune.ShadowRadius,
		EvictPadding: s.tune.EvictPadding,
		Greedy:       s.tune.GreedyMesh,
		Evict:        s.tune.EvictChunks,
	}
	if s.stream == nil {
		s.stream = stream.NewManager(s.resolver, sp)
	} else {
		s.stream.Reset(s.resolver)
	}

	s.lastFlags = make(map[stream.Key]protocol.ChunkFlags)
	s.hasView = false
	s.spawn()
}

// spawn drops the player at the world center, standing on terrain.
func (s *Session) spawn() {
	c := float64(s.tune.WorldSize) / 2
	h := s.terrain.HeightAt(s.tune.WorldSize/2, s.tune.WorldSize/2)
	s.player = physics.Player{
		Pos: geom.Vec3{X: c, Y: float64(h+1) + s.tune.Movement.EyeHeight, Z: c},
	}
}

// World is safe to read from transport goroutines.
func (s *Session) World() worlddb.World {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world
}

// Terrain exposes the current field for read-only overview sampling.
func (s *Session) Terrain() *terrain.Field { return s.terrain }

// Out is the transport-bound message stream.
func (s *Session) Out() <-chan []byte { return s.out }

// Input queues one frame of client input; stale frames are dropped
// rather than stalling the reader.
func (s *Session) Input(f protocol.FrameMsg) {
	select {
	case s.in <- f:
	default:
	}
}

// SwitchWorld swaps worlds at the next tick boundary.
func (s *Session) SwitchWorld(w worlddb.World) {
	// replace any pending switch
	select {
	case <-s.swapCh:
	default:
	}
	s.swapCh <- w
}

func (s *Session) Metrics() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics
}

// Run drives the tick loop until ctx ends. All world state is owned
// by this goroutine; channels are the only way in or out.
func (s *Session) Run(ctx context.Context) {
	dt := 1.0 / float64(s.tune.TickRateHz)
	ticker := time.NewTicker(time.Duration(float64(time.Second) * dt))
	defer ticker.Stop()
	defer close(s.out)

	for {
		select {
		case <-ctx.Done():
			return
		case w := <-s.swapCh:
			s.install(w)
			s.logger.Printf("world switched: id=%d name=%q seed=%d", w.ID, w.Name, w.Seed)
			s.send(s.WelcomeFor())
		case <-ticker.C:
			start := time.Now()
			s.step(dt)
			s.mu.Lock()
			s.metrics.Tick = s.tick
			s.metrics.LoadedChunks = s.stream.Loaded()
			s.metrics.BuiltChunks = s.stream.BuiltTotal()
			s.metrics.StepDur = time.Since(start)
			s.mu.Unlock()
		}
	}
}

// drainInput folds queued frames into one physics input. Axes and the
// view matrix take the latest value; taps are sticky so a quick press
// between ticks is never lost.
func (s *Session) drainInput() physics.Input {
	var in physics.Input
	for {
		select {
		case f := <-s.in:
			in.Forward = f.Forward
			in.Strafe = f.Strafe
			in.Jump = in.Jump || f.Jump
			in.Descend = in.Descend || f.Descend
			in.DYaw += f.DYaw
			in.DPitch += f.DPitch
			if f.ViewProj != nil {
				s.viewProj = geom.Mat4(*f.ViewProj)
				s.hasView = true
			}
		default:
			return in
		}
	}
}

func (s *Session) step(dt float64) {
	s.tick++
	s.timeOfDay = float64(s.tick%uint64(s.tune.DayTicks)) / float64(s.tune.DayTicks)

	in := s.drainInput()
	now := float64(s.tick) * dt
	s.stepper.Step(&s.player, in, dt, now)

	if !s.hasView {
		// no camera yet: stream around the player with an all-pass view
		s.viewProj = geom.Identity()
	}
	frame := s.stream.Update(s.player.Pos, s.viewProj)

	s.send(protocol.StateMsg{
		Type:      protocol.TypeState,
		Tick:      s.tick,
		Pos:       [3]float64{s.player.Pos.X, s.player.Pos.Y, s.player.Pos.Z},
		Yaw:       s.player.Yaw,
		Pitch:     s.player.Pitch,
		Flying:    s.player.Flying,
		Grounded:  s.player.Grounded(),
		TimeOfDay: s.timeOfDay,
		Loaded:    s.stream.Loaded(),
		Pending:   frame.Pending,
	})

	for _, c := range frame.Built {
		msg := protocol.ChunkMsg{
			Type:   protocol.TypeChunk,
			CX:     c.Key.CX,
			CZ:     c.Key.CZ,
			Origin: [3]float64{c.Origin.X, c.Origin.Y, c.Origin.Z},
		}
		for mat, m := range c.Meshes {
			msg.Meshes = append(msg.Meshes, protocol.EncodeMeshPayload(mat, m))
		}
		s.send(msg)
	}

	var flags []protocol.ChunkFlags
	s.stream.Each(func(c *stream.Chunk) {
		f := protocol.ChunkFlags{CX: c.Key.CX, CZ: c.Key.CZ, Visible: c.Visible, CastShadow: c.CastShadow}
		if prev, ok := s.lastFlags[c.Key]; !ok || prev != f {
			flags = append(flags, f)
			s.lastFlags[c.Key] = f
		}
	})
	if len(flags) > 0 {
		s.send(protocol.ChunkStateMsg{Type: protocol.TypeChunkState, Chunks: flags})
	}

	if len(frame.Evicted) > 0 {
		ev := protocol.EvictMsg{Type: protocol.TypeEvict}
		for _, k := range frame.Evicted {
			delete(s.lastFlags, k)
			ev.Chunks = append(ev.Chunks, protocol.ChunkKey{CX: k.CX, CZ: k.CZ})
		}
		s.send(ev)
	}
}

// send marshals and forwards a message, dropping on backpressure so a
// slow client never stalls the tick loop.
func (s *Session) send(msg any) {
	raw, err := json.Marshal(msg)
	if err != nil {
		s.logger.Printf("marshal outbound: %v", err)
		return
	}
	select {
	case s.out <- raw:
	default:
		s.mu.Lock()
		s.metrics.DroppedMsgs++
		s.mu.Unlock()
	}
}

// WelcomeFor describes the current world for the handshake and for
// re-welcomes after a world switch.
func (s *Session) WelcomeFor() protocol.WelcomeMsg {
	return protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		World:           protocol.WorldRef{ID: s.world.ID, Name: s.world.Name, Seed: s.world.Seed},
		WorldParams: protocol.WorldParams{
			Seed:         s.world.Seed,
			WorldSize:    s.tune.WorldSize,
			ChunkSize:    s.tune.ChunkSize,
			MaxHeight:    s.tune.MaxHeight,
			SeaLevel:     s.tune.SeaLevel,
			RenderRadius: s.tune.RenderRadius,
			TickRateHz:   s.tune.TickRateHz,
			DayTicks:     s.tune.DayTicks,
		},
		Materials: protocol.MaterialInfos(),
	}
}
