// Package physics steps the player through the world: walking with
// gravity and jumps, or free flight toggled by double-tapping jump.
package physics

import (
	"math"

	"github.com/FurryFrags/unstable-sandbox/internal/sim/geom"
	"github.com/FurryFrags/unstable-sandbox/internal/sim/terrain"
)

type Params struct {
	Gravity        float64 // blocks per second squared, positive down
	WalkSpeed      float64 // blocks per second
	FlySpeed       float64
	JumpSpeed      float64 // initial upward velocity
	EyeHeight      float64 // camera above the feet
	DoubleTapSec   float64 // max gap between jump taps to toggle fly
	PitchLimit     float64 // radians either side of level
	FlyVertSpeed   float64 // vertical speed while flying
	TerminalSpeed  float64 // falling speed cap
}

func DefaultParams() Params {
	return Params{
		Gravity:       24,
		WalkSpeed:     5.5,
		FlySpeed:      11,
		JumpSpeed:     8.5,
		EyeHeight:     1.7,
		DoubleTapSec:  0.3,
		PitchLimit:    math.Pi/2 - 0.01,
		FlyVertSpeed:  8,
		TerminalSpeed: 40,
	}
}

// Player is the mutable movement state. Pos is the eye position.
type Player struct {
	Pos    geom.Vec3
	VelY   float64
	Yaw    float64 // radians, 0 looks toward -Z
	Pitch  float64
	Flying bool

	grounded    bool
	jumpHeld    bool
	tapArmed    bool
	lastJumpTap float64
}

// Input is one frame of movement intent. Forward/Strafe are in [-1,1]
// relative to the view yaw.
type Input struct {
	Forward float64
	Strafe  float64
	Jump    bool
	Descend bool
	DYaw    float64
	DPitch  float64
}

// Stepper advances players over a terrain field. The ground a player
// stands on is the terrain surface; water and trees do not collide.
type Stepper struct {
	p       Params
	terrain *terrain.Field
}

func NewStepper(t *terrain.Field, p Params) *Stepper {
	return &Stepper{p: p, terrain: t}
}

// SetTerrain swaps the field after a world switch.
func (s *Stepper) SetTerrain(t *terrain.Field) { s.terrain = t }

// groundY returns the eye height at which the player stands on the
// column under pos.
func (s *Stepper) groundY(pos geom.Vec3) float64 {
	h := s.terrain.HeightAt(int(math.Floor(pos.X)), int(math.Floor(pos.Z)))
	return float64(h+1) + s.p.EyeHeight
}

// Step advances one tick. now is the simulation clock in seconds,
// used only for the double-tap window.
func (s *Stepper) Step(pl *Player, in Input, dt, now float64) {
	pl.Yaw += in.DYaw
	pl.Pitch += in.DPitch
	if pl.Pitch > s.p.PitchLimit {
		pl.Pitch = s.p.PitchLimit
	}
	if pl.Pitch < -s.p.PitchLimit {
		pl.Pitch = -s.p.PitchLimit
	}

	// rising edge of the jump key
	tapped := in.Jump && !pl.jumpHeld
	pl.jumpHeld = in.Jump
	if tapped {
		if pl.tapArmed && now-pl.lastJumpTap <= s.p.DoubleTapSec {
			pl.Flying = !pl.Flying
			pl.VelY = 0
			pl.tapArmed = false // consume the pair
		} else {
			pl.tapArmed = true
			pl.lastJumpTap = now
		}
	}

	speed := s.p.WalkSpeed
	if pl.Flying {
		speed = s.p.FlySpeed
	}
	sin, cos := math.Sin(pl.Yaw), math.Cos(pl.Yaw)
	// forward is -Z at yaw 0
	dx := (in.Strafe*cos - in.Forward*sin) * speed * dt
	dz := (-in.Forward*cos - in.Strafe*sin) * speed * dt
	pl.Pos.X += dx
	pl.Pos.Z += dz

	ws := float64(s.terrain.Params().WorldSize)
	pl.Pos.X = clamp(pl.Pos.X, 0, ws-0.001)
	pl.Pos.Z = clamp(pl.Pos.Z, 0, ws-0.001)

	if pl.Flying {
		s.stepFly(pl, in, dt)
	} else {
		s.stepWalk(pl, tapped, dt)
	}
}

func (s *Stepper) stepFly(pl *Player, in Input, dt float64) {
	pl.grounded = false
	var vy float64
	if in.Jump {
		vy += s.p.FlyVertSpeed
	}
	if in.Descend {
		vy -= s.p.FlyVertSpeed
	}
	pl.Pos.Y += vy * dt

	top := float64(s.terrain.Params().MaxHeight) + 24
	pl.Pos.Y = clamp(pl.Pos.Y, s.p.EyeHeight, top)

	// landing on terrain leaves fly mode grounded next walk step
	if g := s.groundY(pl.Pos); pl.Pos.Y < g {
		pl.Pos.Y = g
	}
}

func (s *Stepper) stepWalk(pl *Player, tapped bool, dt float64) {
	ground := s.groundY(pl.Pos)

	if tapped && pl.grounded {
		pl.VelY = s.p.JumpSpeed
		pl.grounded = false
	}

	pl.VelY -= s.p.Gravity * dt
	if pl.VelY < -s.p.TerminalSpeed {
		pl.VelY = -s.p.TerminalSpeed
	}
	pl.Pos.Y += pl.VelY * dt

	if pl.Pos.Y <= ground {
		pl.Pos.Y = ground
		pl.VelY = 0
		pl.grounded = true
	} else {
		pl.grounded = false
	}
}

// Grounded reports whether the player is standing on terrain.
func (p *Player) Grounded() bool { return p.grounded }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
