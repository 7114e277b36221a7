// Package voxel exposes the single authority for what occupies any
// voxel: terrain, standing water, carved caves and tree geometry all
// funnel through Resolver.TypeAt.
package voxel

import (
	"github.com/FurryFrags/unstable-sandbox/internal/sim/blocks"
	"github.com/FurryFrags/unstable-sandbox/internal/sim/flora"
	"github.com/FurryFrags/unstable-sandbox/internal/sim/terrain"
)

type Params struct {
	SnowLine      int     // surfaces at or above this height get snow
	BedrockTop    int     // y <= BedrockTop is always stone
	CaveFloor     int     // lowest cave-eligible layer
	CaveRoofGap   int     // layers below the surface kept solid
	CaveThreshold float64 // carve when blended cave noise exceeds this
	DirtDepth     int     // layers of dirt under the surface block
}

func DefaultParams(maxHeight int) Params {
	return Params{
		SnowLine:      maxHeight - 8,
		BedrockTop:    1,
		CaveFloor:     3,
		CaveRoofGap:   4,
		CaveThreshold: 0.76,
		DirtDepth:     2,
	}
}

// Resolver is stateless beyond the caches of the fields it wraps; the
// same query always returns the same block.
type Resolver struct {
	p       Params
	terrain *terrain.Field
	flora   *flora.Field
}

func NewResolver(t *terrain.Field, f *flora.Field, p Params) *Resolver {
	return &Resolver{p: p, terrain: t, flora: f}
}

func (r *Resolver) Terrain() *terrain.Field { return r.terrain }
func (r *Resolver) Flora() *flora.Field     { return r.flora }

// TypeAt resolves a world voxel. Total over all of Z^3: coordinates
// outside the world square or the vertical range are Air.
func (r *Resolver) TypeAt(x, y, z int) blocks.Type {
	tp := r.terrain.Params()
	if y < 0 || y > tp.MaxHeight || x < 0 || z < 0 || x >= tp.WorldSize || z >= tp.WorldSize {
		return blocks.Air
	}

	h := r.terrain.HeightAt(x, z)
	if y > h {
		if w, has := r.terrain.WaterAt(x, z); has && y <= w {
			return blocks.Water
		}
		return r.flora.BlockAt(x, y, z)
	}

	if y <= r.p.BedrockTop {
		return blocks.Stone
	}
	if y >= r.p.CaveFloor && y <= h-r.p.CaveRoofGap && r.caveAt(x, y, z) {
		return blocks.Air
	}

	switch {
	case y == h:
		return r.surfaceBlock(x, z, h)
	case y >= h-r.p.DirtDepth:
		return blocks.Dirt
	default:
		return blocks.Stone
	}
}

func (r *Resolver) surfaceBlock(x, z, h int) blocks.Type {
	tp := r.terrain.Params()
	biome := r.terrain.BiomeAt(x, z)
	switch {
	case h >= r.p.SnowLine || biome == terrain.BiomeSnow:
		return blocks.Snow
	case biome == terrain.BiomeDesert:
		return blocks.Sand
	case r.terrain.HasWaterInRadius(x, z, tp.ShoreRadius):
		return blocks.Sand
	default:
		return blocks.Grass
	}
}

// caveAt blends two octaves of y-perturbed surface noise into a
// pseudo-3D density and carves where it spikes.
func (r *Resolver) caveAt(x, y, z int) bool {
	n := r.terrain.Noise()
	fx, fz := float64(x), float64(z)
	yp := float64(y) * 0.9
	d := n.Smooth(fx/14+yp+30000, fz/14-yp+30000)*0.62 +
		n.Smooth(fx/6+yp*1.3+40000, fz/6+yp*1.3+40000)*0.38
	return d > r.p.CaveThreshold
}
