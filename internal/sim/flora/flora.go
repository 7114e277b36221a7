// Package flora places trees on the terrain without storing them:
// tree centers live on a sparse lattice and every tree voxel is
// recomputed on demand from the seed.
package flora

import (
	"github.com/FurryFrags/unstable-sandbox/internal/sim/blocks"
	"github.com/FurryFrags/unstable-sandbox/internal/sim/mathx"
	"github.com/FurryFrags/unstable-sandbox/internal/sim/terrain"
)

type Params struct {
	Grid         int // lattice pitch for candidate tree centers
	CanopyRadius int // Manhattan reach of leaves around the trunk
	TrunkMin     int
	TrunkVar     int // trunk height is TrunkMin + hash*[0,TrunkVar]
	SlopeMax     int // centers rejected on steeper ground

	TreeChance     float64 // lattice acceptance, plains and above
	SnowTreeChance float64 // sparser stands in snow
	LeafChance     float64
	AppleChance    float64
}

func DefaultParams() Params {
	return Params{
		Grid:           5,
		CanopyRadius:   2,
		TrunkMin:       4,
		TrunkVar:       2,
		SlopeMax:       3,
		TreeChance:     0.5,
		SnowTreeChance: 0.22,
		LeafChance:     0.72,
		AppleChance:    0.08,
	}
}

// Field resolves tree geometry over one terrain field. Center
// decisions are memoized; block queries are pure.
type Field struct {
	p       Params
	terrain *terrain.Field
	centers map[int64]bool
}

func NewField(t *terrain.Field, p Params) *Field {
	return &Field{
		p:       p,
		terrain: t,
		centers: make(map[int64]bool),
	}
}

func centerKey(x, z int) int64 {
	return int64(x)<<32 | int64(uint32(z))
}

// IsTreeCenter reports whether a column hosts a tree trunk. True only
// on lattice columns that pass the ground checks and the density hash.
func (f *Field) IsTreeCenter(x, z int) bool {
	if mathx.Mod(x, f.p.Grid) != 0 || mathx.Mod(z, f.p.Grid) != 0 {
		return false
	}
	key := centerKey(x, z)
	if v, ok := f.centers[key]; ok {
		return v
	}
	v := f.computeCenter(x, z)
	f.centers[key] = v
	return v
}

func (f *Field) computeCenter(x, z int) bool {
	tp := f.terrain.Params()
	// keep canopies inside the world square
	margin := f.p.CanopyRadius + 1
	if x < margin || z < margin || x >= tp.WorldSize-margin || z >= tp.WorldSize-margin {
		return false
	}
	if _, has := f.terrain.WaterAt(x, z); has {
		return false
	}
	h := f.terrain.HeightAt(x, z)
	if h <= tp.SeaLevel {
		return false
	}
	// no trunks poking out of the world ceiling
	if h+f.p.TrunkMin+f.p.TrunkVar+1 > tp.MaxHeight {
		return false
	}
	biome := f.terrain.BiomeAt(x, z)
	if biome == terrain.BiomeDesert {
		return false
	}
	// flat enough ground
	for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		if mathx.AbsInt(h-f.terrain.HeightAt(x+d[0], z+d[1])) > f.p.SlopeMax {
			return false
		}
	}
	chance := f.p.TreeChance
	if biome == terrain.BiomeSnow {
		chance = f.p.SnowTreeChance
	}
	return f.terrain.Noise().Hash2(x*7+1, z*7+1) < chance
}

func (f *Field) trunkHeight(cx, cz int) int {
	return f.p.TrunkMin + int(f.terrain.Noise().Hash3(cx, 7, cz)*float64(f.p.TrunkVar+1))
}

// BlockAt returns the tree material occupying a voxel, or Air. Nearby
// lattice centers are scanned in a fixed x-then-z order and the first
// center that claims the voxel wins, so overlapping canopies resolve
// the same way on every query.
func (f *Field) BlockAt(x, y, z int) blocks.Type {
	g := f.p.Grid
	r := f.p.CanopyRadius
	x0 := mathx.FloorDiv(x-r, g) * g
	z0 := mathx.FloorDiv(z-r, g) * g

	for cx := x0; cx <= x+r; cx += g {
		for cz := z0; cz <= z+r; cz += g {
			if !f.IsTreeCenter(cx, cz) {
				continue
			}
			if b := f.treeBlock(cx, cz, x, y, z); b != blocks.Air {
				return b
			}
		}
	}
	return blocks.Air
}

func (f *Field) treeBlock(cx, cz, x, y, z int) blocks.Type {
	base := f.terrain.HeightAt(cx, cz) + 1
	top := base + f.trunkHeight(cx, cz) - 1

	if x == cx && z == cz {
		if y >= base && y <= top {
			return blocks.Wood
		}
		if y == top+1 {
			return blocks.Leaf
		}
		return blocks.Air
	}

	d := mathx.Manhattan(x, z, cx, cz)
	if d < 1 || d > f.p.CanopyRadius {
		return blocks.Air
	}
	if y < top-1 || y > top+1 {
		return blocks.Air
	}
	if y == top+1 && d > 1 {
		// canopy tapers at the crown
		return blocks.Air
	}
	n := f.terrain.Noise()
	if n.Hash3(x, y*31+d, z) >= f.p.LeafChance {
		return blocks.Air
	}
	if n.Hash3(x, y*57+1, z) < f.p.AppleChance {
		return blocks.Apple
	}
	return blocks.Leaf
}
