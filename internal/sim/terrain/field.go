// Package terrain derives a finite voxel world's surface from a seed:
// column heights, standing water levels, biome assignment and shore
// proximity. All derivation is deterministic; the package caches
// per-column results but never stores authored state.
package terrain

import (
	"math"

	"github.com/FurryFrags/unstable-sandbox/internal/sim/mathx"
)

type Biome uint8

const (
	BiomePlains Biome = iota
	BiomeDesert
	BiomeSnow
)

func (b Biome) String() string {
	switch b {
	case BiomeDesert:
		return "desert"
	case BiomeSnow:
		return "snow"
	default:
		return "plains"
	}
}

// Params bound the world square and its vertical shaping.
type Params struct {
	WorldSize int // world is [0,WorldSize) on x and z
	MaxHeight int // inclusive top voxel layer
	SeaLevel  int
	MinHeight int // terrain floor, keeps bedrock covered

	ShoreRadius int // Manhattan radius for sand placement
}

func DefaultParams() Params {
	return Params{
		WorldSize:   256,
		MaxHeight:   48,
		SeaLevel:    12,
		MinHeight:   2,
		ShoreRadius: 2,
	}
}

// Field answers terrain queries for one seeded world. Queries outside
// the world square still return well-defined values (needed for
// neighbor lookups at the edge) but are not cached.
type Field struct {
	p     Params
	seed  int64
	noise *Noise
	cache *Cache
}

func NewField(seed int64, p Params) *Field {
	return &Field{
		p:     p,
		seed:  seed,
		noise: NewNoise(seed),
		cache: NewCache(p.WorldSize),
	}
}

func (f *Field) Seed() int64    { return f.seed }
func (f *Field) Params() Params { return f.p }
func (f *Field) Noise() *Noise  { return f.noise }

// ResetCaches drops every memoized column. Callers use it when the
// field is reused across a world switch in tests; the engine prefers
// constructing a fresh Field per world.
func (f *Field) ResetCaches() {
	f.cache.Reset()
}

// HeightAt returns the terrain surface height for a column, clamped to
// [MinHeight, MaxHeight].
func (f *Field) HeightAt(x, z int) int {
	if i, ok := f.cache.idx(x, z); ok {
		if h := f.cache.height[i]; h >= 0 {
			return int(h)
		}
		h := f.computeHeight(x, z)
		f.cache.height[i] = int16(h)
		return h
	}
	return f.computeHeight(x, z)
}

func (f *Field) computeHeight(x, z int) int {
	fx, fz := float64(x), float64(z)

	h := 4.0
	h += f.noise.Smooth(fx/64, fz/64) * 18         // continents
	h += f.noise.Smooth(fx/24+512, fz/24+512) * 8  // hills
	h += f.noise.Smooth(fx/9+1024, fz/9+1024) * 4  // detail
	if m := f.noise.Smooth(fx/80+2048, fz/80+2048); m > 0.62 {
		// thresholded ridge mask so mountains stay sparse
		h += (m - 0.62) / 0.38 * 20
	}
	return mathx.ClampInt(int(math.Round(h)), f.p.MinHeight, f.p.MaxHeight)
}

// WaterAt returns the standing water surface height for a column and
// whether the column holds water at all. When present the level is
// always >= HeightAt for the same column.
func (f *Field) WaterAt(x, z int) (int, bool) {
	if i, ok := f.cache.idx(x, z); ok {
		if w := f.cache.water[i]; w >= -1 {
			return int(w), w >= 0
		}
		w, has := f.computeWater(x, z)
		if has {
			f.cache.water[i] = int16(w)
		} else {
			f.cache.water[i] = -1
		}
		return w, has
	}
	return f.computeWater(x, z)
}

func (f *Field) computeWater(x, z int) (int, bool) {
	h := f.HeightAt(x, z)
	fx, fz := float64(x), float64(z)
	level := -1

	// oceans: low-frequency blend floods everything near sea level
	if ocean := f.noise.Smooth(fx/96+4096, fz/96+4096); ocean < 0.38 && h <= f.p.SeaLevel+2 {
		level = f.p.SeaLevel
		if level < h {
			level = h
		}
	}

	// inland basins: columns sitting well below their neighbors pond up
	sum := f.HeightAt(x+1, z) + f.HeightAt(x-1, z) + f.HeightAt(x, z+1) + f.HeightAt(x, z-1)
	if depth := float64(sum)/4 - float64(h); depth >= 2 {
		if gate := f.noise.Smooth(fx/40+8192, fz/40+8192); gate > 0.55 {
			w := h + int(depth/2)
			if w > h+4 {
				w = h + 4
			}
			if w > level {
				level = w
			}
		}
	}

	if level < 0 {
		return 0, false
	}
	return level, true
}

// BiomeAt partitions the world by temperature and humidity fields.
func (f *Field) BiomeAt(x, z int) Biome {
	if i, ok := f.cache.idx(x, z); ok {
		if b := f.cache.biome[i]; b >= 0 {
			return Biome(b)
		}
		b := f.computeBiome(x, z)
		f.cache.biome[i] = int8(b)
		return b
	}
	return f.computeBiome(x, z)
}

func (f *Field) computeBiome(x, z int) Biome {
	fx, fz := float64(x), float64(z)
	temp := f.noise.Smooth(fx/72+16384, fz/72+16384)
	humid := f.noise.Smooth(fx/56+24576, fz/56+24576)
	switch {
	case temp < 0.32:
		return BiomeSnow
	case temp > 0.64 && humid < 0.42:
		return BiomeDesert
	default:
		return BiomePlains
	}
}

// HasWaterInRadius reports whether any column within the given
// Manhattan radius holds standing water. Drives beach sand placement.
func (f *Field) HasWaterInRadius(x, z, r int) bool {
	if i, ok := f.cache.idx(x, z); ok && r == f.p.ShoreRadius {
		if s := f.cache.shore[i]; s >= 0 {
			return s == 1
		}
		near := f.computeWaterNear(x, z, r)
		if near {
			f.cache.shore[i] = 1
		} else {
			f.cache.shore[i] = 0
		}
		return near
	}
	return f.computeWaterNear(x, z, r)
}

func (f *Field) computeWaterNear(x, z, r int) bool {
	for dx := -r; dx <= r; dx++ {
		rem := r - mathx.AbsInt(dx)
		for dz := -rem; dz <= rem; dz++ {
			if _, has := f.WaterAt(x+dx, z+dz); has {
				return true
			}
		}
	}
	return false
}
