// Package overview renders the top-down world map: one color sample
// per column, downsampled into a square image, plus the coordinate
// mapping used to place and read map pins.
package overview

import (
	"image"
	"image/color"

	"github.com/FurryFrags/unstable-sandbox/internal/sim/terrain"
)

// SurfaceColorAt returns the map color for one column: water shaded
// by depth, otherwise the biome surface shaded by elevation.
func SurfaceColorAt(f *terrain.Field, x, z int) color.RGBA {
	h := f.HeightAt(x, z)
	if w, has := f.WaterAt(x, z); has {
		depth := w - h
		if depth > 8 {
			depth = 8
		}
		// deeper water reads darker
		v := uint8(190 - depth*14)
		return color.RGBA{R: 30, G: 70, B: v, A: 255}
	}

	p := f.Params()
	shade := func(c color.RGBA) color.RGBA {
		// lift high ground, sink valleys
		k := 0.75 + 0.5*float64(h)/float64(p.MaxHeight)
		if k > 1.25 {
			k = 1.25
		}
		mul := func(v uint8) uint8 {
			s := float64(v) * k
			if s > 255 {
				s = 255
			}
			return uint8(s)
		}
		return color.RGBA{R: mul(c.R), G: mul(c.G), B: mul(c.B), A: 255}
	}

	switch {
	case f.BiomeAt(x, z) == terrain.BiomeSnow || h >= p.MaxHeight-8:
		return shade(color.RGBA{R: 235, G: 240, B: 245, A: 255})
	case f.BiomeAt(x, z) == terrain.BiomeDesert:
		return shade(color.RGBA{R: 216, G: 200, B: 134, A: 255})
	case f.HasWaterInRadius(x, z, p.ShoreRadius):
		return shade(color.RGBA{R: 206, G: 190, B: 130, A: 255})
	default:
		return shade(color.RGBA{R: 70, G: 150, B: 58, A: 255})
	}
}

// WorldToPixel maps a world column to image coordinates for a square
// overview of px pixels per side.
func WorldToPixel(f *terrain.Field, x, z, px int) (int, int) {
	ws := f.Params().WorldSize
	return x * px / ws, z * px / ws
}

// PixelToWorld inverts WorldToPixel, returning the column at the
// pixel's top-left sample point.
func PixelToWorld(f *terrain.Field, ix, iz, px int) (int, int) {
	ws := f.Params().WorldSize
	return ix * ws / px, iz * ws / px
}

// BuildImage samples the world into a px-by-px RGBA overview.
func BuildImage(f *terrain.Field, px int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, px, px))
	for iz := 0; iz < px; iz++ {
		for ix := 0; ix < px; ix++ {
			x, z := PixelToWorld(f, ix, iz, px)
			img.SetRGBA(ix, iz, SurfaceColorAt(f, x, z))
		}
	}
	return img
}
