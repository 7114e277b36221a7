package mesh

import (
	"github.com/FurryFrags/unstable-sandbox/internal/sim/blocks"
	"github.com/FurryFrags/unstable-sandbox/internal/sim/voxel"
)

// BuildGreedyMesh merges coplanar same-material visible faces into
// maximal rectangles. The exposed face set is identical to the naive
// mesher's; only the triangulation differs.
func BuildGreedyMesh(r *voxel.Resolver, d *ChunkData, mat blocks.Type) *Mesh {
	m := &Mesh{}
	for dir := 0; dir < 6; dir++ {
		greedyDirection(r, d, mat, dir, m)
	}
	return m
}

// greedyDirection sweeps slices perpendicular to one face normal,
// masks the visible faces of that slice and merges rectangles.
func greedyDirection(r *voxel.Resolver, d *ChunkData, mat blocks.Type, dir int, m *Mesh) {
	var sliceN, uDim, vDim int
	// cell maps (slice, u, v) to chunk-local voxel coordinates
	var cell func(s, u, v int) (int, int, int)

	switch dir {
	case 0, 1: // x slices, u along z, v along y
		sliceN, uDim, vDim = d.Size, d.Size, d.Height
		cell = func(s, u, v int) (int, int, int) { return s, v, u }
	case 2, 3: // y slices, u along z, v along x
		sliceN, uDim, vDim = d.Height, d.Size, d.Size
		cell = func(s, u, v int) (int, int, int) { return v, s, u }
	default: // z slices, u along x, v along y
		sliceN, uDim, vDim = d.Size, d.Size, d.Height
		cell = func(s, u, v int) (int, int, int) { return u, v, s }
	}

	mask := make([]bool, uDim*vDim)
	for s := 0; s < sliceN; s++ {
		any := false
		for v := 0; v < vDim; v++ {
			for u := 0; u < uDim; u++ {
				lx, y, lz := cell(s, u, v)
				ok := d.At(lx, y, lz) == mat && faceVisible(r, d, mat, lx, y, lz, dir)
				mask[v*uDim+u] = ok
				any = any || ok
			}
		}
		if !any {
			continue
		}
		mergeSlice(mask, uDim, vDim, func(u0, v0, w, h int) {
			emitGreedyQuad(m, dir, s, u0, v0, w, h)
		})
	}
}

// mergeSlice consumes a 2D mask, emitting maximal rectangles. Each
// rectangle grows along u first, then extends along v while every
// covered cell stays set.
func mergeSlice(mask []bool, uDim, vDim int, emit func(u0, v0, w, h int)) {
	for v := 0; v < vDim; v++ {
		for u := 0; u < uDim; {
			if !mask[v*uDim+u] {
				u++
				continue
			}
			w := 1
			for u+w < uDim && mask[v*uDim+u+w] {
				w++
			}
			h := 1
		grow:
			for v+h < vDim {
				for k := 0; k < w; k++ {
					if !mask[(v+h)*uDim+u+k] {
						break grow
					}
				}
				h++
			}
			for dv := 0; dv < h; dv++ {
				for du := 0; du < w; du++ {
					mask[(v+dv)*uDim+u+du] = false
				}
			}
			emit(u, v, w, h)
			u += w
		}
	}
}

func emitGreedyQuad(m *Mesh, dir, s, u0, v0, w, h int) {
	fs, fu, fv := float32(s), float32(u0), float32(v0)
	fw, fh := float32(w), float32(h)
	switch dir {
	case 0:
		m.quad(0, fs+1, fv, fu, fw, fh)
	case 1:
		m.quad(1, fs, fv, fu, fw, fh)
	case 2:
		m.quad(2, fv, fs+1, fu, fw, fh)
	case 3:
		m.quad(3, fv, fs, fu, fw, fh)
	case 4:
		m.quad(4, fu, fv, fs+1, fw, fh)
	case 5:
		m.quad(5, fu, fv, fs, fw, fh)
	}
}
