// Package mesh turns chunk voxel buffers into triangle geometry, one
// mesh per material. Two meshers implement the same visible-surface
// contract: a naive per-face culler and a greedy rectangle merger.
package mesh

import (
	"github.com/FurryFrags/unstable-sandbox/internal/sim/blocks"
	"github.com/FurryFrags/unstable-sandbox/internal/sim/voxel"
)

// Mesh is chunk-local triangle soup: three position floats and three
// normal floats per vertex, CCW winding faces outward.
type Mesh struct {
	Positions []float32
	Normals   []float32
}

func (m *Mesh) VertexCount() int   { return len(m.Positions) / 3 }
func (m *Mesh) TriangleCount() int { return len(m.Positions) / 9 }

// Empty reports whether the mesh holds no geometry.
func (m *Mesh) Empty() bool { return m == nil || len(m.Positions) == 0 }

// face directions, paired so dir^1 is the opposite face
var dirs = [6][3]int{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

// quad appends a w-by-h rectangle facing dir, anchored at the min corner
// of the face plane. w and h follow the per-direction frames below.
func (m *Mesh) quad(dir int, x, y, z, w, h float32) {
	var v [4][3]float32
	switch dir {
	case 0: // +X, w along z, h along y
		v = [4][3]float32{{x, y, z}, {x, y + h, z}, {x, y + h, z + w}, {x, y, z + w}}
	case 1: // -X
		v = [4][3]float32{{x, y, z}, {x, y, z + w}, {x, y + h, z + w}, {x, y + h, z}}
	case 2: // +Y, w along z, h along x
		v = [4][3]float32{{x, y, z}, {x, y, z + w}, {x + h, y, z + w}, {x + h, y, z}}
	case 3: // -Y
		v = [4][3]float32{{x, y, z}, {x + h, y, z}, {x + h, y, z + w}, {x, y, z + w}}
	case 4: // +Z, w along x, h along y
		v = [4][3]float32{{x, y, z}, {x + w, y, z}, {x + w, y + h, z}, {x, y + h, z}}
	case 5: // -Z
		v = [4][3]float32{{x, y, z}, {x, y + h, z}, {x + w, y + h, z}, {x + w, y, z}}
	}
	n := dirs[dir]
	for _, idx := range [6]int{0, 1, 2, 0, 2, 3} {
		m.Positions = append(m.Positions, v[idx][0], v[idx][1], v[idx][2])
		m.Normals = append(m.Normals, float32(n[0]), float32(n[1]), float32(n[2]))
	}
}

// touchesWater reports whether any of the six neighbors of a cell is
// water. Cells next to water emit all faces so waterlines never show
// gaps when the translucent surface renders over them.
func touchesWater(r *voxel.Resolver, d *ChunkData, lx, y, lz int) bool {
	for _, dir := range dirs {
		if d.typeAt(r, lx+dir[0], y+dir[1], lz+dir[2]) == blocks.Water {
			return true
		}
	}
	return false
}

func faceVisible(r *voxel.Resolver, d *ChunkData, mat blocks.Type, lx, y, lz, dir int) bool {
	dv := dirs[dir]
	if d.typeAt(r, lx+dv[0], y+dv[1], lz+dv[2]) == blocks.Air {
		return true
	}
	return mat != blocks.Water && touchesWater(r, d, lx, y, lz)
}

// BuildNaiveMesh emits one quad per visible voxel face of the given
// material.
func BuildNaiveMesh(r *voxel.Resolver, d *ChunkData, mat blocks.Type) *Mesh {
	m := &Mesh{}
	for y := 0; y < d.Height; y++ {
		for lz := 0; lz < d.Size; lz++ {
			for lx := 0; lx < d.Size; lx++ {
				if d.At(lx, y, lz) != mat {
					continue
				}
				for dir := 0; dir < 6; dir++ {
					if !faceVisible(r, d, mat, lx, y, lz, dir) {
						continue
					}
					fx, fy, fz := float32(lx), float32(y), float32(lz)
					switch dir {
					case 0:
						m.quad(0, fx+1, fy, fz, 1, 1)
					case 1:
						m.quad(1, fx, fy, fz, 1, 1)
					case 2:
						m.quad(2, fx, fy+1, fz, 1, 1)
					case 3:
						m.quad(3, fx, fy, fz, 1, 1)
					case 4:
						m.quad(4, fx, fy, fz+1, 1, 1)
					case 5:
						m.quad(5, fx, fy, fz, 1, 1)
					}
				}
			}
		}
	}
	return m
}

// BuildMeshes meshes every material present in the buffer, skipping
// empty results. Greedy selects the rectangle-merging mesher.
func BuildMeshes(r *voxel.Resolver, d *ChunkData, greedy bool) map[blocks.Type]*Mesh {
	out := make(map[blocks.Type]*Mesh)
	for _, mat := range d.Materials() {
		var m *Mesh
		if greedy {
			m = BuildGreedyMesh(r, d, mat)
		} else {
			m = BuildNaiveMesh(r, d, mat)
		}
		if !m.Empty() {
			out[mat] = m
		}
	}
	return out
}
