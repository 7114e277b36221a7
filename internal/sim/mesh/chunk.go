package mesh

import (
	"github.com/FurryFrags/unstable-sandbox/internal/sim/blocks"
	"github.com/FurryFrags/unstable-sandbox/internal/sim/voxel"
)

// ChunkData is the dense voxel buffer for one chunk column, sampled
// once from the resolver and discarded after meshing.
type ChunkData struct {
	CX, CZ int
	Size   int // voxels along x and z
	Height int // voxels along y (MaxHeight+1 layers)
	cells  []blocks.Type
}

// BuildChunkData samples every voxel of chunk (cx, cz) from the
// resolver.
func BuildChunkData(r *voxel.Resolver, cx, cz, size int) *ChunkData {
	height := r.Terrain().Params().MaxHeight + 1
	d := &ChunkData{
		CX:     cx,
		CZ:     cz,
		Size:   size,
		Height: height,
		cells:  make([]blocks.Type, size*size*height),
	}
	ox, oz := cx*size, cz*size
	i := 0
	for y := 0; y < height; y++ {
		for lz := 0; lz < size; lz++ {
			for lx := 0; lx < size; lx++ {
				d.cells[i] = r.TypeAt(ox+lx, y, oz+lz)
				i++
			}
		}
	}
	return d
}

// At returns the buffered voxel at chunk-local coordinates.
func (d *ChunkData) At(lx, y, lz int) blocks.Type {
	return d.cells[(y*d.Size+lz)*d.Size+lx]
}

func (d *ChunkData) inBounds(lx, y, lz int) bool {
	return lx >= 0 && lz >= 0 && lx < d.Size && lz < d.Size && y >= 0 && y < d.Height
}

// typeAt answers a possibly out-of-chunk local query; boundary lookups
// fall through to the resolver so faces cull correctly against
// neighboring chunks.
func (d *ChunkData) typeAt(r *voxel.Resolver, lx, y, lz int) blocks.Type {
	if d.inBounds(lx, y, lz) {
		return d.At(lx, y, lz)
	}
	return r.TypeAt(d.CX*d.Size+lx, y, d.CZ*d.Size+lz)
}

// Materials lists the renderable block types present in the buffer.
func (d *ChunkData) Materials() []blocks.Type {
	var seen [16]bool
	out := make([]blocks.Type, 0, 6)
	for _, c := range d.cells {
		if c == blocks.Air || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
