// Package stream paces chunk meshing around a moving viewer: a
// distance-sorted pending queue, a per-frame build budget, frustum
// visibility and shadow flags, and eviction of chunks left behind.
package stream

import (
	"math"
	"sort"

	"github.com/FurryFrags/unstable-sandbox/internal/sim/blocks"
	"github.com/FurryFrags/unstable-sandbox/internal/sim/geom"
	"github.com/FurryFrags/unstable-sandbox/internal/sim/mathx"
	"github.com/FurryFrags/unstable-sandbox/internal/sim/mesh"
	"github.com/FurryFrags/unstable-sandbox/internal/sim/voxel"
)

// Key addresses a chunk column.
type Key struct {
	CX, CZ int
}

// Chunk is one resident chunk: its meshes plus per-frame flags.
type Chunk struct {
	Key        Key
	Origin     geom.Vec3
	Bounds     geom.AABB
	Meshes     map[blocks.Type]*mesh.Mesh
	Visible    bool
	CastShadow bool
}

// Dispose drops the chunk's geometry.
func (c *Chunk) Dispose() {
	c.Meshes = nil
}

type Params struct {
	ChunkSize    int
	WorldChunks  int // chunks per world side
	MaxHeight    int
	RenderRadius int // Chebyshev radius of wanted chunks
	BuildBudget  int // chunks meshed per frame
	ShadowRadius int // Chebyshev radius of shadow casters
	EvictPadding int // extra radius kept resident before eviction
	Greedy       bool
	Evict        bool
}

// Frame reports what one Update call did.
type Frame struct {
	Built   []*Chunk
	Evicted []Key
	Pending int
}

// Manager owns the resident chunk set for one viewer. All methods are
// called from the single simulation goroutine; no locking.
type Manager struct {
	p        Params
	resolver *voxel.Resolver

	built      map[Key]*Chunk
	pending    map[Key]struct{}
	queue      []Key
	builtTotal uint64
}

func NewManager(r *voxel.Resolver, p Params) *Manager {
	return &Manager{
		p:        p,
		resolver: r,
		built:    make(map[Key]*Chunk),
		pending:  make(map[Key]struct{}),
	}
}

func (m *Manager) Loaded() int        { return len(m.built) }
func (m *Manager) BuiltTotal() uint64 { return m.builtTotal }

// Get returns the resident chunk at key, or nil.
func (m *Manager) Get(k Key) *Chunk { return m.built[k] }

// Each visits every resident chunk.
func (m *Manager) Each(fn func(*Chunk)) {
	for _, c := range m.built {
		fn(c)
	}
}

// Reset drops every resident and queued chunk, used on world switch.
func (m *Manager) Reset(r *voxel.Resolver) {
	for _, c := range m.built {
		c.Dispose()
	}
	m.built = make(map[Key]*Chunk)
	m.pending = make(map[Key]struct{})
	m.queue = m.queue[:0]
	m.resolver = r
}

func (m *Manager) viewerChunk(pos geom.Vec3) Key {
	return Key{
		CX: mathx.FloorDiv(int(math.Floor(pos.X)), m.p.ChunkSize),
		CZ: mathx.FloorDiv(int(math.Floor(pos.Z)), m.p.ChunkSize),
	}
}

// Update runs one streaming frame: enqueue wanted chunks, build up to
// the budget nearest-first, refresh visibility and shadow flags, and
// evict chunks far behind the viewer.
func (m *Manager) Update(viewer geom.Vec3, viewProj geom.Mat4) Frame {
	center := m.viewerChunk(viewer)
	m.enqueueWanted(center)
	m.sortQueue(center)

	var out Frame
	for i := 0; i < m.p.BuildBudget && len(m.queue) > 0; i++ {
		k := m.queue[0]
		m.queue = m.queue[1:]
		delete(m.pending, k)
		if _, ok := m.built[k]; ok {
			continue
		}
		c := m.buildChunk(k)
		m.built[k] = c
		m.builtTotal++
		out.Built = append(out.Built, c)
	}

	fr := geom.FrustumFromMatrix(viewProj)
	for _, c := range m.built {
		c.Visible = fr.IntersectsAABB(c.Bounds)
		c.CastShadow = mathx.Chebyshev(c.Key.CX, c.Key.CZ, center.CX, center.CZ) <= m.p.ShadowRadius
	}

	if m.p.Evict {
		limit := m.p.RenderRadius + m.p.EvictPadding
		for k, c := range m.built {
			if mathx.Chebyshev(k.CX, k.CZ, center.CX, center.CZ) > limit {
				c.Dispose()
				delete(m.built, k)
				out.Evicted = append(out.Evicted, k)
			}
		}
	}

	out.Pending = len(m.queue)
	return out
}

// enqueueWanted queues every in-world chunk within the render radius
// that is neither resident nor already queued.
func (m *Manager) enqueueWanted(center Key) {
	r := m.p.RenderRadius
	for dz := -r; dz <= r; dz++ {
		for dx := -r; dx <= r; dx++ {
			k := Key{center.CX + dx, center.CZ + dz}
			if k.CX < 0 || k.CZ < 0 || k.CX >= m.p.WorldChunks || k.CZ >= m.p.WorldChunks {
				continue
			}
			if _, ok := m.built[k]; ok {
				continue
			}
			if _, ok := m.pending[k]; ok {
				continue
			}
			m.pending[k] = struct{}{}
			m.queue = append(m.queue, k)
		}
	}
}

// sortQueue keeps the queue nearest-first by Chebyshev distance.
// Stable so equidistant chunks keep their enqueue order.
func (m *Manager) sortQueue(center Key) {
	sort.SliceStable(m.queue, func(i, j int) bool {
		a := mathx.Chebyshev(m.queue[i].CX, m.queue[i].CZ, center.CX, center.CZ)
		b := mathx.Chebyshev(m.queue[j].CX, m.queue[j].CZ, center.CX, center.CZ)
		return a < b
	})
}

func (m *Manager) buildChunk(k Key) *Chunk {
	size := m.p.ChunkSize
	d := mesh.BuildChunkData(m.resolver, k.CX, k.CZ, size)
	origin := geom.Vec3{X: float64(k.CX * size), Z: float64(k.CZ * size)}
	return &Chunk{
		Key:    k,
		Origin: origin,
		Bounds: geom.AABB{
			Min: origin,
			Max: origin.Add(geom.Vec3{X: float64(size), Y: float64(m.p.MaxHeight + 1), Z: float64(size)}),
		},
		Meshes: mesh.BuildMeshes(m.resolver, d, m.p.Greedy),
	}
}
