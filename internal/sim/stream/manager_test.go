package stream

import (
	"math"
	"testing"

	"github.com/FurryFrags/unstable-sandbox/internal/sim/flora"
	"github.com/FurryFrags/unstable-sandbox/internal/sim/geom"
	"github.com/FurryFrags/unstable-sandbox/internal/sim/mathx"
	"github.com/FurryFrags/unstable-sandbox/internal/sim/terrain"
	"github.com/FurryFrags/unstable-sandbox/internal/sim/voxel"
)

func testManager(seed int64) *Manager {
	tp := terrain.DefaultParams()
	tp.WorldSize = 128
	tf := terrain.NewField(seed, tp)
	ff := flora.NewField(tf, flora.DefaultParams())
	r := voxel.NewResolver(tf, ff, voxel.DefaultParams(tp.MaxHeight))
	return NewManager(r, Params{
		ChunkSize:    16,
		WorldChunks:  128 / 16,
		MaxHeight:    tp.MaxHeight,
		RenderRadius: 2,
		BuildBudget:  3,
		ShadowRadius: 1,
		EvictPadding: 1,
		Greedy:       true,
		Evict:        true,
	})
}

func wideFrustum(eye geom.Vec3) geom.Mat4 {
	proj := geom.Perspective(math.Pi/2, 1.6, 0.1, 1000)
	view := geom.LookAt(eye, eye.Add(geom.Vec3{Z: -1}), geom.Vec3{Y: 1})
	return proj.Mul(view)
}

func TestBudgetAndDrain(t *testing.T) {
	m := testManager(1)
	viewer := geom.Vec3{X: 64, Y: 30, Z: 64}
	vp := wideFrustum(viewer)

	r := m.p.RenderRadius
	want := (2*r + 1) * (2*r + 1) // viewer centered, all in world
	frames := 0
	built := 0
	for m.Loaded() < want {
		f := m.Update(viewer, vp)
		if len(f.Built) > m.p.BuildBudget {
			t.Fatalf("frame built %d chunks, budget %d", len(f.Built), m.p.BuildBudget)
		}
		built += len(f.Built)
		frames++
		if frames > want {
			t.Fatalf("drain did not converge: loaded %d of %d", m.Loaded(), want)
		}
	}
	if built != want {
		t.Fatalf("built %d chunks, want %d", built, want)
	}
	wantFrames := (want + m.p.BuildBudget - 1) / m.p.BuildBudget
	if frames != wantFrames {
		t.Fatalf("drained in %d frames, want %d", frames, wantFrames)
	}
	// steady state: nothing further to do
	f := m.Update(viewer, vp)
	if len(f.Built) != 0 || f.Pending != 0 {
		t.Fatalf("steady state still built %d, pending %d", len(f.Built), f.Pending)
	}
}

func TestNearestFirst(t *testing.T) {
	m := testManager(2)
	viewer := geom.Vec3{X: 64, Y: 30, Z: 64}
	vp := wideFrustum(viewer)
	center := m.viewerChunk(viewer)

	f := m.Update(viewer, vp)
	prev := 0
	for _, c := range f.Built {
		d := mathx.Chebyshev(c.Key.CX, c.Key.CZ, center.CX, center.CZ)
		if d < prev {
			t.Fatalf("build order not nearest-first: distance %d after %d", d, prev)
		}
		prev = d
	}
	if len(f.Built) == 0 {
		t.Fatalf("first frame built nothing")
	}
	if f.Built[0].Key != center {
		t.Fatalf("first built chunk %v, want viewer chunk %v", f.Built[0].Key, center)
	}
}

func TestWorldEdgeClipsWanted(t *testing.T) {
	m := testManager(3)
	viewer := geom.Vec3{X: 1, Y: 30, Z: 1} // corner chunk (0,0)
	vp := wideFrustum(viewer)
	total := 0
	for i := 0; i < 20; i++ {
		total += len(m.Update(viewer, vp).Built)
	}
	want := (m.p.RenderRadius + 1) * (m.p.RenderRadius + 1)
	if total != want {
		t.Fatalf("corner viewer built %d chunks, want %d", total, want)
	}
}

func TestShadowFlag(t *testing.T) {
	m := testManager(4)
	viewer := geom.Vec3{X: 64, Y: 30, Z: 64}
	vp := wideFrustum(viewer)
	for i := 0; i < 20; i++ {
		m.Update(viewer, vp)
	}
	center := m.viewerChunk(viewer)
	m.Each(func(c *Chunk) {
		near := mathx.Chebyshev(c.Key.CX, c.Key.CZ, center.CX, center.CZ) <= m.p.ShadowRadius
		if c.CastShadow != near {
			t.Fatalf("chunk %v shadow=%v at distance beyond radius", c.Key, c.CastShadow)
		}
	})
}

func TestEvictionBehindViewer(t *testing.T) {
	m := testManager(5)
	a := geom.Vec3{X: 8, Y: 30, Z: 64}
	for i := 0; i < 30; i++ {
		m.Update(a, wideFrustum(a))
	}
	if m.Get(Key{0, 4}) == nil {
		t.Fatalf("chunk near first viewer not resident")
	}
	// march the viewer across the world
	b := geom.Vec3{X: 120, Y: 30, Z: 64}
	var evicted []Key
	for i := 0; i < 30; i++ {
		evicted = append(evicted, m.Update(b, wideFrustum(b)).Evicted...)
	}
	if len(evicted) == 0 {
		t.Fatalf("no chunks evicted after crossing the world")
	}
	if m.Get(Key{0, 4}) != nil {
		t.Fatalf("far chunk survived eviction")
	}
	center := m.viewerChunk(b)
	limit := m.p.RenderRadius + m.p.EvictPadding
	m.Each(func(c *Chunk) {
		if mathx.Chebyshev(c.Key.CX, c.Key.CZ, center.CX, center.CZ) > limit {
			t.Fatalf("chunk %v resident beyond eviction limit", c.Key)
		}
	})
}

func TestResetDropsEverything(t *testing.T) {
	m := testManager(6)
	viewer := geom.Vec3{X: 64, Y: 30, Z: 64}
	for i := 0; i < 10; i++ {
		m.Update(viewer, wideFrustum(viewer))
	}
	if m.Loaded() == 0 {
		t.Fatalf("nothing loaded before reset")
	}
	m.Reset(m.resolver)
	if m.Loaded() != 0 {
		t.Fatalf("reset left %d chunks resident", m.Loaded())
	}
	// streaming restarts cleanly
	f := m.Update(viewer, wideFrustum(viewer))
	if len(f.Built) == 0 {
		t.Fatalf("no chunks rebuilt after reset")
	}
}

func TestVisibilityBehindCamera(t *testing.T) {
	m := testManager(7)
	viewer := geom.Vec3{X: 64, Y: 30, Z: 64}
	vp := wideFrustum(viewer) // looking toward -Z
	for i := 0; i < 20; i++ {
		m.Update(viewer, vp)
	}
	center := m.viewerChunk(viewer)
	behind := m.Get(Key{center.CX, center.CZ + 2})
	ahead := m.Get(Key{center.CX, center.CZ - 2})
	if behind == nil || ahead == nil {
		t.Fatalf("expected chunks both sides of the viewer")
	}
	if behind.Visible {
		t.Fatalf("chunk fully behind the camera marked visible")
	}
	if !ahead.Visible {
		t.Fatalf("chunk ahead of the camera marked hidden")
	}
}
