package overview

import (
	"testing"

	"github.com/FurryFrags/unstable-sandbox/internal/sim/terrain"
)

func testField(seed int64) *terrain.Field {
	p := terrain.DefaultParams()
	p.WorldSize = 128
	return terrain.NewField(seed, p)
}

func TestPixelMappingRoundTrip(t *testing.T) {
	f := testField(1)
	px := 64 // world is 128, so 2 columns per pixel
	for _, c := range [][2]int{{0, 0}, {127, 127}, {64, 3}, {5, 120}} {
		ix, iz := WorldToPixel(f, c[0], c[1], px)
		if ix < 0 || iz < 0 || ix >= px || iz >= px {
			t.Fatalf("world (%d,%d) mapped off-image to (%d,%d)", c[0], c[1], ix, iz)
		}
		wx, wz := PixelToWorld(f, ix, iz, px)
		// round trip lands within one pixel's worth of columns
		if d := c[0] - wx; d < 0 || d >= 128/px*2 {
			t.Fatalf("x round trip drifted: %d -> %d", c[0], wx)
		}
		if d := c[1] - wz; d < 0 || d >= 128/px*2 {
			t.Fatalf("z round trip drifted: %d -> %d", c[1], wz)
		}
	}
}

func TestWaterReadsBlue(t *testing.T) {
	f := testField(7)
	found := false
	for z := 0; z < 128 && !found; z++ {
		for x := 0; x < 128 && !found; x++ {
			if _, has := f.WaterAt(x, z); !has {
				continue
			}
			c := SurfaceColorAt(f, x, z)
			if c.B <= c.R || c.B <= c.G {
				t.Fatalf("water at (%d,%d) not blue: %+v", x, z, c)
			}
			found = true
		}
	}
	if !found {
		t.Fatalf("no water column found")
	}
}

func TestImageDeterministic(t *testing.T) {
	a := BuildImage(testField(3), 32)
	b := BuildImage(testField(3), 32)
	if len(a.Pix) != len(b.Pix) {
		t.Fatalf("image sizes differ")
	}
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatalf("overview images diverge at byte %d", i)
		}
	}
	if BuildImage(testField(4), 32).Pix[0] == a.Pix[0] &&
		string(BuildImage(testField(4), 32).Pix) == string(a.Pix) {
		t.Fatalf("different seeds produced identical overviews")
	}
}

func TestOpaquePixels(t *testing.T) {
	img := BuildImage(testField(9), 16)
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 255 {
			t.Fatalf("transparent overview pixel at byte %d", i)
		}
	}
}
