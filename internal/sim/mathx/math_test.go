package mathx

import "testing"

func TestFloorDivMod(t *testing.T) {
	cases := []struct {
		a, b, q, m int
	}{
		{7, 4, 1, 3},
		{-1, 4, -1, 3},
		{-4, 4, -1, 0},
		{-5, 4, -2, 3},
		{0, 16, 0, 0},
	}
	for _, c := range cases {
		if q := FloorDiv(c.a, c.b); q != c.q {
			t.Fatalf("FloorDiv(%d,%d)=%d want %d", c.a, c.b, q, c.q)
		}
		if m := Mod(c.a, c.b); m != c.m {
			t.Fatalf("Mod(%d,%d)=%d want %d", c.a, c.b, m, c.m)
		}
	}
}

func TestDistances(t *testing.T) {
	if d := Chebyshev(0, 0, 3, -2); d != 3 {
		t.Fatalf("chebyshev=%d want 3", d)
	}
	if d := Manhattan(1, 1, -2, 4); d != 6 {
		t.Fatalf("manhattan=%d want 6", d)
	}
}
