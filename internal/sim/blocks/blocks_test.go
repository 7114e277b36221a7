package blocks

import "testing"

func TestNameRoundTrip(t *testing.T) {
	for _, typ := range All() {
		got, ok := FromName(typ.String())
		if !ok || got != typ {
			t.Fatalf("FromName(%q)=%v,%v want %v", typ.String(), got, ok, typ)
		}
	}
	if _, ok := FromName("bedrock"); ok {
		t.Fatalf("unknown name resolved")
	}
}

func TestSolidity(t *testing.T) {
	if Air.Solid() || Water.Solid() {
		t.Fatalf("air/water must not be solid")
	}
	if !Stone.Solid() || !Leaf.Solid() {
		t.Fatalf("stone/leaf must be solid")
	}
	if Air.Renderable() {
		t.Fatalf("air must not be renderable")
	}
	if !Water.Renderable() {
		t.Fatalf("water must be renderable")
	}
}
