package protocol

import (
	"testing"

	"github.com/FurryFrags/unstable-sandbox/internal/sim/blocks"
	"github.com/FurryFrags/unstable-sandbox/internal/sim/mesh"
)

func TestMeshPayloadRoundTrip(t *testing.T) {
	m := &mesh.Mesh{
		Positions: []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 0, 0, 1, 1, 0, 0, 1, 0},
		Normals:   []float32{0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1},
	}
	p := EncodeMeshPayload(blocks.Grass, m)
	if p.Material != "grass" || p.Encoding != MeshEncoding {
		t.Fatalf("bad payload header: %+v", p)
	}
	if p.VertexCount != 6 {
		t.Fatalf("vertex count %d want 6", p.VertexCount)
	}

	mat, got, err := DecodeMeshPayload(p)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if mat != blocks.Grass {
		t.Fatalf("material %v want grass", mat)
	}
	for i := range m.Positions {
		if got.Positions[i] != m.Positions[i] || got.Normals[i] != m.Normals[i] {
			t.Fatalf("float %d changed in transit", i)
		}
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, _, err := DecodeMeshPayload(MeshPayload{Material: "lava"}); err == nil {
		t.Fatalf("unknown material accepted")
	}
	if _, _, err := DecodeMeshPayload(MeshPayload{Material: "grass", Encoding: "raw"}); err == nil {
		t.Fatalf("unknown encoding accepted")
	}
	if _, _, err := DecodeMeshPayload(MeshPayload{Material: "grass", Encoding: MeshEncoding, Positions: "!!"}); err == nil {
		t.Fatalf("bad base64 accepted")
	}
}

func TestIsKnownCode(t *testing.T) {
	cases := []string{
		"",
		ErrProtoBadRequest,
		ErrVersionMismatch,
		ErrWorldNotFound,
		ErrWorldExists,
		ErrPinNotFound,
		ErrBadRequest,
		ErrInternal,
	}
	for _, c := range cases {
		if !IsKnownCode(c) {
			t.Fatalf("expected known code: %q", c)
		}
	}
	if IsKnownCode("E_NOT_DEFINED") {
		t.Fatalf("expected unknown code rejected")
	}
}
