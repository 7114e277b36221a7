package protocol

import (
	"encoding/base64"
	"fmt"
	"math"

	"github.com/klauspost/compress/zstd"

	"github.com/FurryFrags/unstable-sandbox/internal/sim/blocks"
	"github.com/FurryFrags/unstable-sandbox/internal/sim/mesh"
)

const MeshEncoding = "zstd"

var (
	zstdEnc, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	zstdDec, _ = zstd.NewReader(nil)
)

func packFloats(fs []float32) string {
	raw := make([]byte, 4*len(fs))
	for i, f := range fs {
		bits := math.Float32bits(f)
		raw[4*i] = byte(bits)
		raw[4*i+1] = byte(bits >> 8)
		raw[4*i+2] = byte(bits >> 16)
		raw[4*i+3] = byte(bits >> 24)
	}
	return base64.StdEncoding.EncodeToString(zstdEnc.EncodeAll(raw, nil))
}

func unpackFloats(s string) ([]float32, error) {
	comp, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("mesh payload base64: %w", err)
	}
	raw, err := zstdDec.DecodeAll(comp, nil)
	if err != nil {
		return nil, fmt.Errorf("mesh payload zstd: %w", err)
	}
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("mesh payload: %d bytes not float32 aligned", len(raw))
	}
	fs := make([]float32, len(raw)/4)
	for i := range fs {
		bits := uint32(raw[4*i]) | uint32(raw[4*i+1])<<8 | uint32(raw[4*i+2])<<16 | uint32(raw[4*i+3])<<24
		fs[i] = math.Float32frombits(bits)
	}
	return fs, nil
}

// EncodeMeshPayload compresses one material mesh for the wire.
func EncodeMeshPayload(mat blocks.Type, m *mesh.Mesh) MeshPayload {
	return MeshPayload{
		Material:    mat.String(),
		VertexCount: m.VertexCount(),
		Encoding:    MeshEncoding,
		Positions:   packFloats(m.Positions),
		Normals:     packFloats(m.Normals),
	}
}

// DecodeMeshPayload inflates a wire payload back into a mesh.
func DecodeMeshPayload(p MeshPayload) (blocks.Type, *mesh.Mesh, error) {
	mat, ok := blocks.FromName(p.Material)
	if !ok {
		return 0, nil, fmt.Errorf("unknown material %q", p.Material)
	}
	if p.Encoding != MeshEncoding {
		return 0, nil, fmt.Errorf("unknown mesh encoding %q", p.Encoding)
	}
	pos, err := unpackFloats(p.Positions)
	if err != nil {
		return 0, nil, err
	}
	norm, err := unpackFloats(p.Normals)
	if err != nil {
		return 0, nil, err
	}
	if len(pos) != len(norm) || len(pos) != 3*p.VertexCount {
		return 0, nil, fmt.Errorf("mesh payload shape: %d positions, %d normals, %d vertices", len(pos), len(norm), p.VertexCount)
	}
	return mat, &mesh.Mesh{Positions: pos, Normals: norm}, nil
}

// MaterialInfos lists every renderable material for the WELCOME
// message.
func MaterialInfos() []MaterialInfo {
	var out []MaterialInfo
	for _, t := range blocks.All() {
		m := blocks.MaterialOf(t)
		out = append(out, MaterialInfo{
			Name:        m.Name,
			Color:       fmt.Sprintf("#%02x%02x%02x", m.R, m.G, m.B),
			Alpha:       m.Alpha,
			Translucent: m.Translucent,
		})
	}
	return out
}
