// Package blocks defines the closed set of voxel materials and their
// render properties.
package blocks

type Type uint8

const (
	Air Type = iota
	Stone
	Dirt
	Grass
	Wood
	Leaf
	Water
	Sand
	Apple
	Snow

	count
)

var names = [count]string{
	Air:   "air",
	Stone: "stone",
	Dirt:  "dirt",
	Grass: "grass",
	Wood:  "wood",
	Leaf:  "leaf",
	Water: "water",
	Sand:  "sand",
	Apple: "apple",
	Snow:  "snow",
}

func (t Type) String() string {
	if int(t) < len(names) {
		return names[t]
	}
	return "unknown"
}

// FromName returns the material with the given wire name, or Air and
// false when the name is unknown.
func FromName(s string) (Type, bool) {
	for i, n := range names {
		if n == s {
			return Type(i), true
		}
	}
	return Air, false
}

// Material describes how a block type is shaded client-side.
type Material struct {
	Name        string  `json:"name"`
	R, G, B     uint8   `json:"-"`
	Alpha       float64 `json:"alpha"`
	Translucent bool    `json:"translucent"`
}

var materials = [count]Material{
	Stone: {Name: "stone", R: 0x88, G: 0x88, B: 0x8c, Alpha: 1},
	Dirt:  {Name: "dirt", R: 0x7a, G: 0x54, B: 0x30, Alpha: 1},
	Grass: {Name: "grass", R: 0x4f, G: 0x9d, B: 0x35, Alpha: 1},
	Wood:  {Name: "wood", R: 0x6b, G: 0x48, B: 0x22, Alpha: 1},
	Leaf:  {Name: "leaf", R: 0x2e, G: 0x7d, B: 0x28, Alpha: 1},
	Water: {Name: "water", R: 0x2a, G: 0x63, B: 0xc4, Alpha: 0.55, Translucent: true},
	Sand:  {Name: "sand", R: 0xd8, G: 0xc8, B: 0x86, Alpha: 1},
	Apple: {Name: "apple", R: 0xc6, G: 0x2a, B: 0x2a, Alpha: 1},
	Snow:  {Name: "snow", R: 0xee, G: 0xf2, B: 0xf6, Alpha: 1},
}

// MaterialOf returns the render material for a renderable block type.
func MaterialOf(t Type) Material {
	if int(t) < len(materials) {
		return materials[t]
	}
	return Material{}
}

// Renderable reports whether the type produces mesh geometry.
func (t Type) Renderable() bool {
	return t != Air && int(t) < int(count)
}

// Solid reports whether the type blocks movement and occludes
// neighboring faces.
func (t Type) Solid() bool {
	return t != Air && t != Water
}

// All lists every renderable material in stable order.
func All() []Type {
	out := make([]Type, 0, count-1)
	for t := Stone; t < count; t++ {
		out = append(out, t)
	}
	return out
}
