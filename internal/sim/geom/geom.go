// Package geom holds the small linear-algebra kernel used by chunk
// streaming: vectors, column-major 4x4 matrices, boxes and frustum
// plane tests.
package geom

import "math"

type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) Len() float64 { return math.Sqrt(v.Dot(v)) }

func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Mat4 is a column-major 4x4 matrix: element (row, col) lives at
// index col*4+row.
type Mat4 [16]float64

func Identity() Mat4 {
	var m Mat4
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
	return m
}

func (m Mat4) Mul(o Mat4) Mat4 {
	var r Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var s float64
			for k := 0; k < 4; k++ {
				s += m[k*4+row] * o[col*4+k]
			}
			r[col*4+row] = s
		}
	}
	return r
}

// Perspective builds a right-handed projection with depth in [-1, 1].
func Perspective(fovY, aspect, near, far float64) Mat4 {
	f := 1 / math.Tan(fovY/2)
	var m Mat4
	m[0] = f / aspect
	m[5] = f
	m[10] = (far + near) / (near - far)
	m[11] = -1
	m[14] = 2 * far * near / (near - far)
	return m
}

// LookAt builds a right-handed view matrix.
func LookAt(eye, center, up Vec3) Mat4 {
	fwd := center.Sub(eye).Normalize()
	side := fwd.Cross(up).Normalize()
	u := side.Cross(fwd)

	m := Identity()
	m[0], m[4], m[8] = side.X, side.Y, side.Z
	m[1], m[5], m[9] = u.X, u.Y, u.Z
	m[2], m[6], m[10] = -fwd.X, -fwd.Y, -fwd.Z
	m[12] = -side.Dot(eye)
	m[13] = -u.Dot(eye)
	m[14] = fwd.Dot(eye)
	return m
}

// AABB is an axis-aligned box in world space.
type AABB struct {
	Min, Max Vec3
}

// Plane is ax+by+cz+d >= 0 for points on the kept side.
type Plane struct {
	A, B, C, D float64
}

func (p Plane) normalized() Plane {
	l := math.Sqrt(p.A*p.A + p.B*p.B + p.C*p.C)
	if l == 0 {
		return p
	}
	return Plane{p.A / l, p.B / l, p.C / l, p.D / l}
}

// Frustum is the six clip planes of a combined view-projection matrix.
type Frustum [6]Plane

// FrustumFromMatrix extracts clip planes from a column-major
// view-projection matrix (Gribb/Hartmann).
func FrustumFromMatrix(m Mat4) Frustum {
	row := func(i int) [4]float64 {
		return [4]float64{m[0*4+i], m[1*4+i], m[2*4+i], m[3*4+i]}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	var f Frustum
	f[0] = Plane{r3[0] + r0[0], r3[1] + r0[1], r3[2] + r0[2], r3[3] + r0[3]} // left
	f[1] = Plane{r3[0] - r0[0], r3[1] - r0[1], r3[2] - r0[2], r3[3] - r0[3]} // right
	f[2] = Plane{r3[0] + r1[0], r3[1] + r1[1], r3[2] + r1[2], r3[3] + r1[3]} // bottom
	f[3] = Plane{r3[0] - r1[0], r3[1] - r1[1], r3[2] - r1[2], r3[3] - r1[3]} // top
	f[4] = Plane{r3[0] + r2[0], r3[1] + r2[1], r3[2] + r2[2], r3[3] + r2[3]} // near
	f[5] = Plane{r3[0] - r2[0], r3[1] - r2[1], r3[2] - r2[2], r3[3] - r2[3]} // far
	for i := range f {
		f[i] = f[i].normalized()
	}
	return f
}

// IntersectsAABB reports whether the box is at least partially inside
// the frustum. Conservative: may keep boxes that straddle plane
// corners, never rejects a visible one.
func (f Frustum) IntersectsAABB(b AABB) bool {
	for _, p := range f {
		// positive vertex: the box corner furthest along the plane normal
		v := b.Min
		if p.A >= 0 {
			v.X = b.Max.X
		}
		if p.B >= 0 {
			v.Y = b.Max.Y
		}
		if p.C >= 0 {
			v.Z = b.Max.Z
		}
		if p.A*v.X+p.B*v.Y+p.C*v.Z+p.D < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether a point is inside the frustum.
func (f Frustum) ContainsPoint(v Vec3) bool {
	for _, p := range f {
		if p.A*v.X+p.B*v.Y+p.C*v.Z+p.D < 0 {
			return false
		}
	}
	return true
}
