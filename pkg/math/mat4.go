package math

import "math"

// Mat4 is a 4x4 matrix in column-major order.
// Layout: [m0 m4 m8  m12]
//
//	[m1 m5 m9  m13]
//	[m2 m6 m10 m14]
//	[m3 m7 m11 m15]
type Mat4 [16]float32

// Identity returns an identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate returns a translation matrix.
func Translate(x, y, z float32) Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		x, y, z, 1,
	}
}

// Scale returns a scale matrix.
func Scale(x, y, z float32) Mat4 {
	return Mat4{
		x, 0, 0, 0,
		0, y, 0, 0,
		0, 0, z, 0,
		0, 0, 0, 1,
	}
}

// SRT composes scale, then an XYZ Euler rotation in radians, then
// translation. This is the mesh local transform of a model.
func SRT(s, r, t Vec3) Mat4 {
	sx, cx := sincos(r.X)
	sy, cy := sincos(r.Y)
	sz, cz := sincos(r.Z)

	return Mat4{
		s.X * cy * cz, s.X * cy * sz, s.X * -sy, 0,
		s.Y * (sx*sy*cz - cx*sz), s.Y * (sx*sy*sz + cx*cz), s.Y * sx * cy, 0,
		s.Z * (cx*cz*sy + sx*sz), s.Z * (cx*sz*sy - sx*cz), s.Z * cx * cy, 0,
		t.X, t.Y, t.Z, 1,
	}
}

// Mul multiplies this matrix by another (m * other).
func (m Mat4) Mul(other Mat4) Mat4 {
	var result Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			result[col*4+row] =
				m[0*4+row]*other[col*4+0] +
					m[1*4+row]*other[col*4+1] +
					m[2*4+row]*other[col*4+2] +
					m[3*4+row]*other[col*4+3]
		}
	}
	return result
}

// TransformPoint transforms a 3D point by this matrix (assumes w=1).
func (m Mat4) TransformPoint(p [3]float32) [3]float32 {
	x := m[0]*p[0] + m[4]*p[1] + m[8]*p[2] + m[12]
	y := m[1]*p[0] + m[5]*p[1] + m[9]*p[2] + m[13]
	z := m[2]*p[0] + m[6]*p[1] + m[10]*p[2] + m[14]
	w := m[3]*p[0] + m[7]*p[1] + m[11]*p[2] + m[15]
	if w != 0 && w != 1 {
		return [3]float32{x / w, y / w, z / w}
	}
	return [3]float32{x, y, z}
}

// TransformVec3 transforms a Vec3 point by this matrix.
func (m Mat4) TransformVec3(v Vec3) Vec3 {
	return Vec3Of(m.TransformPoint(v.Array()))
}

// Decompose splits an affine matrix into scale, XYZ Euler rotation in
// radians and translation, so that SRT(Decompose(m)) reproduces m. Shear
// is lost. A mirrored matrix reports a negative X scale.
func (m Mat4) Decompose() (scale, rotation, translation Vec3) {
	translation = Vec3{m[12], m[13], m[14]}

	c0 := Vec3{m[0], m[1], m[2]}
	c1 := Vec3{m[4], m[5], m[6]}
	c2 := Vec3{m[8], m[9], m[10]}
	scale = Vec3{c0.Length(), c1.Length(), c2.Length()}
	if c0.Cross(c1).Dot(c2) < 0 {
		scale.X = -scale.X
	}

	rot := Identity()
	scales := scale.Array()
	for i, c := range [3]Vec3{c0, c1, c2} {
		s := scales[i]
		if s == 0 {
			continue
		}
		rot[i*4+0], rot[i*4+1], rot[i*4+2] = c.X/s, c.Y/s, c.Z/s
	}
	return scale, rot.euler(), translation
}

// euler reads XYZ Euler angles from a pure rotation matrix.
func (m Mat4) euler() Vec3 {
	// Row r, column c lives at m[c*4+r].
	sy := clamp(-m[2], -1, 1)
	y := float32(math.Asin(float64(sy)))
	if abs(sy) > 0.99999 {
		// Gimbal lock: X and Z rotate about the same axis, fold into X.
		x := float32(math.Atan2(float64(m[4]*sy), float64(m[5])))
		return Vec3{X: x, Y: y}
	}
	x := float32(math.Atan2(float64(m[6]), float64(m[10])))
	z := float32(math.Atan2(float64(m[1]), float64(m[0])))
	return Vec3{X: x, Y: y, Z: z}
}

func sincos(a float32) (float32, float32) {
	s, c := math.Sincos(float64(a))
	return float32(s), float32(c)
}

func clamp(v, lo, hi float32) float32 {
	return min(max(v, lo), hi)
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
