package math

import (
	"math"
	"testing"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 0.001
}

func nearVec3(a, b Vec3) bool {
	return near(a.X, b.X) && near(a.Y, b.Y) && near(a.Z, b.Z)
}

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("Identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
	if e := q.Euler(); e != (Vec3{}) {
		t.Errorf("Identity Euler() = %v, want zero", e)
	}
}

func TestQuatNormalize(t *testing.T) {
	q := Quat{X: 1, Y: 2, Z: 3, W: 4}
	n := q.Normalize()

	length := float32(math.Sqrt(float64(n.X*n.X + n.Y*n.Y + n.Z*n.Z + n.W*n.W)))
	if !near(length, 1) {
		t.Errorf("Normalized quaternion length should be 1, got %v", length)
	}
	if got := (Quat{}).Normalize(); got != QuatIdentity() {
		t.Errorf("zero quaternion normalizes to %v, want identity", got)
	}
}

func TestQuatFromAxisAngle(t *testing.T) {
	// 90 degrees around Y axis
	q := QuatFromAxisAngle(Vec3{X: 0, Y: 1, Z: 0}, float32(math.Pi/2))

	expectedW := float32(math.Cos(math.Pi / 4))
	expectedY := float32(math.Sin(math.Pi / 4))

	if !near(q.W, expectedW) {
		t.Errorf("QuatFromAxisAngle W: expected %v, got %v", expectedW, q.W)
	}
	if !near(q.Y, expectedY) {
		t.Errorf("QuatFromAxisAngle Y: expected %v, got %v", expectedY, q.Y)
	}

	// (1,0,0) turns to (0,0,-1)
	if got := q.Rotate(Vec3{X: 1}); !nearVec3(got, Vec3{Z: -1}) {
		t.Errorf("Rotate = %v, want (0,0,-1)", got)
	}
}

func TestQuatEuler(t *testing.T) {
	tests := []struct {
		name  string
		euler Vec3
	}{
		{"x only", Vec3{X: 0.5}},
		{"y only", Vec3{Y: -1.2}},
		{"z only", Vec3{Z: 2.5}},
		{"mixed", Vec3{X: 0.3, Y: -0.7, Z: 1.1}},
		{"large x and z", Vec3{X: -2.9, Y: 0.2, Z: 3.0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := QuatFromEuler(tt.euler).Euler()
			if !nearVec3(got, tt.euler) {
				t.Errorf("Euler() = %v, want %v", got, tt.euler)
			}
		})
	}
}

func TestQuatEuler_Gimbal(t *testing.T) {
	// At Y = 90 degrees only X-Z matters; the result must still describe the
	// same rotation.
	in := Vec3{X: 0.4, Y: float32(math.Pi / 2), Z: 0.1}
	q := QuatFromEuler(in)
	e := q.Euler()
	if e.Z != 0 {
		t.Errorf("Z = %v, want 0 at the pole", e.Z)
	}
	for _, p := range []Vec3{{X: 1}, {Y: 1}, {Z: 1}} {
		want := q.Rotate(p)
		got := QuatFromEuler(e).Rotate(p)
		if !nearVec3(got, want) {
			t.Errorf("rotating %v: got %v, want %v", p, got, want)
		}
	}
}

func TestSRT_MatchesQuat(t *testing.T) {
	r := Vec3{X: 0.3, Y: -0.7, Z: 1.1}
	m := SRT(Vec3{1, 1, 1}, r, Vec3{})
	q := QuatFromEuler(r).ToMat4()
	for i := range m {
		if !near(m[i], q[i]) {
			t.Fatalf("element %d: SRT %v, quaternion %v", i, m[i], q[i])
		}
	}
}
