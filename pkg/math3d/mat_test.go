package math3d

import (
	"math"
	"testing"
)

const eps = 1e-9

func TestMat4Invert(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
	}{
		{"identity", Identity()},
		{"translate", Translate(V3(-0.3, -1, -10))},
		{"rotate", RotateY(DegToRad(37))},
		{"scale", Scale(V3(2, 3, 4))},
		{"model view", Translate(V3(-0.3, -1, -10)).Mul(RotateY(1.1)).Mul(RotateX(0.4))},
		{"perspective", Perspective(DegToRad(60), 16.0/9.0, 0.1, 400)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			inv, ok := tc.m.Invert()
			if !ok {
				t.Fatal("expected invertible matrix")
			}
			if got := tc.m.Mul(inv); !got.ApproxEqual(Identity(), 1e-6) {
				t.Errorf("m * m^-1 = %v, want identity", got)
			}
			if got := inv.Mul(tc.m); !got.ApproxEqual(Identity(), 1e-6) {
				t.Errorf("m^-1 * m = %v, want identity", got)
			}
		})
	}
}

func TestMat4InvertSingular(t *testing.T) {
	m := Scale(V3(1, 0, 1))
	if _, ok := m.Invert(); ok {
		t.Error("scale with a zero axis should be singular")
	}
	if got := m.Inverse(); got != Identity() {
		t.Errorf("Inverse of singular matrix = %v, want identity", got)
	}
}

func TestPerspectiveInvertible(t *testing.T) {
	for _, aspect := range []float64{0.5, 1, 4.0 / 3.0, 16.0 / 9.0} {
		p := Perspective(DegToRad(60), aspect, 0.1, 400)
		if math.Abs(p.Determinant()) < 1e-12 {
			t.Errorf("aspect %v: determinant %v is zero", aspect, p.Determinant())
		}
	}
}

func TestPerspectiveDepthRange(t *testing.T) {
	p := Perspective(DegToRad(60), 1, 0.1, 400)

	near := p.MulVec3(V3(0, 0, -0.1))
	far := p.MulVec3(V3(0, 0, -400))

	if math.Abs(near.Z+1) > 1e-6 {
		t.Errorf("near plane maps to z=%v, want -1", near.Z)
	}
	if math.Abs(far.Z-1) > 1e-6 {
		t.Errorf("far plane maps to z=%v, want 1", far.Z)
	}
}

func TestLookAtDefaultCameraIsIdentity(t *testing.T) {
	eye := Zero3()
	view := LookAt(eye, eye.Add(Forward()), Up())
	if !view.ApproxEqual(Identity(), eps) {
		t.Errorf("LookAt down -Z from origin = %v, want identity", view)
	}
}

func TestLookAtMapsTargetOntoNegativeZ(t *testing.T) {
	eye := V3(3, 0, 4)
	view := LookAt(eye, Zero3(), Up())
	p := view.MulVec3(Zero3())

	if math.Abs(p.X) > eps || math.Abs(p.Y) > eps {
		t.Errorf("target should be on the view axis, got %v", p)
	}
	if math.Abs(p.Z+5) > eps {
		t.Errorf("target distance: got z=%v, want -5", p.Z)
	}
}

func TestNormalMatrixIsInverseTranspose(t *testing.T) {
	mvs := []Mat4{
		Translate(V3(-0.3, -1, -10)).Mul(RotateY(DegToRad(45))),
		Translate(V3(1, 2, 3)).Mul(Scale(V3(1, 2, 0.5))).Mul(RotateX(0.3)),
	}

	for i, mv := range mvs {
		want, ok := Mat3FromMat4(mv).Invert()
		if !ok {
			t.Fatalf("case %d: upper 3x3 not invertible", i)
		}
		want = want.Transpose()

		if got := NormalMatrix(mv); !got.ApproxEqual(want, 1e-9) {
			t.Errorf("case %d: NormalMatrix = %v, want %v", i, got, want)
		}
	}
}

func TestNormalMatrixOfRigidTransform(t *testing.T) {
	mv := Translate(V3(-0.3, -1, -10)).Mul(RotateY(0.7))
	if got, want := NormalMatrix(mv), Mat3FromMat4(mv); !got.ApproxEqual(want, 1e-9) {
		t.Errorf("rigid normal matrix = %v, want rotation %v", got, want)
	}
}

func TestNormalMatrixKeepsNormalsPerpendicular(t *testing.T) {
	mv := Scale(V3(1, 4, 1))
	n := NormalMatrix(mv)

	// Surface of the plane x + y = 0 with normal (1,1,0) and tangent (1,-1,0).
	tangent := mv.MulVec3Dir(V3(1, -1, 0))
	normal := n.MulVec3(V3(1, 1, 0))

	if d := tangent.Dot(normal); math.Abs(d) > 1e-9 {
		t.Errorf("transformed normal not perpendicular to tangent: dot=%v", d)
	}
}

func TestMat3Invert(t *testing.T) {
	m := Mat3{2, 0, 1, 1, 3, 0, 0, 1, 4}
	inv, ok := m.Invert()
	if !ok {
		t.Fatal("expected invertible")
	}
	v := V3(0.5, -2, 7)
	if got := inv.MulVec3(m.MulVec3(v)); got.Sub(v).Len() > 1e-9 {
		t.Errorf("round trip = %v, want %v", got, v)
	}
	if _, ok := (Mat3{}).Invert(); ok {
		t.Error("zero matrix should be singular")
	}
}

func TestWithoutTranslation(t *testing.T) {
	m := Translate(V3(5, 6, 7)).Mul(RotateY(0.3))
	stripped := m.WithoutTranslation()
	if stripped.Translation() != Zero3() {
		t.Errorf("translation = %v, want zero", stripped.Translation())
	}
	if Mat3FromMat4(stripped) != Mat3FromMat4(m) {
		t.Error("rotation part changed")
	}
}

func TestTranspose(t *testing.T) {
	m := Translate(V3(1, 2, 3))
	tr := m.Transpose()
	if tr.Transpose() != m {
		t.Error("double transpose should be identity op")
	}
	if tr[3] != 1 || tr[7] != 2 || tr[11] != 3 {
		t.Errorf("translation should move to bottom row, got %v", tr)
	}
}
