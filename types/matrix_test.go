package types

import "testing"

func TestMat4Inverse(t *testing.T) {
	m := Mat4{
		10, 0, 0, 1,
		0, 2, 0, 2,
		0, 0, 4, -3,
		0, 0, 0, 1,
	}

	inv, ok := m.Inv()
	if !ok {
		t.Fatal("expected matrix to be invertible")
	}

	if got := m.Mul4(inv); !got.ApproxEqual(Ident4(), 1e-5) {
		t.Fatalf("expected m * inv(m) to be the identity; got %v", got)
	}

	p := XYZ(1, 2, 3)
	roundTrip := inv.MulPoint(m.MulPoint(p))
	if roundTrip.Sub(p).Len() > 1e-5 {
		t.Fatalf("expected point round-trip to yield %v; got %v", p, roundTrip)
	}
}

func TestMat4SingularInverse(t *testing.T) {
	specs := []struct {
		m          Mat4
		invertible bool
	}{
		{Scale4(0), false},
		{Mat4{1, 2, 3, 0, 2, 4, 6, 0, 0, 0, 1, 0, 0, 0, 0, 1}, false},
		{Scale4(0.009), true},
		{Scale4(0.005), true},
		{Translate4(XYZ(1, 2, 3)).Mul4(Scale4(0.001)), true},
	}

	for specIndex, spec := range specs {
		inv, ok := spec.m.Inv()
		if ok != spec.invertible {
			t.Fatalf("[spec %d] expected invertible to be %t; got %t", specIndex, spec.invertible, ok)
		}
		if !ok {
			continue
		}

		p := XYZ(0.5, -1, 2)
		if got := spec.m.MulPoint(inv.MulPoint(p)); got.Sub(p).Len() > 1e-4 {
			t.Fatalf("[spec %d] expected point round-trip to yield %v; got %v", specIndex, p, got)
		}
	}
}

func TestMat4RowMajorTranslation(t *testing.T) {
	m := Translate4(XYZ(0, 2, -3))
	got := m.MulPoint(Vec3{})
	exp := XYZ(0, 2, -3)
	if got != exp {
		t.Fatalf("expected translated origin to be %v; got %v", exp, got)
	}

	if dir := m.MulVector(XYZ(1, 0, 0)); dir != XYZ(1, 0, 0) {
		t.Fatalf("expected directions to ignore translation; got %v", dir)
	}
}

func TestMat4MulOrder(t *testing.T) {
	tr := Translate4(XYZ(1, 0, 0))
	sc := Scale4(2)

	// Scale first, then translate.
	got := tr.Mul4(sc).MulPoint(XYZ(1, 1, 1))
	exp := XYZ(3, 2, 2)
	if got.Sub(exp).Len() > 1e-6 {
		t.Fatalf("expected %v; got %v", exp, got)
	}
}
