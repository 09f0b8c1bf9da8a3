package orbitplane

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

func TestFrameIdentity(t *testing.T) {
	f, err := NewFrame(Orthonormalize(Vector3{1, 0, 0}, Vector3{1, 1, 0}, Vector3{0, 0, 1}))
	if err != nil {
		t.Fatal(err)
	}
	if got := f.Transform(Vector3{2, 3, 4}); !vectorsEqual(got, Vector3{2, 3, 4}, eps) {
		t.Fatalf("identity frame changed the vector: %s", got)
	}
	if !mat.EqualApprox(f.inverse, mat.NewDiagDense(3, []float64{1, 1, 1}), eps) {
		t.Logf("\n%v", mat.Formatted(f.inverse))
		t.Fatal("inverse of the identity basis is not the identity")
	}
}

func TestFrameColumns(t *testing.T) {
	basis := Orthonormalize(Vector3{1, 1, 0}, Vector3{-1, 2, 0}, Vector3{0, 0, 1})
	f, err := NewFrame(basis)
	if err != nil {
		t.Fatal(err)
	}
	for c, b := range basis {
		col := mat.Col(nil, c, f.forward)
		if !vectorsEqual(NewVector3(col), b, 0) {
			t.Fatalf("column %d is %v, expected %s", c, col, b)
		}
		// Each basis vector becomes the matching unit axis.
		exp := Vector3{}
		switch c {
		case 0:
			exp.X = 1
		case 1:
			exp.Y = 1
		case 2:
			exp.Z = 1
		}
		if got := f.Transform(b); !vectorsEqual(got, exp, eps) {
			t.Fatalf("axis %d maps to %s", c, got)
		}
	}
	if f.Normal() != basis[2] {
		t.Fatal("normal is not the third axis")
	}
	// Rotated by 45 degrees about z.
	got := f.Transform(Vector3{0, 2, 5})
	if !vectorsEqual(got, Vector3{math.Sqrt2, math.Sqrt2, 5}, eps) {
		t.Fatalf("rotation incorrect: %s", got)
	}
}

func TestFrameRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for n := 0; n < 200; n++ {
		f, err := NewFrame(Orthonormalize(randomVector(rng, 1e6), randomVector(rng, 1), Vector3{0, 0, 1}))
		if err != nil {
			t.Fatal(err)
		}
		// For an orthonormal basis the inverse is the transpose.
		if !mat.EqualApprox(f.inverse, f.forward.T(), eps) {
			t.Logf("\n%v\n%v", mat.Formatted(f.inverse), mat.Formatted(f.forward))
			t.Fatal("inverse is not the transpose")
		}
		for k := 0; k < 10; k++ {
			v := randomVector(rng, 1e9)
			w := f.Transform(v)
			if !vectorsEqualRel(f.Restore(w), v, 1e-12) {
				t.Fatalf("round trip %s -> %s -> %s", v, w, f.Restore(w))
			}
			if !vectorsEqualRel(Vector3{w.Length(), 0, 0}, Vector3{v.Length(), 0, 0}, 1e-12) {
				t.Fatal("transform did not preserve the norm")
			}
		}
	}
}

func TestFrameNonOrthonormalRoundTrip(t *testing.T) {
	// Any invertible basis works, orthonormal or not.
	f, err := NewFrame([]Vector3{{2, 0, 0}, {1, 3, 0}, {0, 1, 4}})
	if err != nil {
		t.Fatal(err)
	}
	v := Vector3{-7, 0.25, 12}
	if got := f.Restore(f.Transform(v)); !vectorsEqual(got, v, 1e-12) {
		t.Fatalf("round trip %s -> %s", v, got)
	}
	if got := f.Transform(Vector3{1, 3, 0}); !vectorsEqual(got, Vector3{0, 1, 0}, 1e-12) {
		t.Fatalf("second basis vector maps to %s", got)
	}
}

func TestFrameDegenerate(t *testing.T) {
	v := Vector3{3, 4, 5}
	cases := map[string][]Vector3{
		"identical seeds":   Orthonormalize(v, v, Vector3{0, 0, 1}),
		"up along position": Orthonormalize(Vector3{0, 0, 8}, Vector3{1, 0, 0}, Vector3{0, 0, 1}),
		"zero seed":         Orthonormalize(Vector3{}, Vector3{1, 0, 0}, Vector3{0, 0, 1}),
		"dependent columns": {{1, 0, 0}, {0, 1, 0}, {1, 1, 0}},
		"two vectors":       {{1, 0, 0}, {0, 1, 0}},
		"four vectors":      {{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {1, 1, 1}},
	}
	for name, basis := range cases {
		f, err := NewFrame(basis)
		if !errors.Is(err, ErrDegenerateBasis) {
			t.Fatalf("[%s] expected ErrDegenerateBasis, got %v", name, err)
		}
		if f != nil {
			t.Fatalf("[%s] frame returned along with an error", name)
		}
	}
}

func TestMxV33(t *testing.T) {
	s, c := math.Sincos(math.Pi / 3)
	r3 := mat.NewDense(3, 3, []float64{c, s, 0, -s, c, 0, 0, 0, 1})
	got := MxV33(r3, Vector3{1, 0, 2})
	if !vectorsEqual(got, Vector3{c, -s, 2}, eps) {
		t.Fatalf("R3 rotation incorrect: %s", got)
	}
}
