package ideal_test

import (
	"reflect"
	"testing"

	"github.com/db47h/xbar"
	"github.com/db47h/xbar/backend"
	"github.com/db47h/xbar/backend/ideal"
)

func TestCrossbar(t *testing.T) {
	dims := xbar.Dimensions{Rows: 3, Cols: 2}
	c, err := ideal.New(dims)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = c.Compute(xbar.VectorOf(1, 1, 1)); err == nil {
		t.Fatal("expected error computing before program")
	}
	m, err := xbar.MatrixOf([][]float64{{1, 0}, {0, 1}, {1, -1}})
	if err != nil {
		t.Fatal(err)
	}
	if s, err := c.Program(m); err != nil || s != 0 {
		t.Fatalf("got %d, %v", s, err)
	}
	// the crossbar keeps a copy of G
	m.Set(0, 0, 42)
	m.Release()

	data := []struct {
		in  []float64
		out []float64
	}{
		{[]float64{1, 1, 1}, []float64{2.0 / 3, 0}},
		{[]float64{0, 0, 0}, []float64{0, 0}},
		{[]float64{0.75, 0, 0}, []float64{0.25, 0}},
		{[]float64{0, -1, 0}, []float64{0, -1.0 / 3}},
	}
	for _, d := range data {
		r, err := c.Compute(xbar.VectorOf(d.in...))
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(r.Values(), d.out) {
			t.Errorf("Compute(%v) = %v, expected %v", d.in, r.Values(), d.out)
		}
	}
	if _, err = c.Compute(xbar.VectorOf(1, 2)); err == nil {
		t.Fatal("expected error for short input")
	}
	if _, err = c.Program(xbar.NewMatrix(2, 3)); err == nil {
		t.Fatal("expected error for wrong matrix shape")
	}
	if err = c.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err = c.Compute(xbar.VectorOf(1, 1, 1)); err == nil {
		t.Fatal("expected error after close")
	}
}

func TestNew_errors(t *testing.T) {
	if _, err := ideal.New(xbar.Dimensions{Rows: 0, Cols: 2}); err == nil {
		t.Fatal("expected error")
	}
}

func TestRegistered(t *testing.T) {
	b, err := backend.Loader{}.Load(ideal.Module, nil, xbar.Dimensions{Rows: 1, Cols: 1})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := b.(*ideal.Crossbar); !ok {
		t.Fatalf("got %T", b)
	}
}
