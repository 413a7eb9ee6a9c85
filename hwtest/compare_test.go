package hwtest_test

import (
	"testing"

	"github.com/db47h/xbar"
	"github.com/db47h/xbar/backend/ideal"
	"github.com/db47h/xbar/fli"
	"github.com/db47h/xbar/hwtest"
)

func TestCompareBackend(t *testing.T) {
	for _, d := range []xbar.Dimensions{{Rows: 3, Cols: 2}, {Rows: 1, Cols: 1}, {Rows: 8, Cols: 5}} {
		t.Run(d.String(), func(t *testing.T) {
			hwtest.CompareBackend(t, d, ideal.Module, ideal.Multiply, 16)
		})
	}
}

func TestBench_omit(t *testing.T) {
	b, err := hwtest.NewBench(hwtest.Config{Omit: []string{xbar.PortClk, xbar.PortOutput}})
	if err != nil {
		t.Fatal(err)
	}
	if b.Clock != nil {
		t.Fatal("clock created without a clock signal")
	}
	if b.Signal(xbar.PortOutput) != nil {
		t.Fatal("output signal created")
	}
	if err = b.Cycle(1); err == nil {
		t.Fatal("expected error running a bench without clock")
	}
}

func TestBench_intOutput(t *testing.T) {
	b, err := hwtest.NewBench(hwtest.Config{Output: fli.IntegerType})
	if err != nil {
		t.Fatal(err)
	}
	if tp := b.Signal(xbar.PortOutput).Type(); tp.String() != "array(0 to 1) of integer" {
		t.Fatalf("bad output type %v", tp)
	}
}
