package xbar

import (
	"testing"

	"github.com/db47h/xbar/fli"
	"github.com/db47h/xbar/sim"
)

func TestInstance_readFailure(t *testing.T) {
	k := sim.New(sim.Config{})
	prog, err := k.NewSignal("/T/prog", fli.ArrayOf(fli.ArrayOf(fli.IntegerType, 2), 2))
	if err != nil {
		t.Fatal(err)
	}
	comp, err := k.NewSignal("/T/comp", fli.ArrayOf(fli.IntegerType, 2))
	if err != nil {
		t.Fatal(err)
	}
	in := &Instance{
		k:   k,
		cfg: Config{Dims: Dimensions{Rows: 3, Cols: 2}, Codec: Symmetric{}},
		sig: signals{ProgramInput: prog, ComputeInput: comp},
	}
	for name, op := range map[string]func() error{"program": in.program, "compute": in.compute} {
		if err := op(); KindOf(err) != BackendCallFailure {
			t.Errorf("%s: got %v (kind %v), expected a backend call failure", name, err, KindOf(err))
		}
	}
}
