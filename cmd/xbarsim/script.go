// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"math"

	"github.com/db47h/xbar/fli"
	"github.com/db47h/xbar/hwtest"
	"github.com/db47h/xbar/internal/hdl"
	"github.com/pkg/errors"
)

// runner executes script statements on a bench.
//
type runner struct {
	b    *hwtest.Bench
	tol  float64
	w    io.Writer
	last fli.Value // last compute output
}

func (r *runner) exec(st *hdl.Statement) error {
	switch st.Op {
	case "reset":
		n, err := count(st)
		if err != nil {
			return err
		}
		r.b.SetReset(true)
		err = r.b.Cycle(n)
		r.b.SetReset(false)
		return err
	case "idle":
		n, err := count(st)
		if err != nil {
			return err
		}
		return r.b.Cycle(n)
	case "program":
		m := make([][]int32, len(st.Rows))
		for i, row := range st.Rows {
			v, err := ints(row)
			if err != nil {
				return err
			}
			m[i] = v
		}
		return r.b.Program(m)
	case "compute":
		v, err := ints(st.Args())
		if err != nil {
			return err
		}
		out, err := r.b.Compute(v)
		if err != nil {
			return err
		}
		r.last = out
		fmt.Fprintf(r.w, "compute %v => %v\n", fli.IntArray(v), out)
		return nil
	case "expect":
		return r.expect(st.Args())
	}
	return errors.Errorf("unknown statement %q", st.Op)
}

func count(st *hdl.Statement) (int, error) {
	args := st.Args()
	switch len(args) {
	case 0:
		return 1, nil
	case 1:
		if a := args[0]; a.Type == hdl.Int && a.Int > 0 && a.Int <= math.MaxInt32 {
			return int(a.Int), nil
		}
	}
	return 0, errors.New("expected a positive cycle count")
}

func toInt32(a hdl.Arg) (int32, error) {
	switch a.Type {
	case hdl.Int:
		if a.Int >= math.MinInt32 && a.Int <= math.MaxInt32 {
			return int32(a.Int), nil
		}
		return 0, errors.Errorf("value %d out of range", a.Int)
	case hdl.Ident:
		switch a.Ident {
		case "max":
			return math.MaxInt32, nil
		case "min":
			return math.MinInt32, nil
		}
	}
	return 0, errors.Errorf("expected integer value, got %v", a)
}

func ints(args []hdl.Arg) ([]int32, error) {
	v := make([]int32, len(args))
	for i, a := range args {
		x, err := toInt32(a)
		if err != nil {
			return nil, err
		}
		v[i] = x
	}
	return v, nil
}

func (r *runner) expect(args []hdl.Arg) error {
	switch out := r.last.(type) {
	case nil:
		return errors.New("no compute output to check")
	case fli.RealArray:
		if len(args) != len(out) {
			return errors.Errorf("expected %d values, got %d", len(out), len(args))
		}
		for i, a := range args {
			var ex float64
			switch a.Type {
			case hdl.Float:
				ex = a.Float
			case hdl.Int:
				ex = float64(a.Int)
			default:
				return errors.Errorf("expected real value, got %v", a)
			}
			if math.Abs(out[i]-ex) > r.tol {
				return errors.Errorf("output %d: got %v, expected %v", i, out[i], ex)
			}
		}
	case fli.IntArray:
		ex, err := ints(args)
		if err != nil {
			return err
		}
		if len(ex) != len(out) {
			return errors.Errorf("expected %d values, got %d", len(out), len(ex))
		}
		for i := range ex {
			if ex[i] != out[i] {
				return errors.Errorf("output %d: got %d, expected %d", i, out[i], ex[i])
			}
		}
	}
	return nil
}
