// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package sim

import (
	"strconv"
	"strings"

	"github.com/db47h/xbar/fli"
	"github.com/pkg/errors"
)

// Signal is a signal of the simulated design.
//
// Arrays of arrays are stored as a list of element signals, one per row,
// each with its own value. The value of the parent is the row-major
// concatenation of its elements.
//
type Signal struct {
	path   string
	typ    *fli.Type
	ints   []int32
	reals  []float64
	elems  []*Signal
	parent *Signal
	drv    *Driver
	event  bool // value changed in the current delta
	watch  []func(now fli.Time, v fli.Value)
	k      *Kernel
}

func newSignal(k *Kernel, path string, typ *fli.Type) *Signal {
	s := &Signal{path: path, typ: typ, k: k}
	switch {
	case typ.Kind == fli.Array && typ.Elem.Kind == fli.Array:
		s.elems = make([]*Signal, typ.Len)
		for i := range s.elems {
			e := newSignal(k, path+"("+strconv.Itoa(i)+")", typ.Elem)
			e.parent = s
			s.elems[i] = e
		}
	case typ.Scalar().Kind == fli.Real:
		s.reals = make([]float64, typ.TickLength())
	default:
		n := 1
		if typ.Kind == fli.Array {
			n = typ.Len
		}
		s.ints = make([]int32, n)
	}
	return s
}

// Name returns the simple name of s.
//
func (s *Signal) Name() string {
	if i := strings.LastIndexByte(s.path, '/'); i >= 0 {
		return s.path[i+1:]
	}
	return s.path
}

// Path returns the full hierarchical path of s.
//
func (s *Signal) Path() string { return s.path }

// Type returns the signal type.
//
func (s *Signal) Type() *fli.Type { return s.typ }

// Value returns a copy of the current value of s.
//
func (s *Signal) Value() fli.Value {
	switch {
	case s.elems != nil:
		var out fli.IntArray
		for _, e := range s.elems {
			out = append(out, e.ints...)
		}
		return out
	case s.reals != nil:
		return append(fli.RealArray(nil), s.reals...)
	case s.typ.Kind == fli.Array:
		return append(fli.IntArray(nil), s.ints...)
	}
	return fli.Scalar(s.ints[0])
}

// Logic returns the std_logic value of a scalar signal.
//
func (s *Signal) Logic() fli.Logic { return fli.LogicOf(s.Value()) }

// Elements returns the element signals of an array of arrays.
//
func (s *Signal) Elements() []fli.Signal {
	if s.elems == nil {
		return nil
	}
	out := make([]fli.Signal, len(s.elems))
	for i, e := range s.elems {
		out[i] = e
	}
	return out
}

// Watch registers fn to be called after every event on s.
//
func (s *Signal) Watch(fn func(now fli.Time, v fli.Value)) {
	s.watch = append(s.watch, fn)
}

// check verifies that v can be assigned to s.
//
func (s *Signal) check(v fli.Value) error {
	n := s.typ.TickLength()
	if s.elems != nil {
		n = len(s.elems) * s.typ.Elem.TickLength()
	}
	switch v := v.(type) {
	case fli.Scalar:
		if s.typ.Kind != fli.Array && s.reals == nil {
			return nil
		}
	case fli.IntArray:
		if s.typ.Kind == fli.Array && s.reals == nil && len(v) == n {
			return nil
		}
	case fli.RealArray:
		if s.reals != nil && len(v) == len(s.reals) {
			return nil
		}
	}
	return errors.Errorf("cannot assign %T of length %d to signal %s of type %v", v, valueLen(v), s.path, s.typ)
}

// set assigns v to s and reports whether the value changed. v must have
// passed check.
//
func (s *Signal) set(v fli.Value) bool {
	changed := false
	switch v := v.(type) {
	case fli.Scalar:
		if s.ints[0] != int32(v) {
			s.ints[0] = int32(v)
			changed = true
		}
	case fli.IntArray:
		if s.elems != nil {
			w := s.typ.Elem.Len
			for i, e := range s.elems {
				if e.set(v[i*w : (i+1)*w]) {
					changed = true
				}
			}
			break
		}
		for i, x := range v {
			if s.ints[i] != x {
				s.ints[i] = x
				changed = true
			}
		}
	case fli.RealArray:
		for i, x := range v {
			if s.reals[i] != x {
				s.reals[i] = x
				changed = true
			}
		}
	}
	if changed {
		s.markEvent()
		if s.parent != nil {
			s.parent.markEvent()
		}
	}
	return changed
}

func (s *Signal) markEvent() {
	if !s.event {
		s.event = true
		s.k.events = append(s.k.events, s)
	}
}

func (s *Signal) reset() {
	for i := range s.ints {
		s.ints[i] = 0
	}
	for i := range s.reals {
		s.reals[i] = 0
	}
	for _, e := range s.elems {
		e.reset()
	}
	s.drv = nil
	s.event = false
}

func valueLen(v fli.Value) int {
	switch v := v.(type) {
	case fli.IntArray:
		return len(v)
	case fli.RealArray:
		return len(v)
	}
	return 1
}

func copyValue(v fli.Value) fli.Value {
	switch v := v.(type) {
	case fli.IntArray:
		return append(fli.IntArray(nil), v...)
	case fli.RealArray:
		return append(fli.RealArray(nil), v...)
	}
	return v
}
