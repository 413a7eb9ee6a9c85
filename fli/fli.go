// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package fli defines the foreign language interface between a host HDL
// simulator kernel and the foreign models it runs.
//
// A foreign model never touches kernel internals: it resolves Signals by
// path, creates a Driver for each signal it writes, creates Processes that
// the kernel runs whenever one of their sensitive signals has an event, and
// registers lifecycle callbacks. Every callback returns an error; what to do
// with it (usually halting the run) is up to the kernel.
//
package fli

import (
	"strconv"
	"strings"
)

// Time is a simulated time or delay expressed in units of the kernel's
// resolution limit (see Kernel.ResolutionLimit).
//
type Time int64

// Kind is the kind of a signal type.
//
type Kind int

// Type kinds.
//
const (
	Enum Kind = iota
	Integer
	Real
	Array
)

var kindNames = [...]string{"ENUMERATION", "INTEGER", "REAL", "ARRAY"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "UNKNOWN"
	}
	return kindNames[k]
}

// Type describes the type of a signal.
//
type Type struct {
	Kind Kind
	// Len is the number of elements of an array type or the number of
	// literals of an enumeration type. It is zero for other types.
	Len int
	// Elem is the element type of an array type.
	Elem *Type
}

// Predefined scalar types.
//
var (
	StdLogic    = &Type{Kind: Enum, Len: 9}
	IntegerType = &Type{Kind: Integer}
	RealType    = &Type{Kind: Real}
)

// ArrayOf returns an array type of n elements of type elem.
//
func ArrayOf(elem *Type, n int) *Type {
	return &Type{Kind: Array, Len: n, Elem: elem}
}

// TickLength returns the number of elements of t for arrays and
// enumerations, and 1 for other scalar types.
//
func (t *Type) TickLength() int {
	switch t.Kind {
	case Array, Enum:
		return t.Len
	}
	return 1
}

// Dims returns the array dimensions of t, outermost first. It returns nil
// for scalar types.
//
func (t *Type) Dims() []int {
	var dims []int
	for ; t != nil && t.Kind == Array; t = t.Elem {
		dims = append(dims, t.Len)
	}
	return dims
}

// Scalar returns the innermost element type of t.
//
func (t *Type) Scalar() *Type {
	for t.Kind == Array {
		t = t.Elem
	}
	return t
}

func (t *Type) String() string {
	switch t.Kind {
	case Enum:
		if t == StdLogic || t.Len == StdLogic.Len {
			return "std_logic"
		}
		return "enumeration"
	case Integer:
		return "integer"
	case Real:
		return "real"
	case Array:
		return "array(0 to " + strconv.Itoa(t.Len-1) + ") of " + t.Elem.String()
	}
	return t.Kind.String()
}

// Value is the value of a signal. It is one of Scalar, IntArray or
// RealArray.
//
type Value interface {
	String() string
	value()
}

// Scalar is the value of an enumeration or integer signal. For an
// enumeration it is the position of the literal.
//
type Scalar int32

// IntArray is the value of an array of integers or enumerations. The value
// of a multidimensional array is flattened in row-major order.
//
type IntArray []int32

// RealArray is the value of an array of reals.
//
type RealArray []float64

func (Scalar) value()    {}
func (IntArray) value()  {}
func (RealArray) value() {}

func (v Scalar) String() string { return strconv.FormatInt(int64(v), 10) }

func (v IntArray) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, x := range v {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatInt(int64(x), 10))
	}
	b.WriteByte(')')
	return b.String()
}

func (v RealArray) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, x := range v {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	}
	b.WriteByte(')')
	return b.String()
}

// Signal is a handle to a signal of the simulated design.
//
type Signal interface {
	// Name returns the simple name of the signal.
	Name() string
	// Type returns the signal type.
	Type() *Type
	// Value returns a copy of the current signal value.
	Value() Value
	// Elements returns handles to the sub-elements of an array of arrays,
	// or nil for scalars and one dimensional arrays.
	Elements() []Signal
}

// A Driver schedules transactions on a signal.
//
type Driver interface {
	// Schedule schedules v to be assigned to the driven signal after delay.
	// The value is copied. Scheduling is inertial: pending transactions of
	// the same driver at or after the new one are cancelled.
	Schedule(v Value, delay Time)
}

// A Process is a function run by the kernel whenever one of the signals it
// is sensitive to has an event.
//
type Process interface {
	Sensitize(s Signal)
}

// Kernel is the interface a host simulator kernel exposes to foreign
// models.
//
type Kernel interface {
	// FindSignal returns the signal with the given hierarchical path or nil.
	FindSignal(path string) Signal
	// CreateDriver creates a driver for s.
	CreateDriver(s Signal) (Driver, error)
	// CreateProcess creates a process. A non nil error returned by fn is
	// fatal to the simulation run.
	CreateProcess(name string, fn func() error) Process
	// AddLoadDoneCB registers fn to be called once elaboration completes.
	AddLoadDoneCB(fn func() error)
	// AddQuitCB registers fn to be called when the simulator quits.
	AddQuitCB(fn func() error)
	// AddRestartCB registers fn to be called when the simulation restarts.
	AddRestartCB(fn func() error)
	// ResolutionLimit returns the simulator time resolution as a power of
	// ten exponent of seconds (-9 for ns, -12 for ps).
	ResolutionLimit() int
	// Now returns the current simulated time.
	Now() Time
	// Printf prints a message through the simulator transcript.
	Printf(format string, args ...interface{})
}
