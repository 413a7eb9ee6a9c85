// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package backend

import (
	"plugin"

	"github.com/db47h/xbar"
	"github.com/pkg/errors"
)

// Plugin symbol names. A plugin must export MemProgram and MemCompute
// functions and may export Init and Close:
//
//	func Init(dims xbar.Dimensions) error
//	func MemProgram(m *xbar.Matrix) (int, error)
//	func MemCompute(v xbar.Vector) (xbar.Vector, error)
//	func Close() error
//
const (
	SymInit    = "Init"
	SymProgram = "MemProgram"
	SymCompute = "MemCompute"
	SymClose   = "Close"
)

// Symbols is the symbol table of a backend module.
//
type Symbols interface {
	Lookup(name string) (plugin.Symbol, error)
}

func openPlugin(file string, dims xbar.Dimensions) (xbar.NumericBackend, error) {
	p, err := plugin.Open(file)
	if err != nil {
		return nil, errors.Wrapf(err, "open plugin %s", file)
	}
	b, err := Bind(p, dims)
	return b, errors.Wrap(err, file)
}

// Bind binds the entry points of a backend module and initializes it for the
// given dimensions. Missing entry points are reported at bind time.
//
func Bind(syms Symbols, dims xbar.Dimensions) (xbar.NumericBackend, error) {
	f := new(xbar.Funcs)
	sym, err := syms.Lookup(SymProgram)
	if err != nil {
		return nil, errors.Wrapf(err, "bind %s", xbar.EntryProgram)
	}
	if f.ProgramFunc, err = programFunc(sym); err != nil {
		return nil, errors.Wrapf(err, "bind %s", xbar.EntryProgram)
	}
	if sym, err = syms.Lookup(SymCompute); err != nil {
		return nil, errors.Wrapf(err, "bind %s", xbar.EntryCompute)
	}
	if f.ComputeFunc, err = computeFunc(sym); err != nil {
		return nil, errors.Wrapf(err, "bind %s", xbar.EntryCompute)
	}
	if sym, err = syms.Lookup(SymClose); err == nil {
		c, ok := sym.(func() error)
		if !ok {
			return nil, errors.Errorf("symbol %s has type %T", SymClose, sym)
		}
		f.CloseFunc = c
	}
	if sym, err = syms.Lookup(SymInit); err == nil {
		initFn, ok := sym.(func(xbar.Dimensions) error)
		if !ok {
			return nil, errors.Errorf("symbol %s has type %T", SymInit, sym)
		}
		if err = initFn(dims); err != nil {
			return nil, errors.Wrap(err, "initialize module")
		}
	}
	return f, nil
}

func programFunc(sym plugin.Symbol) (func(*xbar.Matrix) (int, error), error) {
	switch fn := sym.(type) {
	case func(*xbar.Matrix) (int, error):
		return fn, nil
	case *func(*xbar.Matrix) (int, error):
		return *fn, nil
	}
	return nil, errors.Errorf("symbol %s has type %T", SymProgram, sym)
}

func computeFunc(sym plugin.Symbol) (func(xbar.Vector) (xbar.Vector, error), error) {
	switch fn := sym.(type) {
	case func(xbar.Vector) (xbar.Vector, error):
		return fn, nil
	case *func(xbar.Vector) (xbar.Vector, error):
		return *fn, nil
	}
	return nil, errors.Errorf("symbol %s has type %T", SymCompute, sym)
}
