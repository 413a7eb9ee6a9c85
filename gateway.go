// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package xbar

import (
	"fmt"
	"io"
	"sync"

	"github.com/pkg/errors"
)

// Backend entry point names.
//
const (
	EntryProgram = "mem_program"
	EntryCompute = "mem_compute"
)

// ErrNoResult is returned by backends whose call completed without yielding
// a result.
//
var ErrNoResult = errors.New("no result")

// Dimensions are the crossbar dimensions: the program input is a Rows×Cols
// matrix, the compute input a Rows vector and the compute output a Cols
// vector.
//
type Dimensions struct {
	Rows, Cols int
}

func (d Dimensions) String() string { return fmt.Sprintf("%d×%d", d.Rows, d.Cols) }

func (d Dimensions) validate() error {
	if d.Rows <= 0 || d.Cols <= 0 {
		return errors.Errorf("invalid crossbar dimensions %v", d)
	}
	return nil
}

// NumericBackend is the numeric model of the crossbar.
//
// Program receives a Rows×Cols matrix and returns a status. Zero conventionally
// means success but the bridge only checks that a status was returned.
// Compute receives a Rows vector and returns a Cols vector.
//
// The arguments are only valid for the duration of the call. Backends
// returning ErrNoResult, a nil Vector or any other error fail the run.
// Backends may implement io.Closer to be finalized when the last instance
// using them quits.
//
type NumericBackend interface {
	Program(m *Matrix) (int, error)
	Compute(v Vector) (Vector, error)
}

// Funcs is a NumericBackend made of individual entry points. Unbound entry
// points fail when called.
//
type Funcs struct {
	ProgramFunc func(m *Matrix) (int, error)
	ComputeFunc func(v Vector) (Vector, error)
	CloseFunc   func() error
}

// Program implements NumericBackend.
//
func (f *Funcs) Program(m *Matrix) (int, error) {
	if f.ProgramFunc == nil {
		return 0, errors.Errorf("entry point %s not bound", EntryProgram)
	}
	return f.ProgramFunc(m)
}

// Compute implements NumericBackend.
//
func (f *Funcs) Compute(v Vector) (Vector, error) {
	if f.ComputeFunc == nil {
		return Vector{}, errors.Errorf("entry point %s not bound", EntryCompute)
	}
	return f.ComputeFunc(v)
}

// Close implements io.Closer.
//
func (f *Funcs) Close() error {
	if f.CloseFunc == nil {
		return nil
	}
	return f.CloseFunc()
}

// A Loader loads a backend module by name, looking into the given search
// path. The crossbar dimensions are passed to the module.
//
type Loader interface {
	Load(name string, path []string, dims Dimensions) (NumericBackend, error)
}

// LoaderFunc is an adapter to use ordinary functions as a Loader.
//
type LoaderFunc func(name string, path []string, dims Dimensions) (NumericBackend, error)

// Load implements Loader.
func (f LoaderFunc) Load(name string, path []string, dims Dimensions) (NumericBackend, error) {
	return f(name, path, dims)
}

// Session is the process wide backend runtime. The module is loaded by the
// first Acquire and finalized by the last Release, so that several bridge
// instances can share it.
//
type Session struct {
	mu      sync.Mutex
	loader  Loader
	name    string
	path    []string
	refs    int
	dims    Dimensions
	backend NumericBackend
}

// NewSession returns a session that loads module name from the given search
// path with l.
//
func NewSession(l Loader, name string, path ...string) *Session {
	return &Session{loader: l, name: name, path: path}
}

// Module returns the module name.
//
func (s *Session) Module() string { return s.name }

// Refs returns the number of instances holding the backend.
//
func (s *Session) Refs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refs
}

// Acquire returns the backend, loading it if needed. All instances sharing a
// session must use the same dimensions.
//
func (s *Session) Acquire(dims Dimensions) (NumericBackend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refs > 0 {
		if dims != s.dims {
			return nil, errors.Errorf("module %s loaded for a %v crossbar, requested %v", s.name, s.dims, dims)
		}
		s.refs++
		return s.backend, nil
	}
	if s.loader == nil {
		return nil, errors.New("no backend loader")
	}
	b, err := s.loader.Load(s.name, s.path, dims)
	if err != nil {
		return nil, errors.Wrapf(err, "load module %s", s.name)
	}
	if b == nil {
		return nil, errors.Errorf("load module %s: no backend", s.name)
	}
	s.backend, s.dims, s.refs = b, dims, 1
	return b, nil
}

// Release releases one reference to the backend. The last reference
// finalizes it.
//
func (s *Session) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refs == 0 {
		return errors.Errorf("module %s released more times than acquired", s.name)
	}
	s.refs--
	if s.refs > 0 {
		return nil
	}
	b := s.backend
	s.backend = nil
	if c, ok := b.(io.Closer); ok {
		return errors.Wrapf(c.Close(), "finalize module %s", s.name)
	}
	return nil
}

// gateway checks and wraps backend calls. Every failure is a
// BackendCallFailure.
//
type gateway struct {
	b    NumericBackend
	dims Dimensions
}

func (g *gateway) program(m *Matrix) (status int, err error) {
	defer recoverCall(EntryProgram, &err)
	if g.b == nil {
		return 0, errorf(BackendCallFailure, "entry point %s not bound", EntryProgram)
	}
	status, err = g.b.Program(m)
	if err != nil {
		return 0, newError(BackendCallFailure, errors.Wrap(err, EntryProgram))
	}
	return status, nil
}

func (g *gateway) compute(v Vector) (r Vector, err error) {
	defer recoverCall(EntryCompute, &err)
	if g.b == nil {
		return Vector{}, errorf(BackendCallFailure, "entry point %s not bound", EntryCompute)
	}
	r, err = g.b.Compute(v)
	switch {
	case err != nil:
		return Vector{}, newError(BackendCallFailure, errors.Wrap(err, EntryCompute))
	case r.IsNil():
		return Vector{}, newError(BackendCallFailure, errors.Wrap(ErrNoResult, EntryCompute))
	case r.Len() != g.dims.Cols:
		return Vector{}, errorf(BackendCallFailure, "%s: returned %d values, expected %d", EntryCompute, r.Len(), g.dims.Cols)
	}
	return r, nil
}

func recoverCall(entry string, err *error) {
	if r := recover(); r != nil {
		*err = errorf(BackendCallFailure, "%s: panic: %v", entry, r)
	}
}
