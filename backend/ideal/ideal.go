// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package ideal provides an ideal crossbar backend, registered as module
// "ideal".
//
// The crossbar is programmed with a Rows×Cols conductance matrix G. Computing
// with an input vector v yields the Cols vector y such that
//
//	y[j] = Σ v[i]·G[i][j] / Rows
//
// The division by Rows keeps the results of normalized inputs in [-1, 1].
//
package ideal

import (
	"github.com/db47h/xbar"
	"github.com/db47h/xbar/backend"
	"github.com/pkg/errors"
)

// Module is the module name of the ideal backend.
//
const Module = "ideal"

func init() {
	backend.Register(Module, func(dims xbar.Dimensions) (xbar.NumericBackend, error) {
		return New(dims)
	})
}

// Crossbar is an ideal crossbar.
//
type Crossbar struct {
	dims       xbar.Dimensions
	g          [][]float64
	programmed bool
	closed     bool
}

// New returns a new ideal crossbar.
//
func New(dims xbar.Dimensions) (*Crossbar, error) {
	if dims.Rows <= 0 || dims.Cols <= 0 {
		return nil, errors.Errorf("invalid crossbar dimensions %v", dims)
	}
	g := make([][]float64, dims.Rows)
	for i := range g {
		g[i] = make([]float64, dims.Cols)
	}
	return &Crossbar{dims: dims, g: g}, nil
}

// Program implements xbar.NumericBackend.
//
func (c *Crossbar) Program(m *xbar.Matrix) (int, error) {
	if c.closed {
		return 0, errors.New("crossbar closed")
	}
	if m.Rows() != c.dims.Rows || m.Cols() != c.dims.Cols {
		return 0, errors.Errorf("got a %d×%d matrix for a %v crossbar", m.Rows(), m.Cols(), c.dims)
	}
	for i := range c.g {
		copy(c.g[i], m.Row(i))
	}
	c.programmed = true
	return 0, nil
}

// Compute implements xbar.NumericBackend.
//
func (c *Crossbar) Compute(v xbar.Vector) (xbar.Vector, error) {
	if c.closed {
		return xbar.Vector{}, errors.New("crossbar closed")
	}
	if !c.programmed {
		return xbar.Vector{}, errors.New("crossbar not programmed")
	}
	if v.Len() != c.dims.Rows {
		return xbar.Vector{}, errors.Errorf("got %d inputs for a %v crossbar", v.Len(), c.dims)
	}
	in := v.Values()
	return xbar.VectorOf(Multiply(in, c.g)...), nil
}

// Close implements io.Closer.
//
func (c *Crossbar) Close() error {
	c.closed = true
	return nil
}

// Multiply computes the reference vector matrix product of the ideal crossbar
// for input v and conductance matrix g.
//
func Multiply(v []float64, g [][]float64) []float64 {
	if len(g) == 0 {
		return nil
	}
	y := make([]float64, len(g[0]))
	for i, x := range v {
		for j, w := range g[i] {
			y[j] += x * w
		}
	}
	n := float64(len(g))
	for j := range y {
		y[j] /= n
	}
	return y
}
