// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package xbar

import (
	"strconv"
	"sync"

	"github.com/db47h/xbar/fli"
	"github.com/pkg/errors"
)

var bufPool = sync.Pool{New: func() interface{} { return new([]float64) }}

func getBuf(n int) []float64 {
	b := *bufPool.Get().(*[]float64)
	if cap(b) < n {
		return make([]float64, n)
	}
	b = b[:n]
	for i := range b {
		b[i] = 0
	}
	return b
}

func putBuf(b []float64) {
	if cap(b) == 0 {
		return
	}
	b = b[:0]
	bufPool.Put(&b)
}

// Matrix is a row-major matrix of floats with an explicit shape.
//
// Matrices passed to a backend are only valid for the duration of the call.
// A backend that needs the values afterwards must copy them.
//
type Matrix struct {
	rows, cols int
	data       []float64
}

// NewMatrix returns a zero rows×cols matrix. The caller should Release it
// once done.
//
func NewMatrix(rows, cols int) *Matrix {
	if rows < 0 || cols < 0 {
		panic("negative matrix dimension")
	}
	return &Matrix{rows: rows, cols: cols, data: getBuf(rows * cols)}
}

// MatrixOf returns a matrix holding a copy of the given rows. All rows must
// have the same length.
//
func MatrixOf(rows [][]float64) (*Matrix, error) {
	cols := 0
	if len(rows) > 0 {
		cols = len(rows[0])
	}
	m := NewMatrix(len(rows), cols)
	for i, r := range rows {
		if len(r) != cols {
			m.Release()
			return nil, errors.Errorf("row %d has %d columns, expected %d", i, len(r), cols)
		}
		copy(m.Row(i), r)
	}
	return m, nil
}

// Rows returns the number of rows of m.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns of m.
func (m *Matrix) Cols() int { return m.cols }

func (m *Matrix) index(i, j int) int {
	if m.data == nil {
		panic("use of released matrix")
	}
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic("matrix index (" + strconv.Itoa(i) + ", " + strconv.Itoa(j) + ") out of range for " + m.shape())
	}
	return i*m.cols + j
}

func (m *Matrix) shape() string { return strconv.Itoa(m.rows) + "×" + strconv.Itoa(m.cols) }

// At returns the element at row i, column j.
func (m *Matrix) At(i, j int) float64 { return m.data[m.index(i, j)] }

// Set sets the element at row i, column j.
func (m *Matrix) Set(i, j int, v float64) { m.data[m.index(i, j)] = v }

// Row returns row i. The returned slice aliases m.
//
func (m *Matrix) Row(i int) []float64 {
	k := m.index(i, 0)
	return m.data[k : k+m.cols : k+m.cols]
}

// Slices returns a copy of m as a slice of rows.
//
func (m *Matrix) Slices() [][]float64 {
	out := make([][]float64, m.rows)
	for i := range out {
		out[i] = append([]float64(nil), m.Row(i)...)
	}
	return out
}

// Release returns the storage of m to the buffer pool. m must not be used
// afterwards.
//
func (m *Matrix) Release() {
	putBuf(m.data)
	m.data = nil
}

// Vector is a vector of floats. Copies of a Vector share its storage.
//
type Vector struct {
	b *vbuf
}

type vbuf struct {
	data []float64
}

// NewVector returns a zero vector of length n. The caller should Release it
// once done.
//
func NewVector(n int) Vector {
	return Vector{&vbuf{getBuf(n)}}
}

// VectorOf returns a vector holding a copy of vs.
//
func VectorOf(vs ...float64) Vector {
	return Vector{&vbuf{append([]float64(nil), vs...)}}
}

func (v Vector) elems() []float64 {
	if v.b == nil {
		return nil
	}
	return v.b.data
}

// Len returns the vector length. Released or zero vectors have length 0.
func (v Vector) Len() int { return len(v.elems()) }

// IsNil returns true for the zero Vector, which backends use for "no
// result".
func (v Vector) IsNil() bool { return v.elems() == nil }

func (v Vector) index(i int) int {
	if n := v.Len(); i < 0 || i >= n {
		panic("vector index " + strconv.Itoa(i) + " out of range for length " + strconv.Itoa(n))
	}
	return i
}

// At returns element i.
func (v Vector) At(i int) float64 { return v.b.data[v.index(i)] }

// Set sets element i.
func (v Vector) Set(i int, x float64) { v.b.data[v.index(i)] = x }

// Values returns a copy of the vector elements.
//
func (v Vector) Values() []float64 { return append([]float64(nil), v.elems()...) }

// Release returns the vector storage to the buffer pool. The vector and all
// its copies have length 0 afterwards. Releasing a vector twice is a no-op.
//
func (v Vector) Release() {
	if v.b == nil {
		return
	}
	putBuf(v.b.data)
	v.b.data = nil
}

// readMatrix reads a rows×cols integer matrix from an array of arrays
// signal, one row at a time, and encodes it.
//
func readMatrix(s fli.Signal, rows, cols int, c Codec) (*Matrix, error) {
	elems := s.Elements()
	if len(elems) != rows {
		return nil, errors.Errorf("signal %s has %d rows, expected %d", s.Name(), len(elems), rows)
	}
	m := NewMatrix(rows, cols)
	for i, e := range elems {
		v, ok := e.Value().(fli.IntArray)
		if !ok || len(v) != cols {
			m.Release()
			return nil, errors.Errorf("row %d of signal %s is not an integer array of length %d", i, s.Name(), cols)
		}
		r := m.Row(i)
		for j, x := range v {
			r[j] = c.Encode(x)
		}
	}
	return m, nil
}

// readVector reads an integer vector of length n from s and encodes it.
//
func readVector(s fli.Signal, n int, c Codec) (Vector, error) {
	v, ok := s.Value().(fli.IntArray)
	if !ok || len(v) != n {
		return Vector{}, errors.Errorf("signal %s is not an integer array of length %d", s.Name(), n)
	}
	out := NewVector(n)
	for i, x := range v {
		out.b.data[i] = c.Encode(x)
	}
	return out, nil
}

// outputValue decodes v into a value for an output of the given element
// kind.
//
func outputValue(kind fli.Kind, v Vector, c Codec) fli.Value {
	if kind == fli.Real {
		out := make(fli.RealArray, v.Len())
		for i, y := range v.elems() {
			out[i] = c.Decode(y)
		}
		return out
	}
	out := make(fli.IntArray, v.Len())
	for i, y := range v.elems() {
		out[i] = c.DecodeInt(y)
	}
	return out
}

func zeroValue(kind fli.Kind, n int) fli.Value {
	if kind == fli.Real {
		return make(fli.RealArray, n)
	}
	return make(fli.IntArray, n)
}
