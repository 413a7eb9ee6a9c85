// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwtest

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/db47h/xbar"
	"github.com/db47h/xbar/backend"
	"github.com/db47h/xbar/fli"
)

// Reference is a reference model of a crossbar: it returns the output for
// input vector v and conductance matrix g, both normalized.
//
type Reference func(v []float64, g [][]float64) []float64

// Tolerance is the maximum absolute difference between a bench output and
// the reference output.
//
const Tolerance = 1e-9

func randInt32(r *rand.Rand) int32 {
	switch r.Intn(16) {
	case 0:
		return math.MaxInt32
	case 1:
		return math.MinInt32
	case 2:
		return 0
	}
	return int32(r.Uint32())
}

func encodeAll(c xbar.Codec, xs []int32) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = c.Encode(x)
	}
	return out
}

// CompareBackend runs module through a bench and compares its outputs to the
// ones of the reference model given the same random inputs. Every iteration
// programs a new matrix and runs a few compute requests.
//
func CompareBackend(t *testing.T, dims xbar.Dimensions, module string, ref Reference, iter int) {
	t.Helper()

	seed := time.Now().UnixNano()
	r := rand.New(rand.NewSource(seed))

	b, err := NewBench(Config{Dims: dims})
	if err != nil {
		t.Fatal(err)
	}
	s := xbar.NewSession(backend.Loader{}, module)
	if _, err = b.Start(s, xbar.Config{}); err != nil {
		t.Fatal(err)
	}
	defer func() {
		if err := b.K.Quit(); err != nil {
			t.Error(err)
		}
	}()
	codec := xbar.Symmetric{}

	b.SetReset(true)
	if err = b.Cycle(1); err != nil {
		t.Fatal(err)
	}
	b.SetReset(false)

	errString := func(m [][]int32, v []int32, j int, ex, got float64) string {
		var sb strings.Builder
		for i, row := range m {
			if i > 0 {
				sb.WriteString("; ")
			}
			sb.WriteString(fli.IntArray(row).String())
		}
		return fmt.Sprintf("seed %d\nExpected G=%s, v=%v => y[%d]=%v\nGot %v", seed, sb.String(), fli.IntArray(v), j, ex, got)
	}

	start := time.Now()
	m := make([][]int32, dims.Rows)
	g := make([][]float64, dims.Rows)
	v := make([]int32, dims.Rows)
	for it := 0; it < iter; it++ {
		for i := range m {
			m[i] = make([]int32, dims.Cols)
			for j := range m[i] {
				m[i][j] = randInt32(r)
			}
			g[i] = encodeAll(codec, m[i])
		}
		if err = b.Program(m); err != nil {
			t.Fatal(err)
		}
		for n := 0; n < 4; n++ {
			for i := range v {
				v[i] = randInt32(r)
			}
			out, err := b.Compute(v)
			if err != nil {
				t.Fatal(err)
			}
			got, ok := out.(fli.RealArray)
			if !ok || len(got) != dims.Cols {
				t.Fatalf("bad output %v", out)
			}
			ex := ref(encodeAll(codec, v), g)
			for j := range ex {
				if math.Abs(ex[j]-got[j]) > Tolerance {
					t.Fatal(errString(m, v, j, ex[j], got[j]))
				}
			}
		}
	}

	elapsed := time.Since(start)
	ticks := b.Clock.Cycles()
	p, c := b.Inst.Serviced()
	t.Logf("%v crossbar. %d programs, %d computes, %d deltas in %v. %d clock ticks => %.2f Hz",
		dims, p, c, b.K.Deltas(), elapsed, ticks, float64(ticks)/(float64(elapsed)/float64(time.Second)))
}
