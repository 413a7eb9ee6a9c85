// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwtest provides a test bench for crossbar instances running on the
// reference kernel, and utility functions for testing backends.
//
package hwtest

import (
	"io"

	"github.com/db47h/xbar"
	"github.com/db47h/xbar/fli"
	"github.com/db47h/xbar/sim"
	"github.com/pkg/errors"
	akita "github.com/sarchlab/akita/v3/sim"
)

// DefaultFreq is the default bench clock frequency.
//
const DefaultFreq = 100 * akita.MHz

// Config configures a Bench.
//
type Config struct {
	// Region defaults to xbar.DefaultRegion.
	Region string
	// Dims default to xbar.DefaultRows×xbar.DefaultCols.
	Dims xbar.Dimensions
	// Freq defaults to DefaultFreq.
	Freq akita.Freq
	// Resolution defaults to sim.DefaultResolution.
	Resolution int
	// Output is the element type of the compute output. Defaults to real.
	Output *fli.Type
	// Transcript defaults to io.Discard.
	Transcript io.Writer
	// Omit lists ports for which no signal is created.
	Omit []string
}

// Change is a signal value change.
//
type Change struct {
	At    fli.Time
	Value fli.Value
}

// Bench is a test bench exposing the signals of a crossbar instance region
// on a sim.Kernel. The bench drives every input port but the clock, which is
// driven by a sim.Clock.
//
type Bench struct {
	K     *sim.Kernel
	Clock *sim.Clock
	Inst  *xbar.Instance

	Region string
	Dims   xbar.Dimensions

	// value changes of the output ports, recorded after load done
	ReadyLog  []Change
	OutputLog []Change

	sigs map[string]*sim.Signal
	drvs map[string]*sim.Driver
}

// NewBench creates a kernel and the signals of an instance region.
//
func NewBench(cfg Config) (*Bench, error) {
	if cfg.Region == "" {
		cfg.Region = xbar.DefaultRegion
	}
	if cfg.Dims == (xbar.Dimensions{}) {
		cfg.Dims = xbar.Dimensions{Rows: xbar.DefaultRows, Cols: xbar.DefaultCols}
	}
	if cfg.Freq == 0 {
		cfg.Freq = DefaultFreq
	}
	if cfg.Output == nil {
		cfg.Output = fli.RealType
	}
	if cfg.Transcript == nil {
		cfg.Transcript = io.Discard
	}
	omit := make(map[string]bool)
	for _, p := range cfg.Omit {
		omit[p] = true
	}
	b := &Bench{
		K:      sim.New(sim.Config{Resolution: cfg.Resolution, Transcript: cfg.Transcript}),
		Region: cfg.Region,
		Dims:   cfg.Dims,
		sigs:   make(map[string]*sim.Signal),
		drvs:   make(map[string]*sim.Driver),
	}
	r, c := cfg.Dims.Rows, cfg.Dims.Cols
	types := []struct {
		port string
		typ  *fli.Type
	}{
		{xbar.PortClk, fli.StdLogic},
		{xbar.PortReset, fli.StdLogic},
		{xbar.PortProgram, fli.StdLogic},
		{xbar.PortCompute, fli.StdLogic},
		{xbar.PortProgramInput, fli.ArrayOf(fli.ArrayOf(fli.IntegerType, c), r)},
		{xbar.PortComputeInput, fli.ArrayOf(fli.IntegerType, r)},
		{xbar.PortReady, fli.StdLogic},
		{xbar.PortOutput, fli.ArrayOf(cfg.Output, c)},
	}
	for _, t := range types {
		if omit[t.port] {
			continue
		}
		s, err := b.K.NewSignal(cfg.Region+"/"+t.port, t.typ)
		if err != nil {
			return nil, err
		}
		b.sigs[t.port] = s
		switch t.port {
		case xbar.PortClk, xbar.PortReady, xbar.PortOutput:
			continue
		}
		if b.drvs[t.port], err = b.K.Driver(s); err != nil {
			return nil, err
		}
	}
	if s := b.sigs[xbar.PortClk]; s != nil {
		clk, err := b.K.NewClock(s, cfg.Freq)
		if err != nil {
			return nil, err
		}
		b.Clock = clk
	}
	return b, nil
}

// Signal returns the signal connected to the given port.
//
func (b *Bench) Signal(port string) *sim.Signal { return b.sigs[port] }

// Start elaborates an instance in the bench region with the given session,
// then runs the load done callbacks. The region and dimensions of cfg are
// overridden by the bench's.
//
func (b *Bench) Start(s *xbar.Session, cfg xbar.Config) (*xbar.Instance, error) {
	cfg.Region, cfg.Dims = b.Region, b.Dims
	in, err := xbar.Elaborate(b.K, s, cfg)
	if err != nil {
		return nil, err
	}
	b.Inst = in
	if err = b.K.LoadDone(); err != nil {
		return nil, err
	}
	b.watch(xbar.PortReady, &b.ReadyLog)
	b.watch(xbar.PortOutput, &b.OutputLog)
	return in, nil
}

func (b *Bench) watch(port string, log *[]Change) {
	if s := b.sigs[port]; s != nil {
		s.Watch(func(now fli.Time, v fli.Value) {
			*log = append(*log, Change{now, v})
		})
	}
}

func (b *Bench) driver(port string) *sim.Driver {
	d := b.drvs[port]
	if d == nil {
		panic("no driver for port " + port)
	}
	return d
}

// SetReset drives rst_n low if active, high otherwise.
//
func (b *Bench) SetReset(active bool) {
	b.driver(xbar.PortReset).Set(fli.Bool(!active))
}

// Request drives the program and compute request lines.
//
func (b *Bench) Request(program, compute bool) {
	b.driver(xbar.PortProgram).Set(fli.Bool(program))
	b.driver(xbar.PortCompute).Set(fli.Bool(compute))
}

// SetMatrix drives the program input.
//
func (b *Bench) SetMatrix(m [][]int32) error {
	if len(m) != b.Dims.Rows {
		return errors.Errorf("got %d rows, expected %d", len(m), b.Dims.Rows)
	}
	v := make(fli.IntArray, 0, b.Dims.Rows*b.Dims.Cols)
	for i, r := range m {
		if len(r) != b.Dims.Cols {
			return errors.Errorf("row %d: got %d columns, expected %d", i, len(r), b.Dims.Cols)
		}
		v = append(v, r...)
	}
	b.driver(xbar.PortProgramInput).Schedule(v, 0)
	return nil
}

// SetVector drives the compute input.
//
func (b *Bench) SetVector(v []int32) error {
	if len(v) != b.Dims.Rows {
		return errors.Errorf("got %d inputs, expected %d", len(v), b.Dims.Rows)
	}
	b.driver(xbar.PortComputeInput).Schedule(fli.IntArray(v), 0)
	return nil
}

// Cycle runs the simulation for n clock periods. Every period contains
// exactly one rising edge.
//
func (b *Bench) Cycle(n int) error {
	if b.Clock == nil {
		return errors.New("bench has no clock")
	}
	return b.K.Run(fli.Time(n) * b.Clock.Period())
}

// Ready returns the value of the ready port.
//
func (b *Bench) Ready() fli.Logic { return b.sigs[xbar.PortReady].Logic() }

// Output returns the value of the compute output port.
//
func (b *Bench) Output() fli.Value { return b.sigs[xbar.PortOutput].Value() }

// Program drives m on the program input and requests a program operation for
// one clock cycle.
//
func (b *Bench) Program(m [][]int32) error {
	if err := b.SetMatrix(m); err != nil {
		return err
	}
	b.Request(true, false)
	err := b.Cycle(1)
	b.Request(false, false)
	return err
}

// Compute drives v on the compute input and requests a compute operation for
// one clock cycle. It returns the compute output value.
//
func (b *Bench) Compute(v []int32) (fli.Value, error) {
	if err := b.SetVector(v); err != nil {
		return nil, err
	}
	b.Request(false, true)
	err := b.Cycle(1)
	b.Request(false, false)
	if err != nil {
		return nil, err
	}
	return b.Output(), nil
}
