// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package xbar

import (
	"github.com/db47h/xbar/fli"
	"github.com/pkg/errors"
)

// Defaults
//
const (
	DefaultRegion = "/MIMO_TOP"
	DefaultRows   = 3
	DefaultCols   = 2
)

// ProcessName is the name of the clock process created by an instance.
//
const ProcessName = "clock_proc"

// Config configures an Instance.
//
type Config struct {
	// Region is the path of the design region the ports are connected in.
	// Defaults to DefaultRegion.
	Region string
	// Ports maps port names to signal names in Region. Unlisted ports are
	// connected to the signal of the same name.
	Ports Ports
	// Dims are the crossbar dimensions. Defaults to DefaultRows×DefaultCols.
	Dims Dimensions
	// Codec defaults to Symmetric.
	Codec Codec
	// Delay is the delay applied to every output transaction.
	Delay NS
	// Verbose enables transcript messages for every serviced request.
	Verbose bool
}

func (c Config) withDefaults() (Config, error) {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.Dims == (Dimensions{}) {
		c.Dims = Dimensions{DefaultRows, DefaultCols}
	}
	if err := c.Dims.validate(); err != nil {
		return c, err
	}
	if c.Codec == nil {
		c.Codec = Symmetric{}
	}
	if c.Delay < 0 {
		return c, errors.Errorf("negative output delay %d", c.Delay)
	}
	ports, err := c.Ports.check()
	if err != nil {
		return c, err
	}
	c.Ports = ports
	return c, nil
}

// Instance is a crossbar bridge instance bound to a design region.
//
type Instance struct {
	k      fli.Kernel
	cfg    Config
	sess   *Session
	gw     gateway
	sig    signals
	ctl    *Controller
	proc   fli.Process
	ready  fli.Driver
	output fli.Driver
	// cached at load done
	outKind fli.Kind
	delay   fli.Time
	loaded  bool
	closed  bool
}

// Elaborate creates a new instance: it resolves the signals connected to the
// instance ports, acquires the session backend, creates the clock process and
// registers the load done, quit and restart callbacks with k.
//
// Any failure is an ElaborationFailure and leaves k untouched.
//
func Elaborate(k fli.Kernel, s *Session, cfg Config) (*Instance, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, newError(ElaborationFailure, errors.Wrap(err, "configuration"))
	}
	if s == nil {
		return nil, errorf(ElaborationFailure, "no backend session")
	}
	in := &Instance{k: k, cfg: cfg, sess: s}
	if err = bindSignals(k, cfg.Region, cfg.Ports, &in.sig); err != nil {
		k.Printf("** Error: %v", err)
		return nil, err
	}
	b, err := s.Acquire(cfg.Dims)
	if err != nil {
		err = newError(ElaborationFailure, err)
		k.Printf("** Error: %v", err)
		return nil, err
	}
	in.gw = gateway{b: b, dims: cfg.Dims}
	in.ctl = NewController(bridgeOps{in})

	in.proc = k.CreateProcess(ProcessName, in.clockProc)
	in.proc.Sensitize(in.sig.Clk)
	k.AddLoadDoneCB(in.loadDone)
	k.AddQuitCB(in.cleanup)
	k.AddRestartCB(in.cleanup)
	if cfg.Verbose {
		k.Printf("xbar: %s: %v crossbar on module %s", cfg.Region, cfg.Dims, s.Module())
	}
	return in, nil
}

// Region returns the design region of the instance.
func (in *Instance) Region() string { return in.cfg.Region }

// Dims returns the crossbar dimensions.
func (in *Instance) Dims() Dimensions { return in.cfg.Dims }

// State returns the controller state.
func (in *Instance) State() State { return in.ctl.State() }

// Err returns the fatal error the instance stopped on, if any.
func (in *Instance) Err() error { return in.ctl.Err() }

// Serviced returns the number of program and compute requests serviced.
func (in *Instance) Serviced() (program, compute uint64) { return in.ctl.Serviced() }

func checkLogic(s fli.Signal) error {
	if t := s.Type(); t.Kind != fli.Enum {
		return errors.Errorf("signal %s: expected std_logic, got %v", s.Name(), t)
	}
	return nil
}

func checkArray(s fli.Signal, scalar []fli.Kind, dims ...int) error {
	t := s.Type()
	ds := t.Dims()
	ok := len(ds) == len(dims)
	for i := 0; ok && i < len(ds); i++ {
		ok = ds[i] == dims[i]
	}
	if ok {
		ok = false
		for _, k := range scalar {
			ok = ok || t.Scalar().Kind == k
		}
	}
	if !ok {
		return errors.Errorf("signal %s: expected %v array of %v, got %v", s.Name(), dims, scalar, t)
	}
	return nil
}

func (in *Instance) loadDone() error {
	if in.closed {
		return nil
	}
	if err := in.checkSignals(); err != nil {
		err = newError(ElaborationFailure, err)
		in.k.Printf("** Error: %v", err)
		return err
	}
	drvs, err := createDrivers(in.k, &in.sig)
	if err != nil {
		in.k.Printf("** Error: %v", err)
		return err
	}
	in.ready, in.output = drvs[PortReady], drvs[PortOutput]
	in.outKind = in.sig.Output.Type().Scalar().Kind
	in.delay = ToResolution(in.cfg.Delay, in.k.ResolutionLimit())
	in.loaded = true

	in.output.Schedule(zeroValue(in.outKind, in.cfg.Dims.Cols), in.delay)
	in.setReady(false)
	return nil
}

func (in *Instance) checkSignals() error {
	d := in.cfg.Dims
	for _, s := range []fli.Signal{in.sig.Clk, in.sig.Reset, in.sig.Program, in.sig.Compute, in.sig.Ready} {
		if err := checkLogic(s); err != nil {
			return err
		}
	}
	ints := []fli.Kind{fli.Integer}
	if err := checkArray(in.sig.ProgramInput, ints, d.Rows, d.Cols); err != nil {
		return err
	}
	if n := len(in.sig.ProgramInput.Elements()); n != d.Rows {
		return errors.Errorf("signal %s: %d row elements, expected %d", in.sig.ProgramInput.Name(), n, d.Rows)
	}
	if err := checkArray(in.sig.ComputeInput, ints, d.Rows); err != nil {
		return err
	}
	return checkArray(in.sig.Output, []fli.Kind{fli.Real, fli.Integer}, d.Cols)
}

func logicOf(s fli.Signal) fli.Logic { return fli.LogicOf(s.Value()) }

func (in *Instance) clockProc() error {
	if !in.loaded {
		err := errorf(ElaborationFailure, "%s: clock event before load done", in.cfg.Region)
		in.k.Printf("** Error: %v", err)
		return err
	}
	l := Lines{
		Reset:   logicOf(in.sig.Reset).Low(),
		Clock:   logicOf(in.sig.Clk).High(),
		Program: logicOf(in.sig.Program).High(),
		Compute: logicOf(in.sig.Compute).High(),
	}
	failed := in.ctl.State() == Fault
	if err := in.ctl.Edge(l); err != nil {
		if !failed {
			in.k.Printf("** Error: %s: %v", in.cfg.Region, err)
		}
		return err
	}
	return nil
}

func (in *Instance) setReady(b bool) {
	in.ready.Schedule(fli.Bool(b).Value(), in.delay)
}

func (in *Instance) program() error {
	d := in.cfg.Dims
	m, err := readMatrix(in.sig.ProgramInput, d.Rows, d.Cols, in.cfg.Codec)
	if err != nil {
		return newError(BackendCallFailure, err)
	}
	defer m.Release()
	status, err := in.gw.program(m)
	if err != nil {
		return err
	}
	if in.cfg.Verbose {
		in.k.Printf("xbar: %s: %s returned %d", in.cfg.Region, EntryProgram, status)
	}
	return nil
}

func (in *Instance) compute() error {
	v, err := readVector(in.sig.ComputeInput, in.cfg.Dims.Rows, in.cfg.Codec)
	if err != nil {
		return newError(BackendCallFailure, err)
	}
	defer v.Release()
	r, err := in.gw.compute(v)
	if err != nil {
		return err
	}
	out := outputValue(in.outKind, r, in.cfg.Codec)
	in.output.Schedule(out, in.delay)
	if in.cfg.Verbose {
		in.k.Printf("xbar: %s: %s returned %v", in.cfg.Region, EntryCompute, out)
	}
	return nil
}

// cleanup releases the backend. It is registered as both quit and restart
// callback, so it may be called more than once.
//
func (in *Instance) cleanup() error {
	if in.closed {
		return nil
	}
	in.closed = true
	in.loaded = false
	in.gw.b = nil
	return in.sess.Release()
}

// bridgeOps implements Operations for an Instance.
//
type bridgeOps struct {
	in *Instance
}

func (o bridgeOps) SetReady(b bool) { o.in.setReady(b) }
func (o bridgeOps) Program() error  { return o.in.program() }
func (o bridgeOps) Compute() error  { return o.in.compute() }
