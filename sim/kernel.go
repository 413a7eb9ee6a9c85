// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package sim provides a reference event driven HDL simulation kernel that
// implements the fli.Kernel interface.
//
// Time advances through an akita serial engine: every distinct simulated
// time with pending activity is one engine event. Within a time step the
// kernel runs delta cycles until no zero delay transaction is left:
// transactions are applied, then every process sensitive to a signal with an
// event runs once, in creation order.
//
// Any error returned by a process or callback is fatal: it is printed to the
// transcript, no further transaction is applied and Run returns the error.
//
package sim

import (
	"io"
	"log"
	"math"
	"os"
	"strings"

	"github.com/db47h/xbar/fli"
	"github.com/pkg/errors"
	akita "github.com/sarchlab/akita/v3/sim"
)

// Default configuration values.
//
const (
	DefaultResolution = -12 // ps
	DefaultMaxDeltas  = 1000
)

// Config holds the kernel configuration.
//
type Config struct {
	// Resolution is the time resolution as a power of ten exponent of
	// seconds. Zero selects DefaultResolution.
	Resolution int
	// MaxDeltas is the maximum number of delta cycles per time step.
	MaxDeltas int
	// Transcript receives diagnostic messages. Defaults to os.Stdout.
	Transcript io.Writer
}

func (c Config) withDefaults() Config {
	if c.Resolution == 0 {
		c.Resolution = DefaultResolution
	}
	if c.MaxDeltas <= 0 {
		c.MaxDeltas = DefaultMaxDeltas
	}
	if c.Transcript == nil {
		c.Transcript = os.Stdout
	}
	return c
}

type stepEvent struct {
	*akita.EventBase
	at fli.Time
}

// Kernel is a simulation kernel.
//
type Kernel struct {
	cfg    Config
	log    *log.Logger
	engine *akita.SerialEngine

	signals map[string]*Signal
	procs   []*process

	loadDone []func() error
	quit     []func() error
	restart  []func() error

	now     fli.Time
	horizon fli.Time
	inStep  bool
	steps   map[fli.Time]bool
	later   []fli.Time // step times past the current horizon
	queue   map[fli.Time][]*transaction
	wakeups map[fli.Time][]func() error
	delta   []*transaction
	events  []*Signal
	deltas  uint64

	err error
}

// New returns a new kernel.
//
func New(cfg Config) *Kernel {
	cfg = cfg.withDefaults()
	k := &Kernel{
		cfg:     cfg,
		log:     log.New(cfg.Transcript, "", 0),
		signals: make(map[string]*Signal),
	}
	k.init()
	return k
}

func (k *Kernel) init() {
	k.engine = akita.NewSerialEngine()
	k.now = 0
	k.horizon = 0
	k.steps = make(map[fli.Time]bool)
	k.later = nil
	k.queue = make(map[fli.Time][]*transaction)
	k.wakeups = make(map[fli.Time][]func() error)
	k.delta = nil
	k.events = nil
	k.err = nil
}

// NewSignal creates a signal of the given type. Paths are absolute and use
// '/' as a separator. Arrays of arrays of reals are not supported.
//
func (k *Kernel) NewSignal(path string, typ *fli.Type) (*Signal, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if _, ok := k.signals[path]; ok {
		return nil, errors.Errorf("signal %s already exists", path)
	}
	if typ.Kind == fli.Array && typ.Elem.Kind == fli.Array {
		if typ.Elem.Elem.Kind == fli.Array || typ.Elem.Elem.Kind == fli.Real {
			return nil, errors.Errorf("unsupported type %v for signal %s", typ, path)
		}
	}
	s := newSignal(k, path, typ)
	k.signals[path] = s
	return s, nil
}

// Signal returns the signal with the given path or nil.
//
func (k *Kernel) Signal(path string) *Signal {
	return k.signals[path]
}

// FindSignal implements fli.Kernel.
//
func (k *Kernel) FindSignal(path string) fli.Signal {
	if s := k.signals[path]; s != nil {
		return s
	}
	return nil
}

// CreateDriver implements fli.Kernel. Each signal accepts a single driver,
// including drivers on its parent or elements.
//
func (k *Kernel) CreateDriver(s fli.Signal) (fli.Driver, error) {
	return k.Driver(s)
}

// Driver is like CreateDriver but returns a *Driver.
//
func (k *Kernel) Driver(s fli.Signal) (*Driver, error) {
	sig, ok := s.(*Signal)
	if !ok || sig.k != k {
		return nil, errors.Errorf("signal %s does not belong to this kernel", s.Name())
	}
	if sig.drv != nil || sig.parent != nil && sig.parent.drv != nil {
		return nil, errors.Errorf("signal %s already has a driver", sig.path)
	}
	for _, e := range sig.elems {
		if e.drv != nil {
			return nil, errors.Errorf("element %s already has a driver", e.path)
		}
	}
	sig.drv = &Driver{sig: sig, k: k}
	return sig.drv, nil
}

type process struct {
	name string
	fn   func() error
	sens []*Signal
}

func (p *process) Sensitize(s fli.Signal) {
	sig, ok := s.(*Signal)
	if !ok {
		panic("process " + p.name + ": foreign signal " + s.Name())
	}
	p.sens = append(p.sens, sig)
}

func (p *process) triggered() bool {
	for _, s := range p.sens {
		if s.event {
			return true
		}
	}
	return false
}

// CreateProcess implements fli.Kernel.
//
func (k *Kernel) CreateProcess(name string, fn func() error) fli.Process {
	p := &process{name: name, fn: fn}
	k.procs = append(k.procs, p)
	return p
}

// AddLoadDoneCB implements fli.Kernel.
func (k *Kernel) AddLoadDoneCB(fn func() error) { k.loadDone = append(k.loadDone, fn) }

// AddQuitCB implements fli.Kernel.
func (k *Kernel) AddQuitCB(fn func() error) { k.quit = append(k.quit, fn) }

// AddRestartCB implements fli.Kernel.
func (k *Kernel) AddRestartCB(fn func() error) { k.restart = append(k.restart, fn) }

// ResolutionLimit implements fli.Kernel.
func (k *Kernel) ResolutionLimit() int { return k.cfg.Resolution }

// Now implements fli.Kernel.
func (k *Kernel) Now() fli.Time { return k.now }

// Printf implements fli.Kernel.
func (k *Kernel) Printf(format string, args ...interface{}) { k.log.Printf(format, args...) }

// Deltas returns the total number of delta cycles run so far.
//
func (k *Kernel) Deltas() uint64 { return k.deltas }

// Err returns the fatal error that halted the kernel, if any.
//
func (k *Kernel) Err() error { return k.err }

func (k *Kernel) fail(err error) {
	if k.err != nil {
		return
	}
	k.err = err
	k.log.Printf("** Fatal: (time %d) %v", k.now, err)
}

// LoadDone runs the load done callbacks. It must be called once all foreign
// models are elaborated and before the first call to Run.
//
func (k *Kernel) LoadDone() error {
	return k.callbacks("load done", k.loadDone)
}

// Quit runs and clears the quit callbacks.
//
func (k *Kernel) Quit() error {
	cbs := k.quit
	k.quit = nil
	k.restart = nil
	return k.callbacks("quit", cbs)
}

// Restart runs the restart callbacks, then resets the kernel to time zero
// with no process, driver or callback left. Signals are kept but reset to
// their zero value. The design can then be elaborated again.
//
func (k *Kernel) Restart() error {
	cbs := k.restart
	k.quit = nil
	k.restart = nil
	k.loadDone = nil
	k.procs = nil
	err := k.callbacks("restart", cbs)
	for _, s := range k.signals {
		s.reset()
		s.watch = nil
	}
	k.init()
	return err
}

func (k *Kernel) callbacks(name string, cbs []func() error) error {
	for _, fn := range cbs {
		if err := fn(); err != nil {
			err = errors.Wrap(err, name+" callback")
			k.fail(err)
			return err
		}
	}
	return nil
}

// vtime converts a kernel time to engine time.
//
func (k *Kernel) vtime(t fli.Time) akita.VTimeInSec {
	return akita.VTimeInSec(float64(t) * math.Pow10(k.cfg.Resolution))
}

// Duration converts a duration in seconds to kernel time, rounding to the
// nearest resolution unit.
//
func (k *Kernel) Duration(d akita.VTimeInSec) fli.Time {
	return fli.Time(math.Round(float64(d) / math.Pow10(k.cfg.Resolution)))
}

func (k *Kernel) scheduleStep(at fli.Time) {
	if k.steps[at] {
		return
	}
	k.steps[at] = true
	if at > k.horizon {
		k.later = append(k.later, at)
		return
	}
	k.engine.Schedule(&stepEvent{akita.NewEventBase(k.vtime(at), k), at})
}

func (k *Kernel) post(t *transaction, delay fli.Time) {
	if delay == 0 && k.inStep {
		k.delta = append(k.delta, t)
		return
	}
	k.queue[t.at] = append(k.queue[t.at], t)
	k.scheduleStep(t.at)
}

// After registers fn to be called at the beginning of the time step delay
// units from now. The minimum delay is one unit.
//
func (k *Kernel) After(delay fli.Time, fn func() error) {
	if delay < 1 {
		delay = 1
	}
	at := k.now + delay
	k.wakeups[at] = append(k.wakeups[at], fn)
	k.scheduleStep(at)
}

// Run runs the simulation for the given duration. It returns the fatal error
// that halted the simulation, if any. Once halted, Run does nothing.
//
func (k *Kernel) Run(d fli.Time) error {
	if k.err != nil {
		return k.err
	}
	k.horizon = k.now + d
	later := k.later[:0]
	for _, at := range k.later {
		if at > k.horizon {
			later = append(later, at)
			continue
		}
		k.engine.Schedule(&stepEvent{akita.NewEventBase(k.vtime(at), k), at})
	}
	k.later = later
	if err := k.engine.Run(); err != nil && k.err == nil {
		k.fail(err)
	}
	if k.err != nil {
		return k.err
	}
	k.now = k.horizon
	return nil
}

// Handle implements akita's sim.Handler.
//
func (k *Kernel) Handle(e akita.Event) error {
	evt, ok := e.(*stepEvent)
	if !ok {
		return errors.Errorf("unexpected event %T", e)
	}
	k.step(evt.at)
	return nil
}

func (k *Kernel) step(at fli.Time) {
	delete(k.steps, at)
	if k.err != nil {
		return
	}
	k.now = at
	k.inStep = true
	defer func() { k.inStep = false }()

	for _, fn := range k.wakeups[at] {
		if err := fn(); err != nil {
			k.fail(err)
			return
		}
	}
	delete(k.wakeups, at)

	active := append(k.queue[at], k.delta...)
	delete(k.queue, at)
	k.delta = nil
	for n := 0; len(active) > 0; n++ {
		if n >= k.cfg.MaxDeltas {
			k.fail(errors.Errorf("delta cycle limit (%d) reached", k.cfg.MaxDeltas))
			return
		}
		k.deltas++
		k.apply(active)
		if !k.runProcesses() {
			return
		}
		active, k.delta = k.delta, nil
	}
}

func (k *Kernel) apply(ts []*transaction) {
	for _, t := range ts {
		if t.dead {
			continue
		}
		t.dead = true
		t.drv.sig.set(t.val)
	}
}

// runProcesses runs the processes triggered by the current events, then
// clears them. It returns false if the kernel halted.
//
func (k *Kernel) runProcesses() bool {
	events := k.events
	k.events = nil
	for _, s := range events {
		if len(s.watch) > 0 {
			v := s.Value()
			for _, fn := range s.watch {
				fn(k.now, v)
			}
		}
	}
	for _, p := range k.procs {
		if !p.triggered() {
			continue
		}
		if err := p.fn(); err != nil {
			k.fail(errors.Wrap(err, p.name))
			break
		}
	}
	for _, s := range events {
		s.event = false
	}
	return k.err == nil
}
