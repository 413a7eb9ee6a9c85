package sim_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/db47h/xbar/fli"
	"github.com/db47h/xbar/sim"
	"github.com/pkg/errors"
	akita "github.com/sarchlab/akita/v3/sim"
)

func newKernel(t *testing.T) *sim.Kernel {
	t.Helper()
	return sim.New(sim.Config{Transcript: io.Discard})
}

func newSignal(t *testing.T, k *sim.Kernel, path string, typ *fli.Type) *sim.Signal {
	t.Helper()
	s, err := k.NewSignal(path, typ)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func newDriver(t *testing.T, k *sim.Kernel, s *sim.Signal) *sim.Driver {
	t.Helper()
	d, err := k.Driver(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestClock(t *testing.T) {
	k := newKernel(t)
	clk := newSignal(t, k, "/top/clk", fli.StdLogic)
	var rising []fli.Time
	clk.Watch(func(now fli.Time, v fli.Value) {
		if fli.LogicOf(v).High() {
			rising = append(rising, now)
		}
	})
	c, err := k.NewClock(clk, 100*akita.MHz)
	if err != nil {
		t.Fatal(err)
	}
	if p := c.Period(); p != 10000 {
		t.Fatalf("expected a 10000ps period, got %d", p)
	}
	if err = k.Run(10 * c.Period()); err != nil {
		t.Fatal(err)
	}
	if len(rising) != 10 || c.Cycles() != 10 {
		t.Fatalf("expected 10 rising edges, got %d (%d cycles)", len(rising), c.Cycles())
	}
	for i, at := range rising {
		if exp := fli.Time(i)*c.Period() + c.Period()/2; at != exp {
			t.Errorf("edge %d at %d, expected %d", i, at, exp)
		}
	}
	if k.Now() != 10*c.Period() {
		t.Errorf("Now() = %d", k.Now())
	}
	if !clk.Logic().Low() {
		t.Errorf("clock is %v after a whole number of periods", clk.Logic())
	}
}

func TestClock_resolution(t *testing.T) {
	k := sim.New(sim.Config{Resolution: -9, Transcript: io.Discard})
	clk := newSignal(t, k, "clk", fli.StdLogic)
	if _, err := k.NewClock(clk, 2*akita.GHz); err == nil {
		t.Fatal("expected an error for a 2GHz clock at 1ns resolution")
	}
}

func TestProcess_delta(t *testing.T) {
	k := newKernel(t)
	a := newSignal(t, k, "/top/a", fli.IntegerType)
	b := newSignal(t, k, "/top/b", fli.IntegerType)
	da, db := newDriver(t, k, a), newDriver(t, k, b)
	runs := 0
	p := k.CreateProcess("incr", func() error {
		runs++
		db.Schedule(a.Value().(fli.Scalar)+1, 0)
		return nil
	})
	p.Sensitize(a)

	da.Schedule(fli.Scalar(5), 10)
	if err := k.Run(20); err != nil {
		t.Fatal(err)
	}
	if v := b.Value(); v != fli.Scalar(6) {
		t.Errorf("b = %v, expected 6", v)
	}
	if runs != 1 {
		t.Errorf("process ran %d times", runs)
	}
	if n := k.Deltas(); n != 2 {
		t.Errorf("expected 2 delta cycles, got %d", n)
	}
}

func TestDriver_inertial(t *testing.T) {
	td := []struct {
		name   string
		delays []fli.Time
		events int
		final  fli.Scalar
	}{
		{"preempt", []fli.Time{10, 5}, 1, 2},
		{"sequence", []fli.Time{5, 10}, 2, 2},
		{"same_time", []fli.Time{5, 5}, 1, 2},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			k := newKernel(t)
			s := newSignal(t, k, "s", fli.IntegerType)
			drv := newDriver(t, k, s)
			events := 0
			s.Watch(func(fli.Time, fli.Value) { events++ })
			for i, delay := range d.delays {
				drv.Schedule(fli.Scalar(i+1), delay)
			}
			if err := k.Run(20); err != nil {
				t.Fatal(err)
			}
			if events != d.events {
				t.Errorf("got %d events, expected %d", events, d.events)
			}
			if v := s.Value(); v != d.final {
				t.Errorf("final value %v, expected %v", v, d.final)
			}
		})
	}
}

func TestSignal_arrayOfArrays(t *testing.T) {
	k := newKernel(t)
	m := newSignal(t, k, "/top/m", fli.ArrayOf(fli.ArrayOf(fli.IntegerType, 2), 3))
	drv := newDriver(t, k, m)
	drv.Schedule(fli.IntArray{1, 2, 3, 4, 5, 6}, 0)
	if err := k.Run(1); err != nil {
		t.Fatal(err)
	}
	rows := m.Elements()
	if len(rows) != 3 {
		t.Fatalf("got %d rows", len(rows))
	}
	if v := rows[1].Value().String(); v != "(3, 4)" {
		t.Errorf("row 1 = %s", v)
	}
	if v := m.Value().String(); v != "(1, 2, 3, 4, 5, 6)" {
		t.Errorf("m = %s", v)
	}
	if _, err := k.CreateDriver(rows[0]); err == nil {
		t.Error("expected an error when driving an element of a driven signal")
	}
	if rows[2].Name() != "m(2)" {
		t.Errorf("element name %q", rows[2].Name())
	}
}

func TestSignal_errors(t *testing.T) {
	k := newKernel(t)
	newSignal(t, k, "/top/a", fli.IntegerType)
	if _, err := k.NewSignal("/top/a", fli.RealType); err == nil {
		t.Error("expected an error for a duplicate signal")
	}
	if _, err := k.NewSignal("/top/r", fli.ArrayOf(fli.ArrayOf(fli.RealType, 2), 2)); err == nil {
		t.Error("expected an error for a 2D real array")
	}
	if s := k.FindSignal("/top/none"); s != nil {
		t.Errorf("FindSignal returned %v", s)
	}
	other := sim.New(sim.Config{Transcript: io.Discard})
	if _, err := other.CreateDriver(k.Signal("/top/a")); err == nil {
		t.Error("expected an error for a foreign signal")
	}
}

func TestKernel_fatal(t *testing.T) {
	var out bytes.Buffer
	k := sim.New(sim.Config{Transcript: &out})
	errBoom := errors.New("boom")
	a := newSignal(t, k, "a", fli.StdLogic)
	b := newSignal(t, k, "b", fli.StdLogic)
	da, db := newDriver(t, k, a), newDriver(t, k, b)
	k.CreateProcess("failing", func() error {
		db.Set(fli.Logic1)
		return errBoom
	}).Sensitize(a)

	da.Schedule(fli.Logic1.Value(), 5)
	da.Schedule(fli.Logic0.Value(), 10)
	err := k.Run(20)
	if errors.Cause(err) != errBoom {
		t.Fatalf("expected boom, got %v", err)
	}
	if b.Logic() != fli.LogicU {
		t.Errorf("b was updated after the fatal error: %v", b.Logic())
	}
	if !a.Logic().High() {
		t.Errorf("a = %v, the run went on after the fatal error", a.Logic())
	}
	if !strings.Contains(out.String(), "** Fatal: (time 5) failing: boom") {
		t.Errorf("unexpected transcript %q", out.String())
	}
	if err2 := k.Run(10); err2 != err {
		t.Errorf("Run after halt returned %v", err2)
	}
}

func TestKernel_badValue(t *testing.T) {
	k := newKernel(t)
	s := newSignal(t, k, "v", fli.ArrayOf(fli.RealType, 2))
	drv := newDriver(t, k, s)
	drv.Schedule(fli.RealArray{1, 2, 3}, 0)
	if err := k.Run(1); err == nil {
		t.Fatal("expected an error for a value of the wrong length")
	}
}

func TestKernel_deltaLimit(t *testing.T) {
	k := sim.New(sim.Config{MaxDeltas: 10, Transcript: io.Discard})
	a := newSignal(t, k, "a", fli.StdLogic)
	da := newDriver(t, k, a)
	k.CreateProcess("osc", func() error {
		da.Set(fli.Bool(!a.Logic().High()))
		return nil
	}).Sensitize(a)
	da.Set(fli.Logic1)
	err := k.Run(1)
	if err == nil || !strings.Contains(err.Error(), "delta cycle limit") {
		t.Fatalf("expected a delta limit error, got %v", err)
	}
}

func TestKernel_callbacks(t *testing.T) {
	k := newKernel(t)
	var calls []string
	k.AddLoadDoneCB(func() error { calls = append(calls, "load"); return nil })
	k.AddQuitCB(func() error { calls = append(calls, "quit"); return nil })
	k.AddRestartCB(func() error { calls = append(calls, "restart"); return nil })
	if err := k.LoadDone(); err != nil {
		t.Fatal(err)
	}
	s := newSignal(t, k, "s", fli.IntegerType)
	newDriver(t, k, s).Schedule(fli.Scalar(3), 0)
	if err := k.Run(100); err != nil {
		t.Fatal(err)
	}
	if err := k.Restart(); err != nil {
		t.Fatal(err)
	}
	if k.Now() != 0 || s.Value() != fli.Scalar(0) {
		t.Errorf("after restart: now = %d, s = %v", k.Now(), s.Value())
	}
	if _, err := k.CreateDriver(s); err != nil {
		t.Errorf("driver not released by restart: %v", err)
	}
	if err := k.Quit(); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(calls, ","); got != "load,restart" {
		t.Errorf("callbacks: %s", got)
	}
}
