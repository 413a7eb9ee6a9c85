// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package sim

import (
	"github.com/db47h/xbar/fli"
	"github.com/pkg/errors"
	akita "github.com/sarchlab/akita/v3/sim"
)

// Clock drives a std_logic signal with a square wave.
//
type Clock struct {
	drv     *Driver
	half    fli.Time
	stopped bool
	cycles  uint64
}

// NewClock creates a clock of frequency f driving s. The signal is driven
// low at the current time and the first rising edge happens half a period
// later.
//
func (k *Kernel) NewClock(s *Signal, f akita.Freq) (*Clock, error) {
	if f <= 0 {
		return nil, errors.New("clock frequency must be positive")
	}
	half := k.Duration(f.Period()) / 2
	if half < 1 {
		return nil, errors.Errorf("clock frequency %v Hz too high for resolution 1e%d s", float64(f), k.cfg.Resolution)
	}
	drv, err := k.Driver(s)
	if err != nil {
		return nil, errors.Wrap(err, "clock")
	}
	c := &Clock{drv: drv, half: half}
	drv.Set(fli.Logic0)
	k.After(half, c.toggle)
	return c, nil
}

func (c *Clock) toggle() error {
	if c.stopped {
		return nil
	}
	s := c.drv.sig
	if s.Logic().High() {
		c.drv.Set(fli.Logic0)
	} else {
		c.drv.Set(fli.Logic1)
		c.cycles++
	}
	s.k.After(c.half, c.toggle)
	return nil
}

// Period returns the clock period in kernel time units.
//
func (c *Clock) Period() fli.Time { return 2 * c.half }

// Cycles returns the number of rising edges generated so far.
//
func (c *Clock) Cycles() uint64 { return c.cycles }

// Stop stops the clock. The signal keeps its current value.
//
func (c *Clock) Stop() { c.stopped = true }
