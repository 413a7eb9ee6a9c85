// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package sim

import (
	"github.com/db47h/xbar/fli"
)

type transaction struct {
	drv  *Driver
	at   fli.Time
	val  fli.Value
	dead bool // cancelled or applied
}

// Driver is the single driver of a signal.
//
type Driver struct {
	sig     *Signal
	k       *Kernel
	pending []*transaction
}

// Signal returns the driven signal.
//
func (d *Driver) Signal() *Signal { return d.sig }

// Schedule schedules v on the driven signal after delay, in resolution
// units. Negative delays are treated as zero. Pending transactions at or
// after the new one are cancelled (inertial delay).
//
// Assigning a value of the wrong shape is fatal to the run.
//
func (d *Driver) Schedule(v fli.Value, delay fli.Time) {
	if d.k.err != nil {
		return
	}
	if err := d.sig.check(v); err != nil {
		d.k.fail(err)
		return
	}
	if delay < 0 {
		delay = 0
	}
	at := d.k.now + delay
	live := d.pending[:0]
	for _, t := range d.pending {
		if t.at >= at {
			t.dead = true
		}
		if !t.dead {
			live = append(live, t)
		}
	}
	d.pending = live
	t := &transaction{drv: d, at: at, val: copyValue(v)}
	d.pending = append(d.pending, t)
	d.k.post(t, delay)
}

// Set is a shorthand for scheduling l with a zero delay.
//
func (d *Driver) Set(l fli.Logic) { d.Schedule(l.Value(), 0) }
