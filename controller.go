// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package xbar

import (
	"strconv"

	"github.com/pkg/errors"
)

// State is the controller state.
//
type State int

// Controller states.
//
const (
	Idle State = iota
	Programming
	Computing
	Fault
)

var stateNames = [...]string{"idle", "programming", "computing", "fault"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
	return stateNames[s]
}

// Lines are the control line levels sampled on a clock event. A line is true
// when asserted. Reset is active low, so Reset is true when rst_n is low.
//
type Lines struct {
	Reset   bool
	Clock   bool
	Program bool
	Compute bool
}

// Operations are the side effects of the controller. Program and Compute
// perform a complete backend transaction, reading inputs and driving outputs.
//
type Operations interface {
	SetReady(ready bool)
	Program() error
	Compute() error
}

// Controller is the request/ready handshake state machine. Requests are
// serviced synchronously on the rising clock edge during which they are
// sampled: ready is lowered, the operation runs, then ready is raised again.
//
// Any error is fatal: the controller stays in the Fault state and returns the
// same error on every subsequent edge.
//
type Controller struct {
	ops   Operations
	state State
	err   error
	n     [2]uint64 // serviced program and compute requests
}

// NewController returns a new controller in the Idle state.
//
func NewController(ops Operations) *Controller {
	return &Controller{ops: ops}
}

// State returns the controller state.
func (c *Controller) State() State { return c.state }

// Err returns the error that moved the controller to the Fault state.
func (c *Controller) Err() error { return c.err }

// Serviced returns the number of program and compute requests serviced.
func (c *Controller) Serviced() (program, compute uint64) { return c.n[0], c.n[1] }

// Edge handles a clock event with the given line levels.
//
// Reset takes precedence over everything else and is honored on any clock
// event. Outside of reset, requests are only sampled on rising edges.
//
func (c *Controller) Edge(l Lines) error {
	if c.state == Fault {
		return c.err
	}
	if l.Reset {
		c.ops.SetReady(true)
		c.state = Idle
		return nil
	}
	if !l.Clock {
		return nil
	}
	switch {
	case l.Program && l.Compute:
		return c.fail(errorf(ProtocolViolation, "program and compute requested simultaneously"))
	case l.Program:
		return c.service(Programming, c.ops.Program)
	case l.Compute:
		return c.service(Computing, c.ops.Compute)
	}
	c.ops.SetReady(true)
	c.state = Idle
	return nil
}

func (c *Controller) service(st State, op func() error) error {
	c.state = st
	c.ops.SetReady(false)
	if err := op(); err != nil {
		return c.fail(errors.Wrap(err, st.String()))
	}
	c.n[st-Programming]++
	c.ops.SetReady(true)
	c.state = Idle
	return nil
}

func (c *Controller) fail(err error) error {
	c.state = Fault
	c.err = err
	return err
}
