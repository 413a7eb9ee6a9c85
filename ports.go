// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package xbar

import (
	"sort"
	"strings"

	"github.com/db47h/xbar/internal/hdl"
	"github.com/pkg/errors"
)

// Port names of the crossbar instance.
//
const (
	PortClk          = "clk"
	PortReset        = "rst_n"
	PortProgram      = "program"
	PortCompute      = "compute"
	PortProgramInput = "crossbar_input_prog"
	PortComputeInput = "crossbar_input_comp"
	PortReady        = "crossbar_rdy"
	PortOutput       = "crossbar_output"
)

var portNames = []string{
	PortClk, PortReset, PortProgram, PortCompute,
	PortProgramInput, PortComputeInput, PortReady, PortOutput,
}

// Ports maps the instance port names (the map key) to signal names in the
// design region.
//
type Ports map[string]string

// DefaultPorts returns the identity port map: every port is connected to the
// signal of the same name.
//
func DefaultPorts() Ports {
	p := make(Ports, len(portNames))
	for _, n := range portNames {
		p[n] = n
	}
	return p
}

// ParsePorts parses a port map like "clk=clock, rst_n=reset". Ports not
// listed keep their default connection.
//
func ParsePorts(s string) (Ports, error) {
	as, err := hdl.ParseAssignments(s)
	if err != nil {
		return nil, errors.Wrap(err, "parse port map")
	}
	p := make(Ports, len(as))
	for _, a := range as {
		if _, ok := p[a.Port]; ok {
			return nil, errors.Errorf("port %q connected twice", a.Port)
		}
		p[a.Port] = a.Signal
	}
	return p.check()
}

// Copy returns a copy of p.
//
func (p Ports) Copy() Ports {
	t := make(Ports, len(p))
	for k, v := range p {
		t[k] = v
	}
	return t
}

// check returns a complete copy of p where unconnected ports are connected to
// the signal of the same name. It fails on unknown ports.
//
func (p Ports) check() (Ports, error) {
	p = p.Copy()
	ports := make(Ports, len(portNames))
	for _, name := range portNames {
		if sig, ok := p[name]; ok {
			if sig == "" {
				return nil, errors.Errorf("empty signal name for port %q", name)
			}
			ports[name] = sig
			delete(p, name)
		} else {
			ports[name] = name
		}
	}
	if len(p) > 0 {
		unknown := make([]string, 0, len(p))
		for name := range p {
			unknown = append(unknown, name)
		}
		sort.Strings(unknown)
		return nil, errors.Errorf("unknown port %q", unknown[0])
	}
	return ports, nil
}

// path returns the full path of the signal connected to port in region.
//
func (p Ports) path(region, port string) string {
	sig := p[port]
	if strings.HasPrefix(sig, "/") {
		return sig
	}
	return strings.TrimSuffix(region, "/") + "/" + sig
}

func (p Ports) String() string {
	var b strings.Builder
	for i, n := range portNames {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(n)
		b.WriteByte('=')
		b.WriteString(p[n])
	}
	return b.String()
}
