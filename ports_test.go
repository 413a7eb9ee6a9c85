package xbar_test

import (
	"strings"
	"testing"

	"github.com/db47h/xbar"
)

func TestParsePorts(t *testing.T) {
	p, err := xbar.ParsePorts("clk=clock, rst_n=reset_n")
	if err != nil {
		t.Fatal(err)
	}
	d := xbar.DefaultPorts()
	d[xbar.PortClk], d[xbar.PortReset] = "clock", "reset_n"
	if len(p) != len(d) {
		t.Fatalf("got %v", p)
	}
	for k, v := range d {
		if p[k] != v {
			t.Errorf("port %s: got %q, expected %q", k, p[k], v)
		}
	}
	if s := p.String(); !strings.HasPrefix(s, "clk=clock, rst_n=reset_n, program=program") {
		t.Fatalf("got %q", s)
	}

	p, err = xbar.ParsePorts("")
	if err != nil {
		t.Fatal(err)
	}
	if p.String() != xbar.DefaultPorts().String() {
		t.Fatalf("empty port map: got %q", p)
	}

	for _, in := range []string{"clock=clk", "clk=a, clk=b", "clk"} {
		if _, err := xbar.ParsePorts(in); err == nil {
			t.Errorf("%q: expected error", in)
		}
	}
}
