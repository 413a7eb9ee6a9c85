/*
Package xbar bridges a clocked digital simulation to the numeric model of an
analog crossbar (compute in memory) array.

An Instance is elaborated in a design region of a host kernel (see package
fli). On every rising edge of its clock port it samples the program and
compute request lines. A program request reads the conductance matrix from
the crossbar_input_prog port and hands it to the backend. A compute request
reads the input vector from crossbar_input_comp, has the backend compute the
vector matrix product, and drives the result on crossbar_output. The
crossbar_rdy port is lowered while a request is serviced.

Integer signal values are normalized to and from the backend domain by a
Codec. Backends implement NumericBackend and are loaded once per process by a
Session, shared by all instances.

	k := sim.New(sim.Config{})
	// ... create the /MIMO_TOP signals
	s := xbar.NewSession(backend.Loader{}, "ideal")
	in, err := xbar.Elaborate(k, s, xbar.Config{})
	if err != nil {
		// ...
	}
	if err = k.LoadDone(); err != nil {
		// ...
	}

The sim package provides a reference kernel and the hwtest package a test
bench for it.

*/
package xbar
