// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package xbar

import (
	"reflect"
	"strings"

	"github.com/db47h/xbar/fli"
	"github.com/pkg/errors"
)

var signalType = reflect.TypeOf((*fli.Signal)(nil)).Elem()

// signals holds the signals an instance is connected to.
//
type signals struct {
	Clk          fli.Signal `xbar:"in,clk"`
	Reset        fli.Signal `xbar:"in,rst_n"`
	Program      fli.Signal `xbar:"in"`
	Compute      fli.Signal `xbar:"in"`
	ProgramInput fli.Signal `xbar:"in,crossbar_input_prog"`
	ComputeInput fli.Signal `xbar:"in,crossbar_input_comp"`
	Ready        fli.Signal `xbar:"out,crossbar_rdy"`
	Output       fli.Signal `xbar:"out,crossbar_output"`
}

type portField struct {
	name   string
	output bool
	index  int
}

// portFields returns the port fields of struct type typ, identified by field
// tags.
//
// The field tag must be `xbar:"in"` or `xbar:"out"`. By default, the port name
// is the field name in lowercase. A specific port name can be forced by adding
// it in the tag: `xbar:"in,port_name"`. Tagged fields must be of type
// fli.Signal.
//
func portFields(typ reflect.Type) []portField {
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if k := typ.Kind(); k != reflect.Struct {
		panic(errors.Errorf("unsupported type %q for %q", k, typ.Name()))
	}
	var pfs []portField
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag, ok := f.Tag.Lookup("xbar")
		if !ok {
			continue
		}
		pf := portField{name: strings.ToLower(f.Name), index: i}
		tv := strings.Split(tag, ",")
		if len(tv) > 2 {
			panic(errors.Errorf("unsupported tag %q for field %q in %q", tag, f.Name, typ.Name()))
		}
		if len(tv) == 2 && tv[1] != "" {
			pf.name = tv[1]
		}
		switch tv[0] {
		case "in":
		case "out":
			pf.output = true
		default:
			panic(errors.Errorf("unsupported tag %q for field %q in %q", tag, f.Name, typ.Name()))
		}
		if f.Type != signalType {
			panic(errors.Errorf("unsupported type %q for field %q in %q", f.Type, f.Name, typ.Name()))
		}
		pfs = append(pfs, pf)
	}
	return pfs
}

// bindSignals looks up the signal connected to every port field of v, a
// pointer to struct. All missing signals are reported in a single
// ElaborationFailure.
//
func bindSignals(k fli.Kernel, region string, ports Ports, v interface{}) error {
	e := reflect.ValueOf(v).Elem()
	var missing []string
	for _, pf := range portFields(e.Type()) {
		p := ports.path(region, pf.name)
		s := k.FindSignal(p)
		if s == nil {
			missing = append(missing, p)
			continue
		}
		e.Field(pf.index).Set(reflect.ValueOf(s))
	}
	switch len(missing) {
	case 0:
		return nil
	case 1:
		return errorf(ElaborationFailure, "signal %s not found", missing[0])
	}
	return errorf(ElaborationFailure, "signals not found: %s", strings.Join(missing, ", "))
}

// createDrivers creates a driver for every output port field of v.
//
func createDrivers(k fli.Kernel, v interface{}) (map[string]fli.Driver, error) {
	e := reflect.ValueOf(v).Elem()
	drvs := make(map[string]fli.Driver)
	for _, pf := range portFields(e.Type()) {
		if !pf.output {
			continue
		}
		s, _ := e.Field(pf.index).Interface().(fli.Signal)
		if s == nil {
			return nil, errorf(ElaborationFailure, "port %s not bound", pf.name)
		}
		d, err := k.CreateDriver(s)
		if err != nil {
			return nil, newError(ElaborationFailure, errors.Wrapf(err, "create driver for %s", s.Name()))
		}
		drvs[pf.name] = d
	}
	return drvs, nil
}
