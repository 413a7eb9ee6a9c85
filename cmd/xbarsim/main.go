// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Command xbarsim runs a crossbar instance on the reference kernel, driven by
// a stimulus script.
//
// A script has one statement per line:
//
//	reset N           hold reset for N clock cycles (default 1)
//	idle N            run N clock cycles (default 1)
//	program r0; r1..  program the crossbar, rows separated by ';'
//	compute v0, v1..  run a compute request and print the output
//	expect y0, y1..   check the last compute output
//
// Integer values may be written as max or min.
//
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/db47h/xbar"
	"github.com/db47h/xbar/backend"
	_ "github.com/db47h/xbar/backend/ideal"
	"github.com/db47h/xbar/fli"
	"github.com/db47h/xbar/hwtest"
	"github.com/db47h/xbar/internal/hdl"
	akita "github.com/sarchlab/akita/v3/sim"
	"github.com/tebeka/atexit"
)

var (
	helpvar    bool
	rowsvar    int
	colsvar    int
	modulevar  string
	pathvar    string
	codecvar   string
	scalevar   float64
	resvar     int
	freqvar    float64
	delayvar   int
	tolvar     float64
	tracevar   bool
	verbosevar bool
	intvar     bool
)

const usage = "xbarsim [flags] script"

func init() {
	log.SetFlags(0)
	log.SetOutput(os.Stderr)
	log.SetPrefix("xbarsim: ")
}

func init() {
	flag.BoolVar(&helpvar, "help", false, "Displays command usage")
	flag.IntVar(&rowsvar, "rows", xbar.DefaultRows, "Number of crossbar rows (compute input length)")
	flag.IntVar(&colsvar, "cols", xbar.DefaultCols, "Number of crossbar columns (compute output length)")
	flag.StringVar(&modulevar, "backend", "ideal", "Backend module name")
	flag.StringVar(&pathvar, "path", ".", "Backend module search path, a "+string(filepath.ListSeparator)+" separated list of directories")
	flag.StringVar(&codecvar, "codec", "symmetric", "Numeric codec: symmetric or scaled")
	flag.Float64Var(&scalevar, "scale", 1, "Scale factor of the scaled codec")
	flag.IntVar(&resvar, "resolution", -12, "Simulator time resolution as a power of ten exponent of seconds")
	flag.Float64Var(&freqvar, "freq", 100, "Clock frequency in MHz")
	flag.IntVar(&delayvar, "delay", 0, "Output delay in ns")
	flag.Float64Var(&tolvar, "tolerance", 1e-6, "Tolerance of expect statements on real outputs")
	flag.BoolVar(&tracevar, "trace", false, "Print output port value changes")
	flag.BoolVar(&verbosevar, "v", false, "Print backend calls")
	flag.BoolVar(&intvar, "int", false, "Use an integer compute output instead of real")
}

func main() {
	flag.Parse()
	if helpvar {
		fmt.Println(usage)
		flag.PrintDefaults()
		atexit.Exit(0)
	}
	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, usage)
		atexit.Exit(2)
	}
	log.SetPrefix("xbarsim: " + args[0] + ": ")

	src, err := os.ReadFile(args[0])
	if err != nil {
		atexit.Fatal(err)
	}
	stmts, err := hdl.ParseScript(string(src))
	if err != nil {
		atexit.Fatal(err)
	}
	codec, err := xbar.ParseCodec(codecvar, scalevar)
	if err != nil {
		atexit.Fatal(err)
	}

	out := fli.RealType
	if intvar {
		out = fli.IntegerType
	}
	dims := xbar.Dimensions{Rows: rowsvar, Cols: colsvar}
	b, err := hwtest.NewBench(hwtest.Config{
		Dims:       dims,
		Freq:       akita.Freq(freqvar) * akita.MHz,
		Resolution: resvar,
		Output:     out,
		Transcript: newTranscript(os.Stdout),
	})
	if err != nil {
		atexit.Fatal(err)
	}

	s := xbar.NewSession(backend.Loader{}, modulevar, filepath.SplitList(pathvar)...)
	_, err = b.Start(s, xbar.Config{
		Codec:   codec,
		Delay:   xbar.NS(delayvar),
		Verbose: verbosevar,
	})
	if err != nil {
		atexit.Fatal(err)
	}
	atexit.Register(func() {
		if err := b.K.Quit(); err != nil {
			log.Print(err)
		}
	})

	if tracevar {
		for _, p := range []string{xbar.PortReady, xbar.PortOutput} {
			name := p
			b.Signal(p).Watch(func(now fli.Time, v fli.Value) {
				fmt.Printf("@%d %s = %v\n", now, name, traceValue(v))
			})
		}
	}

	r := &runner{b: b, tol: tolvar, w: os.Stdout}
	for _, st := range stmts {
		if err = r.exec(&st); err != nil {
			atexit.Fatalf("line %d: %s: %v", st.Line, st.Op, err)
		}
	}
	p, c := b.Inst.Serviced()
	fmt.Printf("%d programs, %d computes, %d clock cycles\n", p, c, b.Clock.Cycles())
	atexit.Exit(0)
}

func traceValue(v fli.Value) fmt.Stringer {
	if s, ok := v.(fli.Scalar); ok {
		return fli.ToLogic(int32(s))
	}
	return v
}
