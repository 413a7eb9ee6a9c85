package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/db47h/xbar"
	"github.com/db47h/xbar/backend"
	"github.com/db47h/xbar/hwtest"
	"github.com/db47h/xbar/internal/hdl"
)

func runScript(t *testing.T, script string) (string, error) {
	t.Helper()
	b, err := hwtest.NewBench(hwtest.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err = b.Start(xbar.NewSession(backend.Loader{}, "ideal"), xbar.Config{}); err != nil {
		t.Fatal(err)
	}
	defer b.K.Quit()
	stmts, err := hdl.ParseScript(script)
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	r := &runner{b: b, tol: 1e-6, w: &out}
	for i := range stmts {
		if err = r.exec(&stmts[i]); err != nil {
			return out.String(), err
		}
	}
	return out.String(), nil
}

func TestScript(t *testing.T) {
	out, err := runScript(t, `
reset 2
program max, max; max, max; max, max
idle
compute max, 0, min
expect 0, 0
compute max, max, max
expect 1.0, 1
`)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "compute (2147483647, 0, -2147483648) => (0, 0)") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestScript_errors(t *testing.T) {
	data := []struct {
		script string
		err    string
	}{
		{"expect 1, 2", "no compute output"},
		{"reset 0", "positive cycle count"},
		{"idle 1.5", "positive cycle count"},
		{"jump 3", "unknown statement"},
		{"reset\nprogram 1, 2; 3, 4", "got 2 rows, expected 3"},
		{"reset\ncompute 1, foo, 3", "expected integer value"},
		{"reset\ncompute 1, 4294967296, 3", "out of range"},
		{"reset\nprogram 1,1;1,1;1,1\ncompute 1, 1, 1\nexpect 0.5, 0", "output 0"},
		{"reset\ncompute 1, 1, 1", "backend call failure: mem_compute: crossbar not programmed"},
	}
	for _, d := range data {
		t.Run(d.script, func(t *testing.T) {
			_, err := runScript(t, d.script)
			if err == nil || !strings.Contains(err.Error(), d.err) {
				t.Fatalf("expected error containing %q, got %v", d.err, err)
			}
		})
	}
}

func TestTranscript(t *testing.T) {
	var buf bytes.Buffer
	tr := &transcript{w: &buf, bold: true}
	if _, err := tr.Write([]byte("note\n")); err != nil {
		t.Fatal(err)
	}
	n, err := tr.Write([]byte("** Error: boom\n"))
	if err != nil || n != 15 {
		t.Fatalf("wrote %d, %v", n, err)
	}
	if buf.String() != "note\n\033[1m** Error: boom\033[0m\n" {
		t.Fatalf("got %q", buf.String())
	}
}
