package hdl_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/db47h/xbar/internal/hdl"
)

func TestLexer(t *testing.T) {
	l := hdl.NewLexer("program -1, 2.5e3;max # comment\n+7")
	want := []hdl.Type{hdl.Ident, hdl.Int, hdl.Comma, hdl.Float, hdl.Semicolon, hdl.Ident, hdl.Newline, hdl.Int, hdl.EOF, hdl.EOF}
	var got []hdl.Type
	var vals []interface{}
	for range want {
		i := l.Lex()
		got = append(got, i.Type)
		vals = append(vals, i.Value)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, expected %v", got, want)
	}
	if vals[1] != int64(-1) || vals[3] != 2500.0 || vals[7] != int64(7) {
		t.Fatalf("bad values %v", vals)
	}
}

func TestParseAssignments(t *testing.T) {
	data := []struct {
		in  string
		out []hdl.Assignment
		err string
	}{
		{"", nil, ""},
		{"clk=clock", []hdl.Assignment{{"clk", "clock", 0}}, ""},
		{"clk = clock, rst_n = reset_n", []hdl.Assignment{{"clk", "clock", 0}, {"rst_n", "reset_n", 13}}, ""},
		{"clk", nil, "expected '='"},
		{"clk=", nil, "expected signal name"},
		{"clk=a b", nil, "unexpected identifier"},
		{"=a", nil, "expected port name"},
		{"clk=a,", nil, "expected port name"},
		{"clk=a/b", nil, "unexpected '/'"},
	}
	for _, d := range data {
		t.Run(d.in, func(t *testing.T) {
			as, err := hdl.ParseAssignments(d.in)
			if d.err != "" {
				if err == nil || !strings.Contains(err.Error(), d.err) {
					t.Fatalf("expected error containing %q, got %v", d.err, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(as, d.out) {
				t.Fatalf("got %v, expected %v", as, d.out)
			}
		})
	}
}

func TestParseScript(t *testing.T) {
	script := `# test script
reset 2

program 1, 2; max, min
compute -3, 0.5
idle
`
	stmts, err := hdl.ParseScript(script)
	if err != nil {
		t.Fatal(err)
	}
	var ops []string
	for _, s := range stmts {
		ops = append(ops, s.Op)
	}
	if !reflect.DeepEqual(ops, []string{"reset", "program", "compute", "idle"}) {
		t.Fatalf("got ops %v", ops)
	}
	if stmts[0].Line != 2 || stmts[1].Line != 4 || stmts[3].Line != 6 {
		t.Fatalf("bad line numbers: %d %d %d", stmts[0].Line, stmts[1].Line, stmts[3].Line)
	}
	p := stmts[1]
	if len(p.Rows) != 2 || len(p.Rows[0]) != 2 || p.Rows[1][0].Ident != "max" || p.Rows[0][1].Int != 2 {
		t.Fatalf("bad program rows %v", p.Rows)
	}
	c := stmts[2].Args()
	if len(c) != 2 || c[0].Int != -3 || c[1].Type != hdl.Float || c[1].Float != 0.5 {
		t.Fatalf("bad compute args %v", c)
	}
	if len(stmts[3].Rows) != 0 {
		t.Fatalf("idle has args %v", stmts[3].Rows)
	}
}

func TestParseScript_errors(t *testing.T) {
	data := []struct {
		in  string
		err string
	}{
		{"1, 2", "line 1:1: expected statement"},
		{"program 1,\n", "line 1:11: expected argument"},
		{"idle\nprogram 1 2", "line 2:11: expected ',' or ';'"},
		{"program ; 1", "line 1:9: unexpected ';'"},
		{"program 1,,2", "line 1:11: unexpected ','"},
		{"reset $", "line 1:7: unexpected '$'"},
	}
	for _, d := range data {
		t.Run(d.in, func(t *testing.T) {
			_, err := hdl.ParseScript(d.in)
			if err == nil || !strings.Contains(err.Error(), d.err) {
				t.Fatalf("expected error containing %q, got %v", d.err, err)
			}
		})
	}
}
