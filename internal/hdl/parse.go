package hdl

import (
	"strings"

	"github.com/pkg/errors"
)

// Assignment is a port to signal name assignment. port=signal
//
type Assignment struct {
	Port   string
	Signal string
	Pos    Pos
}

// Parser is a simplistic parser for comma separated assignments.
//
type Parser struct {
	Input string
	l     *Lexer
	i     Item
	state int
}

const (
	stateInit = iota
	stateStarted
	stateDone
)

// Next returns the next assignment in the input stream, or nil at the end of
// the input.
//
func (p *Parser) Next() (*Assignment, error) {
	if p.state == stateDone {
		return nil, nil
	}
	if p.l == nil {
		p.l = NewLexer(p.Input)
	}

	p.i = p.l.Lex()
	if p.state == stateInit && p.i.Type == EOF {
		p.state = stateDone
		return nil, nil
	}
	p.state = stateStarted

	lhs, err := p.ident("port name")
	if err != nil {
		p.state = stateDone
		return nil, err
	}
	if p.i.Type != Equal {
		p.state = stateDone
		return nil, parseError(p.Input, p.i.Pos, "expected '=' after port name, got "+p.i.String())
	}
	p.i = p.l.Lex()
	rhs, err := p.ident("signal name")
	if err != nil {
		p.state = stateDone
		return nil, err
	}
	switch p.i.Type {
	case EOF:
		p.state = stateDone
		fallthrough
	case Comma:
		return &Assignment{Port: lhs.Value.(string), Signal: rhs.Value.(string), Pos: lhs.Pos}, nil
	}
	p.state = stateDone
	return nil, parseError(p.Input, p.i.Pos, "unexpected "+p.i.String())
}

func (p *Parser) ident(what string) (Item, error) {
	for p.i.Type == Newline {
		p.i = p.l.Lex()
	}
	if p.i.Type != Ident {
		return p.i, parseError(p.Input, p.i.Pos, "expected "+what)
	}
	i := p.i
	p.i = p.l.Lex()
	for p.i.Type == Newline {
		p.i = p.l.Lex()
	}
	return i, nil
}

// ParseAssignments parses a list of assignments like "clk=clock, rst_n=reset".
//
func ParseAssignments(input string) ([]Assignment, error) {
	var as []Assignment
	p := &Parser{Input: input}
	for {
		a, err := p.Next()
		if err != nil {
			return nil, err
		}
		if a == nil {
			return as, nil
		}
		as = append(as, *a)
	}
}

func parseError(in string, pos Pos, msg string) error {
	return errors.Errorf("in %q at pos %d: %s", in, pos+1, msg)
}

// Arg is a script statement argument: an integer, a float or an identifier.
//
type Arg struct {
	Type  Type
	Int   int64
	Float float64
	Ident string
	Pos   Pos
}

func (a Arg) String() string {
	switch a.Type {
	case Int:
		return toString(a.Int)
	case Float:
		return toString(a.Float)
	}
	return a.Ident
}

// Statement is a script statement: an operation name followed by rows of
// arguments. Rows are separated by semicolons and arguments within a row by
// commas.
//
//	program 1, 2; 3, 4; max, min
//
type Statement struct {
	Op   string
	Line int
	Rows [][]Arg
}

// Args returns all arguments of the statement, row after row.
//
func (s *Statement) Args() []Arg {
	var args []Arg
	for _, r := range s.Rows {
		args = append(args, r...)
	}
	return args
}

// ParseScript parses a stimulus script made of one statement per line. Blank
// lines and '#' comments are ignored.
//
func ParseScript(input string) ([]Statement, error) {
	var (
		l     = NewLexer(input)
		stmts []Statement
		st    *Statement
		row   []Arg
		comma bool // an argument is expected
	)
	line := 1
	flush := func(i Item) error {
		if st == nil {
			return nil
		}
		if comma {
			return scriptError(input, i.Pos, "expected argument, got "+i.String())
		}
		if len(row) > 0 {
			st.Rows = append(st.Rows, row)
		}
		stmts = append(stmts, *st)
		st, row = nil, nil
		return nil
	}
	for {
		i := l.Lex()
		switch i.Type {
		case EOF, Newline:
			if err := flush(i); err != nil {
				return nil, err
			}
			if i.Type == EOF {
				return stmts, nil
			}
			line++
			continue
		case Raw:
			return nil, scriptError(input, i.Pos, "unexpected "+i.String())
		}
		if st == nil {
			if i.Type != Ident {
				return nil, scriptError(input, i.Pos, "expected statement, got "+i.String())
			}
			st = &Statement{Op: strings.ToLower(i.Value.(string)), Line: line}
			comma = false
			continue
		}
		switch i.Type {
		case Comma, Semicolon:
			if comma || len(row) == 0 {
				return nil, scriptError(input, i.Pos, "unexpected "+i.String())
			}
			if i.Type == Semicolon {
				st.Rows = append(st.Rows, row)
				row = nil
			}
			comma = true
		case Int, Float, Ident:
			if !comma && len(row) > 0 {
				return nil, scriptError(input, i.Pos, "expected ',' or ';' before "+i.String())
			}
			a := Arg{Type: i.Type, Pos: i.Pos}
			switch v := i.Value.(type) {
			case int64:
				a.Int = v
			case float64:
				a.Float = v
			case string:
				a.Ident = v
			}
			row = append(row, a)
			comma = false
		default:
			return nil, scriptError(input, i.Pos, "unexpected "+i.String())
		}
	}
}

func scriptError(in string, pos Pos, msg string) error {
	line, col := 1, int(pos)+1
	if k := strings.LastIndexByte(in[:pos], '\n'); k >= 0 {
		line = strings.Count(in[:pos], "\n") + 1
		col = int(pos) - k
	}
	return errors.Errorf("line %d:%d: %s", line, col, msg)
}
