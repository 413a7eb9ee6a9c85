// Package hdl implements the lexer and parsers for port maps and stimulus
// scripts.
//
package hdl

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Type is a token type.
//
type Type int

// Tokens
const (
	EOF Type = iota
	Raw
	Ident
	Int
	Float
	Comma
	Semicolon
	Equal
	Newline
)

var typeNames = [...]string{"end of input", "character", "identifier", "integer", "float", "','", "';'", "'='", "end of line"}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "token"
	}
	return typeNames[t]
}

// Pos is a byte offset in the input.
//
type Pos int

// Item is a lexed token.
//
type Item struct {
	Type  Type
	Pos   Pos
	Value interface{}
}

func (i Item) String() string {
	switch i.Type {
	case EOF, Newline, Comma, Semicolon, Equal:
		return i.Type.String()
	case Raw:
		return strconv.QuoteRune(i.Value.(rune))
	}
	return i.Type.String() + " " + strconv.Quote(toString(i.Value))
}

func toString(v interface{}) string {
	switch v := v.(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return ""
}

const eof = -1

// StateFn is a lexer state function.
//
type StateFn func(l *Lexer) StateFn

// Lexer is a state function based lexer.
//
type Lexer struct {
	input string
	start int // start of the current token
	pos   int // position of the next rune
	width int // width of the last rune read
	cur   rune
	items []Item
	state StateFn
}

// NewLexer returns a new lexer for the given input.
//
func NewLexer(input string) *Lexer {
	return &Lexer{input: input, state: lexInit}
}

// Lex returns the next token.
//
func (l *Lexer) Lex() Item {
	for len(l.items) == 0 {
		st := l.state(l)
		if st == nil {
			st = lexInit
		}
		l.state = st
	}
	i := l.items[0]
	l.items = l.items[1:]
	return i
}

// Next reads the next rune.
//
func (l *Lexer) Next() rune {
	if l.pos >= len(l.input) {
		l.width = 0
		l.cur = eof
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.width = w
	l.pos += w
	l.cur = r
	return r
}

// Backup steps back one rune. It can only be called once per call to Next.
//
func (l *Lexer) Backup() {
	l.pos -= l.width
	l.width = 0
}

// Peek returns the next rune without consuming it.
//
func (l *Lexer) Peek() rune {
	r := l.Next()
	l.Backup()
	return r
}

// Current returns the last rune read.
//
func (l *Lexer) Current() rune { return l.cur }

// Emit emits a token starting at the current token start.
//
func (l *Lexer) Emit(t Type, v interface{}) {
	l.items = append(l.items, Item{Type: t, Pos: Pos(l.start), Value: v})
}

// AcceptWhile consumes runes while f returns true.
//
func (l *Lexer) AcceptWhile(f func(rune) bool) {
	for r := l.Next(); r != eof && f(r); r = l.Next() {
	}
	if l.cur != eof {
		l.Backup()
	}
}

func isDigit(r rune) bool { return '0' <= r && r <= '9' }

func isBlank(r rune) bool { return r != '\n' && unicode.IsSpace(r) }

func lexInit(l *Lexer) StateFn {
	l.start = l.pos
	r := l.Next()
	switch {
	case r == eof:
		return lexEOF
	case r == '\n':
		l.Emit(Newline, "\n")
	case isBlank(r):
		l.AcceptWhile(isBlank)
	case r == '#':
		l.AcceptWhile(func(r rune) bool { return r != '\n' })
	case unicode.IsLetter(r) || r == '_':
		return lexIdent
	case isDigit(r):
		return lexNumber
	case (r == '-' || r == '+') && isDigit(l.Peek()):
		return lexNumber
	case r == ',':
		l.Emit(Comma, ",")
	case r == ';':
		l.Emit(Semicolon, ";")
	case r == '=':
		l.Emit(Equal, "=")
	default:
		l.Emit(Raw, r)
		return lexEOF
	}
	return nil
}

func lexNumber(l *Lexer) StateFn {
	float := false
	l.AcceptWhile(isDigit)
	if l.Peek() == '.' {
		float = true
		l.Next()
		l.AcceptWhile(isDigit)
	}
	if r := l.Peek(); r == 'e' || r == 'E' {
		float = true
		l.Next()
		if r := l.Peek(); r == '-' || r == '+' {
			l.Next()
		}
		l.AcceptWhile(isDigit)
	}
	s := l.input[l.start:l.pos]
	if float {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			l.Emit(Raw, rune(s[0]))
			return lexEOF
		}
		l.Emit(Float, v)
		return nil
	}
	v, err := strconv.ParseInt(strings.TrimPrefix(s, "+"), 10, 64)
	if err != nil {
		l.Emit(Raw, rune(s[0]))
		return lexEOF
	}
	l.Emit(Int, v)
	return nil
}

func lexIdent(l *Lexer) StateFn {
	l.AcceptWhile(func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' })
	l.Emit(Ident, l.input[l.start:l.pos])
	return nil
}

// lexEOF places the lexer in End-Of-File state.
// Once in this state, the lexer will only emit EOF.
//
func lexEOF(l *Lexer) StateFn {
	l.Emit(EOF, "end of input")
	return lexEOF
}
