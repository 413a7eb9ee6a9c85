// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package fli

import "github.com/pkg/errors"

// Logic is a value of the IEEE 1164 std_logic enumeration. Its numeric
// value is the literal position, which is how kernels report enumeration
// signal values.
//
type Logic int32

// std_logic literals, in declaration order.
//
const (
	LogicU Logic = iota // uninitialized
	LogicX              // forcing unknown
	Logic0              // forcing 0
	Logic1              // forcing 1
	LogicZ              // high impedance
	LogicW              // weak unknown
	LogicL              // weak 0
	LogicH              // weak 1
	LogicD              // don't care
)

const logicChars = "UX01ZWLH-"

func (l Logic) String() string {
	if l < 0 || int(l) >= len(logicChars) {
		return "U"
	}
	return logicChars[l : l+1]
}

// ToLogic converts a raw enumeration position to a Logic value. Out of range
// values map to LogicU.
//
func ToLogic(v int32) Logic {
	if v < 0 || int(v) >= len(logicChars) {
		return LogicU
	}
	return Logic(v)
}

// LogicOf returns the Logic value of a scalar signal Value. Non scalar values
// yield LogicU.
//
func LogicOf(v Value) Logic {
	if s, ok := v.(Scalar); ok {
		return ToLogic(int32(s))
	}
	return LogicU
}

// ParseLogic returns the Logic value for one of the characters "UX01ZWLH-".
// Lower case letters are accepted.
//
func ParseLogic(c byte) (Logic, error) {
	if 'a' <= c && c <= 'z' {
		c -= 'a' - 'A'
	}
	for i := 0; i < len(logicChars); i++ {
		if logicChars[i] == c {
			return Logic(i), nil
		}
	}
	return LogicU, errors.Errorf("invalid std_logic literal %q", c)
}

// To01 maps weak values to their forcing equivalent: 'L' to '0' and 'H' to
// '1'. Every other non 0/1 value maps to 'X'.
//
func (l Logic) To01() Logic {
	switch l {
	case Logic0, LogicL:
		return Logic0
	case Logic1, LogicH:
		return Logic1
	}
	return LogicX
}

// High returns true for '1' and 'H'.
func (l Logic) High() bool { return l.To01() == Logic1 }

// Low returns true for '0' and 'L'.
func (l Logic) Low() bool { return l.To01() == Logic0 }

// Bool returns the Logic value for b.
//
func Bool(b bool) Logic {
	if b {
		return Logic1
	}
	return Logic0
}

// Value returns l as a signal Value.
//
func (l Logic) Value() Value { return Scalar(l) }
