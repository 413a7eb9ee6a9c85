// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package xbar

import "github.com/db47h/xbar/fli"

const nsExponent = -9

// NS is a duration in nanoseconds.
type NS int64

// ToResolution converts a delay in nanoseconds to a delay in units of the
// given simulator resolution (a power of ten exponent of seconds).
//
// If the resolution is coarser than 1ns, the delay cannot be represented
// accurately and is truncated.
//
func ToResolution(delay NS, resolution int) fli.Time {
	ns := fli.Time(delay)
	exp := nsExponent - resolution
	for ; exp < 0; exp++ {
		ns /= 10
	}
	for ; exp > 0; exp-- {
		ns *= 10
	}
	return ns
}
