// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package xbar

import (
	"math"
	"strings"

	"github.com/pkg/errors"
)

// A Codec maps the integer domain of digital signals to the floating point
// domain of the numeric backend, and backend results back to output signal
// values.
//
type Codec interface {
	// Encode maps a signal integer to a backend float.
	Encode(x int32) float64
	// Decode maps a backend float to the value driven on a real output.
	Decode(y float64) float64
	// DecodeInt maps a backend float to the value driven on an integer
	// output.
	DecodeInt(y float64) int32
}

// Symmetric is the default Codec. It normalizes integers symmetrically onto
// [-1, 1]: negative values are divided by 2^31 and positive ones by 2^31-1,
// so that MinInt32, 0 and MaxInt32 map exactly to -1, 0 and 1.
//
// Decode is the identity and DecodeInt is the rounded inverse of Encode,
// saturating at the integer bounds.
//
type Symmetric struct{}

const negScale = -float64(math.MinInt32)

// Encode implements Codec.
func (Symmetric) Encode(x int32) float64 {
	if x < 0 {
		return float64(x) / negScale
	}
	return float64(x) / math.MaxInt32
}

// Decode implements Codec.
func (Symmetric) Decode(y float64) float64 { return y }

// DecodeInt implements Codec.
func (Symmetric) DecodeInt(y float64) int32 {
	if y < 0 {
		return saturate(y * negScale)
	}
	return saturate(y * math.MaxInt32)
}

// Scaled is the alternate Codec: Encode(x) = x / MaxInt32 * K. Backend
// results are divided by K before being driven, so that real outputs stay in
// the normalized domain. K must be positive.
//
type Scaled struct {
	K float64
}

// Encode implements Codec.
func (c Scaled) Encode(x int32) float64 { return float64(x) / math.MaxInt32 * c.K }

// Decode implements Codec.
func (c Scaled) Decode(y float64) float64 { return y / c.K }

// DecodeInt implements Codec.
func (c Scaled) DecodeInt(y float64) int32 { return saturate(y / c.K * math.MaxInt32) }

func saturate(v float64) int32 {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	}
	return int32(math.Round(v))
}

// ParseCodec returns the Codec for the given policy name: "symmetric" or
// "scaled". The scale is only used by the scaled policy.
//
func ParseCodec(name string, scale float64) (Codec, error) {
	switch strings.ToLower(name) {
	case "", "symmetric":
		return Symmetric{}, nil
	case "scaled":
		if !(scale > 0) {
			return nil, errors.Errorf("invalid scale %g for scaled codec", scale)
		}
		return Scaled{K: scale}, nil
	}
	return nil, errors.Errorf("unknown codec %q", name)
}
