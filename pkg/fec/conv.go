// Package fec implements the rate 1/2, K=7 convolutional code with a
// hard-decision Viterbi decoder.
package fec

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
)

const (
	ConstraintLength = 7
	NumStates        = 1 << (ConstraintLength - 1)

	stateMask    = NumStates - 1
	registerMask = 1<<ConstraintLength - 1
)

// Generators are the two output polynomials, 0o133 and 0o171.
var Generators = [2]uint8{0o133, 0o171}

var ErrOddLength = errors.New("convolutional decoder expects an even number of bits")

func parity(v uint8) uint8 {
	return uint8(bits.OnesCount8(v) & 1)
}

// step shifts bit into state and returns the next state and the two output bits.
func step(state uint8, bit uint8) (next, out0, out1 uint8) {
	register := (state<<1 | bit&1) & registerMask
	return register & stateMask, parity(register & Generators[0]), parity(register & Generators[1])
}

func toBit(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// Encode emits two bits per input bit. With terminate set, ConstraintLength-1
// zero bits are appended to return the encoder to state 0.
func Encode(input []bool, terminate bool) []bool {
	n := len(input)
	if terminate {
		n += ConstraintLength - 1
	}
	out := make([]bool, 0, 2*n)

	var state, o0, o1 uint8
	for i := 0; i < n; i++ {
		var bit uint8
		if i < len(input) {
			bit = toBit(input[i])
		}
		state, o0, o1 = step(state, bit)
		out = append(out, o0 == 1, o1 == 1)
	}
	return out
}

// ViterbiDecode recovers the input of Encode from a possibly corrupted
// stream using Hamming branch metrics. terminate must match the encoder.
func ViterbiDecode(input []bool, terminate bool) ([]bool, error) {
	if len(input)%2 != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrOddLength, len(input))
	}
	symbols := len(input) / 2

	metrics := make([]float64, NumStates)
	for i := range metrics {
		metrics[i] = math.Inf(1)
	}
	metrics[0] = 0
	next := make([]float64, NumStates)

	// predecessors[t][s] holds (previous state << 1) | input bit for the
	// survivor path entering s at symbol t.
	predecessors := make([][NumStates]uint8, symbols)

	for t := 0; t < symbols; t++ {
		r0, r1 := toBit(input[2*t]), toBit(input[2*t+1])
		for i := range next {
			next[i] = math.Inf(1)
		}
		for state := uint8(0); state < NumStates; state++ {
			metric := metrics[state]
			if math.IsInf(metric, 1) {
				continue
			}
			for bit := uint8(0); bit <= 1; bit++ {
				ns, e0, e1 := step(state, bit)
				total := metric + float64((e0^r0)+(e1^r1))
				if total < next[ns] {
					next[ns] = total
					predecessors[t][ns] = state<<1 | bit
				}
			}
		}
		metrics, next = next, metrics
	}

	state := uint8(0)
	if !terminate {
		for s := uint8(1); s < NumStates; s++ {
			if metrics[s] < metrics[state] {
				state = s
			}
		}
	}

	decoded := make([]bool, symbols)
	for t := symbols - 1; t >= 0; t-- {
		pred := predecessors[t][state]
		decoded[t] = pred&1 == 1
		state = pred >> 1
	}

	if terminate && len(decoded) >= ConstraintLength-1 {
		decoded = decoded[:len(decoded)-(ConstraintLength-1)]
	}
	return decoded, nil
}
