package main

import (
	"fmt"
	"math"
)

// Probabilities returns |amp[k]|^2 for every basis index. No normalization
// is applied; the gate set is unitary, so the sum is 1 up to float drift.
func (s *State) Probabilities() []float64 {
	p := make([]float64, len(s.Re))
	for k := range p {
		p[k] = s.Re[k]*s.Re[k] + s.Im[k]*s.Im[k]
	}
	return p
}

// Norm returns the squared 2-norm of the state.
func (s *State) Norm() float64 {
	total := 0.0
	for k := range s.Re {
		total += s.Re[k]*s.Re[k] + s.Im[k]*s.Im[k]
	}
	return total
}

// BlochVector reduces the state to qubit q's density matrix and returns its
// Bloch coordinates:
//
//	x = 2·Re(ρ01)   y = −2·Im(ρ01)   z = ρ00 − ρ11
//
// The y sign convention sends H|0⟩ to (+1,0,0) and S·H|0⟩ to (0,+1,0).
// Entangled reductions give |v| < 1.
func (s *State) BlochVector(q int) (x, y, z float64, err error) {
	if err := s.checkQubit(q); err != nil {
		return 0, 0, 0, err
	}
	mask := Mask(s.NumQubits, q)
	dim := len(s.Re)
	var rho00, rho11, re01, im01 float64
	for i := 0; i < dim; i++ {
		if i&mask != 0 {
			continue
		}
		j := i | mask
		rho00 += s.Re[i]*s.Re[i] + s.Im[i]*s.Im[i]
		rho11 += s.Re[j]*s.Re[j] + s.Im[j]*s.Im[j]
		// ρ01 accumulates amp[i] · conj(amp[j]).
		re01 += s.Re[i]*s.Re[j] + s.Im[i]*s.Im[j]
		im01 += s.Im[i]*s.Re[j] - s.Re[i]*s.Im[j]
	}
	return 2 * re01, -2 * im01, rho00 - rho11, nil
}

// QubitProbability is the marginal distribution of one qubit.
type QubitProbability struct {
	Prob0 float64
	Prob1 float64
}

// QubitProbabilities returns the per-qubit marginals, indexed by qubit.
func (s *State) QubitProbabilities() []QubitProbability {
	probs := make([]QubitProbability, s.NumQubits)
	dim := len(s.Re)
	for i := 0; i < dim; i++ {
		p := s.Re[i]*s.Re[i] + s.Im[i]*s.Im[i]
		for q := 0; q < s.NumQubits; q++ {
			if i&Mask(s.NumQubits, q) != 0 {
				probs[q].Prob1 += p
			} else {
				probs[q].Prob0 += p
			}
		}
	}
	return probs
}

// Bitstring formats basis index k on n qubits as a binary string, q0 first
// (the most significant bit), zero-padded to n characters.
func Bitstring(k, n int) string {
	return fmt.Sprintf("%0*b", n, k)
}

// ParseBitstring is the inverse of Bitstring.
func ParseBitstring(bits string) (int, error) {
	k := 0
	for _, c := range bits {
		switch c {
		case '0':
			k = k << 1
		case '1':
			k = k<<1 | 1
		default:
			return 0, fmt.Errorf("%w: bitstring contains %q", ErrInvalidGateArgs, c)
		}
	}
	return k, nil
}

// NormDrift returns |Σ|amp|^2 − 1|, for display in the results panel.
func (s *State) NormDrift() float64 {
	return math.Abs(s.Norm() - 1)
}
