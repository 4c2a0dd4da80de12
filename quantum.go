package main

import (
	"errors"
	"fmt"
	"math"
)

// Engine error kinds. Gate and step application is atomic: on any of these
// the state buffer is left exactly as it was.
var (
	ErrInvalidQubitCount = errors.New("invalid qubit count")
	ErrInvalidQubitIndex = errors.New("invalid qubit index")
	ErrInvalidGateArgs   = errors.New("invalid gate arguments")
	ErrInvalidStep       = errors.New("invalid step")
)

// MaxQubits is the hard cap on state width. Amplitude storage is
// 2^(n+4) bytes for the pair of float64 arrays; 20 qubits is 16 MiB.
const MaxQubits = 20

// State is a dense pure n-qubit state: 2^n complex amplitudes held as
// separate real and imaginary arrays, indexed by basis integer.
//
// Qubit q occupies bit NumQubits-1-q of the basis index, so q0 is the
// most-significant bit. Mask is the single definition of that convention.
type State struct {
	NumQubits int
	Re        []float64
	Im        []float64
}

// Mask returns the basis-index bit owned by qubit q in an n-qubit state.
func Mask(n, q int) int {
	return 1 << (n - 1 - q)
}

// NewZeroState returns |0...0⟩ on n qubits: amplitude 1+0i at basis 0.
func NewZeroState(n int) (*State, error) {
	if n < 1 || n > MaxQubits {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidQubitCount, n, MaxQubits)
	}
	dim := 1 << n
	s := &State{
		NumQubits: n,
		Re:        make([]float64, dim),
		Im:        make([]float64, dim),
	}
	s.Re[0] = 1
	return s, nil
}

// Clone returns an independent copy of the state.
func (s *State) Clone() *State {
	c := &State{
		NumQubits: s.NumQubits,
		Re:        make([]float64, len(s.Re)),
		Im:        make([]float64, len(s.Im)),
	}
	copy(c.Re, s.Re)
	copy(c.Im, s.Im)
	return c
}

// Dim returns the basis size 2^n.
func (s *State) Dim() int {
	return len(s.Re)
}

// Amplitude returns the complex amplitude at basis index k.
func (s *State) Amplitude(k int) complex128 {
	return complex(s.Re[k], s.Im[k])
}

func (s *State) checkQubit(q int) error {
	if q < 0 || q >= s.NumQubits {
		return fmt.Errorf("%w: q[%d] on %d qubits", ErrInvalidQubitIndex, q, s.NumQubits)
	}
	return nil
}

// applyMatrix applies the 2x2 unitary [[m00 m01] [m10 m11]] to the target
// qubit. Every (i, j=i|mask) pair with the target bit clear in i is visited
// exactly once; the new pair is computed from the old pair before either
// slot is written.
func (s *State) applyMatrix(q int, m00, m01, m10, m11 complex128) {
	mask := Mask(s.NumQubits, q)
	dim := len(s.Re)
	for i := 0; i < dim; i++ {
		if i&mask != 0 {
			continue
		}
		j := i | mask
		a := complex(s.Re[i], s.Im[i])
		b := complex(s.Re[j], s.Im[j])
		na := m00*a + m01*b
		nb := m10*a + m11*b
		s.Re[i], s.Im[i] = real(na), imag(na)
		s.Re[j], s.Im[j] = real(nb), imag(nb)
	}
}

// ApplyH applies the Hadamard gate to qubit q.
func (s *State) ApplyH(q int) error {
	if err := s.checkQubit(q); err != nil {
		return err
	}
	h := complex(1/math.Sqrt2, 0)
	s.applyMatrix(q, h, h, h, -h)
	return nil
}

// ApplyX applies the Pauli-X (NOT) gate to qubit q.
func (s *State) ApplyX(q int) error {
	if err := s.checkQubit(q); err != nil {
		return err
	}
	s.applyMatrix(q, 0, 1, 1, 0)
	return nil
}

// ApplyY applies the Pauli-Y gate to qubit q.
func (s *State) ApplyY(q int) error {
	if err := s.checkQubit(q); err != nil {
		return err
	}
	s.applyMatrix(q, 0, -1i, 1i, 0)
	return nil
}

// ApplyZ applies the Pauli-Z gate to qubit q.
func (s *State) ApplyZ(q int) error {
	if err := s.checkQubit(q); err != nil {
		return err
	}
	s.applyMatrix(q, 1, 0, 0, -1)
	return nil
}

// ApplyS applies the S phase gate (|1⟩ picks up i) to qubit q.
func (s *State) ApplyS(q int) error {
	if err := s.checkQubit(q); err != nil {
		return err
	}
	s.applyMatrix(q, 1, 0, 0, 1i)
	return nil
}

// ApplyT applies the T gate (|1⟩ picks up e^{iπ/4}) to qubit q.
func (s *State) ApplyT(q int) error {
	if err := s.checkQubit(q); err != nil {
		return err
	}
	h := 1 / math.Sqrt2
	s.applyMatrix(q, 1, 0, 0, complex(h, h))
	return nil
}

// ApplyRX applies an X-axis rotation by theta radians to qubit q.
func (s *State) ApplyRX(q int, theta float64) error {
	if err := s.checkQubit(q); err != nil {
		return err
	}
	c := complex(math.Cos(theta/2), 0)
	js := complex(0, -math.Sin(theta/2))
	s.applyMatrix(q, c, js, js, c)
	return nil
}

// ApplyRY applies a Y-axis rotation by theta radians to qubit q.
func (s *State) ApplyRY(q int, theta float64) error {
	if err := s.checkQubit(q); err != nil {
		return err
	}
	c := complex(math.Cos(theta/2), 0)
	sn := complex(math.Sin(theta/2), 0)
	s.applyMatrix(q, c, -sn, sn, c)
	return nil
}

// ApplyRZ applies a Z-axis rotation by theta radians to qubit q:
// diag(e^{-iθ/2}, e^{+iθ/2}).
func (s *State) ApplyRZ(q int, theta float64) error {
	if err := s.checkQubit(q); err != nil {
		return err
	}
	c := math.Cos(theta / 2)
	sn := math.Sin(theta / 2)
	s.applyMatrix(q, complex(c, -sn), 0, 0, complex(c, sn))
	return nil
}

// ApplyCNOT applies a controlled-X with the given control and target.
// For every basis index with the control bit set and the target bit clear
// the amplitude pair across the target bit is swapped.
func (s *State) ApplyCNOT(control, target int) error {
	if err := s.checkQubit(control); err != nil {
		return err
	}
	if err := s.checkQubit(target); err != nil {
		return err
	}
	if control == target {
		return fmt.Errorf("%w: CNOT control equals target q[%d]", ErrInvalidGateArgs, control)
	}
	cMask := Mask(s.NumQubits, control)
	tMask := Mask(s.NumQubits, target)
	dim := len(s.Re)
	for i := 0; i < dim; i++ {
		if i&cMask != 0 && i&tMask == 0 {
			j := i | tMask
			s.Re[i], s.Re[j] = s.Re[j], s.Re[i]
			s.Im[i], s.Im[j] = s.Im[j], s.Im[i]
		}
	}
	return nil
}

// ApplyCZ applies a controlled-Z: amplitudes with both bits set are negated.
func (s *State) ApplyCZ(control, target int) error {
	if err := s.checkQubit(control); err != nil {
		return err
	}
	if err := s.checkQubit(target); err != nil {
		return err
	}
	if control == target {
		return fmt.Errorf("%w: CZ control equals target q[%d]", ErrInvalidGateArgs, control)
	}
	cMask := Mask(s.NumQubits, control)
	tMask := Mask(s.NumQubits, target)
	dim := len(s.Re)
	for i := 0; i < dim; i++ {
		if i&cMask != 0 && i&tMask != 0 {
			s.Re[i] = -s.Re[i]
			s.Im[i] = -s.Im[i]
		}
	}
	return nil
}

// ApplySwap exchanges qubits a and b. Basis indices whose a- and b-bits
// differ pair up via j = i ^ maskA ^ maskB; each pair is processed once
// (only when j > i). SWAP of a qubit with itself is the identity.
func (s *State) ApplySwap(a, b int) error {
	if err := s.checkQubit(a); err != nil {
		return err
	}
	if err := s.checkQubit(b); err != nil {
		return err
	}
	if a == b {
		return nil
	}
	aMask := Mask(s.NumQubits, a)
	bMask := Mask(s.NumQubits, b)
	dim := len(s.Re)
	for i := 0; i < dim; i++ {
		if (i&aMask != 0) == (i&bMask != 0) {
			continue
		}
		j := i ^ aMask ^ bMask
		if j <= i {
			continue
		}
		s.Re[i], s.Re[j] = s.Re[j], s.Re[i]
		s.Im[i], s.Im[j] = s.Im[j], s.Im[i]
	}
	return nil
}
