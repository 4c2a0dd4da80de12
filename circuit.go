package main

import (
	"fmt"
)

// GateKind enumerates the supported gate catalogue. Dispatch sites switch
// exhaustively over these values; an unknown kind is InvalidGateArgs, never
// silently skipped.
type GateKind int

const (
	GateH GateKind = iota
	GateX
	GateY
	GateZ
	GateS
	GateT
	GateRX
	GateRY
	GateRZ
	GateCNOT
	GateCZ
	GateSwap
	GateMeasure
)

var gateKindNames = map[GateKind]string{
	GateH:       "H",
	GateX:       "X",
	GateY:       "Y",
	GateZ:       "Z",
	GateS:       "S",
	GateT:       "T",
	GateRX:      "RX",
	GateRY:      "RY",
	GateRZ:      "RZ",
	GateCNOT:    "CNOT",
	GateCZ:      "CZ",
	GateSwap:    "SWAP",
	GateMeasure: "MEASURE",
}

func (k GateKind) String() string {
	if name, ok := gateKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("GateKind(%d)", int(k))
}

// GateKindByName returns the kind for its canonical name.
func GateKindByName(name string) (GateKind, bool) {
	for k, n := range gateKindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// IsRotation reports whether the kind carries a rotation angle.
func (k GateKind) IsRotation() bool {
	return k == GateRX || k == GateRY || k == GateRZ
}

// IsTwoQubit reports whether the kind references two qubits.
func (k GateKind) IsTwoQubit() bool {
	return k == GateCNOT || k == GateCZ || k == GateSwap
}

// Op is one gate operation placed in a circuit step.
//
//   - Single-qubit kinds (H X Y Z S T, rotations, MEASURE) use Target only;
//     Control is -1.
//   - CNOT and CZ use Control and Target.
//   - SWAP uses Control and Target as its symmetric qubit pair.
type Op struct {
	Kind    GateKind
	Target  int
	Control int
	Theta   float64 // radians, rotations only
}

// SingleOp builds a single-qubit parameterless op.
func SingleOp(kind GateKind, target int) Op {
	return Op{Kind: kind, Target: target, Control: -1}
}

// RotationOp builds a rotation op with its angle.
func RotationOp(kind GateKind, target int, theta float64) Op {
	return Op{Kind: kind, Target: target, Control: -1, Theta: theta}
}

// ControlledOp builds a CNOT/CZ op.
func ControlledOp(kind GateKind, control, target int) Op {
	return Op{Kind: kind, Target: target, Control: control}
}

// SwapOp builds a SWAP op on the qubit pair (a, b).
func SwapOp(a, b int) Op {
	return Op{Kind: GateSwap, Target: b, Control: a}
}

// Qubits returns the set of qubits the op touches, without duplicates.
func (op Op) Qubits() []int {
	if op.Kind.IsTwoQubit() && op.Control != op.Target {
		return []int{op.Control, op.Target}
	}
	return []int{op.Target}
}

// Label returns the op's display name, including the angle for rotations.
func (op Op) Label() string {
	if op.Kind.IsRotation() {
		return fmt.Sprintf("%s(%s)", op.Kind, formatParam(op.Theta))
	}
	return op.Kind.String()
}

// Circuit is an ordered sequence of steps on NumQubits qubits. Each step is
// a set of ops with pairwise-disjoint qubit support; the executor enforces
// disjointness, so intra-step application order is unobservable.
type Circuit struct {
	NumQubits int
	Steps     [][]Op
}

// validateOp checks structure and index range for a single op.
func validateOp(n int, op Op) error {
	if _, ok := gateKindNames[op.Kind]; !ok {
		return fmt.Errorf("%w: unknown gate kind %d", ErrInvalidGateArgs, int(op.Kind))
	}
	if op.Target < 0 || op.Target >= n {
		return fmt.Errorf("%w: target q[%d] on %d qubits", ErrInvalidQubitIndex, op.Target, n)
	}
	if op.Kind.IsTwoQubit() {
		if op.Control < 0 || op.Control >= n {
			return fmt.Errorf("%w: control q[%d] on %d qubits", ErrInvalidQubitIndex, op.Control, n)
		}
		if op.Kind != GateSwap && op.Control == op.Target {
			return fmt.Errorf("%w: %s control equals target q[%d]", ErrInvalidGateArgs, op.Kind, op.Target)
		}
	} else if op.Control != -1 {
		return fmt.Errorf("%w: %s carries a control qubit", ErrInvalidGateArgs, op.Kind)
	}
	return nil
}

// validateStep checks each op and rejects steps where two ops touch the
// same qubit.
func validateStep(n int, step []Op) error {
	touched := make(map[int]GateKind, 2*len(step))
	for _, op := range step {
		if err := validateOp(n, op); err != nil {
			return err
		}
		for _, q := range op.Qubits() {
			if prev, ok := touched[q]; ok {
				return fmt.Errorf("%w: q[%d] touched by both %s and %s", ErrInvalidStep, q, prev, op.Kind)
			}
			touched[q] = op.Kind
		}
	}
	return nil
}

// apply dispatches one validated op to its kernel.
func (s *State) apply(op Op) error {
	switch op.Kind {
	case GateH:
		return s.ApplyH(op.Target)
	case GateX:
		return s.ApplyX(op.Target)
	case GateY:
		return s.ApplyY(op.Target)
	case GateZ:
		return s.ApplyZ(op.Target)
	case GateS:
		return s.ApplyS(op.Target)
	case GateT:
		return s.ApplyT(op.Target)
	case GateRX:
		return s.ApplyRX(op.Target, op.Theta)
	case GateRY:
		return s.ApplyRY(op.Target, op.Theta)
	case GateRZ:
		return s.ApplyRZ(op.Target, op.Theta)
	case GateCNOT:
		return s.ApplyCNOT(op.Control, op.Target)
	case GateCZ:
		return s.ApplyCZ(op.Control, op.Target)
	case GateSwap:
		return s.ApplySwap(op.Control, op.Target)
	case GateMeasure:
		// Recognized and validated; sampling happens once against the
		// final distribution, so execution is the identity.
		return nil
	default:
		return fmt.Errorf("%w: unknown gate kind %d", ErrInvalidGateArgs, int(op.Kind))
	}
}

// Simulate runs the circuit from |0...0⟩ and returns the final state. Steps
// are validated before any of their ops touch the buffer, so a failed step
// reports an error without partial application.
func Simulate(c *Circuit) (*State, error) {
	s, err := NewZeroState(c.NumQubits)
	if err != nil {
		return nil, err
	}
	for idx, step := range c.Steps {
		if err := validateStep(c.NumQubits, step); err != nil {
			return nil, fmt.Errorf("step %d: %w", idx, err)
		}
		for _, op := range step {
			if err := s.apply(op); err != nil {
				return nil, fmt.Errorf("step %d: %w", idx, err)
			}
		}
	}
	return s, nil
}

// StepCount returns the number of steps.
func (c *Circuit) StepCount() int {
	return len(c.Steps)
}

// OpAt returns the op occupying (step, qubit), or nil.
func (c *Circuit) OpAt(step, qubit int) *Op {
	if step < 0 || step >= len(c.Steps) {
		return nil
	}
	for i := range c.Steps[step] {
		op := &c.Steps[step][i]
		for _, q := range op.Qubits() {
			if q == qubit {
				return op
			}
		}
	}
	return nil
}
