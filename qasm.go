package main

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Pre-compiled regexps for QASM parsing.
var (
	singleGateRegex      = regexp.MustCompile(`^(\w+)\s+q\[(\d+)\];?$`)
	singleGateParamRegex = regexp.MustCompile(`^(\w+)\s*\(\s*(` + paramPattern + `)\s*\)\s+q\[(\d+)\];?$`)
	twoQubitRegex        = regexp.MustCompile(`^(\w+)\s+q\[(\d+)\],\s*q\[(\d+)\];?$`)
	measureRegex         = regexp.MustCompile(`^measure\s+q\[(\d+)\]\s*->\s*c\[(\d+)\];?$`)
	qregRegex            = regexp.MustCompile(`qreg\s+q\[(\d+)\]`)
)

// qasmName maps a gate kind to its QASM mnemonic.
func qasmName(k GateKind) string {
	if k == GateCNOT {
		return "cx"
	}
	return strings.ToLower(k.String())
}

// ToQASM renders the circuit as QASM 2.0, one statement per op, steps in
// order.
func (c *Circuit) ToQASM() string {
	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n\n")
	fmt.Fprintf(&sb, "qreg q[%d];\n", max(c.NumQubits, 1))
	fmt.Fprintf(&sb, "creg c[%d];\n\n", max(c.NumQubits, 1))

	for _, step := range c.Steps {
		for _, op := range step {
			switch {
			case op.Kind == GateMeasure:
				fmt.Fprintf(&sb, "measure q[%d] -> c[%d];\n", op.Target, op.Target)
			case op.Kind == GateSwap:
				fmt.Fprintf(&sb, "swap q[%d], q[%d];\n", op.Control, op.Target)
			case op.Kind.IsTwoQubit():
				fmt.Fprintf(&sb, "%s q[%d], q[%d];\n", qasmName(op.Kind), op.Control, op.Target)
			case op.Kind.IsRotation():
				fmt.Fprintf(&sb, "%s(%s) q[%d];\n", qasmName(op.Kind), formatParam(op.Theta), op.Target)
			default:
				fmt.Fprintf(&sb, "%s q[%d];\n", qasmName(op.Kind), op.Target)
			}
		}
	}
	return sb.String()
}

// qasmKind resolves a parsed mnemonic to a gate kind.
func qasmKind(mnemonic string) (GateKind, bool) {
	switch strings.ToUpper(mnemonic) {
	case "CX", "CNOT":
		return GateCNOT, true
	case "MEASURE":
		return GateMeasure, true
	default:
		return GateKindByName(strings.ToUpper(mnemonic))
	}
}

// stepPacker assigns parsed ops to steps greedily: an op lands on the
// earliest step after the last op touching any of its qubits, so
// independent gates share a step.
type stepPacker struct {
	steps    [][]Op
	nextFree map[int]int
}

func newStepPacker() *stepPacker {
	return &stepPacker{nextFree: make(map[int]int)}
}

func (p *stepPacker) add(op Op) {
	step := 0
	for _, q := range op.Qubits() {
		if p.nextFree[q] > step {
			step = p.nextFree[q]
		}
	}
	for len(p.steps) <= step {
		p.steps = append(p.steps, nil)
	}
	p.steps[step] = append(p.steps[step], op)
	for _, q := range op.Qubits() {
		p.nextFree[q] = step + 1
	}
}

// ParseQASM parses QASM text into a circuit. Only the supported catalogue
// is accepted; an unrecognized statement is an error rather than a skip, so
// the editor can point at the offending line.
func ParseQASM(qasm string) (*Circuit, error) {
	c := &Circuit{}
	packer := newStepPacker()

	for lineNo, rawLine := range strings.Split(qasm, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if strings.HasPrefix(line, "OPENQASM") || strings.HasPrefix(line, "include") {
			continue
		}
		if strings.HasPrefix(line, "qreg") {
			if m := qregRegex.FindStringSubmatch(line); m != nil {
				n, _ := strconv.Atoi(m[1])
				c.NumQubits = n
			}
			continue
		}
		if strings.HasPrefix(line, "creg") {
			continue
		}

		if m := measureRegex.FindStringSubmatch(line); m != nil {
			target, _ := strconv.Atoi(m[1])
			packer.add(SingleOp(GateMeasure, target))
			continue
		}

		if m := twoQubitRegex.FindStringSubmatch(line); m != nil {
			kind, ok := qasmKind(m[1])
			if !ok || !kind.IsTwoQubit() {
				return nil, fmt.Errorf("line %d: unsupported gate %q", lineNo+1, m[1])
			}
			q1, _ := strconv.Atoi(m[2])
			q2, _ := strconv.Atoi(m[3])
			if kind == GateSwap {
				packer.add(SwapOp(q1, q2))
			} else {
				packer.add(ControlledOp(kind, q1, q2))
			}
			continue
		}

		if m := singleGateParamRegex.FindStringSubmatch(line); m != nil {
			kind, ok := qasmKind(m[1])
			if !ok || !kind.IsRotation() {
				return nil, fmt.Errorf("line %d: unsupported parameterized gate %q", lineNo+1, m[1])
			}
			theta, ok := parseParamExpr(m[2])
			if !ok {
				return nil, fmt.Errorf("line %d: bad angle %q", lineNo+1, m[2])
			}
			target, _ := strconv.Atoi(m[3])
			packer.add(RotationOp(kind, target, theta))
			continue
		}

		if m := singleGateRegex.FindStringSubmatch(line); m != nil {
			kind, ok := qasmKind(m[1])
			if !ok || kind.IsTwoQubit() || kind.IsRotation() {
				return nil, fmt.Errorf("line %d: unsupported gate %q", lineNo+1, m[1])
			}
			target, _ := strconv.Atoi(m[2])
			packer.add(SingleOp(kind, target))
			continue
		}

		return nil, fmt.Errorf("line %d: cannot parse %q", lineNo+1, line)
	}

	c.Steps = packer.steps

	// A qreg line may undercount if gates reference higher qubits.
	for _, step := range c.Steps {
		for _, op := range step {
			for _, q := range op.Qubits() {
				if q+1 > c.NumQubits {
					c.NumQubits = q + 1
				}
			}
		}
	}
	return c, nil
}
