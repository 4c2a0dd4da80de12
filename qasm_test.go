package main

import (
	"fmt"
	"math"
	"strings"
	"testing"
)

func TestQASMRoundTrip(t *testing.T) {
	c := &Circuit{
		NumQubits: 3,
		Steps: [][]Op{
			{SingleOp(GateH, 0), SingleOp(GateX, 2)},
			{ControlledOp(GateCNOT, 0, 1)},
			{SwapOp(1, 2)},
			{SingleOp(GateMeasure, 1)},
		},
	}
	qasm := c.ToQASM()
	fmt.Printf("round-trip QASM:\n%s\n", qasm)

	got, err := ParseQASM(qasm)
	if err != nil {
		t.Fatalf("ParseQASM: %v", err)
	}
	if got.NumQubits != 3 {
		t.Fatalf("NumQubits = %d, want 3", got.NumQubits)
	}

	// The packed shapes agree, so both circuits simulate identically.
	a, err := Simulate(c)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Simulate(got)
	if err != nil {
		t.Fatal(err)
	}
	statesClose(t, a, b, 1e-12)
}

func TestParseQASMPacksParallelGates(t *testing.T) {
	qasm := `OPENQASM 2.0;
include "qelib1.inc";
qreg q[4];
creg c[4];

h q[0];
h q[1];
cx q[0], q[1];
x q[2];
`
	c, err := ParseQASM(qasm)
	if err != nil {
		t.Fatalf("ParseQASM: %v", err)
	}
	fmt.Printf("packed %d steps\n", len(c.Steps))

	find := func(kind GateKind, target int) int {
		for step, ops := range c.Steps {
			for _, op := range ops {
				if op.Kind == kind && op.Target == target {
					return step
				}
			}
		}
		return -1
	}

	h0, h1 := find(GateH, 0), find(GateH, 1)
	if h0 != h1 {
		t.Errorf("H q[0] at step %d, H q[1] at step %d — want the same step", h0, h1)
	}
	if x2 := find(GateX, 2); x2 != h0 {
		t.Errorf("X q[2] at step %d — independent gate should pack into step %d", x2, h0)
	}
	if cx := find(GateCNOT, 1); cx <= h0 {
		t.Errorf("CX at step %d, want after the H layer at step %d", cx, h0)
	}
}

func TestParseQASMRotations(t *testing.T) {
	qasm := `qreg q[2];
rx(pi/2) q[0];
ry(3*pi/4) q[1];
rz(-pi) q[0];
`
	c, err := ParseQASM(qasm)
	if err != nil {
		t.Fatalf("ParseQASM: %v", err)
	}
	var thetas []float64
	for _, step := range c.Steps {
		for _, op := range step {
			if !op.Kind.IsRotation() {
				t.Fatalf("unexpected op %s", op.Kind)
			}
			thetas = append(thetas, op.Theta)
		}
	}
	want := []float64{math.Pi / 2, 3 * math.Pi / 4, -math.Pi}
	if len(thetas) != len(want) {
		t.Fatalf("parsed %d rotations, want %d", len(thetas), len(want))
	}
	for i := range want {
		if math.Abs(thetas[i]-want[i]) > 1e-10 {
			t.Errorf("theta[%d] = %g, want %g", i, thetas[i], want[i])
		}
	}
}

func TestToQASMUsesPiNotation(t *testing.T) {
	c := &Circuit{
		NumQubits: 1,
		Steps: [][]Op{
			{RotationOp(GateRX, 0, math.Pi/2)},
		},
	}
	qasm := c.ToQASM()
	if !strings.Contains(qasm, "rx(pi/2) q[0];") {
		t.Errorf("expected 'rx(pi/2) q[0];' in QASM, got:\n%s", qasm)
	}
}

func TestParseQASMRejectsUnsupported(t *testing.T) {
	for _, stmt := range []string{
		"ccx q[0], q[1], q[2];",
		"reset q[0];",
		"sdg q[0];",
		"crx(pi/2) q[0], q[1];",
		"if (c[0]==1) x q[1];",
		"gibberish",
	} {
		if _, err := ParseQASM("qreg q[3];\n" + stmt + "\n"); err == nil {
			t.Errorf("ParseQASM accepted %q", stmt)
		}
	}
}

func TestParseQASMGrowsQubitCount(t *testing.T) {
	c, err := ParseQASM("qreg q[1];\nh q[3];\n")
	if err != nil {
		t.Fatal(err)
	}
	if c.NumQubits != 4 {
		t.Errorf("NumQubits = %d, want 4", c.NumQubits)
	}
}

func TestParseParamExpr(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"1.5707", 1.5707, true},
		{"-0.5", -0.5, true},
		{"0", 0, true},
		{"pi", math.Pi, true},
		{"PI", math.Pi, true},
		{"pi/2", math.Pi / 2, true},
		{"pi/8", math.Pi / 8, true},
		{"2pi", 2 * math.Pi, true},
		{"2*pi", 2 * math.Pi, true},
		{"3*pi/4", 3 * math.Pi / 4, true},
		{"-pi", -math.Pi, true},
		{"-3*pi/4", -3 * math.Pi / 4, true},
		{" pi / 2 ", math.Pi / 2, true},
		{"3.14e-2", 0.0314, true},
		{"", 0, false},
		{"abc", 0, false},
		{"pi/0", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseParamExpr(tt.input)
		if ok != tt.ok {
			t.Errorf("parseParamExpr(%q): ok = %v, want %v", tt.input, ok, tt.ok)
			continue
		}
		if ok && math.Abs(got-tt.want) > 1e-10 {
			t.Errorf("parseParamExpr(%q) = %g, want %g", tt.input, got, tt.want)
		}
	}
}

func TestFormatParam(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{math.Pi, "pi"},
		{math.Pi / 2, "pi/2"},
		{3 * math.Pi / 4, "3*pi/4"},
		{-math.Pi / 2, "-pi/2"},
		{2 * math.Pi, "2*pi"},
		{1.5, "1.5"},
		{0, "0"},
	}
	for _, tt := range tests {
		if got := formatParam(tt.input); got != tt.want {
			t.Errorf("formatParam(%g) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDAGPlacementAndLowering(t *testing.T) {
	dag := NewCircuitDAG()
	dag.NumQubits = 3

	dag.PlaceOp(SingleOp(GateH, 0), 0)
	dag.PlaceOp(SingleOp(GateX, 1), 0)
	dag.PlaceOp(ControlledOp(GateCNOT, 0, 1), 1)

	if dag.CanPlaceAt(0, []int{0}) {
		t.Error("CanPlaceAt(0, q0) = true on an occupied cell")
	}
	if !dag.CanPlaceAt(0, []int{2}) {
		t.Error("CanPlaceAt(0, q2) = false on a free cell")
	}
	if dag.CanPlaceAt(1, []int{1, 2}) {
		t.Error("CanPlaceAt(1, {1,2}) = true across the CNOT")
	}

	c := dag.ToCircuit()
	if len(c.Steps) != 2 {
		t.Fatalf("lowered to %d steps, want 2", len(c.Steps))
	}
	if len(c.Steps[0]) != 2 || len(c.Steps[1]) != 1 {
		t.Fatalf("step shapes %d/%d, want 2/1", len(c.Steps[0]), len(c.Steps[1]))
	}

	// The CNOT depends on both step-0 nodes.
	cnot := dag.NodeAt(1, 0)
	if cnot == nil || len(cnot.Dependencies) != 2 {
		t.Fatalf("CNOT node deps = %v, want 2 entries", cnot)
	}

	dag.RemoveNodeAt(0, 1)
	if dag.NodeAt(0, 1) != nil {
		t.Error("RemoveNodeAt left the node in place")
	}
	cnot = dag.NodeAt(1, 0)
	if len(cnot.Dependencies) != 1 {
		t.Errorf("CNOT deps after removal = %d, want 1", len(cnot.Dependencies))
	}
}

func TestDAGReplacesOccupant(t *testing.T) {
	dag := NewCircuitDAG()
	dag.NumQubits = 2
	dag.PlaceOp(SingleOp(GateH, 0), 0)
	dag.PlaceOp(SingleOp(GateZ, 0), 0)

	node := dag.NodeAt(0, 0)
	if node == nil || node.Op.Kind != GateZ {
		t.Fatalf("cell holds %v, want the replacing Z", node)
	}
	if len(dag.Nodes) != 1 {
		t.Errorf("dag holds %d nodes, want 1", len(dag.Nodes))
	}
}

func TestDAGQASMRoundTrip(t *testing.T) {
	dag := NewCircuitDAG()
	dag.NumQubits = 2
	dag.PlaceOp(SingleOp(GateH, 0), 0)
	dag.PlaceOp(ControlledOp(GateCNOT, 0, 1), 1)
	dag.PlaceOp(SingleOp(GateMeasure, 0), 2)

	qasm := dag.ToQASM()
	back := NewCircuitDAG()
	if err := back.ParseQASM(qasm); err != nil {
		t.Fatalf("ParseQASM: %v", err)
	}
	if len(back.Nodes) != 3 {
		t.Fatalf("round trip produced %d nodes, want 3", len(back.Nodes))
	}

	a, err := Simulate(dag.ToCircuit())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Simulate(back.ToCircuit())
	if err != nil {
		t.Fatal(err)
	}
	statesClose(t, a, b, 1e-12)
}

func TestFromCircuitKeepsShape(t *testing.T) {
	c := &Circuit{
		NumQubits: 2,
		Steps: [][]Op{
			{SingleOp(GateH, 0)},
			{ControlledOp(GateCZ, 0, 1)},
		},
	}
	dag := FromCircuit(c)
	lowered := dag.ToCircuit()
	if len(lowered.Steps) != 2 {
		t.Fatalf("lowered %d steps, want 2", len(lowered.Steps))
	}
	if lowered.Steps[1][0].Kind != GateCZ {
		t.Errorf("step 1 holds %s, want CZ", lowered.Steps[1][0].Kind)
	}
}
