package main

import (
	"encoding/base64"
	"errors"
	"math"
	"testing"
)

func bellCircuit() *Circuit {
	return &Circuit{
		NumQubits: 2,
		Steps: [][]Op{
			{SingleOp(GateH, 0)},
			{ControlledOp(GateCNOT, 0, 1)},
		},
	}
}

func TestShareRoundTrip(t *testing.T) {
	c := &Circuit{
		NumQubits: 3,
		Steps: [][]Op{
			{SingleOp(GateH, 0), RotationOp(GateRX, 1, math.Pi/2)},
			{ControlledOp(GateCNOT, 0, 1)},
			{SwapOp(1, 2)},
			{SingleOp(GateMeasure, 0)},
		},
	}
	encoded, err := EncodeShare(c, 1337, 1024)
	if err != nil {
		t.Fatalf("EncodeShare: %v", err)
	}

	got, seed, shots, err := DecodeShare(encoded)
	if err != nil {
		t.Fatalf("DecodeShare: %v", err)
	}
	if seed != 1337 || shots != 1024 {
		t.Errorf("seed/shots = %d/%d, want 1337/1024", seed, shots)
	}
	if got.NumQubits != c.NumQubits || len(got.Steps) != len(c.Steps) {
		t.Fatalf("shape mismatch: %d qubits %d steps", got.NumQubits, len(got.Steps))
	}
	for i := range c.Steps {
		if len(got.Steps[i]) != len(c.Steps[i]) {
			t.Fatalf("step %d has %d ops, want %d", i, len(got.Steps[i]), len(c.Steps[i]))
		}
		for j := range c.Steps[i] {
			want, op := c.Steps[i][j], got.Steps[i][j]
			if op.Kind != want.Kind || op.Target != want.Target || op.Control != want.Control {
				t.Errorf("step %d op %d = %+v, want %+v", i, j, op, want)
			}
			if math.Abs(op.Theta-want.Theta) > 1e-12 {
				t.Errorf("step %d op %d theta = %g, want %g", i, j, op.Theta, want.Theta)
			}
		}
	}
}

func TestShareSampleEquivalence(t *testing.T) {
	// Sampling a decoded circuit reproduces the original counts exactly.
	encoded, err := EncodeShare(bellCircuit(), 7, 2048)
	if err != nil {
		t.Fatal(err)
	}
	c, seed, shots, err := DecodeShare(encoded)
	if err != nil {
		t.Fatal(err)
	}
	orig, err := Simulate(bellCircuit())
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := Simulate(c)
	if err != nil {
		t.Fatal(err)
	}
	a := SampleAllQubits(orig.Probabilities(), 2048, 7)
	b := SampleAllQubits(decoded.Probabilities(), shots, seed)
	for k := range a {
		if a[k] != b[k] {
			t.Fatalf("counts[%d]: %d != %d", k, a[k], b[k])
		}
	}
}

func TestEncodeShareRejectsInvalidCircuit(t *testing.T) {
	bad := &Circuit{NumQubits: 2, Steps: [][]Op{{SingleOp(GateH, 0), SingleOp(GateX, 0)}}}
	if _, err := EncodeShare(bad, 0, 10); !errors.Is(err, ErrInvalidStep) {
		t.Errorf("err = %v, want ErrInvalidStep", err)
	}
	if _, err := EncodeShare(&Circuit{NumQubits: 0}, 0, 10); !errors.Is(err, ErrInvalidQubitCount) {
		t.Errorf("err = %v, want ErrInvalidQubitCount", err)
	}
}

// rawShare base64url-wraps a literal JSON payload.
func rawShare(jsonText string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(jsonText))
}

func TestDecodeShareRejects(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"wrong version", `{"v":2,"circuit":{"nQubits":1,"steps":[]},"seed":0,"shots":0}`},
		{"missing version", `{"circuit":{"nQubits":1,"steps":[]},"seed":0,"shots":0}`},
		{"fractional nQubits", `{"v":1,"circuit":{"nQubits":1.5,"steps":[]},"seed":0,"shots":0}`},
		{"steps not a list", `{"v":1,"circuit":{"nQubits":1,"steps":{}},"seed":0,"shots":0}`},
		{"missing circuit", `{"v":1,"seed":0,"shots":0}`},
		{"fractional seed", `{"v":1,"circuit":{"nQubits":1,"steps":[]},"seed":0.5,"shots":0}`},
		{"fractional shots", `{"v":1,"circuit":{"nQubits":1,"steps":[]},"seed":0,"shots":10.2}`},
		{"missing shots", `{"v":1,"circuit":{"nQubits":1,"steps":[]},"seed":0}`},
		{"unknown op kind", `{"v":1,"circuit":{"nQubits":1,"steps":[[{"kind":"CCX","target":0}]]},"seed":0,"shots":0}`},
		{"cnot missing control", `{"v":1,"circuit":{"nQubits":2,"steps":[[{"kind":"CNOT","target":1}]]},"seed":0,"shots":0}`},
		{"rotation missing theta", `{"v":1,"circuit":{"nQubits":1,"steps":[[{"kind":"RX","target":0}]]},"seed":0,"shots":0}`},
		{"swap missing pair", `{"v":1,"circuit":{"nQubits":2,"steps":[[{"kind":"SWAP","a":0}]]},"seed":0,"shots":0}`},
	}
	for _, tt := range tests {
		if _, _, _, err := DecodeShare(rawShare(tt.json)); !errors.Is(err, ErrInvalidShare) {
			t.Errorf("%s: err = %v, want ErrInvalidShare", tt.name, err)
		}
	}

	if _, _, _, err := DecodeShare("!!not-base64!!"); !errors.Is(err, ErrInvalidShare) {
		t.Errorf("bad base64: err = %v, want ErrInvalidShare", err)
	}
}

func TestDecodeShareValidatesCircuit(t *testing.T) {
	conflict := `{"v":1,"circuit":{"nQubits":2,"steps":[[{"kind":"H","target":0},{"kind":"X","target":0}]]},"seed":0,"shots":0}`
	if _, _, _, err := DecodeShare(rawShare(conflict)); !errors.Is(err, ErrInvalidStep) {
		t.Errorf("conflicting step: err = %v, want ErrInvalidStep", err)
	}

	outOfRange := `{"v":1,"circuit":{"nQubits":1,"steps":[[{"kind":"H","target":4}]]},"seed":0,"shots":0}`
	if _, _, _, err := DecodeShare(rawShare(outOfRange)); !errors.Is(err, ErrInvalidQubitIndex) {
		t.Errorf("out of range: err = %v, want ErrInvalidQubitIndex", err)
	}

	tooWide := `{"v":1,"circuit":{"nQubits":40,"steps":[]},"seed":0,"shots":0}`
	if _, _, _, err := DecodeShare(rawShare(tooWide)); !errors.Is(err, ErrInvalidQubitCount) {
		t.Errorf("too wide: err = %v, want ErrInvalidQubitCount", err)
	}
}

func TestDecodeShareSeedTruncation(t *testing.T) {
	// Seeds are cast to uint32, wrapping modulo 2^32.
	payload := `{"v":1,"circuit":{"nQubits":1,"steps":[]},"seed":4294967297,"shots":1}`
	_, seed, _, err := DecodeShare(rawShare(payload))
	if err != nil {
		t.Fatalf("DecodeShare: %v", err)
	}
	if seed != 1 {
		t.Errorf("seed = %d, want 1 (wrapped)", seed)
	}
}
