package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrInvalidShare is returned for share payloads that fail structural
// validation.
var ErrInvalidShare = errors.New("invalid share payload")

// shareVersion is the only payload version this codec accepts.
const shareVersion = 1

// Wire structs for the share payload:
//
//	{ v: 1, circuit: { nQubits, steps }, seed, shots }
//
// Numeric fields decode through *float64 so a missing field and a malformed
// one are distinguishable, and integer/finite checks happen before any cast.
type wirePayload struct {
	V       *float64     `json:"v"`
	Circuit *wireCircuit `json:"circuit"`
	Seed    *float64     `json:"seed"`
	Shots   *float64     `json:"shots"`
}

type wireCircuit struct {
	NQubits *float64        `json:"nQubits"`
	Steps   json.RawMessage `json:"steps"`
}

type wireOp struct {
	Kind    string   `json:"kind"`
	Target  *int     `json:"target,omitempty"`
	Control *int     `json:"control,omitempty"`
	A       *int     `json:"a,omitempty"`
	B       *int     `json:"b,omitempty"`
	Theta   *float64 `json:"theta,omitempty"`
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

// wholeNumber reports whether f is finite and integral.
func wholeNumber(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f == math.Trunc(f)
}

// encodeOp lowers an Op to its tagged wire record.
func encodeOp(op Op) wireOp {
	w := wireOp{Kind: op.Kind.String()}
	switch {
	case op.Kind == GateSwap:
		w.A = intPtr(op.Control)
		w.B = intPtr(op.Target)
	case op.Kind.IsTwoQubit():
		w.Control = intPtr(op.Control)
		w.Target = intPtr(op.Target)
	case op.Kind.IsRotation():
		w.Target = intPtr(op.Target)
		w.Theta = floatPtr(op.Theta)
	default:
		w.Target = intPtr(op.Target)
	}
	return w
}

// decodeOp raises a wire record back to an Op, rejecting records whose
// fields do not match their kind.
func decodeOp(w wireOp) (Op, error) {
	kind, ok := GateKindByName(w.Kind)
	if !ok {
		return Op{}, fmt.Errorf("%w: unknown op kind %q", ErrInvalidShare, w.Kind)
	}
	switch {
	case kind == GateSwap:
		if w.A == nil || w.B == nil {
			return Op{}, fmt.Errorf("%w: SWAP op missing qubit pair", ErrInvalidShare)
		}
		return SwapOp(*w.A, *w.B), nil
	case kind.IsTwoQubit():
		if w.Control == nil || w.Target == nil {
			return Op{}, fmt.Errorf("%w: %s op missing control or target", ErrInvalidShare, kind)
		}
		return ControlledOp(kind, *w.Control, *w.Target), nil
	case kind.IsRotation():
		if w.Target == nil || w.Theta == nil {
			return Op{}, fmt.Errorf("%w: %s op missing target or theta", ErrInvalidShare, kind)
		}
		if math.IsNaN(*w.Theta) || math.IsInf(*w.Theta, 0) {
			return Op{}, fmt.Errorf("%w: %s theta is not finite", ErrInvalidShare, kind)
		}
		return RotationOp(kind, *w.Target, *w.Theta), nil
	default:
		if w.Target == nil {
			return Op{}, fmt.Errorf("%w: %s op missing target", ErrInvalidShare, kind)
		}
		return SingleOp(kind, *w.Target), nil
	}
}

// EncodeShare serializes a circuit with its sampling configuration into a
// base64url share string. The circuit is validated first, so only circuits
// the executor would accept can be shared.
func EncodeShare(c *Circuit, seed uint32, shots int) (string, error) {
	if c.NumQubits < 1 || c.NumQubits > MaxQubits {
		return "", fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidQubitCount, c.NumQubits, MaxQubits)
	}
	steps := make([][]wireOp, len(c.Steps))
	for i, step := range c.Steps {
		if err := validateStep(c.NumQubits, step); err != nil {
			return "", fmt.Errorf("step %d: %w", i, err)
		}
		steps[i] = make([]wireOp, len(step))
		for j, op := range step {
			steps[i][j] = encodeOp(op)
		}
	}

	rawSteps, err := json.Marshal(steps)
	if err != nil {
		return "", err
	}
	payload := wirePayload{
		V:       floatPtr(shareVersion),
		Circuit: &wireCircuit{NQubits: floatPtr(float64(c.NumQubits)), Steps: rawSteps},
		Seed:    floatPtr(float64(seed)),
		Shots:   floatPtr(float64(shots)),
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// DecodeShare parses a share string back into a circuit, seed and shot
// count. Payloads with the wrong version, a non-integer nQubits, a
// non-list steps field, or non-finite seed/shots are rejected.
func DecodeShare(encoded string) (*Circuit, uint32, int, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%w: %v", ErrInvalidShare, err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	var payload wirePayload
	if err := dec.Decode(&payload); err != nil {
		return nil, 0, 0, fmt.Errorf("%w: %v", ErrInvalidShare, err)
	}

	if payload.V == nil || *payload.V != shareVersion {
		return nil, 0, 0, fmt.Errorf("%w: unsupported version", ErrInvalidShare)
	}
	if payload.Circuit == nil || payload.Circuit.NQubits == nil {
		return nil, 0, 0, fmt.Errorf("%w: missing circuit", ErrInvalidShare)
	}
	if !wholeNumber(*payload.Circuit.NQubits) {
		return nil, 0, 0, fmt.Errorf("%w: nQubits is not an integer", ErrInvalidShare)
	}
	if payload.Seed == nil || !wholeNumber(*payload.Seed) {
		return nil, 0, 0, fmt.Errorf("%w: seed is not a finite integer", ErrInvalidShare)
	}
	if payload.Shots == nil || !wholeNumber(*payload.Shots) {
		return nil, 0, 0, fmt.Errorf("%w: shots is not a finite integer", ErrInvalidShare)
	}
	if len(payload.Circuit.Steps) == 0 || payload.Circuit.Steps[0] != '[' {
		return nil, 0, 0, fmt.Errorf("%w: steps is not a list", ErrInvalidShare)
	}

	var wireSteps [][]wireOp
	if err := json.Unmarshal(payload.Circuit.Steps, &wireSteps); err != nil {
		return nil, 0, 0, fmt.Errorf("%w: %v", ErrInvalidShare, err)
	}

	c := &Circuit{NumQubits: int(*payload.Circuit.NQubits)}
	if c.NumQubits < 1 || c.NumQubits > MaxQubits {
		return nil, 0, 0, fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidQubitCount, c.NumQubits, MaxQubits)
	}
	c.Steps = make([][]Op, len(wireSteps))
	for i, ws := range wireSteps {
		step := make([]Op, len(ws))
		for j, w := range ws {
			op, err := decodeOp(w)
			if err != nil {
				return nil, 0, 0, fmt.Errorf("step %d: %w", i, err)
			}
			step[j] = op
		}
		if err := validateStep(c.NumQubits, step); err != nil {
			return nil, 0, 0, fmt.Errorf("step %d: %w", i, err)
		}
		c.Steps[i] = step
	}

	seed := uint32(int64(*payload.Seed))
	shots := int(*payload.Shots)
	return c, seed, shots, nil
}
