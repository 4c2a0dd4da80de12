package main

import (
	"fmt"
	"testing"
)

func TestMulberry32Deterministic(t *testing.T) {
	a := mulberry32{state: 42}
	b := mulberry32{state: 42}
	for i := 0; i < 1000; i++ {
		va, vb := a.next(), b.next()
		if va != vb {
			t.Fatalf("draw %d: %g != %g for identical seeds", i, va, vb)
		}
		if va < 0 || va >= 1 {
			t.Fatalf("draw %d: %g outside [0, 1)", i, va)
		}
	}
}

func TestMulberry32SeedsDiffer(t *testing.T) {
	a := mulberry32{state: 1}
	b := mulberry32{state: 2}
	same := 0
	for i := 0; i < 100; i++ {
		if a.next() == b.next() {
			same++
		}
	}
	if same == 100 {
		t.Fatal("seeds 1 and 2 produced identical streams")
	}
}

func TestSampleSeededDeterminism(t *testing.T) {
	probs := []float64{0.5, 0.5}
	first := SampleAllQubits(probs, 1024, 1337)
	second := SampleAllQubits(probs, 1024, 1337)

	fmt.Printf("seed 1337 counts: %v\n", first)

	total := 0
	for k := range first {
		if first[k] != second[k] {
			t.Fatalf("counts[%d]: %d != %d across runs", k, first[k], second[k])
		}
		if first[k] < 0 || first[k] > 1024 {
			t.Fatalf("counts[%d] = %d outside [0, 1024]", k, first[k])
		}
		total += first[k]
	}
	if total != 1024 {
		t.Fatalf("counts sum to %d, want 1024", total)
	}
}

func TestSampleSumsToShotsUnnormalized(t *testing.T) {
	// Raw totals below 1 must not bias or lose draws.
	probs := []float64{0.2, 0.1, 0.3}
	counts := SampleAllQubits(probs, 5000, 7)
	total := 0
	for _, c := range counts {
		total += c
	}
	if total != 5000 {
		t.Fatalf("counts sum to %d, want 5000", total)
	}
}

func TestSampleSingleOutcome(t *testing.T) {
	counts := SampleAllQubits([]float64{0, 1, 0, 0}, 999, 3)
	if counts[1] != 999 {
		t.Fatalf("counts = %v, want all draws on index 1", counts)
	}
}

func TestSampleDegradesToZero(t *testing.T) {
	if counts := SampleAllQubits([]float64{0.5, 0.5}, 0, 1); counts[0] != 0 || counts[1] != 0 {
		t.Errorf("shots=0: counts = %v, want zeros", counts)
	}
	if counts := SampleAllQubits([]float64{0.5, 0.5}, -5, 1); counts[0] != 0 || counts[1] != 0 {
		t.Errorf("shots<0: counts = %v, want zeros", counts)
	}
	if counts := SampleAllQubits(nil, 100, 1); len(counts) != 0 {
		t.Errorf("empty probs: counts = %v, want empty", counts)
	}
	if counts := SampleAllQubits([]float64{0, 0, 0}, 100, 1); counts[0]+counts[1]+counts[2] != 0 {
		t.Errorf("zero mass: counts = %v, want zeros", counts)
	}
}

func TestSampleFollowsDistribution(t *testing.T) {
	// 3/4 vs 1/4 split over many shots: loose band, not a statistics test.
	counts := SampleAllQubits([]float64{0.75, 0.25}, 100000, 99)
	if counts[0] < 70000 || counts[0] > 80000 {
		t.Errorf("counts[0] = %d, expected near 75000", counts[0])
	}
}

func TestSampleEndToEnd(t *testing.T) {
	c := &Circuit{
		NumQubits: 2,
		Steps: [][]Op{
			{SingleOp(GateH, 0)},
			{ControlledOp(GateCNOT, 0, 1)},
		},
	}
	s, err := Simulate(c)
	if err != nil {
		t.Fatal(err)
	}
	counts := SampleAllQubits(s.Probabilities(), 4096, 2024)
	if counts[1] != 0 || counts[2] != 0 {
		t.Errorf("bell sampling hit dead outcomes: %v", counts)
	}
	if counts[0]+counts[3] != 4096 {
		t.Errorf("bell counts sum to %d, want 4096", counts[0]+counts[3])
	}
}
