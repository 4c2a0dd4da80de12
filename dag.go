package main

import (
	"fmt"
	"slices"
	"sort"
)

// DAGNode is one placed op. Dependencies are the IDs of nodes on the same
// qubits at earlier steps; the placement paths keep dep.Step < node.Step.
type DAGNode struct {
	ID           string
	Op           Op
	Step         int
	Dependencies []string
}

// CircuitDAG is the editor's source of truth. The circuit grid and the QASM
// panel are both views derived from it.
type CircuitDAG struct {
	Nodes     map[string]*DAGNode
	NumQubits int
	seq       int
}

// NewCircuitDAG creates an empty DAG.
func NewCircuitDAG() *CircuitDAG {
	return &CircuitDAG{Nodes: make(map[string]*DAGNode)}
}

func (dag *CircuitDAG) newID(op Op) string {
	dag.seq++
	return fmt.Sprintf("%s_q%d_%d", op.Kind, op.Target, dag.seq)
}

// touches reports whether the node references the given qubit.
func (n *DAGNode) touches(qubit int) bool {
	return slices.Contains(n.Op.Qubits(), qubit)
}

// NodeAt returns the node occupying (step, qubit), or nil.
func (dag *CircuitDAG) NodeAt(step, qubit int) *DAGNode {
	for _, node := range dag.Nodes {
		if node.Step == step && node.touches(qubit) {
			return node
		}
	}
	return nil
}

// CanPlaceAt reports whether every listed qubit is free at the given step.
func (dag *CircuitDAG) CanPlaceAt(step int, qubits []int) bool {
	for _, q := range qubits {
		if dag.NodeAt(step, q) != nil {
			return false
		}
	}
	return true
}

// PlaceOp inserts an op at the given step, replacing whatever occupied its
// qubits there, and records dependencies on the latest earlier node per
// qubit.
func (dag *CircuitDAG) PlaceOp(op Op, step int) *DAGNode {
	for _, q := range op.Qubits() {
		dag.RemoveNodeAt(step, q)
	}

	node := &DAGNode{ID: dag.newID(op), Op: op, Step: step}
	for _, q := range op.Qubits() {
		if dep := dag.latestBefore(step, q); dep != nil && !slices.Contains(node.Dependencies, dep.ID) {
			node.Dependencies = append(node.Dependencies, dep.ID)
		}
		if q+1 > dag.NumQubits {
			dag.NumQubits = q + 1
		}
	}
	dag.Nodes[node.ID] = node
	return node
}

// latestBefore returns the node on qubit q with the largest step below the
// given step, or nil.
func (dag *CircuitDAG) latestBefore(step, q int) *DAGNode {
	var best *DAGNode
	for _, node := range dag.Nodes {
		if node.Step < step && node.touches(q) {
			if best == nil || node.Step > best.Step {
				best = node
			}
		}
	}
	return best
}

// RemoveNodeAt removes the node occupying (step, qubit), if any.
func (dag *CircuitDAG) RemoveNodeAt(step, qubit int) {
	node := dag.NodeAt(step, qubit)
	if node == nil {
		return
	}
	dag.removeNode(node.ID)
}

// RemoveNodesOnQubit removes every node referencing the qubit.
func (dag *CircuitDAG) RemoveNodesOnQubit(qubit int) {
	for id, node := range dag.Nodes {
		if node.touches(qubit) {
			dag.removeNode(id)
		}
	}
}

func (dag *CircuitDAG) removeNode(id string) {
	delete(dag.Nodes, id)
	for _, node := range dag.Nodes {
		node.Dependencies = slices.DeleteFunc(node.Dependencies, func(dep string) bool {
			return dep == id
		})
	}
}

// MaxStep returns the highest occupied step, or -1 when empty.
func (dag *CircuitDAG) MaxStep() int {
	maxStep := -1
	for _, node := range dag.Nodes {
		if node.Step > maxStep {
			maxStep = node.Step
		}
	}
	return maxStep
}

// ToCircuit lowers the DAG to the executor's step-sequence form. Nodes
// sharing a step land in the same step set; within a step the executor
// guarantees order does not matter.
func (dag *CircuitDAG) ToCircuit() *Circuit {
	c := &Circuit{NumQubits: dag.NumQubits}
	maxStep := dag.MaxStep()
	if maxStep < 0 {
		return c
	}
	c.Steps = make([][]Op, maxStep+1)
	nodes := make([]*DAGNode, 0, len(dag.Nodes))
	for _, node := range dag.Nodes {
		nodes = append(nodes, node)
	}
	// Stable grid order inside each step: by lowest touched qubit.
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Step != nodes[j].Step {
			return nodes[i].Step < nodes[j].Step
		}
		return slices.Min(nodes[i].Op.Qubits()) < slices.Min(nodes[j].Op.Qubits())
	})
	for _, node := range nodes {
		c.Steps[node.Step] = append(c.Steps[node.Step], node.Op)
	}
	return c
}

// FromCircuit builds a DAG from a step-sequence circuit.
func FromCircuit(c *Circuit) *CircuitDAG {
	dag := NewCircuitDAG()
	dag.NumQubits = c.NumQubits
	for step, ops := range c.Steps {
		for _, op := range ops {
			dag.PlaceOp(op, step)
		}
	}
	if dag.NumQubits < c.NumQubits {
		dag.NumQubits = c.NumQubits
	}
	return dag
}

// ParseQASM replaces the DAG contents with the parsed circuit.
func (dag *CircuitDAG) ParseQASM(qasm string) error {
	c, err := ParseQASM(qasm)
	if err != nil {
		return err
	}
	fresh := FromCircuit(c)
	dag.Nodes = fresh.Nodes
	dag.NumQubits = max(fresh.NumQubits, 1)
	dag.seq = fresh.seq
	return nil
}

// ToQASM renders the DAG through its circuit lowering.
func (dag *CircuitDAG) ToQASM() string {
	c := dag.ToCircuit()
	c.NumQubits = dag.NumQubits
	return c.ToQASM()
}

// Clone returns a deep copy.
func (dag *CircuitDAG) Clone() *CircuitDAG {
	c := NewCircuitDAG()
	c.NumQubits = dag.NumQubits
	c.seq = dag.seq
	for id, node := range dag.Nodes {
		deps := make([]string, len(node.Dependencies))
		copy(deps, node.Dependencies)
		c.Nodes[id] = &DAGNode{ID: id, Op: node.Op, Step: node.Step, Dependencies: deps}
	}
	return c
}
