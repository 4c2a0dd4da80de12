package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// focus represents which panel/mode has keyboard input.
type focus int

const (
	focusCircuit focus = iota
	focusQASM
	focusMenu
	focusSelectTarget
	focusInputParam
	focusEditGate
	focusEditParam
	focusEditTarget
	focusEditControl
	focusRunConfig
)

const shareFile = "circuit.share"

// runResults holds the output of the last successful simulation run.
type runResults struct {
	state  *State
	counts []int
	bloch  [][3]float64
	shots  int
	seed   uint32
}

// Model represents the TUI application state.
type Model struct {
	dag     *CircuitDAG // DAG is the single source of truth
	circuit Circuit     // Circuit view derived from DAG

	cursorQubit int
	cursorStep  int
	width       int
	height      int

	qasmEditor textarea.Model
	runInput   textinput.Model
	focus      focus
	lastQASM   string

	statusMsg   string
	statusIsErr bool

	shots   int
	seed    uint32
	results *runResults

	// Menu state
	menuCat     int
	menuItem    int
	pendingItem menuItem
	targetQubit int
	paramInput  string

	// Edit gate state
	editNodeID  string
	editMenuIdx int
}

func initialModel() Model {
	ta := textarea.New()
	ta.Placeholder = "Edit QASM here..."
	ta.SetWidth(40)
	ta.SetHeight(12)
	ta.ShowLineNumbers = true
	ta.KeyMap.InsertNewline.SetEnabled(true)

	ti := textinput.New()
	ti.Placeholder = "shots seed"
	ti.CharLimit = 24
	ti.Width = 24

	dag := NewCircuitDAG()
	dag.NumQubits = 4

	m := Model{
		dag:        dag,
		qasmEditor: ta,
		runInput:   ti,
		focus:      focusCircuit,
		shots:      defaultShots,
		seed:       defaultSeed,
	}
	m.syncFromDAG()
	return m
}

func (m *Model) syncFromDAG() {
	c := m.dag.ToCircuit()
	c.NumQubits = m.dag.NumQubits
	m.circuit = *c

	qasm := m.dag.ToQASM()
	m.qasmEditor.SetValue(qasm)
	m.lastQASM = qasm
}

func (m *Model) setStatus(msg string) {
	m.statusMsg = msg
	m.statusIsErr = false
}

func (m *Model) setError(msg string) {
	m.statusMsg = msg
	m.statusIsErr = true
}

func (m *Model) parseQASMInput() {
	qasm := m.qasmEditor.Value()
	if qasm == m.lastQASM {
		return
	}
	dag := NewCircuitDAG()
	if err := dag.ParseQASM(qasm); err != nil {
		// Keep the last good circuit; the editor may be mid-keystroke.
		m.setError(err.Error())
		m.lastQASM = qasm
		return
	}
	m.statusMsg = ""
	m.dag = dag
	if m.dag.NumQubits > 0 && m.cursorQubit >= m.dag.NumQubits {
		m.cursorQubit = m.dag.NumQubits - 1
	}
	c := m.dag.ToCircuit()
	c.NumQubits = m.dag.NumQubits
	m.circuit = *c
	m.lastQASM = qasm
}

// placeAtCursor places an op on the circuit at the cursor step. Returns
// false when a qubit is already occupied at that step.
func (m *Model) placeAtCursor(op Op) bool {
	if !m.dag.CanPlaceAt(m.cursorStep, op.Qubits()) {
		m.setError("Cannot place: qubit already used by another gate at this step")
		m.paramInput = ""
		m.pendingItem = menuItem{}
		return false
	}
	m.dag.PlaceOp(op, m.cursorStep)
	m.paramInput = ""
	m.pendingItem = menuItem{}
	m.cursorStep++
	m.syncFromDAG()
	return true
}

// buildPendingOp assembles the op described by the pending menu item, the
// cursor and (for two-qubit gates) the selected target.
func (m *Model) buildPendingOp() (Op, bool) {
	item := m.pendingItem
	switch {
	case item.kind == GateSwap:
		return SwapOp(m.cursorQubit, m.targetQubit), true
	case item.kind.IsTwoQubit():
		return ControlledOp(item.kind, m.cursorQubit, m.targetQubit), true
	case item.kind.IsRotation():
		theta, ok := parseParamExpr(m.paramInput)
		if !ok {
			return Op{}, false
		}
		return RotationOp(item.kind, m.cursorQubit, theta), true
	default:
		return SingleOp(item.kind, m.cursorQubit), true
	}
}

// runSimulation executes the current circuit and refreshes the results
// panel. On failure the previous results stay in place and the error is
// shown beside them.
func (m *Model) runSimulation() {
	c := m.dag.ToCircuit()
	c.NumQubits = m.dag.NumQubits
	if c.NumQubits < 1 {
		m.setError("Nothing to run: circuit has no qubits")
		return
	}

	state, err := Simulate(c)
	if err != nil {
		debugLog.Error("simulate failed", "err", err)
		m.setError(err.Error())
		return
	}

	probs := state.Probabilities()
	counts := SampleAllQubits(probs, m.shots, m.seed)
	bloch := make([][3]float64, state.NumQubits)
	for q := 0; q < state.NumQubits; q++ {
		x, y, z, err := state.BlochVector(q)
		if err != nil {
			m.setError(err.Error())
			return
		}
		bloch[q] = [3]float64{x, y, z}
	}

	m.results = &runResults{state: state, counts: counts, bloch: bloch, shots: m.shots, seed: m.seed}
	m.setStatus(fmt.Sprintf("Ran %d steps, %d shots", c.StepCount(), m.shots))
	debugLog.Debug("run complete", "qubits", c.NumQubits, "steps", c.StepCount(), "shots", m.shots, "seed", m.seed)
}

// applyRunConfig parses the shots/seed input line.
func (m *Model) applyRunConfig() bool {
	fields := strings.FieldsFunc(m.runInput.Value(), func(r rune) bool {
		return r == ' ' || r == ','
	})
	if len(fields) == 0 || len(fields) > 2 {
		m.setError("Enter: <shots> [seed]")
		return false
	}
	shots, err := strconv.Atoi(fields[0])
	if err != nil || shots < 0 || shots > maxShots {
		m.setError(fmt.Sprintf("Shots must be an integer in [0, %d]", maxShots))
		return false
	}
	m.shots = shots
	if len(fields) == 2 {
		seed, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			m.setError("Seed must be an integer")
			return false
		}
		m.seed = uint32(seed)
	}
	m.setStatus(fmt.Sprintf("shots=%d seed=%d", m.shots, m.seed))
	return true
}

// exportShare writes the share payload for the current circuit to disk.
func (m *Model) exportShare() {
	c := m.dag.ToCircuit()
	c.NumQubits = m.dag.NumQubits
	encoded, err := EncodeShare(c, m.seed, m.shots)
	if err != nil {
		m.setError(err.Error())
		return
	}
	if err := os.WriteFile(shareFile, []byte(encoded), 0o644); err != nil {
		m.setError(fmt.Sprintf("Share export: %v", err))
		return
	}
	m.setStatus("Exported " + shareFile)
}

// importShare loads a share payload from disk and replaces the circuit.
func (m *Model) importShare() {
	raw, err := os.ReadFile(shareFile)
	if err != nil {
		m.setError(fmt.Sprintf("Share load: %v", err))
		return
	}
	c, seed, shots, err := DecodeShare(strings.TrimSpace(string(raw)))
	if err != nil {
		m.setError(err.Error())
		return
	}
	m.dag = FromCircuit(c)
	m.dag.NumQubits = c.NumQubits
	m.seed = seed
	if shots >= 0 && shots <= maxShots {
		m.shots = shots
	}
	m.cursorStep = 0
	m.cursorQubit = 0
	m.results = nil
	m.syncFromDAG()
	m.setStatus("Loaded " + shareFile)
}

// ──────────────────────────── Init / Update ────────────────────────────

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		qasmW := max(msg.Width/3-6, 20)
		m.qasmEditor.SetWidth(qasmW)
		ctrlH := 6
		circH := msg.Height - ctrlH - 4
		editorH := max(circH/2-4, 4)
		m.qasmEditor.SetHeight(editorH)

	case tea.KeyMsg:
		key := msg.String()
		if m.focus != focusQASM {
			m.statusMsg = ""
		}

		if key == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.focus {
		case focusCircuit:
			switch key {
			case "q":
				return m, tea.Quit
			case "tab":
				m.focus = focusQASM
				m.qasmEditor.Focus()
			case "ctrl+r":
				m.dag = NewCircuitDAG()
				m.dag.NumQubits = 4
				m.cursorStep = 0
				m.cursorQubit = 0
				m.results = nil
				m.syncFromDAG()
			case "ctrl+s":
				qasm := m.dag.ToQASM()
				if err := os.WriteFile("circuit.qasm", []byte(qasm), 0o644); err != nil {
					m.setError(fmt.Sprintf("Save error: %v", err))
				} else {
					m.setStatus("Saved circuit.qasm")
				}
			case "ctrl+e":
				m.exportShare()
			case "ctrl+o":
				m.importShare()
			case "r":
				m.runSimulation()
			case "s":
				m.runInput.SetValue(fmt.Sprintf("%d %d", m.shots, m.seed))
				m.runInput.Focus()
				m.focus = focusRunConfig
			case "up", "k":
				if m.cursorQubit > 0 {
					m.cursorQubit--
				}
			case "down", "j":
				if m.cursorQubit < m.dag.NumQubits-1 {
					m.cursorQubit++
				}
			case "left", "h":
				if m.cursorStep > 0 {
					m.cursorStep--
				}
			case "right", "l":
				m.cursorStep++
			case "+", "=":
				if m.dag.NumQubits < maxEditorQubits {
					m.dag.NumQubits++
					m.syncFromDAG()
				} else {
					m.setError(fmt.Sprintf("Editor caps circuits at %d qubits", maxEditorQubits))
				}
			case "-":
				if m.dag.NumQubits > 1 {
					m.dag.NumQubits--
					m.cursorQubit = min(m.cursorQubit, m.dag.NumQubits-1)
					m.dag.RemoveNodesOnQubit(m.dag.NumQubits)
					m.syncFromDAG()
				}
			case "a":
				m.focus = focusMenu
				m.menuCat = 0
				m.menuItem = 0
			case "backspace", "delete":
				m.dag.RemoveNodeAt(m.cursorStep, m.cursorQubit)
				m.syncFromDAG()
			case "e":
				if node := m.dag.NodeAt(m.cursorStep, m.cursorQubit); node != nil {
					m.editNodeID = node.ID
					m.editMenuIdx = 0
					m.focus = focusEditGate
				}
			}

		case focusMenu:
			switch key {
			case "esc":
				m.focus = focusCircuit
			case "up", "k":
				if m.menuItem > 0 {
					m.menuItem--
				}
			case "down", "j":
				if m.menuItem < len(gateMenu[m.menuCat].items)-1 {
					m.menuItem++
				}
			case "left", "h":
				if m.menuCat > 0 {
					m.menuCat--
					m.menuItem = 0
				}
			case "right", "l":
				if m.menuCat < len(gateMenu)-1 {
					m.menuCat++
					m.menuItem = 0
				}
			case "enter":
				item := gateMenu[m.menuCat].items[m.menuItem]
				m.pendingItem = item

				if item.needsParam {
					m.paramInput = ""
					m.focus = focusInputParam
					break
				}
				if item.needsTarget {
					if m.dag.NumQubits < 2 {
						break
					}
					m.focus = focusSelectTarget
					m.targetQubit = m.nextFreeTarget()
				} else {
					if op, ok := m.buildPendingOp(); ok && m.placeAtCursor(op) {
						m.focus = focusCircuit
					}
				}
			}

		case focusSelectTarget:
			switch key {
			case "esc":
				m.focus = focusCircuit
				m.paramInput = ""
				m.pendingItem = menuItem{}
			case "up", "k":
				for next := m.targetQubit - 1; next >= 0; next-- {
					if next != m.cursorQubit {
						m.targetQubit = next
						break
					}
				}
			case "down", "j":
				for next := m.targetQubit + 1; next < m.dag.NumQubits; next++ {
					if next != m.cursorQubit {
						m.targetQubit = next
						break
					}
				}
			case "enter":
				if op, ok := m.buildPendingOp(); ok && m.placeAtCursor(op) {
					m.focus = focusCircuit
				}
			}

		case focusInputParam:
			switch key {
			case "esc":
				m.focus = focusCircuit
				m.paramInput = ""
				m.pendingItem = menuItem{}
			case "backspace":
				if len(m.paramInput) > 0 {
					m.paramInput = m.paramInput[:len(m.paramInput)-1]
				}
			case "enter":
				if _, ok := parseParamExpr(m.paramInput); !ok {
					m.setError("Invalid angle — use numbers or pi expressions (e.g. pi/2, 3*pi/4)")
					break
				}
				if m.pendingItem.needsTarget {
					if m.dag.NumQubits < 2 {
						break
					}
					m.focus = focusSelectTarget
					m.targetQubit = m.nextFreeTarget()
				} else {
					if op, ok := m.buildPendingOp(); ok && m.placeAtCursor(op) {
						m.focus = focusCircuit
					}
				}
			default:
				if len(key) == 1 && strings.ContainsAny(key, "0123456789.eE+-*/pi") {
					m.paramInput += key
				}
			}

		case focusEditGate:
			node := m.dag.Nodes[m.editNodeID]
			if node == nil {
				m.focus = focusCircuit
				break
			}
			opts := editOptionsFor(node)
			switch key {
			case "esc":
				m.focus = focusCircuit
				m.editNodeID = ""
			case "up", "k":
				if m.editMenuIdx > 0 {
					m.editMenuIdx--
				}
			case "down", "j":
				if m.editMenuIdx < len(opts)-1 {
					m.editMenuIdx++
				}
			case "enter":
				if m.editMenuIdx >= len(opts) {
					break
				}
				switch opts[m.editMenuIdx].action {
				case "edit_param":
					m.paramInput = ""
					m.focus = focusEditParam
				case "edit_target":
					m.targetQubit = node.Op.Target
					m.focus = focusEditTarget
				case "edit_control":
					m.targetQubit = node.Op.Control
					m.focus = focusEditControl
				case "delete":
					m.dag.removeNode(node.ID)
					m.editNodeID = ""
					m.focus = focusCircuit
					m.syncFromDAG()
				}
			}

		case focusEditParam:
			switch key {
			case "esc":
				m.paramInput = ""
				m.focus = focusEditGate
			case "backspace":
				if len(m.paramInput) > 0 {
					m.paramInput = m.paramInput[:len(m.paramInput)-1]
				}
			case "enter":
				theta, ok := parseParamExpr(m.paramInput)
				if m.paramInput != "" && !ok {
					m.setError("Invalid angle — use numbers or pi expressions (e.g. pi/2, 3*pi/4)")
					break
				}
				if ok {
					m.rewriteEditNode(func(op Op) Op {
						op.Theta = theta
						return op
					})
				}
				m.paramInput = ""
				m.focus = focusEditGate
			default:
				if len(key) == 1 && strings.ContainsAny(key, "0123456789.eE+-*/pi") {
					m.paramInput += key
				}
			}

		case focusEditTarget:
			node := m.dag.Nodes[m.editNodeID]
			if node == nil {
				m.focus = focusCircuit
				break
			}
			switch key {
			case "esc":
				m.focus = focusEditGate
			case "up", "k":
				for next := m.targetQubit - 1; next >= 0; next-- {
					if next != node.Op.Control {
						m.targetQubit = next
						break
					}
				}
			case "down", "j":
				for next := m.targetQubit + 1; next < m.dag.NumQubits; next++ {
					if next != node.Op.Control {
						m.targetQubit = next
						break
					}
				}
			case "enter":
				q := m.targetQubit
				m.rewriteEditNode(func(op Op) Op {
					op.Target = q
					return op
				})
				m.focus = focusEditGate
			}

		case focusEditControl:
			node := m.dag.Nodes[m.editNodeID]
			if node == nil {
				m.focus = focusCircuit
				break
			}
			switch key {
			case "esc":
				m.focus = focusEditGate
			case "up", "k":
				for next := m.targetQubit - 1; next >= 0; next-- {
					if next != node.Op.Target {
						m.targetQubit = next
						break
					}
				}
			case "down", "j":
				for next := m.targetQubit + 1; next < m.dag.NumQubits; next++ {
					if next != node.Op.Target {
						m.targetQubit = next
						break
					}
				}
			case "enter":
				q := m.targetQubit
				m.rewriteEditNode(func(op Op) Op {
					op.Control = q
					return op
				})
				m.focus = focusEditGate
			}

		case focusRunConfig:
			switch key {
			case "esc":
				m.runInput.Blur()
				m.focus = focusCircuit
			case "enter":
				if m.applyRunConfig() {
					m.runInput.Blur()
					m.focus = focusCircuit
				}
			default:
				var cmd tea.Cmd
				m.runInput, cmd = m.runInput.Update(msg)
				cmds = append(cmds, cmd)
			}

		case focusQASM:
			switch key {
			case "tab":
				m.focus = focusCircuit
				m.qasmEditor.Blur()
			default:
				var cmd tea.Cmd
				m.qasmEditor, cmd = m.qasmEditor.Update(msg)
				cmds = append(cmds, cmd)
				m.parseQASMInput()
			}
		}
	}

	return m, tea.Batch(cmds...)
}

// nextFreeTarget picks the first selectable target qubit other than the
// cursor qubit.
func (m *Model) nextFreeTarget() int {
	if t := m.cursorQubit + 1; t < m.dag.NumQubits {
		return t
	}
	return m.cursorQubit - 1
}

// rewriteEditNode replaces the edited node's op, reverting on a placement
// conflict.
func (m *Model) rewriteEditNode(rewrite func(Op) Op) {
	node := m.dag.Nodes[m.editNodeID]
	if node == nil {
		return
	}
	oldOp, step := node.Op, node.Step
	newOp := rewrite(oldOp)
	m.dag.removeNode(node.ID)
	if !m.dag.CanPlaceAt(step, newOp.Qubits()) {
		reverted := m.dag.PlaceOp(oldOp, step)
		m.setError("Cannot move: qubit already used by another gate at this step")
		m.editNodeID = reverted.ID
		m.syncFromDAG()
		return
	}
	placed := m.dag.PlaceOp(newOp, step)
	m.editNodeID = placed.ID
	m.syncFromDAG()
}

// editOption represents an option in the edit gate menu.
type editOption struct {
	label  string
	action string
}

// editOptionsFor returns available edit options for a node.
func editOptionsFor(node *DAGNode) []editOption {
	var opts []editOption
	op := node.Op

	if op.Kind.IsRotation() {
		opts = append(opts, editOption{
			label:  fmt.Sprintf("Angle: %s", formatParam(op.Theta)),
			action: "edit_param",
		})
	}
	opts = append(opts, editOption{
		label:  fmt.Sprintf("Target: q[%d]", op.Target),
		action: "edit_target",
	})
	if op.Kind.IsTwoQubit() {
		label := fmt.Sprintf("Control: q[%d]", op.Control)
		if op.Kind == GateSwap {
			label = fmt.Sprintf("Partner: q[%d]", op.Control)
		}
		opts = append(opts, editOption{label: label, action: "edit_control"})
	}
	opts = append(opts, editOption{label: "Delete gate", action: "delete"})
	return opts
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	rightWidth := m.width / 3
	circuitWidth := m.width - rightWidth - 4
	controlsHeight := 6
	bodyHeight := max(m.height-controlsHeight-2, 8)
	qasmHeight := bodyHeight / 2
	resultsHeight := bodyHeight - qasmHeight

	circuitPanel := m.renderCircuitPanel(circuitWidth, bodyHeight)
	qasmPanel := m.renderQASMPanel(rightWidth, qasmHeight)
	resultsPanel := m.renderResultsPanel(rightWidth, resultsHeight)
	controlsPanel := m.renderControlsPanel(m.width-4, controlsHeight-2)

	rightCol := lipgloss.JoinVertical(lipgloss.Left, qasmPanel, resultsPanel)
	topRow := lipgloss.JoinHorizontal(lipgloss.Top, circuitPanel, rightCol)
	frame := lipgloss.JoinVertical(lipgloss.Left, topRow, controlsPanel)

	switch m.focus {
	case focusMenu:
		frame = overlayAt(frame, m.renderMenu(), 2, 2)
	case focusInputParam, focusEditParam:
		frame = overlayAt(frame, m.renderParamInput(), 2, 2)
	case focusEditGate:
		frame = overlayAt(frame, m.renderEditGateMenu(), 2, 2)
	case focusRunConfig:
		frame = overlayAt(frame, m.renderRunConfig(), 2, 2)
	}

	return frame
}

// renderParamInput renders the angle input overlay.
func (m Model) renderParamInput() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Enter Angle"))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Value: %s_", m.paramInput))
	sb.WriteString("\n\n")
	sb.WriteString(dimStyle.Render("Examples: pi/2, 3*pi/4, 1.57"))
	return menuBorderStyle.Render(sb.String())
}

// renderEditGateMenu renders the edit gate menu overlay.
func (m Model) renderEditGateMenu() string {
	node := m.dag.Nodes[m.editNodeID]
	if node == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Edit " + node.Op.Label()))
	sb.WriteString("\n\n")
	for i, opt := range editOptionsFor(node) {
		if i == m.editMenuIdx {
			sb.WriteString(menuSelectedStyle.Render(fmt.Sprintf("▸ %s", opt.label)))
		} else {
			sb.WriteString(fmt.Sprintf("  %s", opt.label))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render("↑↓ Select  ⏎ Ok  Esc ✕"))
	return menuBorderStyle.Render(sb.String())
}

// renderRunConfig renders the shots/seed input overlay.
func (m Model) renderRunConfig() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Run Configuration"))
	sb.WriteString("\n\n")
	sb.WriteString(m.runInput.View())
	sb.WriteString("\n\n")
	sb.WriteString(dimStyle.Render(fmt.Sprintf("<shots> [seed] — shots ≤ %d", maxShots)))
	return menuBorderStyle.Render(sb.String())
}
