package main

import (
	"fmt"
	"sort"
	"strings"
)

// ──────────────────────────── Rendering helpers ────────────────────────────

// padCenter centres a string within the given width.
func padCenter(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	total := width - len(s)
	left := total / 2
	right := total - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

// gateDisplayName returns the short grid name for an op.
func gateDisplayName(op *Op) string {
	switch op.Kind {
	case GateMeasure:
		return "M"
	case GateCNOT:
		return "CX"
	default:
		return op.Kind.String()
	}
}

// controlSymbol returns the wire symbol for the control end of a two-qubit
// gate.
func controlSymbol(kind GateKind) string {
	if kind == GateSwap {
		return "×"
	}
	return "●"
}

// targetSymbol returns the wire symbol for the target end.
func targetSymbol(kind GateKind) string {
	switch kind {
	case GateCZ:
		return "●"
	case GateSwap:
		return "×"
	default:
		return "⊕"
	}
}

// cellInfo describes what occupies one cell of the circuit grid.
type cellInfo struct {
	op          *Op
	isControl   bool
	isTarget    bool
	vertAbove   bool
	vertBelow   bool
	passThrough bool
}

// cellInfoAt computes rendering information for the cell at (step, qubit).
func (c *Circuit) cellInfoAt(step, qubit int) cellInfo {
	var info cellInfo

	if op := c.OpAt(step, qubit); op != nil {
		info.op = op
		if op.Kind.IsTwoQubit() {
			info.isControl = op.Control == qubit
			info.isTarget = op.Target == qubit
		}
	}

	if step < 0 || step >= len(c.Steps) {
		return info
	}
	// Vertical connector segments for two-qubit gates spanning this row.
	for i := range c.Steps[step] {
		g := &c.Steps[step][i]
		if !g.Kind.IsTwoQubit() {
			continue
		}
		minQ, maxQ := min(g.Control, g.Target), max(g.Control, g.Target)
		if qubit < minQ || qubit > maxQ {
			continue
		}
		if qubit > minQ {
			info.vertAbove = true
		}
		if qubit < maxQ {
			info.vertBelow = true
		}
		if qubit > minQ && qubit < maxQ && info.op == nil {
			info.passThrough = true
		}
	}
	return info
}

// ──────────────────────────── Cell rendering ────────────────────────────

type cellHighlight int

const (
	hlNone cellHighlight = iota
	hlCursor
	hlTargetSelect
)

// renderCell returns 3 lines (top, mid, bot) for a single cell, each exactly
// cellW visual characters wide.
func renderCell(info cellInfo, hl cellHighlight) (top, mid, bot string) {
	emptyRow := strings.Repeat(" ", cellW)
	halfW := cellW / 2
	vertRow := strings.Repeat(" ", halfW) + "│" + strings.Repeat(" ", cellW-halfW-1)

	// ── Highlighted cell (cursor or target selection) ──
	if hl == hlCursor || hl == hlTargetSelect {
		bdr := cursorBoxStyle
		if hl == hlTargetSelect {
			bdr = targetSelectStyle
		}
		innerW := cellW - 2
		dashL := (innerW - 1) / 2
		dashR := innerW - dashL - 1

		top = bdr.Render("╔" + strings.Repeat("═", innerW) + "╗")
		bot = bdr.Render("╚" + strings.Repeat("═", innerW) + "╝")

		switch {
		case info.op != nil && info.isControl:
			sym := controlSymbol(info.op.Kind)
			mid = bdr.Render("║") + strings.Repeat("─", dashL) + gateStyle.Render(sym) + strings.Repeat("─", dashR) + bdr.Render("║")
		case info.op != nil && info.isTarget:
			sym := targetSymbol(info.op.Kind)
			mid = bdr.Render("║") + strings.Repeat("─", dashL) + gateStyle.Render(sym) + strings.Repeat("─", dashR) + bdr.Render("║")
		case info.op != nil:
			name := padCenter(gateDisplayName(info.op), gateNameW)
			mid = bdr.Render("║") + "─┤" + gateStyle.Render(name) + "├─" + bdr.Render("║")
		case info.passThrough:
			mid = bdr.Render("║") + strings.Repeat("─", dashL) + "┼" + strings.Repeat("─", dashR) + bdr.Render("║")
		default:
			mid = bdr.Render("║") + strings.Repeat("─", innerW) + bdr.Render("║")
		}
		return
	}

	// ── Normal cells ──
	dashL := (cellW - 1) / 2
	dashR := cellW - dashL - 1

	switch {
	case info.op != nil && (info.isControl || info.isTarget):
		sym := targetSymbol(info.op.Kind)
		if info.isControl {
			sym = controlSymbol(info.op.Kind)
		}
		top = emptyRow
		if info.vertAbove {
			top = vertRow
		}
		mid = strings.Repeat("─", dashL) + gateStyle.Render(sym) + strings.Repeat("─", dashR)
		bot = emptyRow
		if info.vertBelow {
			bot = vertRow
		}

	case info.op != nil:
		margin := (cellW - gateBoxW) / 2
		rightMargin := cellW - margin - gateBoxW
		name := padCenter(gateDisplayName(info.op), gateNameW)
		top = strings.Repeat(" ", margin) + gateStyle.Render("┌"+strings.Repeat("─", gateNameW)+"┐") + strings.Repeat(" ", rightMargin)
		mid = strings.Repeat("─", margin) + gateStyle.Render("┤"+name+"├") + strings.Repeat("─", rightMargin)
		bot = strings.Repeat(" ", margin) + gateStyle.Render("└"+strings.Repeat("─", gateNameW)+"┘") + strings.Repeat(" ", rightMargin)

	case info.passThrough:
		top = vertRow
		mid = strings.Repeat("─", dashL) + "┼" + strings.Repeat("─", dashR)
		bot = vertRow

	default:
		top = emptyRow
		if info.vertAbove {
			top = vertRow
		}
		mid = strings.Repeat("─", cellW)
		bot = emptyRow
		if info.vertBelow {
			bot = vertRow
		}
	}
	return
}

// ──────────────────────────── Panel rendering ────────────────────────────

// renderCircuitPanel renders the circuit grid panel.
func (m Model) renderCircuitPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Quantum Circuit"))
	sb.WriteString("\n\n")

	availWidth := width - labelVisualW - 4
	maxSteps := max(availWidth/cellW, 1)

	startStep := 0
	if m.cursorStep >= maxSteps {
		startStep = m.cursorStep - maxSteps + 1
	}

	if startStep > 0 {
		fmt.Fprintf(&sb, "  ◀ showing steps %d–%d\n", startStep, startStep+maxSteps-1)
	}

	header := strings.Repeat(" ", labelVisualW)
	for step := startStep; step < startStep+maxSteps; step++ {
		header += dimStyle.Render(padCenter(fmt.Sprintf("%d", step), cellW))
	}
	sb.WriteString(header + "\n")

	for qubit := 0; qubit < m.dag.NumQubits; qubit++ {
		topLine := strings.Repeat(" ", labelVisualW)
		label := fmt.Sprintf("q[%d]", qubit)
		midLine := qubitLabelStyle.Render(fmt.Sprintf("%-5s", label)) + "──"
		botLine := strings.Repeat(" ", labelVisualW)

		for step := startStep; step < startStep+maxSteps; step++ {
			info := m.circuit.cellInfoAt(step, qubit)

			hl := hlNone
			if step == m.cursorStep && qubit == m.cursorQubit &&
				(m.focus == focusCircuit || m.focus == focusSelectTarget || m.focus == focusMenu) {
				hl = hlCursor
			} else if step == m.cursorStep && qubit == m.targetQubit && m.focus == focusSelectTarget {
				hl = hlTargetSelect
			}

			top, mid, bot := renderCell(info, hl)
			topLine += top
			midLine += mid
			botLine += bot
		}

		sb.WriteString(topLine + "\n")
		sb.WriteString(midLine + "\n")
		sb.WriteString(botLine + "\n")
	}

	if m.focus == focusSelectTarget {
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "  %s", activeGateStyle.Render(m.pendingItem.kind.String()))
		sb.WriteString("  Select target qubit: ")
		fmt.Fprintf(&sb, "%s", targetSelectStyle.Render(fmt.Sprintf("q[%d]", m.targetQubit)))
		sb.WriteString(dimStyle.Render("   ↑↓ Move  Enter Confirm  Esc Cancel"))
	} else {
		fmt.Fprintf(&sb, "\n  Position: Step %d, Qubit %d", m.cursorStep, m.cursorQubit)
		if m.statusMsg != "" {
			style := activeGateStyle
			if m.statusIsErr {
				style = errStyle
			}
			fmt.Fprintf(&sb, "  │  %s", style.Render(m.statusMsg))
		}
	}

	return circuitStyle.Width(width).Height(height).Render(sb.String())
}

// renderQASMPanel renders the QASM editor panel.
func (m Model) renderQASMPanel(width, height int) string {
	var sb strings.Builder

	title := "QASM Editor"
	if m.focus == focusQASM {
		title += " [ACTIVE]"
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")
	sb.WriteString(m.qasmEditor.View())

	return qasmStyle.Width(width).Height(height).Render(sb.String())
}

// histogramRow is one outcome line in the results panel.
type histogramRow struct {
	basis int
	count int
}

// renderResultsPanel renders the measurement histogram and Bloch readout of
// the last successful run.
func (m Model) renderResultsPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Results"))
	sb.WriteString("\n")

	res := m.results
	if res == nil {
		sb.WriteString(dimStyle.Render("  r to run  ·  s to set shots/seed"))
		return resultsStyle.Width(width).Height(height).Render(sb.String())
	}

	fmt.Fprintf(&sb, "%s\n", dimStyle.Render(fmt.Sprintf("shots=%d seed=%d drift=%.1e", res.shots, res.seed, res.state.NormDrift())))

	rows := make([]histogramRow, 0, len(res.counts))
	for k, cnt := range res.counts {
		if cnt > 0 {
			rows = append(rows, histogramRow{basis: k, count: cnt})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		return rows[i].basis < rows[j].basis
	})

	shown := len(rows)
	if shown > histMaxRows {
		shown = histMaxRows
	}
	maxCount := 1
	if len(rows) > 0 {
		maxCount = rows[0].count
	}
	for _, row := range rows[:shown] {
		barW := row.count * histBarMaxW / maxCount
		if barW == 0 {
			barW = 1
		}
		label := fmt.Sprintf("|%s⟩", Bitstring(row.basis, res.state.NumQubits))
		fmt.Fprintf(&sb, "%s %s %d\n",
			histLabelStyle.Render(label),
			histBarStyle.Render(strings.Repeat("█", barW)),
			row.count)
	}
	if len(rows) > shown {
		fmt.Fprintf(&sb, "%s\n", dimStyle.Render(fmt.Sprintf("  … %d more outcomes", len(rows)-shown)))
	}

	sb.WriteString("\n")
	for q, v := range res.bloch {
		fmt.Fprintf(&sb, "%s %s\n",
			qubitLabelStyle.Render(fmt.Sprintf("q[%d]", q)),
			blochStyle.Render(fmt.Sprintf("⟨x,y,z⟩ = (%+.3f, %+.3f, %+.3f)", v[0], v[1], v[2])))
	}

	return resultsStyle.Width(width).Height(height).Render(sb.String())
}

// renderControlsPanel renders the bottom help/controls bar.
func (m Model) renderControlsPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(activeGateStyle.Render("Navigate: "))
	sb.WriteString("↑↓/jk Qubit  ←→/hl Step  +/- Qubits")
	sb.WriteString("    ")
	sb.WriteString(activeGateStyle.Render("a"))
	sb.WriteString(" Add  ")
	sb.WriteString(activeGateStyle.Render("e"))
	sb.WriteString(" Edit  ")
	sb.WriteString(activeGateStyle.Render("r"))
	sb.WriteString(" Run  ")
	sb.WriteString(activeGateStyle.Render("s"))
	sb.WriteString(" Shots/Seed\n")

	sb.WriteString(activeGateStyle.Render("Actions:  "))
	sb.WriteString("Tab QASM  Bksp Delete  ^R Clear  ^S Save QASM  ^E Export share  ^O Load share  q/^C Quit")

	return controlsStyle.Width(width).Height(height).Render(sb.String())
}

// ──────────────────────────── Overlay helpers ────────────────────────────

// overlayAt composites the overlay string on top of the background at
// position (x, y), tracking visible columns through ANSI escapes.
func overlayAt(bg, overlay string, x, y int) string {
	bgLines := strings.Split(bg, "\n")
	ovLines := strings.Split(overlay, "\n")

	for i, ovLine := range ovLines {
		bgIdx := y + i
		if bgIdx < 0 || bgIdx >= len(bgLines) {
			continue
		}
		bgLines[bgIdx] = spliceLineAt(bgLines[bgIdx], ovLine, x)
	}
	return strings.Join(bgLines, "\n")
}

// spliceLineAt replaces visible columns starting at position x in bgLine
// with the overlay content, preserving ANSI escape sequences around it.
func spliceLineAt(bgLine, overlay string, x int) string {
	runes := []rune(bgLine)
	ovWidth := visibleLen(overlay)

	var prefix strings.Builder
	var suffix strings.Builder

	col := 0
	i := 0
	inEsc := false

	// Prefix: everything up to visible column x.
	for i < len(runes) && col < x {
		if runes[i] == '\x1b' {
			inEsc = true
			for i < len(runes) {
				prefix.WriteRune(runes[i])
				if inEsc && runes[i] != '\x1b' && runes[i] != '[' && ((runes[i] >= 'A' && runes[i] <= 'Z') || (runes[i] >= 'a' && runes[i] <= 'z')) {
					inEsc = false
					i++
					break
				}
				i++
			}
		} else {
			prefix.WriteRune(runes[i])
			col++
			i++
		}
	}

	for col < x {
		prefix.WriteRune(' ')
		col++
	}

	// Skip ovWidth visible columns of background.
	skipped := 0
	for i < len(runes) && skipped < ovWidth {
		if runes[i] == '\x1b' {
			for i < len(runes) {
				i++
				if i > 0 && runes[i-1] != '\x1b' && runes[i-1] != '[' && ((runes[i-1] >= 'A' && runes[i-1] <= 'Z') || (runes[i-1] >= 'a' && runes[i-1] <= 'z')) {
					break
				}
			}
		} else {
			skipped++
			i++
		}
	}

	for i < len(runes) {
		suffix.WriteRune(runes[i])
		i++
	}

	return prefix.String() + overlay + suffix.String()
}

// visibleLen returns the number of visible (non-ANSI-escape) characters.
func visibleLen(s string) int {
	n := 0
	inEsc := false
	for _, r := range s {
		if r == '\x1b' {
			inEsc = true
			continue
		}
		if inEsc {
			if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
				inEsc = false
			}
			continue
		}
		n++
	}
	return n
}
