package main

import (
	"fmt"
	"strings"
)

// menuItem is a single gate choice in the picker.
type menuItem struct {
	name        string
	kind        GateKind
	symbol      string
	needsTarget bool
	needsParam  bool
	paramHint   string
}

// menuCategory groups related items under a tab.
type menuCategory struct {
	name  string
	items []menuItem
}

// gateMenu defines the picker: the engine's catalogue, nothing else.
var gateMenu = []menuCategory{
	{
		name: "Single Qubit",
		items: []menuItem{
			{name: "Hadamard", kind: GateH, symbol: "H"},
			{name: "Pauli-X (NOT)", kind: GateX, symbol: "X"},
			{name: "Pauli-Y", kind: GateY, symbol: "Y"},
			{name: "Pauli-Z", kind: GateZ, symbol: "Z"},
			{name: "Phase (S)", kind: GateS, symbol: "S"},
			{name: "T Gate", kind: GateT, symbol: "T"},
		},
	},
	{
		name: "Rotation",
		items: []menuItem{
			{name: "Rotate X", kind: GateRX, symbol: "RX", needsParam: true, paramHint: "pi/2"},
			{name: "Rotate Y", kind: GateRY, symbol: "RY", needsParam: true, paramHint: "pi/2"},
			{name: "Rotate Z", kind: GateRZ, symbol: "RZ", needsParam: true, paramHint: "pi/2"},
		},
	},
	{
		name: "Two Qubit",
		items: []menuItem{
			{name: "CNOT", kind: GateCNOT, symbol: "●─⊕", needsTarget: true},
			{name: "Controlled-Z", kind: GateCZ, symbol: "●─●", needsTarget: true},
			{name: "SWAP", kind: GateSwap, symbol: "×─×", needsTarget: true},
		},
	},
	{
		name: "Measurement",
		items: []menuItem{
			{name: "Measure", kind: GateMeasure, symbol: "M"},
		},
	},
}

// renderMenu renders the floating gate-picker popup.
func (m Model) renderMenu() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Add Gate"))
	sb.WriteString("\n")

	for i, cat := range gateMenu {
		name := " " + cat.name + " "
		if i == m.menuCat {
			sb.WriteString(activeGateStyle.Render(name))
		} else {
			sb.WriteString(dimStyle.Render(name))
		}
		if i < len(gateMenu)-1 {
			sb.WriteString(dimStyle.Render("│"))
		}
	}
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(strings.Repeat("─", 42)))
	sb.WriteString("\n")

	cat := gateMenu[m.menuCat]
	for i, item := range cat.items {
		if i == m.menuItem {
			sb.WriteString(menuSelectedStyle.Render(" ▸ "))
			sb.WriteString(menuSelectedStyle.Render(fmt.Sprintf("%-16s", item.name)))
			sb.WriteString(gateStyle.Render(item.symbol))
		} else {
			sb.WriteString("   ")
			sb.WriteString(menuNormalStyle.Render(fmt.Sprintf("%-16s", item.name)))
			sb.WriteString(dimStyle.Render(item.symbol))
		}
		if item.needsTarget {
			sb.WriteString(dimStyle.Render(" →target"))
		}
		if item.needsParam {
			sb.WriteString(dimStyle.Render(fmt.Sprintf(" (%s)", item.paramHint)))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(dimStyle.Render(" ↑↓ Select  ←→ Cat  ⏎ Ok  Esc ✕"))

	return menuBorderStyle.Render(sb.String())
}
