package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableAutoWidth(t *testing.T) {
	tbl := NewTable([]Column{{Title: "Name"}, {Title: "Address"}})
	tbl.AddRow(Row{"dev", "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"})
	tbl.AddRow(Row{"deployer", "0x7099"})

	lines := strings.Split(strings.TrimRight(tbl.Render(), "\n"), "\n")
	require.Len(t, lines, 4)

	// every line is as wide as the widest row
	w := lipgloss.Width(lines[0])
	for _, l := range lines[1:] {
		assert.Equal(t, w, lipgloss.Width(l))
	}
	assert.True(t, strings.HasPrefix(lines[2], "dev      "))
	assert.Contains(t, lines[3], "deployer")
}

func TestTableFixedWidthTruncatesPlainText(t *testing.T) {
	tbl := NewTable([]Column{{Title: "Network", Width: 4}})
	tbl.AddRow(Row{"Ganache"})
	out := tbl.Render()
	assert.Contains(t, out, "Gana")
	assert.NotContains(t, out, "Ganache")
}

func TestTableShortRowPadsMissingCells(t *testing.T) {
	tbl := NewTable([]Column{{Title: "A"}, {Title: "B"}})
	tbl.AddRow(Row{"x"})
	lines := strings.Split(strings.TrimRight(tbl.Render(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, lipgloss.Width(lines[0]), lipgloss.Width(lines[2]))
}

func TestTableEmpty(t *testing.T) {
	tbl := NewTable([]Column{{Title: "Name"}})
	lines := strings.Split(strings.TrimRight(tbl.Render(), "\n"), "\n")
	assert.Len(t, lines, 2)
}

func TestKeyValueBlock(t *testing.T) {
	out := KeyValueBlock("Faucet", [][2]string{
		{"Network", "5777"},
		{"Address", "0x5FbDB2315678afecb367f032d93F642f64180aa3"},
	})
	assert.Contains(t, out, "Faucet")
	assert.Contains(t, out, "Network:")
	assert.Contains(t, out, "0x5FbDB2315678afecb367f032d93F642f64180aa3")
	assert.Less(t, strings.Index(out, "Network"), strings.Index(out, "Address"))
}
