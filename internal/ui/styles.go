package ui

import (
	"github.com/Mohsinsiddi/w3faucet/internal/faucet"
	"github.com/charmbracelet/lipgloss"
)

// Color palette.
var (
	ColorSuccess   = lipgloss.Color("#00D26A")
	ColorWarning   = lipgloss.Color("#FFB800")
	ColorError     = lipgloss.Color("#FF4444")
	ColorAddress   = lipgloss.Color("#00B4D8")
	ColorValue     = lipgloss.Color("#FFFFFF")
	ColorMeta      = lipgloss.Color("#555555")
	ColorBorder    = lipgloss.Color("#1E3A5F")
	ColorNetwork   = lipgloss.Color("#9B5DE5")
	ColorHighlight = lipgloss.Color("#F15BB5")
)

var (
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleAddress = lipgloss.NewStyle().Foreground(ColorAddress)
	StyleValue   = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	StyleMeta    = lipgloss.NewStyle().Foreground(ColorMeta)
	StyleNetwork = lipgloss.NewStyle().Foreground(ColorNetwork).Bold(true)

	StylePanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(1, 2)

	StyleTitle = lipgloss.NewStyle().
			Foreground(ColorNetwork).
			Bold(true).
			MarginBottom(1)

	StyleKey = lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Bold(true)

	StyleBalance = lipgloss.NewStyle().
			Foreground(ColorValue).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(ColorHighlight)
)

// Banner is the dashboard heading.
func Banner() string {
	return StyleTitle.Render("⛲ w3faucet") + "\n"
}

func Success(msg string) string { return StyleSuccess.Render("✓ " + msg) }
func Warn(msg string) string    { return StyleWarning.Render("⚠ " + msg) }
func Err(msg string) string     { return StyleError.Render("✗ " + msg) }
func Info(msg string) string    { return StyleAddress.Render("ℹ " + msg) }
func Hint(msg string) string    { return StyleMeta.Render("→ " + msg) }
func Addr(a string) string      { return StyleAddress.Render(a) }
func Val(v string) string       { return StyleValue.Render(v) }
func Meta(m string) string      { return StyleMeta.Render(m) }

// Ether renders a wei-derived decimal string with its unit.
func Ether(amount string) string {
	return StyleValue.Render(amount) + " " + StyleMeta.Render("ETH")
}

// TruncateAddr shortens an address for display: 0x1234…5678.
func TruncateAddr(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}

// StatusBadge colors a connection status.
func StatusBadge(s faucet.Status) string {
	switch s {
	case faucet.StatusReady:
		return StyleSuccess.Render("● " + s.String())
	case faucet.StatusAbsent:
		return StyleError.Render("● " + s.String())
	case faucet.StatusWrongNetwork:
		return StyleWarning.Render("● " + s.String())
	default:
		return StyleMeta.Render("○ " + s.String())
	}
}
