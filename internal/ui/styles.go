package ui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	ColorSuccess   = lipgloss.Color("#00D26A") // green: allowed, enabled
	ColorWarning   = lipgloss.Color("#FFB800") // yellow: paused, pending
	ColorError     = lipgloss.Color("#FF4444") // red: denied, disabled
	ColorAddress   = lipgloss.Color("#00B4D8") // cyan: addresses, role ids
	ColorValue     = lipgloss.Color("#FFFFFF")
	ColorMeta      = lipgloss.Color("#555555")
	ColorBorder    = lipgloss.Color("#1E3A5F")
	ColorRole      = lipgloss.Color("#9B5DE5") // purple: role names
	ColorHighlight = lipgloss.Color("#F15BB5") // pink: selected rows, headers
)

// Base styles.
var (
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleAddress = lipgloss.NewStyle().Foreground(ColorAddress)
	StyleValue   = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	StyleMeta    = lipgloss.NewStyle().Foreground(ColorMeta)
	StyleRole    = lipgloss.NewStyle().Foreground(ColorRole).Bold(true)

	StyleBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Bold(true)

	StyleSelected = lipgloss.NewStyle().
			Background(ColorHighlight).
			Foreground(lipgloss.Color("#000000")).
			Bold(true)

	StyleTitle = lipgloss.NewStyle().
			Foreground(ColorRole).
			Bold(true).
			MarginBottom(1)
)

// Banner returns the one-line product banner.
func Banner(version string) string {
	return StyleRole.Render("govtoken") + " " +
		StyleMeta.Render("feature-gated governance token ledger "+version)
}

// Success formats a success message.
func Success(msg string) string { return StyleSuccess.Render("✓ " + msg) }

// Warn formats a warning message.
func Warn(msg string) string { return StyleWarning.Render("⚠ " + msg) }

// Err formats an error message.
func Err(msg string) string { return StyleError.Render("✗ " + msg) }

// Info formats a neutral notice.
func Info(msg string) string { return StyleAddress.Render("ℹ " + msg) }

// Hint formats a suggestion for the next command to run.
func Hint(msg string) string { return StyleMeta.Render("→ " + msg) }

// Addr formats an address.
func Addr(a string) string { return StyleAddress.Render(a) }

// Val formats a value.
func Val(v string) string { return StyleValue.Render(v) }

// Meta formats metadata text.
func Meta(m string) string { return StyleMeta.Render(m) }

// RoleName formats a role name.
func RoleName(r string) string { return StyleRole.Render(r) }

// Flag renders an on/off feature switch.
func Flag(on bool) string {
	if on {
		return StyleSuccess.Render("enabled")
	}
	return StyleError.Render("disabled")
}

// Verdict renders an authorization outcome.
func Verdict(allowed bool) string {
	if allowed {
		return StyleSuccess.Render("ALLOWED")
	}
	return StyleError.Render("DENIED")
}

// TruncateAddr shortens an address for display: 0x1234…5678.
func TruncateAddr(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
