// pkg/health/render.go

package health

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/credentials"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/verify"
)

// Color palette for health output.
var (
	colorSuccess = lipgloss.Color("#00ff00") // Green
	colorWarning = lipgloss.Color("#ffaa00") // Orange
	colorError   = lipgloss.Color("#ff0000") // Red
	colorMuted   = lipgloss.Color("#666666") // Gray

	styleHeader   = lipgloss.NewStyle().Bold(true)
	styleVerified = lipgloss.NewStyle().Foreground(colorSuccess)
	styleMissing  = lipgloss.NewStyle().Foreground(colorWarning)
	styleBroken   = lipgloss.NewStyle().Foreground(colorError)
	styleDetail   = lipgloss.NewStyle().Foreground(colorMuted)
)

// Render formats a health result for the terminal. Pure function of the
// result: it runs no checks of its own.
func Render(result *HealthCheckResult) string {
	var b strings.Builder

	if !result.Reachable {
		b.WriteString(styleBroken.Render("❌ Remote target unreachable") + "\n")
		if result.Err != "" {
			b.WriteString(styleDetail.Render("   "+result.Err) + "\n")
		}
		b.WriteString(styleDetail.Render("   Credential checks were not started.") + "\n")
		return b.String()
	}

	header := fmt.Sprintf("Remote target reachable via %s (%s)",
		result.Transport, result.Latency.Round(time.Millisecond))
	b.WriteString(styleHeader.Render(header) + "\n")

	if result.Err != "" {
		b.WriteString(styleBroken.Render("❌ Verification did not run: "+result.Err) + "\n")
		return b.String()
	}

	b.WriteString(RenderStatuses(result.Statuses))
	return b.String()
}

// RenderStatuses formats a per-tool status list without the reachability
// header. `hermes verify remote` prints these directly.
func RenderStatuses(statuses []verify.TokenStatus) string {
	var b strings.Builder
	for _, status := range statuses {
		b.WriteString(renderStatus(status))
	}
	return b.String()
}

// renderStatus draws one of exactly three per-tool outcomes: verified,
// not authenticated (with its remedial command), or could-not-check.
func renderStatus(status verify.TokenStatus) string {
	name := toolName(status.ToolID)

	if status.Error != "" {
		lines := []string{
			styleBroken.Render(fmt.Sprintf("❌ %s: could not check", name)),
			styleDetail.Render("   " + status.Error),
			styleDetail.Render("   Fix the transport first; the credential state on the target is unknown."),
		}
		return strings.Join(lines, "\n") + "\n"
	}

	if status.Installed && status.Authenticated {
		line := fmt.Sprintf("✅ %s: authenticated", name)
		var details []string
		if status.Version != "" {
			details = append(details, "version "+status.Version)
		}
		if status.Account != "" {
			details = append(details, "account "+status.Account)
		}
		if len(details) > 0 {
			line += " (" + strings.Join(details, ", ") + ")"
		}
		return styleVerified.Render(line) + "\n"
	}

	reason := "not authenticated"
	if !status.Installed {
		reason = "not installed"
	}
	lines := []string{
		styleMissing.Render(fmt.Sprintf("⚠️  %s: %s", name, reason)),
		styleDetail.Render("   Fix: " + verify.RemedialCommands[status.ToolID]),
	}
	return strings.Join(lines, "\n") + "\n"
}

func toolName(toolID string) string {
	if entry, ok := credentials.Lookup(toolID); ok {
		return entry.Name
	}
	return toolID
}
