// SPDX-License-Identifier: MPL-2.0

package report

import (
	"github.com/charmbracelet/lipgloss"

	"upkeep-cli/internal/classify"
)

// Color palette - shared hex colors for consistent theming across report output.
// These colors are designed for dark terminal backgrounds with good contrast.
const (
	// ColorPrimary is purple - used for the summary title.
	ColorPrimary = lipgloss.Color("#7C3AED")

	// ColorMuted is gray - used for secondary text and the Optional tier.
	ColorMuted = lipgloss.Color("#6B7280")

	// ColorSuccess is green - used for the all-clear status line.
	ColorSuccess = lipgloss.Color("#10B981")

	// ColorError is red - used for the Critical tier and failure status.
	ColorError = lipgloss.Color("#EF4444")

	// ColorWarning is amber - used for the High tier and the reboot notice.
	ColorWarning = lipgloss.Color("#F59E0B")

	// ColorHighlight is blue - used for the Recommended tier and counts.
	ColorHighlight = lipgloss.Color("#3B82F6")
)

var (
	// TitleStyle is for the summary header.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for run metadata under the header.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// SuccessStyle is for the all-clear status line.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// CriticalStyle is for the Critical tier header and failure status.
	CriticalStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// HighStyle is for the High tier header and the reboot notice.
	HighStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// RecommendedStyle is for the Recommended tier header.
	RecommendedStyle = lipgloss.NewStyle().
				Foreground(ColorHighlight)

	// OptionalStyle is for the Optional tier header.
	OptionalStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// sourceStyle de-emphasizes the probe/operation tag after each finding.
	sourceStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true)
)

// tierStyle maps a severity tier to its header style.
func tierStyle(s classify.Severity) lipgloss.Style {
	switch s {
	case classify.SeverityCritical:
		return CriticalStyle
	case classify.SeverityHigh:
		return HighStyle
	case classify.SeverityRecommended:
		return RecommendedStyle
	default:
		return OptionalStyle
	}
}
