package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/leonardotrapani/hyprscribe/internal/session"
	"github.com/leonardotrapani/hyprscribe/internal/visualizer"
	"github.com/lucasb-eyer/go-colorful"
)

// panelWidth leaves room for borders and padding.
func (m Model) panelWidth() int {
	if m.width <= 0 {
		return 76
	}
	return max(20, m.width-4)
}

func (m Model) View() string {
	var b strings.Builder

	if m.height >= 30 {
		b.WriteString(Logo())
	} else {
		b.WriteString(StyleHeader.Render("hyprscribe"))
	}
	b.WriteString("\n")
	b.WriteString(m.renderCapture())
	b.WriteString("\n")

	b.WriteString(m.renderPanel("Transcript", m.snap.Transcript))
	b.WriteString("\n")
	b.WriteString(m.renderPanel("Summary", m.snap.Summary))
	b.WriteString("\n")

	if v := m.snap.Video; v != nil {
		info := StyleLabel.Render(v.Title) + "\n" +
			StyleMuted.Render(fmt.Sprintf("Language: %s • Source: %s", v.Language, v.Source))
		b.WriteString(m.renderPanel("Video", info))
		b.WriteString("\n")
	}
	if m.snap.ShowKeyPoints {
		var points []string
		for _, p := range m.snap.KeyPoints {
			points = append(points, "• "+p)
		}
		b.WriteString(m.renderPanel("Key Points", strings.Join(points, "\n")))
		b.WriteString("\n")
	}
	if m.snap.YouTubeStatus != "" {
		b.WriteString(youtubeStatusStyle(m.snap.YouTubeStatus).Render(m.snap.YouTubeStatus))
		b.WriteString("\n")
	}
	if m.snap.Answer != "" {
		b.WriteString(m.renderPanel("Answer", m.snap.Answer))
		b.WriteString("\n")
	}

	if m.focus != focusNone {
		label := "YouTube URL"
		if m.focus == focusQuestion {
			label = "Question"
		}
		b.WriteString(StyleLabel.Render(label) + " " + m.input.View())
		b.WriteString("\n")
	}
	if m.errorMessage != "" {
		b.WriteString(StyleError.Render(m.errorMessage))
		b.WriteString("\n")
	}

	b.WriteString(m.renderFooter())
	return b.String()
}

// renderCapture draws the status line inside a box whose border follows the
// microphone glow.
func (m Model) renderCapture() string {
	line := m.indicator() + " " + m.statusStyle().Render(m.snap.Status)
	if n := m.snap.RecordingBytes; n > 0 && m.snap.Mode != session.Recording {
		line += StyleMuted.Render(fmt.Sprintf("  (last recording %s)", humanize.Bytes(uint64(n))))
	}

	style := lipgloss.NewStyle().
		Border(glowBorder(m.snap.Glow)).
		BorderForeground(glowColor(m.snap.Glow)).
		Padding(0, 1).
		Width(m.panelWidth())
	return style.Render(line)
}

func (m Model) indicator() string {
	switch m.snap.Phase {
	case session.PhaseRecording:
		if m.blinkOn {
			return StyleRecording.Render("●")
		}
		return " "
	case session.PhaseProcessing:
		return m.spinner.View()
	case session.PhaseDone:
		return StyleSuccess.Render("✓")
	case session.PhaseError:
		return StyleError.Render("✗")
	}
	if m.snap.Mode == session.YouTube {
		return m.spinner.View()
	}
	return StyleMuted.Render("○")
}

func (m Model) statusStyle() lipgloss.Style {
	switch m.snap.Phase {
	case session.PhaseRecording:
		return StyleRecording
	case session.PhaseError:
		return StyleError
	case session.PhaseDone:
		return StyleSuccess
	}
	return StyleLabel
}

func youtubeStatusStyle(status string) lipgloss.Style {
	switch {
	case status == session.YouTubeDone:
		return StyleSuccess
	case strings.HasPrefix(status, "Error"), status == session.YouTubeEmptyURL:
		return StyleWarning
	}
	return StyleMuted
}

func (m Model) renderPanel(title, body string) string {
	content := StylePanelTitle.Render(title) + "\n" + body
	return StylePanel.Width(m.panelWidth()).Render(content)
}

func (m Model) renderFooter() string {
	c := m.snap.Controls
	if m.focus != focusNone {
		return hint("enter", "submit", true) + "  " + hint("esc", "back", true)
	}
	return strings.Join([]string{
		hint("r", "record", c.Record),
		hint("s", "stop", c.Stop),
		hint("y", "youtube", c.YouTube),
		hint("a", "ask", c.Ask),
		hint("m", "mic view", true),
		hint("c", "cancel", m.snap.Mode != session.Idle),
		hint("q", "quit", true),
	}, "  ")
}

func hint(key, desc string, enabled bool) string {
	if !enabled {
		return StyleKeyDisabled.Render(key + " " + desc)
	}
	return StyleKey.Render(key) + " " + StyleMuted.Render(desc)
}

// glowColor blends the glow color into the resting border by its opacity.
func glowColor(g visualizer.Glow) lipgloss.Color {
	if !g.Active {
		return ColorSubtle
	}
	base, err := colorful.Hex(string(ColorSubtle))
	if err != nil {
		return ColorSubtle
	}
	rgb := g.Color()
	glow := colorful.Color{R: float64(rgb.R) / 255, G: float64(rgb.G) / 255, B: float64(rgb.B) / 255}
	return lipgloss.Color(base.BlendLab(glow, g.Alpha()).Clamped().Hex())
}

// glowBorder thickens the box on loud input.
func glowBorder(g visualizer.Glow) lipgloss.Border {
	if g.Active && g.Spread >= 60 {
		return lipgloss.ThickBorder()
	}
	return lipgloss.RoundedBorder()
}
