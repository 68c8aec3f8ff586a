package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zhouzirui/sms-sim/internal/widget"
)

const (
	chatHelp    = "enter send • ctrl+o configure • ctrl+l clear • ctrl+r reset • ctrl+c quit"
	sidebarHelp = "tab next • ctrl+n next model • ctrl+s apply • esc close"
)

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if m.sidebar {
		b.WriteString(m.renderSidebar())
	} else {
		b.WriteString(m.Viewport.View())
	}
	b.WriteString("\n")

	if m.typing {
		b.WriteString(m.styles.Typing.Render(m.contact.Name + " is typing" + m.Spinner.View()))
	}
	b.WriteString("\n")

	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) renderHeader() string {
	return m.styles.Avatar.Render(m.contact.Avatar) + m.styles.Header.Render(m.contact.Name)
}

func (m Model) statusLine() string {
	if m.status != "" {
		return m.styles.Status.Render(m.status)
	}
	if m.sidebar {
		return m.styles.Status.Render(sidebarHelp)
	}
	return m.styles.Status.Render(chatHelp)
}

func (m Model) renderSidebar() string {
	var b strings.Builder
	for i := range m.Fields {
		label := m.styles.Label
		if field(i) == m.focus {
			label = m.styles.Focused
		}
		b.WriteString(label.Render(fieldLabels[i]))
		b.WriteString("\n")
		b.WriteString(m.Fields[i].View())
		if i < len(m.Fields)-1 {
			b.WriteString("\n")
		}
	}
	return m.styles.Sidebar.Width(max(m.width-2, 10)).Render(b.String())
}

func (m Model) renderConversation() string {
	width := max(m.Viewport.Width, 20)
	maxBubble := max(width*3/4, 10)

	var blocks []string
	for _, entry := range m.conv.Entries() {
		if entry.Kind == widget.EntryDate {
			blocks = append(blocks, lipgloss.PlaceHorizontal(width, lipgloss.Center, m.styles.Date.Render(entry.Text)))
			continue
		}
		blocks = append(blocks, m.renderBubble(entry, width, maxBubble))
	}
	return strings.Join(blocks, "\n")
}

func (m Model) renderBubble(entry widget.Entry, width, maxBubble int) string {
	style, pos := m.styles.Incoming, lipgloss.Left
	if entry.Direction == widget.Outgoing {
		style, pos = m.styles.Outgoing, lipgloss.Right
	}

	// 气泡宽度包含左右各 1 格内边距。
	bubbleWidth := min(lipgloss.Width(entry.Text)+2, maxBubble)
	bubble := style.Width(bubbleWidth).Render(entry.Text)
	block := lipgloss.JoinVertical(pos, bubble, m.styles.Time.Render(entry.Time))
	return lipgloss.PlaceHorizontal(width, pos, block)
}
