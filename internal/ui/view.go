package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"tasktrack/internal/config"
	"tasktrack/internal/nav"
	"tasktrack/internal/task"
)

var (
	ColorText    = lipgloss.AdaptiveColor{Light: "#1a1a1a", Dark: "#F8F8F2"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(ColorText)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	doneStyle     = lipgloss.NewStyle().Foreground(ColorSuccess)
	mutedStyle    = lipgloss.NewStyle().Foreground(ColorMuted)
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(ColorMuted).Padding(0, 1)
)

func (m Model) View() string {
	s := m.machine.Snapshot()
	var b strings.Builder

	b.WriteString(titleStyle.Render("Tasks"))
	b.WriteString(mutedStyle.Render(" | " + s.Context.String()))
	b.WriteString("\n\n")

	if len(s.Tasks) == 0 {
		b.WriteString(fmt.Sprintf("No tasks yet. Press '%s' to add one.", m.cfg.Keys.Add))
	} else {
		b.WriteString(m.renderTaskList(s))
	}
	b.WriteString("\n")
	b.WriteString(m.renderDetail(s))
	b.WriteString("\n")

	if s.Prompt.Active {
		b.WriteString(s.Prompt.Label)
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	b.WriteString(s.Status)
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(renderHelp(m.cfg.Keys, s.Context)))

	return b.String()
}

func renderHelp(k config.Keymap, ctx nav.Context) string {
	switch ctx {
	case nav.SubtaskList:
		return fmt.Sprintf("%s/%s move • %s add • %s delete • %s toggle • %s back • %s save • %s quit",
			k.Up, k.Down, k.Add, k.Delete, keyName(k.Toggle), k.ExitSubtasks, k.Save, k.Quit)
	case nav.TagEditor:
		return fmt.Sprintf("%s/%s move • %s add • %s delete • %s back",
			k.Up, k.Down, k.Add, k.Delete, k.ManageTags)
	default:
		return fmt.Sprintf("%s/%s move • %s add • %s delete • %s toggle • %s subtasks • %s categories • %s/%s/%s edit • %s sort • %s search • %s save • %s load • %s export • %s copy • %s quit",
			k.Up, k.Down, k.Add, k.Delete, keyName(k.Toggle), k.EnterSubtasks, k.ManageTags,
			k.EditTitle, k.EditNote, k.EditDeadline, k.Sort, k.Search, k.Save, k.Load, k.Export, k.Copy, k.Quit)
	}
}

func keyName(k string) string {
	if k == " " {
		return "space"
	}
	return k
}

func (m Model) renderTaskList(s nav.Snapshot) string {
	titleWidth := m.width - 40
	if titleWidth < 10 {
		titleWidth = 10
	}

	var b strings.Builder
	for i, t := range s.Tasks {
		cursor := " "
		if i == s.SelectedTask {
			cursor = ">"
		}
		checkbox := "[ ]"
		if t.Done {
			checkbox = "[x]"
		}
		title := padRight(truncate(t.Title, titleWidth), titleWidth)
		line := fmt.Sprintf("%s %s %s  %s  P%d", cursor, checkbox, title, t.Deadline, t.Priority)
		if n := t.SubtaskCount(); n > 0 {
			line += fmt.Sprintf("  %d/%d", t.CompletedSubtasks(), n)
		}

		switch {
		case i == s.SelectedTask && s.Context == nav.TaskList:
			line = selectedStyle.Render(line)
		case t.Done:
			line = doneStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderDetail(s nav.Snapshot) string {
	if s.SelectedTask == nav.None || s.SelectedTask >= len(s.Tasks) {
		return "No task selected"
	}
	t := s.Tasks[s.SelectedTask]

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Title       : %s\n", t.Title))
	b.WriteString(fmt.Sprintf("Status      : %s\n", humanDone(t.Done)))
	b.WriteString(fmt.Sprintf("Priority    : %d\n", t.Priority))
	b.WriteString(fmt.Sprintf("Deadline    : %s\n", t.Deadline))
	b.WriteString(fmt.Sprintf("Description : %s\n", emptyPlaceholder(t.Note)))

	b.WriteString("Categories  :")
	if t.TagCount() == 0 {
		b.WriteString(" (empty)")
	}
	for i, tag := range t.Tags() {
		if s.Context == nav.TagEditor && i == s.SelectedTag {
			b.WriteString(" " + selectedStyle.Render("["+tag+"]"))
			continue
		}
		b.WriteString(" " + tag)
	}
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("Subtasks    : %d/%d done\n", t.CompletedSubtasks(), t.SubtaskCount()))
	b.WriteString(renderSubtasks(t, s))
	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func renderSubtasks(t task.Task, s nav.Snapshot) string {
	var b strings.Builder
	for i, st := range t.Subtasks() {
		cursor := " "
		if s.Context == nav.SubtaskList && i == s.SelectedSubtask {
			cursor = ">"
		}
		checkbox := "[ ]"
		if st.Done {
			checkbox = "[x]"
		}
		line := fmt.Sprintf("  %s %s %s", cursor, checkbox, st.Title)
		if cursor == ">" {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// truncate cuts s to width terminal cells.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

func padRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

func emptyPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return "(empty)"
	}
	return v
}

func humanDone(done bool) string {
	if done {
		return "done"
	}
	return "pending"
}
