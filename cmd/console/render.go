package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/feed-engine/pkg/reducer"
	"github.com/jwebster45206/feed-engine/pkg/state"
	"github.com/jwebster45206/feed-engine/pkg/widget"
)

const barWidth = 20

var barColors = map[string]lipgloss.Color{
	reducer.ColorGreen:  lipgloss.Color("34"),
	reducer.ColorYellow: lipgloss.Color("220"),
	reducer.ColorBrown:  lipgloss.Color("130"),
	reducer.ColorRed:    lipgloss.Color("196"),
}

var injuryMarks = []string{" ", "1", "2", "3", "s", "S", "#"}

// renderSegment styles one run of text with the colors the feed attached to it
func renderSegment(seg widget.Segment) string {
	if seg.Foreground == "" && seg.Background == "" && !seg.Bold {
		return seg.Text
	}
	style := lipgloss.NewStyle().Bold(seg.Bold)
	if seg.Foreground != "" {
		style = style.Foreground(lipgloss.Color(seg.Foreground))
	}
	if seg.Background != "" {
		style = style.Background(lipgloss.Color(seg.Background))
	}
	return style.Render(seg.Text)
}

// renderBuffer renders every line of a text buffer wrapped to width
func renderBuffer(buf *widget.TextBuffer, width int) string {
	if buf == nil {
		return ""
	}
	if width < 10 {
		width = 10
	}
	lines := buf.Lines()
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		var b strings.Builder
		for _, seg := range line.Segments {
			b.WriteString(renderSegment(seg))
		}
		out = append(out, wordwrap.String(b.String(), width))
	}
	return strings.Join(out, "\n")
}

// renderTabHeaders lists tab names, marking the active one and any with unread text
func renderTabHeaders(c *widget.TabbedContent) string {
	headers := make([]string, 0, len(c.Tabs))
	for i, tab := range c.Tabs {
		name := tab.Name
		if tab.Unread {
			name += "*"
		}
		if i == c.Active {
			headers = append(headers, activeTabStyle.Render(name))
		} else {
			headers = append(headers, tabStyle.Render(name))
		}
	}
	return strings.Join(headers, " ")
}

// renderBar draws a labelled progress bar
func renderBar(name string, c *widget.ProgressContent) string {
	maxValue := c.Max
	if maxValue <= 0 {
		maxValue = 100
	}
	value := c.Value
	if value < 0 {
		value = 0
	}
	if value > maxValue {
		value = maxValue
	}
	filled := value * barWidth / maxValue

	color, ok := barColors[c.Color]
	if !ok {
		color = lipgloss.Color("39")
	}
	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		separatorStyle.Render(strings.Repeat("░", barWidth-filled))

	label := c.Label
	if label == "" {
		label = fmt.Sprintf("%d/%d", c.Value, maxValue)
	}
	return fmt.Sprintf("%s\n%s %s", labelStyle.Render(name), bar, label)
}

// renderCountdown shows whole seconds remaining until the end time
func renderCountdown(name string, c *widget.CountdownContent, now time.Time) string {
	remaining := c.EndTime - now.Unix()
	if remaining < 0 {
		remaining = 0
	}
	return fmt.Sprintf("%s %ds", labelStyle.Render(name+":"), remaining)
}

func renderHand(label string, h widget.HandSlot) string {
	item := h.Item
	if h.Empty() {
		item = "Empty"
	}
	return fmt.Sprintf("%s %s", labelStyle.Render(label+":"), item)
}

func renderInjuries(c *widget.InjuryContent) string {
	parts := make([]string, 0, len(c.Levels))
	for part := range c.Levels {
		parts = append(parts, part)
	}
	sort.Strings(parts)

	var b strings.Builder
	b.WriteString(labelStyle.Render("Injuries") + "\n")
	wounded := 0
	for _, part := range parts {
		level := c.Levels[part]
		if level <= widget.InjuryNone || level > widget.InjuryMaxLevel {
			continue
		}
		wounded++
		b.WriteString(fmt.Sprintf("  %s [%s]\n", part, injuryMarks[level]))
	}
	if wounded == 0 {
		b.WriteString("  none\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderEffects(name string, c *widget.EffectsContent) string {
	var b strings.Builder
	b.WriteString(labelStyle.Render(name))
	if len(c.Effects) == 0 {
		b.WriteString("\n  none")
	}
	for _, e := range c.Effects {
		b.WriteString(fmt.Sprintf("\n  %s", e.Text))
		if e.Time != "" {
			b.WriteString(" " + separatorStyle.Render(e.Time))
		}
	}
	return b.String()
}

func renderIndicators(ids []widget.DashboardIndicator) string {
	active := make([]string, 0, len(ids))
	for _, ind := range ids {
		if ind.Active {
			active = append(active, strings.TrimPrefix(ind.ID, "Icon"))
		}
	}
	if len(active) == 0 {
		return labelStyle.Render("Status:") + " -"
	}
	return labelStyle.Render("Status:") + " " + strings.Join(active, ", ")
}

func renderRoom(c *widget.RoomContent, width int) string {
	var b strings.Builder
	if c.Name != "" {
		b.WriteString(titleStyle.Render(c.Name) + "\n")
	}
	for _, text := range []string{c.Description, c.Objects, c.Players, c.Exits} {
		if text != "" {
			b.WriteString(wordwrap.String(text, width) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderSidePanel renders every non-text widget in layout order
func renderSidePanel(reg *widget.Registry, gs *state.GameState, width int, now time.Time) string {
	if width < 10 {
		width = 10
	}
	blocks := make([]string, 0, reg.Len())
	for _, w := range reg.Widgets() {
		switch c := w.Content.(type) {
		case *widget.ProgressContent:
			blocks = append(blocks, renderBar(w.Name, c))
		case *widget.CountdownContent:
			blocks = append(blocks, renderCountdown(w.Name, c, now))
		case *widget.IndicatorContent:
			mark := "off"
			if c.Active {
				mark = "on"
			}
			blocks = append(blocks, fmt.Sprintf("%s %s", labelStyle.Render(w.Name+":"), mark))
		case *widget.CompassContent:
			dirs := strings.Join(c.Directions, " ")
			if dirs == "" {
				dirs = "none"
			}
			blocks = append(blocks, fmt.Sprintf("%s %s", labelStyle.Render("Exits:"), dirs))
		case *widget.HandsContent:
			blocks = append(blocks, strings.Join([]string{
				renderHand("Left", c.Left),
				renderHand("Right", c.Right),
				renderHand("Spell", c.Spell),
			}, "\n"))
		case *widget.HandContent:
			blocks = append(blocks, renderHand(w.Name, c.HandSlot))
		case *widget.InjuryContent:
			blocks = append(blocks, renderInjuries(c))
		case *widget.EffectsContent:
			blocks = append(blocks, renderEffects(w.Name, c))
		case *widget.DashboardContent:
			blocks = append(blocks, renderIndicators(c.Indicators))
		case *widget.RoomContent:
			if room := renderRoom(c, width); room != "" {
				blocks = append(blocks, room)
			}
		case *widget.RosterContent:
			entries := gs.Roster(c.Roster)
			blocks = append(blocks, fmt.Sprintf("%s %d\n%s", labelStyle.Render(w.Name+":"), len(entries), wordwrap.String(strings.Join(entries, ", "), width)))
		}
	}
	return strings.Join(blocks, "\n\n")
}
