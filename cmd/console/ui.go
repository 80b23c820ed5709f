package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jwebster45206/feed-engine/internal/feed"
	"github.com/jwebster45206/feed-engine/internal/session"
	"github.com/jwebster45206/feed-engine/pkg/state"
	"github.com/jwebster45206/feed-engine/pkg/widget"
)

const refreshInterval = 100 * time.Millisecond

// ConsoleUI is the BubbleTea model that draws a live session.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	session      *session.Session
	source       string
	mainViewport viewport.Model
	tabViewport  viewport.Model
	sideViewport viewport.Model
	tabbed       string // name of the tabbed widget shown under main, if any
	ready        bool
	follow       bool
	width        int
	height       int
	done         bool
	err          error
	stats        feed.Stats
	notice       string

	// Quit confirmation state
	showQuitModal bool
}

type refreshTickMsg struct{}

type feedDoneMsg struct {
	stats feed.Stats
	err   error
}

type feedStatsMsg struct {
	stats feed.Stats
}

var (
	mainPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(2).
			PaddingRight(1)

	sidePanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("205")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(sess *session.Session, source string) ConsoleUI {
	mainVp := viewport.New(50, 20)
	mainVp.MouseWheelEnabled = true

	tabVp := viewport.New(50, 8)
	sideVp := viewport.New(30, 20)

	m := ConsoleUI{
		session:      sess,
		source:       source,
		mainViewport: mainVp,
		tabViewport:  tabVp,
		sideViewport: sideVp,
		follow:       true,
	}
	sess.View(func(reg *widget.Registry, _ *state.GameState) {
		if w, ok := reg.First(widget.OfKind(widget.KindTabbed)); ok {
			m.tabbed = w.Name
		}
	})
	return m
}

func (m ConsoleUI) Init() tea.Cmd {
	return refreshTick()
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		mvCmd tea.Cmd
		tvCmd tea.Cmd
		svCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.mainViewport, mvCmd = m.mainViewport.Update(msg)
		m.follow = m.mainViewport.AtBottom()
		return m, mvCmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.ready = true
		m.writeContent()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.showQuitModal = true
			return m, nil
		case "tab":
			m.nextTab()
			m.writeContent()
			return m, nil
		case "ctrl+y":
			m.copyMain()
			return m, nil
		case "end":
			m.follow = true
			m.mainViewport.GotoBottom()
			return m, nil
		}

	case refreshTickMsg:
		m.writeContent()
		return m, refreshTick()

	case feedStatsMsg:
		m.stats = msg.stats

	case feedDoneMsg:
		m.done = true
		m.stats = msg.stats
		m.err = msg.err
		m.writeContent()
	}

	m.mainViewport, mvCmd = m.mainViewport.Update(msg)
	m.tabViewport, tvCmd = m.tabViewport.Update(msg)
	m.sideViewport, svCmd = m.sideViewport.Update(msg)
	if _, ok := msg.(tea.KeyMsg); ok {
		m.follow = m.mainViewport.AtBottom()
	}

	return m, tea.Batch(mvCmd, tvCmd, svCmd)
}

// layout sizes the viewports: main and tabs on the left, status on the right
func (m *ConsoleUI) layout() {
	mainWidth := int(float64(m.width)*0.7) - 3
	sideWidth := m.width - mainWidth - 5

	tabHeight := 0
	if m.tabbed != "" {
		tabHeight = m.height / 4
	}

	m.mainViewport.Width = mainWidth
	m.mainViewport.Height = m.height - tabHeight - 5
	m.tabViewport.Width = mainWidth
	m.tabViewport.Height = tabHeight
	m.sideViewport.Width = sideWidth
	m.sideViewport.Height = m.height - 2
}

// writeContent copies the current session state into the viewports
func (m *ConsoleUI) writeContent() {
	if !m.ready {
		return
	}
	now := time.Now()
	m.session.View(func(reg *widget.Registry, gs *state.GameState) {
		if w, ok := reg.Get(widget.MainWidget); ok {
			if c, ok := w.Content.(*widget.TextContent); ok {
				m.mainViewport.SetContent(renderBuffer(c.Buffer, m.mainViewport.Width))
			}
		}
		if m.tabbed != "" {
			if w, ok := reg.Get(m.tabbed); ok {
				if c, ok := w.Content.(*widget.TabbedContent); ok && len(c.Tabs) > 0 {
					m.tabViewport.SetContent(renderBuffer(c.Tabs[c.Active].Buffer, m.tabViewport.Width))
					m.tabViewport.GotoBottom()
				}
			}
		}
		m.sideViewport.SetContent(renderSidePanel(reg, gs, m.sideViewport.Width, now))
	})
	if m.follow {
		m.mainViewport.GotoBottom()
	}
}

func (m *ConsoleUI) nextTab() {
	if m.tabbed == "" {
		return
	}
	next := 0
	m.session.View(func(reg *widget.Registry, _ *state.GameState) {
		if w, ok := reg.Get(m.tabbed); ok {
			if c, ok := w.Content.(*widget.TabbedContent); ok && len(c.Tabs) > 0 {
				next = (c.Active + 1) % len(c.Tabs)
			}
		}
	})
	m.session.SelectTab(m.tabbed, next)
}

func (m *ConsoleUI) copyMain() {
	var text string
	m.session.View(func(reg *widget.Registry, _ *state.GameState) {
		if w, ok := reg.Get(widget.MainWidget); ok {
			if c, ok := w.Content.(*widget.TextContent); ok {
				text = c.Buffer.Text()
			}
		}
	})
	if err := clipboard.WriteAll(text); err != nil {
		m.notice = errorStyle.Render("Copy failed: " + err.Error())
		return
	}
	m.notice = "Copied main window"
}

func (m ConsoleUI) statusLine() string {
	var parts []string
	parts = append(parts, m.source)
	parts = append(parts, fmt.Sprintf("%d lines", m.stats.Lines))
	if m.done {
		if m.err != nil {
			parts = append(parts, errorStyle.Render("feed error: "+m.err.Error()))
		} else {
			parts = append(parts, "feed ended")
		}
	}
	if m.notice != "" {
		parts = append(parts, m.notice)
	}
	parts = append(parts, "tab: next tab  ctrl+y: copy  ctrl+c: quit")
	return promptStyle.Render(strings.Join(parts, " | "))
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()

	case feedDoneMsg:
		m.done = true
		m.stats = msg.stats
		m.err = msg.err

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N", "esc":
				m.showQuitModal = false
				return m, refreshTick()
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString("Stop following this feed?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	left := []string{m.mainViewport.View()}
	if m.tabbed != "" {
		var headers string
		m.session.View(func(reg *widget.Registry, _ *state.GameState) {
			if w, ok := reg.Get(m.tabbed); ok {
				if c, ok := w.Content.(*widget.TabbedContent); ok {
					headers = renderTabHeaders(c)
				}
			}
		})
		left = append(left,
			separatorStyle.Render(strings.Repeat("─", m.mainViewport.Width)),
			headers,
			m.tabViewport.View(),
		)
	}
	left = append(left, m.statusLine())

	mainPanel := mainPanelStyle.Width(m.mainViewport.Width + 3).Render(
		lipgloss.JoinVertical(lipgloss.Left, left...),
	)
	sidePanel := sidePanelStyle.Width(m.sideViewport.Width + 2).Render(
		m.sideViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, mainPanel, sidePanel)
}

// refreshTick redraws from the session at a fixed rate
func refreshTick() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}
