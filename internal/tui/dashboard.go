// Package tui draws the live dashboard shown while the site is served and
// watched. It follows the bubbletea model: messages in, state updated, view
// rendered from state.
package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/sigillum/internal/logbook"
	"github.com/kingrea/sigillum/internal/site"
)

const logLines = 8

// RebuildStartedMsg tells the dashboard a post is being regenerated.
type RebuildStartedMsg struct {
	Path string
}

// BuildMsg carries the report of a finished build or rebuild.
type BuildMsg struct {
	Report site.Report
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B")).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD75F"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD75F"))
	infoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444444")).Padding(0, 1)
)

// Dashboard is the bubbletea model of the preview session.
type Dashboard struct {
	url     string
	book    *logbook.Logbook
	spinner spinner.Model

	building string
	builds   int
	last     site.Report
	hasLast  bool
	width    int
}

// NewDashboard creates a dashboard for a site served at url.
func NewDashboard(url string, book *logbook.Logbook) *Dashboard {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF"))),
	)
	return &Dashboard{url: url, book: book, spinner: s}
}

// Init implements tea.Model.
func (d *Dashboard) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (d *Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return d, tea.Quit
		}
	case tea.WindowSizeMsg:
		d.width = msg.Width
	case RebuildStartedMsg:
		start := d.building == ""
		d.building = msg.Path
		if start {
			return d, d.spinner.Tick
		}
	case BuildMsg:
		d.building = ""
		d.builds++
		d.last = msg.Report
		d.hasLast = true
	case spinner.TickMsg:
		if d.building == "" {
			return d, nil
		}
		var cmd tea.Cmd
		d.spinner, cmd = d.spinner.Update(msg)
		return d, cmd
	}
	return d, nil
}

// View implements tea.Model.
func (d *Dashboard) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("serving"), d.url)
	fmt.Fprintf(&b, "%s %d\n", labelStyle.Render("builds "), d.builds)
	if d.hasLast {
		b.WriteString(labelStyle.Render("last   ") + " " + d.renderReport() + "\n")
	}
	if d.building != "" {
		fmt.Fprintf(&b, "%s rebuilding %s\n", d.spinner.View(), filepath.Base(d.building))
	}

	sections := []string{headerStyle.Render("✦ SIGILLUM"), b.String()}
	if panel := d.renderLogPanel(); panel != "" {
		sections = append(sections, panel)
	}
	sections = append(sections, labelStyle.Render("q to quit"))
	return strings.Join(sections, "\n")
}

func (d *Dashboard) renderReport() string {
	r := d.last
	kind := "build"
	if r.Partial {
		kind = "rebuild"
	}
	summary := fmt.Sprintf("%s: %d posts in %s", kind, r.Posts, r.Duration.Round(time.Millisecond))
	if r.OK() {
		return okStyle.Render(summary)
	}
	return failStyle.Render(fmt.Sprintf("%s, %d failed", summary, len(r.Failed)))
}

func (d *Dashboard) renderLogPanel() string {
	if d.book == nil {
		return ""
	}
	entries := d.book.Entries(logLines)
	if len(entries) == 0 {
		return ""
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		line := fmt.Sprintf("%s %-5s %s", e.Time.Local().Format("15:04:05"), e.Level, e.Message)
		lines = append(lines, entryStyle(e.Level).Render(line))
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("LOG · %s", filepath.Base(d.book.Path())))
	body := strings.Join(lines, "\n")
	style := boxStyle
	if d.width > 0 {
		style = style.Width(max(20, d.width-2))
	}
	return style.Render(head + "\n" + body)
}

func entryStyle(level logbook.Level) lipgloss.Style {
	switch level {
	case logbook.LevelError:
		return failStyle
	case logbook.LevelWarn:
		return warnStyle
	default:
		return infoStyle
	}
}
