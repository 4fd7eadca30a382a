package sink

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/term"

	"fieldtrack/internal/geo"
	"fieldtrack/internal/tracker"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// fixMsg carries one recorded fix into the view.
type fixMsg struct{ row geo.FixRow }

// statusMsg carries a controller snapshot.
type statusMsg struct{ st tracker.Status }

const tuiFixRows = 12

// TUIWriter renders the live fix stream and controller status in a
// terminal UI.
type TUIWriter struct {
	program teaProgram
	done    chan struct{}
}

// NewTUIWriter starts the UI and a status poller that refreshes the header
// once a second.
func NewTUIWriter(ctrl *tracker.Controller) *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	p := tea.NewProgram(newTUIModel(), tea.WithAltScreen())
	w.program = p

	go func() {
		_, _ = p.Run()
		close(w.done)
	}()
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.Send(statusMsg{st: ctrl.StatusSnapshot()})
			case <-w.done:
				return
			}
		}
	}()
	return w
}

// Write feeds one fix row into the view.
func (w *TUIWriter) Write(row geo.FixRow) error {
	w.program.Send(fixMsg{row: row})
	return nil
}

// Wait blocks until the UI exits.
func (w *TUIWriter) Wait() { <-w.done }

var (
	tuiTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	tuiHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	tuiStateStyle  = lipgloss.NewStyle().Bold(true)
	tuiDegraded    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
)

type tuiModel struct {
	table  table.Model
	status tracker.Status
	width  int
}

func newTUIModel() tuiModel {
	cols := []table.Column{
		{Title: "Time", Width: 12},
		{Title: "Lat", Width: 12},
		{Title: "Lon", Width: 12},
		{Title: "Alt", Width: 8},
		{Title: "Acc", Width: 8},
	}
	t := table.New(table.WithColumns(cols), table.WithHeight(tuiFixRows))
	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}
	return tuiModel{table: t, width: width}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case statusMsg:
		m.status = msg.st
	case fixMsg:
		rows := append([]table.Row{fixTableRow(msg.row)}, m.table.Rows()...)
		if len(rows) > tuiFixRows {
			rows = rows[:tuiFixRows]
		}
		m.table.SetRows(rows)
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m tuiModel) View() string {
	health := m.status.ChannelHealth
	healthStyled := tuiStateStyle.Render(health)
	if health == "degraded" {
		healthStyled = tuiDegraded.Render(health)
	}
	header := fmt.Sprintf("state: %s   channel: %s   fixes: %d   device: %s",
		tuiStateStyle.Render(m.status.State), healthStyled, m.status.FixCount, m.status.DeviceID)
	help := tuiHeaderStyle.Render(wordwrap.String("q: quit", m.width))
	return tuiTitleStyle.Render("fieldtrack") + "\n" + header + "\n\n" + m.table.View() + "\n" + help
}

func fixTableRow(r geo.FixRow) table.Row {
	alt, acc := "-", "-"
	if r.Alt != nil {
		alt = fmt.Sprintf("%.1f", *r.Alt)
	}
	if r.Accuracy != nil {
		acc = fmt.Sprintf("%.1f", *r.Accuracy)
	}
	return table.Row{
		r.Timestamp.Format("15:04:05"),
		fmt.Sprintf("%.5f", r.Lat),
		fmt.Sprintf("%.5f", r.Lon),
		alt,
		acc,
	}
}
