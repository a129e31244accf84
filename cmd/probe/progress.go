package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"cipherprobe/internal/cipher"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// BUILD PROGRESS
// =============================================================================

type queryMsg cipher.QueryEvent

type progressDoneMsg struct{}

var (
	progressTitleStyle = lipgloss.NewStyle().Bold(true)
	progressFailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935"))
)

// progressModel is a bubbletea model showing one build.
type progressModel struct {
	title  string
	bar    progress.Model
	done   int
	total  int
	failed int
	last   string
}

func newProgressModel(title string) progressModel {
	return progressModel{
		title: title,
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(50)),
	}
}

func (m progressModel) Init() tea.Cmd {
	return nil
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case queryMsg:
		m.done = msg.Index
		m.total = msg.Total
		if msg.Err != nil {
			m.failed++
			m.last = fmt.Sprintf("%q failed: %v", string(msg.Char), msg.Err)
		} else {
			m.last = fmt.Sprintf("%q ok", string(msg.Char))
		}
		return m, nil
	case progressDoneMsg:
		return m, tea.Quit
	}
	return m, nil
}

func (m progressModel) percent() float64 {
	if m.total == 0 {
		return 0
	}
	return float64(m.done) / float64(m.total)
}

func (m progressModel) View() string {
	var b strings.Builder
	b.WriteString(progressTitleStyle.Render(m.title) + "\n")
	b.WriteString(m.bar.ViewAs(m.percent()))
	fmt.Fprintf(&b, " %d/%d", m.done, m.total)
	if m.failed > 0 {
		b.WriteString(" " + progressFailStyle.Render(fmt.Sprintf("(%d failed)", m.failed)))
	}
	if m.last != "" {
		b.WriteString("\n" + m.last)
	}
	return b.String() + "\n"
}

// barProgress drives a bubbletea program on stderr. It implements
// cipher.Observer.
type barProgress struct {
	program *tea.Program
	done    chan struct{}
}

func startProgress(title string) *barProgress {
	p := &barProgress{
		program: tea.NewProgram(newProgressModel(title), tea.WithOutput(os.Stderr), tea.WithInput(nil)),
		done:    make(chan struct{}),
	}
	go func() {
		defer close(p.done)
		if _, err := p.program.Run(); err != nil {
			logger.Sugar().Debugf("progress view stopped: %v", err)
		}
	}()
	return p
}

func (p *barProgress) OnQuery(ev cipher.QueryEvent) {
	p.program.Send(queryMsg(ev))
}

// Stop ends the program and waits for it to restore the terminal.
func (p *barProgress) Stop() {
	p.program.Send(progressDoneMsg{})
	<-p.done
}

// lineProgress prints a line every ten queries and on every failure.
type lineProgress struct {
	w io.Writer
}

func (l *lineProgress) OnQuery(ev cipher.QueryEvent) {
	if ev.Err != nil {
		fmt.Fprintf(l.w, "    ERROR: %s query for %q failed: %v\n", ev.Phase, string(ev.Char), ev.Err)
	}
	if ev.Index%10 == 0 || ev.Index == ev.Total {
		fmt.Fprintf(l.w, "  Processed %d/%d characters...\n", ev.Index, ev.Total)
	}
}
