package tui

import (
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vvka-141/cimflat/pkg/cimflat"
)

// Progress reports pipeline stages while a conversion runs.
type Progress interface {
	Stage(name string)
	Done(err error)
}

// NewProgress returns a spinner on out when interactive, otherwise a
// reporter that logs stages through logger.Verbose.
func NewProgress(out io.Writer, interactive bool, logger cimflat.Logger) Progress {
	if !interactive {
		return &logProgress{logger: logger}
	}
	return startSpinner(out)
}

type logProgress struct {
	logger cimflat.Logger
}

func (p *logProgress) Stage(name string) {
	if p.logger != nil {
		p.logger.Verbose("stage: %s", name)
	}
}

func (p *logProgress) Done(error) {}

// stageMsg switches the spinner label.
type stageMsg string

// doneMsg stops the spinner.
type doneMsg struct{ err error }

// progressModel is the bubbletea model behind the spinner.
type progressModel struct {
	spinner spinner.Model
	stage   string
	done    bool
	err     error
}

func newProgressModel() progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle
	return progressModel{spinner: s, stage: "starting"}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stageMsg:
		m.stage = string(msg)
		return m, nil
	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.done {
		if m.err != nil {
			return ErrorStyle.Render(SymbolCross+" "+m.stage) + "\n"
		}
		return SuccessStyle.Render(SymbolCheck+" done") + "\n"
	}
	return m.spinner.View() + " " + MutedStyle.Render(m.stage) + "\n"
}

type spinnerProgress struct {
	program  *tea.Program
	finished chan struct{}
	once     sync.Once
}

func startSpinner(out io.Writer) *spinnerProgress {
	p := &spinnerProgress{
		program:  tea.NewProgram(newProgressModel(), tea.WithOutput(out), tea.WithInput(nil)),
		finished: make(chan struct{}),
	}
	go func() {
		defer close(p.finished)
		_, _ = p.program.Run()
	}()
	return p
}

func (p *spinnerProgress) Stage(name string) {
	p.program.Send(stageMsg(name))
}

// Done stops the spinner and waits until the terminal is restored.
func (p *spinnerProgress) Done(err error) {
	p.once.Do(func() {
		p.program.Send(doneMsg{err: err})
		<-p.finished
	})
}
