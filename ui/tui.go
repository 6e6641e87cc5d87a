package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Aman-CERP/ragkit/pipeline"
)

// TUIRenderer shows a spinner and a progress bar that track the
// current ingestion phase.
type TUIRenderer struct {
	mu      sync.Mutex
	program *tea.Program
	model   *ingestModel
	started bool
	done    chan struct{}
}

// NewTUIRenderer creates a bubbletea-backed renderer. It fails if the
// configured output is not a terminal.
func NewTUIRenderer(cfg Config) (*TUIRenderer, error) {
	if !IsTTY(cfg.Output) {
		return nil, fmt.Errorf("output is not a TTY")
	}

	styles := GetStyles(cfg.NoColor || DetectNoColor())
	return &TUIRenderer{
		model: newIngestModel(styles),
		done:  make(chan struct{}),
	}, nil
}

func (r *TUIRenderer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return nil
	}

	var opts []tea.ProgramOption
	opts = append(opts, tea.WithoutSignalHandler())
	r.program = tea.NewProgram(r.model, opts...)
	r.started = true

	go func() {
		defer close(r.done)
		_, _ = r.program.Run()
	}()

	return nil
}

func (r *TUIRenderer) UpdateProgress(event pipeline.IngestionProgress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.program != nil {
		r.program.Send(progressMsg(event))
	}
}

func (r *TUIRenderer) AddError(event ErrorEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.program != nil {
		r.program.Send(errorMsg(event))
	}
}

func (r *TUIRenderer) Complete(stats CompletionStats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.program != nil {
		r.program.Send(completeMsg(stats))
	}
}

func (r *TUIRenderer) Stop() error {
	r.mu.Lock()
	program := r.program
	r.mu.Unlock()

	if program != nil {
		program.Quit()
		<-r.done
	}
	return nil
}

type progressMsg pipeline.IngestionProgress
type errorMsg ErrorEvent
type completeMsg CompletionStats

type ingestModel struct {
	styles   Styles
	spinner  spinner.Model
	progress progress.Model
	phase    pipeline.IngestionPhase
	current  int
	total    int
	errors   []ErrorEvent
	stats    CompletionStats
	done     bool
}

func newIngestModel(styles Styles) *ingestModel {
	s := spinner.New()
	s.Spinner = spinner.Dot

	p := progress.New(progress.WithDefaultGradient())

	return &ingestModel{styles: styles, spinner: s, progress: p}
}

func (m *ingestModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *ingestModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		m.phase = msg.Phase
		m.current = msg.Current
		m.total = msg.Total
		return m, nil
	case errorMsg:
		m.errors = append(m.errors, ErrorEvent(msg))
		return m, nil
	case completeMsg:
		m.stats = CompletionStats(msg)
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *ingestModel) View() string {
	var b strings.Builder

	if m.done {
		b.WriteString(m.styles.Success.Render(fmt.Sprintf(
			"Complete: %d documents, %d chunks", m.stats.Documents, m.stats.Chunks)))
		if m.stats.Errors > 0 {
			b.WriteString(m.styles.Error.Render(fmt.Sprintf(" (%d errors)", m.stats.Errors)))
		}
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(m.styles.Active.Render(string(m.phase)))

	if m.total > 0 {
		frac := float64(m.current) / float64(m.total)
		b.WriteString(" ")
		b.WriteString(m.progress.ViewAs(frac))
		b.WriteString(fmt.Sprintf(" %d/%d", m.current, m.total))
	}
	b.WriteString("\n")

	for _, e := range m.errors {
		b.WriteString(m.styles.Error.Render(fmt.Sprintf("error: %s: %v", e.DocumentID, e.Err)))
		b.WriteString("\n")
	}

	return b.String()
}
