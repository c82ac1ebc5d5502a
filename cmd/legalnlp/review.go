package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/phosphorco/legalnlp/internal/legal/pipeline"
	"github.com/phosphorco/legalnlp/internal/lnlp/document"
	"github.com/phosphorco/legalnlp/internal/lnlp/snapshot"
)

// runReview drives the `review` subcommand: a live-updating snapshot view
// for one document, refreshed whenever the underlying file changes. Piped
// output (a non-TTY stdout) skips the TUI entirely and prints one rendered
// view, since bubbletea's alternate-screen rendering has nothing useful to
// do for a file redirect or a pipeline consumer.
func runReview(cmd *cobra.Command, args []string) error {
	path := args[0]

	if !isatty.IsTerminal(os.Stdout.Fd()) {
		snap, err := analyzeFilePath(path)
		if err != nil {
			return err
		}
		return printSnapshot(snap, false, "semantic")
	}

	viewMode := "semantic"
	viewSelect := huh.NewSelect[string]().
		Title("Initial view").
		Options(
			huh.NewOption("Semantic (grouped by category)", "semantic"),
			huh.NewOption("Annotated (underlined source)", "annotated"),
			huh.NewOption("Graph (association edges)", "graph"),
		).
		Value(&viewMode)
	if err := huh.NewForm(huh.NewGroup(viewSelect)).Run(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(path); err != nil {
		return err
	}

	m := newReviewModel(path, viewMode, watcher)
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func analyzeFilePath(path string) (*snapshot.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := document.FromText(string(data))
	if err != nil {
		return nil, err
	}
	return analyze(doc)
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	footerStyle = lipgloss.NewStyle().Faint(true)
)

type fileChangedMsg struct{}
type watchErrMsg struct{ err error }
type snapshotMsg struct {
	snap *snapshot.Snapshot
	err  error
}

type reviewModel struct {
	path     string
	viewMode string
	watcher  *fsnotify.Watcher

	content string
	loadErr error

	viewport viewport.Model
	ready    bool
}

func newReviewModel(path, viewMode string, watcher *fsnotify.Watcher) reviewModel {
	return reviewModel{path: path, viewMode: viewMode, watcher: watcher}
}

func (m reviewModel) Init() tea.Cmd {
	return tea.Batch(m.load(), m.watch())
}

func (m reviewModel) load() tea.Cmd {
	return func() tea.Msg {
		snap, err := analyzeFilePath(m.path)
		return snapshotMsg{snap: snap, err: err}
	}
}

func (m reviewModel) watch() tea.Cmd {
	return func() tea.Msg {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				return fileChangedMsg{}
			}
			return nil
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return nil
			}
			return watchErrMsg{err: err}
		}
	}
}

func (m reviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		headerHeight := 2
		footerHeight := 2
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		m.viewport.SetContent(m.content)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.viewMode = nextReviewView(m.viewMode)
			return m, m.load()
		case "r":
			return m, m.load()
		}

	case snapshotMsg:
		if msg.err != nil {
			m.loadErr = msg.err
		} else {
			m.loadErr = nil
			m.content = renderReviewSnapshot(msg.snap, m.viewMode)
			if m.ready {
				m.viewport.SetContent(m.content)
			}
		}
		return m, nil

	case fileChangedMsg:
		return m, m.load()

	case watchErrMsg:
		m.loadErr = msg.err
		return m, m.watch()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m reviewModel) View() string {
	header := headerStyle.Render(fmt.Sprintf("legalnlp review — %s [%s]", m.path, m.viewMode))
	footer := footerStyle.Render("tab: cycle view · r: reload · q: quit")
	if m.loadErr != nil {
		return header + "\n" + errorStyle.Render(m.loadErr.Error()) + "\n" + footer
	}
	if !m.ready {
		return header + "\nloading...\n" + footer
	}
	return header + "\n" + m.viewport.View() + "\n" + footer
}

func nextReviewView(v string) string {
	switch v {
	case "semantic":
		return "annotated"
	case "annotated":
		return "graph"
	default:
		return "semantic"
	}
}

func renderReviewSnapshot(snap *snapshot.Snapshot, view string) string {
	reg := pipeline.SnapshotRegistry()
	rcfg := snapshot.DefaultRenderConfig()
	switch view {
	case "annotated":
		return snapshot.AnnotatedView(snap, rcfg)
	case "graph":
		return snapshot.GraphView(snap, reg, rcfg)
	default:
		return snapshot.SemanticView(snap, reg, rcfg)
	}
}
