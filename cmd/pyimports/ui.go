package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pyimports/internal/scan"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	failureStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	typecheckStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type item struct {
	title, desc string
	failed      bool
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

type model struct {
	list       list.Model
	files      int
	imports    int
	failures   int
	lastUpdate time.Time
}

type updateMsg struct {
	results []scan.Result
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-4)
	case updateMsg:
		m.files = 0
		m.imports = 0
		m.failures = 0
		m.lastUpdate = time.Now()

		items := []list.Item{}
		for _, r := range msg.results {
			m.files++
			if r.Err != nil {
				m.failures++
				items = append(items, item{
					title:  "Parse Failure",
					desc:   fmt.Sprintf("%s: %v", r.Path, r.Err),
					failed: true,
				})
				continue
			}
			m.imports += len(r.Imports)
			for _, imp := range r.Imports {
				if imp.TypecheckingOnly {
					items = append(items, item{
						title: "Type-Checking Import",
						desc:  fmt.Sprintf("%s in %s:%d", imp.ImportedObject, r.Path, imp.LineNumber),
					})
				}
			}
		}
		m.list.SetItems(items)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) View() string {
	status := statusStyle.Render(fmt.Sprintf("Last update: %v | %d files | %d imports",
		m.lastUpdate.Format("15:04:05"), m.files, m.imports))

	var summary string
	if m.failures == 0 {
		summary = successStyle.Render("✅ All files parsed")
	} else {
		summary = fmt.Sprintf("⚠️  %s | %s",
			failureStyle.Render(fmt.Sprintf("%d Failures", m.failures)),
			typecheckStyle.Render(fmt.Sprintf("%d Items", len(m.list.Items()))))
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("Python Import Monitor"), status, summary)
	return docStyle.Render(header + "\n" + m.list.View())
}

func initialModel() model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Type-Checking Imports and Failures"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	return model{list: l}
}

// RunUI blocks running the terminal UI until the user quits.
func (a *App) RunUI() error {
	p := tea.NewProgram(initialModel(), tea.WithAltScreen())

	a.uiMu.Lock()
	a.uiProgram = p
	a.uiMu.Unlock()

	go func() {
		// Push the current state once the program is up.
		time.Sleep(100 * time.Millisecond)
		a.notifyUI()
	}()

	_, err := p.Run()

	a.uiMu.Lock()
	a.uiProgram = nil
	a.uiMu.Unlock()
	return err
}

func (a *App) notifyUI() {
	a.uiMu.Lock()
	p := a.uiProgram
	a.uiMu.Unlock()

	if p != nil {
		p.Send(updateMsg{results: a.Snapshot.All()})
	}
}
