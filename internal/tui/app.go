// internal/tui/app.go
//
// Interactive browser for scan results. It uses bubbletea, which follows The
// Elm Architecture: input arrives as a message, Update returns the new model,
// and View renders it.

package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/looksee/internal/logbook"
	"github.com/kingrea/looksee/internal/report"
	"github.com/kingrea/looksee/scanner"
)

type appState int

const (
	stateObjects     appState = iota // discovered objects
	stateDiagnostics                 // diagnostics recorded during the scan
)

const logPanelLines = 6

// objectItem implements list.Item for a discovered object.
type objectItem struct {
	item report.Item
}

func (i objectItem) Title() string { return i.item.Name }
func (i objectItem) Description() string {
	return fmt.Sprintf("%s · %s", i.item.Kind, i.item.Module)
}
func (i objectItem) FilterValue() string { return i.item.Name }

// diagnosticItem implements list.Item for a scan diagnostic.
type diagnosticItem struct {
	diag scanner.Diagnostic
}

func (d diagnosticItem) Title() string {
	return fmt.Sprintf("%s %s", strings.ToUpper(string(d.diag.Severity)), d.diag.Code)
}
func (d diagnosticItem) Description() string { return d.diag.Message }
func (d diagnosticItem) FilterValue() string { return d.diag.Message }

// AppOption customizes App construction.
type AppOption func(*App)

// WithLogbook shows the tail of the scan journal under the detail panel.
func WithLogbook(lb *logbook.Logbook) AppOption {
	return func(a *App) {
		a.logbook = lb
	}
}

// App is the bubbletea model for browsing a report.Result.
type App struct {
	state   appState
	result  report.Result
	logbook *logbook.Logbook

	objects     list.Model
	diagnostics list.Model

	width  int
	height int
}

// NewApp builds the browser for res.
func NewApp(res report.Result, opts ...AppOption) *App {
	objectItems := make([]list.Item, len(res.Items))
	for i, item := range res.Items {
		objectItems[i] = objectItem{item: item}
	}
	diagItems := make([]list.Item, len(res.Diagnostics))
	for i, d := range res.Diagnostics {
		diagItems[i] = diagnosticItem{diag: d}
	}

	objects := list.New(objectItems, list.NewDefaultDelegate(), 0, 0)
	objects.Title = fmt.Sprintf("⬡ %s", res.Target)
	objects.SetShowStatusBar(true)
	diagnostics := list.New(diagItems, list.NewDefaultDelegate(), 0, 0)
	diagnostics.Title = "Diagnostics"
	diagnostics.SetShowStatusBar(false)
	diagnostics.SetFilteringEnabled(false)

	app := &App{
		state:       stateObjects,
		result:      res,
		objects:     objects,
		diagnostics: diagnostics,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	return app
}

// Run starts the program and blocks until the user quits.
func Run(res report.Result, opts ...AppOption) error {
	_, err := tea.NewProgram(NewApp(res, opts...), tea.WithAltScreen()).Run()
	return err
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return nil
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		listWidth := a.leftWidth()
		a.objects.SetSize(listWidth, max(0, msg.Height-4))
		a.diagnostics.SetSize(listWidth, max(0, msg.Height-4))
		return a, nil

	case tea.KeyMsg:
		if a.active().FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return a, tea.Quit
		case "tab":
			if a.state == stateObjects {
				a.state = stateDiagnostics
			} else {
				a.state = stateObjects
			}
			return a, nil
		}
	}

	var cmd tea.Cmd
	if a.state == stateObjects {
		a.objects, cmd = a.objects.Update(msg)
	} else {
		a.diagnostics, cmd = a.diagnostics.Update(msg)
	}
	return a, cmd
}

// View renders the current state to a string.
func (a *App) View() string {
	left := a.active().View()
	right := a.renderDetail()
	if log := a.renderLogPanel(); log != "" {
		right = lipgloss.JoinVertical(lipgloss.Left, right, "", log)
	}
	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666666")).
		Render("tab: objects/diagnostics · /: filter · q: quit")
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
	return lipgloss.JoinVertical(lipgloss.Left, body, footer)
}

func (a *App) active() *list.Model {
	if a.state == stateDiagnostics {
		return &a.diagnostics
	}
	return &a.objects
}

func (a *App) leftWidth() int {
	width := a.width
	if width <= 0 {
		width = 100
	}
	return max(20, width*3/5)
}

func (a *App) rightWidth() int {
	width := a.width
	if width <= 0 {
		width = 100
	}
	return max(20, width-a.leftWidth()-4)
}

func (a *App) renderDetail() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF"))
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Width(a.rightWidth())

	var lines []string
	switch selected := a.active().SelectedItem().(type) {
	case objectItem:
		item := selected.item
		lines = append(lines,
			title.Render(item.Name),
			muted.Render("module ")+item.Module,
			muted.Render("kind   ")+item.Kind,
		)
		if item.Type != "" {
			lines = append(lines, muted.Render("type   ")+item.Type)
		}
		if item.Value != "" {
			lines = append(lines, "", item.Value)
		}
	case diagnosticItem:
		d := selected.diag
		lines = append(lines,
			title.Render(d.Code),
			muted.Render("severity ")+string(d.Severity),
		)
		if d.Path != "" {
			lines = append(lines, muted.Render("path     ")+d.Path)
		}
		if d.Object != "" {
			lines = append(lines, muted.Render("object   ")+d.Object)
		}
		lines = append(lines, "", d.Message)
	default:
		lines = append(lines, muted.Render("Nothing selected."))
	}
	return box.Render(strings.Join(lines, "\n"))
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines, _ := a.logbook.Tail(logPanelLines)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("LOG · %s", fileName))
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Width(a.rightWidth()).
		Render(fmt.Sprintf("%s\n%s", head, body))
}
