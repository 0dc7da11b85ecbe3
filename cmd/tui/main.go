package main

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/caixa/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/caixa/internal/config"
	"github.com/MrJamesThe3rd/caixa/internal/importer"
	"github.com/MrJamesThe3rd/caixa/internal/prompt"
	"github.com/MrJamesThe3rd/caixa/internal/session"
	"github.com/MrJamesThe3rd/caixa/internal/settlement"
	"github.com/MrJamesThe3rd/caixa/internal/till"
	"github.com/MrJamesThe3rd/caixa/internal/tillapi"
)

type model struct {
	deps     view.Deps
	importer *importer.Service

	currentView View
	size        tea.WindowSizeMsg

	pickerView     view.PickerModel
	tillView       view.TillModel
	settlementView view.SettlementModel
	importView     view.ImportModel
}

type View int

const (
	ViewPicker     View = 0
	ViewTill       View = 1
	ViewSettlement View = 2
	ViewImport     View = 3
)

func initialModel() (model, func()) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to bubbletea, so logs go to a file.
	logFile, err := os.OpenFile(cfg.Terminal.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(logFile, nil))
	slog.SetDefault(logger)

	sess := session.New(cfg.Terminal.SessionTTL, session.WithStore(session.NewFileStore(cfg.Terminal.SessionFile)))
	if err := sess.Restore(); err != nil {
		logger.Warn("failed to restore operator session", "error", err)
	}

	renderer, err := settlement.NewRenderer(cfg.Terminal.PrintDir)
	if err != nil {
		logger.Error("failed to load print templates", "error", err)
		os.Exit(1)
	}

	client := tillapi.NewClient(cfg.Terminal.APIURL, cfg.Terminal.APIToken, cfg.Terminal.APITimeout)
	capture := prompt.NewCapture()

	deps := view.Deps{
		Backend:    client,
		Uploader:   client,
		Controller: till.NewController(client, sess, capture, logger),
		Session:    sess,
		Capture:    capture,
		Renderer:   renderer,
		Logger:     logger,
	}

	m := model{
		deps:        deps,
		importer:    importer.NewService(),
		currentView: ViewPicker,
		pickerView:  view.NewPickerModel(deps),
	}

	return m, func() { logFile.Close() }
}

func (m model) Init() tea.Cmd {
	return m.pickerView.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.size = msg
	case view.EnteredTillMsg:
		m.currentView = ViewTill
		m.tillView = view.NewTillModel(m.deps)

		return m, tea.Batch(m.tillView.Init(), m.resize)
	case view.SettlementMsg:
		m.currentView = ViewSettlement
		m.settlementView = view.NewSettlementModel(m.deps)

		return m, m.settlementView.Init()
	case view.ImportMsg:
		m.currentView = ViewImport
		m.importView = view.NewImportModel(m.deps.Uploader, m.importer)

		return m, m.importView.Init()
	case view.BackMsg:
		m.currentView = ViewPicker
		m.pickerView = view.NewPickerModel(m.deps)

		return m, tea.Batch(m.pickerView.Init(), m.resize)
	}

	switch m.currentView {
	case ViewPicker:
		var newModel tea.Model
		newModel, cmd = m.pickerView.Update(msg)
		m.pickerView = newModel.(view.PickerModel)
	case ViewTill:
		var newModel tea.Model
		newModel, cmd = m.tillView.Update(msg)
		m.tillView = newModel.(view.TillModel)
	case ViewSettlement:
		var newModel tea.Model
		newModel, cmd = m.settlementView.Update(msg)
		m.settlementView = newModel.(view.SettlementModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	}

	return m, cmd
}

// resize replays the last window size to a freshly built screen.
func (m model) resize() tea.Msg {
	if m.size.Width == 0 {
		return nil
	}

	return m.size
}

func (m model) View() string {
	var current view.View

	switch m.currentView {
	case ViewPicker:
		current = m.pickerView
	case ViewTill:
		current = m.tillView
	case ViewSettlement:
		current = m.settlementView
	case ViewImport:
		current = m.importView
	default:
		return "Unknown View"
	}

	header := lipgloss.NewStyle().Bold(true).Padding(0, 1).Render("Caixa · " + current.Title())

	return lipgloss.JoinVertical(lipgloss.Left, header, current.View())
}

func main() {
	m, cleanup := initialModel()
	defer cleanup()

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		cleanup()
		os.Exit(1)
	}
}
