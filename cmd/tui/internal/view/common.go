package view

import (
	"context"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/caixa/internal/prompt"
	"github.com/MrJamesThe3rd/caixa/internal/session"
	"github.com/MrJamesThe3rd/caixa/internal/settlement"
	"github.com/MrJamesThe3rd/caixa/internal/till"
)

type CommonModel struct {
	Width  int
	Height int
}

// CatalogUploader sends a catalog export to the till server.
type CatalogUploader interface {
	ImportCatalog(ctx context.Context, format, filename string, r io.Reader) (int, error)
}

// Deps are shared by every screen. The controller and capture are the single
// source of truth for which keys a screen may act on.
type Deps struct {
	Backend    till.Backend
	Uploader   CatalogUploader
	Controller *till.Controller
	Session    *session.Session
	Capture    *prompt.Capture
	Renderer   *settlement.Renderer
	Logger     *slog.Logger
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// EnteredTillMsg reports that the controller is on an active till.
type EnteredTillMsg struct{}

// SettlementMsg reports that the till was closed and its settlement is showing.
type SettlementMsg struct{}

// ImportMsg asks for the catalog import screen.
type ImportMsg struct{}

type callResultMsg struct {
	result till.Result
}

// runCall performs a prepared controller call off the UI goroutine.
func runCall(call till.Call) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := APICtx()
		defer cancel()

		return callResultMsg{result: call(ctx)}
	}
}
