package view

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/caixa/internal/catalog"
	"github.com/MrJamesThe3rd/caixa/internal/importer"
	"github.com/MrJamesThe3rd/caixa/internal/money"
	"github.com/MrJamesThe3rd/caixa/internal/till"
)

const uploadTimeout = 2 * time.Minute

type importStage int

const (
	stagePick importStage = iota
	stagePreview
	stageUploading
	stageDone
)

// ImportModel checks a legacy catalog export locally, shows what it holds and
// sends it to the till server once confirmed.
type ImportModel struct {
	CommonModel
	uploader CatalogUploader
	parser   *importer.Service

	stage   importStage
	picker  filepicker.Model
	preview table.Model

	path     string
	raw      []byte
	listings []catalog.Listing

	status    string
	statusErr bool
}

func NewImportModel(uploader CatalogUploader, parser *importer.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.Height = 15

	preview := newTable([]table.Column{
		{Title: "Cód", Width: 8},
		{Title: "Produto", Width: 28},
		{Title: "Preço", Width: 12},
		{Title: "Grupo", Width: 16},
		{Title: "Ativo", Width: 5},
	}, true)

	return ImportModel{
		uploader: uploader,
		parser:   parser,
		picker:   fp,
		preview:  preview,
	}
}

func (m ImportModel) Title() string { return "Importar catálogo" }

func (m ImportModel) ShortHelp() string {
	switch m.stage {
	case stagePreview:
		return "Enter: enviar | Esc: escolher outro arquivo"
	case stageDone:
		return "Esc: voltar"
	}

	return "Enter: selecionar | Esc: voltar"
}

func (m ImportModel) Init() tea.Cmd {
	return m.picker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case previewMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Arquivo inválido: %v", msg.err)
			m.statusErr = true

			return m, nil
		}

		m.stage = stagePreview
		m.path = msg.path
		m.raw = msg.raw
		m.listings = msg.listings
		m.preview.SetRows(previewRows(msg.listings))
		m.preview.SetCursor(0)
		m.status = fmt.Sprintf("%d produtos em %s.", len(msg.listings), filepath.Base(msg.path))
		m.statusErr = false

		return m, nil

	case uploadResultMsg:
		m.stage = stageDone

		if msg.err != nil {
			m.status = "Falha no envio: " + till.Message(msg.err)
			m.statusErr = true

			return m, nil
		}

		m.status = fmt.Sprintf("%d produtos importados.", msg.count)
		m.statusErr = false

		return m, nil

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.preview.SetHeight(max(5, msg.Height-12))

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m.back()
		case "enter":
			if m.stage == stagePreview {
				m.stage = stageUploading
				m.status = "Enviando..."
				m.statusErr = false

				return m, m.uploadCmd()
			}
		}

		if m.stage == stagePreview {
			var cmd tea.Cmd
			m.preview, cmd = m.preview.Update(msg)

			return m, cmd
		}
	}

	if m.stage != stagePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.status = "Lendo " + filepath.Base(path) + "..."
		m.statusErr = false

		return m, m.previewCmd(path)
	}

	return m, cmd
}

func (m ImportModel) back() (tea.Model, tea.Cmd) {
	switch m.stage {
	case stageUploading:
		return m, nil
	case stagePreview:
		m.stage = stagePick
		m.raw, m.listings = nil, nil
		m.status = ""

		return m, nil
	}

	return m, Back
}

func (m ImportModel) View() string {
	var body string

	switch m.stage {
	case stagePick:
		body = fmt.Sprintf("Arquivo do catálogo (%s):\n\n%s", importer.FormatLegacy, m.picker.View())
	case stagePreview:
		body = borderStyle.Render(m.preview.View())
	case stageUploading, stageDone:
		body = titleStyle.Render(filepath.Base(m.path))
	}

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left,
		body,
		statusLine(m.status, m.statusErr),
		faintStyle.Render(m.ShortHelp()),
	))
}

func previewRows(listings []catalog.Listing) []table.Row {
	rows := make([]table.Row, 0, len(listings))

	for _, l := range listings {
		active := "S"
		if !l.Active {
			active = "N"
		}

		rows = append(rows, table.Row{l.Code, l.Name, money.Format(l.Price), l.Category, active})
	}

	return rows
}

// Messages

type previewMsg struct {
	path     string
	raw      []byte
	listings []catalog.Listing
	err      error
}

type uploadResultMsg struct {
	count int
	err   error
}

// previewCmd reads the whole file once so the bytes checked here are the
// bytes that get uploaded.
func (m ImportModel) previewCmd(path string) tea.Cmd {
	parser := m.parser

	return func() tea.Msg {
		raw, err := os.ReadFile(path)
		if err != nil {
			return previewMsg{err: err}
		}

		listings, err := parser.Import(importer.FormatLegacy, bytes.NewReader(raw))
		if err != nil {
			return previewMsg{err: err}
		}

		return previewMsg{path: path, raw: raw, listings: listings}
	}
}

func (m ImportModel) uploadCmd() tea.Cmd {
	uploader := m.uploader
	name := filepath.Base(m.path)
	raw := m.raw

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
		defer cancel()

		n, err := uploader.ImportCatalog(ctx, string(importer.FormatLegacy), name, bytes.NewReader(raw))

		return uploadResultMsg{count: n, err: err}
	}
}
