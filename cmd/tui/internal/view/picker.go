package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/caixa/internal/till"
)

type terminalItem struct {
	terminal till.Terminal
}

func (i terminalItem) Title() string { return i.terminal.Name }

func (i terminalItem) Description() string {
	if i.terminal.Status == till.StatusOpen {
		return okStyle.Render(string(i.terminal.Status))
	}

	return faintStyle.Render(string(i.terminal.Status))
}

func (i terminalItem) FilterValue() string { return i.terminal.Name }

// PickerModel lists the terminals and enters the chosen one.
type PickerModel struct {
	CommonModel
	deps Deps

	list    list.Model
	prompt  PromptModel
	loading bool
	err     error
}

func NewPickerModel(deps Deps) PickerModel {
	l := list.New(nil, list.NewDefaultDelegate(), 40, 14)
	l.Title = "Selecione o PDV"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return PickerModel{
		deps:    deps,
		list:    l,
		prompt:  NewPromptModel(deps.Controller),
		loading: true,
	}
}

func (m PickerModel) Title() string { return "Terminais" }

func (m PickerModel) ShortHelp() string {
	if m.prompt.Active() {
		return "Enter: confirmar | Esc: cancelar"
	}

	return "Enter: abrir | r: atualizar | i: importar catálogo | q: sair"
}

func (m PickerModel) Init() tea.Cmd {
	return m.loadTerminalsCmd()
}

func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadTerminalsMsg:
		m.loading = false
		m.err = msg.err

		if msg.err != nil {
			return m, nil
		}

		items := make([]list.Item, len(msg.terminals))
		for i, t := range msg.terminals {
			items[i] = terminalItem{terminal: t}
		}

		return m, m.list.SetItems(items)

	case callResultMsg:
		out, err := m.deps.Controller.Apply(msg.result)
		if err != nil || out.Action != till.ActionOpenTill {
			return m, nil
		}

		return m, func() tea.Msg { return EnteredTillMsg{} }

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.list.SetSize(msg.Width/2, msg.Height-6)

		return m, nil

	case tea.KeyMsg:
		if m.prompt.Active() {
			return m, m.prompt.HandleKey(msg.String())
		}

		return m.updateBrowse(msg)
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)

	return m, cmd
}

func (m PickerModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "r":
		m.loading = true
		return m, m.loadTerminalsCmd()
	case "i":
		return m, func() tea.Msg { return ImportMsg{} }
	case "enter":
		item, ok := m.list.SelectedItem().(terminalItem)
		if !ok {
			return m, nil
		}

		seq, err := m.deps.Controller.Select(item.terminal)
		if err != nil {
			m.err = err
			return m, nil
		}

		if seq == nil {
			return m, func() tea.Msg { return EnteredTillMsg{} }
		}

		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m PickerModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Carregando terminais...")
	}

	content := m.list.View()

	if m.err != nil {
		content += "\n" + errorStyle.Render(fmt.Sprintf("Erro: %v", m.err))
	}

	if op := m.deps.Session.OperatorID(); op != "" {
		content += "\n" + faintStyle.Render("Operador: "+op)
	}

	if m.prompt.Active() {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, m.prompt.View())
	}

	return lipgloss.NewStyle().Padding(1).Render(content + "\n\n" + faintStyle.Render(m.ShortHelp()))
}

// Messages

type loadTerminalsMsg struct {
	terminals []till.Terminal
	err       error
}

func (m PickerModel) loadTerminalsCmd() tea.Cmd {
	backend := m.deps.Backend

	return func() tea.Msg {
		ctx, cancel := APICtx()
		defer cancel()

		terminals, err := backend.ListTerminals(ctx)

		return loadTerminalsMsg{terminals: terminals, err: err}
	}
}
