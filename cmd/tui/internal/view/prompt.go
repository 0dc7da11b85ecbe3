package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/caixa/internal/prompt"
	"github.com/MrJamesThe3rd/caixa/internal/till"
)

var actionTitles = map[prompt.Action]string{
	till.ActionOpenTill:        "Abertura de caixa",
	till.ActionChangeOperator:  "Troca de operador",
	till.ActionCloseTill:       "Fechamento de caixa",
	till.ActionWithdraw:        "Sangria",
	till.ActionSupply:          "Suprimento",
	till.ActionCancelLast:      "Cancelar última venda",
	till.ActionCancelByNumber:  "Cancelar venda",
	till.ActionReprintLast:     "Reimprimir última venda",
	till.ActionReprintByNumber: "Reimprimir venda",
}

var keypad = [][]string{
	{"7", "8", "9"},
	{"4", "5", "6"},
	{"1", "2", "3"},
	{",", "0", "⌫"},
}

// PromptModel draws the controller's open prompt and feeds it keys.
type PromptModel struct {
	ctrl    *till.Controller
	spinner spinner.Model
}

func NewPromptModel(ctrl *till.Controller) PromptModel {
	s := spinner.New()
	s.Spinner = spinner.Dot

	return PromptModel{ctrl: ctrl, spinner: s}
}

// Active reports whether a prompt is open.
func (m PromptModel) Active() bool {
	return m.ctrl.Prompt() != nil
}

// HandleKey applies one key press. When the last step is submitted it prepares
// the backend call and returns the command running it.
func (m PromptModel) HandleKey(key string) tea.Cmd {
	seq := m.ctrl.Prompt()
	if seq == nil || seq.State() == prompt.StateSubmitting {
		return nil
	}

	if key == "esc" {
		m.ctrl.Cancel()
		return nil
	}

	done, ev := seq.HandleKey(key)
	if ev != prompt.EventCompleted {
		return nil
	}

	call, err := m.ctrl.Prepare(*done)
	if err != nil {
		return nil
	}

	return tea.Batch(runCall(call), m.spinner.Tick)
}

func (m PromptModel) Update(msg tea.Msg) (PromptModel, tea.Cmd) {
	if _, ok := msg.(spinner.TickMsg); !ok {
		return m, nil
	}

	seq := m.ctrl.Prompt()
	if seq == nil || seq.State() != prompt.StateSubmitting {
		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)

	return m, cmd
}

func (m PromptModel) View() string {
	seq := m.ctrl.Prompt()
	if seq == nil {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(actionTitles[seq.Action()]))
	b.WriteString("\n\n")

	if seq.State() == prompt.StateSubmitting {
		b.WriteString(m.spinner.View() + " Aguarde...")
		return panelStyle.Width(36).Render(b.String())
	}

	step := seq.Current()

	fmt.Fprintf(&b, "%s  %s\n", faintStyle.Render(fmt.Sprintf("%d/%d", seq.Index()+1, seq.Len())), step.Label)
	fmt.Fprintf(&b, "> %s_", seq.Display())

	if step.Toggleable() {
		fmt.Fprintf(&b, "  [%s]", activeStyle(seq.Mode().String()))
	}

	b.WriteString("\n")

	if msg := seq.Err(); msg != "" {
		b.WriteString(errorStyle.Render(msg) + "\n")
	}

	b.WriteString("\n" + renderKeypad() + "\n\n")
	b.WriteString(faintStyle.Render("Enter: confirmar | Tab: 123/ABC | Esc: cancelar"))

	return panelStyle.Width(36).Render(b.String())
}

func renderKeypad() string {
	key := lipgloss.NewStyle().Width(5).Align(lipgloss.Center).
		BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240"))

	rows := make([]string, 0, len(keypad))

	for _, row := range keypad {
		cells := make([]string, 0, len(row))
		for _, k := range row {
			cells = append(cells, key.Render(k))
		}

		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
