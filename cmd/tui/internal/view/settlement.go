package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/caixa/internal/money"
	"github.com/MrJamesThe3rd/caixa/internal/settlement"
	"github.com/MrJamesThe3rd/caixa/internal/till"
)

// SettlementModel walks the operator through a closed till: financial summary,
// the print question, then the per-method breakdown.
type SettlementModel struct {
	CommonModel
	deps Deps

	form      *huh.Form
	wantPrint *bool
	breakdown table.Model
	status    string
	statusErr bool
}

func NewSettlementModel(deps Deps) SettlementModel {
	t := newTable([]table.Column{
		{Title: "Forma de pagamento", Width: 22},
		{Title: "Qtd", Width: 5},
		{Title: "Total", Width: 14},
	}, true)

	return SettlementModel{
		deps:      deps,
		wantPrint: new(bool),
		breakdown: t,
	}
}

func (m SettlementModel) Title() string { return "Fechamento" }

func (m SettlementModel) ShortHelp() string {
	switch m.deps.Controller.Stage() {
	case till.StagePrintConfirm:
		return "←/→: escolher | Enter: confirmar"
	case till.StageBreakdown:
		return "Enter: concluir"
	}

	return "Enter: continuar"
}

func (m SettlementModel) Init() tea.Cmd {
	return nil
}

func (m SettlementModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	ctrl := m.deps.Controller

	switch ctrl.Stage() {
	case till.StageSummary:
		if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEnter {
			if err := ctrl.ContinueSettlement(); err != nil {
				return m, nil
			}

			m.form = huh.NewForm(
				huh.NewGroup(
					huh.NewConfirm().
						Title("Imprimir relatórios?").
						Affirmative("Sim").
						Negative("Não").
						Value(m.wantPrint),
				),
			).WithWidth(40).WithShowHelp(false)

			return m, m.form.Init()
		}

	case till.StagePrintConfirm:
		return m.updatePrint(msg)

	case till.StageBreakdown:
		if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEnter {
			if err := ctrl.Finalize(); err != nil {
				return m, nil
			}

			return m, Back
		}

		var cmd tea.Cmd
		m.breakdown, cmd = m.breakdown.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m SettlementModel) updatePrint(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	wantPrint, err := m.deps.Controller.AnswerPrint(*m.wantPrint)
	if err != nil {
		return m, nil
	}

	summary := m.deps.Controller.Summary()

	if wantPrint && m.deps.Renderer != nil {
		path, err := m.deps.Renderer.PrintSettlement(summary, settlement.AllSections...)
		if err != nil {
			m.deps.Logger.Error("failed to print settlement", "terminal", summary.TerminalID, "error", err)
			m.status, m.statusErr = "Falha na impressão dos relatórios.", true
		} else {
			m.status, m.statusErr = "Relatórios gerados: "+path, false
		}
	}

	m.form = nil
	m.refreshBreakdown(summary)

	return m, nil
}

func (m *SettlementModel) refreshBreakdown(s *till.SettlementSummary) {
	lines, count, total := settlement.Breakdown(s)

	rows := make([]table.Row, 0, len(lines)+1)
	for _, l := range lines {
		rows = append(rows, table.Row{l.Method, strconv.Itoa(l.Count), money.Format(l.Total)})
	}

	rows = append(rows, table.Row{"TOTAL", strconv.Itoa(count), money.Format(total)})

	m.breakdown.SetRows(rows)
}

func (m SettlementModel) View() string {
	summary := m.deps.Controller.Summary()
	if summary == nil {
		return ""
	}

	var body string

	switch m.deps.Controller.Stage() {
	case till.StageSummary:
		body = viewSummary(summary)
	case till.StagePrintConfirm:
		body = viewSummary(summary)
		if m.form != nil {
			body = lipgloss.JoinHorizontal(lipgloss.Top, body, "  ", panelStyle.Render(m.form.View()))
		}
	case till.StageBreakdown:
		body = titleStyle.Render("Vendas por forma de pagamento") + "\n\n" + borderStyle.Render(m.breakdown.View())
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		body,
		"",
		statusLine(m.status, m.statusErr),
		faintStyle.Render(m.ShortHelp()),
	)

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func viewSummary(s *till.SettlementSummary) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Fechamento do PDV %d", s.TerminalID)) + "\n\n")

	row := func(label string, cents int64) {
		fmt.Fprintf(&b, "%-22s %14s\n", label, money.Format(cents))
	}

	fmt.Fprintf(&b, "%-22s %14s\n", "Operador", s.OperatorID)
	fmt.Fprintf(&b, "%-22s %14s\n", "Abertura", s.OpenedAt.Local().Format("02/01 15:04"))
	fmt.Fprintf(&b, "%-22s %14s\n\n", "Fechamento", s.ClosedAt.Local().Format("02/01 15:04"))

	row("Fundo de troco", s.OpeningFloat)
	row("Suprimentos", s.TotalSupplies)
	row("Sangrias", s.TotalWithdrawals)
	row("Vendas", s.TotalSales)
	b.WriteString(strings.Repeat("─", 37) + "\n")
	row("Saldo em caixa", s.ClosingFloat)

	cancelled := 0
	for _, sale := range s.Sales {
		if sale.Cancelled() {
			cancelled++
		}
	}

	fmt.Fprintf(&b, "\n%d vendas, %d canceladas", len(s.Sales), cancelled)

	return panelStyle.Render(b.String())
}
