package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/MrJamesThe3rd/caixa/internal/cart"
	"github.com/MrJamesThe3rd/caixa/internal/checkout"
	"github.com/MrJamesThe3rd/caixa/internal/money"
)

type checkoutStage int

const (
	checkoutStageMethod checkoutStage = iota
	checkoutStageAmount
)

// CheckoutModel is the payment dialog drawn over the till screen.
type CheckoutModel struct {
	flow *checkout.Flow
	cart *cart.Cart

	stage    checkoutStage
	form     *huh.Form
	methodID *int64
	received textinput.Model
}

func NewCheckoutModel(flow *checkout.Flow, c *cart.Cart) CheckoutModel {
	ti := textinput.New()
	ti.Placeholder = "0,00"
	ti.Prompt = "R$ "
	ti.CharLimit = 12
	ti.Width = 14

	m := CheckoutModel{
		flow:     flow,
		cart:     c,
		methodID: new(int64),
		received: ti,
	}
	m.form = m.methodForm()

	return m
}

func (m CheckoutModel) methodForm() *huh.Form {
	opts := make([]huh.Option[int64], 0, len(m.flow.Methods()))
	for _, pm := range m.flow.Methods() {
		opts = append(opts, huh.NewOption(pm.Name, pm.ID))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int64]().
				Key("method").
				Title("Forma de pagamento").
				Options(opts...).
				Value(m.methodID),
		),
	).WithWidth(36).WithShowHelp(false)
}

func (m CheckoutModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m CheckoutModel) Update(msg tea.Msg) (CheckoutModel, tea.Cmd) {
	if m.flow.Submitting() {
		return m, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		if m.stage == checkoutStageAmount {
			m.stage = checkoutStageMethod
			m.received.Blur()
			m.form = m.methodForm()

			return m, m.form.Init()
		}

		m.flow.Close()

		return m, nil
	}

	switch m.stage {
	case checkoutStageMethod:
		return m.updateMethod(msg)
	case checkoutStageAmount:
		return m.updateAmount(msg)
	}

	return m, nil
}

func (m CheckoutModel) updateMethod(msg tea.Msg) (CheckoutModel, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if err := m.flow.SelectMethod(*m.methodID); err != nil {
		m.form = m.methodForm()
		return m, m.form.Init()
	}

	m.stage = checkoutStageAmount

	if !m.flow.NeedsReceived() {
		return m, nil
	}

	m.received.SetValue(m.flow.ReceivedInput())

	return m, m.received.Focus()
}

func (m CheckoutModel) updateAmount(msg tea.Msg) (CheckoutModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEnter {
		call, err := m.flow.Prepare(m.cart)
		if err != nil {
			return m, nil
		}

		return m, runCheckout(call)
	}

	if !m.flow.NeedsReceived() {
		return m, nil
	}

	var cmd tea.Cmd
	m.received, cmd = m.received.Update(msg)
	m.flow.SetReceived(strings.TrimSpace(m.received.Value()))

	return m, cmd
}

func (m CheckoutModel) View() string {
	var b strings.Builder

	total := m.cart.Total()

	b.WriteString(titleStyle.Render("Pagamento") + "\n\n")
	fmt.Fprintf(&b, "Total: %s\n\n", money.Format(total))

	switch m.stage {
	case checkoutStageMethod:
		b.WriteString(m.form.View())
	case checkoutStageAmount:
		fmt.Fprintf(&b, "Forma: %s\n", activeStyle(m.flow.Method().Name))

		if m.flow.NeedsReceived() {
			b.WriteString("Recebido: " + m.received.View() + "\n")

			if change, ok := m.flow.Change(total); ok {
				fmt.Fprintf(&b, "Troco: %s\n", okStyle.Render(money.Format(change)))
			}
		}

		b.WriteString("\n")

		switch {
		case m.flow.Submitting():
			b.WriteString(faintStyle.Render("Registrando venda..."))
		case m.flow.CanConfirm():
			b.WriteString(activeStyle("[ Enter: confirmar ]"))
		default:
			b.WriteString(faintStyle.Render("[ Enter: confirmar ]"))
		}
	}

	if msg := m.flow.Err(); msg != "" {
		b.WriteString("\n" + errorStyle.Render(msg))
	}

	b.WriteString("\n\n" + faintStyle.Render("Esc: voltar"))

	return panelStyle.Width(40).Render(b.String())
}

// Messages

type checkoutResultMsg struct {
	result checkout.Result
}

func runCheckout(call checkout.Call) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := APICtx()
		defer cancel()

		return checkoutResultMsg{result: call(ctx)}
	}
}
