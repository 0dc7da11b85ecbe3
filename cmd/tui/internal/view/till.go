package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/caixa/internal/cart"
	"github.com/MrJamesThe3rd/caixa/internal/catalog"
	"github.com/MrJamesThe3rd/caixa/internal/checkout"
	"github.com/MrJamesThe3rd/caixa/internal/money"
	"github.com/MrJamesThe3rd/caixa/internal/prompt"
	"github.com/MrJamesThe3rd/caixa/internal/till"
)

type tillFocus int

const (
	focusProducts tillFocus = iota
	focusCart
)

// TillModel is the sales screen of an active till.
type TillModel struct {
	CommonModel
	deps Deps

	products   []catalog.Product
	categories []catalog.Category
	category   int // index into categories; -1 shows every product
	visible    []catalog.Product

	productTable table.Model
	cartTable    table.Model
	focus        tillFocus

	cart     *cart.Cart
	checkout *CheckoutModel
	prompt   PromptModel

	loading   bool
	status    string
	statusErr bool
}

func newTable(columns []table.Column, focused bool) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(focused),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

func NewTillModel(deps Deps) TillModel {
	products := newTable([]table.Column{
		{Title: "Cód", Width: 6},
		{Title: "Produto", Width: 24},
		{Title: "Preço", Width: 12},
	}, true)

	cartTable := newTable([]table.Column{
		{Title: "Qtd", Width: 4},
		{Title: "Produto", Width: 22},
		{Title: "Subtotal", Width: 12},
	}, false)

	return TillModel{
		deps:         deps,
		category:     -1,
		productTable: products,
		cartTable:    cartTable,
		cart:         cart.New(),
		prompt:       NewPromptModel(deps.Controller),
		loading:      true,
	}
}

func (m TillModel) Title() string {
	if t := m.deps.Controller.Terminal(); t != nil {
		return t.Name
	}

	return "PDV"
}

func (m TillModel) ShortHelp() string {
	switch {
	case m.prompt.Active():
		return "Enter: confirmar | Esc: cancelar"
	case m.checkout != nil:
		return "Enter: confirmar | Esc: voltar"
	}

	return "Enter: adicionar | Tab: carrinho | ←/→: categoria | +/-: quantidade | Del: remover | F9: pagamento | Esc: sair"
}

func (m TillModel) Init() tea.Cmd {
	return m.loadCatalogCmd()
}

func (m TillModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadCatalogMsg:
		m.loading = false

		if msg.err != nil {
			m.setStatus(fmt.Sprintf("Erro ao carregar catálogo: %v", msg.err), true)
			return m, nil
		}

		m.products = msg.products
		m.categories = msg.categories
		m.deps.Controller.UseMethods(msg.methods)
		m.refreshProducts()

		return m, nil

	case callResultMsg:
		return m.applyResult(msg.result)

	case checkoutResultMsg:
		return m.applyCheckout(msg.result)

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.productTable.SetHeight(msg.Height - 12)
		m.cartTable.SetHeight(msg.Height - 14)

		return m, nil

	case tea.KeyMsg:
		switch {
		case m.prompt.Active():
			return m, m.prompt.HandleKey(msg.String())
		case m.checkout != nil:
			return m.updateCheckout(msg)
		}

		return m.updateBrowse(msg)
	}

	if m.checkout != nil {
		return m.updateCheckout(msg)
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)

	return m, cmd
}

func (m TillModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if action, ok := m.deps.Controller.Shortcut(key); ok {
		return m.begin(action)
	}

	switch key {
	case "esc":
		if err := m.deps.Controller.Leave(); err != nil {
			return m, nil
		}

		return m, Back
	case "tab":
		m.toggleFocus()
		return m, nil
	case "left":
		if m.focus == focusProducts {
			m.category = max(-1, m.category-1)
			m.refreshProducts()
		}

		return m, nil
	case "right":
		if m.focus == focusProducts {
			m.category = min(len(m.categories)-1, m.category+1)
			m.refreshProducts()
		}

		return m, nil
	case "f9":
		return m.openCheckout()
	}

	if m.focus == focusCart {
		return m.updateCart(msg)
	}

	if key == "enter" {
		idx := m.productTable.Cursor()
		if idx >= 0 && idx < len(m.visible) {
			m.cart.Add(m.visible[idx], 1)
			m.refreshCart()
			m.setStatus("", false)
		}

		return m, nil
	}

	var cmd tea.Cmd
	m.productTable, cmd = m.productTable.Update(msg)

	return m, cmd
}

func (m TillModel) updateCart(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	lines := m.cart.Lines()
	idx := m.cartTable.Cursor()

	if idx < 0 || idx >= len(lines) {
		var cmd tea.Cmd
		m.cartTable, cmd = m.cartTable.Update(msg)

		return m, cmd
	}

	id := lines[idx].Product.ID

	switch msg.String() {
	case "+", "=":
		m.cart.UpdateQuantity(id, 1)
	case "-":
		m.cart.UpdateQuantity(id, -1)
	case "delete", "backspace":
		m.cart.Remove(id)
	default:
		var cmd tea.Cmd
		m.cartTable, cmd = m.cartTable.Update(msg)

		return m, cmd
	}

	m.refreshCart()

	return m, nil
}

func (m *TillModel) toggleFocus() {
	if m.focus == focusProducts {
		m.focus = focusCart
		m.productTable.Blur()
		m.cartTable.Focus()

		return
	}

	m.focus = focusProducts
	m.cartTable.Blur()
	m.productTable.Focus()
}

// begin opens the prompt of a shortcut action.
func (m TillModel) begin(action prompt.Action) (tea.Model, tea.Cmd) {
	if _, err := m.deps.Controller.Begin(action); err != nil {
		m.setStatus(err.Error(), true)
		return m, nil
	}

	m.setStatus("", false)

	return m, nil
}

func (m TillModel) applyResult(r till.Result) (tea.Model, tea.Cmd) {
	out, err := m.deps.Controller.Apply(r)
	if err != nil {
		return m, nil
	}

	switch out.Action {
	case till.ActionCloseTill:
		return m, func() tea.Msg { return SettlementMsg{} }

	case till.ActionChangeOperator:
		m.setStatus("Operador alterado: "+m.deps.Session.OperatorID(), false)
		m.loading = true

		return m, m.loadCatalogCmd()

	case till.ActionCancelLast, till.ActionCancelByNumber:
		m.setStatus(fmt.Sprintf("Venda %d cancelada.%s", out.Sale.Number, m.printSale(out.Sale)), false)

	case till.ActionReprintLast, till.ActionReprintByNumber:
		m.setStatus(fmt.Sprintf("Venda %d reimpressa.%s", out.Sale.Number, m.printSale(out.Sale)), false)

	case till.ActionWithdraw, till.ActionSupply:
		m.setStatus(fmt.Sprintf("%s de %s registrada.%s", actionTitles[out.Action], money.Format(out.Drawer.Amount), m.printDrawer(out.Drawer)), false)
	}

	return m, nil
}

func (m TillModel) openCheckout() (tea.Model, tea.Cmd) {
	ctrl := m.deps.Controller

	flow := checkout.New(m.deps.Backend, m.deps.Session, m.deps.Capture, m.deps.Logger, ctrl.Terminal().ID, ctrl.Methods())
	if err := flow.Open(m.cart); err != nil {
		m.setStatus("Carrinho vazio.", true)
		return m, nil
	}

	co := NewCheckoutModel(flow, m.cart)
	m.checkout = &co
	m.setStatus("", false)

	return m, co.Init()
}

func (m TillModel) updateCheckout(msg tea.Msg) (tea.Model, tea.Cmd) {
	co, cmd := m.checkout.Update(msg)

	if !co.flow.IsOpen() {
		m.checkout = nil
		return m, cmd
	}

	m.checkout = &co

	return m, cmd
}

func (m TillModel) applyCheckout(r checkout.Result) (tea.Model, tea.Cmd) {
	if m.checkout == nil {
		return m, nil
	}

	change, hasChange := m.checkout.flow.Change(m.cart.Total())

	sale, err := m.checkout.flow.Apply(r, m.cart)
	if err != nil {
		return m, nil
	}

	msg := fmt.Sprintf("Venda %d registrada: %s.", sale.Number, money.Format(sale.Value))

	if hasChange {
		msg += " Troco: " + money.Format(change) + "."
	}

	m.checkout = nil
	m.refreshCart()
	m.setStatus(msg+m.printSale(sale), false)

	return m, nil
}

// printSale writes the receipt and returns a note for the status line.
// A failed print never blocks the sale.
func (m TillModel) printSale(sale *till.Sale) string {
	if m.deps.Renderer == nil || sale == nil {
		return ""
	}

	path, err := m.deps.Renderer.PrintSale(sale)
	if err != nil {
		m.deps.Logger.Error("failed to print sale", "number", sale.Number, "error", err)
		return " Falha na impressão."
	}

	return " Cupom: " + path
}

func (m TillModel) printDrawer(op *till.DrawerOperation) string {
	if m.deps.Renderer == nil || op == nil {
		return ""
	}

	path, err := m.deps.Renderer.PrintDrawer(op)
	if err != nil {
		m.deps.Logger.Error("failed to print drawer receipt", "kind", op.Kind, "error", err)
		return " Falha na impressão."
	}

	return " Comprovante: " + path
}

func (m *TillModel) setStatus(msg string, isErr bool) {
	m.status = msg
	m.statusErr = isErr
}

func (m *TillModel) refreshProducts() {
	var categoryID int64
	if m.category >= 0 && m.category < len(m.categories) {
		categoryID = m.categories[m.category].ID
	}

	m.visible = catalog.ByCategory(m.products, categoryID)

	rows := make([]table.Row, 0, len(m.visible))
	for _, p := range m.visible {
		rows = append(rows, table.Row{p.Code, p.Name, money.Format(p.Price)})
	}

	m.productTable.SetRows(rows)
	m.productTable.SetCursor(0)
}

func (m *TillModel) refreshCart() {
	lines := m.cart.Lines()

	rows := make([]table.Row, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, table.Row{strconv.Itoa(l.Quantity), l.Product.Name, money.Format(l.Subtotal())})
	}

	m.cartTable.SetRows(rows)

	if c := m.cartTable.Cursor(); c >= len(rows) {
		m.cartTable.SetCursor(max(0, len(rows)-1))
	}
}

func (m TillModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Carregando catálogo...")
	}

	header := fmt.Sprintf("%s | Operador: %s | Categoria: %s",
		titleStyle.Render(m.Title()),
		activeStyle(m.deps.Session.OperatorID()),
		activeStyle(m.categoryName()),
	)

	left := borderStyle.Render(m.productTable.View())
	right := lipgloss.JoinVertical(lipgloss.Left,
		borderStyle.Render(m.cartTable.View()),
		titleStyle.Render("Total: "+money.Format(m.cart.Total())),
	)

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)

	switch {
	case m.prompt.Active():
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, " ", m.prompt.View())
	case m.checkout != nil:
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, " ", m.checkout.View())
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		body,
		m.shortcutBar(),
		statusLine(m.status, m.statusErr),
		faintStyle.Render(m.ShortHelp()),
	)

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m TillModel) shortcutBar() string {
	parts := make([]string, 0, len(till.Shortcuts))

	for _, s := range till.Shortcuts {
		label := fmt.Sprintf("%s %s", strings.ToUpper(s.Key), s.Label)
		if !m.deps.Controller.ShortcutsEnabled() {
			label = faintStyle.Render(label)
		}

		parts = append(parts, label)
	}

	return strings.Join(parts, "  ")
}

func (m TillModel) categoryName() string {
	if m.category < 0 || m.category >= len(m.categories) {
		return "Todas"
	}

	return m.categories[m.category].Name
}

// Messages

type loadCatalogMsg struct {
	products   []catalog.Product
	categories []catalog.Category
	methods    []catalog.PaymentMethod
	err        error
}

func (m TillModel) loadCatalogCmd() tea.Cmd {
	backend := m.deps.Backend

	return func() tea.Msg {
		ctx, cancel := APICtx()
		defer cancel()

		products, err := backend.ListProducts(ctx)
		if err != nil {
			return loadCatalogMsg{err: err}
		}

		categories, err := backend.ListCategories(ctx)
		if err != nil {
			return loadCatalogMsg{err: err}
		}

		methods, err := backend.ListPaymentMethods(ctx)
		if err != nil {
			return loadCatalogMsg{err: err}
		}

		return loadCatalogMsg{products: products, categories: categories, methods: methods}
	}
}
