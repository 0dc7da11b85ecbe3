package view

import (
	"io"
	"log/slog"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/caixa/internal/catalog"
	"github.com/MrJamesThe3rd/caixa/internal/prompt"
	"github.com/MrJamesThe3rd/caixa/internal/session"
	"github.com/MrJamesThe3rd/caixa/internal/till"
)

var operator = session.Credentials{OperatorID: "1", Password: "1234"}

func newTestTill(t *testing.T) (TillModel, *till.MockBackend) {
	t.Helper()

	backend := till.NewMockBackend(gomock.NewController(t))
	sess := session.New(session.DefaultTTL)
	require.NoError(t, sess.Set(operator))

	capture := prompt.NewCapture()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctrl := till.NewController(backend, sess, capture, logger)

	seq, err := ctrl.Select(till.Terminal{ID: 1, Name: "PDV 01", Status: till.StatusOpen})
	require.NoError(t, err)
	require.Nil(t, seq)

	m := NewTillModel(Deps{Backend: backend, Controller: ctrl, Session: sess, Capture: capture, Logger: logger})

	next, _ := m.Update(loadCatalogMsg{
		products: []catalog.Product{
			{ID: 1, Code: "001", Name: "CAFE", Price: 450, CategoryID: 1, Active: true},
			{ID: 2, Code: "002", Name: "COXINHA", Price: 700, CategoryID: 2, Active: true},
		},
		categories: []catalog.Category{{ID: 1, Name: "BEBIDAS"}, {ID: 2, Name: "LANCHES"}},
		methods:    []catalog.PaymentMethod{{ID: 1, Name: "DINHEIRO", AcceptsChange: true, Active: true}},
	})

	return next.(TillModel), backend
}

func press(t *testing.T, m TillModel, keys ...tea.KeyMsg) (TillModel, tea.Cmd) {
	t.Helper()

	var cmd tea.Cmd

	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(k)
		m = next.(TillModel)
	}

	return m, cmd
}

func runes(s string) []tea.KeyMsg {
	out := make([]tea.KeyMsg, 0, len(s))
	for _, r := range s {
		out = append(out, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	return out
}

// callResult runs cmd and returns the controller result it produced, if any.
func callResult(t *testing.T, cmd tea.Cmd) (callResultMsg, bool) {
	t.Helper()

	if cmd == nil {
		return callResultMsg{}, false
	}

	switch msg := cmd().(type) {
	case callResultMsg:
		return msg, true
	case tea.BatchMsg:
		for _, c := range msg {
			if r, ok := callResult(t, c); ok {
				return r, true
			}
		}
	}

	return callResultMsg{}, false
}

var enter = tea.KeyMsg{Type: tea.KeyEnter}

func TestTillModel_CategoriesAndCart(t *testing.T) {
	m, _ := newTestTill(t)

	assert.Len(t, m.visible, 2)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, "BEBIDAS", m.categoryName())
	require.Len(t, m.visible, 1)

	m, _ = press(t, m, enter, enter)
	assert.Equal(t, int64(900), m.cart.Total())

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'-'}})
	assert.Equal(t, int64(450), m.cart.Total())

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDelete})
	assert.True(t, m.cart.Empty())
}

func TestTillModel_WithdrawShortcut(t *testing.T) {
	m, backend := newTestTill(t)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyF6})
	require.True(t, m.prompt.Active())
	assert.False(t, m.deps.Controller.ShortcutsEnabled())

	// Shortcuts are swallowed by the open prompt.
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyF8})
	assert.Equal(t, till.ActionWithdraw, m.deps.Controller.Prompt().Action())

	backend.EXPECT().Withdraw(gomock.Any(), till.DrawerRequest{
		TerminalID:  1,
		Amount:      1000,
		Reason:      "BANCO",
		Credentials: operator,
	}).Return(&till.DrawerOperation{Kind: till.DrawerWithdrawal, Amount: 1000, Reason: "BANCO"}, nil)

	m, _ = press(t, m, append(runes("10"), enter)...)

	keys := append(runes("banco"), enter)
	m, cmd := press(t, m, keys...)

	res, ok := callResult(t, cmd)
	require.True(t, ok)

	next, _ := m.Update(res)
	m = next.(TillModel)

	assert.False(t, m.prompt.Active())
	assert.True(t, m.deps.Controller.ShortcutsEnabled())
	assert.Contains(t, m.status, "Sangria de R$ 10,00 registrada.")
	assert.False(t, m.statusErr)
}

func TestTillModel_CheckoutOnEmptyCart(t *testing.T) {
	m, _ := newTestTill(t)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyF9})

	assert.Nil(t, m.checkout)
	assert.True(t, m.statusErr)
	assert.True(t, m.deps.Controller.ShortcutsEnabled())
}

func TestTillModel_CancelLastRejectedStaysOnPrompt(t *testing.T) {
	m, backend := newTestTill(t)

	backend.EXPECT().CancelLastSale(gomock.Any(), int64(1), operator).
		Return(nil, &fakeAPIError{msg: "nenhuma venda nesta sessão"})

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyF4})
	require.True(t, m.prompt.Active())

	m, cmd := press(t, m, append(runes("1234"), enter)...)

	res, ok := callResult(t, cmd)
	require.True(t, ok)

	next, _ := m.Update(res)
	m = next.(TillModel)

	seq := m.deps.Controller.Prompt()
	require.NotNil(t, seq)
	assert.Equal(t, "nenhuma venda nesta sessão", seq.Err())
	assert.Equal(t, 0, seq.Index())
	assert.Empty(t, m.status)
}

type fakeAPIError struct {
	msg string
}

func (e *fakeAPIError) Error() string       { return "till server returned 404: " + e.msg }
func (e *fakeAPIError) UserMessage() string { return e.msg }

func TestTillModel_EscIgnoredWhileRequestInFlight(t *testing.T) {
	m, backend := newTestTill(t)

	last := &till.Sale{Number: 4, Value: 450, Status: till.SaleCancelled}
	backend.EXPECT().CancelLastSale(gomock.Any(), int64(1), operator).Return(last, nil)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyF4})
	m, cmd := press(t, m, append(runes("1234"), enter)...)
	require.NotNil(t, cmd)

	m, escCmd := press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, escCmd)
	assert.True(t, m.prompt.Active())
	assert.Equal(t, till.StateActive, m.deps.Controller.State())
	require.NotNil(t, m.deps.Controller.Terminal())

	res, ok := callResult(t, cmd)
	require.True(t, ok)

	next, _ := m.Update(res)
	m = next.(TillModel)

	assert.False(t, m.statusErr)
	assert.Contains(t, m.status, "Venda 4 cancelada.")

	_, escCmd = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, escCmd)
	assert.IsType(t, BackMsg{}, escCmd())
	assert.Equal(t, till.StateUnselected, m.deps.Controller.State())
}

func TestTillModel_CheckoutUsesLoadedMethods(t *testing.T) {
	m, _ := newTestTill(t)

	m, _ = press(t, m, enter)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyF9})

	require.NotNil(t, m.checkout)
	require.Len(t, m.checkout.flow.Methods(), 1)
	assert.Equal(t, "DINHEIRO", m.checkout.flow.Methods()[0].Name)
}

func TestPickerModel_IgnoresResultsOtherThanOpenTill(t *testing.T) {
	backend := till.NewMockBackend(gomock.NewController(t))
	sess := session.New(session.DefaultTTL)
	capture := prompt.NewCapture()
	ctrl := till.NewController(backend, sess, capture, nil)

	p := NewPickerModel(Deps{Backend: backend, Controller: ctrl, Session: sess, Capture: capture})

	_, cmd := p.Update(callResultMsg{result: till.Result{
		Action:  till.ActionCancelLast,
		Outcome: till.Outcome{Sale: &till.Sale{Number: 4}},
	}})

	assert.Nil(t, cmd)
	assert.Equal(t, till.StateUnselected, ctrl.State())
}
