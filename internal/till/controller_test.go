package till_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/caixa/internal/catalog"
	"github.com/MrJamesThe3rd/caixa/internal/prompt"
	"github.com/MrJamesThe3rd/caixa/internal/session"
	"github.com/MrJamesThe3rd/caixa/internal/till"
)

type userError string

func (e userError) Error() string       { return string(e) }
func (e userError) UserMessage() string { return string(e) }

var operator = session.Credentials{OperatorID: "1", Password: "1234"}

func newController(t *testing.T) (*till.Controller, *till.MockBackend, *session.Session) {
	t.Helper()

	ctrl := gomock.NewController(t)
	backend := till.NewMockBackend(ctrl)
	sess := session.New(8 * time.Hour)

	return till.NewController(backend, sess, prompt.NewCapture(), nil), backend, sess
}

func feed(t *testing.T, seq *prompt.Sequence, inputs ...string) prompt.Completed {
	t.Helper()

	var done *prompt.Completed

	for i, in := range inputs {
		for _, r := range in {
			require.True(t, seq.Type(r), "rune %q rejected at step %d", r, i)
		}

		c, err := seq.Submit()
		require.NoError(t, err)

		done = c
	}

	require.NotNil(t, done, "sequence did not complete")

	return *done
}

func openTerminal(t *testing.T, c *till.Controller, sess *session.Session) {
	t.Helper()

	seq, err := c.Select(till.Terminal{ID: 3, Name: "PDV 03", Status: till.StatusOpen})
	require.NoError(t, err)
	require.Nil(t, seq)
	require.NoError(t, sess.Set(operator))
}

func TestController_SelectOpenTerminalSkipsPrompt(t *testing.T) {
	c, _, _ := newController(t)

	seq, err := c.Select(till.Terminal{ID: 1, Status: till.StatusOpen})
	require.NoError(t, err)

	assert.Nil(t, seq)
	assert.Equal(t, till.StateActive, c.State())
	assert.True(t, c.ShortcutsEnabled())
}

func TestController_SelectClosedTerminalRunsOpenSequence(t *testing.T) {
	c, backend, sess := newController(t)

	seq, err := c.Select(till.Terminal{ID: 1, Status: till.StatusClosed})
	require.NoError(t, err)
	require.NotNil(t, seq)
	assert.Equal(t, till.StateSelectingCredentials, c.State())
	assert.Equal(t, 3, seq.Len())
	assert.False(t, c.ShortcutsEnabled())

	methods := []catalog.PaymentMethod{
		{ID: 1, Name: "DINHEIRO", AcceptsChange: true, Active: true},
		{ID: 2, Name: "VALE", Active: false},
	}

	backend.EXPECT().
		OpenTill(gomock.Any(), int64(1), int64(10000), operator).
		Return(&till.Session{TerminalID: 1, OpeningFloat: 10000, PaymentMethods: methods}, nil)

	out, err := c.Execute(context.Background(), feed(t, seq, "100", "1", "1234"))
	require.NoError(t, err)
	require.NotNil(t, out.Session)

	assert.Equal(t, till.StateActive, c.State())
	assert.Equal(t, till.StatusOpen, c.Terminal().Status)
	assert.Len(t, c.Methods(), 1)
	assert.True(t, c.ShortcutsEnabled())

	got, err := sess.Credentials()
	require.NoError(t, err)
	assert.Equal(t, operator, got)
}

func TestController_OpenRejectedResetsSequence(t *testing.T) {
	c, backend, sess := newController(t)

	seq, err := c.Select(till.Terminal{ID: 1, Status: till.StatusClosed})
	require.NoError(t, err)

	backend.EXPECT().
		OpenTill(gomock.Any(), int64(1), int64(5000), gomock.Any()).
		Return(nil, userError("Operador ou senha inválidos"))

	_, err = c.Execute(context.Background(), feed(t, seq, "50", "1", "0000"))
	require.Error(t, err)

	assert.Equal(t, till.StateSelectingCredentials, c.State())
	assert.Equal(t, 0, seq.Index())
	assert.Equal(t, prompt.StateCollecting, seq.State())
	assert.Equal(t, "Operador ou senha inválidos", seq.Err())

	_, err = sess.Credentials()
	assert.ErrorIs(t, err, session.ErrNoOperator)
}

func TestController_CancelOpenReturnsToPicker(t *testing.T) {
	c, _, _ := newController(t)

	seq, err := c.Select(till.Terminal{ID: 1, Status: till.StatusClosed})
	require.NoError(t, err)

	require.True(t, seq.Type('5'))
	assert.True(t, c.Cancel())

	assert.Equal(t, till.StateUnselected, c.State())
	assert.Nil(t, c.Terminal())
	assert.Nil(t, c.Prompt())
	assert.False(t, c.Capture().Captured())
}

func TestController_ShortcutsDisabledWhilePromptOpen(t *testing.T) {
	c, _, sess := newController(t)
	openTerminal(t, c, sess)

	action, ok := c.Shortcut("f6")
	require.True(t, ok)
	assert.Equal(t, till.ActionWithdraw, action)

	_, err := c.Begin(action)
	require.NoError(t, err)

	_, ok = c.Shortcut("f7")
	assert.False(t, ok)

	_, err = c.Begin(till.ActionSupply)
	assert.ErrorIs(t, err, till.ErrPromptOpen)

	c.Cancel()
	_, ok = c.Shortcut("f7")
	assert.True(t, ok)
}

func TestController_Withdraw(t *testing.T) {
	c, backend, sess := newController(t)
	openTerminal(t, c, sess)

	seq, err := c.Begin(till.ActionWithdraw)
	require.NoError(t, err)

	op := &till.DrawerOperation{ID: uuid.New(), TerminalID: 3, Kind: till.DrawerWithdrawal, Amount: 2550, Reason: "TROCO BANCO"}

	backend.EXPECT().
		Withdraw(gomock.Any(), till.DrawerRequest{TerminalID: 3, Amount: 2550, Reason: "TROCO BANCO", Credentials: operator}).
		Return(op, nil)

	tab := func() {
		_, ev := seq.HandleKey("tab")
		require.Equal(t, prompt.EventInvalid, ev)
	}
	tab()

	out, err := c.Execute(context.Background(), feed(t, seq, "25,50", "troco banco"))
	require.NoError(t, err)

	assert.Equal(t, op, out.Drawer)
	assert.Equal(t, till.StateActive, c.State())
	assert.Nil(t, c.Prompt())
}

func TestController_ExpiredSessionRejectsPrivilegedAction(t *testing.T) {
	c, _, sess := newController(t)

	_, err := c.Select(till.Terminal{ID: 3, Status: till.StatusOpen})
	require.NoError(t, err)
	sess.Clear()

	seq, err := c.Begin(till.ActionSupply)
	require.NoError(t, err)

	_, err = c.Execute(context.Background(), feed(t, seq, "10", "FUNDO"))
	assert.ErrorIs(t, err, session.ErrNoOperator)
	assert.Equal(t, 0, seq.Index())
	assert.Contains(t, seq.Err(), "change operator")
}

func TestController_CancelAndReprintByNumber(t *testing.T) {
	c, backend, sess := newController(t)
	openTerminal(t, c, sess)

	sale := &till.Sale{Number: 12, Status: till.SaleCancelled}

	backend.EXPECT().CancelSale(gomock.Any(), int64(3), int64(12), operator).Return(sale, nil)
	backend.EXPECT().ReprintSale(gomock.Any(), int64(3), int64(99), operator).Return(nil, userError("Venda 99 não encontrada"))

	seq, err := c.Begin(till.ActionCancelByNumber)
	require.NoError(t, err)

	out, err := c.Execute(context.Background(), feed(t, seq, "12"))
	require.NoError(t, err)
	assert.Equal(t, sale, out.Sale)

	seq, err = c.Begin(till.ActionReprintByNumber)
	require.NoError(t, err)

	_, err = c.Execute(context.Background(), feed(t, seq, "99"))
	require.Error(t, err)
	assert.Equal(t, "Venda 99 não encontrada", seq.Err())
	assert.True(t, seq.Open())
}

func TestController_LastSaleActionsConfirmPassword(t *testing.T) {
	c, backend, sess := newController(t)
	openTerminal(t, c, sess)

	last := &till.Sale{Number: 4, Status: till.SaleCancelled}
	backend.EXPECT().CancelLastSale(gomock.Any(), int64(3), operator).Return(last, nil)

	seq, err := c.Begin(till.ActionCancelLast)
	require.NoError(t, err)
	require.NotNil(t, seq)
	assert.True(t, seq.Current().Masked())

	out, err := c.Execute(context.Background(), feed(t, seq, "1234"))
	require.NoError(t, err)
	assert.Equal(t, last, out.Sale)
	assert.Nil(t, c.Prompt())

	wrong := session.Credentials{OperatorID: "1", Password: "9999"}
	backend.EXPECT().ReprintLast(gomock.Any(), int64(3), wrong).Return(nil, userError("Senha inválida"))

	seq, err = c.Begin(till.ActionReprintLast)
	require.NoError(t, err)

	_, err = c.Execute(context.Background(), feed(t, seq, "9999"))
	require.Error(t, err)
	assert.Equal(t, "Senha inválida", seq.Err())
	assert.Equal(t, 0, seq.Index())
	assert.Equal(t, till.StateActive, c.State())

	creds, err := sess.Credentials()
	require.NoError(t, err)
	assert.Equal(t, operator, creds, "a rejected confirmation leaves the session alone")
}

func TestController_ChangeOperatorReloads(t *testing.T) {
	c, backend, sess := newController(t)
	openTerminal(t, c, sess)

	next := session.Credentials{OperatorID: "2", Password: "4321"}
	backend.EXPECT().ChangeOperator(gomock.Any(), int64(3), next).Return(nil)

	seq, err := c.Begin(till.ActionChangeOperator)
	require.NoError(t, err)

	out, err := c.Execute(context.Background(), feed(t, seq, "2", "4321"))
	require.NoError(t, err)
	assert.True(t, out.Reload)

	got, err := sess.Credentials()
	require.NoError(t, err)
	assert.Equal(t, next, got)
}

func TestController_CloseFlow(t *testing.T) {
	c, backend, sess := newController(t)
	openTerminal(t, c, sess)

	seq, err := c.Begin(till.ActionCloseTill)
	require.NoError(t, err)
	assert.Equal(t, till.StateClosing, c.State())

	summary := &till.SettlementSummary{TerminalID: 3, OpeningFloat: 10000, ClosingFloat: 12000}

	gomock.InOrder(
		backend.EXPECT().CloseTill(gomock.Any(), int64(3), gomock.Any()).Return(nil, userError("Caixa já fechado")),
		backend.EXPECT().CloseTill(gomock.Any(), int64(3), operator).Return(summary, nil),
	)

	_, err = c.Execute(context.Background(), feed(t, seq, "1", "1111"))
	require.Error(t, err)
	assert.Equal(t, till.StateClosing, c.State())
	assert.Equal(t, 0, seq.Index())

	out, err := c.Execute(context.Background(), feed(t, seq, "1", "1234"))
	require.NoError(t, err)
	assert.Equal(t, summary, out.Summary)
	assert.Equal(t, till.StateSettlementDisplayed, c.State())
	assert.Equal(t, till.StageSummary, c.Stage())
	assert.False(t, c.ShortcutsEnabled())

	assert.ErrorIs(t, c.Finalize(), till.ErrWrongState)

	require.NoError(t, c.ContinueSettlement())
	assert.Equal(t, till.StagePrintConfirm, c.Stage())

	wantPrint, err := c.AnswerPrint(false)
	require.NoError(t, err)
	assert.False(t, wantPrint)
	assert.Equal(t, till.StageBreakdown, c.Stage())

	require.NoError(t, c.Finalize())
	assert.Equal(t, till.StateUnselected, c.State())
	assert.Nil(t, c.Summary())
	assert.False(t, c.Capture().Captured())

	_, err = sess.Credentials()
	assert.ErrorIs(t, err, session.ErrNoOperator)
}

func TestController_CancelCloseReturnsToActive(t *testing.T) {
	c, _, sess := newController(t)
	openTerminal(t, c, sess)

	_, err := c.Begin(till.ActionCloseTill)
	require.NoError(t, err)

	assert.True(t, c.Cancel())
	assert.Equal(t, till.StateActive, c.State())
}

func TestController_CancelRefusedWhileSubmitting(t *testing.T) {
	c, backend, sess := newController(t)
	openTerminal(t, c, sess)

	seq, err := c.Begin(till.ActionReprintByNumber)
	require.NoError(t, err)

	call, err := c.Prepare(feed(t, seq, "7"))
	require.NoError(t, err)

	assert.False(t, c.Cancel())

	backend.EXPECT().ReprintSale(gomock.Any(), int64(3), int64(7), operator).Return(&till.Sale{Number: 7}, nil)

	out, err := c.Apply(call(context.Background()))
	require.NoError(t, err)
	assert.Equal(t, int64(7), out.Sale.Number)
}

func TestController_UseMethods(t *testing.T) {
	c, _, sess := newController(t)

	listed := []catalog.PaymentMethod{
		{ID: 1, Name: "PIX", Active: true},
		{ID: 2, Name: "CHEQUE"},
	}

	c.UseMethods(listed)
	assert.Nil(t, c.Methods(), "ignored before a till is entered")

	openTerminal(t, c, sess)

	c.UseMethods(listed)
	assert.Equal(t, []catalog.PaymentMethod{{ID: 1, Name: "PIX", Active: true}}, c.Methods())

	c.UseMethods([]catalog.PaymentMethod{{ID: 3, Name: "DINHEIRO", Active: true}})
	assert.Len(t, c.Methods(), 1)
	assert.Equal(t, "PIX", c.Methods()[0].Name, "the first list is kept")
}

func TestController_LeaveRefusedWhileRequestInFlight(t *testing.T) {
	c, backend, sess := newController(t)
	openTerminal(t, c, sess)

	seq, err := c.Begin(till.ActionCancelLast)
	require.NoError(t, err)

	call, err := c.Prepare(feed(t, seq, "1234"))
	require.NoError(t, err)

	assert.False(t, c.ShortcutsEnabled())
	assert.ErrorIs(t, c.Leave(), till.ErrWrongState)
	assert.False(t, c.Cancel())

	_, err = c.Begin(till.ActionReprintLast)
	assert.ErrorIs(t, err, till.ErrPromptOpen)

	last := &till.Sale{Number: 9, Status: till.SaleCancelled}
	backend.EXPECT().CancelLastSale(gomock.Any(), int64(3), operator).Return(last, nil)

	out, err := c.Apply(call(context.Background()))
	require.NoError(t, err)
	assert.Equal(t, last, out.Sale)

	assert.True(t, c.ShortcutsEnabled())
	require.NoError(t, c.Leave())
	assert.Equal(t, till.StateUnselected, c.State())
}

func TestController_ApplyWithoutTerminal(t *testing.T) {
	c, _, _ := newController(t)

	_, err := c.Apply(till.Result{Action: till.ActionCancelLast, Outcome: till.Outcome{Sale: &till.Sale{Number: 1}}})
	assert.ErrorIs(t, err, till.ErrWrongState)

	_, err = c.Apply(till.Result{Action: till.ActionReprintLast, Err: errors.New("connection refused")})
	assert.ErrorIs(t, err, till.ErrWrongState)
}

func TestController_StaleResultIgnored(t *testing.T) {
	c, _, sess := newController(t)
	openTerminal(t, c, sess)

	_, err := c.Apply(till.Result{Action: till.ActionReprintLast, Outcome: till.Outcome{Sale: &till.Sale{Number: 1}}})
	assert.ErrorIs(t, err, till.ErrNoPrompt)
	assert.True(t, c.ShortcutsEnabled())
}

func TestStepsFor(t *testing.T) {
	assert.Len(t, till.StepsFor(till.ActionOpenTill), 3)
	assert.Len(t, till.StepsFor(till.ActionCloseTill), 2)
	assert.Len(t, till.StepsFor(till.ActionWithdraw), 2)
	assert.Len(t, till.StepsFor(till.ActionCancelByNumber), 1)
	assert.Len(t, till.StepsFor(till.ActionCancelLast), 1)
	assert.Len(t, till.StepsFor(till.ActionReprintLast), 1)

	for _, s := range till.Shortcuts {
		assert.NotEmpty(t, s.Label)
	}
}
