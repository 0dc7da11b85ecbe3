package till

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/MrJamesThe3rd/caixa/internal/catalog"
	"github.com/MrJamesThe3rd/caixa/internal/money"
	"github.com/MrJamesThe3rd/caixa/internal/prompt"
	"github.com/MrJamesThe3rd/caixa/internal/session"
)

var (
	ErrWrongState = errors.New("action not allowed in the current till state")
	ErrNoPrompt   = errors.New("no matching prompt awaiting submission")
	ErrPromptOpen = errors.New("another prompt is already open")
)

// State of the till session controller for one terminal.
type State int

const (
	StateUnselected State = iota
	StateSelectingCredentials
	StateActive
	StateClosing
	StateSettlementDisplayed
)

func (s State) String() string {
	switch s {
	case StateUnselected:
		return "UNSELECTED"
	case StateSelectingCredentials:
		return "SELECTING_CREDENTIALS"
	case StateActive:
		return "ACTIVE"
	case StateClosing:
		return "CLOSING"
	case StateSettlementDisplayed:
		return "SETTLEMENT_DISPLAYED"
	}

	return "UNKNOWN"
}

// SettlementStage is the screen shown while the settlement is displayed.
type SettlementStage int

const (
	StageSummary SettlementStage = iota
	StagePrintConfirm
	StageBreakdown
)

const (
	ActionOpenTill        prompt.Action = "open_till"
	ActionChangeOperator  prompt.Action = "change_operator"
	ActionCloseTill       prompt.Action = "close_till"
	ActionWithdraw        prompt.Action = "withdraw"
	ActionSupply          prompt.Action = "supply"
	ActionCancelLast      prompt.Action = "cancel_last"
	ActionCancelByNumber  prompt.Action = "cancel_by_number"
	ActionReprintLast     prompt.Action = "reprint_last"
	ActionReprintByNumber prompt.Action = "reprint_by_number"
)

// Step keys used by the built-in sequences.
const (
	KeyOpeningFloat = "opening_float"
	KeyOperator     = "operator_id"
	KeyPassword     = "password"
	KeyAmount       = "amount"
	KeyReason       = "reason"
	KeySaleNumber   = "sale_number"
)

// Shortcut binds a physical key to a privileged action.
type Shortcut struct {
	Key    string
	Action prompt.Action
	Label  string
}

// Shortcuts lists the till screen bindings in display order.
var Shortcuts = []Shortcut{
	{Key: "f1", Action: ActionReprintLast, Label: "Reprint last"},
	{Key: "f2", Action: ActionReprintByNumber, Label: "Reprint #"},
	{Key: "f3", Action: ActionChangeOperator, Label: "Operator"},
	{Key: "f4", Action: ActionCancelLast, Label: "Cancel last"},
	{Key: "f5", Action: ActionCancelByNumber, Label: "Cancel #"},
	{Key: "f6", Action: ActionWithdraw, Label: "Sangria"},
	{Key: "f7", Action: ActionSupply, Label: "Suprimento"},
	{Key: "f8", Action: ActionCloseTill, Label: "Close till"},
}

// Outcome is what a successful action produced.
type Outcome struct {
	Action  prompt.Action
	Session *Session
	Sale    *Sale
	Drawer  *DrawerOperation
	Summary *SettlementSummary
	// Reload asks the host to rebuild the terminal view under new credentials.
	Reload bool
}

// Result is the raw outcome of a backend call, before it is applied to the controller.
type Result struct {
	Action  prompt.Action
	Outcome Outcome
	Err     error

	creds session.Credentials
}

// Call performs one backend request. It only reads values captured when it was
// prepared, so it can run off the UI goroutine.
type Call func(ctx context.Context) Result

// Controller owns the lifecycle of one cashier session at one terminal.
// All methods except the returned Call must be used from a single goroutine.
type Controller struct {
	backend Backend
	session *session.Session
	capture *prompt.Capture
	logger  *slog.Logger

	state    State
	stage    SettlementStage
	terminal *Terminal
	methods  []catalog.PaymentMethod
	summary  *SettlementSummary

	prompt         *prompt.Sequence
	releasePrompt  func()
	releaseSettled func()
}

func NewController(backend Backend, sess *session.Session, capture *prompt.Capture, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}

	if capture == nil {
		capture = prompt.NewCapture()
	}

	return &Controller{
		backend: backend,
		session: sess,
		capture: capture,
		logger:  logger,
	}
}

func (c *Controller) State() State                     { return c.state }
func (c *Controller) Stage() SettlementStage           { return c.stage }
func (c *Controller) Terminal() *Terminal              { return c.terminal }
func (c *Controller) Summary() *SettlementSummary      { return c.summary }
func (c *Controller) Prompt() *prompt.Sequence         { return c.prompt }
func (c *Controller) Capture() *prompt.Capture         { return c.capture }
func (c *Controller) Session() *session.Session        { return c.session }
func (c *Controller) Methods() []catalog.PaymentMethod { return c.methods }

// Select enters a terminal from the picker. An open till is entered directly;
// a closed one starts the open-till sequence, which is returned.
func (c *Controller) Select(t Terminal) (*prompt.Sequence, error) {
	if c.state != StateUnselected {
		return nil, ErrWrongState
	}

	c.terminal = &t
	c.methods = nil
	c.summary = nil

	if t.Status == StatusOpen {
		c.state = StateActive
		return nil, nil
	}

	c.state = StateSelectingCredentials

	return c.openPrompt(ActionOpenTill), nil
}

// ShortcutsEnabled reports whether till screen keys may trigger actions.
func (c *Controller) ShortcutsEnabled() bool {
	return c.state == StateActive && !c.capture.Captured()
}

// Shortcut maps a key to its action while shortcuts are enabled.
func (c *Controller) Shortcut(key string) (prompt.Action, bool) {
	if !c.ShortcutsEnabled() {
		return "", false
	}

	for _, s := range Shortcuts {
		if s.Key == key {
			return s.Action, true
		}
	}

	return "", false
}

// Begin starts a privileged action on the active till and returns its prompt sequence.
func (c *Controller) Begin(action prompt.Action) (*prompt.Sequence, error) {
	if c.state != StateActive {
		return nil, ErrWrongState
	}

	if c.prompt != nil {
		return nil, ErrPromptOpen
	}

	if action == ActionOpenTill {
		return nil, ErrWrongState
	}

	if action == ActionCloseTill {
		c.state = StateClosing
	}

	return c.openPrompt(action), nil
}

// Cancel closes the open prompt and discards its input. It is refused while the
// prompt's request is in flight.
func (c *Controller) Cancel() bool {
	if c.prompt == nil || c.prompt.State() == prompt.StateSubmitting {
		return false
	}

	action := c.prompt.Action()
	c.prompt.Cancel()
	c.closePrompt()

	switch {
	case action == ActionOpenTill && c.state == StateSelectingCredentials:
		c.state = StateUnselected
		c.terminal = nil
	case action == ActionCloseTill && c.state == StateClosing:
		c.state = StateActive
	}

	return true
}

// Prepare validates a completed input tuple against the controller state and
// returns the backend call to run. Parse failures reject the prompt in place.
func (c *Controller) Prepare(done prompt.Completed) (Call, error) {
	if err := c.checkPrepare(done.Action); err != nil {
		return nil, err
	}

	terminalID := c.terminal.ID
	backend := c.backend
	sess := c.session
	action := done.Action

	entered := session.Credentials{
		OperatorID: done.Value(KeyOperator),
		Password:   done.Value(KeyPassword),
	}

	cached := func() (session.Credentials, error) {
		return sess.Credentials()
	}

	fail := func(err error) Result { return Result{Action: action, Err: err} }

	switch action {
	case ActionOpenTill:
		float, err := money.Parse(done.Value(KeyOpeningFloat))
		if err != nil {
			return nil, c.rejectInput(err)
		}

		return func(ctx context.Context) Result {
			s, err := backend.OpenTill(ctx, terminalID, float, entered)
			if err != nil {
				return fail(err)
			}

			return Result{Action: action, Outcome: Outcome{Session: s}, creds: entered}
		}, nil

	case ActionChangeOperator:
		return func(ctx context.Context) Result {
			if err := backend.ChangeOperator(ctx, terminalID, entered); err != nil {
				return fail(err)
			}

			return Result{Action: action, Outcome: Outcome{Reload: true}, creds: entered}
		}, nil

	case ActionCloseTill:
		return func(ctx context.Context) Result {
			summary, err := backend.CloseTill(ctx, terminalID, entered)
			if err != nil {
				return fail(err)
			}

			return Result{Action: action, Outcome: Outcome{Summary: summary}}
		}, nil

	case ActionWithdraw, ActionSupply:
		amount, err := money.ParsePositive(done.Value(KeyAmount))
		if err != nil {
			return nil, c.rejectInput(err)
		}

		reason := done.Value(KeyReason)

		return func(ctx context.Context) Result {
			creds, err := cached()
			if err != nil {
				return fail(err)
			}

			req := DrawerRequest{TerminalID: terminalID, Amount: amount, Reason: reason, Credentials: creds}

			var op *DrawerOperation
			if action == ActionWithdraw {
				op, err = backend.Withdraw(ctx, req)
			} else {
				op, err = backend.Supply(ctx, req)
			}

			if err != nil {
				return fail(err)
			}

			return Result{Action: action, Outcome: Outcome{Drawer: op}}
		}, nil

	case ActionCancelLast, ActionReprintLast:
		password := done.Value(KeyPassword)

		return func(ctx context.Context) Result {
			creds, err := cached()
			if err != nil {
				return fail(err)
			}

			// The signed-in operator confirms with their password.
			creds.Password = password

			var sale *Sale
			if action == ActionCancelLast {
				sale, err = backend.CancelLastSale(ctx, terminalID, creds)
			} else {
				sale, err = backend.ReprintLast(ctx, terminalID, creds)
			}

			if err != nil {
				return fail(err)
			}

			return Result{Action: action, Outcome: Outcome{Sale: sale}}
		}, nil

	case ActionCancelByNumber, ActionReprintByNumber:
		number, err := parseSaleNumber(done.Value(KeySaleNumber))
		if err != nil {
			return nil, c.rejectInput(err)
		}

		return func(ctx context.Context) Result {
			creds, err := cached()
			if err != nil {
				return fail(err)
			}

			var sale *Sale
			if action == ActionCancelByNumber {
				sale, err = backend.CancelSale(ctx, terminalID, number, creds)
			} else {
				sale, err = backend.ReprintSale(ctx, terminalID, number, creds)
			}

			if err != nil {
				return fail(err)
			}

			return Result{Action: action, Outcome: Outcome{Sale: sale}}
		}, nil
	}

	return nil, fmt.Errorf("unknown action %q", action)
}

// Apply folds a call result into the controller. On failure the prompt returns
// to its first step with the backend message; the cart and other state are untouched.
func (c *Controller) Apply(r Result) (*Outcome, error) {
	if c.terminal == nil {
		return nil, ErrWrongState
	}

	if c.prompt == nil || c.prompt.Action() != r.Action {
		return nil, ErrNoPrompt
	}

	if r.Err != nil {
		c.prompt.Resolve(r.Err, Message(r.Err))

		c.logger.Warn("till action rejected", "action", r.Action, "terminal", c.terminal.ID, "error", r.Err)

		return nil, r.Err
	}

	c.prompt.Resolve(nil, "")
	c.closePrompt()

	out := r.Outcome
	out.Action = r.Action

	switch r.Action {
	case ActionOpenTill:
		c.remember(r.creds)
		c.terminal.Status = StatusOpen
		c.state = StateActive

		if out.Session != nil {
			c.methods = catalog.ActiveMethods(out.Session.PaymentMethods)
		}

	case ActionChangeOperator:
		c.remember(r.creds)
		c.methods = nil

	case ActionCloseTill:
		c.summary = out.Summary
		c.terminal.Status = StatusClosed
		c.state = StateSettlementDisplayed
		c.stage = StageSummary
		c.releaseSettled = c.capture.Acquire("settlement")
	}

	c.logger.Info("till action completed", "action", r.Action, "terminal", c.terminal.ID)

	return &out, nil
}

// Execute prepares, calls and applies in one go.
func (c *Controller) Execute(ctx context.Context, done prompt.Completed) (*Outcome, error) {
	call, err := c.Prepare(done)
	if err != nil {
		return nil, err
	}

	return c.Apply(call(ctx))
}

// UseMethods records the payment methods listed by the backend for a till
// that was entered without being opened here. Methods returned by open-till
// take precedence.
func (c *Controller) UseMethods(methods []catalog.PaymentMethod) {
	if c.state != StateActive || c.methods != nil {
		return
	}

	c.methods = catalog.ActiveMethods(methods)
}

// ContinueSettlement moves from the financial summary to the print question.
func (c *Controller) ContinueSettlement() error {
	if c.state != StateSettlementDisplayed || c.stage != StageSummary {
		return ErrWrongState
	}

	c.stage = StagePrintConfirm

	return nil
}

// AnswerPrint records the print decision; either answer leads to the breakdown.
func (c *Controller) AnswerPrint(wantPrint bool) (bool, error) {
	if c.state != StateSettlementDisplayed || c.stage != StagePrintConfirm {
		return false, ErrWrongState
	}

	c.stage = StageBreakdown

	return wantPrint, nil
}

// Finalize discards the settlement and operator credentials and returns to the picker.
func (c *Controller) Finalize() error {
	if c.state != StateSettlementDisplayed || c.stage != StageBreakdown {
		return ErrWrongState
	}

	if c.releaseSettled != nil {
		c.releaseSettled()
		c.releaseSettled = nil
	}

	c.session.Clear()
	c.reset()

	return nil
}

// Leave returns to the picker from an active till without closing it.
func (c *Controller) Leave() error {
	if c.state != StateActive || c.prompt != nil {
		return ErrWrongState
	}

	c.reset()

	return nil
}

func (c *Controller) reset() {
	c.state = StateUnselected
	c.stage = StageSummary
	c.terminal = nil
	c.methods = nil
	c.summary = nil
}

func (c *Controller) checkPrepare(action prompt.Action) error {
	if c.terminal == nil {
		return ErrWrongState
	}

	if c.prompt == nil || c.prompt.Action() != action || c.prompt.State() != prompt.StateSubmitting {
		return ErrNoPrompt
	}

	return nil
}

func (c *Controller) rejectInput(err error) error {
	c.prompt.Resolve(err, err.Error())
	return err
}

func (c *Controller) remember(creds session.Credentials) {
	if err := c.session.Set(creds); err != nil {
		c.logger.Warn("failed to persist operator session", "error", err)
	}
}

func (c *Controller) openPrompt(action prompt.Action) *prompt.Sequence {
	c.prompt = prompt.New(action, StepsFor(action)...)
	c.releasePrompt = c.capture.Acquire("prompt")

	return c.prompt
}

func (c *Controller) closePrompt() {
	if c.releasePrompt != nil {
		c.releasePrompt()
		c.releasePrompt = nil
	}

	c.prompt = nil
}

// StepsFor returns the input steps collected before action.
func StepsFor(action prompt.Action) []prompt.Step {
	operator := prompt.Step{Key: KeyOperator, Label: "Operator ID", Kind: prompt.KindNumeric}
	password := prompt.Step{Key: KeyPassword, Label: "Password", Kind: prompt.KindPassword}

	switch action {
	case ActionOpenTill:
		return []prompt.Step{
			{Key: KeyOpeningFloat, Label: "Opening float", Kind: prompt.KindCurrency, Validate: validateFloat},
			operator,
			password,
		}
	case ActionChangeOperator, ActionCloseTill:
		return []prompt.Step{operator, password}
	case ActionWithdraw, ActionSupply:
		return []prompt.Step{
			{Key: KeyAmount, Label: "Amount", Kind: prompt.KindCurrency, Validate: validateAmount},
			{Key: KeyReason, Label: "Reason", Kind: prompt.KindText, AllowSpaces: true},
		}
	case ActionCancelLast, ActionReprintLast:
		return []prompt.Step{password}
	case ActionCancelByNumber, ActionReprintByNumber:
		return []prompt.Step{
			{Key: KeySaleNumber, Label: "Sale number", Kind: prompt.KindNumeric, Validate: validateSaleNumber},
		}
	}

	return nil
}

func validateFloat(s string) error {
	cents, err := money.Parse(s)
	if err != nil {
		return err
	}

	if cents < 0 {
		return errors.New("opening float cannot be negative")
	}

	return nil
}

func validateAmount(s string) error {
	_, err := money.ParsePositive(s)
	return err
}

func validateSaleNumber(s string) error {
	_, err := parseSaleNumber(s)
	return err
}

func parseSaleNumber(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid sale number %q", s)
	}

	return n, nil
}
