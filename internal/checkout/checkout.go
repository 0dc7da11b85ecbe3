package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MrJamesThe3rd/caixa/internal/cart"
	"github.com/MrJamesThe3rd/caixa/internal/catalog"
	"github.com/MrJamesThe3rd/caixa/internal/money"
	"github.com/MrJamesThe3rd/caixa/internal/prompt"
	"github.com/MrJamesThe3rd/caixa/internal/session"
	"github.com/MrJamesThe3rd/caixa/internal/till"
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrNoMethod         = errors.New("no payment method selected")
	ErrUnknownMethod    = errors.New("payment method not offered at this terminal")
	ErrReceivedRequired = errors.New("received amount required")
	ErrNotOpen          = errors.New("checkout is not open")
	ErrSubmitting       = errors.New("sale is already being submitted")
)

// Result is the raw outcome of a register-sale call.
type Result struct {
	Sale *till.Sale
	Err  error
}

// Call registers one sale. It only reads values captured when it was prepared.
type Call func(ctx context.Context) Result

// Flow is the payment dialog for one cart at one terminal.
// Like the till controller it is driven from a single goroutine.
type Flow struct {
	backend    till.Backend
	session    *session.Session
	capture    *prompt.Capture
	logger     *slog.Logger
	terminalID int64
	methods    []catalog.PaymentMethod

	open       bool
	submitting bool
	method     *catalog.PaymentMethod
	received   string
	err        string
	release    func()
}

func New(backend till.Backend, sess *session.Session, capture *prompt.Capture, logger *slog.Logger, terminalID int64, methods []catalog.PaymentMethod) *Flow {
	if logger == nil {
		logger = slog.Default()
	}

	if capture == nil {
		capture = prompt.NewCapture()
	}

	return &Flow{
		backend:    backend,
		session:    sess,
		capture:    capture,
		logger:     logger,
		terminalID: terminalID,
		methods:    catalog.ActiveMethods(methods),
	}
}

func (f *Flow) IsOpen() bool                     { return f.open }
func (f *Flow) Submitting() bool                 { return f.submitting }
func (f *Flow) Methods() []catalog.PaymentMethod { return f.methods }
func (f *Flow) Method() *catalog.PaymentMethod   { return f.method }
func (f *Flow) ReceivedInput() string            { return f.received }
func (f *Flow) Err() string                      { return f.err }

// Open starts the dialog for c. An empty cart cannot be checked out.
func (f *Flow) Open(c *cart.Cart) error {
	if c.Empty() {
		return ErrEmptyCart
	}

	if f.open {
		return nil
	}

	f.open = true
	f.method = nil
	f.received = ""
	f.err = ""
	f.release = f.capture.Acquire("checkout")

	return nil
}

// Close dismisses the dialog. The cart is left as it is.
func (f *Flow) Close() bool {
	if !f.open || f.submitting {
		return false
	}

	f.open = false
	f.method = nil
	f.received = ""
	f.err = ""

	if f.release != nil {
		f.release()
		f.release = nil
	}

	return true
}

// SelectMethod picks one of the terminal's active methods.
func (f *Flow) SelectMethod(id int64) error {
	for i := range f.methods {
		if f.methods[i].ID == id {
			m := f.methods[i]
			f.method = &m
			f.err = ""

			if !m.AcceptsChange {
				f.received = ""
			}

			return nil
		}
	}

	return ErrUnknownMethod
}

// SetReceived stores the raw received-amount input.
func (f *Flow) SetReceived(s string) {
	f.received = strings.TrimSpace(s)
}

// NeedsReceived reports whether the selected method asks for the cash handed over.
func (f *Flow) NeedsReceived() bool {
	return f.method != nil && f.method.AcceptsChange
}

// Received parses the received amount. It reports false when the field is empty
// or not a valid amount.
func (f *Flow) Received() (int64, bool) {
	if f.received == "" {
		return 0, false
	}

	cents, err := money.Parse(f.received)
	if err != nil || cents < 0 {
		return 0, false
	}

	return cents, true
}

// CanConfirm reports whether the confirm control is enabled.
func (f *Flow) CanConfirm() bool {
	return f.check() == nil
}

func (f *Flow) check() error {
	if f.method == nil {
		return ErrNoMethod
	}

	if f.NeedsReceived() {
		if _, ok := f.Received(); !ok {
			return ErrReceivedRequired
		}
	}

	return nil
}

// Change is received minus total, reported only when strictly positive.
func (f *Flow) Change(total int64) (int64, bool) {
	if !f.NeedsReceived() {
		return 0, false
	}

	received, ok := f.Received()
	if !ok {
		return 0, false
	}

	change := received - total
	if change <= 0 {
		return 0, false
	}

	return change, true
}

// Prepare builds the register-sale call for c. Credentials are read from the
// session inside the call, right before the request is sent.
func (f *Flow) Prepare(c *cart.Cart) (Call, error) {
	if !f.open {
		return nil, ErrNotOpen
	}

	if f.submitting {
		return nil, ErrSubmitting
	}

	if c.Empty() {
		return nil, ErrEmptyCart
	}

	if err := f.check(); err != nil {
		f.err = err.Error()
		return nil, err
	}

	req := till.SaleRequest{
		TerminalID:      f.terminalID,
		PaymentMethodID: f.method.ID,
		Total:           c.Total(),
		Lines:           saleLines(c.Lines()),
	}

	if f.NeedsReceived() {
		req.Received, _ = f.Received()
	}

	backend := f.backend
	sess := f.session

	f.submitting = true
	f.err = ""

	return func(ctx context.Context) Result {
		creds, err := sess.Credentials()
		if err != nil {
			return Result{Err: err}
		}

		req.Credentials = creds

		sale, err := backend.RegisterSale(ctx, req)
		if err != nil {
			return Result{Err: err}
		}

		return Result{Sale: sale}
	}, nil
}

// Apply folds the call result back. Success empties c and closes the dialog;
// failure keeps both so the operator can retry or pick another method.
func (f *Flow) Apply(r Result, c *cart.Cart) (*till.Sale, error) {
	f.submitting = false

	if r.Err != nil {
		f.err = till.Message(r.Err)
		f.logger.Error("failed to register sale", "terminal", f.terminalID, "error", r.Err)

		return nil, fmt.Errorf("registering sale: %w", r.Err)
	}

	f.logger.Info("sale registered", "terminal", f.terminalID, "number", r.Sale.Number, "value", r.Sale.Value)

	c.Clear()
	f.Close()

	return r.Sale, nil
}

// Confirm prepares, submits and applies in one go.
func (f *Flow) Confirm(ctx context.Context, c *cart.Cart) (*till.Sale, error) {
	call, err := f.Prepare(c)
	if err != nil {
		return nil, err
	}

	return f.Apply(call(ctx), c)
}

func saleLines(lines []cart.Line) []till.SaleLine {
	out := make([]till.SaleLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, till.SaleLine{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			UnitPrice: l.Product.Price,
			Quantity:  l.Quantity,
		})
	}

	return out
}
