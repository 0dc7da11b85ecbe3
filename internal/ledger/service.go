package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/MrJamesThe3rd/caixa/internal/catalog"
	"github.com/MrJamesThe3rd/caixa/internal/session"
	"github.com/MrJamesThe3rd/caixa/internal/settlement"
	"github.com/MrJamesThe3rd/caixa/internal/till"
)

// Service applies the till rules on top of a Repository. It satisfies
// till.Backend, so the terminal can run against it in process.
type Service struct {
	repo    Repository
	metrics *Metrics
	logger  *slog.Logger
	now     func() time.Time
}

type Option func(*Service)

func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		logger: slog.Default(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

var _ till.Backend = (*Service)(nil)

// HashPassword returns the bcrypt hash stored for an operator.
func HashPassword(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return hash, nil
}

func (s *Service) authenticate(ctx context.Context, action string, creds session.Credentials) (*Operator, error) {
	op, err := s.repo.GetOperator(ctx, creds.OperatorID)
	if err != nil {
		if errors.Is(err, ErrOperatorNotFound) {
			s.metrics.rejected(action)
			return nil, ErrInvalidCredentials
		}

		return nil, fmt.Errorf("getting operator: %w", err)
	}

	if !op.Active || bcrypt.CompareHashAndPassword(op.PasswordHash, []byte(creds.Password)) != nil {
		s.metrics.rejected(action)
		return nil, ErrInvalidCredentials
	}

	return op, nil
}

// begin authenticates and opens a unit of work on the terminal.
func (s *Service) begin(ctx context.Context, action string, terminalID int64, creds session.Credentials) (Tx, error) {
	if _, err := s.authenticate(ctx, action, creds); err != nil {
		return nil, err
	}

	tx, err := s.repo.Begin(ctx, terminalID)
	if err != nil {
		return nil, fmt.Errorf("begin %s: %w", action, err)
	}

	return tx, nil
}

func (s *Service) ListTerminals(ctx context.Context) ([]till.Terminal, error) {
	return s.repo.ListTerminals(ctx)
}

func (s *Service) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) ListPaymentMethods(ctx context.Context) ([]catalog.PaymentMethod, error) {
	return s.repo.ListPaymentMethods(ctx)
}

func (s *Service) SaveProducts(ctx context.Context, products []catalog.Product) error {
	return s.repo.SaveProducts(ctx, products)
}

func (s *Service) OpenTill(ctx context.Context, terminalID, openingFloat int64, creds session.Credentials) (*till.Session, error) {
	if openingFloat < 0 {
		return nil, ErrNegativeFloat
	}

	tx, err := s.begin(ctx, "open", terminalID, creds)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.CurrentSession(ctx); err == nil {
		return nil, ErrTillOpen
	} else if !errors.Is(err, ErrTillClosed) {
		return nil, fmt.Errorf("checking open session: %w", err)
	}

	methods, err := s.repo.ListPaymentMethods(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing payment methods: %w", err)
	}

	ts := &TillSession{
		TerminalID:   terminalID,
		OperatorID:   creds.OperatorID,
		OpeningFloat: openingFloat,
		OpenedAt:     s.now(),
	}

	if err := tx.OpenSession(ctx, ts); err != nil {
		return nil, fmt.Errorf("opening session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit open: %w", err)
	}

	s.metrics.opened()
	s.logger.Info("till opened", "terminal", terminalID, "operator", creds.OperatorID, "float", openingFloat)

	return &till.Session{
		TerminalID:     terminalID,
		OpeningFloat:   openingFloat,
		OperatorID:     creds.OperatorID,
		OpenedAt:       ts.OpenedAt,
		PaymentMethods: catalog.ActiveMethods(methods),
	}, nil
}

func (s *Service) ChangeOperator(ctx context.Context, terminalID int64, creds session.Credentials) error {
	tx, err := s.begin(ctx, "change_operator", terminalID, creds)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	ts, err := tx.CurrentSession(ctx)
	if err != nil {
		return err
	}

	if err := tx.SetSessionOperator(ctx, ts.ID, creds.OperatorID); err != nil {
		return fmt.Errorf("changing operator: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit operator change: %w", err)
	}

	s.logger.Info("operator changed", "terminal", terminalID, "from", ts.OperatorID, "to", creds.OperatorID)

	return nil
}

func (s *Service) CloseTill(ctx context.Context, terminalID int64, creds session.Credentials) (*till.SettlementSummary, error) {
	tx, err := s.begin(ctx, "close", terminalID, creds)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	ts, err := tx.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}

	sales, err := tx.SessionSales(ctx, ts.ID)
	if err != nil {
		return nil, fmt.Errorf("listing session sales: %w", err)
	}

	ops, err := tx.SessionDrawerOperations(ctx, ts.ID)
	if err != nil {
		return nil, fmt.Errorf("listing drawer operations: %w", err)
	}

	methods, err := s.repo.ListPaymentMethods(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing payment methods: %w", err)
	}

	closedAt := s.now()
	summary := Summarize(ts, sales, ops, methods)
	summary.OperatorID = creds.OperatorID
	summary.ClosedAt = closedAt

	ts.ClosedAt = &closedAt
	ts.ClosingFloat = summary.ClosingFloat

	if err := tx.CloseSession(ctx, ts); err != nil {
		return nil, fmt.Errorf("closing session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit close: %w", err)
	}

	s.metrics.closed()
	s.logger.Info("till closed", "terminal", terminalID, "operator", creds.OperatorID, "closing_float", summary.ClosingFloat)

	return summary, nil
}

// Summarize computes the settlement of a session. The expected closing float is
// the opening float plus supplies, minus withdrawals, plus the non-cancelled
// sales paid with methods that take cash.
func Summarize(ts *TillSession, sales []till.Sale, ops []till.DrawerOperation, methods []catalog.PaymentMethod) *till.SettlementSummary {
	cash := make(map[int64]bool, len(methods))
	for _, m := range methods {
		cash[m.ID] = m.AcceptsChange
	}

	sum := &till.SettlementSummary{
		TerminalID:   ts.TerminalID,
		OperatorID:   ts.OperatorID,
		OpeningFloat: ts.OpeningFloat,
		Sales:        sales,
		OpenedAt:     ts.OpenedAt,
	}

	var cashSales int64

	for _, sale := range sales {
		if sale.Cancelled() {
			continue
		}

		sum.TotalSales += sale.Value

		if cash[sale.PaymentMethodID] {
			cashSales += sale.Value
		}
	}

	for _, op := range ops {
		switch op.Kind {
		case till.DrawerWithdrawal:
			sum.TotalWithdrawals += op.Amount
			sum.Withdrawals = append(sum.Withdrawals, op)
		case till.DrawerSupply:
			sum.TotalSupplies += op.Amount
			sum.Supplies = append(sum.Supplies, op)
		}
	}

	sum.ClosingFloat = sum.OpeningFloat + sum.TotalSupplies - sum.TotalWithdrawals + cashSales
	sum.ByMethod = settlement.ByMethod(sales)

	return sum
}

func (s *Service) RegisterSale(ctx context.Context, req till.SaleRequest) (*till.Sale, error) {
	if len(req.Lines) == 0 {
		return nil, ErrEmptySale
	}

	var total int64

	for _, l := range req.Lines {
		if l.Quantity <= 0 || l.UnitPrice < 0 {
			return nil, ErrInvalidLine
		}

		total += l.UnitPrice * int64(l.Quantity)
	}

	if total != req.Total {
		return nil, ErrTotalMismatch
	}

	methods, err := s.repo.ListPaymentMethods(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing payment methods: %w", err)
	}

	var method *catalog.PaymentMethod

	for _, m := range catalog.ActiveMethods(methods) {
		if m.ID == req.PaymentMethodID {
			method = &m
			break
		}
	}

	if method == nil {
		return nil, ErrUnknownMethod
	}

	if method.AcceptsChange && req.Received < req.Total {
		return nil, ErrInsufficientPaid
	}

	tx, err := s.begin(ctx, "sale", req.TerminalID, req.Credentials)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	ts, err := tx.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}

	sale := &till.Sale{
		TerminalID:      req.TerminalID,
		Value:           total,
		PaymentMethodID: method.ID,
		PaymentMethod:   method.Name,
		Status:          till.SaleCompleted,
		OperatorID:      req.Credentials.OperatorID,
		Lines:           append([]till.SaleLine(nil), req.Lines...),
		CreatedAt:       s.now(),
	}

	if err := tx.CreateSale(ctx, ts.ID, sale); err != nil {
		return nil, fmt.Errorf("creating sale: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit sale: %w", err)
	}

	s.metrics.sale(method.Name, sale.Value)
	s.logger.Info("sale registered", "terminal", req.TerminalID, "number", sale.Number, "value", sale.Value, "method", method.Name)

	return sale, nil
}

func (s *Service) CancelLastSale(ctx context.Context, terminalID int64, creds session.Credentials) (*till.Sale, error) {
	return s.cancel(ctx, terminalID, creds, func(tx Tx, ts *TillSession) (*till.Sale, error) {
		return tx.LastSale(ctx, ts.ID)
	})
}

func (s *Service) CancelSale(ctx context.Context, terminalID, number int64, creds session.Credentials) (*till.Sale, error) {
	return s.cancel(ctx, terminalID, creds, func(tx Tx, ts *TillSession) (*till.Sale, error) {
		return tx.SaleByNumber(ctx, ts.ID, number)
	})
}

type saleLookup func(tx Tx, ts *TillSession) (*till.Sale, error)

func (s *Service) cancel(ctx context.Context, terminalID int64, creds session.Credentials, find saleLookup) (*till.Sale, error) {
	tx, err := s.begin(ctx, "cancel", terminalID, creds)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	ts, err := tx.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}

	sale, err := find(tx, ts)
	if err != nil {
		return nil, err
	}

	if sale.Cancelled() {
		return nil, ErrSaleCancelled
	}

	now := s.now()
	sale.Status = till.SaleCancelled
	sale.CancelledAt = &now

	if err := tx.CancelSale(ctx, sale); err != nil {
		return nil, fmt.Errorf("cancelling sale: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit cancel: %w", err)
	}

	s.metrics.cancel(sale.PaymentMethod)
	s.logger.Info("sale cancelled", "terminal", terminalID, "number", sale.Number, "operator", creds.OperatorID)

	return sale, nil
}

func (s *Service) ReprintLast(ctx context.Context, terminalID int64, creds session.Credentials) (*till.Sale, error) {
	return s.reprint(ctx, terminalID, creds, func(tx Tx, ts *TillSession) (*till.Sale, error) {
		return tx.LastSale(ctx, ts.ID)
	})
}

func (s *Service) ReprintSale(ctx context.Context, terminalID, number int64, creds session.Credentials) (*till.Sale, error) {
	return s.reprint(ctx, terminalID, creds, func(tx Tx, ts *TillSession) (*till.Sale, error) {
		return tx.SaleByNumber(ctx, ts.ID, number)
	})
}

func (s *Service) reprint(ctx context.Context, terminalID int64, creds session.Credentials, find saleLookup) (*till.Sale, error) {
	tx, err := s.begin(ctx, "reprint", terminalID, creds)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	ts, err := tx.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}

	return find(tx, ts)
}

func (s *Service) Withdraw(ctx context.Context, req till.DrawerRequest) (*till.DrawerOperation, error) {
	return s.drawer(ctx, till.DrawerWithdrawal, req)
}

func (s *Service) Supply(ctx context.Context, req till.DrawerRequest) (*till.DrawerOperation, error) {
	return s.drawer(ctx, till.DrawerSupply, req)
}

func (s *Service) drawer(ctx context.Context, kind till.DrawerKind, req till.DrawerRequest) (*till.DrawerOperation, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}

	tx, err := s.begin(ctx, strings.ToLower(string(kind)), req.TerminalID, req.Credentials)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	ts, err := tx.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}

	op := &till.DrawerOperation{
		TerminalID: req.TerminalID,
		Kind:       kind,
		Amount:     req.Amount,
		Reason:     reason,
		OperatorID: req.Credentials.OperatorID,
		CreatedAt:  s.now(),
	}

	if err := tx.CreateDrawerOperation(ctx, ts.ID, op); err != nil {
		return nil, fmt.Errorf("creating drawer operation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit drawer operation: %w", err)
	}

	s.metrics.drawerOp(string(kind))
	s.logger.Info("drawer operation", "terminal", req.TerminalID, "kind", kind, "amount", req.Amount)

	return op, nil
}
