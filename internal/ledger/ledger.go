package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/caixa/internal/catalog"
	"github.com/MrJamesThe3rd/caixa/internal/till"
)

var (
	ErrTerminalNotFound   = errors.New("terminal not found")
	ErrOperatorNotFound   = errors.New("operator not found")
	ErrInvalidCredentials = errors.New("invalid operator or password")
	ErrTillOpen           = errors.New("till is already open")
	ErrTillClosed         = errors.New("till is closed")
	ErrSaleNotFound       = errors.New("sale not found in this till session")
	ErrSaleCancelled      = errors.New("sale is already cancelled")
	ErrEmptySale          = errors.New("sale has no items")
	ErrInvalidLine        = errors.New("sale line has an invalid quantity or price")
	ErrTotalMismatch      = errors.New("sale total does not match its items")
	ErrUnknownMethod      = errors.New("payment method is not available")
	ErrInsufficientPaid   = errors.New("received amount is less than the sale total")
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrNegativeFloat      = errors.New("opening float cannot be negative")
	ErrReasonRequired     = errors.New("a reason is required")
)

// Operator is a cashier allowed to authorize till actions.
type Operator struct {
	ID           string
	Name         string
	PasswordHash []byte
	Active       bool
}

// TillSession is one open-to-closed period at a terminal.
type TillSession struct {
	ID           uuid.UUID
	TerminalID   int64
	OperatorID   string
	OpeningFloat int64
	ClosingFloat int64
	OpenedAt     time.Time
	ClosedAt     *time.Time
}

// Repository is the persistence behind the ledger.
type Repository interface {
	ListTerminals(ctx context.Context) ([]till.Terminal, error)
	GetOperator(ctx context.Context, id string) (*Operator, error)

	ListProducts(ctx context.Context) ([]catalog.Product, error)
	ListCategories(ctx context.Context) ([]catalog.Category, error)
	ListPaymentMethods(ctx context.Context) ([]catalog.PaymentMethod, error)
	SaveProducts(ctx context.Context, products []catalog.Product) error

	// Begin starts a unit of work on one terminal. Units of work on the same
	// terminal are serialized until Commit or Rollback.
	Begin(ctx context.Context, terminalID int64) (Tx, error)
}

// Tx is a unit of work scoped to a single terminal.
type Tx interface {
	Terminal() till.Terminal

	// CurrentSession returns the open session or ErrTillClosed.
	CurrentSession(ctx context.Context) (*TillSession, error)
	OpenSession(ctx context.Context, s *TillSession) error
	SetSessionOperator(ctx context.Context, sessionID uuid.UUID, operatorID string) error
	CloseSession(ctx context.Context, s *TillSession) error

	// CreateSale assigns the next sale number of the terminal.
	CreateSale(ctx context.Context, sessionID uuid.UUID, sale *till.Sale) error
	LastSale(ctx context.Context, sessionID uuid.UUID) (*till.Sale, error)
	SaleByNumber(ctx context.Context, sessionID uuid.UUID, number int64) (*till.Sale, error)
	CancelSale(ctx context.Context, sale *till.Sale) error
	SessionSales(ctx context.Context, sessionID uuid.UUID) ([]till.Sale, error)

	CreateDrawerOperation(ctx context.Context, sessionID uuid.UUID, op *till.DrawerOperation) error
	SessionDrawerOperations(ctx context.Context, sessionID uuid.UUID) ([]till.DrawerOperation, error)

	Commit() error
	Rollback() error
}
