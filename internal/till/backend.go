package till

import (
	"context"

	"github.com/MrJamesThe3rd/caixa/internal/catalog"
	"github.com/MrJamesThe3rd/caixa/internal/session"
)

// SaleRequest is the payload of a register-sale call.
type SaleRequest struct {
	TerminalID      int64
	PaymentMethodID int64
	Total           int64
	Received        int64
	Lines           []SaleLine
	Credentials     session.Credentials
}

// DrawerRequest is the payload of a withdrawal or supply.
type DrawerRequest struct {
	TerminalID  int64
	Amount      int64
	Reason      string
	Credentials session.Credentials
}

//go:generate mockgen -source=backend.go -destination=backend_mock.go -package=till
type Backend interface {
	ListTerminals(ctx context.Context) ([]Terminal, error)

	OpenTill(ctx context.Context, terminalID, openingFloat int64, creds session.Credentials) (*Session, error)
	CloseTill(ctx context.Context, terminalID int64, creds session.Credentials) (*SettlementSummary, error)
	ChangeOperator(ctx context.Context, terminalID int64, creds session.Credentials) error

	RegisterSale(ctx context.Context, req SaleRequest) (*Sale, error)
	CancelLastSale(ctx context.Context, terminalID int64, creds session.Credentials) (*Sale, error)
	CancelSale(ctx context.Context, terminalID, number int64, creds session.Credentials) (*Sale, error)

	Withdraw(ctx context.Context, req DrawerRequest) (*DrawerOperation, error)
	Supply(ctx context.Context, req DrawerRequest) (*DrawerOperation, error)

	ReprintLast(ctx context.Context, terminalID int64, creds session.Credentials) (*Sale, error)
	ReprintSale(ctx context.Context, terminalID, number int64, creds session.Credentials) (*Sale, error)

	ListProducts(ctx context.Context) ([]catalog.Product, error)
	ListCategories(ctx context.Context) ([]catalog.Category, error)
	ListPaymentMethods(ctx context.Context) ([]catalog.PaymentMethod, error)
}
