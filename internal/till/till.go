package till

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/caixa/internal/catalog"
)

// Status is the till status reported by the backend for a terminal.
type Status string

const (
	StatusOpen   Status = "ABERTO"
	StatusClosed Status = "FECHADO"
)

// Terminal is a physical point-of-sale station (PDV).
type Terminal struct {
	ID     int64
	Name   string
	Status Status
}

// Session is what the backend returns when a till is opened.
type Session struct {
	TerminalID     int64
	OpeningFloat   int64
	OperatorID     string
	OpenedAt       time.Time
	PaymentMethods []catalog.PaymentMethod
}

// SaleStatus is the lifecycle state of a recorded sale.
type SaleStatus string

const (
	SaleCompleted SaleStatus = "CONCLUIDA"
	SaleCancelled SaleStatus = "CANCELADA"
)

// SaleLine is one itemized line of a submitted sale.
type SaleLine struct {
	ProductID int64
	Name      string
	UnitPrice int64
	Quantity  int
}

// Sale is a recorded sale. Value is in cents.
type Sale struct {
	ID              uuid.UUID
	Number          int64
	TerminalID      int64
	Value           int64
	PaymentMethodID int64
	PaymentMethod   string
	Status          SaleStatus
	OperatorID      string
	Lines           []SaleLine
	CreatedAt       time.Time
	CancelledAt     *time.Time
}

func (s Sale) Cancelled() bool {
	return s.Status == SaleCancelled
}

// DrawerKind distinguishes cash removed from cash added.
type DrawerKind string

const (
	DrawerWithdrawal DrawerKind = "SANGRIA"
	DrawerSupply     DrawerKind = "SUPRIMENTO"
)

// DrawerOperation is an immutable cash-drawer ledger entry.
type DrawerOperation struct {
	ID         uuid.UUID
	TerminalID int64
	Kind       DrawerKind
	Amount     int64
	Reason     string
	OperatorID string
	CreatedAt  time.Time
}

// MethodTotal is the backend's per-payment-method line of a settlement.
type MethodTotal struct {
	Method string
	Count  int
	Total  int64
}

// SettlementSummary is produced by the backend when a till is closed.
type SettlementSummary struct {
	TerminalID       int64
	OperatorID       string
	OpeningFloat     int64
	TotalSales       int64
	TotalWithdrawals int64
	TotalSupplies    int64
	ClosingFloat     int64
	ByMethod         []MethodTotal
	Sales            []Sale
	Withdrawals      []DrawerOperation
	Supplies         []DrawerOperation
	OpenedAt         time.Time
	ClosedAt         time.Time
}
