package tillapi

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/caixa/internal/catalog"
	"github.com/MrJamesThe3rd/caixa/internal/session"
	"github.com/MrJamesThe3rd/caixa/internal/till"
)

type credentialsDTO struct {
	OperatorID string `json:"operator_id"`
	Password   string `json:"password"`
}

func toCredentials(c session.Credentials) credentialsDTO {
	return credentialsDTO{OperatorID: c.OperatorID, Password: c.Password}
}

type openRequest struct {
	credentialsDTO

	OpeningFloat int64 `json:"opening_float"`
}

type saleLineDTO struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

type saleRequest struct {
	credentialsDTO

	PaymentMethodID int64         `json:"payment_method_id"`
	Total           int64         `json:"total"`
	Received        int64         `json:"received,omitempty"`
	Lines           []saleLineDTO `json:"lines"`
}

type drawerRequest struct {
	credentialsDTO

	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

type terminalResponse struct {
	ID     int64       `json:"id"`
	Name   string      `json:"name"`
	Status till.Status `json:"status"`
}

type paymentMethodResponse struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	AcceptsChange bool   `json:"accepts_change"`
	Active        bool   `json:"active"`
}

type productResponse struct {
	ID         int64  `json:"id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	Price      int64  `json:"price"`
	CategoryID int64  `json:"category_id"`
	Active     bool   `json:"active"`
}

type categoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type sessionResponse struct {
	TerminalID     int64                   `json:"terminal_id"`
	OpeningFloat   int64                   `json:"opening_float"`
	OperatorID     string                  `json:"operator_id"`
	OpenedAt       time.Time               `json:"opened_at"`
	PaymentMethods []paymentMethodResponse `json:"payment_methods"`
}

type saleResponse struct {
	ID              uuid.UUID       `json:"id"`
	Number          int64           `json:"number"`
	TerminalID      int64           `json:"terminal_id"`
	Value           int64           `json:"value"`
	PaymentMethodID int64           `json:"payment_method_id"`
	PaymentMethod   string          `json:"payment_method"`
	Status          till.SaleStatus `json:"status"`
	OperatorID      string          `json:"operator_id"`
	Lines           []saleLineDTO   `json:"lines"`
	CreatedAt       time.Time       `json:"created_at"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
}

type drawerResponse struct {
	ID         uuid.UUID       `json:"id"`
	TerminalID int64           `json:"terminal_id"`
	Kind       till.DrawerKind `json:"kind"`
	Amount     int64           `json:"amount"`
	Reason     string          `json:"reason"`
	OperatorID string          `json:"operator_id"`
	CreatedAt  time.Time       `json:"created_at"`
}

type methodTotalResponse struct {
	Method string `json:"method"`
	Count  int    `json:"count"`
	Total  int64  `json:"total"`
}

type summaryResponse struct {
	TerminalID       int64                 `json:"terminal_id"`
	OperatorID       string                `json:"operator_id"`
	OpeningFloat     int64                 `json:"opening_float"`
	TotalSales       int64                 `json:"total_sales"`
	TotalWithdrawals int64                 `json:"total_withdrawals"`
	TotalSupplies    int64                 `json:"total_supplies"`
	ClosingFloat     int64                 `json:"closing_float"`
	ByMethod         []methodTotalResponse `json:"by_method"`
	Sales            []saleResponse        `json:"sales"`
	Withdrawals      []drawerResponse      `json:"withdrawals"`
	Supplies         []drawerResponse      `json:"supplies"`
	OpenedAt         time.Time             `json:"opened_at"`
	ClosedAt         time.Time             `json:"closed_at"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (r paymentMethodResponse) toDomain() catalog.PaymentMethod {
	return catalog.PaymentMethod{ID: r.ID, Name: r.Name, AcceptsChange: r.AcceptsChange, Active: r.Active}
}

func (r sessionResponse) toDomain() *till.Session {
	s := &till.Session{
		TerminalID:   r.TerminalID,
		OpeningFloat: r.OpeningFloat,
		OperatorID:   r.OperatorID,
		OpenedAt:     r.OpenedAt,
	}

	for _, m := range r.PaymentMethods {
		s.PaymentMethods = append(s.PaymentMethods, m.toDomain())
	}

	return s
}

func (r saleResponse) toDomain() till.Sale {
	s := till.Sale{
		ID:              r.ID,
		Number:          r.Number,
		TerminalID:      r.TerminalID,
		Value:           r.Value,
		PaymentMethodID: r.PaymentMethodID,
		PaymentMethod:   r.PaymentMethod,
		Status:          r.Status,
		OperatorID:      r.OperatorID,
		CreatedAt:       r.CreatedAt,
		CancelledAt:     r.CancelledAt,
	}

	for _, l := range r.Lines {
		s.Lines = append(s.Lines, till.SaleLine{ProductID: l.ProductID, Name: l.Name, UnitPrice: l.UnitPrice, Quantity: l.Quantity})
	}

	return s
}

func (r drawerResponse) toDomain() till.DrawerOperation {
	return till.DrawerOperation{
		ID:         r.ID,
		TerminalID: r.TerminalID,
		Kind:       r.Kind,
		Amount:     r.Amount,
		Reason:     r.Reason,
		OperatorID: r.OperatorID,
		CreatedAt:  r.CreatedAt,
	}
}

func (r summaryResponse) toDomain() *till.SettlementSummary {
	s := &till.SettlementSummary{
		TerminalID:       r.TerminalID,
		OperatorID:       r.OperatorID,
		OpeningFloat:     r.OpeningFloat,
		TotalSales:       r.TotalSales,
		TotalWithdrawals: r.TotalWithdrawals,
		TotalSupplies:    r.TotalSupplies,
		ClosingFloat:     r.ClosingFloat,
		OpenedAt:         r.OpenedAt,
		ClosedAt:         r.ClosedAt,
	}

	for _, m := range r.ByMethod {
		s.ByMethod = append(s.ByMethod, till.MethodTotal{Method: m.Method, Count: m.Count, Total: m.Total})
	}

	for _, sale := range r.Sales {
		s.Sales = append(s.Sales, sale.toDomain())
	}

	for _, op := range r.Withdrawals {
		s.Withdrawals = append(s.Withdrawals, op.toDomain())
	}

	for _, op := range r.Supplies {
		s.Supplies = append(s.Supplies, op.toDomain())
	}

	return s
}
