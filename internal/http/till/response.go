package till

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/caixa/internal/catalog"
	"github.com/MrJamesThe3rd/caixa/internal/till"
)

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

type sessionResponse struct {
	TerminalID     int64                   `json:"terminal_id"`
	OpeningFloat   int64                   `json:"opening_float"`
	OperatorID     string                  `json:"operator_id"`
	OpenedAt       time.Time               `json:"opened_at"`
	PaymentMethods []paymentMethodResponse `json:"payment_methods"`
}

type saleLineResponse struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

type saleResponse struct {
	ID              uuid.UUID          `json:"id"`
	Number          int64              `json:"number"`
	TerminalID      int64              `json:"terminal_id"`
	Value           int64              `json:"value"`
	PaymentMethodID int64              `json:"payment_method_id"`
	PaymentMethod   string             `json:"payment_method"`
	Status          till.SaleStatus    `json:"status"`
	OperatorID      string             `json:"operator_id"`
	Lines           []saleLineResponse `json:"lines"`
	CreatedAt       time.Time          `json:"created_at"`
	CancelledAt     *time.Time         `json:"cancelled_at,omitempty"`
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

func toTerminalResponseList(ts []till.Terminal) []terminalResponse {
	resp := make([]terminalResponse, len(ts))
	for i, t := range ts {
		resp[i] = terminalResponse{ID: t.ID, Name: t.Name, Status: t.Status}
	}

	return resp
}

func toMethodResponseList(ms []catalog.PaymentMethod) []paymentMethodResponse {
	resp := make([]paymentMethodResponse, len(ms))
	for i, m := range ms {
		resp[i] = paymentMethodResponse{ID: m.ID, Name: m.Name, AcceptsChange: m.AcceptsChange, Active: m.Active}
	}

	return resp
}

func toSessionResponse(s *till.Session) sessionResponse {
	return sessionResponse{
		TerminalID:     s.TerminalID,
		OpeningFloat:   s.OpeningFloat,
		OperatorID:     s.OperatorID,
		OpenedAt:       s.OpenedAt,
		PaymentMethods: toMethodResponseList(s.PaymentMethods),
	}
}

func toSaleResponse(s *till.Sale) saleResponse {
	resp := saleResponse{
		ID:              s.ID,
		Number:          s.Number,
		TerminalID:      s.TerminalID,
		Value:           s.Value,
		PaymentMethodID: s.PaymentMethodID,
		PaymentMethod:   s.PaymentMethod,
		Status:          s.Status,
		OperatorID:      s.OperatorID,
		Lines:           make([]saleLineResponse, len(s.Lines)),
		CreatedAt:       s.CreatedAt,
		CancelledAt:     s.CancelledAt,
	}

	for i, l := range s.Lines {
		resp.Lines[i] = saleLineResponse{ProductID: l.ProductID, Name: l.Name, UnitPrice: l.UnitPrice, Quantity: l.Quantity}
	}

	return resp
}

func toDrawerResponse(op *till.DrawerOperation) drawerResponse {
	return drawerResponse{
		ID:         op.ID,
		TerminalID: op.TerminalID,
		Kind:       op.Kind,
		Amount:     op.Amount,
		Reason:     op.Reason,
		OperatorID: op.OperatorID,
		CreatedAt:  op.CreatedAt,
	}
}

func toDrawerResponseList(ops []till.DrawerOperation) []drawerResponse {
	resp := make([]drawerResponse, len(ops))
	for i := range ops {
		resp[i] = toDrawerResponse(&ops[i])
	}

	return resp
}

func toSummaryResponse(s *till.SettlementSummary) summaryResponse {
	resp := summaryResponse{
		TerminalID:       s.TerminalID,
		OperatorID:       s.OperatorID,
		OpeningFloat:     s.OpeningFloat,
		TotalSales:       s.TotalSales,
		TotalWithdrawals: s.TotalWithdrawals,
		TotalSupplies:    s.TotalSupplies,
		ClosingFloat:     s.ClosingFloat,
		ByMethod:         make([]methodTotalResponse, len(s.ByMethod)),
		Sales:            make([]saleResponse, len(s.Sales)),
		Withdrawals:      toDrawerResponseList(s.Withdrawals),
		Supplies:         toDrawerResponseList(s.Supplies),
		OpenedAt:         s.OpenedAt,
		ClosedAt:         s.ClosedAt,
	}

	for i, m := range s.ByMethod {
		resp.ByMethod[i] = methodTotalResponse{Method: m.Method, Count: m.Count, Total: m.Total}
	}

	for i := range s.Sales {
		resp.Sales[i] = toSaleResponse(&s.Sales[i])
	}

	return resp
}
