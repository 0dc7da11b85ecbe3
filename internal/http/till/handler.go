package till

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/caixa/internal/ledger"
	"github.com/MrJamesThe3rd/caixa/internal/session"
	"github.com/MrJamesThe3rd/caixa/internal/till"
)

type Handler struct {
	svc *ledger.Service
}

func NewHandler(svc *ledger.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)

	r.Route("/{id}", func(r chi.Router) {
		r.Post("/open", h.open)
		r.Post("/close", h.close)
		r.Post("/operator", h.changeOperator)

		r.Post("/sales", h.registerSale)
		r.Post("/sales/last/cancel", h.cancelLast)
		r.Post("/sales/last/reprint", h.reprintLast)
		r.Post("/sales/{number}/cancel", h.cancelByNumber)
		r.Post("/sales/{number}/reprint", h.reprintByNumber)

		r.Post("/withdrawals", h.withdraw)
		r.Post("/supplies", h.supply)
	})
}

type credentialsRequest struct {
	OperatorID string `json:"operator_id"`
	Password   string `json:"password"`
}

func (c credentialsRequest) credentials() session.Credentials {
	return session.Credentials{OperatorID: c.OperatorID, Password: c.Password}
}

type openRequest struct {
	credentialsRequest

	OpeningFloat int64 `json:"opening_float"`
}

type saleLineRequest struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

type saleRequest struct {
	credentialsRequest

	PaymentMethodID int64             `json:"payment_method_id"`
	Total           int64             `json:"total"`
	Received        int64             `json:"received"`
	Lines           []saleLineRequest `json:"lines"`
}

type drawerRequest struct {
	credentialsRequest

	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	terminals, err := h.svc.ListTerminals(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTerminalResponseList(terminals))
}

func (h *Handler) open(w http.ResponseWriter, r *http.Request) {
	id, ok := terminalID(w, r)
	if !ok {
		return
	}

	var req openRequest
	if !decode(w, r, &req) {
		return
	}

	s, err := h.svc.OpenTill(r.Context(), id, req.OpeningFloat, req.credentials())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(s))
}

func (h *Handler) close(w http.ResponseWriter, r *http.Request) {
	id, ok := terminalID(w, r)
	if !ok {
		return
	}

	var req credentialsRequest
	if !decode(w, r, &req) {
		return
	}

	summary, err := h.svc.CloseTill(r.Context(), id, req.credentials())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}

func (h *Handler) changeOperator(w http.ResponseWriter, r *http.Request) {
	id, ok := terminalID(w, r)
	if !ok {
		return
	}

	var req credentialsRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.svc.ChangeOperator(r.Context(), id, req.credentials()); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) registerSale(w http.ResponseWriter, r *http.Request) {
	id, ok := terminalID(w, r)
	if !ok {
		return
	}

	var req saleRequest
	if !decode(w, r, &req) {
		return
	}

	lines := make([]till.SaleLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = till.SaleLine{ProductID: l.ProductID, Name: l.Name, UnitPrice: l.UnitPrice, Quantity: l.Quantity}
	}

	sale, err := h.svc.RegisterSale(r.Context(), till.SaleRequest{
		TerminalID:      id,
		PaymentMethodID: req.PaymentMethodID,
		Total:           req.Total,
		Received:        req.Received,
		Lines:           lines,
		Credentials:     req.credentials(),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSaleResponse(sale))
}

type saleAction func(r *http.Request, terminalID int64, creds session.Credentials) (*till.Sale, error)

func (h *Handler) saleAction(w http.ResponseWriter, r *http.Request, action saleAction) {
	id, ok := terminalID(w, r)
	if !ok {
		return
	}

	var req credentialsRequest
	if !decode(w, r, &req) {
		return
	}

	sale, err := action(r, id, req.credentials())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSaleResponse(sale))
}

func (h *Handler) cancelLast(w http.ResponseWriter, r *http.Request) {
	h.saleAction(w, r, func(r *http.Request, id int64, creds session.Credentials) (*till.Sale, error) {
		return h.svc.CancelLastSale(r.Context(), id, creds)
	})
}

func (h *Handler) reprintLast(w http.ResponseWriter, r *http.Request) {
	h.saleAction(w, r, func(r *http.Request, id int64, creds session.Credentials) (*till.Sale, error) {
		return h.svc.ReprintLast(r.Context(), id, creds)
	})
}

func (h *Handler) cancelByNumber(w http.ResponseWriter, r *http.Request) {
	number, ok := saleNumber(w, r)
	if !ok {
		return
	}

	h.saleAction(w, r, func(r *http.Request, id int64, creds session.Credentials) (*till.Sale, error) {
		return h.svc.CancelSale(r.Context(), id, number, creds)
	})
}

func (h *Handler) reprintByNumber(w http.ResponseWriter, r *http.Request) {
	number, ok := saleNumber(w, r)
	if !ok {
		return
	}

	h.saleAction(w, r, func(r *http.Request, id int64, creds session.Credentials) (*till.Sale, error) {
		return h.svc.ReprintSale(r.Context(), id, number, creds)
	})
}

func (h *Handler) withdraw(w http.ResponseWriter, r *http.Request) {
	h.drawer(w, r, h.svc.Withdraw)
}

func (h *Handler) supply(w http.ResponseWriter, r *http.Request) {
	h.drawer(w, r, h.svc.Supply)
}

func (h *Handler) drawer(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, req till.DrawerRequest) (*till.DrawerOperation, error)) {
	id, ok := terminalID(w, r)
	if !ok {
		return
	}

	var req drawerRequest
	if !decode(w, r, &req) {
		return
	}

	op, err := apply(r.Context(), till.DrawerRequest{
		TerminalID:  id,
		Amount:      req.Amount,
		Reason:      req.Reason,
		Credentials: req.credentials(),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toDrawerResponse(op))
}

func terminalID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeMessage(w, http.StatusBadRequest, "invalid terminal id")
		return 0, false
	}

	return id, true
}

func saleNumber(w http.ResponseWriter, r *http.Request) (int64, bool) {
	n, err := strconv.ParseInt(chi.URLParam(r, "number"), 10, 64)
	if err != nil || n <= 0 {
		writeMessage(w, http.StatusBadRequest, "invalid sale number")
		return 0, false
	}

	return n, true
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}

	return true
}

// statusOf maps ledger rule violations onto HTTP statuses.
func statusOf(err error) int {
	switch {
	case errors.Is(err, ledger.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ledger.ErrTerminalNotFound), errors.Is(err, ledger.ErrSaleNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrTillOpen), errors.Is(err, ledger.ErrTillClosed), errors.Is(err, ledger.ErrSaleCancelled):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrEmptySale),
		errors.Is(err, ledger.ErrInvalidLine),
		errors.Is(err, ledger.ErrTotalMismatch),
		errors.Is(err, ledger.ErrUnknownMethod),
		errors.Is(err, ledger.ErrInsufficientPaid),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrNegativeFloat),
		errors.Is(err, ledger.ErrReasonRequired):
		return http.StatusUnprocessableEntity
	}

	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		slog.Error("till request failed", "error", err)
		writeMessage(w, status, "internal error")

		return
	}

	writeMessage(w, status, err.Error())
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
