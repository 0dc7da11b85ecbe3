package catalog

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/caixa/internal/catalog"
	"github.com/MrJamesThe3rd/caixa/internal/ledger"
)

type Handler struct {
	svc *ledger.Service
}

func NewHandler(svc *ledger.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/products", h.products)
	r.Get("/categories", h.categories)
	r.Get("/payment-methods", h.paymentMethods)
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

type paymentMethodResponse struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	AcceptsChange bool   `json:"accepts_change"`
	Active        bool   `json:"active"`
}

func (h *Handler) products(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.ListProducts(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}

	// Only active products are sold; inactive ones stay in the store for history.
	resp := make([]productResponse, 0, len(products))

	for _, p := range products {
		if !p.Active {
			continue
		}

		resp = append(resp, productResponse{
			ID:         p.ID,
			Code:       p.Code,
			Name:       p.Name,
			Price:      p.Price,
			CategoryID: p.CategoryID,
			Active:     p.Active,
		})
	}

	writeJSON(w, resp)
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.ListCategories(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}

	resp := make([]categoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = categoryResponse{ID: c.ID, Name: c.Name}
	}

	writeJSON(w, resp)
}

func (h *Handler) paymentMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.svc.ListPaymentMethods(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}

	writeJSON(w, toMethodResponseList(methods))
}

func toMethodResponseList(ms []catalog.PaymentMethod) []paymentMethodResponse {
	resp := make([]paymentMethodResponse, len(ms))
	for i, m := range ms {
		resp[i] = paymentMethodResponse{ID: m.ID, Name: m.Name, AcceptsChange: m.AcceptsChange, Active: m.Active}
	}

	return resp
}

func internalError(w http.ResponseWriter, err error) {
	slog.Error("catalog request failed", "error", err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(`{"error":"internal error"}`))
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
