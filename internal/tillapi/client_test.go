package tillapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/caixa/internal/session"
	"github.com/MrJamesThe3rd/caixa/internal/till"
)

var operator = session.Credentials{OperatorID: "1", Password: "1234"}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	return NewClient(ts.URL+"/", "secret-token", 5*time.Second)
}

func TestClient_OpenTill(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/terminals/3/open", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"operator_id": "1", "password": "1234", "opening_float": float64(10000)}, body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"terminal_id": 3,
			"opening_float": 10000,
			"operator_id": "1",
			"opened_at": "2026-10-19T08:00:00Z",
			"payment_methods": [
				{"id": 1, "name": "DINHEIRO", "accepts_change": true, "active": true},
				{"id": 2, "name": "PIX", "accepts_change": false, "active": true}
			]
		}`))
	})

	s, err := c.OpenTill(context.Background(), 3, 10000, operator)
	require.NoError(t, err)

	assert.Equal(t, int64(3), s.TerminalID)
	require.Len(t, s.PaymentMethods, 2)
	assert.True(t, s.PaymentMethods[0].AcceptsChange)
}

func TestClient_ErrorCarriesServerMessage(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{name: "JSON error", status: http.StatusUnauthorized, body: `{"error":"invalid operator or password"}`, wantMsg: "invalid operator or password"},
		{name: "plain text", status: http.StatusConflict, body: "till is already open\n", wantMsg: "till is already open"},
		{name: "empty body", status: http.StatusBadGateway, body: "", wantMsg: "Bad Gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			err := c.ChangeOperator(context.Background(), 1, operator)
			require.Error(t, err)

			assert.True(t, IsStatus(err, tt.status))
			assert.Equal(t, tt.wantMsg, till.Message(err))
		})
	}
}

func TestClient_SaleRoutes(t *testing.T) {
	var paths []string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"number": 7, "terminal_id": 2, "value": 4500, "payment_method": "PIX", "status": "CANCELADA",
			"lines": [{"product_id": 10, "name": "CAFE", "unit_price": 1500, "quantity": 3}],
			"created_at": "2026-10-19T09:00:00Z", "cancelled_at": "2026-10-19T09:05:00Z"}`))
	})

	ctx := context.Background()

	sale, err := c.CancelLastSale(ctx, 2, operator)
	require.NoError(t, err)
	assert.True(t, sale.Cancelled())
	require.NotNil(t, sale.CancelledAt)
	assert.Equal(t, []till.SaleLine{{ProductID: 10, Name: "CAFE", UnitPrice: 1500, Quantity: 3}}, sale.Lines)

	_, err = c.CancelSale(ctx, 2, 7, operator)
	require.NoError(t, err)

	_, err = c.ReprintLast(ctx, 2, operator)
	require.NoError(t, err)

	_, err = c.ReprintSale(ctx, 2, 7, operator)
	require.NoError(t, err)

	_, err = c.RegisterSale(ctx, till.SaleRequest{TerminalID: 2, Credentials: operator})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/api/v1/terminals/2/sales/last/cancel",
		"/api/v1/terminals/2/sales/7/cancel",
		"/api/v1/terminals/2/sales/last/reprint",
		"/api/v1/terminals/2/sales/7/reprint",
		"/api/v1/terminals/2/sales",
	}, paths)
}

func TestClient_CloseTill(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/terminals/1/close", r.URL.Path)

		_, _ = w.Write([]byte(`{
			"terminal_id": 1, "opening_float": 10000, "total_sales": 8000, "closing_float": 18000,
			"by_method": [{"method": "PIX", "count": 2, "total": 8000}],
			"sales": [{"number": 1, "value": 5000, "payment_method": "PIX", "status": "CONCLUIDA"},
			          {"number": 2, "value": 3000, "payment_method": "PIX", "status": "CONCLUIDA"}],
			"withdrawals": [{"kind": "SANGRIA", "amount": 100, "reason": "X"}],
			"supplies": []
		}`))
	})

	s, err := c.CloseTill(context.Background(), 1, operator)
	require.NoError(t, err)

	assert.Equal(t, int64(18000), s.ClosingFloat)
	assert.Len(t, s.Sales, 2)
	assert.Equal(t, []till.MethodTotal{{Method: "PIX", Count: 2, Total: 8000}}, s.ByMethod)
	assert.Equal(t, till.DrawerWithdrawal, s.Withdrawals[0].Kind)
}

func TestClient_Catalog(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/products":
			_, _ = w.Write([]byte(`[{"id": 1, "code": "001", "name": "CAFE", "price": 500, "category_id": 2, "active": true}]`))
		case "/api/v1/categories":
			_, _ = w.Write([]byte(`[{"id": 2, "name": "BEBIDAS"}]`))
		case "/api/v1/payment-methods":
			_, _ = w.Write([]byte(`[{"id": 5, "name": "CHEQUE", "active": false}]`))
		case "/api/v1/terminals":
			_, _ = w.Write([]byte(`[{"id": 1, "name": "PDV 01", "status": "ABERTO"}]`))
		default:
			http.NotFound(w, r)
		}
	})

	ctx := context.Background()

	products, err := c.ListProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), products[0].CategoryID)

	categories, err := c.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, "BEBIDAS", categories[0].Name)

	methods, err := c.ListPaymentMethods(ctx)
	require.NoError(t, err)
	assert.False(t, methods[0].Active)

	terminals, err := c.ListTerminals(ctx)
	require.NoError(t, err)
	assert.Equal(t, till.StatusOpen, terminals[0].Status)
}

func TestClient_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(ts.Close)

	c := NewClient(ts.URL, "", time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.ListTerminals(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_ImportCatalog(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/products/import", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "legacy", r.FormValue("format"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()

		assert.Equal(t, "produtos.csv", hdr.Filename)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"imported": 2, "products": []}`))
	})

	n, err := c.ImportCatalog(context.Background(), "legacy", "/tmp/exports/produtos.csv", strings.NewReader("Cod;Produto;Preço\n1;BALA;0,25\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
