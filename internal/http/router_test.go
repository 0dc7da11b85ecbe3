package http_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/caixa/internal/cart"
	"github.com/MrJamesThe3rd/caixa/internal/catalog"
	"github.com/MrJamesThe3rd/caixa/internal/checkout"
	caixahttp "github.com/MrJamesThe3rd/caixa/internal/http"
	cataloghandler "github.com/MrJamesThe3rd/caixa/internal/http/catalog"
	"github.com/MrJamesThe3rd/caixa/internal/http/importcsv"
	tillhandler "github.com/MrJamesThe3rd/caixa/internal/http/till"
	"github.com/MrJamesThe3rd/caixa/internal/importer"
	"github.com/MrJamesThe3rd/caixa/internal/ledger"
	"github.com/MrJamesThe3rd/caixa/internal/ledger/store"
	"github.com/MrJamesThe3rd/caixa/internal/prompt"
	"github.com/MrJamesThe3rd/caixa/internal/session"
	"github.com/MrJamesThe3rd/caixa/internal/settlement"
	"github.com/MrJamesThe3rd/caixa/internal/till"
	"github.com/MrJamesThe3rd/caixa/internal/tillapi"
)

const secret = "test-secret"

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	seed, err := store.DefaultSeed(map[string]string{"1": "1234"})
	require.NoError(t, err)

	seed.Products = []catalog.Product{
		{Code: "001", Name: "CAFE", Price: 450, CategoryID: 1, Active: true},
		{Code: "002", Name: "PAO DE QUEIJO", Price: 600, CategoryID: 2, Active: true},
		{Code: "003", Name: "ANTIGO", Price: 100, Active: false},
	}

	mem := store.NewMemory()
	mem.Apply(seed)

	reg := prometheus.NewRegistry()
	svc := ledger.NewService(mem, ledger.WithMetrics(ledger.NewMetrics(reg)))

	router := caixahttp.New(
		caixahttp.Options{AuthSecret: secret, RateLimit: 1000, Timeout: 5 * time.Second, Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})},
		tillhandler.NewHandler(svc),
		cataloghandler.NewHandler(svc),
		importcsv.NewHandler(importer.NewService(), svc),
	)

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	return ts
}

func newClient(t *testing.T, ts *httptest.Server) *tillapi.Client {
	t.Helper()

	token, err := caixahttp.IssueToken(secret, "pdv-test", time.Hour, time.Now())
	require.NoError(t, err)

	return tillapi.NewClient(ts.URL, token, 5*time.Second)
}

func feed(t *testing.T, seq *prompt.Sequence, inputs ...string) prompt.Completed {
	t.Helper()

	var done *prompt.Completed

	for _, in := range inputs {
		for _, r := range in {
			require.True(t, seq.Type(r))
		}

		c, err := seq.Submit()
		require.NoError(t, err)

		done = c
	}

	require.NotNil(t, done)

	return *done
}

func TestEndToEnd_SaleAppearsInSettlement(t *testing.T) {
	ts := newServer(t)
	client := newClient(t, ts)
	ctx := context.Background()

	terminals, err := client.ListTerminals(ctx)
	require.NoError(t, err)
	require.Len(t, terminals, 2)

	sess := session.New(session.DefaultTTL)
	capture := prompt.NewCapture()
	ctrl := till.NewController(client, sess, capture, nil)

	seq, err := ctrl.Select(terminals[0])
	require.NoError(t, err)
	require.NotNil(t, seq, "a closed terminal must ask for the opening float")

	_, err = ctrl.Execute(ctx, feed(t, seq, "100", "1", "1234"))
	require.NoError(t, err)
	require.Equal(t, till.StateActive, ctrl.State())

	products, err := client.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)

	priceA, priceB := products[0].Price, products[1].Price

	c := cart.New()
	c.Add(products[0], 2)
	c.Add(products[1], 1)

	methods := ctrl.Methods()
	require.NotEmpty(t, methods, "open-till returns the terminal's methods")

	var cash catalog.PaymentMethod

	for _, m := range methods {
		if m.AcceptsChange {
			cash = m
		}
	}

	require.True(t, cash.AcceptsChange)

	flow := checkout.New(client, sess, capture, nil, terminals[0].ID, methods)
	require.NoError(t, flow.Open(c))
	assert.False(t, ctrl.ShortcutsEnabled())

	require.NoError(t, flow.SelectMethod(cash.ID))
	assert.False(t, flow.CanConfirm())

	flow.SetReceived("200")
	require.True(t, flow.CanConfirm())

	change, shown := flow.Change(c.Total())
	require.True(t, shown)
	assert.Equal(t, 20000-(2*priceA+priceB), change)

	sale, err := flow.Confirm(ctx, c)
	require.NoError(t, err)
	assert.True(t, c.Empty())
	assert.True(t, ctrl.ShortcutsEnabled())

	seq, err = ctrl.Begin(till.ActionCloseTill)
	require.NoError(t, err)

	out, err := ctrl.Execute(ctx, feed(t, seq, "1", "1234"))
	require.NoError(t, err)

	summary := out.Summary
	require.NotNil(t, summary)
	require.Len(t, summary.Sales, 1)
	assert.Equal(t, sale.Number, summary.Sales[0].Number)
	assert.False(t, summary.Sales[0].Cancelled())
	assert.Equal(t, int64(10000)+2*priceA+priceB, summary.ClosingFloat)

	lines, count, total := settlement.Breakdown(summary)
	assert.Equal(t, []till.MethodTotal{{Method: cash.Name, Count: 1, Total: 2*priceA + priceB}}, lines)
	assert.Equal(t, 1, count)
	assert.Equal(t, 2*priceA+priceB, total)

	require.NoError(t, ctrl.ContinueSettlement())
	_, err = ctrl.AnswerPrint(false)
	require.NoError(t, err)
	require.NoError(t, ctrl.Finalize())

	assert.Equal(t, till.StateUnselected, ctrl.State())
	assert.Empty(t, sess.OperatorID())

	terminals, err = client.ListTerminals(ctx)
	require.NoError(t, err)
	assert.Equal(t, till.StatusClosed, terminals[0].Status)
}

func TestEndToEnd_RejectionKeepsCart(t *testing.T) {
	ts := newServer(t)
	client := newClient(t, ts)
	ctx := context.Background()

	sess := session.New(session.DefaultTTL)
	ctrl := till.NewController(client, sess, nil, nil)

	seq, err := ctrl.Select(till.Terminal{ID: 1, Status: till.StatusClosed})
	require.NoError(t, err)

	_, err = ctrl.Execute(ctx, feed(t, seq, "50", "1", "1234"))
	require.NoError(t, err)

	c := cart.New()
	c.Add(catalog.Product{ID: 1, Name: "CAFE", Price: 450}, 3)

	seq, err = ctrl.Begin(till.ActionCancelByNumber)
	require.NoError(t, err)

	_, err = ctrl.Execute(ctx, feed(t, seq, "99"))
	require.Error(t, err)

	assert.Equal(t, 0, seq.Index())
	assert.Equal(t, ledger.ErrSaleNotFound.Error(), seq.Err())
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, int64(1350), c.Total())

	require.True(t, ctrl.Cancel())

	seq, err = ctrl.Begin(till.ActionWithdraw)
	require.NoError(t, err)

	_, err = ctrl.Execute(ctx, feed(t, seq, "999", "BANCO"))
	require.NoError(t, err)
}

func TestRouter_StatusCodes(t *testing.T) {
	ts := newServer(t)

	token, err := caixahttp.IssueToken(secret, "pdv-test", time.Hour, time.Now())
	require.NoError(t, err)

	wrongKey, err := caixahttp.IssueToken("other", "pdv-test", time.Hour, time.Now())
	require.NoError(t, err)

	expired, err := caixahttp.IssueToken(secret, "pdv-test", time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		body       string
		wantStatus int
		wantBody   string
	}{
		{name: "health is public", method: http.MethodGet, path: "/health", wantStatus: http.StatusOK},
		{name: "metrics is public", method: http.MethodGet, path: "/metrics", wantStatus: http.StatusOK},
		{name: "missing token", method: http.MethodGet, path: "/api/v1/terminals", wantStatus: http.StatusUnauthorized},
		{name: "wrong signing key", method: http.MethodGet, path: "/api/v1/terminals", token: wrongKey, wantStatus: http.StatusUnauthorized},
		{name: "expired token", method: http.MethodGet, path: "/api/v1/terminals", token: expired, wantStatus: http.StatusUnauthorized},
		{name: "list terminals", method: http.MethodGet, path: "/api/v1/terminals", token: token, wantStatus: http.StatusOK, wantBody: `"PDV 01"`},
		{name: "bad password", method: http.MethodPost, path: "/api/v1/terminals/1/open", token: token,
			body: `{"operator_id":"1","password":"x","opening_float":0}`, wantStatus: http.StatusUnauthorized, wantBody: ledger.ErrInvalidCredentials.Error()},
		{name: "unknown terminal", method: http.MethodPost, path: "/api/v1/terminals/9/open", token: token,
			body: `{"operator_id":"1","password":"1234","opening_float":0}`, wantStatus: http.StatusNotFound},
		{name: "closed till", method: http.MethodPost, path: "/api/v1/terminals/1/withdrawals", token: token,
			body: `{"operator_id":"1","password":"1234","amount":100,"reason":"X"}`, wantStatus: http.StatusConflict},
		{name: "negative float", method: http.MethodPost, path: "/api/v1/terminals/1/open", token: token,
			body: `{"operator_id":"1","password":"1234","opening_float":-5}`, wantStatus: http.StatusUnprocessableEntity},
		{name: "bad terminal id", method: http.MethodPost, path: "/api/v1/terminals/abc/open", token: token,
			body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "bad sale number", method: http.MethodPost, path: "/api/v1/terminals/1/sales/0/cancel", token: token,
			body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "malformed body", method: http.MethodPost, path: "/api/v1/terminals/1/close", token: token,
			body: `{`, wantStatus: http.StatusBadRequest},
		{name: "active products only", method: http.MethodGet, path: "/api/v1/products", token: token,
			wantStatus: http.StatusOK, wantBody: `"PAO DE QUEIJO"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, ts.URL+tt.path, strings.NewReader(tt.body))
			require.NoError(t, err)

			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}

			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantBody != "" {
				buf := new(strings.Builder)
				_, err := io.Copy(buf, resp.Body)
				require.NoError(t, err)
				assert.Contains(t, buf.String(), tt.wantBody)
			}
		})
	}
}

func TestRouter_ImportCatalog(t *testing.T) {
	ts := newServer(t)
	client := newClient(t, ts)

	token, err := caixahttp.IssueToken(secret, "backoffice", time.Hour, time.Now())
	require.NoError(t, err)

	upload := func(t *testing.T, content string) *http.Response {
		t.Helper()

		var body bytes.Buffer

		mw := multipart.NewWriter(&body)
		require.NoError(t, mw.WriteField("format", "legacy"))

		fw, err := mw.CreateFormFile("file", "produtos.csv")
		require.NoError(t, err)

		_, err = io.WriteString(fw, content)
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/products/import", &body)
		require.NoError(t, err)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })

		return resp
	}

	resp := upload(t, "Código;Descrição;Preço Venda;Grupo\n001;Café coado;5,00;Bebidas\n010;Empada;8,50;Lanches\n")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	products, err := client.ListProducts(context.Background())
	require.NoError(t, err)

	byCode := make(map[string]catalog.Product)
	for _, p := range products {
		byCode[p.Code] = p
	}

	require.Contains(t, byCode, "001")
	assert.Equal(t, "CAFÉ COADO", byCode["001"].Name)
	assert.Equal(t, int64(500), byCode["001"].Price)
	assert.Equal(t, int64(1), byCode["001"].CategoryID)

	require.Contains(t, byCode, "010")
	assert.Equal(t, int64(2), byCode["010"].CategoryID)

	bad := upload(t, "Data;Valor\n01/01/2026;10,00\n")
	assert.Equal(t, http.StatusUnprocessableEntity, bad.StatusCode)
}
