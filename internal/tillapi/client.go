package tillapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/caixa/internal/catalog"
	"github.com/MrJamesThe3rd/caixa/internal/session"
	"github.com/MrJamesThe3rd/caixa/internal/till"
)

// APIError is a non-2xx answer from the till server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("till server returned %d: %s", e.Status, e.Message)
}

// UserMessage is the server's own wording, shown to the operator as is.
func (e *APIError) UserMessage() string {
	if e.Message == "" {
		return http.StatusText(e.Status)
	}

	return e.Message
}

// Client talks to the till server over HTTP/JSON.
type Client struct {
	baseURL  string
	apiToken string
	client   *http.Client
}

func NewClient(baseURL, apiToken string, timeout time.Duration) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/") + "/api/v1",
		apiToken: apiToken,
		client:   &http.Client{Timeout: timeout},
	}
}

var _ till.Backend = (*Client)(nil)

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader

	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}

		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")

	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return apiErr
	}

	var body errorResponse
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		apiErr.Message = body.Error
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}

	return apiErr
}

func terminalPath(id int64, parts ...string) string {
	return "/terminals/" + strconv.FormatInt(id, 10) + strings.Join(append([]string{""}, parts...), "/")
}

func (c *Client) ListTerminals(ctx context.Context) ([]till.Terminal, error) {
	var resp []terminalResponse
	if err := c.do(ctx, http.MethodGet, "/terminals", nil, &resp); err != nil {
		return nil, err
	}

	out := make([]till.Terminal, len(resp))
	for i, t := range resp {
		out[i] = till.Terminal{ID: t.ID, Name: t.Name, Status: t.Status}
	}

	return out, nil
}

func (c *Client) OpenTill(ctx context.Context, terminalID, openingFloat int64, creds session.Credentials) (*till.Session, error) {
	var resp sessionResponse

	req := openRequest{credentialsDTO: toCredentials(creds), OpeningFloat: openingFloat}
	if err := c.do(ctx, http.MethodPost, terminalPath(terminalID, "open"), req, &resp); err != nil {
		return nil, err
	}

	return resp.toDomain(), nil
}

func (c *Client) CloseTill(ctx context.Context, terminalID int64, creds session.Credentials) (*till.SettlementSummary, error) {
	var resp summaryResponse
	if err := c.do(ctx, http.MethodPost, terminalPath(terminalID, "close"), toCredentials(creds), &resp); err != nil {
		return nil, err
	}

	return resp.toDomain(), nil
}

func (c *Client) ChangeOperator(ctx context.Context, terminalID int64, creds session.Credentials) error {
	return c.do(ctx, http.MethodPost, terminalPath(terminalID, "operator"), toCredentials(creds), nil)
}

func (c *Client) RegisterSale(ctx context.Context, r till.SaleRequest) (*till.Sale, error) {
	req := saleRequest{
		credentialsDTO:  toCredentials(r.Credentials),
		PaymentMethodID: r.PaymentMethodID,
		Total:           r.Total,
		Received:        r.Received,
		Lines:           make([]saleLineDTO, len(r.Lines)),
	}

	for i, l := range r.Lines {
		req.Lines[i] = saleLineDTO{ProductID: l.ProductID, Name: l.Name, UnitPrice: l.UnitPrice, Quantity: l.Quantity}
	}

	return c.sale(ctx, terminalPath(r.TerminalID, "sales"), req)
}

func (c *Client) CancelLastSale(ctx context.Context, terminalID int64, creds session.Credentials) (*till.Sale, error) {
	return c.sale(ctx, terminalPath(terminalID, "sales", "last", "cancel"), toCredentials(creds))
}

func (c *Client) CancelSale(ctx context.Context, terminalID, number int64, creds session.Credentials) (*till.Sale, error) {
	return c.sale(ctx, terminalPath(terminalID, "sales", strconv.FormatInt(number, 10), "cancel"), toCredentials(creds))
}

func (c *Client) ReprintLast(ctx context.Context, terminalID int64, creds session.Credentials) (*till.Sale, error) {
	return c.sale(ctx, terminalPath(terminalID, "sales", "last", "reprint"), toCredentials(creds))
}

func (c *Client) ReprintSale(ctx context.Context, terminalID, number int64, creds session.Credentials) (*till.Sale, error) {
	return c.sale(ctx, terminalPath(terminalID, "sales", strconv.FormatInt(number, 10), "reprint"), toCredentials(creds))
}

func (c *Client) sale(ctx context.Context, path string, body any) (*till.Sale, error) {
	var resp saleResponse
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}

	sale := resp.toDomain()

	return &sale, nil
}

func (c *Client) Withdraw(ctx context.Context, r till.DrawerRequest) (*till.DrawerOperation, error) {
	return c.drawer(ctx, terminalPath(r.TerminalID, "withdrawals"), r)
}

func (c *Client) Supply(ctx context.Context, r till.DrawerRequest) (*till.DrawerOperation, error) {
	return c.drawer(ctx, terminalPath(r.TerminalID, "supplies"), r)
}

func (c *Client) drawer(ctx context.Context, path string, r till.DrawerRequest) (*till.DrawerOperation, error) {
	var resp drawerResponse

	req := drawerRequest{credentialsDTO: toCredentials(r.Credentials), Amount: r.Amount, Reason: r.Reason}
	if err := c.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}

	op := resp.toDomain()

	return &op, nil
}

func (c *Client) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	var resp []productResponse
	if err := c.do(ctx, http.MethodGet, "/products", nil, &resp); err != nil {
		return nil, err
	}

	out := make([]catalog.Product, len(resp))
	for i, p := range resp {
		out[i] = catalog.Product{ID: p.ID, Code: p.Code, Name: p.Name, Price: p.Price, CategoryID: p.CategoryID, Active: p.Active}
	}

	return out, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	var resp []categoryResponse
	if err := c.do(ctx, http.MethodGet, "/categories", nil, &resp); err != nil {
		return nil, err
	}

	out := make([]catalog.Category, len(resp))
	for i, cat := range resp {
		out[i] = catalog.Category{ID: cat.ID, Name: cat.Name}
	}

	return out, nil
}

func (c *Client) ListPaymentMethods(ctx context.Context) ([]catalog.PaymentMethod, error) {
	var resp []paymentMethodResponse
	if err := c.do(ctx, http.MethodGet, "/payment-methods", nil, &resp); err != nil {
		return nil, err
	}

	out := make([]catalog.PaymentMethod, len(resp))
	for i, m := range resp {
		out[i] = m.toDomain()
	}

	return out, nil
}

// IsStatus reports whether err is an APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
