package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/caixa/internal/catalog"
	"github.com/MrJamesThe3rd/caixa/internal/ledger"
	"github.com/MrJamesThe3rd/caixa/internal/till"
)

//go:embed schema.sql
var schema string

type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

var _ ledger.Repository = (*Postgres)(nil)

// Migrate creates the tables when they do not exist yet.
func (s *Postgres) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}

	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func (s *Postgres) ListTerminals(ctx context.Context) ([]till.Terminal, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, status FROM terminals ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing terminals: %w", err)
	}
	defer rows.Close()

	var out []till.Terminal

	for rows.Next() {
		var t till.Terminal
		if err := rows.Scan(&t.ID, &t.Name, &t.Status); err != nil {
			return nil, fmt.Errorf("scanning terminal: %w", err)
		}

		out = append(out, t)
	}

	return out, rows.Err()
}

func (s *Postgres) GetOperator(ctx context.Context, id string) (*ledger.Operator, error) {
	var op ledger.Operator

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, password_hash, active FROM operators WHERE id = $1`, id,
	).Scan(&op.ID, &op.Name, &op.PasswordHash, &op.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrOperatorNotFound
		}

		return nil, fmt.Errorf("getting operator: %w", err)
	}

	return &op, nil
}

func (s *Postgres) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, code, name, price, COALESCE(category_id, 0), active FROM products ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	var out []catalog.Product

	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Price, &p.CategoryID, &p.Active); err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}

		out = append(out, p)
	}

	return out, rows.Err()
}

func (s *Postgres) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var out []catalog.Category

	for rows.Next() {
		var c catalog.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}

		out = append(out, c)
	}

	return out, rows.Err()
}

func (s *Postgres) ListPaymentMethods(ctx context.Context) ([]catalog.PaymentMethod, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, accepts_change, active FROM payment_methods ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing payment methods: %w", err)
	}
	defer rows.Close()

	var out []catalog.PaymentMethod

	for rows.Next() {
		var m catalog.PaymentMethod
		if err := rows.Scan(&m.ID, &m.Name, &m.AcceptsChange, &m.Active); err != nil {
			return nil, fmt.Errorf("scanning payment method: %w", err)
		}

		out = append(out, m)
	}

	return out, rows.Err()
}

// SaveProducts upserts by product code in a single transaction.
func (s *Postgres) SaveProducts(ctx context.Context, products []catalog.Product) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO products (code, name, price, category_id, active)
		VALUES ($1, $2, $3, NULLIF($4, 0), $5)
		ON CONFLICT (code) DO UPDATE
		SET name = EXCLUDED.name, price = EXCLUDED.price, category_id = EXCLUDED.category_id, active = EXCLUDED.active
		RETURNING id
	`

	for i := range products {
		p := &products[i]
		if err := dbTx.QueryRowContext(ctx, query, p.Code, p.Name, p.Price, p.CategoryID, p.Active).Scan(&p.ID); err != nil {
			return fmt.Errorf("saving product %s: %w", p.Code, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing products: %w", err)
	}

	return nil
}

type pgTx struct {
	tx       *sql.Tx
	terminal till.Terminal
}

// Begin locks the terminal row for the rest of the transaction.
func (s *Postgres) Begin(ctx context.Context, terminalID int64) (ledger.Tx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}

	var t till.Terminal

	err = dbTx.QueryRowContext(ctx,
		`SELECT id, name, status FROM terminals WHERE id = $1 FOR UPDATE`, terminalID,
	).Scan(&t.ID, &t.Name, &t.Status)
	if err != nil {
		dbTx.Rollback()

		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrTerminalNotFound
		}

		return nil, fmt.Errorf("locking terminal: %w", err)
	}

	return &pgTx{tx: dbTx, terminal: t}, nil
}

func (t *pgTx) Terminal() till.Terminal { return t.terminal }
func (t *pgTx) Commit() error           { return t.tx.Commit() }

func (t *pgTx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}

	return nil
}

func (t *pgTx) CurrentSession(ctx context.Context) (*ledger.TillSession, error) {
	var ts ledger.TillSession

	err := t.tx.QueryRowContext(ctx, `
		SELECT id, terminal_id, operator_id, opening_float, closing_float, opened_at, closed_at
		FROM till_sessions
		WHERE terminal_id = $1 AND closed_at IS NULL`, t.terminal.ID,
	).Scan(&ts.ID, &ts.TerminalID, &ts.OperatorID, &ts.OpeningFloat, &ts.ClosingFloat, &ts.OpenedAt, &ts.ClosedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrTillClosed
		}

		return nil, fmt.Errorf("getting open session: %w", err)
	}

	return &ts, nil
}

func (t *pgTx) OpenSession(ctx context.Context, ts *ledger.TillSession) error {
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO till_sessions (terminal_id, operator_id, opening_float, opened_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		ts.TerminalID, ts.OperatorID, ts.OpeningFloat, ts.OpenedAt,
	).Scan(&ts.ID)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}

	return t.setStatus(ctx, till.StatusOpen)
}

func (t *pgTx) SetSessionOperator(ctx context.Context, sessionID uuid.UUID, operatorID string) error {
	_, err := t.tx.ExecContext(ctx, `UPDATE till_sessions SET operator_id = $1 WHERE id = $2`, operatorID, sessionID)
	if err != nil {
		return fmt.Errorf("updating session operator: %w", err)
	}

	return nil
}

func (t *pgTx) CloseSession(ctx context.Context, ts *ledger.TillSession) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE till_sessions SET closing_float = $1, closed_at = $2 WHERE id = $3`,
		ts.ClosingFloat, ts.ClosedAt, ts.ID,
	)
	if err != nil {
		return fmt.Errorf("closing session: %w", err)
	}

	return t.setStatus(ctx, till.StatusClosed)
}

func (t *pgTx) setStatus(ctx context.Context, status till.Status) error {
	if _, err := t.tx.ExecContext(ctx, `UPDATE terminals SET status = $1 WHERE id = $2`, status, t.terminal.ID); err != nil {
		return fmt.Errorf("updating terminal status: %w", err)
	}

	t.terminal.Status = status

	return nil
}

func (t *pgTx) CreateSale(ctx context.Context, sessionID uuid.UUID, sale *till.Sale) error {
	err := t.tx.QueryRowContext(ctx,
		`UPDATE terminals SET last_sale_number = last_sale_number + 1 WHERE id = $1 RETURNING last_sale_number`,
		t.terminal.ID,
	).Scan(&sale.Number)
	if err != nil {
		return fmt.Errorf("allocating sale number: %w", err)
	}

	err = t.tx.QueryRowContext(ctx, `
		INSERT INTO sales (session_id, terminal_id, number, value, payment_method_id, payment_method, status, operator_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		sessionID, sale.TerminalID, sale.Number, sale.Value, sale.PaymentMethodID, sale.PaymentMethod,
		sale.Status, sale.OperatorID, sale.CreatedAt,
	).Scan(&sale.ID)
	if err != nil {
		return fmt.Errorf("inserting sale: %w", err)
	}

	for i, l := range sale.Lines {
		_, err := t.tx.ExecContext(ctx, `
			INSERT INTO sale_lines (sale_id, position, product_id, name, unit_price, quantity)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			sale.ID, i, l.ProductID, l.Name, l.UnitPrice, l.Quantity,
		)
		if err != nil {
			return fmt.Errorf("inserting sale line: %w", err)
		}
	}

	return nil
}

const selectSaleColumns = `
	id, number, terminal_id, value, payment_method_id, payment_method, status, operator_id, created_at, cancelled_at
`

func scanSale(s scanner) (*till.Sale, error) {
	var sale till.Sale

	if err := s.Scan(
		&sale.ID, &sale.Number, &sale.TerminalID, &sale.Value, &sale.PaymentMethodID, &sale.PaymentMethod,
		&sale.Status, &sale.OperatorID, &sale.CreatedAt, &sale.CancelledAt,
	); err != nil {
		return nil, err
	}

	return &sale, nil
}

func (t *pgTx) oneSale(ctx context.Context, query string, args ...any) (*till.Sale, error) {
	sale, err := scanSale(t.tx.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrSaleNotFound
		}

		return nil, fmt.Errorf("getting sale: %w", err)
	}

	if err := t.loadLines(ctx, sale); err != nil {
		return nil, err
	}

	return sale, nil
}

func (t *pgTx) LastSale(ctx context.Context, sessionID uuid.UUID) (*till.Sale, error) {
	return t.oneSale(ctx,
		`SELECT `+selectSaleColumns+` FROM sales WHERE session_id = $1 ORDER BY number DESC LIMIT 1`,
		sessionID)
}

func (t *pgTx) SaleByNumber(ctx context.Context, sessionID uuid.UUID, number int64) (*till.Sale, error) {
	return t.oneSale(ctx,
		`SELECT `+selectSaleColumns+` FROM sales WHERE session_id = $1 AND number = $2`,
		sessionID, number)
}

func (t *pgTx) CancelSale(ctx context.Context, sale *till.Sale) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE sales SET status = $1, cancelled_at = $2 WHERE id = $3 AND cancelled_at IS NULL`,
		sale.Status, sale.CancelledAt, sale.ID,
	)
	if err != nil {
		return fmt.Errorf("cancelling sale: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrSaleCancelled
	}

	return nil
}

func (t *pgTx) SessionSales(ctx context.Context, sessionID uuid.UUID) ([]till.Sale, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT `+selectSaleColumns+` FROM sales WHERE session_id = $1 ORDER BY number`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing sales: %w", err)
	}

	var sales []till.Sale

	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning sale: %w", err)
		}

		sales = append(sales, *sale)
	}

	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating sales: %w", err)
	}

	rows.Close()

	for i := range sales {
		if err := t.loadLines(ctx, &sales[i]); err != nil {
			return nil, err
		}
	}

	return sales, nil
}

func (t *pgTx) loadLines(ctx context.Context, sale *till.Sale) error {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT product_id, name, unit_price, quantity FROM sale_lines WHERE sale_id = $1 ORDER BY position`, sale.ID)
	if err != nil {
		return fmt.Errorf("listing sale lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l till.SaleLine
		if err := rows.Scan(&l.ProductID, &l.Name, &l.UnitPrice, &l.Quantity); err != nil {
			return fmt.Errorf("scanning sale line: %w", err)
		}

		sale.Lines = append(sale.Lines, l)
	}

	return rows.Err()
}

func (t *pgTx) CreateDrawerOperation(ctx context.Context, sessionID uuid.UUID, op *till.DrawerOperation) error {
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO drawer_operations (session_id, terminal_id, kind, amount, reason, operator_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		sessionID, op.TerminalID, op.Kind, op.Amount, op.Reason, op.OperatorID, op.CreatedAt,
	).Scan(&op.ID)
	if err != nil {
		return fmt.Errorf("inserting drawer operation: %w", err)
	}

	return nil
}

func (t *pgTx) SessionDrawerOperations(ctx context.Context, sessionID uuid.UUID) ([]till.DrawerOperation, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, terminal_id, kind, amount, reason, operator_id, created_at
		FROM drawer_operations WHERE session_id = $1 ORDER BY created_at`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing drawer operations: %w", err)
	}
	defer rows.Close()

	var out []till.DrawerOperation

	for rows.Next() {
		var op till.DrawerOperation
		if err := rows.Scan(&op.ID, &op.TerminalID, &op.Kind, &op.Amount, &op.Reason, &op.OperatorID, &op.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning drawer operation: %w", err)
		}

		out = append(out, op)
	}

	return out, rows.Err()
}

// Seed inserts reference data for a fresh installation. Existing rows are kept.
func (s *Postgres) Seed(ctx context.Context, seed Seed) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	for _, t := range seed.Terminals {
		if _, err := dbTx.ExecContext(ctx,
			`INSERT INTO terminals (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`, t.ID, t.Name); err != nil {
			return fmt.Errorf("seeding terminal %d: %w", t.ID, err)
		}
	}

	for _, op := range seed.Operators {
		if _, err := dbTx.ExecContext(ctx,
			`INSERT INTO operators (id, name, password_hash, active) VALUES ($1, $2, $3, $4) ON CONFLICT (id) DO NOTHING`,
			op.ID, op.Name, op.PasswordHash, op.Active); err != nil {
			return fmt.Errorf("seeding operator %s: %w", op.ID, err)
		}
	}

	for _, c := range seed.Categories {
		if _, err := dbTx.ExecContext(ctx,
			`INSERT INTO categories (id, name) VALUES ($1, $2) ON CONFLICT DO NOTHING`, c.ID, c.Name); err != nil {
			return fmt.Errorf("seeding category %s: %w", c.Name, err)
		}
	}

	for _, m := range seed.Methods {
		if _, err := dbTx.ExecContext(ctx,
			`INSERT INTO payment_methods (id, name, accepts_change, active) VALUES ($1, $2, $3, $4) ON CONFLICT DO NOTHING`,
			m.ID, m.Name, m.AcceptsChange, m.Active); err != nil {
			return fmt.Errorf("seeding payment method %s: %w", m.Name, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing seed: %w", err)
	}

	if len(seed.Products) > 0 {
		return s.SaveProducts(ctx, seed.Products)
	}

	return nil
}
