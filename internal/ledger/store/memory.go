package store

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/caixa/internal/catalog"
	"github.com/MrJamesThe3rd/caixa/internal/ledger"
	"github.com/MrJamesThe3rd/caixa/internal/till"
)

type memSale struct {
	sessionID uuid.UUID
	sale      till.Sale
}

type memDrawerOp struct {
	sessionID uuid.UUID
	op        till.DrawerOperation
}

type terminalState struct {
	terminal   till.Terminal
	sessions   []ledger.TillSession
	sales      []memSale
	drawer     []memDrawerOp
	lastNumber int64
}

func (s *terminalState) clone() *terminalState {
	c := *s
	c.sessions = slices.Clone(s.sessions)
	c.sales = slices.Clone(s.sales)
	c.drawer = slices.Clone(s.drawer)

	return &c
}

// Memory is a process-local Repository, used by tests and by the API when no
// database is configured.
type Memory struct {
	mu         sync.Mutex
	order      []int64
	terminals  map[int64]*terminalState
	locks      map[int64]*sync.Mutex
	operators  map[string]ledger.Operator
	products   []catalog.Product
	categories []catalog.Category
	methods    []catalog.PaymentMethod
}

func NewMemory() *Memory {
	return &Memory{
		terminals: make(map[int64]*terminalState),
		locks:     make(map[int64]*sync.Mutex),
		operators: make(map[string]ledger.Operator),
	}
}

var _ ledger.Repository = (*Memory)(nil)

func (m *Memory) AddTerminal(t till.Terminal) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t.Status == "" {
		t.Status = till.StatusClosed
	}

	if _, ok := m.terminals[t.ID]; !ok {
		m.order = append(m.order, t.ID)
		m.locks[t.ID] = &sync.Mutex{}
	}

	m.terminals[t.ID] = &terminalState{terminal: t}
}

func (m *Memory) AddOperator(op ledger.Operator) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.operators[op.ID] = op
}

func (m *Memory) SetCategories(categories []catalog.Category) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.categories = slices.Clone(categories)
}

func (m *Memory) SetPaymentMethods(methods []catalog.PaymentMethod) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.methods = slices.Clone(methods)
}

func (m *Memory) ListTerminals(_ context.Context) ([]till.Terminal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]till.Terminal, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.terminals[id].terminal)
	}

	return out, nil
}

func (m *Memory) GetOperator(_ context.Context, id string) (*ledger.Operator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	op, ok := m.operators[id]
	if !ok {
		return nil, ledger.ErrOperatorNotFound
	}

	return &op, nil
}

func (m *Memory) ListProducts(_ context.Context) ([]catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.products), nil
}

func (m *Memory) ListCategories(_ context.Context) ([]catalog.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.categories), nil
}

func (m *Memory) ListPaymentMethods(_ context.Context) ([]catalog.PaymentMethod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.methods), nil
}

// SaveProducts upserts by product code, assigning ids to new products.
func (m *Memory) SaveProducts(_ context.Context, products []catalog.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var nextID int64
	for _, p := range m.products {
		nextID = max(nextID, p.ID)
	}

	for _, p := range products {
		i := slices.IndexFunc(m.products, func(e catalog.Product) bool { return e.Code == p.Code })
		if i >= 0 {
			p.ID = m.products[i].ID
			m.products[i] = p

			continue
		}

		nextID++
		p.ID = nextID
		m.products = append(m.products, p)
	}

	return nil
}

func (m *Memory) Begin(_ context.Context, terminalID int64) (ledger.Tx, error) {
	m.mu.Lock()
	lock, ok := m.locks[terminalID]
	m.mu.Unlock()

	if !ok {
		return nil, ledger.ErrTerminalNotFound
	}

	lock.Lock()

	m.mu.Lock()
	state := m.terminals[terminalID].clone()
	m.mu.Unlock()

	return &memTx{m: m, lock: lock, state: state}, nil
}

type memTx struct {
	m     *Memory
	lock  *sync.Mutex
	state *terminalState
	done  bool
}

func (tx *memTx) Terminal() till.Terminal { return tx.state.terminal }

func (tx *memTx) Commit() error {
	if tx.done {
		return nil
	}

	tx.m.mu.Lock()
	tx.m.terminals[tx.state.terminal.ID] = tx.state
	tx.m.mu.Unlock()

	tx.finish()

	return nil
}

func (tx *memTx) Rollback() error {
	if !tx.done {
		tx.finish()
	}

	return nil
}

func (tx *memTx) finish() {
	tx.done = true
	tx.lock.Unlock()
}

func (tx *memTx) openIndex() int {
	return slices.IndexFunc(tx.state.sessions, func(s ledger.TillSession) bool { return s.ClosedAt == nil })
}

func (tx *memTx) CurrentSession(_ context.Context) (*ledger.TillSession, error) {
	i := tx.openIndex()
	if i < 0 {
		return nil, ledger.ErrTillClosed
	}

	s := tx.state.sessions[i]

	return &s, nil
}

func (tx *memTx) OpenSession(_ context.Context, s *ledger.TillSession) error {
	if tx.openIndex() >= 0 {
		return ledger.ErrTillOpen
	}

	s.ID = uuid.New()
	tx.state.sessions = append(tx.state.sessions, *s)
	tx.state.terminal.Status = till.StatusOpen

	return nil
}

func (tx *memTx) SetSessionOperator(_ context.Context, sessionID uuid.UUID, operatorID string) error {
	for i := range tx.state.sessions {
		if tx.state.sessions[i].ID == sessionID {
			tx.state.sessions[i].OperatorID = operatorID
			return nil
		}
	}

	return ledger.ErrTillClosed
}

func (tx *memTx) CloseSession(_ context.Context, s *ledger.TillSession) error {
	for i := range tx.state.sessions {
		if tx.state.sessions[i].ID == s.ID {
			tx.state.sessions[i] = *s
			tx.state.terminal.Status = till.StatusClosed

			return nil
		}
	}

	return ledger.ErrTillClosed
}

func (tx *memTx) CreateSale(_ context.Context, sessionID uuid.UUID, sale *till.Sale) error {
	tx.state.lastNumber++
	sale.ID = uuid.New()
	sale.Number = tx.state.lastNumber
	tx.state.sales = append(tx.state.sales, memSale{sessionID: sessionID, sale: copySale(*sale)})

	return nil
}

func (tx *memTx) LastSale(_ context.Context, sessionID uuid.UUID) (*till.Sale, error) {
	for i := len(tx.state.sales) - 1; i >= 0; i-- {
		if tx.state.sales[i].sessionID == sessionID {
			s := copySale(tx.state.sales[i].sale)
			return &s, nil
		}
	}

	return nil, ledger.ErrSaleNotFound
}

func (tx *memTx) SaleByNumber(_ context.Context, sessionID uuid.UUID, number int64) (*till.Sale, error) {
	for _, ms := range tx.state.sales {
		if ms.sessionID == sessionID && ms.sale.Number == number {
			s := copySale(ms.sale)
			return &s, nil
		}
	}

	return nil, ledger.ErrSaleNotFound
}

func (tx *memTx) CancelSale(_ context.Context, sale *till.Sale) error {
	for i := range tx.state.sales {
		if tx.state.sales[i].sale.ID == sale.ID {
			tx.state.sales[i].sale.Status = sale.Status
			tx.state.sales[i].sale.CancelledAt = sale.CancelledAt

			return nil
		}
	}

	return ledger.ErrSaleNotFound
}

func (tx *memTx) SessionSales(_ context.Context, sessionID uuid.UUID) ([]till.Sale, error) {
	var out []till.Sale

	for _, ms := range tx.state.sales {
		if ms.sessionID == sessionID {
			out = append(out, copySale(ms.sale))
		}
	}

	return out, nil
}

func (tx *memTx) CreateDrawerOperation(_ context.Context, sessionID uuid.UUID, op *till.DrawerOperation) error {
	op.ID = uuid.New()
	tx.state.drawer = append(tx.state.drawer, memDrawerOp{sessionID: sessionID, op: *op})

	return nil
}

func (tx *memTx) SessionDrawerOperations(_ context.Context, sessionID uuid.UUID) ([]till.DrawerOperation, error) {
	var out []till.DrawerOperation

	for _, d := range tx.state.drawer {
		if d.sessionID == sessionID {
			out = append(out, d.op)
		}
	}

	return out, nil
}

func copySale(s till.Sale) till.Sale {
	s.Lines = slices.Clone(s.Lines)
	return s
}
