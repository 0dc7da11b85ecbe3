package store

import (
	"context"
	"fmt"

	"github.com/MrJamesThe3rd/caixa/internal/catalog"
	"github.com/MrJamesThe3rd/caixa/internal/ledger"
	"github.com/MrJamesThe3rd/caixa/internal/till"
)

// Seed is the reference data a new installation starts with.
type Seed struct {
	Terminals  []till.Terminal
	Operators  []ledger.Operator
	Categories []catalog.Category
	Methods    []catalog.PaymentMethod
	Products   []catalog.Product
}

// DefaultSeed has two terminals, one operator per password pair, and the usual
// payment methods. Only DINHEIRO takes change.
func DefaultSeed(operators map[string]string) (Seed, error) {
	seed := Seed{
		Terminals: []till.Terminal{
			{ID: 1, Name: "PDV 01", Status: till.StatusClosed},
			{ID: 2, Name: "PDV 02", Status: till.StatusClosed},
		},
		Categories: []catalog.Category{
			{ID: 1, Name: "BEBIDAS"},
			{ID: 2, Name: "LANCHES"},
			{ID: 3, Name: "DIVERSOS"},
		},
		Methods: []catalog.PaymentMethod{
			{ID: 1, Name: "DINHEIRO", AcceptsChange: true, Active: true},
			{ID: 2, Name: "PIX", Active: true},
			{ID: 3, Name: "CARTAO DEBITO", Active: true},
			{ID: 4, Name: "CARTAO CREDITO", Active: true},
			{ID: 5, Name: "CHEQUE", Active: false},
		},
	}

	for id, password := range operators {
		hash, err := ledger.HashPassword(password)
		if err != nil {
			return Seed{}, fmt.Errorf("seeding operator %s: %w", id, err)
		}

		seed.Operators = append(seed.Operators, ledger.Operator{
			ID:           id,
			Name:         "Operador " + id,
			PasswordHash: hash,
			Active:       true,
		})
	}

	return seed, nil
}

// Apply loads the seed into the memory store.
func (m *Memory) Apply(seed Seed) {
	for _, t := range seed.Terminals {
		m.AddTerminal(t)
	}

	for _, op := range seed.Operators {
		m.AddOperator(op)
	}

	m.SetCategories(seed.Categories)
	m.SetPaymentMethods(seed.Methods)

	if len(seed.Products) > 0 {
		_ = m.SaveProducts(context.Background(), seed.Products)
	}
}
