package catalog

// Product is a sellable item. Price is in cents.
type Product struct {
	ID         int64
	Code       string
	Name       string
	Price      int64
	CategoryID int64
	Active     bool
}

// Category groups products on the till screen.
type Category struct {
	ID   int64
	Name string
}

// PaymentMethod is a tender accepted at a terminal.
// AcceptsChange marks cash-like methods that take a received amount and give change.
type PaymentMethod struct {
	ID            int64
	Name          string
	AcceptsChange bool
	Active        bool
}

// ActiveMethods filters out disabled payment methods, keeping order.
func ActiveMethods(methods []PaymentMethod) []PaymentMethod {
	active := make([]PaymentMethod, 0, len(methods))

	for _, m := range methods {
		if m.Active {
			active = append(active, m)
		}
	}

	return active
}

// ByCategory returns the active products of a category. A zero id returns every active product.
func ByCategory(products []Product, categoryID int64) []Product {
	var out []Product

	for _, p := range products {
		if !p.Active {
			continue
		}

		if categoryID != 0 && p.CategoryID != categoryID {
			continue
		}

		out = append(out, p)
	}

	return out
}

// Listing is a product read from an external catalog file whose category is
// still a name, not yet resolved to an id.
type Listing struct {
	Product
	Category string
}
