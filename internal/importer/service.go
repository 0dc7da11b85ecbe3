package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/MrJamesThe3rd/caixa/internal/catalog"
	"github.com/MrJamesThe3rd/caixa/internal/importer/legacy"
)

// Catalog is where imported products end up.
type Catalog interface {
	ListCategories(ctx context.Context) ([]catalog.Category, error)
	SaveProducts(ctx context.Context, products []catalog.Product) error
}

type Service struct {
	legacyImporter Importer
}

func NewService() *Service {
	return &Service{
		legacyImporter: legacy.NewParser(),
	}
}

func (s *Service) Import(format Format, r io.Reader) ([]catalog.Listing, error) {
	var importer Importer

	switch format {
	case FormatLegacy, "":
		importer = s.legacyImporter
	default:
		return nil, fmt.Errorf("unknown catalog format: %s", format)
	}

	return importer.Parse(r)
}

// Load imports a catalog file and upserts its products by code.
func (s *Service) Load(ctx context.Context, dst Catalog, format Format, r io.Reader) ([]catalog.Product, error) {
	listings, err := s.Import(format, r)
	if err != nil {
		return nil, err
	}

	categories, err := dst.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	products := Resolve(listings, categories)

	if err := dst.SaveProducts(ctx, products); err != nil {
		return nil, fmt.Errorf("saving products: %w", err)
	}

	slog.Info("catalog imported", "format", format, "products", len(products))

	return products, nil
}

// Resolve maps category names onto ids, ignoring case. Products whose category
// is unknown are kept uncategorized.
func Resolve(listings []catalog.Listing, categories []catalog.Category) []catalog.Product {
	ids := make(map[string]int64, len(categories))
	for _, c := range categories {
		ids[strings.ToUpper(strings.TrimSpace(c.Name))] = c.ID
	}

	products := make([]catalog.Product, 0, len(listings))

	for _, l := range listings {
		p := l.Product

		if id, ok := ids[strings.ToUpper(l.Category)]; ok {
			p.CategoryID = id
		} else if l.Category != "" {
			slog.Warn("unknown category in catalog import", "code", p.Code, "category", l.Category)
		}

		products = append(products, p)
	}

	return products
}
