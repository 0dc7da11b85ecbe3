package legacy

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/MrJamesThe3rd/caixa/internal/catalog"
	enc "github.com/MrJamesThe3rd/caixa/internal/encoding"
	"github.com/MrJamesThe3rd/caixa/internal/money"
)

// ErrNoLayout is returned when no header row matches a known export layout.
var ErrNoLayout = errors.New("no matching catalog layout found: expected columns for cadastro, produtos, or tabela de preços")

// Parser reads catalog CSV exports of the legacy POS. Report lines before the
// header are skipped; the header picks the layout.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]catalog.Listing, error) {
	utf8r, charset, err := enc.Detect(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	records := csv.NewReader(utf8r)
	records.Comma = ';'
	records.FieldsPerRecord = -1
	records.LazyQuotes = true
	records.ReuseRecord = true

	var (
		cols  layout
		found bool
		rowNo int
		out   = newListings()
	)

	for {
		row, err := records.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		rowNo++

		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNo, err)
		}

		if !found {
			cols, found = matchHeader(row)
			if found {
				slog.Debug("catalog layout detected", "profile", cols.profile.Name, "charset", charset, "row", rowNo)
			}

			continue
		}

		l, ok, err := cols.listing(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNo, err)
		}

		if ok {
			out.put(l)
		}
	}

	if !found {
		return nil, ErrNoLayout
	}

	return out.items, nil
}

func matchHeader(row []string) (layout, bool) {
	cols := make(map[string]int, len(row))

	for i, cell := range row {
		if name := foldHeader(cell); name != "" {
			cols[name] = i
		}
	}

	for i := range profiles {
		if l, ok := profiles[i].bind(cols); ok {
			return l, true
		}
	}

	return layout{}, false
}

// listing reads one product. Rows without a code are footers and report ok=false.
func (l layout) listing(row []string) (catalog.Listing, bool, error) {
	code := cell(row, l.code)
	if code == "" {
		return catalog.Listing{}, false, nil
	}

	name := cell(row, l.name)
	if name == "" {
		return catalog.Listing{}, false, errors.New("missing description")
	}

	price, err := money.Parse(cell(row, l.price))
	if err != nil {
		return catalog.Listing{}, false, err
	}

	if price < 0 {
		return catalog.Listing{}, false, errors.New("negative price")
	}

	out := catalog.Listing{
		Product: catalog.Product{
			Code:   code,
			Name:   strings.ToUpper(name),
			Price:  price,
			Active: true,
		},
		Category: strings.ToUpper(cell(row, l.category)),
	}

	if l.status >= 0 {
		out.Active = activeValues[strings.ToUpper(cell(row, l.status))]
	}

	return out, true, nil
}

// listings keeps file order; a repeated code replaces the earlier row, as the
// export lists price changes last.
type listings struct {
	items []catalog.Listing
	index map[string]int
}

func newListings() *listings {
	return &listings{index: make(map[string]int)}
}

func (s *listings) put(l catalog.Listing) {
	if i, ok := s.index[l.Code]; ok {
		s.items[i] = l
		return
	}

	s.index[l.Code] = len(s.items)
	s.items = append(s.items, l)
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
