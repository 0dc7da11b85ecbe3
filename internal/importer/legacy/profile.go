package legacy

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Profile describes the column layout of one legacy POS catalog export.
// Adding a new layout is adding a Profile to the profiles slice.
type Profile struct {
	Name        string
	CodeCol     string
	NameCol     string
	PriceCol    string
	CategoryCol string // optional
	StatusCol   string // optional; products are active when absent
}

// layout is a profile bound to the column positions of a header row.
// Optional columns the profile does not name are -1.
type layout struct {
	profile  *Profile
	code     int
	name     int
	price    int
	category int
	status   int
}

// bind matches the profile against a header row, keyed by foldHeader.
func (p *Profile) bind(cols map[string]int) (layout, bool) {
	l := layout{profile: p, category: -1, status: -1}

	for _, c := range []struct {
		name string
		dst  *int
	}{
		{p.CodeCol, &l.code},
		{p.NameCol, &l.name},
		{p.PriceCol, &l.price},
		{p.CategoryCol, &l.category},
		{p.StatusCol, &l.status},
	} {
		if c.name == "" {
			continue
		}

		idx, ok := cols[foldHeader(c.name)]
		if !ok {
			return layout{}, false
		}

		*c.dst = idx
	}

	return l, true
}

// profiles is tried in order; the more specific layouts come first.
var profiles = []Profile{
	{
		Name:        "cadastro",
		CodeCol:     "Código",
		NameCol:     "Descrição",
		PriceCol:    "Preço Venda",
		CategoryCol: "Grupo",
		StatusCol:   "Situação",
	},
	{
		Name:        "produtos",
		CodeCol:     "Código",
		NameCol:     "Descrição",
		PriceCol:    "Preço Venda",
		CategoryCol: "Grupo",
	},
	{
		Name:     "tabela de preços",
		CodeCol:  "Cod",
		NameCol:  "Produto",
		PriceCol: "Preço",
	},
}

// activeValues are the status cells read as an active product.
var activeValues = map[string]bool{
	"A":     true,
	"S":     true,
	"SIM":   true,
	"ATIVO": true,
	"1":     true,
}

var stripMarks = runes.Remove(runes.In(unicode.Mn))

// foldHeader lowercases a header cell and drops accents, so "CODIGO" and
// "Código" name the same column. Exports differ on both.
func foldHeader(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, stripMarks, norm.NFC), s)
	if err != nil {
		folded = s
	}

	return strings.ToLower(strings.Join(strings.Fields(folded), " "))
}
