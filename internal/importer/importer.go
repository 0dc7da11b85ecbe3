package importer

import (
	"io"

	"github.com/MrJamesThe3rd/caixa/internal/catalog"
)

type Format string

const (
	FormatLegacy Format = "legacy"
)

type Importer interface {
	Parse(r io.Reader) ([]catalog.Listing, error)
}
