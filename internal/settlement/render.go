package settlement

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/caixa/internal/money"
	"github.com/MrJamesThe3rd/caixa/internal/till"
)

//go:embed templates/*.html
var templateFS embed.FS

// Section is one independently printable part of the settlement report.
type Section string

const (
	SectionSummary   Section = "summary"
	SectionSales     Section = "sales"
	SectionBreakdown Section = "breakdown"
)

// AllSections is the full report in print order.
var AllSections = []Section{SectionSummary, SectionSales, SectionBreakdown}

type page struct {
	Title    string
	Sections []section
}

type section struct {
	Name string
	Data any
}

type breakdown struct {
	Lines []till.MethodTotal
	Count int
	Total int64
}

// Renderer turns settlements, sales and drawer operations into standalone
// HTML documents and writes them to a print directory.
type Renderer struct {
	dir  string
	now  func() time.Time
	tmpl *template.Template
}

func NewRenderer(dir string) (*Renderer, error) {
	tmpl, err := template.New("print").Funcs(template.FuncMap{
		"money":    money.Format,
		"datetime": func(t time.Time) string { return t.Local().Format("02/01/2006 15:04") },
		"clock":    func(t time.Time) string { return t.Local().Format("15:04") },
		"method":   methodName,
		"subtotal": func(price int64, qty int) int64 { return price * int64(qty) },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing print templates: %w", err)
	}

	return &Renderer{dir: dir, now: time.Now, tmpl: tmpl}, nil
}

func (r *Renderer) Dir() string { return r.dir }

// Breakdown is the per-method aggregation shown on the settlement screen.
func Breakdown(s *till.SettlementSummary) ([]till.MethodTotal, int, int64) {
	lines := ByMethod(s.Sales)
	count, total := Totals(lines)

	return lines, count, total
}

// Settlement renders the requested sections of s. No sections means all of them.
func (r *Renderer) Settlement(w io.Writer, s *till.SettlementSummary, sections ...Section) error {
	if len(sections) == 0 {
		sections = AllSections
	}

	p := page{Title: fmt.Sprintf("Fechamento terminal %d", s.TerminalID)}

	for _, sec := range sections {
		var data any

		switch sec {
		case SectionSummary, SectionSales:
			data = s
		case SectionBreakdown:
			lines, count, total := Breakdown(s)
			data = breakdown{Lines: lines, Count: count, Total: total}
		default:
			return fmt.Errorf("unknown section %q", sec)
		}

		p.Sections = append(p.Sections, section{Name: string(sec), Data: data})
	}

	return r.execute(w, p)
}

// Drawer renders a withdrawal or supply receipt.
func (r *Renderer) Drawer(w io.Writer, op *till.DrawerOperation) error {
	return r.execute(w, page{
		Title:    strings.ToLower(string(op.Kind)),
		Sections: []section{{Name: "drawer", Data: op}},
	})
}

// Sale renders a sale receipt.
func (r *Renderer) Sale(w io.Writer, sale *till.Sale) error {
	return r.execute(w, page{
		Title:    fmt.Sprintf("Venda %d", sale.Number),
		Sections: []section{{Name: "sale", Data: sale}},
	})
}

// PrintSettlement writes the requested sections of s to the print directory
// and returns the file path.
func (r *Renderer) PrintSettlement(s *till.SettlementSummary, sections ...Section) (string, error) {
	var buf bytes.Buffer
	if err := r.Settlement(&buf, s, sections...); err != nil {
		return "", fmt.Errorf("rendering settlement: %w", err)
	}

	name := "fechamento"
	if len(sections) == 1 {
		name += "_" + string(sections[0])
	}

	return r.write(fmt.Sprintf("%s_terminal%d", name, s.TerminalID), buf.Bytes())
}

func (r *Renderer) PrintDrawer(op *till.DrawerOperation) (string, error) {
	var buf bytes.Buffer
	if err := r.Drawer(&buf, op); err != nil {
		return "", fmt.Errorf("rendering drawer receipt: %w", err)
	}

	return r.write(fmt.Sprintf("%s_terminal%d", strings.ToLower(string(op.Kind)), op.TerminalID), buf.Bytes())
}

func (r *Renderer) PrintSale(sale *till.Sale) (string, error) {
	var buf bytes.Buffer
	if err := r.Sale(&buf, sale); err != nil {
		return "", fmt.Errorf("rendering sale receipt: %w", err)
	}

	return r.write(fmt.Sprintf("venda_%d_terminal%d", sale.Number, sale.TerminalID), buf.Bytes())
}

func (r *Renderer) execute(w io.Writer, p page) error {
	if err := r.tmpl.ExecuteTemplate(w, "layout", p); err != nil {
		return fmt.Errorf("executing template: %w", err)
	}

	return nil
}

func (r *Renderer) write(name string, content []byte) (string, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating print directory: %w", err)
	}

	// Format: YYYYMMDD_HHMMSS_name.html
	filename := fmt.Sprintf("%s_%s.html", r.now().Format("20060102_150405"), safeName(name))
	path := filepath.Join(r.dir, filename)

	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", filename, err)
	}

	return path, nil
}

func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}

		return '_'
	}, s)
}

func methodName(name string) string {
	if name == "" {
		return Unspecified
	}

	return name
}
