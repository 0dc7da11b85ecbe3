package settlement

import "github.com/MrJamesThe3rd/caixa/internal/till"

// Unspecified is the bucket for sales without a payment method name.
const Unspecified = "Não especificado"

// ByMethod groups the non-cancelled sales by payment method name, counting and
// summing them. Methods appear in the order they are first seen.
func ByMethod(sales []till.Sale) []till.MethodTotal {
	var out []till.MethodTotal

	index := make(map[string]int)

	for _, s := range sales {
		if s.Cancelled() {
			continue
		}

		name := s.PaymentMethod
		if name == "" {
			name = Unspecified
		}

		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, till.MethodTotal{Method: name})
		}

		out[i].Count++
		out[i].Total += s.Value
	}

	return out
}

// Totals sums the breakdown.
func Totals(lines []till.MethodTotal) (count int, total int64) {
	for _, l := range lines {
		count += l.Count
		total += l.Total
	}

	return count, total
}
