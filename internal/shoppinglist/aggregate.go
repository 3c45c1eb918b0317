// Package shoppinglist reduces ingredient rows from a user's cart into one
// line per ingredient and renders the result for download.
package shoppinglist

import "sort"

// Row is one ingredient record reachable from the cart.
type Row struct {
	Name   string
	Unit   string
	Amount float64
}

// Line is the total amount of one ingredient in one unit.
type Line struct {
	Name   string
	Unit   string
	Amount float64
}

type key struct {
	name string
	unit string
}

// Aggregate sums rows by (name, unit) and sorts the lines by name, then unit.
// It never returns nil.
func Aggregate(rows []Row) []Line {
	totals := make(map[key]float64, len(rows))
	for _, r := range rows {
		totals[key{r.Name, r.Unit}] += r.Amount
	}

	lines := make([]Line, 0, len(totals))
	for k, amount := range totals {
		lines = append(lines, Line{Name: k.name, Unit: k.unit, Amount: amount})
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Name != lines[j].Name {
			return lines[i].Name < lines[j].Name
		}
		return lines[i].Unit < lines[j].Unit
	})
	return lines
}
