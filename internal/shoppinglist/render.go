package shoppinglist

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// Format selects a renderer.
type Format string

const (
	FormatText Format = "txt"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts "", "txt" and "csv"; "" means text.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatText:
		return FormatText, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unsupported format %q", s)
}

// ContentType is the MIME type of the rendered document.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

// Filename is the attachment name of the rendered document.
func (f Format) Filename() string {
	return "shopping_list." + string(f)
}

// Write renders lines in format f.
func (f Format) Write(w io.Writer, lines []Line) error {
	if f == FormatCSV {
		return WriteCSV(w, lines)
	}
	return WriteText(w, lines)
}

// CSVHeader is the first row of the CSV rendering.
var CSVHeader = []string{"Название", "Количество", "Единица измерения"}

// WriteText writes one "name - amount unit" line per ingredient.
func WriteText(w io.Writer, lines []Line) error {
	bw := bufio.NewWriter(w)
	for _, l := range lines {
		if _, err := fmt.Fprintf(bw, "%s - %s %s\n", l.Name, FormatAmount(l.Amount), l.Unit); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteCSV writes a header row and one row per ingredient.
func WriteCSV(w io.Writer, lines []Line) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, l := range lines {
		if err := cw.Write([]string{l.Name, FormatAmount(l.Amount), l.Unit}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// amountDigits is the number of significant digits kept in printed amounts.
const amountDigits = 12

// FormatAmount prints the shortest decimal form: 10, 0.5, 1.25. Sums are
// rounded to amountDigits significant digits, so 0.1+0.2 prints as 0.3.
func FormatAmount(v float64) string {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(v, 'g', amountDigits, 64), 64)
	if err != nil {
		rounded = v
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}
