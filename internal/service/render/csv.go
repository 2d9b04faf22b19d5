package render

import (
	"io"
	"strings"

	"transmittal/internal/domain/models"
)

// RenderCSV writes the item table: a header of column labels, then one line
// per item with every value quoted. Lines are separated by "\n" with no
// trailing newline.
func RenderCSV(w io.Writer, items []models.TransmittalItem, columns []models.TableColumn) error {
	lines := make([]string, 0, len(items)+1)

	labels := make([]string, len(columns))
	for i, c := range columns {
		labels[i] = csvField(c.Label)
	}
	lines = append(lines, strings.Join(labels, ","))

	for _, item := range items {
		values := make([]string, len(columns))
		for i, c := range columns {
			values[i] = quoted(item.Field(c.ID))
		}
		lines = append(lines, strings.Join(values, ","))
	}

	_, err := io.WriteString(w, strings.Join(lines, "\n"))
	return err
}

func quoted(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// csvField quotes s only when it would otherwise break the line.
func csvField(s string) string {
	if strings.ContainsAny(s, ",\"\r\n") {
		return quoted(s)
	}
	return s
}
