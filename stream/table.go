package stream

import (
	"fmt"

	h "github.com/relloyd/country-metrics/helper"
)

// Table is the tabular shape of an intermediate artifact.
// Header names the columns; Rows never contains the header.
type Table struct {
	Header []string
	Rows   [][]string
}

func NewTable(header []string) Table {
	return Table{Header: append([]string(nil), header...), Rows: make([][]string, 0)}
}

func (t *Table) AppendRow(row []string) {
	t.Rows = append(t.Rows, row)
}

func (t Table) Len() int {
	return len(t.Rows)
}

// CheckHeader returns an error if the table header is not exactly expected.
func (t Table) CheckHeader(expected []string) error {
	if !h.EqualStringSlices(t.Header, expected) {
		return fmt.Errorf("unexpected header [%v], want [%v]", h.StringsToCsv(t.Header), h.StringsToCsv(expected))
	}
	return nil
}
