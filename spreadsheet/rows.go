// Package spreadsheet turns tabular files into header-keyed rows and back.
package spreadsheet

import (
	"fmt"
	"strings"
)

// Row is one data row keyed by its header cell. Number is the 1-based row
// number in the source sheet, so errors can point at the offending line.
type Row struct {
	Number int
	Values map[string]string
}

// Get returns the trimmed value of column, matching header names without
// regard to case, spaces or underscores.
func (r Row) Get(column string) string {
	return strings.TrimSpace(r.Values[headerKey(column)])
}

// Empty reports whether every cell in the row is blank.
func (r Row) Empty() bool {
	for _, v := range r.Values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func headerKey(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, " ", "")
	return strings.ReplaceAll(h, "_", "")
}

// FromTable converts a header row followed by data rows. Blank rows are dropped.
func FromTable(table [][]string) ([]Row, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("sheet is empty")
	}
	header := make([]string, len(table[0]))
	seen := map[string]bool{}
	for i, h := range table[0] {
		key := headerKey(h)
		if key == "" {
			continue
		}
		if seen[key] {
			return nil, fmt.Errorf("duplicate column %q", h)
		}
		seen[key] = true
		header[i] = key
	}
	if len(seen) == 0 {
		return nil, fmt.Errorf("header row is empty")
	}

	rows := make([]Row, 0, len(table)-1)
	for i, cells := range table[1:] {
		row := Row{Number: i + 2, Values: make(map[string]string, len(header))}
		for j, key := range header {
			if key == "" {
				continue
			}
			if j < len(cells) {
				row.Values[key] = cells[j]
			} else {
				row.Values[key] = ""
			}
		}
		if row.Empty() {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Require checks that every column is present in the header of rows.
func Require(rows []Row, columns ...string) error {
	if len(rows) == 0 {
		return nil
	}
	var missing []string
	for _, c := range columns {
		found := false
		for _, r := range rows {
			if _, ok := r.Values[headerKey(c)]; ok {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return nil
}
