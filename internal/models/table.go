package models

import (
	"encoding/json"
	"strings"
)

// Row is an ordered list of cells.
type Row []Cell

// Equal reports structural equality: same length and pairwise equal cells.
func (r Row) Equal(o Row) bool {
	if len(r) != len(o) {
		return false
	}
	for i := range r {
		if !r[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// Strings renders every cell with Cell.String.
func (r Row) Strings() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = c.String()
	}
	return out
}

// Key returns a canonical string for the row, usable as an edit-script unit.
func (r Row) Key() string {
	data, err := json.Marshal(r)
	if err != nil {
		return strings.Join(r.Strings(), "\x1f")
	}
	return string(data)
}

// IsBlank reports whether every cell is empty.
func (r Row) IsBlank() bool {
	for _, c := range r {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// Table is a header row plus body rows taken from one sheet.
type Table struct {
	Header Row   `json:"header"`
	Body   []Row `json:"body"`
}

// HeaderNames stringifies the header row.
func (t Table) HeaderNames() []string {
	return t.Header.Strings()
}

// ColumnStatus tells on which sides a combined column exists.
type ColumnStatus string

const (
	ColumnCommon    ColumnStatus = "common"
	ColumnLeftOnly  ColumnStatus = "left_only"
	ColumnRightOnly ColumnStatus = "right_only"
)

// Column is one entry of the combined column set.
type Column struct {
	Name   string       `json:"name"`
	Status ColumnStatus `json:"status"`
}
