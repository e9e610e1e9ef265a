package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// CellKind identifies which variant a Cell holds.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
	CellBool
)

func (k CellKind) String() string {
	switch k {
	case CellEmpty:
		return "empty"
	case CellText:
		return "text"
	case CellNumber:
		return "number"
	case CellBool:
		return "bool"
	default:
		return fmt.Sprintf("CellKind(%d)", int(k))
	}
}

// Cell is a single spreadsheet value. Only the field matching Kind is meaningful.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Bool   bool
}

// EmptyCell returns the empty cell.
func EmptyCell() Cell { return Cell{} }

// TextCell returns a text cell.
func TextCell(s string) Cell { return Cell{Kind: CellText, Text: s} }

// NumberCell returns a numeric cell.
func NumberCell(f float64) Cell { return Cell{Kind: CellNumber, Number: f} }

// BoolCell returns a boolean cell.
func BoolCell(b bool) Cell { return Cell{Kind: CellBool, Bool: b} }

// IsEmpty reports whether the cell holds no value.
func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty
}

// Equal compares kind and value. Numbers compare numerically, so 1 equals 1.0,
// while Text "2" never equals Number 2.
func (c Cell) Equal(o Cell) bool {
	if c.Kind != o.Kind {
		return false
	}
	switch c.Kind {
	case CellEmpty:
		return true
	case CellText:
		return c.Text == o.Text
	case CellNumber:
		return c.Number == o.Number
	case CellBool:
		return c.Bool == o.Bool
	}
	return false
}

// String renders the cell for display and for highlighting.
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case CellBool:
		if c.Bool {
			return "TRUE"
		}
		return "FALSE"
	}
	return ""
}

// MarshalJSON encodes the cell as null, a string, a number or a bool.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case CellText:
		return json.Marshal(c.Text)
	case CellNumber:
		return json.Marshal(c.Number)
	case CellBool:
		return json.Marshal(c.Bool)
	}
	return []byte("null"), nil
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (c *Cell) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*c = EmptyCell()
		return nil
	}

	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case string:
		*c = TextCell(val)
	case float64:
		*c = NumberCell(val)
	case bool:
		*c = BoolCell(val)
	default:
		return fmt.Errorf("unsupported cell value %s", trimmed)
	}
	return nil
}
