package models

import (
	"encoding/json"
	"time"
)

// ComparisonKind tells which pipeline produced a saved comparison.
type ComparisonKind string

const (
	ComparisonText  ComparisonKind = "text"
	ComparisonTable ComparisonKind = "table"
)

// SavedComparison is a persisted comparison. Payload is opaque JSON owned by the caller.
type SavedComparison struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Kind       ComparisonKind  `json:"kind"`
	LeftLabel  string          `json:"left_label"`
	RightLabel string          `json:"right_label"`
	Payload    json.RawMessage `json:"payload"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ComparisonUpdate carries the mutable fields of a saved comparison. Nil fields are left unchanged.
type ComparisonUpdate struct {
	Name       *string `json:"name,omitempty"`
	LeftLabel  *string `json:"left_label,omitempty"`
	RightLabel *string `json:"right_label,omitempty"`
}
