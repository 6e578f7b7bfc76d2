package liberty

import "strings"

// Family is the characterization family a table type belongs to.
type Family string

const (
	FamilyDelay      Family = "delay"
	FamilySlew       Family = "slew"
	FamilyConstraint Family = "constraint"
	FamilyOther      Family = "other"
)

// Shape is an expected rows x cols table size.
type Shape struct {
	Rows int `yaml:"rows" validate:"gte=1"`
	Cols int `yaml:"cols" validate:"gte=1"`
}

// ShapeHints maps a family to the table size characterization produces for
// it. The grammar only describes a table's size through its index vectors,
// so a hint is advisory: mismatches are counted, never rejected.
type ShapeHints map[Family]Shape

// DefaultShapeHints returns 8x8 for delay and slew tables and 5x5 for
// constraint tables.
func DefaultShapeHints() ShapeHints {
	return ShapeHints{
		FamilyDelay:      {Rows: 8, Cols: 8},
		FamilySlew:       {Rows: 8, Cols: 8},
		FamilyConstraint: {Rows: 5, Cols: 5},
	}
}

// FamilyOf classifies a table type name of either dialect.
func FamilyOf(tableType string) Family {
	t := strings.ToLower(tableType)
	switch {
	case strings.Contains(t, "constraint"):
		return FamilyConstraint
	case strings.Contains(t, "transition"):
		return FamilySlew
	case strings.Contains(t, "cell_"):
		return FamilyDelay
	}
	return FamilyOther
}

// Matches reports whether a table with the given index lengths fits the hint
// for its family. Families without a hint always match.
func (h ShapeHints) Matches(tableType string, rows, cols int) bool {
	s, ok := h[FamilyOf(tableType)]
	if !ok {
		return true
	}
	return s.Rows == rows && s.Cols == cols
}
