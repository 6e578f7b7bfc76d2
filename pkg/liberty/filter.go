package liberty

import "strings"

// SkipReason explains why a table header was left out of the model.
type SkipReason int

const (
	SkipNone SkipReason = iota
	SkipBlankField
	SkipMinPulseWidth
	SkipPower
)

func (r SkipReason) String() string {
	switch r {
	case SkipNone:
		return "none"
	case SkipBlankField:
		return "blank_field"
	case SkipMinPulseWidth:
		return "min_pulse_width"
	case SkipPower:
		return "power"
	default:
		return "unknown"
	}
}

// CheckTable returns the reason a table context is ineligible, or SkipNone.
func CheckTable(cell, pin, relatedPin, timingType, tableType string) SkipReason {
	switch {
	case cell == "" || pin == "" || relatedPin == "" || timingType == "" || tableType == "":
		return SkipBlankField
	case timingType == "min_pulse_width":
		return SkipMinPulseWidth
	case strings.Contains(tableType, "POWER"):
		return SkipPower
	}
	return SkipNone
}

// IsValid reports whether a table under the given context may enter the model.
func IsValid(cell, pin, relatedPin, timingType, tableType string) bool {
	return CheckTable(cell, pin, relatedPin, timingType, tableType) == SkipNone
}
