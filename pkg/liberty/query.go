package liberty

import (
	"fmt"
	"iter"
	"strings"
)

// TableRef is one flattened leaf of the model: a table key plus the sigma
// variant populated under it.
type TableRef struct {
	TableKey
	Sigma string
}

// Flatten yields every (key, sigma) leaf in insertion order. The sequence
// can be ranged over any number of times.
func (m *LibraryModel) Flatten() iter.Seq[TableRef] {
	return func(yield func(TableRef) bool) {
		for _, key := range m.order {
			for _, sigma := range m.tables[key].sigmas {
				if !yield(TableRef{TableKey: key, Sigma: sigma}) {
					return
				}
			}
		}
	}
}

// Entries yields every table with its key in insertion order.
func (m *LibraryModel) Entries() iter.Seq2[TableKey, *TableEntry] {
	return func(yield func(TableKey, *TableEntry) bool) {
		for _, key := range m.order {
			if !yield(key, m.tables[key]) {
				return
			}
		}
	}
}

// CountSigmaTables returns the number of tables populated for a sigma type.
func (m *LibraryModel) CountSigmaTables(sigma string) int {
	n := 0
	for _, t := range m.tables {
		if t.HasSigma(sigma) {
			n++
		}
	}
	return n
}

// CountTablesForCell returns the number of (table, sigma) leaves of a cell
// whose timing type, table type and sigma type all belong to the arc type's
// allow-lists. An unknown cell counts zero.
func (m *LibraryModel) CountTablesForCell(cell string, arc ArcType) int {
	r, ok := arcRules[arc]
	if !ok {
		return 0
	}
	n := 0
	for _, key := range m.byCell[cell] {
		if !r.timingTypes[key.TimingType] || !r.tableTypes[key.TableType] {
			continue
		}
		for _, sigma := range m.tables[key].sigmas {
			if r.sigmaTypes[sigma] {
				n++
			}
		}
	}
	return n
}

// ArcType groups timing arcs for restricted table counts.
type ArcType int

const (
	ArcDelay ArcType = iota + 1
	ArcSlew
	ArcConstraint
)

func (a ArcType) String() string {
	switch a {
	case ArcDelay:
		return "delay"
	case ArcSlew:
		return "slew"
	case ArcConstraint:
		return "constraint"
	default:
		return fmt.Sprintf("arc(%d)", int(a))
	}
}

// ParseArcType converts "delay", "slew" or "constraint" to an ArcType.
func ParseArcType(s string) (ArcType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "delay":
		return ArcDelay, nil
	case "slew", "transition":
		return ArcSlew, nil
	case "constraint":
		return ArcConstraint, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownArcType, s)
}

type arcRule struct {
	timingTypes map[string]bool
	tableTypes  map[string]bool
	sigmaTypes  map[string]bool
}

func setOf(items ...string) map[string]bool {
	s := make(map[string]bool, len(items))
	for _, i := range items {
		s[i] = true
	}
	return s
}

var (
	combinationalTimingTypes = setOf(
		"combinational", "combinational_fall", "combinational_rise",
		"falling_edge", "rising_edge",
		"three_state_disable", "three_state_enable",
		"clear", "preset",
	)

	constraintTimingTypes = setOf(
		"setup_rising", "setup_falling",
		"hold_rising", "hold_falling",
		"recovery_rising", "recovery_falling",
		"removal_rising", "removal_falling",
		"non_seq_setup_rising", "non_seq_setup_falling",
		"non_seq_hold_rising", "non_seq_hold_falling",
	)

	allSigmaTypes = setOf(SigmaNone, SigmaEarly, SigmaLate)
)

var arcRules = map[ArcType]arcRule{
	ArcDelay: {
		timingTypes: combinationalTimingTypes,
		tableTypes:  setOf("CELL_RISE", "CELL_FALL", "ocv_sigma_cell_rise", "ocv_sigma_cell_fall"),
		sigmaTypes:  allSigmaTypes,
	},
	ArcSlew: {
		timingTypes: combinationalTimingTypes,
		tableTypes: setOf("RISE_TRANSITION", "FALL_TRANSITION",
			"ocv_sigma_rise_transition", "ocv_sigma_fall_transition"),
		sigmaTypes: allSigmaTypes,
	},
	ArcConstraint: {
		timingTypes: constraintTimingTypes,
		tableTypes: setOf("RISE_CONSTRAINT", "FALL_CONSTRAINT",
			"ocv_sigma_rise_constraint", "ocv_sigma_fall_constraint"),
		sigmaTypes: allSigmaTypes,
	},
}
