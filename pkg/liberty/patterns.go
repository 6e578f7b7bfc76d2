package liberty

import (
	"fmt"
	"strings"
)

// Dialect selects the flavour of library file being parsed.
type Dialect int

const (
	// Nominal is a standard corner library.
	Nominal Dialect = iota
	// Variation is an OCV sigma sensitivity file with statistical tables.
	Variation
)

// String returns the configuration name of the dialect.
func (d Dialect) String() string {
	switch d {
	case Nominal:
		return "nominal"
	case Variation:
		return "variation"
	default:
		return fmt.Sprintf("dialect(%d)", int(d))
	}
}

// ParseDialect converts a configuration string to a Dialect.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nominal", "nom":
		return Nominal, nil
	case "variation", "var", "ocv":
		return Variation, nil
	}
	return 0, fmt.Errorf("%w: unknown dialect %q", ErrInvalidConfiguration, s)
}

// Class narrows the table headers recognised to one characterization class.
type Class int

const (
	ClassAll Class = iota
	ClassConstraint
	ClassDelay
	ClassSlew
)

// String returns the configuration name of the class.
func (c Class) String() string {
	switch c {
	case ClassAll:
		return "all"
	case ClassConstraint:
		return "constraint"
	case ClassDelay:
		return "delay"
	case ClassSlew:
		return "slew"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

// ParseClass converts a configuration string to a Class. The empty string
// selects ClassAll.
func ParseClass(s string) (Class, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return ClassAll, nil
	case "constraint":
		return ClassConstraint, nil
	case "delay":
		return ClassDelay, nil
	case "slew":
		return ClassSlew, nil
	}
	return 0, fmt.Errorf("%w: unknown class %q", ErrInvalidConfiguration, s)
}

// HeaderPatternSet holds the wildcard patterns used to classify lines. Each
// pattern is a shell-style glob where '*' matches any run of characters.
type HeaderPatternSet struct {
	Cell        string
	Pin         string
	RelatedPin  string
	TimingBlock string
	TimingType  string
	TimingSense string
	When        string
	SigmaType   string
	Index       string
	Values      string
	Table       string
}

// Patterns shared by both dialects.
const (
	cellPattern        = `*cell (*) {*`
	pinPattern         = `*pin*(*) {*`
	relatedPinPattern  = `*related_pin : *`
	timingBlockPattern = `*timing*(*) {*`
	timingTypePattern  = `*timing_type :*`
	timingSensePattern = `*timing_sense :*`
	whenPattern        = `*when : "*"*`
	sigmaTypePattern   = `*sigma_type : *`
	indexPattern       = `*index_* ("*`
	valuesPattern      = `*values*("*`
)

var tablePatterns = map[Dialect]map[Class]string{
	Nominal: {
		ClassAll:        `*_*(*_template_*x*)*`,
		ClassConstraint: `*_constraint*(*_template_*x*)*`,
		ClassDelay:      `*cell_*(*_template_*x*)*`,
		ClassSlew:       `*_transition*(*_template_*x*)*`,
	},
	Variation: {
		ClassAll:        `*ocv_sigma_*_*(*_template_*x*)*`,
		ClassConstraint: `*ocv_sigma_*_constraint*(*_template_*x*)*`,
		ClassDelay:      `*ocv_sigma_cell_*(*_template_*x*)*`,
		ClassSlew:       `*ocv_sigma_*_transition*(*_template_*x*)*`,
	},
}

// Patterns returns the header pattern set for a dialect and class.
func Patterns(d Dialect, c Class) (HeaderPatternSet, error) {
	byClass, ok := tablePatterns[d]
	if !ok {
		return HeaderPatternSet{}, fmt.Errorf("%w: dialect %v", ErrInvalidConfiguration, d)
	}
	table, ok := byClass[c]
	if !ok {
		return HeaderPatternSet{}, fmt.Errorf("%w: class %v for dialect %v", ErrInvalidConfiguration, c, d)
	}

	return HeaderPatternSet{
		Cell:        cellPattern,
		Pin:         pinPattern,
		RelatedPin:  relatedPinPattern,
		TimingBlock: timingBlockPattern,
		TimingType:  timingTypePattern,
		TimingSense: timingSensePattern,
		When:        whenPattern,
		SigmaType:   sigmaTypePattern,
		Index:       indexPattern,
		Values:      valuesPattern,
		Table:       table,
	}, nil
}
