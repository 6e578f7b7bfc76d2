package liberty

import (
	"fmt"
	"regexp"
	"strings"
)

// EventKind identifies the structural role of a line.
type EventKind int

const (
	EventOther EventKind = iota
	EventCell
	EventPin
	EventRelatedPin
	EventWhen
	EventTimingType
	EventTimingSense
	EventTimingBlock
	EventTable
)

var eventNames = [...]string{
	EventOther:       "other",
	EventCell:        "cell",
	EventPin:         "pin",
	EventRelatedPin:  "related_pin",
	EventWhen:        "when",
	EventTimingType:  "timing_type",
	EventTimingSense: "timing_sense",
	EventTimingBlock: "timing",
	EventTable:       "table",
}

func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// LineEvent is the classification of one line. Value carries the name or
// attribute value extracted from the line; it is empty for EventTimingBlock
// and EventOther.
type LineEvent struct {
	Kind  EventKind
	Value string
}

// compileGlob turns a '*' wildcard pattern into an anchored regexp.
func compileGlob(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString(`^`)
	for i, part := range strings.Split(pattern, "*") {
		if i > 0 {
			b.WriteString(`.*`)
		}
		b.WriteString(regexp.QuoteMeta(part))
	}
	b.WriteString(`$`)
	return regexp.Compile(b.String())
}

type rule struct {
	kind    EventKind
	match   *regexp.Regexp
	extract func(string) string
}

// Classifier matches lines against a compiled HeaderPatternSet. It holds no
// mutable state and is safe for concurrent use.
type Classifier struct {
	rules     []rule
	sigmaType *regexp.Regexp
	index     *regexp.Regexp
	values    *regexp.Regexp
}

// NewClassifier compiles every pattern of the set once.
func NewClassifier(set HeaderPatternSet) (*Classifier, error) {
	// Table headers are tested before pins so that a template name containing
	// "pin" is never taken for a pin header.
	specs := []struct {
		kind    EventKind
		pattern string
		extract func(string) string
	}{
		{EventCell, set.Cell, parenName},
		{EventTable, set.Table, tableKeyword},
		{EventPin, set.Pin, parenName},
		{EventRelatedPin, set.RelatedPin, attrValue},
		{EventTimingType, set.TimingType, attrValue},
		{EventTimingSense, set.TimingSense, attrValue},
		{EventWhen, set.When, quotedValue},
		{EventTimingBlock, set.TimingBlock, nil},
	}

	c := &Classifier{}
	for _, s := range specs {
		if s.pattern == "" {
			return nil, fmt.Errorf("%w: empty %v pattern", ErrInvalidConfiguration, s.kind)
		}
		re, err := compileGlob(s.pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %v pattern %q: %v", ErrInvalidConfiguration, s.kind, s.pattern, err)
		}
		c.rules = append(c.rules, rule{kind: s.kind, match: re, extract: s.extract})
	}

	var err error
	if c.sigmaType, err = compileGlob(set.SigmaType); err != nil {
		return nil, fmt.Errorf("%w: sigma_type pattern: %v", ErrInvalidConfiguration, err)
	}
	if c.index, err = compileGlob(set.Index); err != nil {
		return nil, fmt.Errorf("%w: index pattern: %v", ErrInvalidConfiguration, err)
	}
	if c.values, err = compileGlob(set.Values); err != nil {
		return nil, fmt.Errorf("%w: values pattern: %v", ErrInvalidConfiguration, err)
	}
	return c, nil
}

// Classify returns the event for the first rule that matches the line.
// Unmatched lines yield EventOther.
func (c *Classifier) Classify(line string) LineEvent {
	for _, r := range c.rules {
		if !r.match.MatchString(line) {
			continue
		}
		ev := LineEvent{Kind: r.kind}
		if r.extract != nil {
			ev.Value = r.extract(line)
		}
		return ev
	}
	return LineEvent{Kind: EventOther}
}

// IsSigmaType reports whether the line carries a sigma_type attribute.
func (c *Classifier) IsSigmaType(line string) bool {
	return c.sigmaType.MatchString(line)
}

// IsIndex reports whether the line is an index_N vector.
func (c *Classifier) IsIndex(line string) bool {
	return c.index.MatchString(line)
}

// IsValues reports whether the line opens a values block.
func (c *Classifier) IsValues(line string) bool {
	return c.values.MatchString(line)
}

// parenName returns the group name of a "keyword (name) {" header.
func parenName(line string) string {
	open := strings.IndexByte(line, '(')
	if open < 0 {
		return ""
	}
	rest := line[open+1:]
	if end := strings.IndexByte(rest, ')'); end >= 0 {
		rest = rest[:end]
	}
	return unquote(rest)
}

// tableKeyword returns the keyword in front of the template parenthesis.
func tableKeyword(line string) string {
	open := strings.IndexByte(line, '(')
	if open < 0 {
		return ""
	}
	return strings.TrimSpace(line[:open])
}

// attrValue returns the value of a "name : value ;" attribute.
func attrValue(line string) string {
	colon := strings.IndexByte(line, ':')
	if colon < 0 {
		return ""
	}
	v := strings.TrimSpace(line[colon+1:])
	v = strings.TrimSpace(strings.TrimSuffix(v, ";"))
	return unquote(v)
}

// quotedValue returns the text between the first pair of double quotes.
func quotedValue(line string) string {
	parts := strings.Split(line, `"`)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.Trim(s, `"`))
}
