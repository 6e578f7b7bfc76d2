package liberty

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dd0wney/libcert/pkg/logging"
)

// cancelCheckInterval is how many statements are visited between context checks.
// A table body counts as one statement.
const cancelCheckInterval = 4096

// Options configures a Parser.
type Options struct {
	Dialect    Dialect
	Class      Class
	ShapeHints ShapeHints     // nil selects DefaultShapeHints
	Logger     logging.Logger // nil discards log output
	Recorder   Recorder       // nil records nothing
}

// Recorder receives the outcome of every Parse call.
type Recorder interface {
	RecordParse(dialect string, stats Stats, duration time.Duration, err error)
}

// Stats summarises one parse.
type Stats struct {
	LinesScanned         int
	TablesExtracted      int
	SkippedBlankField    int
	SkippedMinPulseWidth int
	SkippedPower         int
	Duplicates           int
	ShapeHintMismatches  int
}

// Skipped returns the number of table headers left out of the model.
func (s Stats) Skipped() int {
	return s.SkippedBlankField + s.SkippedMinPulseWidth + s.SkippedPower
}

func (s *Stats) skip(r SkipReason) {
	switch r {
	case SkipBlankField:
		s.SkippedBlankField++
	case SkipMinPulseWidth:
		s.SkippedMinPulseWidth++
	case SkipPower:
		s.SkippedPower++
	}
}

// Result is a successfully parsed file.
type Result struct {
	Model *LibraryModel
	Stats Stats
}

// Parser turns library lines into a LibraryModel. A Parser holds only
// compiled configuration and may be shared between goroutines; every Parse
// call builds an independent model.
type Parser struct {
	dialect    Dialect
	class      Class
	patterns   HeaderPatternSet
	classifier *Classifier
	hints      ShapeHints
	logger     logging.Logger
	recorder   Recorder
}

// NewParser validates the configuration and compiles its patterns.
func NewParser(opts Options) (*Parser, error) {
	patterns, err := Patterns(opts.Dialect, opts.Class)
	if err != nil {
		return nil, err
	}
	classifier, err := NewClassifier(patterns)
	if err != nil {
		return nil, err
	}

	hints := opts.ShapeHints
	if hints == nil {
		hints = DefaultShapeHints()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &Parser{
		dialect:    opts.Dialect,
		class:      opts.Class,
		patterns:   patterns,
		classifier: classifier,
		hints:      hints,
		recorder:   opts.Recorder,
		logger:     logger.With(logging.Dialect(opts.Dialect.String()), logging.Class(opts.Class.String())),
	}, nil
}

// Patterns returns the header patterns the parser was compiled from.
func (p *Parser) Patterns() HeaderPatternSet {
	return p.patterns
}

// ParseFile loads and parses the file at path.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Result, error) {
	lines, err := LoadLines(path)
	if err != nil {
		return nil, err
	}
	return p.Parse(ctx, lines)
}

// Parse scans lines once and returns the model. On error no model is
// returned.
func (p *Parser) Parse(ctx context.Context, lines *Lines) (*Result, error) {
	start := time.Now()
	res, err := p.parse(ctx, lines)
	if p.recorder != nil {
		var stats Stats
		if res != nil {
			stats = res.Stats
		}
		p.recorder.RecordParse(p.dialect.String(), stats, time.Since(start), err)
	}
	return res, err
}

func (p *Parser) parse(ctx context.Context, lines *Lines) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewError("parse").File(lines.Name()).Cause(err).Err()
	}
	log := p.logger.With(logging.File(lines.Name()))
	b := NewBuilder()
	st := newScanState()
	var stats Stats
	steps := 0

	cur := lines.Cursor()
	for {
		line, ok := cur.Peek()
		if !ok {
			break
		}
		headerLine := cur.LineNumber()
		cur = cur.Advance()
		stats.LinesScanned++
		steps++

		// steps counts outer iterations only; LinesScanned jumps by whole tables
		if steps%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, NewError("parse").File(lines.Name()).Line(headerLine).Cause(err).Err()
			}
		}

		ev := p.classifier.Classify(line)
		if ev.Kind != EventTable {
			st.apply(ev)
			continue
		}

		tableType := p.tableTypeName(ev.Value)
		if reason := CheckTable(st.cell, st.pin, st.relatedPin, st.timingType, tableType); reason != SkipNone {
			stats.skip(reason)
			log.Debug("table skipped",
				logging.Line(headerLine),
				logging.Cell(st.cell),
				logging.TableType(tableType),
				logging.String("reason", reason.String()))
			continue
		}

		ext, next, err := Extract(cur, p.classifier)
		if err != nil {
			return nil, NewError("extract").File(lines.Name()).Line(headerLine).Table(tableType).Cause(err).Err()
		}
		stats.LinesScanned += next.LineNumber() - cur.LineNumber()
		cur = next

		key := st.key(tableType)
		rows, cols := len(ext.Index1), len(ext.Index2)
		if existing, ok := b.Model().Table(key); ok {
			rows, cols = existing.Rows(), existing.Cols()
		}
		if len(ext.Values) != rows*cols {
			return nil, NewError("extract").File(lines.Name()).Line(headerLine).Table(tableType).
				Cause(fmt.Errorf("%w: %d values for %dx%d table", ErrTableShape, len(ext.Values), rows, cols)).Err()
		}
		if !p.hints.Matches(tableType, rows, cols) {
			stats.ShapeHintMismatches++
			log.Debug("table shape differs from hint",
				logging.Line(headerLine),
				logging.TableType(tableType),
				logging.Int("rows", rows),
				logging.Int("cols", cols))
		}

		if b.Insert(key, ext.Sigma, ext.Index1, ext.Index2, ext.Values) {
			stats.Duplicates++
			log.Warn("table overwritten",
				logging.Line(headerLine),
				logging.Cell(key.Cell),
				logging.Pin(key.Pin),
				logging.TableType(tableType),
				logging.String("sigma_type", ext.Sigma))
		}
		stats.TablesExtracted++
	}

	return &Result{Model: b.Model(), Stats: stats}, nil
}

// tableTypeName normalises a table keyword. Nominal libraries report table
// types upper-cased; variation keywords are kept as written.
func (p *Parser) tableTypeName(keyword string) string {
	if p.dialect == Nominal {
		return strings.ToUpper(keyword)
	}
	return keyword
}

// scanState is the context accumulated from header lines.
type scanState struct {
	cell        string
	pin         string
	relatedPin  string
	timingType  string
	timingSense string
	when        string
}

func newScanState() scanState {
	return scanState{timingSense: SenseNone, when: NoCondition}
}

func (s *scanState) apply(ev LineEvent) {
	switch ev.Kind {
	case EventCell:
		s.cell = ev.Value
	case EventPin:
		s.pin = ev.Value
	case EventRelatedPin:
		s.relatedPin = ev.Value
	case EventTimingType:
		s.timingType = ev.Value
	case EventTimingSense:
		s.timingSense = ev.Value
	case EventWhen:
		s.when = ev.Value
	case EventTimingBlock:
		// sense and when do not carry over between timing groups
		s.timingSense = SenseNone
		s.when = NoCondition
	}
}

func (s *scanState) key(tableType string) TableKey {
	return TableKey{
		Cell:       s.cell,
		Pin:        s.pin,
		RelatedPin: s.relatedPin,
		TimingType: s.timingType,
		When:       s.when,
		Sense:      s.timingSense,
		TableType:  tableType,
	}
}
