package liberty

import (
	"fmt"
	"strconv"
	"strings"
)

// Extracted is the raw content of one table block.
type Extracted struct {
	Sigma  string
	Index1 []string
	Index2 []string
	Values []float64
}

// Extract reads one table starting at the line after its header. It returns
// the table content and a cursor positioned after the closing brace line.
//
// The sigma_type tag is taken from any matching line before the first index
// line. The line right after index_1 is read as index_2 without checking
// that it is one. Value rows are collected up to the first line containing
// '}'.
func Extract(cur Cursor, c *Classifier) (Extracted, Cursor, error) {
	ext := Extracted{Sigma: SigmaNone}

	var line string
	for {
		l, ok := cur.Peek()
		if !ok {
			return ext, cur, fmt.Errorf("%w: looking for index_1 at line %d", ErrUnexpectedEOF, cur.LineNumber())
		}
		if c.IsSigmaType(l) {
			if v := attrValue(l); v != "" {
				ext.Sigma = v
			}
		}
		if c.IsIndex(l) {
			line = l
			break
		}
		cur = cur.Advance()
	}
	ext.Index1 = quotedList(line)
	cur = cur.Advance()

	line, ok := cur.Peek()
	if !ok {
		return ext, cur, fmt.Errorf("%w: looking for index_2 at line %d", ErrUnexpectedEOF, cur.LineNumber())
	}
	ext.Index2 = quotedList(line)
	cur = cur.Advance()

	ext.Values = make([]float64, 0, len(ext.Index1)*len(ext.Index2))
	inQuote := false
	for {
		line, ok := cur.Peek()
		if !ok {
			return ext, cur, fmt.Errorf("%w: looking for end of values at line %d", ErrUnexpectedEOF, cur.LineNumber())
		}
		lineNo := cur.LineNumber()
		cur = cur.Advance()

		if inQuote || strings.Contains(line, `"`) {
			var segs []string
			segs, inQuote = quotedSegments(line, inQuote)
			for _, seg := range segs {
				for _, field := range splitList(seg) {
					v, err := strconv.ParseFloat(field, 64)
					if err != nil {
						return ext, cur, fmt.Errorf("%w: %q at line %d", ErrMalformedValue, field, lineNo)
					}
					ext.Values = append(ext.Values, v)
				}
			}
		}
		if strings.Contains(line, "}") {
			return ext, cur, nil
		}
	}
}

// quotedList returns the comma separated items inside the first quoted
// segment of an index line.
func quotedList(line string) []string {
	parts := strings.Split(line, `"`)
	if len(parts) < 2 {
		return nil
	}
	return splitList(parts[1])
}

// quotedSegments returns the text inside double quotes on one line. A quote
// left open at the end of the line continues on the next one.
func quotedSegments(line string, inQuote bool) ([]string, bool) {
	var segs []string
	start := 0
	for i := 0; i < len(line); i++ {
		if line[i] != '"' {
			continue
		}
		if inQuote {
			segs = append(segs, line[start:i])
		} else {
			start = i + 1
		}
		inQuote = !inQuote
	}
	if inQuote {
		segs = append(segs, line[start:])
	}
	return segs, inQuote
}

func splitList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(strings.Trim(strings.TrimSpace(f), `\`))
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
