// Package export writes parsed library models to the sinks downstream
// golden-result comparisons read from: CSV table points, compressed model
// snapshots, a Postgres point store and S3 artifact uploads.
package export

import (
	"iter"

	"github.com/dd0wney/libcert/pkg/liberty"
)

// Point is one table element addressed by its flattened leaf and its row
// and column.
type Point struct {
	liberty.TableRef
	Row    int
	Col    int
	Index1 string
	Index2 string
	Value  float64 // multiplied by the export scale
}

// Points yields every element of every leaf of m in flatten order, rows
// before columns. Values are multiplied by scale.
func Points(m *liberty.LibraryModel, scale float64) iter.Seq[Point] {
	return func(yield func(Point) bool) {
		for ref := range m.Flatten() {
			entry, ok := m.Table(ref.TableKey)
			if !ok {
				continue
			}
			values, _ := entry.Values(ref.Sigma)
			index1, index2 := entry.Index1(), entry.Index2()
			cols := len(index2)
			for off, v := range values {
				i, j := off/cols, off%cols
				p := Point{
					TableRef: ref,
					Row:      i,
					Col:      j,
					Index1:   index1[i],
					Index2:   index2[j],
					Value:    v * scale,
				}
				if !yield(p) {
					return
				}
			}
		}
	}
}

// CountPoints returns the number of points Points would yield.
func CountPoints(m *liberty.LibraryModel) int {
	n := 0
	for ref := range m.Flatten() {
		entry, _ := m.Table(ref.TableKey)
		values, _ := entry.Values(ref.Sigma)
		n += len(values)
	}
	return n
}
