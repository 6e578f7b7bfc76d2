package export

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/libcert/pkg/liberty"
)

func flatten(m *liberty.LibraryModel) []string {
	var out []string
	for ref := range m.Flatten() {
		entry, _ := m.Table(ref.TableKey)
		values, _ := entry.Values(ref.Sigma)
		out = append(out, fmt.Sprint(ref, entry.Index1(), entry.Index2(), values))
	}
	return out
}

func TestSnapshotRoundTrip(t *testing.T) {
	m := testModel(t)
	meta := SnapshotMeta{
		RunID:     "run-1",
		Source:    "lib/a.lib",
		Dialect:   "variation",
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	n, err := WriteSnapshot(&buf, meta, m)
	require.NoError(t, err)
	assert.EqualValues(t, buf.Len(), n)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), snapshotMagic))

	gotMeta, got, err := ReadSnapshot(&buf)
	require.NoError(t, err)
	assert.Equal(t, meta, gotMeta)
	assert.Equal(t, flatten(m), flatten(got))
	assert.Equal(t, m.Cells(), got.Cells())
}

func TestReadSnapshot_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"no header", []byte("{}")},
		{"corrupt body", append(append([]byte{}, snapshotMagic...), 0xff, 0xff, 0xff)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ReadSnapshot(bytes.NewReader(tt.data))
			assert.ErrorIs(t, err, ErrBadSnapshot)
		})
	}
}

func TestReadSnapshot_ShapeChecked(t *testing.T) {
	b := liberty.NewBuilder()
	b.Insert(delayKey("X", "CELL_FALL"), liberty.SigmaNone, []string{"1", "2"}, []string{"1"}, []float64{1})

	var buf bytes.Buffer
	_, err := WriteSnapshot(&buf, SnapshotMeta{}, b.Model())
	require.NoError(t, err)

	_, _, err = ReadSnapshot(&buf)
	assert.ErrorIs(t, err, ErrBadSnapshot)
}
