package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang/snappy"

	"github.com/dd0wney/libcert/pkg/liberty"
)

// snapshotMagic prefixes every snapshot. The trailing byte is the format
// version.
var snapshotMagic = []byte("LCS\x01")

// ErrBadSnapshot is returned for data that is not a readable snapshot.
var ErrBadSnapshot = errors.New("invalid snapshot")

// SnapshotMeta describes where a snapshot came from.
type SnapshotMeta struct {
	RunID     string    `json:"run_id"`
	Source    string    `json:"source"`
	Dialect   string    `json:"dialect"`
	CreatedAt time.Time `json:"created_at"`
}

type snapshotDoc struct {
	Meta   SnapshotMeta    `json:"meta"`
	Tables []snapshotTable `json:"tables"`
}

type snapshotTable struct {
	Cell       string            `json:"cell"`
	Pin        string            `json:"pin"`
	RelatedPin string            `json:"related_pin"`
	TimingType string            `json:"timing_type"`
	When       string            `json:"when"`
	Sense      string            `json:"sense"`
	TableType  string            `json:"table_type"`
	Index1     []string          `json:"index_1"`
	Index2     []string          `json:"index_2"`
	Variants   []snapshotVariant `json:"variants"`
}

type snapshotVariant struct {
	Sigma  string    `json:"sigma_type"`
	Values []float64 `json:"values"`
}

// WriteSnapshot encodes m as snappy-compressed JSON and returns the number
// of bytes written. Values are stored unscaled.
func WriteSnapshot(w io.Writer, meta SnapshotMeta, m *liberty.LibraryModel) (int64, error) {
	doc := snapshotDoc{Meta: meta, Tables: make([]snapshotTable, 0, m.Len())}
	for key, entry := range m.Entries() {
		t := snapshotTable{
			Cell:       key.Cell,
			Pin:        key.Pin,
			RelatedPin: key.RelatedPin,
			TimingType: key.TimingType,
			When:       key.When,
			Sense:      key.Sense,
			TableType:  key.TableType,
			Index1:     entry.Index1(),
			Index2:     entry.Index2(),
		}
		for _, sigma := range entry.Sigmas() {
			values, _ := entry.Values(sigma)
			t.Variants = append(t.Variants, snapshotVariant{Sigma: sigma, Values: values})
		}
		doc.Tables = append(doc.Tables, t)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	compressed := snappy.Encode(nil, data)

	n, err := w.Write(snapshotMagic)
	if err != nil {
		return int64(n), fmt.Errorf("failed to write snapshot header: %w", err)
	}
	k, err := w.Write(compressed)
	total := int64(n + k)
	if err != nil {
		return total, fmt.Errorf("failed to write snapshot: %w", err)
	}
	return total, nil
}

// ReadSnapshot decodes a snapshot written by WriteSnapshot. The returned
// model lists tables and sigma variants in their original order.
func ReadSnapshot(r io.Reader) (SnapshotMeta, *liberty.LibraryModel, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return SnapshotMeta{}, nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	if !bytes.HasPrefix(raw, snapshotMagic) {
		return SnapshotMeta{}, nil, fmt.Errorf("%w: missing header", ErrBadSnapshot)
	}

	data, err := snappy.Decode(nil, raw[len(snapshotMagic):])
	if err != nil {
		return SnapshotMeta{}, nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	var doc snapshotDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return SnapshotMeta{}, nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}

	b := liberty.NewBuilder()
	for _, t := range doc.Tables {
		key := liberty.TableKey{
			Cell:       t.Cell,
			Pin:        t.Pin,
			RelatedPin: t.RelatedPin,
			TimingType: t.TimingType,
			When:       t.When,
			Sense:      t.Sense,
			TableType:  t.TableType,
		}
		for _, v := range t.Variants {
			if len(v.Values) != len(t.Index1)*len(t.Index2) {
				return SnapshotMeta{}, nil, fmt.Errorf("%w: %s/%s has %d values for %dx%d table",
					ErrBadSnapshot, t.Cell, t.TableType, len(v.Values), len(t.Index1), len(t.Index2))
			}
			b.Insert(key, v.Sigma, t.Index1, t.Index2, v.Values)
		}
	}
	return doc.Meta, b.Model(), nil
}
