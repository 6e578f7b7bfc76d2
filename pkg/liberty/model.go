package liberty

// Default context values.
const (
	NoCondition = "NO_CONDITION"
	SenseNone   = "none"
)

// Sigma type tags.
const (
	SigmaNone  = "none"
	SigmaEarly = "early"
	SigmaLate  = "late"
)

// TableKey addresses one table in a LibraryModel. It replaces the
// cell/pin/related-pin/timing-type/when/sense/table-type nesting with a
// single composite key.
type TableKey struct {
	Cell       string
	Pin        string
	RelatedPin string
	TimingType string
	When       string
	Sense      string
	TableType  string
}

// TableEntry is a two-dimensional lookup table with one value vector per
// sigma type. Values are stored row-major: element (i, j) lives at offset
// i*len(index2)+j.
type TableEntry struct {
	index1 []string
	index2 []string
	values map[string][]float64
	sigmas []string
}

// Index1 returns the axis-1 coordinates.
func (t *TableEntry) Index1() []string {
	return t.index1
}

// Index2 returns the axis-2 coordinates.
func (t *TableEntry) Index2() []string {
	return t.index2
}

// Rows returns len(Index1()).
func (t *TableEntry) Rows() int {
	return len(t.index1)
}

// Cols returns len(Index2()).
func (t *TableEntry) Cols() int {
	return len(t.index2)
}

// Values returns the flattened values for a sigma type.
func (t *TableEntry) Values(sigma string) ([]float64, bool) {
	v, ok := t.values[sigma]
	return v, ok
}

// HasSigma reports whether the sigma variant is populated.
func (t *TableEntry) HasSigma(sigma string) bool {
	_, ok := t.values[sigma]
	return ok
}

// Sigmas returns the populated sigma types in insertion order.
func (t *TableEntry) Sigmas() []string {
	return t.sigmas
}

// Value returns the element at row i, column j of a sigma variant.
func (t *TableEntry) Value(i, j int, sigma string) (float64, bool) {
	v, ok := t.values[sigma]
	if !ok || i < 0 || j < 0 || i >= len(t.index1) || j >= len(t.index2) {
		return 0, false
	}
	off := i*len(t.index2) + j
	if off >= len(v) {
		return 0, false
	}
	return v[off], true
}

// LibraryModel is the parsed content of one library file. It is built by a
// Builder and read-only afterwards.
type LibraryModel struct {
	tables map[TableKey]*TableEntry
	order  []TableKey
	cells  []string
	byCell map[string][]TableKey
}

func newLibraryModel() *LibraryModel {
	return &LibraryModel{
		tables: make(map[TableKey]*TableEntry),
		byCell: make(map[string][]TableKey),
	}
}

// Len returns the number of tables (keys, not sigma variants).
func (m *LibraryModel) Len() int {
	return len(m.order)
}

// Table looks up the entry for a key.
func (m *LibraryModel) Table(key TableKey) (*TableEntry, bool) {
	t, ok := m.tables[key]
	return t, ok
}

// Cells returns the cell names in insertion order.
func (m *LibraryModel) Cells() []string {
	return m.cells
}

// HasCell reports whether any table was recorded for the cell.
func (m *LibraryModel) HasCell(cell string) bool {
	_, ok := m.byCell[cell]
	return ok
}

// Builder inserts extracted tables into a LibraryModel.
type Builder struct {
	model      *LibraryModel
	duplicates int
}

// NewBuilder creates a builder over an empty model.
func NewBuilder() *Builder {
	return &Builder{model: newLibraryModel()}
}

// Insert records one sigma variant of a table. Missing keys are created;
// existing entries keep their first index vectors. The values of a sigma
// variant that is already present are overwritten, and Insert reports true
// in that case.
func (b *Builder) Insert(key TableKey, sigma string, index1, index2 []string, values []float64) bool {
	m := b.model
	t, ok := m.tables[key]
	if !ok {
		t = &TableEntry{
			index1: index1,
			index2: index2,
			values: make(map[string][]float64),
		}
		m.tables[key] = t
		m.order = append(m.order, key)
		if _, seen := m.byCell[key.Cell]; !seen {
			m.cells = append(m.cells, key.Cell)
		}
		m.byCell[key.Cell] = append(m.byCell[key.Cell], key)
	}

	_, overwrite := t.values[sigma]
	if overwrite {
		b.duplicates++
	} else {
		t.sigmas = append(t.sigmas, sigma)
	}
	t.values[sigma] = values
	return overwrite
}

// Duplicates returns how many Insert calls overwrote an existing variant.
func (b *Builder) Duplicates() int {
	return b.duplicates
}

// Model returns the model built so far.
func (b *Builder) Model() *LibraryModel {
	return b.model
}
