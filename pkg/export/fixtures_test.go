package export

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dd0wney/libcert/pkg/liberty"
)

func delayKey(cell, table string) liberty.TableKey {
	return liberty.TableKey{
		Cell:       cell,
		Pin:        "Z",
		RelatedPin: "A",
		TimingType: "combinational",
		When:       liberty.NoCondition,
		Sense:      "positive_unate",
		TableType:  table,
	}
}

// testModel has a 2x3 delay table and a 1x2 constraint table with two
// sigma variants.
func testModel(t *testing.T) *liberty.LibraryModel {
	t.Helper()
	b := liberty.NewBuilder()
	b.Insert(delayKey("NAND2", "CELL_RISE"), liberty.SigmaNone,
		[]string{"0.1", "0.2"}, []string{"1", "2", "3"},
		[]float64{0.001, 0.002, 0.003, 0.004, 0.005, 0.006})

	hold := liberty.TableKey{
		Cell:       "DFF",
		Pin:        "D",
		RelatedPin: "CK",
		TimingType: "hold_rising",
		When:       "RN",
		Sense:      liberty.SenseNone,
		TableType:  "ocv_sigma_rise_constraint",
	}
	b.Insert(hold, liberty.SigmaEarly, []string{"0.5"}, []string{"0.1", "0.2"}, []float64{0.01, 0.02})
	b.Insert(hold, liberty.SigmaLate, []string{"0.5"}, []string{"0.1", "0.2"}, []float64{0.03, 0.04})
	m := b.Model()
	require.Equal(t, 2, m.Len())
	return m
}

const nandLibrary = `cell (NAND2) {
  pin (Z) {
    timing () {
      related_pin : "A";
      timing_type : combinational;
      timing_sense : positive_unate;
      cell_rise (delay_template_1x2) {
        index_1 ("0.1");
        index_2 ("1, 2");
        values ("0.5, 0.75");
      }
    }
  }
}
`
