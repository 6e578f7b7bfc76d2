package liberty

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// invLibrary is a minimal nominal library with one delay table.
const invLibrary = `library (test) {
  lu_table_template (delay_template_2x2) {
    variable_1 : input_net_transition;
    index_1 ("1, 2");
  }
  cell (INV) {
    pin (A) {
      timing () {
        related_pin : "B";
        timing_type : combinational;
        cell_rise (delay_template_2x2) {
          index_1 ("1,2");
          index_2 ("3,4");
          values ("10,20,
30,40");
        }
      }
    }
  }
}
`

// mixedLibrary carries delay, slew, constraint, power and min_pulse_width
// tables across two cells.
const mixedLibrary = `library (mixed) {
  cell (NAND2) {
    pin (Y) {
      timing () {
        related_pin : "A";
        timing_sense : negative_unate;
        timing_type : combinational;
        cell_rise (delay_template_2x3) {
          index_1 ("0.1, 0.2");
          index_2 ("1, 2, 3");
          values ("1, 2, 3", \
                  "4, 5, 6");
        }
        rise_transition (delay_template_2x3) {
          index_1 ("0.1, 0.2");
          index_2 ("1, 2, 3");
          values ("7, 8, 9", \
                  "10, 11, 12");
        }
      }
      internal_power () {
        related_pin : "A";
        rise_power (power_template_2x2) {
          index_1 ("1, 2");
          index_2 ("3, 4");
          values ("0.5, 0.5", "0.5, 0.5");
        }
      }
    }
  }
  cell (DFF) {
    pin (D) {
      timing () {
        related_pin : "CK";
        timing_type : setup_rising;
        rise_constraint (constraint_template_2x2) {
          index_1 ("0.1, 0.2");
          index_2 ("0.3, 0.4");
          values ("0.01, 0.02", "0.03, 0.04");
        }
      }
    }
    pin (CK) {
      timing () {
        related_pin : "CK";
        timing_type : min_pulse_width;
        rise_constraint (constraint_template_2x2) {
          index_1 ("0.1, 0.2");
          index_2 ("0.3, 0.4");
          values ("9, 9", "9, 9");
        }
      }
    }
  }
}
`

// ocvLibrary is a variation file with early and late sigma variants of one
// constraint table.
const ocvLibrary = `library (ocv) {
  cell (DFF) {
    pin (D) {
      timing () {
        related_pin : "CK";
        timing_type : hold_rising;
        when : "RN";
        ocv_sigma_rise_constraint (constraint_template_2x2) {
          sigma_type : early;
          index_1 ("0.1, 0.2");
          index_2 ("0.3, 0.4");
          values ("1, 2", "3, 4");
        }
        ocv_sigma_rise_constraint (constraint_template_2x2) {
          sigma_type : late;
          index_1 ("0.1, 0.2");
          index_2 ("0.3, 0.4");
          values ("5, 6", "7, 8");
        }
        cell_rise (delay_template_2x2) {
          index_1 ("1, 2");
          index_2 ("3, 4");
          values ("1, 1", "1, 1");
        }
      }
    }
  }
}
`

func newTestParser(t *testing.T, d Dialect, c Class) *Parser {
	t.Helper()
	p, err := NewParser(Options{Dialect: d, Class: c})
	require.NoError(t, err)
	return p
}

func mustParse(t *testing.T, p *Parser, name, text string) *Result {
	t.Helper()
	res, err := p.Parse(context.Background(), LinesFromString(name, text))
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func collect(m *LibraryModel) []TableRef {
	var refs []TableRef
	for ref := range m.Flatten() {
		refs = append(refs, ref)
	}
	return refs
}
