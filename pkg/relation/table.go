package relation

// Table is the normalized, filtered relation. Rows are trimmed and rows with
// the excluded sentinel are gone. A Table is not modified after construction.
type Table struct {
	rows       []Row
	classifier Classifier
	excluded   int
}

// NewTable trims every row and drops the rows the classifier excludes.
// Input order is preserved.
func NewTable(rows []Row, c Classifier) *Table {
	t := &Table{
		rows:       make([]Row, 0, len(rows)),
		classifier: c,
	}
	for _, r := range rows {
		r = r.Trimmed()
		if c.IsExcluded(r.Classifier) {
			t.excluded++
			continue
		}
		t.rows = append(t.rows, r)
	}
	return t
}

// Rows returns the retained rows in input order. The slice must not be modified.
func (t *Table) Rows() []Row { return t.rows }

// Len returns the number of retained rows.
func (t *Table) Len() int { return len(t.rows) }

// Excluded returns how many rows were dropped by the sentinel.
func (t *Table) Excluded() int { return t.excluded }

// Classifier returns the classifier the table was built with.
func (t *Table) Classifier() Classifier { return t.classifier }

// FreePassage reports whether r contributes a directed edge.
func (t *Table) FreePassage(r Row) bool {
	return t.classifier.IsFreePassage(r.Classifier)
}
