// Package relation holds the tabular travel relation that the ranking is
// computed from.
//
// Each [Row] says that holders of a Source passport may enter Target under the
// terms in Classifier. A [Classifier] decides two things about a row: whether
// it is excluded outright (the dataset marks a passport's own country with a
// sentinel) and whether it grants free passage. Free passage means one of a
// small set of exact labels ("visa free", "visa on arrival", "eta") or an
// integer number of allowed days.
//
// [NewTable] trims whitespace from every field and drops excluded rows. The
// resulting [Table] is the only input the graph builder needs:
//
//	t := relation.NewTable(rows, relation.DefaultClassifier())
//	g := graph.Build(t)
//
// How the rows were read (CSV, JSON, a test literal) is not this package's
// concern; see the io package for the CSV loader.
package relation
