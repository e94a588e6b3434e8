package relation

import (
	"slices"
	"strconv"
	"strings"
)

// NotApplicable is the classifier the passport index dataset uses for a
// passport's row about its own country.
const NotApplicable = "-1"

// DefaultFreePassageLabels are the classifier values that grant entry without
// a visa obtained in advance.
var DefaultFreePassageLabels = []string{"visa free", "visa on arrival", "eta"}

// Row is one record of the relation: Source may travel to Target under the
// terms named by Classifier.
type Row struct {
	Source     string
	Target     string
	Classifier string
}

// Trimmed returns a copy of r with surrounding whitespace removed from every field.
func (r Row) Trimmed() Row {
	return Row{
		Source:     strings.TrimSpace(r.Source),
		Target:     strings.TrimSpace(r.Target),
		Classifier: strings.TrimSpace(r.Classifier),
	}
}

// Classifier decides which rows are excluded and which rows are free passage.
//
// The zero value excludes nothing and treats only integer day counts as free
// passage. Use [DefaultClassifier] for the passport index semantics.
type Classifier struct {
	// Labels are matched exactly and case-sensitively.
	Labels []string
	// Excluded is the sentinel classifier of rows dropped before processing.
	// An empty string disables exclusion.
	Excluded string
}

// DefaultClassifier returns the classifier matching the passport index dataset.
func DefaultClassifier() Classifier {
	return Classifier{
		Labels:   slices.Clone(DefaultFreePassageLabels),
		Excluded: NotApplicable,
	}
}

// IsFreePassage reports whether classifier grants free passage: an exact
// match to one of the labels, or any string that parses as a 32-bit base-10
// integer. Sign is ignored.
func (c Classifier) IsFreePassage(classifier string) bool {
	classifier = strings.TrimSpace(classifier)
	if slices.Contains(c.Labels, classifier) {
		return true
	}
	_, err := strconv.ParseInt(classifier, 10, 32)
	return err == nil
}

// IsExcluded reports whether the row carries the sentinel classifier.
func (c Classifier) IsExcluded(classifier string) bool {
	return c.Excluded != "" && strings.TrimSpace(classifier) == c.Excluded
}

// IsFreePassage applies the default classifier.
func IsFreePassage(classifier string) bool {
	return DefaultClassifier().IsFreePassage(classifier)
}
