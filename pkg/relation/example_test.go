package relation_test

import (
	"fmt"

	"github.com/matzehuels/passrank/pkg/relation"
)

func ExampleClassifier_IsFreePassage() {
	c := relation.DefaultClassifier()

	for _, s := range []string{"visa free", "eta", "90", "Visa Free", "e-visa", "visa required"} {
		fmt.Printf("%q: %v\n", s, c.IsFreePassage(s))
	}
	// Output:
	// "visa free": true
	// "eta": true
	// "90": true
	// "Visa Free": false
	// "e-visa": false
	// "visa required": false
}

func ExampleNewTable() {
	// The self row carries the sentinel and is dropped
	t := relation.NewTable([]relation.Row{
		{Source: "Albania", Target: "Albania", Classifier: "-1"},
		{Source: " Albania", Target: "Andorra ", Classifier: "90"},
		{Source: "Albania", Target: "Algeria", Classifier: "e-visa"},
	}, relation.DefaultClassifier())

	fmt.Println("Rows:", t.Len())
	fmt.Println("Excluded:", t.Excluded())
	for _, r := range t.Rows() {
		fmt.Printf("%s -> %s free=%v\n", r.Source, r.Target, t.FreePassage(r))
	}
	// Output:
	// Rows: 2
	// Excluded: 1
	// Albania -> Andorra free=true
	// Albania -> Algeria free=false
}
