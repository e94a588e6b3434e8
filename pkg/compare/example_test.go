package compare_test

import (
	"fmt"

	"github.com/matzehuels/passrank/pkg/compare"
)

func ExampleTop() {
	movers := []compare.Mover{
		{ID: 0, Entity: "Albania", Delta: 1},
		{ID: 1, Entity: "Algeria", Delta: -3},
		{ID: 2, Entity: "Andorra", Delta: 3},
		{ID: 3, Entity: "Angola", Delta: 0},
	}

	// Equal magnitudes keep entity order
	for _, m := range compare.Top(movers, 2) {
		fmt.Printf("%s %+d\n", m.Entity, m.Delta)
	}
	// Output:
	// Algeria -3
	// Andorra +3
}

func ExampleBiggest() {
	m, ok := compare.Biggest([]compare.Mover{
		{ID: 0, Entity: "Albania", Delta: 2},
		{ID: 1, Entity: "Algeria", Delta: -2},
	})
	fmt.Println(m.Entity, ok)

	_, ok = compare.Biggest(nil)
	fmt.Println(ok)
	// Output:
	// Albania true
	// false
}
