package fisheye_test

import (
	"fmt"

	"github.com/sboosali/notegraph/pkg/fisheye"
	"github.com/sboosali/notegraph/pkg/graph"
)

func ExampleDistort() {
	focus := graph.Point{X: 0, Y: 0}
	for _, x := range []float64{0, 25, 50, 100, 200} {
		d := fisheye.Distort(graph.Point{X: x}, focus, 3, 100)
		fmt.Printf("x=%-3v -> %.1f (scale %.2f)\n", x, d.X, d.Scale)
	}
	// Output:
	// x=0   -> 0.0 (scale 4.00)
	// x=25  -> 57.1 (scale 2.29)
	// x=50  -> 80.0 (scale 1.60)
	// x=100 -> 100.0 (scale 1.00)
	// x=200 -> 200.0 (scale 1.00)
}
