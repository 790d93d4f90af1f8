package graph

import "math"

// Seed places nodes that have never been positioned (X, Y both zero and not
// fixed) on a circle around the centre of a width×height canvas, in slice
// order. Already-positioned nodes are left alone, so nodes carried forward by
// a merge keep their place while newcomers get a deterministic start.
//
// This is initialisation, not layout: the force simulation moves nodes from
// here on.
func Seed(nodes []*Node, width, height float64) int {
	var fresh []*Node
	for _, n := range nodes {
		if !n.Fixed && n.Position == (Point{}) {
			fresh = append(fresh, n)
		}
	}
	if len(fresh) == 0 {
		return 0
	}

	cx, cy := width/2, height/2
	r := math.Min(width, height) / 3
	step := 2 * math.Pi / float64(len(fresh))
	for i, n := range fresh {
		angle := float64(i) * step
		n.Position = Point{X: cx + r*math.Cos(angle), Y: cy + r*math.Sin(angle)}
		n.Velocity = Velocity{}
	}
	return len(fresh)
}
