package textloc_test

import (
	"fmt"

	"github.com/sboosali/notegraph/pkg/textloc"
)

func ExampleLocate() {
	text := "alice knows bob\nbob trusts carol\n"
	r, _ := textloc.Locate(text, 1)
	fmt.Println(r.Start, r.End, r.Slice(text))

	_, err := textloc.Locate(text, 5)
	fmt.Println(err)
	// Output:
	// 16 32 bob trusts carol
	// OUT_OF_RANGE: line 5 out of range [0, 3)
}
