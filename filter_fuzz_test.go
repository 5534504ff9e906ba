package jinjaspan

import (
	"fmt"
	"testing"
)

// FuzzFilterChain fuzzes every registered filter with a handful of input
// shapes, grounded on the teacher's filter_fuzz_test.go style: filters must
// never panic, even on nonsensical input/argument combinations.
func FuzzFilterChain(f *testing.F) {
	f.Add("hello world", "upper")
	f.Add("", "lower")
	f.Add("12.5", "floatformat")
	f.Add("1234567", "filesizeformat")
	f.Add("a,b,c", "join")

	env := NewEnvironment()
	names := env.FilterNames()

	f.Fuzz(func(t *testing.T, in, filterName string) {
		found := false
		for _, n := range names {
			if n == filterName {
				found = true
				break
			}
		}
		if !found {
			return
		}
		src := fmt.Sprintf("{{ value | %s }}", filterName)
		_, _ = Render(env, "fuzz", src, Context{"value": in})
	})
}
