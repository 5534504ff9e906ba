package jinjaspan

import (
	"sort"
	"time"
)

// registerBuiltinFunctions installs a small catalog of global callables
// available unqualified in any expression position (spec §4.3's Call
// evaluation rule falls back to Environment.funcs after macros).
func registerBuiltinFunctions(e *Environment) {
	e.funcs["range"] = funcRange
	e.funcs["dict"] = funcDict
	e.funcs["lipsum"] = funcLipsum
	e.funcs["now"] = funcNow
}

func funcRange(args []*Value, _ map[string]*Value, _ *ExecutionContext) (*Value, error) {
	var start, stop, step int64 = 0, 0, 1
	switch len(args) {
	case 1:
		stop = args[0].Int64()
	case 2:
		start, stop = args[0].Int64(), args[1].Int64()
	default:
		if len(args) >= 3 {
			start, stop, step = args[0].Int64(), args[1].Int64(), args[2].Int64()
		}
	}
	if step == 0 {
		step = 1
	}
	var items []*Value
	if step > 0 {
		for i := start; i < stop; i += step {
			items = append(items, Int(i))
		}
	} else {
		for i := start; i > stop; i += step {
			items = append(items, Int(i))
		}
	}
	return List(items), nil
}

func funcDict(_ []*Value, kwargs map[string]*Value, _ *ExecutionContext) (*Value, error) {
	order := make([]string, 0, len(kwargs))
	for k := range kwargs {
		order = append(order, k)
	}
	// Deterministic key order matters for snapshot output; FromGo sorts,
	// mirror that here rather than leaving map iteration order.
	sort.Strings(order)
	return StringDict(kwargs, order), nil
}

func funcLipsum(args []*Value, _ map[string]*Value, _ *ExecutionContext) (*Value, error) {
	n := 1
	if len(args) > 0 {
		n = int(args[0].Int64())
	}
	paras := make([]string, 0, n)
	for i := 0; i < n; i++ {
		paras = append(paras, loremParagraph)
	}
	return Safe(joinParagraphs(paras)), nil
}

func funcNow(args []*Value, _ map[string]*Value, _ *ExecutionContext) (*Value, error) {
	_ = args
	return TimeValue(time.Now()), nil
}

func joinParagraphs(paras []string) string {
	out := ""
	for i, p := range paras {
		if i > 0 {
			out += "\n\n"
		}
		out += "<p>" + p + "</p>"
	}
	return out
}
