package jinjaspan

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// execCycle implements {% cycle a, b, c [as name] [silent] %}, grounded on
// pongo2's tags_cycle.go: each visit of the same tag instance advances to
// the next value, wrapping around; state is keyed by node identity so a
// cycle inside a {% for %} body advances once per iteration.
func (r *renderer) execCycle(c *Cycle) {
	idx := r.ctx.cycleIndex[c]
	r.ctx.cycleIndex[c] = idx + 1
	val := r.eval(c.Values[idx%len(c.Values)])
	if c.As != "" {
		r.ctx.assign(c.As, val)
	}
	if !c.Silent {
		r.writeValue(val)
	}
}

// execIfChanged implements {% ifchanged %}body{% endifchanged %} and the
// value form {% ifchanged val1 val2 %}: renders only when the watched
// value(s) differ from the previous visit of this tag instance.
func (r *renderer) execIfChanged(n *IfChanged) {
	var current string
	if len(n.Values) > 0 {
		parts := make([]string, len(n.Values))
		for i, v := range n.Values {
			parts[i] = r.eval(v).String()
		}
		current = strings.Join(parts, "\x00")
	} else {
		current = r.subRender(n.Body)
	}
	if prev, ok := r.ctx.ifchangedLast[n]; ok && prev == current {
		return
	}
	r.ctx.ifchangedLast[n] = current
	if len(n.Values) > 0 {
		for _, v := range n.Values {
			r.writeValue(r.eval(v))
		}
		return
	}
	r.out.WriteString(current)
}

// execWidthRatio implements {% widthratio current max width %}: formula is
// ceil(current/max*width), matching the teacher's tags_widthratio.go.
func (r *renderer) execWidthRatio(n *WidthRatio) {
	current := r.eval(n.Value).Float64()
	max := r.eval(n.MaxValue).Float64()
	width := r.eval(n.MaxWidth).Float64()
	if max == 0 {
		r.ctx.sink.Addf(CatRendererInvalidOperand, SeverityError, n.Span(), "widthratio: division by zero")
		r.out.WriteString("0")
		return
	}
	ratio := int64(math.Ceil(current / max * width))
	r.out.WriteString(strconv.FormatInt(ratio, 10))
}

// loremParagraph/loremWords back {% lorem %} and the lipsum() function,
// grounded on pongo2's tags_lorem.go placeholder-text generator (trimmed
// to a single canonical paragraph since the core never seeds an RNG).
const loremParagraph = "Lorem ipsum dolor sit amet, consectetur adipisici elit, sed eiusmod tempor incidunt ut labore et dolore magna aliqua."

var loremWords = strings.Fields(loremParagraph)

// lorem renders {% lorem [count] [w|p|b] [random] %}. Random is accepted
// for grammar compatibility but selection stays sequential/deterministic
// (see filterRandom's rationale).
func lorem(n *Lorem, r *renderer) string {
	count := 1
	if n.Count != nil {
		count = int(r.eval(n.Count).Int64())
	}
	if count < 1 {
		count = 1
	}
	switch n.Method {
	case "w":
		out := make([]string, count)
		for i := 0; i < count; i++ {
			out[i] = loremWords[i%len(loremWords)]
		}
		return strings.Join(out, " ")
	case "b":
		return strings.Repeat(loremParagraph, count)[:min(count*10, len(loremParagraph)*count)]
	default: // "p"
		paras := make([]string, count)
		for i := range paras {
			paras[i] = "<p>" + loremParagraph + "</p>"
		}
		return strings.Join(paras, "\n")
	}
}

// nowFormat implements {% now "format" %}, reusing the date filter's
// strftime-ish layout translation (SPEC_FULL.md §12).
func nowFormat(layout string) string {
	return time.Now().Format(goLayout(layout))
}

// templateTagMapping mirrors pongo2's tags_templatetag.go literal table.
var templateTagMapping = map[string]string{
	"openblock":     "{%",
	"closeblock":    "%}",
	"openvariable":  "{{",
	"closevariable": "}}",
	"openbrace":     "{",
	"closebrace":    "}",
	"opencomment":   "{#",
	"closecomment":  "#}",
}

func templateTagLiteral(name string) string {
	if s, ok := templateTagMapping[name]; ok {
		return s
	}
	return fmt.Sprintf("{%% templatetag %s %%}", name)
}
