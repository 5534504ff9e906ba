package jinjaspan

// parseSet parses either the single-line form `{% set target = value %}`
// or, when no `=` follows the target, the block form
// `{% set target %}body{% endset %}`.
func (p *parser) parseSet(start Token) Node {
	target := p.parseTarget()

	if p.atOp("=") {
		p.advance()
		value := p.parseExpression()
		end := value.Span()
		p.expectBlockEnd()
		return &Set{baseSpan{start.Span.Cover(end)}, target, value}
	}

	p.expectBlockEnd()
	stop := builtinEndTags["set"]
	body := p.parseBody(stop)
	endSpan := start.Span
	if _, ok := p.peekStopTag(stop); ok {
		p.consumeStopTagPrefix()
		endSpan = p.tokens[max(0, p.tokensIdx-1)].Span
		p.expectBlockEnd()
	} else {
		p.sink.Addf(CatParserMissingEndTag, SeverityError, start.Span, "missing endset")
	}
	return &SetBlock{baseSpan{start.Span.Cover(endSpan)}, target, body}
}
