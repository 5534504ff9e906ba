package jinjaspan

// parseIf parses {% if test %}body{% elif test %}...{% else %}...{% endif %}.
// An elif chain is represented as nested *If nodes, each the sole element of
// the parent's ElseBody, with IsElif set.
func (p *parser) parseIf(start Token) Node {
	test := p.parseExpression()
	p.expectBlockEnd()

	stop := builtinEndTags["if"]
	body := p.parseBody(stop)

	node := &If{Test: test, Body: body}

	name, ok := p.peekStopTag(stop)
	if !ok {
		p.sink.Addf(CatParserMissingEndTag, SeverityError, start.Span, "missing endif")
		node.baseSpan = baseSpan{start.Span.Cover(p.cur().Span)}
		return node
	}

	switch name {
	case "endif":
		p.consumeStopTagPrefix()
		end := p.tokens[max(0, p.tokensIdx-1)].Span
		p.expectBlockEnd()
		node.baseSpan = baseSpan{start.Span.Cover(end)}
		return node
	case "else":
		p.consumeStopTagPrefix()
		p.expectBlockEnd()
		elseBody := p.parseBody(map[string]bool{"endif": true})
		node.ElseBody = elseBody
		endSpan := start.Span
		if _, ok := p.peekStopTag(map[string]bool{"endif": true}); ok {
			p.consumeStopTagPrefix()
			endSpan = p.tokens[max(0, p.tokensIdx-1)].Span
			p.expectBlockEnd()
		} else {
			p.sink.Addf(CatParserMissingEndTag, SeverityError, start.Span, "missing endif")
		}
		node.baseSpan = baseSpan{start.Span.Cover(endSpan)}
		return node
	case "elif":
		elifStart := p.cur() // BlockStart of "{% elif"
		p.consumeStopTagPrefix()
		elif := p.parseIf(elifStart)
		elifNode, _ := elif.(*If)
		if elifNode != nil {
			elifNode.IsElif = true
		}
		node.ElseBody = []Node{elif}
		node.baseSpan = baseSpan{start.Span.Cover(elif.Span())}
		return node
	}
	return node
}

// parseFor parses {% for target in iter %}body{% else %}elseBody{% endfor %}.
func (p *parser) parseFor(start Token) Node {
	target := p.parseTarget()
	if !p.atKeyword("in") {
		p.sink.Addf(CatParserExpectedExpression, SeverityError, p.cur().Span, "expected 'in' in for loop")
	} else {
		p.advance()
	}
	iter := p.parseExpression()
	p.expectBlockEnd()

	stop := builtinEndTags["for"]
	body := p.parseBody(stop)
	node := &For{Target: target, Iter: iter, Body: body}

	name, ok := p.peekStopTag(stop)
	if !ok {
		p.sink.Addf(CatParserMissingEndTag, SeverityError, start.Span, "missing endfor")
		node.baseSpan = baseSpan{start.Span.Cover(p.cur().Span)}
		return node
	}
	if name == "else" {
		p.consumeStopTagPrefix()
		p.expectBlockEnd()
		node.ElseBody = p.parseBody(map[string]bool{"endfor": true})
		endSpan := start.Span
		if _, ok := p.peekStopTag(map[string]bool{"endfor": true}); ok {
			p.consumeStopTagPrefix()
			endSpan = p.tokens[max(0, p.tokensIdx-1)].Span
			p.expectBlockEnd()
		} else {
			p.sink.Addf(CatParserMissingEndTag, SeverityError, start.Span, "missing endfor")
		}
		node.baseSpan = baseSpan{start.Span.Cover(endSpan)}
		return node
	}
	// name == "endfor"
	p.consumeStopTagPrefix()
	end := p.tokens[max(0, p.tokensIdx-1)].Span
	p.expectBlockEnd()
	node.baseSpan = baseSpan{start.Span.Cover(end)}
	return node
}
