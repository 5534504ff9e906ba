package jinjaspan

// Built-in tag parsers for the features SPEC_FULL.md §12 supplements beyond
// core Jinja2 control flow: autoescape/spaceless/with/filter (block tags)
// and cycle/ifchanged/firstof/widthratio/lorem/now/templatetag (inline
// value tags), grounded on pongo2's equivalent tag set.

func (p *parser) parseAutoescape(start Token) Node {
	onTok, ok := p.expectIdentifier()
	on := ok && onTok.Lexeme == "on"
	p.expectBlockEnd()

	stop := builtinEndTags["autoescape"]
	body := p.parseBody(stop)
	endSpan := p.consumeGenericEnd(start, stop, "endautoescape")
	return &Autoescape{baseSpan{start.Span.Cover(endSpan)}, on, body}
}

func (p *parser) parseSpaceless(start Token) Node {
	p.expectBlockEnd()
	stop := builtinEndTags["spaceless"]
	body := p.parseBody(stop)
	endSpan := p.consumeGenericEnd(start, stop, "endspaceless")
	return &Spaceless{baseSpan{start.Span.Cover(endSpan)}, body}
}

// parseWith parses {% with a=1, b=2 %}body{% endwith %}.
func (p *parser) parseWith(start Token) Node {
	var bindings []KwArg
	for {
		nameTok, ok := p.expectIdentifier()
		if !ok {
			break
		}
		if !p.atOp("=") {
			break
		}
		p.advance()
		val := p.parseOr()
		bindings = append(bindings, KwArg{Name: nameTok.Lexeme, Value: val})
		if p.atPunct(",") {
			p.advance()
			continue
		}
		break
	}
	p.expectBlockEnd()
	stop := builtinEndTags["with"]
	body := p.parseBody(stop)
	endSpan := p.consumeGenericEnd(start, stop, "endwith")
	return &With{baseSpan{start.Span.Cover(endSpan)}, bindings, body}
}

// parseFilterTag parses {% filter name(args) %}body{% endfilter %}.
func (p *parser) parseFilterTag(start Token) Node {
	nameTok, _ := p.expectIdentifier()
	var args []Expr
	kwargs := map[string]Expr{}
	if p.atPunct("(") {
		argExprs, kwExprs := p.parseCallArgs()
		args = argExprs
		for _, kw := range kwExprs {
			kwargs[kw.Name] = kw.Value
		}
	}
	p.expectBlockEnd()
	stop := builtinEndTags["filter"]
	body := p.parseBody(stop)
	endSpan := p.consumeGenericEnd(start, stop, "endfilter")
	return &FilterTag{baseSpan{start.Span.Cover(endSpan)}, nameTok.Lexeme, args, kwargs, body}
}

// consumeGenericEnd consumes a plain `{% endname %}` with no trailing
// grammar, emitting Parser/MissingEndTag if it isn't there.
func (p *parser) consumeGenericEnd(start Token, stop map[string]bool, want string) Span {
	if _, ok := p.peekStopTag(stop); ok {
		p.consumeStopTagPrefix()
		end := p.tokens[max(0, p.tokensIdx-1)].Span
		p.expectBlockEnd()
		return end
	}
	p.sink.Addf(CatParserMissingEndTag, SeverityError, start.Span, "missing %s", want)
	return start.Span
}

// parseCycle parses {% cycle a, b, c [as name] [silent] %}.
func (p *parser) parseCycle(start Token) Node {
	var values []Expr
	values = append(values, p.parseOr())
	for p.atPunct(",") {
		p.advance()
		values = append(values, p.parseOr())
	}
	node := &Cycle{Values: values}
	end := values[len(values)-1].Span()
	if p.atKeyword("as") {
		p.advance()
		aliasTok, _ := p.expectIdentifier()
		node.As = aliasTok.Lexeme
		end = aliasTok.Span
	}
	if p.atKeyword("silent") {
		end = p.advance().Span
		node.Silent = true
	}
	node.baseSpan = baseSpan{start.Span.Cover(end)}
	p.expectBlockEnd()
	return node
}

// parseIfChanged parses {% ifchanged %}body{% endifchanged %} or the value
// form {% ifchanged val1 val2 %} (no body, self-closing).
func (p *parser) parseIfChanged(start Token) Node {
	var values []Expr
	for !p.atBlockEndLike() {
		values = append(values, p.parseOr())
	}
	p.expectBlockEnd()
	if len(values) > 0 {
		return &IfChanged{baseSpan{start.Span.Cover(values[len(values)-1].Span())}, values, nil}
	}
	stop := map[string]bool{"endifchanged": true}
	body := p.parseBody(stop)
	endSpan := p.consumeGenericEnd(start, stop, "endifchanged")
	return &IfChanged{baseSpan{start.Span.Cover(endSpan)}, nil, body}
}

func (p *parser) atBlockEndLike() bool {
	return p.cur().Kind == TokenBlockEnd || p.atEnd()
}

// parseFirstOf parses {% firstof a b c "default" %}.
func (p *parser) parseFirstOf(start Token) Node {
	var values []Expr
	for !p.atBlockEndLike() {
		values = append(values, p.parseOr())
	}
	end := start.Span
	if len(values) > 0 {
		end = values[len(values)-1].Span()
	}
	p.expectBlockEnd()
	return &FirstOf{baseSpan{start.Span.Cover(end)}, values}
}

// parseWidthRatio parses {% widthratio value max_value max_width %}.
func (p *parser) parseWidthRatio(start Token) Node {
	value := p.parseOr()
	maxValue := p.parseOr()
	maxWidth := p.parseOr()
	end := maxWidth.Span()
	p.expectBlockEnd()
	return &WidthRatio{baseSpan{start.Span.Cover(end)}, value, maxValue, maxWidth}
}

// parseLorem parses {% lorem [count] [w|p|b] [random] %}.
func (p *parser) parseLorem(start Token) Node {
	node := &Lorem{Method: "p"}
	end := start.Span
	if p.cur().Kind == TokenNumber {
		tok := p.advance()
		node.Count = p.parseNumberLiteral(tok)
		end = tok.Span
	}
	if p.atKeyword("w") || p.atKeyword("p") || p.atKeyword("b") {
		tok := p.advance()
		node.Method = tok.Lexeme
		end = tok.Span
	}
	if p.atKeyword("random") {
		end = p.advance().Span
		node.Random = true
	}
	node.baseSpan = baseSpan{start.Span.Cover(end)}
	p.expectBlockEnd()
	return node
}

// parseNow parses {% now "format" %}.
func (p *parser) parseNow(start Token) Node {
	format := p.parseOr()
	end := format.Span()
	p.expectBlockEnd()
	return &Now{baseSpan{start.Span.Cover(end)}, format}
}

// parseTemplateTag parses {% templatetag name %}.
func (p *parser) parseTemplateTag(start Token) Node {
	nameTok, _ := p.expectIdentifier()
	end := nameTok.Span
	p.expectBlockEnd()
	return &TemplateTag{baseSpan{start.Span.Cover(end)}, nameTok.Lexeme}
}

// parseCommentTag parses {% comment %}...{% endcomment %}, discarding the
// body entirely (unlike {# #}, the body isn't tokenized as source text, so
// it's consumed via the same verbatim-span technique as raw/verbatim).
func (p *parser) parseCommentTag(start Token) Node {
	p.expectBlockEnd()
	contentStart := p.tokensIdx
	for {
		if p.atEnd() {
			p.sink.Addf(CatParserMissingEndTag, SeverityError, start.Span, "missing endcomment")
			break
		}
		if p.cur().Kind == TokenBlockStart && p.peekN(1).Kind == TokenIdentifier && p.peekN(1).Lexeme == "endcomment" {
			break
		}
		p.advance()
	}
	end := p.tokens[contentStart].Span
	if contentStart < p.tokensIdx {
		end = p.tokens[p.tokensIdx-1].Span
	}
	if !p.atEnd() {
		p.advance()
		endTok := p.advance()
		end = endTok.Span
		p.expectBlockEnd()
	}
	return &Comment{baseSpan{start.Span.Cover(end)}, ""}
}
