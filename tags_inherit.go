package jinjaspan

// parseBlockNode parses {% block name %}body{% endblock [name] %}. If the
// trailing name is present and doesn't match the opener, that's
// Parser/MismatchedBlockName (recoverable: the parser keeps the body).
func (p *parser) parseBlockNode(start Token) Node {
	nameTok, ok := p.expectIdentifier()
	if !ok {
		p.recoverToBlockEnd()
		return nil
	}
	p.expectBlockEnd()

	stop := builtinEndTags["block"]
	body := p.parseBody(stop)

	endSpan := start.Span
	if _, ok := p.peekStopTag(stop); ok {
		p.consumeStopTagPrefix()
		endSpan = p.tokens[max(0, p.tokensIdx-1)].Span
		if p.cur().Kind == TokenIdentifier {
			trailing := p.advance()
			if trailing.Lexeme != nameTok.Lexeme {
				p.sink.Addf(CatParserMismatchedBlockName, SeverityError, trailing.Span,
					"endblock name %q does not match block name %q", trailing.Lexeme, nameTok.Lexeme)
			}
			endSpan = trailing.Span
		}
		p.expectBlockEnd()
	} else {
		p.sink.Addf(CatParserMissingEndTag, SeverityError, start.Span, "missing endblock")
	}
	return &Block{baseSpan{start.Span.Cover(endSpan)}, nameTok.Lexeme, body}
}

// parseExtends parses {% extends expr %}; it carries no body.
func (p *parser) parseExtends(start Token) Node {
	expr := p.parseExpression()
	end := expr.Span()
	p.expectBlockEnd()
	return &Extends{baseSpan{start.Span.Cover(end)}, expr}
}

// parseInclude parses
// {% include expr [with context|without context] [ignore missing] %}.
func (p *parser) parseInclude(start Token) Node {
	expr := p.parseExpression()
	node := &Include{TemplateExpr: expr}
	end := expr.Span()
	for {
		switch {
		case p.atKeyword("with") && p.peekN(1).Lexeme == "context":
			p.advance()
			end = p.advance().Span
			node.WithContext = true
		case p.atKeyword("without") && p.peekN(1).Lexeme == "context":
			p.advance()
			end = p.advance().Span
			node.WithoutContext = true
		case p.atKeyword("ignore") && p.peekN(1).Lexeme == "missing":
			p.advance()
			end = p.advance().Span
			node.IgnoreMissing = true
		default:
			node.baseSpan = baseSpan{start.Span.Cover(end)}
			p.expectBlockEnd()
			return node
		}
	}
}

// parseImport parses {% import expr as alias %}.
func (p *parser) parseImport(start Token) Node {
	expr := p.parseExpression()
	if !p.atKeyword("as") {
		p.sink.Addf(CatParserExpectedExpression, SeverityError, p.cur().Span, "expected 'as' in import")
		p.expectBlockEnd()
		return &Import{baseSpan{start.Span.Cover(expr.Span())}, expr, ""}
	}
	p.advance()
	aliasTok, _ := p.expectIdentifier()
	end := aliasTok.Span
	p.expectBlockEnd()
	return &Import{baseSpan{start.Span.Cover(end)}, expr, aliasTok.Lexeme}
}

// parseFromImport parses
// {% from expr import name [as alias] (, name [as alias])* [with context] %}.
func (p *parser) parseFromImport(start Token) Node {
	expr := p.parseExpression()
	if !p.atKeyword("import") {
		p.sink.Addf(CatParserExpectedExpression, SeverityError, p.cur().Span, "expected 'import'")
		p.expectBlockEnd()
		return &FromImport{baseSpan: baseSpan{start.Span.Cover(expr.Span())}, TemplateExpr: expr}
	}
	p.advance()

	var names []FromImportName
	for {
		nameTok, ok := p.expectIdentifier()
		if !ok {
			break
		}
		entry := FromImportName{Name: nameTok.Lexeme}
		if p.atKeyword("as") {
			p.advance()
			aliasTok, _ := p.expectIdentifier()
			entry.Alias = aliasTok.Lexeme
		}
		names = append(names, entry)
		if p.atPunct(",") {
			p.advance()
			continue
		}
		break
	}

	withContext := false
	end := p.tokens[max(0, p.tokensIdx-1)].Span
	if p.atKeyword("with") && p.peekN(1).Lexeme == "context" {
		p.advance()
		end = p.advance().Span
		withContext = true
	}
	p.expectBlockEnd()
	return &FromImport{baseSpan{start.Span.Cover(end)}, expr, names, withContext}
}
