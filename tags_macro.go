package jinjaspan

import "strings"

// parseMacro parses {% macro name(p1, p2=default) %}body{% endmacro %}.
func (p *parser) parseMacro(start Token) Node {
	nameTok, ok := p.expectIdentifier()
	if !ok {
		p.recoverToBlockEnd()
		return nil
	}
	var params []MacroParam
	if p.atPunct("(") {
		p.advance()
		if !p.atPunct(")") {
			params = append(params, p.parseMacroParam())
			for p.atPunct(",") {
				p.advance()
				if p.atPunct(")") {
					break
				}
				params = append(params, p.parseMacroParam())
			}
		}
		p.expectPunct(")")
	}
	p.expectBlockEnd()

	stop := builtinEndTags["macro"]
	body := p.parseBody(stop)
	endSpan := start.Span
	if _, ok := p.peekStopTag(stop); ok {
		p.consumeStopTagPrefix()
		endSpan = p.tokens[max(0, p.tokensIdx-1)].Span
		p.expectBlockEnd()
	} else {
		p.sink.Addf(CatParserMissingEndTag, SeverityError, start.Span, "missing endmacro")
	}
	return &Macro{baseSpan{start.Span.Cover(endSpan)}, nameTok.Lexeme, params, body}
}

func (p *parser) parseMacroParam() MacroParam {
	nameTok, _ := p.expectIdentifier()
	var def Expr
	if p.atOp("=") {
		p.advance()
		def = p.parseOr()
	}
	return MacroParam{Name: nameTok.Lexeme, Default: def}
}

// parseAttrChain applies only the `.attr`/`[index]` legs of the postfix
// chain (via the shared applyAttrOrItem) — used by {% call %} to separate
// the callee name from its own argument list, which the tag's grammar
// parses explicitly instead of falling into parsePostfix's `(call)` case.
func (p *parser) parseAttrChain(e Expr) Expr {
	for {
		next, ok := p.applyAttrOrItem(e)
		if !ok {
			return e
		}
		e = next
	}
}

// parseCallBlock parses {% call callee(args) %}body{% endcall %}; body
// becomes the result of caller() inside callee when callee is a macro.
func (p *parser) parseCallBlock(start Token) Node {
	callee := p.parseAttrChain(p.parsePrimary())
	var args []Expr
	var kwargs []KwArg
	if p.atPunct("(") {
		args, kwargs = p.parseCallArgs()
	}
	p.expectBlockEnd()

	stop := builtinEndTags["call"]
	body := p.parseBody(stop)
	endSpan := start.Span
	if _, ok := p.peekStopTag(stop); ok {
		p.consumeStopTagPrefix()
		endSpan = p.tokens[max(0, p.tokensIdx-1)].Span
		p.expectBlockEnd()
	} else {
		p.sink.Addf(CatParserMissingEndTag, SeverityError, start.Span, "missing endcall")
	}
	return &CallBlock{baseSpan{start.Span.Cover(endSpan)}, callee, args, kwargs, body}
}

// parseRaw handles both {% raw %}/{% endraw %} and the supplemented
// {% verbatim %}/{% endverbatim %} alias: everything between the tags is
// concatenated verbatim from the untouched (whitespace-included) token
// stream, with no interpretation at all (spec §4.2's Raw node contract).
func (p *parser) parseRaw(start Token, openName string) Node {
	endName := "end" + openName
	p.expectBlockEnd()

	contentStart := p.tokensIdx
	for {
		if p.atEnd() {
			p.sink.Addf(CatParserMissingEndTag, SeverityError, start.Span, "missing %s", endName)
			break
		}
		if p.cur().Kind == TokenBlockStart && p.peekN(1).Kind == TokenIdentifier && p.peekN(1).Lexeme == endName {
			break
		}
		p.advance()
	}
	contentEnd := p.tokensIdx

	var sb strings.Builder
	for i := contentStart; i < contentEnd; i++ {
		sb.WriteString(p.tokens[i].Lexeme)
	}

	endSpan := start.Span
	if !p.atEnd() {
		p.advance()          // BlockStart
		endTok := p.advance() // identifier
		endSpan = endTok.Span
		p.expectBlockEnd()
	}
	return &Raw{baseSpan{start.Span.Cover(endSpan)}, sb.String()}
}
