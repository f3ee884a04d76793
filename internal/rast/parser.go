// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package rast

import "strings"

// Diagnostic mirrors the severity-free "warn, keep going" shape the rest of
// the pipeline uses; the parser only ever produces ParseTolerable-kind
// warnings (see pkg/types.Diagnostic for the kind string itself).
type Diagnostic struct {
	File    string
	Line    int
	Message string
}

// Parse tokenizes and parses src, returning the top-level node list and any
// diagnostics raised for regions it could not interpret. It never errors:
// an unrecognized line comes back as an Unknown node with its own
// diagnostic, and a file that yields no statements at all (empty or
// comment-only) returns an empty slice and one diagnostic.
func Parse(file string, src string) ([]Node, []Diagnostic) {
	p := &parser{file: file, lines: strings.Split(src, "\n"), toks: lex(src)}
	nodes := p.parseBody(func(token) bool { return false })
	if len(nodes) == 0 {
		p.diags = append(p.diags, Diagnostic{File: file, Line: 1, Message: "no recognizable top-level constructs"})
	}
	return nodes, p.diags
}

type parser struct {
	file  string
	lines []string
	toks  []token
	pos   int
	diags []Diagnostic
}

func (p *parser) cur() token {
	if p.pos >= len(p.toks) {
		return token{kind: tokEOF}
	}
	return p.toks[p.pos]
}

func (p *parser) peek(n int) token {
	i := p.pos + n
	if i >= len(p.toks) {
		return token{kind: tokEOF}
	}
	return p.toks[i]
}

func (p *parser) advance() token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *parser) atPunct(s string) bool {
	t := p.cur()
	return t.kind == tokPunct && t.text == s
}

func (p *parser) atKeyword(s string) bool {
	t := p.cur()
	return t.kind == tokKeyword && t.text == s
}

func (p *parser) atAnyKeyword(opts ...string) bool {
	for _, o := range opts {
		if p.atKeyword(o) {
			return true
		}
	}
	return false
}

func (p *parser) atEOF() bool { return p.cur().kind == tokEOF }

func (p *parser) skipNewlines() {
	for p.cur().kind == tokNewline {
		p.advance()
	}
}

func (p *parser) skipToNewline() {
	for p.cur().kind != tokNewline && p.cur().kind != tokEOF {
		p.advance()
	}
}

func (p *parser) warn(line int, msg string) {
	p.diags = append(p.diags, Diagnostic{File: p.file, Line: line, Message: msg})
}

func (p *parser) rawLine(n int) string {
	if n-1 >= 0 && n-1 < len(p.lines) {
		return p.lines[n-1]
	}
	return ""
}

// parseBody consumes statements until stop(currentToken) is true or EOF.
func (p *parser) parseBody(stop func(token) bool) []Node {
	var nodes []Node
	for {
		p.skipNewlines()
		if p.atEOF() || stop(p.cur()) {
			return nodes
		}
		nodes = append(nodes, p.parseStatement())
	}
}

func stopAtKeywords(kws ...string) func(token) bool {
	return func(t token) bool {
		if t.kind != tokKeyword {
			return false
		}
		for _, k := range kws {
			if t.text == k {
				return true
			}
		}
		return false
	}
}

func stopAtBrace(t token) bool {
	return t.kind == tokPunct && t.text == "}"
}

func (p *parser) parseStatement() Node {
	switch {
	case p.atKeyword("class"):
		return p.parseClassDef()
	case p.atKeyword("module"):
		return p.parseModuleDef()
	case p.atKeyword("def"):
		return p.parseMethodDef()
	case p.atKeyword("if") || p.atKeyword("unless"):
		return p.parseIfExpr()
	}

	// Top-level assignment: IDENT/CONST '=' expr (not '==' or '=>').
	if (p.cur().kind == tokIdent || p.cur().kind == tokConst) &&
		p.peek(1).kind == tokPunct && p.peek(1).text == "=" {
		line := p.cur().line
		target := p.advance().text
		p.advance() // '='
		val := p.parsePrimaryExpr()
		p.skipToNewline()
		return Node{Kind: KindAssign, Pos: Pos{p.file, line}, Target: target, Value: &val}
	}

	if p.cur().kind == tokIdent || p.cur().kind == tokConst || p.cur().kind == tokKeyword {
		return p.parseCallStatement()
	}

	// Unrecognized start of statement: swallow the raw line as Unknown.
	line := p.cur().line
	raw := strings.TrimSpace(p.rawLine(line))
	p.warn(line, "unparseable statement")
	p.skipToNewline()
	return Node{Kind: KindUnknown, Pos: Pos{p.file, line}, Raw: raw}
}

func (p *parser) readQualifiedConst() string {
	var parts []string
	for p.cur().kind == tokConst {
		parts = append(parts, p.advance().text)
		if p.atPunct("::") {
			p.advance()
			continue
		}
		break
	}
	return strings.Join(parts, "::")
}

func (p *parser) parseClassDef() Node {
	line := p.cur().line
	p.advance() // 'class'
	name := p.readQualifiedConst()
	if name == "" {
		p.warn(line, "class without a name")
		p.skipToNewline()
		return Node{Kind: KindUnknown, Pos: Pos{p.file, line}, Raw: strings.TrimSpace(p.rawLine(line))}
	}
	parent := ""
	if p.atPunct("<") {
		p.advance()
		parent = p.readQualifiedConst()
	}
	p.skipToNewline()
	body := p.parseBody(stopAtKeywords("end"))
	if p.atKeyword("end") {
		p.advance()
	}
	return Node{Kind: KindClassDef, Pos: Pos{p.file, line}, ClassName: name, ParentName: parent, Body: body}
}

func (p *parser) parseModuleDef() Node {
	line := p.cur().line
	p.advance() // 'module'
	name := p.readQualifiedConst()
	p.skipToNewline()
	body := p.parseBody(stopAtKeywords("end"))
	if p.atKeyword("end") {
		p.advance()
	}
	return Node{Kind: KindModuleDef, Pos: Pos{p.file, line}, ClassName: name, Body: body}
}

func (p *parser) parseMethodDef() Node {
	line := p.cur().line
	p.advance() // 'def'
	name := ""
	if p.cur().kind == tokIdent || p.cur().kind == tokConst || p.cur().kind == tokKeyword {
		name = p.advance().text
	}
	// self.foo / receiver.foo= setters: swallow a following '.' name.
	if p.atPunct(".") {
		p.advance()
		if p.cur().kind == tokIdent || p.cur().kind == tokConst {
			name = p.advance().text
		}
	}
	if p.atPunct("=") {
		p.advance()
		name += "="
	}
	p.skipToNewline()
	stop := stopAtKeywords("end", "rescue", "ensure")
	body := p.parseBody(stop)
	for p.atKeyword("rescue") || p.atKeyword("ensure") {
		p.advance()
		p.skipToNewline()
		body = append(body, p.parseBody(stop)...)
	}
	if p.atKeyword("end") {
		p.advance()
	}
	return Node{Kind: KindMethodDef, Pos: Pos{p.file, line}, MethodName: name, Body: body}
}

func (p *parser) parseIfExpr() Node {
	line := p.cur().line
	p.advance() // 'if' or 'unless'
	cond := p.parsePrimaryExpr()
	p.skipToNewline()
	thenBody := p.parseBody(stopAtKeywords("elsif", "else", "end"))

	var elseBody []Node
	if p.atKeyword("elsif") {
		elseBody = []Node{p.parseElsifChain()}
		return Node{Kind: KindIfExpr, Pos: Pos{p.file, line}, Cond: &cond, Then: thenBody, Else: elseBody}
	}
	if p.atKeyword("else") {
		p.advance()
		p.skipToNewline()
		elseBody = p.parseBody(stopAtKeywords("end"))
	}
	if p.atKeyword("end") {
		p.advance()
	}
	return Node{Kind: KindIfExpr, Pos: Pos{p.file, line}, Cond: &cond, Then: thenBody, Else: elseBody}
}

// parseElsifChain treats `elsif COND ... (elsif|else|end)` as a nested
// IfExpr so the top-level node keeps the simple {Cond, Then, Else} shape.
func (p *parser) parseElsifChain() Node {
	line := p.cur().line
	p.advance() // 'elsif'
	cond := p.parsePrimaryExpr()
	p.skipToNewline()
	thenBody := p.parseBody(stopAtKeywords("elsif", "else", "end"))
	var elseBody []Node
	if p.atKeyword("elsif") {
		elseBody = []Node{p.parseElsifChain()}
		return Node{Kind: KindIfExpr, Pos: Pos{p.file, line}, Cond: &cond, Then: thenBody, Else: elseBody}
	}
	if p.atKeyword("else") {
		p.advance()
		p.skipToNewline()
		elseBody = p.parseBody(stopAtKeywords("end"))
	}
	if p.atKeyword("end") {
		p.advance()
	}
	return Node{Kind: KindIfExpr, Pos: Pos{p.file, line}, Cond: &cond, Then: thenBody, Else: elseBody}
}

// parseCallStatement parses a (possibly dotted) call at statement position:
// `recv.method args... do |x| ... end`. Any segment of a dotted chain may
// carry parenthesized arguments (`params.require(:post).permit(:title)`);
// only the final segment may carry bare arguments or a block.
func (p *parser) parseCallStatement() Node {
	line := p.cur().line
	var node Node
	first := true
	parens := false
	for {
		t := p.cur()
		if t.kind != tokIdent && t.kind != tokConst && t.kind != tokKeyword {
			break
		}
		p.advance()
		call := Node{Kind: KindCall, Pos: Pos{p.file, t.line}, Method: t.text}
		if !first {
			prev := node
			call.Receiver = &prev
		}
		node = call
		first = false
		parens = false
		if p.atPunct("(") {
			p.advance()
			node.Args, node.KwArgs = p.parseArgItems(func(t token) bool { return t.kind == tokPunct && t.text == ")" })
			if p.atPunct(")") {
				p.advance()
			}
			parens = true
		}
		if p.atPunct(".") {
			p.advance()
			continue
		}
		break
	}
	if first {
		// Shouldn't happen (caller already checked), but stay total.
		raw := strings.TrimSpace(p.rawLine(line))
		p.skipToNewline()
		return Node{Kind: KindUnknown, Pos: Pos{p.file, line}, Raw: raw}
	}

	if !parens && !p.atBareArgStop() {
		args, kwargs := p.parseArgItems(p.atBareArgStopFunc())
		node.Args, node.KwArgs = args, kwargs
	}

	if block := p.parseBlock(); block != nil {
		node.Block = block
	}
	p.skipToNewline()
	return node
}

func (p *parser) atBareArgStop() bool {
	t := p.cur()
	if t.kind == tokNewline || t.kind == tokEOF {
		return true
	}
	if t.kind == tokKeyword && t.text == "do" {
		return true
	}
	if t.kind == tokPunct && t.text == "{" {
		return true
	}
	return false
}

func (p *parser) atBareArgStopFunc() func(token) bool {
	return func(t token) bool {
		if t.kind == tokNewline || t.kind == tokEOF {
			return true
		}
		if t.kind == tokKeyword && t.text == "do" {
			return true
		}
		if t.kind == tokPunct && t.text == "{" {
			return true
		}
		return false
	}
}

// parseArgItems parses a comma-separated argument list (positional
// expressions, `key: value` keyword args, and bare `EXPR => EXPR` pairs
// folded into a single-pair HashLit positional argument) until stop(tok)
// is true.
func (p *parser) parseArgItems(stop func(token) bool) ([]Node, []KwArg) {
	var positional []Node
	var kwargs []KwArg

	for {
		if stop(p.cur()) || p.cur().kind == tokEOF {
			return positional, kwargs
		}
		if p.atPunct(",") {
			p.advance()
			continue
		}

		if (p.cur().kind == tokIdent || p.cur().kind == tokConst || p.cur().kind == tokKeyword) &&
			p.peek(1).kind == tokPunct && p.peek(1).text == ":" {
			key := p.advance().text
			p.advance() // ':'
			val := p.parsePrimaryExpr()
			kwargs = append(kwargs, KwArg{Key: key, Value: val})
		} else {
			line := p.cur().line
			val := p.parsePrimaryExpr()
			if p.atPunct("=>") {
				p.advance()
				v2 := p.parsePrimaryExpr()
				val = Node{Kind: KindHashLit, Pos: Pos{p.file, line}, Pairs: []HashPair{{Key: val, Value: v2}}}
			}
			positional = append(positional, val)
		}

		if stop(p.cur()) || p.cur().kind == tokEOF {
			return positional, kwargs
		}
		if p.atPunct(",") {
			p.advance()
			continue
		}
		// No comma and not at stop: avoid infinite loop by bailing.
		return positional, kwargs
	}
}

// parsePrimaryExpr parses one literal/identifier/call-chain expression. On
// anything it doesn't recognize it returns an Unknown node wrapping the
// single offending token's text and advances past it, so callers always
// make forward progress.
func (p *parser) parsePrimaryExpr() Node {
	t := p.cur()
	switch t.kind {
	case tokInt:
		p.advance()
		return Node{Kind: KindIntLit, Pos: Pos{p.file, t.line}, Int: t.ival}
	case tokString:
		p.advance()
		return Node{Kind: KindStringLit, Pos: Pos{p.file, t.line}, Str: t.text}
	case tokSymbol:
		p.advance()
		return Node{Kind: KindSymbol, Pos: Pos{p.file, t.line}, Name: t.text}
	case tokKeyword:
		if t.text == "true" || t.text == "false" || t.text == "nil" || t.text == "self" {
			p.advance()
			return Node{Kind: KindIdent, Pos: Pos{p.file, t.line}, Name: t.text}
		}
	case tokPunct:
		switch t.text {
		case "[":
			return p.parseArrayLit()
		case "{":
			return p.parseHashLit()
		case ":":
			// stray hash-rocket-less colon; skip.
			p.advance()
			return p.parsePrimaryExpr()
		}
	case tokIdent, tokConst:
		return p.parseChainExpr()
	}
	p.advance()
	return Node{Kind: KindUnknown, Pos: Pos{p.file, t.line}, Raw: t.text}
}

// parseChainExpr parses `ident(.ident)*` optionally followed by a single
// `(args)` call on the final segment — enough for things like
// `Rails.env.development?` or `params.require(:user)`.
func (p *parser) parseChainExpr() Node {
	t := p.advance()
	node := Node{Kind: KindIdent, Pos: Pos{p.file, t.line}, Name: t.text}
	// Qualified constant references (Sidekiq::Web) are name qualification,
	// not method dispatch: fold them into a single Ident before any '.'
	// chain is considered.
	for node.Kind == KindIdent && t.kind == tokConst && p.atPunct("::") {
		p.advance()
		if p.cur().kind != tokConst {
			break
		}
		next := p.advance()
		node.Name += "::" + next.text
	}
	for p.atPunct(".") {
		p.advance()
		if p.cur().kind != tokIdent && p.cur().kind != tokConst && p.cur().kind != tokKeyword {
			break
		}
		mt := p.advance()
		call := Node{Kind: KindCall, Pos: Pos{p.file, mt.line}, Method: mt.text}
		prev := node
		call.Receiver = &prev
		if p.atPunct("(") {
			p.advance()
			args, kwargs := p.parseArgItems(func(t token) bool { return t.kind == tokPunct && t.text == ")" })
			if p.atPunct(")") {
				p.advance()
			}
			call.Args, call.KwArgs = args, kwargs
		}
		node = call
	}
	if node.Kind == KindIdent && p.atPunct("(") {
		p.advance()
		args, kwargs := p.parseArgItems(func(t token) bool { return t.kind == tokPunct && t.text == ")" })
		if p.atPunct(")") {
			p.advance()
		}
		return Node{Kind: KindCall, Pos: node.Pos, Method: node.Name, Args: args, KwArgs: kwargs}
	}
	return node
}

func (p *parser) parseArrayLit() Node {
	line := p.cur().line
	p.advance() // '['
	items, _ := p.parseArgItems(func(t token) bool { return t.kind == tokPunct && t.text == "]" })
	if p.atPunct("]") {
		p.advance()
	}
	return Node{Kind: KindArrayLit, Pos: Pos{p.file, line}, Items: items}
}

func (p *parser) parseHashLit() Node {
	line := p.cur().line
	p.advance() // '{'
	stop := func(t token) bool { return t.kind == tokPunct && t.text == "}" }
	var pairs []HashPair
	for {
		p.skipNewlines()
		if stop(p.cur()) || p.cur().kind == tokEOF {
			break
		}
		if p.atPunct(",") {
			p.advance()
			continue
		}
		var key Node
		if (p.cur().kind == tokIdent || p.cur().kind == tokConst) &&
			p.peek(1).kind == tokPunct && p.peek(1).text == ":" {
			kt := p.advance()
			key = Node{Kind: KindSymbol, Pos: Pos{p.file, kt.line}, Name: kt.text}
			p.advance() // ':'
		} else {
			key = p.parsePrimaryExpr()
			if p.atPunct("=>") {
				p.advance()
			}
		}
		val := p.parsePrimaryExpr()
		pairs = append(pairs, HashPair{Key: key, Value: val})
		p.skipNewlines()
		if p.atPunct(",") {
			p.advance()
			continue
		}
		if stop(p.cur()) || p.cur().kind == tokEOF {
			break
		}
	}
	if p.atPunct("}") {
		p.advance()
	}
	return Node{Kind: KindHashLit, Pos: Pos{p.file, line}, Pairs: pairs}
}

func (p *parser) parseBlock() *Node {
	line := p.cur().line
	if p.atKeyword("do") {
		p.advance()
		params := p.parseBlockParams()
		p.skipToNewline()
		body := p.parseBody(stopAtKeywords("end"))
		if p.atKeyword("end") {
			p.advance()
		}
		return &Node{Kind: KindBlock, Pos: Pos{p.file, line}, BlockParams: params, Body: body}
	}
	if p.atPunct("{") {
		p.advance()
		params := p.parseBlockParams()
		body := p.parseBody(stopAtBrace)
		if p.atPunct("}") {
			p.advance()
		}
		return &Node{Kind: KindBlock, Pos: Pos{p.file, line}, BlockParams: params, Body: body}
	}
	return nil
}

func (p *parser) parseBlockParams() []string {
	if !p.atPunct("|") {
		return nil
	}
	p.advance()
	var names []string
	for {
		if p.cur().kind == tokIdent {
			names = append(names, p.advance().text)
		} else if p.cur().kind != tokEOF && !p.atPunct("|") {
			p.advance()
			continue
		}
		if p.atPunct(",") {
			p.advance()
			continue
		}
		break
	}
	if p.atPunct("|") {
		p.advance()
	}
	return names
}
