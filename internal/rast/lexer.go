// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package rast

import (
	"strings"
	"unicode"
)

type tokKind int

const (
	tokEOF tokKind = iota
	tokNewline
	tokIdent  // snake_case or @ivar, lowercase-leading
	tokConst  // CamelCase / SCREAMING, uppercase-leading
	tokKeyword
	tokSymbol // :name (Text holds name, without colon)
	tokString // Text holds the literal's contents (unescaped is not attempted)
	tokInt
	tokPunct // one of the fixed punctuation tokens below
)

type token struct {
	kind tokKind
	text string
	ival int64
	line int
}

var keywords = map[string]bool{
	"class": true, "module": true, "def": true, "end": true,
	"if": true, "elsif": true, "else": true, "unless": true, "do": true,
	"then": true, "return": true, "private": true, "public": true,
	"protected": true, "self": true, "true": true, "false": true, "nil": true,
	"and": true, "or": true, "not": true, "while": true, "until": true,
	"case": true, "when": true, "begin": true, "rescue": true, "ensure": true,
	"yield": true, "break": true, "next": true, "super": true, "in": true,
}

// multi-char punctuation, longest first.
var multiPunct = []string{"=>", "::", "==", "<<~", "<<-", "<<", "&&", "||", "..."}

const singlePunct = "()[]{},.:|=+-*/%<>!&~?;"

// lex tokenizes a whole file's source into a flat token stream, with
// heredocs resolved inline as opaque string tokens. It never returns an
// error: anything it can't classify becomes a best-effort tokPunct or is
// silently skipped (e.g. stray bytes inside a string it already consumed).
func lex(src string) []token {
	lines := strings.Split(src, "\n")
	var toks []token

	for i := 0; i < len(lines); i++ {
		lineNo := i + 1
		line := lines[i]
		pos := 0
		n := len(line)

		for pos < n {
			c := line[pos]

			switch {
			case c == ' ' || c == '\t' || c == '\r':
				pos++
				continue

			case c == '#':
				pos = n // rest of line is a comment

			case c == '\'' || c == '"':
				quote := c
				start := pos + 1
				j := start
				for j < n {
					if line[j] == '\\' && j+1 < n {
						j += 2
						continue
					}
					if line[j] == quote {
						break
					}
					j++
				}
				text := ""
				if j <= n {
					end := j
					if end > n {
						end = n
					}
					text = line[start:min(end, n)]
				}
				toks = append(toks, token{kind: tokString, text: text, line: lineNo})
				if j < n {
					pos = j + 1
				} else {
					pos = n
				}

			case c == ':' && pos+1 < n && (isIdentStart(rune(line[pos+1])) || line[pos+1] == '"'):
				// symbol :name or :"quoted name" -- but not the `? :` / hash-rocket colon.
				if line[pos+1] == '"' {
					j := pos + 2
					for j < n && line[j] != '"' {
						j++
					}
					toks = append(toks, token{kind: tokSymbol, text: line[pos+2 : min(j, n)], line: lineNo})
					pos = j + 1
				} else {
					j := pos + 1
					for j < n && isIdentPart(rune(line[j])) {
						j++
					}
					if j < n && (line[j] == '?' || line[j] == '!') {
						j++
					}
					toks = append(toks, token{kind: tokSymbol, text: line[pos+1 : j], line: lineNo})
					pos = j
				}

			case isDigit(rune(c)):
				j := pos
				for j < n && (isDigit(rune(line[j])) || line[j] == '_') {
					j++
				}
				toks = append(toks, token{kind: tokInt, text: line[pos:j], ival: parseInt(line[pos:j]), line: lineNo})
				pos = j

			case isIdentStart(rune(c)) || c == '@':
				j := pos
				if c == '@' {
					j++
				}
				for j < n && isIdentPart(rune(line[j])) {
					j++
				}
				if j < n && (line[j] == '?' || line[j] == '!') {
					j++
				}
				word := line[pos:j]
				if keywords[word] {
					toks = append(toks, token{kind: tokKeyword, text: word, line: lineNo})
				} else if unicode.IsUpper(rune(word[0])) {
					toks = append(toks, token{kind: tokConst, text: word, line: lineNo})
				} else {
					toks = append(toks, token{kind: tokIdent, text: word, line: lineNo})
				}
				pos = j

			default:
				matched := false
				for _, p := range multiPunct {
					if strings.HasPrefix(line[pos:], p) {
						if strings.HasPrefix(p, "<<") {
							// heredoc: <<~ID, <<-ID, <<ID (optionally quoted)
							rest := line[pos+len(p):]
							rest = strings.TrimLeft(rest, " \t")
							rest = strings.TrimPrefix(rest, "\"")
							rest = strings.TrimPrefix(rest, "'")
							j := 0
							for j < len(rest) && isIdentPart(rune(rest[j])) {
								j++
							}
							term := rest[:j]
							if term != "" {
								body, consumed := consumeHeredoc(lines, i+1, term)
								toks = append(toks, token{kind: tokString, text: body, line: lineNo})
								i += consumed
								pos = n
								matched = true
								break
							}
						}
						toks = append(toks, token{kind: tokPunct, text: p, line: lineNo})
						pos += len(p)
						matched = true
						break
					}
				}
				if matched {
					continue
				}
				if strings.IndexByte(singlePunct, c) >= 0 {
					toks = append(toks, token{kind: tokPunct, text: string(c), line: lineNo})
				}
				pos++
			}
		}

		toks = append(toks, token{kind: tokNewline, line: lineNo})
	}

	toks = append(toks, token{kind: tokEOF, line: len(lines) + 1})
	return toks
}

// consumeHeredoc scans forward from startLine (0-indexed, first line of the
// body) until a line that, trimmed, equals term. It returns the raw body
// text and the number of lines consumed (including the terminator line).
func consumeHeredoc(lines []string, startLine int, term string) (string, int) {
	var body []string
	for i := startLine; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == term {
			return strings.Join(body, "\n"), i - startLine + 1
		}
		body = append(body, lines[i])
	}
	return strings.Join(body, "\n"), len(lines) - startLine
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func parseInt(s string) int64 {
	var v int64
	for _, r := range s {
		if r == '_' {
			continue
		}
		v = v*10 + int64(r-'0')
	}
	return v
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
