// Copyright 2026 The Arcsearch Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package query

import (
	"strings"
	"unicode"

	"github.com/arcsearch/spimi/errs"
	"github.com/arcsearch/spimi/mine"
)

// Parse tokenizes and parses a raw query string into a NodeFreeText
// root whose children are the top-level clauses (implicit OR), each
// possibly carrying a Must/MustNot/Invert modifier and a field scope.
//
// Grammar (informal):
//
//	query      := clause*
//	clause     := modifier? ( field ':' )? ( term | phrase | group )
//	modifier   := '+' | '-' | '~'
//	field      := ident
//	term       := ident ( '*' )?
//	phrase     := '"' .*? '"'
//	group      := '(' query ')'
func Parse(raw string) (*Node, error) {
	toks, err := lex(raw)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	root := &Node{Kind: NodeFreeText}
	for !p.atEnd() {
		n, err := p.parseClause()
		if err != nil {
			return nil, err
		}
		if n != nil {
			root.Children = append(root.Children, n)
		}
	}
	return root, nil
}

type token struct {
	kind tokKind
	text string
}

type tokKind int

const (
	tokIdent tokKind = iota
	tokPhrase
	tokLParen
	tokRParen
	tokColon
	tokPlus
	tokMinus
	tokTilde
	tokStar
)

func lex(raw string) ([]token, error) {
	var toks []token
	r := []rune(raw)
	i := 0
	for i < len(r) {
		c := r[i]
		switch {
		case unicode.IsSpace(c):
			i++
		case c == '(':
			toks = append(toks, token{tokLParen, "("})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")"})
			i++
		case c == ':':
			toks = append(toks, token{tokColon, ":"})
			i++
		case c == '+':
			toks = append(toks, token{tokPlus, "+"})
			i++
		case c == '-':
			toks = append(toks, token{tokMinus, "-"})
			i++
		case c == '~':
			toks = append(toks, token{tokTilde, "~"})
			i++
		case c == '*':
			toks = append(toks, token{tokStar, "*"})
			i++
		case c == '"':
			j := i + 1
			for j < len(r) && r[j] != '"' {
				j++
			}
			if j >= len(r) {
				return nil, errs.ErrQueryMalformed
			}
			toks = append(toks, token{tokPhrase, string(r[i+1 : j])})
			i = j + 1
		default:
			j := i
			for j < len(r) && !isSpecial(r[j]) && !unicode.IsSpace(r[j]) {
				j++
			}
			toks = append(toks, token{tokIdent, string(r[i:j])})
			i = j
		}
	}
	return toks, nil
}

func isSpecial(c rune) bool {
	switch c {
	case '(', ')', ':', '+', '-', '~', '*', '"':
		return true
	}
	return false
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) atEnd() bool { return p.pos >= len(p.toks) }

func (p *parser) peek() (token, bool) {
	if p.atEnd() {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *parser) next() (token, bool) {
	t, ok := p.peek()
	if ok {
		p.pos++
	}
	return t, ok
}

func (p *parser) parseClause() (*Node, error) {
	mod := ModNone
	invert := false

loop:
	for {
		t, ok := p.peek()
		if !ok {
			return nil, nil
		}
		switch t.kind {
		case tokPlus:
			mod = ModMust
			p.next()
		case tokMinus:
			mod = ModMustNot
			p.next()
		case tokTilde:
			invert = true
			p.next()
		case tokRParen:
			return nil, nil
		default:
			break loop
		}
	}

	if t, ok := p.peek(); ok && t.kind == tokLParen {
		p.next()
		group := &Node{Kind: NodeFreeText}
		for {
			t, ok := p.peek()
			if !ok {
				return nil, errs.ErrQueryMalformed
			}
			if t.kind == tokRParen {
				p.next()
				break
			}
			n, err := p.parseClause()
			if err != nil {
				return nil, err
			}
			if n == nil {
				return nil, errs.ErrQueryMalformed
			}
			group.Children = append(group.Children, n)
		}
		if len(group.Children) == 0 {
			return nil, errs.ErrQueryMalformed
		}
		wrap := &Node{Kind: NodeGroup, Children: group.Children, Modifier: mod, Invert: invert}
		return wrap, nil
	}

	var field string
	t, ok := p.peek()
	if !ok {
		return nil, errs.ErrQueryMalformed
	}
	if t.kind == tokIdent {
		save := p.pos
		p.next()
		if ct, ok := p.peek(); ok && ct.kind == tokColon {
			p.next()
			field = t.text
		} else {
			p.pos = save
		}
	}

	t, ok = p.next()
	if !ok {
		return nil, errs.ErrQueryMalformed
	}

	switch t.kind {
	case tokPhrase:
		terms := strings.Fields(t.text)
		for _, w := range terms {
			if len(w) > mine.MaxTermLen {
				return nil, errs.ErrQueryMalformed
			}
		}
		return &Node{Kind: NodePhrase, Phrase: terms, Field: field, Modifier: mod, Invert: invert}, nil
	case tokIdent:
		term := t.text
		prefix := false
		if nt, ok := p.peek(); ok && nt.kind == tokStar {
			p.next()
			prefix = true
		}
		if term == "" {
			return nil, nil
		}
		if len(term) > mine.MaxTermLen {
			return nil, errs.ErrQueryMalformed
		}
		return &Node{Kind: NodeTerm, Term: strings.ToLower(term), Field: field, Prefix: prefix, Modifier: mod, Invert: invert}, nil
	default:
		return nil, errs.ErrQueryMalformed
	}
}
