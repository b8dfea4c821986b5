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

// Package query implements the query grammar (C11): grouping, field
// scoping, boolean/phrase/prefix-wildcard operators, and stop-word
// preprocessing.
package query

// Modifier is a prefix operator attached to a term or group.
type Modifier int

const (
	ModNone Modifier = iota
	ModMust           // '+'
	ModMustNot        // '-'
)

// Node is one AST node. Exactly one of the concrete fields is set,
// selected by Kind.
type Node struct {
	Kind NodeKind

	// NodeTerm
	Term       string
	Field      string // empty unless field:term scoping was used
	Prefix     bool    // trailing '*' -- open prefix expansion
	StopWord   bool    // populated during preprocessing
	// Weight scales this term's scoring contribution; zero means the
	// default of 1.0. Extra prefix-expansion candidates set it below
	// 1.0; a spelling correction replaces Term in place and keeps the
	// default weight.
	Weight float64

	// NodePhrase
	Phrase []string
	// Field scoping also applies to phrases.

	// NodeGroup / NodeAnd / NodeOr / NodeNot
	Children []*Node

	Invert   bool // '~' -- composes with Must/MustNot, flips scoring sign
	Modifier Modifier
}

// NodeKind discriminates Node's variant.
type NodeKind int

const (
	NodeTerm NodeKind = iota
	NodePhrase
	NodeGroup
	NodeFreeText // the implicit OR across top-level free-text clauses
)
