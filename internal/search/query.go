// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"strings"
	"unicode"
)

// The shared topic query is written in a small boolean dialect:
//
//	(VLA OR "vision language action") AND (robot OR "autonomous driving")
//
// parseBoolean splits it into AND-groups of OR-alternatives. An alternative
// made of several bare words is an implicit conjunction and is kept as one
// string. Parentheses are only grouping noise here and NOT drops its operand.
func parseBoolean(q string) [][]string {
	var (
		groups [][]string
		alts   []string
		cur    []string
		skip   bool
	)
	flushAlt := func() {
		if len(cur) > 0 {
			alts = append(alts, strings.Join(cur, " "))
			cur = nil
		}
	}
	flushGroup := func() {
		flushAlt()
		if len(alts) > 0 {
			groups = append(groups, alts)
			alts = nil
		}
	}

	for _, tok := range tokenize(q) {
		switch tok {
		case "(", ")":
			continue
		case "AND":
			flushGroup()
			continue
		case "OR":
			flushAlt()
			continue
		case "NOT":
			skip = true
			continue
		}
		if skip {
			skip = false
			continue
		}
		cur = append(cur, tok)
	}
	flushGroup()
	return groups
}

func tokenize(q string) []string {
	var toks []string
	rs := []rune(q)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(' || r == ')':
			toks = append(toks, string(r))
			i++
		case r == '"':
			j := i + 1
			for j < len(rs) && rs[j] != '"' {
				j++
			}
			phrase := strings.TrimSpace(string(rs[i+1 : min(j, len(rs))]))
			if phrase != "" {
				toks = append(toks, `"`+phrase+`"`)
			}
			i = j + 1
		default:
			j := i
			for j < len(rs) && !unicode.IsSpace(rs[j]) && rs[j] != '(' && rs[j] != ')' && rs[j] != '"' {
				j++
			}
			toks = append(toks, string(rs[i:j]))
			i = j
		}
	}
	return toks
}

// SimplifyBoolean rewrites q so it uses at most maxOps OR operators, for
// providers that cap query complexity. With two or more AND-groups the first
// alternative of every group except the second is kept as an anchor and
// paired with each alternative of the second group:
//
//	(VLA OR "vla") AND (drive OR robot)  →  VLA drive OR VLA robot
func SimplifyBoolean(q string, maxOps int) string {
	groups := parseBoolean(q)
	if len(groups) == 0 {
		return ""
	}
	limit := maxOps + 1
	if limit < 1 {
		limit = 1
	}

	var alts []string
	if len(groups) == 1 {
		alts = groups[0]
	} else {
		anchor := []string{groups[0][0]}
		for _, g := range groups[2:] {
			anchor = append(anchor, g[0])
		}
		prefix := strings.Join(anchor, " ")
		for _, a := range groups[1] {
			alts = append(alts, prefix+" "+a)
		}
	}
	if len(alts) > limit {
		alts = alts[:limit]
	}
	return strings.Join(alts, " OR ")
}

// PrimaryTerm returns the first alternative of the first group, unquoted.
// Providers without boolean support are queried with it and gated
// client-side.
func PrimaryTerm(q string) string {
	groups := parseBoolean(q)
	if len(groups) == 0 {
		return ""
	}
	return unquote(groups[0][0])
}

// PlainQuery returns the first alternative of every group, unquoted and
// space-joined, for providers that take plain relevance text.
func PlainQuery(q string) string {
	var parts []string
	for _, g := range parseBoolean(q) {
		parts = append(parts, unquote(g[0]))
	}
	return strings.Join(parts, " ")
}

// ArxivQuery renders q in arXiv search_query syntax, prefixing every term
// with the all: field.
func ArxivQuery(q string) string {
	var groups []string
	for _, g := range parseBoolean(q) {
		var alts []string
		for _, a := range g {
			alts = append(alts, arxivAlt(a))
		}
		if len(alts) == 1 {
			groups = append(groups, alts[0])
		} else {
			groups = append(groups, "("+strings.Join(alts, " OR ")+")")
		}
	}
	return strings.Join(groups, " AND ")
}

func arxivAlt(a string) string {
	toks := tokenize(a)
	for i, t := range toks {
		toks[i] = "all:" + t
	}
	if len(toks) == 1 {
		return toks[0]
	}
	return "(" + strings.Join(toks, " AND ") + ")"
}

func unquote(s string) string {
	return strings.ReplaceAll(s, `"`, "")
}

// Denied reports whether any field contains a denylist entry,
// case-insensitively.
func Denied(denylist []string, fields ...string) bool {
	for _, f := range fields {
		lf := strings.ToLower(f)
		for _, d := range denylist {
			if d != "" && strings.Contains(lf, strings.ToLower(d)) {
				return true
			}
		}
	}
	return false
}

// MatchesKeywords reports whether text contains every term of all and at
// least one term of anyOf (when anyOf is non-empty), case-insensitively.
func MatchesKeywords(text string, all, anyOf []string) bool {
	lt := strings.ToLower(text)
	for _, t := range all {
		if !strings.Contains(lt, strings.ToLower(t)) {
			return false
		}
	}
	if len(anyOf) == 0 {
		return true
	}
	for _, t := range anyOf {
		if strings.Contains(lt, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

// cleanText collapses whitespace runs, as feed titles and abstracts carry
// hard line breaks.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
