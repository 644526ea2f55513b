package parse

import (
	"regexp"
	"strings"
)

// blockRe matches a letter prefix followed by a number, optionally separated by a space or dash.
// Catalog blocks are written "M-5", students often type "M5".
var blockRe = regexp.MustCompile(`^([A-Za-z]+)[\s-]?([0-9]+)$`)

// ParsedSelection is a residence reference split into name and block.
type ParsedSelection struct {
	Name  string
	Block string
}

// ParseFreeText splits a legacy "Name - Block" selection string.
// Every segment after the first dash belongs to the block, so "DBSA Male - M-5" keeps "M-5".
// A string without a dash is a bare residence name with no block.
func ParseFreeText(raw string) ParsedSelection {
	parts := strings.Split(raw, "-")
	if len(parts) < 2 {
		return ParsedSelection{Name: strings.TrimSpace(raw)}
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return ParsedSelection{
		Name:  parts[0],
		Block: strings.TrimSpace(strings.Join(parts[1:], "-")),
	}
}

// NormalizeBlock rewrites a letters-then-digits block token to the catalog's dashed form.
// It returns false when the token does not have that shape. This is the only rewrite rule.
func NormalizeBlock(block string) (string, bool) {
	m := blockRe.FindStringSubmatch(strings.TrimSpace(block))
	if m == nil {
		return "", false
	}
	return m[1] + "-" + m[2], true
}
