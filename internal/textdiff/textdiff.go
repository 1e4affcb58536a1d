// Package textdiff aligns word and whitespace tokens with difflib's
// SequenceMatcher and reports the edit opcodes between two texts.
package textdiff

import (
	"regexp"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Opcode describes one aligned span: a[I1:I2] becomes b[J1:J2].
type Opcode = difflib.OpCode

// Opcode tags as emitted by difflib.
const (
	Equal   byte = 'e'
	Insert  byte = 'i'
	Delete  byte = 'd'
	Replace byte = 'r'
)

// TagName returns a readable name for an opcode tag.
func TagName(tag byte) string {
	switch tag {
	case Equal:
		return "equal"
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	case Replace:
		return "replace"
	}
	return "unknown"
}

var tokenRe = regexp.MustCompile(`\s+|\S+`)

// Tokenize splits text into alternating word and whitespace tokens.
// Concatenating the tokens reproduces text exactly.
func Tokenize(text string) []string {
	return tokenRe.FindAllString(text, -1)
}

// Opcodes aligns a and b and returns contiguous opcodes covering both sequences.
// Automatic junk detection is off so whitespace tokens still anchor matches
// on long inputs.
func Opcodes(a, b []string) []Opcode {
	return difflib.NewMatcherWithJunk(a, b, false, nil).GetOpCodes()
}

// WordCount counts the non-whitespace tokens.
func WordCount(tokens []string) int {
	n := 0
	for _, tok := range tokens {
		if !isSpace(tok) {
			n++
		}
	}
	return n
}

// TruncateTokens keeps the first limit words of tokens along with the whitespace
// between them. Trailing whitespace after the last kept word is dropped.
func TruncateTokens(tokens []string, limit int) []string {
	if limit <= 0 {
		return nil
	}
	words := 0
	for i, tok := range tokens {
		if isSpace(tok) {
			continue
		}
		words++
		if words == limit {
			return tokens[:i+1]
		}
	}
	return tokens
}

func isSpace(tok string) bool {
	return strings.TrimSpace(tok) == ""
}
