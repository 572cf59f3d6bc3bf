// classify.go: the byte-level lexical classifier.
//
// Every byte of source maps to one of four lexical classes plus a per-class
// sub-value, packed into a single table byte. The scanner consults this table
// on its fast path; multi-byte UTF-8 sequences are never consumed here (the
// classifier only flags the leading bytes that can begin one, and marks the
// bytes that can never appear in well-formed UTF-8 as errors).
//
// A pair of 256-entry case tables provides the historical Latin-1 folding
// used for canonical symbols. Letters outside Latin-1 are unaffected.
package ren

// lexClass is the coarse lexical class of a byte.
type lexClass uint8

const (
	classDelimit lexClass = iota // token boundary (brackets, whitespace, ...)
	classSpecial                 // may begin or modify a token (@ % + - , . ' : < > # $ \ ^)
	classWord                    // word-forming byte
	classNumber                  // ASCII digit
)

// Delimiter sub-values.
const (
	delimEnd byte = iota // NUL / end of input
	delimSpace
	delimLF
	delimCR
	delimSemicolon
	delimQuote
	delimBraceOpen
	delimBraceClose
	delimBracketOpen
	delimBracketClose
	delimParenOpen
	delimParenClose
	delimSlash
	delimUTF8Err // bytes that can never occur in UTF-8 (C0 C1 F5..FF)
)

// Special sub-values. These double as bit positions in the prescan
// fingerprint, so keep the list below 32 entries.
const (
	specAt byte = iota
	specPercent
	specPlus
	specMinus
	specComma
	specDot
	specTick // apostrophe
	specColon
	specLess
	specGreater
	specPound
	specDollar
	specBackslash
	specCaret

	numSpecials
)

// lexMap packs class (top two bits) and sub-value (low six bits).
var lexMap [256]uint8

func packLex(c lexClass, sub byte) uint8 { return uint8(c)<<6 | (sub & 0x3F) }

func classOf(b byte) lexClass { return lexClass(lexMap[b] >> 6) }
func subValOf(b byte) byte    { return lexMap[b] & 0x3F }

// flagOf returns the prescan fingerprint bit for b: a single bit for each
// special sub-value, zero for every other class.
func flagOf(b byte) uint32 {
	if classOf(b) != classSpecial {
		return 0
	}
	return 1 << subValOf(b)
}

func isDelimiter(b byte) bool { return classOf(b) == classDelimit }

// hexVal reports the value of an ASCII hex digit.
func hexVal(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func init() {
	// Default: word-forming. Covers letters, the printable word punctuation
	// (! & * = ? _ | ~ `), UTF-8 continuation and leading bytes.
	for i := range lexMap {
		lexMap[i] = packLex(classWord, 0)
	}

	// Control bytes other than the whitespace forms stay word class so the
	// scanner reports them as invalid words rather than splitting tokens.
	lexMap[0] = packLex(classDelimit, delimEnd)
	lexMap['\t'] = packLex(classDelimit, delimSpace)
	lexMap[' '] = packLex(classDelimit, delimSpace)
	lexMap['\n'] = packLex(classDelimit, delimLF)
	lexMap['\r'] = packLex(classDelimit, delimCR)
	lexMap[';'] = packLex(classDelimit, delimSemicolon)
	lexMap['"'] = packLex(classDelimit, delimQuote)
	lexMap['{'] = packLex(classDelimit, delimBraceOpen)
	lexMap['}'] = packLex(classDelimit, delimBraceClose)
	lexMap['['] = packLex(classDelimit, delimBracketOpen)
	lexMap[']'] = packLex(classDelimit, delimBracketClose)
	lexMap['('] = packLex(classDelimit, delimParenOpen)
	lexMap[')'] = packLex(classDelimit, delimParenClose)
	lexMap['/'] = packLex(classDelimit, delimSlash)

	lexMap['@'] = packLex(classSpecial, specAt)
	lexMap['%'] = packLex(classSpecial, specPercent)
	lexMap['+'] = packLex(classSpecial, specPlus)
	lexMap['-'] = packLex(classSpecial, specMinus)
	lexMap[','] = packLex(classSpecial, specComma)
	lexMap['.'] = packLex(classSpecial, specDot)
	lexMap['\''] = packLex(classSpecial, specTick)
	lexMap[':'] = packLex(classSpecial, specColon)
	lexMap['<'] = packLex(classSpecial, specLess)
	lexMap['>'] = packLex(classSpecial, specGreater)
	lexMap['#'] = packLex(classSpecial, specPound)
	lexMap['$'] = packLex(classSpecial, specDollar)
	lexMap['\\'] = packLex(classSpecial, specBackslash)
	lexMap['^'] = packLex(classSpecial, specCaret)

	for b := '0'; b <= '9'; b++ {
		lexMap[b] = packLex(classNumber, byte(b-'0'))
	}

	// Word class keeps the hex value for a-f/A-F in the sub-value slot.
	for b := 'a'; b <= 'f'; b++ {
		lexMap[b] = packLex(classWord, byte(b-'a'+10))
	}
	for b := 'A'; b <= 'F'; b++ {
		lexMap[b] = packLex(classWord, byte(b-'A'+10))
	}

	// Bytes that are illegal anywhere in UTF-8.
	lexMap[0xC0] = packLex(classDelimit, delimUTF8Err)
	lexMap[0xC1] = packLex(classDelimit, delimUTF8Err)
	for b := 0xF5; b <= 0xFF; b++ {
		lexMap[b] = packLex(classDelimit, delimUTF8Err)
	}
}

// Case folding tables: ASCII plus the historical Latin-1 letter block.
// The multiplication/division signs (D7/F7) and the two letters without a
// Latin-1 counterpart (DF sharp-s, FF y-diaeresis) fold to themselves.
// Built via computed initializers (not init) so package-level vars in other
// files that intern symbols are ordered after the tables exist.
var upCase, lowCase = buildCaseTables()

func buildCaseTables() (upCase, lowCase [256]byte) {
	for i := 0; i < 256; i++ {
		upCase[i] = byte(i)
		lowCase[i] = byte(i)
	}
	for b := 'A'; b <= 'Z'; b++ {
		lowCase[b] = byte(b) + 32
		upCase[b+32] = byte(b)
	}
	for b := 0xC0; b <= 0xDE; b++ {
		if b == 0xD7 {
			continue
		}
		lowCase[b] = byte(b) + 32
		upCase[b+32] = byte(b)
	}
	return upCase, lowCase
}

// foldRune lower-cases a codepoint using the Latin-1 tables; codepoints
// outside Latin-1 are unaffected (Unicode-aware casing is a non-goal).
func foldRune(r rune) rune {
	if r >= 0 && r < 256 {
		return rune(lowCase[r])
	}
	return r
}

// upperRune is the inverse table lookup, same Latin-1 restriction.
func upperRune(r rune) rune {
	if r >= 0 && r < 256 {
		return rune(upCase[r])
	}
	return r
}
