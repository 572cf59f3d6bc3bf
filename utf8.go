// utf8.go: strict/lenient UTF-8 validation and transcoding.
//
// The scanner and the string datatypes share this codec. It is deliberately
// not built on unicode/utf8: the scanner needs the "position of last byte"
// decode contract (so ASCII and multi-byte forms share one increment in the
// caller's loop), per-leader overlong rejection with exact error positions,
// and strict/lenient transcoding toggles that the stdlib decoder does not
// expose.
package ren

import "fmt"

const (
	// MaxCodepoint is the highest Unicode scalar value.
	MaxCodepoint = 0x10FFFF
	// Replacement is substituted for ill-formed input in lenient modes.
	Replacement = 0xFFFD

	surrLo = 0xD800
	surrHi = 0xDFFF
)

type utf8ErrKind int

const (
	utf8Illegal utf8ErrKind = iota
	utf8Truncated
)

// UTF8Error reports a malformed or truncated sequence. Pos is the byte
// offset of the first offending byte.
type UTF8Error struct {
	Kind utf8ErrKind
	Pos  int
}

func (e *UTF8Error) Error() string {
	if e.Kind == utf8Truncated {
		return fmt.Sprintf("truncated UTF-8 sequence at byte %d", e.Pos)
	}
	return fmt.Sprintf("illegal UTF-8 byte at %d", e.Pos)
}

// trailBytes maps a leading byte to its expected continuation count,
// -1 for bytes that cannot lead a sequence.
var trailBytes [256]int8

func init() {
	for i := range trailBytes {
		trailBytes[i] = -1
	}
	for b := 0x00; b <= 0x7F; b++ {
		trailBytes[b] = 0
	}
	for b := 0xC2; b <= 0xDF; b++ {
		trailBytes[b] = 1
	}
	for b := 0xE0; b <= 0xEF; b++ {
		trailBytes[b] = 2
	}
	for b := 0xF0; b <= 0xF4; b++ {
		trailBytes[b] = 3
	}
}

// contRange returns the valid second-byte range for a leader, implementing
// the overlong and surrogate exclusions. Later continuation bytes always use
// the general 80..BF rule.
func contRange(lead byte) (lo, hi byte) {
	switch lead {
	case 0xE0:
		return 0xA0, 0xBF
	case 0xED:
		return 0x80, 0x9F
	case 0xF0:
		return 0x90, 0xBF
	case 0xF4:
		return 0x80, 0x8F
	}
	return 0x80, 0xBF
}

// DecodeOne decodes the codepoint whose leading byte is at pos. It returns
// the scalar value and the index of the LAST byte of the sequence; the
// caller advances by one afterwards, the same increment it uses for ASCII.
func DecodeOne(buf []byte, pos int) (rune, int, error) {
	if pos >= len(buf) {
		return 0, pos, &UTF8Error{Kind: utf8Truncated, Pos: pos}
	}
	lead := buf[pos]
	trail := trailBytes[lead]
	if trail < 0 {
		return 0, pos, &UTF8Error{Kind: utf8Illegal, Pos: pos}
	}
	if trail == 0 {
		return rune(lead), pos, nil
	}
	if pos+int(trail) >= len(buf) {
		return 0, pos, &UTF8Error{Kind: utf8Truncated, Pos: pos}
	}

	lo, hi := contRange(lead)
	cp := rune(lead & (0x3F >> uint(trail)))
	for i := 1; i <= int(trail); i++ {
		b := buf[pos+i]
		if b < lo || b > hi {
			return 0, pos, &UTF8Error{Kind: utf8Illegal, Pos: pos + i}
		}
		lo, hi = 0x80, 0xBF
		cp = cp<<6 | rune(b&0x3F)
	}
	return cp, pos + int(trail), nil
}

// EncodedLen reports the UTF-8 byte length of cp (replacement length for
// values out of range).
func EncodedLen(cp rune) int {
	switch {
	case cp < 0x80:
		return 1
	case cp < 0x800:
		return 2
	case cp > MaxCodepoint:
		return 3 // U+FFFD
	case cp < 0x10000:
		return 3
	}
	return 4
}

// EncodeOne appends the shortest UTF-8 form of cp to dst, substituting
// U+FFFD for out-of-range values, and returns the extended slice.
func EncodeOne(dst []byte, cp rune) []byte {
	if cp > MaxCodepoint || (cp >= surrLo && cp <= surrHi) {
		cp = Replacement
	}
	switch {
	case cp < 0x80:
		return append(dst, byte(cp))
	case cp < 0x800:
		return append(dst, 0xC0|byte(cp>>6), 0x80|byte(cp&0x3F))
	case cp < 0x10000:
		return append(dst, 0xE0|byte(cp>>12), 0x80|byte(cp>>6&0x3F), 0x80|byte(cp&0x3F))
	}
	return append(dst, 0xF0|byte(cp>>18), 0x80|byte(cp>>12&0x3F), 0x80|byte(cp>>6&0x3F), 0x80|byte(cp&0x3F))
}

// EncodeOneStrict is EncodeOne without the replacement fallback.
func EncodeOneStrict(dst []byte, cp rune) ([]byte, error) {
	if cp > MaxCodepoint {
		return dst, fmt.Errorf("codepoint %#x above U+10FFFF", cp)
	}
	if cp >= surrLo && cp <= surrHi {
		return dst, fmt.Errorf("surrogate %#x cannot be encoded", cp)
	}
	return EncodeOne(dst, cp), nil
}

// Validate checks that buf is entirely well-formed UTF-8.
func Validate(buf []byte) error {
	for pos := 0; pos < len(buf); {
		_, last, err := DecodeOne(buf, pos)
		if err != nil {
			return err
		}
		pos = last + 1
	}
	return nil
}

// Measure returns the UTF-8 byte length of rs when encoded. With crlf set,
// each LF is counted as a CR LF pair.
func Measure(rs []rune, crlf bool) int {
	n := 0
	for _, r := range rs {
		if crlf && r == '\n' {
			n += 2
			continue
		}
		n += EncodedLen(r)
	}
	return n
}

// ByteOrderMark identifies a leading BOM.
type ByteOrderMark int

const (
	BOMNone ByteOrderMark = iota
	BOMUTF8
	BOMUTF16BE
	BOMUTF16LE
	BOMUTF32BE
	BOMUTF32LE
)

// DetectBOM inspects the head of buf, returning the mark found and the
// buffer with the mark consumed. The 32-bit marks are checked before the
// 16-bit ones they share a prefix with.
func DetectBOM(buf []byte) (ByteOrderMark, []byte) {
	switch {
	case len(buf) >= 4 && buf[0] == 0xFF && buf[1] == 0xFE && buf[2] == 0 && buf[3] == 0:
		return BOMUTF32LE, buf[4:]
	case len(buf) >= 4 && buf[0] == 0 && buf[1] == 0 && buf[2] == 0xFE && buf[3] == 0xFF:
		return BOMUTF32BE, buf[4:]
	case len(buf) >= 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF:
		return BOMUTF8, buf[3:]
	case len(buf) >= 2 && buf[0] == 0xFE && buf[1] == 0xFF:
		return BOMUTF16BE, buf[2:]
	case len(buf) >= 2 && buf[0] == 0xFF && buf[1] == 0xFE:
		return BOMUTF16LE, buf[2:]
	}
	return BOMNone, buf
}

// ---------- cross-encoding converters ----------
//
// Each converter takes a strict flag: in strict mode unpaired surrogates and
// malformed input raise; in lenient mode they become U+FFFD.

// UTF8ToUTF32 decodes buf into scalar values.
func UTF8ToUTF32(buf []byte, strict bool) ([]rune, error) {
	out := make([]rune, 0, len(buf))
	for pos := 0; pos < len(buf); {
		cp, last, err := DecodeOne(buf, pos)
		if err != nil {
			if strict {
				return nil, err
			}
			out = append(out, Replacement)
			pos++
			continue
		}
		out = append(out, cp)
		pos = last + 1
	}
	return out, nil
}

// UTF32ToUTF8 encodes scalar values to UTF-8.
func UTF32ToUTF8(rs []rune, strict bool) ([]byte, error) {
	out := make([]byte, 0, len(rs))
	for i, cp := range rs {
		if strict {
			b, err := EncodeOneStrict(out, cp)
			if err != nil {
				return nil, fmt.Errorf("at index %d: %w", i, err)
			}
			out = b
			continue
		}
		out = EncodeOne(out, cp)
	}
	return out, nil
}

// UTF32ToUTF16 encodes scalar values as UTF-16 code units.
func UTF32ToUTF16(rs []rune, strict bool) ([]uint16, error) {
	out := make([]uint16, 0, len(rs))
	for i, cp := range rs {
		switch {
		case cp >= surrLo && cp <= surrHi, cp > MaxCodepoint:
			if strict {
				return nil, fmt.Errorf("invalid scalar %#x at index %d", cp, i)
			}
			out = append(out, Replacement)
		case cp < 0x10000:
			out = append(out, uint16(cp))
		default:
			cp -= 0x10000
			out = append(out, uint16(surrLo+cp>>10), uint16(0xDC00+cp&0x3FF))
		}
	}
	return out, nil
}

// UTF16ToUTF32 combines surrogate pairs into scalar values.
func UTF16ToUTF32(us []uint16, strict bool) ([]rune, error) {
	out := make([]rune, 0, len(us))
	for i := 0; i < len(us); i++ {
		u := us[i]
		switch {
		case u < surrLo || u > surrHi:
			out = append(out, rune(u))
		case u < 0xDC00: // high half
			if i+1 < len(us) && us[i+1] >= 0xDC00 && us[i+1] <= surrHi {
				out = append(out, 0x10000+rune(u-surrLo)<<10+rune(us[i+1]-0xDC00))
				i++
				continue
			}
			if strict {
				return nil, fmt.Errorf("unpaired high surrogate %#x at index %d", u, i)
			}
			out = append(out, Replacement)
		default: // isolated low half
			if strict {
				return nil, fmt.Errorf("unpaired low surrogate %#x at index %d", u, i)
			}
			out = append(out, Replacement)
		}
	}
	return out, nil
}

// UTF8ToUTF16 is the composition used by the scanner's string buffers.
func UTF8ToUTF16(buf []byte, strict bool) ([]uint16, error) {
	rs, err := UTF8ToUTF32(buf, strict)
	if err != nil {
		return nil, err
	}
	return UTF32ToUTF16(rs, strict)
}

// UTF16ToUTF8 converts code units back to bytes.
func UTF16ToUTF8(us []uint16, strict bool) ([]byte, error) {
	rs, err := UTF16ToUTF32(us, strict)
	if err != nil {
		return nil, err
	}
	return UTF32ToUTF8(rs, strict)
}

// ---------- caret escapes ----------

// escNames are the named forms accepted inside ^(...).
var escNames = map[string]rune{
	"null":   0,
	"line":   '\n',
	"tab":    '\t',
	"page":   '\f',
	"esc":    0x1B,
	"escape": 0x1B,
	"back":   '\b',
	"del":    0x7F,
}

// EscapeScan decodes a caret escape. pos must index the '^' byte. It returns
// the codepoint and the index just past the escape; ok is false when the
// sequence is not a valid escape (the caller then treats '^' literally).
func EscapeScan(buf []byte, pos int) (rune, int, bool) {
	if pos >= len(buf) || buf[pos] != '^' {
		return 0, pos, false
	}
	if pos+1 >= len(buf) {
		return 0, pos, false
	}
	c := buf[pos+1]
	switch c {
	case '/':
		return '\n', pos + 2, true
	case '-':
		return '\t', pos + 2, true
	case '!':
		return 0x1E, pos + 2, true
	case '^':
		return '^', pos + 2, true
	case '"', '{', '}':
		return rune(c), pos + 2, true
	case '(':
		return escapeScanParen(buf, pos+2)
	}
	// ^@ through ^_ are controls 0..31; lower case letters fold up first.
	u := upCase[c]
	if u >= '@' && u <= '_' {
		return rune(u - '@'), pos + 2, true
	}
	return 0, pos, false
}

// escapeScanParen handles ^(name) and ^(hex), pos indexing the byte after '('.
func escapeScanParen(buf []byte, pos int) (rune, int, bool) {
	end := pos
	for end < len(buf) && buf[end] != ')' {
		end++
	}
	if end >= len(buf) || end == pos {
		return 0, pos, false
	}
	body := buf[pos:end]

	// Hex digits, one to four of them.
	if len(body) <= 4 {
		cp := rune(0)
		isHex := true
		for _, b := range body {
			v, ok := hexVal(b)
			if !ok {
				isHex = false
				break
			}
			cp = cp<<4 | rune(v)
		}
		if isHex {
			return cp, end + 1, true
		}
	}

	name := foldSpelling(string(body))
	if cp, ok := escNames[name]; ok {
		return cp, end + 1, true
	}
	return 0, pos, false
}
