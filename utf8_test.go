// utf8_test.go
package ren

import (
	"bytes"
	"reflect"
	"testing"

	"golang.org/x/text/encoding/unicode"
)

func decodeAll(t *testing.T, buf []byte) []rune {
	t.Helper()
	var out []rune
	for pos := 0; pos < len(buf); {
		cp, last, err := DecodeOne(buf, pos)
		if err != nil {
			t.Fatalf("DecodeOne(%x) at %d: %v", buf, pos, err)
		}
		out = append(out, cp)
		pos = last + 1
	}
	return out
}

func Test_UTF8_RoundTrip(t *testing.T) {
	samples := []string{
		"hello",
		"héllo wörld",
		"日本語のテキスト",
		"mixed ασκii and ελληνικά",
		"emoji \U0001F600 beyond the BMP",
		" ߿ࠀ�\U0010FFFF",
	}
	for _, s := range samples {
		src := []byte(s)
		rs := decodeAll(t, src)
		var back []byte
		for _, cp := range rs {
			back = EncodeOne(back, cp)
		}
		if !bytes.Equal(back, src) {
			t.Fatalf("round trip of %q: got %x want %x", s, back, src)
		}
	}
}

func Test_UTF8_LastBytePosition(t *testing.T) {
	// "aé日" = 61, C3 A9, E6 97 A5: the decoder reports the final byte of
	// each sequence so the caller advances with a single increment.
	buf := []byte("aé日")
	wantLast := []int{0, 2, 5}
	pos := 0
	for i := 0; pos < len(buf); i++ {
		_, last, err := DecodeOne(buf, pos)
		if err != nil {
			t.Fatalf("DecodeOne: %v", err)
		}
		if last != wantLast[i] {
			t.Fatalf("sequence %d: last byte %d, want %d", i, last, wantLast[i])
		}
		pos = last + 1
	}
}

func Test_UTF8_RejectsIllegalLeaders(t *testing.T) {
	for _, b := range []byte{0xC0, 0xC1, 0xF5, 0xF8, 0xFF} {
		_, _, err := DecodeOne([]byte{b, 0x80}, 0)
		if err == nil {
			t.Fatalf("leader %02X accepted", b)
		}
	}
}

func Test_UTF8_RejectsOverlongAndSurrogates(t *testing.T) {
	bad := [][]byte{
		{0xE0, 0x80, 0x80}, // overlong 3-byte
		{0xE0, 0x9F, 0xBF}, // overlong 3-byte boundary
		{0xED, 0xA0, 0x80}, // surrogate D800
		{0xF0, 0x80, 0x80, 0x80}, // overlong 4-byte
		{0xF4, 0x90, 0x80, 0x80}, // above 10FFFF
	}
	for _, buf := range bad {
		if _, _, err := DecodeOne(buf, 0); err == nil {
			t.Fatalf("sequence %x accepted", buf)
		}
	}
	good := [][]byte{
		{0xE0, 0xA0, 0x80}, // U+0800
		{0xED, 0x9F, 0xBF}, // U+D7FF
		{0xF4, 0x8F, 0xBF, 0xBF}, // U+10FFFF
	}
	for _, buf := range good {
		if _, _, err := DecodeOne(buf, 0); err != nil {
			t.Fatalf("sequence %x rejected: %v", buf, err)
		}
	}
}

func Test_UTF8_Truncated(t *testing.T) {
	_, _, err := DecodeOne([]byte{0xE6, 0x97}, 0)
	ue, ok := err.(*UTF8Error)
	if !ok || ue.Kind != utf8Truncated {
		t.Fatalf("want truncated error, got %v", err)
	}
}

func Test_UTF8_Measure_CRLF(t *testing.T) {
	rs := []rune("a\nb\n")
	if n := Measure(rs, false); n != 4 {
		t.Fatalf("Measure plain: %d", n)
	}
	if n := Measure(rs, true); n != 6 {
		t.Fatalf("Measure crlf: %d", n)
	}
}

func Test_BOM_Detection(t *testing.T) {
	cases := []struct {
		in   []byte
		mark ByteOrderMark
		rest int
	}{
		{[]byte{0xEF, 0xBB, 0xBF, '1'}, BOMUTF8, 1},
		{[]byte{0xFE, 0xFF, 0, '1'}, BOMUTF16BE, 2},
		{[]byte{0xFF, 0xFE, '1', 0}, BOMUTF16LE, 2},
		{[]byte{0x00, 0x00, 0xFE, 0xFF}, BOMUTF32BE, 0},
		{[]byte{0xFF, 0xFE, 0x00, 0x00}, BOMUTF32LE, 0},
		{[]byte("123"), BOMNone, 3},
	}
	for _, c := range cases {
		mark, rest := DetectBOM(c.in)
		if mark != c.mark || len(rest) != c.rest {
			t.Fatalf("DetectBOM(%x): got %v/%d want %v/%d", c.in, mark, len(rest), c.mark, c.rest)
		}
	}
}

func Test_UTF16_Oracle(t *testing.T) {
	// The x/text decoder is the reference for the UTF-16 converters.
	samples := []string{"plain", "žluťoučký kůň", "surrogate pair \U0001F4A9 inside"}
	for _, s := range samples {
		us, err := UTF8ToUTF16([]byte(s), true)
		if err != nil {
			t.Fatalf("UTF8ToUTF16(%q): %v", s, err)
		}
		be := make([]byte, 0, len(us)*2)
		for _, u := range us {
			be = append(be, byte(u>>8), byte(u))
		}
		dec := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
		want, err := dec.Bytes(be)
		if err != nil {
			t.Fatalf("oracle decode: %v", err)
		}
		back, err := UTF16ToUTF8(us, true)
		if err != nil {
			t.Fatalf("UTF16ToUTF8: %v", err)
		}
		if !bytes.Equal(back, want) {
			t.Fatalf("UTF-16 disagreement for %q: got %x oracle %x", s, back, want)
		}
	}
}

func Test_UTF16_UnpairedSurrogates(t *testing.T) {
	lone := []uint16{0xD800, 'a'}
	if _, err := UTF16ToUTF32(lone, true); err == nil {
		t.Fatal("strict mode accepted a lone high surrogate")
	}
	rs, err := UTF16ToUTF32(lone, false)
	if err != nil {
		t.Fatalf("lenient mode failed: %v", err)
	}
	if !reflect.DeepEqual(rs, []rune{Replacement, 'a'}) {
		t.Fatalf("lenient replacement: %v", rs)
	}
}

func Test_EscapeScan(t *testing.T) {
	cases := []struct {
		src  string
		cp   rune
		next int
	}{
		{"^/", '\n', 2},
		{"^-", '\t', 2},
		{"^!", 0x1E, 2},
		{"^^", '^', 2},
		{`^"`, '"', 2},
		{"^{", '{', 2},
		{"^}", '}', 2},
		{"^@", 0, 2},
		{"^A", 1, 2},
		{"^a", 1, 2},
		{"^_", 31, 2},
		{"^(tab)", '\t', 6},
		{"^(null)", 0, 7},
		{"^(esc)", 0x1B, 6},
		{"^(41)", 0x41, 5},
		{"^(FFFD)", 0xFFFD, 7},
	}
	for _, c := range cases {
		cp, next, ok := EscapeScan([]byte(c.src), 0)
		if !ok || cp != c.cp || next != c.next {
			t.Fatalf("EscapeScan(%q): got %U/%d/%v want %U/%d", c.src, cp, next, ok, c.cp, c.next)
		}
	}
	if _, _, ok := EscapeScan([]byte("^(bogus)"), 0); ok {
		t.Fatal("bogus paren escape accepted")
	}
}

func Test_EncodeOne_ReplacesOutOfRange(t *testing.T) {
	out := EncodeOne(nil, 0x110000)
	if !bytes.Equal(out, []byte("�")) {
		t.Fatalf("got %x", out)
	}
	if _, err := EncodeOneStrict(nil, 0x110000); err == nil {
		t.Fatal("strict encode accepted out-of-range codepoint")
	}
}
