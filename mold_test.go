// mold_test.go
package ren

import (
	"fmt"
	"testing"
)

// remold scans the mold of v and returns the single scanned value.
func remold(t *testing.T, v Value) Value {
	t.Helper()
	text := Mold(v)
	got := scanOne(t, text)
	return got
}

func Test_Mold_Integer_RoundTrip(t *testing.T) {
	for _, n := range []int64{0, 1, -1, 42, -9006, 9223372036854775807, -9223372036854775808} {
		got := remold(t, Int(n))
		if got.Tag != VTInteger || got.Int() != n {
			t.Errorf("%d round-tripped to %v", n, got)
		}
	}
}

func Test_Mold_Decimal_Scannable(t *testing.T) {
	for _, f := range []float64{0, 1.5, -2.75, 1e20, 3.14159265358979, 0.001} {
		text := Mold(Value{Tag: VTDecimal, Data: f})
		got := scanOne(t, text)
		if got.Tag != VTDecimal {
			t.Errorf("Mold(%g) = %q scanned as %v", f, text, got.Tag)
			continue
		}
		if got.Dec() != f {
			t.Errorf("%g round-tripped to %g via %q", f, got.Dec(), text)
		}
	}
	// Whole floats still look like decimals.
	if text := Mold(Value{Tag: VTDecimal, Data: 2.0}); text != "2.0" {
		t.Errorf("whole decimal molds as %q", text)
	}
}

func Test_Mold_Singletons(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Void, "#[void]"},
		{Blank, "#[none]"},
		{True, "#[true]"},
		{False, "#[false]"},
	}
	for _, c := range cases {
		if got := Mold(c.v); got != c.want {
			t.Errorf("Mold(%v) = %q, want %q", c.v.Tag, got, c.want)
		}
	}
	for _, c := range cases {
		got := remold(t, c.v)
		if got.Tag != c.v.Tag {
			t.Errorf("%q scanned back as %v", c.want, got.Tag)
		}
	}
}

func Test_Mold_Char(t *testing.T) {
	cases := []struct {
		r    rune
		want string
	}{
		{'a', `#"a"`},
		{'"', `#"^""`},
		{'\n', `#"^/"`},
		{'\t', `#"^-"`},
		{'^', `#"^^"`},
		{0x01, `#"^(01)"`},
		{'é', `#"é"`},
	}
	for _, c := range cases {
		if got := Mold(Chr(c.r)); got != c.want {
			t.Errorf("Mold(%q) = %q, want %q", c.r, got, c.want)
		}
		back := remold(t, Chr(c.r))
		if back.Tag != VTChar || back.Char() != c.r {
			t.Errorf("%q did not round-trip: %v", c.want, back)
		}
	}
}

func Test_Mold_String_Forms(t *testing.T) {
	// Plain strings quote; strings with newlines or quotes brace.
	if got := Mold(Str("hello")); got != `"hello"` {
		t.Errorf("plain: %q", got)
	}
	if got := Mold(Str("a\nb")); got != "{a\nb}" {
		t.Errorf("newline: %q", got)
	}
	if got := Mold(Str(`say "hi"`)); got != `{say "hi"}` {
		t.Errorf("embedded quote: %q", got)
	}

	for _, s := range []string{"", "hello", "a\nb", `say "hi"`, "tab\there", "brace } inside", "caret ^ too"} {
		back := remold(t, Str(s))
		if back.Tag != VTString || string(back.Strs().Runes) != s {
			t.Errorf("%q round-tripped to %q", s, string(back.Strs().Runes))
		}
	}
}

func Test_Mold_Series_RoundTrip(t *testing.T) {
	sources := []string{
		"[1 2 3]",
		"[a [b [c]] 3.4]",
		"(x y)",
		"#{DECAFBAD}",
		"#{}",
		"%file.txt",
		`%"with space.txt"`,
		"<tag attr=1>",
		"user@example.com",
		"http://example.com/a",
		"#issue",
	}
	for _, src := range sources {
		v := scanOne(t, src)
		back := remold(t, v)
		if back.Tag != v.Tag {
			t.Errorf("%q: tag %v became %v", src, v.Tag, back.Tag)
			continue
		}
		if Mold(back) != Mold(v) {
			t.Errorf("%q: mold drifted %q -> %q", src, Mold(v), Mold(back))
		}
	}
}

func Test_Mold_Scalars_RoundTrip(t *testing.T) {
	sources := []string{
		"12x34",
		"1.2.3",
		"255.255.255.0",
		"10:30",
		"0:00:10.5",
		"12-Dec-2012",
		"1-Jan-2000/10:30+2:00",
		"$12.34",
		"-$0.50",
		"50%",
		"'foo",
		":foo",
		"foo:",
		"/only",
	}
	for _, src := range sources {
		v := scanOne(t, src)
		back := remold(t, v)
		if back.Tag != v.Tag || Mold(back) != Mold(v) {
			t.Errorf("%q: %v %q -> %v %q", src, v.Tag, Mold(v), back.Tag, Mold(back))
		}
	}
}

func Test_Mold_Paths(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"a/b/c", "a/b/c"},
		{":a/b", ":a/b"},
		{"'a/b", "'a/b"},
		{"a/b:", "a/b:"},
		{"a/(b c)/d", "a/(b c)/d"},
		{"a/1/c", "a/1/c"},
	}
	for _, c := range cases {
		v := scanOne(t, c.src)
		if got := Mold(v); got != c.want {
			t.Errorf("Mold(%q) = %q, want %q", c.src, got, c.want)
		}
	}
}

func Test_Mold_NewLine_Flags(t *testing.T) {
	v := scanOne(t, "[1 2\n3 4]")
	got := Mold(v)
	if got != "[1 2\n3 4]" {
		t.Errorf("newline layout: %q", got)
	}
	back := remold(t, v)
	if Mold(back) != got {
		t.Errorf("layout drifted: %q", Mold(back))
	}
}

func Test_Mold_Context(t *testing.T) {
	c := ctxFrom(t, "x: 1 y: \"two\"")
	got := Mold(CtxVal(c))
	want := `make object! [x: 1 y: "two"]`
	if got != want {
		t.Errorf("context: %q, want %q", got, want)
	}
}

func Test_Mold_Money_Format(t *testing.T) {
	cases := []struct {
		src, want string
	}{
		{"$1", "$1.00"},
		{"$12.34", "$12.34"},
		{"-$0.50", "-$0.50"},
	}
	for _, c := range cases {
		if got := Mold(scanOne(t, c.src)); got != c.want {
			t.Errorf("Mold(%s) = %q, want %q", c.src, got, c.want)
		}
	}
}

func Test_Mold_Time_Format(t *testing.T) {
	cases := []struct {
		src, want string
	}{
		{"10:30", "10:30"},
		{"10:30:05", "10:30:05"},
		{"0:00:10.5", "0:00:10.5"},
		{"-1:00", "-1:00"},
	}
	for _, c := range cases {
		if got := Mold(scanOne(t, c.src)); got != c.want {
			t.Errorf("Mold(%s) = %q, want %q", c.src, got, c.want)
		}
	}
}

func Test_Mold_Binary_Uppercase(t *testing.T) {
	if got := Mold(Bin([]byte{0xDE, 0xAD})); got != "#{DEAD}" {
		t.Errorf("binary: %q", got)
	}
}

func Test_Mold_Word_Preserves_Spelling(t *testing.T) {
	v := scanOne(t, "CamelCase")
	if got := Mold(v); got != "CamelCase" {
		t.Errorf("spelling lost: %q", got)
	}
}

func Test_Mold_Error_Cell(t *testing.T) {
	s := NewScanner([]byte("2x3x4"), ScanRelax)
	arr, err := s.scanArray(tokEnd)
	if err != nil {
		t.Fatal(err)
	}
	cell := arr.At(0)
	if cell.Tag != VTError {
		t.Fatalf("relax cell: %v", cell.Tag)
	}
	text := Mold(cell)
	if text == "" || text[0] != 'm' {
		t.Fatalf("error mold: %q", text)
	}
	got := fmt.Sprintf("%.11s", text)
	if got != "make error!" {
		t.Fatalf("error mold prefix: %q", text)
	}
}
