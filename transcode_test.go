// transcode_test.go
package ren

import (
	"bytes"
	"testing"
)

func transcodeVals(t *testing.T, src []byte, opts ScanOpts) ([]Value, []byte) {
	t.Helper()
	out, err := Transcode(src, opts)
	if err != nil {
		t.Fatalf("Transcode(%q): %v", src, err)
	}
	pair := out.Arr()
	if len(pair.Elems) != 2 {
		t.Fatalf("result shape: %d elements", len(pair.Elems))
	}
	content := pair.At(0)
	rest := pair.At(1)
	if rest.Tag != VTBinary {
		t.Fatalf("rest is %v, want binary", rest.Tag)
	}
	if opts&ScanOnly != 0 {
		return []Value{content}, rest.Bins().Bytes
	}
	if content.Tag != VTBlock {
		t.Fatalf("content is %v, want block", content.Tag)
	}
	return content.Arr().Elems, rest.Bins().Bytes
}

func Test_Transcode_BOM_Then_Digits(t *testing.T) {
	src := append([]byte{0xEF, 0xBB, 0xBF}, "123"...)
	vals, rest := transcodeVals(t, src, 0)
	if len(vals) != 1 || vals[0].Int() != 123 {
		t.Fatalf("content: %v", vals)
	}
	if len(rest) != 0 {
		t.Fatalf("rest: %q", rest)
	}
}

func Test_Transcode_Full(t *testing.T) {
	vals, rest := transcodeVals(t, []byte(`a "b" [c]`), 0)
	tags := []ValueTag{VTWord, VTString, VTBlock}
	if len(vals) != len(tags) {
		t.Fatalf("content: %v", vals)
	}
	for i, want := range tags {
		if vals[i].Tag != want {
			t.Errorf("value %d: %v, want %v", i, vals[i].Tag, want)
		}
	}
	if len(rest) != 0 {
		t.Fatalf("rest: %q", rest)
	}
}

func Test_Transcode_Next(t *testing.T) {
	vals, rest := transcodeVals(t, []byte("[a b] 2 3"), ScanNext)
	if len(vals) != 1 || vals[0].Tag != VTBlock {
		t.Fatalf("content: %v", vals)
	}
	if string(bytes.TrimSpace(rest)) != "2 3" {
		t.Fatalf("rest: %q", rest)
	}
}

func Test_Transcode_Only(t *testing.T) {
	vals, rest := transcodeVals(t, []byte("[a b] tail"), ScanOnly)
	v := vals[0]
	if v.Tag != VTBlock {
		t.Fatalf("bare value: %v", v.Tag)
	}
	if v.NewLine {
		t.Fatal("newline flag survived unwrapping")
	}
	if len(v.Arr().Elems) != 2 {
		t.Fatalf("inner block: %v", v.Arr().Elems)
	}
	if string(bytes.TrimSpace(rest)) != "tail" {
		t.Fatalf("rest: %q", rest)
	}
}

func Test_Transcode_UTF16_Input(t *testing.T) {
	le := []byte{0xFF, 0xFE}
	for _, r := range "1 2" {
		le = append(le, byte(r), 0)
	}
	vals, _ := transcodeVals(t, le, 0)
	if len(vals) != 2 || vals[0].Int() != 1 || vals[1].Int() != 2 {
		t.Fatalf("utf-16 content: %v", vals)
	}

	be := []byte{0xFE, 0xFF}
	for _, r := range "7" {
		be = append(be, 0, byte(r))
	}
	vals, _ = transcodeVals(t, be, 0)
	if len(vals) != 1 || vals[0].Int() != 7 {
		t.Fatalf("utf-16be content: %v", vals)
	}
}

func Test_Transcode_UTF16_UnpairedSurrogate(t *testing.T) {
	src := []byte{0xFF, 0xFE, 0x00, 0xD8}
	if _, err := Transcode(src, 0); err == nil {
		t.Fatal("unpaired surrogate accepted")
	}
}

func Test_Transcode_UTF32_Rejected(t *testing.T) {
	src := []byte{0xFF, 0xFE, 0x00, 0x00, '1', 0, 0, 0}
	if _, err := Transcode(src, 0); err == nil {
		t.Fatal("utf-32 input accepted")
	}
}

func Test_Transcode_Relax_Keeps_Going(t *testing.T) {
	vals, _ := transcodeVals(t, []byte("1 2x3x4 5\n6"), ScanRelax)
	if len(vals) != 3 {
		t.Fatalf("relax content: %v", vals)
	}
	if vals[0].Int() != 1 || vals[1].Tag != VTError || vals[2].Int() != 6 {
		t.Fatalf("relax cells: %v %v %v", vals[0], vals[1].Tag, vals[2])
	}
}

func Test_Transcode_Error_Propagates(t *testing.T) {
	if _, err := Transcode([]byte("[a b"), 0); err == nil {
		t.Fatal("unclosed block accepted")
	}
}

func Test_ScanHeader_Plain(t *testing.T) {
	cases := []struct {
		src  string
		want int
	}{
		{"REBOL [Title: \"x\"]", 0},
		{"rebol [x]", 0},
		{"  Rebol [x]", 2},
		{"rebol ;note\n[x]", 0},
		{"rebol\n\t[x]", 0},
		{"rebol", -1},
		{"rebol stuff [x]", -1},
		{"rebolx [x]", -1},
		{"prebol [x]", -1},
		{"", -1},
	}
	for _, c := range cases {
		if got := ScanHeader([]byte(c.src)); got != c.want {
			t.Errorf("ScanHeader(%q) = %d, want %d", c.src, got, c.want)
		}
	}
}

// A header buried in a larger stream reports a negated offset: the
// wrapping bracket before the word when there is one, the word otherwise.
func Test_ScanHeader_Embedded(t *testing.T) {
	src := []byte("print [REBOL [x]]")
	want := -bytes.IndexByte(src, '[') // the bracket before REBOL
	if got := ScanHeader(src); got != want {
		t.Fatalf("embedded: %d, want %d", got, want)
	}

	src = []byte("print [ REBOL [x]]")
	if got := ScanHeader(src); got != -bytes.IndexByte(src, '[') {
		t.Fatalf("embedded with space: %d", got)
	}

	src = []byte("#!/bin/sh\nREBOL [x]")
	want = -bytes.Index(src, []byte("REBOL"))
	if got := ScanHeader(src); got != want {
		t.Fatalf("preceded by content: %d, want %d", got, want)
	}
}
