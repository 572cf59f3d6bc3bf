// transcode.go: the whole-buffer scan surface.
//
// Transcode wraps the scanner for callers that hold raw source bytes: it
// strips a byte order mark, converts UTF-16 input to UTF-8, scans per the
// options, and reports the scanned content together with the unconsumed
// tail as a binary. ScanHeader locates an embedded script header.
package ren

import "bytes"

// Transcode scans src and returns a two-element block: the scanned content
// and a binary holding the unconsumed rest of the buffer. Without ScanNext
// or ScanOnly the whole buffer is consumed and the rest is empty.
func Transcode(src []byte, opts ScanOpts) (Value, error) {
	body, err := decodeSource(src)
	if err != nil {
		return Void, err
	}

	s := NewScanner(body, opts)
	arr, err := s.scanArray(tokEnd)
	if err != nil {
		return Void, err
	}

	var content Value
	switch {
	case opts&ScanOnly != 0:
		// A single element, compound or not, never wrapped.
		content = arr.At(0)
		content.NewLine = false
	case opts&ScanNext != 0:
		content = ArrTagged(VTBlock, arr)
	default:
		content = ArrTagged(VTBlock, arr)
	}

	rest := make([]byte, len(s.Rest()))
	copy(rest, s.Rest())
	return Blk(content, Bin(rest)), nil
}

// decodeSource strips any BOM and transcodes UTF-16 input. UTF-32 input is
// not a source encoding here.
func decodeSource(src []byte) ([]byte, error) {
	mark, body := DetectBOM(src)
	switch mark {
	case BOMUTF16BE, BOMUTF16LE:
		us := make([]uint16, 0, len(body)/2)
		for i := 0; i+1 < len(body); i += 2 {
			if mark == BOMUTF16BE {
				us = append(us, uint16(body[i])<<8|uint16(body[i+1]))
			} else {
				us = append(us, uint16(body[i+1])<<8|uint16(body[i]))
			}
		}
		return UTF16ToUTF8(us, true)
	case BOMUTF32BE, BOMUTF32LE:
		return nil, &UTF8Error{Kind: utf8Illegal, Pos: 0}
	}
	return body, nil
}

var headerWord = []byte("rebol")

// ScanHeader locates a script header: a case-insensitive REBOL word
// followed, after whitespace and comments, by an opening bracket. The
// return is the offset of the word's first byte, or -1 when no header
// exists. Content before the word marks an embedded header and the offset
// comes back negated: the wrapping bracket's when one precedes the word,
// the word's own otherwise.
func ScanHeader(src []byte) int {
	lower := bytes.ToLower(src)
	from := 0
	for {
		i := bytes.Index(lower[from:], headerWord)
		if i < 0 {
			return -1
		}
		pos := from + i
		from = pos + 1

		// The word must stand alone. A bracket may precede it: that is
		// the wrapping block of an embedded script.
		if pos > 0 && !headerBoundary(src[pos-1]) && src[pos-1] != '[' {
			continue
		}
		j := pos + len(headerWord)
		if j < len(src) && !headerBoundary(src[j]) && src[j] != ';' {
			continue
		}
		j = skipHeaderFiller(src, j)
		if j >= len(src) || src[j] != '[' {
			continue
		}

		// Content before the word means the script is embedded in a larger
		// stream; the offset comes back negated. A wrapping bracket is the
		// reported position, the word itself when there is no bracket.
		for k := pos - 1; k >= 0; k-- {
			b := src[k]
			if b == ' ' || b == '\t' || b == '\n' || b == '\r' {
				continue
			}
			if b == '[' {
				return -k
			}
			return -pos
		}
		return pos
	}
}

// skipHeaderFiller advances past whitespace, line breaks and comments.
func skipHeaderFiller(src []byte, j int) int {
	for j < len(src) {
		switch src[j] {
		case ' ', '\t', '\n', '\r':
			j++
		case ';':
			for j < len(src) && src[j] != '\n' {
				j++
			}
		default:
			return j
		}
	}
	return j
}

func headerBoundary(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', 0:
		return true
	}
	return false
}
