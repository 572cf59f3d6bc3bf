// scanner.go: the lexical scanner.
//
// The scanner drives a byte cursor across a UTF-8 source buffer and builds
// an ordered tree of cells. Each token is located in two steps: a prescan
// that runs to the next delimiter while collecting a fingerprint of the
// special bytes seen, then a per-class decision that fixes the token kind
// and converts the bytes to a cell. Blocks, groups and paths nest through
// recursion with an explicit depth guard.
//
// Error recovery: with ScanRelax set, a malformed token becomes an error!
// cell in place and scanning resumes at the next line. Unbalanced brackets
// at the outermost level are never recoverable.
package ren

import (
	"encoding/base64"
	"strings"
)

// ScanOpts is the scanner option bitmask.
type ScanOpts uint8

const (
	// ScanNext stops after one top-level value.
	ScanNext ScanOpts = 1 << iota
	// ScanOnly delivers a single element even when it is a compound.
	ScanOnly
	// ScanRelax inserts error cells instead of failing.
	ScanRelax
)

// tokenKind is the internal token classification.
type tokenKind int

const (
	tokEnd tokenKind = iota
	tokNewline
	tokBlockBegin
	tokBlockEnd
	tokGroupBegin
	tokGroupEnd
	tokWord
	tokSet
	tokGet
	tokLit
	tokRefine
	tokIssue
	tokInteger
	tokDecimal
	tokPercent
	tokMoney
	tokTime
	tokDate
	tokChar
	tokString
	tokBinary
	tokPair
	tokTuple
	tokFile
	tokEmail
	tokURL
	tokTag
	tokPath
	tokConstruct
)

var tokenKindNames = [...]string{
	tokEnd: "end", tokNewline: "newline", tokBlockBegin: "block", tokBlockEnd: "block",
	tokGroupBegin: "group", tokGroupEnd: "group", tokWord: "word", tokSet: "set-word",
	tokGet: "get-word", tokLit: "lit-word", tokRefine: "refinement", tokIssue: "issue",
	tokInteger: "integer", tokDecimal: "decimal", tokPercent: "percent",
	tokMoney: "money", tokTime: "time", tokDate: "date", tokChar: "char",
	tokString: "string", tokBinary: "binary", tokPair: "pair", tokTuple: "tuple",
	tokFile: "file", tokEmail: "email", tokURL: "url", tokTag: "tag",
	tokPath: "path", tokConstruct: "construct",
}

const maxScanDepth = 512

// Scanner scans one source buffer. A Scanner may be reused for further
// buffers via Init; the mold scratch buffer is pooled across calls and
// reset on each entry, never handed out to callers.
type Scanner struct {
	src      []byte
	cur      int
	begin    int // start of the current token
	lineHead int // start of the current line
	line     int
	errs     int
	opts     ScanOpts
	depth    int

	mold []rune // scratch decode buffer for strings and files
	val  Value  // cell produced by the last locateToken
}

// NewScanner prepares a scanner over src.
func NewScanner(src []byte, opts ScanOpts) *Scanner {
	s := &Scanner{}
	s.Init(src, opts)
	return s
}

// Init resets the scanner onto a new buffer, keeping the scratch buffer.
func (s *Scanner) Init(src []byte, opts ScanOpts) {
	s.src = src
	s.cur = 0
	s.begin = 0
	s.lineHead = 0
	s.line = 1
	s.errs = 0
	s.opts = opts
	s.depth = 0
	s.mold = s.mold[:0]
	s.val = Void
}

// Scan scans the whole buffer into a block cell.
func Scan(src []byte) (Value, error) {
	return NewScanner(src, 0).Scan()
}

// Scan runs the scanner to its terminator and returns the result block.
func (s *Scanner) Scan() (Value, error) {
	arr, err := s.scanArray(tokEnd)
	if err != nil {
		return Void, err
	}
	return ArrTagged(VTBlock, arr), nil
}

// Rest returns the unconsumed tail of the buffer.
func (s *Scanner) Rest() []byte { return s.src[s.cur:] }

// Errors reports how many error cells were embedded (relax mode).
func (s *Scanner) Errors() int { return s.errs }

// Line reports the current 1-based line number.
func (s *Scanner) Line() int { return s.line }

// ---------- cursor helpers ----------

func (s *Scanner) peek() byte {
	if s.cur >= len(s.src) {
		return 0
	}
	return s.src[s.cur]
}

func (s *Scanner) peekAt(n int) byte {
	if s.cur+n >= len(s.src) {
		return 0
	}
	return s.src[s.cur+n]
}

func (s *Scanner) atEnd() bool { return s.cur >= len(s.src) }

// bumpLine is called with the cursor just past a line terminator. A CR LF
// pair counts as one line; bare CR counts on its own.
func (s *Scanner) bumpLine() {
	s.line++
	s.lineHead = s.cur
}

func (s *Scanner) tokenText() string { return string(s.src[s.begin:s.cur]) }

// scanErr builds a ScanError at the current token with line diagnostics.
func (s *Scanner) scanErr(kind ErrKind, token string) error {
	end := s.begin
	for end < len(s.src) && s.src[end] != '\n' && s.src[end] != '\r' {
		end++
	}
	slice := s.tokenText()
	if len(slice) > 40 {
		slice = slice[:40]
	}
	return &ScanError{
		Kind:  kind,
		Token: token,
		Slice: slice,
		Line:  s.line,
		Col:   s.begin - s.lineHead,
		Near:  string(s.src[s.lineHead:end]),
	}
}

// skipToNextLine advances past the next line terminator (relax recovery).
func (s *Scanner) skipToNextLine() {
	for !s.atEnd() {
		b := s.src[s.cur]
		s.cur++
		if b == '\n' {
			s.bumpLine()
			return
		}
		if b == '\r' {
			if s.peek() == '\n' {
				s.cur++
			}
			s.bumpLine()
			return
		}
	}
}

// ---------- block construction ----------

// scanArray consumes tokens until terminator, building the emit buffer.
// Newline tokens set the line marker on the next appended cell.
func (s *Scanner) scanArray(terminator tokenKind) (*Array, error) {
	s.depth++
	defer func() { s.depth-- }()
	if s.depth > maxScanDepth {
		return nil, s.scanErr(ErrTooLong, "block")
	}

	arr := &Array{}
	pendingLine := false
	for {
		kind, err := s.locateToken()
		if err != nil {
			if s.opts&ScanRelax == 0 {
				arr.Truncate(0)
				return nil, err
			}
			s.errs++
			s.val = ErrToValue(err)
			s.skipToNextLine()
			kind = tokString // placeholder; val carries the error cell
		}

		var v Value
		switch kind {
		case tokEnd:
			if terminator != tokEnd {
				return nil, s.scanErr(ErrMissing, closerName(terminator))
			}
			return arr, nil
		case tokNewline:
			pendingLine = true
			continue
		case tokBlockEnd, tokGroupEnd:
			if kind == terminator {
				return arr, nil
			}
			if terminator == tokEnd && s.opts&ScanRelax != 0 {
				s.errs++
				v = ErrToValue(s.scanErr(ErrExtraClose, tokenKindNames[kind]))
				break
			}
			return nil, s.scanErr(ErrExtraClose, tokenKindNames[kind])
		case tokBlockBegin:
			sub, err := s.scanArray(tokBlockEnd)
			if err != nil {
				return nil, err
			}
			v = ArrTagged(VTBlock, sub)
		case tokGroupBegin:
			sub, err := s.scanArray(tokGroupEnd)
			if err != nil {
				return nil, err
			}
			v = ArrTagged(VTGroup, sub)
		case tokConstruct:
			sub, err := s.scanArray(tokBlockEnd)
			if err != nil {
				return nil, err
			}
			v, err = constructLiteral(sub)
			if err != nil {
				if s.opts&ScanRelax == 0 {
					return nil, err
				}
				s.errs++
				v = ErrToValue(err)
			}
		default:
			v = s.val
		}

		// Path continuation: a word-ish or integer token directly followed
		// by a slash grows into a path.
		if canStartPath(kind) && s.peek() == '/' {
			pv, err := s.scanPath(kind, v)
			if err != nil {
				if s.opts&ScanRelax == 0 {
					return nil, err
				}
				s.errs++
				pv = ErrToValue(err)
				s.skipToNextLine()
			}
			v = pv
		}

		if pendingLine {
			v.NewLine = true
			pendingLine = false
		}
		arr.Append(v)

		if terminator == tokEnd && s.opts&(ScanNext|ScanOnly) != 0 {
			return arr, nil
		}
	}
}

func closerName(terminator tokenKind) string {
	if terminator == tokGroupEnd {
		return ")"
	}
	return "]"
}

func canStartPath(kind tokenKind) bool {
	switch kind {
	case tokWord, tokGet, tokLit, tokInteger, tokRefine:
		return true
	}
	return false
}

// ---------- token location ----------

// locateToken finds the next token, leaving its bytes in
// src[begin:cur] and, for value-carrying kinds, the cell in s.val.
func (s *Scanner) locateToken() (tokenKind, error) {
	for {
		s.begin = s.cur
		if s.atEnd() {
			return tokEnd, nil
		}
		b := s.src[s.cur]

		switch classOf(b) {
		case classDelimit:
			switch subValOf(b) {
			case delimEnd:
				s.cur = len(s.src)
				return tokEnd, nil
			case delimSpace:
				s.cur++
				continue
			case delimLF:
				s.cur++
				s.bumpLine()
				return tokNewline, nil
			case delimCR:
				s.cur++
				if s.peek() == '\n' {
					s.cur++
				}
				s.bumpLine()
				return tokNewline, nil
			case delimSemicolon:
				for !s.atEnd() && s.src[s.cur] != '\n' && s.src[s.cur] != '\r' {
					s.cur++
				}
				return tokNewline, nil
			case delimBracketOpen:
				s.cur++
				return tokBlockBegin, nil
			case delimBracketClose:
				s.cur++
				return tokBlockEnd, nil
			case delimParenOpen:
				s.cur++
				return tokGroupBegin, nil
			case delimParenClose:
				s.cur++
				return tokGroupEnd, nil
			case delimQuote:
				return s.scanQuoted(VTString, tokString)
			case delimBraceOpen:
				return s.scanBraced()
			case delimBraceClose:
				s.cur++
				return 0, s.scanErr(ErrExtraClose, "string")
			case delimSlash:
				return s.scanRefinement()
			case delimUTF8Err:
				s.cur++
				return 0, s.scanErr(ErrBadUTF8, "word")
			}

		case classSpecial:
			return s.locateSpecial(b)

		case classWord:
			return s.scanWordish()

		case classNumber:
			return s.scanNumberish()
		}
	}
}

// locateSpecial handles tokens whose first byte is a special.
func (s *Scanner) locateSpecial(b byte) (tokenKind, error) {
	switch subValOf(b) {
	case specTick:
		s.cur++
		sym, err := s.scanWordBody("lit-word")
		if err != nil {
			return 0, err
		}
		s.val = WordTagged(VTLitWord, sym)
		return tokLit, nil

	case specColon:
		s.cur++
		sym, err := s.scanWordBody("get-word")
		if err != nil {
			return 0, err
		}
		s.val = WordTagged(VTGetWord, sym)
		return tokGet, nil

	case specPound:
		return s.scanPound()

	case specPercent:
		return s.scanFile()

	case specDollar:
		return s.scanNumberish()

	case specPlus, specMinus:
		n := s.peekAt(1)
		if isDigit(n) || n == '$' ||
			((n == '.' || n == ',') && isDigit(s.peekAt(2))) {
			return s.scanNumberish()
		}
		return s.scanWordish()

	case specDot, specComma:
		if isDigit(s.peekAt(1)) {
			return s.scanNumberish()
		}
		s.cur++
		return 0, s.scanErr(ErrInvalid, "word")

	case specLess:
		return s.scanLess()

	case specGreater:
		s.cur++
		for s.peek() == '=' || s.peek() == '>' {
			s.cur++
		}
		s.val = Word(s.tokenText())
		return tokWord, nil

	case specAt, specBackslash, specCaret:
		s.cur++
		return 0, s.scanErr(ErrInvalid, "word")
	}
	s.cur++
	return 0, s.scanErr(ErrInvalid, "word")
}

// scanLess disambiguates '<': a word when followed by whitespace, ']', end,
// or forming <» <=, <>, <<; otherwise a tag.
func (s *Scanner) scanLess() (tokenKind, error) {
	n := s.peekAt(1)
	switch n {
	case '<', '=', '>':
		s.cur += 2
		// <> and <= and << are complete; <<< keeps consuming '<'.
		for n == '<' && s.peek() == '<' {
			s.cur++
		}
		s.val = Word(s.tokenText())
		return tokWord, nil
	case ' ', '\t', '\n', '\r', ']', ')', 0:
		s.cur++
		s.val = Word("<")
		return tokWord, nil
	}
	return s.scanTag()
}

// prescan advances from the cursor to the next delimiter, returning the
// fingerprint of special sub-values seen. The position of the first byte is
// not fingerprinted; its class is already known exactly.
func (s *Scanner) prescan() (uint32, error) {
	flags := uint32(0)
	s.cur++
	for !s.atEnd() {
		b := s.src[s.cur]
		if classOf(b) == classDelimit {
			if subValOf(b) == delimUTF8Err {
				return flags, s.scanErr(ErrBadUTF8, "word")
			}
			break
		}
		flags |= flagOf(b)
		s.cur++
	}
	return flags, nil
}

// takeRunes decodes the token's byte range into codepoints, validating the
// UTF-8 along the way.
func (s *Scanner) takeRunes(from, to int) ([]rune, error) {
	rs, err := UTF8ToUTF32(s.src[from:to], true)
	if err != nil {
		return nil, s.scanErr(ErrBadUTF8, "string")
	}
	return rs, nil
}

// illegalWordFlags are the specials a word body may not contain. A '>' is
// tolerated so arrow words like -> survive; '<' is not, since it would
// shadow the tag form.
const illegalWordFlags = 1<<specComma | 1<<specDollar | 1<<specPound |
	1<<specPercent | 1<<specBackslash | 1<<specLess | 1<<specCaret

// scanWordish scans a token whose leading byte is word class (or a signed
// word) and decides between word, set-word, URL and email.
func (s *Scanner) scanWordish() (tokenKind, error) {
	flags, err := s.prescan()
	if err != nil {
		return 0, err
	}
	text := s.tokenText()

	if flags&(1<<specAt) != 0 {
		return s.finishEmail(text)
	}

	if flags&(1<<specColon) != 0 {
		colon := strings.IndexByte(text, ':')
		switch {
		case colon == len(text)-1 && s.peek() != '/':
			// Trailing colon, not a URL: set-word.
			body := text[:len(text)-1]
			if strings.IndexByte(body, ':') >= 0 {
				return 0, s.scanErr(ErrInvalid, "word")
			}
			s.val = WordTagged(VTSetWord, Intern(body))
			return tokSet, nil
		case colon == 0:
			return 0, s.scanErr(ErrInvalid, "word")
		default:
			return s.finishURL()
		}
	}

	if flags&illegalWordFlags != 0 {
		return 0, s.scanErr(ErrInvalid, "word")
	}
	if err := Validate(s.src[s.begin:s.cur]); err != nil {
		return 0, s.scanErr(ErrBadUTF8, "word")
	}
	s.val = Word(text)
	return tokWord, nil
}

// scanWordBody scans a plain word body (after ', :, /, #) with strict
// validation: no colon, no email, none of the illegal specials.
func (s *Scanner) scanWordBody(token string) (*Symbol, error) {
	start := s.cur
	if s.atEnd() || classOf(s.src[s.cur]) == classDelimit {
		return nil, s.scanErr(ErrInvalid, token)
	}
	if classOf(s.src[s.cur]) == classNumber {
		return nil, s.scanErr(ErrInvalid, token)
	}
	flags, err := s.prescan()
	if err != nil {
		return nil, err
	}
	if flags&(illegalWordFlags|1<<specAt|1<<specColon) != 0 {
		return nil, s.scanErr(ErrInvalid, token)
	}
	if err := Validate(s.src[start:s.cur]); err != nil {
		return nil, s.scanErr(ErrBadUTF8, token)
	}
	return Intern(string(s.src[start:s.cur])), nil
}

// finishURL consumes the remainder of a URL: anything up to whitespace or a
// closing delimiter, slashes included.
func (s *Scanner) finishURL() (tokenKind, error) {
	for !s.atEnd() {
		b := s.src[s.cur]
		if b == '/' {
			s.cur++
			continue
		}
		if isDelimiter(b) {
			if subValOf(b) == delimUTF8Err {
				return 0, s.scanErr(ErrBadUTF8, "url")
			}
			break
		}
		s.cur++
	}
	rs, err := s.takeRunes(s.begin, s.cur)
	if err != nil {
		return 0, err
	}
	s.val = StrTagged(VTURL, rs)
	return tokURL, nil
}

func (s *Scanner) finishEmail(text string) (tokenKind, error) {
	if strings.Count(text, "@") != 1 {
		return 0, s.scanErr(ErrInvalid, "email")
	}
	rs, err := s.takeRunes(s.begin, s.cur)
	if err != nil {
		return 0, err
	}
	s.val = StrTagged(VTEmail, rs)
	return tokEmail, nil
}

// scanRefinement handles a leading slash: "/" alone is a word, "/foo" is a
// refinement, "//foo" is a refinement with an empty initial element grown
// into a path by the caller.
func (s *Scanner) scanRefinement() (tokenKind, error) {
	s.cur++
	b := s.peek()
	if b == '/' {
		// Empty initial element; the path continuation supplies the rest.
		s.val = WordTagged(VTRefinement, Intern(""))
		return tokRefine, nil
	}
	if s.atEnd() || isDelimiter(b) {
		s.val = Word("/")
		return tokWord, nil
	}
	sym, err := s.scanWordBody("refinement")
	if err != nil {
		return 0, err
	}
	s.val = WordTagged(VTRefinement, sym)
	return tokRefine, nil
}

// scanPound handles '#': char, binary, construct, or issue.
func (s *Scanner) scanPound() (tokenKind, error) {
	switch s.peekAt(1) {
	case '"':
		return s.scanChar()
	case '{':
		s.cur++ // at '{'
		return s.scanBinary(16)
	case '[':
		s.cur += 2
		return tokConstruct, nil
	}
	s.cur++
	if s.atEnd() || isDelimiter(s.peek()) {
		return 0, s.scanErr(ErrInvalid, "issue")
	}
	start := s.cur
	flags, err := s.prescan()
	if err != nil {
		return 0, err
	}
	if flags&(illegalWordFlags|1<<specAt|1<<specColon) != 0 {
		return 0, s.scanErr(ErrInvalid, "issue")
	}
	s.val = WordTagged(VTIssue, Intern(string(s.src[start:s.cur])))
	return tokIssue, nil
}

// scanChar scans #"X" with one codepoint or escape.
func (s *Scanner) scanChar() (tokenKind, error) {
	s.cur += 2 // past #"
	if s.atEnd() {
		return 0, s.scanErr(ErrMissing, "char")
	}
	var cp rune
	b := s.src[s.cur]
	switch {
	case b == '^':
		c, next, ok := EscapeScan(s.src, s.cur)
		if !ok {
			return 0, s.scanErr(ErrInvalid, "char")
		}
		cp = c
		s.cur = next
	case b == '"' || b == '\n' || b == '\r':
		return 0, s.scanErr(ErrInvalid, "char")
	default:
		c, last, err := DecodeOne(s.src, s.cur)
		if err != nil {
			return 0, s.scanErr(ErrBadUTF8, "char")
		}
		cp = c
		s.cur = last + 1
	}
	if s.peek() != '"' {
		return 0, s.scanErr(ErrMissing, "char")
	}
	s.cur++
	s.val = Chr(cp)
	return tokChar, nil
}

// ---------- strings ----------

// scanQuoted scans "..." with caret escapes; an unescaped line terminator
// inside is an error. The decoded content accumulates in the mold buffer.
func (s *Scanner) scanQuoted(tag ValueTag, kind tokenKind) (tokenKind, error) {
	s.mold = s.mold[:0]
	s.cur++ // past opening quote
	for {
		if s.atEnd() {
			return 0, s.scanErr(ErrMissing, "string")
		}
		b := s.src[s.cur]
		switch b {
		case '"':
			s.cur++
			s.val = StrTagged(tag, s.takeMold())
			return kind, nil
		case '\n', '\r':
			return 0, s.scanErr(ErrMissing, "string")
		case '^':
			cp, next, ok := EscapeScan(s.src, s.cur)
			if !ok {
				cp, next = '^', s.cur+1
			}
			s.mold = append(s.mold, cp)
			s.cur = next
		default:
			cp, last, err := DecodeOne(s.src, s.cur)
			if err != nil {
				return 0, s.scanErr(ErrBadUTF8, "string")
			}
			s.mold = append(s.mold, cp)
			s.cur = last + 1
		}
	}
}

// scanBraced scans { ... } with balanced nesting and embedded newlines.
func (s *Scanner) scanBraced() (tokenKind, error) {
	s.mold = s.mold[:0]
	s.cur++ // past opening brace
	depth := 1
	for {
		if s.atEnd() {
			return 0, s.scanErr(ErrMissing, "string")
		}
		b := s.src[s.cur]
		switch b {
		case '{':
			depth++
			s.mold = append(s.mold, '{')
			s.cur++
		case '}':
			depth--
			s.cur++
			if depth == 0 {
				s.val = StrTagged(VTString, s.takeMold())
				return tokString, nil
			}
			s.mold = append(s.mold, '}')
		case '\n':
			s.mold = append(s.mold, '\n')
			s.cur++
			s.bumpLine()
		case '\r':
			s.mold = append(s.mold, '\n')
			s.cur++
			if s.peek() == '\n' {
				s.cur++
			}
			s.bumpLine()
		case '^':
			cp, next, ok := EscapeScan(s.src, s.cur)
			if !ok {
				cp, next = '^', s.cur+1
			}
			s.mold = append(s.mold, cp)
			s.cur = next
		default:
			cp, last, err := DecodeOne(s.src, s.cur)
			if err != nil {
				return 0, s.scanErr(ErrBadUTF8, "string")
			}
			s.mold = append(s.mold, cp)
			s.cur = last + 1
		}
	}
}

// takeMold copies the scratch buffer out; the scratch itself is never
// exposed, so the next token cannot observe stale content.
func (s *Scanner) takeMold() []rune {
	out := make([]rune, len(s.mold))
	copy(out, s.mold)
	s.mold = s.mold[:0]
	return out
}

// ---------- files ----------

// scanFile scans %path or %"quoted path". A bare % is the word "%".
func (s *Scanner) scanFile() (tokenKind, error) {
	if s.peekAt(1) == '"' {
		s.cur++
		kind, err := s.scanQuoted(VTFile, tokFile)
		if err != nil {
			return 0, err
		}
		return kind, nil
	}
	if s.atEnd() || isDelimiter(s.peekAt(1)) && s.peekAt(1) != '/' {
		s.cur++
		s.val = Word("%")
		return tokWord, nil
	}
	s.cur++
	start := s.cur
	for !s.atEnd() {
		b := s.src[s.cur]
		if b == '/' {
			s.cur++
			continue
		}
		if isDelimiter(b) {
			if subValOf(b) == delimUTF8Err {
				return 0, s.scanErr(ErrBadUTF8, "file")
			}
			break
		}
		s.cur++
	}
	rs, err := s.takeRunes(start, s.cur)
	if err != nil {
		return 0, err
	}
	s.val = StrTagged(VTFile, rs)
	return tokFile, nil
}

// ---------- tags ----------

// scanTag scans <...>, honoring embedded "..." so a quoted '>' does not
// close the tag.
func (s *Scanner) scanTag() (tokenKind, error) {
	s.cur++ // past '<'
	start := s.cur
	for {
		if s.atEnd() {
			return 0, s.scanErr(ErrMissing, "tag")
		}
		b := s.src[s.cur]
		switch b {
		case '>':
			rs, err := s.takeRunes(start, s.cur)
			if err != nil {
				return 0, err
			}
			s.cur++
			s.val = StrTagged(VTTag, rs)
			return tokTag, nil
		case '"':
			s.cur++
			for !s.atEnd() && s.src[s.cur] != '"' {
				if s.src[s.cur] == '\n' {
					s.bumpLine()
				}
				s.cur++
			}
			if s.atEnd() {
				return 0, s.scanErr(ErrMissing, "tag")
			}
			s.cur++
		case '\n':
			return 0, s.scanErr(ErrMissing, "tag")
		default:
			s.cur++
		}
	}
}

// ---------- binaries ----------

// scanBinary scans base#{...} content with the cursor at '{'. Whitespace
// and line breaks inside the braces are ignored.
func (s *Scanner) scanBinary(base int) (tokenKind, error) {
	s.cur++ // past '{'
	var body []byte
	for {
		if s.atEnd() {
			return 0, s.scanErr(ErrMissing, "binary")
		}
		b := s.src[s.cur]
		if b == '}' {
			s.cur++
			break
		}
		switch b {
		case ' ', '\t':
			s.cur++
		case '\n':
			s.cur++
			s.bumpLine()
		case '\r':
			s.cur++
			if s.peek() == '\n' {
				s.cur++
			}
			s.bumpLine()
		default:
			body = append(body, b)
			s.cur++
		}
	}

	bytes, err := decodeBinaryBody(base, body)
	if err != nil {
		return 0, s.scanErr(ErrInvalid, "binary")
	}
	s.val = Bin(bytes)
	return tokBinary, nil
}

func decodeBinaryBody(base int, body []byte) ([]byte, error) {
	switch base {
	case 16:
		if len(body)%2 != 0 {
			return nil, &ScanError{Kind: ErrInvalid, Token: "binary"}
		}
		out := make([]byte, 0, len(body)/2)
		for i := 0; i < len(body); i += 2 {
			hi, ok1 := hexVal(body[i])
			lo, ok2 := hexVal(body[i+1])
			if !ok1 || !ok2 {
				return nil, &ScanError{Kind: ErrInvalid, Token: "binary"}
			}
			out = append(out, hi<<4|lo)
		}
		return out, nil
	case 64:
		return base64.StdEncoding.DecodeString(string(body))
	case 2:
		if len(body)%8 != 0 {
			return nil, &ScanError{Kind: ErrInvalid, Token: "binary"}
		}
		out := make([]byte, 0, len(body)/8)
		for i := 0; i < len(body); i += 8 {
			var v byte
			for j := 0; j < 8; j++ {
				switch body[i+j] {
				case '0':
					v <<= 1
				case '1':
					v = v<<1 | 1
				default:
					return nil, &ScanError{Kind: ErrInvalid, Token: "binary"}
				}
			}
			out = append(out, v)
		}
		return out, nil
	}
	return nil, &ScanError{Kind: ErrInvalid, Token: "binary"}
}

// ---------- paths ----------

// scanPath grows a head token into a path. The cursor sits on the first
// slash. The head variant fixes the path kind; a trailing set-word segment
// turns it into a set-path and must end the path.
func (s *Scanner) scanPath(headKind tokenKind, head Value) (Value, error) {
	s.depth++
	defer func() { s.depth-- }()
	if s.depth > maxScanDepth {
		return Void, s.scanErr(ErrTooLong, "path")
	}

	kind := VTPath
	switch headKind {
	case tokGet:
		kind = VTGetPath
		head = WordTagged(VTWord, head.Sym())
	case tokLit:
		kind = VTLitPath
		head = WordTagged(VTWord, head.Sym())
	}

	arr := &Array{Elems: []Value{head}}
	for s.peek() == '/' {
		s.cur++
		b := s.peek()
		var elem Value
		switch {
		case b == '(':
			s.cur++
			sub, err := s.scanArray(tokGroupEnd)
			if err != nil {
				return Void, err
			}
			elem = ArrTagged(VTGroup, sub)
		case b == ':':
			s.cur++
			sym, err := s.scanWordBody("get-word")
			if err != nil {
				return Void, err
			}
			elem = WordTagged(VTGetWord, sym)
		case b == '\'':
			s.cur++
			sym, err := s.scanWordBody("lit-word")
			if err != nil {
				return Void, err
			}
			elem = WordTagged(VTLitWord, sym)
		case s.atEnd() || isDelimiter(b):
			return Void, s.scanErr(ErrInvalid, "path")
		default:
			tk, err := s.locateToken()
			if err != nil {
				return Void, err
			}
			switch tk {
			case tokWord, tokInteger, tokDecimal, tokString, tokIssue, tokChar:
				elem = s.val
			case tokSet:
				if kind != VTPath {
					return Void, s.scanErr(ErrInvalid, "path")
				}
				kind = VTSetPath
				arr.Append(WordTagged(VTWord, s.val.Sym()))
				if s.peek() == '/' {
					return Void, s.scanErr(ErrInvalid, "path")
				}
				return ArrTagged(kind, arr), nil
			default:
				return Void, s.scanErr(ErrInvalid, "path")
			}
		}
		arr.Append(elem)
	}

	if arr.Len() < 1 {
		return Void, s.scanErr(ErrInvalid, "path")
	}
	return ArrTagged(kind, arr), nil
}

// ---------- constructs ----------

// constructLiteral interprets a #[...] body. The recognized singleton forms
// become immediate cells; anything else stays a block of literal values for
// a later pass. An empty construct is malformed.
func constructLiteral(arr *Array) (Value, error) {
	if arr.Len() == 0 {
		return Void, &ScanError{Kind: ErrMalConstruct, Token: "construct"}
	}
	if arr.Len() == 1 && arr.At(0).Tag == VTWord {
		switch foldSpelling(arr.At(0).Sym().Spelling()) {
		case "true":
			return True, nil
		case "false":
			return False, nil
		case "none", "blank", "_":
			return Blank, nil
		case "void", "unset":
			return Void, nil
		}
	}
	return ArrTagged(VTBlock, arr), nil
}
