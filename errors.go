// errors.go: error taxonomy, error values, and caret-snippet rendering.
//
// Each stage produces its own typed error (*ScanError, *PathError,
// *AccessError) carrying a kind from one enumeration plus location data.
// Hosts that want language-level error values convert at the API boundary
// with ErrToValue, which wraps the kind and location in an error! cell.
//
// WrapErrorWithSource upgrades a scan error into a readable snippet with a
// caret under the offending column:
//
//	SCAN ERROR at 3:12: invalid integer
//
//	   2 | x: 10
//	   3 | y: 12a4
//	     |    ^
package ren

import (
	"fmt"
	"strings"
)

// ErrKind enumerates every recoverable error this core raises.
type ErrKind int

const (
	ErrInvalid ErrKind = iota
	ErrMissing
	ErrExtraClose
	ErrBadUTF8
	ErrCodepointTooHigh
	ErrBadPathSelect
	ErrBadPathSet
	ErrBadPathPoke
	ErrNoValue
	ErrBadRefine
	ErrTooLong
	ErrMalConstruct
	ErrHiddenKey
	ErrProtectedKey
)

var errKindNames = [...]string{
	ErrInvalid:          "invalid",
	ErrMissing:          "missing",
	ErrExtraClose:       "extra-close",
	ErrBadUTF8:          "bad-utf8",
	ErrCodepointTooHigh: "codepoint-too-high",
	ErrBadPathSelect:    "bad-path-select",
	ErrBadPathSet:       "bad-path-set",
	ErrBadPathPoke:      "bad-path-poke",
	ErrNoValue:          "no-value",
	ErrBadRefine:        "bad-refine",
	ErrTooLong:          "too-long",
	ErrMalConstruct:     "malformed-construct",
	ErrHiddenKey:        "hidden-key",
	ErrProtectedKey:     "protected-key",
}

func (k ErrKind) String() string {
	if int(k) < len(errKindNames) {
		return errKindNames[k]
	}
	return "unknown"
}

// ScanError is raised by the scanner. Near is the prefix of the source line
// up to the failure; Slice is the offending token text.
type ScanError struct {
	Kind  ErrKind
	Token string // token kind name, e.g. "integer"
	Slice string
	Line  int
	Col   int // 0-based byte column of the token start
	Near  string
}

func (e *ScanError) Error() string {
	what := e.Token
	if e.Slice != "" {
		what = fmt.Sprintf("%s %q", e.Token, e.Slice)
	}
	return fmt.Sprintf("SCAN ERROR at %d:%d: %s %s (near %q)",
		e.Line, e.Col+1, e.Kind, what, e.Near)
}

// PathError is raised by the path engine and the pick/poke front ends.
type PathError struct {
	Kind   ErrKind
	Target ValueTag // type whose dispatcher refused
	Picker Value
	Msg    string
}

func (e *PathError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("PATH ERROR: %s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("PATH ERROR: %s: cannot use %s picker on %s",
		e.Kind, TypeName(e.Picker.Tag), TypeName(e.Target))
}

// AccessError is raised by context mutation on hidden or protected keys.
type AccessError struct {
	Kind ErrKind
	Key  *Symbol
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("ACCESS ERROR: %s: %s", e.Kind, e.Key.Spelling())
}

// ThrowSignal propagates a throw out of a group evaluation. The scanner and
// path engine never catch it; callers see it as the Throws outcome.
type ThrowSignal struct {
	Val Value
}

func (t *ThrowSignal) Error() string { return "throw" }

// IsThrow reports whether err carries a throw from group evaluation.
func IsThrow(err error) (*ThrowSignal, bool) {
	ts, ok := err.(*ThrowSignal)
	return ts, ok
}

// ErrorObj is the payload behind an error! cell: the value-level form of a
// raised error, as scanned sources in relax mode and hosts both see it.
type ErrorObj struct {
	Kind ErrKind
	Near string
	Line int
	Msg  string
}

// ErrToValue converts a stage error into an error! cell. Non-core errors
// become ErrInvalid with the message preserved.
func ErrToValue(err error) Value {
	switch e := err.(type) {
	case *ScanError:
		return Value{Tag: VTError, Data: &ErrorObj{
			Kind: e.Kind, Near: e.Near, Line: e.Line, Msg: e.Error(),
		}}
	case *PathError:
		return Value{Tag: VTError, Data: &ErrorObj{Kind: e.Kind, Msg: e.Error()}}
	case *AccessError:
		return Value{Tag: VTError, Data: &ErrorObj{Kind: e.Kind, Msg: e.Error()}}
	case *UTF8Error:
		return Value{Tag: VTError, Data: &ErrorObj{Kind: ErrBadUTF8, Msg: e.Error()}}
	}
	return Value{Tag: VTError, Data: &ErrorObj{Kind: ErrInvalid, Msg: err.Error()}}
}

/* ===========================
   caret-snippet rendering
   =========================== */

// WrapErrorWithSource returns err augmented with a caret-annotated snippet
// of src when err is a *ScanError; every other error is returned unchanged.
func WrapErrorWithSource(err error, src string) error {
	if e, ok := err.(*ScanError); ok {
		header := fmt.Sprintf("SCAN ERROR at %d:%d: %s %s", e.Line, e.Col+1, e.Kind, e.Token)
		return fmt.Errorf("%s", prettySnippet(src, header, e.Line, e.Col+1))
	}
	return err
}

// prettySnippet builds the numbered snippet with one line of context either
// side and a caret under the 1-based column. Coordinates are clamped.
func prettySnippet(src, header string, line, col int) string {
	lines := strings.Split(src, "\n")
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	if col < 1 {
		col = 1
	}
	cur := lines[line-1]
	if col > len(cur)+1 {
		col = len(cur) + 1
	}

	width := len(fmt.Sprintf("%d", line+1))
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")
	if line-2 >= 0 {
		fmt.Fprintf(&b, " %*d | %s\n", width, line-1, lines[line-2])
	}
	fmt.Fprintf(&b, " %*d | %s\n", width, line, cur)
	fmt.Fprintf(&b, " %*s | %s^\n", width, "", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, " %*d | %s\n", width, line+1, lines[line])
	}
	return strings.TrimRight(b.String(), "\n")
}
