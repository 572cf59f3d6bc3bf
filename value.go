// value.go: the tagged value cell and its core operations.
//
// A Value is the universal carrier for the scanner's output and the path
// engine's operands. The tag determines which Go value lives behind Data
// (see ValueTag). Cells are plain value types copied by value; array,
// string, binary and context payloads are shared handles, so a copied cell
// still aliases the same underlying series.
package ren

import (
	"fmt"
	"strconv"
)

// ValueTag enumerates every kind a cell may hold.
type ValueTag int

const (
	VTVoid       ValueTag = iota // absence; never stored at user positions
	VTBlank                      // explicit placeholder
	VTLogic                      // bool
	VTInteger                    // int64
	VTDecimal                    // float64
	VTPercent                    // float64 (scaled: 50% stores 0.5)
	VTMoney                      // float64 amount
	VTChar                       // rune
	VTPair                       // Pair (immediate payload, by value)
	VTTuple                      // Tuple (immediate payload, by value)
	VTTime                       // int64 nanoseconds
	VTDate                       // Date
	VTBinary                     // *Binary
	VTString                     // *String (codepoint series)
	VTFile                       // *String
	VTEmail                      // *String
	VTURL                        // *String
	VTTag                        // *String
	VTWord                       // *Symbol
	VTSetWord                    // *Symbol
	VTGetWord                    // *Symbol
	VTLitWord                    // *Symbol
	VTRefinement                 // *Symbol
	VTIssue                      // *Symbol
	VTBlock                      // *Array (+ cell index)
	VTGroup                      // *Array (+ cell index)
	VTPath                       // *Array (+ cell index)
	VTSetPath                    // *Array (+ cell index)
	VTGetPath                    // *Array (+ cell index)
	VTLitPath                    // *Array (+ cell index)
	VTContext                    // *Context
	VTFunction                   // *Function
	VTError                      // *ErrorObj
	VTReference                  // *Value (internal; path engine write target)

	numTags
)

var tagNames = [...]string{
	VTVoid: "void!", VTBlank: "blank!", VTLogic: "logic!", VTInteger: "integer!",
	VTDecimal: "decimal!", VTPercent: "percent!", VTMoney: "money!", VTChar: "char!",
	VTPair: "pair!", VTTuple: "tuple!", VTTime: "time!", VTDate: "date!",
	VTBinary: "binary!", VTString: "string!", VTFile: "file!", VTEmail: "email!",
	VTURL: "url!", VTTag: "tag!", VTWord: "word!", VTSetWord: "set-word!",
	VTGetWord: "get-word!", VTLitWord: "lit-word!", VTRefinement: "refinement!",
	VTIssue: "issue!", VTBlock: "block!", VTGroup: "group!", VTPath: "path!",
	VTSetPath: "set-path!", VTGetPath: "get-path!", VTLitPath: "lit-path!",
	VTContext: "object!", VTFunction: "function!", VTError: "error!",
	VTReference: "reference!",
}

// TypeName returns the datatype name for a tag.
func TypeName(t ValueTag) string {
	if t >= 0 && int(t) < len(tagNames) {
		return tagNames[t]
	}
	return "unknown!"
}

// Value is a tagged cell. Index is meaningful only for series payloads
// (block/group/path/string/binary) and obeys 0 <= Index <= length. NewLine
// marks cells that began a source line; the scanner sets it, Mold honors it.
type Value struct {
	Tag     ValueTag
	Data    interface{}
	Index   int
	NewLine bool
}

// TypeOf returns the cell's tag.
func TypeOf(v Value) ValueTag { return v.Tag }

// Singletons.
var (
	Void  = Value{Tag: VTVoid}
	Blank = Value{Tag: VTBlank}
	True  = Value{Tag: VTLogic, Data: true}
	False = Value{Tag: VTLogic, Data: false}
)

// Pair is an immediate two-float payload. It cannot vend a stable cell
// reference for its halves; sub-field writes go through the path engine's
// Immediate writeback.
type Pair struct {
	X, Y float32
}

// Tuple is up to ten small integers (versions, IP addresses, colors).
type Tuple struct {
	Len   int
	Bytes [10]byte
}

// Date carries a calendar date with optional time and zone. Nano is -1 when
// no time component is present; Zone is minutes east of UTC.
type Date struct {
	Year, Month, Day int
	Nano             int64
	Zone             int
}

// String is a shared series of codepoints; File/Email/URL/Tag cells alias
// the same payload under their own tags.
type String struct {
	Runes []rune
}

// Binary is a shared byte series.
type Binary struct {
	Bytes []byte
}

// Array is a shared ordered series of cells.
type Array struct {
	Elems []Value
}

// Function is a callable reference. The evaluator proper is an external
// collaborator; the path engine only needs identity, a name for stack
// traces, and the refinements collected for it.
type Function struct {
	Name   *Symbol
	Impl   func(args []Value) (Value, error)
	Refine []*Symbol // refinement words the last walk collected
}

// Constructors.

func Logic(b bool) Value          { return Value{Tag: VTLogic, Data: b} }
func Int(n int64) Value           { return Value{Tag: VTInteger, Data: n} }
func Dec(f float64) Value         { return Value{Tag: VTDecimal, Data: f} }
func Percent(f float64) Value     { return Value{Tag: VTPercent, Data: f} }
func Money(f float64) Value       { return Value{Tag: VTMoney, Data: f} }
func Chr(r rune) Value            { return Value{Tag: VTChar, Data: r} }
func PairVal(x, y float32) Value  { return Value{Tag: VTPair, Data: Pair{X: x, Y: y}} }
func TupleVal(t Tuple) Value      { return Value{Tag: VTTuple, Data: t} }
func TimeVal(nano int64) Value    { return Value{Tag: VTTime, Data: nano} }
func DateVal(d Date) Value        { return Value{Tag: VTDate, Data: d} }

func Str(s string) Value { return Value{Tag: VTString, Data: &String{Runes: []rune(s)}} }
func Bin(b []byte) Value { return Value{Tag: VTBinary, Data: &Binary{Bytes: b}} }

// StrTagged builds any of the string-payload types (string/file/email/url/tag).
func StrTagged(tag ValueTag, rs []rune) Value {
	return Value{Tag: tag, Data: &String{Runes: rs}}
}

// WordTagged builds any of the word-payload types.
func WordTagged(tag ValueTag, sym *Symbol) Value {
	return Value{Tag: tag, Data: sym}
}

func Word(name string) Value    { return WordTagged(VTWord, Intern(name)) }
func SetWord(name string) Value { return WordTagged(VTSetWord, Intern(name)) }
func GetWord(name string) Value { return WordTagged(VTGetWord, Intern(name)) }
func LitWord(name string) Value { return WordTagged(VTLitWord, Intern(name)) }

// ArrTagged builds any of the array-payload types at index 0.
func ArrTagged(tag ValueTag, a *Array) Value {
	return Value{Tag: tag, Data: a}
}

func Blk(elems ...Value) Value { return ArrTagged(VTBlock, &Array{Elems: elems}) }
func Grp(elems ...Value) Value { return ArrTagged(VTGroup, &Array{Elems: elems}) }

func CtxVal(c *Context) Value  { return Value{Tag: VTContext, Data: c} }
func FunVal(f *Function) Value { return Value{Tag: VTFunction, Data: f} }
func RefVal(cell *Value) Value { return Value{Tag: VTReference, Data: cell} }

// Predicates over tag groups.

func IsWordLike(t ValueTag) bool   { return t >= VTWord && t <= VTIssue }
func IsStringLike(t ValueTag) bool { return t >= VTString && t <= VTTag }
func IsArrayLike(t ValueTag) bool  { return t >= VTBlock && t <= VTLitPath }
func IsPathLike(t ValueTag) bool   { return t >= VTPath && t <= VTLitPath }

// IsVoid is the test dispatchers use before consuming a picker.
func IsVoid(v Value) bool { return v.Tag == VTVoid }

/// IsTruthy follows the language convention: void, blank and false are falsy.
func IsTruthy(v Value) bool {
	switch v.Tag {
	case VTVoid, VTBlank:
		return false
	case VTLogic:
		return v.Data.(bool)
	}
	return true
}

// Payload accessors. These panic on tag mismatch; dispatchers check tags
// before calling them.

func (v Value) Int() int64     { return v.Data.(int64) }
func (v Value) Dec() float64   { return v.Data.(float64) }
func (v Value) Logic() bool    { return v.Data.(bool) }
func (v Value) Char() rune     { return v.Data.(rune) }
func (v Value) Sym() *Symbol   { return v.Data.(*Symbol) }
func (v Value) Arr() *Array    { return v.Data.(*Array) }
func (v Value) Strs() *String  { return v.Data.(*String) }
func (v Value) Bins() *Binary  { return v.Data.(*Binary) }
func (v Value) Ctx() *Context  { return v.Data.(*Context) }
func (v Value) Fun() *Function { return v.Data.(*Function) }
func (v Value) Pair() Pair     { return v.Data.(Pair) }
func (v Value) Tuple() Tuple   { return v.Data.(Tuple) }
func (v Value) Date() Date     { return v.Data.(Date) }

// String renders a short debug form; Mold produces loadable source.
func (v Value) String() string {
	switch v.Tag {
	case VTVoid:
		return "~void~"
	case VTBlank:
		return "_"
	case VTInteger:
		return strconv.FormatInt(v.Int(), 10)
	case VTWord, VTSetWord, VTGetWord, VTLitWord, VTRefinement, VTIssue:
		return v.Sym().Spelling()
	default:
		return fmt.Sprintf("<%s>", TypeName(v.Tag))
	}
}

// ---------- equality and ordering ----------

// Equal is structural equality: words by canonical symbol, arrays
// element-wise from their indexes, contexts skipping hidden keys.
func Equal(a, b Value) bool {
	if a.Tag != b.Tag {
		// Numeric cross-type equality, as the datatype comparisons do.
		if isNumeric(a.Tag) && isNumeric(b.Tag) {
			return numOf(a) == numOf(b)
		}
		return false
	}
	switch a.Tag {
	case VTVoid, VTBlank:
		return true
	case VTLogic:
		return a.Logic() == b.Logic()
	case VTInteger, VTTime:
		return a.Data.(int64) == b.Data.(int64)
	case VTDecimal, VTPercent, VTMoney:
		return a.Dec() == b.Dec()
	case VTChar:
		return foldRune(a.Char()) == foldRune(b.Char())
	case VTPair:
		return a.Pair() == b.Pair()
	case VTTuple:
		return a.Tuple() == b.Tuple()
	case VTDate:
		return a.Date() == b.Date()
	case VTBinary:
		ab, bb := a.Bins().Bytes, b.Bins().Bytes
		ai, bi := seriesIndex(a.Index, len(ab)), seriesIndex(b.Index, len(bb))
		return bytesEqual(ab[ai:], bb[bi:])
	case VTString, VTFile, VTEmail, VTURL, VTTag:
		ar, br := a.Strs().Runes, b.Strs().Runes
		ai, bi := seriesIndex(a.Index, len(ar)), seriesIndex(b.Index, len(br))
		return runesEqualFold(ar[ai:], br[bi:])
	case VTWord, VTSetWord, VTGetWord, VTLitWord, VTRefinement, VTIssue:
		return a.Sym().Equal(b.Sym())
	case VTBlock, VTGroup, VTPath, VTSetPath, VTGetPath, VTLitPath:
		ae, be := a.Arr().Elems, b.Arr().Elems
		ai, bi := seriesIndex(a.Index, len(ae)), seriesIndex(b.Index, len(be))
		ae, be = ae[ai:], be[bi:]
		if len(ae) != len(be) {
			return false
		}
		for i := range ae {
			if !Equal(ae[i], be[i]) {
				return false
			}
		}
		return true
	case VTContext:
		return a.Ctx().Equal(b.Ctx())
	case VTFunction:
		return a.Fun() == b.Fun()
	case VTError:
		return a.Data.(*ErrorObj) == b.Data.(*ErrorObj)
	case VTReference:
		return a.Data.(*Value) == b.Data.(*Value)
	}
	return false
}

func isNumeric(t ValueTag) bool {
	return t == VTInteger || t == VTDecimal || t == VTPercent || t == VTMoney
}

func numOf(v Value) float64 {
	if v.Tag == VTInteger {
		return float64(v.Int())
	}
	return v.Dec()
}

func seriesIndex(i, length int) int {
	if i < 0 {
		return 0
	}
	if i > length {
		return length
	}
	return i
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func runesEqualFold(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if foldRune(a[i]) != foldRune(b[i]) {
			return false
		}
	}
	return true
}

// Compare orders two cells of comparable types: -1, 0, or 1. The second
// return is false when the pair is not ordered.
func Compare(a, b Value) (int, bool) {
	if isNumeric(a.Tag) && isNumeric(b.Tag) {
		return cmpFloat(numOf(a), numOf(b)), true
	}
	if a.Tag != b.Tag {
		return 0, false
	}
	switch a.Tag {
	case VTChar:
		return cmpInt(int64(foldRune(a.Char())), int64(foldRune(b.Char()))), true
	case VTTime:
		return cmpInt(a.Data.(int64), b.Data.(int64)), true
	case VTDate:
		return cmpDate(a.Date(), b.Date()), true
	case VTString, VTFile, VTEmail, VTURL, VTTag:
		ar := a.Strs().Runes[seriesIndex(a.Index, len(a.Strs().Runes)):]
		br := b.Strs().Runes[seriesIndex(b.Index, len(b.Strs().Runes)):]
		return cmpRunesFold(ar, br), true
	}
	return 0, false
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpDate(a, b Date) int {
	if c := cmpInt(int64(a.Year), int64(b.Year)); c != 0 {
		return c
	}
	if c := cmpInt(int64(a.Month), int64(b.Month)); c != 0 {
		return c
	}
	if c := cmpInt(int64(a.Day), int64(b.Day)); c != 0 {
		return c
	}
	an, bn := a.Nano, b.Nano
	if an < 0 {
		an = 0
	}
	if bn < 0 {
		bn = 0
	}
	return cmpInt(an, bn)
}

func cmpRunesFold(a, b []rune) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		fa, fb := foldRune(a[i]), foldRune(b[i])
		if fa != fb {
			if fa < fb {
				return -1
			}
			return 1
		}
	}
	return cmpInt(int64(len(a)), int64(len(b)))
}

// ---------- copying ----------

// Copy is a shallow copy of the immediate series payload: arrays, strings
// and binaries get a fresh series sharing element handles; immediates are
// returned as-is (cell assignment already copies them).
func Copy(v Value) Value {
	switch {
	case IsArrayLike(v.Tag):
		src := v.Arr().Elems
		dst := make([]Value, len(src))
		copy(dst, src)
		return Value{Tag: v.Tag, Data: &Array{Elems: dst}, Index: v.Index}
	case IsStringLike(v.Tag):
		src := v.Strs().Runes
		dst := make([]rune, len(src))
		copy(dst, src)
		return Value{Tag: v.Tag, Data: &String{Runes: dst}, Index: v.Index}
	case v.Tag == VTBinary:
		src := v.Bins().Bytes
		dst := make([]byte, len(src))
		copy(dst, src)
		return Value{Tag: v.Tag, Data: &Binary{Bytes: dst}, Index: v.Index}
	case v.Tag == VTContext:
		return CtxVal(v.Ctx().Copy(false))
	}
	return v
}

// CopyDeep clones array payloads recursively; CopyTypes restricts the
// recursion to the tags for which keep returns true.
func CopyDeep(v Value) Value {
	return CopyTypes(v, func(ValueTag) bool { return true })
}

func CopyTypes(v Value, keep func(ValueTag) bool) Value {
	switch {
	case IsArrayLike(v.Tag):
		src := v.Arr().Elems
		dst := make([]Value, len(src))
		for i, e := range src {
			if keep(e.Tag) {
				dst[i] = CopyTypes(e, keep)
			} else {
				dst[i] = e
			}
		}
		return Value{Tag: v.Tag, Data: &Array{Elems: dst}, Index: v.Index, NewLine: v.NewLine}
	case IsStringLike(v.Tag), v.Tag == VTBinary:
		return Copy(v)
	case v.Tag == VTContext:
		return CtxVal(v.Ctx().Copy(true))
	}
	return v
}
