// mold.go: value-to-source serialization.
//
// Mold renders a cell in loadable form: scanning the output of Mold gives
// back an equal value for every scannable type. Contexts and functions
// render as make expressions, which read back as words without an
// evaluator; everything else round-trips through the scanner.
package ren

import (
	"fmt"
	"strconv"
	"strings"
)

// Mold renders v as source text.
func Mold(v Value) string {
	var b strings.Builder
	moldValue(&b, v)
	return b.String()
}

func moldValue(b *strings.Builder, v Value) {
	switch v.Tag {
	case VTVoid:
		b.WriteString("#[void]")
	case VTBlank:
		b.WriteString("#[none]")
	case VTLogic:
		if v.Logic() {
			b.WriteString("#[true]")
		} else {
			b.WriteString("#[false]")
		}
	case VTInteger:
		b.WriteString(strconv.FormatInt(v.Int(), 10))
	case VTDecimal:
		b.WriteString(moldDecimal(v.Dec()))
	case VTPercent:
		b.WriteString(moldDecimal(v.Dec() * 100))
		b.WriteByte('%')
	case VTMoney:
		f := v.Dec()
		if f < 0 {
			b.WriteByte('-')
			f = -f
		}
		b.WriteByte('$')
		b.WriteString(strconv.FormatFloat(f, 'f', 2, 64))
	case VTChar:
		b.WriteString(`#"`)
		moldCharBody(b, v.Char(), true)
		b.WriteByte('"')
	case VTPair:
		p := v.Pair()
		b.WriteString(moldPairHalf(p.X))
		b.WriteByte('x')
		b.WriteString(moldPairHalf(p.Y))
	case VTTuple:
		t := v.Tuple()
		for i := 0; i < t.Len; i++ {
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(strconv.Itoa(int(t.Bytes[i])))
		}
	case VTTime:
		b.WriteString(moldTime(v.Data.(int64)))
	case VTDate:
		moldDate(b, v.Date())
	case VTBinary:
		b.WriteString("#{")
		for _, by := range v.Bins().Bytes {
			fmt.Fprintf(b, "%02X", by)
		}
		b.WriteByte('}')
	case VTString:
		moldString(b, v.Strs().Runes[seriesIndex(v.Index, len(v.Strs().Runes)):])
	case VTFile:
		moldFile(b, v.Strs().Runes)
	case VTEmail, VTURL:
		b.WriteString(string(v.Strs().Runes))
	case VTTag:
		b.WriteByte('<')
		b.WriteString(string(v.Strs().Runes))
		b.WriteByte('>')
	case VTWord:
		b.WriteString(v.Sym().Spelling())
	case VTSetWord:
		b.WriteString(v.Sym().Spelling())
		b.WriteByte(':')
	case VTGetWord:
		b.WriteByte(':')
		b.WriteString(v.Sym().Spelling())
	case VTLitWord:
		b.WriteByte('\'')
		b.WriteString(v.Sym().Spelling())
	case VTRefinement:
		b.WriteByte('/')
		b.WriteString(v.Sym().Spelling())
	case VTIssue:
		b.WriteByte('#')
		b.WriteString(v.Sym().Spelling())
	case VTBlock:
		b.WriteByte('[')
		moldArrayBody(b, v)
		b.WriteByte(']')
	case VTGroup:
		b.WriteByte('(')
		moldArrayBody(b, v)
		b.WriteByte(')')
	case VTPath, VTSetPath, VTGetPath, VTLitPath:
		moldPath(b, v)
	case VTContext:
		moldContext(b, v.Ctx())
	case VTFunction:
		b.WriteString("make function! [[")
		f := v.Fun()
		for i, r := range f.Refine {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteByte('/')
			b.WriteString(r.Spelling())
		}
		b.WriteString("] []]")
	case VTError:
		eo := v.Data.(*ErrorObj)
		fmt.Fprintf(b, "make error! [id: %s near: %q]", eo.Kind, eo.Near)
	case VTReference:
		b.WriteString("#[reference!]")
	default:
		b.WriteString("#[unknown]")
	}
}

// moldArrayBody writes elements from the cell's index, separating with
// spaces and honoring line markers.
func moldArrayBody(b *strings.Builder, v Value) {
	arr := v.Arr()
	first := true
	for i := seriesIndex(v.Index, arr.Len()); i < arr.Len(); i++ {
		e := arr.At(i)
		if !first {
			if e.NewLine {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		} else if e.NewLine {
			b.WriteByte('\n')
		}
		first = false
		moldValue(b, e)
	}
}

func moldPath(b *strings.Builder, v Value) {
	switch v.Tag {
	case VTGetPath:
		b.WriteByte(':')
	case VTLitPath:
		b.WriteByte('\'')
	}
	arr := v.Arr()
	start := seriesIndex(v.Index, arr.Len())
	for i := start; i < arr.Len(); i++ {
		if i > start {
			b.WriteByte('/')
		}
		moldValue(b, arr.At(i))
	}
	if v.Tag == VTSetPath {
		b.WriteByte(':')
	}
}

func moldContext(b *strings.Builder, c *Context) {
	b.WriteString("make object! [")
	wrote := false
	for i := 1; i <= c.Len(); i++ {
		k := c.KeyAt(i)
		if k.Hidden() {
			continue
		}
		if wrote {
			b.WriteByte(' ')
		}
		wrote = true
		b.WriteString(k.Sym.Spelling())
		b.WriteString(": ")
		moldValue(b, c.Get(i))
	}
	b.WriteByte(']')
}

// moldDecimal keeps a decimal point so the output rescans as a decimal.
func moldDecimal(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// moldPairHalf drops a trailing .0 the way pairs print.
func moldPairHalf(f float32) string {
	s := strconv.FormatFloat(float64(f), 'g', -1, 32)
	return s
}

func moldTime(nano int64) string {
	var b strings.Builder
	if nano < 0 {
		b.WriteByte('-')
		nano = -nano
	}
	h := nano / (3600 * 1e9)
	m := nano % (3600 * 1e9) / (60 * 1e9)
	rest := nano % (60 * 1e9)
	sec := rest / 1e9
	frac := rest % 1e9
	fmt.Fprintf(&b, "%d:%02d", h, m)
	if sec != 0 || frac != 0 {
		fmt.Fprintf(&b, ":%02d", sec)
		if frac != 0 {
			fs := strconv.FormatFloat(float64(frac)/1e9, 'f', -1, 64)
			b.WriteString(fs[1:]) // keep the dot, drop the zero
		}
	}
	return b.String()
}

var monthAbbrev = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

func moldDate(b *strings.Builder, d Date) {
	fmt.Fprintf(b, "%d-%s-%d", d.Day, monthAbbrev[d.Month-1], d.Year)
	if d.Nano >= 0 {
		b.WriteByte('/')
		b.WriteString(moldTime(d.Nano))
		if d.Zone != 0 {
			z := d.Zone
			sign := byte('+')
			if z < 0 {
				sign = '-'
				z = -z
			}
			b.WriteByte(sign)
			fmt.Fprintf(b, "%d:%02d", z/60, z%60)
		}
	}
}

// moldString picks the quoted form unless the content carries a newline
// or a double quote, then the braced form.
func moldString(b *strings.Builder, rs []rune) {
	braced := false
	for _, r := range rs {
		if r == '\n' || r == '"' {
			braced = true
			break
		}
	}
	if braced {
		b.WriteByte('{')
		for _, r := range rs {
			switch r {
			case '{':
				b.WriteString("^{")
			case '}':
				b.WriteString("^}")
			case '^':
				b.WriteString("^^")
			default:
				moldCharBody(b, r, false)
			}
		}
		b.WriteByte('}')
		return
	}
	b.WriteByte('"')
	for _, r := range rs {
		moldCharBody(b, r, true)
	}
	b.WriteByte('"')
}

// moldCharBody writes one codepoint with caret escapes for controls.
func moldCharBody(b *strings.Builder, r rune, quoted bool) {
	switch r {
	case '\n':
		b.WriteString("^/")
	case '\t':
		b.WriteString("^-")
	case '^':
		b.WriteString("^^")
	case '"':
		if quoted {
			b.WriteString("^\"")
		} else {
			b.WriteByte('"')
		}
	default:
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(b, "^(%02X)", r)
		} else {
			b.WriteRune(r)
		}
	}
}

// moldFile quotes the file form when it holds spaces.
func moldFile(b *strings.Builder, rs []rune) {
	needQuote := false
	for _, r := range rs {
		if r == ' ' || r == '\t' || r == '"' {
			needQuote = true
			break
		}
	}
	b.WriteByte('%')
	if !needQuote {
		b.WriteString(string(rs))
		return
	}
	b.WriteByte('"')
	for _, r := range rs {
		moldCharBody(b, r, true)
	}
	b.WriteByte('"')
}
