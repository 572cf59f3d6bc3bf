// dispatch.go: per-type path dispatchers.
//
// Each dispatcher answers one walk step for its type. Registration in
// init keeps the table next to the implementations; tags without an
// entry report unhandled and the engine raises the select/poke error.
package ren

func init() {
	pathDispatch[VTContext] = contextDispatch
	for t := VTBlock; t <= VTLitPath; t++ {
		pathDispatch[t] = arrayDispatch
	}
	for t := VTString; t <= VTTag; t++ {
		pathDispatch[t] = stringDispatch
	}
	pathDispatch[VTBinary] = binaryDispatch
	pathDispatch[VTPair] = pairDispatch
	pathDispatch[VTTuple] = tupleDispatch
	pathDispatch[VTDate] = dateDispatch
	pathDispatch[VTTime] = timeDispatch
}

// pickerIndex extracts a 1-based series index from a picker. Decimals
// truncate; zero has no referent.
func pickerIndex(picker Value) (int, bool) {
	switch picker.Tag {
	case VTInteger:
		return int(picker.Int()), true
	case VTDecimal:
		return int(picker.Dec()), true
	}
	return 0, false
}

// pickAt turns a 1-based picker n, relative to a series position, into an
// absolute element index. Negative pickers count backwards from the
// position; zero and out-of-range pickers have no referent.
func pickAt(base, n, length int) (int, bool) {
	if n == 0 {
		return 0, false
	}
	idx := base + n - 1
	if n < 0 {
		idx = base + n
	}
	if idx < 0 || idx >= length {
		return 0, false
	}
	return idx, true
}

// contextDispatch selects a context slot by word. Writes check the
// protected flag before the engine commits through the reference.
func contextDispatch(w *Walker, picker Value, setval *Value) (Outcome, error) {
	c := w.out.Ctx()
	if !IsWordLike(picker.Tag) {
		return OutUnhandled, nil
	}
	i, ok := c.FindCanon(picker.Sym(), false)
	if !ok {
		if setval != nil {
			return 0, &PathError{Kind: ErrBadPathSet, Target: VTContext, Picker: picker, Msg: "no such field"}
		}
		return OutNone, nil
	}
	if setval != nil && c.KeyAt(i).Protected() {
		return 0, &AccessError{Kind: ErrProtectedKey, Key: c.KeyAt(i).Sym}
	}
	w.ref = c.SlotPtr(i)
	return OutReference, nil
}

// arrayDispatch selects into block/group/path cells: integers index
// 1-based from the cell's position, words select the value following
// their first case-insensitive match.
func arrayDispatch(w *Walker, picker Value, setval *Value) (Outcome, error) {
	arr := w.out.Arr()
	if n, ok := pickerIndex(picker); ok {
		idx, ok := pickAt(w.out.Index, n, arr.Len())
		if !ok {
			if setval != nil {
				return 0, &PathError{Kind: ErrBadPathPoke, Target: w.out.Tag, Picker: picker, Msg: "index out of range"}
			}
			return OutNone, nil
		}
		w.ref = &arr.Elems[idx]
		return OutReference, nil
	}
	if IsWordLike(picker.Tag) {
		for i := w.out.Index; i < arr.Len(); i++ {
			e := arr.At(i)
			if IsWordLike(e.Tag) && e.Sym().Equal(picker.Sym()) {
				if i+1 >= arr.Len() {
					break
				}
				w.ref = &arr.Elems[i+1]
				return OutReference, nil
			}
		}
		if setval != nil {
			return 0, &PathError{Kind: ErrBadPathSet, Target: w.out.Tag, Picker: picker, Msg: "no such selector"}
		}
		return OutNone, nil
	}
	return OutUnhandled, nil
}

// stringDispatch indexes the string family by codepoint position. Reads
// surface a char; writes mutate the shared rune storage in place.
func stringDispatch(w *Walker, picker Value, setval *Value) (Outcome, error) {
	str := w.out.Strs()
	n, ok := pickerIndex(picker)
	if !ok {
		return OutUnhandled, nil
	}
	idx, ok := pickAt(w.out.Index, n, len(str.Runes))
	if !ok {
		if setval != nil {
			return 0, &PathError{Kind: ErrBadPathPoke, Target: w.out.Tag, Picker: picker, Msg: "index out of range"}
		}
		return OutNone, nil
	}
	if setval != nil {
		var cp rune
		switch setval.Tag {
		case VTChar:
			cp = setval.Char()
		case VTInteger:
			cp = rune(setval.Int())
		default:
			return 0, &PathError{Kind: ErrBadPathPoke, Target: w.out.Tag, Picker: picker, Msg: "char or integer required"}
		}
		if cp < 0 || cp > MaxCodepoint {
			return 0, &PathError{Kind: ErrBadPathPoke, Target: w.out.Tag, Picker: picker, Msg: "codepoint out of range"}
		}
		str.Runes[idx] = cp
		return OutInvisible, nil
	}
	w.store = Chr(str.Runes[idx])
	return OutUseStore, nil
}

// binaryDispatch indexes binaries by byte position.
func binaryDispatch(w *Walker, picker Value, setval *Value) (Outcome, error) {
	bin := w.out.Bins()
	n, ok := pickerIndex(picker)
	if !ok {
		return OutUnhandled, nil
	}
	idx, ok := pickAt(w.out.Index, n, len(bin.Bytes))
	if !ok {
		if setval != nil {
			return 0, &PathError{Kind: ErrBadPathPoke, Target: w.out.Tag, Picker: picker, Msg: "index out of range"}
		}
		return OutNone, nil
	}
	if setval != nil {
		if setval.Tag != VTInteger || setval.Int() < 0 || setval.Int() > 255 {
			return 0, &PathError{Kind: ErrBadPathPoke, Target: w.out.Tag, Picker: picker, Msg: "byte value required"}
		}
		bin.Bytes[idx] = byte(setval.Int())
		return OutInvisible, nil
	}
	w.store = Int(int64(bin.Bytes[idx]))
	return OutUseStore, nil
}

var (
	xSym = Intern("x")
	ySym = Intern("y")
)

// pairDispatch selects pair halves by the words x/y or positions 1/2.
// Pairs pack into the cell itself, so a write rebuilds the cell and asks
// the engine for an immediate writeback.
func pairDispatch(w *Walker, picker Value, setval *Value) (Outcome, error) {
	p := w.out.Pair()
	half := 0
	switch {
	case IsWordLike(picker.Tag) && picker.Sym().Equal(xSym):
		half = 1
	case IsWordLike(picker.Tag) && picker.Sym().Equal(ySym):
		half = 2
	default:
		if n, ok := pickerIndex(picker); ok && (n == 1 || n == 2) {
			half = n
		}
	}
	if half == 0 {
		return OutUnhandled, nil
	}
	if setval != nil {
		if !isNumeric(setval.Tag) {
			return 0, &PathError{Kind: ErrBadPathPoke, Target: VTPair, Picker: picker, Msg: "number required"}
		}
		f := float32(numOf(*setval))
		if half == 1 {
			p.X = f
		} else {
			p.Y = f
		}
		w.out = PairVal(p.X, p.Y)
		return OutImmediate, nil
	}
	if half == 1 {
		w.store = Dec(float64(p.X))
	} else {
		w.store = Dec(float64(p.Y))
	}
	return OutUseStore, nil
}

// tupleDispatch indexes tuple bytes 1-based; writes rebuild the packed
// cell for immediate writeback.
func tupleDispatch(w *Walker, picker Value, setval *Value) (Outcome, error) {
	t := w.out.Tuple()
	n, ok := pickerIndex(picker)
	if !ok {
		return OutUnhandled, nil
	}
	if n < 1 || n > t.Len {
		if setval != nil {
			return 0, &PathError{Kind: ErrBadPathPoke, Target: VTTuple, Picker: picker, Msg: "index out of range"}
		}
		return OutNone, nil
	}
	if setval != nil {
		if setval.Tag != VTInteger || setval.Int() < 0 || setval.Int() > 255 {
			return 0, &PathError{Kind: ErrBadPathPoke, Target: VTTuple, Picker: picker, Msg: "byte value required"}
		}
		t.Bytes[n-1] = byte(setval.Int())
		w.out = TupleVal(t)
		return OutImmediate, nil
	}
	w.store = Int(int64(t.Bytes[n-1]))
	return OutUseStore, nil
}

var (
	yearSym   = Intern("year")
	monthSym  = Intern("month")
	daySym    = Intern("day")
	timeSym   = Intern("time")
	zoneSym   = Intern("zone")
	hourSym   = Intern("hour")
	minuteSym = Intern("minute")
	secondSym = Intern("second")
)

// dateDispatch reads and writes date fields by word.
func dateDispatch(w *Walker, picker Value, setval *Value) (Outcome, error) {
	if !IsWordLike(picker.Tag) {
		return OutUnhandled, nil
	}
	d := w.out.Date()
	sym := picker.Sym()

	if setval == nil {
		switch {
		case sym.Equal(yearSym):
			w.store = Int(int64(d.Year))
		case sym.Equal(monthSym):
			w.store = Int(int64(d.Month))
		case sym.Equal(daySym):
			w.store = Int(int64(d.Day))
		case sym.Equal(timeSym):
			if d.Nano < 0 {
				return OutNone, nil
			}
			w.store = TimeVal(d.Nano)
		case sym.Equal(zoneSym):
			if d.Nano < 0 {
				return OutNone, nil
			}
			w.store = TimeVal(int64(d.Zone) * 60 * 1e9)
		default:
			return OutUnhandled, nil
		}
		return OutUseStore, nil
	}

	switch {
	case sym.Equal(yearSym) && setval.Tag == VTInteger:
		d.Year = int(setval.Int())
	case sym.Equal(monthSym) && setval.Tag == VTInteger:
		d.Month = int(setval.Int())
	case sym.Equal(daySym) && setval.Tag == VTInteger:
		d.Day = int(setval.Int())
	case sym.Equal(timeSym) && setval.Tag == VTTime:
		d.Nano = setval.Data.(int64)
	default:
		return 0, &PathError{Kind: ErrBadPathPoke, Target: VTDate, Picker: picker}
	}
	w.out = DateVal(d)
	return OutImmediate, nil
}

// timeDispatch reads and writes hour/minute/second of a time cell.
func timeDispatch(w *Walker, picker Value, setval *Value) (Outcome, error) {
	if !IsWordLike(picker.Tag) {
		return OutUnhandled, nil
	}
	nano := w.out.Data.(int64)
	sym := picker.Sym()
	neg := nano < 0
	abs := nano
	if neg {
		abs = -abs
	}
	h := abs / (3600 * 1e9)
	m := abs % (3600 * 1e9) / (60 * 1e9)
	sec := float64(abs%(60*1e9)) / 1e9

	if setval == nil {
		switch {
		case sym.Equal(hourSym):
			w.store = Int(sign64(h, neg))
		case sym.Equal(minuteSym):
			w.store = Int(sign64(m, neg))
		case sym.Equal(secondSym):
			if neg {
				sec = -sec
			}
			w.store = Dec(sec)
		default:
			return OutUnhandled, nil
		}
		return OutUseStore, nil
	}

	if !isNumeric(setval.Tag) {
		return 0, &PathError{Kind: ErrBadPathPoke, Target: VTTime, Picker: picker, Msg: "number required"}
	}
	f := numOf(*setval)
	switch {
	case sym.Equal(hourSym):
		h = int64(f)
	case sym.Equal(minuteSym):
		m = int64(f)
	case sym.Equal(secondSym):
		sec = f
	default:
		return 0, &PathError{Kind: ErrBadPathPoke, Target: VTTime, Picker: picker}
	}
	total := h*3600*1e9 + m*60*1e9 + int64(sec*1e9)
	if neg {
		total = -total
	}
	w.out = TimeVal(total)
	return OutImmediate, nil
}

func sign64(v int64, neg bool) int64 {
	if neg {
		return -v
	}
	return v
}
